package feawrite

import (
	"io"
	"strings"

	"github.com/npillmayer/featools/fea"
)

// Writer serializes tables to feature file syntax.
type Writer struct {
	whitespace string
	filter     bool
}

// Option configures a Writer.
type Option func(*Writer)

// Whitespace sets the string used for one level of indentation. The default
// is a tab.
func Whitespace(ws string) Option {
	return func(w *Writer) {
		w.whitespace = ws
	}
}

// FilterRedundancies switches filtering of redundant statements on or off.
// Filtering is on by default; without it every event is written as it was
// collected.
func FilterRedundancies(on bool) Option {
	return func(w *Writer) {
		w.filter = on
	}
}

// New creates a writer.
func New(opts ...Option) *Writer {
	w := &Writer{whitespace: "\t", filter: true}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Format renders a table to feature file syntax.
func (w *Writer) Format(t *fea.Table) (string, error) {
	if t == nil {
		return "", nil
	}
	events := Collect(t)
	if w.filter {
		events = Filter(events)
	}
	r := newRenderer(w.whitespace, 0)
	if err := r.render(events); err != nil {
		tracer().Errorf("writing table %s: %v", t.Tag, err)
		return "", err
	}
	return strings.Join(r.finish(), "\n"), nil
}

// Write renders a table to feature file syntax and writes it to out.
func (w *Writer) Write(out io.Writer, t *fea.Table) error {
	text, err := w.Format(t)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, text)
	return err
}

// Fea renders a table to feature file syntax.
func Fea(t *fea.Table, opts ...Option) (string, error) {
	return New(opts...).Format(t)
}

// Dump renders the complete, unfiltered structure of a table as indented
// "Key: value" lines.
func Dump(t *fea.Table) (string, error) {
	if t == nil {
		return "", nil
	}
	d := &dumper{}
	if err := d.dump(Collect(t)); err != nil {
		return "", err
	}
	return strings.Join(d.lines, "\n"), nil
}
