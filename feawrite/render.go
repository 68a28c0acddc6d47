package feawrite

import (
	"fmt"
	"strings"

	"github.com/npillmayer/featools/fea"
)

// renderer writes the events of one block. Nested blocks get renderers of
// their own, whose lines are spliced into the parent's output.
type renderer struct {
	ws         string
	base       int // indent of the block
	inScript   bool
	inLanguage bool
	lines      []string
	last       Kind
	written    bool // at least one statement has been written
}

func newRenderer(ws string, base int) *renderer {
	return &renderer{ws: ws, base: base}
}

// level is the indent of the next statement. Statements following a script
// or language declaration are indented below it.
func (r *renderer) level() int {
	l := r.base
	if r.inScript {
		l++
	}
	if r.inLanguage {
		l++
	}
	return l
}

func (r *renderer) emit(lines ...string) {
	indent := strings.Repeat(r.ws, r.level())
	for _, line := range lines {
		r.lines = append(r.lines, indent+line)
	}
}

// breakBefore separates statements of different kinds by a blank line.
// Blocks and declarations are always set off, top-level blocks by two lines.
func (r *renderer) breakBefore(k Kind) {
	if k.spaced() {
		r.lines = append(r.lines, "")
		if r.base == 0 && (k == FeatureEvent || k == LookupEvent) {
			r.lines = append(r.lines, "")
		}
	} else if r.written && k != r.last {
		r.lines = append(r.lines, "")
	}
}

func (r *renderer) wrote(k Kind) {
	r.last = k
	r.written = true
}

// finish closes a block, ending it with a blank line if its last statement
// was a spaced one.
func (r *renderer) finish() []string {
	if r.written && r.last.spaced() {
		r.lines = append(r.lines, "")
	}
	return r.lines
}

func (r *renderer) render(sc *Scope) error {
	for _, ev := range sc.Events {
		if err := r.renderEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) renderEvent(ev *Event) error {
	switch ev.Kind {
	case LanguageSystemEvent:
		r.breakBefore(ev.Kind)
		r.emit(fmt.Sprintf("languagesystem %s %s;", ev.Script.ScriptString(), ev.Language.LanguageString()))
	case ClassDefinitionEvent:
		r.breakBefore(ev.Kind)
		r.emit(fmt.Sprintf("%s = [%s];", ev.Name, strings.Join(ev.Glyphs, " ")))
	case FeatureEvent:
		r.breakBefore(ev.Kind)
		r.emit(fmt.Sprintf("feature %s {", ev.Name))
		if err := r.renderBlock(ev.Body, r.level()+1); err != nil {
			return err
		}
		r.emit(fmt.Sprintf("} %s;", ev.Name))
	case LookupEvent:
		if ev.Inline {
			return r.renderBlock(ev.Body, r.level())
		}
		r.breakBefore(ev.Kind)
		r.emit(fmt.Sprintf("lookup %s {", ev.Name))
		if err := r.renderBlock(ev.Body, r.level()+1); err != nil {
			return err
		}
		r.emit(fmt.Sprintf("} %s;", ev.Name))
	case ScriptEvent:
		r.inScript, r.inLanguage = false, false
		r.breakBefore(ev.Kind)
		r.emit(fmt.Sprintf("script %s;", ev.Script.ScriptString()))
		r.inScript = true
	case LanguageEvent:
		r.inLanguage = false
		r.breakBefore(ev.Kind)
		if ev.IncludeDefault || ev.Language.IsDefault() {
			r.emit(fmt.Sprintf("language %s;", ev.Language.LanguageString()))
		} else {
			r.emit(fmt.Sprintf("language %s exclude_dflt;", ev.Language.LanguageString()))
		}
		r.inLanguage = true
	case LookupFlagEvent:
		r.breakBefore(ev.Kind)
		r.emit(fmt.Sprintf("lookupflag %s;", flagText(ev.Flag)))
	case LookupReferenceEvent:
		r.breakBefore(ev.Kind)
		r.emit(fmt.Sprintf("lookup %s;", ev.Name))
	case SubtableEvent:
		rules, err := subtableText(ev.Subtable)
		if err != nil {
			return err
		}
		r.breakBefore(ev.Kind)
		r.emit(rules...)
	default:
		return fmt.Errorf("unknown emission event kind %d", ev.Kind)
	}
	r.wrote(ev.Kind)
	return nil
}

func (r *renderer) renderBlock(body *Scope, base int) error {
	child := newRenderer(r.ws, base)
	if err := child.render(body); err != nil {
		return err
	}
	r.lines = append(r.lines, child.finish()...)
	return nil
}

func flagText(flag fea.LookupFlag) string {
	names := flag.Names()
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, ", ")
}

// subtableText renders the rules of a subtable, one statement per rule.
func subtableText(st fea.Subtable) ([]string, error) {
	var rules []string
	switch st := st.(type) {
	case *fea.SingleSubst:
		if !st.Target.IsClassReference() && st.Target.Len() == 0 {
			return nil, nil
		}
		rules = append(rules, fmt.Sprintf("sub %s by %s;", st.Target, st.Substitution))
	case *fea.AlternateSubst:
		for _, set := range st.Sets {
			rules = append(rules, fmt.Sprintf("sub %s from [%s];", set.Glyph, strings.Join(set.Alternates, " ")))
		}
	case *fea.LigatureSubst:
		for _, lig := range st.Ligatures {
			rules = append(rules, fmt.Sprintf("sub %s by %s;", strings.Join(lig.Components, " "), lig.Glyph))
		}
	case *fea.ChainingContext:
		rules = append(rules, chainingText(st))
	default:
		return nil, fea.Unsupported("GSUB", "LookupList", "cannot write subtable of type %T", st)
	}
	return rules, nil
}

func chainingText(st *fea.ChainingContext) string {
	var segments []string
	for _, g := range st.Backtrack {
		segments = append(segments, g.String())
	}
	for _, g := range st.Input {
		segments = append(segments, g.String()+"'")
	}
	for _, g := range st.Lookahead {
		segments = append(segments, g.String())
	}
	if st.IsIgnore() {
		return "ignore sub " + strings.Join(segments, " ") + ";"
	}
	subst := make([]string, len(st.Substitution))
	for i, g := range st.Substitution {
		subst[i] = g.String()
	}
	return "sub " + strings.Join(segments, " ") + " by " + strings.Join(subst, " ") + ";"
}
