package fea

import "fmt"

// ErrorKind classifies failures of decompilation and compression.
type ErrorKind int

const (
	// UnsupportedFeature is a lookup type or subtable shape which is not modelled,
	// e.g. GSUB types 2 and 5, or chaining context formats other than 3.
	UnsupportedFeature ErrorKind = iota
	// MalformedInput is binary data violating an invariant a feature compiler
	// guarantees, e.g. a duplicate ligature or a language declared twice.
	MalformedInput
	// NamingExhaustion is a name disambiguation counter running out of values.
	NamingExhaustion
	// UnknownTable is a table identifier other than a layout table.
	UnknownTable
)

// String returns a human-readable representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case UnsupportedFeature:
		return "UNSUPPORTED"
	case MalformedInput:
		return "MALFORMED"
	case NamingExhaustion:
		return "NAMING"
	case UnknownTable:
		return "UNKNOWN-TABLE"
	default:
		return "UNKNOWN"
	}
}

// Error is an error encountered while decompiling or compressing a table.
type Error struct {
	Kind    ErrorKind
	Table   string // table identifier, e.g. "GSUB"
	Section string // section within the table, e.g. "LookupType6", "ScriptList"
	Issue   string // human-readable description of the issue
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Table, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Kind, e.Table, e.Section, e.Issue)
}

// Is matches errors of the same kind, so that
//
//	errors.Is(err, fea.ErrMalformedInput)
//
// holds for every malformed-input error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Issue == "" || t.Issue == e.Issue)
}

// Sentinels to match error kinds with errors.Is.
var (
	ErrUnsupportedFeature = &Error{Kind: UnsupportedFeature}
	ErrMalformedInput     = &Error{Kind: MalformedInput}
	ErrNamingExhaustion   = &Error{Kind: NamingExhaustion}
	ErrUnknownTable       = &Error{Kind: UnknownTable}
)

// Unsupported creates an UnsupportedFeature error.
func Unsupported(table, section, format string, args ...any) error {
	return &Error{Kind: UnsupportedFeature, Table: table, Section: section, Issue: fmt.Sprintf(format, args...)}
}

// Malformed creates a MalformedInput error.
func Malformed(table, section, format string, args ...any) error {
	return &Error{Kind: MalformedInput, Table: table, Section: section, Issue: fmt.Sprintf(format, args...)}
}

// Exhausted creates a NamingExhaustion error.
func Exhausted(table, section, format string, args ...any) error {
	return &Error{Kind: NamingExhaustion, Table: table, Section: section, Issue: fmt.Sprintf(format, args...)}
}
