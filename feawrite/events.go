package feawrite

import (
	"github.com/npillmayer/featools/fea"
)

// Kind is the kind of an emission event.
type Kind int8

// Emission event kinds
const (
	LanguageSystemEvent Kind = iota
	ClassDefinitionEvent
	FeatureEvent
	LookupEvent
	ScriptEvent
	LanguageEvent
	LookupFlagEvent
	LookupReferenceEvent
	SubtableEvent
)

func (k Kind) String() string {
	switch k {
	case LanguageSystemEvent:
		return "languagesystem"
	case ClassDefinitionEvent:
		return "class"
	case FeatureEvent:
		return "feature"
	case LookupEvent:
		return "lookup"
	case ScriptEvent:
		return "script"
	case LanguageEvent:
		return "language"
	case LookupFlagEvent:
		return "lookupflag"
	case LookupReferenceEvent:
		return "lookup-reference"
	case SubtableEvent:
		return "subtable"
	}
	return "?"
}

// spaced is true for kinds which are always separated by blank lines.
func (k Kind) spaced() bool {
	switch k {
	case FeatureEvent, LookupEvent, ScriptEvent, LanguageEvent, LookupReferenceEvent:
		return true
	}
	return false
}

// content is true for kinds which make a preceding script or language
// declaration necessary.
func (k Kind) content() bool {
	return k == LookupEvent || k == LookupReferenceEvent || k == SubtableEvent
}

// Event is a single statement to emit. Feature and lookup events carry the
// events of their block in Body.
type Event struct {
	Kind           Kind
	Name           string  // feature tag, lookup name, class name
	Script         fea.Tag // script of a language system or script declaration
	Language       fea.Tag // language of a language system or language declaration
	IncludeDefault bool
	Flag           fea.LookupFlag
	Glyphs         []string // class members
	Subtable       fea.Subtable
	Body           *Scope
	Inline         bool // lookup is written without a lookup block
}

// Scope is the ordered list of events of a block.
type Scope struct {
	Events []*Event
}

func (sc *Scope) add(ev *Event) {
	sc.Events = append(sc.Events, ev)
}

// Collect walks a table into its tree of emission events, without filtering.
func Collect(t *fea.Table) *Scope {
	root := &Scope{}
	for _, ls := range t.LanguageSystems() {
		root.add(&Event{Kind: LanguageSystemEvent, Script: ls.Script, Language: ls.Language})
	}
	for _, c := range t.Classes.Sorted() {
		root.add(&Event{Kind: ClassDefinitionEvent, Name: c.Name, Glyphs: c.Glyphs})
	}
	for _, l := range t.Lookups {
		root.add(lookupEvent(l))
	}
	for _, f := range t.Features {
		root.add(featureEvent(f))
	}
	return root
}

func featureEvent(f *fea.Feature) *Event {
	body := &Scope{}
	for _, c := range f.Classes.Sorted() {
		body.add(&Event{Kind: ClassDefinitionEvent, Name: c.Name, Glyphs: c.Glyphs})
	}
	for _, s := range f.Scripts {
		body.add(&Event{Kind: ScriptEvent, Script: s.Tag})
		for _, lang := range s.Languages {
			body.add(&Event{
				Kind:           LanguageEvent,
				Script:         s.Tag,
				Language:       lang.Tag,
				IncludeDefault: lang.IncludeDefault,
			})
			for _, item := range lang.Lookups {
				switch item := item.(type) {
				case *fea.Lookup:
					body.add(lookupEvent(item))
				case fea.LookupReference:
					body.add(&Event{Kind: LookupReferenceEvent, Name: item.Name})
				}
			}
		}
	}
	return &Event{Kind: FeatureEvent, Name: f.Tag.String(), Body: body}
}

func lookupEvent(l *fea.Lookup) *Event {
	body := &Scope{}
	body.add(&Event{Kind: LookupFlagEvent, Flag: l.Flag})
	for _, st := range l.Subtables {
		body.add(&Event{Kind: SubtableEvent, Subtable: st})
	}
	return &Event{Kind: LookupEvent, Name: l.Name, Body: body}
}
