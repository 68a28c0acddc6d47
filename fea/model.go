package fea

import (
	"slices"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Table is the decompiled form of a GSUB table.
//
// A lookup appears either in the global Lookups list or embedded in a
// feature, never both.
type Table struct {
	Tag      string     // table identifier, "GSUB"
	Features []*Feature // in declaration order
	Classes  *Classes   // classes shared by more than one feature
	Lookups  []*Lookup  // named lookups shared by more than one feature
}

// NewTable creates an empty table with the given identifier.
func NewTable(tag string) *Table {
	return &Table{Tag: tag, Classes: NewClasses()}
}

// Feature returns the feature with a given tag, or nil.
func (t *Table) Feature(tag Tag) *Feature {
	for _, f := range t.Features {
		if f.Tag == tag {
			return f
		}
	}
	return nil
}

// LanguageSystem is a (script, language) pair a table registers features for.
type LanguageSystem struct {
	Script   Tag
	Language Tag
}

// LanguageSystems collects the distinct (script, language) pairs of all
// features, ordered with default slots first.
func (t *Table) LanguageSystems() []LanguageSystem {
	var systems []LanguageSystem
	for _, f := range t.Features {
		for _, s := range f.Scripts {
			for _, l := range s.Languages {
				ls := LanguageSystem{Script: s.Tag, Language: l.Tag}
				if !slices.Contains(systems, ls) {
					systems = append(systems, ls)
				}
			}
		}
	}
	slices.SortFunc(systems, func(a, b LanguageSystem) int {
		if c := CompareTags(a.Script, b.Script); c != 0 {
			return c
		}
		return CompareTags(a.Language, b.Language)
	})
	return systems
}

// ResolveClass finds the members of a class by name, as seen from within
// feature f. A feature-local class shadows a global one. f may be nil.
func (t *Table) ResolveClass(f *Feature, name string) ([]string, bool) {
	if f != nil && f.Classes != nil {
		if members, ok := f.Classes.Get(name); ok {
			return members, true
		}
	}
	if t.Classes != nil {
		return t.Classes.Get(name)
	}
	return nil, false
}

// ResolveLookup finds the materialized lookup a name refers to, as seen from
// within feature f. Feature-local lookups are searched first. f may be nil.
func (t *Table) ResolveLookup(f *Feature, name string) (*Lookup, bool) {
	if f != nil {
		for _, l := range f.Lookups() {
			if l.Name == name {
				return l, true
			}
		}
	}
	for _, l := range t.Lookups {
		if l.Name == name {
			return l, true
		}
	}
	tracer().Debugf("lookup %q cannot be resolved", name)
	return nil, false
}

// Feature is a named bundle of lookups, selected by script and language.
type Feature struct {
	Tag     Tag
	Classes *Classes // classes used by this feature only
	Scripts []*Script
}

// NewFeature creates an empty feature.
func NewFeature(tag Tag) *Feature {
	return &Feature{Tag: tag, Classes: NewClasses()}
}

// Script returns the script with a given tag, or nil.
func (f *Feature) Script(tag Tag) *Script {
	for _, s := range f.Scripts {
		if s.Tag == tag {
			return s
		}
	}
	return nil
}

// Lookups lists the materialized lookups embedded in a feature, in the order
// of their appearance. References are not included.
func (f *Feature) Lookups() []*Lookup {
	var lookups []*Lookup
	for _, s := range f.Scripts {
		for _, l := range s.Languages {
			for _, item := range l.Lookups {
				if lookup, ok := item.(*Lookup); ok {
					lookups = append(lookups, lookup)
				}
			}
		}
	}
	return lookups
}

// Script groups the languages of a feature for one script tag.
type Script struct {
	Tag       Tag // Default for the default script
	Languages []*Language
}

// Language returns the language with a given tag, or nil.
func (s *Script) Language(tag Tag) *Language {
	for _, l := range s.Languages {
		if l.Tag == tag {
			return l
		}
	}
	return nil
}

// Language holds the lookups of a feature for one (script, language) pair.
//
// IncludeDefault is false if the language does not inherit the default
// lookup chain of its script. Elided records that the default chain has
// already been removed from Lookups.
type Language struct {
	Tag            Tag // Default for the default language
	IncludeDefault bool
	Elided         bool
	Lookups        []LookupItem
}

// NewLanguage creates an empty language which includes the default chain.
func NewLanguage(tag Tag) *Language {
	return &Language{Tag: tag, IncludeDefault: true}
}

// LookupNames lists the names of all lookups and references of a language.
func (l *Language) LookupNames() []string {
	names := make([]string, len(l.Lookups))
	for i, item := range l.Lookups {
		names[i] = item.LookupName()
	}
	return names
}

// LookupItem is either a materialized *Lookup or a LookupReference.
type LookupItem interface {
	LookupName() string
	isLookupItem()
}

// Lookup is a group of subtables sharing a lookup type and flags.
//
// Name is empty until the lookup is named by compression.
type Lookup struct {
	Name      string
	Type      LookupType
	Flag      LookupFlag
	Subtables []Subtable
}

// LookupName returns the name of the lookup.
func (l *Lookup) LookupName() string { return l.Name }
func (l *Lookup) isLookupItem()      {}

// LookupReference refers to a named lookup defined elsewhere in the same
// feature or in the table's global lookups.
type LookupReference struct {
	Name string
}

// LookupName returns the name of the referenced lookup.
func (r LookupReference) LookupName() string { return r.Name }
func (r LookupReference) isLookupItem()      {}

// --- Glyph groups and classes ----------------------------------------------

// Group is one position in a rule: either an inline list of glyph names or a
// reference to a named class.
type Group struct {
	Glyphs []string
	Ref    string // class name; if set, Glyphs is empty
}

// Glyphs creates an inline group.
func Glyphs(glyphs ...string) Group {
	return Group{Glyphs: glyphs}
}

// ClassReference creates a group referring to a named class.
func ClassReference(name string) Group {
	return Group{Ref: name}
}

// IsClassReference is true if the group refers to a named class.
func (g Group) IsClassReference() bool {
	return g.Ref != ""
}

// Len returns the number of inline glyphs.
func (g Group) Len() int {
	return len(g.Glyphs)
}

// Key is the content key of an inline group. Two inline groups have equal
// keys exactly if their glyph sequences are equal.
func (g Group) Key() string {
	return strings.Join(g.Glyphs, " ")
}

// Equal compares two groups by content.
func (g Group) Equal(o Group) bool {
	return g.Ref == o.Ref && slices.Equal(g.Glyphs, o.Glyphs)
}

func (g Group) String() string {
	if g.IsClassReference() {
		return g.Ref
	}
	if len(g.Glyphs) == 1 {
		return g.Glyphs[0]
	}
	return "[" + strings.Join(g.Glyphs, " ") + "]"
}

// Class is a named, ordered set of glyph names.
type Class struct {
	Name   string
	Glyphs []string
}

// Classes is a collection of classes, addressable by name and iterable in
// insertion order.
type Classes struct {
	m *linkedhashmap.Map // name -> []string
}

// NewClasses creates an empty class collection.
func NewClasses() *Classes {
	return &Classes{m: linkedhashmap.New()}
}

// Add registers a class. An existing class of the same name is replaced and
// keeps its position.
func (c *Classes) Add(name string, glyphs []string) {
	c.m.Put(name, glyphs)
}

// Get returns the members of a named class.
func (c *Classes) Get(name string) ([]string, bool) {
	if c == nil || c.m == nil {
		return nil, false
	}
	v, ok := c.m.Get(name)
	if !ok {
		return nil, false
	}
	return v.([]string), true
}

// Len returns the number of classes.
func (c *Classes) Len() int {
	if c == nil || c.m == nil {
		return 0
	}
	return c.m.Size()
}

// All returns the classes in insertion order.
func (c *Classes) All() []Class {
	if c == nil || c.m == nil {
		return nil
	}
	classes := make([]Class, 0, c.m.Size())
	it := c.m.Iterator()
	for it.Next() {
		classes = append(classes, Class{Name: it.Key().(string), Glyphs: it.Value().([]string)})
	}
	return classes
}

// Sorted returns the classes ordered by name.
func (c *Classes) Sorted() []Class {
	classes := c.All()
	slices.SortFunc(classes, func(a, b Class) int {
		return strings.Compare(a.Name, b.Name)
	})
	return classes
}

// Names returns the class names in insertion order.
func (c *Classes) Names() []string {
	names := make([]string, 0, c.Len())
	for _, cl := range c.All() {
		names = append(names, cl.Name)
	}
	return names
}
