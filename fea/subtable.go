package fea

import (
	"hash"
	"hash/fnv"
	"slices"
)

// Subtable is one batch of same-shaped rules within a lookup. It is a closed
// sum type over *SingleSubst, *AlternateSubst, *LigatureSubst and
// *ChainingContext.
type Subtable interface {
	Type() LookupType
	equal(Subtable) bool
	hashInto(hash.Hash64)
}

// SingleSubst replaces each glyph of Target by the glyph at the same position
// of Substitution (GSUB type 1).
type SingleSubst struct {
	Target       Group
	Substitution Group
}

// Type returns SingleSubstitution.
func (s *SingleSubst) Type() LookupType { return SingleSubstitution }

func (s *SingleSubst) equal(other Subtable) bool {
	o, ok := other.(*SingleSubst)
	return ok && s.Target.Equal(o.Target) && s.Substitution.Equal(o.Substitution)
}

func (s *SingleSubst) hashInto(h hash.Hash64) {
	hashGroup(h, s.Target)
	hashGroup(h, s.Substitution)
}

// AlternateSet lists the alternates for one glyph.
type AlternateSet struct {
	Glyph      string
	Alternates []string
}

// AlternateSubst offers alternates for glyphs (GSUB type 3).
type AlternateSubst struct {
	Sets []AlternateSet
}

// Type returns AlternateSubstitution.
func (s *AlternateSubst) Type() LookupType { return AlternateSubstitution }

func (s *AlternateSubst) equal(other Subtable) bool {
	o, ok := other.(*AlternateSubst)
	if !ok {
		return false
	}
	return slices.EqualFunc(s.Sets, o.Sets, func(a, b AlternateSet) bool {
		return a.Glyph == b.Glyph && slices.Equal(a.Alternates, b.Alternates)
	})
}

func (s *AlternateSubst) hashInto(h hash.Hash64) {
	for _, set := range s.Sets {
		hashString(h, set.Glyph)
		hashStrings(h, set.Alternates)
	}
}

// Ligature replaces a sequence of component glyphs by one glyph.
type Ligature struct {
	Components []string // including the first glyph
	Glyph      string
}

// LigatureSubst joins glyph sequences into ligatures (GSUB type 4).
type LigatureSubst struct {
	Ligatures []Ligature
}

// Type returns LigatureSubstitution.
func (s *LigatureSubst) Type() LookupType { return LigatureSubstitution }

func (s *LigatureSubst) equal(other Subtable) bool {
	o, ok := other.(*LigatureSubst)
	if !ok {
		return false
	}
	return slices.EqualFunc(s.Ligatures, o.Ligatures, func(a, b Ligature) bool {
		return a.Glyph == b.Glyph && slices.Equal(a.Components, b.Components)
	})
}

func (s *LigatureSubst) hashInto(h hash.Hash64) {
	for _, lig := range s.Ligatures {
		hashStrings(h, lig.Components)
		hashString(h, lig.Glyph)
	}
}

// ChainingContext is a substitution in the context of backtrack and
// lookahead glyphs (GSUB type 6). Backtrack is stored in reading order.
//
// With an empty Substitution the rule is an "ignore" rule for Input.
type ChainingContext struct {
	Backtrack    []Group
	Input        []Group
	Lookahead    []Group
	Substitution []Group
}

// Type returns ChainingContextSubstitution.
func (s *ChainingContext) Type() LookupType { return ChainingContextSubstitution }

// IsIgnore is true for rules which suppress matching of the input sequence.
func (s *ChainingContext) IsIgnore() bool {
	return len(s.Substitution) == 0
}

func (s *ChainingContext) equal(other Subtable) bool {
	o, ok := other.(*ChainingContext)
	if !ok {
		return false
	}
	eq := func(a, b []Group) bool { return slices.EqualFunc(a, b, Group.Equal) }
	return eq(s.Backtrack, o.Backtrack) && eq(s.Input, o.Input) &&
		eq(s.Lookahead, o.Lookahead) && eq(s.Substitution, o.Substitution)
}

func (s *ChainingContext) hashInto(h hash.Hash64) {
	for _, seq := range [][]Group{s.Backtrack, s.Input, s.Lookahead, s.Substitution} {
		hashString(h, "|")
		for _, g := range seq {
			hashGroup(h, g)
		}
	}
}

// --- Structural equality and hashing ---------------------------------------

// Equal compares two lookups structurally: type, flags and subtables. Names
// are not compared.
func (l *Lookup) Equal(o *Lookup) bool {
	if l == o {
		return true
	}
	if l == nil || o == nil {
		return false
	}
	if l.Type != o.Type || l.Flag != o.Flag || len(l.Subtables) != len(o.Subtables) {
		return false
	}
	for i, st := range l.Subtables {
		if !st.equal(o.Subtables[i]) {
			return false
		}
	}
	return true
}

// Hash computes a structural hash of a lookup, consistent with Equal. It is
// stable across runs and does not depend on the lookup's name.
func (l *Lookup) Hash() uint64 {
	h := fnv.New64a()
	hashString(h, l.Type.String())
	hashString(h, l.Flag.String())
	for _, st := range l.Subtables {
		hashString(h, st.Type().String())
		st.hashInto(h)
	}
	return h.Sum64()
}

func hashString(h hash.Hash64, s string) {
	h.Write([]byte(s))
	h.Write([]byte{0})
}

func hashStrings(h hash.Hash64, s []string) {
	for _, x := range s {
		hashString(h, x)
	}
	h.Write([]byte{1})
}

func hashGroup(h hash.Hash64, g Group) {
	if g.IsClassReference() {
		hashString(h, "@"+g.Ref)
		return
	}
	hashStrings(h, g.Glyphs)
}
