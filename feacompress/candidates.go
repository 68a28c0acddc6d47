package feacompress

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/featools/fea"
)

// lookupCandidate is a class of structurally equal lookups.
type lookupCandidate struct {
	lookup   *fea.Lookup  // first occurrence
	features *treeset.Set // tags of features using the lookup
	name     string       // assigned name, if promoted
}

// lookupCandidates is an insertion-ordered map of lookup candidates, keyed by
// structural hash. Colliding hashes of unequal lookups are resolved by
// trying the following keys.
type lookupCandidates struct {
	m *linkedhashmap.Map
}

func newLookupCandidates() *lookupCandidates {
	return &lookupCandidates{m: linkedhashmap.New()}
}

// find returns the candidate structurally equal to l, or nil.
func (lc *lookupCandidates) find(l *fea.Lookup) *lookupCandidate {
	cand, _ := lc.slot(l)
	return cand
}

// add returns the candidate structurally equal to l, creating it if needed.
func (lc *lookupCandidates) add(l *fea.Lookup) *lookupCandidate {
	cand, key := lc.slot(l)
	if cand == nil {
		cand = &lookupCandidate{lookup: l, features: treeset.NewWithStringComparator()}
		lc.m.Put(key, cand)
	}
	return cand
}

func (lc *lookupCandidates) slot(l *fea.Lookup) (*lookupCandidate, uint64) {
	key := l.Hash()
	for {
		v, found := lc.m.Get(key)
		if !found {
			return nil, key
		}
		if cand := v.(*lookupCandidate); cand.lookup.Equal(l) {
			return cand, key
		}
		tracer().Debugf("structural hash collision for lookup %q", l.Name)
		key++
	}
}

// all returns the candidates in order of first occurrence.
func (lc *lookupCandidates) all() []*lookupCandidate {
	values := lc.m.Values()
	cands := make([]*lookupCandidate, len(values))
	for i, v := range values {
		cands[i] = v.(*lookupCandidate)
	}
	return cands
}

// classCandidate is an inline glyph group which will become a class.
type classCandidate struct {
	glyphs   []string
	features *treeset.Set // tags of features using the group
	global   bool         // used by a global lookup
	name     string
}

// classCandidates is an insertion-ordered map of class candidates, keyed by
// glyph content.
type classCandidates struct {
	m *linkedhashmap.Map
}

func newClassCandidates() *classCandidates {
	return &classCandidates{m: linkedhashmap.New()}
}

func (cc *classCandidates) add(g fea.Group, features []string, global bool) {
	key := g.Key()
	var cand *classCandidate
	if v, found := cc.m.Get(key); found {
		cand = v.(*classCandidate)
	} else {
		cand = &classCandidate{glyphs: g.Glyphs, features: treeset.NewWithStringComparator()}
		cc.m.Put(key, cand)
	}
	for _, tag := range features {
		cand.features.Add(tag)
	}
	cand.global = cand.global || global
}

func (cc *classCandidates) get(g fea.Group) *classCandidate {
	if v, found := cc.m.Get(g.Key()); found {
		return v.(*classCandidate)
	}
	return nil
}

func (cc *classCandidates) all() []*classCandidate {
	values := cc.m.Values()
	cands := make([]*classCandidate, len(values))
	for i, v := range values {
		cands[i] = v.(*classCandidate)
	}
	return cands
}
