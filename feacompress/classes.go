package feacompress

import (
	"github.com/npillmayer/featools/fea"
)

// ExtractClasses replaces inline glyph groups of two or more glyphs by
// references to named classes.
//
// Groups are collected from single substitutions and chaining context rules;
// alternate and ligature substitutions keep their glyphs inline. Groups of
// equal content share one class. A class used by more than one feature, or by
// a global lookup, is registered with the table, all others with the single
// feature using them. Class names are assigned in order of first occurrence.
func ExtractClasses(t *fea.Table) error {
	users := globalLookupUsers(t)
	cands := newClassCandidates()
	for _, l := range t.Lookups {
		forEachCandidateGroup(l, func(g *fea.Group) {
			cands.add(*g, users[l.Name], true)
		})
	}
	for _, f := range t.Features {
		tag := []string{string(f.Tag)}
		for _, l := range f.Lookups() {
			forEachCandidateGroup(l, func(g *fea.Group) {
				cands.add(*g, tag, false)
			})
		}
	}
	all := cands.all()
	if len(all) == 0 {
		return nil
	}
	namer := NewNamer(existingClassNames(t)...)
	for _, cand := range all {
		name, err := namer.Assign("@" + joinTags(cand.features, "_"))
		if err != nil {
			return err
		}
		cand.name = name
		if cand.global || cand.features.Size() != 1 {
			t.Classes.Add(name, cand.glyphs)
			continue
		}
		f := t.Feature(fea.Tag(cand.features.Values()[0].(string)))
		f.Classes.Add(name, cand.glyphs)
	}
	rewrite := func(g *fea.Group) {
		if cand := cands.get(*g); cand != nil {
			*g = fea.ClassReference(cand.name)
		}
	}
	for _, l := range t.Lookups {
		forEachCandidateGroup(l, rewrite)
	}
	for _, f := range t.Features {
		for _, l := range f.Lookups() {
			forEachCandidateGroup(l, rewrite)
		}
	}
	return nil
}

// globalLookupUsers maps the names of global lookups to the tags of features
// referencing them.
func globalLookupUsers(t *fea.Table) map[string][]string {
	users := make(map[string][]string)
	for _, f := range t.Features {
		forEachLanguage(f, func(lang *fea.Language) {
			for _, item := range lang.Lookups {
				if ref, ok := item.(fea.LookupReference); ok {
					users[ref.Name] = append(users[ref.Name], string(f.Tag))
				}
			}
		})
	}
	return users
}

// forEachCandidateGroup calls fn for every inline group of at least two
// glyphs within the subtables of a lookup.
func forEachCandidateGroup(l *fea.Lookup, fn func(*fea.Group)) {
	visit := func(g *fea.Group) {
		if !g.IsClassReference() && g.Len() >= 2 {
			fn(g)
		}
	}
	visitAll := func(seq []fea.Group) {
		for i := range seq {
			visit(&seq[i])
		}
	}
	for _, st := range l.Subtables {
		switch st := st.(type) {
		case *fea.SingleSubst:
			visit(&st.Target)
			visit(&st.Substitution)
		case *fea.ChainingContext:
			visitAll(st.Backtrack)
			visitAll(st.Input)
			visitAll(st.Lookahead)
			visitAll(st.Substitution)
		}
	}
}
