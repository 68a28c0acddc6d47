package feacompress

import (
	"slices"

	"github.com/npillmayer/featools/fea"
)

// PromoteLookups deduplicates the lookups of a table.
//
// Lookups structurally equal to a lookup of another feature are moved to the
// table's global lookups, and every occurrence is replaced by a reference.
// Within a feature, every remaining lookup is named and occurrences after the
// first are replaced by references. Finally, default lookup chains restated
// by a language are elided, see ElideDefaults.
func PromoteLookups(t *fea.Table) error {
	namer := NewNamer(existingNames(t)...)
	if err := promoteGlobal(t, namer); err != nil {
		return err
	}
	for _, f := range t.Features {
		if err := nameFeatureLookups(f, namer); err != nil {
			return err
		}
		if err := ElideDefaults(f); err != nil {
			return err
		}
	}
	return nil
}

// promoteGlobal computes the set of lookups shared between features, names
// them, and only then replaces the occurrences. Naming happens last so that
// it cannot interfere with finding equal lookups.
func promoteGlobal(t *fea.Table, namer *Namer) error {
	cands := newLookupCandidates()
	for _, f := range t.Features {
		for _, l := range f.Lookups() {
			cands.add(l).features.Add(string(f.Tag))
		}
	}
	// compute the assignment
	var promoted []*lookupCandidate
	for _, cand := range cands.all() {
		if cand.features.Size() < 2 {
			continue
		}
		name, err := namer.Assign(joinTags(cand.features, "_"))
		if err != nil {
			return err
		}
		cand.name = name
		promoted = append(promoted, cand)
		tracer().Debugf("lookup %s is shared by features %s", name, describe(cand.features))
	}
	if len(promoted) == 0 {
		return nil
	}
	// apply it
	for _, f := range t.Features {
		forEachLanguage(f, func(lang *fea.Language) {
			for i, item := range lang.Lookups {
				l, ok := item.(*fea.Lookup)
				if !ok {
					continue
				}
				if cand := cands.find(l); cand != nil && cand.name != "" {
					lang.Lookups[i] = fea.LookupReference{Name: cand.name}
				}
			}
		})
	}
	for _, cand := range promoted {
		cand.lookup.Name = cand.name
		t.Lookups = append(t.Lookups, cand.lookup)
	}
	slices.SortStableFunc(t.Lookups, func(a, b *fea.Lookup) int {
		return compareNames(a.Name, b.Name)
	})
	return nil
}

// nameFeatureLookups names the lookups embedded in a feature, in order of
// first occurrence. The first occurrence of a lookup stays in place, later
// structurally equal occurrences become references to it. Lookups which
// already carry a name keep it.
func nameFeatureLookups(f *fea.Feature, namer *Namer) error {
	cands := newLookupCandidates()
	for _, l := range f.Lookups() {
		cands.add(l)
	}
	for _, cand := range cands.all() {
		if cand.lookup.Name != "" {
			cand.name = cand.lookup.Name
			continue
		}
		name, err := namer.Assign(f.Tag.String())
		if err != nil {
			return err
		}
		cand.name = name
	}
	seen := make(map[*lookupCandidate]bool)
	forEachLanguage(f, func(lang *fea.Language) {
		for i, item := range lang.Lookups {
			l, ok := item.(*fea.Lookup)
			if !ok {
				continue
			}
			cand := cands.find(l)
			if seen[cand] {
				lang.Lookups[i] = fea.LookupReference{Name: cand.name}
			}
			seen[cand] = true
		}
	})
	for _, cand := range cands.all() {
		cand.lookup.Name = cand.name
	}
	return nil
}

func forEachLanguage(f *fea.Feature, fn func(*fea.Language)) {
	for _, s := range f.Scripts {
		for _, lang := range s.Languages {
			fn(lang)
		}
	}
}
