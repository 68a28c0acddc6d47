package feadecomp

import (
	"fmt"
	"slices"
	"strings"

	"github.com/npillmayer/featools/fea"
	"github.com/npillmayer/featools/feacompress"
)

// Option configures a decompilation.
type Option func(*config)

type config struct {
	exclude map[string]bool
	raw     bool
}

// ExcludeFeatures skips all records of the given feature tags.
func ExcludeFeatures(tags ...string) Option {
	return func(c *config) {
		for _, tag := range tags {
			c.exclude[tag] = true
		}
	}
}

// Raw returns the decompiled table without compressing it. Every lookup
// reference of the font is then decompiled into its own, unnamed Lookup.
func Raw() Option {
	return func(c *config) {
		c.raw = true
	}
}

// Decompile builds the structural model of a substitution table from the
// records of src. Unless Raw is given, the result is compressed with
// feacompress.Compress.
//
// Decompile fails with fea.ErrUnknownTable for a table other than GSUB or
// GPOS, and with fea.ErrUnsupportedFeature for GPOS tables and for lookup
// types or subtable formats which are not modelled.
func Decompile(src TableSource, opts ...Option) (*fea.Table, error) {
	conf := config{exclude: make(map[string]bool)}
	for _, opt := range opts {
		opt(&conf)
	}
	switch tag := src.TableTag(); tag {
	case "GSUB":
	case "GPOS":
		return nil, fea.Unsupported(tag, "", "positioning tables are not supported")
	default:
		return nil, &fea.Error{Kind: fea.UnknownTable, Table: tag, Issue: fmt.Sprintf("unknown table %q", tag)}
	}
	d := &decompiler{src: src, tag: src.TableTag(), conf: conf}
	table, err := d.decompile()
	if err != nil {
		return nil, err
	}
	if conf.raw {
		return table, nil
	}
	if err = feacompress.Compress(table); err != nil {
		return nil, err
	}
	return table, nil
}

type decompiler struct {
	src  TableSource
	tag  string
	conf config
}

// langSysRef is a feature as referenced from one language system.
type langSysRef struct {
	script  fea.Tag
	lang    fea.Tag
	lookups []int
}

func (d *decompiler) decompile() (*fea.Table, error) {
	features, err := d.collect()
	if err != nil {
		return nil, err
	}
	table := fea.NewTable(d.tag)
	for _, tag := range featureOrder(features) {
		refs := features[tag]
		slices.SortStableFunc(refs, compareLangSysRefs)
		feature := fea.NewFeature(fea.Tag(tag))
		var script *fea.Script
		for _, ref := range refs {
			if script == nil || script.Tag != ref.script {
				script = &fea.Script{Tag: ref.script}
				feature.Scripts = append(feature.Scripts, script)
			}
			lang := fea.NewLanguage(ref.lang)
			for _, inx := range ref.lookups {
				lookup, err := d.lookup(inx)
				if err != nil {
					return nil, err
				}
				lang.Lookups = append(lang.Lookups, lookup)
			}
			script.Languages = append(script.Languages, lang)
		}
		table.Features = append(table.Features, feature)
	}
	return table, nil
}

// collect gathers, per feature tag, the language systems referencing it.
func (d *decompiler) collect() (map[string][]langSysRef, error) {
	features := make(map[string][]langSysRef)
	add := func(script, lang fea.Tag, featureIndexes []int) error {
		for _, inx := range featureIndexes {
			rec, err := d.src.FeatureRecord(inx)
			if err != nil {
				return fmt.Errorf("feature record %d: %w", inx, err)
			}
			if d.conf.exclude[rec.Tag] {
				continue
			}
			features[rec.Tag] = append(features[rec.Tag], langSysRef{
				script:  script,
				lang:    lang,
				lookups: rec.Lookups,
			})
		}
		return nil
	}
	for _, srec := range d.src.ScriptRecords() {
		script := fea.T(srec.Tag)
		if err := add(script, fea.Default, srec.DefaultFeatures); err != nil {
			return nil, err
		}
		for _, lrec := range srec.Languages {
			if err := add(script, fea.Tag(lrec.Tag), lrec.Features); err != nil {
				return nil, err
			}
		}
	}
	return features, nil
}

// featureOrder sorts feature tags by their sorted set of lookup indexes,
// then by tag.
func featureOrder(features map[string][]langSysRef) []string {
	type sortKey struct {
		indexes []int
		tag     string
	}
	keys := make([]sortKey, 0, len(features))
	for tag, refs := range features {
		var indexes []int
		for _, ref := range refs {
			indexes = append(indexes, ref.lookups...)
		}
		slices.Sort(indexes)
		keys = append(keys, sortKey{indexes: slices.Compact(indexes), tag: tag})
	}
	slices.SortFunc(keys, func(a, b sortKey) int {
		if c := slices.Compare(a.indexes, b.indexes); c != 0 {
			return c
		}
		return strings.Compare(a.tag, b.tag)
	})
	order := make([]string, len(keys))
	for i, k := range keys {
		order[i] = k.tag
		tracer().Debugf("feature %s references lookups %v", k.tag, k.indexes)
	}
	return order
}

func compareLangSysRefs(a, b langSysRef) int {
	if c := fea.CompareTags(a.script, b.script); c != 0 {
		return c
	}
	if c := fea.CompareTags(a.lang, b.lang); c != 0 {
		return c
	}
	return slices.Compare(a.lookups, b.lookups)
}

// --- Lookups ---------------------------------------------------------------

func (d *decompiler) lookup(inx int) (*fea.Lookup, error) {
	rec, err := d.src.LookupRecord(inx)
	if err != nil {
		return nil, fmt.Errorf("lookup record %d: %w", inx, err)
	}
	tracer().Debugf("decompiling lookup %d of type %d with %d subtables", inx, rec.Type, len(rec.Subtables))
	return d.decompileLookup(rec)
}

func (d *decompiler) decompileLookup(rec LookupRecord) (*fea.Lookup, error) {
	lt := fea.LookupType(rec.Type)
	lookup := &fea.Lookup{
		Type: lt,
		Flag: fea.FlagFromBits(rec.Flag),
	}
	if lt == fea.ExtensionSubstitution {
		return lookup, nil
	}
	if !lt.Supported() {
		return nil, fea.Unsupported(d.tag, section(rec.Type), "lookup type %d is not supported", rec.Type)
	}
	for _, st := range rec.Subtables {
		subtable, err := d.subtable(lt, st)
		if err != nil {
			return nil, err
		}
		lookup.Subtables = append(lookup.Subtables, subtable)
	}
	return lookup, nil
}

func (d *decompiler) subtable(lt fea.LookupType, rec SubtableRecord) (fea.Subtable, error) {
	switch st := rec.(type) {
	case *SingleSubstRecord:
		if lt == fea.SingleSubstitution {
			return singleSubst(st), nil
		}
	case *AlternateSubstRecord:
		if lt == fea.AlternateSubstitution {
			return alternateSubst(st), nil
		}
	case *LigatureSubstRecord:
		if lt == fea.LigatureSubstitution {
			return d.ligatureSubst(st)
		}
	case *ChainContextRecord:
		if lt == fea.ChainingContextSubstitution {
			return d.chainContext(st)
		}
	case *OpaqueRecord:
		return nil, fea.Unsupported(d.tag, section(st.Type), "subtable of type %d format %d is not supported",
			st.Type, st.Format)
	}
	return nil, d.malformed(section(int(lt)), "subtable %T does not belong to a lookup of type %d", rec, lt)
}

func singleSubst(rec *SingleSubstRecord) *fea.SingleSubst {
	targets := sortedKeys(rec.Mapping)
	substs := make([]string, len(targets))
	for i, g := range targets {
		substs[i] = rec.Mapping[g]
	}
	return &fea.SingleSubst{
		Target:       fea.Glyphs(targets...),
		Substitution: fea.Glyphs(substs...),
	}
}

func alternateSubst(rec *AlternateSubstRecord) *fea.AlternateSubst {
	st := &fea.AlternateSubst{}
	for _, g := range sortedKeys(rec.Alternates) {
		st.Sets = append(st.Sets, fea.AlternateSet{
			Glyph:      g,
			Alternates: slices.Clone(rec.Alternates[g]),
		})
	}
	return st
}

func (d *decompiler) ligatureSubst(rec *LigatureSubstRecord) (*fea.LigatureSubst, error) {
	st := &fea.LigatureSubst{}
	seen := make(map[string]bool)
	for _, first := range sortedKeys(rec.Ligatures) {
		for _, lig := range rec.Ligatures[first] {
			components := append([]string{first}, lig.Components...)
			key := strings.Join(components, " ")
			if seen[key] {
				return nil, d.malformed(section(4), "duplicate ligature sequence [%s]", key)
			}
			seen[key] = true
			st.Ligatures = append(st.Ligatures, fea.Ligature{
				Components: components,
				Glyph:      lig.Glyph,
			})
		}
	}
	return st, nil
}

// chainContext decompiles a format 3 chaining context rule. A rule without
// a nested lookup is an ignore rule. Otherwise the single nested lookup is
// decompiled and its rules are narrowed down to the input sequence.
func (d *decompiler) chainContext(rec *ChainContextRecord) (*fea.ChainingContext, error) {
	sect := section(6)
	if rec.Format != 3 {
		return nil, fea.Unsupported(d.tag, sect, "chaining context format %d is not supported", rec.Format)
	}
	input := readCoverages(rec.Input, false)
	st := &fea.ChainingContext{
		Backtrack: groups(readCoverages(rec.Backtrack, true)),
		Lookahead: groups(readCoverages(rec.Lookahead, false)),
	}
	switch len(rec.SubstLookups) {
	case 0:
		st.Input = groups(input)
		return st, nil
	case 1:
	default:
		return nil, d.malformed(sect, "rule has %d nested lookups, expected at most one", len(rec.SubstLookups))
	}
	ref := rec.SubstLookups[0]
	if ref.SequenceIndex != 0 {
		return nil, d.malformed(sect, "nested lookup applied at input position %d", ref.SequenceIndex)
	}
	nestedRec, err := d.src.LookupRecord(ref.LookupIndex)
	if err != nil {
		return nil, fmt.Errorf("nested lookup record %d: %w", ref.LookupIndex, err)
	}
	switch fea.LookupType(nestedRec.Type) {
	case fea.SingleSubstitution, fea.LigatureSubstitution:
	default:
		return nil, fea.Unsupported(d.tag, sect, "nested lookup of type %d is not supported", nestedRec.Type)
	}
	nested, err := d.decompileLookup(nestedRec)
	if err != nil {
		return nil, err
	}
	if len(nested.Subtables) != 1 {
		return nil, d.malformed(sect, "nested lookup %d has %d subtables, expected one",
			ref.LookupIndex, len(nested.Subtables))
	}
	switch nst := nested.Subtables[0].(type) {
	case *fea.SingleSubst:
		if len(input) != 1 {
			return nil, d.malformed(sect, "single substitution over %d input positions", len(input))
		}
		var targets, substs []string
		for i, g := range nst.Target.Glyphs {
			if slices.Contains(input[0], g) {
				targets = append(targets, g)
				substs = append(substs, nst.Substitution.Glyphs[i])
			}
		}
		if len(targets) == 0 {
			return nil, d.malformed(sect, "nested single substitution does not cover input %v", input[0])
		}
		st.Input = []fea.Group{fea.Glyphs(targets...)}
		st.Substitution = []fea.Group{fea.Glyphs(substs...)}
	case *fea.LigatureSubst:
		var seq []string
		for _, in := range input {
			if len(in) != 1 {
				return nil, d.malformed(sect, "ligature input position with %d glyphs", len(in))
			}
			seq = append(seq, in[0])
		}
		found := false
		for _, lig := range nst.Ligatures {
			if slices.Equal(lig.Components, seq) {
				st.Input = groups(input)
				st.Substitution = []fea.Group{fea.Glyphs(lig.Glyph)}
				found = true
				break
			}
		}
		if !found {
			return nil, d.malformed(sect, "nested ligature substitution does not match input %v", seq)
		}
	}
	return st, nil
}

// --- Helpers ---------------------------------------------------------------

func (d *decompiler) malformed(sect string, format string, args ...any) error {
	err := fea.Malformed(d.tag, sect, format, args...)
	tracer().Errorf("%v", err)
	return err
}

func section(lookupType int) string {
	return fmt.Sprintf("LookupType%d", lookupType)
}

func groups(seq [][]string) []fea.Group {
	if len(seq) == 0 {
		return nil
	}
	g := make([]fea.Group, len(seq))
	for i, glyphs := range seq {
		g[i] = fea.Glyphs(glyphs...)
	}
	return g
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
