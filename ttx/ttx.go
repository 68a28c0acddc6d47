package ttx

import (
	"encoding/xml"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/npillmayer/featools/feadecomp"
)

// noFeature marks an absent required feature.
const noFeature = 0xFFFF

// Table is a layout table read from a TTX dump. It implements
// feadecomp.TableSource.
type Table struct {
	tag      string
	scripts  []feadecomp.ScriptRecord
	features []feadecomp.FeatureRecord
	lookups  []feadecomp.LookupRecord
}

var _ feadecomp.TableSource = (*Table)(nil)

// ParseFile reads a TTX dump from a file.
func ParseFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse reads a TTX dump. If the dump contains no GSUB table but a GPOS
// table, the result is an empty table tagged "GPOS".
func Parse(data []byte) (*Table, error) {
	var font ttxFont
	if err := xml.Unmarshal(data, &font); err != nil {
		return nil, fmt.Errorf("ttx: %w", err)
	}
	if font.GSUB == nil {
		if font.GPOS != nil {
			return &Table{tag: "GPOS"}, nil
		}
		return nil, fmt.Errorf("ttx: no GSUB table in dump")
	}
	t := &Table{tag: "GSUB"}
	var err error
	if t.scripts, err = readScripts(font.GSUB.ScriptList); err != nil {
		return nil, err
	}
	if t.features, err = readFeatures(font.GSUB.FeatureList); err != nil {
		return nil, err
	}
	if t.lookups, err = readLookups(font.GSUB.LookupList); err != nil {
		return nil, err
	}
	tracer().Debugf("ttx: %d scripts, %d features, %d lookups",
		len(t.scripts), len(t.features), len(t.lookups))
	return t, nil
}

// TableTag returns "GSUB" or "GPOS".
func (t *Table) TableTag() string {
	return t.tag
}

// ScriptRecords returns the script list in document order.
func (t *Table) ScriptRecords() []feadecomp.ScriptRecord {
	return t.scripts
}

// FeatureRecord returns the feature at a feature list index.
func (t *Table) FeatureRecord(index int) (feadecomp.FeatureRecord, error) {
	if index < 0 || index >= len(t.features) {
		return feadecomp.FeatureRecord{}, fmt.Errorf("ttx: feature index %d out of range [0,%d)",
			index, len(t.features))
	}
	return t.features[index], nil
}

// LookupRecord returns the lookup at a lookup list index.
func (t *Table) LookupRecord(index int) (feadecomp.LookupRecord, error) {
	if index < 0 || index >= len(t.lookups) {
		return feadecomp.LookupRecord{}, fmt.Errorf("ttx: lookup index %d out of range [0,%d)",
			index, len(t.lookups))
	}
	return t.lookups[index], nil
}

// --- Script and feature lists ----------------------------------------------

func readScripts(list ttxScriptList) ([]feadecomp.ScriptRecord, error) {
	records := slices.Clone(list.Records)
	slices.SortStableFunc(records, func(a, b ttxScriptRecord) int { return a.Index - b.Index })
	scripts := make([]feadecomp.ScriptRecord, 0, len(records))
	for _, rec := range records {
		script := feadecomp.ScriptRecord{Tag: rec.Tag.Value}
		if rec.Script.DefaultLangSys != nil {
			features, err := langSysFeatures(*rec.Script.DefaultLangSys)
			if err != nil {
				return nil, fmt.Errorf("ttx: script %q: %w", rec.Tag.Value, err)
			}
			script.DefaultFeatures = features
		}
		langs := slices.Clone(rec.Script.LangSysRecords)
		slices.SortStableFunc(langs, func(a, b ttxLangSysRecord) int { return a.Index - b.Index })
		for _, lang := range langs {
			features, err := langSysFeatures(lang.LangSys)
			if err != nil {
				return nil, fmt.Errorf("ttx: script %q, language %q: %w", rec.Tag.Value, lang.Tag.Value, err)
			}
			script.Languages = append(script.Languages, feadecomp.LangSysRecord{
				Tag:      lang.Tag.Value,
				Features: features,
			})
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}

// langSysFeatures lists the feature indexes of a language system, the
// required feature first.
func langSysFeatures(ls ttxLangSys) ([]int, error) {
	features, err := indexValues(ls.FeatureIndex)
	if err != nil {
		return nil, err
	}
	if ls.ReqFeatureIndex.Value != "" {
		req, err := ls.ReqFeatureIndex.Int()
		if err != nil {
			return nil, fmt.Errorf("invalid ReqFeatureIndex: %w", err)
		}
		if req != noFeature && !slices.Contains(features, req) {
			features = append([]int{req}, features...)
		}
	}
	return features, nil
}

func readFeatures(list ttxFeatureList) ([]feadecomp.FeatureRecord, error) {
	records := slices.Clone(list.Records)
	slices.SortStableFunc(records, func(a, b ttxFeatureRecord) int { return a.Index - b.Index })
	features := make([]feadecomp.FeatureRecord, 0, len(records))
	for _, rec := range records {
		lookups, err := indexValues(rec.Feature.LookupListIndex)
		if err != nil {
			return nil, fmt.Errorf("ttx: feature %q: %w", rec.Tag.Value, err)
		}
		features = append(features, feadecomp.FeatureRecord{Tag: rec.Tag.Value, Lookups: lookups})
	}
	return features, nil
}

// --- Lookup list -----------------------------------------------------------

func readLookups(list ttxLookupList) ([]feadecomp.LookupRecord, error) {
	lookups := slices.Clone(list.Lookups)
	slices.SortStableFunc(lookups, func(a, b ttxLookup) int { return a.Index - b.Index })
	records := make([]feadecomp.LookupRecord, 0, len(lookups))
	for _, lk := range lookups {
		rec, err := readLookup(lk)
		if err != nil {
			return nil, fmt.Errorf("ttx: lookup %d: %w", lk.Index, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readLookup(lk ttxLookup) (feadecomp.LookupRecord, error) {
	lt, err := lk.LookupType.Int()
	if err != nil {
		return feadecomp.LookupRecord{}, fmt.Errorf("invalid LookupType: %w", err)
	}
	rec := feadecomp.LookupRecord{Type: lt}
	if lk.LookupFlag.Value != "" {
		n, err := lk.LookupFlag.Int()
		if err != nil {
			return rec, fmt.Errorf("invalid LookupFlag: %w", err)
		}
		rec.Flag = uint16(n)
	}
	if lt != 7 {
		rec.Subtables, err = readSubtables(lt, subtableSet{
			single:    lk.SingleSubst,
			alternate: lk.AlternateSubst,
			ligature:  lk.LigatureSubst,
			chain:     lk.ChainContextSubst,
			other:     lk.Other,
		})
		return rec, err
	}
	// extension subtables all wrap the same lookup type
	for i, ext := range lk.ExtensionSubst {
		et, err := ext.ExtensionType.Int()
		if err != nil {
			return rec, fmt.Errorf("invalid ExtensionLookupType: %w", err)
		}
		if i == 0 {
			rec.Type = et
		} else if et != rec.Type {
			return rec, fmt.Errorf("extension subtables wrap types %d and %d", rec.Type, et)
		}
		subtables, err := readSubtables(et, subtableSet{
			single:    ext.SingleSubst,
			alternate: ext.AlternateSubst,
			ligature:  ext.LigatureSubst,
			chain:     ext.ChainContextSubst,
			other:     ext.Other,
		})
		if err != nil {
			return rec, err
		}
		rec.Subtables = append(rec.Subtables, subtables...)
	}
	return rec, nil
}

type subtableSet struct {
	single    []ttxSingleSubst
	alternate []ttxAlternateSubst
	ligature  []ttxLigatureSubst
	chain     []ttxChainContextSubst
	other     []ttxOpaque
}

func readSubtables(lookupType int, set subtableSet) ([]feadecomp.SubtableRecord, error) {
	var subtables []feadecomp.SubtableRecord
	switch lookupType {
	case 1:
		for _, st := range set.single {
			mapping := make(map[string]string, len(st.Substitutions))
			for _, s := range st.Substitutions {
				if s.In != "" && s.Out != "" {
					mapping[s.In] = s.Out
				}
			}
			subtables = append(subtables, &feadecomp.SingleSubstRecord{Mapping: mapping})
		}
	case 3:
		for _, st := range set.alternate {
			alts := make(map[string][]string, len(st.AlternateSet))
			for _, as := range st.AlternateSet {
				g := strings.TrimSpace(as.Glyph)
				if g == "" {
					continue
				}
				var list []string
				for _, a := range as.Alternates {
					if a.Glyph != "" {
						list = append(list, a.Glyph)
					}
				}
				alts[g] = list
			}
			subtables = append(subtables, &feadecomp.AlternateSubstRecord{Alternates: alts})
		}
	case 4:
		for _, st := range set.ligature {
			ligs := make(map[string][]feadecomp.LigatureRecord, len(st.LigatureSet))
			for _, ls := range st.LigatureSet {
				first := strings.TrimSpace(ls.Glyph)
				if first == "" {
					continue
				}
				for _, lig := range ls.Ligatures {
					if lig.Glyph == "" {
						continue
					}
					ligs[first] = append(ligs[first], feadecomp.LigatureRecord{
						Components: splitGlyphList(lig.Components),
						Glyph:      lig.Glyph,
					})
				}
			}
			subtables = append(subtables, &feadecomp.LigatureSubstRecord{Ligatures: ligs})
		}
	case 6:
		for _, st := range set.chain {
			rec, err := readChainContext(st)
			if err != nil {
				return nil, err
			}
			subtables = append(subtables, rec)
		}
	default:
		for _, st := range set.other {
			format, _ := strconv.Atoi(st.FormatAttr)
			subtables = append(subtables, &feadecomp.OpaqueRecord{Type: lookupType, Format: format})
		}
	}
	return subtables, nil
}

func readChainContext(st ttxChainContextSubst) (*feadecomp.ChainContextRecord, error) {
	format := 3
	if st.FormatAttr != "" {
		n, err := strconv.Atoi(st.FormatAttr)
		if err != nil {
			return nil, fmt.Errorf("invalid ChainContextSubst format %q", st.FormatAttr)
		}
		format = n
	}
	rec := &feadecomp.ChainContextRecord{Format: format}
	if format != 3 {
		return rec, nil
	}
	rec.Backtrack = coverages(st.BacktrackCoverage)
	rec.Input = coverages(st.InputCoverage)
	rec.Lookahead = coverages(st.LookAheadCoverage)
	records := slices.Clone(st.SubstLookupRecord)
	slices.SortStableFunc(records, func(a, b ttxSubstLookupRecord) int { return a.Index - b.Index })
	for _, r := range records {
		si, err := r.SequenceIndex.Int()
		if err != nil {
			return nil, fmt.Errorf("invalid SequenceIndex: %w", err)
		}
		li, err := r.LookupListIndex.Int()
		if err != nil {
			return nil, fmt.Errorf("invalid LookupListIndex: %w", err)
		}
		rec.SubstLookups = append(rec.SubstLookups, feadecomp.SubstLookupRecord{
			SequenceIndex: si,
			LookupIndex:   li,
		})
	}
	return rec, nil
}

// coverages orders coverages by their index attribute. Backtrack coverages
// stay in font order, closest glyph first.
func coverages(in []ttxCoverage) []feadecomp.Coverage {
	sorted := slices.Clone(in)
	slices.SortStableFunc(sorted, func(a, b ttxCoverage) int { return a.Index - b.Index })
	out := make([]feadecomp.Coverage, len(sorted))
	for i, c := range sorted {
		out[i] = feadecomp.GlyphList(c.Glyphs())
	}
	return out
}
