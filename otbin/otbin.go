package otbin

import (
	"fmt"

	"github.com/npillmayer/featools/fea"
	"github.com/npillmayer/featools/feadecomp"
)

// noFeature marks an absent required feature.
const noFeature = 0xFFFF

// Table is a binary layout table. It implements feadecomp.TableSource.
//
// Lookups are decoded lazily and cached. A Table is not safe for concurrent
// use.
type Table struct {
	tag      string
	names    GlyphNamer
	scripts  []feadecomp.ScriptRecord
	features []feadecomp.FeatureRecord
	lookups  []segment // lookup tables, not yet decoded
	cache    map[int]*feadecomp.LookupRecord
}

var _ feadecomp.TableSource = (*Table)(nil)

// Parse reads the binary representation of a GSUB table. Glyph IDs are
// translated to glyph names with names; if names is nil, DefaultNames is
// used.
func Parse(data []byte, names GlyphNamer) (*Table, error) {
	return ParseTable("GSUB", data, names)
}

// ParseTable reads a layout table with the common GSUB/GPOS header. For a
// table tagged other than "GSUB" lookups are not decoded: every subtable is
// reported as opaque.
func ParseTable(tag string, data []byte, names GlyphNamer) (*Table, error) {
	if names == nil {
		names = DefaultNames
	}
	t := &Table{tag: tag, names: names, cache: make(map[int]*feadecomp.LookupRecord)}
	b := segment(data)
	major, err := b.u16(0)
	if err != nil || len(b) < 10 {
		return nil, t.malformed("Header", "table too small: %d bytes", len(b))
	}
	if major != 1 {
		return nil, t.malformed("Header", "unsupported major version %d", major)
	}
	scriptList, ok, err := b.at(4)
	if err != nil {
		return nil, t.malformed("Header", "script list offset: %v", err)
	}
	if ok {
		if t.scripts, err = t.readScriptList(scriptList); err != nil {
			return nil, err
		}
	}
	featureList, ok, err := b.at(6)
	if err != nil {
		return nil, t.malformed("Header", "feature list offset: %v", err)
	}
	if ok {
		if t.features, err = t.readFeatureList(featureList); err != nil {
			return nil, err
		}
	}
	lookupList, ok, err := b.at(8)
	if err != nil {
		return nil, t.malformed("Header", "lookup list offset: %v", err)
	}
	if ok {
		if t.lookups, err = lookupList.offsetArray(0); err != nil {
			return nil, t.malformed("LookupList", "%v", err)
		}
	}
	tracer().Debugf("%s: %d scripts, %d features, %d lookups",
		tag, len(t.scripts), len(t.features), len(t.lookups))
	return t, nil
}

// TableTag returns the tag the table has been parsed with.
func (t *Table) TableTag() string {
	return t.tag
}

// ScriptRecords returns the script list in font order.
func (t *Table) ScriptRecords() []feadecomp.ScriptRecord {
	return t.scripts
}

// FeatureRecord returns the feature at a feature list index.
func (t *Table) FeatureRecord(index int) (feadecomp.FeatureRecord, error) {
	if index < 0 || index >= len(t.features) {
		return feadecomp.FeatureRecord{}, t.malformed("FeatureList",
			"feature index %d out of range [0,%d)", index, len(t.features))
	}
	return t.features[index], nil
}

// LookupRecord decodes the lookup at a lookup list index.
func (t *Table) LookupRecord(index int) (feadecomp.LookupRecord, error) {
	if index < 0 || index >= len(t.lookups) {
		return feadecomp.LookupRecord{}, t.malformed("LookupList",
			"lookup index %d out of range [0,%d)", index, len(t.lookups))
	}
	if rec, ok := t.cache[index]; ok {
		return *rec, nil
	}
	rec, err := t.readLookup(t.lookups[index])
	if err != nil {
		return feadecomp.LookupRecord{}, fmt.Errorf("lookup %d: %w", index, err)
	}
	t.cache[index] = &rec
	return rec, nil
}

// NumLookups returns the length of the lookup list.
func (t *Table) NumLookups() int {
	return len(t.lookups)
}

// --- Script and feature lists ----------------------------------------------

func (t *Table) readScriptList(b segment) ([]feadecomp.ScriptRecord, error) {
	records, err := b.tagRecords(0, b)
	if err != nil {
		return nil, t.malformed("ScriptList", "%v", err)
	}
	scripts := make([]feadecomp.ScriptRecord, 0, len(records))
	for _, rec := range records {
		script := feadecomp.ScriptRecord{Tag: rec.tag}
		defLangSys, ok, err := rec.target.at(0)
		if err != nil {
			return nil, t.malformed("ScriptList", "script %q: default language system: %v", rec.tag, err)
		}
		if ok {
			if script.DefaultFeatures, err = langSysFeatures(defLangSys); err != nil {
				return nil, t.malformed("ScriptList", "script %q: %v", rec.tag, err)
			}
		}
		langs, err := rec.target.tagRecords(2, rec.target)
		if err != nil {
			return nil, t.malformed("ScriptList", "script %q: %v", rec.tag, err)
		}
		for _, lang := range langs {
			features, err := langSysFeatures(lang.target)
			if err != nil {
				return nil, t.malformed("ScriptList", "script %q, language %q: %v", rec.tag, lang.tag, err)
			}
			script.Languages = append(script.Languages, feadecomp.LangSysRecord{
				Tag:      lang.tag,
				Features: features,
			})
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}

// langSysFeatures lists the feature indexes of a language system, the
// required feature first.
func langSysFeatures(b segment) ([]int, error) {
	req, err := b.u16(2)
	if err != nil {
		return nil, err
	}
	inx, err := b.uint16Array(4)
	if err != nil {
		return nil, err
	}
	features := make([]int, 0, len(inx)+1)
	if req != noFeature {
		features = append(features, int(req))
	}
	for _, i := range inx {
		if req != noFeature && i == req {
			continue
		}
		features = append(features, int(i))
	}
	return features, nil
}

func (t *Table) readFeatureList(b segment) ([]feadecomp.FeatureRecord, error) {
	records, err := b.tagRecords(0, b)
	if err != nil {
		return nil, t.malformed("FeatureList", "%v", err)
	}
	features := make([]feadecomp.FeatureRecord, 0, len(records))
	for _, rec := range records {
		inx, err := rec.target.uint16Array(2)
		if err != nil {
			return nil, t.malformed("FeatureList", "feature %q: %v", rec.tag, err)
		}
		lookups := make([]int, len(inx))
		for i, l := range inx {
			lookups[i] = int(l)
		}
		features = append(features, feadecomp.FeatureRecord{Tag: rec.tag, Lookups: lookups})
	}
	return features, nil
}

func (t *Table) malformed(sect string, format string, args ...any) error {
	err := fea.Malformed(t.tag, sect, format, args...)
	tracer().Errorf("%v", err)
	return err
}
