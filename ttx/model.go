package ttx

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type ttxFont struct {
	GSUB *ttxLayout `xml:"GSUB"`
	GPOS *ttxLayout `xml:"GPOS"`
}

type ttxLayout struct {
	ScriptList  ttxScriptList  `xml:"ScriptList"`
	FeatureList ttxFeatureList `xml:"FeatureList"`
	LookupList  ttxLookupList  `xml:"LookupList"`
}

// --- Script list -----------------------------------------------------------

type ttxScriptList struct {
	Records []ttxScriptRecord `xml:"ScriptRecord"`
}

type ttxScriptRecord struct {
	Index  int       `xml:"index,attr"`
	Tag    ttxValue  `xml:"ScriptTag"`
	Script ttxScript `xml:"Script"`
}

type ttxScript struct {
	DefaultLangSys *ttxLangSys        `xml:"DefaultLangSys"`
	LangSysRecords []ttxLangSysRecord `xml:"LangSysRecord"`
}

type ttxLangSysRecord struct {
	Index   int        `xml:"index,attr"`
	Tag     ttxValue   `xml:"LangSysTag"`
	LangSys ttxLangSys `xml:"LangSys"`
}

type ttxLangSys struct {
	ReqFeatureIndex ttxValue          `xml:"ReqFeatureIndex"`
	FeatureIndex    []ttxIndexedValue `xml:"FeatureIndex"`
}

// --- Feature list ----------------------------------------------------------

type ttxFeatureList struct {
	Records []ttxFeatureRecord `xml:"FeatureRecord"`
}

type ttxFeatureRecord struct {
	Index   int        `xml:"index,attr"`
	Tag     ttxValue   `xml:"FeatureTag"`
	Feature ttxFeature `xml:"Feature"`
}

type ttxFeature struct {
	LookupListIndex []ttxIndexedValue `xml:"LookupListIndex"`
}

// --- Lookup list -----------------------------------------------------------

type ttxLookupList struct {
	Lookups []ttxLookup `xml:"Lookup"`
}

// ttxLookup holds the subtables of a lookup. A lookup has subtables of a
// single kind; elements not modelled here end up in Other.
type ttxLookup struct {
	Index             int                    `xml:"index,attr"`
	LookupType        ttxValue               `xml:"LookupType"`
	LookupFlag        ttxValue               `xml:"LookupFlag"`
	MarkFilteringSet  ttxValue               `xml:"MarkFilteringSet"`
	SingleSubst       []ttxSingleSubst       `xml:"SingleSubst"`
	AlternateSubst    []ttxAlternateSubst    `xml:"AlternateSubst"`
	LigatureSubst     []ttxLigatureSubst     `xml:"LigatureSubst"`
	ChainContextSubst []ttxChainContextSubst `xml:"ChainContextSubst"`
	ExtensionSubst    []ttxExtensionSubst    `xml:"ExtensionSubst"`
	Other             []ttxOpaque            `xml:",any"`
}

type ttxExtensionSubst struct {
	Index             int                    `xml:"index,attr"`
	ExtensionType     ttxValue               `xml:"ExtensionLookupType"`
	SingleSubst       []ttxSingleSubst       `xml:"SingleSubst"`
	AlternateSubst    []ttxAlternateSubst    `xml:"AlternateSubst"`
	LigatureSubst     []ttxLigatureSubst     `xml:"LigatureSubst"`
	ChainContextSubst []ttxChainContextSubst `xml:"ChainContextSubst"`
	Other             []ttxOpaque            `xml:",any"`
}

type ttxOpaque struct {
	FormatAttr string `xml:"Format,attr"`
}

type ttxSingleSubst struct {
	Substitutions []ttxSingleSubstitution `xml:"Substitution"`
}

type ttxSingleSubstitution struct {
	In  string `xml:"in,attr"`
	Out string `xml:"out,attr"`
}

type ttxAlternateSubst struct {
	AlternateSet []ttxAlternateSet `xml:"AlternateSet"`
}

type ttxAlternateSet struct {
	Glyph      string         `xml:"glyph,attr"`
	Alternates []ttxAlternate `xml:"Alternate"`
}

type ttxAlternate struct {
	Glyph string `xml:"glyph,attr"`
}

type ttxLigatureSubst struct {
	LigatureSet []ttxLigatureSet `xml:"LigatureSet"`
}

type ttxLigatureSet struct {
	Glyph     string        `xml:"glyph,attr"`
	Ligatures []ttxLigature `xml:"Ligature"`
}

type ttxLigature struct {
	Components string `xml:"components,attr"`
	Glyph      string `xml:"glyph,attr"`
}

type ttxChainContextSubst struct {
	FormatAttr        string                 `xml:"Format,attr"`
	BacktrackCoverage []ttxCoverage          `xml:"BacktrackCoverage"`
	InputCoverage     []ttxCoverage          `xml:"InputCoverage"`
	LookAheadCoverage []ttxCoverage          `xml:"LookAheadCoverage"`
	SubstLookupRecord []ttxSubstLookupRecord `xml:"SubstLookupRecord"`
}

type ttxCoverage struct {
	Index     int        `xml:"index,attr"`
	GlyphList []ttxGlyph `xml:"Glyph"`
}

// Glyphs returns the glyph names of a coverage in document order.
func (c ttxCoverage) Glyphs() []string {
	if len(c.GlyphList) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.GlyphList))
	for _, g := range c.GlyphList {
		if g.Value != "" {
			out = append(out, g.Value)
		}
	}
	return out
}

type ttxGlyph struct {
	Value string `xml:"value,attr"`
}

type ttxSubstLookupRecord struct {
	Index           int      `xml:"index,attr"`
	SequenceIndex   ttxValue `xml:"SequenceIndex"`
	LookupListIndex ttxValue `xml:"LookupListIndex"`
}

// --- Values ----------------------------------------------------------------

type ttxValue struct {
	Value string `xml:"value,attr"`
}

func (v ttxValue) Int() (int, error) {
	if v.Value == "" {
		return 0, fmt.Errorf("missing value")
	}
	if strings.HasPrefix(v.Value, "0x") || strings.HasPrefix(v.Value, "0X") {
		n, err := strconv.ParseInt(v.Value[2:], 16, 32)
		return int(n), err
	}
	n, err := strconv.Atoi(v.Value)
	return n, err
}

type ttxIndexedValue struct {
	Index int    `xml:"index,attr"`
	Value string `xml:"value,attr"`
}

// indexValues orders values by their index attribute and converts them to
// integers.
func indexValues(in []ttxIndexedValue) ([]int, error) {
	sorted := slices.Clone(in)
	slices.SortStableFunc(sorted, func(a, b ttxIndexedValue) int {
		return a.Index - b.Index
	})
	out := make([]int, 0, len(sorted))
	for _, item := range sorted {
		n, err := ttxValue{Value: item.Value}.Int()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func splitGlyphList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
