package feadecomp

// TableSource gives read-only access to the index records of a layout table.
// Script, feature and lookup records reference each other by index, exactly
// as they are stored in a font.
type TableSource interface {
	// TableTag returns the table identifier, e.g. "GSUB".
	TableTag() string
	// ScriptRecords returns the script list in font order.
	ScriptRecords() []ScriptRecord
	// FeatureRecord returns the feature at a feature list index.
	FeatureRecord(index int) (FeatureRecord, error)
	// LookupRecord returns the lookup at a lookup list index.
	LookupRecord(index int) (LookupRecord, error)
}

// ScriptRecord is an entry of the script list. Tag "DFLT" denotes the
// default script.
type ScriptRecord struct {
	Tag             string
	DefaultFeatures []int // feature indexes of the default language system
	Languages       []LangSysRecord
}

// LangSysRecord is a language system of a script.
type LangSysRecord struct {
	Tag      string
	Features []int // feature indexes
}

// FeatureRecord is an entry of the feature list.
type FeatureRecord struct {
	Tag     string
	Lookups []int // lookup list indexes
}

// LookupRecord is an entry of the lookup list.
//
// Extension lookups (type 7) are expected to be unwrapped by the accessor, so
// that Type is the type of the wrapped subtables.
type LookupRecord struct {
	Type      int
	Flag      uint16
	Subtables []SubtableRecord
}

// SubtableRecord is the type-specific content of a lookup subtable. It is one
// of *SingleSubstRecord, *AlternateSubstRecord, *LigatureSubstRecord,
// *ChainContextRecord or *OpaqueRecord.
type SubtableRecord interface {
	isSubtableRecord()
}

// SingleSubstRecord maps glyphs to their substitutes (type 1).
type SingleSubstRecord struct {
	Mapping map[string]string
}

// AlternateSubstRecord maps glyphs to their alternates (type 3).
type AlternateSubstRecord struct {
	Alternates map[string][]string
}

// LigatureSubstRecord maps a first glyph to the ligatures starting with it
// (type 4).
type LigatureSubstRecord struct {
	Ligatures map[string][]LigatureRecord
}

// LigatureRecord is a ligature in a LigatureSubstRecord. Components do not
// include the first glyph.
type LigatureRecord struct {
	Components []string
	Glyph      string
}

// ChainContextRecord is a chaining context rule (type 6). Only format 3
// (coverage based) carries coverages; for other formats just Format is set.
//
// Backtrack coverages are stored in font order, i.e. starting with the glyph
// closest to the input sequence.
type ChainContextRecord struct {
	Format       int
	Backtrack    []Coverage
	Input        []Coverage
	Lookahead    []Coverage
	SubstLookups []SubstLookupRecord
}

// SubstLookupRecord references a nested lookup applied at a position of the
// input sequence.
type SubstLookupRecord struct {
	SequenceIndex int
	LookupIndex   int
}

// OpaqueRecord stands for a subtable the accessor does not decode, e.g. of
// lookup type 2 or 5.
type OpaqueRecord struct {
	Type   int
	Format int
}

func (*SingleSubstRecord) isSubtableRecord()    {}
func (*AlternateSubstRecord) isSubtableRecord() {}
func (*LigatureSubstRecord) isSubtableRecord()  {}
func (*ChainContextRecord) isSubtableRecord()   {}
func (*OpaqueRecord) isSubtableRecord()         {}
