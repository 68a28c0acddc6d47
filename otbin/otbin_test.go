package otbin

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/npillmayer/featools/fea"
	"github.com/npillmayer/featools/feadecomp"
	"github.com/npillmayer/featools/feawrite"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Assembling binary tables ----------------------------------------------

// Fields of a table under assembly: int values are written as uint16, child
// tables are appended after the fixed part of their parent and referenced by
// an offset from the parent's start. An empty child yields a null offset.
type (
	off16 []byte
	off32 []byte
	tag   string
)

func assemble(fields ...any) []byte {
	size := 0
	for _, f := range fields {
		switch f.(type) {
		case int, off16:
			size += 2
		case off32, tag:
			size += 4
		}
	}
	var head, tail []byte
	for _, f := range fields {
		switch v := f.(type) {
		case int:
			head = binary.BigEndian.AppendUint16(head, uint16(v))
		case tag:
			head = append(head, v...)
		case off16:
			if len(v) == 0 {
				head = binary.BigEndian.AppendUint16(head, 0)
				continue
			}
			head = binary.BigEndian.AppendUint16(head, uint16(size+len(tail)))
			tail = append(tail, v...)
		case off32:
			head = binary.BigEndian.AppendUint32(head, uint32(size+len(tail)))
			tail = append(tail, v...)
		}
	}
	return append(head, tail...)
}

func coverage1(gids ...int) off16 {
	fields := []any{1, len(gids)}
	for _, g := range gids {
		fields = append(fields, g)
	}
	return assemble(fields...)
}

func coverage2(start, end int) off16 {
	return assemble(2, 1, start, end, 0)
}

func langSys(req int, features ...int) off16 {
	fields := []any{0, req, len(features)}
	for _, f := range features {
		fields = append(fields, f)
	}
	return assemble(fields...)
}

func feature(lookups ...int) off16 {
	fields := []any{0, len(lookups)}
	for _, l := range lookups {
		fields = append(fields, l)
	}
	return assemble(fields...)
}

func lookup(lookupType, flag int, subtables ...[]byte) off16 {
	fields := []any{lookupType, flag, len(subtables)}
	for _, st := range subtables {
		fields = append(fields, off16(st))
	}
	return assemble(fields...)
}

func gsub(scriptList, featureList off16, lookups ...off16) []byte {
	fields := []any{len(lookups)}
	for _, l := range lookups {
		fields = append(fields, l)
	}
	return assemble(1, 0, scriptList, featureList, off16(assemble(fields...)))
}

var glyphNames = []string{".notdef", "a", "b", "c", "f", "i", "f_i", "a.sc", "b.sc", "a.alt1", "a.alt2"}

func names(gid uint16) string {
	if int(gid) < len(glyphNames) {
		return glyphNames[gid]
	}
	return DefaultNames(gid)
}

// testGSUB holds
//
//	0 single, format 1: a b -> a.sc b.sc
//	1 alternate: a -> a.alt1 a.alt2
//	2 extension wrapping a ligature with flag IgnoreMarks: f i -> f_i
//	3 chaining context, format 3: c [a b]' -> lookup 4
//	4 single, format 2: a b -> a.alt1 a.alt2
//	5 multiple substitution
func testGSUB() []byte {
	scripts := assemble(2,
		tag("DFLT"), off16(assemble(langSys(noFeature, 0, 1, 2), 0)),
		tag("latn"), off16(assemble(langSys(noFeature, 0, 1, 2), 1,
			tag("TRK "), langSys(3, 1, 3))),
	)
	features := assemble(4,
		tag("calt"), feature(3),
		tag("liga"), feature(2),
		tag("smcp"), feature(0),
		tag("salt"), feature(1),
	)
	ligature := assemble(1, coverage1(4), 1, off16(assemble(1, off16(assemble(6, 2, 5)))))
	return gsub(scripts, features,
		lookup(1, 0, assemble(1, coverage2(1, 2), 6)),
		lookup(3, 0, assemble(1, coverage1(1), 1, off16(assemble(2, 9, 10)))),
		lookup(7, 8, assemble(1, 4, off32(ligature))),
		lookup(6, 0, assemble(3, 1, coverage1(3), 1, coverage1(1, 2), 0, 1, 0, 4)),
		lookup(1, 0, assemble(2, coverage1(1, 2), 2, 9, 10)),
		lookup(2, 0, assemble(1, coverage1(6), 0)),
	)
}

func emptyLists() (off16, off16) {
	return assemble(0), assemble(0)
}

// --- Tests -----------------------------------------------------------------

func TestParseRecords(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	tab, err := Parse(testGSUB(), names)
	require.NoError(t, err)
	assert.Equal(t, "GSUB", tab.TableTag())
	assert.Equal(t, 6, tab.NumLookups())
	scripts := tab.ScriptRecords()
	require.Len(t, scripts, 2)
	assert.Equal(t, "DFLT", scripts[0].Tag)
	assert.Equal(t, []int{0, 1, 2}, scripts[0].DefaultFeatures)
	assert.Empty(t, scripts[0].Languages)
	require.Len(t, scripts[1].Languages, 1)
	assert.Equal(t, "TRK ", scripts[1].Languages[0].Tag)
	assert.Equal(t, []int{3, 1}, scripts[1].Languages[0].Features, "required feature comes first")
	//
	f, err := tab.FeatureRecord(1)
	require.NoError(t, err)
	assert.Equal(t, feadecomp.FeatureRecord{Tag: "liga", Lookups: []int{2}}, f)
	_, err = tab.FeatureRecord(4)
	assert.True(t, errors.Is(err, fea.ErrMalformedInput))
	_, err = tab.LookupRecord(6)
	assert.True(t, errors.Is(err, fea.ErrMalformedInput))
}

func TestSingleSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	tab, err := Parse(testGSUB(), names)
	require.NoError(t, err)
	lk, err := tab.LookupRecord(0)
	require.NoError(t, err)
	assert.Equal(t, 1, lk.Type)
	assert.Equal(t, []feadecomp.SubtableRecord{&feadecomp.SingleSubstRecord{
		Mapping: map[string]string{"a": "a.sc", "b": "b.sc"},
	}}, lk.Subtables)
	lk, err = tab.LookupRecord(4)
	require.NoError(t, err)
	assert.Equal(t, []feadecomp.SubtableRecord{&feadecomp.SingleSubstRecord{
		Mapping: map[string]string{"a": "a.alt1", "b": "a.alt2"},
	}}, lk.Subtables)
}

func TestSingleDeltaWrapsAround(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	scripts, features := emptyLists()
	tab, err := Parse(gsub(scripts, features,
		lookup(1, 0, assemble(1, coverage1(0, 2), 0xFFFF)),
	), nil)
	require.NoError(t, err)
	lk, err := tab.LookupRecord(0)
	require.NoError(t, err)
	assert.Equal(t, []feadecomp.SubtableRecord{&feadecomp.SingleSubstRecord{
		Mapping: map[string]string{"glyph00000": "glyph65535", "glyph00002": "glyph00001"},
	}}, lk.Subtables)
}

func TestAlternateSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	tab, err := Parse(testGSUB(), names)
	require.NoError(t, err)
	lk, err := tab.LookupRecord(1)
	require.NoError(t, err)
	assert.Equal(t, []feadecomp.SubtableRecord{&feadecomp.AlternateSubstRecord{
		Alternates: map[string][]string{"a": {"a.alt1", "a.alt2"}},
	}}, lk.Subtables)
}

func TestExtensionIsUnwrapped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	tab, err := Parse(testGSUB(), names)
	require.NoError(t, err)
	lk, err := tab.LookupRecord(2)
	require.NoError(t, err)
	assert.Equal(t, 4, lk.Type)
	assert.Equal(t, uint16(8), lk.Flag)
	assert.Equal(t, []feadecomp.SubtableRecord{&feadecomp.LigatureSubstRecord{
		Ligatures: map[string][]feadecomp.LigatureRecord{
			"f": {{Components: []string{"i"}, Glyph: "f_i"}},
		},
	}}, lk.Subtables)
	//
	scripts, features := emptyLists()
	single := assemble(1, coverage1(1), 6)
	alternate := assemble(1, coverage1(1), 1, off16(assemble(1, 9)))
	tab, err = Parse(gsub(scripts, features,
		lookup(7, 0, assemble(1, 1, off32(single)), assemble(1, 3, off32(alternate))),
	), names)
	require.NoError(t, err)
	_, err = tab.LookupRecord(0)
	assert.True(t, errors.Is(err, fea.ErrMalformedInput), "mixed extension types")
}

func TestChainingContext(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	tab, err := Parse(testGSUB(), names)
	require.NoError(t, err)
	lk, err := tab.LookupRecord(3)
	require.NoError(t, err)
	require.Len(t, lk.Subtables, 1)
	cc, ok := lk.Subtables[0].(*feadecomp.ChainContextRecord)
	require.True(t, ok)
	assert.Equal(t, 3, cc.Format)
	require.Len(t, cc.Backtrack, 1)
	assert.Equal(t, []string{"c"}, feadecomp.ReadCoverage(cc.Backtrack[0]))
	require.Len(t, cc.Input, 1)
	assert.Equal(t, []string{"a", "b"}, feadecomp.ReadCoverage(cc.Input[0]))
	assert.Empty(t, cc.Lookahead)
	assert.Equal(t, []feadecomp.SubstLookupRecord{{SequenceIndex: 0, LookupIndex: 4}}, cc.SubstLookups)
	//
	scripts, features := emptyLists()
	tab, err = Parse(gsub(scripts, features,
		lookup(6, 0, assemble(1, coverage1(1), 0)),
	), names)
	require.NoError(t, err)
	lk, err = tab.LookupRecord(0)
	require.NoError(t, err)
	assert.Equal(t, []feadecomp.SubtableRecord{&feadecomp.ChainContextRecord{Format: 1}}, lk.Subtables)
}

func TestOpaqueSubtables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	tab, err := Parse(testGSUB(), names)
	require.NoError(t, err)
	lk, err := tab.LookupRecord(5)
	require.NoError(t, err)
	assert.Equal(t, 2, lk.Type)
	assert.Equal(t, []feadecomp.SubtableRecord{&feadecomp.OpaqueRecord{Type: 2, Format: 1}}, lk.Subtables)
	//
	gpos, err := ParseTable("GPOS", testGSUB(), names)
	require.NoError(t, err)
	lk, err = gpos.LookupRecord(0)
	require.NoError(t, err)
	assert.Equal(t, []feadecomp.SubtableRecord{&feadecomp.OpaqueRecord{Type: 1}}, lk.Subtables)
	_, err = feadecomp.Decompile(gpos)
	assert.True(t, errors.Is(err, fea.ErrUnsupportedFeature))
}

func TestLookupsAreCached(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	tab, err := Parse(testGSUB(), names)
	require.NoError(t, err)
	assert.Empty(t, tab.cache)
	first, err := tab.LookupRecord(2)
	require.NoError(t, err)
	assert.Len(t, tab.cache, 1)
	second, err := tab.LookupRecord(2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, tab.cache, 1)
}

func TestCoverageFormats(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	glyphs, err := readCoverage(segment(coverage1(3, 1, 2)))
	require.NoError(t, err)
	assert.Equal(t, []uint16{3, 1, 2}, glyphs)
	glyphs, err = readCoverage(segment(assemble(2, 2, 1, 2, 0, 7, 8, 2)))
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2, 7, 8}, glyphs)
	_, err = readCoverage(segment(assemble(2, 1, 5, 4, 0)))
	assert.Error(t, err, "inverted range")
	_, err = readCoverage(segment(assemble(3, 0)))
	assert.Error(t, err, "unknown format")
	_, err = readCoverage(segment(assemble(1, 4, 1)))
	assert.Error(t, err, "truncated glyph array")
}

func TestCountPrefixedArrays(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	values, err := segment(assemble(0, 3, 7, 8, 9)).uint16Array(2)
	require.NoError(t, err)
	assert.Equal(t, []uint16{7, 8, 9}, values)
	_, err = segment(assemble(0, 4, 7, 8, 9)).uint16Array(2)
	assert.ErrorIs(t, err, errBufferBounds)
	_, err = segment(assemble(0)).uint16Array(1)
	assert.ErrorIs(t, err, errBufferBounds)
	//
	b := segment(assemble(1, tag("latn"), 8, 0xABCD))
	records, err := b.tagRecords(0, b)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "latn", records[0].tag)
	assert.Equal(t, segment{0xAB, 0xCD}, records[0].target)
	_, err = segment(assemble(2, tag("latn"), 8)).tagRecords(0, b)
	assert.ErrorIs(t, err, errBufferBounds)
}

func TestMalformedTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	_, err := Parse([]byte{0, 1, 0}, names)
	assert.True(t, errors.Is(err, fea.ErrMalformedInput), "truncated header")
	_, err = Parse(assemble(2, 0, 0, 0, 0), names)
	assert.True(t, errors.Is(err, fea.ErrMalformedInput), "version")
	_, err = Parse(assemble(1, 0, 200, 0, 0), names)
	assert.True(t, errors.Is(err, fea.ErrMalformedInput), "script list out of bounds")
	_, err = Parse(assemble(1, 0, off16(assemble(3, tag("DFLT"), 0)), 0, 0), names)
	assert.True(t, errors.Is(err, fea.ErrMalformedInput), "truncated script records")
	//
	scripts, features := emptyLists()
	tab, err := Parse(gsub(scripts, features,
		lookup(1, 0, assemble(1, coverage1(1, 2), 1)),
		lookup(1, 0, assemble(2, coverage1(1, 2), 1, 9)),
		lookup(1, 0, assemble(3, coverage1(1), 0)),
		lookup(4, 0, assemble(1, coverage1(4), 1, off16(assemble(1, off16(assemble(6, 0)))))),
	), names)
	require.NoError(t, err, "lookups are decoded lazily")
	_, err = tab.LookupRecord(0)
	assert.NoError(t, err)
	for i := 1; i < 4; i++ {
		_, err = tab.LookupRecord(i)
		assert.True(t, errors.Is(err, fea.ErrMalformedInput), "lookup %d: %v", i, err)
	}
}

func TestDefaultNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	assert.Equal(t, "glyph00007", DefaultNames(7))
	assert.Equal(t, "glyph65535", DefaultNames(0xFFFF))
	tab, err := Parse(testGSUB(), nil)
	require.NoError(t, err)
	lk, err := tab.LookupRecord(1)
	require.NoError(t, err)
	assert.Equal(t, []feadecomp.SubtableRecord{&feadecomp.AlternateSubstRecord{
		Alternates: map[string][]string{"glyph00001": {"glyph00009", "glyph00010"}},
	}}, lk.Subtables)
}

func TestDecompileBinaryTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	tab, err := Parse(testGSUB(), names)
	require.NoError(t, err)
	table, err := feadecomp.Decompile(tab)
	require.NoError(t, err)
	out, err := feawrite.Fea(table)
	require.NoError(t, err)
	t.Log("\n" + out)
	for _, stmt := range []string{
		"languagesystem DFLT dflt;",
		"languagesystem latn TRK;",
		"feature liga {",
		"lookupflag IgnoreMarks;",
		"sub f i by f_i;",
		"sub a from [a.alt1 a.alt2];",
	} {
		assert.Contains(t, out, stmt)
	}
}
