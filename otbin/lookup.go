package otbin

import (
	"fmt"

	"github.com/npillmayer/featools/feadecomp"
	"github.com/tdewolff/parse/v2"
)

// lookup types of GSUB
const (
	gsubSingle       = 1
	gsubAlternate    = 3
	gsubLigature     = 4
	gsubChainContext = 6
	gsubExtension    = 7
)

// useMarkFilteringSet is the lookup flag bit announcing a trailing mark
// filtering set field.
const useMarkFilteringSet = 0x0010

// readLookup decodes a lookup table:
//
//	uint16   lookupType
//	uint16   lookupFlag
//	uint16   subTableCount
//	Offset16 subtableOffsets[subTableCount]
//	uint16   markFilteringSet (if lookupFlag & useMarkFilteringSet)
func (t *Table) readLookup(b segment) (feadecomp.LookupRecord, error) {
	if len(b) < 6 {
		return feadecomp.LookupRecord{}, t.malformed("LookupList", "lookup table too small")
	}
	r := parse.NewBinaryReaderBytes(b)
	rec := feadecomp.LookupRecord{
		Type: int(r.ReadUint16()),
		Flag: r.ReadUint16(),
	}
	subtables, err := b.offsetArray(4)
	if err != nil {
		return rec, t.malformed("LookupList", "subtable offsets: %v", err)
	}
	if rec.Flag&useMarkFilteringSet != 0 {
		if _, err := b.u16(6 + 2*len(subtables)); err != nil {
			return rec, t.malformed("LookupList", "mark filtering set: %v", err)
		}
	}
	if t.tag != "GSUB" {
		for range subtables {
			rec.Subtables = append(rec.Subtables, &feadecomp.OpaqueRecord{Type: rec.Type})
		}
		return rec, nil
	}
	if rec.Type == gsubExtension {
		return t.readExtension(rec, subtables)
	}
	for _, st := range subtables {
		sub, err := t.readSubtable(rec.Type, st)
		if err != nil {
			return rec, err
		}
		rec.Subtables = append(rec.Subtables, sub)
	}
	return rec, nil
}

// readExtension unwraps extension subtables:
//
//	uint16   substFormat (= 1)
//	uint16   extensionLookupType
//	Offset32 extensionOffset
//
// All subtables of an extension lookup must wrap the same lookup type, which
// must not be an extension itself.
func (t *Table) readExtension(rec feadecomp.LookupRecord, subtables []segment) (feadecomp.LookupRecord, error) {
	sect := section(gsubExtension)
	for i, st := range subtables {
		if len(st) < 8 {
			return rec, t.malformed(sect, "extension subtable too small")
		}
		r := parse.NewBinaryReaderBytes(st)
		format, et, offset := r.ReadUint16(), int(r.ReadUint16()), r.ReadUint32()
		if format != 1 {
			return rec, t.malformed(sect, "unknown extension format %d", format)
		}
		if et == gsubExtension {
			return rec, t.malformed(sect, "extension subtable wraps another extension")
		}
		if i == 0 {
			rec.Type = et
		} else if et != rec.Type {
			return rec, t.malformed(sect, "extension subtables wrap types %d and %d", rec.Type, et)
		}
		if offset == 0 || uint64(offset) >= uint64(len(st)) {
			return rec, t.malformed(sect, "extension offset %d out of bounds", offset)
		}
		sub, err := t.readSubtable(et, st[offset:])
		if err != nil {
			return rec, err
		}
		rec.Subtables = append(rec.Subtables, sub)
	}
	return rec, nil
}

func (t *Table) readSubtable(lookupType int, b segment) (feadecomp.SubtableRecord, error) {
	format, err := b.u16(0)
	if err != nil {
		return nil, t.malformed(section(lookupType), "subtable format: %v", err)
	}
	var rec feadecomp.SubtableRecord
	switch lookupType {
	case gsubSingle:
		rec, err = t.readSingle(format, b)
	case gsubAlternate:
		rec, err = t.readAlternate(format, b)
	case gsubLigature:
		rec, err = t.readLigature(format, b)
	case gsubChainContext:
		rec, err = t.readChainContext(format, b)
	default:
		tracer().Debugf("GSUB lookup type %d format %d not decoded", lookupType, format)
		rec = &feadecomp.OpaqueRecord{Type: lookupType, Format: int(format)}
	}
	if err != nil {
		return nil, t.malformed(section(lookupType), "format %d: %v", format, err)
	}
	return rec, nil
}

// coverageAt decodes the coverage table referenced at position i of b.
func coverageAt(b segment, i int) ([]uint16, error) {
	cov, ok, err := b.at(i)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("missing coverage table")
	}
	return readCoverage(cov)
}

// --- Single substitution ---------------------------------------------------

// readSingle decodes a single substitution subtable. Format 1 adds a delta to
// every covered glyph ID, modulo 65536. Format 2 lists a substitute for each
// coverage index.
func (t *Table) readSingle(format uint16, b segment) (*feadecomp.SingleSubstRecord, error) {
	glyphs, err := coverageAt(b, 2)
	if err != nil {
		return nil, err
	}
	rec := &feadecomp.SingleSubstRecord{Mapping: make(map[string]string, len(glyphs))}
	switch format {
	case 1:
		delta, err := b.u16(4)
		if err != nil {
			return nil, err
		}
		for _, g := range glyphs {
			rec.Mapping[t.names(g)] = t.names(g + delta)
		}
	case 2:
		subst, err := b.uint16Array(4)
		if err != nil {
			return nil, err
		}
		if len(subst) != len(glyphs) {
			return nil, fmt.Errorf("%d substitutes for %d covered glyphs", len(subst), len(glyphs))
		}
		for i, g := range glyphs {
			rec.Mapping[t.names(g)] = t.names(subst[i])
		}
	default:
		return nil, fmt.Errorf("unknown format")
	}
	return rec, nil
}

// --- Alternate substitution ------------------------------------------------

func (t *Table) readAlternate(format uint16, b segment) (*feadecomp.AlternateSubstRecord, error) {
	if format != 1 {
		return nil, fmt.Errorf("unknown format")
	}
	glyphs, err := coverageAt(b, 2)
	if err != nil {
		return nil, err
	}
	sets, err := b.offsetArray(4)
	if err != nil {
		return nil, err
	}
	if len(sets) != len(glyphs) {
		return nil, fmt.Errorf("%d alternate sets for %d covered glyphs", len(sets), len(glyphs))
	}
	rec := &feadecomp.AlternateSubstRecord{Alternates: make(map[string][]string, len(glyphs))}
	for i, g := range glyphs {
		alts, err := sets[i].uint16Array(0)
		if err != nil {
			return nil, err
		}
		rec.Alternates[t.names(g)] = t.nameAll(alts)
	}
	return rec, nil
}

// --- Ligature substitution -------------------------------------------------

// readLigature decodes a ligature substitution subtable. Ligature tables
// store the component count including the first glyph, which is implied by
// the coverage.
func (t *Table) readLigature(format uint16, b segment) (*feadecomp.LigatureSubstRecord, error) {
	if format != 1 {
		return nil, fmt.Errorf("unknown format")
	}
	glyphs, err := coverageAt(b, 2)
	if err != nil {
		return nil, err
	}
	sets, err := b.offsetArray(4)
	if err != nil {
		return nil, err
	}
	if len(sets) != len(glyphs) {
		return nil, fmt.Errorf("%d ligature sets for %d covered glyphs", len(sets), len(glyphs))
	}
	rec := &feadecomp.LigatureSubstRecord{Ligatures: make(map[string][]feadecomp.LigatureRecord, len(glyphs))}
	for i, g := range glyphs {
		ligs, err := sets[i].offsetArray(0)
		if err != nil {
			return nil, err
		}
		first := t.names(g)
		for _, lig := range ligs {
			if len(lig) < 4 {
				return nil, errBufferBounds
			}
			r := parse.NewBinaryReaderBytes(lig)
			glyph, count := r.ReadUint16(), r.ReadUint16()
			if count == 0 {
				return nil, fmt.Errorf("ligature %s without components", t.names(glyph))
			}
			if r.Len() < 2*int64(count-1) {
				return nil, errBufferBounds
			}
			components := make([]uint16, count-1)
			for k := range components {
				components[k] = r.ReadUint16()
			}
			rec.Ligatures[first] = append(rec.Ligatures[first], feadecomp.LigatureRecord{
				Components: t.nameAll(components),
				Glyph:      t.names(glyph),
			})
		}
	}
	return rec, nil
}

// --- Chaining context substitution -----------------------------------------

// readChainContext decodes a chained sequence context subtable. Only format 3
// is decoded into coverages:
//
//	uint16   format (= 3)
//	uint16   backtrackGlyphCount
//	Offset16 backtrackCoverageOffsets[backtrackGlyphCount]
//	uint16   inputGlyphCount
//	Offset16 inputCoverageOffsets[inputGlyphCount]
//	uint16   lookaheadGlyphCount
//	Offset16 lookaheadCoverageOffsets[lookaheadGlyphCount]
//	uint16   seqLookupCount
//	SequenceLookupRecord seqLookupRecords[seqLookupCount]
func (t *Table) readChainContext(format uint16, b segment) (*feadecomp.ChainContextRecord, error) {
	rec := &feadecomp.ChainContextRecord{Format: int(format)}
	switch format {
	case 1, 2:
		return rec, nil
	case 3:
	default:
		return nil, fmt.Errorf("unknown format")
	}
	pos := 2
	var err error
	if rec.Backtrack, pos, err = t.coverageSequence(b, pos); err != nil {
		return nil, fmt.Errorf("backtrack: %w", err)
	}
	if rec.Input, pos, err = t.coverageSequence(b, pos); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if rec.Lookahead, pos, err = t.coverageSequence(b, pos); err != nil {
		return nil, fmt.Errorf("lookahead: %w", err)
	}
	if len(b) < pos+2 {
		return nil, errBufferBounds
	}
	r := parse.NewBinaryReaderBytes(b[pos:])
	n := r.ReadUint16()
	if r.Len() < 4*int64(n) {
		return nil, errBufferBounds
	}
	for range n {
		rec.SubstLookups = append(rec.SubstLookups, feadecomp.SubstLookupRecord{
			SequenceIndex: int(r.ReadUint16()),
			LookupIndex:   int(r.ReadUint16()),
		})
	}
	return rec, nil
}

// coverageSequence reads a count-prefixed array of coverage offsets at pos
// and returns the position following it.
func (t *Table) coverageSequence(b segment, pos int) ([]feadecomp.Coverage, int, error) {
	covs, err := b.offsetArray(pos)
	if err != nil {
		return nil, pos, err
	}
	seq := make([]feadecomp.Coverage, len(covs))
	for i, c := range covs {
		glyphs, err := readCoverage(c)
		if err != nil {
			return nil, pos, err
		}
		seq[i] = coverage{glyphs: glyphs, names: t.names}
	}
	return seq, pos + 2 + 2*len(covs), nil
}

// --- Helpers ---------------------------------------------------------------

func (t *Table) nameAll(gids []uint16) []string {
	names := make([]string, len(gids))
	for i, g := range gids {
		names[i] = t.names(g)
	}
	return names
}

func section(lookupType int) string {
	return fmt.Sprintf("LookupType%d", lookupType)
}
