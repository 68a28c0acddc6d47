package feadecomp

import "slices"

// Coverage is a set of glyphs, either an explicit glyph list or a coverage
// table of a font, convertible to an ordered list of glyph names.
type Coverage interface {
	Glyphs() []string
}

// GlyphList is a coverage given as an explicit list of glyph names.
type GlyphList []string

// Glyphs returns the glyph names in list order.
func (gl GlyphList) Glyphs() []string {
	return gl
}

// ReadCoverage converts a coverage into an ordered sequence of glyph names.
// The result is a copy and may be modified by the caller. A nil coverage
// yields an empty sequence.
func ReadCoverage(c Coverage) []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.Glyphs())
}

// readCoverages converts a list of coverages, reversing the order if
// requested.
func readCoverages(cov []Coverage, reverse bool) [][]string {
	seq := make([][]string, len(cov))
	for i, c := range cov {
		seq[i] = ReadCoverage(c)
	}
	if reverse {
		slices.Reverse(seq)
	}
	return seq
}
