package otbin

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
)

// GlyphNamer maps glyph IDs to glyph names.
type GlyphNamer func(gid uint16) string

// DefaultNames names glyphs after their IDs, the way fontTools does for
// fonts without glyph names.
func DefaultNames(gid uint16) string {
	return fmt.Sprintf("glyph%05d", gid)
}

// coverage is a decoded coverage table. It implements feadecomp.Coverage,
// naming glyphs only when asked for.
type coverage struct {
	glyphs []uint16 // in coverage index order
	names  GlyphNamer
}

// Glyphs returns the glyph names in coverage index order.
func (c coverage) Glyphs() []string {
	names := make([]string, len(c.glyphs))
	for i, gid := range c.glyphs {
		names[i] = c.names(gid)
	}
	return names
}

// readCoverage decodes a coverage table in format 1 (glyph array) or
// format 2 (glyph ranges).
func readCoverage(b segment) ([]uint16, error) {
	format, err := b.u16(0)
	if err != nil {
		return nil, err
	}
	switch format {
	case 1:
		return b.uint16Array(2)
	case 2:
		if len(b) < 4 {
			return nil, errBufferBounds
		}
		r := parse.NewBinaryReaderBytes(b[2:])
		n := r.ReadUint16()
		if r.Len() < 6*int64(n) {
			return nil, errBufferBounds
		}
		var glyphs []uint16
		for range n {
			start, end, index := r.ReadUint16(), r.ReadUint16(), r.ReadUint16()
			if end < start || int(index) != len(glyphs) {
				return nil, fmt.Errorf("coverage range %d..%d at index %d out of order", start, end, index)
			}
			for g := int(start); g <= int(end); g++ {
				glyphs = append(glyphs, uint16(g))
			}
		}
		return glyphs, nil
	}
	return nil, fmt.Errorf("unknown coverage format %d", format)
}
