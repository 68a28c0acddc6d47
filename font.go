package featools

import (
	"errors"
	"fmt"

	"github.com/npillmayer/featools/feadecomp"
	"github.com/npillmayer/featools/internal/fontload"
	"github.com/npillmayer/featools/otbin"
)

// ErrNoLayoutTable is returned for fonts with neither a GSUB nor a GPOS
// table.
var ErrNoLayoutTable = errors.New("font has no GSUB or GPOS table")

// FontSource loads a font file, or an installed font by name, and opens its
// GSUB table. A font with a GPOS table only yields a GPOS source, which the
// decompiler will reject as unsupported.
//
// Glyph names are taken from the font. Unnamed glyphs are named after their
// glyph ID, e.g. "glyph00042".
func FontSource(path string) (feadecomp.TableSource, error) {
	f, err := fontload.Locate(path)
	if err != nil {
		return nil, err
	}
	return FontTable(f)
}

// FontTable opens the GSUB table of a loaded font, or its GPOS table if the
// font has no GSUB table.
func FontTable(f *fontload.ScalableFont) (*otbin.Table, error) {
	for _, tag := range []string{"GSUB", "GPOS"} {
		data, err := f.Table(tag)
		if errors.Is(err, fontload.ErrNoTable) {
			continue
		}
		tracer().Debugf("font %q: reading %s table of %d bytes", f.Fontname, tag, len(data))
		t, err := otbin.ParseTable(tag, data, f.GlyphName)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Filepath, err)
		}
		return t, nil
	}
	return nil, fmt.Errorf("%s: %w", f.Filepath, ErrNoLayoutTable)
}
