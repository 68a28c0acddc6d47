/*
Package fontload loads font files and gives access to their raw tables and
glyph names.

Fonts may be TrueType or CFF flavoured OpenType files, WOFF or WOFF2 files,
or collections. Web fonts are converted to SFNT on load; of a collection only
the first font is used.

Glyph names are looked up from the font's post or CFF tables. Fonts without
glyph names get synthetic names derived from the glyph ID.
*/
package fontload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/featools/otbin"
	"github.com/npillmayer/schuko/tracing"
	"github.com/tdewolff/font"
	"github.com/tdewolff/parse/v2"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'font.fea'
func tracer() tracing.Trace {
	return tracing.Select("font.fea")
}

// ErrNoTable is returned by Table for tables missing from a font.
var ErrNoTable = errors.New("font has no such table")

// ScalableFont is a loaded font file with its table directory.
type ScalableFont struct {
	Fontname string
	Filepath string
	Binary   []byte            // SFNT data of the font
	tables   map[string][]byte // raw tables by tag

	// glyph name sources, parsed on first use
	namesParsed bool
	sfnt        *sfnt.Font
	tdw         *font.SFNT
	buf         sfnt.Buffer
}

// LoadOpenTypeFont loads a font from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fontfile, err)
	}
	f.Filepath = fontfile
	return f, nil
}

// Locate finds a system font by name or file name and loads it. If name is
// the path of an existing file, this file is loaded.
func Locate(name string) (*ScalableFont, error) {
	if _, err := os.Stat(name); err == nil {
		return LoadOpenTypeFont(name)
	}
	path, err := findfont.Find(name)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("font %q located at %s", name, path)
	return LoadOpenTypeFont(path)
}

// ParseOpenTypeFont loads a font from memory.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	b := fbytes
	if len(b) >= 4 && (string(b[:4]) == "wOFF" || string(b[:4]) == "wOF2") {
		if b, err = font.ToSFNT(b); err != nil {
			return nil, err
		}
	}
	f = &ScalableFont{Binary: b}
	if f.tables, err = readTableDirectory(b); err != nil {
		return nil, err
	}
	if f.nameSource() != nil {
		f.Fontname, _ = f.sfnt.Name(&f.buf, sfnt.NameIDFull)
	}
	tracer().Debugf("loaded font %q with %d tables", f.Fontname, len(f.tables))
	return f, nil
}

// readTableDirectory reads the offset table of an SFNT file. For collections
// the first font's directory is read.
func readTableDirectory(b []byte) (map[string][]byte, error) {
	if len(b) < 12 {
		return nil, fmt.Errorf("font data too small")
	}
	r := parse.NewBinaryReaderBytes(b)
	version := r.ReadString(4)
	if version == "ttcf" {
		_ = r.ReadUint32() // majorVersion and minorVersion
		if numFonts := r.ReadUint32(); numFonts == 0 || r.Len() < 4 {
			return nil, fmt.Errorf("empty font collection")
		}
		offset := r.ReadUint32()
		if uint64(offset)+12 > uint64(len(b)) {
			return nil, fmt.Errorf("font collection offset out of bounds")
		}
		r.Seek(int64(offset), io.SeekStart)
		version = r.ReadString(4)
	}
	switch version {
	case "\x00\x01\x00\x00", "OTTO", "true":
	default:
		return nil, fmt.Errorf("bad SFNT version %q", version)
	}
	numTables := r.ReadUint16()
	_ = r.ReadBytes(6) // searchRange, entrySelector, rangeShift
	if r.Len() < 16*int64(numTables) {
		return nil, fmt.Errorf("table directory truncated")
	}
	tables := make(map[string][]byte, numTables)
	for range numTables {
		tag := r.ReadString(4)
		_ = r.ReadUint32() // checksum
		offset := r.ReadUint32()
		length := r.ReadUint32()
		if uint64(offset)+uint64(length) > uint64(len(b)) {
			return nil, fmt.Errorf("table %q out of bounds", tag)
		}
		tables[tag] = b[offset : offset+length : offset+length]
	}
	return tables, nil
}

// Table returns the raw bytes of a table.
func (f *ScalableFont) Table(tag string) ([]byte, error) {
	if t, ok := f.tables[tag]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoTable, tag)
}

// HasTable checks if the font contains a table.
func (f *ScalableFont) HasTable(tag string) bool {
	_, ok := f.tables[tag]
	return ok
}

// TableTags returns the tags of all tables, sorted.
func (f *ScalableFont) TableTags() []string {
	tags := make([]string, 0, len(f.tables))
	for tag := range f.tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// NumGlyphs returns the number of glyphs as stated in table maxp, or 0 if
// the font has no valid maxp table.
func (f *ScalableFont) NumGlyphs() int {
	maxp, ok := f.tables["maxp"]
	if !ok || len(maxp) < 6 {
		return 0
	}
	r := parse.NewBinaryReaderBytes(maxp)
	_ = r.ReadUint32() // version
	return int(r.ReadUint16())
}

// GlyphName returns the name of a glyph. If the font does not name the
// glyph, a name derived from the glyph ID is returned.
func (f *ScalableFont) GlyphName(gid uint16) string {
	f.nameSource()
	if f.sfnt != nil {
		if name, err := f.sfnt.GlyphName(&f.buf, sfnt.GlyphIndex(gid)); err == nil && name != "" {
			return name
		}
	}
	if f.tdw != nil {
		if name := f.tdw.GlyphName(gid); name != "" {
			return name
		}
	}
	return otbin.DefaultNames(gid)
}

// nameSource parses the font for glyph name lookup. Fonts which are not
// complete enough for a full parse fall back to synthetic glyph names.
func (f *ScalableFont) nameSource() *sfnt.Font {
	if f.namesParsed {
		return f.sfnt
	}
	f.namesParsed = true
	var err error
	if f.sfnt, err = sfnt.Parse(f.Binary); err != nil {
		tracer().Debugf("font not parsed for glyph names: %v", err)
		f.sfnt = nil
	}
	if f.tdw, err = font.ParseSFNT(f.Binary, 0); err != nil {
		f.tdw = nil
	}
	return f.sfnt
}
