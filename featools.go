/*
Package featools recovers feature definitions from the glyph substitution
table of an OpenType font.

A font compiler flattens the features of a font, written in the Adobe
feature file syntax, into index-based records. Package featools reverses this:
it reads the GSUB table of a font file or of a fontTools TTX dump, rebuilds
the feature/script/language hierarchy, recovers shared lookups and glyph
classes, and writes the result as feature file syntax.

	fea, err := featools.DecompileToFeaSyntax("MyFont.otf")

The pipeline is composed of sub-packages, which may be used on their own:

▪︎ feadecomp reads table records through a TableSource and builds a fea.Table.

▪︎ feacompress recovers shared lookups and glyph classes.

▪︎ feawrite emits feature syntax or a structured dump.

▪︎ ttx and otbin are the two TableSource implementations.

Positioning (GPOS) tables are recognized but not decompiled.

# Links

OpenType feature file syntax:
https://adobe-type-tools.github.io/afdko/OpenTypeFeatureFileSpecification.html

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package featools

import (
	"path/filepath"
	"strings"

	"github.com/npillmayer/featools/fea"
	"github.com/npillmayer/featools/feadecomp"
	"github.com/npillmayer/featools/feawrite"
	"github.com/npillmayer/featools/ttx"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.fea'
func tracer() tracing.Trace {
	return tracing.Select("font.fea")
}

// Source opens the layout table of a font for decompilation. Files with
// extension ".ttx" are read as TTX dumps, everything else as font files.
// A font file may be given by path or by the name of an installed font.
func Source(path string) (feadecomp.TableSource, error) {
	if strings.EqualFold(filepath.Ext(path), ".ttx") {
		return ttx.ParseFile(path)
	}
	return FontSource(path)
}

// DecompileFont reads the GSUB table of a font file or TTX dump and
// decompiles it into a compressed fea.Table.
func DecompileFont(path string, opts ...feadecomp.Option) (*fea.Table, error) {
	src, err := Source(path)
	if err != nil {
		return nil, err
	}
	tracer().Infof("decompiling %s table of %s", src.TableTag(), path)
	return feadecomp.Decompile(src, opts...)
}

// DecompileTTX decompiles the GSUB table of a TTX dump, regardless of the
// file's extension.
func DecompileTTX(path string, opts ...feadecomp.Option) (*fea.Table, error) {
	src, err := ttx.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return feadecomp.Decompile(src, opts...)
}

// DecompileToFeaSyntax decompiles the GSUB table of a font file or TTX dump
// and formats it as feature file syntax.
func DecompileToFeaSyntax(path string, opts ...feawrite.Option) (string, error) {
	table, err := DecompileFont(path)
	if err != nil {
		return "", err
	}
	return feawrite.New(opts...).Format(table)
}

// DumpFont decompiles the GSUB table of a font file or TTX dump and returns
// the structured dump of the result.
func DumpFont(path string) (string, error) {
	table, err := DecompileFont(path)
	if err != nil {
		return "", err
	}
	return feawrite.Dump(table)
}
