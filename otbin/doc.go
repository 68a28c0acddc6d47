/*
Package otbin reads the index records of a binary OpenType GSUB table.

Parse takes the raw bytes of a GSUB table, as extracted from a font file's
table directory, and a GlyphNamer to translate glyph IDs into glyph names.
The resulting Table implements feadecomp.TableSource. Script and feature
lists are read eagerly; lookups are decoded on first access and cached, so
lookups nobody references are never looked at.

Offsets are checked against the bounds of the table. Structural damage is
reported as a fea.ErrMalformedInput error naming the section of the table.
Extension subtables (lookup type 7) are resolved to the lookup type they
wrap. Subtables of lookup types other than 1, 3, 4 and 6 are passed on as
opaque records.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otbin

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.fea'
func tracer() tracing.Trace {
	return tracing.Select("font.fea")
}
