/*
Package ttx reads the glyph substitution table of a font from a TTX dump,
the XML format written by fontTools' ttx tool (e.g. "ttx -t GSUB font.otf").

A parsed Table implements feadecomp.TableSource, so a TTX dump can be
decompiled without access to the binary font:

	tab, err := ttx.ParseFile("font.ttx")
	...
	gsub, err := feadecomp.Decompile(tab)

Extension subtables (lookup type 7) are unwrapped to the type they wrap.
Subtables of lookup types the decompiler does not model are passed on as
opaque records, as are chaining context rules in formats 1 and 2.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ttx

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.fea'
func tracer() tracing.Trace {
	return tracing.Select("font.fea")
}
