/*
Package feacompress recovers sharing in a decompiled substitution table.

A font compiler duplicates nothing on purpose, but it flattens everything:
a lookup registered for several features, scripts or languages is decompiled
once per reference. Compress reverses this in two passes over a fea.Table,
mutating it in place.

Lookup promotion finds structurally equal lookups. A lookup used by more than
one feature is moved to the table's global lookups and named after the
features using it, e.g. "calt_liga_1". Lookups used within a single feature
get a feature-local name, e.g. "liga_2", and every occurrence after the first
becomes a reference. Finally, lookups every language inherits from its
default language system are elided from the languages restating them.

Class extraction lifts every inline glyph group of two or more glyphs into a
named class, e.g. "@liga_1". A class used by more than one feature is global,
otherwise it is local to its feature.

Compressing a compressed table is a no-op. All naming is deterministic and
independent of map iteration order.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package feacompress

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.fea'
func tracer() tracing.Trace {
	return tracing.Select("font.fea")
}
