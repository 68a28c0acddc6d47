/*
Package feadecomp reconstructs the hierarchical structure of a glyph
substitution table from its flat, index-based records.

A font compiler flattens feature definitions into a script list, a feature
list and a lookup list, which reference each other by index. Decompile walks
these records through a TableSource and builds a fea.Table with one Feature
per feature tag, scripts and languages nested below it, and a freshly
decompiled Lookup for every lookup index a language references. Nothing is
shared at this stage; sharing is recovered by package feacompress, which
Decompile invokes unless Raw is requested.

Feature order is not stored in a font. It is recovered from the lookup
indexes a feature references: a compiler assigns lookup indexes in
declaration order, so sorting features by their sorted lookup index sets
reproduces the order a human wrote them in.

TableSource is the only contact point with font data. Package ttx implements
it over TTX dumps, package otbin over binary tables.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package feadecomp

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.fea'
func tracer() tracing.Trace {
	return tracing.Select("font.fea")
}
