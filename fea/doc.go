/*
Package fea holds the structural model of a decompiled glyph substitution
table, as a human would have written it in feature file syntax.

A Table owns an ordered list of features, global classes and global (shared)
lookups. Every feature nests scripts, every script nests languages, and every
language holds an ordered list of lookups or references to lookups defined
elsewhere:

	Table
	 ├── Classes            (global, shared by more than one feature)
	 ├── Lookups            (global, shared by more than one feature)
	 └── Feature 'liga'
	      ├── Classes       (local to the feature)
	      └── Script 'latn'
	           └── Language 'TRK '
	                ├── Lookup 'liga_1'
	                └── LookupReference 'calt_liga_1'

The model has no behaviour beyond construction, structural equality,
hashing and name resolution. Decompilation lives in package feadecomp,
compression in feacompress and text output in feawrite.

The default script and the default language are not represented by the
literal tags "DFLT" and "dflt", but by the zero value of Tag. This keeps a
table-wide default apart from a font which happens to use a named tag.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fea

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.fea'
func tracer() tracing.Trace {
	return tracing.Select("font.fea")
}
