/*
Package feawrite serializes a decompiled substitution table to feature file
syntax, or to a structured dump.

Writing is a pipeline of three stages. The table is first walked into a tree
of emission events, one per statement, mirroring the nesting of features and
lookups. In filtering mode the events are then pruned of statements a human
would not write: script and language declarations with nothing following
them, lookup flags restating the flag already in effect, and the lookup block
around the single anonymous lookup of a feature. The remaining events are
finally rendered to text.

A compressed table with one feature sharing a lookup with another one might
render as

	languagesystem DFLT dflt;


	lookup calt_liga_1 {
		sub a by a.alt;
	} calt_liga_1;


	feature liga {
		@liga_1 = [f f.alt];

		lookup calt_liga_1;
		sub @liga_1 i by fi;

	} liga;

The dump format prints the tree one-to-one as indented "Key: value" lines
and is meant for inspection and tests.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package feawrite

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.fea'
func tracer() tracing.Trace {
	return tracing.Select("font.fea")
}
