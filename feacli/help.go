package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Debugf("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "feature", "features":
		pterm.Info.Println("Features")
		pterm.Println(`
	features          list all features of the table
	feature:<tag>     select a feature, e.g. feature:liga
	up, ..            return to table level

	A feature holds one entry per script, and below it one entry per language.
	Each language lists the lookups it activates, either embedded in the
	feature or as references to global lookups.
	`)
	case "lookup", "lookups":
		pterm.Info.Println("Lookups")
		pterm.Println(`
	lookups           list global lookups, or the lookups of the selected feature
	lookup:<name>     print a lookup in feature syntax

	Lookups used by more than one feature are global and named after the
	features sharing them, e.g. liga_calt_1. Lookups used by a single feature
	are named after it, e.g. liga_1.
	`)
	case "class", "classes":
		pterm.Info.Println("Classes")
		pterm.Println(`
	classes           list global classes, or the classes of the selected feature
	class:<name>      print the members of a class

	Glyph groups occurring more than once are extracted into named classes.
	A class local to a feature shadows a global class of the same name.
	`)
	case "script", "scripts", "lang", "language":
		pterm.Info.Println("Scripts and languages")
		pterm.Println(`
	scripts           list script/language pairs with their lookups

	Languages which do not inherit the lookups of the default language of
	their script are marked with "Include Default: false". In feature syntax
	they are written as 'language <tag> exclude_dflt;'.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	features, feature:<tag>, up
	scripts
	lookups, lookup:<name>
	classes, class:<name>
	fea               print feature syntax of the table or selected feature
	dump              print a structured dump of the table or selected feature
	help:<topic>      topics: features, lookups, classes, scripts
	quit

	Commands may be chained on one line, e.g. "feature:liga lookups".
	`)
	}
}
