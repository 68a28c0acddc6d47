package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/featools/fea"
	"github.com/npillmayer/featools/feawrite"
	"github.com/pterm/pterm"
)

func featuresOp(intp *Intp, op *Op) (error, bool) {
	data := [][]string{
		{"Feature", "Scripts", "Lookups", "Classes"},
	}
	for _, f := range intp.table.Features {
		scripts := make([]string, len(f.Scripts))
		for i, s := range f.Scripts {
			scripts[i] = s.Tag.ScriptString()
		}
		data = append(data, []string{
			f.Tag.String(),
			strings.Join(scripts, " "),
			fmt.Sprintf("%d", len(f.Lookups())),
			fmt.Sprintf("%d", f.Classes.Len()),
		})
	}
	pterm.Printf("%d features\n", len(intp.table.Features))
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

// scriptsOp lists script/language pairs with their lookups, for the selected
// feature or for all features.
func scriptsOp(intp *Intp, op *Op) (error, bool) {
	features := intp.table.Features
	if intp.feature != nil {
		features = []*fea.Feature{intp.feature}
	}
	data := [][]string{
		{"Feature", "Script", "Language", "Include Default", "Lookups"},
	}
	for _, f := range features {
		for _, s := range f.Scripts {
			script := fmt.Sprintf("%s (%s)", s.Tag.ScriptString(), s.Tag.ScriptName())
			for _, l := range s.Languages {
				data = append(data, []string{
					f.Tag.String(),
					script,
					l.Tag.LanguageString(),
					fmt.Sprintf("%t", l.IncludeDefault),
					strings.Join(l.LookupNames(), " "),
				})
			}
		}
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

// lookupsOp lists the global lookups, or the lookups embedded in the
// selected feature.
func lookupsOp(intp *Intp, op *Op) (error, bool) {
	lookups, where := intp.table.Lookups, "global"
	if intp.feature != nil {
		lookups, where = intp.feature.Lookups(), "feature "+intp.feature.Tag.String()
	}
	pterm.Printf("%d %s lookups\n", len(lookups), where)
	if len(lookups) == 0 {
		return nil, false
	}
	data := [][]string{
		{"Name", "Type", "Flags", "Subtables"},
	}
	for _, l := range lookups {
		data = append(data, []string{
			l.Name,
			l.Type.String(),
			formatFlag(l.Flag),
			fmt.Sprintf("%d", len(l.Subtables)),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

// lookupOp prints a lookup by name in feature syntax.
func lookupOp(intp *Intp, op *Op) (error, bool) {
	name, ok := op.hasArg()
	if !ok {
		return errors.New("lookup name missing, e.g. lookup:liga_1"), false
	}
	l, ok := intp.table.ResolveLookup(intp.feature, name)
	if !ok {
		return fmt.Errorf("no lookup %q visible here", name), false
	}
	single := &fea.Table{Tag: intp.table.Tag, Classes: fea.NewClasses(), Lookups: []*fea.Lookup{l}}
	text, err := feawrite.New(feawrite.FilterRedundancies(false)).Format(single)
	if err != nil {
		return err, false
	}
	pterm.Println(text)
	return nil, false
}

func classesOp(intp *Intp, op *Op) (error, bool) {
	classes, where := intp.table.Classes, "global"
	if intp.feature != nil {
		classes, where = intp.feature.Classes, "feature "+intp.feature.Tag.String()
	}
	pterm.Printf("%d %s classes\n", classes.Len(), where)
	if classes.Len() == 0 {
		return nil, false
	}
	data := [][]string{
		{"Name", "Glyphs"},
	}
	for _, c := range classes.Sorted() {
		data = append(data, []string{c.Name, strings.Join(c.Glyphs, " ")})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

// classOp prints the members of a class. Feature-local classes shadow
// global ones.
func classOp(intp *Intp, op *Op) (error, bool) {
	name, ok := op.hasArg()
	if !ok {
		return errors.New("class name missing, e.g. class:@liga_1"), false
	}
	if !strings.HasPrefix(name, "@") {
		name = "@" + name
	}
	glyphs, ok := intp.table.ResolveClass(intp.feature, name)
	if !ok {
		return fmt.Errorf("no class %q visible here", name), false
	}
	pterm.Printf("%s = [%s];\n", name, strings.Join(glyphs, " "))
	return nil, false
}

// feaOp prints the table, or the selected feature, in feature syntax.
func feaOp(intp *Intp, op *Op) (error, bool) {
	text, err := feawrite.Fea(intp.selection())
	if err != nil {
		return err, false
	}
	pterm.Println(text)
	return nil, false
}

// dumpOp prints the structured dump of the table or of the selected feature.
func dumpOp(intp *Intp, op *Op) (error, bool) {
	text, err := feawrite.Dump(intp.selection())
	if err != nil {
		return err, false
	}
	pterm.Println(text)
	return nil, false
}

// selection is the table, reduced to the selected feature if there is one.
// Global classes and lookups are kept, as the feature may refer to them.
func (intp *Intp) selection() *fea.Table {
	if intp.feature == nil {
		return intp.table
	}
	return &fea.Table{
		Tag:      intp.table.Tag,
		Features: []*fea.Feature{intp.feature},
		Classes:  intp.table.Classes,
		Lookups:  intp.table.Lookups,
	}
}

func formatFlag(flag fea.LookupFlag) string {
	if names := flag.Names(); len(names) > 0 {
		return strings.Join(names, ",")
	}
	return "-"
}
