package feawrite

import (
	"fmt"
	"strings"

	"github.com/npillmayer/featools/fea"
)

const dumpIndent = "    "

// dumper prints a tree of events one-to-one as indented "Key: value" lines.
type dumper struct {
	indent     int
	inScript   bool
	inLanguage bool
	lines      []string
}

func (d *dumper) line(format string, args ...any) {
	level := d.indent
	if d.inScript {
		level++
	}
	if d.inLanguage {
		level++
	}
	text := strings.Repeat(dumpIndent, level) + fmt.Sprintf(format, args...)
	d.lines = append(d.lines, strings.TrimRight(text, " "))
}

func (d *dumper) dump(sc *Scope) error {
	for _, ev := range sc.Events {
		if err := d.dumpEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

func (d *dumper) dumpEvent(ev *Event) error {
	switch ev.Kind {
	case LanguageSystemEvent:
		lang := "None"
		if !ev.Language.IsDefault() {
			lang = ev.Language.String()
		}
		d.line("LanguageSystem: %s %s", ev.Script.ScriptString(), lang)
	case ClassDefinitionEvent:
		d.line("Class: %s: [%s]", ev.Name, strings.Join(ev.Glyphs, " "))
	case FeatureEvent:
		d.line("Feature: %s", ev.Name)
		return d.dumpBlock(ev.Body)
	case LookupEvent:
		d.line("Lookup: %s", ev.Name)
		return d.dumpBlock(ev.Body)
	case ScriptEvent:
		d.inScript, d.inLanguage = false, false
		d.line("Script: %s", ev.Script.ScriptString())
		d.inScript = true
	case LanguageEvent:
		d.inLanguage = false
		lang := "None"
		if !ev.Language.IsDefault() {
			lang = ev.Language.String()
		}
		d.line("Language: %s", lang)
		d.inLanguage = true
		d.line("Include Default: %t", ev.IncludeDefault)
	case LookupFlagEvent:
		d.line("LookupFlag:")
		d.indent++
		d.line("rightToLeft: %t", ev.Flag.RightToLeft)
		d.line("ignoreBaseGlyphs: %t", ev.Flag.IgnoreBaseGlyphs)
		d.line("ignoreLigatures: %t", ev.Flag.IgnoreLigatures)
		d.line("ignoreMarks: %t", ev.Flag.IgnoreMarks)
		d.line("markAttachmentType: %t", ev.Flag.MarkAttachmentType)
		d.indent--
	case LookupReferenceEvent:
		d.line("Lookup Reference: %s", ev.Name)
	case SubtableEvent:
		return d.dumpSubtable(ev.Subtable)
	default:
		return fmt.Errorf("unknown emission event kind %d", ev.Kind)
	}
	return nil
}

func (d *dumper) dumpBlock(body *Scope) error {
	child := &dumper{indent: d.indent + 1}
	if d.inScript {
		child.indent++
	}
	if d.inLanguage {
		child.indent++
	}
	if err := child.dump(body); err != nil {
		return err
	}
	d.lines = append(d.lines, child.lines...)
	return nil
}

// Rules are dumped in a uniform shape: backtrack and lookahead are sequences
// of groups, target and substitution are lists of sequences.
func (d *dumper) dumpSubtable(st fea.Subtable) error {
	var backtrack, lookahead []fea.Group
	var target, subst [][]fea.Group
	switch st := st.(type) {
	case *fea.SingleSubst:
		target = [][]fea.Group{{st.Target}}
		subst = [][]fea.Group{{st.Substitution}}
	case *fea.AlternateSubst:
		for _, set := range st.Sets {
			target = append(target, []fea.Group{fea.Glyphs(set.Glyph)})
			subst = append(subst, []fea.Group{fea.Glyphs(set.Alternates...)})
		}
	case *fea.LigatureSubst:
		for _, lig := range st.Ligatures {
			components := make([]fea.Group, len(lig.Components))
			for i, c := range lig.Components {
				components[i] = fea.Glyphs(c)
			}
			target = append(target, components)
			subst = append(subst, []fea.Group{fea.Glyphs(lig.Glyph)})
		}
	case *fea.ChainingContext:
		backtrack, lookahead = st.Backtrack, st.Lookahead
		target = [][]fea.Group{st.Input}
		if !st.IsIgnore() {
			subst = [][]fea.Group{st.Substitution}
		}
	default:
		return fea.Unsupported("GSUB", "LookupList", "cannot dump subtable of type %T", st)
	}
	d.line("GSUBSubtable Type %d:", int(st.Type()))
	d.indent++
	d.line("backtrack: %s", dumpSequence(backtrack))
	d.line("lookahead: %s", dumpSequence(lookahead))
	d.line("target: %s", dumpRules(target))
	d.line("substitution: %s", dumpRules(subst))
	d.indent--
	return nil
}

func dumpGroup(g fea.Group) string {
	if g.IsClassReference() {
		return "[" + g.Ref + "]"
	}
	return "[" + strings.Join(g.Glyphs, " ") + "]"
}

func dumpSequence(seq []fea.Group) string {
	parts := make([]string, len(seq))
	for i, g := range seq {
		parts[i] = dumpGroup(g)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func dumpRules(rules [][]fea.Group) string {
	parts := make([]string, len(rules))
	for i, seq := range rules {
		parts[i] = dumpSequence(seq)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
