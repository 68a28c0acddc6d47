package feawrite

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/featools/fea"
	"github.com/npillmayer/featools/feacompress"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Helpers ---------------------------------------------------------------

// text joins lines the way the writer does.
func text(lines ...string) string {
	return strings.Join(lines, "\n")
}

func golden(dump string) string {
	return strings.TrimSpace(dump)
}

func sub(from, to string) *fea.Lookup {
	return &fea.Lookup{Type: fea.SingleSubstitution, Subtables: []fea.Subtable{
		&fea.SingleSubst{Target: fea.Glyphs(from), Substitution: fea.Glyphs(to)},
	}}
}

func named(name string, l *fea.Lookup) *fea.Lookup {
	l.Name = name
	return l
}

func lang(tag string, includeDefault bool, items ...fea.LookupItem) *fea.Language {
	l := fea.NewLanguage(fea.Tag(tag))
	l.IncludeDefault = includeDefault
	l.Lookups = items
	return l
}

func script(tag string, langs ...*fea.Language) *fea.Script {
	return &fea.Script{Tag: fea.T(tag), Languages: langs}
}

func feature(tag string, scripts ...*fea.Script) *fea.Feature {
	f := fea.NewFeature(fea.Tag(tag))
	f.Scripts = scripts
	return f
}

func table(features ...*fea.Feature) *fea.Table {
	t := fea.NewTable("GSUB")
	t.Features = features
	return t
}

// uncompressed builds a single-feature table as a decompiler delivers it,
// with every lookup materialized in every language.
func uncompressed(tag string, scripts ...*fea.Script) *fea.Table {
	return table(feature(tag, scripts...))
}

func compressed(t *testing.T, tab *fea.Table) *fea.Table {
	require.NoError(t, feacompress.Compress(tab))
	return tab
}

// --- Test Suite Preparation ------------------------------------------------

type FeaSyntaxTestEnviron struct {
	suite.Suite
}

func TestFeaSyntax(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	suite.Run(t, new(FeaSyntaxTestEnviron))
}

func (env *FeaSyntaxTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("font.fea").SetTraceLevel(tracing.LevelInfo)
}

func (env *FeaSyntaxTestEnviron) format(t *fea.Table, opts ...Option) string {
	out, err := Fea(t, opts...)
	env.Require().NoError(err)
	return out
}

// --- Tests -----------------------------------------------------------------

func (env *FeaSyntaxTestEnviron) TestSingleLookupIsInlined() {
	tab := table(feature("TST1", script("DFLT", lang("", true, named("TST1_1", sub("A", "B"))))))
	env.Equal(text(
		"languagesystem DFLT dflt;",
		"",
		"",
		"feature TST1 {",
		"\tsub A by B;",
		"} TST1;",
		"",
	), env.format(tab))
}

func (env *FeaSyntaxTestEnviron) TestUnfilteredOutput() {
	tab := table(feature("TST1", script("DFLT", lang("", true, named("TST1_1", sub("A", "B"))))))
	env.Equal(text(
		"languagesystem DFLT dflt;",
		"",
		"",
		"feature TST1 {",
		"",
		"\tscript DFLT;",
		"",
		"\t\tlanguage dflt;",
		"",
		"\t\t\tlookup TST1_1 {",
		"\t\t\t\tlookupflag 0;",
		"",
		"\t\t\t\tsub A by B;",
		"\t\t\t} TST1_1;",
		"",
		"} TST1;",
		"",
	), env.format(tab, FilterRedundancies(false)))
}

func (env *FeaSyntaxTestEnviron) TestWhitespace() {
	tab := table(feature("TST1", script("DFLT", lang("", true, named("TST1_1", sub("A", "B"))))))
	out := env.format(tab, Whitespace("    "))
	env.Contains(out, "\n    sub A by B;\n")
}

func (env *FeaSyntaxTestEnviron) TestGlobalLookupReferences() {
	tab := table(
		feature("TST1", script("DFLT", lang("", true, fea.LookupReference{Name: "TST1_TST2_1"}))),
		feature("TST2", script("DFLT", lang("", true, fea.LookupReference{Name: "TST1_TST2_1"}))),
	)
	tab.Lookups = []*fea.Lookup{named("TST1_TST2_1", sub("A", "B"))}
	env.Equal(text(
		"languagesystem DFLT dflt;",
		"",
		"",
		"lookup TST1_TST2_1 {",
		"\tsub A by B;",
		"} TST1_TST2_1;",
		"",
		"",
		"feature TST1 {",
		"",
		"\tlookup TST1_TST2_1;",
		"",
		"} TST1;",
		"",
		"",
		"feature TST2 {",
		"",
		"\tlookup TST1_TST2_1;",
		"",
		"} TST2;",
		"",
	), env.format(tab))
}

func (env *FeaSyntaxTestEnviron) TestScriptsAndLanguages() {
	tab := table(feature("TST1",
		script("DFLT", lang("", true, named("TST1_1", sub("A", "B")))),
		script("cyrl", lang("", true, named("TST1_2", sub("G", "H")))),
		script("latn",
			lang("", true, named("TST1_3", sub("C", "D"))),
			lang("TRK ", true, named("TST1_4", sub("E", "F"))),
		),
	))
	env.Equal(text(
		"languagesystem DFLT dflt;",
		"languagesystem cyrl dflt;",
		"languagesystem latn dflt;",
		"languagesystem latn TRK;",
		"",
		"",
		"feature TST1 {",
		"",
		"\tlookup TST1_1 {",
		"\t\tsub A by B;",
		"\t} TST1_1;",
		"",
		"\tscript cyrl;",
		"",
		"\t\tlookup TST1_2 {",
		"\t\t\tsub G by H;",
		"\t\t} TST1_2;",
		"",
		"\tscript latn;",
		"",
		"\t\tlookup TST1_3 {",
		"\t\t\tsub C by D;",
		"\t\t} TST1_3;",
		"",
		"\t\tlanguage TRK;",
		"",
		"\t\t\tlookup TST1_4 {",
		"\t\t\t\tsub E by F;",
		"\t\t\t} TST1_4;",
		"",
		"} TST1;",
		"",
	), env.format(tab))
}

func (env *FeaSyntaxTestEnviron) TestExcludeDefault() {
	tab := table(feature("TST1",
		script("DFLT", lang("", true, named("TST1_1", sub("A", "B")))),
		script("latn",
			lang("", true),
			lang("TRK ", false, named("TST1_2", sub("E", "F"))),
		),
	))
	env.Equal(text(
		"languagesystem DFLT dflt;",
		"languagesystem latn dflt;",
		"languagesystem latn TRK;",
		"",
		"",
		"feature TST1 {",
		"",
		"\tlookup TST1_1 {",
		"\t\tsub A by B;",
		"\t} TST1_1;",
		"",
		"\tscript latn;",
		"",
		"\t\tlanguage TRK exclude_dflt;",
		"",
		"\t\t\tlookup TST1_2 {",
		"\t\t\t\tsub E by F;",
		"\t\t\t} TST1_2;",
		"",
		"} TST1;",
		"",
	), env.format(tab))
}

func (env *FeaSyntaxTestEnviron) TestEmptyLanguagesAreDropped() {
	tab := table(feature("TST1",
		script("DFLT", lang("", true, named("TST1_1", sub("A", "B")))),
		script("latn", lang("", true), lang("TRK ", true)),
	))
	out := env.format(tab)
	env.NotContains(out, "script latn;")
	env.NotContains(out, "\tlanguage")
	env.Contains(out, "languagesystem latn TRK;")
}

func (env *FeaSyntaxTestEnviron) TestLookupFlags() {
	l := named("TST1_1", sub("A", "B"))
	l.Flag = fea.LookupFlag{RightToLeft: true, IgnoreMarks: true}
	tab := table(feature("TST1", script("DFLT", lang("", true, l))))
	env.Equal(text(
		"languagesystem DFLT dflt;",
		"",
		"",
		"feature TST1 {",
		"\tlookupflag RightToLeft, IgnoreMarks;",
		"",
		"\tsub A by B;",
		"} TST1;",
		"",
	), env.format(tab))
	//
	l.Flag = fea.LookupFlag{MarkAttachmentType: true}
	env.NotContains(env.format(tab), "lookupflag")
}

func (env *FeaSyntaxTestEnviron) TestReferencedLookupIsNotInlined() {
	local := named("TST1_1", sub("A", "B"))
	tab := table(feature("TST1",
		script("DFLT", lang("", true, local)),
		script("latn", lang("", false, fea.LookupReference{Name: "TST1_1"})),
	))
	out := env.format(tab)
	env.Contains(out, "\tscript DFLT;\n")
	env.Contains(out, "\t\tlookup TST1_1 {\n")
	env.Contains(out, "\tscript latn;\n")
	env.Contains(out, "\t\tlookup TST1_1;\n")
}

// A script default not inheriting the table-wide lookups: the default script
// stays declared, so its lookups are not inherited by latn.
func (env *FeaSyntaxTestEnviron) TestScriptDefaultExcludingDefaults() {
	tab := table(feature("TST1",
		script("DFLT", lang("", true, named("TST1_1", sub("A", "B")))),
		script("latn",
			lang("", false, named("TST1_2", sub("C", "D"))),
			lang("TRK ", true, named("TST1_3", sub("E", "F"))),
		),
	))
	out := env.format(tab)
	env.NotContains(out, "exclude_dflt")
	env.NotContains(out, "language dflt")
	env.Contains(out, "\tscript DFLT;\n")
	env.Contains(out, "\t\tlookup TST1_1 {\n")
	env.Contains(out, "\t\tlookup TST1_2 {\n")
	env.Contains(out, "\t\tlanguage TRK;\n")
	env.Contains(out, "\t\t\tlookup TST1_3 {\n")
	env.Less(strings.Index(out, "script DFLT;"), strings.Index(out, "lookup TST1_1 {"))
	env.Less(strings.Index(out, "lookup TST1_1 {"), strings.Index(out, "script latn;"))
	//
	unfiltered := env.format(tab, FilterRedundancies(false))
	env.NotContains(unfiltered, "exclude_dflt")
	env.Contains(unfiltered, "\t\tlanguage dflt;\n")
}

func (env *FeaSyntaxTestEnviron) TestClassDefinitions() {
	tab := table(feature("TST1", script("DFLT", lang("", true, &fea.Lookup{
		Name: "TST1_1",
		Type: fea.SingleSubstitution,
		Subtables: []fea.Subtable{&fea.SingleSubst{
			Target:       fea.ClassReference("@TST1_1"),
			Substitution: fea.ClassReference("@TST1_2"),
		}},
	}))))
	tab.Features[0].Classes.Add("@TST1_2", []string{"B", "D", "F"})
	tab.Features[0].Classes.Add("@TST1_1", []string{"A", "C", "E"})
	tab.Classes.Add("@TST1_TST2_1", []string{"X"})
	env.Equal(text(
		"languagesystem DFLT dflt;",
		"",
		"@TST1_TST2_1 = [X];",
		"",
		"",
		"feature TST1 {",
		"\t@TST1_1 = [A C E];",
		"\t@TST1_2 = [B D F];",
		"\tsub @TST1_1 by @TST1_2;",
		"} TST1;",
		"",
	), env.format(tab))
}

func (env *FeaSyntaxTestEnviron) TestRuleSyntax() {
	cases := []struct {
		st   fea.Subtable
		want []string
	}{
		{&fea.SingleSubst{Target: fea.Glyphs("A", "C"), Substitution: fea.Glyphs("B", "D")},
			[]string{"sub [A C] by [B D];"}},
		{&fea.AlternateSubst{Sets: []fea.AlternateSet{
			{Glyph: "A", Alternates: []string{"B", "C"}},
			{Glyph: "D", Alternates: []string{"E"}},
		}}, []string{"sub A from [B C];", "sub D from [E];"}},
		{&fea.LigatureSubst{Ligatures: []fea.Ligature{
			{Components: []string{"f", "i"}, Glyph: "fi"},
			{Components: []string{"f", "f", "i"}, Glyph: "ffi"},
		}}, []string{"sub f i by fi;", "sub f f i by ffi;"}},
		{&fea.ChainingContext{
			Backtrack:    []fea.Group{fea.Glyphs("A"), fea.Glyphs("B")},
			Input:        []fea.Group{fea.Glyphs("C"), fea.Glyphs("D")},
			Lookahead:    []fea.Group{fea.Glyphs("F"), fea.ClassReference("@G")},
			Substitution: []fea.Group{fea.Glyphs("E")},
		}, []string{"sub A B C' D' F @G by E;"}},
		{&fea.ChainingContext{
			Input:        []fea.Group{fea.Glyphs("x", "y")},
			Substitution: []fea.Group{fea.Glyphs("x.sc", "y.sc")},
		}, []string{"sub [x y]' by [x.sc y.sc];"}},
		{&fea.ChainingContext{
			Backtrack: []fea.Group{fea.Glyphs("E")},
			Input:     []fea.Group{fea.Glyphs("F")},
			Lookahead: []fea.Group{fea.Glyphs("G")},
		}, []string{"ignore sub E F' G;"}},
	}
	for _, c := range cases {
		rules, err := subtableText(c.st)
		env.Require().NoError(err)
		env.Equal(c.want, rules)
	}
}

func (env *FeaSyntaxTestEnviron) TestUnknownSubtable() {
	tab := table(feature("TST1", script("DFLT", lang("", true, &fea.Lookup{
		Name: "TST1_1", Type: fea.SingleSubstitution, Subtables: []fea.Subtable{nil},
	}))))
	_, err := Fea(tab)
	env.Require().Error(err)
	env.True(errors.Is(err, fea.ErrUnsupportedFeature))
	_, err = Dump(tab)
	env.True(errors.Is(err, fea.ErrUnsupportedFeature))
}

func (env *FeaSyntaxTestEnviron) TestWriteToWriter() {
	tab := table(feature("TST1", script("DFLT", lang("", true, named("TST1_1", sub("A", "B"))))))
	var buf bytes.Buffer
	env.Require().NoError(New().Write(&buf, tab))
	env.Equal(env.format(tab), buf.String())
}

func (env *FeaSyntaxTestEnviron) TestFilterLeavesInputUntouched() {
	tab := table(feature("TST1", script("DFLT", lang("", true, named("TST1_1", sub("A", "B"))))))
	events := Collect(tab)
	filtered := Filter(events)
	env.Len(events.Events[1].Body.Events, 3, "script, language and lookup collected")
	env.False(events.Events[1].Body.Events[2].Inline)
	env.Len(filtered.Events[1].Body.Events, 1)
	env.True(filtered.Events[1].Body.Events[0].Inline)
	env.Len(filtered.Events[1].Body.Events[0].Body.Events, 1, "zero flag dropped")
}

// --- Dump ------------------------------------------------------------------

func TestDumpGlobalLookups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	tab := table(
		feature("TST2", script("DFLT", lang("", true, sub("A", "B")))),
		feature("TST1", script("DFLT", lang("", true, sub("A", "B"), sub("C", "D")))),
	)
	dump, err := Dump(compressed(t, tab))
	require.NoError(t, err)
	assert.Equal(t, golden(`
LanguageSystem: DFLT None
Lookup: TST1_TST2_1
    LookupFlag:
        rightToLeft: false
        ignoreBaseGlyphs: false
        ignoreLigatures: false
        ignoreMarks: false
        markAttachmentType: false
    GSUBSubtable Type 1:
        backtrack: []
        lookahead: []
        target: [[[A]]]
        substitution: [[[B]]]
Feature: TST2
    Script: DFLT
        Language: None
            Include Default: true
            Lookup Reference: TST1_TST2_1
Feature: TST1
    Script: DFLT
        Language: None
            Include Default: true
            Lookup Reference: TST1_TST2_1
            Lookup: TST1_1
                LookupFlag:
                    rightToLeft: false
                    ignoreBaseGlyphs: false
                    ignoreLigatures: false
                    ignoreMarks: false
                    markAttachmentType: false
                GSUBSubtable Type 1:
                    backtrack: []
                    lookahead: []
                    target: [[[C]]]
                    substitution: [[[D]]]
`), dump)
}

func TestDumpDefaultLanguageLookups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	tab := uncompressed("TST1",
		script("DFLT", lang("", true, sub("A", "B"))),
		script("latn",
			lang("", true, sub("A", "B")),
			lang("TRK ", true, sub("E", "F")),
		),
	)
	dump, err := Dump(compressed(t, tab))
	require.NoError(t, err)
	assert.Equal(t, golden(`
LanguageSystem: DFLT None
LanguageSystem: latn None
LanguageSystem: latn TRK
Feature: TST1
    Script: DFLT
        Language: None
            Include Default: true
            Lookup: TST1_1
                LookupFlag:
                    rightToLeft: false
                    ignoreBaseGlyphs: false
                    ignoreLigatures: false
                    ignoreMarks: false
                    markAttachmentType: false
                GSUBSubtable Type 1:
                    backtrack: []
                    lookahead: []
                    target: [[[A]]]
                    substitution: [[[B]]]
    Script: latn
        Language: None
            Include Default: true
        Language: TRK
            Include Default: false
            Lookup: TST1_2
                LookupFlag:
                    rightToLeft: false
                    ignoreBaseGlyphs: false
                    ignoreLigatures: false
                    ignoreMarks: false
                    markAttachmentType: false
                GSUBSubtable Type 1:
                    backtrack: []
                    lookahead: []
                    target: [[[E]]]
                    substitution: [[[F]]]
`), dump)
}

func TestDumpClasses(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	l := &fea.Lookup{Type: fea.SingleSubstitution, Subtables: []fea.Subtable{
		&fea.SingleSubst{Target: fea.Glyphs("A", "C", "E"), Substitution: fea.Glyphs("B", "D", "F")},
	}}
	l.Flag = fea.LookupFlag{MarkAttachmentType: true}
	dump, err := Dump(compressed(t, uncompressed("TST1", script("DFLT", lang("", true, l)))))
	require.NoError(t, err)
	assert.Equal(t, golden(`
LanguageSystem: DFLT None
Feature: TST1
    Class: @TST1_1: [A C E]
    Class: @TST1_2: [B D F]
    Script: DFLT
        Language: None
            Include Default: true
            Lookup: TST1_1
                LookupFlag:
                    rightToLeft: false
                    ignoreBaseGlyphs: false
                    ignoreLigatures: false
                    ignoreMarks: false
                    markAttachmentType: true
                GSUBSubtable Type 1:
                    backtrack: []
                    lookahead: []
                    target: [[[@TST1_1]]]
                    substitution: [[[@TST1_2]]]
`), dump)
}

func TestDumpRuleShapes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	d := &dumper{}
	require.NoError(t, d.dumpSubtable(&fea.AlternateSubst{Sets: []fea.AlternateSet{
		{Glyph: "A", Alternates: []string{"B", "C"}},
	}}))
	require.NoError(t, d.dumpSubtable(&fea.LigatureSubst{Ligatures: []fea.Ligature{
		{Components: []string{"A", "C"}, Glyph: "D"},
		{Components: []string{"B", "C"}, Glyph: "D"},
	}}))
	require.NoError(t, d.dumpSubtable(&fea.ChainingContext{
		Backtrack:    []fea.Group{fea.Glyphs("A"), fea.Glyphs("B")},
		Input:        []fea.Group{fea.Glyphs("C"), fea.Glyphs("D")},
		Lookahead:    []fea.Group{fea.Glyphs("F"), fea.Glyphs("G")},
		Substitution: []fea.Group{fea.Glyphs("E")},
	}))
	require.NoError(t, d.dumpSubtable(&fea.ChainingContext{
		Backtrack: []fea.Group{fea.Glyphs("E")},
		Input:     []fea.Group{fea.Glyphs("F")},
		Lookahead: []fea.Group{fea.Glyphs("G")},
	}))
	assert.Equal(t, golden(`
GSUBSubtable Type 3:
    backtrack: []
    lookahead: []
    target: [[[A]]]
    substitution: [[[B C]]]
GSUBSubtable Type 4:
    backtrack: []
    lookahead: []
    target: [[[A] [C]] [[B] [C]]]
    substitution: [[[D]] [[D]]]
GSUBSubtable Type 6:
    backtrack: [[A] [B]]
    lookahead: [[F] [G]]
    target: [[[C] [D]]]
    substitution: [[[E]]]
GSUBSubtable Type 6:
    backtrack: [[E]]
    lookahead: [[G]]
    target: [[[F]]]
    substitution: []
`), strings.Join(d.lines, "\n"))
}

func TestNilTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fea")
	defer teardown()
	//
	out, err := Fea(nil)
	assert.NoError(t, err)
	assert.Empty(t, out)
	out, err = Dump(nil)
	assert.NoError(t, err)
	assert.Empty(t, out)
}
