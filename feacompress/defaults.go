package feacompress

import (
	"slices"

	"github.com/npillmayer/featools/fea"
)

// ElideDefaults removes default lookup chains restated by the languages of a
// feature.
//
// Lookups of the table-wide default language system (default script, default
// language) are inherited by every script's default language, and a script's
// default language is inherited by the script's named languages. A language
// starting with its inherited chain has this prefix removed. A language which
// does not start with its chain, or is shorter than it, is marked as not
// including the default chain.
//
// Feature syntax cannot exclude the table-wide lookups from a script's default
// language alone. If any script default does not start with the table-wide
// chain, no script other than the default script inherits it: every script
// default and every named language of a script without a default is marked as
// not including the table-wide chain and keeps its lookups in full.
//
// Lookups are compared by name, so lookups must have been named before.
// ElideDefaults fails with a MalformedInput error if a feature declares a
// (script, language) pair more than once. Languages already processed are
// left alone.
func ElideDefaults(f *fea.Feature) error {
	var tableDefault *fea.Language
	scriptDefaults := make(map[fea.Tag]*fea.Language)
	seen := make(map[fea.LanguageSystem]bool)
	for _, s := range f.Scripts {
		for _, lang := range s.Languages {
			ls := fea.LanguageSystem{Script: s.Tag, Language: lang.Tag}
			if seen[ls] {
				return malformedLanguage(f, ls)
			}
			seen[ls] = true
			switch {
			case s.Tag.IsDefault() && lang.Tag.IsDefault():
				tableDefault = lang
			case lang.Tag.IsDefault():
				scriptDefaults[s.Tag] = lang
			}
		}
	}
	var defaults []string
	if tableDefault != nil {
		defaults = tableDefault.LookupNames()
		tableDefault.Elided = true
	}
	scoped := false
	for _, sd := range scriptDefaults {
		if !sd.Elided && (!sd.IncludeDefault || !hasPrefix(sd.LookupNames(), defaults)) {
			scoped = true
		}
	}
	for _, s := range f.Scripts {
		if sd := scriptDefaults[s.Tag]; sd != nil {
			if scoped {
				exclude(f, s.Tag, sd, defaults)
			} else {
				elide(f, s.Tag, sd, defaults)
			}
		}
	}
	for _, s := range f.Scripts {
		for _, lang := range s.Languages {
			if lang.Tag.IsDefault() {
				continue
			}
			chain := defaults
			if sd := scriptDefaults[s.Tag]; sd != nil {
				if sd.IncludeDefault {
					chain = append(slices.Clone(defaults), sd.LookupNames()...)
				} else {
					chain = sd.LookupNames()
				}
			} else if scoped && !s.Tag.IsDefault() {
				exclude(f, s.Tag, lang, defaults)
				continue
			}
			elide(f, s.Tag, lang, chain)
		}
	}
	return nil
}

func hasPrefix(names, chain []string) bool {
	return len(names) >= len(chain) && slices.Equal(names[:len(chain)], chain)
}

// elide strips chain from the front of a language's lookups, or marks the
// language as excluding the defaults if its lookups do not start with chain.
func elide(f *fea.Feature, script fea.Tag, lang *fea.Language, chain []string) {
	if lang.Elided || !lang.IncludeDefault || !hasPrefix(lang.LookupNames(), chain) {
		exclude(f, script, lang, chain)
		return
	}
	lang.Elided = true
	lang.Lookups = lang.Lookups[len(chain):]
}

// exclude marks a language as not including the default chain. Its lookups
// are left as they are.
func exclude(f *fea.Feature, script fea.Tag, lang *fea.Language, chain []string) {
	if lang.Elided {
		return
	}
	lang.Elided = true
	if !lang.IncludeDefault {
		return
	}
	tracer().Debugf("feature %s: %s/%s excludes default lookups %v", f.Tag,
		script.ScriptString(), lang.Tag.LanguageString(), chain)
	lang.IncludeDefault = false
}

func malformedLanguage(f *fea.Feature, ls fea.LanguageSystem) error {
	err := fea.Malformed("GSUB", "FeatureList", "feature %s declares %s/%s more than once",
		f.Tag, ls.Script.ScriptString(), ls.Language.LanguageString())
	tracer().Errorf("%v", err)
	return err
}
