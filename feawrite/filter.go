package feawrite

import (
	"github.com/npillmayer/featools/fea"
)

// Filter removes redundant statements from a tree of events. The input is
// not modified.
//
//   - A named script is kept if a lookup, lookup reference or subtable follows
//     before the next script, or a language excluding the defaults does.
//   - The default script is kept only if such content follows, and either
//     content precedes it within its block or a later script's default
//     language excludes the defaults. In the latter case the default script
//     keeps its lookups from being inherited by the other scripts.
//   - The default language is never kept, as a script declaration selects it.
//   - A named language is kept if a lookup, lookup reference or subtable
//     follows before the next language or script, or if it excludes the
//     defaults.
//   - A lookup flag which would be written like the flag in effect is dropped.
//     Mark attachment types have no syntax of their own and do not count.
//   - The single lookup of a feature which does not reference it is written
//     inline.
func Filter(sc *Scope) *Scope {
	return filterScope(sc, fea.LookupFlag{})
}

func filterScope(sc *Scope, initial fea.LookupFlag) *Scope {
	out := &Scope{}
	for i, ev := range sc.Events {
		rest := sc.Events[i+1:]
		switch ev.Kind {
		case ScriptEvent:
			if !keepScript(ev, rest, out.Events) {
				continue
			}
		case LanguageEvent:
			if !keepLanguage(ev, rest) {
				continue
			}
		case LookupFlagEvent:
			if flagText(ev.Flag) == flagText(currentFlag(out.Events, initial)) {
				continue
			}
		case FeatureEvent:
			ev = filterFeature(ev)
		case LookupEvent:
			filtered := *ev
			filtered.Body = filterScope(ev.Body, currentFlag(out.Events, initial))
			ev = &filtered
		}
		out.add(ev)
	}
	return out
}

func keepScript(ev *Event, rest []*Event, kept []*Event) bool {
	follows := false
	for _, other := range rest {
		if other.Kind == ScriptEvent {
			break
		}
		if other.Kind.content() || (other.Kind == LanguageEvent && !other.IncludeDefault) {
			follows = true
			break
		}
	}
	if !follows || !ev.Script.IsDefault() {
		return follows
	}
	for _, other := range kept {
		if other.Kind.content() {
			return true
		}
	}
	for _, other := range rest {
		if other.Kind == LanguageEvent && !other.Script.IsDefault() &&
			other.Language.IsDefault() && !other.IncludeDefault {
			return true
		}
	}
	return false
}

func keepLanguage(ev *Event, rest []*Event) bool {
	if ev.Language.IsDefault() {
		return false
	}
	if !ev.IncludeDefault {
		return true
	}
	for _, other := range rest {
		if other.Kind == ScriptEvent || other.Kind == LanguageEvent {
			break
		}
		if other.Kind.content() {
			return true
		}
	}
	return false
}

// currentFlag finds the lookup flag in effect at the end of the kept events.
// A script declaration resets the flag.
func currentFlag(kept []*Event, initial fea.LookupFlag) fea.LookupFlag {
	for i := len(kept) - 1; i >= 0; i-- {
		switch kept[i].Kind {
		case LookupFlagEvent:
			return kept[i].Flag
		case ScriptEvent:
			return fea.LookupFlag{}
		}
	}
	return initial
}

func filterFeature(ev *Event) *Event {
	filtered := *ev
	filtered.Body = filterScope(ev.Body, fea.LookupFlag{})
	var single *Event
	count := 0
	for _, other := range filtered.Body.Events {
		if other.Kind == LookupEvent {
			single = other
			count++
		}
	}
	if count != 1 {
		return &filtered
	}
	for _, other := range filtered.Body.Events {
		if other.Kind == LookupReferenceEvent && other.Name == single.Name {
			return &filtered
		}
	}
	tracer().Debugf("feature %s: writing lookup %s inline", ev.Name, single.Name)
	single.Inline = true
	return &filtered
}
