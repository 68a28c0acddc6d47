package fea

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Tag is an OpenType script, language or feature tag, e.g. "latn" or "TRK ".
// Trailing blanks are kept as they appear in a font; they are stripped when
// a tag is rendered.
//
// The zero Tag stands for the default script or default language.
type Tag string

// Default is the absent tag, i.e. the default script or default language slot.
const Default Tag = ""

// T creates a tag from a string. The OpenType default script tag "DFLT" is
// mapped to Default.
func T(s string) Tag {
	if s == "DFLT" {
		return Default
	}
	return Tag(s)
}

// IsDefault is true for the default script or language slot.
func (t Tag) IsDefault() bool {
	return t == Default
}

// String returns the tag with trailing blanks removed. The default tag renders
// as an empty string; use ScriptString or LanguageString for output contexts.
func (t Tag) String() string {
	return strings.TrimRight(string(t), " ")
}

// ScriptString renders a script tag for output, "DFLT" for the default script.
func (t Tag) ScriptString() string {
	if t.IsDefault() {
		return "DFLT"
	}
	return t.String()
}

// LanguageString renders a language tag for output, "dflt" for the default language.
func (t Tag) LanguageString() string {
	if t.IsDefault() {
		return "dflt"
	}
	return t.String()
}

// CompareTags orders tags with the default slot before any named tag,
// and named tags lexically.
func CompareTags(a, b Tag) int {
	switch {
	case a == b:
		return 0
	case a.IsDefault():
		return -1
	case b.IsDefault():
		return 1
	}
	return strings.Compare(string(a), string(b))
}

// Script tags of the second generation Indic shaping model and their
// ISO 15924 counterparts.
var indic2 = map[string]string{
	"bng2": "Beng", "dev2": "Deva", "gjr2": "Gujr", "gur2": "Guru", "knd2": "Knda",
	"mlm2": "Mlym", "mym2": "Mymr", "ory2": "Orya", "tel2": "Telu", "tml2": "Taml",
}

// ScriptName returns the English name of a script tag, e.g. "Latin" for
// "latn". Tags without an ISO 15924 counterpart are returned unchanged.
func (t Tag) ScriptName() string {
	if t.IsDefault() {
		return "Default"
	}
	code := t.String()
	if iso, ok := indic2[code]; ok {
		code = iso
	}
	scr, err := language.ParseScript(code)
	if err != nil {
		return t.String()
	}
	if name := display.English.Scripts().Name(scr); name != "" {
		return name
	}
	return t.String()
}
