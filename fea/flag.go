package fea

import (
	"fmt"
	"strings"
)

// LookupType enumerates the GSUB lookup types.
type LookupType uint16

// GSUB lookup types
const (
	SingleSubstitution          LookupType = 1
	MultipleSubstitution        LookupType = 2
	AlternateSubstitution       LookupType = 3
	LigatureSubstitution        LookupType = 4
	ContextSubstitution         LookupType = 5
	ChainingContextSubstitution LookupType = 6
	ExtensionSubstitution       LookupType = 7
	ReverseChainingSubstitution LookupType = 8
)

const lookupTypeNames = "Single/Multiple/Alternate/Ligature/Context/Chaining/Extension/Reverse"

// String returns a short name for a GSUB lookup type.
func (lt LookupType) String() string {
	if lt == 0 || lt > ReverseChainingSubstitution {
		return fmt.Sprintf("Type%d", uint16(lt))
	}
	return strings.Split(lookupTypeNames, "/")[lt-1]
}

// Supported is true for lookup types the decompiler models.
func (lt LookupType) Supported() bool {
	switch lt {
	case SingleSubstitution, AlternateSubstitution, LigatureSubstitution, ChainingContextSubstitution:
		return true
	}
	return false
}

// Lookup flag bits as stored in a font.
const (
	flagRightToLeft         uint16 = 0x0001
	flagIgnoreBaseGlyphs    uint16 = 0x0002
	flagIgnoreLigatures     uint16 = 0x0004
	flagIgnoreMarks         uint16 = 0x0008
	flagMarkAttachmentTypes uint16 = 0xFF00
)

// LookupFlag holds the behaviour flags of a lookup.
//
// MarkAttachmentType records only the presence of a mark attachment class,
// not the class number itself.
type LookupFlag struct {
	RightToLeft        bool
	IgnoreBaseGlyphs   bool
	IgnoreLigatures    bool
	IgnoreMarks        bool
	MarkAttachmentType bool
}

// FlagFromBits interprets a lookup flag word from a font.
func FlagFromBits(bits uint16) LookupFlag {
	return LookupFlag{
		RightToLeft:        bits&flagRightToLeft != 0,
		IgnoreBaseGlyphs:   bits&flagIgnoreBaseGlyphs != 0,
		IgnoreLigatures:    bits&flagIgnoreLigatures != 0,
		IgnoreMarks:        bits&flagIgnoreMarks != 0,
		MarkAttachmentType: bits&flagMarkAttachmentTypes != 0,
	}
}

// IsZero is true if no flag is set.
func (f LookupFlag) IsZero() bool {
	return f == LookupFlag{}
}

// Names lists the feature syntax keywords of the flags which are set, in
// canonical order. MarkAttachmentType is not listed, as it needs a class name.
func (f LookupFlag) Names() []string {
	var names []string
	if f.RightToLeft {
		names = append(names, "RightToLeft")
	}
	if f.IgnoreBaseGlyphs {
		names = append(names, "IgnoreBaseGlyphs")
	}
	if f.IgnoreLigatures {
		names = append(names, "IgnoreLigatures")
	}
	if f.IgnoreMarks {
		names = append(names, "IgnoreMarks")
	}
	return names
}

func (f LookupFlag) String() string {
	names := f.Names()
	if f.MarkAttachmentType {
		names = append(names, "MarkAttachmentType")
	}
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, ",")
}
