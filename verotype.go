/*
Package verotype decodes TrueType font files.

The heavy lifting happens in two sub-packages: package `tt` reads the
binary SFNT container and exposes typed, lazily decoded tables, and
package `query` answers the questions clients most often have about a
font, such as metrics and naming. This root package bundles the common
entry points: parsing a font from bytes or from a file, and a handful
of convenience lookups.

# Status

Does not yet contain methods for font collections (*.ttc), e.g.,
/System/Library/Fonts/Helvetica.ttc on Mac OS.

# Links

TrueType explained:
https://developer.apple.com/fonts/TrueType-Reference-Manual/
*/
package verotype

import (
	"os"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"

	"github.com/TheOnlyArtz/VeroType/query"
	"github.com/TheOnlyArtz/VeroType/tt"
)

// tracer writes to trace with key 'font.verotype'
func tracer() tracing.Trace {
	return tracing.Select("font.verotype")
}

// FromBinary parses raw font bytes and returns a decoded font.
//
// The input is expected to contain a complete single-font SFNT stream.
// It must not change after parsing for the font to be usable.
func FromBinary(data []byte) (*tt.Font, error) {
	return tt.Parse(data)
}

// LoadFont loads a TrueType font from a file and parses it.
func LoadFont(fontfile string) (*tt.Font, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	tf, err := tt.Parse(bytez)
	if err != nil {
		return nil, err
	}
	if fam, ok := query.NameInfo(tf)["family"]; ok {
		tracer().Debugf("loaded and parsed font %s", fam)
	}
	return tf, nil
}

// FamilyName extracts family and subfamily names from a font's `name` table.
//
// Returned values are empty if no matching records exist or if records
// cannot be decoded by the current name-table reader.
func FamilyName(tf *tt.Font) (family, subfamily string) {
	for nameID, stringValue := range query.NamesRange(tf) {
		switch nameID {
		case sfnt.NameIDFamily:
			family = stringValue
		case sfnt.NameIDSubfamily:
			subfamily = stringValue
		}
	}
	return
}

// GlyphForCodePoint returns the glyph index a font maps a code-point to.
// Code-points the font does not cover map to glyph 0, the missing
// character glyph.
func GlyphForCodePoint(tf *tt.Font, codepoint rune) tt.GlyphIndex {
	return query.GlyphIndex(tf, codepoint)
}
