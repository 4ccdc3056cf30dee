package query

import (
	"iter"

	"golang.org/x/image/font/sfnt"

	"github.com/TheOnlyArtz/VeroType/tt"
)

// NamesRange yields decoded `(nameID, value)` pairs from a font's
// 'name' table.
//
// Records in encodings the decoder does not support, as well as malformed
// or out-of-bounds records, are skipped. When a name ID occurs in several
// encodings, each decodable record is yielded.
func NamesRange(tf *tt.Font) iter.Seq2[sfnt.NameID, string] {
	return func(yield func(sfnt.NameID, string) bool) {
		if tf == nil {
			return
		}
		name, err := tf.Name()
		if err != nil {
			tracer().Debugf("font has no usable name table: %v", err)
			return
		}
		for _, record := range name.Records() {
			value, err := name.Decode(record)
			if err != nil || value == "" {
				continue
			}
			if !yield(sfnt.NameID(record.NameID), value) {
				return
			}
		}
	}
}

// NameInfo collects the most common naming entries of a font into a map.
// Map keys are "family", "subfamily", "version", "full-name" and
// "postscript-name"; entries the font does not carry are absent.
func NameInfo(tf *tt.Font) map[string]string {
	info := map[string]string{}
	if tf == nil {
		return info
	}
	name, err := tf.Name()
	if err != nil {
		return info
	}
	keys := map[string]uint16{
		"family":          tt.NameFontFamily,
		"subfamily":       tt.NameFontSubfamily,
		"version":         tt.NameVersion,
		"full-name":       tt.NameFullFontName,
		"postscript-name": tt.NamePostScriptName,
	}
	for key, nameID := range keys {
		if entry := name.Entry(nameID); entry.IsSome() {
			info[key] = entry.MustUnwrap()
		}
	}
	return info
}
