package query

import "github.com/TheOnlyArtz/VeroType/tt"

// FontType returns a string describing the flavor of a font, one of
// "TrueType", "CFF" or "unknown".
func FontType(tf *tt.Font) string {
	if tf == nil || tf.Header == nil {
		return "unknown"
	}
	switch tf.Header.FontType {
	case 0x00010000, 0x74727565: // 0x00010000 and 'true'
		return "TrueType"
	case 0x4f54544f: // 'OTTO'
		return "CFF"
	}
	return "unknown"
}

// GlyphCount returns the number of glyphs a font contains, as declared by
// its 'maxp' table. A font without a usable 'maxp' table reports 0 glyphs.
func GlyphCount(tf *tt.Font) int {
	if tf == nil {
		return 0
	}
	return tf.NumGlyphs()
}

// TableList returns the table tags of a font as strings, in the order of
// the font's table directory.
func TableList(tf *tt.Font) []string {
	if tf == nil {
		return nil
	}
	tags := tf.TableTags()
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.String()
	}
	return names
}
