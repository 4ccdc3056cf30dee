package query

import (
	"golang.org/x/image/font/sfnt"

	"github.com/TheOnlyArtz/VeroType/tt"
)

// FontMetrics retrieves selected metrics of a font. Metrics depending on a
// missing or undecodable table stay at their zero value.
func FontMetrics(tf *tt.Font) FontMetricsInfo {
	metrics := FontMetricsInfo{}
	if tf == nil {
		return metrics
	}
	if hhea, err := tf.HHea(); err == nil {
		metrics.Ascent = sfnt.Units(hhea.Ascender)
		metrics.Descent = sfnt.Units(hhea.Descender)
		metrics.LineGap = sfnt.Units(hhea.LineGap)
		metrics.MaxAdvance = sfnt.Units(hhea.AdvanceWidthMax)
	} else {
		tracer().Infof("font has no usable hhea table: %v", err)
	}
	if head, err := tf.Head(); err == nil {
		metrics.UnitsPerEm = sfnt.Units(head.UnitsPerEm)
	}
	return metrics
}

// GlyphIndex returns the glyph index for a given code-point.
// If the code-point cannot be found, 0 is returned.
//
// Character codes that do not correspond to any glyph in the font map to
// glyph index 0, which holds a special glyph representing a missing
// character, commonly known as '.notdef'.
func GlyphIndex(tf *tt.Font, codepoint rune) tt.GlyphIndex {
	if tf == nil {
		return 0
	}
	return tf.GlyphIndex(codepoint)
}

// CodePointForGlyph returns the code-point for a given glyph index.
//
// This is an inefficient operation: code-points are checked sequentially
// until one produces the given glyph. If no code-point maps to the glyph,
// 0 is returned.
func CodePointForGlyph(tf *tt.Font, gid tt.GlyphIndex) rune {
	if tf == nil || gid == 0 {
		return 0
	}
	cmap, err := tf.CMap()
	if err != nil {
		return 0
	}
	lookup := cmap.GlyphIndexMap
	for r := rune(0); r <= 0x10FFFF; r++ {
		if lookup.Lookup(r) == gid {
			return r
		}
	}
	return 0
}

// GlyphMetrics retrieves metrics for a given glyph.
func GlyphMetrics(tf *tt.Font, gid tt.GlyphIndex) (GlyphMetricsInfo, error) {
	metrics := GlyphMetricsInfo{}
	hmtx, err := tf.HMtx()
	if err != nil {
		return metrics, err
	}
	aw, lsb, err := hmtx.HMetrics(gid)
	if err != nil {
		return metrics, err
	}
	metrics.Advance = sfnt.Units(aw)
	metrics.LSB = sfnt.Units(lsb)
	outline, err := tf.GlyphOutline(gid)
	if err != nil {
		return metrics, err
	}
	metrics.BBox = BoundingBox{
		MinX: sfnt.Units(outline.XMin),
		MinY: sfnt.Units(outline.YMin),
		MaxX: sfnt.Units(outline.XMax),
		MaxY: sfnt.Units(outline.YMax),
	}
	// rsb = aw - (lsb + xMax - xMin). Glyphs without contours have no
	// defined bbox; leave RSB at zero for those.
	if !metrics.BBox.IsEmpty() {
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics, nil
}
