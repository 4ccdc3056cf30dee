package tt

import (
	"sort"
	"unicode/utf16"
)

// Helpers to assemble small synthetic fonts for decoder tests.

func putU16(b []byte, at int, v uint16) {
	b[at] = byte(v >> 8)
	b[at+1] = byte(v)
}

func putU32(b []byte, at int, v uint32) {
	b[at] = byte(v >> 24)
	b[at+1] = byte(v >> 16)
	b[at+2] = byte(v >> 8)
	b[at+3] = byte(v)
}

func putI16(b []byte, at int, v int16) {
	putU16(b, at, uint16(v))
}

type synthTable struct {
	tag  string
	data []byte
}

// buildFont assembles a font binary: offset table, directory records sorted
// by tag, then the table data on 4-byte boundaries with valid checksums.
func buildFont(tables ...synthTable) []byte {
	sorted := make([]synthTable, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool { return T(sorted[i].tag) < T(sorted[j].tag) })

	n := len(sorted)
	font := make([]byte, 12+16*n)
	putU32(font, 0, 0x00010000)
	putU16(font, 4, uint16(n))
	entrySelector := 0
	for 1<<(entrySelector+1) <= n {
		entrySelector++
	}
	searchRange := 16 << entrySelector
	putU16(font, 6, uint16(searchRange))
	putU16(font, 8, uint16(entrySelector))
	putU16(font, 10, uint16(16*n-searchRange))

	for i, tb := range sorted {
		for len(font)%4 != 0 {
			font = append(font, 0)
		}
		rec := 12 + 16*i
		copy(font[rec:], (T(tb.tag)).String())
		putU32(font, rec+4, tableChecksum(tb.data))
		putU32(font, rec+8, uint32(len(font)))
		putU32(font, rec+12, uint32(len(tb.data)))
		font = append(font, tb.data...)
	}
	return font
}

func makeHead(indexToLocFormat uint16) []byte {
	b := make([]byte, 54)
	putU32(b, 0, 0x00010000) // version
	putU32(b, 4, 0x00015000) // fontRevision
	putU32(b, 12, headMagic)
	putU16(b, 16, 0x0003) // flags
	putU16(b, 18, 2048)   // unitsPerEm
	putI16(b, 36, -100)   // xMin
	putI16(b, 38, -200)   // yMin
	putI16(b, 40, 1500)   // xMax
	putI16(b, 42, 1800)   // yMax
	putU16(b, 46, 9) // lowestRecPPEM
	putI16(b, 48, 2) // fontDirectionHint
	putU16(b, 50, indexToLocFormat)
	return b
}

func makeMaxp(numGlyphs uint16) []byte {
	b := make([]byte, 32)
	putU32(b, 0, 0x00010000)
	putU16(b, 4, numGlyphs)
	return b
}

func makeHhea(numberOfHMetrics uint16) []byte {
	b := make([]byte, 36)
	putU32(b, 0, 0x00010000)
	putI16(b, 4, 1600)  // ascender
	putI16(b, 6, -400)  // descender
	putI16(b, 8, 80)    // lineGap
	putU16(b, 10, 1400) // advanceWidthMax
	putI16(b, 12, -50)  // minLeftSideBearing
	putI16(b, 18, 1)    // caretSlopeRise
	putU16(b, 34, numberOfHMetrics)
	return b
}

// makeHmtx encodes long metric records followed by trailing left side bearings.
func makeHmtx(metrics []HMetricRecord, lsbs []int16) []byte {
	b := make([]byte, len(metrics)*4+len(lsbs)*2)
	for i, m := range metrics {
		putU16(b, i*4, m.AdvanceWidth)
		putI16(b, i*4+2, m.LeftSideBearing)
	}
	base := len(metrics) * 4
	for i, lsb := range lsbs {
		putI16(b, base+i*2, lsb)
	}
	return b
}

// makeLocaLong encodes glyph offsets in the long (uint32) format.
func makeLocaLong(offsets ...uint32) []byte {
	b := make([]byte, len(offsets)*4)
	for i, off := range offsets {
		putU32(b, i*4, off)
	}
	return b
}

// makeLocaShort encodes glyph offsets in the short format; offsets are halved.
func makeLocaShort(offsets ...uint32) []byte {
	b := make([]byte, len(offsets)*2)
	for i, off := range offsets {
		putU16(b, i*2, uint16(off/2))
	}
	return b
}

// encodeSimpleGlyph encodes contours as one glyph data block, using long
// signed deltas for every coordinate.
func encodeSimpleGlyph(contours []Contour) []byte {
	var xMin, yMin, xMax, yMax int16
	first := true
	numPoints := 0
	for _, contour := range contours {
		for _, p := range contour {
			if first || int16(p.X) < xMin {
				xMin = int16(p.X)
			}
			if first || int16(p.Y) < yMin {
				yMin = int16(p.Y)
			}
			if first || int16(p.X) > xMax {
				xMax = int16(p.X)
			}
			if first || int16(p.Y) > yMax {
				yMax = int16(p.Y)
			}
			first = false
			numPoints++
		}
	}
	b := make([]byte, 10+len(contours)*2+2)
	putI16(b, 0, int16(len(contours)))
	putI16(b, 2, xMin)
	putI16(b, 4, yMin)
	putI16(b, 6, xMax)
	putI16(b, 8, yMax)
	at := 10
	endPt := -1
	for _, contour := range contours {
		endPt += len(contour)
		putU16(b, at, uint16(endPt))
		at += 2
	}
	putU16(b, at, 0) // instructionLength
	for _, contour := range contours {
		for _, p := range contour {
			flag := byte(0)
			if p.OnCurve {
				flag = byte(onCurvePoint)
			}
			b = append(b, flag)
		}
	}
	var x int32
	for _, contour := range contours {
		for _, p := range contour {
			dx := make([]byte, 2)
			putI16(dx, 0, int16(p.X-x))
			b = append(b, dx...)
			x = p.X
		}
	}
	var y int32
	for _, contour := range contours {
		for _, p := range contour {
			dy := make([]byte, 2)
			putI16(dy, 0, int16(p.Y-y))
			b = append(b, dy...)
			y = p.Y
		}
	}
	for len(b)%4 != 0 { // keep glyph blocks aligned for loca offsets
		b = append(b, 0)
	}
	return b
}

type synthComponent struct {
	glyph   GlyphIndex
	dx, dy  int16
	scale   f2dot14     // 0 means no scale entry
	xyScale *[2]f2dot14 // separate x and y scale entries
	matrix  *[4]f2dot14 // full 2x2 transform entries
	anchors *[2]uint16  // point-matching args instead of an XY offset
}

// encodeCompositeGlyph encodes a composite glyph block. Components default to
// word-sized XY offset args; anchors switches a component to point-matching
// args, and at most one of scale, xyScale and matrix appends the corresponding
// transform entry.
func encodeCompositeGlyph(bbox [4]int16, components ...synthComponent) []byte {
	b := make([]byte, 10)
	putI16(b, 0, -1)
	putI16(b, 2, bbox[0])
	putI16(b, 4, bbox[1])
	putI16(b, 6, bbox[2])
	putI16(b, 8, bbox[3])
	for i, comp := range components {
		flags := arg1And2AreWords
		if comp.anchors == nil {
			flags |= argsAreXYValues
		}
		var xformEntries []f2dot14
		switch {
		case comp.matrix != nil:
			flags |= weHaveATwoByTwo
			xformEntries = comp.matrix[:]
		case comp.xyScale != nil:
			flags |= weHaveAnXAndYScale
			xformEntries = comp.xyScale[:]
		case comp.scale != 0:
			flags |= weHaveAScale
			xformEntries = []f2dot14{comp.scale}
		}
		if i+1 < len(components) {
			flags |= moreComponents
		}
		entry := make([]byte, 8)
		putU16(entry, 0, uint16(flags))
		putU16(entry, 2, uint16(comp.glyph))
		if comp.anchors != nil {
			putU16(entry, 4, comp.anchors[0])
			putU16(entry, 6, comp.anchors[1])
		} else {
			putI16(entry, 4, comp.dx)
			putI16(entry, 6, comp.dy)
		}
		b = append(b, entry...)
		for _, s := range xformEntries {
			word := make([]byte, 2)
			putI16(word, 0, int16(s))
			b = append(b, word...)
		}
	}
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// makeCmapFormat4 builds a cmap table with a single format 4 subtable for
// platform 3, encoding 1. Segments use idDelta addressing only.
type cmapSegment struct {
	start, end uint16
	delta      uint16
}

func makeCmapFormat4(segments ...cmapSegment) []byte {
	segments = append(segments, cmapSegment{start: 0xFFFF, end: 0xFFFF, delta: 1})
	segCount := len(segments)
	sub := make([]byte, 16+segCount*8)
	putU16(sub, 0, 4)
	putU16(sub, 2, uint16(len(sub))) // length
	putU16(sub, 6, uint16(segCount*2))
	for i, seg := range segments {
		putU16(sub, 14+i*2, seg.end)
		putU16(sub, 14+segCount*2+2+i*2, seg.start)
		putU16(sub, 14+segCount*4+2+i*2, seg.delta)
		// idRangeOffset stays 0
	}
	return wrapCmap(3, 1, sub)
}

type cmapGroup struct {
	start, end uint32
	glyph      uint32
}

func makeCmapFormat12(groups ...cmapGroup) []byte {
	sub := make([]byte, 16+len(groups)*12)
	putU16(sub, 0, 12)
	putU32(sub, 4, uint32(len(sub)))
	putU32(sub, 12, uint32(len(groups)))
	for i, g := range groups {
		putU32(sub, 16+i*12, g.start)
		putU32(sub, 16+i*12+4, g.end)
		putU32(sub, 16+i*12+8, g.glyph)
	}
	return wrapCmap(3, 10, sub)
}

// wrapCmap wraps a single subtable into a cmap table with one encoding record.
func wrapCmap(platformID, encodingID uint16, sub []byte) []byte {
	b := make([]byte, 12)
	putU16(b, 2, 1) // one encoding record
	putU16(b, 4, platformID)
	putU16(b, 6, encodingID)
	putU32(b, 8, 12) // subtable offset
	return append(b, sub...)
}

// makeName builds a name table with UTF-16BE strings for platform 3, enc 1.
func makeName(entries map[uint16]string) []byte {
	ids := make([]int, 0, len(entries))
	for id := range entries {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	header := make([]byte, 6+len(ids)*12)
	putU16(header, 2, uint16(len(ids)))
	putU16(header, 4, uint16(len(header)))
	var storage []byte
	for i, id := range ids {
		var str []byte
		for _, u := range utf16.Encode([]rune(entries[uint16(id)])) {
			str = append(str, byte(u>>8), byte(u))
		}
		rec := 6 + i*12
		putU16(header, rec, 3)   // platform
		putU16(header, rec+2, 1) // encoding
		putU16(header, rec+4, 0x0409)
		putU16(header, rec+6, uint16(id))
		putU16(header, rec+8, uint16(len(str)))
		putU16(header, rec+10, uint16(len(storage)))
		storage = append(storage, str...)
	}
	return append(header, storage...)
}

// sampleGlyphSet returns the glyf data blocks and loca offsets of the five
// glyph test font: a square .notdef, a triangle, an empty glyph, a composite
// placing the triangle at an offset, and a two-contour glyph.
func sampleGlyphSet() (glyf []byte, offsets []uint32) {
	square := encodeSimpleGlyph([]Contour{{
		{X: 0, Y: 0, OnCurve: true},
		{X: 100, Y: 0, OnCurve: true},
		{X: 100, Y: 100, OnCurve: true},
		{X: 0, Y: 100, OnCurve: true},
	}})
	triangle := encodeSimpleGlyph([]Contour{{
		{X: 0, Y: 0, OnCurve: true},
		{X: 500, Y: 0, OnCurve: true},
		{X: 250, Y: 700, OnCurve: true},
	}})
	composite := encodeCompositeGlyph([4]int16{50, 25, 550, 725},
		synthComponent{glyph: 1, dx: 50, dy: 25})
	twoContours := encodeSimpleGlyph([]Contour{
		{
			{X: 0, Y: 0, OnCurve: true},
			{X: 400, Y: 0, OnCurve: true},
			{X: 200, Y: 600, OnCurve: false},
		},
		{
			{X: 150, Y: 100, OnCurve: true},
			{X: 250, Y: 100, OnCurve: true},
			{X: 200, Y: 300, OnCurve: true},
		},
	})
	offsets = make([]uint32, 6)
	offsets[1] = uint32(len(square))
	offsets[2] = offsets[1] + uint32(len(triangle))
	offsets[3] = offsets[2] // glyph 2 is empty
	offsets[4] = offsets[3] + uint32(len(composite))
	offsets[5] = offsets[4] + uint32(len(twoContours))
	glyf = append(glyf, square...)
	glyf = append(glyf, triangle...)
	glyf = append(glyf, composite...)
	glyf = append(glyf, twoContours...)
	return glyf, offsets
}

// sampleFont builds a complete little font with five glyphs, mapping
// 'A'…'D' to glyphs 1…4.
func sampleFont() []byte {
	glyf, offsets := sampleGlyphSet()
	return buildFont(
		synthTable{tag: "head", data: makeHead(1)},
		synthTable{tag: "maxp", data: makeMaxp(5)},
		synthTable{tag: "hhea", data: makeHhea(2)},
		synthTable{tag: "hmtx", data: makeHmtx(
			[]HMetricRecord{{600, 50}, {550, 0}},
			[]int16{0, 25, -10},
		)},
		synthTable{tag: "loca", data: makeLocaLong(offsets...)},
		synthTable{tag: "glyf", data: glyf},
		synthTable{tag: "cmap", data: makeCmapFormat4(cmapSegment{start: 65, end: 68, delta: 0xFFC0})},
		synthTable{tag: "name", data: makeName(map[uint16]string{
			NameFontFamily:    "Synthetica",
			NameFontSubfamily: "Regular",
		})},
	)
}
