package tt

import "sort"

// This table defines mapping of character codes to a default glyph index.
// Different subtables may be defined that each contain mappings for different
// character encoding schemes. The table header indicates the character
// encodings for which subtables are present.
//
// From the spec.: “If a font includes Unicode subtables for both 16-bit
// encoding (typically, format 4) and also 32-bit encoding (formats 10 or 12),
// then the characters supported by the subtable for 32-bit encoding should be
// a superset of the characters supported by the subtable for 16-bit encoding,
// and the 32-bit encoding should be used by applications.”
//
// We decode subtable formats 0, 4 and 12 and prefer encodings in this order:
//
//	3 (Win)      10   Unicode full, usually format 12
//	3 (Win)      1    Unicode BMP, usually format 4
//	0 (Unicode)  *    Unicode, any encoding ID
//	anything else

// CMapTable is the character-to-glyph mapping table 'cmap'.
// GlyphIndexMap is the subtable selected by the preference order above.
// All decodable subtables remain reachable through Subtable.
type CMapTable struct {
	tableBase
	GlyphIndexMap GlyphIndexMap
	records       []EncodingRecord
	subtables     []GlyphIndexMap // parallel to records; nil for unsupported formats
}

// EncodingRecord describes one cmap subtable slot.
type EncodingRecord struct {
	PlatformID uint16
	EncodingID uint16
	Format     uint16
	Offset     uint32 // from the beginning of the cmap table
}

// EncodingRecords lists the subtable slots of the cmap table, in font order.
func (t *CMapTable) EncodingRecords() []EncodingRecord {
	recs := make([]EncodingRecord, len(t.records))
	copy(recs, t.records)
	return recs
}

// Subtable returns the glyph index map for an explicit platform/encoding
// pair, bypassing the default preference order. It returns None if the font
// has no such subtable or its format is not supported.
func (t *CMapTable) Subtable(platformID, encodingID uint16) Option[GlyphIndexMap] {
	for i, rec := range t.records {
		if rec.PlatformID == platformID && rec.EncodingID == encodingID && t.subtables[i] != nil {
			return Some(t.subtables[i])
		}
	}
	return None[GlyphIndexMap]()
}

// GlyphIndexMap maps Unicode code points to glyph indices.
// Code points not covered by the map yield glyph 0, the missing character.
type GlyphIndexMap interface {
	Lookup(r rune) GlyphIndex
	Format() uint16
}

// --- Decoding --------------------------------------------------------------

func decodeCMap(b binarySegm, rec TableRecord, numGlyphs int) (*CMapTable, error) {
	n, err := b.u16(2) // number of sub-tables
	if err != nil {
		return nil, errMalformedTable(tagCMap, rec.Offset, "cmap table header incomplete")
	}
	tracer().Debugf("font cmap has %d sub-tables in %d bytes", n, len(b))
	if n == 0 || int(n) > MaxCMapSubtables {
		return nil, errMalformedTable(tagCMap, rec.Offset+2, "unreasonable subtable count %d", n)
	}
	const headerSize, entrySize = 4, 8
	if headerSize+entrySize*int(n) > len(b) {
		return nil, errMalformedTable(tagCMap, rec.Offset,
			"cmap table too small for %d encoding records", n)
	}
	t := &CMapTable{}
	t.tableBase = tableBase{data: b, name: tagCMap, offset: rec.Offset, length: rec.Length}
	best := -1
	for i := 0; i < int(n); i++ {
		er, _ := b.view(headerSize+entrySize*i, entrySize)
		enc := EncodingRecord{
			PlatformID: u16(er),
			EncodingID: u16(er[2:]),
			Offset:     u32(er[4:]),
		}
		var sub GlyphIndexMap
		if int(enc.Offset)+2 <= len(b) {
			enc.Format, _ = b.u16(int(enc.Offset))
			sub = decodeCMapSubtable(b[enc.Offset:], enc.Format, numGlyphs)
			if sub == nil {
				tracer().Infof("cmap subtable %d (platform=%d, encoding=%d, format=%d) not decodable",
					i, enc.PlatformID, enc.EncodingID, enc.Format)
			}
		}
		t.records = append(t.records, enc)
		t.subtables = append(t.subtables, sub)
		if sub != nil && (best < 0 || encodingScore(enc) > encodingScore(t.records[best])) {
			best = i
		}
	}
	if best < 0 {
		return nil, errMalformedTable(tagCMap, rec.Offset, "no supported cmap subtable found")
	}
	t.GlyphIndexMap = t.subtables[best]
	return t, nil
}

// encodingScore ranks platform/encoding pairs for default subtable selection.
// A higher score wins; equal scores keep the record seen first.
func encodingScore(enc EncodingRecord) int {
	switch {
	case enc.PlatformID == 3 && enc.EncodingID == 10:
		return 4
	case enc.PlatformID == 3 && enc.EncodingID == 1:
		return 3
	case enc.PlatformID == 0:
		return 2
	}
	return 1
}

// decodeCMapSubtable decodes a single subtable, or returns nil if the format
// is unsupported or the data too short. A broken subtable never fails the
// whole cmap decode; another subtable may still serve.
func decodeCMapSubtable(b binarySegm, format uint16, numGlyphs int) GlyphIndexMap {
	switch format {
	case 0:
		return decodeCMapFormat0(b, numGlyphs)
	case 4:
		return decodeCMapFormat4(b, numGlyphs)
	case 12:
		return decodeCMapFormat12(b, numGlyphs)
	}
	return nil
}

// --- Format 0: byte encoding table -----------------------------------------

type format0GlyphIndex struct {
	glyphIDs  [256]uint8
	numGlyphs int
}

func decodeCMapFormat0(b binarySegm, numGlyphs int) GlyphIndexMap {
	const size = 6 + 256
	if len(b) < size {
		return nil
	}
	m := format0GlyphIndex{numGlyphs: numGlyphs}
	copy(m.glyphIDs[:], b[6:size])
	return m
}

func (m format0GlyphIndex) Format() uint16 { return 0 }

func (m format0GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 || r >= 256 {
		return 0
	}
	return clampGlyph(GlyphIndex(m.glyphIDs[r]), m.numGlyphs)
}

// --- Format 4: segment mapping to delta values -----------------------------

type format4GlyphIndex struct {
	startCode     []uint16
	endCode       []uint16
	idDelta       []uint16 // kept unsigned; addition is modulo 65536 anyway
	idRangeOffset []uint16
	glyphIDArray  []uint16
	numGlyphs     int
}

func decodeCMapFormat4(b binarySegm, numGlyphs int) GlyphIndexMap {
	if len(b) < 14 {
		return nil
	}
	segCountX2, _ := b.u16(6)
	if segCountX2 == 0 || segCountX2%2 != 0 {
		return nil
	}
	segCount := int(segCountX2 / 2)
	// endCode, reservedPad, startCode, idDelta, idRangeOffset
	arrays := 14 + segCount*8 + 2
	if len(b) < arrays {
		return nil
	}
	m := format4GlyphIndex{
		startCode:     make([]uint16, segCount),
		endCode:       make([]uint16, segCount),
		idDelta:       make([]uint16, segCount),
		idRangeOffset: make([]uint16, segCount),
		numGlyphs:     numGlyphs,
	}
	for i := 0; i < segCount; i++ {
		m.endCode[i], _ = b.u16(14 + i*2)
		m.startCode[i], _ = b.u16(14 + segCount*2 + 2 + i*2)
		m.idDelta[i], _ = b.u16(14 + segCount*4 + 2 + i*2)
		m.idRangeOffset[i], _ = b.u16(14 + segCount*6 + 2 + i*2)
		if m.startCode[i] > m.endCode[i] {
			return nil
		}
		if i > 0 && m.endCode[i] < m.endCode[i-1] {
			return nil // segments must be sorted by end code
		}
	}
	// whatever follows the fixed arrays is the glyph ID array
	rest := b[arrays:]
	m.glyphIDArray = make([]uint16, len(rest)/2)
	for i := range m.glyphIDArray {
		m.glyphIDArray[i] = u16(rest[i*2:])
	}
	return m
}

func (m format4GlyphIndex) Format() uint16 { return 4 }

func (m format4GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 || r >= 0x10000 {
		return 0
	}
	c := uint16(r)
	segCount := len(m.endCode)
	// segments are sorted by endCode; find the first one that may hold c
	i := sort.Search(segCount, func(i int) bool { return m.endCode[i] >= c })
	if i == segCount || c < m.startCode[i] {
		return 0
	}
	if m.idRangeOffset[i] == 0 {
		// modulo 65536 by way of uint16 overflow
		return clampGlyph(GlyphIndex(c+m.idDelta[i]), m.numGlyphs)
	}
	// The idRangeOffset value is a byte offset from its own position within
	// the idRangeOffset array into the glyph ID array.
	index := int(m.idRangeOffset[i]/2) + int(c-m.startCode[i]) - (segCount - i)
	if index < 0 || index >= len(m.glyphIDArray) {
		return 0
	}
	gid := m.glyphIDArray[index]
	if gid == 0 {
		return 0
	}
	return clampGlyph(GlyphIndex(gid+m.idDelta[i]), m.numGlyphs)
}

// --- Format 12: segmented coverage -----------------------------------------

type format12GlyphIndex struct {
	startCharCode []uint32
	endCharCode   []uint32
	startGlyphID  []uint32
	numGlyphs     int
}

func decodeCMapFormat12(b binarySegm, numGlyphs int) GlyphIndexMap {
	if len(b) < 16 {
		return nil
	}
	numGroups, _ := b.u32(12)
	if 16+int64(numGroups)*12 > int64(len(b)) {
		return nil
	}
	m := format12GlyphIndex{
		startCharCode: make([]uint32, numGroups),
		endCharCode:   make([]uint32, numGroups),
		startGlyphID:  make([]uint32, numGroups),
		numGlyphs:     numGlyphs,
	}
	for i := 0; i < int(numGroups); i++ {
		m.startCharCode[i], _ = b.u32(16 + i*12)
		m.endCharCode[i], _ = b.u32(16 + i*12 + 4)
		m.startGlyphID[i], _ = b.u32(16 + i*12 + 8)
		if m.endCharCode[i] < m.startCharCode[i] {
			return nil
		}
		if i > 0 && m.startCharCode[i] <= m.endCharCode[i-1] {
			return nil // groups must be sorted and non-overlapping
		}
	}
	return m
}

func (m format12GlyphIndex) Format() uint16 { return 12 }

func (m format12GlyphIndex) Lookup(r rune) GlyphIndex {
	if r < 0 {
		return 0
	}
	c := uint32(r)
	n := len(m.endCharCode)
	i := sort.Search(n, func(i int) bool { return m.endCharCode[i] >= c })
	if i == n || c < m.startCharCode[i] {
		return 0
	}
	gid := m.startGlyphID[i] + (c - m.startCharCode[i])
	if gid > 0xFFFF {
		return 0
	}
	return clampGlyph(GlyphIndex(gid), m.numGlyphs)
}

// clampGlyph maps glyph indices at or beyond the font's glyph count to the
// missing character. Character maps of broken fonts may point anywhere.
func clampGlyph(gid GlyphIndex, numGlyphs int) GlyphIndex {
	if int(gid) >= numGlyphs {
		return 0
	}
	return gid
}
