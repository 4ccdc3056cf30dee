package tt

import "sync"

// Font represents the internal structure of a TrueType font.
// It is created by Parse, which validates the font header and the table
// directory eagerly. The tables themselves are decoded lazily: the first
// typed access to a table decodes it, later accesses return the memoized
// result. Decoding is safe for concurrent use.
type Font struct {
	Header        *FontHeader
	data          binarySegm
	dir           map[Tag]TableRecord
	order         []Tag         // table tags in directory order
	parseWarnings []FontWarning // Warnings accumulated during parsing
	parseOptions  []ParseOption // Options to guide the parsing process

	head tableSlot[*HeadTable]
	maxp tableSlot[*MaxPTable]
	hhea tableSlot[*HHeaTable]
	hmtx tableSlot[*HMtxTable]
	loca tableSlot[*LocaTable]
	glyf tableSlot[*GlyfTable]
	cmap tableSlot[*CMapTable]
	name tableSlot[*NameTable]
}

// ParseOptions guides and influences the parsing of the font.
type ParseOption int

const (
	IsTestfont      ParseOption = iota // relaxes cross-checks that hand-built fonts typically fail
	VerifyChecksums                    // verify per-table checksums; mismatches become warnings
)

// hasParseOption reports whether o was passed to Parse for this font.
func (tf *Font) hasParseOption(o ParseOption) bool {
	return hasOption(tf.parseOptions, o)
}

// FontHeader is the fixed 12-byte header preceding the table directory.
// TrueType fonts carry the value 0x00010000 or 'true' in FontType; fonts
// with CFF outlines use 'OTTO'.
//
// SearchRange, EntrySelector and RangeShift are binary-search helper values
// derived from TableCount. They are redundant and frequently wrong in
// real-world fonts, so they are recorded but never trusted.
type FontHeader struct {
	FontType      uint32
	TableCount    uint16
	SearchRange   uint16
	EntrySelector uint16
	RangeShift    uint16
}

// TableRecord is one 16-byte entry of the table directory.
type TableRecord struct {
	Tag      Tag
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// tableSlot memoizes the result of a table decode. The zero value is ready
// for use. A failed decode is memoized as well, so a broken table reports
// the same error on every access instead of re-decoding.
type tableSlot[T any] struct {
	once  sync.Once
	table T
	err   error
}

func (s *tableSlot[T]) get(decode func() (T, error)) (T, error) {
	s.once.Do(func() {
		s.table, s.err = decode()
	})
	return s.table, s.err
}

// Record returns the directory record for a given tag, if the table is
// present in the font.
func (tf *Font) Record(tag Tag) Option[TableRecord] {
	if rec, ok := tf.dir[tag]; ok {
		return Some(rec)
	}
	return None[TableRecord]()
}

// RawTable returns the undecoded bytes of a table. The slice aliases the
// font's binary data and should be treated as read-only by clients.
func (tf *Font) RawTable(tag Tag) Option[[]byte] {
	return Map(tf.Record(tag), func(rec TableRecord) []byte {
		return []byte(tf.segment(rec))
	})
}

// TableTags returns a list of tags, one for each table contained in the font,
// in directory order.
func (tf *Font) TableTags() []Tag {
	tags := make([]Tag, len(tf.order))
	copy(tags, tf.order)
	return tags
}

// segment returns the byte segment of a table. Directory validation during
// Parse guarantees the record to be within the font's bounds.
func (tf *Font) segment(rec TableRecord) binarySegm {
	return tf.data[rec.Offset : rec.Offset+rec.Length]
}

// Warnings returns all warnings encountered during font parsing.
// Warnings indicate potential issues that are generally safe to ignore.
func (tf *Font) Warnings() []FontWarning {
	if tf.parseWarnings == nil {
		return []FontWarning{}
	}
	return tf.parseWarnings
}

// --- Typed table access ----------------------------------------------------

// Head returns the decoded font header table 'head'.
func (tf *Font) Head() (*HeadTable, error) {
	return tf.head.get(func() (*HeadTable, error) {
		rec, ok := tf.dir[tagHead]
		if !ok {
			return nil, errMissingTable(tagHead)
		}
		return decodeHead(tf.segment(rec), rec, tf.hasParseOption(IsTestfont))
	})
}

// MaxP returns the decoded maximum profile table 'maxp'.
func (tf *Font) MaxP() (*MaxPTable, error) {
	return tf.maxp.get(func() (*MaxPTable, error) {
		rec, ok := tf.dir[tagMaxP]
		if !ok {
			return nil, errMissingTable(tagMaxP)
		}
		return decodeMaxP(tf.segment(rec), rec)
	})
}

// HHea returns the decoded horizontal header table 'hhea'.
func (tf *Font) HHea() (*HHeaTable, error) {
	return tf.hhea.get(func() (*HHeaTable, error) {
		rec, ok := tf.dir[tagHHea]
		if !ok {
			return nil, errMissingTable(tagHHea)
		}
		return decodeHHea(tf.segment(rec), rec)
	})
}

// HMtx returns the decoded horizontal metrics table 'hmtx'.
// Decoding needs the glyph count from 'maxp' and the metrics count from
// 'hhea', so a failure in either of those surfaces here.
func (tf *Font) HMtx() (*HMtxTable, error) {
	return tf.hmtx.get(func() (*HMtxTable, error) {
		rec, ok := tf.dir[tagHMtx]
		if !ok {
			return nil, errMissingTable(tagHMtx)
		}
		maxp, err := tf.MaxP()
		if err != nil {
			return nil, err
		}
		hhea, err := tf.HHea()
		if err != nil {
			return nil, err
		}
		return decodeHMtx(tf.segment(rec), rec, maxp.NumGlyphs, hhea.NumberOfHMetrics)
	})
}

// Loca returns the decoded index-to-location table 'loca'. Interpretation
// of the entries depends on head.IndexToLocFormat.
func (tf *Font) Loca() (*LocaTable, error) {
	return tf.loca.get(func() (*LocaTable, error) {
		rec, ok := tf.dir[tagLoca]
		if !ok {
			return nil, errMissingTable(tagLoca)
		}
		head, err := tf.Head()
		if err != nil {
			return nil, err
		}
		maxp, err := tf.MaxP()
		if err != nil {
			return nil, err
		}
		return decodeLoca(tf.segment(rec), rec, head.IndexToLocFormat, maxp.NumGlyphs)
	})
}

// Glyf returns the glyph data table 'glyf'. The table itself is a bag of
// per-glyph blocks; use Font.GlyphOutline to decode a single glyph.
func (tf *Font) Glyf() (*GlyfTable, error) {
	return tf.glyf.get(func() (*GlyfTable, error) {
		rec, ok := tf.dir[tagGlyf]
		if !ok {
			return nil, errMissingTable(tagGlyf)
		}
		t := &GlyfTable{}
		t.tableBase = tableBase{
			data:   tf.segment(rec),
			name:   tagGlyf,
			offset: rec.Offset,
			length: rec.Length,
		}
		return t, nil
	})
}

// CMap returns the decoded character-to-glyph mapping table 'cmap'.
func (tf *Font) CMap() (*CMapTable, error) {
	return tf.cmap.get(func() (*CMapTable, error) {
		rec, ok := tf.dir[tagCMap]
		if !ok {
			return nil, errMissingTable(tagCMap)
		}
		return decodeCMap(tf.segment(rec), rec, tf.glyphCountHint())
	})
}

// Name returns the decoded naming table 'name'.
func (tf *Font) Name() (*NameTable, error) {
	return tf.name.get(func() (*NameTable, error) {
		rec, ok := tf.dir[tagName]
		if !ok {
			return nil, errMissingTable(tagName)
		}
		return decodeName(tf.segment(rec), rec)
	})
}

// FontMetrics collects font-wide scalar metrics, drawn from the tables
// 'head' and 'hhea'.
type FontMetrics struct {
	UnitsPerEm uint16 // design units per em square
	Ascent     int16  // typographic ascender
	Descent    int16  // typographic descender, typically negative
	LineGap    int16  // typographic line gap
	MaxAdvance uint16 // maximum advance width of any glyph
}

// Metrics returns the font-wide metric values. Fields depending on a
// missing or broken table stay at their zero value; a font carrying only
// a 'head' table still reports its units per em.
func (tf *Font) Metrics() FontMetrics {
	metrics := FontMetrics{}
	if head, err := tf.Head(); err == nil {
		metrics.UnitsPerEm = head.UnitsPerEm
	}
	if hhea, err := tf.HHea(); err == nil {
		metrics.Ascent = hhea.Ascender
		metrics.Descent = hhea.Descender
		metrics.LineGap = hhea.LineGap
		metrics.MaxAdvance = hhea.AdvanceWidthMax
	}
	return metrics
}

// AdvanceWidth returns the advance width of a glyph in font units, from
// table 'hmtx'.
func (tf *Font) AdvanceWidth(gid GlyphIndex) (uint16, error) {
	hmtx, err := tf.HMtx()
	if err != nil {
		return 0, err
	}
	aw, _, err := hmtx.HMetrics(gid)
	return aw, err
}

// NumGlyphs returns the number of glyphs in the font, as declared by table
// 'maxp'. It returns 0 if maxp is absent or broken.
func (tf *Font) NumGlyphs() int {
	maxp, err := tf.MaxP()
	if err != nil {
		return 0
	}
	return maxp.NumGlyphs
}

// glyphCountHint is NumGlyphs or an open upper bound if maxp is unusable.
// Used to clamp glyph indices produced by cmap subtables.
func (tf *Font) glyphCountHint() int {
	if n := tf.NumGlyphs(); n > 0 {
		return n
	}
	return 1 << 16
}

// GlyphIndex returns the glyph index for a Unicode code point, using the
// best character map subtable of the font. Code points not covered by the
// map yield glyph 0, the missing character; so does a font without a
// usable character map.
func (tf *Font) GlyphIndex(r rune) GlyphIndex {
	cmap, err := tf.CMap()
	if err != nil {
		tracer().Debugf("font has no usable cmap table: %v", err)
		return 0
	}
	return cmap.GlyphIndexMap.Lookup(r)
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is a 4-byte identifier for a font table, re-interpreted as a uint32.
type Tag uint32

// Tags of the tables this package decodes.
var (
	tagHead = T("head")
	tagMaxP = T("maxp")
	tagHHea = T("hhea")
	tagHMtx = T("hmtx")
	tagLoca = T("loca")
	tagGlyf = T("glyf")
	tagCMap = T("cmap")
	tagName = T("name")
)

// MakeTag creates a Tag from 4 bytes, e.g.,
//
//	MakeTag([]byte("cmap"))
//
// If b is shorter or longer, it will be silently extended or cut as appropriate.
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// --- Table -----------------------------------------------------------------

// Table is the common surface of decoded font tables.
//
// Required tables for TrueType outline fonts: 'cmap' (character to glyph
// mapping), 'head' (font header), 'hhea' (horizontal header), 'hmtx'
// (horizontal metrics), 'maxp' (maximum profile), 'name' (naming table),
// 'glyf' (glyph data) and 'loca' (index to location).
//
// Tables this package does not interpret are still listed in the directory
// and reachable through Font.RawTable.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; should be treated as read-only by clients
	TableTag() Tag            // 4-byte table tag
}

// tableBase is a common parent for all kinds of font tables.
type tableBase struct {
	data   binarySegm // a table is a slice of font data
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
}

// Extent returns offset and byte size of this table within the font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Clients must not modify the slice.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

// TableTag returns the table's 4-byte tag.
func (tb *tableBase) TableTag() Tag {
	return tb.name
}

// --- Concrete table types --------------------------------------------------

// HeadTable gives global information about the font. All fields of the
// fixed 54-byte layout are decoded.
type HeadTable struct {
	tableBase
	FontRevision       uint32 // fixed-point revision, set by the font designer
	ChecksumAdjustment uint32
	Flags              uint16
	UnitsPerEm         uint16 // values 16 … 16384 are valid
	Created            int64  // seconds since 1904-01-01, font creation
	Modified           int64  // seconds since 1904-01-01, last modification
	XMin               int16  // union of all glyph bounding boxes
	YMin               int16
	XMax               int16
	YMax               int16
	MacStyle           uint16
	LowestRecPPEM      uint16 // smallest readable size in pixels
	FontDirectionHint  int16
	IndexToLocFormat   uint16 // needed to interpret loca table
	GlyphDataFormat    int16
}

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
type MaxPTable struct {
	tableBase
	Version   uint32
	NumGlyphs int
}

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	NumberOfHMetrics    int
}

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table. By definition, index
// zero points to the “missing character”. A font with N glyphs carries N+1
// entries; the extent of glyph i is the range between entries i and i+1.
type LocaTable struct {
	tableBase
	inx2loc func(t *LocaTable, i int) (uint32, error) // entry i as a glyf byte offset
	locCnt  int                                       // number of entries, numGlyphs+1
}

// EntryCount returns the number of loca entries.
func (t *LocaTable) EntryCount() int {
	return t.locCnt
}

// GlyphExtent returns the byte range of a glyph's data block within the
// 'glyf' table. An empty range (start == end) is valid and denotes a glyph
// without outline, such as the space character.
func (t *LocaTable) GlyphExtent(gid GlyphIndex) (start, end uint32, err error) {
	if int(gid)+1 >= t.locCnt {
		return 0, 0, errInvalidGlyph(gid, t.locCnt-1)
	}
	if start, err = t.inx2loc(t, int(gid)); err != nil {
		return 0, 0, err
	}
	if end, err = t.inx2loc(t, int(gid)+1); err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, errMalformedTable(tagLoca, uint32(int(gid)*2),
			"glyph %d extent runs backwards (%d > %d)", gid, start, end)
	}
	return start, end, nil
}

func shortLocaVersion(t *LocaTable, i int) (uint32, error) {
	loc, err := t.data.u16(i * 2)
	if err != nil {
		return 0, errOutOfBounds(tagLoca, uint32(i*2), "loca entry past end of table")
	}
	// short entries store half the actual offset
	return uint32(loc) * 2, nil
}

func longLocaVersion(t *LocaTable, i int) (uint32, error) {
	loc, err := t.data.u32(i * 4)
	if err != nil {
		return 0, errOutOfBounds(tagLoca, uint32(i*4), "loca entry past end of table")
	}
	return loc, nil
}

// GlyfTable is the glyph data table. Its contents are a concatenation of
// per-glyph blocks, located through table 'loca' and decoded on demand by
// Font.GlyphOutline.
type GlyfTable struct {
	tableBase
}

// HMtxTable contains metric information for the horizontal layout of each
// glyph in the font. Each element in the contained hMetrics-array has two
// parts: the advance width and left side bearing. The value NumberOfHMetrics
// is taken from the 'hhea' table. In a monospaced font, only one entry is
// required but that entry may not be omitted. Optionally, an array of left
// side bearings follows; the corresponding glyphs are assumed to have the
// same advance width as that found in the last entry in the hMetrics array.
type HMtxTable struct {
	tableBase
	NumberOfHMetrics int
	numGlyphs        int
	longMetrics      []HMetricRecord
	leftSideBearings []int16
}

// HMetricRecord is one long horizontal metric record from table hmtx.
type HMetricRecord struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

// LongMetrics returns a copy of all long horizontal metrics records.
func (t *HMtxTable) LongMetrics() []HMetricRecord {
	if t == nil || len(t.longMetrics) == 0 {
		return nil
	}
	metrics := make([]HMetricRecord, len(t.longMetrics))
	copy(metrics, t.longMetrics)
	return metrics
}

// LeftSideBearings returns a copy of trailing LSB records.
func (t *HMtxTable) LeftSideBearings() []int16 {
	if t == nil || len(t.leftSideBearings) == 0 {
		return nil
	}
	lsbs := make([]int16, len(t.leftSideBearings))
	copy(lsbs, t.leftSideBearings)
	return lsbs
}

// GlyphCount returns the glyph count used when decoding this hmtx table.
func (t *HMtxTable) GlyphCount() int {
	if t == nil {
		return 0
	}
	return t.numGlyphs
}

// HMetrics returns the advance width and left side bearing for a glyph.
func (t *HMtxTable) HMetrics(g GlyphIndex) (uint16, int16, error) {
	if t == nil || t.numGlyphs == 0 || int(g) >= t.numGlyphs {
		return 0, 0, errInvalidGlyph(g, t.GlyphCount())
	}
	if int(g) < len(t.longMetrics) {
		m := t.longMetrics[int(g)]
		return m.AdvanceWidth, m.LeftSideBearing, nil
	}
	i := int(g) - len(t.longMetrics)
	if len(t.longMetrics) == 0 || i >= len(t.leftSideBearings) {
		return 0, 0, errMalformedTable(tagHMtx, 0,
			"no metric record for glyph %d", g)
	}
	return t.longMetrics[len(t.longMetrics)-1].AdvanceWidth, t.leftSideBearings[i], nil
}
