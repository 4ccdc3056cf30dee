package tt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Code comments occasionally cite passages from the OpenType specification
// version 1.8.4; see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// Maximum reasonable counts for font table structures.
// These limits prevent malicious fonts from claiming unreasonably large counts
// that could lead to excessive memory allocation or out-of-bounds reads.
const (
	MaxTableCount    = 512   // table directory entries; real fonts have < 30
	MaxGlyphCount    = 65536 // Maximum glyph index (uint16)
	MaxCMapSubtables = 64    // cmap encoding records; real fonts have < 10
	MaxNameRecords   = 4096  // name table records
)

// MaxCompositeDepth bounds the nesting of composite glyphs.
// This follows ttf-parser's approach of bounded recursion.
const MaxCompositeDepth = 8

// ---------------------------------------------------------------------------

// Checked arithmetic operations to prevent integer overflow

// checkedMulInt checks for overflow in multiplication of two integers
func checkedMulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > 0 && b > 0 && a > math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if a < 0 && b < 0 && a < math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if (a < 0 && b > 0 && a < math.MinInt/b) || (a > 0 && b < 0 && b < math.MinInt/a) {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddInt checks for overflow in addition of two integers
func checkedAddInt(a, b int) (int, error) {
	if b > 0 && a > math.MaxInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	if b < 0 && a < math.MinInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// checkedAddUint32 checks for overflow in addition of two uint32 values
func checkedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// ---------------------------------------------------------------------------

// Parse parses a TrueType font from a byte slice.
//
// The font header and the table directory are validated eagerly; a font with
// a broken directory is rejected here. The tables themselves are not decoded
// until accessed through the typed accessors of Font.
//
// A Font needs ongoing access to the font's byte-data after the Parse
// function returns. The bytes are assumed immutable while the Font remains
// in use.
func Parse(font []byte, opts ...ParseOption) (*Font, error) {
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	r := bytes.NewReader(font)
	h := FontHeader{}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, errMalformedFont(0, "font header incomplete: %v", err)
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	if !(h.FontType == 0x4f54544f || // OTTO
		h.FontType == 0x00010000 || // TrueType
		h.FontType == 0x74727565) { // true
		return nil, errMalformedFont(0, "font type not supported: %x", h.FontType)
	}
	if h.TableCount == 0 || int(h.TableCount) > MaxTableCount {
		return nil, errMalformedFont(4, "unreasonable table count %d", h.TableCount)
	}

	ec := &errorCollector{}
	tf := &Font{
		Header:       &h,
		data:         binarySegm(font),
		dir:          make(map[Tag]TableRecord, h.TableCount),
		order:        make([]Tag, 0, h.TableCount),
		parseOptions: opts,
	}

	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	dirSize, err := checkedMulInt(16, int(h.TableCount))
	if err != nil {
		return nil, errMalformedFont(12, "table count too large: %v", err)
	}
	buf, err := tf.data.view(12, dirSize)
	if err != nil {
		return nil, errMalformedFont(12, "font too small for %d table records", h.TableCount)
	}
	pos := uint32(12)
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		rec := TableRecord{
			Tag:      MakeTag(b),
			Checksum: u32(b[4:8]),
			Offset:   u32(b[8:12]),
			Length:   u32(b[12:16]),
		}
		// Fonts in the wild get the sort order wrong; lookup goes through a
		// map anyway, so record it and move on.
		if rec.Tag < prevTag {
			ec.addWarning(rec.Tag, "table record out of ascending tag order", pos)
		}
		prevTag = rec.Tag
		if rec.Offset&3 != 0 { // "all tables must begin on four byte boundries"
			ec.addWarning(rec.Tag, "table offset not 32-bit aligned", rec.Offset)
		}
		tableEnd, err := checkedAddUint32(rec.Offset, rec.Length)
		if err != nil {
			return nil, errMalformedFont(pos, "table %s: size calculation overflow: %v", rec.Tag, err)
		}
		if uint64(tableEnd) > uint64(len(font)) {
			return nil, errMalformedFont(pos, "table %s: bounds [%d:%d] exceed font size %d",
				rec.Tag, rec.Offset, tableEnd, len(font))
		}
		if _, ok := tf.dir[rec.Tag]; ok {
			// duplicate entry; the later record wins
			ec.addWarning(rec.Tag, "duplicate table record, keeping the last one", pos)
		} else {
			tf.order = append(tf.order, rec.Tag)
		}
		tf.dir[rec.Tag] = rec
		pos += 16
	}
	if hasOption(opts, VerifyChecksums) {
		verifyChecksums(tf, ec)
	}
	tf.parseWarnings = ec.warnings
	return tf, nil
}

func hasOption(opts []ParseOption, o ParseOption) bool {
	for _, opt := range opts {
		if opt == o {
			return true
		}
	}
	return false
}

// --- Checksums -------------------------------------------------------------

// verifyChecksums re-computes the checksum of every table in the directory
// and compares it against the directory record. Mismatches are common with
// fonts that have been subsetted or edited, so they are recorded as warnings
// rather than rejected.
func verifyChecksums(tf *Font, ec *errorCollector) {
	for _, tag := range tf.order {
		rec := tf.dir[tag]
		sum := tableChecksum(tf.segment(rec))
		if tag == tagHead && rec.Length >= 12 {
			// The checksumAdjustment field of 'head' is excluded from its
			// own table checksum.
			adj, _ := tf.segment(rec).u32(8)
			sum -= adj
		}
		if sum != rec.Checksum {
			ec.addWarning(tag, fmt.Sprintf("checksum mismatch: directory has 0x%08x, computed 0x%08x",
				rec.Checksum, sum), rec.Offset)
		}
	}
}

// tableChecksum computes the rolling 32-bit checksum of a table: the sum of
// its big-endian uint32 words, with a short tail treated as zero-padded.
func tableChecksum(b binarySegm) uint32 {
	var sum uint32
	n := len(b) &^ 3
	for i := 0; i < n; i += 4 {
		sum += u32(b[i:])
	}
	if rest := len(b) - n; rest > 0 {
		var tail [4]byte
		copy(tail[:], b[n:])
		sum += u32(tail[:])
	}
	return sum
}

// --- Head table ------------------------------------------------------------

// headMagic is the magicNumber field every valid 'head' table carries.
const headMagic = 0x5F0F3CF5

// relaxed drops the magic-number cross-check; fonts assembled by hand for
// testing usually do not bother to carry it.
func decodeHead(b binarySegm, rec TableRecord, relaxed bool) (*HeadTable, error) {
	if rec.Length < 54 {
		return nil, errMalformedTable(tagHead, rec.Offset,
			"head table too small: %d bytes (need 54)", rec.Length)
	}
	t := &HeadTable{}
	t.tableBase = tableBase{data: b, name: tagHead, offset: rec.Offset, length: rec.Length}
	t.FontRevision, _ = b.u32(4)
	t.ChecksumAdjustment, _ = b.u32(8)
	magic, _ := b.u32(12)
	if magic != headMagic {
		if !relaxed {
			return nil, errMalformedTable(tagHead, rec.Offset+12,
				"bad magic number 0x%08x", magic)
		}
		tracer().Infof("head: ignoring bad magic number 0x%08x", magic)
	}
	t.Flags, _ = b.u16(16)
	t.UnitsPerEm, _ = b.u16(18)
	if t.UnitsPerEm < 16 || t.UnitsPerEm > 16384 {
		tracer().Infof("head: unitsPerEm %d outside of valid range", t.UnitsPerEm)
	}
	t.Created, _ = b.i64(20)
	t.Modified, _ = b.i64(28)
	t.XMin, _ = b.i16(36)
	t.YMin, _ = b.i16(38)
	t.XMax, _ = b.i16(40)
	t.YMax, _ = b.i16(42)
	t.MacStyle, _ = b.u16(44)
	t.LowestRecPPEM, _ = b.u16(46)
	t.FontDirectionHint, _ = b.i16(48)
	// IndexToLocFormat is needed to interpret the loca table:
	// 0 for short offsets, 1 for long
	t.IndexToLocFormat, _ = b.u16(50)
	if t.IndexToLocFormat > 1 {
		return nil, errMalformedTable(tagHead, rec.Offset+50,
			"indexToLocFormat is %d, must be 0 or 1", t.IndexToLocFormat)
	}
	t.GlyphDataFormat, _ = b.i16(52)
	return t, nil
}

// --- MaxP table ------------------------------------------------------------

// The 'maxp' table establishes the memory requirements for this font. Fonts
// with CFF data use Version 0.5 of this table, specifying only the numGlyphs
// field. Fonts with TrueType outlines use Version 1.0, where all data is
// required; only numGlyphs is decoded here.
func decodeMaxP(b binarySegm, rec TableRecord) (*MaxPTable, error) {
	if rec.Length < 6 {
		return nil, errMalformedTable(tagMaxP, rec.Offset,
			"maxp table too small: %d bytes (need 6)", rec.Length)
	}
	t := &MaxPTable{}
	t.tableBase = tableBase{data: b, name: tagMaxP, offset: rec.Offset, length: rec.Length}
	t.Version, _ = b.u32(0)
	n, _ := b.u16(4)
	t.NumGlyphs = int(n)
	return t, nil
}

// --- HHea table ------------------------------------------------------------

func decodeHHea(b binarySegm, rec TableRecord) (*HHeaTable, error) {
	if rec.Length < 36 {
		return nil, errMalformedTable(tagHHea, rec.Offset,
			"hhea table too small: %d bytes (need 36)", rec.Length)
	}
	t := &HHeaTable{}
	t.tableBase = tableBase{data: b, name: tagHHea, offset: rec.Offset, length: rec.Length}
	t.Ascender, _ = b.i16(4)
	t.Descender, _ = b.i16(6)
	t.LineGap, _ = b.i16(8)
	t.AdvanceWidthMax, _ = b.u16(10)
	t.MinLeftSideBearing, _ = b.i16(12)
	t.MinRightSideBearing, _ = b.i16(14)
	t.XMaxExtent, _ = b.i16(16)
	t.CaretSlopeRise, _ = b.i16(18)
	t.CaretSlopeRun, _ = b.i16(20)
	t.CaretOffset, _ = b.i16(22)
	n, _ := b.u16(34)
	t.NumberOfHMetrics = int(n)
	return t, nil
}

// --- HMtx table ------------------------------------------------------------

// Dependencies (taken from Apple Developer page about TrueType):
// The value of the numOfLongHorMetrics field is found in the 'hhea'
// (Horizontal Header) table. Fonts that lack an 'hhea' table must not have
// an 'hmtx' table.
func decodeHMtx(b binarySegm, rec TableRecord, numGlyphs, numberOfHMetrics int) (*HMtxTable, error) {
	if numberOfHMetrics <= 0 || numberOfHMetrics > numGlyphs {
		return nil, errMalformedTable(tagHMtx, rec.Offset,
			"invalid numberOfHMetrics %d (numGlyphs=%d)", numberOfHMetrics, numGlyphs)
	}
	required := numberOfHMetrics*4 + (numGlyphs-numberOfHMetrics)*2
	if required > len(b) {
		return nil, errMalformedTable(tagHMtx, rec.Offset,
			"hmtx table too small: need %d bytes, have %d", required, len(b))
	}
	t := &HMtxTable{}
	t.tableBase = tableBase{data: b, name: tagHMtx, offset: rec.Offset, length: rec.Length}
	longMetrics := make([]HMetricRecord, numberOfHMetrics)
	for i := 0; i < numberOfHMetrics; i++ {
		aw, _ := b.u16(i * 4)
		lsb, _ := b.i16(i*4 + 2)
		longMetrics[i] = HMetricRecord{
			AdvanceWidth:    aw,
			LeftSideBearing: lsb,
		}
	}
	lsbCount := numGlyphs - numberOfHMetrics
	leftSideBearings := make([]int16, lsbCount)
	base := numberOfHMetrics * 4
	for i := 0; i < lsbCount; i++ {
		lsb, _ := b.i16(base + i*2)
		leftSideBearings[i] = lsb
	}
	t.NumberOfHMetrics = numberOfHMetrics
	t.numGlyphs = numGlyphs
	t.longMetrics = longMetrics
	t.leftSideBearings = leftSideBearings
	return t, nil
}

// --- Loca table ------------------------------------------------------------

// The 'loca' table carries numGlyphs+1 entries, where numGlyphs is taken from
// the 'maxp' table. The entry width and scaling depend on the value of the
// indexToLocFormat field in table 'head'.
func decodeLoca(b binarySegm, rec TableRecord, indexToLocFormat uint16, numGlyphs int) (*LocaTable, error) {
	entrySize := 2
	if indexToLocFormat == 1 {
		entrySize = 4
	}
	entryCount := numGlyphs + 1
	required, err := checkedMulInt(entryCount, entrySize)
	if err != nil {
		return nil, errMalformedTable(tagLoca, rec.Offset, "loca size overflow: %v", err)
	}
	if required > len(b) {
		return nil, errMalformedTable(tagLoca, rec.Offset,
			"loca table too small: %d entries of %d bytes need %d bytes, have %d",
			entryCount, entrySize, required, len(b))
	}
	t := &LocaTable{}
	t.tableBase = tableBase{data: b, name: tagLoca, offset: rec.Offset, length: rec.Length}
	t.locCnt = entryCount
	t.inx2loc = shortLocaVersion
	if indexToLocFormat == 1 {
		t.inx2loc = longLocaVersion
	}
	return t, nil
}
