package tt

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// The naming table allows multilingual strings to be associated with the
// font. These strings can represent copyright notices, font names, family
// names, style names, and so on.

const (
	nameHeaderSize = 6
	nameRecordSize = 12
)

// NameTable is the decoded naming table 'name'.
type NameTable struct {
	tableBase
	records []NameRecord
	strbuf  binarySegm
}

// NameRecord identifies one string of the naming table. The string bytes are
// stored in an encoding determined by the platform and encoding IDs; use
// NameTable.Decode to obtain them as a Go string.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	length     uint16
	offset     uint16 // from the start of string storage
}

// Common name IDs of table 'name'.
const (
	NameCopyrightNotice  = 0
	NameFontFamily       = 1
	NameFontSubfamily    = 2
	NameUniqueIdentifier = 3
	NameFullFontName     = 4
	NameVersion          = 5
	NamePostScriptName   = 6
)

func decodeName(b binarySegm, rec TableRecord) (*NameTable, error) {
	if len(b) < nameHeaderSize {
		return nil, errMalformedTable(tagName, rec.Offset, "name table header incomplete")
	}
	count, _ := b.u16(2)
	strOffset, _ := b.u16(4)
	if int(count) > MaxNameRecords {
		return nil, errMalformedTable(tagName, rec.Offset+2, "unreasonable record count %d", count)
	}
	if int(strOffset) > len(b) {
		return nil, errMalformedTable(tagName, rec.Offset+4,
			"string storage offset %d exceeds table size %d", strOffset, len(b))
	}
	recsSize, err := checkedMulInt(nameRecordSize, int(count))
	if err != nil {
		return nil, errMalformedTable(tagName, rec.Offset, "record size overflow: %v", err)
	}
	required, err := checkedAddInt(nameHeaderSize, recsSize)
	if err != nil || required > len(b) {
		return nil, errMalformedTable(tagName, rec.Offset,
			"name table too small for %d records", count)
	}
	t := &NameTable{}
	t.tableBase = tableBase{data: b, name: tagName, offset: rec.Offset, length: rec.Length}
	t.strbuf = b[strOffset:]
	t.records = make([]NameRecord, count)
	for i := range t.records {
		r := b[nameHeaderSize+i*nameRecordSize:]
		t.records[i] = NameRecord{
			PlatformID: u16(r),
			EncodingID: u16(r[2:]),
			LanguageID: u16(r[4:]),
			NameID:     u16(r[6:]),
			length:     u16(r[8:]),
			offset:     u16(r[10:]),
		}
	}
	tracer().Debugf("name table has %d records, strings start at %d", count, strOffset)
	return t, nil
}

// Records returns all name records of the table.
func (t *NameTable) Records() []NameRecord {
	recs := make([]NameRecord, len(t.records))
	copy(recs, t.records)
	return recs
}

// Entry returns the string for a name ID, preferring Windows Unicode BMP
// records, then Unicode platform records, then Macintosh Roman. Records in
// encodings this package cannot decode are skipped.
func (t *NameTable) Entry(nameID uint16) Option[string] {
	var best *NameRecord
	bestScore := 0
	for i, r := range t.records {
		if r.NameID != nameID {
			continue
		}
		score := nameEncodingScore(r)
		if score > bestScore {
			best = &t.records[i]
			bestScore = score
		}
	}
	if best == nil {
		return None[string]()
	}
	s, err := t.Decode(*best)
	if err != nil {
		return None[string]()
	}
	return Some(s)
}

func nameEncodingScore(r NameRecord) int {
	switch {
	case r.PlatformID == 3 && r.EncodingID == 1:
		return 3
	case r.PlatformID == 0:
		return 2
	case r.PlatformID == 1 && r.EncodingID == 0:
		return 1
	}
	return 0
}

// Decode returns the string of a name record, converted from the record's
// storage encoding. Unicode and Windows platform records are treated as
// UTF-16BE, Macintosh Roman records as the Mac OS Roman single-byte encoding.
func (t *NameTable) Decode(r NameRecord) (string, error) {
	if r.length == 0 {
		return "", nil
	}
	raw, err := t.strbuf.view(int(r.offset), int(r.length))
	if err != nil {
		return "", errOutOfBounds(tagName, uint32(r.offset),
			"name record string outside of string storage")
	}
	switch {
	case r.PlatformID == 0 || r.PlatformID == 3:
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		s, err := dec.Bytes(raw)
		if err != nil {
			return "", errMalformedTable(tagName, uint32(r.offset),
				"name record is not valid UTF-16: %v", err)
		}
		return string(s), nil
	case r.PlatformID == 1 && r.EncodingID == 0:
		s, err := charmap.Macintosh.NewDecoder().Bytes(raw)
		if err != nil {
			return "", errMalformedTable(tagName, uint32(r.offset),
				"name record is not valid Mac Roman: %v", err)
		}
		return string(s), nil
	}
	return "", errMalformedTable(tagName, uint32(r.offset),
		"unsupported name record encoding (platform=%d, encoding=%d)",
		r.PlatformID, r.EncodingID)
}
