package tt

import "errors"

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// binarySegm is a segment of byte data.
// We use it throughout this module to navigate the font's binary data.
type binarySegm []byte

func (b binarySegm) Size() int {
	return len(b)
}

func (b binarySegm) Bytes() []byte {
	return b
}

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n <= 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// u8 returns the byte in b at offset i.
func (b binarySegm) u8(i int) (byte, error) {
	if i < 0 || i >= len(b) {
		return 0, errBufferBounds
	}
	return b[i], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// i16 returns the int16 in b at the relative offset i.
func (b binarySegm) i16(i int) (int16, error) {
	n, err := b.u16(i)
	return int16(n), err
}

// i64 returns the int64 in b at the relative offset i. Used for the
// longDateTime fields of table 'head'.
func (b binarySegm) i64(i int) (int64, error) {
	hi, err := b.u32(i)
	if err != nil {
		return 0, err
	}
	lo, err := b.u32(i + 4)
	if err != nil {
		return 0, err
	}
	return int64(hi)<<32 | int64(lo), nil
}

// --- Cursor ----------------------------------------------------------------

// cursor walks a byte segment sequentially, keeping the current read position.
// Reads advance the position. A cursor never panics on short data; reads past
// the end of the segment return an OutOfBounds error and leave the position
// unchanged. Cursors on the same segment are independent, making them safe to
// use from decode paths running concurrently.
type cursor struct {
	data  binarySegm
	pos   int
	table Tag // table owning the segment, for error context
}

func cursorOn(b binarySegm, table Tag) *cursor {
	return &cursor{data: b, table: table}
}

// offset returns the current read position within the segment.
func (c *cursor) offset() int {
	return c.pos
}

// seek moves the read position to an absolute offset within the segment.
// Seeking to len(data) is legal; any read from there fails. The error blames
// the rejected target offset, not the current position.
func (c *cursor) seek(offset int) error {
	if offset < 0 || offset > len(c.data) {
		target := offset
		if target < 0 {
			target = 0
		}
		return errOutOfBounds(c.table, uint32(target),
			"seek target outside of segment")
	}
	c.pos = offset
	return nil
}

// skip advances the read position by n bytes.
func (c *cursor) skip(n int) error {
	return c.seek(c.pos + n)
}

func (c *cursor) readU8() (uint8, error) {
	if c.pos+1 > len(c.data) {
		return 0, errOutOfBounds(c.table, uint32(c.pos), "read of u8 past end of segment")
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) readU16() (uint16, error) {
	if c.pos+2 > len(c.data) {
		return 0, errOutOfBounds(c.table, uint32(c.pos), "read of u16 past end of segment")
	}
	v := u16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *cursor) readI16() (int16, error) {
	v, err := c.readU16()
	return int16(v), err
}

func (c *cursor) readU32() (uint32, error) {
	if c.pos+4 > len(c.data) {
		return 0, errOutOfBounds(c.table, uint32(c.pos), "read of u32 past end of segment")
	}
	v := u32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// readBytes returns the next n bytes as a sub-slice of the underlying segment.
func (c *cursor) readBytes(n int) (binarySegm, error) {
	if n < 0 || c.pos+n > len(c.data) {
		return nil, errOutOfBounds(c.table, uint32(c.pos), "read of byte block past end of segment")
	}
	v := c.data[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}
