package encoding

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/format"
)

// MaxFieldLength bounds every length and count read from a stream. Anything larger is
// treated as corruption rather than as a request for more bytes.
const MaxFieldLength = math.MaxInt32

// Cursor reads framing primitives from a byte slice starting at a position.
//
// A Cursor never copies: Bytes returns sub-slices of the underlying data. On error the
// position is left where the failing field started, so callers that need all-or-nothing
// semantics keep the position they started from and discard the cursor.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor creates a Cursor over data positioned at pos.
func NewCursor(data []byte, pos int) Cursor {
	return Cursor{data: data, pos: pos}
}

// Pos returns the current position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	if c.pos >= len(c.data) {
		return 0
	}

	return len(c.data) - c.pos
}

func (c *Cursor) need(n int) ([]byte, error) {
	if n > c.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", errs.ErrIncompleteIR, n, c.pos, c.Remaining())
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n

	return b, nil
}

// Byte reads one byte.
func (c *Cursor) Byte() (byte, error) {
	b, err := c.need(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// Int8 reads a signed byte.
func (c *Cursor) Int8() (int8, error) {
	b, err := c.Byte()
	return int8(b), err //nolint:gosec
}

// Int16 reads a big-endian int16.
func (c *Cursor) Int16() (int16, error) {
	b, err := c.need(2)
	if err != nil {
		return 0, err
	}

	return int16(engine.Uint16(b)), nil //nolint:gosec
}

// Int32 reads a big-endian int32.
func (c *Cursor) Int32() (int32, error) {
	b, err := c.need(4)
	if err != nil {
		return 0, err
	}

	return int32(engine.Uint32(b)), nil //nolint:gosec
}

// Int64 reads a big-endian int64.
func (c *Cursor) Int64() (int64, error) {
	b, err := c.need(8)
	if err != nil {
		return 0, err
	}

	return int64(engine.Uint64(b)), nil //nolint:gosec
}

// Uvarint reads a uvarint.
//
// Returns:
//   - uint64: The decoded value
//   - error: errs.ErrIncompleteIR if the varint is cut short, errs.ErrCorruptedIR if it overflows 64 bits
func (c *Cursor) Uvarint() (uint64, error) {
	if c.pos >= len(c.data) {
		return 0, fmt.Errorf("%w: need uvarint at offset %d", errs.ErrIncompleteIR, c.pos)
	}

	v, n := binary.Uvarint(c.data[c.pos:])
	if n == 0 {
		return 0, fmt.Errorf("%w: truncated uvarint at offset %d", errs.ErrIncompleteIR, c.pos)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: uvarint overflow at offset %d", errs.ErrCorruptedIR, c.pos)
	}
	c.pos += n

	return v, nil
}

// Length reads a uvarint length or count and checks it against MaxFieldLength.
func (c *Cursor) Length() (int, error) {
	start := c.pos
	v, err := c.Uvarint()
	if err != nil {
		return 0, err
	}
	if v > MaxFieldLength {
		c.pos = start
		return 0, fmt.Errorf("%w: length %d at offset %d exceeds %d", errs.ErrCorruptedIR, v, start, MaxFieldLength)
	}

	return int(v), nil
}

// Bytes reads a uvarint length-prefixed byte string.
// The returned slice aliases the cursor data.
func (c *Cursor) Bytes() ([]byte, error) {
	start := c.pos
	n, err := c.Length()
	if err != nil {
		return nil, err
	}

	b, err := c.need(n)
	if err != nil {
		c.pos = start
		return nil, err
	}

	return b, nil
}

func (c *Cursor) fixedArray(elemSize int) ([]byte, int, error) {
	start := c.pos
	count, err := c.Length()
	if err != nil {
		return nil, 0, err
	}
	if count > MaxFieldLength/elemSize {
		c.pos = start
		return nil, 0, fmt.Errorf("%w: %d elements at offset %d exceed %d bytes", errs.ErrCorruptedIR, count, start, MaxFieldLength)
	}

	b, err := c.need(count * elemSize)
	if err != nil {
		c.pos = start
		return nil, 0, err
	}

	return b, count, nil
}

// ReadInts reads a uvarint count followed by that many big-endian values of T and appends
// them to dst.
//
// Parameters:
//   - c: Cursor to read from
//   - dst: Destination slice, extended in place (may be nil)
//
// Returns:
//   - []T: dst extended with the decoded values
//   - error: errs.ErrIncompleteIR if the array is cut short, errs.ErrCorruptedIR if the count is too large
func ReadInts[T int32 | int64](c *Cursor, dst []T) ([]T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))

	b, count, err := c.fixedArray(size)
	if err != nil {
		return dst, err
	}

	for i := range count {
		if size == 4 {
			dst = append(dst, T(int32(engine.Uint32(b[i*4:])))) //nolint:gosec
		} else {
			dst = append(dst, T(int64(engine.Uint64(b[i*8:])))) //nolint:gosec
		}
	}

	return dst, nil
}

// Int32s reads an int32 array, see ReadInts.
func (c *Cursor) Int32s(dst []int32) ([]int32, error) {
	return ReadInts(c, dst)
}

// TimestampDelta reads the delta value that follows a delta timestamp tag.
func (c *Cursor) TimestampDelta(tag format.Tag) (int64, error) {
	switch tag {
	case format.TagTimestampDeltaByte:
		v, err := c.Int8()
		return int64(v), err
	case format.TagTimestampDeltaShort:
		v, err := c.Int16()
		return int64(v), err
	case format.TagTimestampDeltaInt:
		v, err := c.Int32()
		return int64(v), err
	case format.TagTimestampDeltaLong:
		return c.Int64()
	default:
		return 0, fmt.Errorf("%w: %s is not a delta timestamp tag", errs.ErrCorruptedIR, tag)
	}
}
