package encoding

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/arloliu/logir/endian"
	"github.com/arloliu/logir/format"
)

var engine = endian.GetStreamEngine()

// AppendUvarint appends v as a uvarint.
func AppendUvarint(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}

// AppendBytes appends data with a uvarint length prefix.
//
// Format: [length:uvarint][bytes]
//
// Parameters:
//   - dst: Destination slice
//   - data: Bytes to append (may be empty)
//
// Returns:
//   - []byte: The extended slice
func AppendBytes(dst []byte, data []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(data)))
	return append(dst, data...)
}

// AppendInt8 appends v as one byte.
func AppendInt8(dst []byte, v int8) []byte {
	return append(dst, byte(v))
}

// AppendInt16 appends v big-endian.
func AppendInt16(dst []byte, v int16) []byte {
	return engine.AppendUint16(dst, uint16(v)) //nolint:gosec
}

// AppendInt32 appends v big-endian.
func AppendInt32(dst []byte, v int32) []byte {
	return engine.AppendUint32(dst, uint32(v)) //nolint:gosec
}

// AppendInt64 appends v big-endian.
func AppendInt64(dst []byte, v int64) []byte {
	return engine.AppendUint64(dst, uint64(v)) //nolint:gosec
}

// AppendInts appends a uvarint count followed by every value big-endian in the width of T.
func AppendInts[T int32 | int64](dst []byte, values []T) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(values)))

	var zero T
	if unsafe.Sizeof(zero) == 4 {
		for _, v := range values {
			dst = engine.AppendUint32(dst, uint32(v)) //nolint:gosec
		}

		return dst
	}

	for _, v := range values {
		dst = engine.AppendUint64(dst, uint64(v)) //nolint:gosec
	}

	return dst
}

// DeltaTag returns the smallest delta timestamp tag able to hold delta.
func DeltaTag(delta int64) format.Tag {
	switch {
	case delta >= math.MinInt8 && delta <= math.MaxInt8:
		return format.TagTimestampDeltaByte
	case delta >= math.MinInt16 && delta <= math.MaxInt16:
		return format.TagTimestampDeltaShort
	case delta >= math.MinInt32 && delta <= math.MaxInt32:
		return format.TagTimestampDeltaInt
	default:
		return format.TagTimestampDeltaLong
	}
}

// AppendTimestampDelta appends the smallest size-tagged form of delta: the tag byte followed
// by the delta as int8, int16, int32 or int64.
func AppendTimestampDelta(dst []byte, delta int64) []byte {
	tag := DeltaTag(delta)
	dst = append(dst, byte(tag))

	switch tag {
	case format.TagTimestampDeltaByte:
		return AppendInt8(dst, int8(delta))
	case format.TagTimestampDeltaShort:
		return AppendInt16(dst, int16(delta))
	case format.TagTimestampDeltaInt:
		return AppendInt32(dst, int32(delta))
	default:
		return AppendInt64(dst, delta)
	}
}

// UvarintLen returns the number of bytes required to encode a uvarint.
// This is a fast inline calculation without allocating a temporary buffer.
func UvarintLen(n uint64) int {
	if n < 1<<7 {
		return 1
	}
	if n < 1<<14 {
		return 2
	}
	if n < 1<<21 {
		return 3
	}
	if n < 1<<28 {
		return 4
	}
	if n < 1<<35 {
		return 5
	}
	if n < 1<<42 {
		return 6
	}
	if n < 1<<49 {
		return 7
	}
	if n < 1<<56 {
		return 8
	}
	if n < 1<<63 {
		return 9
	}

	return 10
}
