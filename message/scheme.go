package message

import (
	"math"

	"github.com/arloliu/logir/format"
)

// Var is the type of an encoded numeric variable: int32 for four-byte streams and int64 for
// eight-byte streams.
type Var interface {
	int32 | int64
}

// Scheme holds the width-dependent parameters of the codec.
//
// Float layout, most significant bit first:
//   - four-byte:  sign:1 | digits:25 | numDigits-1:3 | decimalPos-1:3
//   - eight-byte: sign:1 | unused:1 | digits:54 | numDigits-1:4 | decimalPos-1:4
//
// decimalPos counts the digits after the decimal point.
type Scheme[T Var] struct {
	width          format.EncodingWidth
	minInt         int64
	maxInt         int64
	maxFloatDigits int
	digitBits      uint
	fieldBits      uint // bits of numDigits-1 and of decimalPos-1
	bits           uint
}

var (
	fourByteScheme = Scheme[int32]{
		width:          format.FourByte,
		minInt:         math.MinInt32,
		maxInt:         math.MaxInt32,
		maxFloatDigits: 8,
		digitBits:      25,
		fieldBits:      3,
		bits:           32,
	}
	eightByteScheme = Scheme[int64]{
		width:          format.EightByte,
		minInt:         math.MinInt64,
		maxInt:         math.MaxInt64,
		maxFloatDigits: 16,
		digitBits:      54,
		fieldBits:      4,
		bits:           64,
	}
)

// SchemeFor returns the scheme matching the variable type T.
func SchemeFor[T Var]() *Scheme[T] {
	var zero T
	switch any(zero).(type) {
	case int32:
		return any(&fourByteScheme).(*Scheme[T])
	default:
		return any(&eightByteScheme).(*Scheme[T])
	}
}

// Width returns the encoding width of the scheme.
func (s *Scheme[T]) Width() format.EncodingWidth {
	return s.width
}

// VarSize returns the number of bytes of one encoded variable.
func (s *Scheme[T]) VarSize() int {
	return int(s.bits / 8)
}

// DeltaTimestamps reports whether streams of this width store timestamp deltas.
func (s *Scheme[T]) DeltaTimestamps() bool {
	return s.width.DeltaTimestamps()
}
