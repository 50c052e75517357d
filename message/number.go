package message

import (
	"fmt"
	"strconv"

	"github.com/arloliu/logir/errs"
)

// maxIntegerDigits is the number of decimal digits of the widest supported integer.
const maxIntegerDigits = 19

var pow10 = [...]uint64{
	1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000, 1000000000,
	10000000000, 100000000000, 1000000000000, 10000000000000, 100000000000000,
	1000000000000000, 10000000000000000,
}

// EncodeInteger encodes tok as an inline integer variable.
//
// tok must be the canonical decimal form of an integer in the scheme's range: an optional
// '-' followed by digits without leading zeros. "-0" and "007" are not canonical, since
// decoding would not reproduce them.
//
// Parameters:
//   - tok: Token text
//
// Returns:
//   - T: Encoded variable
//   - bool: false if tok must take the dictionary path
func (s *Scheme[T]) EncodeInteger(tok string) (T, bool) {
	neg := false
	digits := tok
	if len(digits) > 0 && digits[0] == '-' {
		neg = true
		digits = digits[1:]
	}
	if len(digits) == 0 || len(digits) > maxIntegerDigits {
		return 0, false
	}
	if digits[0] == '0' && (len(digits) > 1 || neg) {
		return 0, false
	}

	var v uint64
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint64(c-'0')
	}

	if neg {
		if v > uint64(s.maxInt)+1 {
			return 0, false
		}

		return T(int64(-v)), true //nolint:gosec
	}
	if v > uint64(s.maxInt) {
		return 0, false
	}

	return T(v), true //nolint:gosec
}

// AppendInteger renders an inline integer variable.
func (s *Scheme[T]) AppendInteger(dst []byte, v T) []byte {
	return strconv.AppendInt(dst, int64(v), 10)
}

// EncodeFloat encodes tok as an inline float variable.
//
// tok must be an optional '-' followed by digits containing exactly one '.', with at least
// one digit on each side, at most 8 (four-byte) or 16 (eight-byte) digits, and a digit value
// that fits the scheme's digit field. Leading and trailing zeros are preserved.
//
// Parameters:
//   - tok: Token text
//
// Returns:
//   - T: Encoded variable
//   - bool: false if tok must take the dictionary path
func (s *Scheme[T]) EncodeFloat(tok string) (T, bool) {
	neg := false
	rest := tok
	if len(rest) > 0 && rest[0] == '-' {
		neg = true
		rest = rest[1:]
	}

	numDigits := 0
	dot := -1
	var digits uint64
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		switch {
		case c >= '0' && c <= '9':
			numDigits++
			if numDigits > s.maxFloatDigits {
				return 0, false
			}
			digits = digits*10 + uint64(c-'0')
		case c == '.':
			if dot >= 0 {
				return 0, false
			}
			dot = i
		default:
			return 0, false
		}
	}
	if dot <= 0 || dot == len(rest)-1 {
		return 0, false
	}
	if digits >= 1<<s.digitBits {
		return 0, false
	}

	decimalPos := len(rest) - 1 - dot

	var packed uint64
	if neg {
		packed = 1 << (s.bits - 1)
	}
	packed |= digits << (2 * s.fieldBits)
	packed |= uint64(numDigits-1) << s.fieldBits //nolint:gosec
	packed |= uint64(decimalPos - 1)             //nolint:gosec

	return T(int64(packed)), true //nolint:gosec
}

// AppendFloat renders an inline float variable.
//
// Returns:
//   - []byte: dst extended with the float text
//   - error: errs.ErrDecode if v is not a valid packed float
func (s *Scheme[T]) AppendFloat(dst []byte, v T) ([]byte, error) {
	u := uint64(int64(v)) //nolint:gosec
	if s.bits < 64 {
		u &= 1<<s.bits - 1
	}

	fieldMask := uint64(1)<<s.fieldBits - 1
	decimalPos := int(u&fieldMask) + 1
	numDigits := int((u>>s.fieldBits)&fieldMask) + 1
	digits := (u >> (2 * s.fieldBits)) & (1<<s.digitBits - 1)
	neg := u>>(s.bits-1) == 1

	if unusedBits := s.bits - 1 - 2*s.fieldBits - s.digitBits; unusedBits > 0 {
		if (u>>(2*s.fieldBits+s.digitBits))&(1<<unusedBits-1) != 0 {
			return dst, fmt.Errorf("%w: float variable 0x%x has unused bits set", errs.ErrDecode, u)
		}
	}
	if numDigits > s.maxFloatDigits || decimalPos >= numDigits || digits >= pow10[numDigits] {
		return dst, fmt.Errorf("%w: invalid float variable 0x%x", errs.ErrDecode, u)
	}

	if neg {
		dst = append(dst, '-')
	}

	var tmp [20]byte
	text := strconv.AppendUint(tmp[:0], digits, 10)
	pad := numDigits - len(text)
	intDigits := numDigits - decimalPos
	for i := range numDigits {
		if i == intDigits {
			dst = append(dst, '.')
		}
		if i < pad {
			dst = append(dst, '0')
		} else {
			dst = append(dst, text[i-pad])
		}
	}

	return dst, nil
}
