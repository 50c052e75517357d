package message

import (
	"fmt"
	"math"

	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/format"
	"github.com/arloliu/logir/internal/hash"
)

// EncodedMessage is a message split into its logtype and variables.
//
// Invariants of a well-formed value:
//   - the number of integer and float placeholders in Logtype equals len(Vars)
//   - the number of dictionary placeholders equals len(DictVarEndOffsets)
//   - DictVarEndOffsets is non-decreasing, starts from an implicit 0 and ends at len(DictVars)
type EncodedMessage[T Var] struct {
	Logtype           []byte
	Vars              []T
	DictVars          []byte
	DictVarEndOffsets []int32
}

// Reset empties the message and keeps its storage.
func (em *EncodedMessage[T]) Reset() {
	em.Logtype = em.Logtype[:0]
	em.Vars = em.Vars[:0]
	em.DictVars = em.DictVars[:0]
	em.DictVarEndOffsets = em.DictVarEndOffsets[:0]
}

// Clone returns a deep copy of the message.
func (em *EncodedMessage[T]) Clone() EncodedMessage[T] {
	return EncodedMessage[T]{
		Logtype:           append([]byte(nil), em.Logtype...),
		Vars:              append([]T(nil), em.Vars...),
		DictVars:          append([]byte(nil), em.DictVars...),
		DictVarEndOffsets: append([]int32(nil), em.DictVarEndOffsets...),
	}
}

// LogtypeID returns the identifier of the message's logtype.
func (em *EncodedMessage[T]) LogtypeID() uint64 {
	return LogtypeID(em.Logtype)
}

// LogtypeID returns a stable 64-bit identifier of a logtype. Messages that differ only in
// their variables share the same identifier.
func LogtypeID(logtype []byte) uint64 {
	return hash.Bytes(logtype)
}

// Encode splits msg into dst, reusing dst's storage.
//
// Constant text is copied to the logtype with placeholder and escape bytes escaped.
// Variables are encoded inline as integers or floats when they fit the width of T and are
// appended to the dictionary otherwise.
//
// Parameters:
//   - msg: Message text
//   - dst: Destination, reset before encoding
//
// Returns:
//   - error: errs.ErrEncode if the dictionary would exceed the int32 offset range
func Encode[T Var](msg string, dst *EncodedMessage[T]) error {
	scheme := SchemeFor[T]()
	dst.Reset()

	constBegin := 0
	pos := 0
	for {
		begin, end := nextVariable(msg, pos)
		if begin >= len(msg) {
			break
		}

		dst.Logtype = appendEscaped(dst.Logtype, msg[constBegin:begin])

		tok := msg[begin:end]
		if v, ok := scheme.EncodeInteger(tok); ok {
			dst.Logtype = append(dst.Logtype, format.PlaceholderInteger)
			dst.Vars = append(dst.Vars, v)
		} else if v, ok := scheme.EncodeFloat(tok); ok {
			dst.Logtype = append(dst.Logtype, format.PlaceholderFloat)
			dst.Vars = append(dst.Vars, v)
		} else {
			if len(dst.DictVars)+len(tok) > math.MaxInt32 {
				return fmt.Errorf("%w: dictionary variables exceed %d bytes", errs.ErrEncode, math.MaxInt32)
			}
			dst.Logtype = append(dst.Logtype, format.PlaceholderDictionary)
			dst.DictVars = append(dst.DictVars, tok...)
			dst.DictVarEndOffsets = append(dst.DictVarEndOffsets, int32(len(dst.DictVars))) //nolint:gosec
		}

		constBegin = end
		pos = end
	}
	dst.Logtype = appendEscaped(dst.Logtype, msg[constBegin:])

	return nil
}

// EncodeMessage encodes msg into a new EncodedMessage.
func EncodeMessage[T Var](msg string) (EncodedMessage[T], error) {
	var em EncodedMessage[T]
	err := Encode(msg, &em)

	return em, err
}

func appendEscaped(dst []byte, text string) []byte {
	for i := 0; i < len(text); i++ {
		c := text[i]
		if format.IsPlaceholder(c) || c == format.PlaceholderEscape {
			dst = append(dst, format.PlaceholderEscape)
		}
		dst = append(dst, c)
	}

	return dst
}
