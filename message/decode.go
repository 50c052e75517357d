package message

import (
	"fmt"

	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/format"
)

// Decode renders em and appends the message to dst.
//
// Parameters:
//   - em: Encoded message
//   - dst: Destination slice, extended in place (may be nil)
//
// Returns:
//   - []byte: dst extended with the message
//   - error: errs.ErrDecode if the placeholders do not match the variables, an escape is
//     dangling, the dictionary offsets are invalid or a float variable is malformed
func Decode[T Var](em *EncodedMessage[T], dst []byte) ([]byte, error) {
	scheme := SchemeFor[T]()
	logtype := em.Logtype

	varIdx := 0
	dictIdx := 0
	dictBegin := int32(0)
	litBegin := 0
	for i := 0; i < len(logtype); i++ {
		c := logtype[i]
		switch {
		case c == format.PlaceholderEscape:
			if i+1 >= len(logtype) {
				return dst, fmt.Errorf("%w: dangling escape at end of logtype", errs.ErrDecode)
			}
			dst = append(dst, logtype[litBegin:i]...)
			i++
			litBegin = i

		case c == format.PlaceholderInteger || c == format.PlaceholderFloat:
			dst = append(dst, logtype[litBegin:i]...)
			litBegin = i + 1
			if varIdx >= len(em.Vars) {
				return dst, fmt.Errorf("%w: logtype has more numeric placeholders than %d variables", errs.ErrDecode, len(em.Vars))
			}

			v := em.Vars[varIdx]
			varIdx++
			if c == format.PlaceholderInteger {
				dst = scheme.AppendInteger(dst, v)
				continue
			}

			var err error
			if dst, err = scheme.AppendFloat(dst, v); err != nil {
				return dst, err
			}

		case c == format.PlaceholderDictionary:
			dst = append(dst, logtype[litBegin:i]...)
			litBegin = i + 1
			if dictIdx >= len(em.DictVarEndOffsets) {
				return dst, fmt.Errorf("%w: logtype has more dictionary placeholders than %d offsets",
					errs.ErrDecode, len(em.DictVarEndOffsets))
			}

			end := em.DictVarEndOffsets[dictIdx]
			dictIdx++
			if end < dictBegin || int(end) > len(em.DictVars) {
				return dst, fmt.Errorf("%w: dictionary offset %d out of range [%d, %d]",
					errs.ErrDecode, end, dictBegin, len(em.DictVars))
			}
			dst = append(dst, em.DictVars[dictBegin:end]...)
			dictBegin = end
		}
	}
	dst = append(dst, logtype[litBegin:]...)

	if varIdx != len(em.Vars) {
		return dst, fmt.Errorf("%w: %d numeric placeholders for %d variables", errs.ErrDecode, varIdx, len(em.Vars))
	}
	if dictIdx != len(em.DictVarEndOffsets) {
		return dst, fmt.Errorf("%w: %d dictionary placeholders for %d offsets",
			errs.ErrDecode, dictIdx, len(em.DictVarEndOffsets))
	}
	if int(dictBegin) != len(em.DictVars) {
		return dst, fmt.Errorf("%w: last dictionary offset %d does not end the %d dictionary bytes",
			errs.ErrDecode, dictBegin, len(em.DictVars))
	}

	return dst, nil
}

// DecodeMessage renders em as a string.
func DecodeMessage[T Var](em *EncodedMessage[T]) (string, error) {
	b, err := Decode(em, nil)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// CountPlaceholders counts the numeric and dictionary placeholders of a logtype, skipping
// escaped bytes.
//
// Returns:
//   - numeric: Number of integer and float placeholders
//   - dictionary: Number of dictionary placeholders
//   - error: errs.ErrDecode if the logtype ends with a dangling escape
func CountPlaceholders(logtype []byte) (numeric int, dictionary int, err error) {
	for i := 0; i < len(logtype); i++ {
		switch logtype[i] {
		case format.PlaceholderEscape:
			if i+1 >= len(logtype) {
				return numeric, dictionary, fmt.Errorf("%w: dangling escape at end of logtype", errs.ErrDecode)
			}
			i++
		case format.PlaceholderInteger, format.PlaceholderFloat:
			numeric++
		case format.PlaceholderDictionary:
			dictionary++
		}
	}

	return numeric, dictionary, nil
}
