package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/arloliu/logir/encoding"
	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/event"
	"github.com/arloliu/logir/format"
)

var (
	metadataParsers fastjson.ParserPool
	metadataArenas  fastjson.ArenaPool
)

// TimestampInfo describes how timestamps were formatted by the source of a stream.
type TimestampInfo struct {
	Pattern       string
	PatternSyntax string
	TimeZoneID    string
}

// Preamble is the header of an IR stream.
type Preamble struct {
	Width         format.EncodingWidth
	TimestampInfo TimestampInfo
	// ReferenceTimestamp is the basis of the first timestamp delta of a four-byte stream.
	// It is zero for eight-byte streams.
	ReferenceTimestamp event.EpochTimeMs
	Version            string
}

// AppendPreamble appends the encoded preamble to dst.
//
// Format:
//   - 1 byte: encoding width marker
//   - 1 byte: metadata type (JSON)
//   - 2 or 3 bytes: metadata length tag followed by a uint8 or big-endian uint16 length
//   - N bytes: JSON metadata
//
// Parameters:
//   - dst: Destination slice
//   - p: Preamble to encode; an empty Version is written as the current version
//
// Returns:
//   - []byte: dst extended with the preamble
//   - error: errs.ErrEncode if the width is invalid or the metadata exceeds 65535 bytes
func AppendPreamble(dst []byte, p Preamble) ([]byte, error) {
	if _, err := format.ParseEncodingWidth(byte(p.Width)); err != nil {
		return dst, fmt.Errorf("%w: %w", errs.ErrEncode, err)
	}

	version := p.Version
	if version == "" {
		version = format.MetadataVersion
	}

	a := metadataArenas.Get()
	defer func() {
		a.Reset()
		metadataArenas.Put(a)
	}()

	obj := a.NewObject()
	obj.Set(format.MetadataKeyVersion, a.NewString(version))
	obj.Set(format.MetadataKeyTimestampPattern, a.NewString(p.TimestampInfo.Pattern))
	obj.Set(format.MetadataKeyPatternSyntax, a.NewString(p.TimestampInfo.PatternSyntax))
	obj.Set(format.MetadataKeyTimeZoneID, a.NewString(p.TimestampInfo.TimeZoneID))
	if p.Width == format.FourByte {
		ref := strconv.FormatInt(int64(p.ReferenceTimestamp), 10)
		obj.Set(format.MetadataKeyReferenceTimestamp, a.NewString(ref))
	}

	var metadata [512]byte
	json := obj.MarshalTo(metadata[:0])

	dst = append(dst, byte(p.Width), format.MetadataTypeJSON)
	switch n := len(json); {
	case n <= 0xff:
		dst = append(dst, format.MetadataLengthUByte, byte(n))
	case n <= 0xffff:
		dst = append(dst, format.MetadataLengthUShort)
		dst = encoding.AppendInt16(dst, int16(uint16(n))) //nolint:gosec
	default:
		return dst, fmt.Errorf("%w: preamble metadata of %d bytes exceeds 65535", errs.ErrEncode, n)
	}

	return append(dst, json...), nil
}

// DecodePreamble decodes a preamble from the start of buf.
//
// Returns:
//   - Preamble: The decoded preamble
//   - int: Number of bytes consumed
//   - error: errs.ErrIncompleteIR if buf is too short, errs.ErrCorruptedIR for an invalid width
//     marker, length tag or JSON document, errs.ErrUnsupportedVersion for an unknown metadata
//     type or major version
func DecodePreamble(buf []byte) (Preamble, int, error) {
	cur := encoding.NewCursor(buf, 0)

	marker, err := cur.Byte()
	if err != nil {
		return Preamble{}, 0, err
	}
	width, err := format.ParseEncodingWidth(marker)
	if err != nil {
		return Preamble{}, 0, fmt.Errorf("%w: %w", errs.ErrCorruptedIR, err)
	}

	metadataType, err := cur.Byte()
	if err != nil {
		return Preamble{}, 0, err
	}
	if metadataType != format.MetadataTypeJSON {
		return Preamble{}, 0, fmt.Errorf("%w: metadata type 0x%02x", errs.ErrUnsupportedVersion, metadataType)
	}

	lengthTag, err := cur.Byte()
	if err != nil {
		return Preamble{}, 0, err
	}

	var length int
	switch lengthTag {
	case format.MetadataLengthUByte:
		n, err := cur.Byte()
		if err != nil {
			return Preamble{}, 0, err
		}
		length = int(n)
	case format.MetadataLengthUShort:
		n, err := cur.Int16()
		if err != nil {
			return Preamble{}, 0, err
		}
		length = int(uint16(n)) //nolint:gosec
	default:
		return Preamble{}, 0, fmt.Errorf("%w: metadata length tag 0x%02x", errs.ErrCorruptedIR, lengthTag)
	}

	if cur.Remaining() < length {
		return Preamble{}, 0, fmt.Errorf("%w: metadata needs %d bytes, have %d", errs.ErrIncompleteIR, length, cur.Remaining())
	}
	start := cur.Pos()
	json := buf[start : start+length]

	p, err := parseMetadata(width, json)
	if err != nil {
		return Preamble{}, 0, err
	}

	return p, start + length, nil
}

func parseMetadata(width format.EncodingWidth, json []byte) (Preamble, error) {
	parser := metadataParsers.Get()
	defer metadataParsers.Put(parser)

	v, err := parser.ParseBytes(json)
	if err != nil {
		return Preamble{}, fmt.Errorf("%w: preamble metadata: %w", errs.ErrCorruptedIR, err)
	}
	if v.Type() != fastjson.TypeObject {
		return Preamble{}, fmt.Errorf("%w: preamble metadata is a JSON %s", errs.ErrCorruptedIR, v.Type())
	}

	version := string(v.GetStringBytes(format.MetadataKeyVersion))
	if !supportedVersion(version) {
		return Preamble{}, fmt.Errorf("%w: %q", errs.ErrUnsupportedVersion, version)
	}

	p := Preamble{
		Width: width,
		TimestampInfo: TimestampInfo{
			Pattern:       string(v.GetStringBytes(format.MetadataKeyTimestampPattern)),
			PatternSyntax: string(v.GetStringBytes(format.MetadataKeyPatternSyntax)),
			TimeZoneID:    string(v.GetStringBytes(format.MetadataKeyTimeZoneID)),
		},
		Version: version,
	}

	if width == format.FourByte {
		if ref := v.GetStringBytes(format.MetadataKeyReferenceTimestamp); len(ref) > 0 {
			ts, err := strconv.ParseInt(string(ref), 10, 64)
			if err != nil {
				return Preamble{}, fmt.Errorf("%w: reference timestamp %q", errs.ErrCorruptedIR, ref)
			}
			p.ReferenceTimestamp = event.EpochTimeMs(ts)
		}
	}

	return p, nil
}

// supportedVersion accepts any version sharing the major version of format.MetadataVersion.
func supportedVersion(version string) bool {
	major, _, ok := strings.Cut(version, ".")
	if !ok || major == "" {
		return false
	}
	want, _, _ := strings.Cut(format.MetadataVersion, ".")

	return major == want
}
