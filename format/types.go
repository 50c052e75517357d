package format

import "fmt"

type (
	// EncodingWidth selects the numeric/timestamp scheme of a stream.
	EncodingWidth uint8
	// Tag identifies the kind of a stream unit.
	Tag uint8
	// Placeholder marks a variable position inside a logtype.
	Placeholder = byte
)

const (
	FourByte  EncodingWidth = 0x29 // FourByte encodes 32-bit variables and delta timestamps.
	EightByte EncodingWidth = 0x30 // EightByte encodes 64-bit variables and absolute timestamps.
)

// Unit tags.
const (
	TagEndOfStream         Tag = 0x00
	TagTimestampVal        Tag = 0x30 // absolute int64 timestamp, eight-byte streams
	TagTimestampDeltaByte  Tag = 0x31 // int8 delta, four-byte streams
	TagTimestampDeltaShort Tag = 0x32 // int16 delta, four-byte streams
	TagTimestampDeltaInt   Tag = 0x33 // int32 delta, four-byte streams
	TagTimestampDeltaLong  Tag = 0x34 // int64 delta, four-byte streams
	TagUtcOffsetChange     Tag = 0x3F
	TagSchemaNodeInsertion Tag = 0x70
)

// Preamble metadata framing and keys.
const (
	MetadataTypeJSON              byte = 0x01
	MetadataLengthUByte           byte = 0x11
	MetadataLengthUShort          byte = 0x12
	MetadataVersion                    = "0.1.0"
	MetadataKeyVersion                 = "VERSION"
	MetadataKeyTimestampPattern        = "TIMESTAMP_PATTERN"
	MetadataKeyPatternSyntax           = "TIMESTAMP_PATTERN_SYNTAX"
	MetadataKeyTimeZoneID              = "TZ_ID"
	MetadataKeyReferenceTimestamp      = "REFERENCE_TIMESTAMP"
)

// Logtype placeholders. Any of these bytes, and PlaceholderEscape, appearing as literal text
// in a logtype is preceded by PlaceholderEscape.
const (
	PlaceholderInteger    Placeholder = 0x11
	PlaceholderDictionary Placeholder = 0x12
	PlaceholderFloat      Placeholder = 0x13
	PlaceholderEscape     Placeholder = '\\'
)

// ParseEncodingWidth validates a width marker byte.
func ParseEncodingWidth(marker byte) (EncodingWidth, error) {
	switch w := EncodingWidth(marker); w {
	case FourByte, EightByte:
		return w, nil
	default:
		return 0, fmt.Errorf("invalid encoding width marker 0x%02x", marker)
	}
}

// VarSize returns the size in bytes of one encoded variable.
func (w EncodingWidth) VarSize() int {
	if w == FourByte {
		return 4
	}

	return 8
}

// DeltaTimestamps reports whether log event timestamps are delta-encoded.
func (w EncodingWidth) DeltaTimestamps() bool {
	return w == FourByte
}

func (w EncodingWidth) String() string {
	switch w {
	case FourByte:
		return "FourByte"
	case EightByte:
		return "EightByte"
	default:
		return "Unknown"
	}
}

// IsLogEvent reports whether t starts a log event unit.
func (t Tag) IsLogEvent() bool {
	return t >= TagTimestampVal && t <= TagTimestampDeltaLong
}

func (t Tag) String() string {
	switch t {
	case TagEndOfStream:
		return "EndOfStream"
	case TagTimestampVal:
		return "TimestampVal"
	case TagTimestampDeltaByte:
		return "TimestampDeltaByte"
	case TagTimestampDeltaShort:
		return "TimestampDeltaShort"
	case TagTimestampDeltaInt:
		return "TimestampDeltaInt"
	case TagTimestampDeltaLong:
		return "TimestampDeltaLong"
	case TagUtcOffsetChange:
		return "UtcOffsetChange"
	case TagSchemaNodeInsertion:
		return "SchemaNodeInsertion"
	default:
		return fmt.Sprintf("Tag(0x%02x)", uint8(t))
	}
}

// IsPlaceholder reports whether c is a variable placeholder byte.
func IsPlaceholder(c byte) bool {
	return c == PlaceholderInteger || c == PlaceholderDictionary || c == PlaceholderFloat
}

// NodeType is the value type of a schema tree node.
type NodeType uint8

const (
	NodeInt NodeType = iota
	NodeFloat
	NodeBool
	NodeStr
	NodeUnstructuredArray
	NodeObj
)

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	return t <= NodeObj
}

func (t NodeType) String() string {
	switch t {
	case NodeInt:
		return "Int"
	case NodeFloat:
		return "Float"
	case NodeBool:
		return "Bool"
	case NodeStr:
		return "Str"
	case NodeUnstructuredArray:
		return "UnstructuredArray"
	case NodeObj:
		return "Obj"
	default:
		return fmt.Sprintf("NodeType(%d)", uint8(t))
	}
}
