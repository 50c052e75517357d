package ir

import (
	"fmt"

	"github.com/arloliu/logir/encoding"
	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/event"
	"github.com/arloliu/logir/format"
	"github.com/arloliu/logir/message"
)

// SchemaTreeNode is one node inserted into the schema tree of a stream. Node IDs are
// assigned in insertion order starting at 1; ID 0 is the implicit root.
type SchemaTreeNode struct {
	Type     format.NodeType
	ParentID uint64
	Key      string
}

// unit is one decoded stream unit. For log events the encoded message is held in the
// scratch message passed to parseUnit.
type unit struct {
	tag format.Tag
	// timestamp is the absolute timestamp or the delta, depending on tag.
	timestamp event.EpochTimeMs
	utcOffset event.EpochTimeMs
	node      SchemaTreeNode
}

// maxTimestampFieldSize is the tag byte plus an int64 timestamp or delta.
const maxTimestampFieldSize = 1 + 8

// logEventSize returns an upper bound of the serialized size of a log event unit holding em.
// It is exact for eight-byte streams.
func logEventSize[T message.Var](em *message.EncodedMessage[T]) int {
	varSize := message.SchemeFor[T]().VarSize()

	return maxTimestampFieldSize +
		encoding.UvarintLen(uint64(len(em.Logtype))) + len(em.Logtype) +
		encoding.UvarintLen(uint64(len(em.Vars))) + len(em.Vars)*varSize +
		encoding.UvarintLen(uint64(len(em.DictVars))) + len(em.DictVars) +
		encoding.UvarintLen(uint64(len(em.DictVarEndOffsets))) + len(em.DictVarEndOffsets)*4
}

func appendLogEvent[T message.Var](dst []byte, width format.EncodingWidth, ts event.EpochTimeMs, em *message.EncodedMessage[T]) []byte {
	if width.DeltaTimestamps() {
		dst = encoding.AppendTimestampDelta(dst, int64(ts))
	} else {
		dst = append(dst, byte(format.TagTimestampVal))
		dst = encoding.AppendInt64(dst, int64(ts))
	}

	dst = encoding.AppendBytes(dst, em.Logtype)
	dst = encoding.AppendInts(dst, em.Vars)
	dst = encoding.AppendBytes(dst, em.DictVars)

	return encoding.AppendInts(dst, em.DictVarEndOffsets)
}

func appendUtcOffsetChange(dst []byte, offset event.EpochTimeMs) []byte {
	dst = append(dst, byte(format.TagUtcOffsetChange))
	return encoding.AppendInt64(dst, int64(offset))
}

func appendSchemaTreeNode(dst []byte, node SchemaTreeNode) []byte {
	dst = append(dst, byte(format.TagSchemaNodeInsertion), byte(node.Type))
	dst = encoding.AppendUvarint(dst, node.ParentID)

	return encoding.AppendBytes(dst, []byte(node.Key))
}

func appendEndOfStream(dst []byte) []byte {
	return append(dst, byte(format.TagEndOfStream))
}

// parseUnit decodes the unit starting at pos. The logtype and dictionary variables of a
// log event alias buf; numeric variables and offsets are decoded into em.
//
// Returns the unit and the position after it. On error nothing is consumed.
func parseUnit[T message.Var](buf []byte, pos int, width format.EncodingWidth, em *message.EncodedMessage[T]) (unit, int, error) {
	cur := encoding.NewCursor(buf, pos)

	b, err := cur.Byte()
	if err != nil {
		return unit{}, pos, err
	}

	u := unit{tag: format.Tag(b)}
	switch u.tag {
	case format.TagEndOfStream:
		return u, cur.Pos(), nil

	case format.TagUtcOffsetChange:
		offset, err := cur.Int64()
		if err != nil {
			return unit{}, pos, err
		}
		u.utcOffset = event.EpochTimeMs(offset)

		return u, cur.Pos(), nil

	case format.TagSchemaNodeInsertion:
		if u.node, err = parseSchemaTreeNode(&cur); err != nil {
			return unit{}, pos, err
		}

		return u, cur.Pos(), nil

	case format.TagTimestampVal:
		if width.DeltaTimestamps() {
			return unit{}, pos, fmt.Errorf("%w: absolute timestamp in a %s stream at offset %d", errs.ErrCorruptedIR, width, pos)
		}
		ts, err := cur.Int64()
		if err != nil {
			return unit{}, pos, err
		}
		u.timestamp = event.EpochTimeMs(ts)

	case format.TagTimestampDeltaByte, format.TagTimestampDeltaShort,
		format.TagTimestampDeltaInt, format.TagTimestampDeltaLong:
		if !width.DeltaTimestamps() {
			return unit{}, pos, fmt.Errorf("%w: delta timestamp in a %s stream at offset %d", errs.ErrCorruptedIR, width, pos)
		}
		delta, err := cur.TimestampDelta(u.tag)
		if err != nil {
			return unit{}, pos, err
		}
		u.timestamp = event.EpochTimeMs(delta)

	default:
		return unit{}, pos, fmt.Errorf("%w: unknown tag %s at offset %d", errs.ErrCorruptedIR, u.tag, pos)
	}

	if err := parseEncodedMessage(&cur, em); err != nil {
		return unit{}, pos, err
	}

	return u, cur.Pos(), nil
}

func parseEncodedMessage[T message.Var](cur *encoding.Cursor, em *message.EncodedMessage[T]) error {
	var err error
	if em.Logtype, err = cur.Bytes(); err != nil {
		return err
	}
	if em.Vars, err = encoding.ReadInts(cur, em.Vars[:0]); err != nil {
		return err
	}
	if em.DictVars, err = cur.Bytes(); err != nil {
		return err
	}
	if em.DictVarEndOffsets, err = cur.Int32s(em.DictVarEndOffsets[:0]); err != nil {
		return err
	}

	return nil
}

func parseSchemaTreeNode(cur *encoding.Cursor) (SchemaTreeNode, error) {
	start := cur.Pos()

	b, err := cur.Byte()
	if err != nil {
		return SchemaTreeNode{}, err
	}
	nodeType := format.NodeType(b)
	if !nodeType.Valid() {
		return SchemaTreeNode{}, fmt.Errorf("%w: %s at offset %d", errs.ErrCorruptedIR, nodeType, start)
	}

	parent, err := cur.Uvarint()
	if err != nil {
		return SchemaTreeNode{}, err
	}
	key, err := cur.Bytes()
	if err != nil {
		return SchemaTreeNode{}, err
	}

	return SchemaTreeNode{Type: nodeType, ParentID: parent, Key: string(key)}, nil
}
