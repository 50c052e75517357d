package ir

import (
	"fmt"

	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/event"
	"github.com/arloliu/logir/format"
	"github.com/arloliu/logir/internal/pool"
	"github.com/arloliu/logir/message"
)

// Serializer turns log events into IR stream units.
//
// Every method returns a view of an internal buffer that is cleared by the next call on
// the same Serializer. Copy the bytes out (or write them) before calling again.
// A Serializer is not safe for concurrent use.
type Serializer interface {
	// SerializeLogEvent serializes ev. If ev.UtcOffset differs from the tracked offset, a
	// UtcOffsetChange unit is written in front of the event.
	SerializeLogEvent(ev event.LogEvent) ([]byte, error)
	// SerializeRawLogEvent serializes msg with the timestamp field written as given: a delta
	// from the previous event for four-byte streams, an absolute timestamp for eight-byte
	// streams.
	SerializeRawLogEvent(msg string, timestampOrDelta event.EpochTimeMs) ([]byte, error)
	// SerializeUtcOffsetChange writes a UtcOffsetChange unit. It returns an empty view when
	// offset equals the tracked offset.
	SerializeUtcOffsetChange(offset event.EpochTimeMs) ([]byte, error)
	// SerializeSchemaTreeNodeInsertion writes a schema tree node. The parent must be the root
	// or a node inserted earlier.
	SerializeSchemaTreeNodeInsertion(node SchemaTreeNode) ([]byte, error)
	// SerializeEndOfStream writes the end-of-stream unit. Later calls fail with
	// errs.ErrSerializerClosed.
	SerializeEndOfStream() ([]byte, error)
	// Width returns the encoding width of the stream.
	Width() format.EncodingWidth
	// TimestampInfo returns the timestamp info written in the preamble.
	TimestampInfo() TimestampInfo
	// UtcOffset returns the tracked UTC offset.
	UtcOffset() event.EpochTimeMs
	// Close releases the internal buffer. Views returned earlier become invalid.
	Close() error
}

type serializer[T message.Var] struct {
	width         format.EncodingWidth
	timestampInfo TimestampInfo
	buf           *pool.ByteBuffer
	em            message.EncodedMessage[T]
	prevTimestamp event.EpochTimeMs
	utcOffset     event.EpochTimeMs
	nodeCount     uint64
	ended         bool
	closed        bool
}

var (
	_ Serializer = (*serializer[int32])(nil)
	_ Serializer = (*serializer[int64])(nil)
)

// NewFourByteSerializer creates a serializer for a four-byte stream and returns it with
// the encoded preamble.
//
// Four-byte streams store 32-bit variables and timestamp deltas. The first delta is taken
// from referenceTs.
//
// Parameters:
//   - info: Timestamp info written in the preamble
//   - referenceTs: Basis of the first timestamp delta
//   - opts: WithBufferSize, WithUtcOffset
//
// Returns:
//   - Serializer: The new serializer
//   - []byte: Preamble bytes, owned by the caller
//   - error: errs.ErrInvalidOption or errs.ErrEncode
func NewFourByteSerializer(info TimestampInfo, referenceTs event.EpochTimeMs, opts ...Option) (Serializer, []byte, error) {
	return newSerializer[int32](info, referenceTs, opts)
}

// NewEightByteSerializer creates a serializer for an eight-byte stream and returns it with
// the encoded preamble.
//
// Eight-byte streams store 64-bit variables and absolute timestamps.
//
// Parameters:
//   - info: Timestamp info written in the preamble
//   - opts: WithBufferSize, WithUtcOffset
//
// Returns:
//   - Serializer: The new serializer
//   - []byte: Preamble bytes, owned by the caller
//   - error: errs.ErrInvalidOption or errs.ErrEncode
func NewEightByteSerializer(info TimestampInfo, opts ...Option) (Serializer, []byte, error) {
	return newSerializer[int64](info, 0, opts)
}

func newSerializer[T message.Var](info TimestampInfo, referenceTs event.EpochTimeMs, opts []Option) (*serializer[T], []byte, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	s := &serializer[T]{
		width:         message.SchemeFor[T]().Width(),
		timestampInfo: info,
		prevTimestamp: referenceTs,
		buf:           pool.GetUnitBuffer(),
	}
	if cfg.bufferSize > 0 {
		s.buf.Grow(cfg.bufferSize)
	}

	preamble, err := AppendPreamble(nil, Preamble{
		Width:              s.width,
		TimestampInfo:      info,
		ReferenceTimestamp: referenceTs,
	})
	if err != nil {
		s.release()
		return nil, nil, err
	}
	if cfg.utcOffset != 0 {
		preamble = appendUtcOffsetChange(preamble, cfg.utcOffset)
		s.utcOffset = cfg.utcOffset
	}

	return s, preamble, nil
}

func (s *serializer[T]) Width() format.EncodingWidth {
	return s.width
}

func (s *serializer[T]) TimestampInfo() TimestampInfo {
	return s.timestampInfo
}

func (s *serializer[T]) UtcOffset() event.EpochTimeMs {
	return s.utcOffset
}

func (s *serializer[T]) begin() error {
	if s.closed {
		return fmt.Errorf("%w: serializer is closed", errs.ErrSerializerClosed)
	}
	if s.ended {
		return fmt.Errorf("%w: end of stream already written", errs.ErrSerializerClosed)
	}
	s.buf.Reset()

	return nil
}

func (s *serializer[T]) SerializeLogEvent(ev event.LogEvent) ([]byte, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	if err := message.Encode(ev.Message, &s.em); err != nil {
		return nil, err
	}

	if ev.UtcOffset != s.utcOffset {
		s.buf.B = appendUtcOffsetChange(s.buf.B, ev.UtcOffset)
		s.utcOffset = ev.UtcOffset
	}

	ts := ev.Timestamp
	if s.width.DeltaTimestamps() {
		ts = ev.Timestamp - s.prevTimestamp
	}
	s.buf.Grow(logEventSize(&s.em))
	s.buf.B = appendLogEvent(s.buf.B, s.width, ts, &s.em)
	s.prevTimestamp = ev.Timestamp

	return s.buf.Bytes(), nil
}

func (s *serializer[T]) SerializeRawLogEvent(msg string, timestampOrDelta event.EpochTimeMs) ([]byte, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	if err := message.Encode(msg, &s.em); err != nil {
		return nil, err
	}

	s.buf.Grow(logEventSize(&s.em))
	s.buf.B = appendLogEvent(s.buf.B, s.width, timestampOrDelta, &s.em)
	if s.width.DeltaTimestamps() {
		s.prevTimestamp += timestampOrDelta
	} else {
		s.prevTimestamp = timestampOrDelta
	}

	return s.buf.Bytes(), nil
}

func (s *serializer[T]) SerializeUtcOffsetChange(offset event.EpochTimeMs) ([]byte, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	if offset == s.utcOffset {
		return s.buf.Bytes(), nil
	}

	s.buf.B = appendUtcOffsetChange(s.buf.B, offset)
	s.utcOffset = offset

	return s.buf.Bytes(), nil
}

func (s *serializer[T]) SerializeSchemaTreeNodeInsertion(node SchemaTreeNode) ([]byte, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	if !node.Type.Valid() {
		return nil, fmt.Errorf("%w: invalid schema node type %s", errs.ErrEncode, node.Type)
	}
	if node.ParentID > s.nodeCount {
		return nil, fmt.Errorf("%w: parent node %d does not exist, %d nodes inserted", errs.ErrEncode, node.ParentID, s.nodeCount)
	}

	s.buf.B = appendSchemaTreeNode(s.buf.B, node)
	s.nodeCount++

	return s.buf.Bytes(), nil
}

func (s *serializer[T]) SerializeEndOfStream() ([]byte, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}

	s.buf.B = appendEndOfStream(s.buf.B)
	s.ended = true

	return s.buf.Bytes(), nil
}

func (s *serializer[T]) Close() error {
	s.release()
	return nil
}

func (s *serializer[T]) release() {
	if s.buf != nil {
		pool.PutUnitBuffer(s.buf)
		s.buf = nil
	}
	s.closed = true
}
