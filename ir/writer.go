package ir

import (
	"io"
	"time"

	"github.com/arloliu/logir/event"
	"github.com/arloliu/logir/internal/pool"
	"github.com/arloliu/logir/message"
)

// Writer accumulates a serialized IR stream in an internal buffer.
//
// The preamble is buffered by NewWriter. Close appends the end-of-stream unit; call it
// before the final WriteTo to produce a complete stream, or use CloseTo.
type Writer struct {
	Serializer
	buf      *pool.ByteBuffer
	released bool
}

// NewWriter creates a Writer whose stream width is selected by T: int32 for a four-byte
// stream, int64 for an eight-byte stream.
//
// Parameters:
//   - timeZoneID: Time zone of the source producing the log events
//   - opts: WithBufferSize, WithUtcOffset, WithReferenceTimestamp, WithTimestampPattern
//
// Returns:
//   - *Writer: Writer holding the preamble
//   - error: Option or serializer error
func NewWriter[T message.Var](timeZoneID string, opts ...Option) (*Writer, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	info := cfg.timestampInfo
	info.TimeZoneID = timeZoneID

	refTs := event.FromTime(time.Now())
	if cfg.referenceTimestamp != nil {
		refTs = *cfg.referenceTimestamp
	}

	// The writer buffer takes the size option; the serializer keeps its default.
	serializerOpts := []Option{WithUtcOffset(cfg.utcOffset)}

	var s Serializer
	var preamble []byte
	if message.SchemeFor[T]().DeltaTimestamps() {
		s, preamble, err = NewFourByteSerializer(info, refTs, serializerOpts...)
	} else {
		s, preamble, err = NewEightByteSerializer(info, serializerOpts...)
	}
	if err != nil {
		return nil, err
	}

	w := &Writer{Serializer: s, buf: pool.GetStreamBuffer()}
	if cfg.bufferSize > 0 {
		w.buf.Grow(cfg.bufferSize)
	}
	w.buf.MustWrite(preamble)

	return w, nil
}

// Write serializes ev into the buffer.
//
// Returns:
//   - int: Number of bytes added to the buffer
//   - error: Serializer error; nothing is buffered on error
func (w *Writer) Write(ev event.LogEvent) (int, error) {
	view, err := w.SerializeLogEvent(ev)
	if err != nil {
		return 0, err
	}

	return w.buf.Write(view)
}

// WriteUtcOffsetChange records a UTC offset change. Nothing is written when offset equals
// the current offset.
func (w *Writer) WriteUtcOffsetChange(offset event.EpochTimeMs) (int, error) {
	view, err := w.SerializeUtcOffsetChange(offset)
	if err != nil {
		return 0, err
	}

	return w.buf.Write(view)
}

// Bytes returns the buffered stream bytes. The slice is valid until the next Write, WriteTo
// or Reset.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of buffered bytes.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Reset empties the buffer and keeps its storage.
func (w *Writer) Reset() {
	w.buf.Reset()
}

// WriteTo writes the buffered bytes to dst and empties the buffer on success. On error the
// buffer is kept so the caller can inspect it with Bytes and retry.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	n, err := w.buf.WriteTo(dst)
	if err != nil {
		return n, err
	}
	if int(n) != w.buf.Len() {
		return n, io.ErrShortWrite
	}
	w.buf.Reset()

	return n, nil
}

// Close appends the end-of-stream unit and closes the serializer. The buffered bytes stay
// available to Bytes and WriteTo.
func (w *Writer) Close() error {
	view, err := w.SerializeEndOfStream()
	if err != nil {
		return err
	}
	w.buf.MustWrite(view)

	return w.Serializer.Close()
}

// CloseTo closes the Writer, writes the complete stream to dst and releases the buffer.
func (w *Writer) CloseTo(dst io.Writer) (int64, error) {
	if err := w.Close(); err != nil {
		return 0, err
	}

	n, err := w.WriteTo(dst)
	if err != nil {
		return n, err
	}

	w.Release()

	return n, nil
}

// Release closes the serializer and returns the stream buffer to the pool without
// completing the stream. Buffered bytes are discarded and later writes return
// errs.ErrSerializerClosed. Calling Release more than once is a no-op.
func (w *Writer) Release() {
	if w.released {
		return
	}
	w.released = true

	_ = w.Serializer.Close()
	pool.PutStreamBuffer(w.buf)
	w.buf = pool.NewByteBuffer(0)
}
