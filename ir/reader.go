package ir

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/event"
	"github.com/arloliu/logir/internal/pool"
	"github.com/arloliu/logir/search"
)

// maxEmptyReads bounds consecutive reads that return neither data nor an error.
const maxEmptyReads = 100

// Reader decodes an IR stream from an io.Reader.
//
// It keeps the unconsumed part of the stream in a pooled buffer that is compacted and grown
// whenever a unit does not fit, and implements the retry loop on errs.ErrIncompleteIR that
// callers of a Deserializer would otherwise write themselves.
//
// Errors:
//   - errs.ErrEndOfStream when the end-of-stream unit is reached
//   - io.EOF when the source ends exactly between two units without an end-of-stream unit
//   - io.ErrUnexpectedEOF when the source ends inside a unit
//   - any error of the source or of the Deserializer
type Reader struct {
	Deserializer
	r      io.Reader
	buf    *pool.ByteBuffer
	start  int
	srcErr error
}

// NewReader reads the preamble from r and returns a Reader positioned at the first unit.
//
// Parameters:
//   - r: Stream source
//   - opts: WithBufferSize
//
// Returns:
//   - *Reader: Reader ready to decode log events
//   - error: Preamble decoding or source error
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	rd := &Reader{r: r, buf: pool.GetStreamBuffer()}
	if cfg.bufferSize > 0 {
		rd.buf.Grow(cfg.bufferSize)
	}

	for {
		d, pos, err := DeserializePreamble(rd.buf.Bytes())
		if err == nil {
			rd.Deserializer = d
			rd.start = pos

			return rd, nil
		}
		if !errors.Is(err, errs.ErrIncompleteIR) {
			rd.release()
			return nil, err
		}
		if err := rd.fill(); err != nil {
			rd.release()
			return nil, err
		}
	}
}

// fill compacts the buffer and reads more bytes from the source.
func (rd *Reader) fill() error {
	if rd.srcErr != nil {
		return rd.unexpected(rd.srcErr)
	}

	rd.buf.Compact(rd.start)
	rd.start = 0
	if len(rd.buf.Free()) == 0 {
		rd.buf.Grow(max(rd.buf.Cap(), pool.UnitBufferDefaultSize))
	}

	for range maxEmptyReads {
		n, err := rd.r.Read(rd.buf.Free())
		rd.buf.SetLength(rd.buf.Len() + n)
		if err != nil {
			rd.srcErr = err
			if n > 0 {
				return nil
			}

			return rd.unexpected(err)
		}
		if n > 0 {
			return nil
		}
	}

	return io.ErrNoProgress
}

// unexpected maps the end of the source to io.EOF between units and io.ErrUnexpectedEOF
// inside one.
func (rd *Reader) unexpected(err error) error {
	if !errors.Is(err, io.EOF) {
		return err
	}
	if rd.buf.Len()-rd.start == 0 {
		return io.EOF
	}

	return io.ErrUnexpectedEOF
}

// Read decodes the next log event.
func (rd *Reader) Read() (event.LogEvent, error) {
	view, err := rd.next()
	if err != nil {
		return event.LogEvent{}, err
	}

	return view.Clone(), nil
}

func (rd *Reader) next() (*event.LogEventView, error) {
	for {
		view, pos, err := rd.DeserializeLogEvent(rd.buf.Bytes(), rd.start)
		if err == nil {
			rd.start = pos
			return view, nil
		}
		if errors.Is(err, errs.ErrEndOfStream) {
			rd.start = pos
			return nil, err
		}
		if !errors.Is(err, errs.ErrIncompleteIR) {
			return nil, err
		}
		if err := rd.fill(); err != nil {
			return nil, err
		}
	}
}

// ReadEncoded decodes the next log event without rendering its message. The view is valid
// until the next call on the Reader.
func (rd *Reader) ReadEncoded() (*EncodedLogEventView, error) {
	for {
		view, pos, err := rd.DeserializeEncodedLogEvent(rd.buf.Bytes(), rd.start)
		if err == nil {
			rd.start = pos
			return view, nil
		}
		if errors.Is(err, errs.ErrEndOfStream) {
			rd.start = pos
			return nil, err
		}
		if !errors.Is(err, errs.ErrIncompleteIR) {
			return nil, err
		}
		if err := rd.fill(); err != nil {
			return nil, err
		}
	}
}

// ReadToFunc decodes log events until f returns true and returns that event.
func (rd *Reader) ReadToFunc(f func(view *event.LogEventView) bool) (event.LogEvent, error) {
	for {
		view, err := rd.next()
		if err != nil {
			return event.LogEvent{}, err
		}
		if f(view) {
			return view.Clone(), nil
		}
	}
}

// ReadToEpochTime decodes log events until one has a timestamp at or after ts.
func (rd *Reader) ReadToEpochTime(ts event.EpochTimeMs) (event.LogEvent, error) {
	return rd.ReadToFunc(func(v *event.LogEventView) bool { return v.Timestamp >= ts })
}

// ReadToContains decodes log events until one's message contains sub.
func (rd *Reader) ReadToContains(sub []byte) (event.LogEvent, error) {
	return rd.ReadToFunc(func(v *event.LogEventView) bool { return bytes.Contains(v.Message, sub) })
}

// ReadToPrefix decodes log events until one's message starts with prefix.
func (rd *Reader) ReadToPrefix(prefix []byte) (event.LogEvent, error) {
	return rd.ReadToFunc(func(v *event.LogEventView) bool { return bytes.HasPrefix(v.Message, prefix) })
}

// ReadToSuffix decodes log events until one's message ends with suffix.
func (rd *Reader) ReadToSuffix(suffix []byte) (event.LogEvent, error) {
	return rd.ReadToFunc(func(v *event.LogEventView) bool { return bytes.HasSuffix(v.Message, suffix) })
}

// ReadToWildcardMatch decodes log events until one inside interval matches a query.
//
// Returns:
//   - event.LogEvent: The matching event
//   - int: Index of the first matching query
//   - error: errs.ErrWindowExhausted when an event reached the upper bound; that event is
//     left unread. Other errors as for Read.
func (rd *Reader) ReadToWildcardMatch(queries []search.WildcardQuery, interval search.TimestampInterval) (event.LogEvent, int, error) {
	for {
		view, pos, idx, err := rd.DeserializeWildcardMatch(rd.buf.Bytes(), rd.start, queries, interval)
		switch {
		case err == nil:
			rd.start = pos
			return view.Clone(), idx, nil
		case errors.Is(err, errs.ErrEndOfStream), errors.Is(err, errs.ErrWindowExhausted):
			rd.start = pos
			return event.LogEvent{}, -1, err
		case errors.Is(err, errs.ErrIncompleteIR):
			if err := rd.fill(); err != nil {
				return event.LogEvent{}, -1, err
			}
		default:
			return event.LogEvent{}, -1, err
		}
	}
}

// Buffered returns the number of bytes read from the source but not yet decoded.
func (rd *Reader) Buffered() int {
	return rd.buf.Len() - rd.start
}

// Close closes the Deserializer and releases the buffer. It does not close the source.
func (rd *Reader) Close() error {
	var err error
	if rd.Deserializer != nil {
		err = rd.Deserializer.Close()
	}
	rd.release()

	if err != nil {
		return fmt.Errorf("close reader: %w", err)
	}

	return nil
}

func (rd *Reader) release() {
	if rd.buf != nil {
		pool.PutStreamBuffer(rd.buf)
		rd.buf = pool.NewByteBuffer(0)
	}
	rd.start = 0
}
