// Package logir encodes log messages into a compact intermediate representation (IR) and
// searches IR streams without fully materializing them.
//
// A message is split into a logtype, the constant text with placeholders, and its
// variables. Numbers are stored inline as fixed-width integers; everything else that looks
// like a variable goes to a per-message dictionary. Messages that share a template share a
// logtype, which keeps streams small and lets wildcard queries run over the decoded text.
//
// # Core Features
//
//   - Four-byte streams (32-bit variables, delta timestamps) and eight-byte streams
//   - Resumable deserialization: incomplete input is retried without losing state
//   - Windowed wildcard search with '*', '?' and case-insensitive matching
//   - UTC offset tracking and schema tree units
//   - Optional stream compression (Zstd, S2, LZ4) through the transport package
//
// # Basic Usage
//
// Writing a stream:
//
//	w, _ := logir.NewEightByteWriter("UTC")
//	w.Write(event.LogEvent{Message: "GET /health took 3 ms", Timestamp: now})
//	w.CloseTo(file)
//
// Reading it back:
//
//	r, _ := logir.NewReader(file)
//	for {
//	    ev, err := r.Read()
//	    if err != nil {
//	        break // errs.ErrEndOfStream at the end of the stream
//	    }
//	    fmt.Println(ev.Message)
//	}
//
// # Package Structure
//
// This package wraps the ir, message, search and transport packages for the most common
// use cases. Use those packages directly for incremental deserialization over caller-owned
// buffers or to handle individual units.
package logir

import (
	"errors"
	"io"

	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/event"
	"github.com/arloliu/logir/ir"
	"github.com/arloliu/logir/message"
	"github.com/arloliu/logir/search"
	"github.com/arloliu/logir/transport"
)

// NewFourByteWriter creates a Writer for a four-byte stream.
//
// Four-byte streams store 32-bit variables and timestamp deltas; they are the smaller
// choice when most numbers in the messages fit 32 bits.
//
// Parameters:
//   - timeZoneID: Time zone of the log source, recorded in the preamble
//   - opts: ir.WithReferenceTimestamp, ir.WithUtcOffset, ir.WithTimestampPattern, ir.WithBufferSize
//
// Returns:
//   - *ir.Writer: Writer holding the preamble
//   - error: Invalid option error
func NewFourByteWriter(timeZoneID string, opts ...ir.Option) (*ir.Writer, error) {
	return ir.NewWriter[int32](timeZoneID, opts...)
}

// NewEightByteWriter creates a Writer for an eight-byte stream with 64-bit variables and
// absolute timestamps.
func NewEightByteWriter(timeZoneID string, opts ...ir.Option) (*ir.Writer, error) {
	return ir.NewWriter[int64](timeZoneID, opts...)
}

// NewReader reads the preamble from r and returns a Reader for either stream width.
func NewReader(r io.Reader, opts ...ir.Option) (*ir.Reader, error) {
	return ir.NewReader(r, opts...)
}

// NewCompressedReader decompresses r with kind and returns a Reader over the result.
//
// Returns:
//   - *ir.Reader: Reader positioned at the first unit
//   - io.Closer: Releases the decompressor; close it after the Reader
//   - error: Decompressor or preamble error
func NewCompressedReader(r io.Reader, kind transport.Kind, opts ...ir.Option) (*ir.Reader, io.Closer, error) {
	src, err := transport.NewReader(r, kind)
	if err != nil {
		return nil, nil, err
	}

	rd, err := ir.NewReader(src, opts...)
	if err != nil {
		_ = src.Close()
		return nil, nil, err
	}

	return rd, src, nil
}

// EncodeMessage splits msg into its eight-byte encoded form.
func EncodeMessage(msg string) (message.EncodedMessage[int64], error) {
	return message.EncodeMessage[int64](msg)
}

// DecodeMessage renders an encoded message back into text.
func DecodeMessage(em *message.EncodedMessage[int64]) (string, error) {
	return message.DecodeMessage(em)
}

// LogtypeID returns the 64-bit identifier of the logtype of msg. Messages that differ only
// in their variables share the same identifier.
func LogtypeID(msg string) (uint64, error) {
	em, err := message.EncodeMessage[int64](msg)
	if err != nil {
		return 0, err
	}

	return em.LogtypeID(), nil
}

// NewWildcardQuery creates a query where '*' matches any text, '?' one character and '\'
// escapes the next character.
func NewWildcardQuery(query string, caseSensitive bool) search.WildcardQuery {
	return search.NewWildcardQuery(query, caseSensitive)
}

// Search returns every log event of a complete stream inside interval that matches any of
// the queries. An empty query set matches every event.
//
// Parameters:
//   - stream: IR stream bytes starting with the preamble
//   - queries: Wildcard queries
//   - interval: Half-open timestamp interval [Lower, Upper)
//
// Returns:
//   - []event.LogEvent: Matching events in stream order
//   - error: Decoding error; a stream truncated between units is not an error
func Search(stream []byte, queries []search.WildcardQuery, interval search.TimestampInterval) ([]event.LogEvent, error) {
	d, pos, err := ir.DeserializePreamble(stream)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	var matches []event.LogEvent
	for {
		view, next, _, err := d.DeserializeWildcardMatch(stream, pos, queries, interval)
		switch {
		case err == nil:
			matches = append(matches, view.Clone())
			pos = next
		case errors.Is(err, errs.ErrEndOfStream), errors.Is(err, errs.ErrWindowExhausted):
			return matches, nil
		case errors.Is(err, errs.ErrIncompleteIR) && endsBetweenUnits(d, stream, pos):
			return matches, nil
		default:
			return matches, err
		}
	}
}

// endsBetweenUnits reports whether the log events from pos run exactly to the end of
// stream.
func endsBetweenUnits(d ir.Deserializer, stream []byte, pos int) bool {
	for {
		_, next, err := d.DeserializeLogEvent(stream, pos)
		if err != nil {
			return pos == len(stream) && errors.Is(err, errs.ErrIncompleteIR)
		}
		pos = next
	}
}
