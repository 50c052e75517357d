// Package errs defines the sentinel errors returned by logir.
//
// Every failure surfaced by the codec, framer, serializer and deserializer wraps exactly one
// of these sentinels, so callers discriminate outcomes with errors.Is:
//
//	view, pos, err := deserializer.DeserializeLogEvent(buf, pos)
//	switch {
//	case err == nil:
//	    // use view
//	case errors.Is(err, errs.ErrIncompleteIR):
//	    // append more bytes to buf and retry the identical call
//	case errors.Is(err, errs.ErrEndOfStream):
//	    // graceful end of the stream
//	default:
//	    // the stream is unusable
//	}
//
// ErrEndOfStream and ErrWindowExhausted are not failures. They are reported through the
// error channel the same way io.EOF is.
package errs

import "errors"

var (
	// ErrIncompleteIR means the buffer does not yet contain a complete unit (or preamble).
	// No state was modified; the caller appends more bytes and retries the identical call.
	ErrIncompleteIR = errors.New("incomplete IR")

	// ErrCorruptedIR means the bytes are structurally invalid: an unknown tag, a bad
	// encoding-width marker or an oversized length.
	ErrCorruptedIR = errors.New("corrupted IR")

	// ErrDecode means a unit was framed correctly but its payload failed semantic
	// validation (placeholder/variable count mismatch, bad offsets, malformed numbers).
	ErrDecode = errors.New("decode error")

	// ErrEncode means a message could not be encoded.
	ErrEncode = errors.New("encode error")

	// ErrEndOfStream is returned when the end-of-stream unit is reached.
	ErrEndOfStream = errors.New("end of IR stream")

	// ErrWindowExhausted is returned by the wildcard matcher when it reached an event at or
	// past the upper bound of the search interval without finding a match.
	ErrWindowExhausted = errors.New("search window exhausted")

	// ErrStreamEnded is returned when a deserializer is used after it reported ErrEndOfStream
	// or after it was closed.
	ErrStreamEnded = errors.New("IR stream already ended")

	// ErrUnsupportedVersion is returned when the preamble metadata has an unknown type or version.
	ErrUnsupportedVersion = errors.New("unsupported IR version")

	// ErrInvalidOption is returned when a constructor option has an invalid value.
	ErrInvalidOption = errors.New("invalid option")

	// ErrSerializerClosed is returned when a closed serializer or writer is used.
	ErrSerializerClosed = errors.New("serializer closed")
)
