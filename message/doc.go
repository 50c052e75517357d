// Package message implements the variable codec of the IR format.
//
// A log message is split into a logtype (the constant text with placeholders) and the
// variables that were cut out of it:
//
//	"Connected to 10.0.0.5 after 3 retries in 0.25 sec"
//	logtype:   "Connected to \x12 after \x11 retries in \x13 sec"
//	vars:      [3, encodedFloat("0.25")]
//	dictVars:  "10.0.0.5", end offsets [8]
//
// Integer and float variables are stored inline in the width selected for the stream
// (int32 for four-byte streams, int64 for eight-byte streams). Everything else that looks like
// a variable goes to the dictionary blob. Numbers that do not fit the width take the
// dictionary path, so decoding always reproduces the original message byte for byte.
//
// The codec is a pure function of its input and is safe for concurrent use. EncodedMessage
// values are not; reuse one per goroutine to avoid allocations.
package message
