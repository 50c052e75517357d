// Package encoding provides the framing primitives of IR streams.
//
// A stream unit is built from a handful of field shapes, all big-endian:
//   - fixed-width signed integers (int8/16/32/64)
//   - uvarint counts and lengths
//   - length-prefixed byte strings: [length:uvarint][bytes]
//   - size-tagged timestamp deltas: [tag][int8|int16|int32|int64]
//
// The Append* functions write these shapes onto a caller-owned slice. Cursor reads them back
// and distinguishes a field that is cut short (errs.ErrIncompleteIR) from one that can never
// be valid (errs.ErrCorruptedIR), which is what makes stream decoding resumable: a caller that
// gets ErrIncompleteIR appends more bytes and retries from the same position.
//
// # Example
//
//	buf = encoding.AppendBytes(buf, logtype)
//	cur := encoding.NewCursor(buf, 0)
//	logtype, err := cur.Bytes()
package encoding
