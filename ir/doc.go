// Package ir serializes log events into IR streams and decodes them back.
//
// An IR stream is a preamble followed by units:
//
//	[preamble][unit][unit]...[end of stream]
//
// The preamble declares the encoding width of the stream and carries JSON metadata about
// timestamp formatting. Units are log events, UTC offset changes, schema tree node
// insertions and the end-of-stream marker. Four-byte streams store 32-bit variables and
// timestamp deltas; eight-byte streams store 64-bit variables and absolute timestamps.
//
// # Serializing
//
//	s, preamble, err := ir.NewEightByteSerializer(ir.TimestampInfo{TimeZoneID: "UTC"})
//	out = append(out, preamble...)
//	view, err := s.SerializeLogEvent(event.LogEvent{Message: "disk 93% full", Timestamp: ts})
//	out = append(out, view...) // view is reused by the next call
//
// # Deserializing
//
// Deserializers never read from an io.Reader themselves. Each call receives the buffer and
// the position to continue from, and reports errs.ErrIncompleteIR without consuming
// anything when the buffer ends inside a unit:
//
//	d, pos, err := ir.DeserializePreamble(buf)
//	for {
//	    view, next, err := d.DeserializeLogEvent(buf, pos)
//	    if errors.Is(err, errs.ErrIncompleteIR) {
//	        buf = append(buf, more()...)
//	        continue
//	    }
//	    if err != nil {
//	        break // errs.ErrEndOfStream or a decoding error
//	    }
//	    pos = next
//	    handle(view)
//	}
//
// Reader and Writer wrap this loop around an io.Reader and an in-memory buffer.
package ir
