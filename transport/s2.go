package transport

import (
	"io"

	"github.com/klauspost/compress/s2"
)

type s2Writer struct {
	*s2.Writer
	closed bool
}

func newS2Reader(r io.Reader) io.ReadCloser {
	return io.NopCloser(s2.NewReader(r))
}

func newS2Writer(w io.Writer) io.WriteCloser {
	return &s2Writer{Writer: s2.NewWriter(w)}
}

// Close flushes buffered blocks. Only the first call has an effect.
func (w *s2Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	return w.Writer.Close()
}
