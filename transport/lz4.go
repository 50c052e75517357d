package transport

import (
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4WriterPool pools lz4 frame writers; Reset rebinds them to a new destination.
var lz4WriterPool = sync.Pool{
	New: func() any {
		return lz4.NewWriter(nil)
	},
}

type lz4Writer struct {
	*lz4.Writer
}

func newLZ4Reader(r io.Reader) io.ReadCloser {
	return io.NopCloser(lz4.NewReader(r))
}

func newLZ4Writer(w io.Writer) io.WriteCloser {
	lw, _ := lz4WriterPool.Get().(*lz4.Writer)
	lw.Reset(w)

	return &lz4Writer{Writer: lw}
}

// Close writes the frame trailer and returns the frame writer to the pool.
func (w *lz4Writer) Close() error {
	if w.Writer == nil {
		return nil
	}

	err := w.Writer.Close()
	w.Writer.Reset(nil)
	lz4WriterPool.Put(w.Writer)
	w.Writer = nil

	return err
}
