//go:build cgo && gozstd

package transport

import (
	"io"

	"github.com/valyala/gozstd"
)

const zstdLevel = 3

type zstdReader struct {
	reader *gozstd.Reader
}

func newZstdReader(r io.Reader) (io.ReadCloser, error) {
	return &zstdReader{reader: gozstd.NewReader(r)}, nil
}

func (r *zstdReader) Read(p []byte) (int, error) {
	if r.reader == nil {
		return 0, io.ErrClosedPipe
	}

	return r.reader.Read(p)
}

func (r *zstdReader) Close() error {
	if r.reader != nil {
		r.reader.Release()
		r.reader = nil
	}

	return nil
}

type zstdWriter struct {
	writer *gozstd.Writer
}

func newZstdWriter(w io.Writer) (io.WriteCloser, error) {
	return &zstdWriter{writer: gozstd.NewWriterLevel(w, zstdLevel)}, nil
}

func (w *zstdWriter) Write(p []byte) (int, error) {
	if w.writer == nil {
		return 0, io.ErrClosedPipe
	}

	return w.writer.Write(p)
}

func (w *zstdWriter) Close() error {
	if w.writer == nil {
		return nil
	}

	err := w.writer.Close()
	w.writer.Release()
	w.writer = nil

	return err
}
