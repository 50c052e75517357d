//go:build !cgo || !gozstd

package transport

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders. Decoders operate without allocations after a
// warmup, so reusing them across streams pays off.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

type zstdReader struct {
	decoder *zstd.Decoder
}

func newZstdReader(r io.Reader) (io.ReadCloser, error) {
	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	if err := decoder.Reset(r); err != nil {
		zstdDecoderPool.Put(decoder)
		return nil, fmt.Errorf("zstd reader: %w", err)
	}

	return &zstdReader{decoder: decoder}, nil
}

func (r *zstdReader) Read(p []byte) (int, error) {
	if r.decoder == nil {
		return 0, io.ErrClosedPipe
	}

	return r.decoder.Read(p)
}

func (r *zstdReader) Close() error {
	if r.decoder == nil {
		return nil
	}

	// Detach the source before pooling; a nil source is accepted by Reset.
	_ = r.decoder.Reset(nil)
	zstdDecoderPool.Put(r.decoder)
	r.decoder = nil

	return nil
}

type zstdWriter struct {
	encoder *zstd.Encoder
}

func newZstdWriter(w io.Writer) (io.WriteCloser, error) {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	encoder.Reset(w)

	return &zstdWriter{encoder: encoder}, nil
}

func (w *zstdWriter) Write(p []byte) (int, error) {
	if w.encoder == nil {
		return 0, io.ErrClosedPipe
	}

	return w.encoder.Write(p)
}

func (w *zstdWriter) Close() error {
	if w.encoder == nil {
		return nil
	}

	err := w.encoder.Close()
	w.encoder.Reset(nil)
	zstdEncoderPool.Put(w.encoder)
	w.encoder = nil

	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}

	return nil
}
