// Package transport wraps the byte source and sink of an IR stream with streaming
// compression.
//
// The IR bytes themselves are never altered: a stream written through NewWriter and read
// back through NewReader yields exactly the bytes produced by the serializer. Supported
// kinds are Zstandard, S2 and LZ4; KindFromPath picks one from a file extension.
//
//	f, _ := os.Create("app.clp.zst")
//	zw, _ := transport.NewWriter(f, transport.KindFromPath(f.Name()))
//	w.CloseTo(zw) // an ir.Writer
//	zw.Close()    // flushes the compressor, does not close f
//
// Zstandard uses github.com/klauspost/compress/zstd. Building with cgo and the gozstd tag
// switches it to github.com/valyala/gozstd.
package transport
