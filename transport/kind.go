package transport

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Kind identifies a stream compression format.
type Kind uint8

const (
	KindNone Kind = iota
	KindZstd
	KindS2
	KindLZ4
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindZstd:
		return "zstd"
	case KindS2:
		return "s2"
	case KindLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Extension returns the conventional file extension of k, including the dot. It is empty
// for KindNone.
func (k Kind) Extension() string {
	switch k {
	case KindZstd:
		return ".zst"
	case KindS2:
		return ".s2"
	case KindLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// ParseKind parses a kind name as printed by Kind.String. The empty string is KindNone.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return KindNone, nil
	case "zstd", "zst":
		return KindZstd, nil
	case "s2":
		return KindS2, nil
	case "lz4":
		return KindLZ4, nil
	default:
		return KindNone, fmt.Errorf("unknown compression kind %q", s)
	}
}

// KindFromPath returns the kind matching the extension of path, or KindNone.
func KindFromPath(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return KindZstd
	case ".s2":
		return KindS2
	case ".lz4":
		return KindLZ4
	default:
		return KindNone
	}
}

// NewReader returns a reader that decompresses r according to kind.
//
// Closing the returned reader releases decoder resources; it never closes r.
//
// Parameters:
//   - r: Compressed source
//   - kind: Compression format of r
//
// Returns:
//   - io.ReadCloser: Decompressing reader
//   - error: Unknown kind or decoder setup error
func NewReader(r io.Reader, kind Kind) (io.ReadCloser, error) {
	switch kind {
	case KindNone:
		return io.NopCloser(r), nil
	case KindZstd:
		return newZstdReader(r)
	case KindS2:
		return newS2Reader(r), nil
	case KindLZ4:
		return newLZ4Reader(r), nil
	default:
		return nil, fmt.Errorf("invalid reader compression: %s", kind)
	}
}

// NewWriter returns a writer that compresses into w according to kind.
//
// Close flushes the compressor and writes any trailer; it never closes w.
//
// Parameters:
//   - w: Destination of the compressed bytes
//   - kind: Compression format
//
// Returns:
//   - io.WriteCloser: Compressing writer
//   - error: Unknown kind or encoder setup error
func NewWriter(w io.Writer, kind Kind) (io.WriteCloser, error) {
	switch kind {
	case KindNone:
		return nopWriteCloser{w}, nil
	case KindZstd:
		return newZstdWriter(w)
	case KindS2:
		return newS2Writer(w), nil
	case KindLZ4:
		return newLZ4Writer(w), nil
	default:
		return nil, fmt.Errorf("invalid writer compression: %s", kind)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
