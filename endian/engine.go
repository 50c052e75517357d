// Package endian provides the byte order used to frame IR streams.
//
// IR streams are always big-endian so that a stream written on one host decodes identically
// on any other. The framer never hard-codes binary.BigEndian; it goes through an EndianEngine
// so both the fixed-width reads and the append-style writes share one value:
//
//	engine := endian.GetStreamEngine()
//	buf = engine.AppendUint64(buf, uint64(timestamp))
//	ts := int64(engine.Uint64(buf[pos:]))
//
// All functions in this package are safe for concurrent use. The returned engines are
// immutable and stateless.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetStreamEngine returns the engine used for every multi-byte field of an IR stream.
func GetStreamEngine() EndianEngine {
	return GetBigEndianEngine()
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
