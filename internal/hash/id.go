// Package hash computes stable 64-bit identifiers for logtypes.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Bytes computes the xxHash64 of the given byte slice without copying it.
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Set tracks distinct identifiers and how often each one was added.
type Set struct {
	counts map[uint64]int
	order  []uint64
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{counts: make(map[uint64]int)}
}

// Add records the identifier of data and reports whether it was seen for the first time.
func (s *Set) Add(data []byte) (uint64, bool) {
	id := Bytes(data)
	n := s.counts[id]
	s.counts[id] = n + 1
	if n == 0 {
		s.order = append(s.order, id)
	}

	return id, n == 0
}

// Len returns the number of distinct identifiers.
func (s *Set) Len() int {
	return len(s.order)
}

// Count returns how many times id was added.
func (s *Set) Count(id uint64) int {
	return s.counts[id]
}

// IDs returns the distinct identifiers in first-seen order.
func (s *Set) IDs() []uint64 {
	return s.order
}
