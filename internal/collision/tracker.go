package collision

import "github.com/arloliu/logir/internal/hash"

// Tracker records the logtypes of a stream by identifier and detects identifiers shared by
// different logtypes.
type Tracker struct {
	ids       *hash.Set
	logtypes  map[uint64]string   // ID → first logtype seen with it
	colliding map[string]struct{} // logtypes sharing an ID with a different first logtype
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		ids:       hash.NewSet(),
		logtypes:  make(map[uint64]string),
		colliding: make(map[string]struct{}),
	}
}

// Track records one occurrence of logtype and returns its identifier.
//
// A logtype whose identifier was first recorded for different bytes is a collision. Each
// colliding logtype is counted once, and its occurrences still go to the shared identifier.
func (t *Tracker) Track(logtype []byte) uint64 {
	id, first := t.ids.Add(logtype)
	if first {
		t.logtypes[id] = string(logtype)
		return id
	}

	if t.logtypes[id] != string(logtype) {
		t.colliding[string(logtype)] = struct{}{}
	}

	return id
}

// HasCollision returns true if a collision has been detected.
func (t *Tracker) HasCollision() bool {
	return len(t.colliding) > 0
}

// Collisions returns the number of distinct logtypes that collided with another one.
func (t *Tracker) Collisions() int {
	return len(t.colliding)
}

// Logtype returns the first logtype recorded for id.
func (t *Tracker) Logtype(id uint64) (string, bool) {
	logtype, ok := t.logtypes[id]
	return logtype, ok
}

// Occurrences returns how many times id was tracked.
func (t *Tracker) Occurrences(id uint64) int {
	return t.ids.Count(id)
}

// IDs returns the distinct identifiers in first-seen order.
func (t *Tracker) IDs() []uint64 {
	return t.ids.IDs()
}

// Count returns the number of distinct identifiers.
func (t *Tracker) Count() int {
	return t.ids.Len()
}
