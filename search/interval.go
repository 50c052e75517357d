package search

import (
	"math"

	"github.com/arloliu/logir/event"
)

// TimestampInterval is the half-open interval [Lower, Upper) of timestamps to search.
type TimestampInterval struct {
	Lower event.EpochTimeMs
	Upper event.EpochTimeMs
}

// AllTime returns the widest interval. Only events stamped with the maximum timestamp
// fall outside it.
func AllTime() TimestampInterval {
	return TimestampInterval{Lower: math.MinInt64, Upper: math.MaxInt64}
}

// Contains reports whether ts is inside the interval.
func (i TimestampInterval) Contains(ts event.EpochTimeMs) bool {
	return ts >= i.Lower && ts < i.Upper
}

// Before reports whether ts precedes the interval.
func (i TimestampInterval) Before(ts event.EpochTimeMs) bool {
	return ts < i.Lower
}

// Exhausted reports whether ts is at or past the upper bound. In a stream ordered by time,
// no later event can fall inside the interval.
func (i TimestampInterval) Exhausted(ts event.EpochTimeMs) bool {
	return ts >= i.Upper
}
