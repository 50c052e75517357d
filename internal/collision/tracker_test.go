package collision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	require.NotNil(t, tracker)
	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.HasCollision())
	require.Empty(t, tracker.IDs())
}

func TestTracker_Track(t *testing.T) {
	tracker := NewTracker()

	a := tracker.Track([]byte("took \x11 ms"))
	b := tracker.Track([]byte("user=\x12 logged in"))
	again := tracker.Track([]byte("took \x11 ms"))

	require.Equal(t, a, again)
	require.NotEqual(t, a, b)
	require.Equal(t, 2, tracker.Count())
	require.Equal(t, []uint64{a, b}, tracker.IDs())
	require.Equal(t, 2, tracker.Occurrences(a))
	require.Equal(t, 1, tracker.Occurrences(b))
	require.False(t, tracker.HasCollision())

	logtype, ok := tracker.Logtype(b)
	require.True(t, ok)
	require.Equal(t, "user=\x12 logged in", logtype)

	_, ok = tracker.Logtype(12345)
	require.False(t, ok)
}

func TestTracker_Collision(t *testing.T) {
	require := require.New(t)
	tracker := NewTracker()

	// Force other logtypes under the identifiers already tracked.
	first := tracker.Track([]byte("first"))
	second := tracker.Track([]byte("second"))
	tracker.logtypes[first] = "something else"
	tracker.logtypes[second] = "another thing"

	for range 3 {
		require.Equal(first, tracker.Track([]byte("first")))
	}
	require.True(tracker.HasCollision())
	require.Equal(1, tracker.Collisions(), "repeated occurrences count once")
	require.Equal(4, tracker.Occurrences(first))

	tracker.Track([]byte("second"))
	require.Equal(2, tracker.Collisions())
	require.Equal(2, tracker.Count())
}

func BenchmarkTracker_Track(b *testing.B) {
	tracker := NewTracker()
	logtype := []byte("GET \x12 took \x13 ms status=\x11")

	b.ReportAllocs()
	for b.Loop() {
		tracker.Track(logtype)
	}
}
