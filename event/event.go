// Package event defines the log event values produced and consumed by IR streams.
package event

import (
	"time"
)

// EpochTimeMs is a timestamp in milliseconds since the Unix epoch. It is also used for
// durations and UTC offsets measured in milliseconds.
type EpochTimeMs int64

// FromTime converts t to milliseconds since the Unix epoch.
func FromTime(t time.Time) EpochTimeMs {
	return EpochTimeMs(t.UnixMilli())
}

// Time returns the timestamp as a UTC time.Time.
func (t EpochTimeMs) Time() time.Time {
	return time.UnixMilli(int64(t)).UTC()
}

// LogEvent is an owned log event.
type LogEvent struct {
	Message   string
	Timestamp EpochTimeMs
	UtcOffset EpochTimeMs
}

// LocalTime returns the timestamp shifted into the event's UTC offset.
func (e LogEvent) LocalTime() time.Time {
	offset := time.Duration(e.UtcOffset) * time.Millisecond
	zone := time.FixedZone("", int(offset/time.Second))

	return time.UnixMilli(int64(e.Timestamp)).In(zone)
}

// LogEventView is a log event whose Message aliases memory owned by the deserializer that
// produced it. The view and its Message stay valid only until the next call on the same
// deserializer; Clone it to keep it longer.
type LogEventView struct {
	Message   []byte
	Timestamp EpochTimeMs
	UtcOffset EpochTimeMs
}

// Clone returns an owned copy of the view.
func (v *LogEventView) Clone() LogEvent {
	return LogEvent{
		Message:   string(v.Message),
		Timestamp: v.Timestamp,
		UtcOffset: v.UtcOffset,
	}
}
