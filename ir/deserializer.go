package ir

import (
	"errors"
	"fmt"

	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/event"
	"github.com/arloliu/logir/format"
	"github.com/arloliu/logir/message"
	"github.com/arloliu/logir/search"
)

// State is the lifecycle state of a Deserializer.
type State uint8

const (
	// StateReading means units can still be decoded.
	StateReading State = iota
	// StateEnded means the end-of-stream unit was decoded.
	StateEnded
	// StateClosed means Close was called.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateReading:
		return "Reading"
	case StateEnded:
		return "Ended"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// EncodedLogEventView is a log event in encoded form. Its slices alias the input buffer or
// the deserializer's scratch storage and stay valid until the next call on the same
// Deserializer. Vars holds the numeric variables widened to int64.
type EncodedLogEventView struct {
	Logtype           []byte
	Vars              []int64
	DictVars          []byte
	DictVarEndOffsets []int32
	Timestamp         event.EpochTimeMs
	UtcOffset         event.EpochTimeMs
}

// Deserializer decodes the units that follow a preamble.
//
// Every Deserialize method takes the whole buffer and the position of the next unit and
// returns the position after what it consumed. When the buffer ends in the middle of a
// unit the method returns errs.ErrIncompleteIR, consumes nothing and leaves the state
// untouched, so the caller appends bytes and repeats the identical call.
//
// Returned views alias scratch storage and stay valid until the next call on the same
// Deserializer. A Deserializer is not safe for concurrent use.
type Deserializer interface {
	// DeserializeLogEvent decodes the next log event, applying every UtcOffsetChange unit in
	// front of it (the last one wins). It returns errs.ErrEndOfStream at the end of the stream.
	DeserializeLogEvent(buf []byte, pos int) (*event.LogEventView, int, error)
	// DeserializeEncodedLogEvent is DeserializeLogEvent without rendering the message.
	DeserializeEncodedLogEvent(buf []byte, pos int) (*EncodedLogEventView, int, error)
	// DeserializeWildcardMatch decodes log events until one inside interval matches a query
	// and returns it with the index of the first matching query (0 for an empty query set).
	// It returns errs.ErrWindowExhausted, with the position of the event that reached the
	// upper bound and the state from before it, when no match exists in the window.
	DeserializeWildcardMatch(buf []byte, pos int, queries []search.WildcardQuery, interval search.TimestampInterval) (*event.LogEventView, int, int, error)
	// DeserializeNextUnit decodes exactly one unit and dispatches it to handler. Handler
	// errors are returned unchanged with the unit consumed. After HandleEndOfStream it
	// returns errs.ErrEndOfStream.
	DeserializeNextUnit(buf []byte, pos int, handler UnitHandler) (int, error)
	// Preamble returns the decoded preamble.
	Preamble() Preamble
	// TimestampInfo returns the timestamp info of the preamble.
	TimestampInfo() TimestampInfo
	// Timestamp returns the timestamp of the last decoded log event, or the reference
	// timestamp before the first one.
	Timestamp() event.EpochTimeMs
	// UtcOffset returns the current UTC offset.
	UtcOffset() event.EpochTimeMs
	// SchemaTree returns the schema tree nodes decoded so far; node i has ID i+1.
	SchemaTree() []SchemaTreeNode
	// State returns the lifecycle state.
	State() State
	// Close releases scratch storage. Later calls return errs.ErrStreamEnded.
	Close() error
}

type deserializer[T message.Var] struct {
	preamble  Preamble
	timestamp event.EpochTimeMs
	utcOffset event.EpochTimeMs
	state     State
	nodes     []SchemaTreeNode

	em      message.EncodedMessage[T]
	msg     []byte
	view    event.LogEventView
	encView EncodedLogEventView
}

var (
	_ Deserializer = (*deserializer[int32])(nil)
	_ Deserializer = (*deserializer[int64])(nil)
)

// DeserializePreamble decodes the preamble at the start of buf and creates a Deserializer
// for the encoding width it declares.
//
// Parameters:
//   - buf: Stream bytes starting with the preamble
//
// Returns:
//   - Deserializer: Deserializer for the units that follow
//   - int: Position of the first unit
//   - error: errs.ErrIncompleteIR, errs.ErrCorruptedIR or errs.ErrUnsupportedVersion
func DeserializePreamble(buf []byte) (Deserializer, int, error) {
	p, pos, err := DecodePreamble(buf)
	if err != nil {
		return nil, 0, err
	}

	if p.Width == format.FourByte {
		return &deserializer[int32]{preamble: p, timestamp: p.ReferenceTimestamp}, pos, nil
	}

	return &deserializer[int64]{preamble: p}, pos, nil
}

func (d *deserializer[T]) Preamble() Preamble           { return d.preamble }
func (d *deserializer[T]) TimestampInfo() TimestampInfo { return d.preamble.TimestampInfo }
func (d *deserializer[T]) Timestamp() event.EpochTimeMs { return d.timestamp }
func (d *deserializer[T]) UtcOffset() event.EpochTimeMs { return d.utcOffset }
func (d *deserializer[T]) SchemaTree() []SchemaTreeNode { return d.nodes }
func (d *deserializer[T]) State() State                 { return d.state }

func (d *deserializer[T]) Close() error {
	d.state = StateClosed
	d.em = message.EncodedMessage[T]{}
	d.msg = nil
	d.nodes = nil

	return nil
}

func (d *deserializer[T]) check(buf []byte, pos int) error {
	if d.state != StateReading {
		return fmt.Errorf("%w: deserializer is %s", errs.ErrStreamEnded, d.state)
	}
	if pos < 0 || pos > len(buf) {
		return fmt.Errorf("%w: position %d outside buffer of %d bytes", errs.ErrCorruptedIR, pos, len(buf))
	}

	return nil
}

// pendingEvent is a log event decoded into scratch storage but not yet committed.
type pendingEvent struct {
	timestamp event.EpochTimeMs
	utcOffset event.EpochTimeMs
}

// nextEvent decodes units from pos up to and including the next log event. Offset changes
// are folded into the returned pending event; schema nodes are appended to d.nodes. The
// returned error is errs.ErrEndOfStream (unwrapped) when the end-of-stream unit is reached,
// with the position after it.
//
// Only d.nodes and scratch storage are modified. Callers roll back d.nodes on error.
func (d *deserializer[T]) nextEvent(buf []byte, pos int) (pendingEvent, int, error) {
	ev := pendingEvent{utcOffset: d.utcOffset}
	cur := pos
	for {
		u, next, err := parseUnit(buf, cur, d.preamble.Width, &d.em)
		if err != nil {
			return pendingEvent{}, pos, err
		}
		cur = next

		switch u.tag {
		case format.TagUtcOffsetChange:
			ev.utcOffset = u.utcOffset
		case format.TagSchemaNodeInsertion:
			if err := d.insertNode(u.node); err != nil {
				return pendingEvent{}, pos, err
			}
		case format.TagEndOfStream:
			return ev, cur, errs.ErrEndOfStream
		default:
			ev.timestamp = u.timestamp
			if d.preamble.Width.DeltaTimestamps() {
				ev.timestamp = d.timestamp + u.timestamp
			}

			return ev, cur, nil
		}
	}
}

func (d *deserializer[T]) insertNode(node SchemaTreeNode) error {
	if node.ParentID > uint64(len(d.nodes)) {
		return fmt.Errorf("%w: schema node parent %d does not exist, %d nodes inserted",
			errs.ErrCorruptedIR, node.ParentID, len(d.nodes))
	}
	d.nodes = append(d.nodes, node)

	return nil
}

func (d *deserializer[T]) commit(ev pendingEvent) {
	d.timestamp = ev.timestamp
	d.utcOffset = ev.utcOffset
}

func (d *deserializer[T]) end(ev pendingEvent) {
	d.utcOffset = ev.utcOffset
	d.state = StateEnded
}

func (d *deserializer[T]) render(ev pendingEvent) (*event.LogEventView, error) {
	msg, err := message.Decode(&d.em, d.msg[:0])
	if err != nil {
		return nil, err
	}
	d.msg = msg

	d.view = event.LogEventView{Message: d.msg, Timestamp: ev.timestamp, UtcOffset: ev.utcOffset}

	return &d.view, nil
}

func (d *deserializer[T]) DeserializeLogEvent(buf []byte, pos int) (*event.LogEventView, int, error) {
	if err := d.check(buf, pos); err != nil {
		return nil, pos, err
	}

	nodeCount := len(d.nodes)
	ev, next, err := d.nextEvent(buf, pos)
	if errors.Is(err, errs.ErrEndOfStream) {
		d.end(ev)
		return nil, next, errs.ErrEndOfStream
	}
	if err != nil {
		d.nodes = d.nodes[:nodeCount]
		return nil, pos, err
	}

	view, err := d.render(ev)
	if err != nil {
		d.nodes = d.nodes[:nodeCount]
		return nil, pos, err
	}
	d.commit(ev)

	return view, next, nil
}

func (d *deserializer[T]) DeserializeEncodedLogEvent(buf []byte, pos int) (*EncodedLogEventView, int, error) {
	if err := d.check(buf, pos); err != nil {
		return nil, pos, err
	}

	nodeCount := len(d.nodes)
	ev, next, err := d.nextEvent(buf, pos)
	if errors.Is(err, errs.ErrEndOfStream) {
		d.end(ev)
		return nil, next, errs.ErrEndOfStream
	}
	if err != nil {
		d.nodes = d.nodes[:nodeCount]
		return nil, pos, err
	}
	d.commit(ev)

	vars := d.encView.Vars[:0]
	for _, v := range d.em.Vars {
		vars = append(vars, int64(v))
	}
	d.encView = EncodedLogEventView{
		Logtype:           d.em.Logtype,
		Vars:              vars,
		DictVars:          d.em.DictVars,
		DictVarEndOffsets: d.em.DictVarEndOffsets,
		Timestamp:         ev.timestamp,
		UtcOffset:         ev.utcOffset,
	}

	return &d.encView, next, nil
}

func (d *deserializer[T]) DeserializeWildcardMatch(
	buf []byte,
	pos int,
	queries []search.WildcardQuery,
	interval search.TimestampInterval,
) (*event.LogEventView, int, int, error) {
	if err := d.check(buf, pos); err != nil {
		return nil, pos, -1, err
	}

	savedTimestamp, savedOffset, savedNodes := d.timestamp, d.utcOffset, len(d.nodes)
	rollback := func() {
		d.timestamp, d.utcOffset = savedTimestamp, savedOffset
		d.nodes = d.nodes[:savedNodes]
	}

	cur := pos
	for {
		eventNodes := len(d.nodes)
		ev, next, err := d.nextEvent(buf, cur)
		if errors.Is(err, errs.ErrEndOfStream) {
			d.end(ev)
			return nil, next, -1, errs.ErrEndOfStream
		}
		if err != nil {
			rollback()
			return nil, pos, -1, err
		}

		if interval.Exhausted(ev.timestamp) {
			// Leave the exhausting event, and the units in front of it, unread.
			d.nodes = d.nodes[:eventNodes]
			return nil, cur, -1, errs.ErrWindowExhausted
		}

		d.commit(ev)
		cur = next
		if interval.Before(ev.timestamp) {
			continue
		}

		view, err := d.render(ev)
		if err != nil {
			rollback()
			return nil, pos, -1, err
		}
		if idx, ok := search.MatchAny(queries, view.Message); ok {
			return view, cur, idx, nil
		}
	}
}

func (d *deserializer[T]) DeserializeNextUnit(buf []byte, pos int, handler UnitHandler) (int, error) {
	if err := d.check(buf, pos); err != nil {
		return pos, err
	}

	u, next, err := parseUnit(buf, pos, d.preamble.Width, &d.em)
	if err != nil {
		return pos, err
	}

	switch u.tag {
	case format.TagUtcOffsetChange:
		old := d.utcOffset
		d.utcOffset = u.utcOffset

		return next, handler.HandleUtcOffsetChange(old, u.utcOffset)

	case format.TagSchemaNodeInsertion:
		if err := d.insertNode(u.node); err != nil {
			return pos, err
		}

		return next, handler.HandleSchemaTreeNodeInsertion(uint64(len(d.nodes)), u.node)

	case format.TagEndOfStream:
		d.state = StateEnded
		if err := handler.HandleEndOfStream(); err != nil {
			return next, err
		}

		return next, errs.ErrEndOfStream

	default:
		ev := pendingEvent{timestamp: u.timestamp, utcOffset: d.utcOffset}
		if d.preamble.Width.DeltaTimestamps() {
			ev.timestamp = d.timestamp + u.timestamp
		}

		view, err := d.render(ev)
		if err != nil {
			return pos, err
		}
		d.commit(ev)

		return next, handler.HandleLogEvent(view)
	}
}
