package ir

import "github.com/arloliu/logir/event"

// UnitHandler receives the units dispatched by Deserializer.DeserializeNextUnit.
//
// The view passed to HandleLogEvent is only valid during the call.
type UnitHandler interface {
	HandleLogEvent(view *event.LogEventView) error
	HandleUtcOffsetChange(oldOffset event.EpochTimeMs, newOffset event.EpochTimeMs) error
	HandleSchemaTreeNodeInsertion(id uint64, node SchemaTreeNode) error
	HandleEndOfStream() error
}

// NopUnitHandler implements UnitHandler by ignoring every unit. Embed it to handle only
// some unit kinds.
type NopUnitHandler struct{}

var _ UnitHandler = NopUnitHandler{}

func (NopUnitHandler) HandleLogEvent(*event.LogEventView) error { return nil }

func (NopUnitHandler) HandleUtcOffsetChange(event.EpochTimeMs, event.EpochTimeMs) error { return nil }

func (NopUnitHandler) HandleSchemaTreeNodeInsertion(uint64, SchemaTreeNode) error { return nil }

func (NopUnitHandler) HandleEndOfStream() error { return nil }
