package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// EventType discriminates the live-feed event variants on the wire.
type EventType string

const (
	EventTypeCommentCreated           EventType = "CommentCreated"
	EventTypeApplicationStatusUpdated EventType = "ApplicationStatusUpdated"
)

// Event is the closed set of domain events pushed to connected viewers.
// Each variant carries enough denormalized context (company/role/visitor
// name) for a subscriber to render a notification without a follow-up query.
// Events are constructed at publish time and never persisted.
type Event interface {
	EventType() EventType
}

// CommentCreated is published after a visitor comment is committed.
type CommentCreated struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	VisitorName   string    `json:"visitor_name"`
	Company       string    `json:"company"`
	Role          string    `json:"role"`
}

func (CommentCreated) EventType() EventType { return EventTypeCommentCreated }

// ApplicationStatusUpdated is published after an application update is
// committed, carrying the status the application now has.
type ApplicationStatusUpdated struct {
	ID      uuid.UUID `json:"id"`
	Company string    `json:"company"`
	Status  string    `json:"status"`
}

func (ApplicationStatusUpdated) EventType() EventType { return EventTypeApplicationStatusUpdated }

// eventEnvelope is the single wire shape for every event: a type tag plus the
// variant payload. The mapping is explicit here so the tag never depends on
// reflection over the concrete type's name.
type eventEnvelope struct {
	Type EventType `json:"type"`
	Data Event     `json:"data"`
}

// EncodeEvent serializes an event to its {"type": ..., "data": {...}} wire
// form, shared by the SSE and WebSocket transports.
func EncodeEvent(e Event) ([]byte, error) {
	return json.Marshal(eventEnvelope{Type: e.EventType(), Data: e})
}
