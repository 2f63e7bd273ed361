package app

import (
	"attimuite/internal/domain"
	"attimuite/internal/narration"
)

// EventKind identifies emitted session events for host dispatch.
type EventKind string

const (
	EventStateChanged EventKind = "state_changed"
	EventNarration    EventKind = "narration"
)

// Event is a session event. Payload is StateChangedPayload or NarrationPayload.
type Event struct {
	Kind    EventKind
	Payload any
}

type StateChangedPayload struct {
	Snapshot domain.Snapshot
}

type NarrationPayload struct {
	Request narration.Request
}
