package sandbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventKind names a session lifecycle transition observed by a hook.
type EventKind string

const (
	EventSessionStarted EventKind = "session_started"
	EventSessionEnded   EventKind = "session_ended"
)

// Event is the record hooks publish to their backends.
type Event struct {
	ID         string    `json:"id"`
	Session    string    `json:"session"`
	Source     string    `json:"source"`
	Kind       EventKind `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps a new event with a random ID and the current time.
func NewEvent(session, source string, kind EventKind) Event {
	return Event{
		ID:         uuid.NewString(),
		Session:    session,
		Source:     source,
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
	}
}

// Encode returns the JSON form of the event.
func (e Event) Encode() []byte {
	raw, _ := json.Marshal(e)
	return raw
}
