// Package sse implements Server-Sent Events for pushing user-state changes
// and sync-status transitions to connected clients.
package sse

import (
	"time"

	"github.com/anilogapp/anilog-server/internal/state"
)

// EventType represents the type of SSE event.
type EventType string

const (
	// EventStateChanged signals the user's collections changed; clients
	// refetch the snapshot they care about.
	EventStateChanged EventType = "state.changed"
	// EventSyncStatus signals a sync-status or connectivity transition.
	EventSyncStatus EventType = "sync.status"
	// EventHeartbeat is a connection keepalive.
	EventHeartbeat EventType = "heartbeat"
)

// Event is an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Type      EventType `json:"type"`

	// UserID filters delivery to a single user's connections.
	// Empty means broadcast. Not serialized to clients.
	UserID string `json:"-"`
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{Type: EventHeartbeat, Timestamp: time.Now()}
}

// FromStateEvent converts a state.Store change notification into a
// user-scoped SSE event.
func FromStateEvent(userID string, ev state.Event) Event {
	eventType := EventStateChanged
	if ev.Kind == state.EventSyncStatus {
		eventType = EventSyncStatus
	}
	return Event{
		Type:      eventType,
		Timestamp: ev.At,
		Data:      map[string]string{"cause": ev.Cause},
		UserID:    userID,
	}
}
