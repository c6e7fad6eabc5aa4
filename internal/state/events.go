package state

import "time"

// EventKind classifies store change notifications.
type EventKind string

// Event kinds observable through Watch.
const (
	// EventStateChanged fires after any change to the local collections,
	// whether from a local mutation or a remote snapshot.
	EventStateChanged EventKind = "state.changed"
	// EventSyncStatus fires when the sync status or connectivity flips.
	EventSyncStatus EventKind = "sync.status"
)

// Event is a coalesced change notification. Observers read the store for
// the current state; events carry only what changed, not the data itself.
type Event struct {
	Kind  EventKind `json:"kind"`
	Cause string    `json:"cause,omitempty"`
	At    time.Time `json:"at"`
}

// Causes attached to EventStateChanged events.
const (
	CauseWatchlistAdd    = "watchlist.add"
	CauseWatchlistRemove = "watchlist.remove"
	CauseWatchedAdd      = "watched.add"
	CauseWatchedRemove   = "watched.remove"
	CauseRatingUpsert    = "rating.upsert"
	CauseRemoteSnapshot  = "remote.snapshot"
	CauseExplicitSync    = "sync.fetch"
)
