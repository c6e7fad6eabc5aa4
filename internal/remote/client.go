// Package remote abstracts the remote user-state document store: per-user
// documents with server-assigned timestamps, partial updates with
// document-level merge semantics, and change-notification subscriptions.
package remote

import (
	"context"

	"github.com/anilogapp/anilog-server/internal/domain"
)

// Partial selects the document fields a WritePartial call replaces.
// Nil fields are left untouched; non-nil fields overwrite the stored value
// wholesale. Merge granularity is the field, never individual items.
type Partial struct {
	Watchlist   *[]domain.Title
	WatchedList *[]domain.Title
	Ratings     *[]domain.Rating
}

// SnapshotFunc receives the authoritative document after every change.
type SnapshotFunc func(state domain.UserState)

// ErrorFunc receives subscription delivery failures.
type ErrorFunc func(err error)

// Client is the remote document store collaborator.
//
// Read returns errors.ErrNotFound when no document exists for the user.
// Subscribe delivers the current document immediately (when present) and
// then every subsequent change until the returned unsubscribe func runs.
type Client interface {
	Read(ctx context.Context, userID string) (*domain.UserState, error)
	WritePartial(ctx context.Context, userID string, fields Partial) error
	Subscribe(userID string, onSnapshot SnapshotFunc, onError ErrorFunc) (unsubscribe func(), err error)
}
