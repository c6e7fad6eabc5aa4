// Package state implements the per-session user-state container: watchlist,
// watched list, and ratings with optimistic local mutation, remote
// write-through, and last-snapshot-wins merge of remote pushes.
package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/anilogapp/anilog-server/internal/domain"
	"github.com/anilogapp/anilog-server/internal/errors"
	"github.com/anilogapp/anilog-server/internal/remote"
)

// SyncStatus is the store's position in the sync lifecycle.
type SyncStatus string

// Sync lifecycle: Uninitialized -> Loading -> Synced <-> Stale.
const (
	StatusUninitialized SyncStatus = "uninitialized"
	StatusLoading       SyncStatus = "loading"
	StatusSynced        SyncStatus = "synced"
	StatusStale         SyncStatus = "stale"
)

// observerBuffer bounds pending events per observer before drops.
const observerBuffer = 32

// Store holds one authenticated user's state for the lifetime of a session.
//
// Mutations apply optimistically: local state changes first and is
// immediately observable; the remote write-through happens after, and only
// while online. Remote snapshots are authoritative on arrival and replace
// the local collections wholesale, which can clobber a racing optimistic
// edit. That trade is deliberate: the document, not the field, is the unit
// of conflict resolution.
type Store struct {
	userID string
	remote remote.Client
	logger *slog.Logger

	mu           sync.RWMutex
	state        domain.UserState
	status       SyncStatus
	online       bool
	lastSyncedAt *time.Time
	lastErr      error
	unsubscribe  func()

	obsMu     sync.Mutex
	observers map[int]chan Event
	nextObsID int
}

// New creates a store for the given user. An empty userID produces an
// unauthenticated store whose mutations silently no-op.
func New(userID string, remoteClient remote.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		userID:    userID,
		remote:    remoteClient,
		logger:    logger,
		status:    StatusUninitialized,
		online:    true,
		observers: make(map[int]chan Event),
	}
}

// Initialize performs the one-shot remote read that seeds local state, then
// opens the standing change subscription. A missing remote document is not
// an error: the session starts empty and creates the document on first
// write-through.
func (s *Store) Initialize(ctx context.Context) error {
	if s.userID == "" {
		return errors.AuthRequired("cannot initialize state without a user")
	}

	s.mu.Lock()
	if s.status != StatusUninitialized {
		s.mu.Unlock()
		return nil
	}
	s.status = StatusLoading
	s.mu.Unlock()
	s.emit(Event{Kind: EventSyncStatus, At: time.Now()})

	seeded, err := s.remote.Read(ctx, s.userID)
	switch {
	case err == nil:
		s.applySeed(*seeded)
	case errors.Is(err, errors.ErrNotFound):
		s.applySeed(domain.UserState{})
	default:
		s.mu.Lock()
		s.status = StatusStale
		s.lastErr = err
		s.mu.Unlock()
		s.emit(Event{Kind: EventSyncStatus, At: time.Now()})
		s.logger.Warn("initial state read failed", "user_id", s.userID, "error", err)
	}

	unsub, err := s.remote.Subscribe(s.userID, s.applySnapshot, s.onSubscribeError)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "open state subscription")
	}
	s.mu.Lock()
	s.unsubscribe = unsub
	s.mu.Unlock()

	s.logger.Info("user state initialized", "user_id", s.userID)
	return nil
}

// Close tears down the remote subscription and all observers. Called at
// sign-out or session end.
func (s *Store) Close() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}

	s.obsMu.Lock()
	for id, ch := range s.observers {
		close(ch)
		delete(s.observers, id)
	}
	s.obsMu.Unlock()
}

func (s *Store) applySeed(seed domain.UserState) {
	now := time.Now()
	s.mu.Lock()
	s.state = seed.Clone()
	s.status = StatusSynced
	s.lastSyncedAt = &now
	s.lastErr = nil
	s.mu.Unlock()

	s.emit(Event{Kind: EventStateChanged, Cause: CauseRemoteSnapshot, At: now})
	s.emit(Event{Kind: EventSyncStatus, At: now})
}

// applySnapshot handles pushed remote snapshots: authoritative on arrival,
// replacing local collections wholesale.
func (s *Store) applySnapshot(snapshot domain.UserState) {
	now := time.Now()
	s.mu.Lock()
	s.state = snapshot.Clone()
	s.status = StatusSynced
	s.lastSyncedAt = &now
	s.mu.Unlock()

	s.emit(Event{Kind: EventStateChanged, Cause: CauseRemoteSnapshot, At: now})
	s.logger.Debug("remote snapshot applied", "user_id", s.userID)
}

func (s *Store) onSubscribeError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.emit(Event{Kind: EventSyncStatus, At: time.Now()})
	s.logger.Warn("state subscription error", "user_id", s.userID, "error", err)
}

// Sync performs an explicit full fetch from the remote store. No-op while
// offline or unauthenticated. This is the only path that resynchronizes
// after reconnecting; flipping online does not trigger one automatically.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.RLock()
	online := s.online
	s.mu.RUnlock()
	if s.userID == "" || !online {
		return nil
	}

	fetched, err := s.remote.Read(ctx, s.userID)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrNotFound):
		// No remote document: syncing settles on empty state.
		fetched = &domain.UserState{}
	default:
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	now := time.Now()
	s.mu.Lock()
	s.state = fetched.Clone()
	s.status = StatusSynced
	s.lastSyncedAt = &now
	s.lastErr = nil
	s.mu.Unlock()

	s.emit(Event{Kind: EventStateChanged, Cause: CauseExplicitSync, At: now})
	s.emit(Event{Kind: EventSyncStatus, At: now})
	return nil
}

// === Mutations ===

// AddToWatchlist adds a title to the watchlist. Adding a title that is
// already present is a no-op.
func (s *Store) AddToWatchlist(ctx context.Context, title domain.Title) error {
	if s.userID == "" {
		s.logger.Debug("watchlist add ignored: no authenticated user")
		return nil
	}

	s.mu.Lock()
	if s.state.InWatchlist(title.ID) {
		s.mu.Unlock()
		return nil
	}
	s.state.Watchlist = append(s.state.Watchlist, title)
	watchlist := append([]domain.Title(nil), s.state.Watchlist...)
	s.mu.Unlock()

	s.emit(Event{Kind: EventStateChanged, Cause: CauseWatchlistAdd, At: time.Now()})
	s.writeThrough(ctx, remote.Partial{Watchlist: &watchlist})
	return nil
}

// RemoveFromWatchlist removes a title from the watchlist by ID.
func (s *Store) RemoveFromWatchlist(ctx context.Context, titleID int) error {
	if s.userID == "" {
		return nil
	}

	s.mu.Lock()
	if !s.state.InWatchlist(titleID) {
		s.mu.Unlock()
		return nil
	}
	s.state.Watchlist = domain.RemoveTitle(s.state.Watchlist, titleID)
	watchlist := append([]domain.Title(nil), s.state.Watchlist...)
	s.mu.Unlock()

	s.emit(Event{Kind: EventStateChanged, Cause: CauseWatchlistRemove, At: time.Now()})
	s.writeThrough(ctx, remote.Partial{Watchlist: &watchlist})
	return nil
}

// AddToWatched marks a title watched. The same update removes it from the
// watchlist, so the two memberships never overlap, even transiently.
func (s *Store) AddToWatched(ctx context.Context, title domain.Title) error {
	if s.userID == "" {
		return nil
	}

	s.mu.Lock()
	if s.state.InWatchedList(title.ID) {
		s.mu.Unlock()
		return nil
	}
	s.state.WatchedList = append(s.state.WatchedList, title)
	s.state.Watchlist = domain.RemoveTitle(s.state.Watchlist, title.ID)
	watched := append([]domain.Title(nil), s.state.WatchedList...)
	watchlist := append([]domain.Title(nil), s.state.Watchlist...)
	s.mu.Unlock()

	s.emit(Event{Kind: EventStateChanged, Cause: CauseWatchedAdd, At: time.Now()})
	s.writeThrough(ctx, remote.Partial{WatchedList: &watched, Watchlist: &watchlist})
	return nil
}

// RemoveFromWatched removes a title from the watched list by ID.
func (s *Store) RemoveFromWatched(ctx context.Context, titleID int) error {
	if s.userID == "" {
		return nil
	}

	s.mu.Lock()
	if !s.state.InWatchedList(titleID) {
		s.mu.Unlock()
		return nil
	}
	s.state.WatchedList = domain.RemoveTitle(s.state.WatchedList, titleID)
	watched := append([]domain.Title(nil), s.state.WatchedList...)
	s.mu.Unlock()

	s.emit(Event{Kind: EventStateChanged, Cause: CauseWatchedRemove, At: time.Now()})
	s.writeThrough(ctx, remote.Partial{WatchedList: &watched})
	return nil
}

// AddRating records a rating, replacing any prior rating for the same title.
func (s *Store) AddRating(ctx context.Context, rating domain.Rating) error {
	if s.userID == "" {
		return nil
	}
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now()
	}

	s.mu.Lock()
	kept := s.state.Ratings[:0:0]
	for _, r := range s.state.Ratings {
		if r.TitleID != rating.TitleID {
			kept = append(kept, r)
		}
	}
	s.state.Ratings = append(kept, rating)
	ratings := append([]domain.Rating(nil), s.state.Ratings...)
	s.mu.Unlock()

	s.emit(Event{Kind: EventStateChanged, Cause: CauseRatingUpsert, At: time.Now()})
	s.writeThrough(ctx, remote.Partial{Ratings: &ratings})
	return nil
}

// writeThrough pushes changed fields to the remote store while online.
// Failures keep the optimistic local state: the error is retained for the
// UI and the session continues from local state.
func (s *Store) writeThrough(ctx context.Context, fields remote.Partial) {
	s.mu.RLock()
	online := s.online
	s.mu.RUnlock()
	if !online {
		return
	}

	if err := s.remote.WritePartial(ctx, s.userID, fields); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.emit(Event{Kind: EventSyncStatus, At: time.Now()})
		s.logger.Warn("write-through failed, keeping local state",
			"user_id", s.userID,
			"error", err,
		)
	}
}

// === Reads ===

// Snapshot returns a copy of the current local state.
func (s *Store) Snapshot() domain.UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// InWatchlist reports watchlist membership by title ID.
func (s *Store) InWatchlist(titleID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.InWatchlist(titleID)
}

// InWatched reports watched-list membership by title ID.
func (s *Store) InWatched(titleID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.InWatchedList(titleID)
}

// Rating returns the user's rating for a title, if any.
func (s *Store) Rating(titleID int) (domain.Rating, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RatingFor(titleID)
}

// Status returns the sync lifecycle position.
func (s *Store) Status() SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// LastSyncedAt returns when a remote snapshot or read last landed.
func (s *Store) LastSyncedAt() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSyncedAt
}

// Err returns the retained error from the most recent failed remote
// interaction, or nil. Local state stays usable regardless.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// IsOnline reports the connectivity flag.
func (s *Store) IsOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// SetOnline flips connectivity. Going offline marks the store stale; coming
// back does not resync by itself - only Sync or the next snapshot does.
func (s *Store) SetOnline(online bool) {
	s.mu.Lock()
	if s.online == online {
		s.mu.Unlock()
		return
	}
	s.online = online
	if !online && s.status == StatusSynced {
		s.status = StatusStale
	}
	s.mu.Unlock()

	s.emit(Event{Kind: EventSyncStatus, At: time.Now()})
	s.logger.Info("connectivity changed", "user_id", s.userID, "online", online)
}

// === Observers ===

// Watch registers an observer. The returned channel receives change events
// until cancel is called or the store closes; slow observers lose events
// rather than blocking mutations.
func (s *Store) Watch() (<-chan Event, func()) {
	ch := make(chan Event, observerBuffer)

	s.obsMu.Lock()
	obsID := s.nextObsID
	s.nextObsID++
	s.observers[obsID] = ch
	s.obsMu.Unlock()

	cancel := func() {
		s.obsMu.Lock()
		if c, ok := s.observers[obsID]; ok {
			delete(s.observers, obsID)
			close(c)
		}
		s.obsMu.Unlock()
	}
	return ch, cancel
}

func (s *Store) emit(event Event) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for _, ch := range s.observers {
		select {
		case ch <- event:
		default:
			// Observer fell behind; it can recover from Snapshot().
		}
	}
}
