package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/anilogapp/anilog-server/internal/remote"
)

// EventEmitter forwards store change notifications to transport layers
// (SSE) without this package depending on them.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op EventEmitter for tests.
type NoopEmitter struct{}

// Emit implements EventEmitter as a no-op.
func (NoopEmitter) Emit(_ any) {}

// EventConverter maps a store event to the emitter's payload type.
type EventConverter func(userID string, ev Event) any

// Sessions owns one Store per authenticated user, created lazily on first
// use and torn down at sign-out. Store lifecycle matches the session: the
// remote subscription opens on creation and closes with End.
type Sessions struct {
	remote  remote.Client
	emitter EventEmitter
	convert EventConverter
	logger  *slog.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

// NewSessions creates a session registry. convert may be nil when emitter
// consumes state.Event values directly.
func NewSessions(remoteClient remote.Client, emitter EventEmitter, convert EventConverter, logger *slog.Logger) *Sessions {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	if convert == nil {
		convert = func(_ string, ev Event) any { return ev }
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sessions{
		remote:  remoteClient,
		emitter: emitter,
		convert: convert,
		logger:  logger,
		stores:  make(map[string]*Store),
	}
}

// Get returns the user's store, initializing a new session when none
// exists. Initialization failures beyond subscription setup are soft: the
// store starts stale and recovers on the next Sync or snapshot.
func (s *Sessions) Get(ctx context.Context, userID string) (*Store, error) {
	s.mu.Lock()
	if store, ok := s.stores[userID]; ok {
		s.mu.Unlock()
		return store, nil
	}

	store := New(userID, s.remote, s.logger)
	s.stores[userID] = store
	s.mu.Unlock()

	if err := store.Initialize(ctx); err != nil {
		s.mu.Lock()
		delete(s.stores, userID)
		s.mu.Unlock()
		store.Close()
		return nil, err
	}

	// Forward change notifications until the session ends.
	events, cancel := store.Watch()
	go func() {
		defer cancel()
		for ev := range events {
			s.emitter.Emit(s.convert(userID, ev))
		}
	}()

	s.logger.Info("session started", "user_id", userID)
	return store, nil
}

// End closes the user's session, if one exists.
func (s *Sessions) End(userID string) {
	s.mu.Lock()
	store, ok := s.stores[userID]
	delete(s.stores, userID)
	s.mu.Unlock()

	if ok {
		store.Close()
		s.logger.Info("session ended", "user_id", userID)
	}
}

// CloseAll ends every session. Used at shutdown.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	stores := make([]*Store, 0, len(s.stores))
	for _, store := range s.stores {
		stores = append(stores, store)
	}
	s.stores = make(map[string]*Store)
	s.mu.Unlock()

	for _, store := range stores {
		store.Close()
	}
}
