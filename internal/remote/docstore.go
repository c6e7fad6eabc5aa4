package remote

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/anilogapp/anilog-server/internal/domain"
	"github.com/anilogapp/anilog-server/internal/errors"
	"github.com/anilogapp/anilog-server/internal/id"
)

// keyPrefix namespaces user-state documents in the database.
const keyPrefix = "userstate:"

// subscriberBuffer bounds pending snapshots per subscriber before drops.
const subscriberBuffer = 16

// DocStore is a badger-backed implementation of Client. It stands in for
// the hosted document store and keeps the same observable contract:
// server-assigned timestamps and per-user change subscriptions.
type DocStore struct {
	db     *badger.DB
	logger *slog.Logger

	mu   sync.RWMutex
	subs map[string]map[string]*subscriber // userID -> subID -> subscriber
}

type subscriber struct {
	snapshots  chan domain.UserState
	done       chan struct{}
	onSnapshot SnapshotFunc
	onError    ErrorFunc
}

// Open opens (creating if needed) the document store at path.
func Open(path string, logger *slog.Logger) (*DocStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil      // Disable Badger's internal logging
	opts.SyncWrites = true // Survive crashes without losing acknowledged writes

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Info("user-state store opened", "path", path)

	return &DocStore{
		db:     db,
		logger: logger,
		subs:   make(map[string]map[string]*subscriber),
	}, nil
}

// Close stops all subscriptions and closes the database.
func (s *DocStore) Close() error {
	s.mu.Lock()
	for _, userSubs := range s.subs {
		for _, sub := range userSubs {
			close(sub.done)
		}
	}
	s.subs = make(map[string]map[string]*subscriber)
	s.mu.Unlock()

	return s.db.Close()
}

// Read returns the user's document, or errors.ErrNotFound if absent.
func (s *DocStore) Read(ctx context.Context, userID string) (*domain.UserState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var state domain.UserState
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.NotFoundf("no state document for user %s", userID)
		}
		if err != nil {
			return fmt.Errorf("get document: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &state)
		})
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// WritePartial merges the given fields into the user's document and assigns
// the server timestamp. Subscribers observe the merged document.
func (s *DocStore) WritePartial(ctx context.Context, userID string, fields Partial) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var merged domain.UserState
	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(keyPrefix + userID)

		var state domain.UserState
		item, err := txn.Get(key)
		if err == nil {
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &state)
			})
			if err != nil {
				return fmt.Errorf("unmarshal existing document: %w", err)
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get existing document: %w", err)
		}

		if fields.Watchlist != nil {
			state.Watchlist = *fields.Watchlist
		}
		if fields.WatchedList != nil {
			state.WatchedList = *fields.WatchedList
		}
		if fields.Ratings != nil {
			state.Ratings = *fields.Ratings
		}
		now := time.Now().UTC()
		state.LastUpdated = &now

		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set document: %w", err)
		}

		merged = state
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(userID, merged)
	return nil
}

// Subscribe registers a change subscription for userID. The current document,
// if any, is delivered before any subsequent change.
func (s *DocStore) Subscribe(userID string, onSnapshot SnapshotFunc, onError ErrorFunc) (func(), error) {
	subID, err := id.Generate("sub")
	if err != nil {
		return nil, err
	}

	sub := &subscriber{
		snapshots:  make(chan domain.UserState, subscriberBuffer),
		done:       make(chan struct{}),
		onSnapshot: onSnapshot,
		onError:    onError,
	}

	s.mu.Lock()
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[string]*subscriber)
	}
	s.subs[userID][subID] = sub
	s.mu.Unlock()

	// Dedicated delivery goroutine keeps snapshot order per subscriber.
	go sub.run()

	// Seed with the current document so a fresh subscriber converges
	// without waiting for the next write.
	if current, err := s.Read(context.Background(), userID); err == nil {
		sub.send(current.Clone(), s.logger)
	} else if !errors.Is(err, errors.ErrNotFound) && onError != nil {
		onError(err)
	}

	s.logger.Debug("subscription opened", "user_id", userID, "sub_id", subID)

	unsubscribe := func() {
		s.mu.Lock()
		if userSubs, ok := s.subs[userID]; ok {
			if sub, ok := userSubs[subID]; ok {
				delete(userSubs, subID)
				close(sub.done)
			}
			if len(userSubs) == 0 {
				delete(s.subs, userID)
			}
		}
		s.mu.Unlock()
		s.logger.Debug("subscription closed", "user_id", userID, "sub_id", subID)
	}
	return unsubscribe, nil
}

// notify fans a snapshot out to the user's subscribers.
func (s *DocStore) notify(userID string, state domain.UserState) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subs[userID] {
		sub.send(state.Clone(), s.logger)
	}
}

func (sub *subscriber) send(state domain.UserState, logger *slog.Logger) {
	select {
	case sub.snapshots <- state:
	case <-sub.done:
	default:
		logger.Warn("dropping snapshot for slow subscriber")
		if sub.onError != nil {
			sub.onError(errors.Internal("subscriber fell behind, snapshot dropped"))
		}
	}
}

func (sub *subscriber) run() {
	for {
		select {
		case state := <-sub.snapshots:
			sub.onSnapshot(state)
		case <-sub.done:
			return
		}
	}
}
