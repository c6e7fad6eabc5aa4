package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anilogapp/anilog-server/internal/domain"
)

// recordingEmitter captures emitted events and signals arrival.
type recordingEmitter struct {
	mu     sync.Mutex
	events []any
	ch     chan any
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{ch: make(chan any, 16)}
}

func (r *recordingEmitter) Emit(event any) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	r.ch <- event
}

func (r *recordingEmitter) wait(t *testing.T) any {
	t.Helper()
	select {
	case ev := <-r.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event emitted")
		return nil
	}
}

func TestSessionsGetCreatesStoreLazily(t *testing.T) {
	sessions := NewSessions(&fakeRemote{}, nil, nil, nil)
	t.Cleanup(sessions.CloseAll)

	store, err := sessions.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, StatusSynced, store.Status())
}

func TestSessionsGetReturnsSameStore(t *testing.T) {
	sessions := NewSessions(&fakeRemote{}, nil, nil, nil)
	t.Cleanup(sessions.CloseAll)

	first, err := sessions.Get(context.Background(), "user-1")
	require.NoError(t, err)
	second, err := sessions.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestSessionsIsolatePerUser(t *testing.T) {
	sessions := NewSessions(&fakeRemote{}, nil, nil, nil)
	t.Cleanup(sessions.CloseAll)

	a, err := sessions.Get(context.Background(), "user-a")
	require.NoError(t, err)
	b, err := sessions.Get(context.Background(), "user-b")
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	require.NoError(t, a.AddToWatchlist(context.Background(), title(1, "Monster")))
	assert.Empty(t, b.Snapshot().Watchlist)
}

func TestSessionsForwardEventsThroughEmitter(t *testing.T) {
	emitter := newRecordingEmitter()
	convert := func(userID string, ev Event) any {
		return map[string]any{"user": userID, "kind": ev.Kind}
	}
	sessions := NewSessions(&fakeRemote{}, emitter, convert, nil)
	t.Cleanup(sessions.CloseAll)

	store, err := sessions.Get(context.Background(), "user-1")
	require.NoError(t, err)

	// Initialization already emitted events before the forwarder attached;
	// a fresh mutation must reach the emitter.
	require.NoError(t, store.AddToWatchlist(context.Background(), title(5, "Mushishi")))

	for {
		payload := emitter.wait(t).(map[string]any)
		assert.Equal(t, "user-1", payload["user"])
		if payload["kind"] == EventStateChanged {
			return
		}
	}
}

func TestSessionsEndClosesStore(t *testing.T) {
	sessions := NewSessions(&fakeRemote{}, nil, nil, nil)

	store, err := sessions.Get(context.Background(), "user-1")
	require.NoError(t, err)
	sessions.End("user-1")

	// A new session gets a fresh store.
	replacement, err := sessions.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotSame(t, store, replacement)
	sessions.End("user-1")

	// Ending an unknown session is a no-op.
	sessions.End("nobody")
}

func TestSessionsCloseAllEndsEverySession(t *testing.T) {
	fake := &fakeRemote{doc: &domain.UserState{Watchlist: []domain.Title{title(1, "Monster")}}}
	sessions := NewSessions(fake, nil, nil, nil)

	_, err := sessions.Get(context.Background(), "user-a")
	require.NoError(t, err)
	_, err = sessions.Get(context.Background(), "user-b")
	require.NoError(t, err)

	sessions.CloseAll()

	fresh, err := sessions.Get(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Len(t, fresh.Snapshot().Watchlist, 1)
	sessions.CloseAll()
}
