package state

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anilogapp/anilog-server/internal/domain"
	"github.com/anilogapp/anilog-server/internal/errors"
	"github.com/anilogapp/anilog-server/internal/remote"
)

// fakeRemote is an in-memory remote.Client recording write-throughs and
// letting tests push snapshots.
type fakeRemote struct {
	mu        sync.Mutex
	doc       *domain.UserState
	readErr   error
	writeErr  error
	writes    []remote.Partial
	snapshots remote.SnapshotFunc
}

func (f *fakeRemote) Read(_ context.Context, _ string) (*domain.UserState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	if f.doc == nil {
		return nil, errors.NotFound("no document")
	}
	doc := f.doc.Clone()
	return &doc, nil
}

func (f *fakeRemote) WritePartial(_ context.Context, _ string, fields remote.Partial) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, fields)
	if f.doc == nil {
		f.doc = &domain.UserState{}
	}
	if fields.Watchlist != nil {
		f.doc.Watchlist = append([]domain.Title(nil), (*fields.Watchlist)...)
	}
	if fields.WatchedList != nil {
		f.doc.WatchedList = append([]domain.Title(nil), (*fields.WatchedList)...)
	}
	if fields.Ratings != nil {
		f.doc.Ratings = append([]domain.Rating(nil), (*fields.Ratings)...)
	}
	return nil
}

func (f *fakeRemote) Subscribe(_ string, onSnapshot remote.SnapshotFunc, _ remote.ErrorFunc) (func(), error) {
	f.mu.Lock()
	f.snapshots = onSnapshot
	f.mu.Unlock()
	return func() {}, nil
}

// push delivers a remote snapshot as the subscription would.
func (f *fakeRemote) push(state domain.UserState) {
	f.mu.Lock()
	fn := f.snapshots
	f.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}

func (f *fakeRemote) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func newTestStore(t *testing.T, fake *fakeRemote) *Store {
	t.Helper()
	s := New("user-1", fake, nil)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(s.Close)
	return s
}

func title(id int, name string) domain.Title {
	return domain.Title{ID: id, Title: name, Genres: []domain.Genre{{ID: 1, Name: "Action"}}}
}

func TestInitializeSeedsEmptyWhenDocumentMissing(t *testing.T) {
	s := newTestStore(t, &fakeRemote{})

	assert.Equal(t, StatusSynced, s.Status())
	assert.Empty(t, s.Snapshot().Watchlist)
	assert.NotNil(t, s.LastSyncedAt())
}

func TestInitializeSeedsFromRemoteDocument(t *testing.T) {
	fake := &fakeRemote{doc: &domain.UserState{
		Watchlist: []domain.Title{title(1, "A")},
	}}
	s := newTestStore(t, fake)

	assert.Equal(t, StatusSynced, s.Status())
	assert.True(t, s.InWatchlist(1))
}

func TestInitializeReadFailureGoesStale(t *testing.T) {
	fake := &fakeRemote{readErr: errors.Transient("remote down")}
	s := New("user-1", fake, nil)
	require.NoError(t, s.Initialize(context.Background()))
	defer s.Close()

	assert.Equal(t, StatusStale, s.Status())
	assert.Error(t, s.Err())
}

func TestMutationsNoOpWithoutUser(t *testing.T) {
	fake := &fakeRemote{}
	s := New("", fake, nil)

	require.NoError(t, s.AddToWatchlist(context.Background(), title(1, "A")))
	require.NoError(t, s.AddRating(context.Background(), domain.Rating{TitleID: 1}))

	assert.Empty(t, s.Snapshot().Watchlist)
	assert.Zero(t, fake.writeCount())
}

func TestAddToWatchlistWritesThrough(t *testing.T) {
	fake := &fakeRemote{}
	s := newTestStore(t, fake)

	require.NoError(t, s.AddToWatchlist(context.Background(), title(1, "A")))

	assert.True(t, s.InWatchlist(1))
	require.Equal(t, 1, fake.writeCount())
	require.NotNil(t, fake.writes[0].Watchlist)
	assert.Nil(t, fake.writes[0].Ratings)
}

func TestDuplicateWatchlistAddIsNoOp(t *testing.T) {
	fake := &fakeRemote{}
	s := newTestStore(t, fake)

	require.NoError(t, s.AddToWatchlist(context.Background(), title(1, "A")))
	require.NoError(t, s.AddToWatchlist(context.Background(), title(1, "A")))

	assert.Len(t, s.Snapshot().Watchlist, 1)
	assert.Equal(t, 1, fake.writeCount())
}

func TestWatchedAddRemovesFromWatchlistAtomically(t *testing.T) {
	fake := &fakeRemote{}
	s := newTestStore(t, fake)

	require.NoError(t, s.AddToWatchlist(context.Background(), title(1, "A")))
	require.NoError(t, s.AddToWatched(context.Background(), title(1, "A")))

	assert.True(t, s.InWatched(1))
	assert.False(t, s.InWatchlist(1))

	// The single watched-add write carries both changed collections.
	last := fake.writes[fake.writeCount()-1]
	require.NotNil(t, last.WatchedList)
	require.NotNil(t, last.Watchlist)
	assert.Empty(t, *last.Watchlist)
}

func TestAddRatingReplacesPriorForSameTitle(t *testing.T) {
	fake := &fakeRemote{}
	s := newTestStore(t, fake)

	ctx := context.Background()
	require.NoError(t, s.AddRating(ctx, domain.Rating{TitleID: 1, Scores: map[string]int{"overall": 5}}))
	require.NoError(t, s.AddRating(ctx, domain.Rating{TitleID: 1, Scores: map[string]int{"overall": 9}}))

	snapshot := s.Snapshot()
	require.Len(t, snapshot.Ratings, 1)
	assert.Equal(t, 9, snapshot.Ratings[0].Scores["overall"])
	assert.False(t, snapshot.Ratings[0].CreatedAt.IsZero())
}

func TestOfflineMutationSkipsWriteThrough(t *testing.T) {
	fake := &fakeRemote{}
	s := newTestStore(t, fake)

	s.SetOnline(false)
	require.NoError(t, s.AddToWatchlist(context.Background(), title(1, "A")))

	// Optimistic local state, no remote traffic.
	assert.True(t, s.InWatchlist(1))
	assert.Zero(t, fake.writeCount())
	assert.Equal(t, StatusStale, s.Status())
}

func TestWriteThroughFailureKeepsLocalState(t *testing.T) {
	fake := &fakeRemote{writeErr: errors.Transient("remote down")}
	s := newTestStore(t, fake)

	require.NoError(t, s.AddToWatchlist(context.Background(), title(1, "A")))

	assert.True(t, s.InWatchlist(1), "local state must survive a failed write-through")
	assert.Error(t, s.Err())
}

func TestSnapshotOverwritesOptimisticEdit(t *testing.T) {
	fake := &fakeRemote{}
	s := newTestStore(t, fake)

	s.SetOnline(false)
	require.NoError(t, s.AddToWatchlist(context.Background(), title(1, "A")))

	// A snapshot that does not contain the optimistic add clobbers it:
	// the document is the unit of conflict resolution.
	fake.push(domain.UserState{WatchedList: []domain.Title{title(2, "B")}})

	assert.False(t, s.InWatchlist(1))
	assert.True(t, s.InWatched(2))
	assert.Equal(t, StatusSynced, s.Status())
}

func TestReconnectDoesNotAutoResync(t *testing.T) {
	fake := &fakeRemote{}
	s := newTestStore(t, fake)

	s.SetOnline(false)
	assert.Equal(t, StatusStale, s.Status())

	s.SetOnline(true)
	assert.Equal(t, StatusStale, s.Status(), "coming back online must not resync by itself")

	require.NoError(t, s.Sync(context.Background()))
	assert.Equal(t, StatusSynced, s.Status())
}

func TestSyncNoOpWhileOffline(t *testing.T) {
	fake := &fakeRemote{}
	s := newTestStore(t, fake)

	s.SetOnline(false)
	fake.mu.Lock()
	fake.doc = &domain.UserState{Watchlist: []domain.Title{title(5, "E")}}
	fake.mu.Unlock()

	require.NoError(t, s.Sync(context.Background()))
	assert.False(t, s.InWatchlist(5))
}

func TestWatchDeliversChangeEvents(t *testing.T) {
	fake := &fakeRemote{}
	s := newTestStore(t, fake)

	events, cancel := s.Watch()
	defer cancel()

	require.NoError(t, s.AddToWatchlist(context.Background(), title(1, "A")))

	ev := <-events
	assert.Equal(t, EventStateChanged, ev.Kind)
	assert.Equal(t, CauseWatchlistAdd, ev.Cause)
}
