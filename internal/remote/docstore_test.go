package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anilogapp/anilog-server/internal/domain"
	"github.com/anilogapp/anilog-server/internal/errors"
)

func newTestDocStore(t *testing.T) *DocStore {
	t.Helper()
	store, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testTitle(id int, name string) domain.Title {
	return domain.Title{ID: id, Title: name}
}

func TestReadMissingDocument(t *testing.T) {
	store := newTestDocStore(t)

	_, err := store.Read(context.Background(), "nobody")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestWritePartialMergesFields(t *testing.T) {
	store := newTestDocStore(t)
	ctx := context.Background()

	watchlist := []domain.Title{testTitle(1, "A")}
	require.NoError(t, store.WritePartial(ctx, "user-1", Partial{Watchlist: &watchlist}))

	ratings := []domain.Rating{{TitleID: 1, Scores: map[string]int{"overall": 7}}}
	require.NoError(t, store.WritePartial(ctx, "user-1", Partial{Ratings: &ratings}))

	doc, err := store.Read(ctx, "user-1")
	require.NoError(t, err)

	// The second write touched only ratings; the watchlist survives.
	require.Len(t, doc.Watchlist, 1)
	assert.Equal(t, 1, doc.Watchlist[0].ID)
	require.Len(t, doc.Ratings, 1)
	assert.Equal(t, 7, doc.Ratings[0].Scores["overall"])
}

func TestWritePartialAssignsServerTimestamp(t *testing.T) {
	store := newTestDocStore(t)
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)
	watchlist := []domain.Title{testTitle(1, "A")}
	require.NoError(t, store.WritePartial(ctx, "user-1", Partial{Watchlist: &watchlist}))

	doc, err := store.Read(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, doc.LastUpdated)
	assert.True(t, doc.LastUpdated.After(before))
}

func TestSubscribeSeedsWithCurrentDocument(t *testing.T) {
	store := newTestDocStore(t)
	ctx := context.Background()

	watchlist := []domain.Title{testTitle(1, "A")}
	require.NoError(t, store.WritePartial(ctx, "user-1", Partial{Watchlist: &watchlist}))

	snapshots := make(chan domain.UserState, 4)
	unsubscribe, err := store.Subscribe("user-1", func(s domain.UserState) {
		snapshots <- s
	}, nil)
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case seed := <-snapshots:
		require.Len(t, seed.Watchlist, 1)
		assert.Equal(t, 1, seed.Watchlist[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for seed snapshot")
	}
}

func TestSubscribeObservesWrites(t *testing.T) {
	store := newTestDocStore(t)
	ctx := context.Background()

	snapshots := make(chan domain.UserState, 4)
	unsubscribe, err := store.Subscribe("user-1", func(s domain.UserState) {
		snapshots <- s
	}, nil)
	require.NoError(t, err)
	defer unsubscribe()

	watched := []domain.Title{testTitle(2, "B")}
	require.NoError(t, store.WritePartial(ctx, "user-1", Partial{WatchedList: &watched}))

	select {
	case snap := <-snapshots:
		require.Len(t, snap.WatchedList, 1)
		assert.Equal(t, 2, snap.WatchedList[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change snapshot")
	}
}

func TestSubscribeIsolatedPerUser(t *testing.T) {
	store := newTestDocStore(t)
	ctx := context.Background()

	snapshots := make(chan domain.UserState, 4)
	unsubscribe, err := store.Subscribe("user-1", func(s domain.UserState) {
		snapshots <- s
	}, nil)
	require.NoError(t, err)
	defer unsubscribe()

	watchlist := []domain.Title{testTitle(1, "A")}
	require.NoError(t, store.WritePartial(ctx, "user-2", Partial{Watchlist: &watchlist}))

	select {
	case <-snapshots:
		t.Fatal("received another user's snapshot")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	store := newTestDocStore(t)
	ctx := context.Background()

	snapshots := make(chan domain.UserState, 4)
	unsubscribe, err := store.Subscribe("user-1", func(s domain.UserState) {
		snapshots <- s
	}, nil)
	require.NoError(t, err)
	unsubscribe()

	watchlist := []domain.Title{testTitle(1, "A")}
	require.NoError(t, store.WritePartial(ctx, "user-1", Partial{Watchlist: &watchlist}))

	select {
	case <-snapshots:
		t.Fatal("received snapshot after unsubscribe")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDocumentsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir, nil)
	require.NoError(t, err)

	watchlist := []domain.Title{testTitle(1, "A")}
	require.NoError(t, store.WritePartial(ctx, "user-1", Partial{Watchlist: &watchlist}))
	require.NoError(t, store.Close())

	reopened, err := Open(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	doc, err := reopened.Read(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, doc.Watchlist, 1)
}
