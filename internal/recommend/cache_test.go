package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anilogapp/anilog-server/internal/domain"
)

func newTestCache(pages map[int][]domain.Title) (*Cache, *fakeCatalog) {
	fake := &fakeCatalog{pages: pages}
	return NewCache(NewEngine(fake, nil)), fake
}

func TestCacheHitMakesZeroCatalogCalls(t *testing.T) {
	cache, fake := newTestCache(map[int][]domain.Title{
		genreAction.ID: {testTitle(10, "A", genreAction)},
	})

	watched := []domain.Title{testTitle(1, "Seen", genreAction)}
	ctx := context.Background()

	first := cache.GetOrCompute(ctx, nil, watched, nil, 5)
	require.NotEmpty(t, first)
	callsAfterFirst := fake.listCalls + fake.detailCalls

	second := cache.GetOrCompute(ctx, nil, watched, nil, 5)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, fake.listCalls+fake.detailCalls, "cache hit must not touch the catalog")
}

func TestCacheHitOnReorderedInputs(t *testing.T) {
	cache, fake := newTestCache(map[int][]domain.Title{
		genreAction.ID: {testTitle(10, "A", genreAction)},
	})

	a := testTitle(1, "A", genreAction)
	b := testTitle(2, "B", genreAction)
	ctx := context.Background()

	cache.GetOrCompute(ctx, nil, []domain.Title{a, b}, nil, 5)
	callsAfterFirst := fake.listCalls + fake.detailCalls

	// Same membership, different order: still a hit.
	cache.GetOrCompute(ctx, nil, []domain.Title{b, a}, nil, 5)
	assert.Equal(t, callsAfterFirst, fake.listCalls+fake.detailCalls)
}

func TestCacheRecomputesOnMembershipChange(t *testing.T) {
	cache, fake := newTestCache(map[int][]domain.Title{
		genreAction.ID: {testTitle(10, "A", genreAction)},
	})

	watched := []domain.Title{testTitle(1, "Seen", genreAction)}
	ctx := context.Background()

	cache.GetOrCompute(ctx, nil, watched, nil, 5)
	callsAfterFirst := fake.listCalls + fake.detailCalls

	// A new rating changes the ratings fingerprint and forces a recompute.
	ratings := []domain.Rating{testRating(1, 90)}
	cache.GetOrCompute(ctx, nil, watched, ratings, 5)
	assert.Greater(t, fake.listCalls+fake.detailCalls, callsAfterFirst)
}

func TestCacheRecomputesOnLimitChange(t *testing.T) {
	cache, fake := newTestCache(map[int][]domain.Title{
		genreAction.ID: {testTitle(10, "A", genreAction), testTitle(11, "B", genreAction)},
	})

	watched := []domain.Title{testTitle(1, "Seen", genreAction)}
	ctx := context.Background()

	cache.GetOrCompute(ctx, nil, watched, nil, 1)
	callsAfterFirst := fake.listCalls + fake.detailCalls

	results := cache.GetOrCompute(ctx, nil, watched, nil, 2)
	assert.Greater(t, fake.listCalls+fake.detailCalls, callsAfterFirst)
	assert.Len(t, results, 2)
}

func TestCacheInvalidateForcesRecompute(t *testing.T) {
	cache, fake := newTestCache(map[int][]domain.Title{
		genreAction.ID: {testTitle(10, "A", genreAction)},
	})

	watched := []domain.Title{testTitle(1, "Seen", genreAction)}
	ctx := context.Background()

	cache.GetOrCompute(ctx, nil, watched, nil, 5)
	callsAfterFirst := fake.listCalls + fake.detailCalls

	cache.Invalidate()
	cache.GetOrCompute(ctx, nil, watched, nil, 5)
	assert.Greater(t, fake.listCalls+fake.detailCalls, callsAfterFirst)
}

func TestFingerprintOrderInsensitiveChangeSensitive(t *testing.T) {
	assert.Equal(t, fingerprintIDs([]int{1, 2, 3}), fingerprintIDs([]int{3, 1, 2}))
	assert.Equal(t, fingerprintIDs([]int{1, 1, 2}), fingerprintIDs([]int{2, 1}))
	assert.NotEqual(t, fingerprintIDs([]int{1, 2}), fingerprintIDs([]int{1, 2, 3}))
	assert.NotEqual(t, fingerprintIDs([]int{1}), fingerprintIDs(nil))
}
