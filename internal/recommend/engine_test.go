package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anilogapp/anilog-server/internal/catalog"
	"github.com/anilogapp/anilog-server/internal/domain"
	"github.com/anilogapp/anilog-server/internal/errors"
)

// fakeCatalog serves canned pages per genre and counts calls.
type fakeCatalog struct {
	pages       map[int][]domain.Title
	listErr     map[int]error
	detailErr   map[int]error
	listCalls   int
	detailCalls int
}

func (f *fakeCatalog) ListByGenre(_ context.Context, genreID *int, _ catalog.Sort, _ int) ([]domain.Title, error) {
	f.listCalls++
	if genreID == nil {
		return nil, errors.Internal("genre required in tests")
	}
	if err := f.listErr[*genreID]; err != nil {
		return nil, err
	}
	return f.pages[*genreID], nil
}

func (f *fakeCatalog) GetDetail(_ context.Context, titleID int) (*domain.DetailedTitle, error) {
	f.detailCalls++
	if err := f.detailErr[titleID]; err != nil {
		return nil, err
	}
	for _, page := range f.pages {
		for _, title := range page {
			if title.ID == titleID {
				return &domain.DetailedTitle{Title: title, Synopsis: "synopsis"}, nil
			}
		}
	}
	return nil, errors.NotFoundf("title %d not found", titleID)
}

func TestRecommendRanksByPreferenceFit(t *testing.T) {
	// Action weight 80, Drama weight 100. A title in both genres collects a
	// contribution from each fetch.
	actionOnly := testTitle(10, "Action Only", genreAction)
	actionOnly.Score = 8.0
	both := testTitle(11, "Action Drama", genreAction, genreDrama)
	both.Score = 9.0
	dramaOnly := testTitle(12, "Drama Only", genreDrama)
	dramaOnly.Score = 7.0

	fake := &fakeCatalog{pages: map[int][]domain.Title{
		genreAction.ID: {actionOnly, both},
		genreDrama.ID:  {both, dramaOnly},
	}}
	engine := NewEngine(fake, nil)

	prefs := []GenrePreference{
		{GenreID: genreDrama.ID, Name: genreDrama.Name, Weight: 100},
		{GenreID: genreAction.ID, Name: genreAction.Name, Weight: 80},
	}

	results := engine.Recommend(context.Background(), prefs, nil, 10)
	require.Len(t, results, 3)

	// both: drama 100*2*0.9 + action 80*2*0.9 = 324
	// actionOnly: 80*1*0.8 = 64; dramaOnly: 100*1*0.7 = 70
	assert.Equal(t, both.ID, results[0].ID)
	assert.Equal(t, dramaOnly.ID, results[1].ID)
	assert.Equal(t, actionOnly.ID, results[2].ID)
}

func TestRecommendExcludesWatchedTitles(t *testing.T) {
	watched := testTitle(10, "Seen", genreAction)
	fresh := testTitle(11, "Fresh", genreAction)

	fake := &fakeCatalog{pages: map[int][]domain.Title{
		genreAction.ID: {watched, fresh},
	}}
	engine := NewEngine(fake, nil)

	prefs := []GenrePreference{{GenreID: genreAction.ID, Weight: 80}}
	results := engine.Recommend(context.Background(), prefs, []domain.Title{watched}, 10)

	require.Len(t, results, 1)
	assert.Equal(t, fresh.ID, results[0].ID)
}

func TestRecommendHonorsLimit(t *testing.T) {
	page := make([]domain.Title, 0, 8)
	for i := range 8 {
		page = append(page, testTitle(100+i, "T", genreAction))
	}
	fake := &fakeCatalog{pages: map[int][]domain.Title{genreAction.ID: page}}
	engine := NewEngine(fake, nil)

	prefs := []GenrePreference{{GenreID: genreAction.ID, Weight: 80}}
	results := engine.Recommend(context.Background(), prefs, nil, 3)
	assert.Len(t, results, 3)
}

func TestRecommendUsesOnlyTopThreeGenres(t *testing.T) {
	fake := &fakeCatalog{pages: map[int][]domain.Title{
		1: {testTitle(10, "A", domain.Genre{ID: 1})},
		2: {testTitle(11, "B", domain.Genre{ID: 2})},
		3: {testTitle(12, "C", domain.Genre{ID: 3})},
		4: {testTitle(13, "D", domain.Genre{ID: 4})},
	}}
	engine := NewEngine(fake, nil)

	prefs := []GenrePreference{
		{GenreID: 1, Weight: 90},
		{GenreID: 2, Weight: 80},
		{GenreID: 3, Weight: 70},
		{GenreID: 4, Weight: 60},
	}
	results := engine.Recommend(context.Background(), prefs, nil, 10)

	assert.Equal(t, 3, fake.listCalls)
	for _, r := range results {
		assert.NotEqual(t, 13, r.ID, "fourth genre must not contribute candidates")
	}
}

func TestRecommendSkipsFailedGenreFetch(t *testing.T) {
	fake := &fakeCatalog{
		pages:   map[int][]domain.Title{genreDrama.ID: {testTitle(11, "B", genreDrama)}},
		listErr: map[int]error{genreAction.ID: errors.Transient("catalog down")},
	}
	engine := NewEngine(fake, nil)

	prefs := []GenrePreference{
		{GenreID: genreAction.ID, Weight: 90},
		{GenreID: genreDrama.ID, Weight: 80},
	}
	results := engine.Recommend(context.Background(), prefs, nil, 10)

	require.Len(t, results, 1)
	assert.Equal(t, 11, results[0].ID)
}

func TestRecommendEmptyOnTotalFailure(t *testing.T) {
	fake := &fakeCatalog{listErr: map[int]error{
		genreAction.ID: errors.Transient("catalog down"),
	}}
	engine := NewEngine(fake, nil)

	prefs := []GenrePreference{{GenreID: genreAction.ID, Weight: 90}}
	results := engine.Recommend(context.Background(), prefs, nil, 10)
	assert.Empty(t, results)
}

func TestRecommendDropsUnresolvableCandidates(t *testing.T) {
	a := testTitle(10, "A", genreAction)
	b := testTitle(11, "B", genreAction)
	fake := &fakeCatalog{
		pages:     map[int][]domain.Title{genreAction.ID: {a, b}},
		detailErr: map[int]error{a.ID: errors.NotFound("gone")},
	}
	engine := NewEngine(fake, nil)

	prefs := []GenrePreference{{GenreID: genreAction.ID, Weight: 80}}
	results := engine.Recommend(context.Background(), prefs, nil, 10)

	require.Len(t, results, 1)
	assert.Equal(t, b.ID, results[0].ID)
}

func TestRecommendMoreExcludesSeenIDs(t *testing.T) {
	a := testTitle(10, "A", genreAction)
	b := testTitle(11, "B", genreAction)
	fake := &fakeCatalog{pages: map[int][]domain.Title{genreAction.ID: {a, b}}}
	engine := NewEngine(fake, nil)

	prefs := []GenrePreference{{GenreID: genreAction.ID, Weight: 80}}
	results := engine.RecommendMore(context.Background(), prefs, nil, []int{a.ID}, 10)

	require.Len(t, results, 1)
	assert.Equal(t, b.ID, results[0].ID)
}

func TestRecommendNoPreferences(t *testing.T) {
	fake := &fakeCatalog{}
	engine := NewEngine(fake, nil)

	assert.Empty(t, engine.Recommend(context.Background(), nil, nil, 10))
	assert.Zero(t, fake.listCalls)
}
