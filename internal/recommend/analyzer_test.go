package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anilogapp/anilog-server/internal/domain"
)

var (
	genreAction  = domain.Genre{ID: 1, Name: "Action"}
	genreDrama   = domain.Genre{ID: 8, Name: "Drama"}
	genreComedy  = domain.Genre{ID: 4, Name: "Comedy"}
	genreRomance = domain.Genre{ID: 22, Name: "Romance"}
)

func testTitle(id int, name string, genres ...domain.Genre) domain.Title {
	return domain.Title{ID: id, Title: name, Score: 8.0, Genres: genres}
}

func testRating(titleID, total int) domain.Rating {
	return domain.Rating{TitleID: titleID, Scores: map[string]int{"overall": total}}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	assert.Empty(t, Analyze(nil, nil))
	assert.Empty(t, Analyze([]domain.Rating{}, []domain.Title{}))
}

func TestAnalyzeBaselineOnly(t *testing.T) {
	watched := []domain.Title{
		testTitle(1, "A", genreAction),
		testTitle(2, "B", genreAction, genreDrama),
	}

	prefs := Analyze(nil, watched)
	require.Len(t, prefs, 2)

	// Every watched title contributes the 60-point baseline per genre, so
	// with no ratings every genre's mean sits at exactly 60.
	for _, p := range prefs {
		assert.InDelta(t, 60.0, p.Weight, 1e-9)
	}
}

func TestAnalyzeRatedTitleMeansWithBaseline(t *testing.T) {
	watched := []domain.Title{testTitle(1, "A", genreAction)}
	ratings := []domain.Rating{testRating(1, 90)}

	prefs := Analyze(ratings, watched)
	require.Len(t, prefs, 1)

	// Rating 90 plus baseline 60 over two contributions: (90+60)/2 = 75.
	assert.Equal(t, genreAction.ID, prefs[0].GenreID)
	assert.Equal(t, genreAction.Name, prefs[0].Name)
	assert.InDelta(t, 75.0, prefs[0].Weight, 1e-9)
}

func TestAnalyzeIgnoresRatingsOutsideWatched(t *testing.T) {
	watched := []domain.Title{testTitle(1, "A", genreAction)}
	ratings := []domain.Rating{
		testRating(1, 90),
		testRating(99, 120), // not watched, must not count
	}

	prefs := Analyze(ratings, watched)
	require.Len(t, prefs, 1)
	assert.InDelta(t, 75.0, prefs[0].Weight, 1e-9)
}

func TestAnalyzeSortsDescendingByWeight(t *testing.T) {
	watched := []domain.Title{
		testTitle(1, "A", genreAction),
		testTitle(2, "B", genreDrama),
		testTitle(3, "C", genreComedy),
	}
	ratings := []domain.Rating{
		testRating(2, 110),
		testRating(3, 40),
	}

	prefs := Analyze(ratings, watched)
	require.Len(t, prefs, 3)

	assert.Equal(t, genreDrama.ID, prefs[0].GenreID) // (110+60)/2 = 85
	assert.Equal(t, genreAction.ID, prefs[1].GenreID) // 60
	assert.Equal(t, genreComedy.ID, prefs[2].GenreID) // (40+60)/2 = 50

	for i := 1; i < len(prefs); i++ {
		assert.GreaterOrEqual(t, prefs[i-1].Weight, prefs[i].Weight)
	}
}

func TestAnalyzeTieBreakKeepsFirstTouchOrder(t *testing.T) {
	// Both genres end up at the baseline mean; the one encountered first in
	// the input ranks first.
	watched := []domain.Title{
		testTitle(1, "A", genreRomance),
		testTitle(2, "B", genreComedy),
	}

	prefs := Analyze(nil, watched)
	require.Len(t, prefs, 2)
	assert.Equal(t, genreRomance.ID, prefs[0].GenreID)
	assert.Equal(t, genreComedy.ID, prefs[1].GenreID)
}

func TestAnalyzeIsPureAndDeterministic(t *testing.T) {
	watched := []domain.Title{
		testTitle(1, "A", genreAction, genreDrama),
		testTitle(2, "B", genreDrama),
	}
	ratings := []domain.Rating{testRating(1, 84)}

	first := Analyze(ratings, watched)
	second := Analyze(ratings, watched)
	assert.Equal(t, first, second)

	// Inputs unchanged.
	assert.Equal(t, 84, ratings[0].TotalScore())
	assert.Len(t, watched[0].Genres, 2)
}
