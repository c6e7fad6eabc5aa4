// Package recommend implements the preference-inference and
// recommendation-ranking pipeline: genre-weight analysis over ratings and
// watch history, candidate scoring against the catalog, and single-slot
// memoization of the result.
package recommend

import (
	"sort"

	"github.com/anilogapp/anilog-server/internal/domain"
)

// baselineScore is credited to every genre of every watched title, rated or
// not, so watched genres always carry nonzero weight.
const baselineScore = 60

// GenrePreference is a derived strength-of-preference score for one genre.
// Never persisted; recomputed whenever ratings or the watched list change.
type GenrePreference struct {
	GenreID int     `json:"genre_id"`
	Name    string  `json:"name"`
	Weight  float64 `json:"weight"`
}

// Analyze derives genre preferences from ratings and watch history.
//
// Each rating whose title is in watched contributes its total criterion
// score (0-120) to every genre on that title; ratings for titles outside
// the watched set are ignored. Every watched title additionally contributes
// the baseline 60 per genre. The weight is the running mean per genre.
//
// The result is sorted descending by weight. Ties keep first-touch input
// order: the genre encountered earlier in (ratings, then watched) ranks
// first. Pure and deterministic; no data yields nil.
func Analyze(ratings []domain.Rating, watched []domain.Title) []GenrePreference {
	type accumulator struct {
		total float64
		count int
		name  string
	}

	scores := make(map[int]*accumulator)
	var order []int

	accumulate := func(g domain.Genre, points float64) {
		acc, ok := scores[g.ID]
		if !ok {
			acc = &accumulator{name: g.Name}
			scores[g.ID] = acc
			order = append(order, g.ID)
		}
		acc.total += points
		acc.count++
	}

	watchedByID := make(map[int]domain.Title, len(watched))
	for _, t := range watched {
		watchedByID[t.ID] = t
	}

	for _, rating := range ratings {
		title, ok := watchedByID[rating.TitleID]
		if !ok {
			continue
		}
		total := float64(rating.TotalScore())
		for _, g := range title.Genres {
			accumulate(g, total)
		}
	}

	for _, title := range watched {
		for _, g := range title.Genres {
			accumulate(g, baselineScore)
		}
	}

	if len(order) == 0 {
		return nil
	}

	prefs := make([]GenrePreference, 0, len(order))
	for _, genreID := range order {
		acc := scores[genreID]
		prefs = append(prefs, GenrePreference{
			GenreID: genreID,
			Name:    acc.name,
			Weight:  acc.total / float64(acc.count),
		})
	}

	sort.SliceStable(prefs, func(i, j int) bool {
		return prefs[i].Weight > prefs[j].Weight
	})
	return prefs
}
