package recommend

import (
	"context"
	"log/slog"
	"sort"

	"github.com/anilogapp/anilog-server/internal/catalog"
	"github.com/anilogapp/anilog-server/internal/domain"
)

// topGenreCount bounds how many leading preferences drive candidate fetches.
const topGenreCount = 3

// Catalog is the slice of the catalog client the engine needs.
type Catalog interface {
	ListByGenre(ctx context.Context, genreID *int, sort catalog.Sort, page int) ([]domain.Title, error)
	GetDetail(ctx context.Context, titleID int) (*domain.DetailedTitle, error)
}

// Engine ranks unseen catalog titles against a user's genre preferences.
// Stateless: incremental "more" calls pass previously returned ids back in.
type Engine struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewEngine creates a recommendation engine over the given catalog.
func NewEngine(c Catalog, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{catalog: c, logger: logger}
}

// Recommend returns up to limit unseen titles ranked by preference fit.
//
// One popularity page is fetched per top genre. A genre fetch failure
// forfeits that genre's candidates without failing the others; when every
// fetch fails the result is simply empty, never an error - the caller
// renders it as "no recommendations".
func (e *Engine) Recommend(ctx context.Context, prefs []GenrePreference, watched []domain.Title, limit int) []domain.Title {
	return e.recommend(ctx, prefs, watched, nil, limit)
}

// RecommendMore behaves like Recommend but also excludes ids already
// returned earlier in the session. The caller accumulates those; the engine
// keeps no memory between calls.
func (e *Engine) RecommendMore(ctx context.Context, prefs []GenrePreference, watched []domain.Title, seenIDs []int, limit int) []domain.Title {
	return e.recommend(ctx, prefs, watched, seenIDs, limit)
}

func (e *Engine) recommend(ctx context.Context, prefs []GenrePreference, watched []domain.Title, seenIDs []int, limit int) []domain.Title {
	if limit <= 0 || len(prefs) == 0 {
		return nil
	}

	top := prefs
	if len(top) > topGenreCount {
		top = top[:topGenreCount]
	}
	topIDs := make(map[int]bool, len(top))
	for _, p := range top {
		topIDs[p.GenreID] = true
	}

	excluded := make(map[int]bool, len(watched)+len(seenIDs))
	for _, t := range watched {
		excluded[t.ID] = true
	}
	for _, id := range seenIDs {
		excluded[id] = true
	}

	// Additive scoring: a candidate surfacing under several top genres
	// collects a contribution from each fetch.
	scores := make(map[int]float64)
	var order []int

	for _, pref := range top {
		genreID := pref.GenreID
		page, err := e.catalog.ListByGenre(ctx, &genreID, catalog.SortPopularity, 1)
		if err != nil {
			e.logger.Warn("genre fetch failed, skipping its candidates",
				"genre_id", genreID,
				"error", err,
			)
			continue
		}

		for _, title := range page {
			if excluded[title.ID] {
				continue
			}

			matches := 0
			for _, g := range title.Genres {
				if topIDs[g.ID] {
					matches++
				}
			}

			if _, ok := scores[title.ID]; !ok {
				order = append(order, title.ID)
			}
			scores[title.ID] += pref.Weight * float64(matches) * (title.Score / 10)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}

	// Resolve scored ids to full records with a by-id detail fetch. An id
	// that fails to resolve is dropped; one missing title never fails the
	// whole result.
	results := make([]domain.Title, 0, len(order))
	for _, titleID := range order {
		detail, err := e.catalog.GetDetail(ctx, titleID)
		if err != nil {
			e.logger.Warn("dropping unresolvable recommendation",
				"title_id", titleID,
				"error", err,
			)
			continue
		}
		results = append(results, detail.Title)
	}
	return results
}
