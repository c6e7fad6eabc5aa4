package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/anilogapp/anilog-server/internal/domain"
	"github.com/anilogapp/anilog-server/internal/recommend"
)

const defaultRecommendationLimit = 10

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations",
		Summary:     "Get recommendations",
		Description: "Returns ranked recommendations from the user's top genres, memoized until the underlying state changes",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMoreRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/more",
		Summary:     "Get more recommendations",
		Description: "Returns a fresh batch excluding titles already shown to the user",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetMoreRecommendations)
}

// === DTOs ===

// RecommendationsInput contains parameters for the recommendation list.
type RecommendationsInput struct {
	Limit int `query:"limit" default:"10" minimum:"1" maximum:"25" doc:"Maximum number of recommendations"`
}

// MoreRecommendationsInput adds the already-shown title ids to exclude.
type MoreRecommendationsInput struct {
	Limit int   `query:"limit" default:"10" minimum:"1" maximum:"25" doc:"Maximum number of recommendations"`
	Seen  []int `query:"seen" doc:"Title IDs already shown, excluded from the result"`
}

// RecommendationsResponse contains the ranked recommendation list.
type RecommendationsResponse struct {
	Recommendations []domain.Title `json:"recommendations" doc:"Recommended titles, strongest match first"`
}

// RecommendationsOutput wraps the recommendations response for Huma.
type RecommendationsOutput struct {
	Body RecommendationsResponse
}

// === Handlers ===

func (s *Server) handleGetRecommendations(ctx context.Context, input *RecommendationsInput) (*RecommendationsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	store, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	snapshot := store.Snapshot()
	results := s.cacheFor(userID).GetOrCompute(ctx, snapshot.Watchlist, snapshot.WatchedList, snapshot.Ratings, limit)
	if results == nil {
		results = []domain.Title{}
	}
	return &RecommendationsOutput{Body: RecommendationsResponse{Recommendations: results}}, nil
}

func (s *Server) handleGetMoreRecommendations(ctx context.Context, input *MoreRecommendationsInput) (*RecommendationsOutput, error) {
	store, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	snapshot := store.Snapshot()
	prefs := recommend.Analyze(snapshot.Ratings, snapshot.WatchedList)
	results := s.engine.RecommendMore(ctx, prefs, snapshot.WatchedList, input.Seen, limit)
	if results == nil {
		results = []domain.Title{}
	}
	return &RecommendationsOutput{Body: RecommendationsResponse{Recommendations: results}}, nil
}
