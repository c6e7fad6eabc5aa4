package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/anilogapp/anilog-server/internal/domain"
	"github.com/anilogapp/anilog-server/internal/recommend"
	"github.com/anilogapp/anilog-server/internal/state"
)

func (s *Server) registerStateRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMyState",
		Method:      http.MethodGet,
		Path:        "/api/v1/me",
		Summary:     "Get my state",
		Description: "Returns the current user's watchlist, watched list, ratings, and sync status",
		Tags:        []string{"State"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetMyState)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMyPreferences",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/preferences",
		Summary:     "Get my genre preferences",
		Description: "Returns the genre-weight distribution inferred from ratings and watch history",
		Tags:        []string{"State"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleGetMyPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "addToWatchlist",
		Method:      http.MethodPost,
		Path:        "/api/v1/me/watchlist",
		Summary:     "Add to watchlist",
		Description: "Adds a title to the watchlist; a duplicate add is a no-op",
		Tags:        []string{"State"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleAddToWatchlist)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFromWatchlist",
		Method:      http.MethodDelete,
		Path:        "/api/v1/me/watchlist/{id}",
		Summary:     "Remove from watchlist",
		Tags:        []string{"State"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleRemoveFromWatchlist)

	huma.Register(s.api, huma.Operation{
		OperationID: "addToWatched",
		Method:      http.MethodPost,
		Path:        "/api/v1/me/watched",
		Summary:     "Mark as watched",
		Description: "Marks a title watched and removes it from the watchlist in the same transition",
		Tags:        []string{"State"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleAddToWatched)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFromWatched",
		Method:      http.MethodDelete,
		Path:        "/api/v1/me/watched/{id}",
		Summary:     "Remove from watched list",
		Tags:        []string{"State"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleRemoveFromWatched)

	huma.Register(s.api, huma.Operation{
		OperationID: "submitRating",
		Method:      http.MethodPost,
		Path:        "/api/v1/me/ratings",
		Summary:     "Submit a rating",
		Description: "Records a multi-criteria rating, replacing any prior rating for the same title",
		Tags:        []string{"State"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleSubmitRating)

	huma.Register(s.api, huma.Operation{
		OperationID: "syncMyState",
		Method:      http.MethodPost,
		Path:        "/api/v1/me/sync",
		Summary:     "Resynchronize state",
		Description: "Performs an explicit full fetch from the remote store",
		Tags:        []string{"State"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleSyncMyState)

	huma.Register(s.api, huma.Operation{
		OperationID: "setConnectivity",
		Method:      http.MethodPut,
		Path:        "/api/v1/me/connectivity",
		Summary:     "Set connectivity",
		Description: "Flips the online flag; going offline marks state stale, coming back does not auto-resync",
		Tags:        []string{"State"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleSetConnectivity)

	huma.Register(s.api, huma.Operation{
		OperationID: "endSession",
		Method:      http.MethodDelete,
		Path:        "/api/v1/me/session",
		Summary:     "End session",
		Description: "Closes the user's state session and remote subscription",
		Tags:        []string{"State"},
		Security:    []map[string][]string{{"identity": {}}},
	}, s.handleEndSession)
}

// === DTOs ===

// RatingResponse is a rating with its derived total and tier.
type RatingResponse struct {
	TitleID   int            `json:"title_id" doc:"Rated title ID"`
	Scores    map[string]int `json:"scores" doc:"Score per criterion"`
	Comment   string         `json:"comment,omitempty" doc:"Free-form comment"`
	Total     int            `json:"total" doc:"Sum of criterion scores"`
	Tier      domain.Tier    `json:"tier" doc:"Score tier band"`
	CreatedAt time.Time      `json:"created_at" doc:"Submission time"`
}

// UserStateResponse contains the user's state and sync position.
type UserStateResponse struct {
	Watchlist    []domain.Title   `json:"watchlist" doc:"Titles queued to watch"`
	WatchedList  []domain.Title   `json:"watched_list" doc:"Titles already watched"`
	Ratings      []RatingResponse `json:"ratings" doc:"Submitted ratings"`
	SyncStatus   string           `json:"sync_status" doc:"Sync lifecycle position"`
	Online       bool             `json:"online" doc:"Connectivity flag"`
	LastSyncedAt *time.Time       `json:"last_synced_at,omitempty" doc:"When remote data last landed"`
	LastError    string           `json:"last_error,omitempty" doc:"Retained error from the last failed remote interaction"`
}

// UserStateOutput wraps the state response for Huma.
type UserStateOutput struct {
	Body UserStateResponse
}

// PreferencesResponse contains the inferred genre-weight distribution.
type PreferencesResponse struct {
	Preferences []recommend.GenrePreference `json:"preferences" doc:"Genre preferences, strongest first"`
}

// PreferencesOutput wraps the preferences response for Huma.
type PreferencesOutput struct {
	Body PreferencesResponse
}

// TitleInput wraps a title payload for watchlist and watched mutations.
type TitleInput struct {
	Body domain.Title
}

// TitleIDInput identifies a title in the path.
type TitleIDInput struct {
	ID int `path:"id" doc:"Title ID"`
}

// SubmitRatingRequest is the request body for submitting a rating.
type SubmitRatingRequest struct {
	TitleID int            `json:"title_id" validate:"required,gt=0" doc:"Rated title ID"`
	Scores  map[string]int `json:"scores" validate:"required" doc:"Score per criterion, 0-10 each"`
	Comment string         `json:"comment,omitempty" validate:"max=2000" doc:"Free-form comment"`
}

// SubmitRatingInput wraps the rating request for Huma.
type SubmitRatingInput struct {
	Body SubmitRatingRequest
}

// RatingOutput wraps a rating response for Huma.
type RatingOutput struct {
	Body RatingResponse
}

// SetConnectivityRequest is the request body for the connectivity flag.
type SetConnectivityRequest struct {
	Online bool `json:"online" doc:"Whether the session should write through to the remote store"`
}

// SetConnectivityInput wraps the connectivity request for Huma.
type SetConnectivityInput struct {
	Body SetConnectivityRequest
}

// === Handlers ===

func (s *Server) handleGetMyState(ctx context.Context, _ *struct{}) (*UserStateOutput, error) {
	store, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	return &UserStateOutput{Body: s.mapUserState(store)}, nil
}

func (s *Server) handleGetMyPreferences(ctx context.Context, _ *struct{}) (*PreferencesOutput, error) {
	store, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := store.Snapshot()
	prefs := recommend.Analyze(snapshot.Ratings, snapshot.WatchedList)
	if prefs == nil {
		prefs = []recommend.GenrePreference{}
	}
	return &PreferencesOutput{Body: PreferencesResponse{Preferences: prefs}}, nil
}

func (s *Server) handleAddToWatchlist(ctx context.Context, input *TitleInput) (*UserStateOutput, error) {
	if input.Body.ID <= 0 || input.Body.Title == "" {
		return nil, huma.Error422UnprocessableEntity("title requires an id and a name")
	}

	store, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.AddToWatchlist(ctx, input.Body); err != nil {
		return nil, err
	}
	return &UserStateOutput{Body: s.mapUserState(store)}, nil
}

func (s *Server) handleRemoveFromWatchlist(ctx context.Context, input *TitleIDInput) (*UserStateOutput, error) {
	store, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.RemoveFromWatchlist(ctx, input.ID); err != nil {
		return nil, err
	}
	return &UserStateOutput{Body: s.mapUserState(store)}, nil
}

func (s *Server) handleAddToWatched(ctx context.Context, input *TitleInput) (*UserStateOutput, error) {
	if input.Body.ID <= 0 || input.Body.Title == "" {
		return nil, huma.Error422UnprocessableEntity("title requires an id and a name")
	}

	store, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.AddToWatched(ctx, input.Body); err != nil {
		return nil, err
	}
	return &UserStateOutput{Body: s.mapUserState(store)}, nil
}

func (s *Server) handleRemoveFromWatched(ctx context.Context, input *TitleIDInput) (*UserStateOutput, error) {
	store, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.RemoveFromWatched(ctx, input.ID); err != nil {
		return nil, err
	}
	return &UserStateOutput{Body: s.mapUserState(store)}, nil
}

func (s *Server) handleSubmitRating(ctx context.Context, input *SubmitRatingInput) (*RatingOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateScores(input.Body.Scores); err != nil {
		return nil, err
	}

	store, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}

	rating := domain.Rating{
		TitleID: input.Body.TitleID,
		Scores:  input.Body.Scores,
		Comment: input.Body.Comment,
	}
	if err := store.AddRating(ctx, rating); err != nil {
		return nil, err
	}

	stored, ok := store.Rating(input.Body.TitleID)
	if !ok {
		stored = rating
	}
	return &RatingOutput{Body: mapRating(stored)}, nil
}

func (s *Server) handleSyncMyState(ctx context.Context, _ *struct{}) (*UserStateOutput, error) {
	store, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.Sync(ctx); err != nil {
		return nil, err
	}
	return &UserStateOutput{Body: s.mapUserState(store)}, nil
}

func (s *Server) handleSetConnectivity(ctx context.Context, input *SetConnectivityInput) (*UserStateOutput, error) {
	store, err := s.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	store.SetOnline(input.Body.Online)
	return &UserStateOutput{Body: s.mapUserState(store)}, nil
}

func (s *Server) handleEndSession(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	s.sessions.End(userID)
	s.dropCache(userID)
	return &MessageOutput{Body: MessageResponse{Message: "Session ended"}}, nil
}

// === Helpers ===

// sessionStore resolves the authenticated user's state store, starting a
// session on first use.
func (s *Server) sessionStore(ctx context.Context) (*state.Store, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(ctx, userID)
}

func (s *Server) mapUserState(store *state.Store) UserStateResponse {
	snapshot := store.Snapshot()

	ratings := make([]RatingResponse, len(snapshot.Ratings))
	for i, r := range snapshot.Ratings {
		ratings[i] = mapRating(r)
	}

	resp := UserStateResponse{
		Watchlist:    snapshot.Watchlist,
		WatchedList:  snapshot.WatchedList,
		Ratings:      ratings,
		SyncStatus:   string(store.Status()),
		Online:       store.IsOnline(),
		LastSyncedAt: store.LastSyncedAt(),
	}
	if resp.Watchlist == nil {
		resp.Watchlist = []domain.Title{}
	}
	if resp.WatchedList == nil {
		resp.WatchedList = []domain.Title{}
	}
	if err := store.Err(); err != nil {
		resp.LastError = err.Error()
	}
	return resp
}

func mapRating(r domain.Rating) RatingResponse {
	return RatingResponse{
		TitleID:   r.TitleID,
		Scores:    r.Scores,
		Comment:   r.Comment,
		Total:     r.TotalScore(),
		Tier:      r.Tier(),
		CreatedAt: r.CreatedAt,
	}
}
