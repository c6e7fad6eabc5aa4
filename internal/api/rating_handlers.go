package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/anilogapp/anilog-server/internal/domain"
)

func (s *Server) registerRatingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRatingCriteria",
		Method:      http.MethodGet,
		Path:        "/api/v1/ratings/criteria",
		Summary:     "List rating criteria",
		Description: "Returns the fixed rating criteria and the score tier bands",
		Tags:        []string{"Ratings"},
	}, s.handleListRatingCriteria)
}

// === DTOs ===

// TierBandResponse describes one score tier band.
type TierBandResponse struct {
	MinScore int    `json:"min_score" doc:"Lowest total score in this band"`
	Label    string `json:"label" doc:"Tier label"`
	Color    string `json:"color" doc:"Tier display color"`
}

// RatingCriteriaResponse contains the criteria catalog.
type RatingCriteriaResponse struct {
	Criteria []domain.Criterion `json:"criteria" doc:"Rating criteria in display order"`
	MaxTotal int                `json:"max_total" doc:"Maximum possible total score"`
	Tiers    []TierBandResponse `json:"tiers" doc:"Score tier bands, highest first"`
}

// RatingCriteriaOutput wraps the criteria response for Huma.
type RatingCriteriaOutput struct {
	Body RatingCriteriaResponse
}

// === Handlers ===

func (s *Server) handleListRatingCriteria(_ context.Context, _ *struct{}) (*RatingCriteriaOutput, error) {
	tiers := make([]TierBandResponse, 0, len(domain.TierBands()))
	for _, band := range domain.TierBands() {
		tiers = append(tiers, TierBandResponse{
			MinScore: band.MinScore,
			Label:    band.Tier.Label,
			Color:    band.Tier.Color,
		})
	}

	return &RatingCriteriaOutput{
		Body: RatingCriteriaResponse{
			Criteria: domain.Criteria,
			MaxTotal: domain.MaxTotalScore,
			Tiers:    tiers,
		},
	}, nil
}
