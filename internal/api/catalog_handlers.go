package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/anilogapp/anilog-server/internal/catalog"
	"github.com/anilogapp/anilog-server/internal/domain"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "browseCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog",
		Summary:     "Browse catalog",
		Description: "Returns a page of titles, optionally filtered by genre and ordered by sort mode",
		Tags:        []string{"Catalog"},
	}, s.handleBrowseCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/search",
		Summary:     "Search catalog",
		Description: "Returns a page of titles matching the query string",
		Tags:        []string{"Catalog"},
	}, s.handleSearchCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTitle",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/{id}",
		Summary:     "Get title detail",
		Description: "Returns the full record for a title, including the voice cast",
		Tags:        []string{"Catalog"},
	}, s.handleGetTitle)
}

// === DTOs ===

// BrowseCatalogInput contains parameters for browsing the catalog.
type BrowseCatalogInput struct {
	Genre *int   `query:"genre" doc:"Genre ID to filter by"`
	Sort  string `query:"sort" enum:"popularity,rating,airing,newest" default:"popularity" doc:"Sort mode"`
	Page  int    `query:"page" default:"1" minimum:"1" doc:"Page number"`
}

// TitleListResponse contains a page of catalog titles.
type TitleListResponse struct {
	Titles []domain.Title `json:"titles" doc:"Titles on this page"`
	Page   int            `json:"page" doc:"Page number"`
}

// TitleListOutput wraps a title list response for Huma.
type TitleListOutput struct {
	Body TitleListResponse
}

// SearchCatalogInput contains parameters for searching the catalog.
type SearchCatalogInput struct {
	Query string `query:"q" minLength:"1" doc:"Search query"`
	Page  int    `query:"page" default:"1" minimum:"1" doc:"Page number"`
}

// GetTitleInput contains parameters for a title detail fetch.
type GetTitleInput struct {
	ID int `path:"id" doc:"Title ID"`
}

// TitleDetailOutput wraps a detailed title response for Huma.
type TitleDetailOutput struct {
	Body domain.DetailedTitle
}

// === Handlers ===

func (s *Server) handleBrowseCatalog(ctx context.Context, input *BrowseCatalogInput) (*TitleListOutput, error) {
	titles, err := s.catalog.ListByGenre(ctx, input.Genre, catalog.ParseSort(input.Sort), input.Page)
	if err != nil {
		return nil, err
	}
	if titles == nil {
		titles = []domain.Title{}
	}
	return &TitleListOutput{Body: TitleListResponse{Titles: titles, Page: input.Page}}, nil
}

func (s *Server) handleSearchCatalog(ctx context.Context, input *SearchCatalogInput) (*TitleListOutput, error) {
	titles, err := s.catalog.Search(ctx, input.Query, input.Page)
	if err != nil {
		return nil, err
	}
	if titles == nil {
		titles = []domain.Title{}
	}
	return &TitleListOutput{Body: TitleListResponse{Titles: titles, Page: input.Page}}, nil
}

func (s *Server) handleGetTitle(ctx context.Context, input *GetTitleInput) (*TitleDetailOutput, error) {
	detail, err := s.catalog.GetDetail(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TitleDetailOutput{Body: *detail}, nil
}
