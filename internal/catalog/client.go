// Package catalog implements the third-party title catalog client (Jikan v4
// compatible API): genre listings, search, and detail fetches with internal
// rate limiting and transient-failure retries.
package catalog

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/anilogapp/anilog-server/internal/domain"
	"github.com/anilogapp/anilog-server/internal/errors"
	"github.com/anilogapp/anilog-server/internal/retry"
)

const (
	defaultBaseURL  = "https://api.jikan.moe/v4"
	defaultPageSize = 12
	defaultTimeout  = 30 * time.Second

	// Jikan allows roughly 1 request per second sustained.
	defaultRPS   = 1.0
	defaultBurst = 3

	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = time.Second
)

// Config parameterizes the catalog client.
type Config struct {
	BaseURL        string
	PageSize       int
	RPS            float64
	Burst          int
	RetryAttempts  int
	RetryBaseDelay time.Duration
}

// Client is a rate-limited, retrying catalog API client.
type Client struct {
	http     *http.Client
	limiter  *rate.Limiter
	policy   retry.Policy
	baseURL  string
	pageSize int
	logger   *slog.Logger
}

// New creates a new catalog client. Zero-valued config fields fall back to
// package defaults.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.RPS <= 0 {
		cfg.RPS = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaultRetryBaseDelay
	}

	return &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		policy: retry.Policy{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       retry.Linear(cfg.RetryBaseDelay),
			ShouldRetry: func(err error) bool {
				return errors.Is(err, errors.ErrTransient)
			},
		},
		baseURL:  cfg.BaseURL,
		pageSize: cfg.PageSize,
		logger:   logger,
	}
}

// ListByGenre fetches one page of titles, optionally restricted to a genre,
// in the given sort order. A nil genreID lists across all genres.
func (c *Client) ListByGenre(ctx context.Context, genreID *int, sort Sort, page int) ([]domain.Title, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(c.pageSize))
	if genreID != nil {
		query.Set("genres", strconv.Itoa(*genreID))
	}

	switch sort {
	case SortRating:
		query.Set("order_by", "score")
		query.Set("sort", "desc")
		query.Set("min_scoring_users", "1000")
	case SortAiring:
		query.Set("status", "airing")
		query.Set("order_by", "score")
		query.Set("sort", "desc")
	case SortNewest:
		query.Set("order_by", "start_date")
		query.Set("sort", "desc")
	default:
		query.Set("order_by", "members")
		query.Set("sort", "desc")
	}

	var resp rawListResponse
	if err := c.getJSON(ctx, "/anime", query, &resp); err != nil {
		return nil, err
	}
	return mapTitles(resp.Data), nil
}

// Search fetches one page of titles matching the query string.
func (c *Client) Search(ctx context.Context, q string, page int) ([]domain.Title, error) {
	query := url.Values{}
	query.Set("q", q)
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(c.pageSize))

	var resp rawListResponse
	if err := c.getJSON(ctx, "/anime", query, &resp); err != nil {
		return nil, err
	}
	return mapTitles(resp.Data), nil
}

// GetDetail fetches the full record for a title, including the Japanese
// voice cast (capped at six entries). A missing voice-cast response is not
// fatal: the detail is returned without it.
func (c *Client) GetDetail(ctx context.Context, titleID int) (*domain.DetailedTitle, error) {
	var full rawDetailResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/anime/%d/full", titleID), nil, &full); err != nil {
		return nil, err
	}

	detail := &domain.DetailedTitle{
		Title:       full.Data.toTitle(),
		Synopsis:    full.Data.Synopsis,
		ContentNote: full.Data.Rating,
		Status:      full.Data.Status,
		Episodes:    full.Data.Episodes,
		Duration:    full.Data.Duration,
		Aired: domain.AiredWindow{
			From: full.Data.Aired.From,
			To:   full.Data.Aired.To,
		},
	}
	if detail.Synopsis == "" {
		detail.Synopsis = full.Data.Background
	}

	var characters rawCharactersResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/anime/%d/characters", titleID), nil, &characters); err != nil {
		c.logger.Warn("voice cast fetch failed",
			"title_id", titleID,
			"error", err,
		)
	} else {
		detail.VoiceActors = toVoiceActors(characters.Data)
	}

	return detail, nil
}

// getJSON performs a retried, rate-limited GET and decodes the response body.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	return c.policy.Do(ctx, func(ctx context.Context) error {
		body, err := c.doRequest(ctx, path, query)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("decode catalog response: %w", err)
		}
		return nil
	})
}

// doRequest executes a single HTTP request with rate limiting.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "AniLog/1.0")

	c.logger.Debug("catalog request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(err, errors.CodeTransient, "execute request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTransient, "read response")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, errors.Internalf("unexpected catalog status %d", resp.StatusCode)
	}
}

func mapTitles(raw []rawAnime) []domain.Title {
	titles := make([]domain.Title, 0, len(raw))
	for _, a := range raw {
		titles = append(titles, a.toTitle())
	}
	return titles
}
