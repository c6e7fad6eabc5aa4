package catalog

import "github.com/anilogapp/anilog-server/internal/errors"

// Sentinel errors returned by the catalog client.
var (
	// ErrNotFound indicates the requested title does not exist in the catalog.
	ErrNotFound = errors.NotFound("title not found in catalog")
	// ErrRateLimited indicates the catalog API rejected the request for rate reasons.
	// Treated as transient: the retry policy backs off and tries again.
	ErrRateLimited = errors.Transient("catalog rate limited")
	// ErrServer indicates a catalog-side failure (5xx).
	ErrServer = errors.Transient("catalog server error")
)
