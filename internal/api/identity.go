package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// userIDKey is the context key for the authenticated user ID.
const userIDKey ctxKey = "userID"

// UserIDHeader carries the identity asserted by the fronting provider.
const UserIDHeader = "X-User-ID"

// GetUserID returns the authenticated user ID from context.
// Returns 401 error if the identity header was absent.
func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", huma.Error401Unauthorized("Authentication required")
	}
	return userID, nil
}

// setUserID stores the user ID in context.
func setUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// identityMiddleware reads the identity header installed by the fronting
// identity provider and stores the user ID in context. Requests without
// the header continue unauthenticated; handlers use GetUserID to reject
// where identity is required.
func identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(setUserID(r.Context(), userID)))
	})
}
