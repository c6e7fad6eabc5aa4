// Package api provides the HTTP API server and handlers for the AniLog
// personalization engine.
package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/anilogapp/anilog-server/internal/catalog"
	"github.com/anilogapp/anilog-server/internal/recommend"
	"github.com/anilogapp/anilog-server/internal/remote"
	"github.com/anilogapp/anilog-server/internal/sse"
	"github.com/anilogapp/anilog-server/internal/state"
	"github.com/anilogapp/anilog-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	sessions   *state.Sessions
	catalog    *catalog.Client
	engine     *recommend.Engine
	remote     remote.Client
	validator  *validation.Validator
	sseHandler *sse.Handler
	sseManager *sse.Manager
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger

	// One recommendation cache slot per user, created lazily.
	cacheMu sync.Mutex
	caches  map[string]*recommend.Cache
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(sessions *state.Sessions, catalogClient *catalog.Client, engine *recommend.Engine, remoteClient remote.Client, sseHandler *sse.Handler, sseManager *sse.Manager, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", UserIDHeader},
	}))
	router.Use(identityMiddleware)

	humaConfig := huma.DefaultConfig("AniLog API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"identity": {
			Type: "apiKey",
			In:   "header",
			Name: UserIDHeader,
		},
	}

	s := &Server{
		sessions:   sessions,
		catalog:    catalogClient,
		engine:     engine,
		remote:     remoteClient,
		validator:  validation.New(),
		sseHandler: sseHandler,
		sseManager: sseManager,
		router:     router,
		api:        humachi.New(router, humaConfig),
		logger:     logger,
		caches:     make(map[string]*recommend.Cache),
	}

	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerCatalogRoutes()
	s.registerRatingRoutes()
	s.registerStateRoutes()
	s.registerRecommendationRoutes()

	// SSE sits outside the OpenAPI surface; streamed straight from chi.
	router.Get("/api/v1/events", s.sseHandler.ServeHTTP)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// cacheFor returns the user's recommendation cache, creating it on first
// use. The cache keys on input fingerprints, so mutations never need to
// invalidate it explicitly.
func (s *Server) cacheFor(userID string) *recommend.Cache {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	c, ok := s.caches[userID]
	if !ok {
		c = recommend.NewCache(s.engine)
		s.caches[userID] = c
	}
	return c
}

// dropCache discards the user's recommendation cache at sign-out.
func (s *Server) dropCache(userID string) {
	s.cacheMu.Lock()
	delete(s.caches, userID)
	s.cacheMu.Unlock()
}

// MessageResponse is a simple message payload.
type MessageResponse struct {
	Message string `json:"message" doc:"Result message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}
