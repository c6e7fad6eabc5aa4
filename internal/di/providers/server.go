package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/anilogapp/anilog-server/internal/api"
	"github.com/anilogapp/anilog-server/internal/catalog"
	"github.com/anilogapp/anilog-server/internal/config"
	"github.com/anilogapp/anilog-server/internal/logger"
	"github.com/anilogapp/anilog-server/internal/recommend"
	"github.com/anilogapp/anilog-server/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sessionsHandle := do.MustInvoke[*SessionsHandle](i)
	remoteHandle := do.MustInvoke[*RemoteStoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	catalogClient := do.MustInvoke[*catalog.Client](i)
	engine := do.MustInvoke[*recommend.Engine](i)

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger)
	handler := api.NewServer(sessionsHandle.Sessions, catalogClient, engine, remoteHandle.DocStore, sseHandler, sseHandle.Manager, log.Logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
