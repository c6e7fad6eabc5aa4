package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/anilogapp/anilog-server/internal/config"
	"github.com/anilogapp/anilog-server/internal/logger"
	"github.com/anilogapp/anilog-server/internal/remote"
	"github.com/anilogapp/anilog-server/internal/sse"
	"github.com/anilogapp/anilog-server/internal/state"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	h.Manager.Shutdown()
	return nil
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// RemoteStoreHandle wraps the user-state document store with shutdown capability.
type RemoteStoreHandle struct {
	*remote.DocStore
}

// Shutdown implements do.Shutdownable.
func (h *RemoteStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideRemoteStore provides the badger-backed user-state document store.
func ProvideRemoteStore(i do.Injector) (*RemoteStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	store, err := remote.Open(cfg.Remote.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("User-state store opened", "path", cfg.Remote.Path)

	return &RemoteStoreHandle{DocStore: store}, nil
}

// SessionsHandle wraps the session registry with shutdown capability.
type SessionsHandle struct {
	*state.Sessions
}

// Shutdown implements do.Shutdownable.
func (h *SessionsHandle) Shutdown() error {
	h.CloseAll()
	return nil
}

// ProvideSessions provides the per-user state session registry, wired to
// forward change events onto the SSE stream.
func ProvideSessions(i do.Injector) (*SessionsHandle, error) {
	remoteHandle := do.MustInvoke[*RemoteStoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	sessions := state.NewSessions(
		remoteHandle.DocStore,
		sseHandle.Manager,
		func(userID string, ev state.Event) any {
			return sse.FromStateEvent(userID, ev)
		},
		log.Logger,
	)

	return &SessionsHandle{Sessions: sessions}, nil
}
