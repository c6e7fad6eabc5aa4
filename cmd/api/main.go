// Package main provides the entry point for the AniLog server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/anilogapp/anilog-server/internal/di"
	"github.com/anilogapp/anilog-server/internal/di/providers"
	"github.com/anilogapp/anilog-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// The document store uses a wrapper handle; close it explicitly last so
	// in-flight write-throughs land before the database files are released.
	if remoteHandle, err := do.Invoke[*providers.RemoteStoreHandle](injector); err == nil {
		log.Info("Closing user-state store...")
		if err := remoteHandle.Shutdown(); err != nil {
			log.Error("Failed to close user-state store", "error", err)
		}
	}

	log.Info("Goodbye")
}
