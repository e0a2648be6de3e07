// File: cmd/serve.go
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rodsoto/seminuevos-publisher/internal/browser"
	"github.com/rodsoto/seminuevos-publisher/internal/observability"
	"github.com/rodsoto/seminuevos-publisher/internal/publisher"
	"github.com/rodsoto/seminuevos-publisher/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server that accepts publish requests.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	logger := observability.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr, err := browser.NewManager(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("browser startup failed: %w", err)
	}

	svc := publisher.NewService(cfg, mgr, logger)
	srv := server.NewServer(cfg, svc, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		// The listener died on its own; still tear the browser down.
		shutdownBrowser(mgr, logger)
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown did not complete cleanly.", zap.Error(err))
	}
	shutdownBrowser(mgr, logger)
	return nil
}

func shutdownBrowser(mgr *browser.Manager, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := mgr.Shutdown(ctx); err != nil {
		logger.Warn("Browser shutdown did not complete cleanly.", zap.Error(err))
	}
}
