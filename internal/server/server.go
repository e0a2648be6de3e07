// File: internal/server/server.go

// Package server exposes the publish operation over HTTP. The surface is
// deliberately small: one publish endpoint and a health probe.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rodsoto/seminuevos-publisher/api/schemas"
	"github.com/rodsoto/seminuevos-publisher/internal/config"
	"github.com/rodsoto/seminuevos-publisher/internal/observability"
)

// Server is the HTTP boundary around the publisher.
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	publisher schemas.Publisher
	httpSrv   *http.Server
}

// NewServer assembles the router, middleware chain and listener settings.
// A nil logger falls back to the global one.
func NewServer(cfg *config.Config, publisher schemas.Publisher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = observability.GetLogger()
	}
	s := &Server{
		cfg:       cfg,
		logger:    logger.Named("server"),
		publisher: publisher,
	}

	r := mux.NewRouter()
	r.Use(s.recoveryMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.corsMiddleware)

	// Each publish run owns a browser session for minutes; the limiter keeps
	// a burst of requests from queueing past what the machine can serve.
	publishLimiter := rate.NewLimiter(rate.Limit(cfg.Server.PublishRate), cfg.Server.PublishBurst)

	r.Handle("/api/publish-ad",
		s.rateLimitMiddleware(publishLimiter, http.HandlerFunc(s.handlePublishAd)),
	).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		// Publish runs are long; the write timeout must outlast a full session.
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Start blocks serving requests until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening.", zap.String("addr", s.cfg.Server.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down.")
	return s.httpSrv.Shutdown(ctx)
}
