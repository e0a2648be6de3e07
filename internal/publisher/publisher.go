// File: internal/publisher/publisher.go

// Package publisher drives one publication session end to end: login,
// wizard form, photo uploads, and publication-id extraction, with a
// screenshot checkpoint at every milestone.
package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rodsoto/seminuevos-publisher/api/schemas"
	"github.com/rodsoto/seminuevos-publisher/internal/browser"
	"github.com/rodsoto/seminuevos-publisher/internal/config"
	"github.com/rodsoto/seminuevos-publisher/internal/observability"
)

// The site floats an edit modal over the final page; it intercepts clicks
// and ruins the closing screenshots, so it gets hidden before capture.
const dismissOverlayScript = `(() => {
	const div = document.querySelector('.full-edit.edit-modal.transition-opacity');
	if (div) {
		div.classList.add('hide');
		return true;
	}
	return false;
})()`

const sessionTimeLayout = "20060102T150405"

// Service runs publish sessions against a shared browser. It implements
// schemas.Publisher.
type Service struct {
	cfg     *config.Config
	logger  *zap.Logger
	browser schemas.Browser
}

var _ schemas.Publisher = (*Service)(nil)

// NewService wires the session controller to its browser and configuration.
// A nil logger falls back to the global one.
func NewService(cfg *config.Config, b schemas.Browser, logger *zap.Logger) *Service {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &Service{
		cfg:     cfg,
		logger:  logger.Named("publisher"),
		browser: b,
	}
}

// newSessionID derives a sortable, collision-free session identifier.
func newSessionID() string {
	return fmt.Sprintf("%s_%s", time.Now().UTC().Format(sessionTimeLayout), uuid.NewString()[:8])
}

// Run executes one full publication session. It never returns an error:
// every failure is folded into an error-status result carrying the
// screenshot trail accumulated up to the point of failure.
func (s *Service) Run(ctx context.Context, creds schemas.Credentials, ad schemas.AdData) schemas.PublicationResult {
	sessionID := newSessionID()
	logger := s.logger.With(zap.String("session_id", sessionID))
	logger.Info("Publication session starting.")

	recorder := NewRecorder(sessionID, s.cfg.Screenshots.Dir, logger)

	page, err := s.browser.NewPage(ctx)
	if err != nil {
		logger.Error("Failed to acquire a browser page.", zap.Error(err))
		return s.errorResult(sessionID, recorder)
	}
	// Cleanup must run even when the request context is already canceled.
	defer page.Close(browser.Detach(ctx))

	result := s.runSession(ctx, logger, recorder, page, creds, ad, sessionID)
	logger.Info("Publication session finished.",
		zap.String("status", string(result.Status)),
		zap.Int("screenshots", len(result.Screenshots)),
	)
	return result
}

// runSession is the fallible body of Run. A panic anywhere in the flow is
// converted into an error result so the session slot is always released.
func (s *Service) runSession(
	ctx context.Context,
	logger *zap.Logger,
	recorder *Recorder,
	page schemas.Page,
	creds schemas.Credentials,
	ad schemas.AdData,
	sessionID string,
) (result schemas.PublicationResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Publication session panicked.", zap.Any("panic", r), zap.Stack("stack"))
			s.captureFailure(ctx, recorder, page, "session panic")
			result = s.errorResult(sessionID, recorder)
		}
	}()

	if err := page.Configure(ctx, s.cfg.Page.PageOptions()); err != nil {
		logger.Error("Failed to configure page.", zap.Error(err))
		s.captureFailure(ctx, recorder, page, "configuring page")
		return s.errorResult(sessionID, recorder)
	}

	auth := newAuthenticator(s.cfg, recorder, logger)
	if err := auth.login(ctx, page, creds); err != nil {
		logger.Error("Login flow failed.", zap.Error(err))
		s.captureFailure(ctx, recorder, page, "during login")
		return s.errorResult(sessionID, recorder)
	}

	form := newListingForm(s.cfg, recorder, logger)
	if err := form.fill(ctx, page, ad); err != nil {
		logger.Error("Listing form failed.", zap.Error(err))
		s.captureFailure(ctx, recorder, page, "filling ad form")
		return s.errorResult(sessionID, recorder)
	}

	id, url, err := s.finishPublication(ctx, recorder, page)
	if err != nil {
		logger.Error("Publication could not be confirmed.", zap.Error(err))
		s.captureFailure(ctx, recorder, page, "publishing ad")
		return s.errorResult(sessionID, recorder)
	}

	logger.Info("Publication confirmed.", zap.String("publication_id", id), zap.String("publication_url", url))
	return schemas.PublicationResult{
		Status:         schemas.StatusPublished,
		PublicationID:  id,
		PublicationURL: url,
		Screenshots:    recorder.Records(),
		SessionID:      sessionID,
	}
}

// finishPublication dismisses the site's trailing overlay, records the
// closing checkpoints and extracts the publication identity from the URL.
func (s *Service) finishPublication(ctx context.Context, recorder *Recorder, page schemas.Page) (id, url string, err error) {
	// Overlay dismissal is cosmetic; its failure is not the session's.
	var dismissed bool
	if err := page.Evaluate(ctx, dismissOverlayScript, &dismissed); err != nil {
		s.logger.Warn("Failed to dismiss edit overlay.", zap.Error(err))
	}

	recorder.CaptureBestEffort(ctx, page, "clicked publish")
	recorder.CaptureBestEffort(ctx, page, "post publish navigation")

	finalURL, err := page.URL(ctx)
	if err != nil {
		return "", "", err
	}
	id, url, err = extractPublication(finalURL)
	if err != nil {
		return "", "", fmt.Errorf("final url %s: %w", finalURL, err)
	}

	recorder.CaptureBestEffort(ctx, page, "final page")
	return id, url, nil
}

// captureFailure records the page state at the moment of failure. It is
// isolated from the session outcome: nothing here can fail the session
// further or mask the original error.
func (s *Service) captureFailure(ctx context.Context, recorder *Recorder, page schemas.Page, msg string) {
	recorder.CaptureBestEffort(browser.Detach(ctx), page, "error "+msg)
}

func (s *Service) errorResult(sessionID string, recorder *Recorder) schemas.PublicationResult {
	return schemas.PublicationResult{
		Status:      schemas.StatusError,
		Screenshots: recorder.Records(),
		SessionID:   sessionID,
	}
}
