// File: internal/publisher/auth.go
package publisher

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rodsoto/seminuevos-publisher/api/schemas"
	"github.com/rodsoto/seminuevos-publisher/internal/config"
)

// Login form selectors on the admin site.
const (
	selectorLoginEmail    = "#email"
	selectorLoginPassword = "#password"
	selectorLoginSubmit   = `button[type="submit"]`
)

// authenticator drives the login flow: admin sign-in, redirect handling,
// then a hop to the public home page where the wizard lives.
type authenticator struct {
	cfg      *config.Config
	logger   *zap.Logger
	recorder *Recorder
}

func newAuthenticator(cfg *config.Config, recorder *Recorder, logger *zap.Logger) *authenticator {
	return &authenticator{
		cfg:      cfg,
		logger:   logger.Named("auth"),
		recorder: recorder,
	}
}

// login signs the session in and leaves the page on the public home page.
// Credential values never reach the logs.
func (a *authenticator) login(ctx context.Context, page schemas.Page, creds schemas.Credentials) error {
	a.logger.Info("Starting login flow.", zap.String("login_url", a.cfg.Site.LoginURL))

	if err := page.Navigate(ctx, a.cfg.Site.LoginURL); err != nil {
		return err
	}
	a.recorder.CaptureBestEffort(ctx, page, "goto login page")

	if err := page.WaitVisible(ctx, selectorLoginEmail); err != nil {
		return err
	}
	if err := page.Type(ctx, selectorLoginEmail, creds.Email); err != nil {
		return err
	}
	if err := page.Type(ctx, selectorLoginPassword, creds.Password); err != nil {
		return err
	}

	// Submission triggers a server-side redirect; the navigation wait is part
	// of the click so a fast redirect cannot slip past.
	if err := page.ClickAndNavigate(ctx, selectorLoginSubmit); err != nil {
		return err
	}
	a.recorder.CaptureBestEffort(ctx, page, "login successful")

	current, err := page.URL(ctx)
	if err != nil {
		return err
	}
	if urlMatches(current, a.cfg.Site.LoginURL) {
		// Rejected credentials bounce straight back to the form.
		return fmt.Errorf("login rejected: still on login page %s", current)
	}

	if urlMatches(current, a.cfg.Site.RedirectURL) {
		a.logger.Debug("On the redirect surface, awaiting the bounce.")
		if err := page.WaitForNavigation(ctx); err != nil {
			return err
		}
		a.recorder.CaptureBestEffort(ctx, page, "redirect home")

		if current, err = page.URL(ctx); err != nil {
			return err
		}
	}

	if !urlMatches(current, a.cfg.Site.HomeURL) {
		a.logger.Info("Login complete, moving to the public site.")
		if err := page.Navigate(ctx, a.cfg.Site.HomeURL); err != nil {
			return err
		}
		a.recorder.CaptureBestEffort(ctx, page, "goto home")

		if current, err = page.URL(ctx); err != nil {
			return err
		}
	}

	if !urlMatches(current, a.cfg.Site.HomeURL) {
		return fmt.Errorf("login flow did not reach the home page: stuck on %s", current)
	}
	return nil
}

// urlMatches compares locations ignoring a trailing slash and query noise.
func urlMatches(got, want string) bool {
	trim := func(s string) string {
		if i := strings.IndexAny(s, "?#"); i >= 0 {
			s = s[:i]
		}
		return strings.TrimSuffix(s, "/")
	}
	return trim(got) == trim(want)
}
