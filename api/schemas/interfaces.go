// File: api/schemas/interfaces.go
package schemas

import (
	"context"
	"time"
)

// Page is the browser-automation capability the publishing core drives.
// The production implementation wraps a chromedp tab; tests substitute a
// scripted double.
type Page interface {
	// Configure applies user agent, viewport, script execution and the
	// anti-automation overrides. Must be called before any navigation.
	Configure(ctx context.Context, opts PageOptions) error

	// Navigate loads the URL and waits for the document to become ready.
	Navigate(ctx context.Context, url string) error

	// URL returns the page's current location.
	URL(ctx context.Context) (string, error)

	// Click waits for the selector to be visible and clicks it.
	Click(ctx context.Context, selector string) error

	// Type waits for the selector to be visible and sends the text to it.
	Type(ctx context.Context, selector, text string) error

	// WaitVisible blocks until the selector is rendered and visible.
	WaitVisible(ctx context.Context, selector string) error

	// WaitEnabled blocks until the selector is visible and not disabled.
	WaitEnabled(ctx context.Context, selector string) error

	// ClickAndNavigate clicks the selector and waits for the navigation the
	// click triggers. The navigation wait is armed before the click is
	// issued, so a fast redirect cannot be missed. It never returns before
	// the navigation has settled or the operation failed.
	ClickAndNavigate(ctx context.Context, selector string) error

	// Upload submits all file paths to the file input in one operation.
	Upload(ctx context.Context, selector string, paths []string) error

	// Evaluate runs the script in the page and unmarshals its result into
	// res (res may be nil when no result is expected).
	Evaluate(ctx context.Context, script string, res any) error

	// WaitForNavigation blocks until the next navigation settles.
	WaitForNavigation(ctx context.Context) error

	// SetViewport overrides the emulated page dimensions.
	SetViewport(ctx context.Context, width, height int64) error

	// Screenshot captures a full-page PNG of the current view.
	Screenshot(ctx context.Context) ([]byte, error)

	// Close releases the underlying tab. Idempotent; safe on every exit path.
	Close(ctx context.Context) error
}

// Browser creates pages. The production implementation is the chromedp
// manager, which owns the browser process and caps concurrent sessions.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
}

// Publisher runs one end-to-end publish session. Failures inside the run are
// normalized into the result, never returned as an error.
type Publisher interface {
	Run(ctx context.Context, creds Credentials, ad AdData) PublicationResult
}

// DefaultPageOptions is the deployment profile the original site tolerates.
var DefaultPageOptions = PageOptions{
	UserAgent:         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	Viewport:          Viewport{Width: 1800, Height: 900},
	JavaScriptEnabled: true,
	SlowMo:            30 * time.Millisecond,
}
