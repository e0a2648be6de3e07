// File: internal/browser/page.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/rodsoto/seminuevos-publisher/api/schemas"
	"github.com/rodsoto/seminuevos-publisher/internal/browser/stealth"
	"github.com/rodsoto/seminuevos-publisher/internal/config"
)

const fullScreenshotQuality = 90

// Page wraps one chromedp tab and implements schemas.Page. All operations
// honor both the tab lifetime and the caller's deadline, and every
// individual step is bounded by the configured step timeout.
type Page struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	logger *zap.Logger

	slowMo  time.Duration
	onClose func()

	mu       sync.Mutex
	isClosed bool
}

var _ schemas.Page = (*Page)(nil)

func newPage(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, logger *zap.Logger) *Page {
	return &Page{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		logger: logger.Named("page"),
	}
}

// runActions executes chromedp actions respecting both the tab context and
// the incoming operation context.
func (p *Page) runActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(p.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// stepCtx bounds one interaction step so a hung wait cannot strand the
// session.
func (p *Page) stepCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := p.cfg.Site.StepTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// pace applies the optional per-action delay. Slowing the automation down
// gives the site's own scripts time to settle between interactions.
func (p *Page) pace() chromedp.Action {
	if p.slowMo <= 0 {
		return chromedp.ActionFunc(func(context.Context) error { return nil })
	}
	return chromedp.Sleep(p.slowMo)
}

// Configure applies the emulation profile and the anti-detection overrides.
// Must run before the first navigation so the new-document script covers
// every page of the session.
func (p *Page) Configure(ctx context.Context, opts schemas.PageOptions) error {
	p.slowMo = opts.SlowMo

	persona := stealth.DefaultPersona
	if opts.UserAgent != "" {
		persona.UserAgent = opts.UserAgent
	}

	tasks := chromedp.Tasks{stealth.Apply(persona, p.logger)}

	if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
		tasks = append(tasks, chromedp.EmulateViewport(opts.Viewport.Width, opts.Viewport.Height))
	}
	if !opts.JavaScriptEnabled {
		tasks = append(tasks, emulation.SetScriptExecutionDisabled(true))
	}

	if err := p.runActions(ctx, tasks); err != nil {
		return fmt.Errorf("failed to configure page: %w", err)
	}
	return nil
}

// Navigate loads the URL and waits for the document to become ready.
func (p *Page) Navigate(ctx context.Context, url string) error {
	p.logger.Debug("Navigating to URL", zap.String("url", url))

	navTimeout := p.cfg.Browser.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 90 * time.Second
	}
	navCtx, cancel := context.WithTimeout(ctx, navTimeout)
	defer cancel()

	err := p.runActions(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		p.pace(),
	)
	if err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("navigation to %s timed out after %s: %w", url, navTimeout, navCtx.Err())
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// URL returns the page's current location.
func (p *Page) URL(ctx context.Context) (string, error) {
	var loc string
	stepCtx, cancel := p.stepCtx(ctx)
	defer cancel()
	if err := p.runActions(stepCtx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("failed to read page location: %w", err)
	}
	return loc, nil
}

// Click waits for the selector to be visible and clicks it.
func (p *Page) Click(ctx context.Context, selector string) error {
	p.logger.Debug("Clicking element", zap.String("selector", selector))

	stepCtx, cancel := p.stepCtx(ctx)
	defer cancel()

	err := p.runActions(stepCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
		p.pace(),
	)
	if err != nil {
		return fmt.Errorf("click failed for selector %q: %w", selector, err)
	}
	return nil
}

// Type waits for the selector to be visible and sends the text to it.
func (p *Page) Type(ctx context.Context, selector, text string) error {
	p.logger.Debug("Typing into element", zap.String("selector", selector), zap.Int("text_length", len(text)))

	stepCtx, cancel := p.stepCtx(ctx)
	defer cancel()

	err := p.runActions(stepCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
		p.pace(),
	)
	if err != nil {
		return fmt.Errorf("type failed for selector %q: %w", selector, err)
	}
	return nil
}

// WaitVisible blocks until the selector is rendered and visible.
func (p *Page) WaitVisible(ctx context.Context, selector string) error {
	stepCtx, cancel := p.stepCtx(ctx)
	defer cancel()
	if err := p.runActions(stepCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("element %q never became visible: %w", selector, err)
	}
	return nil
}

// WaitEnabled blocks until the selector is visible and not disabled.
func (p *Page) WaitEnabled(ctx context.Context, selector string) error {
	stepCtx, cancel := p.stepCtx(ctx)
	defer cancel()
	err := p.runActions(stepCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.WaitEnabled(selector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("element %q never became enabled: %w", selector, err)
	}
	return nil
}

// ClickAndNavigate clicks the selector and waits for the navigation it
// triggers. The load-event listener is armed before the click is issued, so
// the operation cannot miss a navigation that completes faster than a
// subsequent wait could be registered.
func (p *Page) ClickAndNavigate(ctx context.Context, selector string) error {
	p.logger.Debug("Clicking element and awaiting navigation", zap.String("selector", selector))

	navTimeout := p.cfg.Browser.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 90 * time.Second
	}
	opCtx, cancelOp := CombineContext(p.ctx, ctx)
	defer cancelOp()
	opCtx, cancelTimeout := context.WithTimeout(opCtx, navTimeout)
	defer cancelTimeout()

	loaded := p.armNavigationListener(opCtx)

	err := chromedp.Run(opCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("click failed for selector %q: %w", selector, err)
	}

	select {
	case <-loaded:
	case <-opCtx.Done():
		return fmt.Errorf("navigation after clicking %q did not settle: %w", selector, opCtx.Err())
	}

	if err := chromedp.Run(opCtx, chromedp.WaitReady("body", chromedp.ByQuery), p.pace()); err != nil {
		return fmt.Errorf("page not ready after clicking %q: %w", selector, err)
	}
	return nil
}

// WaitForNavigation blocks until the next navigation settles, for redirects
// that happen without a triggering interaction.
func (p *Page) WaitForNavigation(ctx context.Context) error {
	navTimeout := p.cfg.Browser.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 90 * time.Second
	}
	opCtx, cancelOp := CombineContext(p.ctx, ctx)
	defer cancelOp()
	opCtx, cancelTimeout := context.WithTimeout(opCtx, navTimeout)
	defer cancelTimeout()

	loaded := p.armNavigationListener(opCtx)

	select {
	case <-loaded:
	case <-opCtx.Done():
		return fmt.Errorf("navigation did not settle: %w", opCtx.Err())
	}

	if err := chromedp.Run(opCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("page not ready after navigation: %w", err)
	}
	return nil
}

// armNavigationListener subscribes to load events on the tab. The returned
// channel receives once the next load event fires; the listener dies with
// ctx.
func (p *Page) armNavigationListener(ctx context.Context) <-chan struct{} {
	loaded := make(chan struct{}, 1)
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if _, ok := ev.(*cdppage.EventLoadEventFired); ok {
			select {
			case loaded <- struct{}{}:
			default:
			}
		}
	})
	return loaded
}

// Upload submits all file paths to the file input in one operation.
func (p *Page) Upload(ctx context.Context, selector string, paths []string) error {
	p.logger.Debug("Uploading files", zap.String("selector", selector), zap.Int("count", len(paths)))

	stepCtx, cancel := p.stepCtx(ctx)
	defer cancel()

	err := p.runActions(stepCtx,
		chromedp.SetUploadFiles(selector, paths, chromedp.ByQuery),
		p.pace(),
	)
	if err != nil {
		return fmt.Errorf("upload failed for selector %q: %w", selector, err)
	}
	return nil
}

// Evaluate runs the script in the page, unmarshaling its result into res.
func (p *Page) Evaluate(ctx context.Context, script string, res any) error {
	stepCtx, cancel := p.stepCtx(ctx)
	defer cancel()
	if err := p.runActions(stepCtx, chromedp.Evaluate(script, res)); err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	return nil
}

// SetViewport overrides the emulated page dimensions.
func (p *Page) SetViewport(ctx context.Context, width, height int64) error {
	stepCtx, cancel := p.stepCtx(ctx)
	defer cancel()
	if err := p.runActions(stepCtx, chromedp.EmulateViewport(width, height)); err != nil {
		return fmt.Errorf("failed to set viewport: %w", err)
	}
	return nil
}

// Screenshot captures a full-page PNG of the current view.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	stepCtx, cancel := p.stepCtx(ctx)
	defer cancel()
	if err := p.runActions(stepCtx, chromedp.FullScreenshot(&buf, fullScreenshotQuality)); err != nil {
		return nil, fmt.Errorf("screenshot capture failed: %w", err)
	}
	return buf, nil
}

// Close releases the tab and its session slot. Idempotent.
func (p *Page) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.isClosed {
		p.mu.Unlock()
		return nil
	}
	p.isClosed = true
	p.mu.Unlock()

	p.logger.Debug("Closing page.")

	if p.cancel != nil {
		p.cancel()
	}
	if p.onClose != nil {
		p.onClose()
	}
	return nil
}
