// File: internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/rodsoto/seminuevos-publisher/api/schemas"
	"github.com/rodsoto/seminuevos-publisher/internal/config"
	"github.com/rodsoto/seminuevos-publisher/internal/observability"
)

const launchProbeTimeout = 30 * time.Second

// Manager owns the headless browser process. Every publish session runs in
// its own tab derived from the manager's allocator context; the semaphore
// caps how many sessions hold a tab at once.
type Manager struct {
	logger *zap.Logger
	cfg    *config.Config

	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc

	sessions *semaphore.Weighted
	// wg tracks open pages for a graceful shutdown.
	wg sync.WaitGroup
}

var _ schemas.Browser = (*Manager)(nil)

// NewManager launches the browser process and verifies it responds. A nil
// logger falls back to the global one.
func NewManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = observability.GetLogger()
	}
	m := &Manager{
		logger:   logger.Named("browser_manager"),
		cfg:      cfg,
		sessions: semaphore.NewWeighted(cfg.Browser.MaxSessions),
	}
	if err := m.launchBrowser(ctx); err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return m, nil
}

// launchBrowser prepares allocator options and starts the browser process.
func (m *Manager) launchBrowser(ctx context.Context) error {
	m.logger.Info("Initializing browser allocator...")

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, m.buildAllocatorOptions()...)
	m.allocatorCtx = allocCtx
	m.allocatorCancel = cancel

	// Probe with a throwaway tab to confirm the browser is alive before any
	// session depends on it.
	probeCtx, cancelProbe := context.WithTimeout(allocCtx, launchProbeTimeout)
	probeCtx, cancelProbeTab := chromedp.NewContext(probeCtx)
	defer cancelProbeTab()
	defer cancelProbe()

	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		m.allocatorCancel()
		return fmt.Errorf("browser failed to start or respond: %w", err)
	}

	m.logger.Info("Browser launched successfully and is responsive.")
	return nil
}

// buildAllocatorOptions assembles the flags for a stealthy, configurable
// browser instance.
func (m *Manager) buildAllocatorOptions() []chromedp.ExecAllocatorOption {
	// Start from the defaults, dropping the flag that reveals automation.
	// A boolean false overrides the default and keeps the flag off the
	// command line entirely.
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	opts = append(opts,
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("headless", m.cfg.Browser.Headless),
		chromedp.Flag("disable-gpu", m.cfg.Browser.Headless),
		// Disable the Blink feature that sets navigator.webdriver.
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.UserAgent(m.cfg.Page.UserAgent),
	)

	for _, arg := range m.cfg.Browser.Args {
		name, value, found := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if found {
			opts = append(opts, chromedp.Flag(name, value))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	// Containers on Linux need the sandbox and shm workarounds.
	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-setuid-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
	}

	return opts
}

// NewPage acquires a session slot and opens a fresh tab. The returned page's
// Close releases both; it is safe to call on every exit path.
func (m *Manager) NewPage(ctx context.Context) (schemas.Page, error) {
	if err := m.sessions.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire session slot: %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(m.allocatorCtx)

	// Materialize the tab now so acquisition failures surface here, not in
	// the middle of a session.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		m.sessions.Release(1)
		return nil, fmt.Errorf("failed to open browser tab: %w", err)
	}

	m.wg.Add(1)
	p := newPage(tabCtx, tabCancel, m.cfg, m.logger)
	p.onClose = func() {
		m.sessions.Release(1)
		m.wg.Done()
	}
	return p, nil
}

// Shutdown waits for open pages to close and terminates the browser process.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Browser manager shutdown initiated. Waiting for active sessions...")

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("All sessions have completed.")
	case <-ctx.Done():
		m.logger.Warn("Shutdown deadline exceeded. Forcing browser termination.", zap.Error(ctx.Err()))
	}

	if m.allocatorCancel != nil {
		m.allocatorCancel()
		<-m.allocatorCtx.Done()
	}
	return nil
}
