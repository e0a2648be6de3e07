// File: internal/browser/stealth/stealth.go
package stealth

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

//go:embed evasions.js
var evasionsScript string

// Persona defines the browser characteristics to emulate so automation
// signatures appear as a normal browser.
type Persona struct {
	UserAgent string
	Platform  string
	Languages []string
}

// DefaultPersona matches the deployment profile the target site tolerates.
var DefaultPersona = Persona{
	UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	Platform:  "MacIntel",
	Languages: []string{"es-MX", "es", "en"},
}

// Apply constructs the CDP actions that make the headless browser appear
// like a standard, user-operated one. Must run before the first navigation
// so the new-document script covers every page of the session.
func Apply(p Persona, logger *zap.Logger) chromedp.Tasks {
	l := logger.Named("stealth")
	l.Debug("Applying browser stealth persona", zap.String("platform", p.Platform))

	tasks := chromedp.Tasks{
		emulation.SetUserAgentOverride(p.UserAgent).WithPlatform(p.Platform),

		// The evasions script overrides navigator.webdriver and friends on
		// every new document. AddScriptToEvaluateOnNewDocument returns two
		// values, so it needs the ActionFunc wrapper.
		chromedp.ActionFunc(func(ctx context.Context) error {
			if _, err := page.AddScriptToEvaluateOnNewDocument(evasionsScript).Do(ctx); err != nil {
				return fmt.Errorf("stealth: failed to inject evasions script: %w", err)
			}
			return nil
		}),
	}

	if len(p.Languages) > 0 {
		tasks = append(tasks, network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": acceptLanguage(p.Languages),
		}))
	}
	return tasks
}

func acceptLanguage(languages []string) string {
	var b strings.Builder
	b.WriteString(languages[0])
	for i := 1; i < len(languages); i++ {
		q := 1.0 - float64(i)*0.1
		if q < 0.7 {
			q = 0.7
		}
		fmt.Fprintf(&b, ",%s;q=%.1f", languages[i], q)
	}
	return b.String()
}
