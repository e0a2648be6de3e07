// File: internal/publisher/doubles_test.go
package publisher

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rodsoto/seminuevos-publisher/api/schemas"
)

// fakePage is a scriptable schemas.Page double. Every interaction is
// recorded so tests can assert on the exact sequence of driver calls.
type fakePage struct {
	mu    sync.Mutex
	calls []string
	typed map[string]string

	// urlQueue is consumed by URL(); the last entry repeats.
	urlQueue []string

	// failures maps a recorded call (e.g. "click:.next-button") to an error.
	failures map[string]error

	// evaluate overrides the default Evaluate behavior when set.
	evaluate func(script string, res any) error

	screenshotErr error
	closeCount    int
}

var _ schemas.Page = (*fakePage)(nil)

func newFakePage() *fakePage {
	return &fakePage{typed: make(map[string]string), failures: make(map[string]error)}
}

func (f *fakePage) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if err, ok := f.failures[call]; ok {
		return err
	}
	return nil
}

func (f *fakePage) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakePage) Configure(_ context.Context, _ schemas.PageOptions) error {
	return f.record("configure")
}

func (f *fakePage) Navigate(_ context.Context, url string) error {
	return f.record("navigate:" + url)
}

func (f *fakePage) URL(_ context.Context) (string, error) {
	if err := f.record("url"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.urlQueue) == 0 {
		return "", fmt.Errorf("fakePage: url queue empty")
	}
	u := f.urlQueue[0]
	if len(f.urlQueue) > 1 {
		f.urlQueue = f.urlQueue[1:]
	}
	return u, nil
}

func (f *fakePage) Click(_ context.Context, selector string) error {
	return f.record("click:" + selector)
}

func (f *fakePage) Type(_ context.Context, selector, text string) error {
	f.mu.Lock()
	f.typed[selector] = text
	f.mu.Unlock()
	return f.record("type:" + selector)
}

func (f *fakePage) WaitVisible(_ context.Context, selector string) error {
	return f.record("waitvisible:" + selector)
}

func (f *fakePage) WaitEnabled(_ context.Context, selector string) error {
	return f.record("waitenabled:" + selector)
}

func (f *fakePage) ClickAndNavigate(_ context.Context, selector string) error {
	return f.record("clicknav:" + selector)
}

func (f *fakePage) Upload(_ context.Context, selector string, paths []string) error {
	return f.record(fmt.Sprintf("upload:%s:%d", selector, len(paths)))
}

func (f *fakePage) Evaluate(_ context.Context, script string, res any) error {
	if err := f.record("evaluate"); err != nil {
		return err
	}
	if f.evaluate != nil {
		return f.evaluate(script, res)
	}
	// Defaults that let the happy path proceed: option lookups and overlay
	// dismissal succeed, upload polls report everything done.
	switch v := res.(type) {
	case *bool:
		*v = true
	case *int:
		*v = 1 << 10
	}
	return nil
}

func (f *fakePage) WaitForNavigation(_ context.Context) error {
	return f.record("waitnav")
}

func (f *fakePage) SetViewport(_ context.Context, width, height int64) error {
	return f.record(fmt.Sprintf("viewport:%dx%d", width, height))
}

func (f *fakePage) Screenshot(_ context.Context) ([]byte, error) {
	if err := f.record("screenshot"); err != nil {
		return nil, err
	}
	if f.screenshotErr != nil {
		return nil, f.screenshotErr
	}
	return []byte("png-bytes"), nil
}

func (f *fakePage) Close(_ context.Context) error {
	f.mu.Lock()
	f.closeCount++
	f.mu.Unlock()
	return nil
}

func (f *fakePage) calledWithPrefix(prefix string) int {
	n := 0
	for _, c := range f.callLog() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// fakeBrowser hands out a fixed page.
type fakeBrowser struct {
	page    schemas.Page
	pageErr error

	mu       sync.Mutex
	newPages int
}

var _ schemas.Browser = (*fakeBrowser)(nil)

func (b *fakeBrowser) NewPage(context.Context) (schemas.Page, error) {
	b.mu.Lock()
	b.newPages++
	b.mu.Unlock()
	if b.pageErr != nil {
		return nil, b.pageErr
	}
	return b.page, nil
}

// panicPage blows up mid-session to exercise the controller's recovery.
type panicPage struct {
	*fakePage
}

func (p *panicPage) ClickAndNavigate(context.Context, string) error {
	panic("selector engine exploded")
}
