// File: internal/browser/context_utils.go
package browser

import (
	"context"
	"time"
)

// CombineContext derives a context from primary (which carries the CDP
// target values) that is canceled when either primary or secondary is
// canceled. chromedp operations must run on a context that preserves the
// target values, so the operational deadline cannot simply replace it.
func CombineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)

	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-combined.Done():
		}
	}()

	return combined, cancel
}

// valueOnlyContext inherits values (the CDP target information) from its
// parent but ignores the parent's deadline and cancellation.
type valueOnlyContext struct {
	context.Context
}

func (valueOnlyContext) Deadline() (deadline time.Time, ok bool) { return }
func (valueOnlyContext) Done() <-chan struct{}                   { return nil }
func (valueOnlyContext) Err() error                              { return nil }

// Detach returns a context usable for cleanup work that must outlive a
// canceled request context.
func Detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
