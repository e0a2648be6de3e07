// File: internal/browser/context_utils_test.go
package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey string

func TestCombineContextCancelsWithSecondary(t *testing.T) {
	primary := context.WithValue(context.Background(), ctxKey("target"), "tab-1")
	secondary, cancelSecondary := context.WithCancel(context.Background())

	combined, cancel := CombineContext(primary, secondary)
	defer cancel()

	// Values flow from the primary context only.
	assert.Equal(t, "tab-1", combined.Value(ctxKey("target")))
	require.NoError(t, combined.Err())

	cancelSecondary()
	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context not canceled after secondary cancellation")
	}
}

func TestCombineContextCancelsWithPrimary(t *testing.T) {
	primary, cancelPrimary := context.WithCancel(context.Background())
	combined, cancel := CombineContext(primary, context.Background())
	defer cancel()

	cancelPrimary()
	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context not canceled after primary cancellation")
	}
}

func TestDetachIgnoresCancellation(t *testing.T) {
	parent, cancel := context.WithTimeout(
		context.WithValue(context.Background(), ctxKey("target"), "tab-1"),
		time.Millisecond,
	)
	cancel()

	detached := Detach(parent)
	assert.NoError(t, detached.Err(), "detached context must outlive the parent's cancellation")
	assert.Nil(t, detached.Done())
	_, hasDeadline := detached.Deadline()
	assert.False(t, hasDeadline)
	assert.Equal(t, "tab-1", detached.Value(ctxKey("target")), "values must survive detachment")
}
