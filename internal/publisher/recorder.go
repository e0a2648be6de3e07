// File: internal/publisher/recorder.go
package publisher

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/rodsoto/seminuevos-publisher/api/schemas"
)

var stepNameSanitizer = regexp.MustCompile(`\s+`)

// normalizeStepName converts a human-readable checkpoint name into the token
// used in filenames: lowercase with whitespace runs collapsed to underscores.
func normalizeStepName(step string) string {
	return stepNameSanitizer.ReplaceAllString(strings.ToLower(strings.TrimSpace(step)), "_")
}

// screenshotter is the capture capability the recorder needs from a page.
type screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Recorder owns the session's screenshot audit trail. Indices are 1-based
// and gap-free: a record is only appended once the capture succeeded.
// Persisting to disk is best-effort; a write failure never fails the step
// that requested the capture.
type Recorder struct {
	logger    *zap.Logger
	sessionID string
	dir       string

	mu      sync.Mutex
	dirMade bool
	records []schemas.ScreenshotRecord
}

// NewRecorder creates a recorder for one session. The directory is created
// lazily on the first persisted capture.
func NewRecorder(sessionID, dir string, logger *zap.Logger) *Recorder {
	return &Recorder{
		logger:    logger.Named("recorder").With(zap.String("session_id", sessionID)),
		sessionID: sessionID,
		dir:       dir,
	}
}

// Capture takes a full-page screenshot at the named checkpoint, appends it
// to the in-memory trail and persists it to disk. Only the capture itself
// can fail the call; disk faults are logged and swallowed.
func (r *Recorder) Capture(ctx context.Context, page screenshotter, step string) error {
	img, err := page.Screenshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to capture screenshot at step %q: %w", step, err)
	}

	r.append(img, step)
	return nil
}

// CaptureBestEffort is Capture for failure paths: nothing it does can
// surface an error to the caller.
func (r *Recorder) CaptureBestEffort(ctx context.Context, page screenshotter, step string) {
	if err := r.Capture(ctx, page, step); err != nil {
		r.logger.Warn("Best-effort screenshot failed.", zap.String("step", step), zap.Error(err))
	}
}

func (r *Recorder) append(img []byte, step string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := len(r.records) + 1
	name := normalizeStepName(step)
	r.records = append(r.records, schemas.ScreenshotRecord{
		Index:    index,
		StepName: name,
		Image:    base64.StdEncoding.EncodeToString(img),
	})

	r.persistLocked(index, name, img)
}

// persistLocked writes the PNG next to the rest of the session's trail.
// Called with r.mu held so the lazy mkdir happens exactly once.
func (r *Recorder) persistLocked(index int, name string, img []byte) {
	if r.dir == "" {
		return
	}
	if !r.dirMade {
		if err := os.MkdirAll(r.dir, 0o755); err != nil {
			r.logger.Warn("Failed to create screenshot directory.", zap.String("dir", r.dir), zap.Error(err))
			return
		}
		r.dirMade = true
	}

	filename := fmt.Sprintf("%s_%03d_%s.png", r.sessionID, index, name)
	path := filepath.Join(r.dir, filename)
	if err := os.WriteFile(path, img, 0o644); err != nil {
		r.logger.Warn("Failed to persist screenshot.", zap.String("path", path), zap.Error(err))
		return
	}
	r.logger.Debug("Screenshot persisted.", zap.String("path", path), zap.Int("index", index))
}

// Records returns a copy of the trail accumulated so far, in capture order.
func (r *Recorder) Records() []schemas.ScreenshotRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]schemas.ScreenshotRecord, len(r.records))
	copy(out, r.records)
	return out
}
