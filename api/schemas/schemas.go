// File: api/schemas/schemas.go
package schemas

import "time"

// PublicationStatus is the terminal outcome of one publish session.
type PublicationStatus string

const (
	StatusPublished PublicationStatus = "published"
	StatusError     PublicationStatus = "error"
)

// Credentials authenticate one session against the classifieds site.
// Supplied once per run, never persisted, never logged.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdData is the immutable input to the listing submission machine.
// Price and Description are caller-supplied; the remaining fields are
// fixed deployment configuration.
type AdData struct {
	Type        string   `json:"type"`
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	Subtype     string   `json:"subtype"`
	Year        string   `json:"year"`
	Province    string   `json:"province"`
	City        string   `json:"city"`
	Mileage     string   `json:"mileage"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	PhotoPaths  []string `json:"photoPaths"`
}

// Viewport is the emulated page size in CSS pixels.
type Viewport struct {
	Width  int64 `json:"width"`
	Height int64 `json:"height"`
}

// PageOptions tune a freshly created page before any navigation occurs.
type PageOptions struct {
	UserAgent         string        `json:"userAgent"`
	Viewport          Viewport      `json:"viewport"`
	JavaScriptEnabled bool          `json:"javaScriptEnabled"`
	SlowMo            time.Duration `json:"slowMo"`
}

// ScreenshotRecord is one entry of the append-only audit trail. Indices are
// 1-based, monotonically increasing and gap-free within a session.
type ScreenshotRecord struct {
	Index    int    `json:"screenshotIndex"`
	StepName string `json:"stepName"`
	// Image is the full-page PNG, base64-encoded for transport.
	Image string `json:"image"`
}

// PublicationResult is the sole value crossing the core's outward boundary.
// It is constructed exactly once per session, by either the success path or
// the session controller's error handler.
type PublicationResult struct {
	Status         PublicationStatus  `json:"status"`
	PublicationID  string             `json:"publicationId,omitempty"`
	PublicationURL string             `json:"publicationUrl,omitempty"`
	Screenshots    []ScreenshotRecord `json:"screenshots"`
	SessionID      string             `json:"sessionId"`
}
