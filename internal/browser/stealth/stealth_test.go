// File: internal/browser/stealth/stealth_test.go
package stealth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestAcceptLanguage(t *testing.T) {
	assert.Equal(t, "es-MX", acceptLanguage([]string{"es-MX"}))
	assert.Equal(t, "es-MX,es;q=0.9,en;q=0.8", acceptLanguage([]string{"es-MX", "es", "en"}))
	// Quality values never drop below the floor.
	got := acceptLanguage([]string{"a", "b", "c", "d", "e", "f"})
	assert.True(t, strings.HasSuffix(got, "f;q=0.7"), got)
}

func TestEvasionsScriptEmbedded(t *testing.T) {
	assert.Contains(t, evasionsScript, "webdriver")
	assert.Contains(t, evasionsScript, "permissions.query")
}

func TestApplyBuildsTasks(t *testing.T) {
	tasks := Apply(DefaultPersona, zaptest.NewLogger(t))
	// UA override, script injection and the language header.
	assert.Len(t, tasks, 3)

	noLangs := Apply(Persona{UserAgent: "ua", Platform: "MacIntel"}, zaptest.NewLogger(t))
	assert.Len(t, noLangs, 2)
}
