// File: internal/publisher/auth_test.go
package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rodsoto/seminuevos-publisher/api/schemas"
	"github.com/rodsoto/seminuevos-publisher/internal/config"
)

func testCreds() schemas.Credentials {
	return schemas.Credentials{Email: "seller@example.com", Password: "hunter2"}
}

func TestAuthenticatorLoginHappyPath(t *testing.T) {
	cfg := config.NewDefaultConfig()
	page := newFakePage()
	// Redirect surface first, then the admin landing, then home.
	page.urlQueue = []string{
		cfg.Site.RedirectURL,
		"https://admin.seminuevos.com/dashboard",
		cfg.Site.HomeURL,
	}

	recorder := NewRecorder("sess", "", zaptest.NewLogger(t))
	auth := newAuthenticator(cfg, recorder, zaptest.NewLogger(t))

	require.NoError(t, auth.login(context.Background(), page, testCreds()))

	calls := page.callLog()
	assert.Contains(t, calls, "navigate:"+cfg.Site.LoginURL)
	assert.Contains(t, calls, "type:"+selectorLoginEmail)
	assert.Contains(t, calls, "type:"+selectorLoginPassword)
	assert.Contains(t, calls, "clicknav:"+selectorLoginSubmit)
	assert.Contains(t, calls, "waitnav", "the redirect bounce must be awaited")
	assert.Contains(t, calls, "navigate:"+cfg.Site.HomeURL)

	assert.Equal(t, "seller@example.com", page.typed[selectorLoginEmail])
	assert.Equal(t, "hunter2", page.typed[selectorLoginPassword])

	records := recorder.Records()
	require.Len(t, records, 4)
	assert.Equal(t, "goto_login_page", records[0].StepName)
	assert.Equal(t, "login_successful", records[1].StepName)
	assert.Equal(t, "redirect_home", records[2].StepName)
	assert.Equal(t, "goto_home", records[3].StepName)
}

func TestAuthenticatorLoginRejected(t *testing.T) {
	cfg := config.NewDefaultConfig()
	page := newFakePage()
	// The site bounced us back to the login form.
	page.urlQueue = []string{cfg.Site.LoginURL}

	recorder := NewRecorder("sess", "", zaptest.NewLogger(t))
	auth := newAuthenticator(cfg, recorder, zaptest.NewLogger(t))

	err := auth.login(context.Background(), page, testCreds())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login rejected")
	assert.Equal(t, 0, page.calledWithPrefix("navigate:"+cfg.Site.HomeURL),
		"a rejected login must not continue to the home page")
}

func TestAuthenticatorLoginSkipsHopWhenAlreadyHome(t *testing.T) {
	cfg := config.NewDefaultConfig()
	page := newFakePage()
	// No redirect surface this time; the submit lands straight on home.
	page.urlQueue = []string{cfg.Site.HomeURL}

	recorder := NewRecorder("sess", "", zaptest.NewLogger(t))
	auth := newAuthenticator(cfg, recorder, zaptest.NewLogger(t))

	require.NoError(t, auth.login(context.Background(), page, testCreds()))
	assert.Equal(t, 0, page.calledWithPrefix("waitnav"))
	assert.Equal(t, 0, page.calledWithPrefix("navigate:"+cfg.Site.HomeURL))

	records := recorder.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "goto_login_page", records[0].StepName)
	assert.Equal(t, "login_successful", records[1].StepName)
}

func TestAuthenticatorLoginStrandedOffHome(t *testing.T) {
	cfg := config.NewDefaultConfig()
	page := newFakePage()
	// Whatever the site does, it never reaches the public home page.
	page.urlQueue = []string{"https://admin.seminuevos.com/maintenance"}

	recorder := NewRecorder("sess", "", zaptest.NewLogger(t))
	auth := newAuthenticator(cfg, recorder, zaptest.NewLogger(t))

	err := auth.login(context.Background(), page, testCreds())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not reach the home page")
}

func TestURLMatches(t *testing.T) {
	assert.True(t, urlMatches("https://a.com/x/", "https://a.com/x"))
	assert.True(t, urlMatches("https://a.com/x?utm=1", "https://a.com/x"))
	assert.True(t, urlMatches("https://a.com/x#top", "https://a.com/x/"))
	assert.False(t, urlMatches("https://a.com/y", "https://a.com/x"))
}
