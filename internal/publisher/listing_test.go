// File: internal/publisher/listing_test.go
package publisher

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rodsoto/seminuevos-publisher/api/schemas"
	"github.com/rodsoto/seminuevos-publisher/internal/config"
)

func testAd(cfg *config.Config) schemas.AdData {
	ad := cfg.Ad.AdData(150000, "Single owner, dealer maintained.")
	ad.PhotoPaths = []string{"img/front.jpg", "img/back.jpg", "img/interior.jpg"}
	return ad
}

func TestListingFormFillHappyPath(t *testing.T) {
	cfg := config.NewDefaultConfig()
	page := newFakePage()
	recorder := NewRecorder("sess", "", zaptest.NewLogger(t))
	form := newListingForm(cfg, recorder, zaptest.NewLogger(t))

	require.NoError(t, form.fill(context.Background(), page, testAd(cfg)))

	calls := page.callLog()
	assert.Contains(t, calls, "navigate:"+cfg.Site.WizardURL)
	assert.Contains(t, calls, "viewport:1504x794")

	// One trigger click per cascading field.
	for _, trigger := range []string{
		selectorTypeTrigger, selectorBrandTrigger, selectorModelTrigger,
		selectorSubtypeTrigger, selectorYearTrigger, selectorProvinceTrigger,
		selectorCityTrigger,
	} {
		assert.Contains(t, calls, "click:"+trigger)
	}

	assert.Equal(t, "20000", page.typed[selectorMileage])
	assert.Equal(t, "150000", page.typed[selectorPrice])
	assert.Equal(t, "Single owner, dealer maintained.", page.typed[selectorDescription])

	assert.Contains(t, calls, "clicknav:"+selectorNext)
	assert.Contains(t, calls, "waitenabled:"+selectorDescReady)
	assert.Contains(t, calls, "upload:"+selectorFileInput+":3")
	assert.Contains(t, calls, "clicknav:"+selectorNextUploads)

	var steps []string
	for _, rec := range recorder.Records() {
		steps = append(steps, rec.StepName)
	}
	assert.Equal(t, []string{
		"goto_new_ad_page",
		"clicked_next_after_negotiable",
		"photos_uploaded",
		"clicked_next_after_uploads",
	}, steps)
}

func TestListingFormPriceFormatting(t *testing.T) {
	cfg := config.NewDefaultConfig()
	recorder := NewRecorder("sess", "", zaptest.NewLogger(t))
	form := newListingForm(cfg, recorder, zaptest.NewLogger(t))

	page := newFakePage()
	ad := testAd(cfg)
	ad.Price = 99999.99
	require.NoError(t, form.fill(context.Background(), page, ad))
	assert.Equal(t, "99999.99", page.typed[selectorPrice],
		"fractional prices keep their decimals, without exponent notation")
}

func TestListingFormOptionNotFound(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Ad.Brand = "Nonexistente"
	page := newFakePage()
	page.evaluate = func(script string, res any) error {
		if v, ok := res.(*bool); ok {
			// The brand label is missing from the dropdown.
			*v = !strings.Contains(script, "Nonexistente")
		}
		return nil
	}

	recorder := NewRecorder("sess", "", zaptest.NewLogger(t))
	form := newListingForm(cfg, recorder, zaptest.NewLogger(t))

	err := form.fill(context.Background(), page, testAd(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no brand option labeled "Nonexistente"`)
}

func TestListingFormUploadTimeout(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Site.UploadTimeout = 50 * time.Millisecond
	page := newFakePage()
	page.evaluate = func(script string, res any) error {
		switch v := res.(type) {
		case *bool:
			*v = true
		case *int:
			// The wizard never finishes listing the third photo.
			*v = 2
		}
		return nil
	}

	recorder := NewRecorder("sess", "", zaptest.NewLogger(t))
	form := newListingForm(cfg, recorder, zaptest.NewLogger(t))

	err := form.fill(context.Background(), page, testAd(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "photo upload did not complete")
	assert.Equal(t, 0, page.calledWithPrefix("clicknav:"+selectorNextUploads),
		"must not advance past the media step with missing photos")
}

func TestListingFormNoPhotosConfigured(t *testing.T) {
	cfg := config.NewDefaultConfig()
	page := newFakePage()
	recorder := NewRecorder("sess", "", zaptest.NewLogger(t))
	form := newListingForm(cfg, recorder, zaptest.NewLogger(t))

	ad := testAd(cfg)
	ad.PhotoPaths = nil
	err := form.fill(context.Background(), page, ad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no photos configured")
}
