// File: internal/publisher/listing.go
package publisher

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rodsoto/seminuevos-publisher/api/schemas"
	"github.com/rodsoto/seminuevos-publisher/internal/config"
)

// Wizard selectors. The trigger selectors open each cascading dropdown; the
// options inside are resolved by label, not by position, so a reordered
// option list cannot silently pick the wrong vehicle.
const (
	selectorTypeTrigger     = `.m-b-lg:nth-child(2) > [href="#"]:nth-child(2)`
	selectorBrandTrigger    = `.l3:nth-child(2) [href="#"]:nth-child(2)`
	selectorModelTrigger    = `.col:nth-child(3) > .invalid > [href="#"]:nth-child(2)`
	selectorSubtypeTrigger  = `.col:nth-child(4) [href="#"]:nth-child(2)`
	selectorYearTrigger     = `.col:nth-child(5) [href="#"]:nth-child(2)`
	selectorProvinceTrigger = `.col:nth-child(6) [href="#"]:nth-child(2)`
	selectorCityTrigger     = `.invalid > [href="#"]:nth-child(2)`

	selectorMileage     = "#input_recorrido"
	selectorPrice       = "#input_precio"
	selectorNext        = ".next-button"
	selectorNextUploads = ".next-button:nth-child(2)"
	selectorDescription = "#input_text_area_review"
	selectorDescReady   = "#input_text_area_review:not([disabled])"
	selectorFileInput   = "input[type=file]"
)

// The wizard renders at this viewport; wider layouts move the dropdowns.
const (
	wizardViewportWidth  = 1504
	wizardViewportHeight = 794
)

const uploadPollInterval = 500 * time.Millisecond

// selectOptionScript clicks the entry of the currently open dropdown whose
// visible label matches, ignoring case and diacritics. An exact fold match
// wins over a substring one. Returns false when nothing matches.
const selectOptionScript = `(() => {
	const fold = (s) => s.normalize('NFD').replace(/[\u0300-\u036f]/g, '').trim().toLowerCase();
	const want = fold(%s);
	const links = document.querySelectorAll('.active li > a[href="#"]');
	let partial = null;
	for (const link of links) {
		const have = fold(link.textContent);
		if (have === want) {
			link.click();
			return true;
		}
		if (!partial && have.includes(want)) {
			partial = link;
		}
	}
	if (partial) {
		partial.click();
		return true;
	}
	return false;
})()`

// uploadedCountScript counts photos the wizard reports as uploaded.
const uploadedCountScript = `document.querySelectorAll('.uploaded-list li').length`

// listingForm drives the ad wizard: the cascading vehicle dropdowns, the
// price and mileage fields, the description, and the photo uploads.
type listingForm struct {
	cfg      *config.Config
	logger   *zap.Logger
	recorder *Recorder
}

func newListingForm(cfg *config.Config, recorder *Recorder, logger *zap.Logger) *listingForm {
	return &listingForm{
		cfg:      cfg,
		logger:   logger.Named("listing"),
		recorder: recorder,
	}
}

// fill walks the wizard from a fresh navigation through the uploads step,
// leaving the page on the wizard's final surface.
func (f *listingForm) fill(ctx context.Context, page schemas.Page, ad schemas.AdData) error {
	f.logger.Info("Navigating to the listing wizard.", zap.String("wizard_url", f.cfg.Site.WizardURL))

	if err := page.Navigate(ctx, f.cfg.Site.WizardURL); err != nil {
		return err
	}
	if err := page.SetViewport(ctx, wizardViewportWidth, wizardViewportHeight); err != nil {
		return err
	}
	f.recorder.CaptureBestEffort(ctx, page, "goto new ad page")

	cascade := []struct {
		field   string
		trigger string
		label   string
	}{
		{"type", selectorTypeTrigger, ad.Type},
		{"brand", selectorBrandTrigger, ad.Brand},
		{"model", selectorModelTrigger, ad.Model},
		{"subtype", selectorSubtypeTrigger, ad.Subtype},
		{"year", selectorYearTrigger, ad.Year},
		{"province", selectorProvinceTrigger, ad.Province},
		{"city", selectorCityTrigger, ad.City},
	}
	for _, step := range cascade {
		if err := f.selectOption(ctx, page, step.field, step.trigger, step.label); err != nil {
			return err
		}
	}

	if err := page.Type(ctx, selectorMileage, ad.Mileage); err != nil {
		return err
	}
	price := strconv.FormatFloat(ad.Price, 'f', -1, 64)
	if err := page.Type(ctx, selectorPrice, price); err != nil {
		return err
	}

	f.logger.Info("Vehicle details complete, advancing to the media step.")
	if err := page.ClickAndNavigate(ctx, selectorNext); err != nil {
		return err
	}
	f.recorder.CaptureBestEffort(ctx, page, "clicked next after negotiable")

	// The description textarea stays disabled until the step finishes its
	// own initialization.
	if err := page.WaitEnabled(ctx, selectorDescReady); err != nil {
		return err
	}
	if err := page.Type(ctx, selectorDescription, ad.Description); err != nil {
		return err
	}

	if err := f.uploadPhotos(ctx, page, ad.PhotoPaths); err != nil {
		return err
	}
	f.recorder.CaptureBestEffort(ctx, page, "photos uploaded")

	f.logger.Info("Photos uploaded, advancing past the media step.")
	if err := page.ClickAndNavigate(ctx, selectorNextUploads); err != nil {
		return err
	}
	f.recorder.CaptureBestEffort(ctx, page, "clicked next after uploads")
	return nil
}

// selectOption opens one cascading dropdown and picks the entry whose label
// matches the configured value.
func (f *listingForm) selectOption(ctx context.Context, page schemas.Page, field, trigger, label string) error {
	f.logger.Debug("Selecting dropdown option", zap.String("field", field), zap.String("label", label))

	if err := page.Click(ctx, trigger); err != nil {
		return fmt.Errorf("failed to open %s dropdown: %w", field, err)
	}

	script := fmt.Sprintf(selectOptionScript, strconv.Quote(label))
	var clicked bool
	if err := page.Evaluate(ctx, script, &clicked); err != nil {
		return fmt.Errorf("failed to select %s option: %w", field, err)
	}
	if !clicked {
		return fmt.Errorf("no %s option labeled %q found in dropdown", field, label)
	}
	return nil
}

// uploadPhotos submits the files and polls until the wizard lists them all,
// bounded by the configured upload timeout.
func (f *listingForm) uploadPhotos(ctx context.Context, page schemas.Page, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no photos configured for upload")
	}

	f.logger.Info("Uploading photos.", zap.Int("count", len(paths)))
	if err := page.Upload(ctx, selectorFileInput, paths); err != nil {
		return err
	}

	pollCtx, cancel := context.WithTimeout(ctx, f.cfg.Site.UploadTimeout)
	defer cancel()

	ticker := time.NewTicker(uploadPollInterval)
	defer ticker.Stop()

	for {
		var uploaded int
		if err := page.Evaluate(pollCtx, uploadedCountScript, &uploaded); err != nil {
			if pollCtx.Err() != nil {
				return fmt.Errorf("photo upload did not complete within %s: %w", f.cfg.Site.UploadTimeout, pollCtx.Err())
			}
			return fmt.Errorf("failed to poll upload progress: %w", err)
		}
		if uploaded >= len(paths) {
			return nil
		}

		select {
		case <-pollCtx.Done():
			return fmt.Errorf("photo upload did not complete within %s: %d/%d uploaded",
				f.cfg.Site.UploadTimeout, uploaded, len(paths))
		case <-ticker.C:
		}
	}
}
