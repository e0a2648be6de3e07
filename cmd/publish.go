// File: cmd/publish.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/rodsoto/seminuevos-publisher/api/schemas"
	"github.com/rodsoto/seminuevos-publisher/internal/browser"
	"github.com/rodsoto/seminuevos-publisher/internal/observability"
	"github.com/rodsoto/seminuevos-publisher/internal/publisher"
)

var (
	publishPrice       float64
	publishDescription string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Run a single publish session from the command line.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPublish()
	},
}

func init() {
	publishCmd.Flags().Float64Var(&publishPrice, "price", 0, "listing price (required)")
	publishCmd.Flags().StringVar(&publishDescription, "description", "", "listing description (required)")
	publishCmd.MarkFlagRequired("price")
	publishCmd.MarkFlagRequired("description")
	rootCmd.AddCommand(publishCmd)
}

func runPublish() error {
	if cfg.Credentials.Email == "" || cfg.Credentials.Password == "" {
		return fmt.Errorf("credentials missing: set SNPUB_EMAIL and SNPUB_PASSWORD")
	}

	logger := observability.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr, err := browser.NewManager(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("browser startup failed: %w", err)
	}
	defer shutdownBrowser(mgr, logger)

	svc := publisher.NewService(cfg, mgr, logger)
	result := svc.Run(ctx, cfg.Credentials.Credentials(), cfg.Ad.AdData(publishPrice, publishDescription))

	// The inline images dwarf everything else; the terminal gets a summary
	// and the full trail stays in the screenshot directory.
	out := struct {
		Status         schemas.PublicationStatus `json:"status"`
		PublicationID  string                    `json:"publicationId,omitempty"`
		PublicationURL string                    `json:"publicationUrl,omitempty"`
		Screenshots    int                       `json:"screenshots"`
		SessionID      string                    `json:"sessionId"`
	}{
		Status:         result.Status,
		PublicationID:  result.PublicationID,
		PublicationURL: result.PublicationURL,
		Screenshots:    len(result.Screenshots),
		SessionID:      result.SessionID,
	}

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}

	if result.Status != schemas.StatusPublished {
		return fmt.Errorf("publication failed, see session %s screenshots", result.SessionID)
	}
	return nil
}
