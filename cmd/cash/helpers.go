package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/config"
	"github.com/Veraticus/the-cash-must-flow/internal/engine"
	"github.com/Veraticus/the-cash-must-flow/internal/ofx"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
	"github.com/Veraticus/the-cash-must-flow/internal/sheets"
	"github.com/Veraticus/the-cash-must-flow/internal/ynab"
)

// Replaced in tests.
var (
	newDataSource   = defaultDataSource
	newReportWriter = defaultReportWriter
	clock           = time.Now
)

// loadConfig reads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("invalid configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, common.NewUserError(err.Error(), err)
	}
	return cfg, nil
}

// defaultDataSource returns the YNAB client, or an OFX source when statement
// files are given.
func defaultDataSource(ctx context.Context, cfg *config.Config, ofxFiles []string) (service.DataSource, error) {
	if len(ofxFiles) > 0 {
		source, err := ofx.LoadFiles(ctx, ofxFiles...)
		if err != nil {
			return nil, fmt.Errorf("failed to load OFX files: %w", err)
		}
		// OFX files carry a single pseudo-budget.
		cfg.YNAB.BudgetID = ofx.BudgetID
		cfg.YNAB.AccountIDs = nil
		return source, nil
	}

	if cfg.YNAB.AccessToken == "" {
		return nil, common.NewUserError(
			"YNAB access token missing; set YNAB_API_KEY or ynab.access_token in the config file",
			common.ErrMissingConfig)
	}

	return ynab.NewClient(ynab.Config{
		AccessToken:     cfg.YNAB.AccessToken,
		BaseURL:         cfg.YNAB.BaseURL,
		RequestsPerHour: cfg.YNAB.RequestsPerHour,
		CacheTTL:        cfg.YNAB.CacheTTL,
	})
}

func defaultReportWriter(ctx context.Context) (service.ReportWriter, error) {
	sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError(
			"Google Sheets is not configured; run 'cash auth sheets' or set sheets.service_account_path",
			err)
	}
	return sheets.NewWriter(ctx, *sheetsCfg, slog.Default().With("component", "sheets"))
}

// newEngine builds the report engine over the configured data source. The
// returned func releases the data source.
func newEngine(ctx context.Context, cfg *config.Config, ofxFiles []string, progress io.Writer) (*engine.Engine, func(), error) {
	source, err := newDataSource(ctx, cfg, ofxFiles)
	if err != nil {
		return nil, nil, err
	}

	release := func() {}
	if c, ok := source.(interface{ Close() }); ok {
		release = c.Close
	}

	eng := engine.New(source, cfg).
		WithClock(clock).
		WithProgress(progress)

	return eng, release, nil
}

// writeFile writes data to path, creating it with owner-only permissions.
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
