package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

// Writer implements service.ReportWriter for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

var _ service.ReportWriter = (*Writer)(nil)

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriter(srv, config, logger), nil
}

func newWriter(srv *sheets.Service, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		config:  config,
		service: srv,
		logger:  logger.With("component", "sheets"),
	}
}

// WriteCashFlow replaces the Cash Flow tab with the report.
func (w *Writer) WriteCashFlow(ctx context.Context, report *service.CashFlowReport) error {
	if report == nil {
		return fmt.Errorf("no cash flow report to write")
	}

	w.logger.Info("starting cash flow export",
		"budget", report.BudgetName,
		"year", report.Year,
		"months", len(report.Months))

	values := cashFlowValues(NewCashFlowData(report))
	return w.writeTab(ctx, CashFlowTab, values, 2, 4)
}

// WriteBalances replaces the Statement Balances tab with the balances.
func (w *Writer) WriteBalances(ctx context.Context, balances []service.AccountBalance) error {
	w.logger.Info("starting statement balance export", "accounts", len(balances))

	values := balanceValues(NewBalanceData(balances))
	return w.writeTab(ctx, BalancesTab, values, 4, 7)
}

func (w *Writer) writeTab(ctx context.Context, tab string, values [][]any, currencyFrom, currencyTo int64) error {
	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	sheetID, err := w.ensureTab(ctx, spreadsheetID, tab)
	if err != nil {
		return fmt.Errorf("failed to prepare tab %q: %w", tab, err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err = common.WithRetry(ctx, func() error {
		if clearErr := w.clearTab(ctx, spreadsheetID, tab); clearErr != nil {
			return classify(clearErr)
		}
		return classify(w.writeData(ctx, spreadsheetID, tab, values))
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return classify(w.applyFormatting(ctx, spreadsheetID, sheetID, len(values), currencyFrom, currencyTo))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("export completed",
		"spreadsheet_id", spreadsheetID,
		"tab", tab,
		"rows_written", len(values))

	return nil
}

// classify marks throttling and server errors from the Sheets API as transient.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return common.Transient(err)
		}
	}
	return err
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet returns the configured spreadsheet, creating one
// the first time. A created spreadsheet is reused for later tabs in the run.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	w.config.SpreadsheetID = created.SpreadsheetId
	return created.SpreadsheetId, nil
}

// ensureTab returns the sheet ID of tab, adding the tab when missing.
func (w *Writer) ensureTab(ctx context.Context, spreadsheetID, tab string) (int64, error) {
	spreadsheet, err := w.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to access spreadsheet %s: %w", spreadsheetID, err)
	}

	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			return s.Properties.SheetId, nil
		}
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to add tab: %w", err)
	}

	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("add tab returned no sheet properties")
	}

	w.logger.Debug("added tab", "tab", tab)
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// clearTab clears all data from the tab.
func (w *Writer) clearTab(ctx context.Context, spreadsheetID, tab string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, fmt.Sprintf("'%s'!A:Z", tab), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// cashFlowValues lays out the Cash Flow tab.
func cashFlowValues(data CashFlowData) [][]any {
	values := make([][]any, 0, 12+len(data.Recurring)+len(data.Months)+len(data.Contributors))

	values = append(values,
		[]any{"Cash Flow Projection", data.BudgetName, data.Year},
		[]any{"Generated", data.GeneratedAt.Format("Jan 2, 2006 15:04")},
		[]any{"Target Average Daily Balance", "", data.TargetADB.InexactFloat64()},
		[]any{},
		[]any{"Recurring Categories"},
		[]any{"Category", "", "Goal"},
	)

	for _, r := range data.Recurring {
		values = append(values, []any{r.Category, "", r.Goal.InexactFloat64()})
	}

	values = append(values,
		[]any{"Recurring Total", "", data.RecurringTotal.InexactFloat64()},
		[]any{},
		[]any{"Monthly Cash Flow"},
		[]any{"Month", "", "Cash Flow", "Target Balance", "Contributors"},
	)

	for _, m := range data.Months {
		values = append(values, []any{
			m.Month,
			"",
			m.CashFlow.InexactFloat64(),
			m.TargetBalance.InexactFloat64(),
			m.Contributors,
		})
	}

	values = append(values,
		[]any{},
		[]any{"Contributors"},
		[]any{"Month", "Category", "Goal", "Account Type", "Goal Month"},
	)

	for _, c := range data.Contributors {
		values = append(values, []any{
			c.Month,
			c.Category,
			c.Goal.InexactFloat64(),
			c.AccountType,
			c.GoalMonth,
		})
	}

	return values
}

// balanceValues lays out the Statement Balances tab.
func balanceValues(data BalanceData) [][]any {
	values := make([][]any, 0, 5+len(data.Accounts)+len(data.Daily))

	values = append(values, []any{
		"Account",
		"Type",
		"Period Start",
		"Period End",
		"Starting Balance",
		"ADB To Date",
		"Projected ADB",
		"Days To Date",
		"Days Projected",
		"Method",
	})

	for _, a := range data.Accounts {
		values = append(values, []any{
			a.Account,
			a.AccountType,
			a.PeriodStart.Format(model.DayLayout),
			a.PeriodEnd.Format(model.DayLayout),
			a.StartingBalance.InexactFloat64(),
			a.ToDate.InexactFloat64(),
			a.Projected.InexactFloat64(),
			a.ToDateDays,
			a.ProjectedDays,
			a.Method,
		})
	}

	values = append(values,
		[]any{},
		[]any{"Daily Balances"},
		[]any{"Account", "Date", "", "", "Net", "Balance"},
	)

	for _, d := range data.Daily {
		values = append(values, []any{
			d.Account,
			d.Date.Format(model.DayLayout),
			"",
			"",
			d.Net.InexactFloat64(),
			d.Balance.InexactFloat64(),
		})
	}

	return values
}

// writeData writes the values to the tab in batches.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := i + w.config.BatchSize
		if end > len(values) {
			end = len(values)
		}

		batch := values[i:end]
		rangeStr := fmt.Sprintf("'%s'!A%d", tab, i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", tab, "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// applyFormatting bolds the title row and first column and formats columns
// [currencyFrom, currencyTo) as currency.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, sheetID int64, totalRows int, currencyFrom, currencyTo int64) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   10,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true, FontSize: 12},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    1,
					EndRowIndex:      int64(totalRows),
					StartColumnIndex: 0,
					EndColumnIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    1,
					EndRowIndex:      int64(totalRows),
					StartColumnIndex: currencyFrom,
					EndColumnIndex:   currencyTo,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "CURRENCY",
							Pattern: "$#,##0.00",
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   10,
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
