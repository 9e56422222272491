// Package ynab provides a client for the YNAB budgeting API.
package ynab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

const (
	// DefaultBaseURL is the YNAB API v1 endpoint.
	DefaultBaseURL = "https://api.ynab.com/v1"
	// DefaultRequestsPerHour is YNAB's per-token request allowance.
	DefaultRequestsPerHour = 200
	// DefaultCacheTTL is how long identical GET responses are reused.
	DefaultCacheTTL = 5 * time.Minute
)

// Config holds YNAB API configuration.
type Config struct {
	HTTPClient      *http.Client // base transport, mainly for tests
	AccessToken     string
	BaseURL         string
	RequestsPerHour int
	CacheTTL        time.Duration // zero uses DefaultCacheTTL, negative disables
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.AccessToken == "" {
		return fmt.Errorf("%w: ynab access token is required", common.ErrMissingConfig)
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: invalid ynab base url %q", common.ErrInvalidConfig, c.BaseURL)
		}
	}
	if c.RequestsPerHour < 0 {
		return fmt.Errorf("%w: requests per hour cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

// Client implements service.DataSource against the YNAB REST API.
type Client struct {
	httpClient *http.Client
	limiter    *rateLimiter
	cache      *responseCache
	logger     *slog.Logger
	retryOpts  service.RetryOptions
	baseURL    string
}

var _ service.DataSource = (*Client)(nil)

// NewClient creates a new YNAB client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = DefaultCacheTTL
	}

	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}

	// The personal access token is a plain bearer token.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.AccessToken,
		TokenType:   "Bearer",
	})
	httpClient := oauth2.NewClient(ctx, tokenSource)
	httpClient.Timeout = base.Timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    newRateLimiter(cfg.RequestsPerHour),
		cache:      newResponseCache(cacheTTL),
		logger:     slog.Default().With("component", "ynab"),
		retryOpts:  common.DefaultRetryOptions(),
	}, nil
}

// WithRetryOptions overrides the retry policy.
func (c *Client) WithRetryOptions(opts service.RetryOptions) *Client {
	c.retryOpts = opts
	return c
}

// Close releases the client's background resources.
func (c *Client) Close() {
	c.limiter.Close()
}

// ListBudgets returns every budget the token can see.
func (c *Client) ListBudgets(ctx context.Context) ([]model.Budget, error) {
	var resp budgetsResponse
	if err := c.get(ctx, "/budgets", nil, &resp); err != nil {
		return nil, &common.DataSourceError{Op: "list budgets", Err: err}
	}

	budgets := make([]model.Budget, 0, len(resp.Data.Budgets))
	for _, b := range resp.Data.Budgets {
		budgets = append(budgets, model.Budget{ID: b.ID, Name: b.Name})
	}

	c.logger.Debug("Fetched budgets", "count", len(budgets))
	return budgets, nil
}

// GetMonthCategories returns the categories of a budget month. A zero month
// asks for the current month.
func (c *Client) GetMonthCategories(ctx context.Context, budgetID string, month time.Time) ([]model.Category, error) {
	monthParam := "current"
	if !month.IsZero() {
		monthParam = model.DayKey(model.FirstOfMonth(month))
	}

	var resp monthResponse
	path := fmt.Sprintf("/budgets/%s/months/%s", url.PathEscape(budgetID), monthParam)
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, &common.DataSourceError{Op: "get month", Err: err}
	}

	categories := make([]model.Category, 0, len(resp.Data.Month.Categories))
	for _, raw := range resp.Data.Month.Categories {
		if raw.Deleted {
			continue
		}
		category, err := raw.toModel()
		if err != nil {
			return nil, &common.DataSourceError{Op: "get month", Err: err}
		}
		categories = append(categories, category)
	}

	c.logger.Debug("Fetched categories", "month", monthParam, "count", len(categories))
	return categories, nil
}

// GetAccounts returns the budget's accounts, deleted ones excluded.
func (c *Client) GetAccounts(ctx context.Context, budgetID string) ([]model.Account, error) {
	var resp accountsResponse
	path := fmt.Sprintf("/budgets/%s/accounts", url.PathEscape(budgetID))
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, &common.DataSourceError{Op: "get accounts", Err: err}
	}

	accounts := make([]model.Account, 0, len(resp.Data.Accounts))
	for _, a := range resp.Data.Accounts {
		if a.Deleted {
			continue
		}
		accounts = append(accounts, a.toModel())
	}

	c.logger.Debug("Fetched accounts", "count", len(accounts))
	return accounts, nil
}

// GetTransactions returns every transaction in the budget.
func (c *Client) GetTransactions(ctx context.Context, budgetID string) ([]model.Transaction, error) {
	var resp transactionsResponse
	path := fmt.Sprintf("/budgets/%s/transactions", url.PathEscape(budgetID))
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, &common.DataSourceError{Op: "get transactions", Err: err}
	}

	transactions, err := convertTransactions(resp.Data.Transactions, nil, nil)
	if err != nil {
		return nil, &common.DataSourceError{Op: "get transactions", Err: err}
	}

	c.logger.Debug("Fetched transactions", "count", len(transactions))
	return transactions, nil
}

// GetTransactionsByAccount returns an account's transactions within the
// optional [start, end] bounds.
func (c *Client) GetTransactionsByAccount(ctx context.Context, budgetID, accountID string, start, end *time.Time) ([]model.Transaction, error) {
	query := url.Values{}
	if start != nil {
		query.Set("since_date", model.DayKey(*start))
	}

	var resp transactionsResponse
	path := fmt.Sprintf("/budgets/%s/accounts/%s/transactions", url.PathEscape(budgetID), url.PathEscape(accountID))
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, &common.DataSourceError{Op: "get account transactions", Err: err}
	}

	// The API only bounds the start; the end is applied here.
	transactions, err := convertTransactions(resp.Data.Transactions, start, end)
	if err != nil {
		return nil, &common.DataSourceError{Op: "get account transactions", Err: err}
	}

	c.logger.Debug("Fetched account transactions",
		"account_id", accountID,
		"count", len(transactions))
	return transactions, nil
}

func convertTransactions(raw []transaction, start, end *time.Time) ([]model.Transaction, error) {
	transactions := make([]model.Transaction, 0, len(raw))
	for _, t := range raw {
		if t.Deleted {
			continue
		}
		tx, err := t.toModel()
		if err != nil {
			return nil, err
		}
		if start != nil && tx.Date.Before(model.Day(*start)) {
			continue
		}
		if end != nil && tx.Date.After(model.Day(*end)) {
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// get fetches path and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	if body, ok := c.cache.get(endpoint); ok {
		c.logger.Debug("Serving cached response", "path", path)
		return json.Unmarshal(body, out)
	}

	var body []byte
	err := common.WithRetry(ctx, func() error {
		if err := c.limiter.wait(ctx); err != nil {
			return err
		}

		var fetchErr error
		body, fetchErr = c.fetch(ctx, endpoint)
		return fetchErr
	}, c.retryOpts)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	c.cache.set(endpoint, body)
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, common.Transient(fmt.Errorf("failed to fetch data: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.Transient(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode == http.StatusOK {
		return body, nil
	}

	return nil, apiError(resp.StatusCode, body)
}

// apiError maps a non-200 response onto the application's error taxonomy.
func apiError(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	var parsed errorResponse
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Detail != "" {
		detail = parsed.Error.Detail
	}

	base := fmt.Errorf("YNAB API error: %d - %s", status, detail)

	switch {
	case status == http.StatusUnauthorized:
		return errors.Join(common.ErrUnauthorized, base)
	case status == http.StatusNotFound:
		return errors.Join(common.ErrNotFound, base)
	case status == http.StatusTooManyRequests:
		return common.Transient(errors.Join(common.ErrRateLimit, base))
	case status >= http.StatusInternalServerError:
		return common.Transient(base)
	default:
		return base
	}
}
