// Package config provides configuration utilities for the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/currency"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

// Defaults for every setting that has one.
const (
	DefaultBaseURL         = "https://api.ynab.com/v1"
	DefaultRequestsPerHour = 200
	DefaultCacheTTL        = 5 * time.Minute
	DefaultStatementEndDay = 3
	DefaultTargetADB       = 11000.0
	MonthLayout            = "2006-01"
)

// Budget IDs YNAB resolves on its own.
var budgetAliases = map[string]bool{"last-used": true, "default": true}

// Config is the application configuration.
type Config struct {
	YNAB      YNABConfig
	Logging   LoggingConfig
	CashFlow  CashFlowConfig
	Statement StatementConfig
}

// YNABConfig configures the budget API.
type YNABConfig struct {
	AccessToken     string
	BudgetID        string
	BaseURL         string
	AccountIDs      []string
	RequestsPerHour int
	CacheTTL        time.Duration
}

// StatementConfig configures statement periods.
type StatementConfig struct {
	EndDay int
}

// CashFlowConfig configures the cash-flow projection.
type CashFlowConfig struct {
	// Month is the budget month goals are read from; zero means current.
	Month     time.Time
	TargetADB model.Milliunits
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level  string
	Format string
}

// SetDefaults registers defaults and the legacy environment variable names.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ynab.base_url", DefaultBaseURL)
	v.SetDefault("ynab.requests_per_hour", DefaultRequestsPerHour)
	v.SetDefault("ynab.cache_ttl", DefaultCacheTTL)
	v.SetDefault("statement.end_day", DefaultStatementEndDay)
	v.SetDefault("cashflow.target_average_daily_balance", DefaultTargetADB)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	_ = v.BindEnv("ynab.access_token", "CASH_YNAB_ACCESS_TOKEN", "YNAB_API_KEY")
	_ = v.BindEnv("ynab.budget_id", "CASH_YNAB_BUDGET_ID", "YNAB_BUDGET_ID")
	_ = v.BindEnv("statement.end_day", "CASH_STATEMENT_END_DAY", "STATEMENT_PERIOD_END_DAY")
}

// LoadDotEnv loads environment files, skipping the ones that do not exist.
// With no paths it loads ./.env. Variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(ExpandPath(path)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads the configuration out of v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		YNAB: YNABConfig{
			AccessToken:     strings.TrimSpace(v.GetString("ynab.access_token")),
			BudgetID:        strings.TrimSpace(v.GetString("ynab.budget_id")),
			BaseURL:         v.GetString("ynab.base_url"),
			AccountIDs:      v.GetStringSlice("ynab.account_ids"),
			RequestsPerHour: v.GetInt("ynab.requests_per_hour"),
			CacheTTL:        v.GetDuration("ynab.cache_ttl"),
		},
		Statement: StatementConfig{
			EndDay: v.GetInt("statement.end_day"),
		},
		CashFlow: CashFlowConfig{
			TargetADB: currency.FromUnits(v.GetFloat64("cashflow.target_average_daily_balance")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	if raw := strings.TrimSpace(v.GetString("cashflow.month")); raw != "" {
		month, err := time.ParseInLocation(MonthLayout, raw, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: cashflow.month %q must be YYYY-MM", common.ErrInvalidConfig, raw)
		}
		cfg.CashFlow.Month = month
	}

	return cfg, nil
}

// Validate checks every setting and reports all problems at once. The
// access token is checked by the client that needs it.
func (c *Config) Validate() error {
	var problems []string

	if c.YNAB.BudgetID != "" && !budgetAliases[c.YNAB.BudgetID] {
		if _, err := uuid.Parse(c.YNAB.BudgetID); err != nil {
			problems = append(problems, fmt.Sprintf("invalid budget id '%s': must be a UUID, 'last-used' or 'default'", c.YNAB.BudgetID))
		}
	}

	for _, id := range c.YNAB.AccountIDs {
		if _, err := uuid.Parse(id); err != nil {
			problems = append(problems, fmt.Sprintf("invalid account id '%s': must be a UUID", id))
		}
	}

	if c.YNAB.BaseURL != "" {
		if u, err := url.Parse(c.YNAB.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid base url '%s'", c.YNAB.BaseURL))
		}
	}

	if c.YNAB.RequestsPerHour < 1 {
		problems = append(problems, fmt.Sprintf("invalid requests per hour %d: must be at least 1", c.YNAB.RequestsPerHour))
	}

	if c.YNAB.CacheTTL < 0 {
		problems = append(problems, fmt.Sprintf("invalid cache ttl %v: cannot be negative", c.YNAB.CacheTTL))
	}

	if c.Statement.EndDay < 1 || c.Statement.EndDay > 31 {
		problems = append(problems, fmt.Sprintf("invalid statement end day %d: must be between 1 and 31", c.Statement.EndDay))
	}

	if c.CashFlow.TargetADB < 0 {
		problems = append(problems, "target average daily balance cannot be negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s'", c.Logging.Level))
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s'", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n- %s", common.ErrInvalidConfig, strings.Join(problems, "\n- "))
	}

	return nil
}
