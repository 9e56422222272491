package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrors_MatchSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		name     string
	}{
		{
			name:     "data source",
			err:      &DataSourceError{Op: "get accounts", Err: errors.New("boom")},
			sentinel: ErrDataSource,
		},
		{
			name:     "referential integrity",
			err:      &ReferentialIntegrityError{Entity: "transaction", ID: "t1", Ref: "account", RefID: "a9"},
			sentinel: ErrReferentialIntegrity,
		},
		{
			name:     "invalid window",
			err:      &InvalidWindowError{Start: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			sentinel: ErrInvalidWindow,
		},
		{
			name:     "division by zero",
			err:      &DivisionByZeroError{What: "balance"},
			sentinel: ErrDivisionByZero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("report failed: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestErrorMessages(t *testing.T) {
	err := &ReferentialIntegrityError{Entity: "transaction", ID: "t1", Ref: "account", RefID: "a9"}
	assert.Equal(t, "transaction t1 references unknown account a9", err.Error())

	window := &InvalidWindowError{
		Start: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Contains(t, window.Error(), "2024-01-01")
	assert.Contains(t, window.Error(), "2024-01-05")

	inner := errors.New("connection refused")
	ds := &DataSourceError{Op: "list budgets", Err: inner}
	assert.ErrorIs(t, ds, inner)
	assert.Equal(t, "data source list budgets: connection refused", ds.Error())
}

func TestUserError(t *testing.T) {
	inner := errors.New("401")
	err := NewUserError("YNAB rejected the access token", inner)
	assert.Equal(t, "YNAB rejected the access token: 401", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "just a message", (&UserError{UserMessage: "just a message"}).Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", ErrRateLimit)))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(Transient(errors.New("502"))))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("no"), Retryable: false}))
}
