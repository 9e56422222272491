// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Common application errors.
var (
	// Data source errors.
	ErrDataSource   = errors.New("data source error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")

	// Calculation errors.
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrInvalidWindow        = errors.New("invalid statement window")
	ErrDivisionByZero       = errors.New("division by zero")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// DataSourceError reports a failure fetching an entity from the budget API.
type DataSourceError struct {
	Err error
	Op  string
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source %s: %v", e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// Is matches ErrDataSource.
func (e *DataSourceError) Is(target error) bool {
	return target == ErrDataSource
}

// ReferentialIntegrityError reports a record pointing at an entity that
// does not exist in the fetched snapshot.
type ReferentialIntegrityError struct {
	Entity string // the record holding the reference, e.g. "transaction"
	ID     string
	Ref    string // the missing entity, e.g. "account"
	RefID  string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %s references unknown %s %s", e.Entity, e.ID, e.Ref, e.RefID)
}

// Is matches ErrReferentialIntegrity.
func (e *ReferentialIntegrityError) Is(target error) bool {
	return target == ErrReferentialIntegrity
}

// InvalidWindowError reports a statement window that ends before it starts.
type InvalidWindowError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("statement window ends %s before it starts %s",
		e.End.Format("2006-01-02"), e.Start.Format("2006-01-02"))
}

// Is matches ErrInvalidWindow.
func (e *InvalidWindowError) Is(target error) bool {
	return target == ErrInvalidWindow
}

// DivisionByZeroError reports an average taken over zero days.
type DivisionByZeroError struct {
	What string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("cannot average %s over zero days", e.What)
}

// Is matches ErrDivisionByZero.
func (e *DivisionByZeroError) Is(target error) bool {
	return target == ErrDivisionByZero
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
