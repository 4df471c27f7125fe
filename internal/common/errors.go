// Package common holds the errors, logging helpers and retry policy shared by every
// SpendScore package.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Reports and their transactions.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// File imports.
var (
	ErrNoTransactions    = errors.New("no transactions found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("file too large")
)

// Bank feeds.
var (
	ErrPlaidConnection = errors.New("plaid connection failed")
	ErrPlaidRateLimit  = errors.New("plaid rate limit exceeded")
)

// Settings and credentials.
var (
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError pairs an underlying failure with the sentence shown at the terminal.
type UserError struct {
	Err         error
	UserMessage string
}

// NewUserError wraps err with a human readable message.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
}

func (e *UserError) Unwrap() error { return e.Err }

// Message returns the text to print for err: the outermost UserError's message when
// there is one, the full error chain otherwise.
func Message(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}

// IsRetryable reports whether err is worth another attempt. Rate limits and deadlines
// are; a RetryableError decides for itself; anything else is not.
func IsRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrRateLimit), errors.Is(err, ErrPlaidRateLimit):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}

	var retryable *RetryableError
	return errors.As(err, &retryable) && retryable.Retryable
}
