// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across packages.
var (
	ErrNotFound         = errors.New("not found")
	ErrHistoryCorrupted = errors.New("stored history is corrupted")

	ErrNoNutritionMatch = errors.New("no nutrition match")
	ErrLookupFailed     = errors.New("nutrition lookup failed")

	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError carries a message meant for the person at the terminal along
// with the underlying cause.
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

// Describe renders err for the terminal. A UserError in the chain puts its
// message first with the cause indented below it.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var userErr *UserError
	if !errors.As(err, &userErr) {
		return err.Error()
	}
	if userErr.Err == nil {
		return userErr.UserMessage
	}
	return userErr.UserMessage + "\n  " + userErr.Err.Error()
}
