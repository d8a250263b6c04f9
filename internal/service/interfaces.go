// Package service defines the interfaces shared between application layers.
package service

import (
	"context"
	"time"
)

// KeyValueStore is a persistent string key-value store, modeled on browser
// local storage. A missing key is reported with found == false.
type KeyValueStore interface {
	GetItem(ctx context.Context, key string) (value string, found bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	// UpdateItem reads key and writes fn's result in one transaction. The
	// value is written only when fn reports a change; fn errors abort the
	// update and are returned unchanged.
	UpdateItem(ctx context.Context, key string, fn UpdateFunc) error
	Keys(ctx context.Context) ([]string, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// UpdateFunc computes a new value for a key from its current value.
type UpdateFunc func(value string, found bool) (updated string, changed bool, err error)

// ProgressReporter receives progress updates for long running operations.
// Percent is in the range [0, 100].
type ProgressReporter interface {
	Update(percent float64, message string)
}

// ProgressFunc adapts a function to the ProgressReporter interface.
type ProgressFunc func(percent float64, message string)

// Update calls f.
func (f ProgressFunc) Update(percent float64, message string) {
	f(percent, message)
}

// NoProgress discards all progress updates.
var NoProgress ProgressReporter = ProgressFunc(func(float64, string) {})

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
