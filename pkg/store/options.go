package store

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/deyanlaf0409/noteblocks/pkg/codec"
	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

// options holds the internal configuration for a Store.
type options struct {
	format    codec.Format
	scheduler core.ReminderScheduler
	logger    *slog.Logger
	clock     func() time.Time
	newID     func() string
}

// Option defines a functional option for configuring a Store.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		format: codec.JSON{},
		logger: slog.Default(),
		clock:  core.Now,
		newID:  uuid.NewString,
	}
}

// WithFormat selects the encoding used for persisted collections. Defaults to JSON.
func WithFormat(f codec.Format) Option {
	return func(o *options) {
		if f != nil {
			o.format = f
		}
	}
}

// WithScheduler sets the reminder scheduler notified when reminders change.
func WithScheduler(s core.ReminderScheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the time source used for timestamps (useful for testing).
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithIDGenerator overrides how ids for new notes and folders are produced.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}
