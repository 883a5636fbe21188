package merge

import (
	"log/slog"
	"time"
)

type options struct {
	logger        *slog.Logger
	concurrency   int
	remoteTimeout time.Duration
}

// Option configures a Merger.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		logger:        slog.Default(),
		concurrency:   4,
		remoteTimeout: 30 * time.Second,
	}
}

// WithLogger sets the logger for the merger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPushConcurrency bounds how many push requests run at once.
func WithPushConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithRemoteTimeout bounds each push request.
func WithRemoteTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.remoteTimeout = d
		}
	}
}
