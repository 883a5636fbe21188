package reconcile

import (
	"log/slog"
	"time"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

const (
	defaultRemoteTimeout = 30 * time.Second
	defaultResultBuffer  = 64
)

type options struct {
	logger        *slog.Logger
	remoteTimeout time.Duration
	resultBuffer  int
	notice        func(Result)
	media         core.MediaReleaser
}

// Option configures a Reconciler.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		logger:        slog.Default(),
		remoteTimeout: defaultRemoteTimeout,
		resultBuffer:  defaultResultBuffer,
	}
}

// WithLogger sets the logger for the reconciler.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRemoteTimeout bounds each remote call. Zero or negative keeps the default.
func WithRemoteTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.remoteTimeout = d
		}
	}
}

// WithResultBuffer sets how many completions may queue before remote tasks block.
func WithResultBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.resultBuffer = n
		}
	}
}

// WithNoticeHandler registers a callback receiving every failed Result once it has
// been handled. It runs on the goroutine that drains results.
func WithNoticeHandler(fn func(Result)) Option {
	return func(o *options) {
		o.notice = fn
	}
}

// WithMediaReleaser frees media attached to permanently deleted notes.
func WithMediaReleaser(m core.MediaReleaser) Option {
	return func(o *options) {
		o.media = m
	}
}
