package platform

import (
	"log/slog"
	"time"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
	"github.com/deyanlaf0409/noteblocks/pkg/reconcile"
)

// options holds the internal configuration of a Client. Values set here override the
// configuration file.
type options struct {
	logger      *slog.Logger
	storage     string
	format      string
	persistence core.Persistence
	gateway     core.Gateway
	remoteURL   string
	account     *string
	token       string
	timeout     time.Duration
	scheduler   core.ReminderScheduler
	media       core.MediaReleaser
	notice      func(reconcile.Result)
	mustExist   bool
	devSafety   bool
}

// Option defines a functional option for configuring a Client.
type Option func(*options)

func defaultOptions() *options {
	return &options{logger: slog.Default(), devSafety: true}
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStorage selects the persistence backend by name ("fs", "sqlite" or "memory").
func WithStorage(name string) Option {
	return func(o *options) {
		o.storage = name
	}
}

// WithFormat selects the encoding of persisted collections ("json" or "yaml").
func WithFormat(name string) Option {
	return func(o *options) {
		o.format = name
	}
}

// WithPersistence injects a persistence layer, skipping the configured backend.
func WithPersistence(p core.Persistence) Option {
	return func(o *options) {
		o.persistence = p
	}
}

// WithGateway injects the remote gateway, skipping the configured URL.
func WithGateway(gw core.Gateway) Option {
	return func(o *options) {
		o.gateway = gw
	}
}

// WithRemote sets the base URL of the remote service.
func WithRemote(url string) Option {
	return func(o *options) {
		o.remoteURL = url
	}
}

// WithAccount starts the session linked to accountID, authenticated with token.
// An empty accountID starts a guest session even if the file names an account.
func WithAccount(accountID, token string) Option {
	return func(o *options) {
		o.account = &accountID
		o.token = token
	}
}

// WithRemoteTimeout bounds each remote call.
func WithRemoteTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithScheduler replaces the in-process reminder timers.
func WithScheduler(s core.ReminderScheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithMediaReleaser replaces the default media cleanup.
func WithMediaReleaser(m core.MediaReleaser) Option {
	return func(o *options) {
		o.media = m
	}
}

// WithNoticeHandler receives every failed remote call after it was handled.
func WithNoticeHandler(fn func(reconcile.Result)) Option {
	return func(o *options) {
		o.notice = fn
	}
}

// WithMustExist fails New when the data directory does not exist yet.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithDevSafety controls the development sandbox. When enabled (the default) and the
// process runs under `go run` or `go test`, data directories outside the system temp
// directory are redirected into it.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}
