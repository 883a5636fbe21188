package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/lifecycle"

	"github.com/deyanlaf0409/noteblocks/pkg/adapters/fs"
	"github.com/deyanlaf0409/noteblocks/pkg/adapters/memory"
	"github.com/deyanlaf0409/noteblocks/pkg/adapters/reminder"
	"github.com/deyanlaf0409/noteblocks/pkg/adapters/rest"
	"github.com/deyanlaf0409/noteblocks/pkg/adapters/sqlite"
	"github.com/deyanlaf0409/noteblocks/pkg/codec"
	"github.com/deyanlaf0409/noteblocks/pkg/core"
	"github.com/deyanlaf0409/noteblocks/pkg/merge"
	"github.com/deyanlaf0409/noteblocks/pkg/reconcile"
	"github.com/deyanlaf0409/noteblocks/pkg/store"
)

// ErrNoRemote is returned by operations that need a remote service when none is configured.
var ErrNoRemote = errors.New("no remote service configured")

// Client wires the store, the reconciler and the merger for one data directory.
type Client struct {
	Store      *store.Store
	Reconciler *reconcile.Reconciler
	Merger     *merge.Merger

	dir         string
	config      Config
	session     *Session
	gateway     core.Gateway
	persistence core.Persistence
	closers     []io.Closer
	opts        *options
}

// New opens the data directory dir. Options override noteblocks.yaml.
func New(ctx context.Context, dir string, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if IsDevRun() {
		dir = ResolveDataDir(dir, o.devSafety)
		o.logger.Debug("development run", "sandbox", o.devSafety, "dir", dir)
	}
	if o.mustExist {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("data directory does not exist: %s", dir)
		}
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		return nil, err
	}
	applyOverrides(&cfg, o)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Client{dir: dir, config: cfg, session: &Session{}, opts: o}

	format, err := codec.Lookup(cfg.Format)
	if err != nil {
		return nil, err
	}

	c.persistence = o.persistence
	if c.persistence == nil {
		if c.persistence, err = c.openPersistence(ctx, format); err != nil {
			return nil, err
		}
	}

	scheduler := o.scheduler
	if scheduler == nil {
		timers := reminder.New(func(r reminder.Reminder) {
			o.logger.Info("reminder due", "id", r.NoteID, "text", r.Text, "at", r.At)
		}, reminder.WithLogger(o.logger))
		c.closers = append(c.closers, timers)
		scheduler = timers
	}

	c.Store, err = store.Open(ctx, c.persistence,
		store.WithFormat(format),
		store.WithScheduler(scheduler),
		store.WithLogger(o.logger),
	)
	if err != nil {
		c.closeAll()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	c.gateway = o.gateway
	if c.gateway == nil && cfg.Remote.URL != "" {
		c.gateway = rest.NewClient(rest.Config{
			BaseURL: cfg.Remote.URL,
			Token:   cfg.Remote.Token,
			Logger:  o.logger,
		})
	}
	if c.gateway != nil {
		c.session.set(cfg.Remote.Account)
	}

	media := o.media
	if media == nil {
		media = MediaDir(filepath.Join(dir, "media"))
	}

	recOpts := []reconcile.Option{
		reconcile.WithLogger(o.logger),
		reconcile.WithRemoteTimeout(cfg.Remote.Timeout),
		reconcile.WithMediaReleaser(media),
	}
	if o.notice != nil {
		recOpts = append(recOpts, reconcile.WithNoticeHandler(o.notice))
	}
	c.Reconciler = reconcile.New(c.Store, c.gateway, c.session, recOpts...)
	c.Merger = merge.New(c.Store, c.gateway,
		merge.WithLogger(o.logger),
		merge.WithRemoteTimeout(cfg.Remote.Timeout),
	)

	o.logger.Debug("client ready",
		"dir", dir, "storage", cfg.Storage, "format", cfg.Format, "account", c.session.AccountID())
	return c, nil
}

func applyOverrides(cfg *Config, o *options) {
	if o.storage != "" {
		cfg.Storage = o.storage
	}
	if o.format != "" {
		cfg.Format = o.format
	}
	if o.remoteURL != "" {
		cfg.Remote.URL = o.remoteURL
	}
	if o.account != nil {
		cfg.Remote.Account = *o.account
		cfg.Remote.Token = o.token
	}
	if o.timeout > 0 {
		cfg.Remote.Timeout = o.timeout
	}
}

func (c *Client) openPersistence(ctx context.Context, format codec.Format) (core.Persistence, error) {
	switch c.config.Storage {
	case StorageFS:
		kv := fs.NewKV(fs.Config{
			Path:      c.dir,
			Extension: "." + format.Name(),
			MustExist: c.opts.mustExist,
			Logger:    c.opts.logger,
		})
		if err := kv.Initialize(ctx); err != nil {
			return nil, err
		}
		return kv, nil
	case StorageSQLite:
		if err := os.MkdirAll(c.dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		kv, err := sqlite.Open(ctx, sqlite.Config{Path: filepath.Join(c.dir, "noteblocks.db"), Logger: c.opts.logger})
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, kv)
		return kv, nil
	case StorageMemory:
		return memory.NewKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", c.config.Storage)
	}
}

// Dir returns the data directory.
func (c *Client) Dir() string {
	return c.dir
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// Account returns the linked account id, or "" for a guest session.
func (c *Client) Account() string {
	return c.session.AccountID()
}

// Login merges the local collection into accountID and links the session to it.
// Until Login succeeds the session stays a guest and nothing is sent remotely.
func (c *Client) Login(ctx context.Context, accountID string) (merge.Outcome, error) {
	if c.gateway == nil {
		return merge.Outcome{}, ErrNoRemote
	}
	if _, err := c.Reconciler.Settle(ctx); err != nil {
		return merge.Outcome{}, err
	}

	out, err := c.Merger.Link(ctx, accountID)
	if err != nil && !errors.Is(err, core.ErrPersistence) {
		return out, err
	}
	c.session.set(accountID)
	c.config.Remote.Account = accountID
	return out, err
}

// Logout turns the session back into a guest session. Local data is kept.
func (c *Client) Logout() {
	c.session.set("")
	c.config.Remote.Account = ""
	c.config.Remote.Token = ""
}

// Watch reports changes made to the data files by other processes.
func (c *Client) Watch(ctx context.Context, pattern string) (<-chan fs.Event, error) {
	kv, ok := c.persistence.(*fs.KV)
	if !ok {
		return nil, fmt.Errorf("storage %q cannot be watched", c.config.Storage)
	}
	return kv.Watch(ctx, pattern)
}

// WatchSource wraps Watch as a lifecycle.Source.
func (c *Client) WatchSource(ctx context.Context, pattern string) (lifecycle.Source, error) {
	events, err := c.Watch(ctx, pattern)
	if err != nil {
		return nil, err
	}
	return fs.NewSource(events), nil
}

// Close waits for in-flight remote work and releases resources.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	if _, err := c.Reconciler.Settle(ctx); err != nil {
		errs = append(errs, err)
	}
	if report, err := c.Merger.Wait(ctx); err != nil {
		errs = append(errs, err)
	} else if perr := report.Err(); perr != nil {
		c.opts.logger.Warn("account push incomplete", "failures", len(report.Failures))
	}
	if err := c.closeAll(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Client) closeAll() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
