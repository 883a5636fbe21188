package noteblocks

import (
	"context"
	"log/slog"
	"time"

	"github.com/deyanlaf0409/noteblocks/internal/platform"
	"github.com/deyanlaf0409/noteblocks/pkg/core"
	"github.com/deyanlaf0409/noteblocks/pkg/reconcile"
)

// --- Types ---

// Client is a public alias for the wired note engine.
type Client = platform.Client

// Config is a public alias for the configuration stored in noteblocks.yaml.
type Config = platform.Config

// RemoteConfig is a public alias for the remote section of Config.
type RemoteConfig = platform.RemoteConfig

// Storage backends accepted by WithStorage and Config.Storage.
const (
	StorageFS     = platform.StorageFS
	StorageSQLite = platform.StorageSQLite
	StorageMemory = platform.StorageMemory
)

// ConfigFile and DataDir name the files FindRoot looks for.
const (
	ConfigFile = platform.ConfigFile
	DataDir    = platform.DataDir
)

var (
	// ErrNoRemote is returned by Login when no remote service is configured.
	ErrNoRemote = platform.ErrNoRemote
	// ErrNoRoot is returned by FindRoot when no data directory exists.
	ErrNoRoot = platform.ErrNoRoot
)

// --- Configuration ---

// Option defines a functional option for configuring a Client.
type Option = platform.Option

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage selects the persistence backend by name.
func WithStorage(name string) Option {
	return platform.WithStorage(name)
}

// WithFormat selects the encoding of persisted collections ("json" or "yaml").
func WithFormat(name string) Option {
	return platform.WithFormat(name)
}

// WithPersistence injects a custom persistence layer.
func WithPersistence(p core.Persistence) Option {
	return platform.WithPersistence(p)
}

// WithGateway injects a custom remote gateway.
func WithGateway(gw core.Gateway) Option {
	return platform.WithGateway(gw)
}

// WithRemote sets the base URL of the remote service.
func WithRemote(url string) Option {
	return platform.WithRemote(url)
}

// WithAccount starts the session linked to accountID.
func WithAccount(accountID, token string) Option {
	return platform.WithAccount(accountID, token)
}

// WithRemoteTimeout bounds each remote call.
func WithRemoteTimeout(d time.Duration) Option {
	return platform.WithRemoteTimeout(d)
}

// WithScheduler replaces the in-process reminder timers.
func WithScheduler(s core.ReminderScheduler) Option {
	return platform.WithScheduler(s)
}

// WithMediaReleaser replaces the default media cleanup.
func WithMediaReleaser(m core.MediaReleaser) Option {
	return platform.WithMediaReleaser(m)
}

// WithNoticeHandler receives every failed remote call.
func WithNoticeHandler(fn func(reconcile.Result)) Option {
	return platform.WithNoticeHandler(fn)
}

// WithMustExist fails New when the data directory does not exist yet.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithDevSafety controls the sandbox applied to `go run` and `go test` processes.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New opens the data directory dir.
func New(ctx context.Context, dir string, opts ...Option) (*Client, error) {
	return platform.New(ctx, dir, opts...)
}

// FindRoot looks upwards from dir for a data directory.
func FindRoot(dir string) (string, error) {
	return platform.FindRoot(dir)
}

// LoadConfig reads the configuration of a data directory.
func LoadConfig(dir string) (Config, error) {
	return platform.LoadConfig(dir)
}

// SaveConfig writes the configuration of a data directory.
func SaveConfig(dir string, cfg Config) error {
	return platform.SaveConfig(dir, cfg)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// ResolveDataDir returns the directory New opens for userPath.
func ResolveDataDir(userPath string, sandbox bool) string {
	return platform.ResolveDataDir(userPath, sandbox)
}
