// Package fs stores each persistence key as one file in a directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

// Config holds the configuration for the filesystem store.
type Config struct {
	Path      string
	Extension string // file extension for every key, e.g. ".json"
	MustExist bool
	Logger    *slog.Logger
}

// KV implements core.BatchPersistence on top of a directory.
type KV struct {
	Path   string
	config Config

	mu            sync.RWMutex
	writes        int
	lastWrite     *time.Time
	watcherActive bool
}

// NewKV creates a filesystem-backed key-value store.
func NewKV(config Config) *KV {
	if config.Extension == "" {
		config.Extension = ".json"
	}
	if !strings.HasPrefix(config.Extension, ".") {
		config.Extension = "." + config.Extension
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &KV{Path: config.Path, config: config}
}

// Initialize creates the data directory, or checks it exists when MustExist is set.
func (kv *KV) Initialize(ctx context.Context) error {
	if kv.config.MustExist {
		info, err := os.Stat(kv.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", kv.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat data path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", kv.Path)
		}
		return nil
	}

	if err := os.MkdirAll(kv.Path, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func (kv *KV) filename(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid key %q: %w", key, core.ErrInvalid)
	}
	return filepath.Join(kv.Path, key+kv.config.Extension), nil
}

// Load implements core.Persistence.
func (kv *KV) Load(ctx context.Context, key string) ([]byte, error) {
	name, err := kv.filename(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Save implements core.Persistence.
func (kv *KV) Save(ctx context.Context, key string, data []byte) error {
	name, err := kv.filename(key)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(name, data, 0644); err != nil {
		return err
	}
	kv.recordWrite(1)
	return nil
}

// SaveBatch implements core.BatchPersistence. Every entry is staged to a temp file
// first; nothing is renamed into place unless all of them were written.
func (kv *KV) SaveBatch(ctx context.Context, entries map[string][]byte) error {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	type staged struct{ tmp, target string }
	files := make([]staged, 0, len(keys))
	cleanup := func() {
		for _, f := range files {
			os.Remove(f.tmp)
		}
	}

	for _, key := range keys {
		name, err := kv.filename(key)
		if err != nil {
			cleanup()
			return err
		}
		tmp, err := stageFile(name, entries[key], 0644)
		if err != nil {
			cleanup()
			return fmt.Errorf("failed to stage %s: %w", key, err)
		}
		files = append(files, staged{tmp: tmp, target: name})
	}

	for i, f := range files {
		if err := os.Rename(f.tmp, f.target); err != nil {
			cleanup()
			return fmt.Errorf("failed to commit %s (%d of %d written): %w", keys[i], i, len(files), err)
		}
	}
	kv.recordWrite(len(files))
	return nil
}

// Keys lists the keys currently stored.
func (kv *KV) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(kv.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || isTempFile(e.Name()) || filepath.Ext(e.Name()) != kv.config.Extension {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), kv.config.Extension))
	}
	return keys, nil
}

func (kv *KV) recordWrite(n int) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	now := time.Now()
	kv.writes += n
	kv.lastWrite = &now
}

func (kv *KV) setWatcherActive(active bool) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.watcherActive = active
}

var _ core.BatchPersistence = (*KV)(nil)
