package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// EventOp is the kind of change observed on a key.
type EventOp string

const (
	EventWrite  EventOp = "write"
	EventRemove EventOp = "remove"
)

// Event reports that the file behind a key changed on disk.
type Event struct {
	Key  string
	Op   EventOp
	Time time.Time
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Op, e.Key)
}

const debounceDelay = 50 * time.Millisecond

// Watch reports changes to keys matching pattern (a doublestar glob over key names, "*"
// when empty). The channel is closed when ctx is done or the watcher fails.
func (kv *KV) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(kv.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", kv.Path, err)
	}

	events := make(chan Event, 16)
	w := &watchWorker{
		kv:        kv,
		pattern:   pattern,
		events:    events,
		watcher:   watcher,
		debouncer: newDebouncer(debounceDelay),
	}
	kv.setWatcherActive(true)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		kv.config.Logger.Error("watcher stopped", "path", kv.Path, "error", err)
	}))
	return events, nil
}

type watchWorker struct {
	kv        *KV
	pattern   string
	events    chan Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.kv.config.Logger.Enabled(ctx, slog.LevelDebug) {
				w.kv.config.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			}
		}
	}()
	defer close(w.events)
	defer w.kv.setWatcherActive(false)

	// Pending sends observe runCtx, so cancelling it unblocks them before the close.
	runCtx, cancel := context.WithCancel(ctx)
	err = w.loop(runCtx)
	_ = w.watcher.Close()
	cancel()
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchWorker) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.process(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.kv.config.Logger.Error("fsnotify error", "error", wErr)
		}
	}
}

// process maps a filesystem event to a key event, dropping temp files, foreign
// extensions and keys outside the pattern.
func (w *watchWorker) process(ctx context.Context, event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if isTempFile(name) || filepath.Ext(name) != w.kv.config.Extension {
		return
	}
	key := strings.TrimSuffix(name, w.kv.config.Extension)
	if ok, _ := doublestar.Match(w.pattern, key); !ok {
		return
	}

	var op EventOp
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		op = EventWrite
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = EventRemove
	default:
		return
	}

	w.kv.config.Logger.Debug("key changed", "key", key, "op", op)
	e := Event{Key: key, Op: op, Time: time.Now()}
	w.debouncer.add(key, func() {
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}
