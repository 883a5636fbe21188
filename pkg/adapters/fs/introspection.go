package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// KVState exposes internal state for observability.
type KVState struct {
	Path          string     `json:"path"`
	Extension     string     `json:"extension"`
	Writes        int        `json:"writes"`
	LastWrite     *time.Time `json:"last_write,omitempty"`
	WatcherActive bool       `json:"watcher_active"`
}

// State implements introspection.Introspectable.
func (kv *KV) State() any {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	return KVState{
		Path:          kv.Path,
		Extension:     kv.config.Extension,
		Writes:        kv.writes,
		LastWrite:     kv.lastWrite,
		WatcherActive: kv.watcherActive,
	}
}

// ComponentType implements introspection.Component.
func (kv *KV) ComponentType() string {
	return "kv"
}

var _ introspection.Introspectable = (*KV)(nil)
var _ introspection.Component = (*KV)(nil)
