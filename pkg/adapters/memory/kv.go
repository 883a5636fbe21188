package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

// KV is an in-memory core.BatchPersistence.
type KV struct {
	mu      sync.Mutex
	data    map[string][]byte
	saveErr error
	saves   int
}

// NewKV returns an empty store.
func NewKV() *KV {
	return &KV{data: make(map[string][]byte)}
}

// Load implements core.Persistence.
func (kv *KV) Load(ctx context.Context, key string) ([]byte, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	data, ok := kv.data[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return slices.Clone(data), nil
}

// Save implements core.Persistence.
func (kv *KV) Save(ctx context.Context, key string, data []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if kv.saveErr != nil {
		return kv.saveErr
	}
	kv.data[key] = slices.Clone(data)
	kv.saves++
	return nil
}

// SaveBatch implements core.BatchPersistence.
func (kv *KV) SaveBatch(ctx context.Context, entries map[string][]byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if kv.saveErr != nil {
		return kv.saveErr
	}
	for key, data := range entries {
		kv.data[key] = slices.Clone(data)
	}
	kv.saves++
	return nil
}

// FailSaves makes every following write fail with err. Pass nil to recover.
func (kv *KV) FailSaves(err error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.saveErr = err
}

// Put stores raw bytes under key, bypassing failure injection.
func (kv *KV) Put(key string, data []byte) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.data[key] = slices.Clone(data)
}

// Raw returns the bytes stored under key.
func (kv *KV) Raw(key string) ([]byte, bool) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	data, ok := kv.data[key]
	return slices.Clone(data), ok
}

// Saves returns the number of successful writes (a batch counts once).
func (kv *KV) Saves() int {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.saves
}

var _ core.BatchPersistence = (*KV)(nil)
