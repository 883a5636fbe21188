package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deyanlaf0409/noteblocks/pkg/adapters/fs"
	"github.com/deyanlaf0409/noteblocks/pkg/core"
	"github.com/deyanlaf0409/noteblocks/pkg/store"
)

// setupKV creates an initialized store under a fresh temp directory.
func setupKV(t *testing.T, opts ...func(*fs.Config)) (*fs.KV, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "data")
	cfg := fs.Config{Path: dir}
	for _, opt := range opts {
		opt(&cfg)
	}

	kv := fs.NewKV(cfg)
	require.NoError(t, kv.Initialize(context.Background()))
	return kv, dir
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		_, dir := setupKV(t)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		kv := fs.NewKV(fs.Config{Path: filepath.Join(t.TempDir(), "nope"), MustExist: true})
		assert.Error(t, kv.Initialize(context.Background()))
	})
}

func TestKV_LoadSave(t *testing.T) {
	ctx := context.Background()
	kv, dir := setupKV(t)

	_, err := kv.Load(ctx, core.KeyNotes)
	require.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, kv.Save(ctx, core.KeyNotes, []byte(`{"version":1}`)))
	data, err := kv.Load(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))

	_, err = os.Stat(filepath.Join(dir, "notes.json"))
	require.NoError(t, err)

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, keys)
}

func TestKV_RejectsPathKeys(t *testing.T) {
	ctx := context.Background()
	kv, _ := setupKV(t)

	for _, key := range []string{"", "..", "../escape", `a\b`} {
		assert.ErrorIs(t, kv.Save(ctx, key, []byte("x")), core.ErrInvalid, key)
	}
}

func TestKV_SaveBatch(t *testing.T) {
	ctx := context.Background()
	kv, _ := setupKV(t, func(c *fs.Config) { c.Extension = "yaml" })

	require.NoError(t, kv.SaveBatch(ctx, map[string][]byte{
		core.KeyNotes:    []byte("a"),
		core.KeyArchived: []byte("b"),
	}))
	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{core.KeyNotes, core.KeyArchived}, keys)

	err = kv.SaveBatch(ctx, map[string][]byte{
		core.KeyNotes: []byte("changed"),
		"bad/key":     []byte("x"),
	})
	require.Error(t, err)
	data, err := kv.Load(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data), "a failed batch writes nothing")

	st := kv.State().(fs.KVState)
	assert.Equal(t, 2, st.Writes)
	assert.Equal(t, ".yaml", st.Extension)
}

func TestKV_BacksStore(t *testing.T) {
	ctx := context.Background()
	kv, _ := setupKV(t)

	s, err := store.Open(ctx, kv)
	require.NoError(t, err)
	n, err := s.AddNote(ctx, "on disk")
	require.NoError(t, err)
	_, err = s.ArchiveNotes(ctx, n.ID)
	require.NoError(t, err)

	reopened, err := store.Open(ctx, fs.NewKV(fs.Config{Path: kv.Path}))
	require.NoError(t, err)
	require.Len(t, reopened.Archived(), 1)
	assert.Equal(t, "on disk", reopened.Archived()[0].Text)
	assert.Empty(t, reopened.Notes())
}

func TestKV_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	kv, dir := setupKV(t)

	events, err := kv.Watch(ctx, "notes")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return kv.State().(fs.KVState).WatcherActive }, time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "folders.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0644))
	require.NoError(t, kv.Save(ctx, core.KeyNotes, []byte("{}")))

	select {
	case e := <-events:
		assert.Equal(t, "notes", e.Key)
		assert.Equal(t, fs.EventWrite, e.Op)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for watch event")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestKV_WatchRejectsBadPattern(t *testing.T) {
	kv, _ := setupKV(t)
	_, err := kv.Watch(context.Background(), "[")
	assert.Error(t, err)
}
