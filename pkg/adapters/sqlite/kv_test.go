package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deyanlaf0409/noteblocks/pkg/adapters/sqlite"
	"github.com/deyanlaf0409/noteblocks/pkg/core"
	"github.com/deyanlaf0409/noteblocks/pkg/store"
)

func openKV(t *testing.T, path string) *sqlite.KV {
	t.Helper()
	kv, err := sqlite.Open(context.Background(), sqlite.Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestKV(t *testing.T) {
	ctx := context.Background()
	kv := openKV(t, filepath.Join(t.TempDir(), "notes.db"))

	_, err := kv.Load(ctx, core.KeyNotes)
	require.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, kv.Save(ctx, core.KeyNotes, []byte("one")))
	require.NoError(t, kv.Save(ctx, core.KeyNotes, []byte("two")))
	data, err := kv.Load(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	require.ErrorIs(t, kv.Save(ctx, "", []byte("x")), core.ErrInvalid)
}

func TestKV_SaveBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	kv := openKV(t, filepath.Join(t.TempDir(), "notes.db"))

	require.NoError(t, kv.SaveBatch(ctx, map[string][]byte{
		core.KeyNotes:    []byte("a"),
		core.KeyArchived: []byte("b"),
	}))

	err := kv.SaveBatch(ctx, map[string][]byte{
		core.KeyNotes: []byte("changed"),
		"":            []byte("bad"),
	})
	require.Error(t, err)

	data, err := kv.Load(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, core.KeyArchived)
}

func TestKV_BacksStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.db")

	kv := openKV(t, path)
	s, err := store.Open(ctx, kv)
	require.NoError(t, err)
	_, err = s.AddFolder(ctx, "Inbox")
	require.NoError(t, err)
	_, err = s.AddNote(ctx, "persisted")
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	reopened, err := store.Open(ctx, openKV(t, path))
	require.NoError(t, err)
	require.Len(t, reopened.Notes(), 1)
	assert.Equal(t, "persisted", reopened.Notes()[0].Text)
	assert.Len(t, reopened.Folders(), 1)
}
