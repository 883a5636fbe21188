package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deyanlaf0409/noteblocks/pkg/adapters/memory"
	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

func TestFolders(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV()
	s := openStore(t, kv)

	_, err := s.AddFolder(ctx, "   ")
	require.ErrorIs(t, err, core.ErrInvalid)

	work, err := s.AddFolder(ctx, " Work ")
	require.NoError(t, err)
	assert.Equal(t, "Work", work.Name)

	renamed, err := s.RenameFolder(ctx, work.ID, "Job")
	require.NoError(t, err)
	assert.Equal(t, "Job", renamed.Name)

	_, err = s.RenameFolder(ctx, "missing", "x")
	require.ErrorIs(t, err, core.ErrNotFound)

	got, ok := openStore(t, kv).Folder(work.ID)
	require.True(t, ok)
	assert.Equal(t, "Job", got.Name)
}

func TestDeleteFolder_UnfilesMembers(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, memory.NewKV())

	f, err := s.AddFolder(ctx, "Trip")
	require.NoError(t, err)

	filed, err := s.AddNote(ctx, "passport")
	require.NoError(t, err)
	_, err = s.UpdateNote(ctx, filed.ID, func(n *core.Note) { n.FolderID = core.StringPtr(f.ID) })
	require.NoError(t, err)

	archived, err := s.AddNote(ctx, "tickets")
	require.NoError(t, err)
	_, err = s.UpdateNote(ctx, archived.ID, func(n *core.Note) { n.FolderID = core.StringPtr(f.ID) })
	require.NoError(t, err)
	_, err = s.ArchiveNotes(ctx, archived.ID)
	require.NoError(t, err)

	loose, err := s.AddNote(ctx, "groceries")
	require.NoError(t, err)

	assert.Len(t, s.NotesInFolder(f.ID), 1)

	deleted, unfiled, err := s.DeleteFolder(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f, deleted)
	assert.ElementsMatch(t, []string{filed.ID, archived.ID}, ids(unfiled))
	for _, n := range unfiled {
		assert.Nil(t, n.FolderID)
	}

	assert.Empty(t, s.Folders())
	assert.Empty(t, s.NotesInFolder(f.ID))
	got, ok := s.Note(loose.ID)
	require.True(t, ok)
	assert.Equal(t, loose.DateModified, got.DateModified, "unrelated notes are untouched")

	_, _, err = s.DeleteFolder(ctx, f.ID)
	require.ErrorIs(t, err, core.ErrNotFound)
}
