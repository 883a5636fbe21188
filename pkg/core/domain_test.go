package core_test

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

func noteGen() *rapid.Generator[core.Note] {
	return rapid.Custom(func(t *rapid.T) core.Note {
		return core.Note{
			ID:           fmt.Sprintf("n-%d", rapid.IntRange(0, 50).Draw(t, "id")),
			Highlighted:  rapid.Bool().Draw(t, "highlighted"),
			DateModified: time.Unix(rapid.Int64Range(0, 20).Draw(t, "modified"), 0).UTC(),
		}
	})
}

func TestSortNotes_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := rapid.SliceOf(noteGen()).Draw(t, "notes")

		once := slices.Clone(notes)
		core.SortNotes(once)
		twice := slices.Clone(once)
		core.SortNotes(twice)

		if !slices.EqualFunc(once, twice, func(a, b core.Note) bool { return a.ID == b.ID && a.DateModified.Equal(b.DateModified) }) {
			t.Fatalf("sorting twice changed the order")
		}

		seenPlain := false
		for i, n := range once {
			if !n.Highlighted {
				seenPlain = true
			} else if seenPlain {
				t.Fatalf("highlighted note %s at %d follows a plain note", n.ID, i)
			}
			if i > 0 && once[i-1].Highlighted == n.Highlighted && once[i-1].DateModified.Before(n.DateModified) {
				t.Fatalf("note %s is newer than its predecessor within the same group", n.ID)
			}
		}
	})
}

func TestSortNotes_HighlightBeatsRecency(t *testing.T) {
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	notes := []core.Note{
		{ID: "plain-new", DateModified: recent},
		{ID: "pinned-old", DateModified: old, Highlighted: true},
		{ID: "plain-old", DateModified: old},
	}
	core.SortNotes(notes)

	ids := []string{notes[0].ID, notes[1].ID, notes[2].ID}
	assert.Equal(t, []string{"pinned-old", "plain-new", "plain-old"}, ids)
}

func TestNote_CloneIsDeep(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	orig := core.Note{
		ID:           "a",
		ReminderDate: core.TimePtr(at),
		FolderID:     core.StringPtr("f1"),
		Media:        []string{"file:///a.png"},
	}

	c := orig.Clone()
	*c.FolderID = "f2"
	*c.ReminderDate = at.Add(time.Hour)
	c.Media[0] = "changed"

	assert.Equal(t, "f1", *orig.FolderID)
	assert.True(t, orig.ReminderDate.Equal(at))
	assert.Equal(t, "file:///a.png", orig.Media[0])
	assert.True(t, orig.InFolder("f1"))
	assert.False(t, c.InFolder("f1"))
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, core.Note{}.Validate(), core.ErrInvalid)
	require.NoError(t, core.Note{ID: "x"}.Validate())
	require.ErrorIs(t, core.Folder{Name: "no id"}.Validate(), core.ErrInvalid)
}

func TestRemoteError(t *testing.T) {
	err := fmt.Errorf("push: %w", &core.RemoteError{Op: "update_note", Status: 404, Message: "note not found"})
	assert.True(t, core.IsRemote(err))
	assert.Contains(t, err.Error(), "status 404")
	assert.False(t, core.IsRemote(core.ErrNotFound))
}
