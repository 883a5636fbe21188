package reconcile

import (
	"context"
	"errors"
	"strings"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
	"github.com/deyanlaf0409/noteblocks/pkg/store"
)

// CreateNote adds a note and pushes it to the account.
func (r *Reconciler) CreateNote(ctx context.Context, text string) (core.Note, error) {
	var n core.Note
	err := r.Submit(ctx, Command{
		Kind: KindCreate,
		Local: func(ctx context.Context, s *store.Store) error {
			var err error
			n, err = s.AddNote(ctx, text)
			return err
		},
		Remote: func(ctx context.Context, gw core.Gateway, accountID string) error {
			return gw.CreateNote(ctx, n, accountID)
		},
	})
	return n, err
}

// UpdateNote edits an active note and pushes the new version.
func (r *Reconciler) UpdateNote(ctx context.Context, id string, mutate func(*core.Note)) (core.Note, error) {
	var n core.Note
	err := r.Submit(ctx, Command{
		Kind:   KindUpdate,
		Target: id,
		Local: func(ctx context.Context, s *store.Store) error {
			var err error
			n, err = s.UpdateNote(ctx, id, mutate)
			return err
		},
		Remote: func(ctx context.Context, gw core.Gateway, _ string) error {
			return gw.UpdateNote(ctx, n)
		},
	})
	return n, err
}

// ArchiveNotes archives a batch of notes; each archived note is pushed as an update.
func (r *Reconciler) ArchiveNotes(ctx context.Context, ids ...string) ([]core.Note, error) {
	var moved []core.Note
	cmd := Command{
		Kind:   KindArchive,
		Target: strings.Join(ids, ","),
		Local: func(ctx context.Context, s *store.Store) error {
			var err error
			moved, err = s.ArchiveNotes(ctx, ids...)
			return err
		},
		Remote: func(ctx context.Context, gw core.Gateway, _ string) error {
			return updateAll(ctx, gw, moved)
		},
	}
	if err := r.Submit(ctx, cmd); err != nil {
		return moved, err
	}
	return moved, nil
}

// RestoreNote moves an archived note back to the active set and pushes it.
func (r *Reconciler) RestoreNote(ctx context.Context, id string) (core.Note, error) {
	var n core.Note
	err := r.Submit(ctx, Command{
		Kind:   KindRestore,
		Target: id,
		Local: func(ctx context.Context, s *store.Store) error {
			var err error
			n, err = s.RestoreNote(ctx, id)
			return err
		},
		Remote: func(ctx context.Context, gw core.Gateway, _ string) error {
			return gw.UpdateNote(ctx, n)
		},
	})
	return n, err
}

// DeleteArchivedNote permanently deletes an archived note, releases its media and
// deletes it remotely.
func (r *Reconciler) DeleteArchivedNote(ctx context.Context, id string) (core.Note, error) {
	var n core.Note
	err := r.Submit(ctx, Command{
		Kind:   KindDelete,
		Target: id,
		Local: func(ctx context.Context, s *store.Store) error {
			var err error
			n, err = s.DeleteArchivedNote(ctx, id)
			if n.ID != "" && len(n.Media) > 0 && r.opts.media != nil {
				if rerr := r.opts.media.Release(ctx, n.Media); rerr != nil {
					r.opts.logger.Warn("failed to release media", "id", id, "error", rerr)
				}
			}
			return err
		},
		Remote: func(ctx context.Context, gw core.Gateway, _ string) error {
			return gw.DeleteNote(ctx, id)
		},
	})
	return n, err
}

// ToggleHighlight flips the highlight flag. If the remote update fails the flag is
// flipped again, so failed toggles undo each other in any completion order.
func (r *Reconciler) ToggleHighlight(ctx context.Context, id string) (core.Note, error) {
	var n core.Note
	err := r.Submit(ctx, Command{
		Kind:   KindHighlight,
		Target: id,
		Local: func(ctx context.Context, s *store.Store) error {
			var err error
			n, err = s.ToggleHighlight(ctx, id)
			return err
		},
		Remote: func(ctx context.Context, gw core.Gateway, _ string) error {
			return gw.UpdateNote(ctx, n)
		},
		Revert: func(ctx context.Context, s *store.Store) error {
			_, err := s.ToggleHighlight(ctx, id)
			return err
		},
	})
	return n, err
}

// AddFolder creates a folder and pushes it to the account.
func (r *Reconciler) AddFolder(ctx context.Context, name string) (core.Folder, error) {
	var f core.Folder
	err := r.Submit(ctx, Command{
		Kind: KindFolderCreate,
		Local: func(ctx context.Context, s *store.Store) error {
			var err error
			f, err = s.AddFolder(ctx, name)
			return err
		},
		Remote: func(ctx context.Context, gw core.Gateway, accountID string) error {
			return gw.CreateFolder(ctx, f, accountID)
		},
	})
	return f, err
}

// RenameFolder renames a folder locally. The remote service has no folder update, so
// nothing is dispatched.
func (r *Reconciler) RenameFolder(ctx context.Context, id, name string) (core.Folder, error) {
	var f core.Folder
	err := r.Submit(ctx, Command{
		Kind:   KindFolderRename,
		Target: id,
		Local: func(ctx context.Context, s *store.Store) error {
			var err error
			f, err = s.RenameFolder(ctx, id, name)
			return err
		},
	})
	return f, err
}

// DeleteFolder removes a folder, unfiles its notes and pushes both changes.
func (r *Reconciler) DeleteFolder(ctx context.Context, id string) ([]core.Note, error) {
	var unfiled []core.Note
	err := r.Submit(ctx, Command{
		Kind:   KindFolderDelete,
		Target: id,
		Local: func(ctx context.Context, s *store.Store) error {
			var err error
			_, unfiled, err = s.DeleteFolder(ctx, id)
			return err
		},
		Remote: func(ctx context.Context, gw core.Gateway, _ string) error {
			if err := gw.DeleteFolder(ctx, id); err != nil {
				return err
			}
			return updateAll(ctx, gw, unfiled)
		},
	})
	return unfiled, err
}

func updateAll(ctx context.Context, gw core.Gateway, notes []core.Note) error {
	var errs []error
	for _, n := range notes {
		if err := gw.UpdateNote(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
