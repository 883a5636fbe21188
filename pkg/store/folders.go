package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

func folderIndex(folders []core.Folder, id string) int {
	return slices.IndexFunc(folders, func(f core.Folder) bool { return f.ID == id })
}

// AddFolder creates a folder with a fresh id.
func (s *Store) AddFolder(ctx context.Context, name string) (core.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Folder{}, fmt.Errorf("folder name cannot be empty: %w", core.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := core.Folder{ID: s.opts.newID(), Name: name}
	s.folders = append(s.folders, f)
	return f, s.persist(ctx, core.KeyFolders)
}

// RenameFolder changes the display name of a folder.
func (s *Store) RenameFolder(ctx context.Context, id, name string) (core.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Folder{}, fmt.Errorf("folder name cannot be empty: %w", core.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := folderIndex(s.folders, id)
	if i < 0 {
		return core.Folder{}, fmt.Errorf("folder %s: %w", id, core.ErrNotFound)
	}
	s.folders[i].Name = name
	return s.folders[i], s.persist(ctx, core.KeyFolders)
}

// DeleteFolder removes a folder and unfiles every note that referenced it, active or
// archived. The unfiled notes are returned with their new state.
func (s *Store) DeleteFolder(ctx context.Context, id string) (core.Folder, []core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := folderIndex(s.folders, id)
	if i < 0 {
		return core.Folder{}, nil, fmt.Errorf("folder %s: %w", id, core.ErrNotFound)
	}
	f := s.folders[i]
	s.folders = slices.Delete(s.folders, i, i+1)

	now := s.now()
	keys := []string{core.KeyFolders}
	var unfiled []core.Note

	unfile := func(notes []core.Note, key string) {
		touched := false
		for j := range notes {
			if !notes[j].InFolder(id) {
				continue
			}
			notes[j].FolderID = nil
			notes[j].DateModified = now
			unfiled = append(unfiled, notes[j].Clone())
			touched = true
		}
		if touched {
			core.SortNotes(notes)
			keys = append(keys, key)
		}
	}
	unfile(s.active, core.KeyNotes)
	unfile(s.archived, core.KeyArchived)

	return f, unfiled, s.persist(ctx, keys...)
}

// Folders returns all folders in creation order.
func (s *Store) Folders() []core.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.folders)
}

// Folder looks a folder up by id.
func (s *Store) Folder(id string) (core.Folder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := folderIndex(s.folders, id); i >= 0 {
		return s.folders[i], true
	}
	return core.Folder{}, false
}
