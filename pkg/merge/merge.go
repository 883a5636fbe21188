// Package merge links a guest session to a remote account.
//
// Linking unions the notes and folders collected while anonymous with the account's
// remote data, deduplicating by id, and pushes the union back in the background.
package merge

import (
	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

// MergeNotes unions guest and server notes by id. Output keeps first-seen id order and
// the server copy replaces the guest copy on collision. Records without an id are dropped.
func MergeNotes(guest, server []core.Note) []core.Note {
	return mergeByID(guest, server, func(n core.Note) string { return n.ID }, core.Note.Clone)
}

// MergeFolders unions guest and server folders with the same rules as MergeNotes.
func MergeFolders(guest, server []core.Folder) []core.Folder {
	return mergeByID(guest, server, func(f core.Folder) string { return f.ID }, func(f core.Folder) core.Folder { return f })
}

func mergeByID[T any](guest, server []T, id func(T) string, clone func(T) T) []T {
	index := make(map[string]int, len(guest)+len(server))
	out := make([]T, 0, len(guest)+len(server))
	add := func(v T) {
		key := id(v)
		if key == "" {
			return
		}
		if i, ok := index[key]; ok {
			out[i] = clone(v)
			return
		}
		index[key] = len(out)
		out = append(out, clone(v))
	}
	for _, v := range guest {
		add(v)
	}
	for _, v := range server {
		add(v)
	}
	return out
}

// collisions counts guest ids that the server also holds.
func collisions(guest, server []core.Note) int {
	ids := make(map[string]bool, len(server))
	for _, n := range server {
		ids[n.ID] = true
	}
	count := 0
	for _, n := range guest {
		if ids[n.ID] {
			count++
		}
	}
	return count
}
