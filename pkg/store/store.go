// Package store is the authoritative in-process collection of notes and folders.
//
// Every mutation is applied in memory and then the affected partitions are written
// through the injected core.Persistence before the call returns. All entry points are
// serialized, so set membership and persisted bytes never diverge mid-mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/deyanlaf0409/noteblocks/pkg/codec"
	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

// Store owns the active notes, the archived notes and the folders.
type Store struct {
	mu       sync.Mutex
	db       core.Persistence
	opts     *options
	active   []core.Note
	archived []core.Note
	folders  []core.Folder

	loadSkipped int
	lastFault   error
}

// Open constructs a store and loads its three partitions from db.
// A partition whose bytes cannot be decoded starts empty; only read faults are returned.
func Open(ctx context.Context, db core.Persistence, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("store requires a persistence layer")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	s := &Store{db: db, opts: o}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	active, err := s.loadNotes(ctx, core.KeyNotes)
	if err != nil {
		return err
	}
	archived, err := s.loadNotes(ctx, core.KeyArchived)
	if err != nil {
		return err
	}

	data, err := s.readKey(ctx, core.KeyFolders)
	if err != nil {
		return err
	}
	var folders []core.Folder
	if data != nil {
		var skipped int
		folders, skipped, err = codec.DecodeFolders(s.opts.format, data)
		if err != nil {
			s.opts.logger.Warn("discarding unreadable folders", "key", core.KeyFolders, "error", err)
			folders = nil
		}
		s.loadSkipped += skipped
	}

	// Ids must be unique across both note partitions; the active copy wins.
	seen := make(map[string]bool)
	s.active = s.active[:0]
	for _, n := range active {
		if seen[n.ID] {
			s.loadSkipped++
			continue
		}
		seen[n.ID] = true
		n.Archived = false
		s.active = append(s.active, n)
	}
	s.archived = s.archived[:0]
	for _, n := range archived {
		if seen[n.ID] {
			s.loadSkipped++
			continue
		}
		seen[n.ID] = true
		n.Archived = true
		n.ReminderDate = nil
		s.archived = append(s.archived, n)
	}

	folderSeen := make(map[string]bool)
	for _, f := range folders {
		if folderSeen[f.ID] {
			s.loadSkipped++
			continue
		}
		folderSeen[f.ID] = true
		s.folders = append(s.folders, f)
	}

	core.SortNotes(s.active)
	core.SortNotes(s.archived)

	if s.loadSkipped > 0 {
		s.opts.logger.Warn("skipped unreadable records on load", "count", s.loadSkipped)
	}
	s.opts.logger.Debug("store loaded",
		"active", len(s.active), "archived", len(s.archived), "folders", len(s.folders))
	return nil
}

func (s *Store) readKey(ctx context.Context, key string) ([]byte, error) {
	data, err := s.db.Load(ctx, key)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) loadNotes(ctx context.Context, key string) ([]core.Note, error) {
	data, err := s.readKey(ctx, key)
	if err != nil || data == nil {
		return nil, err
	}
	notes, skipped, err := codec.DecodeNotes(s.opts.format, data)
	if err != nil {
		s.opts.logger.Warn("discarding unreadable notes", "key", key, "error", err)
		return nil, nil
	}
	s.loadSkipped += skipped
	return notes, nil
}

// persist writes the given partitions. Callers hold s.mu.
func (s *Store) persist(ctx context.Context, keys ...string) error {
	entries := make(map[string][]byte, len(keys))
	for _, key := range keys {
		var (
			data []byte
			err  error
		)
		switch key {
		case core.KeyNotes:
			data, err = codec.EncodeNotes(s.opts.format, s.active)
		case core.KeyArchived:
			data, err = codec.EncodeNotes(s.opts.format, s.archived)
		case core.KeyFolders:
			data, err = codec.EncodeFolders(s.opts.format, s.folders)
		default:
			err = fmt.Errorf("unknown key %q", key)
		}
		if err != nil {
			return s.fault(key, fmt.Errorf("failed to encode: %w", err))
		}
		entries[key] = data
	}

	if batch, ok := s.db.(core.BatchPersistence); ok && len(entries) > 1 {
		if err := batch.SaveBatch(ctx, entries); err != nil {
			return s.fault(fmt.Sprint(keys), err)
		}
		s.lastFault = nil
		return nil
	}

	var errs []error
	for _, key := range keys {
		if err := s.db.Save(ctx, key, entries[key]); err != nil {
			errs = append(errs, s.fault(key, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.lastFault = nil
	return nil
}

func (s *Store) fault(key string, err error) error {
	err = fmt.Errorf("%w: %s: %w", core.ErrPersistence, key, err)
	s.lastFault = err
	s.opts.logger.Error("failed to persist", "key", key, "error", err)
	return err
}

func notFound(id string) error {
	return fmt.Errorf("note %s: %w", id, core.ErrNotFound)
}

func indexOf(notes []core.Note, id string) int {
	return slices.IndexFunc(notes, func(n core.Note) bool { return n.ID == id })
}

func (s *Store) now() time.Time {
	return s.opts.clock()
}

// AddNote creates an active note with a fresh id and current timestamps.
// The note exists in memory even when the returned error reports a persistence fault.
func (s *Store) AddNote(ctx context.Context, text string) (core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := core.Note{
		ID:           s.opts.newID(),
		Text:         text,
		DateCreated:  now,
		DateModified: now,
	}
	s.active = append(s.active, n)
	core.SortNotes(s.active)

	return n.Clone(), s.persist(ctx, core.KeyNotes)
}

// ArchiveNotes moves the given active notes to the archived set, cancelling their reminders.
// Notes are located by id for each element of the batch; unknown ids are ignored.
func (s *Store) ArchiveNotes(ctx context.Context, ids ...string) ([]core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var moved []core.Note
	for _, id := range ids {
		i := indexOf(s.active, id)
		if i < 0 {
			s.opts.logger.Debug("archive skipped unknown note", "id", id)
			continue
		}
		n := s.active[i]
		if n.HasReminder() {
			s.cancelReminder(n.ID)
			n.ReminderDate = nil
		}
		n.Archived = true
		n.DateModified = now

		s.active = slices.Delete(s.active, i, i+1)
		s.archived = append(s.archived, n)
		moved = append(moved, n.Clone())
	}
	if len(moved) == 0 {
		return nil, nil
	}
	core.SortNotes(s.archived)

	return moved, s.persist(ctx, core.KeyNotes, core.KeyArchived)
}

// RestoreNote moves an archived note back to the active set.
func (s *Store) RestoreNote(ctx context.Context, id string) (core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.archived, id)
	if i < 0 {
		return core.Note{}, notFound(id)
	}
	n := s.archived[i]
	n.Archived = false

	s.archived = slices.Delete(s.archived, i, i+1)
	s.active = append(s.active, n)
	core.SortNotes(s.active)

	return n.Clone(), s.persist(ctx, core.KeyNotes, core.KeyArchived)
}

// DeleteArchivedNote permanently removes an archived note and returns it so the caller
// can release its media.
func (s *Store) DeleteArchivedNote(ctx context.Context, id string) (core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.archived, id)
	if i < 0 {
		return core.Note{}, notFound(id)
	}
	n := s.archived[i]
	s.archived = slices.Delete(s.archived, i, i+1)

	return n.Clone(), s.persist(ctx, core.KeyArchived)
}

// ToggleHighlight flips the highlight flag of an active note.
func (s *Store) ToggleHighlight(ctx context.Context, id string) (core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.active, id)
	if i < 0 {
		return core.Note{}, notFound(id)
	}
	return s.setHighlight(ctx, i, !s.active[i].Highlighted)
}

// SetHighlight forces the highlight flag of an active note.
// Nothing is written when the flag already has the requested value.
func (s *Store) SetHighlight(ctx context.Context, id string, highlighted bool) (core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.active, id)
	if i < 0 {
		return core.Note{}, notFound(id)
	}
	if s.active[i].Highlighted == highlighted {
		return s.active[i].Clone(), nil
	}
	return s.setHighlight(ctx, i, highlighted)
}

func (s *Store) setHighlight(ctx context.Context, i int, highlighted bool) (core.Note, error) {
	s.active[i].Highlighted = highlighted
	n := s.active[i].Clone()
	core.SortNotes(s.active)
	return n, s.persist(ctx, core.KeyNotes)
}

// UpdateNote applies a field-level mutation to an active note and stamps DateModified.
// The id, creation time and archive flag cannot be changed through mutate.
// Reminder changes are forwarded to the scheduler.
func (s *Store) UpdateNote(ctx context.Context, id string, mutate func(*core.Note)) (core.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.active, id)
	if i < 0 {
		if indexOf(s.archived, id) >= 0 {
			return core.Note{}, fmt.Errorf("note %s is archived: %w", id, core.ErrInvalid)
		}
		return core.Note{}, notFound(id)
	}

	orig := s.active[i]
	n := orig.Clone()
	if mutate != nil {
		mutate(&n)
	}
	n.ID = orig.ID
	n.DateCreated = orig.DateCreated
	n.Archived = false
	n.DateModified = s.now()

	switch {
	case n.HasReminder() && (!sameTime(orig.ReminderDate, n.ReminderDate) || orig.Text != n.Text):
		s.scheduleReminder(n)
	case orig.HasReminder() && !n.HasReminder():
		s.cancelReminder(n.ID)
	}

	s.active[i] = n
	core.SortNotes(s.active)

	return n.Clone(), s.persist(ctx, core.KeyNotes)
}

// Replace swaps the whole collection, as done when a guest session is merged into an
// account. Notes are partitioned by their archived flag; archived notes lose reminders.
func (s *Store) Replace(ctx context.Context, notes []core.Note, folders []core.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hadReminder := make(map[string]bool)
	for _, n := range s.active {
		if n.HasReminder() {
			hadReminder[n.ID] = true
		}
	}

	seen := make(map[string]bool, len(notes))
	active := make([]core.Note, 0, len(notes))
	archived := make([]core.Note, 0)
	for _, n := range notes {
		if n.Validate() != nil || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		n = n.Clone()
		if n.Archived {
			n.ReminderDate = nil
			archived = append(archived, n)
			continue
		}
		active = append(active, n)
	}

	for _, n := range active {
		if n.HasReminder() {
			s.scheduleReminder(n)
			delete(hadReminder, n.ID)
		}
	}
	for id := range hadReminder {
		s.cancelReminder(id)
	}

	folderSeen := make(map[string]bool, len(folders))
	s.folders = make([]core.Folder, 0, len(folders))
	for _, f := range folders {
		if f.Validate() != nil || folderSeen[f.ID] {
			continue
		}
		folderSeen[f.ID] = true
		s.folders = append(s.folders, f)
	}

	core.SortNotes(active)
	core.SortNotes(archived)
	s.active = active
	s.archived = archived

	return s.persist(ctx, core.KeyNotes, core.KeyArchived, core.KeyFolders)
}

// Notes returns the active notes in display order.
func (s *Store) Notes() []core.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneNotes(s.active)
}

// Archived returns the archived notes in display order.
func (s *Store) Archived() []core.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneNotes(s.archived)
}

// All returns active notes followed by archived notes.
func (s *Store) All() []core.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(cloneNotes(s.active), cloneNotes(s.archived)...)
}

// Note looks a note up in either partition.
func (s *Store) Note(id string) (core.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.active, id); i >= 0 {
		return s.active[i].Clone(), true
	}
	if i := indexOf(s.archived, id); i >= 0 {
		return s.archived[i].Clone(), true
	}
	return core.Note{}, false
}

// NotesInFolder returns the active notes filed under folderID.
func (s *Store) NotesInFolder(folderID string) []core.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Note
	for _, n := range s.active {
		if n.InFolder(folderID) {
			out = append(out, n.Clone())
		}
	}
	return out
}

func (s *Store) scheduleReminder(n core.Note) {
	if s.opts.scheduler == nil || n.ReminderDate == nil {
		return
	}
	if err := s.opts.scheduler.Schedule(n.ID, n.Text, *n.ReminderDate); err != nil {
		s.opts.logger.Warn("failed to schedule reminder", "id", n.ID, "error", err)
	}
}

func (s *Store) cancelReminder(id string) {
	if s.opts.scheduler == nil {
		return
	}
	if err := s.opts.scheduler.Cancel(id); err != nil {
		s.opts.logger.Warn("failed to cancel reminder", "id", id, "error", err)
	}
}

func cloneNotes(notes []core.Note) []core.Note {
	out := make([]core.Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
