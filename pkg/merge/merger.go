package merge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/lifecycle"
	"golang.org/x/sync/errgroup"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
	"github.com/deyanlaf0409/noteblocks/pkg/store"
)

// Outcome summarizes the local side of a link.
type Outcome struct {
	Username   string
	Notes      int
	Folders    int
	Collisions int
	// SkippedServer counts remote records that could not be decoded.
	SkippedServer int
}

// Push failure kinds.
const (
	KindFolder     = "folder"
	KindNoteCreate = "note_create"
	KindNoteUpdate = "note_update"
)

// PushFailure is one remote call of the background push that failed.
type PushFailure struct {
	Kind string
	ID   string
	Err  error
}

// PushReport summarizes the background push started by Link.
type PushReport struct {
	Folders  int
	Notes    int
	Failures []PushFailure
}

// Err joins every push failure, or returns nil.
func (r PushReport) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s %s: %w", f.Kind, f.ID, f.Err))
	}
	return errors.Join(errs...)
}

// Merger performs the guest-to-account transition.
type Merger struct {
	store *store.Store
	gw    core.Gateway
	opts  *options

	mu     sync.Mutex
	done   chan struct{}
	report PushReport
}

// New creates a Merger.
func New(s *store.Store, gw core.Gateway, opts ...Option) *Merger {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Merger{store: s, gw: gw, opts: o}
}

// Link merges the store with the account's remote data and replaces the store contents
// with the union. A failed fetch leaves the store untouched. The union is then pushed to
// the account in the background; use Wait for its report.
func (m *Merger) Link(ctx context.Context, accountID string) (Outcome, error) {
	if accountID == "" {
		return Outcome{}, fmt.Errorf("account id is required: %w", core.ErrInvalid)
	}
	// A previous push must finish before the collection is replaced again.
	if _, err := m.Wait(ctx); err != nil {
		return Outcome{}, err
	}

	data, err := m.gw.FetchAccountData(ctx, accountID)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to fetch account data: %w", err)
	}
	if data.Skipped > 0 {
		m.opts.logger.Warn("skipped unreadable remote records", "account", accountID, "count", data.Skipped)
	}

	guestNotes := m.store.All()
	notes := MergeNotes(guestNotes, data.Notes)
	folders := MergeFolders(m.store.Folders(), data.Folders)

	out := Outcome{
		Username:      data.Username,
		Notes:         len(notes),
		Folders:       len(folders),
		Collisions:    collisions(guestNotes, data.Notes),
		SkippedServer: data.Skipped,
	}

	replaceErr := m.store.Replace(ctx, notes, folders)
	if replaceErr != nil && !errors.Is(replaceErr, core.ErrPersistence) {
		return out, fmt.Errorf("failed to replace local collection: %w", replaceErr)
	}

	m.opts.logger.Info("account linked",
		"account", accountID, "username", data.Username,
		"notes", out.Notes, "folders", out.Folders, "collisions", out.Collisions)

	// Push what the store holds after Replace, so archived notes go out without reminders.
	m.startPush(ctx, accountID, m.store.All(), m.store.Folders())
	return out, replaceErr
}

func (m *Merger) startPush(ctx context.Context, accountID string, notes []core.Note, folders []core.Folder) {
	done := make(chan struct{})
	m.mu.Lock()
	m.done = done
	m.report = PushReport{}
	m.mu.Unlock()

	lifecycle.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		defer close(done)
		report := m.push(ctx, accountID, notes, folders)

		m.mu.Lock()
		m.report = report
		m.mu.Unlock()
		return report.Err()
	}, lifecycle.WithErrorHandler(func(err error) {
		m.opts.logger.Warn("account push finished with failures", "account", accountID, "error", err)
	}))
}

// push sends every folder, then every note as a create followed by an update. The
// update is issued even when the create fails.
func (m *Merger) push(ctx context.Context, accountID string, notes []core.Note, folders []core.Folder) PushReport {
	var (
		mu     sync.Mutex
		report = PushReport{Folders: len(folders), Notes: len(notes)}
	)
	fail := func(kind, id string, err error) {
		m.opts.logger.Warn("failed to push record", "kind", kind, "id", id, "error", err)
		mu.Lock()
		report.Failures = append(report.Failures, PushFailure{Kind: kind, ID: id, Err: err})
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(m.opts.concurrency)
	for _, f := range folders {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, m.opts.remoteTimeout)
			defer cancel()
			if err := m.gw.CreateFolder(callCtx, f, accountID); err != nil {
				fail(KindFolder, f.ID, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, n := range notes {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, m.opts.remoteTimeout)
			defer cancel()
			if err := m.gw.CreateNote(callCtx, n, accountID); err != nil {
				fail(KindNoteCreate, n.ID, err)
			}
			if err := m.gw.UpdateNote(callCtx, n); err != nil {
				fail(KindNoteUpdate, n.ID, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	m.opts.logger.Debug("account push complete",
		"account", accountID, "folders", report.Folders, "notes", report.Notes, "failures", len(report.Failures))
	return report
}

// Wait blocks until the latest background push finishes and returns its report.
// It returns immediately with an empty report when no push was started.
func (m *Merger) Wait(ctx context.Context) (PushReport, error) {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done == nil {
		return PushReport{}, nil
	}

	select {
	case <-done:
	case <-ctx.Done():
		return PushReport{}, fmt.Errorf("failed to wait for account push: %w", ctx.Err())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.report, nil
}
