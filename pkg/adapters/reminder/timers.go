// Package reminder delivers note reminders inside the running process.
package reminder

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

// Reminder is a fired reminder.
type Reminder struct {
	NoteID string
	Text   string
	At     time.Time
}

// Timers implements core.ReminderScheduler with one timer per note. Scheduling a note
// again replaces its pending timer. Reminders in the past fire immediately.
type Timers struct {
	fire   func(Reminder)
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

// Option configures Timers.
type Option func(*Timers)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Timers) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithClock overrides the time source used to compute delays.
func WithClock(now func() time.Time) Option {
	return func(t *Timers) {
		t.now = now
	}
}

// New returns a scheduler calling fire on its own goroutine when a reminder is due.
func New(fire func(Reminder), opts ...Option) *Timers {
	t := &Timers{
		fire:    fire,
		logger:  slog.Default(),
		now:     time.Now,
		pending: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Schedule implements core.ReminderScheduler.
func (t *Timers) Schedule(noteID, text string, at time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.New("reminder scheduler is closed")
	}

	if old, ok := t.pending[noteID]; ok {
		old.Stop()
	}

	r := Reminder{NoteID: noteID, Text: text, At: at}
	var timer *time.Timer
	timer = time.AfterFunc(max(at.Sub(t.now()), 0), func() {
		t.mu.Lock()
		current := t.pending[noteID] == timer
		if current {
			delete(t.pending, noteID)
		}
		t.mu.Unlock()
		if current && t.fire != nil {
			t.fire(r)
		}
	})
	t.pending[noteID] = timer
	t.logger.Debug("reminder scheduled", "id", noteID, "at", at)
	return nil
}

// Cancel implements core.ReminderScheduler. Cancelling an unknown note is a no-op.
func (t *Timers) Cancel(noteID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if timer, ok := t.pending[noteID]; ok {
		timer.Stop()
		delete(t.pending, noteID)
		t.logger.Debug("reminder cancelled", "id", noteID)
	}
	return nil
}

// Pending returns the number of reminders waiting to fire.
func (t *Timers) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Close stops every pending reminder.
func (t *Timers) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.pending {
		timer.Stop()
		delete(t.pending, id)
	}
	t.closed = true
	return nil
}

var _ core.ReminderScheduler = (*Timers)(nil)
