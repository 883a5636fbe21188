package memory

import (
	"sync"
	"time"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

// ScheduleCall is one recorded Schedule invocation.
type ScheduleCall struct {
	NoteID string
	Text   string
	At     time.Time
}

// Scheduler is a core.ReminderScheduler that only records what it is asked to do.
type Scheduler struct {
	mu        sync.Mutex
	pending   map[string]time.Time
	schedules []ScheduleCall
	cancels   []string
}

// NewScheduler returns an empty recording scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{pending: make(map[string]time.Time)}
}

// Schedule implements core.ReminderScheduler.
func (s *Scheduler) Schedule(noteID, text string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[noteID] = at
	s.schedules = append(s.schedules, ScheduleCall{NoteID: noteID, Text: text, At: at})
	return nil
}

// Cancel implements core.ReminderScheduler.
func (s *Scheduler) Cancel(noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, noteID)
	s.cancels = append(s.cancels, noteID)
	return nil
}

// Pending reports the reminder currently scheduled for a note.
func (s *Scheduler) Pending(noteID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.pending[noteID]
	return at, ok
}

// Cancellations counts Cancel calls for a note.
func (s *Scheduler) Cancellations(noteID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range s.cancels {
		if id == noteID {
			n++
		}
	}
	return n
}

// Schedules returns every recorded Schedule call.
func (s *Scheduler) Schedules() []ScheduleCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ScheduleCall(nil), s.schedules...)
}

var _ core.ReminderScheduler = (*Scheduler)(nil)
