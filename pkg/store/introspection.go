package store

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Active      int    `json:"active"`
	Archived    int    `json:"archived"`
	Folders     int    `json:"folders"`
	Format      string `json:"format"`
	LoadSkipped int    `json:"load_skipped"`
	LastFault   string `json:"last_fault,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := StoreState{
		Active:      len(s.active),
		Archived:    len(s.archived),
		Folders:     len(s.folders),
		Format:      s.opts.format.Name(),
		LoadSkipped: s.loadSkipped,
	}
	if s.lastFault != nil {
		st.LastFault = s.lastFault.Error()
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
