package platform

import (
	"sync"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

// Session tracks whether the client is linked to a remote account.
type Session struct {
	mu      sync.RWMutex
	account string
}

// AccountID implements core.AccountSource.
func (s *Session) AccountID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

func (s *Session) set(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = accountID
}

var _ core.AccountSource = (*Session)(nil)
