package core

import (
	"context"
	"time"
)

// Persistence keys.
const (
	KeyNotes    = "notes"
	KeyArchived = "archived_notes"
	KeyFolders  = "folders"
)

// Persistence is the durable key-value layer the store writes through.
type Persistence interface {
	// Load returns the bytes stored under key, or ErrNotFound if nothing was saved yet.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save durably replaces the value stored under key.
	Save(ctx context.Context, key string, data []byte) error
}

// BatchPersistence is implemented by layers that can write several keys atomically.
type BatchPersistence interface {
	Persistence

	// SaveBatch writes all entries or none of them.
	SaveBatch(ctx context.Context, entries map[string][]byte) error
}

// AccountData is the snapshot of an authenticated account held by the remote service.
type AccountData struct {
	Username string
	Notes    []Note
	Folders  []Folder
	// Skipped counts records the transport received but could not decode.
	Skipped int
}

// Gateway is the remote API. It carries no business rules and never retries.
type Gateway interface {
	CreateNote(ctx context.Context, n Note, accountID string) error
	UpdateNote(ctx context.Context, n Note) error
	DeleteNote(ctx context.Context, id string) error
	CreateFolder(ctx context.Context, f Folder, accountID string) error
	DeleteFolder(ctx context.Context, id string) error
	FetchAccountData(ctx context.Context, accountID string) (AccountData, error)
}

// ReminderScheduler delivers reminders for notes. Implementations live outside the core.
type ReminderScheduler interface {
	Schedule(noteID, text string, at time.Time) error
	Cancel(noteID string) error
}

// MediaReleaser frees the media attached to a permanently deleted note.
type MediaReleaser interface {
	Release(ctx context.Context, paths []string) error
}

// AccountSource tells whether the session is linked to a remote account.
// An empty id means anonymous: no remote call is attempted.
type AccountSource interface {
	AccountID() string
}

// StaticAccount is an AccountSource with a fixed id.
type StaticAccount string

// AccountID implements AccountSource.
func (a StaticAccount) AccountID() string { return string(a) }
