// Package core holds the entities of the note engine and the ports it talks through.
package core

import (
	"cmp"
	"slices"
	"time"
)

// Note is a single user note.
// ID is assigned once at creation and never changes; it is the only key used for
// deduplication, folder membership and reminder association.
type Note struct {
	ID           string     `json:"id" yaml:"id"`
	Text         string     `json:"text" yaml:"text"`
	Body         string     `json:"body" yaml:"body"`
	DateCreated  time.Time  `json:"date_created" yaml:"date_created"`
	DateModified time.Time  `json:"date_modified" yaml:"date_modified"`
	Highlighted  bool       `json:"highlighted" yaml:"highlighted"`
	Archived     bool       `json:"archived" yaml:"archived"`
	Locked       bool       `json:"locked" yaml:"locked"`
	ReminderDate *time.Time `json:"reminder_date,omitempty" yaml:"reminder_date,omitempty"`
	FolderID     *string    `json:"folder_id,omitempty" yaml:"folder_id,omitempty"`
	Media        []string   `json:"media,omitempty" yaml:"media,omitempty"`
	Shared       bool       `json:"shared" yaml:"shared"`
}

// Folder groups notes. Notes reference folders by id; folders own nothing.
type Folder struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Clone returns a deep copy so callers never share pointer or slice fields with the store.
func (n Note) Clone() Note {
	c := n
	if n.ReminderDate != nil {
		at := *n.ReminderDate
		c.ReminderDate = &at
	}
	if n.FolderID != nil {
		id := *n.FolderID
		c.FolderID = &id
	}
	if n.Media != nil {
		c.Media = slices.Clone(n.Media)
	}
	return c
}

// InFolder reports whether the note references the given folder.
func (n Note) InFolder(folderID string) bool {
	return n.FolderID != nil && *n.FolderID == folderID
}

// HasReminder reports whether a reminder is pending for the note.
func (n Note) HasReminder() bool {
	return n.ReminderDate != nil
}

// Validate checks the fields a record must carry to be accepted into a collection.
func (n Note) Validate() error {
	if n.ID == "" {
		return ErrInvalid
	}
	return nil
}

// Validate checks the fields a folder must carry.
func (f Folder) Validate() error {
	if f.ID == "" {
		return ErrInvalid
	}
	return nil
}

// CompareNotes is the display order: highlighted notes first, then most recently
// modified first. Ties fall back to the id so the order is total.
func CompareNotes(a, b Note) int {
	if a.Highlighted != b.Highlighted {
		if a.Highlighted {
			return -1
		}
		return 1
	}
	if c := b.DateModified.Compare(a.DateModified); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortNotes orders notes in place by CompareNotes.
func SortNotes(notes []Note) {
	slices.SortStableFunc(notes, CompareNotes)
}

// Now returns the current time at the precision notes are stored and transmitted with.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// StringPtr is a convenience for optional string fields such as Note.FolderID.
func StringPtr(s string) *string {
	return &s
}

// TimePtr is a convenience for optional time fields such as Note.ReminderDate.
func TimePtr(t time.Time) *time.Time {
	return &t
}
