package reconcile

import (
	"context"
	"fmt"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
	"github.com/deyanlaf0409/noteblocks/pkg/store"
)

// Kind identifies the user operation a command carries.
type Kind string

const (
	KindCreate       Kind = "create"
	KindUpdate       Kind = "update"
	KindArchive      Kind = "archive"
	KindDelete       Kind = "delete"
	KindHighlight    Kind = "highlight"
	KindRestore      Kind = "restore"
	KindFolderCreate Kind = "folder_create"
	KindFolderRename Kind = "folder_rename"
	KindFolderDelete Kind = "folder_delete"
)

// Command pairs a local mutation with the remote call that propagates it.
//
// Local runs synchronously against the store. Remote runs in the background once Local
// succeeded and the session is linked to an account. Revert, when set, is applied on the
// owner side if Remote fails.
type Command struct {
	Kind   Kind
	Target string
	Local  func(ctx context.Context, s *store.Store) error
	Remote func(ctx context.Context, gw core.Gateway, accountID string) error
	Revert func(ctx context.Context, s *store.Store) error
}

// Result reports the completion of a command's remote call.
type Result struct {
	Seq    uint64
	Kind   Kind
	Target string
	Err    error

	// Reverted is set when the local mutation was rolled back after a failure.
	Reverted  bool
	RevertErr error
}

// OK reports whether the remote call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

func (r Result) String() string {
	if r.Err == nil {
		return fmt.Sprintf("#%d %s %s: ok", r.Seq, r.Kind, r.Target)
	}
	s := fmt.Sprintf("#%d %s %s: %v", r.Seq, r.Kind, r.Target, r.Err)
	if r.Reverted {
		s += " (reverted)"
	}
	return s
}
