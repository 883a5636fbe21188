package memory

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

// Op names a gateway operation.
type Op string

const (
	OpCreateNote   Op = "create_note"
	OpUpdateNote   Op = "update_note"
	OpDeleteNote   Op = "delete_note"
	OpCreateFolder Op = "create_folder"
	OpDeleteFolder Op = "delete_folder"
	OpFetch        Op = "fetch_account_data"
)

// Call is one recorded gateway invocation.
type Call struct {
	Op      Op
	ID      string
	Account string
}

type account struct {
	username    string
	notes       map[string]core.Note
	noteOrder   []string
	folders     map[string]core.Folder
	folderOrder []string
}

func newAccount(username string) *account {
	return &account{
		username: username,
		notes:    make(map[string]core.Note),
		folders:  make(map[string]core.Folder),
	}
}

// Gateway is an in-memory remote service implementing core.Gateway.
// Creating a record whose id already exists in the account is a no-op.
type Gateway struct {
	mu          sync.Mutex
	accounts    map[string]*account
	noteOwner   map[string]string
	folderOwner map[string]string
	failures    map[Op]error
	gates       map[Op]chan struct{}
	calls       []Call
}

// NewGateway returns a remote with no accounts.
func NewGateway() *Gateway {
	return &Gateway{
		accounts:    make(map[string]*account),
		noteOwner:   make(map[string]string),
		folderOwner: make(map[string]string),
		failures:    make(map[Op]error),
		gates:       make(map[Op]chan struct{}),
	}
}

// Seed creates or replaces an account with the given records.
func (g *Gateway) Seed(accountID, username string, notes []core.Note, folders []core.Folder) {
	g.mu.Lock()
	defer g.mu.Unlock()

	acc := newAccount(username)
	g.accounts[accountID] = acc
	for _, n := range notes {
		acc.putNote(n)
		g.noteOwner[n.ID] = accountID
	}
	for _, f := range folders {
		acc.putFolder(f)
		g.folderOwner[f.ID] = accountID
	}
}

// EnsureAccount registers an empty account unless it already exists.
func (g *Gateway) EnsureAccount(accountID, username string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.accounts[accountID]; !ok {
		g.accounts[accountID] = newAccount(username)
	}
}

// NoteOwner returns the account holding a note.
func (g *Gateway) NoteOwner(id string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	owner, ok := g.noteOwner[id]
	return owner, ok
}

// FolderOwner returns the account holding a folder.
func (g *Gateway) FolderOwner(id string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	owner, ok := g.folderOwner[id]
	return owner, ok
}

// Fail makes every call of op fail with err until Fail(op, nil) is called.
func (g *Gateway) Fail(op Op, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.failures, op)
		return
	}
	g.failures[op] = err
}

// Hold makes calls of op block after being recorded until the returned release func runs.
func (g *Gateway) Hold(op Op) (release func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	gate := make(chan struct{})
	g.gates[op] = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			if g.gates[op] == gate {
				delete(g.gates, op)
			}
			g.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns every recorded call in arrival order.
func (g *Gateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Call(nil), g.calls...)
}

// CallCount counts recorded calls of op.
func (g *Gateway) CallCount(op Op) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Notes returns the notes held for an account in insertion order.
func (g *Gateway) Notes(accountID string) []core.Note {
	g.mu.Lock()
	defer g.mu.Unlock()
	acc, ok := g.accounts[accountID]
	if !ok {
		return nil
	}
	return acc.noteList()
}

// Folders returns the folders held for an account in insertion order.
func (g *Gateway) Folders(accountID string) []core.Folder {
	g.mu.Lock()
	defer g.mu.Unlock()
	acc, ok := g.accounts[accountID]
	if !ok {
		return nil
	}
	return acc.folderList()
}

// enter records the call, waits on a gate if one is set and returns the injected failure.
func (g *Gateway) enter(ctx context.Context, op Op, id, accountID string) error {
	g.mu.Lock()
	g.calls = append(g.calls, Call{Op: op, ID: id, Account: accountID})
	gate := g.gates[op]
	g.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return &core.RemoteError{Op: string(op), Message: "request cancelled", Err: ctx.Err()}
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failures[op]; err != nil {
		return &core.RemoteError{Op: string(op), Status: http.StatusServiceUnavailable, Message: err.Error(), Err: err}
	}
	return nil
}

func (g *Gateway) accountFor(accountID string) *account {
	acc, ok := g.accounts[accountID]
	if !ok {
		acc = newAccount(accountID)
		g.accounts[accountID] = acc
	}
	return acc
}

// CreateNote implements core.Gateway.
func (g *Gateway) CreateNote(ctx context.Context, n core.Note, accountID string) error {
	if err := g.enter(ctx, OpCreateNote, n.ID, accountID); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if owner, ok := g.noteOwner[n.ID]; ok {
		if owner != accountID {
			return &core.RemoteError{Op: string(OpCreateNote), Status: http.StatusConflict, Message: "note belongs to another account"}
		}
		return nil
	}
	g.accountFor(accountID).putNote(n)
	g.noteOwner[n.ID] = accountID
	return nil
}

// UpdateNote implements core.Gateway.
func (g *Gateway) UpdateNote(ctx context.Context, n core.Note) error {
	if err := g.enter(ctx, OpUpdateNote, n.ID, ""); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	owner, ok := g.noteOwner[n.ID]
	if !ok {
		return notFound(OpUpdateNote, "note", n.ID)
	}
	g.accounts[owner].putNote(n)
	return nil
}

// DeleteNote implements core.Gateway.
func (g *Gateway) DeleteNote(ctx context.Context, id string) error {
	if err := g.enter(ctx, OpDeleteNote, id, ""); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	owner, ok := g.noteOwner[id]
	if !ok {
		return notFound(OpDeleteNote, "note", id)
	}
	acc := g.accounts[owner]
	delete(acc.notes, id)
	acc.noteOrder = remove(acc.noteOrder, id)
	delete(g.noteOwner, id)
	return nil
}

// CreateFolder implements core.Gateway.
func (g *Gateway) CreateFolder(ctx context.Context, f core.Folder, accountID string) error {
	if err := g.enter(ctx, OpCreateFolder, f.ID, accountID); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if owner, ok := g.folderOwner[f.ID]; ok {
		if owner != accountID {
			return &core.RemoteError{Op: string(OpCreateFolder), Status: http.StatusConflict, Message: "folder belongs to another account"}
		}
		return nil
	}
	g.accountFor(accountID).putFolder(f)
	g.folderOwner[f.ID] = accountID
	return nil
}

// DeleteFolder implements core.Gateway.
func (g *Gateway) DeleteFolder(ctx context.Context, id string) error {
	if err := g.enter(ctx, OpDeleteFolder, id, ""); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	owner, ok := g.folderOwner[id]
	if !ok {
		return notFound(OpDeleteFolder, "folder", id)
	}
	acc := g.accounts[owner]
	delete(acc.folders, id)
	acc.folderOrder = remove(acc.folderOrder, id)
	delete(g.folderOwner, id)
	return nil
}

// FetchAccountData implements core.Gateway.
func (g *Gateway) FetchAccountData(ctx context.Context, accountID string) (core.AccountData, error) {
	if err := g.enter(ctx, OpFetch, "", accountID); err != nil {
		return core.AccountData{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	acc, ok := g.accounts[accountID]
	if !ok {
		return core.AccountData{Username: accountID}, nil
	}
	return core.AccountData{
		Username: acc.username,
		Notes:    acc.noteList(),
		Folders:  acc.folderList(),
	}, nil
}

func (a *account) putNote(n core.Note) {
	if _, ok := a.notes[n.ID]; !ok {
		a.noteOrder = append(a.noteOrder, n.ID)
	}
	a.notes[n.ID] = n.Clone()
}

func (a *account) putFolder(f core.Folder) {
	if _, ok := a.folders[f.ID]; !ok {
		a.folderOrder = append(a.folderOrder, f.ID)
	}
	a.folders[f.ID] = f
}

func (a *account) noteList() []core.Note {
	out := make([]core.Note, 0, len(a.noteOrder))
	for _, id := range a.noteOrder {
		out = append(out, a.notes[id].Clone())
	}
	return out
}

func (a *account) folderList() []core.Folder {
	out := make([]core.Folder, 0, len(a.folderOrder))
	for _, id := range a.folderOrder {
		out = append(out, a.folders[id])
	}
	return out
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func notFound(op Op, kind, id string) error {
	return &core.RemoteError{
		Op:      string(op),
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s %s not found", kind, id),
		Err:     core.ErrNotFound,
	}
}

var _ core.Gateway = (*Gateway)(nil)
