package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deyanlaf0409/noteblocks/pkg/adapters/memory"
	"github.com/deyanlaf0409/noteblocks/pkg/core"
	"github.com/deyanlaf0409/noteblocks/pkg/reconcile"
	"github.com/deyanlaf0409/noteblocks/pkg/store"
)

type fixture struct {
	kv    *memory.KV
	store *store.Store
	gw    *memory.Gateway
	rec   *reconcile.Reconciler
}

func setup(t *testing.T, account string, opts ...reconcile.Option) *fixture {
	t.Helper()
	kv := memory.NewKV()
	s, err := store.Open(context.Background(), kv)
	require.NoError(t, err)
	gw := memory.NewGateway()
	return &fixture{
		kv:    kv,
		store: s,
		gw:    gw,
		rec:   reconcile.New(s, gw, core.StaticAccount(account), opts...),
	}
}

func settle(t *testing.T, r *reconcile.Reconciler) []reconcile.Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	results, err := r.Settle(ctx)
	require.NoError(t, err)
	return results
}

func TestToggleHighlight_RevertsOnRemoteFailure(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "acc")

	n, err := f.rec.CreateNote(ctx, "pin me")
	require.NoError(t, err)
	settle(t, f.rec)

	f.gw.Fail(memory.OpUpdateNote, errors.New("offline"))
	toggled, err := f.rec.ToggleHighlight(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Highlighted, "optimistic update is visible immediately")

	results := settle(t, f.rec)
	require.Len(t, results, 1)
	assert.Equal(t, reconcile.KindHighlight, results[0].Kind)
	assert.Error(t, results[0].Err)
	assert.True(t, results[0].Reverted)

	got, ok := f.store.Note(n.ID)
	require.True(t, ok)
	assert.False(t, got.Highlighted)
}

func TestToggleHighlight_KeepsStateOnSuccess(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "acc")

	n, err := f.rec.CreateNote(ctx, "pin me")
	require.NoError(t, err)
	settle(t, f.rec)

	_, err = f.rec.ToggleHighlight(ctx, n.ID)
	require.NoError(t, err)
	results := settle(t, f.rec)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK())

	got, ok := f.store.Note(n.ID)
	require.True(t, ok)
	assert.True(t, got.Highlighted)
	assert.True(t, f.gw.Notes("acc")[0].Highlighted)
}

func TestFailedCreate_KeepsLocalNote(t *testing.T) {
	ctx := context.Background()
	var notices []reconcile.Result
	f := setup(t, "acc", reconcile.WithNoticeHandler(func(r reconcile.Result) {
		notices = append(notices, r)
	}))
	f.gw.Fail(memory.OpCreateNote, errors.New("500"))

	n, err := f.rec.CreateNote(ctx, "keep me")
	require.NoError(t, err)

	results := settle(t, f.rec)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.False(t, results[0].Reverted)
	require.Len(t, notices, 1)
	assert.Equal(t, reconcile.KindCreate, notices[0].Kind)

	_, ok := f.store.Note(n.ID)
	assert.True(t, ok)

	st := f.rec.State().(reconcile.ReconcilerState)
	assert.Equal(t, int64(1), st.Failed)
	assert.Equal(t, int64(0), st.Reverted)
	assert.Equal(t, int64(0), st.InFlight)
}

func TestLocalOnlyMode(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "")

	n, err := f.rec.CreateNote(ctx, "guest note")
	require.NoError(t, err)
	_, err = f.rec.ToggleHighlight(ctx, n.ID)
	require.NoError(t, err)
	_, err = f.rec.ArchiveNotes(ctx, n.ID)
	require.NoError(t, err)

	assert.Empty(t, settle(t, f.rec))
	assert.Empty(t, f.gw.Calls())
	assert.False(t, f.rec.State().(reconcile.ReconcilerState).Linked)
	assert.Len(t, f.store.Archived(), 1)
}

func TestLocalFailureSkipsRemote(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "acc")

	_, err := f.rec.ToggleHighlight(ctx, "missing")
	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, settle(t, f.rec))
	assert.Empty(t, f.gw.Calls())
}

func TestPersistenceFaultStillDispatches(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "acc")
	f.kv.FailSaves(errors.New("disk full"))

	n, err := f.rec.CreateNote(ctx, "memory only")
	require.ErrorIs(t, err, core.ErrPersistence)

	results := settle(t, f.rec)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
	assert.Equal(t, n.ID, f.gw.Notes("acc")[0].ID)
}

func TestArchiveRestoreAndPurge(t *testing.T) {
	ctx := context.Background()
	releaser := &recordingReleaser{}
	f := setup(t, "acc", reconcile.WithMediaReleaser(releaser))

	a, err := f.rec.CreateNote(ctx, "a")
	require.NoError(t, err)
	b, err := f.rec.CreateNote(ctx, "b")
	require.NoError(t, err)
	settle(t, f.rec)
	_, err = f.rec.UpdateNote(ctx, b.ID, func(n *core.Note) { n.Media = []string{"photo.jpg"} })
	require.NoError(t, err)
	settle(t, f.rec)

	moved, err := f.rec.ArchiveNotes(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, moved, 2)
	settle(t, f.rec)
	for _, n := range f.gw.Notes("acc") {
		assert.True(t, n.Archived, "remote copy of %s should be archived", n.ID)
	}

	_, err = f.rec.RestoreNote(ctx, a.ID)
	require.NoError(t, err)
	_, err = f.rec.DeleteArchivedNote(ctx, b.ID)
	require.NoError(t, err)
	for _, r := range settle(t, f.rec) {
		assert.True(t, r.OK(), r.String())
	}

	remote := f.gw.Notes("acc")
	require.Len(t, remote, 1)
	assert.Equal(t, a.ID, remote[0].ID)
	assert.False(t, remote[0].Archived)
	assert.Equal(t, [][]string{{"photo.jpg"}}, releaser.released)
}

func TestFolderLifecycle(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "acc")

	folder, err := f.rec.AddFolder(ctx, "Work")
	require.NoError(t, err)
	n, err := f.rec.CreateNote(ctx, "report")
	require.NoError(t, err)
	settle(t, f.rec)

	_, err = f.rec.UpdateNote(ctx, n.ID, func(m *core.Note) { m.FolderID = core.StringPtr(folder.ID) })
	require.NoError(t, err)
	_, err = f.rec.RenameFolder(ctx, folder.ID, "Job")
	require.NoError(t, err)
	settle(t, f.rec)
	assert.Equal(t, "Work", f.gw.Folders("acc")[0].Name, "renames stay local")

	unfiled, err := f.rec.DeleteFolder(ctx, folder.ID)
	require.NoError(t, err)
	require.Len(t, unfiled, 1)
	for _, r := range settle(t, f.rec) {
		assert.True(t, r.OK(), r.String())
	}

	assert.Empty(t, f.gw.Folders("acc"))
	assert.Nil(t, f.gw.Notes("acc")[0].FolderID)
}

// A later command may complete before an earlier one; the store keeps the last local
// mutation regardless.
func TestOutOfOrderCompletion(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "acc")

	existing, err := f.rec.CreateNote(ctx, "existing")
	require.NoError(t, err)
	settle(t, f.rec)

	release := f.gw.Hold(memory.OpCreateNote)
	slow, err := f.rec.CreateNote(ctx, "slow")
	require.NoError(t, err)
	_, err = f.rec.UpdateNote(ctx, existing.ID, func(n *core.Note) { n.Text = "fast" })
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	first, err := f.rec.Settle(waitCtx)
	cancel()
	require.Error(t, err, "the held create is still in flight")
	require.Len(t, first, 1)
	assert.Equal(t, reconcile.KindUpdate, first[0].Kind)

	release()
	second := settle(t, f.rec)
	require.Len(t, second, 1)
	assert.Equal(t, reconcile.KindCreate, second[0].Kind)
	assert.Greater(t, second[0].Seq, uint64(0))
	assert.Less(t, second[0].Seq, first[0].Seq, "sequence numbers follow issue order")

	_, ok := f.store.Note(slow.ID)
	assert.True(t, ok)
	got, _ := f.store.Note(existing.ID)
	assert.Equal(t, "fast", got.Text)
}

func TestRun_HandlesCompletions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := setup(t, "acc")

	n, err := f.rec.CreateNote(ctx, "x")
	require.NoError(t, err)
	settle(t, f.rec)
	f.gw.Fail(memory.OpUpdateNote, errors.New("offline"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = f.rec.Run(ctx)
	}()

	_, err = f.rec.ToggleHighlight(ctx, n.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return f.rec.State().(reconcile.ReconcilerState).Reverted == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()
	got, _ := f.store.Note(n.ID)
	assert.False(t, got.Highlighted)
}

type recordingReleaser struct {
	released [][]string
}

func (r *recordingReleaser) Release(_ context.Context, paths []string) error {
	r.released = append(r.released, paths)
	return nil
}

// gatedUpdates fails every UpdateNote, each one only after the test releases it.
type gatedUpdates struct {
	*memory.Gateway
	arrived chan int
	mu      sync.Mutex
	gates   []chan struct{}
}

func newGatedUpdates() *gatedUpdates {
	return &gatedUpdates{Gateway: memory.NewGateway(), arrived: make(chan int, 4)}
}

func (g *gatedUpdates) UpdateNote(ctx context.Context, n core.Note) error {
	gate := make(chan struct{})
	g.mu.Lock()
	g.gates = append(g.gates, gate)
	i := len(g.gates) - 1
	g.mu.Unlock()

	g.arrived <- i
	select {
	case <-gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	return &core.RemoteError{Op: "update_note", Status: 503, Message: "unavailable"}
}

func (g *gatedUpdates) release(i int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.gates[i])
}

func TestToggleHighlight_TwoFailuresInEitherOrder(t *testing.T) {
	for _, order := range [][]int{{0, 1}, {1, 0}} {
		t.Run(fmt.Sprint(order), func(t *testing.T) {
			ctx := context.Background()
			s, err := store.Open(ctx, memory.NewKV())
			require.NoError(t, err)
			gw := newGatedUpdates()
			rec := reconcile.New(s, gw, core.StaticAccount("acc"))

			n, err := rec.CreateNote(ctx, "pin me")
			require.NoError(t, err)
			settle(t, rec)

			first, err := rec.ToggleHighlight(ctx, n.ID)
			require.NoError(t, err)
			assert.True(t, first.Highlighted)
			<-gw.arrived
			second, err := rec.ToggleHighlight(ctx, n.ID)
			require.NoError(t, err)
			assert.False(t, second.Highlighted)
			<-gw.arrived

			for _, i := range order {
				gw.release(i)
			}
			results := settle(t, rec)
			require.Len(t, results, 2)
			for _, r := range results {
				assert.Error(t, r.Err)
				assert.True(t, r.Reverted)
			}

			got, ok := s.Note(n.ID)
			require.True(t, ok)
			assert.False(t, got.Highlighted)
		})
	}
}
