package rest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deyanlaf0409/noteblocks/pkg/adapters/memory"
	"github.com/deyanlaf0409/noteblocks/pkg/adapters/rest"
	"github.com/deyanlaf0409/noteblocks/pkg/core"
	"github.com/deyanlaf0409/noteblocks/pkg/reconcile"
	"github.com/deyanlaf0409/noteblocks/pkg/store"
)

var secret = []byte("test-secret")

func newServer(t *testing.T) (*rest.Server, *httptest.Server) {
	t.Helper()
	srv := rest.NewServer(memory.NewGateway(), rest.ServerConfig{Secret: secret})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, ts
}

func newClient(t *testing.T, baseURL, account string) *rest.Client {
	t.Helper()
	token, err := rest.IssueToken(secret, account, "user-"+account, time.Hour)
	require.NoError(t, err)
	return rest.NewClient(rest.Config{BaseURL: baseURL, Token: token})
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	c := newClient(t, ts.URL, "acc")

	at := time.Date(2030, 1, 1, 9, 30, 0, 0, time.UTC)
	n := core.Note{
		ID:           "n1",
		Text:         "remote",
		DateCreated:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateModified: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		ReminderDate: &at,
		FolderID:     core.StringPtr("f1"),
		Media:        []string{"a.png"},
	}
	require.NoError(t, c.CreateFolder(ctx, core.Folder{ID: "f1", Name: "Work"}, "acc"))
	require.NoError(t, c.CreateNote(ctx, n, "acc"))
	require.NoError(t, c.CreateNote(ctx, n, "acc"), "create is idempotent")

	n.Highlighted = true
	require.NoError(t, c.UpdateNote(ctx, n))

	data, err := c.FetchAccountData(ctx, "acc")
	require.NoError(t, err)
	assert.Equal(t, "user-acc", data.Username)
	require.Len(t, data.Notes, 1)
	assert.Equal(t, n, data.Notes[0])
	assert.Equal(t, []core.Folder{{ID: "f1", Name: "Work"}}, data.Folders)
	assert.Zero(t, data.Skipped)

	require.NoError(t, c.DeleteNote(ctx, "n1"))
	require.NoError(t, c.DeleteFolder(ctx, "f1"))
	data, err = c.FetchAccountData(ctx, "acc")
	require.NoError(t, err)
	assert.Empty(t, data.Notes)
	assert.Empty(t, data.Folders)
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)

	statusOf := func(err error) int {
		var re *core.RemoteError
		require.ErrorAs(t, err, &re)
		return re.Status
	}

	t.Run("missing token", func(t *testing.T) {
		c := rest.NewClient(rest.Config{BaseURL: ts.URL})
		_, err := c.FetchAccountData(ctx, "acc")
		assert.Equal(t, http.StatusUnauthorized, statusOf(err))
	})

	t.Run("other account", func(t *testing.T) {
		c := newClient(t, ts.URL, "acc")
		_, err := c.FetchAccountData(ctx, "someone-else")
		assert.Equal(t, http.StatusForbidden, statusOf(err))
	})

	t.Run("unknown note", func(t *testing.T) {
		c := newClient(t, ts.URL, "acc")
		err := c.UpdateNote(ctx, core.Note{ID: "ghost"})
		assert.Equal(t, http.StatusNotFound, statusOf(err))
		assert.Contains(t, err.Error(), "ghost")
	})

	t.Run("note of another account", func(t *testing.T) {
		owner := newClient(t, ts.URL, "owner")
		require.NoError(t, owner.CreateNote(ctx, core.Note{ID: "private"}, "owner"))

		intruder := newClient(t, ts.URL, "intruder")
		assert.Equal(t, http.StatusNotFound, statusOf(intruder.DeleteNote(ctx, "private")))
	})

	t.Run("unreachable", func(t *testing.T) {
		c := rest.NewClient(rest.Config{BaseURL: "http://127.0.0.1:1", Token: "x"})
		err := c.DeleteNote(ctx, "n")
		assert.Equal(t, 0, statusOf(err))
		assert.True(t, core.IsRemote(err))
	})
}

func TestClient_SkipsMalformedRecords(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"username": "bob",
			"notes": [
				{"id": "1", "text": "fine"},
				{"id": 2, "text": "wrong type"},
				{"id": "", "text": "no id"},
				{"id": "3", "text": "fine too", "unexpected": true}
			],
			"folders": [{"id": "f", "name": "ok"}, "nonsense"]
		}`))
	}))
	defer ts.Close()

	c := rest.NewClient(rest.Config{BaseURL: ts.URL})
	data, err := c.FetchAccountData(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, data.Notes, 1)
	assert.Equal(t, "1", data.Notes[0].ID)
	assert.Len(t, data.Folders, 1)
	assert.Equal(t, 4, data.Skipped)
}

func TestClient_MalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer ts.Close()

	c := rest.NewClient(rest.Config{BaseURL: ts.URL})
	_, err := c.FetchAccountData(context.Background(), "bob")
	require.Error(t, err)
	assert.True(t, core.IsRemote(err))
}

func TestServer_Health(t *testing.T) {
	_, ts := newServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// The reconciler's highlight rollback works the same over HTTP.
func TestReconcileOverHTTP(t *testing.T) {
	ctx := context.Background()
	srv, ts := newServer(t)
	c := newClient(t, ts.URL, "acc")

	s, err := store.Open(ctx, memory.NewKV())
	require.NoError(t, err)
	rec := reconcile.New(s, c, core.StaticAccount("acc"))

	n, err := rec.CreateNote(ctx, "over the wire")
	require.NoError(t, err)
	_, err = rec.Settle(ctx)
	require.NoError(t, err)
	require.Len(t, srv.Backend().Notes("acc"), 1)

	srv.Backend().Fail(memory.OpUpdateNote, errors.New("maintenance"))
	_, err = rec.ToggleHighlight(ctx, n.ID)
	require.NoError(t, err)

	results, err := rec.Settle(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Reverted)
	assert.Contains(t, results[0].Err.Error(), "maintenance")

	got, _ := s.Note(n.ID)
	assert.False(t, got.Highlighted)
}
