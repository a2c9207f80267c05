package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/qiitabrowser"
	"github.com/agentstation/qiitabrowser/internal/appcontext"
	"github.com/agentstation/qiitabrowser/internal/config"
	"github.com/agentstation/qiitabrowser/pkg/errors"
	"github.com/agentstation/qiitabrowser/pkg/logging"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

// fakeQiita serves the endpoints favorites uses and records stock calls.
type fakeQiita struct {
	mu      sync.Mutex
	stocked map[string]bool
	calls   []string
}

func (f *fakeQiita) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)

	switch {
	case r.URL.Path == "/api/v2/authenticated_user":
		_, _ = io.WriteString(w, `{"id":"alice","name":"Alice"}`)
	case r.URL.Path == "/api/v2/users/alice/stocks":
		_, _ = io.WriteString(w, `[{"id":"a1","title":"First"},{"id":"b2","title":"Second"}]`)
	case r.URL.Path == "/api/v2/items/a1":
		_, _ = io.WriteString(w, `{"id":"a1","title":"First"}`)
	case r.URL.Path == "/api/v2/items/a1/stock" && r.Method == http.MethodPut:
		f.stocked["a1"] = true
		w.WriteHeader(http.StatusNoContent)
	case r.URL.Path == "/api/v2/items/a1/stock" && r.Method == http.MethodDelete:
		if !f.stocked["a1"] {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"Not found","type":"not_found"}`)
			return
		}
		delete(f.stocked, "a1")
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Not found","type":"not_found"}`)
	}
}

func (f *fakeQiita) isStocked(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stocked[id]
}

func (f *fakeQiita) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newMock(t *testing.T, token string, h http.Handler) *appcontext.Mock {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	app, err := qiitabrowser.New(
		qiitabrowser.WithBaseURL(srv.URL+"/api/v2/"),
		qiitabrowser.WithCacheBackend("memory"),
		qiitabrowser.WithAccessToken(token),
		qiitabrowser.WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	require.NoError(t, app.Start())
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	return &appcontext.Mock{
		ApplicationFunc: func() (qiitabrowser.Application, error) { return app, nil },
		ConfigValue:     &config.Config{AccessToken: token},
	}
}

func TestListPublishesStocksToFavorites(t *testing.T) {
	mock := newMock(t, "tok", &fakeQiita{stocked: map[string]bool{}})

	list, err := List(context.Background(), mock, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Faved)
	assert.True(t, list[1].Faved)

	a, _ := mock.Application()
	assert.Equal(t, list, a.Hub().Favorites().Value())
	assert.Equal(t, map[string]bool{"a1": true, "b2": true}, a.Hub().FavedIDs())
	assert.Equal(t, "alice", a.Hub().Profile().Value().ID)
}

func TestSetStocksAndUnstocks(t *testing.T) {
	fake := &fakeQiita{stocked: map[string]bool{}}
	mock := newMock(t, "tok", fake)
	a, _ := mock.Application()
	a.Hub().Items().Publish([]qiita.FavableItem{{Item: qiita.Item{ID: "a1"}}})

	events := a.Hub().FavEvents().Subscribe()
	defer events.Cancel()

	ev, err := Set(context.Background(), mock, "a1", true)
	require.NoError(t, err)
	assert.Equal(t, qiita.FavEvent{ItemID: "a1", Faved: true}, ev)
	assert.True(t, fake.isStocked("a1"))
	assert.True(t, a.Hub().FavedIDs()["a1"])
	assert.True(t, a.Hub().Items().Value()[0].Faved)

	got, err := events.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	ev, err = Set(context.Background(), mock, "a1", false)
	require.NoError(t, err)
	assert.False(t, ev.Faved)
	assert.False(t, fake.isStocked("a1"))
	assert.Empty(t, a.Hub().FavedIDs())

	assert.Contains(t, fake.requests(), "PUT /api/v2/items/a1/stock")
	assert.Contains(t, fake.requests(), "DELETE /api/v2/items/a1/stock")
}

func TestRemoveNotStockedStillToggles(t *testing.T) {
	mock := newMock(t, "tok", &fakeQiita{stocked: map[string]bool{}})

	ev, err := Set(context.Background(), mock, "a1", false)
	require.NoError(t, err)
	assert.Equal(t, qiita.FavEvent{ItemID: "a1", Faved: false}, ev)
}

func TestSetUnknownItem(t *testing.T) {
	fake := &fakeQiita{stocked: map[string]bool{}}
	mock := newMock(t, "tok", fake)

	_, err := Set(context.Background(), mock, "zz", true)
	require.Error(t, err)

	var notFound *errors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "zz", notFound.ID)
	assert.NotContains(t, fake.requests(), "PUT /api/v2/items/zz/stock")
}

func TestRequiresAccessToken(t *testing.T) {
	mock := newMock(t, "", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected without a token")
	}))

	_, err := List(context.Background(), mock, 1, 20)
	var authErr *errors.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)

	_, err = Set(context.Background(), mock, "a1", true)
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
}

func TestAddCommandPrintsEvent(t *testing.T) {
	mock := newMock(t, "tok", &fakeQiita{stocked: map[string]bool{}})

	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"add", "a1"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var ev qiita.FavEvent
	require.NoError(t, json.Unmarshal(out.Bytes(), &ev))
	assert.Equal(t, qiita.FavEvent{ItemID: "a1", Faved: true}, ev)
}
