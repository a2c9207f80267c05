package items

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/qiitabrowser"
	"github.com/agentstation/qiitabrowser/internal/appcontext"
	"github.com/agentstation/qiitabrowser/pkg/logging"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

func newMock(t *testing.T, h http.HandlerFunc) *appcontext.Mock {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	app, err := qiitabrowser.New(
		qiitabrowser.WithBaseURL(srv.URL+"/api/v2/"),
		qiitabrowser.WithCacheRoot(t.TempDir()),
		qiitabrowser.WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	require.NoError(t, app.Start())
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	return &appcontext.Mock{
		ApplicationFunc: func() (qiitabrowser.Application, error) { return app, nil },
	}
}

func itemsHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/items", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":"a1","title":"First"},{"id":"b2","title":"Second"}]`)
	}
}

func TestFetchPublishesToItemsChannel(t *testing.T) {
	mock := newMock(t, itemsHandler(t))
	a, _ := mock.Application()
	a.Hub().ToggleFavorite(qiita.Item{ID: "b2"}, true)

	list, err := Fetch(context.Background(), mock, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].Faved)
	assert.True(t, list[1].Faved)
	assert.Equal(t, list, a.Hub().Items().Value())
}

func TestCommandPrintsJSON(t *testing.T) {
	mock := newMock(t, itemsHandler(t))

	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--page", "1", "--per-page", "2"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var got []qiita.FavableItem
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Item.Title)
}

func TestFetchPropagatesAPIError(t *testing.T) {
	mock := newMock(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := Fetch(context.Background(), mock, 1, 20)
	require.Error(t, err)

	a, _ := mock.Application()
	assert.Empty(t, a.Hub().Items().Value(), "failed fetch must not publish")
}
