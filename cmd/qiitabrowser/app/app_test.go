package app

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/qiitabrowser"
	"github.com/agentstation/qiitabrowser/internal/config"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		BaseURL:      qiita.BaseURL,
		CacheDir:     t.TempDir(),
		CacheBackend: "disk",
		CacheMaxSize: 16 * 1024 * 1024,
		LogLevel:     "error",
		LogFormat:    "json",
		Output:       "json",
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := New("1.0.0", "abc123", "2024-01-01", "test", WithConfig(testConfig(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	return app
}

func TestApp_New(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, "1.0.0", app.Version())
	assert.Equal(t, "abc123", app.Commit())
	assert.Equal(t, "2024-01-01", app.Date())
	assert.Equal(t, "test", app.BuiltBy())
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, app.Config())
	assert.Equal(t, "json", app.OutputFormat())
}

func TestApp_Application_Singleton(t *testing.T) {
	app := newTestApp(t)

	const n = 16
	got := make([]qiitabrowser.Application, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := app.Application()
			assert.NoError(t, err)
			got[i] = a
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, got[0], got[i])
	}
	assert.True(t, got[0].Hub().Initialized(), "application is started")
}

func TestApp_Application_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheBackend = "tape"
	app, err := New("dev", "", "", "", WithConfig(cfg))
	require.NoError(t, err)

	_, err = app.Application()
	assert.Error(t, err)
}

func TestApp_ShutdownWithoutApplication(t *testing.T) {
	app := newTestApp(t)
	assert.NoError(t, app.Shutdown(context.Background()))
}

func TestExecute_Version(t *testing.T) {
	app := newTestApp(t)

	root := app.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "-v"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "qiitabrowser 1.0.0")
	assert.Contains(t, out.String(), "commit:   abc123")
}

func TestExecute_Cache(t *testing.T) {
	app := newTestApp(t)

	root := app.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "--format", "yaml"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "backend: disk")
	assert.Contains(t, out.String(), "max_size: 16777216")
}

func TestExecute_InvalidFormat(t *testing.T) {
	app := newTestApp(t)
	err := app.Execute(context.Background(), []string{"cache", "-o", "xml"})
	assert.Error(t, err)
}

func TestWithApplicationOptions(t *testing.T) {
	custom := qiita.User{ID: "anon"}
	app, err := New("dev", "", "", "",
		WithConfig(testConfig(t)),
		WithApplicationOptions(qiitabrowser.WithPlaceholderProfile(custom)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	a, err := app.Application()
	require.NoError(t, err)
	assert.Equal(t, custom, a.Hub().Profile().Value())
}
