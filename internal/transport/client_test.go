package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(c *Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

func tag(name string, order *[]string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			*order = append(*order, name)
			return next.RoundTrip(req)
		})
	}
}

func TestClientMiddlewareOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var order []string
	c := New(WithMiddleware(tag("first", &order), tag("second", &order)))

	resp, err := get(c, srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDeriveSharesNetwork(t *testing.T) {
	var calls atomic.Int32
	network := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
	})

	var order []string
	base := New(WithNetwork(network), WithMiddleware(tag("base", &order)))
	derived := base.Derive(WithMiddleware(tag("derived", &order)))

	resp, err := get(derived, "http://example.invalid/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, []string{"base", "derived"}, order)

	order = nil
	resp, err = get(base, "http://example.invalid/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, []string{"base"}, order, "deriving must not change the parent")

	assert.Equal(t, int32(2), calls.Load())
	assert.NotSame(t, base.HTTP(), derived.HTTP())
	assert.Nil(t, base.Cache())
}

func TestCachedGetServedFromCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Cache-Control", "max-age=300")
		_, _ = io.WriteString(w, `[{"id":"a"}]`)
	}))
	defer srv.Close()

	for _, backend := range []string{BackendDisk, BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			hits.Store(0)
			var cache Cache
			if backend == BackendDisk {
				cache = NewDiskCache(t.TempDir(), 0, nil)
			} else {
				cache = NewMemoryCache(0, nil)
			}
			c := New(WithCache(cache))

			fetch := func() *http.Response {
				resp, err := get(c, srv.URL+"/items")
				require.NoError(t, err)
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				resp.Body.Close()
				assert.JSONEq(t, `[{"id":"a"}]`, string(body))
				return resp
			}

			first := fetch()
			assert.Empty(t, first.Header.Get("X-From-Cache"))

			second := fetch()
			assert.Equal(t, "1", second.Header.Get("X-From-Cache"))
			assert.Equal(t, int32(1), hits.Load())
			assert.Positive(t, cache.Size())
		})
	}
}

