package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avembed/internal/bridge"
	"github.com/vyrodovalexey/avembed/internal/config"
	"github.com/vyrodovalexey/avembed/internal/router"
)

func newTestServer(t *testing.T, exec bridge.Executor, register func(*router.Table)) *Server {
	t.Helper()

	table := router.NewTable(nil)
	if register != nil {
		register(table)
	}

	cfg := config.DefaultConfig().Server
	return NewServer(&cfg, table, exec, nil, nil)
}

func doRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestDispatchMatched(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, func(table *router.Table) {
		require.NoError(t, table.AddRoute("/items/{id}/", map[string]router.Handler{
			"GET": func(_ context.Context, params *router.Params, _ string) (string, error) {
				return fmt.Sprintf(`{"id":%q}`, params.PathValue("id")), nil
			},
		}))
	})

	rec := doRequest(t, s, http.MethodGet, "/items/42", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"42"}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestDispatchTrailingSlashEquivalence(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, func(table *router.Table) {
		require.NoError(t, table.AddRoute("/items/{id}", map[string]router.Handler{
			"GET": func(_ context.Context, params *router.Params, _ string) (string, error) {
				return fmt.Sprintf(`{"id":%q}`, params.PathValue("id")), nil
			},
		}))
	})

	for _, target := range []string{"/items/42", "/items/42/"} {
		rec := doRequest(t, s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.JSONEq(t, `{"id":"42"}`, rec.Body.String(), target)
	}

	// A bare /items/ has no id segment and matches nothing.
	rec := doRequest(t, s, http.MethodGet, "/items/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDispatchQueryParams(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, func(table *router.Table) {
		require.NoError(t, table.AddRoute("/search", map[string]router.Handler{
			"GET": func(_ context.Context, params *router.Params, _ string) (string, error) {
				return fmt.Sprintf(`{"q":%q}`, params.QueryValue("q")), nil
			},
		}))
	})

	rec := doRequest(t, s, http.MethodGet, "/search?q=gears", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"q":"gears"}`, rec.Body.String())
}

func TestDispatchNotFound(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, func(table *router.Table) {
		require.NoError(t, table.AddRoute("/items/{id}", map[string]router.Handler{
			"GET": func(_ context.Context, _ *router.Params, _ string) (string, error) {
				return "{}", nil
			},
		}))
	})

	rec := doRequest(t, s, http.MethodGet, "/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not Found")
}

func TestDispatchMethodNotAllowed(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, func(table *router.Table) {
		require.NoError(t, table.AddRoute("/widgets/", map[string]router.Handler{
			"GET": func(_ context.Context, _ *router.Params, _ string) (string, error) {
				return "[]", nil
			},
		}))
	})

	rec := doRequest(t, s, http.MethodPost, "/widgets", "{}")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET", rec.Header().Get("Allow"))
	assert.Contains(t, rec.Body.String(), "Method Not Allowed")
}

func TestDispatchHandlerError(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, func(table *router.Table) {
		require.NoError(t, table.AddRoute("/broken", map[string]router.Handler{
			"GET": func(_ context.Context, _ *router.Params, _ string) (string, error) {
				return "", errors.New("downstream unavailable")
			},
		}))
	})

	rec := doRequest(t, s, http.MethodGet, "/broken", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
	assert.NotContains(t, rec.Body.String(), "downstream unavailable")
}

func TestDispatchHandlerPanic(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, func(table *router.Table) {
		require.NoError(t, table.AddRoute("/panic", map[string]router.Handler{
			"GET": func(_ context.Context, _ *router.Params, _ string) (string, error) {
				panic("boom")
			},
		}))
	})

	rec := doRequest(t, s, http.MethodGet, "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDispatchRequestBody(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, func(table *router.Table) {
		require.NoError(t, table.AddRoute("/echo", map[string]router.Handler{
			"POST": func(_ context.Context, _ *router.Params, body string) (string, error) {
				return body, nil
			},
		}))
	})

	rec := doRequest(t, s, http.MethodPost, "/echo", `{"hello":"world"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestDispatchBodyTooLarge(t *testing.T) {
	t.Parallel()

	table := router.NewTable(nil)
	require.NoError(t, table.AddRoute("/echo", map[string]router.Handler{
		"POST": func(_ context.Context, _ *router.Params, body string) (string, error) {
			return body, nil
		},
	}))

	cfg := config.DefaultConfig().Server
	cfg.MaxBodyBytes = 8
	s := NewServer(&cfg, table, nil, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/echo", strings.Repeat("x", 64))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDispatchOnBridge(t *testing.T) {
	t.Parallel()

	loop := bridge.NewLoop(8, nil)
	ctx, cancel := context.WithCancel(context.Background())

	var done sync.WaitGroup
	done.Add(1)
	go func() {
		defer done.Done()
		loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		loop.Close()
		done.Wait()
	})

	s := newTestServer(t, loop, func(table *router.Table) {
		require.NoError(t, table.AddRoute("/items/{id}", map[string]router.Handler{
			"GET": func(_ context.Context, params *router.Params, _ string) (string, error) {
				return fmt.Sprintf(`{"id":%q}`, params.PathValue("id")), nil
			},
		}))
	})

	rec := doRequest(t, s, http.MethodGet, "/items/7", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"7"}`, rec.Body.String())
}

func TestDispatchBridgePanicBecomesError(t *testing.T) {
	t.Parallel()

	loop := bridge.NewLoop(8, nil)
	ctx, cancel := context.WithCancel(context.Background())

	var done sync.WaitGroup
	done.Add(1)
	go func() {
		defer done.Done()
		loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		loop.Close()
		done.Wait()
	})

	s := newTestServer(t, loop, func(table *router.Table) {
		require.NoError(t, table.AddRoute("/panic", map[string]router.Handler{
			"GET": func(_ context.Context, _ *router.Params, _ string) (string, error) {
				panic("boom")
			},
		}))
	})

	rec := doRequest(t, s, http.MethodGet, "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, func(table *router.Table) {
		require.NoError(t, table.AddRoute("/ping", map[string]router.Handler{
			"GET": func(_ context.Context, _ *router.Params, _ string) (string, error) {
				return `{"pong":true}`, nil
			},
		}))
	})

	t.Run("generates an id", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, s, http.MethodGet, "/ping", "")
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("honors a client id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("healthz always ok", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, nil, nil)
		rec := doRequest(t, s, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readyz requires routes", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, nil, nil)
		rec := doRequest(t, s, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("readyz ok with routes", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, nil, func(table *router.Table) {
			require.NoError(t, table.AddRoute("/ping", map[string]router.Handler{
				"GET": func(_ context.Context, _ *router.Params, _ string) (string, error) {
					return "{}", nil
				},
			}))
		})
		rec := doRequest(t, s, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestStopWithoutStart(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil, nil)
	assert.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
}
