package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := New(Options{BaseURL: server.URL + "/api/v1/", HTTPClient: server.Client()})
	t.Cleanup(c.Close)
	return c
}

func TestNew_TrimsBaseURL(t *testing.T) {
	assert.Equal(t, "http://h/api", New(Options{BaseURL: "http://h/api/"}).BaseURL())
	assert.Equal(t, defaultBaseURL, New(Options{}).BaseURL())
}

func TestClient_ErrorNormalization(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errors.Code
		wantMsg  string
	}{
		{"embedded message", http.StatusNotFound, `{"error":"not_found","message":"Resource not found"}`, errors.CodeNotFound, "Resource not found"},
		{"no body", http.StatusInternalServerError, ``, errors.CodeHTTP, "HTTP error! status: 500"},
		{"non-json body", http.StatusBadGateway, `<html>`, errors.CodeHTTP, "HTTP error! status: 502"},
		{"unauthorized", http.StatusUnauthorized, `{"error":"unauthorized","message":"Admin authentication required"}`, errors.CodeUnauthorized, "Admin authentication required"},
		{"rate limited", http.StatusTooManyRequests, `{"error":"too_many_request","message":"Rate limit exceeded"}`, errors.CodeRateLimited, "Rate limit exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			err := c.Get(context.Background(), "/tags", nil, &[]domain.Tag{})
			var e *errors.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.wantCode, e.Code)
			assert.Equal(t, tt.wantMsg, e.Message)
			assert.Equal(t, tt.status, e.HTTPStatus())
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := New(Options{BaseURL: url})
	err := c.Get(context.Background(), "/tags", nil, nil)
	assert.ErrorIs(t, err, errors.ErrNetwork)
}

func TestClient_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := c.Get(ctx, "/tags", nil, nil)
	assert.ErrorIs(t, err, errors.ErrCanceled)
}

func TestClient_EmptyResponses(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusOK} {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})
		var out map[string]any
		require.NoError(t, c.Delete(context.Background(), "/ecomm/resources/r1", &out))
		assert.Nil(t, out)
	}
}

func TestClient_Headers(t *testing.T) {
	var mu sync.Mutex
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = r.Header.Clone()
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	c.SetAuthToken("tok")
	c.SetHeader("X-Client", "cli")
	require.NoError(t, c.Post(context.Background(), "/echo", map[string]string{"a": "b"}, nil))

	mu.Lock()
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, "cli", got.Get("X-Client"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Len(t, got.Get(RequestIDHeader), 36)
	mu.Unlock()

	c.RemoveAuthToken()
	require.NoError(t, c.Get(context.Background(), "/echo", nil, nil))
	mu.Lock()
	assert.Empty(t, got.Get("Authorization"))
	assert.Empty(t, got.Get("Content-Type"))
	mu.Unlock()
}

func TestClient_JSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["name"]})
	})

	var out map[string]string
	require.NoError(t, c.Put(context.Background(), "/x", map[string]string{"name": "go"}, &out))
	assert.Equal(t, "go", out["echo"])
}

type recordingObserver struct {
	mu     sync.Mutex
	routes []string
	status []int
}

func (o *recordingObserver) ObserveRequest(_, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, route)
	o.status = append(o.status, status)
}

func TestClient_Observer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	obs := &recordingObserver{}
	c := New(Options{BaseURL: server.URL, Observer: obs})
	require.NoError(t, c.Get(context.Background(), "/ecomm/resources/abc", nil, nil))

	assert.Equal(t, []string{"/{product}/resources/{id}"}, obs.routes)
	assert.Equal(t, []int{http.StatusNoContent}, obs.status)
}

func TestRouteOf(t *testing.T) {
	assert.Equal(t, "/{product}/tags", routeOf("/crm/tags"))
	assert.Equal(t, "/resources", routeOf("/resources"))
	assert.Equal(t, "/resources/{id}", routeOf("/resources/r1"))
}

func TestClient_RateLimitedOutbound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := New(Options{BaseURL: server.URL, RateLimit: 0.1, Burst: 1})
	defer c.Close()

	require.NoError(t, c.Get(context.Background(), "/ecomm/tags", nil, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := c.Get(ctx, "/ecomm/tags", nil, nil)
	assert.Error(t, err)

	// Other products have their own bucket.
	require.NoError(t, c.Get(context.Background(), "/crm/tags", nil, nil))
}
