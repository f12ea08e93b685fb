package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-cycle/internal/config"
)

// -----------------------------------------------------------------------------
// Handler Tests
// -----------------------------------------------------------------------------

func serve(srv *FeedServer, req *http.Request) *http.Response {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w.Result()
}

// TestHandler_ServingContent verifies headers and body on both routes.
func TestHandler_ServingContent(t *testing.T) {
	srv := NewFeedServer("0")
	expectedICS := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")
	srv.Update(expectedICS)

	for _, route := range []string{config.RouteRoot, config.RouteFeed} {
		t.Run(route, func(t *testing.T) {
			resp := serve(srv, httptest.NewRequest(http.MethodGet, route, nil))
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
			assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
			assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
			assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
			assert.NotEmpty(t, resp.Header.Get(config.HeaderLastModified))

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, expectedICS, body)
		})
	}
}

func TestHandler_Head(t *testing.T) {
	srv := NewFeedServer("0")
	srv.Update([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR"))

	resp := serve(srv, httptest.NewRequest(http.MethodHead, "/", nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestHandler_UnknownRoute(t *testing.T) {
	srv := NewFeedServer("0")
	srv.Update([]byte("DATA"))

	resp := serve(srv, httptest.NewRequest(http.MethodGet, "/api/periods", nil))
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestHandler_Caching verifies ETag and Last-Modified revalidation.
func TestHandler_Caching(t *testing.T) {
	srv := NewFeedServer("0")
	srv.Update([]byte("DATA_VERSION_1"))

	first := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	etag := first.Header.Get(config.HeaderETag)
	lastMod := first.Header.Get(config.HeaderLastModified)
	require.NotEmpty(t, etag, "Server must provide an ETag")

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"Matching ETag", config.HeaderIfNoneMatch, etag, http.StatusNotModified},
		{"Stale ETag", config.HeaderIfNoneMatch, `"other"`, http.StatusOK},
		{"Same Last-Modified", config.HeaderIfModifiedSince, lastMod, http.StatusNotModified},
		{"Old Last-Modified", config.HeaderIfModifiedSince, time.Unix(0, 0).UTC().Format(http.TimeFormat), http.StatusOK},
		{"Garbage date", config.HeaderIfModifiedSince, "yesterday", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(tt.header, tt.value)
			resp := serve(srv, req)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want == http.StatusNotModified {
				body, _ := io.ReadAll(resp.Body)
				assert.Empty(t, body, "Body must be empty on 304 Not Modified")
			}
		})
	}
}

func TestUpdate_SameContentKeepsMetadata(t *testing.T) {
	srv := NewFeedServer("0")
	srv.Update([]byte("SAME"))
	before := srv.feed.Load()

	srv.Update([]byte("SAME"))
	assert.Same(t, before, srv.feed.Load())

	srv.Update([]byte("DIFFERENT"))
	assert.NotEqual(t, before.etag, srv.feed.Load().etag)
}

// TestHandler_MethodNotAllowed ensures strictly GET and HEAD are accepted.
func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := NewFeedServer("0")

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			resp := serve(srv, httptest.NewRequest(method, "/", nil))
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
			assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow))
		})
	}
}

// TestHandler_Initializing verifies the 503 behavior before the first month loads.
func TestHandler_Initializing(t *testing.T) {
	srv := NewFeedServer("0")

	resp := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

func TestHandler_CORS(t *testing.T) {
	srv := NewFeedServer("0")
	srv.Update([]byte("DATA"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://calendar.example.com")
	resp := serve(srv, req)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/", nil)
	preflight.Header.Set("Origin", "https://calendar.example.com")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp = serve(srv, preflight)
	defer func() { _ = resp.Body.Close() }()

	assert.Less(t, resp.StatusCode, 300)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodGet)
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_RaceCondition runs writers and readers concurrently. Run with `go test -race`.
func TestServer_RaceCondition(t *testing.T) {
	srv := NewFeedServer("0")
	var wg sync.WaitGroup
	end := time.Now().Add(300 * time.Millisecond)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				srv.Update([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
				time.Sleep(time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 16; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", w.Code)
				}
			}
		}()
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", config.LocalhostBindAddr+":0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()
	_, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	return port
}

// TestServer_Lifecycle verifies binding, serving and graceful shutdown.
func TestServer_Lifecycle(t *testing.T) {
	port := freePort(t)

	srv := NewFeedServer(port)
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	url := "http://127.0.0.1:" + port + config.RouteFeed

	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	resp, err := http.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	srv.Update([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR"))

	resp, err = http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

func TestServer_StartRequiresPort(t *testing.T) {
	err := NewFeedServer("").Start(context.Background())
	assert.EqualError(t, err, config.ErrPortRequired)
}
