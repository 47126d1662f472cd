package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedObserver struct {
	mu    sync.Mutex
	codes []int
}

func (o *recordedObserver) ObserveRequest(backend, method string, code int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.codes = append(o.codes, code)
}

func TestDoPostJSON(t *testing.T) {
	var gotBody map[string]any
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/identify", r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"job_id":"abc","confidence":12345678901234567890}`))
	}))
	defer srv.Close()

	obs := &recordedObserver{}
	c := NewClient(WithObserver(obs))
	result, err := c.Do(context.Background(), Request{
		Backend: "audio",
		Method:  http.MethodPost,
		URL:     srv.URL + "/identify",
		Body:    map[string]any{"source": "song.mp3", "duration": 10},
		Timeout: time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]any{"source": "song.mp3", "duration": float64(10)}, gotBody)

	obj, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "abc", obj["job_id"])
	assert.Equal(t, json.Number("12345678901234567890"), obj["confidence"])
	assert.Equal(t, []int{200}, obs.codes)
}

func TestDoGetQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "overlay", r.URL.Query().Get("service"))
		assert.Zero(t, r.ContentLength)
		_, _ = w.Write([]byte(`[{"service":"overlay"}]`))
	}))
	defer srv.Close()

	result, err := NewClient().Do(context.Background(), Request{
		Method: http.MethodGet,
		URL:    srv.URL + "/failures",
		Query:  url.Values{"limit": {"10"}, "service": {"overlay"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"service": "overlay"}}, result)
}

func TestDoStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	obs := &recordedObserver{}
	_, err := NewClient(WithObserver(obs)).Do(context.Background(), Request{
		Method: http.MethodDelete,
		URL:    srv.URL + "/job/42",
	})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 500, statusErr.StatusCode)
	assert.Equal(t, "boom", statusErr.Body)
	assert.Equal(t, []int{500}, obs.codes)
}

func TestDoConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	obs := &recordedObserver{}
	_, err := NewClient(WithObserver(obs)).Do(context.Background(), Request{
		Method: http.MethodGet,
		URL:    addr + "/health",
	})

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.NotEmpty(t, netErr.Error())
	assert.Equal(t, []int{0}, obs.codes)
}

func TestDoTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	defer srv.Close()
	defer close(done)

	start := time.Now()
	_, err := NewClient().Do(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     srv.URL + "/queue/status",
		Timeout: 100 * time.Millisecond,
	})
	elapsed := time.Since(start)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Less(t, elapsed, 5*time.Second)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
}

func TestDoEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	result, err := NewClient().Do(context.Background(), Request{
		Method: http.MethodDelete,
		URL:    srv.URL + "/job/1",
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDoInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	_, err := NewClient().Do(context.Background(), Request{
		Method: http.MethodGet,
		URL:    srv.URL + "/templates",
	})
	require.Error(t, err)

	var netErr *NetworkError
	var statusErr *StatusError
	assert.False(t, errors.As(err, &netErr))
	assert.False(t, errors.As(err, &statusErr))
}

func TestDoInvalidURL(t *testing.T) {
	_, err := NewClient().Do(context.Background(), Request{
		Method: http.MethodGet,
		URL:    "://missing-scheme",
	})
	require.Error(t, err)

	var netErr *NetworkError
	assert.False(t, errors.As(err, &netErr))
}

func TestDoSharedTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(WithTransport(srv.Client().Transport))
	result, err := c.Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL + "/health"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "ok"}, result)
}

func TestDoTrailingData(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"junk after object", `{"a":1} junk`, true},
		{"second value", `{"a":1}{"b":2}`, true},
		{"trailing newline", "{\"a\":1}\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			result, err := NewClient().Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "trailing data")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"a": json.Number("1")}, result)
		})
	}
}

func TestDoBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadGateway)
		}
		_, _ = w.Write([]byte(r.URL.Query().Get("body")))
	}))
	defer srv.Close()

	c := NewClient(WithMaxBodyBytes(8))
	get := func(path, body string) (any, error) {
		return c.Do(context.Background(), Request{
			Method: http.MethodGet,
			URL:    srv.URL + path,
			Query:  url.Values{"body": {body}},
		})
	}

	result, err := get("/ok", `[1,2,33]`)
	require.NoError(t, err)
	assert.Len(t, result, 3)

	_, err = get("/ok", `[1,2,3,4]`)
	var tooLarge *BodyTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(8), tooLarge.Limit)
	assert.Contains(t, err.Error(), "exceeds 8 bytes")

	_, err = get("/fail", "bad gateway")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "bad gate [truncated]", statusErr.Body)
}

func TestDoLogsRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := NewClient(WithLogger(log)).Do(context.Background(), Request{
		Backend: "monitor",
		Method:  http.MethodGet,
		URL:     srv.URL + "/health",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "backend request")
	assert.Contains(t, buf.String(), "backend=monitor")
	assert.Contains(t, buf.String(), "status=200")
}
