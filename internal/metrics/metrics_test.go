package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveInvocation(t *testing.T) {
	m := New(nil)

	m.ObserveInvocation("monitor_health", "success", 20*time.Millisecond)
	m.ObserveInvocation("monitor_health", "success", 30*time.Millisecond)
	m.ObserveInvocation("monitor_health", "network", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.invocations.WithLabelValues("monitor_health", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("monitor_health", "network")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestObserveRequest(t *testing.T) {
	m := New(nil)

	m.ObserveRequest("dispatcher", http.MethodDelete, 200)
	m.ObserveRequest("dispatcher", http.MethodDelete, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("dispatcher", "DELETE", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("dispatcher", "DELETE", "0")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveInvocation("audio_status", "success", time.Millisecond)
		m.ObserveRequest("audio", http.MethodGet, 200)
	})
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.ObserveInvocation("image_info", "upstream", time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `home_display_tool_invocations_total{outcome="upstream",tool="image_info"} 1`)
}
