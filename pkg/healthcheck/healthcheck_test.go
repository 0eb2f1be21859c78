package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func staticChecker(status Status, message string) *CustomChecker {
	return NewCustomChecker("ignored", func(context.Context) (Status, string, interface{}) {
		return status, message, nil
	})
}

func TestCheck_AggregatesWorstStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
		{"no checkers", nil, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := New("test", zaptest.NewLogger(t))
			for i, s := range tt.statuses {
				hc.Register(string(rune('a'+i)), staticChecker(s, ""))
			}

			got := hc.Check(context.Background())

			assert.Equal(t, tt.want, got.Status)
			assert.Len(t, got.Checks, len(tt.statuses))
		})
	}
}

func TestCheck_NamesChecksAndSortsThem(t *testing.T) {
	hc := New("test", zaptest.NewLogger(t))
	hc.Register("redis", staticChecker(StatusHealthy, ""))
	hc.Register("database", staticChecker(StatusHealthy, ""))
	hc.Register("nats", NewConnectionChecker(func() bool { return false }))

	got := hc.Check(context.Background())

	require.Len(t, got.Checks, 3)
	assert.Equal(t, "database", got.Checks[0].Name)
	assert.Equal(t, "nats", got.Checks[1].Name)
	assert.Equal(t, "not connected", got.Checks[1].Message)
	assert.Equal(t, "redis", got.Checks[2].Name)
	assert.Equal(t, StatusUnhealthy, got.Status)
}

func TestCheck_UsesCache(t *testing.T) {
	var calls int32
	hc := New("test", zaptest.NewLogger(t))
	hc.Register("counter", NewCustomChecker("counter", func(context.Context) (Status, string, interface{}) {
		atomic.AddInt32(&calls, 1)
		return StatusHealthy, "", nil
	}))

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	hc.SetCacheTTL(0)
	hc.Check(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPingChecker(t *testing.T) {
	ok := NewPingChecker("blob_store", func(context.Context) error { return nil }).Check(context.Background())
	bad := NewPingChecker("blob_store", func(context.Context) error { return errors.New("bucket missing") }).Check(context.Background())

	assert.Equal(t, StatusHealthy, ok.Status)
	assert.Equal(t, StatusUnhealthy, bad.Status)
	assert.Equal(t, "bucket missing", bad.Message)
}

func TestHandlers(t *testing.T) {
	hc := New("1.2.3", zaptest.NewLogger(t))
	hc.Register("database", staticChecker(StatusDegraded, "slow"))

	rec := httptest.NewRecorder()
	hc.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "1.2.3", body["version"])

	rec = httptest.NewRecorder()
	hc.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	hc.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}

func TestCheck_MarshalsDurationInMilliseconds(t *testing.T) {
	data, err := json.Marshal(Check{Name: "x", Status: StatusHealthy, Duration: 1500 * time.Millisecond})

	require.NoError(t, err)
	assert.Contains(t, string(data), `"duration_ms":1500`)
}
