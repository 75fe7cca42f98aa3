package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/car-advisor-bot/internal/usecase"
	"go.uber.org/zap"
)

type stubStats struct{ s usecase.Stats }

func (s stubStats) Stats() usecase.Stats { return s.s }

func serve(t *testing.T, h *Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	NewRouter(h, zap.NewNop()).ServeHTTP(rec, req)
	return rec
}

func TestHealthOK(t *testing.T) {
	h := NewHandler(stubStats{}, map[string]Check{
		"db":    func(context.Context) error { return nil },
		"redis": func(context.Context) error { return nil },
	}, nil, nil, nil)

	rec := serve(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, map[string]string{"db": "ok", "redis": "ok"}, body.Checks)
}

func TestHealthDegraded(t *testing.T) {
	h := NewHandler(stubStats{}, map[string]Check{
		"db":    func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}, nil, nil, nil)

	rec := serve(t, h, "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "connection refused", checks["redis"])
	assert.Equal(t, "ok", checks["db"])
}

func TestStats(t *testing.T) {
	h := NewHandler(
		stubStats{usecase.Stats{Sessions: map[string]int{"Idle": 3, "AskAI": 1}, InFlight: 1}},
		nil,
		func() int64 { return 4 },
		func() int64 { return 2 },
		nil,
	)

	rec := serve(t, h, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Sessions["Idle"])
	assert.Equal(t, []string{"AskAI", "Idle"}, body.States)
	assert.Equal(t, int64(1), body.AIInFlight)
	assert.Equal(t, int64(4), body.QueueDepth)
	assert.Equal(t, int64(2), body.AuditDropped)
}

func TestStatsEmpty(t *testing.T) {
	rec := serve(t, NewHandler(stubStats{}, nil, nil, nil, nil), "/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Sessions)
	assert.Zero(t, body.QueueDepth)
}

func TestHeartbeat(t *testing.T) {
	rec := serve(t, NewHandler(stubStats{}, nil, nil, nil, nil), "/ping")
	assert.Equal(t, http.StatusOK, rec.Code)
}
