package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-observer/src/cache"
	datasource "crypto-observer/src/data_source"
	"crypto-observer/src/logger"
	"crypto-observer/src/models"
	"crypto-observer/src/ratelimit"
	"crypto-observer/src/utils"
)

// -----------------------------------------------------------------------------

func newTestServer(t *testing.T) *FastAPIServer {
	t.Helper()

	cfg := &models.MConfig{
		Name:     "test",
		Host:     "127.0.0.1",
		Port:     8000,
		LogLevel: "ERROR",
	}
	log := logger.NewLogger("error", "test")
	agg := datasource.NewAggregator(
		nil,
		cache.NewTTLCache[models.MIdentity]("identity", time.Minute),
		cache.NewTTLCache[models.MAggregatedRecord]("result", time.Minute),
		ratelimit.NewRegistry(models.MBreakerConfig{FailureThreshold: 5, SuccessThreshold: 2, ResetTimeoutSeconds: 30}, log),
		log,
	)
	return NewFastAPIServer(cfg, agg, utils.NewHistoryStore(256, 100), nil, log)
}

func getJSON(t *testing.T, s *FastAPIServer, path string) (int, map[string]interface{}) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.engine.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

// -----------------------------------------------------------------------------

func TestHealthReportsHubConnectionCount(t *testing.T) {
	s := newTestServer(t)
	go s.handleWebsockets()

	code, body := getJSON(t, s, "/api/health")
	require.Equal(t, 200, code)
	assert.Equal(t, float64(0), body["connections"])

	first := &Client{hub: s, send: make(chan *models.MLatestData, 1)}
	second := &Client{hub: s, send: make(chan *models.MLatestData, 1)}
	s.register <- first
	s.register <- second

	assert.Eventually(t, func() bool {
		return s.clientCount.Load() == 2
	}, time.Second, time.Millisecond)

	_, body = getJSON(t, s, "/api/health")
	assert.Equal(t, float64(2), body["connections"])

	s.unregister <- first
	assert.Eventually(t, func() bool {
		return s.clientCount.Load() == 1
	}, time.Second, time.Millisecond)

	_, body = getJSON(t, s, "/api/health")
	assert.Equal(t, float64(1), body["connections"])
}

// -----------------------------------------------------------------------------

func TestInsightAnswers503WithoutGenerator(t *testing.T) {
	s := newTestServer(t)

	code, body := getJSON(t, s, "/api/insight/btc")
	assert.Equal(t, 503, code)
	assert.Contains(t, body["error"], "not configured")
}
