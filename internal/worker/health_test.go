package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func get(t *testing.T, h http.Handler, path string) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestHealthServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	hs := NewHealthServer(0, client, "prompt.render", "prompt-workers", true, zaptest.NewLogger(t))
	h := hs.Handler()

	code, resp := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, map[string]string{"redis": "healthy", "tokenizer": "enabled"}, resp.Checks)

	code, resp = get(t, h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code, "not ready before the consumer group exists")
	assert.Equal(t, "not ready", resp.Status)

	require.NoError(t, client.XGroupCreateMkStream(context.Background(), "prompt.render", "prompt-workers", "0").Err())
	code, resp = get(t, h, "/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "present", resp.Checks["consumer_group"])

	mr.Close()
	code, resp = get(t, h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Checks["redis"], "unhealthy")
}

func TestHealthServer_StopWithoutStart(t *testing.T) {
	hs := NewHealthServer(0, nil, "s", "g", false, zaptest.NewLogger(t))
	assert.NoError(t, hs.Stop())
}
