package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsHandlerReady(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	handler := NewMetricsHandler(nil, map[string]ReadinessCheck{"postgres": ok})
	c, w := newTestContext(http.MethodGet, "/ready", "", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"postgres":"ok"}}`, w.Body.String())

	handler = NewMetricsHandler(nil, map[string]ReadinessCheck{"postgres": ok, "redis": down})
	c, w = newTestContext(http.MethodGet, "/ready", "", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerPrometheusDisabled(t *testing.T) {
	handler := NewMetricsHandler(nil, nil)
	c, w := newTestContext(http.MethodGet, "/metrics", "", nil)
	handler.Prometheus(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
