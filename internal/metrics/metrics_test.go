package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCollectors(t *testing.T) {
	StyleLoadsTotal.Inc()
	DeferredTotal.WithLabelValues("idle", "not_ready").Inc()
	Since(AggregationDurationMs, time.Now().Add(-3*time.Millisecond))

	srv := httptest.NewServer(Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "ejmap_style_loads_total")
	assert.Contains(t, string(body), `ejmap_deferred_events_total{event="idle",reason="not_ready"}`)
	assert.Contains(t, string(body), "ejmap_aggregation_duration_ms_count")
}

func TestServeEmptyAddrIsNoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	Serve(ctx, "")
}
