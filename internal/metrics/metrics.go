package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	AggregationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ejmap_aggregations_total",
		Help: "Total number of viewport aggregation passes",
	})
	AggregationDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ejmap_aggregation_duration_ms",
		Help:    "Viewport aggregation duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	RenderedFeatures = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ejmap_rendered_features",
		Help:    "Rendered feature records returned per aggregation, before dedupe",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	})
	DeferredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ejmap_deferred_events_total",
		Help: "Events skipped because the map was not ready or a layer was missing",
	}, []string{"event", "reason"})
	FiltersAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ejmap_filters_applied_total",
		Help: "Highlight filters applied, by tier",
	}, []string{"tier"})
	RendererErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ejmap_renderer_errors_total",
		Help: "Renderer calls that failed and were ignored",
	}, []string{"op"})
	StyleLoadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ejmap_style_loads_total",
		Help: "Total style loads",
	})
)

func init() {
	prometheus.MustRegister(AggregationsTotal)
	prometheus.MustRegister(AggregationDurationMs)
	prometheus.MustRegister(RenderedFeatures)
	prometheus.MustRegister(DeferredTotal)
	prometheus.MustRegister(FiltersAppliedTotal)
	prometheus.MustRegister(RendererErrorsTotal)
	prometheus.MustRegister(StyleLoadsTotal)
}

func Handler() http.Handler { return promhttp.Handler() }

// Since observes the milliseconds elapsed from start.
func Since(h prometheus.Observer, start time.Time) {
	h.Observe(float64(time.Since(start).Microseconds()) / 1000)
}

// Serve exposes /metrics on addr until ctx is done. An empty addr is a no-op.
func Serve(ctx context.Context, addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		zap.L().Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("metrics server", zap.Error(err))
		}
	}()
}
