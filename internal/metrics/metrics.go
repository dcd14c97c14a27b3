package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics for the hometray poll and render pipeline.

var (
	// Poll cycles by outcome: ok|fetch_error|state_error|render_error.
	Polls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hometray_polls_total",
		Help: "Entity refresh cycles by result",
	}, []string{"result"})

	// Hub API latency.
	HubRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hometray_hub_request_duration_seconds",
		Help:    "Home Assistant API request latency",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"operation", "status"})

	// Icon cache.
	IconCacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hometray_icon_cache_operations_total",
		Help: "Icon cache lookups by result",
	}, []string{"result"}) // result: hit|miss|error

	IconCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hometray_icon_cache_entries",
		Help: "Number of rendered icons held in the cache",
	})
)

// ObserveHub records the latency of one hub request.
func ObserveHub(operation, status string, d time.Duration) {
	HubRequestDuration.WithLabelValues(operation, status).Observe(d.Seconds())
}

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr is a no-op.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
