package metrics

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/broadcastswitch/switcherd/internal/config"
)

const readHeaderTimeout = 3 * time.Second

// Serve starts the /metrics HTTP server and blocks until it exits, or
// returns an error at once if the listener fails to bind. A MetricsPort of
// 0 disables metrics entirely and Serve returns nil immediately.
func Serve(cfg *config.Config, reg *prometheus.Registry) error {
	if cfg.MetricsPort == 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf("%s:%d", cfg.MetricsBind, cfg.MetricsPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics: listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return server.Serve(listener)
}
