package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/broadcastswitch/switcherd/internal/clientmanager"
	"github.com/broadcastswitch/switcherd/internal/config"
	"github.com/broadcastswitch/switcherd/internal/descriptor"
	"github.com/broadcastswitch/switcherd/internal/instance"
	"github.com/broadcastswitch/switcherd/internal/kv"
	"github.com/broadcastswitch/switcherd/internal/logging"
	"github.com/broadcastswitch/switcherd/internal/metrics"
	"github.com/broadcastswitch/switcherd/internal/pubsub"
	"github.com/broadcastswitch/switcherd/internal/server"
	"github.com/broadcastswitch/switcherd/internal/state"
)

// NewCommand builds the switcherd root command.
func NewCommand(version, commit string) *cobra.Command {
	cfg := config.Default()
	var logLevel string

	cmd := &cobra.Command{
		Use:               "switcherd",
		Version:           fmt.Sprintf("%s - %s", version, commit),
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, err := config.ParseLogLevel(logLevel)
			if err != nil {
				return err
			}
			cfg.LogLevel = level
			return runRoot(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Address, "address", cfg.Address, "address the switcher protocol socket binds to")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "UDP port the switcher protocol socket binds to")
	flags.StringVar(&logLevel, "debug", "INFO", "log level: NONE, DEBUG, INFO, WARNING, ERROR")
	flags.StringVar(&cfg.MetricsBind, "metrics-bind", cfg.MetricsBind, "address the metrics HTTP server binds to")
	flags.IntVar(&cfg.MetricsPort, "metrics-port", cfg.MetricsPort, "port the metrics HTTP server binds to, 0 disables it")
	flags.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for the kv/pubsub backends, empty uses in-memory backends")
	flags.StringVar(&cfg.DescriptorPath, "descriptor", cfg.DescriptorPath, "path to an XML device descriptor, empty uses the built-in default")
	flags.StringVar(&cfg.Product, "product", cfg.Product, "product whose source catalog the TlSr tally frames list")

	return cmd
}

func runRoot(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Setup(cfg)
	slog.Info("starting switcherd", "address", cfg.Address, "port", cfg.Port, "product", cfg.Product)

	store, err := loadStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to load device descriptor: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	go func() {
		if err := metrics.Serve(cfg, registry); err != nil {
			slog.Error("metrics server stopped", "error", err)
		}
	}()

	kvStore, err := kv.Make(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to key-value store: %w", err)
	}
	defer kvStore.Close()

	bus, err := pubsub.Make(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to pubsub: %w", err)
	}
	defer bus.Close()

	reg, err := instance.New(kvStore)
	if err != nil {
		return fmt.Errorf("failed to create instance registry: %w", err)
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go reg.Run(runCtx)

	mgr := clientmanager.New(store, cfg.Product, m, bus)
	srv := server.New(cfg.Address, cfg.Port, mgr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	return srv.Run(runCtx)
}

func loadStore(cfg *config.Config) (*state.Store, error) {
	if cfg.DescriptorPath == "" {
		return descriptor.Default(), nil
	}
	return descriptor.Load(cfg.DescriptorPath)
}
