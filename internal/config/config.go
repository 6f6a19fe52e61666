// Package config holds the server's runtime configuration: the listen
// address, the ambient stack's bind points, and the optional Redis
// backend address for multi-instance deployments.
package config

import "log/slog"

// Config is the fully resolved configuration for one server process.
type Config struct {
	Address string
	Port    int

	LogLevel slog.Level

	MetricsBind string
	MetricsPort int

	// RedisAddr, when non-empty, switches the KV store and PubSub bus to
	// their Redis-backed implementations. Empty means in-memory.
	RedisAddr string

	DescriptorPath string
	Product        string
}

// Default returns a Config with the documented CLI defaults.
func Default() *Config {
	return &Config{
		Address:     "0.0.0.0",
		Port:        9910,
		LogLevel:    slog.LevelInfo,
		MetricsBind: "0.0.0.0",
		MetricsPort: 9911,
		Product:     "ATEM Television Studio HD",
	}
}
