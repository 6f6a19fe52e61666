// Package logging sets up the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/broadcastswitch/switcherd/internal/config"
)

// Setup builds an slog.Logger backed by tint's console handler at the
// level cfg.LogLevel names, and installs it as the process default.
func Setup(cfg *config.Config) {
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level: cfg.LogLevel,
	})
	slog.SetDefault(slog.New(handler))
}
