package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// silentLevel is set high enough above slog.LevelError that nothing is
// ever logged, backing the "NONE" debug level.
const silentLevel = slog.Level(12)

// ParseLogLevel maps the --debug flag's string values to an slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(s) {
	case "NONE":
		return silentLevel, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unrecognized log level %q", s)
	}
}
