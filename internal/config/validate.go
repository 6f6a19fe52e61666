package config

import "errors"

var (
	// ErrAddressRequired is returned when the listen address is empty.
	ErrAddressRequired = errors.New("config: address is required")
	// ErrInvalidPort is returned when the listen port is out of range.
	ErrInvalidPort = errors.New("config: port must be between 1 and 65535")
	// ErrInvalidMetricsPort is returned when the metrics port is out of
	// range while metrics are enabled (port 0 disables metrics).
	ErrInvalidMetricsPort = errors.New("config: metrics port must be between 0 and 65535")
)

// Validate rejects an unusable configuration before the socket is opened.
func (c *Config) Validate() error {
	if c.Address == "" {
		return ErrAddressRequired
	}
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return ErrInvalidMetricsPort
	}
	return nil
}
