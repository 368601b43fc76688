// Package config groups the tuning knobs for the hub. Unlike the values an
// extension owns, everything here is ambient: it never affects the hub's
// correctness invariants, only its defaults and observability surface.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config controls hub-wide defaults. The zero value is valid; Validate
// reports any field that was set to a nonsensical value.
type Config struct {
	// DefaultResponseTimeout is used by RegisterResponseListener callers
	// that do not supply an explicit timeout. Zero means every caller must
	// specify its own timeout.
	DefaultResponseTimeout time.Duration

	// ExtensionQueueCapacityHint sizes the initial backing slice of each
	// extension's private event queue. It is informational only: queues are
	// unbounded per the hub's concurrency model and never reject an add.
	ExtensionQueueCapacityHint int

	// MetricsEnabled turns on Prometheus instrumentation of dispatch,
	// delivery, and shared-state resolution.
	MetricsEnabled bool

	// MetricsPort, when nonzero and MetricsEnabled is true, is where the
	// embedding application is expected to expose the metrics registry.
	// The hub itself never opens a listener; this field only documents the
	// convention so multiple hubs in one process don't collide.
	MetricsPort int

	// TracingEnabled wraps dispatch and per-extension delivery in
	// OpenTelemetry spans.
	TracingEnabled bool
}

// String renders the config for structured log lines. Hub configuration
// carries no secrets today, but the method exists for symmetry with the
// rest of the ambient stack and so log call sites don't need special-casing
// if that ever changes.
func (c Config) String() string {
	type configAlias Config
	return fmt.Sprintf("%+v", configAlias(c))
}

// Validate reports any field set to a value that could never be honored.
func (c *Config) Validate() error {
	var errs []error

	if c.DefaultResponseTimeout < 0 {
		errs = append(errs, errors.New("default response timeout cannot be negative"))
	}
	if c.ExtensionQueueCapacityHint < 0 {
		errs = append(errs, errors.New("extension queue capacity hint cannot be negative"))
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("metrics: invalid port %d", c.MetricsPort))
	}

	return errors.Join(errs...)
}

// ValidateConfig is a convenience wrapper for a config pointer that may be nil.
func ValidateConfig(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}
