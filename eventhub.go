// Package eventhub is the public surface of the in-process event hub: an
// event-dispatch kernel that fans typed events out to independently-running
// extension workers while maintaining per-extension versioned shared state.
//
// A Hub is constructed directly rather than reached through a package-level
// singleton, so tests and multiple embedding applications in one process
// can each own an isolated instance.
package eventhub

import (
	"time"

	corepkg "github.com/nimbuscore/eventhub/internal/core"
	configpkg "github.com/nimbuscore/eventhub/internal/core/config"
	errspkg "github.com/nimbuscore/eventhub/internal/core/errors"
	loggingpkg "github.com/nimbuscore/eventhub/internal/core/logging"
	metadatapkg "github.com/nimbuscore/eventhub/internal/core/metadata"
	metricspkg "github.com/nimbuscore/eventhub/internal/core/metrics"
	tracingpkg "github.com/nimbuscore/eventhub/internal/core/tracing"
)

type (
	// Config controls hub-wide defaults; see internal/core/config.
	Config = configpkg.Config

	// Hub is the event-dispatch kernel.
	Hub = corepkg.Hub

	// Event is the immutable value dispatched through a Hub.
	Event = corepkg.Event

	// Extension is the capability contract every hub participant implements.
	Extension = corepkg.Extension
	// ExtensionFactory constructs a new Extension instance during RegisterExtension.
	ExtensionFactory = corepkg.ExtensionFactory
	// ExtensionRegistration bundles a type name with its factory.
	ExtensionRegistration = corepkg.ExtensionRegistration
	// ExtensionAPI is the hub surface handed to Extension.OnRegistered.
	ExtensionAPI = corepkg.ExtensionAPI
	// ExtensionContainer is a read-only view of one registered extension.
	ExtensionContainer = corepkg.ExtensionContainer

	// EventListener receives events matching a registered filter.
	EventListener = corepkg.EventListener
	// ResponseListener receives a correlated response event, or nil on timeout.
	ResponseListener = corepkg.ResponseListener
	// Preprocessor transforms an event before dispatch continues.
	Preprocessor = corepkg.Preprocessor
	// PendingResolver resolves a placeholder shared-state entry.
	PendingResolver = corepkg.PendingResolver

	// SharedStateStatus is the resolution outcome of a shared-state lookup.
	SharedStateStatus = corepkg.SharedStateStatus
	// SharedStateResult is the outcome of resolving a timeline at a version.
	SharedStateResult = corepkg.SharedStateResult
	// HubExtensionInfo is one entry in the hub's own shared-state snapshot.
	HubExtensionInfo = corepkg.HubExtensionInfo

	// Metadata is the descriptive string map an extension exposes about itself.
	Metadata = metadatapkg.Metadata

	// LogFields is the structured field map used across the hub's logging surface.
	LogFields = loggingpkg.LogFields
	// ServiceLogger is the logging contract a Hub accepts.
	ServiceLogger = loggingpkg.ServiceLogger
	// EntryLogger is the non-generic entry adapter constraint.
	EntryLogger = loggingpkg.EntryLogger
	// EntryLoggerAdapter captures the capabilities required by NewEntryServiceLogger.
	EntryLoggerAdapter[T any] = loggingpkg.EntryLoggerAdapter[T]

	// ConfigValidationError wraps a configuration validation failure.
	ConfigValidationError = errspkg.ConfigValidationError

	// MetricsCollector holds the hub's Prometheus collectors.
	MetricsCollector = metricspkg.Collector
	// TracingProvider starts spans around hub dispatch and delivery.
	TracingProvider = tracingpkg.Provider
)

const (
	// StatusNone means no shared-state entry exists at or before the
	// requested version.
	StatusNone = corepkg.StatusNone
	// StatusPending means the closest entry is a placeholder awaiting resolution.
	StatusPending = corepkg.StatusPending
	// StatusSet means the closest entry carries data.
	StatusSet = corepkg.StatusSet

	// ReservedHubExtensionName is the name under which the hub publishes
	// its own shared state describing every registered extension.
	ReservedHubExtensionName = corepkg.ReservedHubExtensionName
	// StateChangeEventType is the type of the event dispatched whenever any
	// extension's shared state changes.
	StateChangeEventType = corepkg.StateChangeEventType
	// StateChangeEventSource is the source of a state-change event.
	StateChangeEventSource = corepkg.StateChangeEventSource
	// StateOwnerKey names the data field on a state-change event carrying
	// the name of the extension whose state changed.
	StateOwnerKey = corepkg.StateOwnerKey
)

var (
	// NewEvent constructs an Event with a fresh random ID and the current time.
	NewEvent = corepkg.NewEvent

	// ValidateConfig validates a possibly-nil *Config.
	ValidateConfig = configpkg.ValidateConfig

	// NewSlogServiceLogger wraps a slog.Logger as a ServiceLogger.
	NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger
	// NewWatermillServiceLogger wraps a Watermill LoggerAdapter as a ServiceLogger.
	NewWatermillServiceLogger = loggingpkg.NewWatermillServiceLogger
	// NewMetricsCollector builds a MetricsCollector. A nil registerer uses
	// prometheus.DefaultRegisterer.
	NewMetricsCollector = metricspkg.NewCollector

	// NewTracingProvider builds a TracingProvider from the global
	// OpenTelemetry tracer provider.
	NewTracingProvider = tracingpkg.NewProvider

	// Sentinel errors surfaced through RegisterExtension/UnregisterExtension
	// completion callbacks.
	ErrInvalidExtensionName            = errspkg.ErrInvalidExtensionName
	ErrDuplicateExtensionName          = errspkg.ErrDuplicateExtensionName
	ErrExtensionNotRegistered          = errspkg.ErrExtensionNotRegistered
	ErrExtensionInitializationFailure  = errspkg.ErrExtensionInitializationFailure
)

// NewEntryServiceLogger wraps an entry-style logger (for example a
// logrus.Entry) as a ServiceLogger.
func NewEntryServiceLogger[T EntryLoggerAdapter[T]](entry T) ServiceLogger {
	return loggingpkg.NewEntryServiceLogger(entry)
}

// NewHub constructs a Hub. cfg may be nil, in which case default (zero)
// config values apply. logger may be nil. If cfg.MetricsEnabled is true, a
// MetricsCollector is created and registered against
// prometheus.DefaultRegisterer; the collector is wired into the Hub
// internally and is not exposed on the returned value.
func NewHub(cfg *Config, logger ServiceLogger) (*Hub, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := configpkg.ValidateConfig(cfg); err != nil {
		return nil, errspkg.NewConfigValidationError(err)
	}

	var stats *MetricsCollector
	if cfg.MetricsEnabled {
		stats = metricspkg.NewCollector(nil)
		if err := stats.Register(); err != nil {
			return nil, err
		}
	}

	// A typed-nil *TracingProvider must not be handed to corepkg.NewHub:
	// wrapped in its interface parameter it would be a non-nil interface
	// with a nil receiver, defeating the hub's own nil check. Only pass a
	// tracer when one actually exists.
	var hub *Hub
	if cfg.TracingEnabled {
		hub = corepkg.NewHub(logger, stats, tracingpkg.NewProvider())
	} else {
		hub = corepkg.NewHub(logger, stats, nil)
	}
	hub.SetExtensionQueueCapacityHint(cfg.ExtensionQueueCapacityHint)
	return hub, nil
}

// DefaultResponseTimeout is used by callers of RegisterResponseListener that
// want the config-wide default rather than an explicit timeout.
func DefaultResponseTimeout(cfg *Config) time.Duration {
	if cfg == nil {
		return 0
	}
	return cfg.DefaultResponseTimeout
}
