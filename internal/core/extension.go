package core

import (
	"time"

	"github.com/nimbuscore/eventhub/internal/core/metadata"
)

// Extension is the capability contract every participant in the hub
// implements. A hub never touches an extension's fields directly; all
// interaction happens through these methods and the ExtensionAPI handed to
// OnRegistered.
type Extension interface {
	// TypeName uniquely identifies this extension. It doubles as the
	// extension's shared-state name unless SharedStateName returns
	// something else.
	TypeName() string
	// FriendlyName is a human-readable label. It is also the key under which
	// the extension is listed in the hub's own shared state.
	FriendlyName() string
	// Version is the extension's own version string, opaque to the hub.
	Version() string
	// Metadata is arbitrary descriptive key/value data, opaque to the hub.
	Metadata() metadata.Metadata
	// SharedStateName is the name other extensions use to read this
	// extension's shared state. Extensions that don't need a distinct
	// name should return TypeName().
	SharedStateName() string
	// OnRegistered runs once, while the container is still REGISTERING but
	// already present in the hub's registry; the container becomes
	// REGISTERED only after it returns nil. It is the extension's chance to
	// register listeners and seed its own shared state. A returned error
	// aborts registration.
	OnRegistered(api *ExtensionAPI) error
	// OnUnregistered runs once, when the extension is removed from the
	// hub. It never runs if OnRegistered failed.
	OnUnregistered()
	// ReadyForEvent reports whether the extension can process event right
	// now. Returning false suspends delivery of this and all later events
	// to this extension until it calls ExtensionAPI.NotifyReady.
	ReadyForEvent(event Event) bool
}

// ExtensionFactory constructs a new Extension instance. It runs once, on
// the hub's control lane, during registerExtension.
type ExtensionFactory func() (Extension, error)

// ExtensionRegistration bundles the information registerExtension needs: an
// explicit type name to check for duplicates before construction, and the
// factory that builds the instance.
type ExtensionRegistration struct {
	TypeName string
	Factory  ExtensionFactory
}

// EventListener receives events matching a (type, source) filter.
type EventListener func(event Event)

// ResponseListener receives the response event correlated to a trigger, or
// nil if the registered timeout elapsed first.
type ResponseListener func(response *Event)

// Preprocessor transforms an event before it reaches any listener or the
// response-correlation step. Preprocessors run in registration order; a
// panicking preprocessor is skipped and the event it received passes through
// unchanged.
type Preprocessor func(event Event) Event

// PendingResolver resolves a placeholder shared-state entry created by
// ExtensionAPI.CreatePendingSharedState.
type PendingResolver func(data map[string]any)

// ExtensionAPI is the hub surface an extension receives in OnRegistered. It
// is scoped to the extension that owns it: shared-state writes are always
// attributed to that extension, listener registrations are tracked against
// its own container.
type ExtensionAPI struct {
	hub  *Hub
	self string
}

// RegisterListener adds a listener for events whose type and source match
// filterType and filterSource. Either may be "*" to match any value.
// Listeners for one extension are invoked in registration order.
func (a *ExtensionAPI) RegisterListener(filterType, filterSource string, listener EventListener) {
	a.hub.registerListener(a.self, filterType, filterSource, listener)
}

// RegisterResponseListener correlates listener to the response event that
// carries trigger.ID as its ResponseID. If no response arrives within
// timeout, listener is invoked once with a nil response.
func (a *ExtensionAPI) RegisterResponseListener(trigger Event, timeout time.Duration, listener ResponseListener) {
	a.hub.registerResponseListener(trigger, timeout, listener)
}

// Dispatch hands event to the hub for sequencing and fan-out.
func (a *ExtensionAPI) Dispatch(event Event) {
	a.hub.Dispatch(event)
}

// CreateSharedState publishes data as this extension's shared state,
// versioned against event. Pass a nil event to version at 0.
func (a *ExtensionAPI) CreateSharedState(data map[string]any, event *Event) error {
	return a.hub.createSharedState(a.self, data, event)
}

// CreatePendingSharedState reserves a version in this extension's shared
// state timeline without publishing data yet, returning a resolver to
// supply the data later.
func (a *ExtensionAPI) CreatePendingSharedState(event *Event) (PendingResolver, error) {
	return a.hub.createPendingSharedState(a.self, event)
}

// GetSharedState reads extensionName's shared state as of event. A nil
// event reads at version 0. When barrier is true, a SET result is
// downgraded to PENDING if extensionName's container has not yet processed
// the event sequenced immediately before event.
func (a *ExtensionAPI) GetSharedState(extensionName string, event *Event, barrier bool) SharedStateResult {
	return a.hub.getSharedState(extensionName, event, barrier)
}

// UpdateMetadata sets a single key in this extension's descriptive metadata
// by copy-on-write and republishes the hub's own shared state, which carries
// a snapshot of every extension's metadata.
func (a *ExtensionAPI) UpdateMetadata(key, value string) {
	a.hub.updateExtensionMetadata(a.self, key, value)
}

// MergeMetadata folds entries into this extension's descriptive metadata by
// copy-on-write and republishes the hub's own shared state.
func (a *ExtensionAPI) MergeMetadata(entries metadata.Metadata) {
	a.hub.mergeExtensionMetadata(a.self, entries)
}

// NotifyReady re-ticks this extension's private worker, asking it to retry
// delivering the event at the head of its queue. Extensions call this after
// ReadyForEvent would newly return true for an event it previously refused.
func (a *ExtensionAPI) NotifyReady() {
	a.hub.retickExtension(a.self)
}

// RegisterPreprocessor adds a hub-wide preprocessor. Preprocessors are
// global: any extension can register one, and it runs against every event
// dispatched afterward.
func (a *ExtensionAPI) RegisterPreprocessor(pp Preprocessor) {
	a.hub.RegisterPreprocessor(pp)
}
