package core

import (
	"sync"

	"github.com/nimbuscore/eventhub/internal/core/logging"
	"github.com/nimbuscore/eventhub/internal/core/metadata"
)

// ContainerState is the lifecycle state of an ExtensionContainer.
type ContainerState int32

const (
	// StateRegistering means the container exists but OnRegistered has not
	// yet returned successfully.
	StateRegistering ContainerState = iota
	// StateRegistered means the extension is live and receiving events.
	StateRegistered
	// StateUnregistered means the extension has been removed. A container
	// never leaves this state once it enters it.
	StateUnregistered
)

type listenerEntry struct {
	filterType   string
	filterSource string
	listener     EventListener
}

// ExtensionContainer owns one Extension instance: its shared-state timeline,
// its private serial worker, and its listener registry. The hub never
// invokes an extension directly; it always goes through the extension's
// container.
type ExtensionContainer struct {
	extension       Extension
	typeName        string
	friendlyName    string
	version         string
	sharedStateName string

	metadataMu sync.RWMutex
	metadata   metadata.Metadata

	timeline *SharedStateTimeline
	worker   *OperationOrderer[Event]

	listenersMu sync.RWMutex
	listeners   []listenerEntry

	stateMu            sync.RWMutex
	state              ContainerState
	lastProcessedEvent *Event

	logger logging.ServiceLogger
}

func newExtensionContainer(hub *Hub, reg ExtensionRegistration) (*ExtensionContainer, error) {
	instance, err := reg.Factory()
	if err != nil {
		return nil, err
	}

	sharedStateName := instance.SharedStateName()
	if sharedStateName == "" {
		sharedStateName = instance.TypeName()
	}

	c := &ExtensionContainer{
		extension:       instance,
		typeName:        instance.TypeName(),
		friendlyName:    instance.FriendlyName(),
		version:         instance.Version(),
		metadata:        instance.Metadata(),
		sharedStateName: sharedStateName,
		timeline:        NewSharedStateTimeline(hub.logger),
		state:           StateRegistering,
		logger:          hub.logger,
	}
	c.worker = NewOperationOrdererWithCapacity[Event](hub.queueCapacityHint)
	c.worker.SetHandler(c.handleEvent)
	c.worker.Start()

	return c, nil
}

// completeRegistration runs the extension's OnRegistered hook. The caller
// must already have made c visible in the hub's registry before calling
// this, so that RegisterListener, CreateSharedState, and every other
// ExtensionAPI call the extension makes from inside OnRegistered reaches
// this container instead of finding it unregistered.
func (c *ExtensionContainer) completeRegistration(api *ExtensionAPI) error {
	if err := c.extension.OnRegistered(api); err != nil {
		c.setState(StateUnregistered)
		c.worker.Stop()
		return err
	}

	c.setState(StateRegistered)
	return nil
}

func (c *ExtensionContainer) setState(s ContainerState) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
}

// State reports the container's current lifecycle state.
func (c *ExtensionContainer) State() ContainerState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// TypeName returns the extension's identifying type name.
func (c *ExtensionContainer) TypeName() string { return c.typeName }

// FriendlyName returns the extension's human-readable label.
func (c *ExtensionContainer) FriendlyName() string { return c.friendlyName }

// Version returns the extension's own version string.
func (c *ExtensionContainer) Version() string { return c.version }

// Metadata returns a snapshot of the extension's descriptive metadata. The
// returned map is a clone; mutating it has no effect on the container.
func (c *ExtensionContainer) Metadata() metadata.Metadata {
	c.metadataMu.RLock()
	defer c.metadataMu.RUnlock()
	return c.metadata.Clone()
}

// updateMetadata sets a single metadata key by copy-on-write, replacing the
// container's metadata map with a new one rather than mutating it in place,
// so a concurrent Metadata() snapshot is never observed half-written.
func (c *ExtensionContainer) updateMetadata(key, value string) {
	c.metadataMu.Lock()
	c.metadata = c.metadata.With(key, value)
	c.metadataMu.Unlock()
}

// mergeMetadata folds entries into the container's metadata by copy-on-write.
func (c *ExtensionContainer) mergeMetadata(entries metadata.Metadata) {
	c.metadataMu.Lock()
	c.metadata = c.metadata.WithAll(entries)
	c.metadataMu.Unlock()
}

// SharedStateName returns the name under which other extensions look up
// this container's shared state.
func (c *ExtensionContainer) SharedStateName() string { return c.sharedStateName }

// LastProcessedEvent returns the most recent event this container's worker
// finished handling, or nil if it has not processed one yet.
func (c *ExtensionContainer) LastProcessedEvent() *Event {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.lastProcessedEvent
}

func (c *ExtensionContainer) addListener(filterType, filterSource string, listener EventListener) {
	c.listenersMu.Lock()
	c.listeners = append(c.listeners, listenerEntry{filterType: filterType, filterSource: filterSource, listener: listener})
	c.listenersMu.Unlock()
}

func (c *ExtensionContainer) enqueue(event Event) {
	c.worker.Add(event)
}

func (c *ExtensionContainer) retick() {
	c.worker.Retick()
}

// handleEvent is the container's worker handler. It first asks the extension
// whether it is ready for the event; if not, no listener runs and the event
// stays at the head of the queue. Otherwise it fans the event out to
// matching listeners in registration order and records it as processed.
func (c *ExtensionContainer) handleEvent(event Event) bool {
	if c.State() == StateUnregistered {
		return true
	}

	if !c.extension.ReadyForEvent(event) {
		return false
	}

	c.listenersMu.RLock()
	matches := make([]EventListener, 0, len(c.listeners))
	for _, entry := range c.listeners {
		if event.MatchesFilter(entry.filterType, entry.filterSource) {
			matches = append(matches, entry.listener)
		}
	}
	c.listenersMu.RUnlock()

	for _, listener := range matches {
		c.invokeListener(listener, event)
	}

	c.stateMu.Lock()
	e := event
	c.lastProcessedEvent = &e
	c.stateMu.Unlock()

	return true
}

func (c *ExtensionContainer) invokeListener(listener EventListener, event Event) {
	defer func() {
		if r := recover(); r != nil && c.logger != nil {
			c.logger.Error("event listener panicked", nil, logging.LogFields{
				"extension": c.typeName,
				"eventType": event.Type,
				"panic":     r,
			})
		}
	}()
	listener(event)
}

// unregister transitions the container to UNREGISTERED, notifies the
// extension, drops its listeners, and stops its worker. Queued events are
// discarded. Safe to call at most once; the hub enforces that.
func (c *ExtensionContainer) unregister() {
	c.setState(StateUnregistered)
	c.worker.Stop()

	c.listenersMu.Lock()
	c.listeners = nil
	c.listenersMu.Unlock()

	func() {
		defer func() {
			if r := recover(); r != nil && c.logger != nil {
				c.logger.Error("extension onUnregistered panicked", nil, logging.LogFields{
					"extension": c.typeName,
					"panic":     r,
				})
			}
		}()
		c.extension.OnUnregistered()
	}()
}
