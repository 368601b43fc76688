// Package core implements the event-dispatch kernel: sequenced event
// delivery, per-extension versioned shared state, and extension lifecycle,
// all coordinated by Hub.
package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	coreerrors "github.com/nimbuscore/eventhub/internal/core/errors"
	"github.com/nimbuscore/eventhub/internal/core/logging"
	"github.com/nimbuscore/eventhub/internal/core/metadata"
	"github.com/nimbuscore/eventhub/internal/core/metrics"
)

const (
	// ReservedHubExtensionName is the name under which the hub publishes
	// its own shared state describing every registered extension.
	ReservedHubExtensionName = "com.adobe.module.eventhub"
	// StateChangeEventType is the type of the event dispatched whenever
	// any extension's shared state changes.
	StateChangeEventType = "com.adobe.eventType.hub"
	// StateChangeEventSource is the source of a state-change event.
	StateChangeEventSource = "com.adobe.eventSource.sharedState"
	// StateOwnerKey names the data field on a state-change event carrying
	// the name of the extension whose state changed.
	StateOwnerKey = "stateowner"
)

// HubExtensionInfo is one entry in the hub's own shared-state snapshot,
// describing a single registered extension.
type HubExtensionInfo struct {
	Version  int64
	Metadata map[string]string
}

// Hub is the event-dispatch kernel. It owns every extension container, the
// global event lane, the response-listener table, the preprocessor chain,
// and its own shared state describing the set of registered extensions. The
// zero value is not usable; construct with NewHub.
type Hub struct {
	logger logging.ServiceLogger
	tracer traceProvider
	stats  *metrics.Collector

	// queueCapacityHint preallocates each registered extension's private
	// worker queue. Purely a sizing hint; queues never reject an add
	// regardless of this value.
	queueCapacityHint int

	counter        SequenceCounter
	eventNumberMu  sync.RWMutex
	eventNumberMap map[uuid.UUID]int64

	registryMu sync.RWMutex
	registered map[string]*ExtensionContainer

	preprocessors *preprocessorChain
	responses     *responseTable

	globalOrderer *OperationOrderer[Event]
	controlLane   chan func()

	hubTimeline *SharedStateTimeline
	hubStateMu  sync.Mutex

	started bool
	startMu sync.Mutex
}

// traceProvider is satisfied by *tracing.Provider. It is declared here,
// rather than imported, so a caller that never wants tracing does not need
// to construct one.
type traceProvider interface {
	StartDispatch(ctx context.Context, eventID, eventType, eventSource string) (context.Context, func())
	StartDeliver(ctx context.Context, extensionName, eventID string) (context.Context, func())
}

type noopTracer struct{}

func (noopTracer) StartDispatch(ctx context.Context, _, _, _ string) (context.Context, func()) {
	return ctx, func() {}
}

func (noopTracer) StartDeliver(ctx context.Context, _, _ string) (context.Context, func()) {
	return ctx, func() {}
}

// NewHub constructs a Hub. logger and stats may be nil; tracer may be nil
// and defaults to a no-op implementation.
func NewHub(logger logging.ServiceLogger, stats *metrics.Collector, tracer traceProvider) *Hub {
	if tracer == nil {
		tracer = noopTracer{}
	}

	h := &Hub{
		logger:         logger,
		tracer:         tracer,
		stats:          stats,
		eventNumberMap: make(map[uuid.UUID]int64),
		registered:     make(map[string]*ExtensionContainer),
		preprocessors:  newPreprocessorChain(logger),
		responses:      newResponseTable(),
		globalOrderer:  NewOperationOrderer[Event](),
		controlLane:    make(chan func()),
		hubTimeline:    NewSharedStateTimeline(logger),
	}
	h.globalOrderer.SetHandler(h.handleGlobalEvent)
	go h.runControlLane()
	return h
}

// SetExtensionQueueCapacityHint sets the preallocation size for the private
// worker queue of every extension registered after this call. Callers set
// this once, before any RegisterExtension call; it is not safe to change
// concurrently with registration.
func (h *Hub) SetExtensionQueueCapacityHint(n int) {
	if n < 0 {
		n = 0
	}
	h.queueCapacityHint = n
}

func (h *Hub) runControlLane() {
	for task := range h.controlLane {
		task()
	}
}

func (h *Hub) submitControl(fn func()) {
	h.controlLane <- fn
}

func (h *Hub) submitControlSync(fn func()) {
	done := make(chan struct{})
	h.controlLane <- func() {
		fn()
		close(done)
	}
	<-done
}

// Start transitions the global orderer to RUNNING and publishes the initial
// hub shared state. Idempotent.
func (h *Hub) Start() {
	h.submitControlSync(func() {
		h.startMu.Lock()
		alreadyStarted := h.started
		h.started = true
		h.startMu.Unlock()
		if alreadyStarted {
			return
		}

		h.globalOrderer.Start()
		h.publishHubState()
	})
}

// Dispatch stamps event with a sequence number and enqueues it on the
// global event lane. It never blocks the caller on I/O.
func (h *Hub) Dispatch(event Event) {
	seq := h.counter.IncrementAndGet()

	h.eventNumberMu.Lock()
	h.eventNumberMap[event.ID] = seq
	h.eventNumberMu.Unlock()

	if h.stats != nil {
		h.stats.RecordDispatch()
	}

	h.globalOrderer.Add(event)
}

func (h *Hub) eventSeq(event *Event) int64 {
	if event == nil {
		return 0
	}
	h.eventNumberMu.RLock()
	defer h.eventNumberMu.RUnlock()
	return h.eventNumberMap[event.ID]
}

// RegisterExtension constructs and registers a new extension asynchronously
// on the control lane. completion is invoked exactly once, with nil on
// success or one of the coreerrors sentinel values on failure.
func (h *Hub) RegisterExtension(reg ExtensionRegistration, completion func(error)) {
	if completion == nil {
		completion = func(error) {}
	}
	h.submitControl(func() {
		h.registerExtensionOnControlLane(reg, completion)
	})
}

func (h *Hub) registerExtensionOnControlLane(reg ExtensionRegistration, completion func(error)) {
	if reg.TypeName == "" {
		completion(coreerrors.ErrInvalidExtensionName)
		return
	}

	h.registryMu.RLock()
	_, exists := h.registered[reg.TypeName]
	h.registryMu.RUnlock()
	if exists {
		completion(coreerrors.ErrDuplicateExtensionName)
		return
	}

	container, err := newExtensionContainer(h, reg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("extension initialization failed", err, logging.LogFields{"extension": reg.TypeName})
		}
		completion(coreerrors.ErrExtensionInitializationFailure)
		return
	}

	// The container must be discoverable before OnRegistered runs: extensions
	// commonly call RegisterListener or CreateSharedState from inside that
	// hook, and both go through lookupContainer(self).
	h.registryMu.Lock()
	h.registered[reg.TypeName] = container
	h.registryMu.Unlock()

	api := &ExtensionAPI{hub: h, self: container.typeName}
	if err := container.completeRegistration(api); err != nil {
		h.registryMu.Lock()
		delete(h.registered, reg.TypeName)
		h.registryMu.Unlock()

		if h.logger != nil {
			h.logger.Error("extension initialization failed", err, logging.LogFields{"extension": reg.TypeName})
		}
		completion(coreerrors.ErrExtensionInitializationFailure)
		return
	}

	h.publishHubState()
	completion(nil)
}

// UnregisterExtension removes typeName's container asynchronously on the
// control lane, invoking its onUnregistered hook.
func (h *Hub) UnregisterExtension(typeName string, completion func(error)) {
	if completion == nil {
		completion = func(error) {}
	}
	h.submitControl(func() {
		h.unregisterExtensionOnControlLane(typeName, completion)
	})
}

func (h *Hub) unregisterExtensionOnControlLane(typeName string, completion func(error)) {
	h.registryMu.Lock()
	container, ok := h.registered[typeName]
	if ok {
		delete(h.registered, typeName)
	}
	h.registryMu.Unlock()

	if !ok {
		completion(coreerrors.ErrExtensionNotRegistered)
		return
	}

	container.unregister()
	h.publishHubState()
	completion(nil)
}

// GetExtensionContainer returns a read-only view of typeName's container,
// or nil if no such extension is registered.
func (h *Hub) GetExtensionContainer(typeName string) *ExtensionContainer {
	h.registryMu.RLock()
	defer h.registryMu.RUnlock()
	return h.registered[typeName]
}

func (h *Hub) lookupContainer(typeName string) (*ExtensionContainer, bool) {
	h.registryMu.RLock()
	defer h.registryMu.RUnlock()
	c, ok := h.registered[typeName]
	return c, ok
}

func (h *Hub) registerListener(extensionName, filterType, filterSource string, listener EventListener) {
	container, ok := h.lookupContainer(extensionName)
	if !ok {
		return
	}
	container.addListener(filterType, filterSource, listener)
}

func (h *Hub) retickExtension(extensionName string) {
	container, ok := h.lookupContainer(extensionName)
	if !ok {
		return
	}
	container.retick()
}

// updateExtensionMetadata sets a single metadata key on extensionName's
// container and republishes the hub's own state, since HubExtensionInfo
// carries a snapshot of every extension's metadata. Callable from
// OnRegistered or from an extension's own worker goroutine: it never touches
// the control lane, so it cannot deadlock against it.
func (h *Hub) updateExtensionMetadata(extensionName, key, value string) {
	container, ok := h.lookupContainer(extensionName)
	if !ok {
		return
	}
	container.updateMetadata(key, value)
	h.publishHubState()
}

// mergeExtensionMetadata folds entries into extensionName's container
// metadata and republishes the hub's own state.
func (h *Hub) mergeExtensionMetadata(extensionName string, entries metadata.Metadata) {
	container, ok := h.lookupContainer(extensionName)
	if !ok {
		return
	}
	container.mergeMetadata(entries)
	h.publishHubState()
}

// RegisterPreprocessor appends fn to the hub-wide preprocessor chain.
func (h *Hub) RegisterPreprocessor(fn Preprocessor) {
	h.preprocessors.register(fn)
}

// RegisterResponseListener correlates listener to the response event whose
// ResponseID matches trigger.ID. If no response arrives within timeout,
// listener runs once with nil.
func (h *Hub) RegisterResponseListener(trigger Event, timeout time.Duration, listener ResponseListener) {
	h.registerResponseListener(trigger, timeout, listener)
}

func (h *Hub) registerResponseListener(trigger Event, timeout time.Duration, listener ResponseListener) {
	h.responses.register(trigger.ID, listener, timeout, func(entry *responseEntry) {
		if entry.fired.CompareAndSwap(false, true) {
			h.responses.remove(entry)
			if h.stats != nil {
				h.stats.RecordResponseTimeout()
			}
			if h.logger != nil {
				h.logger.Debug("response listener timed out", logging.LogFields{
					"responseListenerId": entry.id,
					"triggerEventId":     trigger.ID.String(),
				})
			}
			listener(nil)
		}
	})
}

func (h *Hub) resolveResponseListeners(triggerID uuid.UUID, response Event) {
	entries := h.responses.removeAll(triggerID)
	for _, entry := range entries {
		if entry.fired.CompareAndSwap(false, true) {
			entry.timer.Stop()
			if h.logger != nil {
				h.logger.Debug("response listener matched", logging.LogFields{
					"responseListenerId": entry.id,
					"triggerEventId":     triggerID.String(),
					"responseEventId":    response.ID.String(),
				})
			}
			r := response
			entry.listener(&r)
		}
	}
}

// createSharedState publishes data as extensionName's shared state at
// event's sequence number (0 if event is nil), then dispatches a
// state-change notification.
func (h *Hub) createSharedState(extensionName string, data map[string]any, event *Event) error {
	container, ok := h.lookupContainer(extensionName)
	if !ok {
		if h.logger != nil {
			h.logger.Info("createSharedState for unknown extension ignored", logging.LogFields{"extension": extensionName})
		}
		return coreerrors.ErrExtensionNotRegistered
	}

	version := h.eventSeq(event)
	container.timeline.Set(version, data)
	h.dispatchStateChange(extensionName)
	return nil
}

// createPendingSharedState reserves a version in extensionName's timeline
// and returns a resolver that later supplies the data.
func (h *Hub) createPendingSharedState(extensionName string, event *Event) (PendingResolver, error) {
	container, ok := h.lookupContainer(extensionName)
	if !ok {
		return nil, coreerrors.ErrExtensionNotRegistered
	}

	version := h.eventSeq(event)
	container.timeline.AddPending(version)

	resolver := func(data map[string]any) {
		container.timeline.UpdatePending(version, data)
		h.dispatchStateChange(extensionName)
	}
	return resolver, nil
}

// getSharedState resolves extensionName's shared state as of event,
// applying the barrier rule when requested: a SET result is reported as
// PENDING while extensionName's worker has not yet processed the event
// sequenced immediately before event, since that extension may still be
// about to publish a newer state.
func (h *Hub) getSharedState(extensionName string, event *Event, barrier bool) SharedStateResult {
	if extensionName == ReservedHubExtensionName {
		// The hub's own state is written synchronously on the control lane,
		// so "current" is well-defined regardless of which event a caller
		// happens to be resolving against.
		result := h.hubTimeline.Latest()
		if h.stats != nil {
			h.stats.RecordSharedStateResolve(extensionName)
		}
		return result
	}

	v := h.eventSeq(event)

	container, ok := h.lookupContainer(extensionName)
	if !ok {
		return SharedStateResult{Status: StatusNone, Version: v}
	}

	result := container.timeline.Resolve(v)
	if h.stats != nil {
		h.stats.RecordSharedStateResolve(extensionName)
	}

	if barrier && result.Status == StatusSet {
		lastSeq := int64(-1)
		if last := container.LastProcessedEvent(); last != nil {
			lastSeq = h.eventSeq(last)
		}
		if lastSeq < v-1 {
			result.Status = StatusPending
		}
	}
	return result
}

// GetSharedState is the exported form of getSharedState for callers outside
// the extension-scoped ExtensionAPI, such as tests and the root facade.
func (h *Hub) GetSharedState(extensionName string, event *Event, barrier bool) SharedStateResult {
	return h.getSharedState(extensionName, event, barrier)
}

// CreateSharedState is the exported form of createSharedState.
func (h *Hub) CreateSharedState(extensionName string, data map[string]any, event *Event) error {
	return h.createSharedState(extensionName, data, event)
}

// CreatePendingSharedState is the exported form of createPendingSharedState.
func (h *Hub) CreatePendingSharedState(extensionName string, event *Event) (PendingResolver, error) {
	return h.createPendingSharedState(extensionName, event)
}

func (h *Hub) dispatchStateChange(extensionName string) {
	h.Dispatch(NewEvent("", StateChangeEventType, StateChangeEventSource, map[string]any{
		StateOwnerKey: extensionName,
	}))
}

// publishHubState writes a new entry to the hub's own timeline listing every
// currently registered extension, then dispatches a state-change
// notification. Safe to call from any goroutine: hubStateMu serializes the
// version bump against the timeline write so two concurrent callers can
// never append out of order.
func (h *Hub) publishHubState() {
	h.hubStateMu.Lock()
	defer h.hubStateMu.Unlock()

	var version int64
	if !h.hubTimeline.Empty() {
		version = h.counter.IncrementAndGet()
	}

	h.registryMu.RLock()
	extensions := make(map[string]HubExtensionInfo, len(h.registered))
	for _, container := range h.registered {
		extensions[container.FriendlyName()] = HubExtensionInfo{
			Version:  version,
			Metadata: container.Metadata(),
		}
	}
	h.registryMu.RUnlock()

	h.hubTimeline.Set(version, map[string]any{
		"version":    version,
		"extensions": extensions,
	})
	h.dispatchStateChange(ReservedHubExtensionName)
}

func (h *Hub) handleGlobalEvent(event Event) bool {
	ctx, end := h.tracer.StartDispatch(context.Background(), event.ID.String(), event.Type, event.Source)
	defer end()

	processed := h.preprocessors.apply(event)

	if processed.ResponseID != nil {
		h.resolveResponseListeners(*processed.ResponseID, processed)
	}

	h.registryMu.RLock()
	containers := make([]*ExtensionContainer, 0, len(h.registered))
	for _, c := range h.registered {
		containers = append(containers, c)
	}
	h.registryMu.RUnlock()

	for _, c := range containers {
		_, endDeliver := h.tracer.StartDeliver(ctx, c.TypeName(), processed.ID.String())
		if h.stats != nil {
			h.stats.RecordQueueDepth(c.TypeName(), c.worker.Len()+1)
		}
		c.enqueue(processed)
		endDeliver()
	}

	return true
}
