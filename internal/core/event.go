package core

import (
	"time"

	"github.com/google/uuid"
)

// Event is the immutable value dispatched through the hub. Once handed to
// Hub.Dispatch, an Event's fields never change again; the hub only ever
// attaches a sequence number alongside it in the eventNumberMap, it never
// mutates the Event itself.
type Event struct {
	// ID uniquely identifies this event. Generated by NewEvent if the caller
	// does not set one.
	ID uuid.UUID

	// Name is a short, human-facing label for the event (e.g. "one").
	Name string

	// Type and Source together form the listener filter axes: a listener
	// registered for (type, source) receives an event if each axis matches
	// exactly or the listener's axis is the wildcard "*".
	Type   string
	Source string

	// Data carries the event payload.
	Data map[string]any

	// Timestamp is when the event was constructed, not when it was
	// dispatched or sequenced.
	Timestamp time.Time

	// ResponseID, when set, is the ID of a previously dispatched trigger
	// event. The hub correlates it against the response-listener table.
	ResponseID *uuid.UUID
}

// NewEvent constructs an Event with a fresh random ID and the current time.
func NewEvent(name, eventType, source string, data map[string]any) Event {
	return Event{
		ID:        uuid.New(),
		Name:      name,
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// AsResponseTo returns a copy of e with ResponseID set to trigger's ID.
func (e Event) AsResponseTo(trigger Event) Event {
	id := trigger.ID
	e.ResponseID = &id
	return e
}

// MatchesFilter reports whether the event matches a listener's (type, source)
// filter. Either axis may be the wildcard "*".
func (e Event) MatchesFilter(filterType, filterSource string) bool {
	typeMatches := filterType == "*" || filterType == e.Type
	sourceMatches := filterSource == "*" || filterSource == e.Source
	return typeMatches && sourceMatches
}
