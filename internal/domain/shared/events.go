// Package shared holds building blocks common to all aggregates
package shared

import "time"

// DomainEvent represents an event that has occurred in the domain
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// EventHandler reacts to a drained domain event
type EventHandler func(event DomainEvent)

// AggregateRoot collects events raised by an aggregate until they are drained
type AggregateRoot struct {
	events []DomainEvent
}

// AddEvent records a domain event
func (a *AggregateRoot) AddEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// Events returns and clears pending domain events
func (a *AggregateRoot) Events() []DomainEvent {
	events := a.events
	a.events = nil
	return events
}

// DrainTo hands every pending event to the handlers in order
func (a *AggregateRoot) DrainTo(handlers ...EventHandler) {
	for _, event := range a.Events() {
		for _, h := range handlers {
			h(event)
		}
	}
}
