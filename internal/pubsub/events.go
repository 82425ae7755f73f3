// Package pubsub provides a generic publish/subscribe event system.
// Model changes (registrations, renames, invalidations) and log entries are
// fanned out through it to diagnostic listeners such as the watch command.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"

	// RenamedEvent is published when a UID is re-keyed.
	RenamedEvent EventType = "renamed"
	// InvalidatedEvent is published when a component drops its caches.
	InvalidatedEvent EventType = "invalidated"
	// RebuiltEvent is published after the positioning tree was rebuilt.
	RebuiltEvent EventType = "rebuilt"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
