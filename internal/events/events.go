// Package events carries the change feed the store adapter emits after
// each write. The fan-out engine subscribes to it the way the original
// deployment subscribed to document-store triggers.
package events

import "context"

// Kind is the class of change an event describes.
type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
)

// Event describes one document write. Before is the prior document for
// updates and deletes; After is the resulting document for creates and
// updates.
type Event struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Kind       Kind           `json:"kind"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
}

// Handler consumes one event. Handlers must tolerate redelivery and must
// not assume any ordering relative to the request that caused the write.
type Handler func(ctx context.Context, event Event)

// Publisher is the write side of the feed, used by the store decorator.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Feed is a publisher that handlers can subscribe to.
type Feed interface {
	Publisher
	Subscribe(ctx context.Context, handler Handler) error
}
