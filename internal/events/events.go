package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the point in a batch run an event describes.
type EventType string

// Batch run event types
const (
	BatchStarted   EventType = "batch_started"
	ItemSucceeded  EventType = "item_succeeded"
	ItemFailed     EventType = "item_failed"
	BatchCompleted EventType = "batch_completed"
)

// ProgressEvent is a snapshot of a batch run at the moment something happened.
type ProgressEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// RunID identifies the batch run the event belongs to
	RunID uuid.UUID `json:"run_id"`

	Type      EventType `json:"type"`
	Operation string    `json:"operation"`

	// Path is the item that settled; empty for run-level events
	Path string `json:"path,omitempty"`

	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`

	// Err is the redacted failure message for ItemFailed events
	Err string `json:"error,omitempty"`

	// Elapsed is the time since the run started
	Elapsed time.Duration `json:"elapsed"`

	CreatedAt time.Time `json:"created_at"`
}

// NewProgressEvent creates an event stamped with a fresh ID and the current time.
func NewProgressEvent(runID uuid.UUID, eventType EventType, operation string) *ProgressEvent {
	return &ProgressEvent{
		ID:        uuid.New(),
		RunID:     runID,
		Type:      eventType,
		Operation: operation,
		CreatedAt: time.Now().UTC(),
	}
}

// Settled returns the number of items that have finished, successfully or not.
func (e *ProgressEvent) Settled() int {
	return e.Processed + e.Failed
}

// Percent returns settled items as a percentage of the total, rounded to the
// nearest whole number. An empty run is reported as complete.
func (e *ProgressEvent) Percent() int {
	if e.Total <= 0 {
		return 100
	}
	return (e.Settled()*200 + e.Total) / (2 * e.Total)
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ProgressEvent) error
}

// HandlerFunc adapts an ordinary function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *ProgressEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ProgressEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows the batch driver to publish progress without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ProgressEvent) error
}
