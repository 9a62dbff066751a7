// Package event defines the domain events emitted after successful
// workflow transitions. Consumers (notification handlers) subscribe through
// the application dispatcher; delivery to the outside world is someone
// else's job.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event.
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	ApplicationID uuid.UUID              `json:"application_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
}

// New creates a domain event with a generated ID and current timestamp.
func New(eventType Type, applicationID uuid.UUID, payload map[string]interface{}) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		ApplicationID: applicationID,
		Payload:       payload,
		Timestamp:     time.Now(),
	}
}

// PayloadString retrieves a string value from the payload, or "".
func (e *Event) PayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
