// Package status implements the inspection status broker: a CloudEvents-
// style pub/sub bus plus an SSE handler, adapted from the teacher's
// tenant event bus to inspection and group-progress event types.
package status

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a single status update, formatted as a CloudEvents 1.0
// envelope for wire compatibility with the teacher's existing consumers.
type Event struct {
	SpecVersion string    `json:"specversion"`
	Type        string    `json:"type"`
	Source      string    `json:"source"`
	ID          string    `json:"id"`
	Time        time.Time `json:"time"`
	Data        any       `json:"data"`
}

const (
	EventInspectionStarted   = "inspection.started"
	EventInspectionCompleted = "inspection.completed"
	EventInspectionDiscarded = "inspection.discarded"
	EventGroupProgress       = "group.progress"
	EventSensorState         = "sensor.state"
)

// NewEvent stamps a new event with a fresh ID and the current time.
func NewEvent(eventType string, data any) Event {
	return Event{
		SpecVersion: "1.0",
		Type:        eventType,
		Source:      "wood-inspector",
		ID:          uuid.NewString(),
		Time:        time.Now(),
		Data:        data,
	}
}

// JSON marshals the event for status snapshot endpoints.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// SSEFormat renders the event as a single Server-Sent Events message.
func (e Event) SSEFormat() ([]byte, error) {
	payload, err := e.JSON()
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\nid: %s\n\n", e.Type, payload, e.ID)), nil
}
