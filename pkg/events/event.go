package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_STARTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Metric event types emitted by the session flows. Names match what the
// analytics pipeline already ingests from the clients.
const (
	TypeSessionStarted    = "SESSION_STARTED"
	TypeSessionLeft       = "SESSION_LEFT"
	TypeAddedToInterested = "ADD_SHARING_SESSION_TO_INTERESTED"
	TypeSessionCompleted  = "SESSION_COMPLETED"
	TypePostCreated       = "POST_CREATED"
)

// NewSessionMetricEvent builds a metric event carrying the session context the
// analytics sink expects.
func NewSessionMetricEvent(eventType, sessionID, exerciseID, userID string) BaseEvent {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"exercise_id": exerciseID,
			"user_id":     userID,
		},
		OccurredAt: time.Now(),
	}
}
