package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ENTITY_CREATED").
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

// NewEntityAuditEvent builds the audit event emitted after every successful
// generic write: ENTITY_CREATED, ENTITY_UPDATED, ENTITY_DELETED,
// ENTITY_RESTORED.
func NewEntityAuditEvent(code, entityType, entityID, tenantID, callerID string) Event {
	return BaseEvent{
		Type: code,
		Data: map[string]interface{}{
			"entity_type": entityType,
			"entity_id":   entityID,
			"tenant_id":   tenantID,
			"caller_id":   callerID,
		},
		OccurredAt: time.Now(),
	}
}
