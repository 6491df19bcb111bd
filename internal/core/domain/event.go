package domain

import "time"

type EventType string

const (
	EventDocumentOpened    EventType = "document.opened"
	EventFieldSigned       EventType = "field.signed"
	EventFieldUnsigned     EventType = "field.unsigned"
	EventRecipientSigned   EventType = "recipient.signed"
	EventRecipientTurn     EventType = "recipient.turn"
	EventDocumentCompleted EventType = "document.completed"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusDispatched OutboxStatus = "DISPATCHED"
	OutboxStatusFailed     OutboxStatus = "FAILED"
)

// OutboxEvent is a queued notification written in the same transaction as the
// state change it describes. The dispatcher publishes pending events and
// marks them dispatched; persistence correctness never depends on delivery.
type OutboxEvent struct {
	ID           string            `json:"id"`
	Type         EventType         `json:"type"`
	DocumentID   int64             `json:"document_id"`
	Payload      map[string]string `json:"payload,omitempty"`
	Status       OutboxStatus      `json:"status"`
	Attempts     int               `json:"attempts"`
	CreatedAt    time.Time         `json:"created_at"`
	DispatchedAt *time.Time        `json:"dispatched_at,omitempty"`
}
