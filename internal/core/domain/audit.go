package domain

import "time"

type AuditLogType string

const (
	AuditDocumentOpened     AuditLogType = "DOCUMENT_OPENED"
	AuditFieldInserted      AuditLogType = "DOCUMENT_FIELD_INSERTED"
	AuditFieldUninserted    AuditLogType = "DOCUMENT_FIELD_UNINSERTED"
	AuditRecipientCompleted AuditLogType = "DOCUMENT_RECIPIENT_COMPLETED"
	AuditDocumentCompleted  AuditLogType = "DOCUMENT_COMPLETED"
)

// AuditActor identifies who performed a state-changing action.
type AuditActor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuditLogEntry is one append-only record of a state-changing action on a
// document. Data is a flat bag of event-specific attributes.
type AuditLogEntry struct {
	ID         int64             `json:"id"`
	Type       AuditLogType      `json:"type"`
	DocumentID int64             `json:"document_id"`
	Actor      AuditActor        `json:"actor"`
	Data       map[string]string `json:"data,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
