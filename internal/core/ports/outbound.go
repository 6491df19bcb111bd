package ports

import (
	"context"
	"time"

	"github.com/Arctuition/documenso/internal/core/domain"
)

// SigningTx is the transaction-scoped view of the signing store. Mutations
// re-read authoritative state through it instead of trusting caller-supplied
// snapshots, so precondition checks and effects commit or roll back together.
type SigningTx interface {
	// FieldForRecipient loads a field (with any signature) together with its
	// recipient and document, locked for update. The field must belong to the
	// recipient identified by token.
	FieldForRecipient(ctx context.Context, fieldID int64, token string) (*domain.Field, *domain.Recipient, *domain.Document, error)

	// RecipientByToken loads a recipient and its document, locked for update.
	RecipientByToken(ctx context.Context, token string) (*domain.Recipient, *domain.Document, error)

	ListRecipients(ctx context.Context, documentID int64) ([]domain.Recipient, error)
	ListRecipientFields(ctx context.Context, recipientID int64) ([]domain.Field, error)

	SetFieldValue(ctx context.Context, fieldID int64, inserted bool, customText string) error
	ReplaceSignature(ctx context.Context, fieldID int64, imageAsBase64, typedSignature string) error
	DeleteSignature(ctx context.Context, fieldID int64) error

	SetRecipientReadStatus(ctx context.Context, recipientID int64, status domain.ReadStatus) error
	SetRecipientSigningStatus(ctx context.Context, recipientID int64, status domain.SigningStatus) error
	SetDocumentStatus(ctx context.Context, documentID int64, status domain.DocumentStatus, completedAt *time.Time) error

	AppendAuditLog(ctx context.Context, entry *domain.AuditLogEntry) error
	EnqueueEvent(ctx context.Context, event *domain.OutboxEvent) error
}

// SigningStore persists documents, recipients, fields and their audit trail.
type SigningStore interface {
	// InTransaction runs fn inside one atomic transaction; returning an error
	// rolls everything back.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx SigningTx) error) error

	RecipientByToken(ctx context.Context, token string) (*domain.Recipient, *domain.Document, error)
	DocumentByID(ctx context.Context, documentID int64) (*domain.Document, error)
	ListRecipients(ctx context.Context, documentID int64) ([]domain.Recipient, error)
	ListRecipientFields(ctx context.Context, recipientID int64) ([]domain.Field, error)
	ListAuditLogs(ctx context.Context, documentID int64) ([]domain.AuditLogEntry, error)
}

// OutboxStore reads and settles queued notification events.
type OutboxStore interface {
	ListPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkDispatched(ctx context.Context, eventID string) error
	// MarkFailed bumps the attempt counter; events past maxAttempts are parked
	// as FAILED and no longer claimed.
	MarkFailed(ctx context.Context, eventID string, maxAttempts int) error
}

// EventPublisher emits notification events to external collaborators.
// Fire-and-forget from the core's perspective; delivery is best-effort.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event domain.OutboxEvent) error
}

// AuditReportWriter renders a document's audit trail into a downloadable
// report.
type AuditReportWriter interface {
	WriteReport(doc *domain.Document, entries []domain.AuditLogEntry) ([]byte, error)
}
