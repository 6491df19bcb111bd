package ports

import (
	"context"

	"github.com/Arctuition/documenso/internal/core/domain"
)

// FieldSigner inserts a value into a field on behalf of the recipient
// identified by token.
type FieldSigner interface {
	SignField(ctx context.Context, token string, fieldID int64, value string, isBase64 bool) (*domain.Field, error)
}

// FieldUnsigner clears a previously inserted field.
type FieldUnsigner interface {
	UnsignField(ctx context.Context, token string, fieldID int64) error
}

// AutoSigner fills in non-interactive fields once it is the recipient's
// turn. Partial failure is tolerated; the aggregate error reports every
// field that could not be signed.
type AutoSigner interface {
	AutoSignDateFields(ctx context.Context, token string) (int, error)
}

// SessionLoader assembles a recipient's signing session.
type SessionLoader interface {
	LoadSession(ctx context.Context, token string) (*domain.SigningSession, error)
}

// DocumentCompleter finalizes a recipient's participation and, when they are
// the last one, the document itself.
type DocumentCompleter interface {
	CompleteDocument(ctx context.Context, token string) (*domain.Recipient, error)
}

// AuditReporter exports a document's audit trail.
type AuditReporter interface {
	ExportAuditReport(ctx context.Context, documentID int64) ([]byte, error)
}
