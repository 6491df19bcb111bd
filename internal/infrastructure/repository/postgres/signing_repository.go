package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Arctuition/documenso/internal/core/domain"
	"github.com/Arctuition/documenso/internal/core/ports"
)

type SigningRepository struct {
	db *sql.DB
}

func NewSigningRepository(db *sql.DB) *SigningRepository {
	return &SigningRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *SigningRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026040901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	status TEXT NOT NULL,
	signing_order TEXT NOT NULL DEFAULT 'PARALLEL',
	date_format TEXT NOT NULL DEFAULT '',
	timezone TEXT NOT NULL DEFAULT '',
	typed_signature_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	upload_signature_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	draw_signature_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	redirect_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS recipients (
	id BIGSERIAL PRIMARY KEY,
	document_id BIGINT NOT NULL REFERENCES documents(id),
	token TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	role TEXT NOT NULL,
	signing_status TEXT NOT NULL DEFAULT 'NOT_SIGNED',
	read_status TEXT NOT NULL DEFAULT 'NOT_OPENED',
	signing_order INTEGER,
	redirect_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS fields (
	id BIGSERIAL PRIMARY KEY,
	secondary_id TEXT NOT NULL DEFAULT '',
	document_id BIGINT NOT NULL REFERENCES documents(id),
	recipient_id BIGINT NOT NULL REFERENCES recipients(id),
	type TEXT NOT NULL,
	inserted BOOLEAN NOT NULL DEFAULT FALSE,
	custom_text TEXT NOT NULL DEFAULT '',
	meta JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE TABLE IF NOT EXISTS signatures (
	id BIGSERIAL PRIMARY KEY,
	field_id BIGINT NOT NULL UNIQUE REFERENCES fields(id),
	image_base64 TEXT NOT NULL DEFAULT '',
	typed_signature TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS audit_logs (
	id BIGSERIAL PRIMARY KEY,
	type TEXT NOT NULL,
	document_id BIGINT NOT NULL REFERENCES documents(id),
	actor_name TEXT NOT NULL DEFAULT '',
	actor_email TEXT NOT NULL DEFAULT '',
	data JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS outbox_events (
	id TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	document_id BIGINT NOT NULL,
	payload JSONB NOT NULL DEFAULT '{}'::jsonb,
	status TEXT NOT NULL DEFAULT 'PENDING',
	attempts INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	dispatched_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_recipients_document_id ON recipients(document_id);
CREATE INDEX IF NOT EXISTS idx_fields_recipient_id ON fields(recipient_id);
CREATE INDEX IF NOT EXISTS idx_audit_logs_document_id ON audit_logs(document_id, created_at);
CREATE INDEX IF NOT EXISTS idx_outbox_events_pending ON outbox_events(created_at) WHERE status = 'PENDING';
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *SigningRepository) InTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.SigningTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &signingTx{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *SigningRepository) RecipientByToken(ctx context.Context, token string) (*domain.Recipient, *domain.Document, error) {
	return recipientByToken(ctx, r.db, token, "")
}

func (r *SigningRepository) DocumentByID(ctx context.Context, documentID int64) (*domain.Document, error) {
	return documentByID(ctx, r.db, documentID)
}

func (r *SigningRepository) ListRecipients(ctx context.Context, documentID int64) ([]domain.Recipient, error) {
	return listRecipients(ctx, r.db, documentID)
}

func (r *SigningRepository) ListRecipientFields(ctx context.Context, recipientID int64) ([]domain.Field, error) {
	return listRecipientFields(ctx, r.db, recipientID)
}

func (r *SigningRepository) ListAuditLogs(ctx context.Context, documentID int64) ([]domain.AuditLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, type, document_id, actor_name, actor_email, data, created_at
FROM audit_logs
WHERE document_id = $1
ORDER BY created_at, id
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	out := make([]domain.AuditLogEntry, 0)
	for rows.Next() {
		var entry domain.AuditLogEntry
		var entryType string
		var dataRaw []byte
		if err := rows.Scan(
			&entry.ID, &entryType, &entry.DocumentID,
			&entry.Actor.Name, &entry.Actor.Email, &dataRaw, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		if err := json.Unmarshal(dataRaw, &entry.Data); err != nil {
			return nil, fmt.Errorf("unmarshal audit data: %w", err)
		}
		entry.Type = domain.AuditLogType(entryType)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return out, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx so the read helpers can
// serve transactional and plain lookups alike.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const documentColumns = `
d.id, d.title, d.status, d.signing_order, d.date_format, d.timezone,
d.typed_signature_enabled, d.upload_signature_enabled, d.draw_signature_enabled,
d.redirect_url, d.created_at, d.updated_at, d.completed_at`

const recipientColumns = `
r.id, r.document_id, r.token, r.name, r.email, r.role,
r.signing_status, r.read_status, r.signing_order, r.redirect_url`

func recipientByToken(ctx context.Context, q querier, token, lock string) (*domain.Recipient, *domain.Document, error) {
	query := `
SELECT ` + recipientColumns + `, ` + documentColumns + `
FROM recipients r
JOIN documents d ON d.id = r.document_id
WHERE r.token = $1
` + lock

	row := q.QueryRowContext(ctx, query, token)

	var recipient domain.Recipient
	var doc domain.Document
	if err := scanRecipientAndDocument(row, &recipient, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.WrapError(domain.ErrNotFound, "recipient by token", errors.New("no recipient for token"))
		}
		return nil, nil, fmt.Errorf("recipient by token: %w", err)
	}
	return &recipient, &doc, nil
}

func documentByID(ctx context.Context, q querier, documentID int64) (*domain.Document, error) {
	row := q.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents d
WHERE d.id = $1
`, documentID)

	var doc domain.Document
	if err := scanDocument(row, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "document by id", fmt.Errorf("document %d", documentID))
		}
		return nil, fmt.Errorf("document by id: %w", err)
	}
	return &doc, nil
}

func listRecipients(ctx context.Context, q querier, documentID int64) ([]domain.Recipient, error) {
	rows, err := q.QueryContext(ctx, `
SELECT `+recipientColumns+`
FROM recipients r
WHERE r.document_id = $1
ORDER BY r.id
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Recipient, 0)
	for rows.Next() {
		var recipient domain.Recipient
		if err := scanRecipient(rows, &recipient); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		out = append(out, recipient)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipients: %w", err)
	}
	return out, nil
}

func listRecipientFields(ctx context.Context, q querier, recipientID int64) ([]domain.Field, error) {
	rows, err := q.QueryContext(ctx, `
SELECT f.id, f.secondary_id, f.document_id, f.recipient_id, f.type, f.inserted, f.custom_text, f.meta,
       s.id, s.image_base64, s.typed_signature
FROM fields f
LEFT JOIN signatures s ON s.field_id = f.id
WHERE f.recipient_id = $1
ORDER BY f.id
`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list recipient fields: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Field, 0)
	for rows.Next() {
		field, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		out = append(out, field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fields: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanField(row rowScanner) (domain.Field, error) {
	var field domain.Field
	var fieldType string
	var metaRaw []byte
	var sigID sql.NullInt64
	var sigImage, sigTyped sql.NullString

	err := row.Scan(
		&field.ID, &field.SecondaryID, &field.DocumentID, &field.RecipientID,
		&fieldType, &field.Inserted, &field.CustomText, &metaRaw,
		&sigID, &sigImage, &sigTyped,
	)
	if err != nil {
		return domain.Field{}, err
	}
	if err := json.Unmarshal(metaRaw, &field.Meta); err != nil {
		return domain.Field{}, fmt.Errorf("unmarshal field meta: %w", err)
	}
	field.Type = domain.FieldType(fieldType)
	if sigID.Valid {
		field.Signature = &domain.Signature{
			ID:             sigID.Int64,
			FieldID:        field.ID,
			ImageAsBase64:  sigImage.String,
			TypedSignature: sigTyped.String,
		}
	}
	return field, nil
}

func scanRecipient(row rowScanner, recipient *domain.Recipient) error {
	var role, signingStatus, readStatus string
	var order sql.NullInt64

	err := row.Scan(
		&recipient.ID, &recipient.DocumentID, &recipient.Token,
		&recipient.Name, &recipient.Email, &role,
		&signingStatus, &readStatus, &order, &recipient.RedirectURL,
	)
	if err != nil {
		return err
	}
	recipient.Role = domain.RecipientRole(role)
	recipient.SigningStatus = domain.SigningStatus(signingStatus)
	recipient.ReadStatus = domain.ReadStatus(readStatus)
	if order.Valid {
		n := int(order.Int64)
		recipient.SigningOrder = &n
	}
	return nil
}

func scanDocument(row rowScanner, doc *domain.Document) error {
	var status, signingOrder string
	var completedAt sql.NullTime

	err := row.Scan(
		&doc.ID, &doc.Title, &status, &signingOrder,
		&doc.Meta.DateFormat, &doc.Meta.Timezone,
		&doc.Meta.TypedSignatureEnabled, &doc.Meta.UploadSignatureEnabled, &doc.Meta.DrawSignatureEnabled,
		&doc.Meta.RedirectURL, &doc.CreatedAt, &doc.UpdatedAt, &completedAt,
	)
	if err != nil {
		return err
	}
	doc.Status = domain.DocumentStatus(status)
	doc.SigningOrder = domain.SigningOrder(signingOrder)
	if completedAt.Valid {
		t := completedAt.Time
		doc.CompletedAt = &t
	}
	return nil
}

func scanRecipientAndDocument(row rowScanner, recipient *domain.Recipient, doc *domain.Document) error {
	var role, signingStatus, readStatus string
	var order sql.NullInt64
	var docStatus, docSigningOrder string
	var completedAt sql.NullTime

	err := row.Scan(
		&recipient.ID, &recipient.DocumentID, &recipient.Token,
		&recipient.Name, &recipient.Email, &role,
		&signingStatus, &readStatus, &order, &recipient.RedirectURL,
		&doc.ID, &doc.Title, &docStatus, &docSigningOrder,
		&doc.Meta.DateFormat, &doc.Meta.Timezone,
		&doc.Meta.TypedSignatureEnabled, &doc.Meta.UploadSignatureEnabled, &doc.Meta.DrawSignatureEnabled,
		&doc.Meta.RedirectURL, &doc.CreatedAt, &doc.UpdatedAt, &completedAt,
	)
	if err != nil {
		return err
	}
	recipient.Role = domain.RecipientRole(role)
	recipient.SigningStatus = domain.SigningStatus(signingStatus)
	recipient.ReadStatus = domain.ReadStatus(readStatus)
	if order.Valid {
		n := int(order.Int64)
		recipient.SigningOrder = &n
	}
	doc.Status = domain.DocumentStatus(docStatus)
	doc.SigningOrder = domain.SigningOrder(docSigningOrder)
	if completedAt.Valid {
		t := completedAt.Time
		doc.CompletedAt = &t
	}
	return nil
}
