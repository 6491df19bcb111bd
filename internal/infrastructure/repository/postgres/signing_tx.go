package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Arctuition/documenso/internal/core/domain"
)

// signingTx implements ports.SigningTx over one *sql.Tx. Row locks are taken
// on every load so precondition checks and effects serialize against
// concurrent mutations of the same rows.
type signingTx struct {
	q querier
}

func (t *signingTx) FieldForRecipient(ctx context.Context, fieldID int64, token string) (*domain.Field, *domain.Recipient, *domain.Document, error) {
	row := t.q.QueryRowContext(ctx, `
SELECT f.id, f.secondary_id, f.document_id, f.recipient_id, f.type, f.inserted, f.custom_text, f.meta,
       `+recipientColumns+`, `+documentColumns+`
FROM fields f
JOIN recipients r ON r.id = f.recipient_id
JOIN documents d ON d.id = f.document_id
WHERE f.id = $1 AND r.token = $2
FOR UPDATE OF f, r, d
`, fieldID, token)

	var field domain.Field
	var fieldType string
	var metaRaw []byte
	var recipient domain.Recipient
	var doc domain.Document
	var role, signingStatus, readStatus string
	var order sql.NullInt64
	var docStatus, docSigningOrder string
	var completedAt sql.NullTime

	err := row.Scan(
		&field.ID, &field.SecondaryID, &field.DocumentID, &field.RecipientID,
		&fieldType, &field.Inserted, &field.CustomText, &metaRaw,
		&recipient.ID, &recipient.DocumentID, &recipient.Token,
		&recipient.Name, &recipient.Email, &role,
		&signingStatus, &readStatus, &order, &recipient.RedirectURL,
		&doc.ID, &doc.Title, &docStatus, &docSigningOrder,
		&doc.Meta.DateFormat, &doc.Meta.Timezone,
		&doc.Meta.TypedSignatureEnabled, &doc.Meta.UploadSignatureEnabled, &doc.Meta.DrawSignatureEnabled,
		&doc.Meta.RedirectURL, &doc.CreatedAt, &doc.UpdatedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, domain.WrapError(domain.ErrNotFound, "field for recipient",
				fmt.Errorf("field %d does not belong to the recipient", fieldID))
		}
		return nil, nil, nil, fmt.Errorf("field for recipient: %w", err)
	}

	if err := json.Unmarshal(metaRaw, &field.Meta); err != nil {
		return nil, nil, nil, fmt.Errorf("unmarshal field meta: %w", err)
	}
	field.Type = domain.FieldType(fieldType)
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

	sigRow := t.q.QueryRowContext(ctx, `
SELECT id, image_base64, typed_signature
FROM signatures
WHERE field_id = $1
`, field.ID)

	var sig domain.Signature
	switch err := sigRow.Scan(&sig.ID, &sig.ImageAsBase64, &sig.TypedSignature); {
	case err == nil:
		sig.FieldID = field.ID
		field.Signature = &sig
	case errors.Is(err, sql.ErrNoRows):
		// no signature yet
	default:
		return nil, nil, nil, fmt.Errorf("load signature: %w", err)
	}

	return &field, &recipient, &doc, nil
}

func (t *signingTx) RecipientByToken(ctx context.Context, token string) (*domain.Recipient, *domain.Document, error) {
	return recipientByToken(ctx, t.q, token, "FOR UPDATE OF r, d")
}

func (t *signingTx) ListRecipients(ctx context.Context, documentID int64) ([]domain.Recipient, error) {
	return listRecipients(ctx, t.q, documentID)
}

func (t *signingTx) ListRecipientFields(ctx context.Context, recipientID int64) ([]domain.Field, error) {
	return listRecipientFields(ctx, t.q, recipientID)
}

func (t *signingTx) SetFieldValue(ctx context.Context, fieldID int64, inserted bool, customText string) error {
	result, err := t.q.ExecContext(ctx, `
UPDATE fields
SET inserted = $2, custom_text = $3
WHERE id = $1
`, fieldID, inserted, customText)
	if err != nil {
		return fmt.Errorf("set field value: %w", err)
	}
	return requireRowsAffected(result, "set field value", domain.ErrNotFound)
}

func (t *signingTx) ReplaceSignature(ctx context.Context, fieldID int64, imageAsBase64, typedSignature string) error {
	_, err := t.q.ExecContext(ctx, `
INSERT INTO signatures (field_id, image_base64, typed_signature)
VALUES ($1, $2, $3)
ON CONFLICT (field_id) DO UPDATE SET image_base64 = $2, typed_signature = $3
`, fieldID, imageAsBase64, typedSignature)
	if err != nil {
		return fmt.Errorf("replace signature: %w", err)
	}
	return nil
}

func (t *signingTx) DeleteSignature(ctx context.Context, fieldID int64) error {
	_, err := t.q.ExecContext(ctx, `DELETE FROM signatures WHERE field_id = $1`, fieldID)
	if err != nil {
		return fmt.Errorf("delete signature: %w", err)
	}
	return nil
}

func (t *signingTx) SetRecipientReadStatus(ctx context.Context, recipientID int64, status domain.ReadStatus) error {
	result, err := t.q.ExecContext(ctx, `
UPDATE recipients
SET read_status = $2
WHERE id = $1
`, recipientID, string(status))
	if err != nil {
		return fmt.Errorf("set recipient read status: %w", err)
	}
	return requireRowsAffected(result, "set recipient read status", domain.ErrNotFound)
}

func (t *signingTx) SetRecipientSigningStatus(ctx context.Context, recipientID int64, status domain.SigningStatus) error {
	result, err := t.q.ExecContext(ctx, `
UPDATE recipients
SET signing_status = $2
WHERE id = $1
`, recipientID, string(status))
	if err != nil {
		return fmt.Errorf("set recipient signing status: %w", err)
	}
	return requireRowsAffected(result, "set recipient signing status", domain.ErrNotFound)
}

func (t *signingTx) SetDocumentStatus(ctx context.Context, documentID int64, status domain.DocumentStatus, completedAt *time.Time) error {
	result, err := t.q.ExecContext(ctx, `
UPDATE documents
SET status = $2, completed_at = $3, updated_at = $4
WHERE id = $1
`, documentID, string(status), completedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set document status: %w", err)
	}
	return requireRowsAffected(result, "set document status", domain.ErrNotFound)
}

func (t *signingTx) AppendAuditLog(ctx context.Context, entry *domain.AuditLogEntry) error {
	data := entry.Data
	if data == nil {
		data = map[string]string{}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal audit data: %w", err)
	}

	_, err = t.q.ExecContext(ctx, `
INSERT INTO audit_logs (type, document_id, actor_name, actor_email, data, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, string(entry.Type), entry.DocumentID, entry.Actor.Name, entry.Actor.Email, dataJSON, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

func (t *signingTx) EnqueueEvent(ctx context.Context, event *domain.OutboxEvent) error {
	payload := event.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = t.q.ExecContext(ctx, `
INSERT INTO outbox_events (id, event_type, document_id, payload, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, event.ID, string(event.Type), event.DocumentID, payloadJSON, string(event.Status), event.CreatedAt)
	if err != nil {
		return fmt.Errorf("enqueue event: %w", err)
	}
	return nil
}

func requireRowsAffected(result sql.Result, operation string, kind error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if rows == 0 {
		return domain.WrapError(kind, operation, errors.New("no rows affected"))
	}
	return nil
}
