package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Arctuition/documenso/internal/core/domain"
	"github.com/Arctuition/documenso/internal/core/ports"
)

// SignFieldUseCase inserts values into fields. Every call re-reads the
// field, recipient and document inside its own transaction and walks an
// ordered precondition chain before mutating anything, so all call sites
// enforce identical invariants.
type SignFieldUseCase struct {
	store ports.SigningStore
	now   func() time.Time
}

func NewSignFieldUseCase(store ports.SigningStore) *SignFieldUseCase {
	return &SignFieldUseCase{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (uc *SignFieldUseCase) SignField(
	ctx context.Context,
	token string,
	fieldID int64,
	value string,
	isBase64 bool,
) (*domain.Field, error) {
	var signed *domain.Field

	err := uc.store.InTransaction(ctx, func(ctx context.Context, tx ports.SigningTx) error {
		field, recipient, doc, err := tx.FieldForRecipient(ctx, fieldID, token)
		if err != nil {
			return err
		}

		if err := checkMutationPreconditions(doc, recipient); err != nil {
			return err
		}
		if field.Meta.ReadOnly {
			return domain.WrapError(domain.ErrForbidden, "sign field",
				fmt.Errorf("field %d is read-only", field.ID))
		}
		if err := domain.ValidateFieldValue(*field, doc.Meta, value, isBase64); err != nil {
			return err
		}

		now := uc.now()

		// Re-signing replaces the prior value within the same transaction.
		// The implicit removal is audited, matching an explicit remove.
		if field.Inserted {
			if err := uc.clearField(ctx, tx, field, recipient, doc); err != nil {
				return err
			}
		}

		customText := value
		if field.Type == domain.FieldTypeSignature {
			customText = ""
		}
		if field.Type == domain.FieldTypeDate {
			customText = domain.FormatDocumentDate(now, doc.Meta)
		}

		if err := tx.SetFieldValue(ctx, field.ID, true, customText); err != nil {
			return err
		}

		var signature *domain.Signature
		if field.Type == domain.FieldTypeSignature {
			image, typed := "", ""
			if domain.IsImageValue(value) {
				image = value
			} else {
				typed = value
			}
			if err := tx.ReplaceSignature(ctx, field.ID, image, typed); err != nil {
				return err
			}
			signature = &domain.Signature{FieldID: field.ID, ImageAsBase64: image, TypedSignature: typed}
		}

		if err := tx.AppendAuditLog(ctx, &domain.AuditLogEntry{
			Type:       domain.AuditFieldInserted,
			DocumentID: doc.ID,
			Actor:      domain.AuditActor{Name: recipient.Name, Email: recipient.Email},
			Data: map[string]string{
				"field":    string(field.Type),
				"field_id": field.SecondaryID,
			},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		if err := tx.EnqueueEvent(ctx, &domain.OutboxEvent{
			ID:         uuid.NewString(),
			Type:       domain.EventFieldSigned,
			DocumentID: doc.ID,
			Payload: map[string]string{
				"field_id":        strconv.FormatInt(field.ID, 10),
				"field_type":      string(field.Type),
				"recipient_email": recipient.Email,
			},
			Status:    domain.OutboxStatusPending,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		field.Inserted = true
		field.CustomText = customText
		field.Signature = signature
		signed = field
		return nil
	})
	if err != nil {
		return nil, err
	}
	return signed, nil
}

// clearField resets a field's value and signature and audits the removal.
// Callers have already validated document and recipient state.
func (uc *SignFieldUseCase) clearField(
	ctx context.Context,
	tx ports.SigningTx,
	field *domain.Field,
	recipient *domain.Recipient,
	doc *domain.Document,
) error {
	if err := tx.SetFieldValue(ctx, field.ID, false, ""); err != nil {
		return err
	}
	if err := tx.DeleteSignature(ctx, field.ID); err != nil {
		return err
	}
	return tx.AppendAuditLog(ctx, &domain.AuditLogEntry{
		Type:       domain.AuditFieldUninserted,
		DocumentID: doc.ID,
		Actor:      domain.AuditActor{Name: recipient.Name, Email: recipient.Email},
		Data: map[string]string{
			"field":    string(field.Type),
			"field_id": field.SecondaryID,
		},
		CreatedAt: uc.now(),
	})
}

// checkMutationPreconditions is the shared document/recipient status gate for
// every field mutation.
func checkMutationPreconditions(doc *domain.Document, recipient *domain.Recipient) error {
	if doc.Status != domain.DocumentStatusPending {
		return domain.WrapError(domain.ErrInvalidState, "mutate field",
			fmt.Errorf("document %d is not pending", doc.ID))
	}
	if recipient.SigningStatus == domain.SigningStatusSigned {
		return domain.WrapError(domain.ErrInvalidState, "mutate field",
			fmt.Errorf("recipient %d has already signed", recipient.ID))
	}
	return nil
}
