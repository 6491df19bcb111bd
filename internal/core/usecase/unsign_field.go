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

// UnsignFieldUseCase clears a previously inserted field. Removing a field
// that is not inserted fails with an invalid-state error and never touches
// the audit log.
type UnsignFieldUseCase struct {
	store ports.SigningStore
	now   func() time.Time
}

func NewUnsignFieldUseCase(store ports.SigningStore) *UnsignFieldUseCase {
	return &UnsignFieldUseCase{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (uc *UnsignFieldUseCase) UnsignField(ctx context.Context, token string, fieldID int64) error {
	return uc.store.InTransaction(ctx, func(ctx context.Context, tx ports.SigningTx) error {
		field, recipient, doc, err := tx.FieldForRecipient(ctx, fieldID, token)
		if err != nil {
			return err
		}

		if err := checkMutationPreconditions(doc, recipient); err != nil {
			return err
		}
		if !field.Inserted {
			return domain.WrapError(domain.ErrInvalidState, "unsign field",
				fmt.Errorf("field %d is not inserted", field.ID))
		}

		if err := tx.SetFieldValue(ctx, field.ID, false, ""); err != nil {
			return err
		}
		if err := tx.DeleteSignature(ctx, field.ID); err != nil {
			return err
		}

		now := uc.now()
		if err := tx.AppendAuditLog(ctx, &domain.AuditLogEntry{
			Type:       domain.AuditFieldUninserted,
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

		return tx.EnqueueEvent(ctx, &domain.OutboxEvent{
			ID:         uuid.NewString(),
			Type:       domain.EventFieldUnsigned,
			DocumentID: doc.ID,
			Payload: map[string]string{
				"field_id":        strconv.FormatInt(field.ID, 10),
				"field_type":      string(field.Type),
				"recipient_email": recipient.Email,
			},
			Status:    domain.OutboxStatusPending,
			CreatedAt: now,
		})
	})
}
