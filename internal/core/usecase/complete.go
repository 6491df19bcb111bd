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

// CompleteDocumentUseCase finalizes a recipient's signing pass: all required
// fields must be inserted and, under sequential ordering, it must be the
// recipient's turn. When the last recipient signs, the document transitions
// to COMPLETED in the same transaction.
type CompleteDocumentUseCase struct {
	store ports.SigningStore
	now   func() time.Time
}

func NewCompleteDocumentUseCase(store ports.SigningStore) *CompleteDocumentUseCase {
	return &CompleteDocumentUseCase{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (uc *CompleteDocumentUseCase) CompleteDocument(ctx context.Context, token string) (*domain.Recipient, error) {
	var completed *domain.Recipient

	err := uc.store.InTransaction(ctx, func(ctx context.Context, tx ports.SigningTx) error {
		recipient, doc, err := tx.RecipientByToken(ctx, token)
		if err != nil {
			return err
		}

		if doc.Status != domain.DocumentStatusPending {
			return domain.WrapError(domain.ErrInvalidState, "complete document",
				fmt.Errorf("document %d is not pending", doc.ID))
		}
		if recipient.SigningStatus == domain.SigningStatusSigned {
			return domain.WrapError(domain.ErrInvalidState, "complete document",
				fmt.Errorf("recipient %d has already signed", recipient.ID))
		}

		all, err := tx.ListRecipients(ctx, doc.ID)
		if err != nil {
			return err
		}
		if !domain.IsRecipientsTurn(*recipient, all, doc.SigningOrder) {
			return domain.WrapError(domain.ErrInvalidState, "complete document",
				fmt.Errorf("recipient %d is not next in the signing order", recipient.ID))
		}

		fields, err := tx.ListRecipientFields(ctx, recipient.ID)
		if err != nil {
			return err
		}
		missing := 0
		for _, f := range fields {
			if domain.IsFieldUnsignedAndRequired(f) {
				missing++
			}
		}
		if missing > 0 {
			return domain.WrapError(domain.ErrValidation, "complete document",
				fmt.Errorf("%d required fields are not inserted", missing))
		}

		if err := tx.SetRecipientSigningStatus(ctx, recipient.ID, domain.SigningStatusSigned); err != nil {
			return err
		}

		now := uc.now()
		if err := tx.AppendAuditLog(ctx, &domain.AuditLogEntry{
			Type:       domain.AuditRecipientCompleted,
			DocumentID: doc.ID,
			Actor:      domain.AuditActor{Name: recipient.Name, Email: recipient.Email},
			Data: map[string]string{
				"recipient_id":   strconv.FormatInt(recipient.ID, 10),
				"recipient_role": string(recipient.Role),
			},
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if err := tx.EnqueueEvent(ctx, &domain.OutboxEvent{
			ID:         uuid.NewString(),
			Type:       domain.EventRecipientSigned,
			DocumentID: doc.ID,
			Payload: map[string]string{
				"recipient_id":    strconv.FormatInt(recipient.ID, 10),
				"recipient_email": recipient.Email,
			},
			Status:    domain.OutboxStatusPending,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		remaining := 0
		for _, r := range all {
			if r.ID == recipient.ID {
				continue
			}
			if r.SigningStatus != domain.SigningStatusSigned {
				remaining++
			}
		}

		if remaining == 0 {
			if err := uc.completeDocument(ctx, tx, doc, recipient, now); err != nil {
				return err
			}
		} else if next := domain.NextRecipient(all, recipient.ID, doc.SigningOrder); next != nil {
			// Let the notification layer wake the next recipient up.
			if err := tx.EnqueueEvent(ctx, &domain.OutboxEvent{
				ID:         uuid.NewString(),
				Type:       domain.EventRecipientTurn,
				DocumentID: doc.ID,
				Payload: map[string]string{
					"recipient_id":    strconv.FormatInt(next.ID, 10),
					"recipient_email": next.Email,
				},
				Status:    domain.OutboxStatusPending,
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}

		recipient.SigningStatus = domain.SigningStatusSigned
		completed = recipient
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func (uc *CompleteDocumentUseCase) completeDocument(
	ctx context.Context,
	tx ports.SigningTx,
	doc *domain.Document,
	lastSigner *domain.Recipient,
	now time.Time,
) error {
	if err := tx.SetDocumentStatus(ctx, doc.ID, domain.DocumentStatusCompleted, &now); err != nil {
		return err
	}
	if err := tx.AppendAuditLog(ctx, &domain.AuditLogEntry{
		Type:       domain.AuditDocumentCompleted,
		DocumentID: doc.ID,
		Actor:      domain.AuditActor{Name: lastSigner.Name, Email: lastSigner.Email},
		CreatedAt:  now,
	}); err != nil {
		return err
	}
	return tx.EnqueueEvent(ctx, &domain.OutboxEvent{
		ID:         uuid.NewString(),
		Type:       domain.EventDocumentCompleted,
		DocumentID: doc.ID,
		Status:     domain.OutboxStatusPending,
		CreatedAt:  now,
	})
}
