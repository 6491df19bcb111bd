package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Arctuition/documenso/internal/core/domain"
	"github.com/Arctuition/documenso/internal/core/ports"
)

// LoadSessionUseCase assembles a recipient's view of a document. The first
// load flips the recipient's read status and records the document as opened;
// every load re-evaluates turn eligibility and runs the auto-sign pass.
type LoadSessionUseCase struct {
	store      ports.SigningStore
	autoSigner ports.AutoSigner
	now        func() time.Time
}

func NewLoadSessionUseCase(store ports.SigningStore, autoSigner ports.AutoSigner) *LoadSessionUseCase {
	return &LoadSessionUseCase{
		store:      store,
		autoSigner: autoSigner,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (uc *LoadSessionUseCase) LoadSession(ctx context.Context, token string) (*domain.SigningSession, error) {
	recipient, doc, err := uc.store.RecipientByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if recipient.ReadStatus == domain.ReadStatusNotOpened {
		if err := uc.markOpened(ctx, token); err != nil {
			return nil, err
		}
		recipient.ReadStatus = domain.ReadStatusOpened
	}

	session := &domain.SigningSession{
		Document:  *doc,
		Recipient: *recipient,
	}

	if recipient.Role != domain.RoleAssistant && doc.Status == domain.DocumentStatusPending {
		signed, err := uc.autoSigner.AutoSignDateFields(ctx, token)
		if err != nil {
			// Best-effort by design: surface the aggregate notice, keep the
			// fields that did commit.
			session.AutoSignNotice = err.Error()
		}
		session.AutoSignedFields = signed
	}

	all, err := uc.store.ListRecipients(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	fields, err := uc.store.ListRecipientFields(ctx, recipient.ID)
	if err != nil {
		return nil, err
	}

	session.AllRecipients = domain.SortRecipients(all)
	session.Fields = fields
	session.IsRecipientsTurn = domain.IsRecipientsTurn(*recipient, all, doc.SigningOrder)
	session.NextRecipient = domain.NextRecipient(all, recipient.ID, doc.SigningOrder)
	return session, nil
}

// markOpened transitions the recipient to OPENED with the audit entry and
// the outbox notification in one transaction.
func (uc *LoadSessionUseCase) markOpened(ctx context.Context, token string) error {
	return uc.store.InTransaction(ctx, func(ctx context.Context, tx ports.SigningTx) error {
		recipient, doc, err := tx.RecipientByToken(ctx, token)
		if err != nil {
			return err
		}
		if recipient.ReadStatus != domain.ReadStatusNotOpened {
			// Another session got here first.
			return nil
		}

		if err := tx.SetRecipientReadStatus(ctx, recipient.ID, domain.ReadStatusOpened); err != nil {
			return err
		}

		now := uc.now()
		if err := tx.AppendAuditLog(ctx, &domain.AuditLogEntry{
			Type:       domain.AuditDocumentOpened,
			DocumentID: doc.ID,
			Actor:      domain.AuditActor{Name: recipient.Name, Email: recipient.Email},
			Data: map[string]string{
				"recipient_id":    strconv.FormatInt(recipient.ID, 10),
				"recipient_email": recipient.Email,
				"recipient_role":  string(recipient.Role),
			},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		return tx.EnqueueEvent(ctx, &domain.OutboxEvent{
			ID:         uuid.NewString(),
			Type:       domain.EventDocumentOpened,
			DocumentID: doc.ID,
			Payload: map[string]string{
				"recipient_id":    strconv.FormatInt(recipient.ID, 10),
				"recipient_email": recipient.Email,
			},
			Status:    domain.OutboxStatusPending,
			CreatedAt: now,
		})
	})
}
