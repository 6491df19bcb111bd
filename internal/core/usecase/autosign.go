package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Arctuition/documenso/internal/core/domain"
	"github.com/Arctuition/documenso/internal/core/ports"
)

// AutoSignUseCase fills in date fields that need no manual input once it is
// the recipient's turn. Each field is signed through the regular mutation
// path in its own transaction; the fan-out is best-effort and fields that
// succeed stay committed even when siblings fail.
type AutoSignUseCase struct {
	store  ports.SigningStore
	signer ports.FieldSigner
}

func NewAutoSignUseCase(store ports.SigningStore, signer ports.FieldSigner) *AutoSignUseCase {
	return &AutoSignUseCase{store: store, signer: signer}
}

func (uc *AutoSignUseCase) AutoSignDateFields(ctx context.Context, token string) (int, error) {
	recipient, doc, err := uc.store.RecipientByToken(ctx, token)
	if err != nil {
		return 0, err
	}
	if doc.Status != domain.DocumentStatusPending {
		return 0, nil
	}
	if recipient.SigningStatus == domain.SigningStatusSigned {
		return 0, nil
	}

	all, err := uc.store.ListRecipients(ctx, doc.ID)
	if err != nil {
		return 0, err
	}
	if !domain.IsRecipientsTurn(*recipient, all, doc.SigningOrder) {
		return 0, nil
	}

	fields, err := uc.store.ListRecipientFields(ctx, recipient.ID)
	if err != nil {
		return 0, err
	}

	var dateFields []domain.Field
	for _, f := range fields {
		if f.Type == domain.FieldTypeDate && !f.Inserted && !f.Meta.ReadOnly {
			dateFields = append(dateFields, f)
		}
	}
	if len(dateFields) == 0 {
		return 0, nil
	}

	// The fields are disjoint rows, so the inserts run concurrently.
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		signed  int
		signErr []error
	)
	for _, field := range dateFields {
		wg.Add(1)
		go func(field domain.Field) {
			defer wg.Done()
			_, err := uc.signer.SignField(ctx, token, field.ID, doc.Meta.EffectiveDateFormat(), false)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				signErr = append(signErr, fmt.Errorf("field %d: %w", field.ID, err))
				return
			}
			signed++
		}(field)
	}
	wg.Wait()

	if len(signErr) > 0 {
		return signed, fmt.Errorf("auto-sign date fields: %w", errors.Join(signErr...))
	}
	return signed, nil
}
