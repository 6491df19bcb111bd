package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Arctuition/documenso/internal/core/domain"
	"github.com/Arctuition/documenso/internal/core/ports"
)

// memStore is an in-memory ports.SigningStore for use case tests. A single
// mutex serializes transactions, mirroring the row locks the real store
// takes.
type memStore struct {
	mu sync.Mutex

	doc        *domain.Document
	recipients map[int64]*domain.Recipient
	fields     map[int64]*domain.Field
	audits     []domain.AuditLogEntry
	events     []domain.OutboxEvent
}

func newMemStore(doc domain.Document, recipients []domain.Recipient, fields []domain.Field) *memStore {
	s := &memStore{
		doc:        &doc,
		recipients: make(map[int64]*domain.Recipient),
		fields:     make(map[int64]*domain.Field),
	}
	for i := range recipients {
		r := recipients[i]
		s.recipients[r.ID] = &r
	}
	for i := range fields {
		f := fields[i]
		s.fields[f.ID] = &f
	}
	return s
}

func (s *memStore) InTransaction(ctx context.Context, fn func(ctx context.Context, tx ports.SigningTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, (*memTx)(s))
}

func (s *memStore) RecipientByToken(ctx context.Context, token string) (*domain.Recipient, *domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memTx)(s).RecipientByToken(ctx, token)
}

func (s *memStore) DocumentByID(_ context.Context, documentID int64) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.ID != documentID {
		return nil, domain.WrapError(domain.ErrNotFound, "document by id", fmt.Errorf("document %d", documentID))
	}
	doc := *s.doc
	return &doc, nil
}

func (s *memStore) ListRecipients(ctx context.Context, documentID int64) ([]domain.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memTx)(s).ListRecipients(ctx, documentID)
}

func (s *memStore) ListRecipientFields(ctx context.Context, recipientID int64) ([]domain.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memTx)(s).ListRecipientFields(ctx, recipientID)
}

func (s *memStore) ListAuditLogs(_ context.Context, documentID int64) ([]domain.AuditLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AuditLogEntry
	for _, entry := range s.audits {
		if entry.DocumentID == documentID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *memStore) auditTypes() []domain.AuditLogType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]domain.AuditLogType, len(s.audits))
	for i, entry := range s.audits {
		types[i] = entry.Type
	}
	return types
}

func (s *memStore) eventTypes() []domain.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]domain.EventType, len(s.events))
	for i, event := range s.events {
		types[i] = event.Type
	}
	return types
}

func (s *memStore) field(id int64) domain.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.fields[id]
}

func (s *memStore) recipient(id int64) domain.Recipient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.recipients[id]
}

func (s *memStore) document() domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.doc
}

// memTx shares the store's state; the store holds its mutex for the duration
// of the transaction.
type memTx memStore

func (t *memTx) FieldForRecipient(_ context.Context, fieldID int64, token string) (*domain.Field, *domain.Recipient, *domain.Document, error) {
	recipient := t.recipientByTokenLocked(token)
	if recipient == nil {
		return nil, nil, nil, domain.WrapError(domain.ErrNotFound, "field for recipient", fmt.Errorf("token %q", token))
	}
	field, ok := t.fields[fieldID]
	if !ok || field.RecipientID != recipient.ID {
		return nil, nil, nil, domain.WrapError(domain.ErrNotFound, "field for recipient", fmt.Errorf("field %d", fieldID))
	}
	f, r, d := *field, *recipient, *t.doc
	return &f, &r, &d, nil
}

func (t *memTx) RecipientByToken(_ context.Context, token string) (*domain.Recipient, *domain.Document, error) {
	recipient := t.recipientByTokenLocked(token)
	if recipient == nil {
		return nil, nil, domain.WrapError(domain.ErrNotFound, "recipient by token", fmt.Errorf("token %q", token))
	}
	r, d := *recipient, *t.doc
	return &r, &d, nil
}

func (t *memTx) recipientByTokenLocked(token string) *domain.Recipient {
	for _, r := range t.recipients {
		if r.Token == token {
			return r
		}
	}
	return nil
}

func (t *memTx) ListRecipients(_ context.Context, documentID int64) ([]domain.Recipient, error) {
	var out []domain.Recipient
	for _, r := range t.recipients {
		if r.DocumentID == documentID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) ListRecipientFields(_ context.Context, recipientID int64) ([]domain.Field, error) {
	var out []domain.Field
	for _, f := range t.fields {
		if f.RecipientID == recipientID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) SetFieldValue(_ context.Context, fieldID int64, inserted bool, customText string) error {
	field, ok := t.fields[fieldID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "set field value", fmt.Errorf("field %d", fieldID))
	}
	field.Inserted = inserted
	field.CustomText = customText
	return nil
}

func (t *memTx) ReplaceSignature(_ context.Context, fieldID int64, imageAsBase64, typedSignature string) error {
	field, ok := t.fields[fieldID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "replace signature", fmt.Errorf("field %d", fieldID))
	}
	field.Signature = &domain.Signature{
		FieldID:        fieldID,
		ImageAsBase64:  imageAsBase64,
		TypedSignature: typedSignature,
	}
	return nil
}

func (t *memTx) DeleteSignature(_ context.Context, fieldID int64) error {
	if field, ok := t.fields[fieldID]; ok {
		field.Signature = nil
	}
	return nil
}

func (t *memTx) SetRecipientReadStatus(_ context.Context, recipientID int64, status domain.ReadStatus) error {
	recipient, ok := t.recipients[recipientID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "set read status", fmt.Errorf("recipient %d", recipientID))
	}
	recipient.ReadStatus = status
	return nil
}

func (t *memTx) SetRecipientSigningStatus(_ context.Context, recipientID int64, status domain.SigningStatus) error {
	recipient, ok := t.recipients[recipientID]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "set signing status", fmt.Errorf("recipient %d", recipientID))
	}
	recipient.SigningStatus = status
	return nil
}

func (t *memTx) SetDocumentStatus(_ context.Context, documentID int64, status domain.DocumentStatus, completedAt *time.Time) error {
	if t.doc.ID != documentID {
		return domain.WrapError(domain.ErrNotFound, "set document status", fmt.Errorf("document %d", documentID))
	}
	t.doc.Status = status
	t.doc.CompletedAt = completedAt
	return nil
}

func (t *memTx) AppendAuditLog(_ context.Context, entry *domain.AuditLogEntry) error {
	entry.ID = int64(len(t.audits) + 1)
	t.audits = append(t.audits, *entry)
	return nil
}

func (t *memTx) EnqueueEvent(_ context.Context, event *domain.OutboxEvent) error {
	t.events = append(t.events, *event)
	return nil
}
