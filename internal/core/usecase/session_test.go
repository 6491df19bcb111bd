package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Arctuition/documenso/internal/core/domain"
)

type stubAutoSigner struct {
	signed int
	err    error
	calls  int
}

func (s *stubAutoSigner) AutoSignDateFields(context.Context, string) (int, error) {
	s.calls++
	return s.signed, s.err
}

func TestLoadSessionMarksOpenedOnFirstLoadOnly(t *testing.T) {
	recipient := signerRecipient()
	recipient.ReadStatus = domain.ReadStatusNotOpened
	store := newMemStore(pendingDocument(), []domain.Recipient{recipient}, nil)
	uc := NewLoadSessionUseCase(store, &stubAutoSigner{})
	uc.now = fixedNow

	session, err := uc.LoadSession(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if session.Recipient.ReadStatus != domain.ReadStatusOpened {
		t.Fatal("session recipient should report OPENED")
	}
	if store.recipient(10).ReadStatus != domain.ReadStatusOpened {
		t.Fatal("stored recipient should be OPENED")
	}
	if got := store.auditTypes(); len(got) != 1 || got[0] != domain.AuditDocumentOpened {
		t.Fatalf("expected one DOCUMENT_OPENED audit entry, got %v", got)
	}
	if got := store.eventTypes(); len(got) != 1 || got[0] != domain.EventDocumentOpened {
		t.Fatalf("expected one document.opened event, got %v", got)
	}

	if _, err := uc.LoadSession(context.Background(), "tok-1"); err != nil {
		t.Fatalf("second LoadSession: %v", err)
	}
	if got := store.auditTypes(); len(got) != 1 {
		t.Fatalf("second load must not audit again, got %v", got)
	}
}

func TestLoadSessionAutoSignsDateFields(t *testing.T) {
	recipient := signerRecipient()
	store := newMemStore(pendingDocument(), []domain.Recipient{recipient}, []domain.Field{
		{ID: 100, SecondaryID: "f-100", DocumentID: 1, RecipientID: 10, Type: domain.FieldTypeDate},
		{ID: 101, SecondaryID: "f-101", DocumentID: 1, RecipientID: 10, Type: domain.FieldTypeDate},
		{ID: 102, SecondaryID: "f-102", DocumentID: 1, RecipientID: 10, Type: domain.FieldTypeText},
	})
	signUC := NewSignFieldUseCase(store)
	signUC.now = fixedNow
	uc := NewLoadSessionUseCase(store, NewAutoSignUseCase(store, signUC))
	uc.now = fixedNow

	session, err := uc.LoadSession(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if session.AutoSignedFields != 2 {
		t.Fatalf("expected 2 auto-signed fields, got %d", session.AutoSignedFields)
	}
	if session.AutoSignNotice != "" {
		t.Fatalf("unexpected auto-sign notice %q", session.AutoSignNotice)
	}

	// Fields in the session reflect the post-auto-sign state.
	inserted := 0
	for _, f := range session.Fields {
		if f.Type == domain.FieldTypeDate && f.Inserted {
			inserted++
			want := domain.FormatDocumentDate(fixedNow(), pendingDocument().Meta)
			if f.CustomText != want {
				t.Fatalf("auto-signed date stored %q, want %q", f.CustomText, want)
			}
		}
	}
	if inserted != 2 {
		t.Fatalf("expected both date fields inserted in session, got %d", inserted)
	}
	if store.field(102).Inserted {
		t.Fatal("text field must not be auto-signed")
	}
}

func TestLoadSessionAssistantSkipsAutoSign(t *testing.T) {
	recipient := signerRecipient()
	recipient.Role = domain.RoleAssistant
	store := newMemStore(pendingDocument(), []domain.Recipient{recipient}, nil)
	autoSigner := &stubAutoSigner{}
	uc := NewLoadSessionUseCase(store, autoSigner)

	if _, err := uc.LoadSession(context.Background(), "tok-1"); err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if autoSigner.calls != 0 {
		t.Fatal("assistant sessions must not trigger auto-sign")
	}
}

func TestLoadSessionSurfacesAutoSignNotice(t *testing.T) {
	store := newMemStore(pendingDocument(), []domain.Recipient{signerRecipient()}, nil)
	autoSigner := &stubAutoSigner{signed: 1, err: errors.New("field 101: boom")}
	uc := NewLoadSessionUseCase(store, autoSigner)

	session, err := uc.LoadSession(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("auto-sign failure must not fail the load: %v", err)
	}
	if session.AutoSignedFields != 1 {
		t.Fatalf("expected the successful count to survive, got %d", session.AutoSignedFields)
	}
	if session.AutoSignNotice == "" {
		t.Fatal("expected auto-sign notice")
	}
}

func TestLoadSessionResolvesTurnAndSuccessor(t *testing.T) {
	doc := pendingDocument()
	doc.SigningOrder = domain.SigningOrderSequential
	first := signerRecipient()
	first.SigningOrder = order(1)
	second := domain.Recipient{
		ID: 11, DocumentID: 1, Token: "tok-2", Email: "bob@example.com",
		Role: domain.RoleSigner, SigningStatus: domain.SigningStatusNotSigned,
		ReadStatus: domain.ReadStatusOpened, SigningOrder: order(2),
	}
	store := newMemStore(doc, []domain.Recipient{first, second}, nil)
	uc := NewLoadSessionUseCase(store, &stubAutoSigner{})

	session, err := uc.LoadSession(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if !session.IsRecipientsTurn {
		t.Fatal("first recipient should be eligible")
	}
	if session.NextRecipient == nil || session.NextRecipient.ID != 11 {
		t.Fatalf("expected recipient 11 as successor, got %+v", session.NextRecipient)
	}
	if len(session.AllRecipients) != 2 || session.AllRecipients[0].ID != 10 {
		t.Fatalf("expected sorted recipients, got %+v", session.AllRecipients)
	}

	waiting, err := uc.LoadSession(context.Background(), "tok-2")
	if err != nil {
		t.Fatalf("LoadSession for waiting recipient: %v", err)
	}
	if waiting.IsRecipientsTurn {
		t.Fatal("second recipient should not be eligible yet")
	}
}

func TestLoadSessionUnknownToken(t *testing.T) {
	store := newMemStore(pendingDocument(), []domain.Recipient{signerRecipient()}, nil)
	uc := NewLoadSessionUseCase(store, &stubAutoSigner{})

	_, err := uc.LoadSession(context.Background(), "no-such-token")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
