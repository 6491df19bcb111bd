package usecase

import (
	"context"
	"testing"

	"github.com/Arctuition/documenso/internal/core/domain"
)

type captureWriter struct {
	doc     *domain.Document
	entries []domain.AuditLogEntry
}

func (w *captureWriter) WriteReport(doc *domain.Document, entries []domain.AuditLogEntry) ([]byte, error) {
	w.doc = doc
	w.entries = entries
	return []byte("report"), nil
}

func TestExportAuditReportPassesTrailToWriter(t *testing.T) {
	store := newMemStore(pendingDocument(), []domain.Recipient{signerRecipient()}, []domain.Field{
		{ID: 100, SecondaryID: "f-100", DocumentID: 1, RecipientID: 10, Type: domain.FieldTypeText},
	})
	signUC := NewSignFieldUseCase(store)
	signUC.now = fixedNow
	if _, err := signUC.SignField(context.Background(), "tok-1", 100, "hello", false); err != nil {
		t.Fatalf("seed sign: %v", err)
	}

	writer := &captureWriter{}
	uc := NewAuditReportUseCase(store, writer)

	report, err := uc.ExportAuditReport(context.Background(), 1)
	if err != nil {
		t.Fatalf("ExportAuditReport: %v", err)
	}
	if string(report) != "report" {
		t.Fatalf("unexpected report bytes %q", report)
	}
	if writer.doc == nil || writer.doc.ID != 1 {
		t.Fatalf("writer received wrong document: %+v", writer.doc)
	}
	if len(writer.entries) != 1 || writer.entries[0].Type != domain.AuditFieldInserted {
		t.Fatalf("writer received wrong trail: %+v", writer.entries)
	}
}

func TestExportAuditReportUnknownDocument(t *testing.T) {
	store := newMemStore(pendingDocument(), nil, nil)
	uc := NewAuditReportUseCase(store, &captureWriter{})

	_, err := uc.ExportAuditReport(context.Background(), 42)
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
