package usecase

import (
	"context"
	"fmt"

	"github.com/Arctuition/documenso/internal/core/ports"
)

// AuditReportUseCase exports a document's audit trail through a report
// writer.
type AuditReportUseCase struct {
	store  ports.SigningStore
	writer ports.AuditReportWriter
}

func NewAuditReportUseCase(store ports.SigningStore, writer ports.AuditReportWriter) *AuditReportUseCase {
	return &AuditReportUseCase{store: store, writer: writer}
}

func (uc *AuditReportUseCase) ExportAuditReport(ctx context.Context, documentID int64) ([]byte, error) {
	doc, err := uc.store.DocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	entries, err := uc.store.ListAuditLogs(ctx, documentID)
	if err != nil {
		return nil, err
	}
	report, err := uc.writer.WriteReport(doc, entries)
	if err != nil {
		return nil, fmt.Errorf("write audit report: %w", err)
	}
	return report, nil
}
