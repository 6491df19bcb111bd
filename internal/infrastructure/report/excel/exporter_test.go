package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Arctuition/documenso/internal/core/domain"
)

func TestWriteReportProducesWorkbook(t *testing.T) {
	doc := &domain.Document{ID: 1, Title: "NDA", Status: domain.DocumentStatusCompleted}
	entries := []domain.AuditLogEntry{
		{
			Type:      domain.AuditDocumentOpened,
			Actor:     domain.AuditActor{Name: "Alice", Email: "alice@example.com"},
			CreatedAt: time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC),
			Data:      map[string]string{"recipient_id": "10"},
		},
		{
			Type:      domain.AuditFieldInserted,
			Actor:     domain.AuditActor{Name: "Alice", Email: "alice@example.com"},
			CreatedAt: time.Date(2026, time.March, 9, 12, 1, 0, 0, time.UTC),
			Data:      map[string]string{"field": "SIGNATURE", "field_id": "f-100"},
		},
	}

	report, err := NewExporter().WriteReport(doc, entries)
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(report))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 entries, got %d rows", len(rows))
	}
	if rows[0][0] != "Time (UTC)" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "DOCUMENT_OPENED" || rows[2][1] != "DOCUMENT_FIELD_INSERTED" {
		t.Fatalf("entries out of order: %v / %v", rows[1], rows[2])
	}
	if rows[2][4] != "field=SIGNATURE; field_id=f-100" {
		t.Fatalf("data not flattened deterministically: %q", rows[2][4])
	}
}

func TestFlattenDataSortsKeys(t *testing.T) {
	got := flattenData(map[string]string{"b": "2", "a": "1", "c": "3"})
	if got != "a=1; b=2; c=3" {
		t.Fatalf("got %q", got)
	}
	if flattenData(nil) != "" {
		t.Fatal("nil data should flatten to empty string")
	}
}
