package excel

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Arctuition/documenso/internal/core/domain"
)

const sheetName = "Audit Trail"

// Exporter renders a document's audit trail as an XLSX workbook, one row per
// audit entry in chronological order.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) WriteReport(doc *domain.Document, entries []domain.AuditLogEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	header := []any{"Time (UTC)", "Event", "Actor", "Email", "Details"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	titleRow := []any{fmt.Sprintf("Document: %s (id %d, status %s)", doc.Title, doc.ID, doc.Status)}
	if err := f.SetSheetRow(sheetName, "G1", &titleRow); err != nil {
		return nil, fmt.Errorf("write document title: %w", err)
	}

	for i, entry := range entries {
		cell := fmt.Sprintf("A%d", i+2)
		row := []any{
			entry.CreatedAt.UTC().Format(time.RFC3339),
			string(entry.Type),
			entry.Actor.Name,
			entry.Actor.Email,
			flattenData(entry.Data),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write audit row %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func flattenData(data map[string]string) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, data[k]))
	}
	return strings.Join(parts, "; ")
}
