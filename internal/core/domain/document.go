package domain

import "time"

type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "DRAFT"
	DocumentStatusPending   DocumentStatus = "PENDING"
	DocumentStatusCompleted DocumentStatus = "COMPLETED"
)

type SigningOrder string

const (
	SigningOrderParallel   SigningOrder = "PARALLEL"
	SigningOrderSequential SigningOrder = "SEQUENTIAL"
)

const (
	DefaultDateFormat = "yyyy-MM-dd hh:mm a"
	DefaultTimezone   = "Etc/UTC"
)

type Document struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Status       DocumentStatus `json:"status"`
	SigningOrder SigningOrder   `json:"signing_order"`
	Meta         DocumentMeta   `json:"meta"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// DocumentMeta carries the per-document signing policy knobs.
type DocumentMeta struct {
	DateFormat             string `json:"date_format"`
	Timezone               string `json:"timezone"`
	TypedSignatureEnabled  bool   `json:"typed_signature_enabled"`
	UploadSignatureEnabled bool   `json:"upload_signature_enabled"`
	DrawSignatureEnabled   bool   `json:"draw_signature_enabled"`
	RedirectURL            string `json:"redirect_url,omitempty"`
}

func (m DocumentMeta) EffectiveDateFormat() string {
	if m.DateFormat == "" {
		return DefaultDateFormat
	}
	return m.DateFormat
}

func (m DocumentMeta) EffectiveTimezone() string {
	if m.Timezone == "" {
		return DefaultTimezone
	}
	return m.Timezone
}
