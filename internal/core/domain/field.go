package domain

type FieldType string

const (
	FieldTypeSignature FieldType = "SIGNATURE"
	FieldTypeInitials  FieldType = "INITIALS"
	FieldTypeName      FieldType = "NAME"
	FieldTypeDate      FieldType = "DATE"
	FieldTypeEmail     FieldType = "EMAIL"
	FieldTypeText      FieldType = "TEXT"
	FieldTypeNumber    FieldType = "NUMBER"
	FieldTypeRadio     FieldType = "RADIO"
	FieldTypeCheckbox  FieldType = "CHECKBOX"
	FieldTypeDropdown  FieldType = "DROPDOWN"
)

// FieldTypes lists every supported kind; validation dispatch is exhaustive over it.
var FieldTypes = []FieldType{
	FieldTypeSignature,
	FieldTypeInitials,
	FieldTypeName,
	FieldTypeDate,
	FieldTypeEmail,
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeRadio,
	FieldTypeCheckbox,
	FieldTypeDropdown,
}

type TextAlign string

const (
	TextAlignLeft   TextAlign = "left"
	TextAlignCenter TextAlign = "center"
	TextAlignRight  TextAlign = "right"
)

// FieldMeta is the per-kind metadata blob. Only the members relevant to the
// field's type are consulted; the rest stay at their zero values.
type FieldMeta struct {
	ReadOnly  bool      `json:"read_only,omitempty"`
	Required  bool      `json:"required,omitempty"`
	TextAlign TextAlign `json:"text_align,omitempty"`

	// TEXT
	CharacterLimit int `json:"character_limit,omitempty"`

	// NUMBER
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`

	// RADIO, CHECKBOX, DROPDOWN
	Values []string `json:"values,omitempty"`
}

type Field struct {
	ID          int64     `json:"id"`
	SecondaryID string    `json:"secondary_id"`
	DocumentID  int64     `json:"document_id"`
	RecipientID int64     `json:"recipient_id"`
	Type        FieldType `json:"type"`
	Inserted    bool      `json:"inserted"`
	CustomText  string    `json:"custom_text,omitempty"`
	Meta        FieldMeta `json:"meta"`

	// Signature is present only for inserted SIGNATURE fields.
	Signature *Signature `json:"signature,omitempty"`
}

// Signature holds either a base64 data-URI image or a typed-text string, never both.
type Signature struct {
	ID             int64  `json:"id"`
	FieldID        int64  `json:"field_id"`
	ImageAsBase64  string `json:"image_as_base64,omitempty"`
	TypedSignature string `json:"typed_signature,omitempty"`
}

func (s *Signature) IsImage() bool {
	return s != nil && s.ImageAsBase64 != ""
}

// HasValue reports whether the field currently stores a committed value.
func (f *Field) HasValue() bool {
	return f.CustomText != "" || f.Signature != nil
}
