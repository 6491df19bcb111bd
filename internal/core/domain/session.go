package domain

// SigningSession is everything the signing surface needs to render one
// recipient's view of a document: authoritative state plus the resolved turn
// and successor. Turn eligibility is recomputed on every load because other
// recipients may sign concurrently in their own sessions.
type SigningSession struct {
	Document      Document    `json:"document"`
	Recipient     Recipient   `json:"recipient"`
	Fields        []Field     `json:"fields"`
	AllRecipients []Recipient `json:"all_recipients"`

	IsRecipientsTurn bool       `json:"is_recipients_turn"`
	NextRecipient    *Recipient `json:"next_recipient,omitempty"`

	// AutoSignedFields counts date fields filled in by the auto-sign pass for
	// this load; AutoSignNotice carries its aggregated failure notice, if any.
	AutoSignedFields int    `json:"auto_signed_fields,omitempty"`
	AutoSignNotice   string `json:"auto_sign_notice,omitempty"`
}

// IsFieldRequired reports whether a field must be inserted before its
// recipient can complete signing. Signature-class fields are always
// required; advanced fields only when their metadata says so.
func IsFieldRequired(f Field) bool {
	switch f.Type {
	case FieldTypeText, FieldTypeNumber, FieldTypeRadio, FieldTypeCheckbox, FieldTypeDropdown:
		return f.Meta.Required
	default:
		return true
	}
}

// IsFieldUnsignedAndRequired is the completion blocker predicate.
func IsFieldUnsignedAndRequired(f Field) bool {
	return IsFieldRequired(f) && !f.Inserted && !f.Meta.ReadOnly
}
