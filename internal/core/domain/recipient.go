package domain

type RecipientRole string

const (
	RoleSigner    RecipientRole = "SIGNER"
	RoleApprover  RecipientRole = "APPROVER"
	RoleViewer    RecipientRole = "VIEWER"
	RoleAssistant RecipientRole = "ASSISTANT"
)

type SigningStatus string

const (
	SigningStatusNotSigned SigningStatus = "NOT_SIGNED"
	SigningStatusSigned    SigningStatus = "SIGNED"
)

type ReadStatus string

const (
	ReadStatusNotOpened ReadStatus = "NOT_OPENED"
	ReadStatusOpened    ReadStatus = "OPENED"
)

type Recipient struct {
	ID            int64         `json:"id"`
	DocumentID    int64         `json:"document_id"`
	Token         string        `json:"token"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Role          RecipientRole `json:"role"`
	SigningStatus SigningStatus `json:"signing_status"`
	ReadStatus    ReadStatus    `json:"read_status"`
	// SigningOrder is only consulted under SEQUENTIAL mode; nil sorts last.
	SigningOrder *int   `json:"signing_order,omitempty"`
	RedirectURL  string `json:"redirect_url,omitempty"`
}
