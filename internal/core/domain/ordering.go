package domain

import "sort"

// SortRecipients orders recipients by signing order ascending with nil orders
// sorting after every non-nil one, ties broken by id ascending. The input
// slice is not modified.
func SortRecipients(recipients []Recipient) []Recipient {
	sorted := make([]Recipient, len(recipients))
	copy(sorted, recipients)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.SigningOrder == nil && b.SigningOrder == nil:
			return a.ID < b.ID
		case a.SigningOrder == nil:
			return false
		case b.SigningOrder == nil:
			return true
		case *a.SigningOrder == *b.SigningOrder:
			return a.ID < b.ID
		default:
			return *a.SigningOrder < *b.SigningOrder
		}
	})
	return sorted
}

// NextRecipient returns the recipient immediately after the current one in
// the resolved signing sequence, or nil when the mode is not sequential, the
// current recipient is last, or it is not part of the set.
func NextRecipient(recipients []Recipient, currentID int64, mode SigningOrder) *Recipient {
	if mode != SigningOrderSequential {
		return nil
	}

	sorted := SortRecipients(recipients)
	for i, r := range sorted {
		if r.ID == currentID {
			if i+1 < len(sorted) {
				next := sorted[i+1]
				return &next
			}
			return nil
		}
	}
	return nil
}

// IsRecipientsTurn reports whether the recipient may interact with their
// fields right now. Under PARALLEL mode every recipient is always eligible;
// under SEQUENTIAL mode every recipient at a strictly earlier resolved
// position must have signed first.
func IsRecipientsTurn(recipient Recipient, all []Recipient, mode SigningOrder) bool {
	if mode != SigningOrderSequential {
		return true
	}

	for _, r := range SortRecipients(all) {
		if r.ID == recipient.ID {
			return true
		}
		if r.SigningStatus != SigningStatusSigned {
			return false
		}
	}
	// Not part of the set: nobody's turn.
	return false
}
