package domain

import "testing"

func order(n int) *int {
	return &n
}

func TestSortRecipientsNilOrdersLast(t *testing.T) {
	recipients := []Recipient{
		{ID: 1},
		{ID: 2, SigningOrder: order(2)},
		{ID: 3, SigningOrder: order(1)},
		{ID: 4},
	}

	sorted := SortRecipients(recipients)

	wantIDs := []int64{3, 2, 1, 4}
	for i, want := range wantIDs {
		if sorted[i].ID != want {
			t.Fatalf("position %d: got id %d, want %d", i, sorted[i].ID, want)
		}
	}
	if recipients[0].ID != 1 {
		t.Fatal("input slice must not be reordered")
	}
}

func TestSortRecipientsTiesBreakByID(t *testing.T) {
	recipients := []Recipient{
		{ID: 9, SigningOrder: order(1)},
		{ID: 3, SigningOrder: order(1)},
		{ID: 5, SigningOrder: order(1)},
	}

	sorted := SortRecipients(recipients)

	wantIDs := []int64{3, 5, 9}
	for i, want := range wantIDs {
		if sorted[i].ID != want {
			t.Fatalf("position %d: got id %d, want %d", i, sorted[i].ID, want)
		}
	}
}

func TestIsRecipientsTurnParallelAlwaysEligible(t *testing.T) {
	all := []Recipient{
		{ID: 1, SigningOrder: order(1), SigningStatus: SigningStatusNotSigned},
		{ID: 2, SigningOrder: order(2), SigningStatus: SigningStatusNotSigned},
	}

	if !IsRecipientsTurn(all[1], all, SigningOrderParallel) {
		t.Fatal("parallel mode must not gate on earlier recipients")
	}
}

func TestIsRecipientsTurnSequential(t *testing.T) {
	all := []Recipient{
		{ID: 1, SigningOrder: order(1), SigningStatus: SigningStatusNotSigned},
		{ID: 2, SigningOrder: order(2), SigningStatus: SigningStatusNotSigned},
		{ID: 3, SigningOrder: order(3), SigningStatus: SigningStatusNotSigned},
	}

	if !IsRecipientsTurn(all[0], all, SigningOrderSequential) {
		t.Fatal("first recipient should be eligible")
	}
	if IsRecipientsTurn(all[1], all, SigningOrderSequential) {
		t.Fatal("second recipient should wait for the first")
	}

	all[0].SigningStatus = SigningStatusSigned
	if !IsRecipientsTurn(all[1], all, SigningOrderSequential) {
		t.Fatal("second recipient should be eligible once the first signed")
	}
	if IsRecipientsTurn(all[2], all, SigningOrderSequential) {
		t.Fatal("third recipient should still wait")
	}
}

func TestIsRecipientsTurnSequentialWithNilOrders(t *testing.T) {
	// Scenario: explicit orders go first, nil orders queue behind them by id.
	all := []Recipient{
		{ID: 7, SigningStatus: SigningStatusNotSigned},
		{ID: 4, SigningOrder: order(1), SigningStatus: SigningStatusSigned},
		{ID: 5, SigningStatus: SigningStatusNotSigned},
	}

	if !IsRecipientsTurn(all[2], all, SigningOrderSequential) {
		t.Fatal("recipient 5 follows the signed ordered recipient")
	}
	if IsRecipientsTurn(all[0], all, SigningOrderSequential) {
		t.Fatal("recipient 7 queues behind recipient 5")
	}
}

func TestIsRecipientsTurnUnknownRecipient(t *testing.T) {
	all := []Recipient{
		{ID: 1, SigningOrder: order(1), SigningStatus: SigningStatusSigned},
	}
	outsider := Recipient{ID: 99}

	if IsRecipientsTurn(outsider, all, SigningOrderSequential) {
		t.Fatal("a recipient outside the set is never eligible")
	}
}

func TestNextRecipient(t *testing.T) {
	all := []Recipient{
		{ID: 1, SigningOrder: order(1)},
		{ID: 2, SigningOrder: order(2)},
		{ID: 3},
	}

	if next := NextRecipient(all, 1, SigningOrderParallel); next != nil {
		t.Fatalf("parallel mode has no successor, got %d", next.ID)
	}

	next := NextRecipient(all, 1, SigningOrderSequential)
	if next == nil || next.ID != 2 {
		t.Fatalf("expected recipient 2 after 1, got %+v", next)
	}

	next = NextRecipient(all, 2, SigningOrderSequential)
	if next == nil || next.ID != 3 {
		t.Fatalf("expected nil-order recipient 3 after 2, got %+v", next)
	}

	if next := NextRecipient(all, 3, SigningOrderSequential); next != nil {
		t.Fatalf("last recipient has no successor, got %d", next.ID)
	}
	if next := NextRecipient(all, 42, SigningOrderSequential); next != nil {
		t.Fatalf("unknown recipient has no successor, got %d", next.ID)
	}
}
