package entities

import "testing"

func TestChangeOrderStatusTransitions(t *testing.T) {
	all := []ChangeOrderStatus{
		ChangeOrderStatusPending, ChangeOrderStatusApproved, ChangeOrderStatusRejected,
		ChangeOrderStatusEscrow, ChangeOrderStatusPaid, ChangeOrderStatusExpired,
	}

	allowed := map[ChangeOrderStatus][]ChangeOrderStatus{
		ChangeOrderStatusPending:  {ChangeOrderStatusApproved, ChangeOrderStatusRejected, ChangeOrderStatusExpired},
		ChangeOrderStatusApproved: {ChangeOrderStatusEscrow, ChangeOrderStatusExpired},
		ChangeOrderStatusEscrow:   {ChangeOrderStatusPaid, ChangeOrderStatusExpired},
	}

	for _, from := range all {
		want := map[ChangeOrderStatus]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range all {
			if got := from.CanTransitionTo(to); got != want[to] {
				t.Fatalf("%s -> %s: got %v, want %v", from, to, got, want[to])
			}
		}
	}
}

func TestChangeOrderStatusTerminal(t *testing.T) {
	terminal := []ChangeOrderStatus{ChangeOrderStatusPaid, ChangeOrderStatusRejected, ChangeOrderStatusExpired}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Fatalf("%s must be terminal", s)
		}
	}
	for _, s := range []ChangeOrderStatus{ChangeOrderStatusPending, ChangeOrderStatusApproved, ChangeOrderStatusEscrow} {
		if s.Terminal() {
			t.Fatalf("%s must not be terminal", s)
		}
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	if !PaymentStatusPending.CanTransitionTo(PaymentStatusAuthorized) {
		t.Fatal("pending -> authorized must be allowed")
	}
	if !PaymentStatusAuthorized.CanTransitionTo(PaymentStatusCaptured) {
		t.Fatal("authorized -> captured must be allowed")
	}
	if !PaymentStatusAuthorized.CanTransitionTo(PaymentStatusRefunded) {
		t.Fatal("authorized -> refunded (hold release) must be allowed")
	}
	if PaymentStatusCaptured.CanTransitionTo(PaymentStatusAuthorized) {
		t.Fatal("captured -> authorized must be rejected")
	}
	if PaymentStatusFailed.CanTransitionTo(PaymentStatusAuthorized) {
		t.Fatal("failed is terminal")
	}
	if PaymentStatusPending.CanTransitionTo(PaymentStatusCaptured) {
		t.Fatal("pending -> captured must go through authorized")
	}
}

func TestBuildIdempotencyKey(t *testing.T) {
	if got := BuildIdempotencyKey("job-1", "", 1); got != "job-1:base:1" {
		t.Fatalf("unexpected base key: %s", got)
	}
	if got := BuildIdempotencyKey("job-1", "co-9", 2); got != "job-1:co-9:2" {
		t.Fatalf("unexpected change-order key: %s", got)
	}
}
