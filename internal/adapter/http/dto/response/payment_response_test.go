package response

import (
	"testing"
	"time"

	"mechmarket/internal/domain/entities"
)

func TestFromPayment(t *testing.T) {
	now := time.Now().UTC()

	p := entities.PaymentRecord{
		ID:               "pay-1",
		JobID:            "job-1",
		ChangeOrderID:    "co-1",
		AmountCents:      15000,
		PlatformFeeCents: 1500,
		PayeeCents:       13500,
		Method:           entities.PaymentMethodCard,
		Status:           entities.PaymentStatusAuthorized,
		AttemptCount:     2,
		IdempotencyKey:   "job-1:co-1:1",
		ProcessorRef:     "mp-123",
		CreatedAt:        now,
		Version:          3,
	}

	res := FromPayment(p)
	if res.ID != "pay-1" || res.JobID != "job-1" || res.ChangeOrderID != "co-1" {
		t.Fatalf("unexpected ids: %+v", res)
	}
	if res.AmountCents != 15000 || res.PlatformFeeCents != 1500 || res.PayeeCents != 13500 {
		t.Fatalf("unexpected amounts: %+v", res)
	}
	if res.Method != "card" || res.Status != "authorized" || res.AttemptCount != 2 {
		t.Fatalf("unexpected fields: %+v", res)
	}
	if !res.CreatedAt.Equal(now) || res.Version != 3 {
		t.Fatalf("unexpected metadata: %+v", res)
	}
}

func TestFromPayment_DoesNotExposeProcessorRef(t *testing.T) {
	res := FromPayments([]entities.PaymentRecord{{ID: "pay-1", ProcessorRef: "mp-9"}})
	if len(res) != 1 {
		t.Fatalf("expected one response, got %d", len(res))
	}
	// PaymentResponse has no processor_ref field; this test documents that
	// the mapping drops it on purpose.
	if res[0].ID != "pay-1" {
		t.Fatalf("unexpected response: %+v", res[0])
	}
}
