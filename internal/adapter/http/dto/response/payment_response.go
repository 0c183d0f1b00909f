package response

import (
	"time"

	"mechmarket/internal/domain/entities"
)

// PaymentResponse never exposes the processor reference; that stays between
// the service and the processor.
type PaymentResponse struct {
	ID               string    `json:"id"`
	JobID            string    `json:"job_id"`
	ChangeOrderID    string    `json:"change_order_id,omitempty"`
	AmountCents      int64     `json:"amount_cents"`
	PlatformFeeCents int64     `json:"platform_fee_cents"`
	PayeeCents       int64     `json:"payee_cents"`
	Method           string    `json:"method"`
	Status           string    `json:"status"`
	AttemptCount     int       `json:"attempt_count"`
	FailureReason    string    `json:"failure_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Version          int64     `json:"version"`
}

func FromPayment(p entities.PaymentRecord) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		JobID:            p.JobID,
		ChangeOrderID:    p.ChangeOrderID,
		AmountCents:      p.AmountCents,
		PlatformFeeCents: p.PlatformFeeCents,
		PayeeCents:       p.PayeeCents,
		Method:           string(p.Method),
		Status:           string(p.Status),
		AttemptCount:     p.AttemptCount,
		FailureReason:    p.FailureReason,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Version:          p.Version,
	}
}

func FromPayments(payments []entities.PaymentRecord) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, FromPayment(p))
	}
	return out
}
