package request

import (
	"mechmarket/internal/domain/entities"
	"mechmarket/internal/usecase"
)

// AuthorizePaymentRequest places an escrow hold for a job's agreed price or
// an approved change order. AttemptSeq distinguishes deliberate retries after
// a failed attempt; replaying the same sequence returns the existing record.
type AuthorizePaymentRequest struct {
	JobID         string `json:"job_id" binding:"required"`
	ChangeOrderID string `json:"change_order_id"`
	Method        string `json:"method" binding:"required"`
	AttemptSeq    int    `json:"attempt_seq"`
}

func (r AuthorizePaymentRequest) ToInput() usecase.AuthorizeInput {
	seq := r.AttemptSeq
	if seq <= 0 {
		seq = 1
	}
	return usecase.AuthorizeInput{
		JobID:         r.JobID,
		ChangeOrderID: r.ChangeOrderID,
		Method:        entities.PaymentMethod(r.Method),
		AttemptSeq:    seq,
	}
}

// RefundPaymentRequest releases or refunds held funds. A nil amount means
// the full amount.
type RefundPaymentRequest struct {
	AmountCents *int64 `json:"amount_cents"`
}

// ProcessorWebhookRequest is the asynchronous hold resolution callback from
// the payment processor.
type ProcessorWebhookRequest struct {
	PaymentID    string `json:"payment_id" binding:"required"`
	Status       string `json:"status" binding:"required"`
	ProcessorRef string `json:"processor_ref"`
	Reason       string `json:"reason"`
}
