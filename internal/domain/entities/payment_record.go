package entities

import (
	"fmt"
	"time"
)

// PaymentStatus is the durable marker the crash-recovery sweep keys on:
// pending means an attempt may still be in flight and can be resumed,
// authorized means the processor confirmed a hold, captured means funds
// moved.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusCaptured   PaymentStatus = "captured"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusAuthorized, PaymentStatusFailed},
	PaymentStatusAuthorized: {PaymentStatusCaptured, PaymentStatusFailed, PaymentStatusRefunded},
	PaymentStatusCaptured:   {PaymentStatusRefunded},
	PaymentStatusFailed:     {},
	PaymentStatusRefunded:   {},
}

func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, t := range paymentTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// PaymentMethod is the instrument family forwarded to the processor.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPix    PaymentMethod = "pix"
	PaymentMethodWallet PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodPix, PaymentMethodWallet:
		return true
	}
	return false
}

// PaymentRecord is one logical charge attempt against a job or one of its
// change orders (ChangeOrderID empty covers the base job).
//
// PlatformFeeCents + PayeeCents always equals AmountCents. IdempotencyKey
// uniquely identifies the logical attempt; a replay with the same key must
// return this record instead of creating a second hold.
type PaymentRecord struct {
	ID               string        `json:"id"`
	JobID            string        `json:"job_id"`
	ChangeOrderID    string        `json:"change_order_id,omitempty"`
	AmountCents      int64         `json:"amount_cents"`
	PlatformFeeCents int64         `json:"platform_fee_cents"`
	PayeeCents       int64         `json:"payee_cents"`
	Method           PaymentMethod `json:"method"`
	Status           PaymentStatus `json:"status"`
	AttemptCount     int           `json:"attempt_count"`
	IdempotencyKey   string        `json:"idempotency_key"`
	ProcessorRef     string        `json:"processor_ref,omitempty"`
	FailureReason    string        `json:"failure_reason,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	Version          int64         `json:"version"`
}

// BuildIdempotencyKey derives the key for one logical authorize attempt.
// changeOrderID empty means the base-job payment.
func BuildIdempotencyKey(jobID, changeOrderID string, attemptSeq int) string {
	scope := changeOrderID
	if scope == "" {
		scope = "base"
	}
	return fmt.Sprintf("%s:%s:%d", jobID, scope, attemptSeq)
}
