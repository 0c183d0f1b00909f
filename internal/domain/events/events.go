// Package events defines the envelope and payloads the core publishes.
// Consumers subscribe only; they never mutate core state through the bus.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics. Routing keys on the broker side match these verbatim, so
// subscribers can bind patterns like "payment.*".
const (
	TopicJobStatusChanged = "job.status_changed"
	TopicJobExpiring      = "job.expiring"
	TopicJobExpired       = "job.expired"

	TopicBidSubmitted = "bid.submitted"
	TopicBidAccepted  = "bid.accepted"
	TopicBidRejected  = "bid.rejected"
	TopicBidExpired   = "bid.expired"

	TopicChangeOrderCreated  = "change_order.created"
	TopicChangeOrderApproved = "change_order.approved"
	TopicChangeOrderRejected = "change_order.rejected"
	TopicChangeOrderEscrow   = "change_order.escrow"
	TopicChangeOrderPaid     = "change_order.paid"
	TopicChangeOrderExpiring = "change_order.expiring"
	TopicChangeOrderExpired  = "change_order.expired"

	TopicPaymentAuthorized = "payment.authorized"
	TopicPaymentCaptured   = "payment.captured"
	TopicPaymentFailed     = "payment.failed"
	TopicPaymentRefunded   = "payment.refunded"
)

// Event is the envelope every topic shares. Delivery is fire-and-forget;
// ordering is only guaranteed within a single AggregateID's stream.
type Event struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	AggregateID string    `json:"aggregate_id"`
	Actor       string    `json:"actor"`
	OccurredAt  time.Time `json:"occurred_at"`
	Payload     any       `json:"payload,omitempty"`
}

func New(topic, aggregateID, actor string, payload any) Event {
	return Event{
		ID:          uuid.NewString(),
		Topic:       topic,
		AggregateID: aggregateID,
		Actor:       actor,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
}

// StatusChanged is the payload for every *.status style topic: old and new
// state plus the aggregate the change belongs to.
type StatusChanged struct {
	JobID         string `json:"job_id"`
	BidID         string `json:"bid_id,omitempty"`
	ChangeOrderID string `json:"change_order_id,omitempty"`
	PaymentID     string `json:"payment_id,omitempty"`
	From          string `json:"from,omitempty"`
	To            string `json:"to"`
	AmountCents   int64  `json:"amount_cents,omitempty"`
}

// Expiring is the warn-ahead payload emitted before a deadline passes.
type Expiring struct {
	JobID         string    `json:"job_id"`
	BidID         string    `json:"bid_id,omitempty"`
	ChangeOrderID string    `json:"change_order_id,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}
