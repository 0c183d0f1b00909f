package entities

import "time"

// ChangeOrderStatus models the funded-scope-change workflow:
//
//	pending  -> approved | rejected | expired
//	approved -> escrow | expired
//	escrow   -> paid | expired
//
// escrow means a payment hold exists for the full amount; paid means that
// hold was captured and the amount was applied to the job.
type ChangeOrderStatus string

const (
	ChangeOrderStatusPending  ChangeOrderStatus = "pending"
	ChangeOrderStatusApproved ChangeOrderStatus = "approved"
	ChangeOrderStatusRejected ChangeOrderStatus = "rejected"
	ChangeOrderStatusEscrow   ChangeOrderStatus = "escrow"
	ChangeOrderStatusPaid     ChangeOrderStatus = "paid"
	ChangeOrderStatusExpired  ChangeOrderStatus = "expired"
)

var changeOrderTransitions = map[ChangeOrderStatus][]ChangeOrderStatus{
	ChangeOrderStatusPending:  {ChangeOrderStatusApproved, ChangeOrderStatusRejected, ChangeOrderStatusExpired},
	ChangeOrderStatusApproved: {ChangeOrderStatusEscrow, ChangeOrderStatusExpired},
	ChangeOrderStatusEscrow:   {ChangeOrderStatusPaid, ChangeOrderStatusExpired},
	ChangeOrderStatusPaid:     {},
	ChangeOrderStatusRejected: {},
	ChangeOrderStatusExpired:  {},
}

func (s ChangeOrderStatus) Valid() bool {
	_, ok := changeOrderTransitions[s]
	return ok
}

func (s ChangeOrderStatus) Terminal() bool {
	return s == ChangeOrderStatusPaid || s == ChangeOrderStatusRejected || s == ChangeOrderStatusExpired
}

func (s ChangeOrderStatus) CanTransitionTo(target ChangeOrderStatus) bool {
	for _, t := range changeOrderTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// ChangeOrder is a customer-approved, separately funded scope addition
// raised by the assigned mechanic while the job is in progress.
//
// FundsApplied is the processed flag guarding the exactly-once increment of
// Job.AdditionalWorkCents: a crash-recovery replay of the paid transition
// sees it set and does nothing.
type ChangeOrder struct {
	ID           string            `json:"id"`
	JobID        string            `json:"job_id"`
	ProposedBy   string            `json:"proposed_by"`
	AmountCents  int64             `json:"amount_cents"`
	Description  string            `json:"description"`
	Status       ChangeOrderStatus `json:"status"`
	PaymentID    string            `json:"payment_id,omitempty"`
	FundsApplied bool              `json:"funds_applied"`
	ExpiresAt    time.Time         `json:"expires_at"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Version      int64             `json:"version"`
}
