package entities

import "time"

// BidStatus tracks a mechanic's offer on a job. At most one bid per job is
// ever accepted; acceptance atomically rejects all pending siblings.
type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusAccepted BidStatus = "accepted"
	BidStatusRejected BidStatus = "rejected"
)

func (s BidStatus) Valid() bool {
	switch s {
	case BidStatusPending, BidStatusAccepted, BidStatusRejected:
		return true
	}
	return false
}

// Bid is a mechanic's proposed price and terms for a specific job.
type Bid struct {
	ID         string    `json:"id"`
	JobID      string    `json:"job_id"`
	MechanicID string    `json:"mechanic_id"`
	PriceCents int64     `json:"price_cents"`
	Message    string    `json:"message,omitempty"`
	Status     BidStatus `json:"status"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	Version    int64     `json:"version"`
}
