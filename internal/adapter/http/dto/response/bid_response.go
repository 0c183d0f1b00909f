package response

import (
	"time"

	"mechmarket/internal/domain/entities"
)

type BidResponse struct {
	ID         string    `json:"id"`
	JobID      string    `json:"job_id"`
	MechanicID string    `json:"mechanic_id"`
	PriceCents int64     `json:"price_cents"`
	Message    string    `json:"message,omitempty"`
	Status     string    `json:"status"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	Version    int64     `json:"version"`
}

func FromBid(b entities.Bid) BidResponse {
	return BidResponse{
		ID:         b.ID,
		JobID:      b.JobID,
		MechanicID: b.MechanicID,
		PriceCents: b.PriceCents,
		Message:    b.Message,
		Status:     string(b.Status),
		ExpiresAt:  b.ExpiresAt,
		CreatedAt:  b.CreatedAt,
		Version:    b.Version,
	}
}

func FromBids(bids []entities.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, FromBid(b))
	}
	return out
}

// AcceptBidResponse returns both sides of a successful accept so the client
// sees the agreed price and the frozen sibling state in one round trip.
type AcceptBidResponse struct {
	Job JobResponse `json:"job"`
	Bid BidResponse `json:"bid"`
}
