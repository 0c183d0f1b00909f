package response

import (
	"time"

	"mechmarket/internal/domain/entities"
)

type ChangeOrderResponse struct {
	ID           string    `json:"id"`
	JobID        string    `json:"job_id"`
	ProposedBy   string    `json:"proposed_by"`
	AmountCents  int64     `json:"amount_cents"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	PaymentID    string    `json:"payment_id,omitempty"`
	FundsApplied bool      `json:"funds_applied"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int64     `json:"version"`
}

func FromChangeOrder(o entities.ChangeOrder) ChangeOrderResponse {
	return ChangeOrderResponse{
		ID:           o.ID,
		JobID:        o.JobID,
		ProposedBy:   o.ProposedBy,
		AmountCents:  o.AmountCents,
		Description:  o.Description,
		Status:       string(o.Status),
		PaymentID:    o.PaymentID,
		FundsApplied: o.FundsApplied,
		ExpiresAt:    o.ExpiresAt,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		Version:      o.Version,
	}
}

func FromChangeOrders(orders []entities.ChangeOrder) []ChangeOrderResponse {
	out := make([]ChangeOrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromChangeOrder(o))
	}
	return out
}
