package response

import (
	"time"

	"mechmarket/internal/domain/entities"
)

type JobResponse struct {
	ID                  string    `json:"id"`
	DisplayNumber       int64     `json:"display_number"`
	CustomerID          string    `json:"customer_id"`
	MechanicID          string    `json:"mechanic_id,omitempty"`
	Status              string    `json:"status"`
	Urgency             string    `json:"urgency"`
	Category            string    `json:"category"`
	Description         string    `json:"description,omitempty"`
	RequestedPriceCents int64     `json:"requested_price_cents"`
	AgreedPriceCents    int64     `json:"agreed_price_cents,omitempty"`
	AdditionalWorkCents int64     `json:"additional_work_cents"`
	ExpiresAt           time.Time `json:"expires_at"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Version             int64     `json:"version"`
}

func FromJob(j entities.Job) JobResponse {
	return JobResponse{
		ID:                  j.ID,
		DisplayNumber:       j.DisplayNumber,
		CustomerID:          j.CustomerID,
		MechanicID:          j.MechanicID,
		Status:              string(j.Status),
		Urgency:             string(j.Urgency),
		Category:            j.Category,
		Description:         j.Description,
		RequestedPriceCents: j.RequestedPriceCents,
		AgreedPriceCents:    j.AgreedPriceCents,
		AdditionalWorkCents: j.AdditionalWorkCents,
		ExpiresAt:           j.ExpiresAt,
		CreatedAt:           j.CreatedAt,
		UpdatedAt:           j.UpdatedAt,
		Version:             j.Version,
	}
}
