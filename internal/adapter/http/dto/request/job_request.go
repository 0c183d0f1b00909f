package request

import (
	"mechmarket/internal/domain/entities"
	"mechmarket/internal/usecase"
)

// CreateJobRequest is the payload for posting a new job. Urgency defaults
// to standard when omitted.
type CreateJobRequest struct {
	Category            string `json:"category" binding:"required"`
	Description         string `json:"description"`
	Urgency             string `json:"urgency"`
	RequestedPriceCents int64  `json:"requested_price_cents" binding:"required,gt=0"`
}

func (r CreateJobRequest) ToInput() usecase.CreateJobInput {
	urgency := entities.Urgency(r.Urgency)
	if r.Urgency == "" {
		urgency = entities.UrgencyStandard
	}
	return usecase.CreateJobInput{
		Urgency:             urgency,
		Category:            r.Category,
		Description:         r.Description,
		RequestedPriceCents: r.RequestedPriceCents,
	}
}

// TransitionJobRequest drives one lifecycle edge. Version is the caller's
// last-seen job version; a stale value is rejected with a conflict.
type TransitionJobRequest struct {
	Status  string `json:"status" binding:"required"`
	Version int64  `json:"version" binding:"required"`
}
