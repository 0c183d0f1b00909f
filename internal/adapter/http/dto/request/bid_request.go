package request

// SubmitBidRequest is a mechanic's offer on a posted job.
type SubmitBidRequest struct {
	PriceCents int64  `json:"price_cents" binding:"required,gt=0"`
	Message    string `json:"message"`
}

// AcceptBidRequest carries the customer's last-seen job version so a
// concurrent accept on the same job loses cleanly.
type AcceptBidRequest struct {
	JobVersion int64 `json:"job_version" binding:"required"`
}
