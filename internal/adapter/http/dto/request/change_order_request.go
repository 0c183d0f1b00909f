package request

// CreateChangeOrderRequest proposes additional work on an in-progress job.
type CreateChangeOrderRequest struct {
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
	Description string `json:"description" binding:"required"`
}

// DecideChangeOrderRequest approves or rejects a pending change order at the
// caller's last-seen version.
type DecideChangeOrderRequest struct {
	Version int64 `json:"version" binding:"required"`
}
