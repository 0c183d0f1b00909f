package interfaces

import (
	"context"

	"mechmarket/internal/domain/entities"
)

// PaymentProcessor abstracts the external payment provider. Implementations
// classify failures through apperrors.TransientProcessor (retryable) and
// apperrors.PermanentProcessor (definitive decline); the coordinator decides
// retry policy from the kind alone.
type PaymentProcessor interface {
	// CreateHold authorizes amountCents without capturing and returns the
	// provider's reference. idempotencyKey makes provider-side retries safe.
	CreateHold(ctx context.Context, amountCents int64, currency string, method entities.PaymentMethod, idempotencyKey string) (string, error)
	// Capture settles a previously confirmed hold.
	Capture(ctx context.Context, ref string) error
	// ReleaseHold voids an uncaptured hold.
	ReleaseHold(ctx context.Context, ref string) error
	// Refund returns amountCents of a captured payment to the payer.
	Refund(ctx context.Context, ref string, amountCents int64) error
}
