package interfaces

import (
	"context"
	"time"

	"mechmarket/internal/domain/entities"
)

// Repositories return zero-value entities (empty ID) for missing rows and
// wrap apperrors.ErrConflict whenever a version-guarded write loses a race.
// No repository call ever leaves a partial multi-item effect behind.

// JobRepository abstracts persistence for Job.
type JobRepository interface {
	Create(ctx context.Context, job entities.Job) (entities.Job, error)
	GetByID(ctx context.Context, id string) (entities.Job, error)
	// Update persists job conditioned on expectedVersion and returns the
	// stored entity with its version bumped.
	Update(ctx context.Context, job entities.Job, expectedVersion int64) (entities.Job, error)
	// ListExpiring returns non-terminal jobs whose deadline is before the
	// given instant.
	ListExpiring(ctx context.Context, before time.Time) ([]entities.Job, error)
}

// BidRepository abstracts persistence for Bid, including the single
// compare-and-set acceptance the bid ledger relies on.
type BidRepository interface {
	Create(ctx context.Context, bid entities.Bid) (entities.Bid, error)
	GetByID(ctx context.Context, id string) (entities.Bid, error)
	ListByJobID(ctx context.Context, jobID string) ([]entities.Bid, error)
	Update(ctx context.Context, bid entities.Bid, expectedVersion int64) (entities.Bid, error)
	// AcceptBid applies, all-or-nothing: job (already mutated to accepted
	// state) conditioned on jobVersion, winner moved to accepted conditioned
	// on still being pending, and every sibling moved to rejected. A lost
	// race yields apperrors.ErrConflict with nothing applied.
	AcceptBid(ctx context.Context, job entities.Job, jobVersion int64, winner entities.Bid, siblings []entities.Bid) (entities.Job, entities.Bid, error)
	ListExpiring(ctx context.Context, before time.Time) ([]entities.Bid, error)
}

// ChangeOrderRepository abstracts persistence for ChangeOrder.
type ChangeOrderRepository interface {
	Create(ctx context.Context, order entities.ChangeOrder) (entities.ChangeOrder, error)
	GetByID(ctx context.Context, id string) (entities.ChangeOrder, error)
	ListByJobID(ctx context.Context, jobID string) ([]entities.ChangeOrder, error)
	Update(ctx context.Context, order entities.ChangeOrder, expectedVersion int64) (entities.ChangeOrder, error)
	// ApplyFunds atomically stores the paid order (FundsApplied set) and the
	// job with the order amount added to AdditionalWorkCents, conditioned on
	// both versions and on the funds not having been applied before.
	ApplyFunds(ctx context.Context, order entities.ChangeOrder, orderVersion int64, job entities.Job, jobVersion int64) (entities.ChangeOrder, entities.Job, error)
	ListExpiring(ctx context.Context, before time.Time) ([]entities.ChangeOrder, error)
}

// PaymentRepository abstracts persistence for PaymentRecord. Create enforces
// idempotency-key uniqueness; a duplicate key surfaces as ErrConflict so the
// coordinator can fall back to the existing record.
type PaymentRepository interface {
	Create(ctx context.Context, record entities.PaymentRecord) (entities.PaymentRecord, error)
	GetByID(ctx context.Context, id string) (entities.PaymentRecord, error)
	GetByIdempotencyKey(ctx context.Context, key string) (entities.PaymentRecord, error)
	ListByJobID(ctx context.Context, jobID string) ([]entities.PaymentRecord, error)
	Update(ctx context.Context, record entities.PaymentRecord, expectedVersion int64) (entities.PaymentRecord, error)
}
