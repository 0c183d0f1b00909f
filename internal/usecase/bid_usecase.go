package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"mechmarket/internal/domain/entities"
	"mechmarket/internal/domain/events"
	"mechmarket/internal/usecase/interfaces"
	"mechmarket/pkg/apperrors"

	"github.com/google/uuid"
)

var (
	ErrBidNotFound     = apperrors.NotFound("BID_NOT_FOUND", "bid not found")
	ErrInvalidBidInput = apperrors.Validation("INVALID_BID_INPUT", "invalid bid input")
	ErrBiddingClosed   = apperrors.Validation("BIDDING_CLOSED", "the job is no longer accepting bids")
	ErrBidNotPending   = apperrors.Validation("BID_NOT_PENDING", "the bid was already decided")

	// ErrAcceptedBidInvariant freezes the job for manual resolution when a
	// second accepted bid is observed; the ledger never auto-corrects money
	//-relevant state.
	ErrAcceptedBidInvariant = apperrors.Invariant("ACCEPTED_BID_INVARIANT", "job has conflicting accepted bids and was frozen for review")
)

// BidUseCase is the bid ledger: it manages competing offers and enforces
// at-most-one acceptance per job through a single storage compare-and-set.
type BidUseCase struct {
	bids      interfaces.BidRepository
	jobs      interfaces.JobRepository
	publisher interfaces.EventPublisher
	logger    *slog.Logger
	bidTTL    time.Duration
	now       func() time.Time
}

func NewBidUseCase(
	bids interfaces.BidRepository,
	jobs interfaces.JobRepository,
	publisher interfaces.EventPublisher,
	logger *slog.Logger,
	bidTTL time.Duration,
) *BidUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &BidUseCase{
		bids:      bids,
		jobs:      jobs,
		publisher: publisher,
		logger:    logger,
		bidTTL:    bidTTL,
		now:       time.Now,
	}
}

// SubmitBid records a mechanic's offer. The first bid on a posted job drives
// it into bidding through the regular version-guarded transition.
func (u *BidUseCase) SubmitBid(ctx context.Context, jobID string, actor entities.Actor, priceCents int64, message string) (entities.Bid, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" || priceCents <= 0 {
		return entities.Bid{}, ErrInvalidBidInput
	}
	if actor.Role != entities.RoleMechanic || actor.ID == "" {
		return entities.Bid{}, ErrActorNotAllowed
	}

	job, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return entities.Bid{}, err
	}
	if job.ID == "" {
		return entities.Bid{}, ErrJobNotFound
	}

	switch job.Status {
	case entities.JobStatusPosted:
		from := job.Status
		job.Status = entities.JobStatusBidding
		job.UpdatedAt = u.now().UTC()
		updated, err := u.jobs.Update(ctx, job, job.Version)
		if errors.Is(err, apperrors.ErrConflict) {
			// Another bid raced us there; accept the move if it happened.
			job, err = u.jobs.GetByID(ctx, jobID)
			if err != nil {
				return entities.Bid{}, err
			}
			if job.Status != entities.JobStatusBidding {
				return entities.Bid{}, ErrBiddingClosed
			}
		} else if err != nil {
			return entities.Bid{}, err
		} else {
			job = updated
			u.publisher.Publish(ctx, events.New(events.TopicJobStatusChanged, job.ID, actor.ID, events.StatusChanged{
				JobID: job.ID,
				From:  string(from),
				To:    string(entities.JobStatusBidding),
			}))
		}
	case entities.JobStatusBidding:
		// Already open.
	default:
		return entities.Bid{}, ErrBiddingClosed
	}

	now := u.now().UTC()
	bid := entities.Bid{
		ID:         uuid.NewString(),
		JobID:      job.ID,
		MechanicID: actor.ID,
		PriceCents: priceCents,
		Message:    strings.TrimSpace(message),
		Status:     entities.BidStatusPending,
		ExpiresAt:  now.Add(u.bidTTL),
		CreatedAt:  now,
		Version:    1,
	}

	created, err := u.bids.Create(ctx, bid)
	if err != nil {
		return entities.Bid{}, err
	}

	u.logger.Info("bid submitted",
		slog.String("bid_id", created.ID),
		slog.String("job_id", job.ID),
		slog.String("mechanic_id", actor.ID),
		slog.Int64("price_cents", priceCents),
	)
	u.publisher.Publish(ctx, events.New(events.TopicBidSubmitted, job.ID, actor.ID, events.StatusChanged{
		JobID:       job.ID,
		BidID:       created.ID,
		To:          string(entities.BidStatusPending),
		AmountCents: priceCents,
	}))

	return created, nil
}

// AcceptBid performs the single atomic compare-and-set of the ledger: the
// winner becomes accepted, every pending sibling becomes rejected and the
// job moves bidding->accepted with the winner's mechanic and price. Under a
// race exactly one caller succeeds; the loser sees ErrConflict and nothing
// applied.
func (u *BidUseCase) AcceptBid(ctx context.Context, jobID, bidID string, actor entities.Actor, jobVersion int64) (entities.Job, entities.Bid, error) {
	job, err := u.jobs.GetByID(ctx, strings.TrimSpace(jobID))
	if err != nil {
		return entities.Job{}, entities.Bid{}, err
	}
	if job.ID == "" {
		return entities.Job{}, entities.Bid{}, ErrJobNotFound
	}
	if actor.Role != entities.RoleCustomer || actor.ID != job.CustomerID {
		u.logger.Warn("bid acceptance denied",
			slog.String("job_id", job.ID),
			slog.String("bid_id", bidID),
			slog.String("actor_id", actor.ID),
		)
		return entities.Job{}, entities.Bid{}, ErrActorNotAllowed
	}
	if job.Version != jobVersion {
		// The caller's snapshot is stale; a concurrent accept or transition
		// already moved the job.
		return entities.Job{}, entities.Bid{}, apperrors.ErrConflict
	}
	if job.Status != entities.JobStatusBidding {
		return entities.Job{}, entities.Bid{}, ErrInvalidTransition
	}

	all, err := u.bids.ListByJobID(ctx, job.ID)
	if err != nil {
		return entities.Job{}, entities.Bid{}, err
	}

	var winner entities.Bid
	var siblings []entities.Bid
	for _, b := range all {
		switch {
		case b.ID == bidID:
			winner = b
		case b.Status == entities.BidStatusAccepted:
			// An accepted sibling while the job is bidding is either a lost
			// race against a concurrent accept or a real invariant breach.
			// Re-reading the job tells the two apart.
			current, getErr := u.jobs.GetByID(ctx, job.ID)
			if getErr != nil {
				return entities.Job{}, entities.Bid{}, getErr
			}
			if current.Status != entities.JobStatusBidding || current.Version != job.Version {
				return entities.Job{}, entities.Bid{}, apperrors.ErrConflict
			}
			return entities.Job{}, entities.Bid{}, u.freezeJob(ctx, current)
		case b.Status == entities.BidStatusPending:
			siblings = append(siblings, b)
		}
	}
	if winner.ID == "" {
		return entities.Job{}, entities.Bid{}, ErrBidNotFound
	}
	if winner.Status != entities.BidStatusPending {
		return entities.Job{}, entities.Bid{}, ErrBidNotPending
	}

	now := u.now().UTC()
	from := job.Status
	job.Status = entities.JobStatusAccepted
	job.MechanicID = winner.MechanicID
	job.AgreedPriceCents = winner.PriceCents
	job.UpdatedAt = now
	winner.Status = entities.BidStatusAccepted
	for i := range siblings {
		siblings[i].Status = entities.BidStatusRejected
	}

	updatedJob, updatedBid, err := u.bids.AcceptBid(ctx, job, jobVersion, winner, siblings)
	if err != nil {
		return entities.Job{}, entities.Bid{}, err
	}

	u.logger.Info("bid accepted",
		slog.String("job_id", updatedJob.ID),
		slog.String("bid_id", updatedBid.ID),
		slog.String("mechanic_id", updatedBid.MechanicID),
		slog.Int64("agreed_price_cents", updatedJob.AgreedPriceCents),
		slog.Int("rejected_siblings", len(siblings)),
	)

	u.publisher.Publish(ctx, events.New(events.TopicBidAccepted, updatedJob.ID, actor.ID, events.StatusChanged{
		JobID:       updatedJob.ID,
		BidID:       updatedBid.ID,
		From:        string(entities.BidStatusPending),
		To:          string(entities.BidStatusAccepted),
		AmountCents: updatedBid.PriceCents,
	}))
	for _, s := range siblings {
		u.publisher.Publish(ctx, events.New(events.TopicBidRejected, updatedJob.ID, actor.ID, events.StatusChanged{
			JobID: updatedJob.ID,
			BidID: s.ID,
			From:  string(entities.BidStatusPending),
			To:    string(entities.BidStatusRejected),
		}))
	}
	u.publisher.Publish(ctx, events.New(events.TopicJobStatusChanged, updatedJob.ID, actor.ID, events.StatusChanged{
		JobID: updatedJob.ID,
		From:  string(from),
		To:    string(entities.JobStatusAccepted),
	}))

	return updatedJob, updatedBid, nil
}

// RejectBid declines one bid without touching its siblings or the job.
func (u *BidUseCase) RejectBid(ctx context.Context, jobID, bidID string, actor entities.Actor) (entities.Bid, error) {
	job, err := u.jobs.GetByID(ctx, strings.TrimSpace(jobID))
	if err != nil {
		return entities.Bid{}, err
	}
	if job.ID == "" {
		return entities.Bid{}, ErrJobNotFound
	}
	if actor.Role != entities.RoleCustomer || actor.ID != job.CustomerID {
		return entities.Bid{}, ErrActorNotAllowed
	}

	bid, err := u.bids.GetByID(ctx, strings.TrimSpace(bidID))
	if err != nil {
		return entities.Bid{}, err
	}
	if bid.ID == "" || bid.JobID != job.ID {
		return entities.Bid{}, ErrBidNotFound
	}
	if bid.Status != entities.BidStatusPending {
		return entities.Bid{}, ErrBidNotPending
	}

	bid.Status = entities.BidStatusRejected
	updated, err := u.bids.Update(ctx, bid, bid.Version)
	if err != nil {
		return entities.Bid{}, err
	}

	u.publisher.Publish(ctx, events.New(events.TopicBidRejected, job.ID, actor.ID, events.StatusChanged{
		JobID: job.ID,
		BidID: updated.ID,
		From:  string(entities.BidStatusPending),
		To:    string(entities.BidStatusRejected),
	}))

	return updated, nil
}

func (u *BidUseCase) ListByJobID(ctx context.Context, jobID string) ([]entities.Bid, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, ErrInvalidBidInput
	}
	return u.bids.ListByJobID(ctx, jobID)
}

// freezeJob parks a job with conflicting accepted bids in disputed so a
// human resolves it. Best effort: if the freeze itself races, the invariant
// error still surfaces.
func (u *BidUseCase) freezeJob(ctx context.Context, job entities.Job) error {
	u.logger.Error("accepted-bid invariant violated, freezing job",
		slog.String("job_id", job.ID),
		slog.String("status", string(job.Status)),
	)
	job.Status = entities.JobStatusDisputed
	job.UpdatedAt = u.now().UTC()
	if _, err := u.jobs.Update(ctx, job, job.Version); err != nil {
		u.logger.Error("failed freezing job after invariant violation",
			slog.String("job_id", job.ID),
			slog.Any("error", err),
		)
	}
	return ErrAcceptedBidInvariant
}
