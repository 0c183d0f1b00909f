package usecase

import (
	"context"
	"log/slog"
	"time"

	"mechmarket/internal/domain/entities"
	"mechmarket/internal/domain/events"
	"mechmarket/internal/usecase/interfaces"
)

// SweepStats summarizes one scheduler pass.
type SweepStats struct {
	JobsWarned    int
	JobsExpired   int
	BidsExpired   int
	OrdersWarned  int
	OrdersExpired int
	HoldsReleased int
	Errors        int
}

// ExpirationUseCase is the deadline sweeper. Each Sweep warns about entities
// approaching their deadline and force-terminates the ones past it. Failures
// on one entity never stop the pass; terminal entities pass through
// untouched, so overlapping or repeated sweeps converge to the same state.
type ExpirationUseCase struct {
	jobs      interfaces.JobRepository
	bids      interfaces.BidRepository
	orders    interfaces.ChangeOrderRepository
	jobUC     *JobUseCase
	orderUC   *ChangeOrderUseCase
	payUC     *PaymentUseCase
	publisher interfaces.EventPublisher
	logger    *slog.Logger
	warnAhead time.Duration
	now       func() time.Time
}

func NewExpirationUseCase(
	jobs interfaces.JobRepository,
	bids interfaces.BidRepository,
	orders interfaces.ChangeOrderRepository,
	jobUC *JobUseCase,
	orderUC *ChangeOrderUseCase,
	payUC *PaymentUseCase,
	publisher interfaces.EventPublisher,
	logger *slog.Logger,
	warnAhead time.Duration,
) *ExpirationUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpirationUseCase{
		jobs:      jobs,
		bids:      bids,
		orders:    orders,
		jobUC:     jobUC,
		orderUC:   orderUC,
		payUC:     payUC,
		publisher: publisher,
		logger:    logger,
		warnAhead: warnAhead,
		now:       time.Now,
	}
}

// Sweep runs one pass over jobs, bids and change orders.
func (u *ExpirationUseCase) Sweep(ctx context.Context) (SweepStats, error) {
	var stats SweepStats
	now := u.now().UTC()
	horizon := now.Add(u.warnAhead)

	u.sweepJobs(ctx, now, horizon, &stats)
	u.sweepBids(ctx, now, &stats)
	u.sweepOrders(ctx, now, horizon, &stats)

	u.logger.Info("expiration sweep finished",
		slog.Int("jobs_warned", stats.JobsWarned),
		slog.Int("jobs_expired", stats.JobsExpired),
		slog.Int("bids_expired", stats.BidsExpired),
		slog.Int("orders_warned", stats.OrdersWarned),
		slog.Int("orders_expired", stats.OrdersExpired),
		slog.Int("holds_released", stats.HoldsReleased),
		slog.Int("errors", stats.Errors),
	)
	return stats, nil
}

// sweepJobs expires unclaimed postings. Only posted and bidding jobs time
// out; once a mechanic is committed the job stays alive until the parties
// resolve it.
func (u *ExpirationUseCase) sweepJobs(ctx context.Context, now, horizon time.Time, stats *SweepStats) {
	jobs, err := u.jobs.ListExpiring(ctx, horizon)
	if err != nil {
		u.logger.Error("listing expiring jobs failed", slog.Any("error", err))
		stats.Errors++
		return
	}

	for _, job := range jobs {
		if job.Status != entities.JobStatusPosted && job.Status != entities.JobStatusBidding {
			continue
		}

		if job.ExpiresAt.After(now) {
			u.publisher.Publish(ctx, events.New(events.TopicJobExpiring, job.ID, entities.SystemActor.ID, events.Expiring{
				JobID:     job.ID,
				ExpiresAt: job.ExpiresAt,
			}))
			stats.JobsWarned++
			continue
		}

		if _, err := u.jobUC.Transition(ctx, job.ID, entities.JobStatusCancelled, entities.SystemActor, job.Version); err != nil {
			u.logger.Error("expiring job failed",
				slog.String("job_id", job.ID),
				slog.Any("error", err),
			)
			stats.Errors++
			continue
		}
		u.publisher.Publish(ctx, events.New(events.TopicJobExpired, job.ID, entities.SystemActor.ID, events.StatusChanged{
			JobID: job.ID,
			From:  string(job.Status),
			To:    string(entities.JobStatusCancelled),
		}))
		stats.JobsExpired++
	}
}

func (u *ExpirationUseCase) sweepBids(ctx context.Context, now time.Time, stats *SweepStats) {
	bids, err := u.bids.ListExpiring(ctx, now)
	if err != nil {
		u.logger.Error("listing expiring bids failed", slog.Any("error", err))
		stats.Errors++
		return
	}

	for _, bid := range bids {
		if bid.Status != entities.BidStatusPending {
			continue
		}

		bid.Status = entities.BidStatusRejected
		if _, err := u.bids.Update(ctx, bid, bid.Version); err != nil {
			u.logger.Error("expiring bid failed",
				slog.String("bid_id", bid.ID),
				slog.Any("error", err),
			)
			stats.Errors++
			continue
		}
		u.publisher.Publish(ctx, events.New(events.TopicBidExpired, bid.JobID, entities.SystemActor.ID, events.StatusChanged{
			JobID: bid.JobID,
			BidID: bid.ID,
			From:  string(entities.BidStatusPending),
			To:    string(entities.BidStatusRejected),
		}))
		stats.BidsExpired++
	}
}

// sweepOrders expires unattended change orders. An order sitting in escrow
// has live money behind it, so its hold is released before the order is
// closed; if the release fails the order is left for the next pass.
func (u *ExpirationUseCase) sweepOrders(ctx context.Context, now, horizon time.Time, stats *SweepStats) {
	orders, err := u.orders.ListExpiring(ctx, horizon)
	if err != nil {
		u.logger.Error("listing expiring change orders failed", slog.Any("error", err))
		stats.Errors++
		return
	}

	for _, order := range orders {
		if order.Status.Terminal() {
			continue
		}

		if order.ExpiresAt.After(now) {
			u.publisher.Publish(ctx, events.New(events.TopicChangeOrderExpiring, order.JobID, entities.SystemActor.ID, events.Expiring{
				JobID:         order.JobID,
				ChangeOrderID: order.ID,
				ExpiresAt:     order.ExpiresAt,
			}))
			stats.OrdersWarned++
			continue
		}

		if order.Status == entities.ChangeOrderStatusEscrow && order.PaymentID != "" {
			if _, err := u.payUC.Refund(ctx, order.PaymentID, nil); err != nil {
				u.logger.Error("releasing hold for expired change order failed",
					slog.String("change_order_id", order.ID),
					slog.String("payment_id", order.PaymentID),
					slog.Any("error", err),
				)
				stats.Errors++
				continue
			}
			stats.HoldsReleased++
		}

		if _, err := u.orderUC.Expire(ctx, order.ID); err != nil {
			u.logger.Error("expiring change order failed",
				slog.String("change_order_id", order.ID),
				slog.Any("error", err),
			)
			stats.Errors++
			continue
		}
		stats.OrdersExpired++
	}
}
