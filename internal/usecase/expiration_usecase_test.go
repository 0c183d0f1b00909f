package usecase

import (
	"context"
	"testing"
	"time"

	"mechmarket/internal/adapter/persistence/memory"
	"mechmarket/internal/domain/entities"
	"mechmarket/internal/domain/events"
	"mechmarket/internal/domain/money"
	mock_interfaces "mechmarket/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

type sweepFixture struct {
	uc        *ExpirationUseCase
	payUC     *PaymentUseCase
	store     *memory.Store
	processor *mock_interfaces.MockPaymentProcessor
	pub       *capturePublisher
	now       time.Time
}

func newSweepFixture(t *testing.T) sweepFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := memory.NewStore()
	pub := &capturePublisher{}
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	limits := money.Limits{MinAmountCents: 100, MaxAmountCents: 10_000_000}
	processor := mock_interfaces.NewMockPaymentProcessor(ctrl)

	jobUC := NewJobUseCase(store.JobStore(), store.PaymentStore(), store, pub, discardLogger(), time.Hour)
	orderUC := NewChangeOrderUseCase(store.OrderStore(), store.JobStore(), pub, discardLogger(), limits, time.Hour)
	payUC := NewPaymentUseCase(store.PaymentStore(), store.JobStore(), orderUC, processor, pub, discardLogger(), PaymentConfig{Limits: limits})
	payUC.sleep = func(context.Context, time.Duration) error { return nil }

	uc := NewExpirationUseCase(store.JobStore(), store.BidStore(), store.OrderStore(), jobUC, orderUC, payUC, pub, discardLogger(), 30*time.Minute)
	uc.now = fixedClock(now)

	return sweepFixture{uc: uc, payUC: payUC, store: store, processor: processor, pub: pub, now: now}
}

func TestExpirationUseCase_Sweep(t *testing.T) {
	t.Run("warns inside the window, expires past the deadline", func(t *testing.T) {
		f := newSweepFixture(t)
		seedJob(t, f.store, entities.Job{
			ID: "job-warn", CustomerID: "cust-1", Status: entities.JobStatusPosted,
			ExpiresAt: f.now.Add(10 * time.Minute),
		})
		seedJob(t, f.store, entities.Job{
			ID: "job-dead", CustomerID: "cust-1", Status: entities.JobStatusBidding,
			ExpiresAt: f.now.Add(-time.Minute),
		})
		seedJob(t, f.store, entities.Job{
			ID: "job-live", CustomerID: "cust-1", Status: entities.JobStatusPosted,
			ExpiresAt: f.now.Add(2 * time.Hour),
		})

		stats, err := f.uc.Sweep(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.JobsWarned != 1 || stats.JobsExpired != 1 || stats.Errors != 0 {
			t.Fatalf("unexpected stats: %+v", stats)
		}

		dead, _ := f.store.JobStore().GetByID(context.Background(), "job-dead")
		if dead.Status != entities.JobStatusCancelled {
			t.Fatalf("expected cancelled, got %s", dead.Status)
		}
		live, _ := f.store.JobStore().GetByID(context.Background(), "job-live")
		if live.Status != entities.JobStatusPosted {
			t.Fatalf("expected untouched, got %s", live.Status)
		}
		if f.pub.count(events.TopicJobExpiring) != 1 || f.pub.count(events.TopicJobExpired) != 1 {
			t.Fatalf("unexpected events: %v", f.pub.topics())
		}
	})

	t.Run("committed jobs never expire", func(t *testing.T) {
		f := newSweepFixture(t)
		seedJob(t, f.store, entities.Job{
			ID: "job-1", CustomerID: "cust-1", MechanicID: "mech-1",
			Status: entities.JobStatusInProgress, ExpiresAt: f.now.Add(-time.Hour),
		})

		stats, err := f.uc.Sweep(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.JobsExpired != 0 {
			t.Fatalf("unexpected stats: %+v", stats)
		}
		job, _ := f.store.JobStore().GetByID(context.Background(), "job-1")
		if job.Status != entities.JobStatusInProgress {
			t.Fatalf("expected untouched, got %s", job.Status)
		}
	})

	t.Run("stale pending bids are rejected", func(t *testing.T) {
		f := newSweepFixture(t)
		_, err := f.store.BidStore().Create(context.Background(), entities.Bid{
			ID: "bid-1", JobID: "job-1", MechanicID: "mech-1", PriceCents: 1000,
			Status: entities.BidStatusPending, ExpiresAt: f.now.Add(-time.Minute), Version: 1,
		})
		if err != nil {
			t.Fatalf("seeding bid: %v", err)
		}

		stats, err := f.uc.Sweep(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.BidsExpired != 1 {
			t.Fatalf("unexpected stats: %+v", stats)
		}
		bid, _ := f.store.BidStore().GetByID(context.Background(), "bid-1")
		if bid.Status != entities.BidStatusRejected {
			t.Fatalf("expected rejected, got %s", bid.Status)
		}
		if f.pub.count(events.TopicBidExpired) != 1 {
			t.Fatalf("unexpected events: %v", f.pub.topics())
		}
	})

	t.Run("expired escrow order releases its hold first", func(t *testing.T) {
		f := newSweepFixture(t)
		seedJob(t, f.store, entities.Job{
			ID: "job-1", CustomerID: "cust-1", MechanicID: "mech-1",
			Status: entities.JobStatusInProgress, ExpiresAt: f.now.Add(2 * time.Hour),
		})
		record, err := f.store.PaymentStore().Create(context.Background(), entities.PaymentRecord{
			ID: "pay-1", JobID: "job-1", ChangeOrderID: "co-1", AmountCents: 4000,
			Status: entities.PaymentStatusAuthorized, ProcessorRef: "mp-1",
			IdempotencyKey: "job-1:co-1:1", Version: 1,
		})
		if err != nil {
			t.Fatalf("seeding payment: %v", err)
		}
		_, err = f.store.OrderStore().Create(context.Background(), entities.ChangeOrder{
			ID: "co-1", JobID: "job-1", ProposedBy: "mech-1", AmountCents: 4000,
			Status: entities.ChangeOrderStatusEscrow, PaymentID: record.ID,
			ExpiresAt: f.now.Add(-time.Minute), Version: 1,
		})
		if err != nil {
			t.Fatalf("seeding order: %v", err)
		}

		f.processor.EXPECT().ReleaseHold(gomock.Any(), "mp-1").Return(nil)

		stats, err := f.uc.Sweep(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.OrdersExpired != 1 || stats.HoldsReleased != 1 {
			t.Fatalf("unexpected stats: %+v", stats)
		}

		order, _ := f.store.OrderStore().GetByID(context.Background(), "co-1")
		if order.Status != entities.ChangeOrderStatusExpired {
			t.Fatalf("expected expired, got %s", order.Status)
		}
		payment, _ := f.store.PaymentStore().GetByID(context.Background(), "pay-1")
		if payment.Status != entities.PaymentStatusRefunded {
			t.Fatalf("expected refunded, got %s", payment.Status)
		}
	})

	t.Run("double sweep converges", func(t *testing.T) {
		f := newSweepFixture(t)
		seedJob(t, f.store, entities.Job{
			ID: "job-1", CustomerID: "cust-1", Status: entities.JobStatusPosted,
			ExpiresAt: f.now.Add(-time.Minute),
		})

		first, err := f.uc.Sweep(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := f.uc.Sweep(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.JobsExpired != 1 || second.JobsExpired != 0 || second.Errors != 0 {
			t.Fatalf("unexpected stats: first=%+v second=%+v", first, second)
		}
		if f.pub.count(events.TopicJobExpired) != 1 {
			t.Fatalf("expected one expired event, got %v", f.pub.topics())
		}
	})
}
