package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"mechmarket/internal/adapter/persistence/memory"
	"mechmarket/internal/domain/entities"
	"mechmarket/internal/domain/events"
	"mechmarket/internal/domain/money"
)

func newOrderFixture(t *testing.T) (*ChangeOrderUseCase, *memory.Store, *capturePublisher) {
	t.Helper()
	store := memory.NewStore()
	pub := &capturePublisher{}
	limits := money.Limits{MinAmountCents: 100, MaxAmountCents: 1_000_000}
	uc := NewChangeOrderUseCase(store.OrderStore(), store.JobStore(), pub, discardLogger(), limits, time.Hour)
	return uc, store, pub
}

func seedWorkingJob(t *testing.T, store *memory.Store) entities.Job {
	t.Helper()
	return seedJob(t, store, entities.Job{
		ID:         "job-1",
		CustomerID: "cust-1",
		MechanicID: "mech-1",
		Status:     entities.JobStatusInProgress,
	})
}

func TestChangeOrderUseCase_Create(t *testing.T) {
	t.Run("assigned mechanic creates pending order", func(t *testing.T) {
		uc, store, pub := newOrderFixture(t)
		seedWorkingJob(t, store)

		order, err := uc.Create(context.Background(), "job-1", mechanic("mech-1"), 4000, "worn rotors need replacement")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Status != entities.ChangeOrderStatusPending || order.AmountCents != 4000 {
			t.Fatalf("unexpected order: %+v", order)
		}
		if order.FundsApplied {
			t.Fatalf("funds must not be applied on creation")
		}
		if pub.count(events.TopicChangeOrderCreated) != 1 {
			t.Fatalf("unexpected events: %v", pub.topics())
		}
	})

	t.Run("other mechanic denied", func(t *testing.T) {
		uc, store, _ := newOrderFixture(t)
		seedWorkingJob(t, store)

		_, err := uc.Create(context.Background(), "job-1", mechanic("mech-9"), 4000, "extra work")
		if !errors.Is(err, ErrActorNotAllowed) {
			t.Fatalf("expected ErrActorNotAllowed, got %v", err)
		}
	})

	t.Run("job not in progress", func(t *testing.T) {
		uc, store, _ := newOrderFixture(t)
		seedJob(t, store, entities.Job{ID: "job-1", CustomerID: "cust-1", MechanicID: "mech-1", Status: entities.JobStatusScheduled})

		_, err := uc.Create(context.Background(), "job-1", mechanic("mech-1"), 4000, "extra work")
		if !errors.Is(err, ErrJobNotInProgress) {
			t.Fatalf("expected ErrJobNotInProgress, got %v", err)
		}
	})

	t.Run("amount outside limits", func(t *testing.T) {
		uc, store, _ := newOrderFixture(t)
		seedWorkingJob(t, store)

		_, err := uc.Create(context.Background(), "job-1", mechanic("mech-1"), 50, "too cheap")
		if !errors.Is(err, money.ErrAmountOutOfRange) {
			t.Fatalf("expected ErrAmountOutOfRange, got %v", err)
		}
	})
}

func TestChangeOrderUseCase_Decisions(t *testing.T) {
	create := func(t *testing.T, uc *ChangeOrderUseCase, store *memory.Store) entities.ChangeOrder {
		seedWorkingJob(t, store)
		order, err := uc.Create(context.Background(), "job-1", mechanic("mech-1"), 4000, "extra work")
		if err != nil {
			t.Fatalf("seeding order: %v", err)
		}
		return order
	}

	t.Run("customer approves", func(t *testing.T) {
		uc, store, pub := newOrderFixture(t)
		order := create(t, uc, store)

		approved, err := uc.Approve(context.Background(), order.ID, customer("cust-1"), order.Version)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if approved.Status != entities.ChangeOrderStatusApproved {
			t.Fatalf("unexpected order: %+v", approved)
		}
		if pub.count(events.TopicChangeOrderApproved) != 1 {
			t.Fatalf("unexpected events: %v", pub.topics())
		}
	})

	t.Run("mechanic cannot decide", func(t *testing.T) {
		uc, store, _ := newOrderFixture(t)
		order := create(t, uc, store)

		_, err := uc.Approve(context.Background(), order.ID, mechanic("mech-1"), order.Version)
		if !errors.Is(err, ErrActorNotAllowed) {
			t.Fatalf("expected ErrActorNotAllowed, got %v", err)
		}
	})

	t.Run("decided order cannot be decided again", func(t *testing.T) {
		uc, store, _ := newOrderFixture(t)
		order := create(t, uc, store)

		rejected, err := uc.Reject(context.Background(), order.ID, customer("cust-1"), order.Version)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = uc.Approve(context.Background(), order.ID, customer("cust-1"), rejected.Version)
		if !errors.Is(err, ErrChangeOrderTransition) {
			t.Fatalf("expected ErrChangeOrderTransition, got %v", err)
		}
	})
}

func TestChangeOrderUseCase_Funding(t *testing.T) {
	approved := func(t *testing.T, uc *ChangeOrderUseCase, store *memory.Store) entities.ChangeOrder {
		seedWorkingJob(t, store)
		order, err := uc.Create(context.Background(), "job-1", mechanic("mech-1"), 4000, "extra work")
		if err != nil {
			t.Fatalf("seeding order: %v", err)
		}
		order, err = uc.Approve(context.Background(), order.ID, customer("cust-1"), order.Version)
		if err != nil {
			t.Fatalf("approving order: %v", err)
		}
		return order
	}

	t.Run("escrow marking is idempotent per hold", func(t *testing.T) {
		uc, store, _ := newOrderFixture(t)
		order := approved(t, uc, store)

		first, err := uc.MarkEscrow(context.Background(), order.ID, "pay-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := uc.MarkEscrow(context.Background(), order.ID, "pay-1")
		if err != nil {
			t.Fatalf("replay should pass: %v", err)
		}
		if second.Version != first.Version || second.Status != entities.ChangeOrderStatusEscrow {
			t.Fatalf("replay must not rewrite: %+v vs %+v", first, second)
		}
	})

	t.Run("paid applies funds to the job exactly once", func(t *testing.T) {
		uc, store, pub := newOrderFixture(t)
		order := approved(t, uc, store)
		if _, err := uc.MarkEscrow(context.Background(), order.ID, "pay-1"); err != nil {
			t.Fatalf("escrow: %v", err)
		}

		paid, err := uc.MarkPaid(context.Background(), order.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if paid.Status != entities.ChangeOrderStatusPaid || !paid.FundsApplied {
			t.Fatalf("unexpected order: %+v", paid)
		}

		// Crash-recovery replay.
		replayed, err := uc.MarkPaid(context.Background(), order.ID)
		if err != nil {
			t.Fatalf("replay should pass: %v", err)
		}
		if replayed.Version != paid.Version {
			t.Fatalf("replay must not rewrite: %+v vs %+v", paid, replayed)
		}

		job, _ := store.JobStore().GetByID(context.Background(), "job-1")
		if job.AdditionalWorkCents != 4000 {
			t.Fatalf("expected funds applied once, got %d", job.AdditionalWorkCents)
		}
		if pub.count(events.TopicChangeOrderPaid) != 1 {
			t.Fatalf("expected one paid event, got %v", pub.topics())
		}
	})

	t.Run("pending order cannot be paid", func(t *testing.T) {
		uc, store, _ := newOrderFixture(t)
		seedWorkingJob(t, store)
		order, err := uc.Create(context.Background(), "job-1", mechanic("mech-1"), 4000, "extra work")
		if err != nil {
			t.Fatalf("seeding order: %v", err)
		}

		_, err = uc.MarkPaid(context.Background(), order.ID)
		if !errors.Is(err, ErrChangeOrderTransition) {
			t.Fatalf("expected ErrChangeOrderTransition, got %v", err)
		}
	})
}

func TestChangeOrderUseCase_Expire(t *testing.T) {
	uc, store, pub := newOrderFixture(t)
	seedWorkingJob(t, store)
	order, err := uc.Create(context.Background(), "job-1", mechanic("mech-1"), 4000, "extra work")
	if err != nil {
		t.Fatalf("seeding order: %v", err)
	}

	expired, err := uc.Expire(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expired.Status != entities.ChangeOrderStatusExpired {
		t.Fatalf("unexpected order: %+v", expired)
	}

	// Terminal orders pass through so overlapping sweeps stay safe.
	again, err := uc.Expire(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("replay should pass: %v", err)
	}
	if again.Version != expired.Version {
		t.Fatalf("replay must not rewrite: %+v vs %+v", expired, again)
	}
	if pub.count(events.TopicChangeOrderExpired) != 1 {
		t.Fatalf("expected one expired event, got %v", pub.topics())
	}
}
