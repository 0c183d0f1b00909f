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
	mock_interfaces "mechmarket/internal/usecase/interfaces/mocks"
	"mechmarket/pkg/apperrors"

	"go.uber.org/mock/gomock"
)

var (
	errProcessorDown = apperrors.TransientProcessor("PROCESSOR_UNAVAILABLE", "processor timed out")
	errCardDeclined  = apperrors.PermanentProcessor("CARD_DECLINED", "card declined")
)

type paymentFixture struct {
	uc        *PaymentUseCase
	orders    *ChangeOrderUseCase
	store     *memory.Store
	processor *mock_interfaces.MockPaymentProcessor
	pub       *capturePublisher
}

func newPaymentFixture(t *testing.T) paymentFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := memory.NewStore()
	pub := &capturePublisher{}
	limits := money.Limits{MinAmountCents: 100, MaxAmountCents: 10_000_000}
	orders := NewChangeOrderUseCase(store.OrderStore(), store.JobStore(), pub, discardLogger(), limits, time.Hour)
	processor := mock_interfaces.NewMockPaymentProcessor(ctrl)

	uc := NewPaymentUseCase(store.PaymentStore(), store.JobStore(), orders, processor, pub, discardLogger(), PaymentConfig{
		FeeRate:     0.10,
		Limits:      limits,
		Currency:    "BRL",
		MaxAttempts: 3,
	})
	uc.sleep = func(context.Context, time.Duration) error { return nil }

	return paymentFixture{uc: uc, orders: orders, store: store, processor: processor, pub: pub}
}

func (f paymentFixture) seedAcceptedJob(t *testing.T, agreed int64) entities.Job {
	t.Helper()
	return seedJob(t, f.store, entities.Job{
		ID:               "job-1",
		CustomerID:       "cust-1",
		MechanicID:       "mech-1",
		Status:           entities.JobStatusInProgress,
		AgreedPriceCents: agreed,
	})
}

func (f paymentFixture) seedApprovedOrder(t *testing.T, amount int64) entities.ChangeOrder {
	t.Helper()
	order, err := f.orders.Create(context.Background(), "job-1", mechanic("mech-1"), amount, "extra work")
	if err != nil {
		t.Fatalf("seeding order: %v", err)
	}
	order, err = f.orders.Approve(context.Background(), order.ID, customer("cust-1"), order.Version)
	if err != nil {
		t.Fatalf("approving order: %v", err)
	}
	return order
}

func TestPaymentUseCase_Authorize(t *testing.T) {
	t.Run("base job hold with fee split", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)

		f.processor.EXPECT().
			CreateHold(gomock.Any(), int64(15000), "BRL", entities.PaymentMethodCard, "job-1:base:1").
			Return("mp-1", nil)

		record, err := f.uc.Authorize(context.Background(), AuthorizeInput{JobID: "job-1", Method: entities.PaymentMethodCard})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.Status != entities.PaymentStatusAuthorized || record.ProcessorRef != "mp-1" {
			t.Fatalf("unexpected record: %+v", record)
		}
		if record.PlatformFeeCents != 1500 || record.PayeeCents != 13500 {
			t.Fatalf("unexpected split: %+v", record)
		}
		if record.AttemptCount != 1 {
			t.Fatalf("expected one attempt, got %d", record.AttemptCount)
		}
		if f.pub.count(events.TopicPaymentAuthorized) != 1 {
			t.Fatalf("unexpected events: %v", f.pub.topics())
		}
	})

	t.Run("replay returns existing record without a second hold", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)

		f.processor.EXPECT().
			CreateHold(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("mp-1", nil).
			Times(1)

		in := AuthorizeInput{JobID: "job-1", Method: entities.PaymentMethodCard}
		first, err := f.uc.Authorize(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := f.uc.Authorize(context.Background(), in)
		if err != nil {
			t.Fatalf("replay should pass: %v", err)
		}
		if second.ID != first.ID {
			t.Fatalf("expected same record, got %s and %s", first.ID, second.ID)
		}
	})

	t.Run("transient failures retry up to the cap", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)

		gomock.InOrder(
			f.processor.EXPECT().CreateHold(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errProcessorDown),
			f.processor.EXPECT().CreateHold(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errProcessorDown),
			f.processor.EXPECT().CreateHold(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("mp-1", nil),
		)

		record, err := f.uc.Authorize(context.Background(), AuthorizeInput{JobID: "job-1", Method: entities.PaymentMethodPix})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.Status != entities.PaymentStatusAuthorized || record.AttemptCount != 3 {
			t.Fatalf("unexpected record: %+v", record)
		}
	})

	t.Run("permanent decline fails without retrying", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)

		f.processor.EXPECT().
			CreateHold(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", errCardDeclined).
			Times(1)

		record, err := f.uc.Authorize(context.Background(), AuthorizeInput{JobID: "job-1", Method: entities.PaymentMethodCard})
		if !errors.Is(err, ErrPaymentFailed) {
			t.Fatalf("expected ErrPaymentFailed, got %v", err)
		}
		if record.Status != entities.PaymentStatusFailed || record.AttemptCount != 1 {
			t.Fatalf("unexpected record: %+v", record)
		}
		if record.FailureReason == "" {
			t.Fatalf("expected failure reason")
		}
		if f.pub.count(events.TopicPaymentFailed) != 1 {
			t.Fatalf("unexpected events: %v", f.pub.topics())
		}
	})

	t.Run("retry exhaustion fails the record", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)

		f.processor.EXPECT().
			CreateHold(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", errProcessorDown).
			Times(3)

		record, err := f.uc.Authorize(context.Background(), AuthorizeInput{JobID: "job-1", Method: entities.PaymentMethodCard})
		if !errors.Is(err, ErrPaymentFailed) {
			t.Fatalf("expected ErrPaymentFailed, got %v", err)
		}
		if record.AttemptCount != 3 {
			t.Fatalf("expected three attempts, got %d", record.AttemptCount)
		}
	})

	t.Run("failed attempt can be retried under a new sequence", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)

		gomock.InOrder(
			f.processor.EXPECT().CreateHold(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "job-1:base:1").Return("", errCardDeclined),
			f.processor.EXPECT().CreateHold(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "job-1:base:2").Return("mp-2", nil),
		)

		_, err := f.uc.Authorize(context.Background(), AuthorizeInput{JobID: "job-1", Method: entities.PaymentMethodCard})
		if !errors.Is(err, ErrPaymentFailed) {
			t.Fatalf("expected ErrPaymentFailed, got %v", err)
		}
		record, err := f.uc.Authorize(context.Background(), AuthorizeInput{JobID: "job-1", Method: entities.PaymentMethodCard, AttemptSeq: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.Status != entities.PaymentStatusAuthorized {
			t.Fatalf("unexpected record: %+v", record)
		}
	})

	t.Run("job without agreed price is not payable", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 0)

		_, err := f.uc.Authorize(context.Background(), AuthorizeInput{JobID: "job-1", Method: entities.PaymentMethodCard})
		if !errors.Is(err, ErrJobNotPayable) {
			t.Fatalf("expected ErrJobNotPayable, got %v", err)
		}
	})

	t.Run("change order hold moves it to escrow", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)
		order := f.seedApprovedOrder(t, 4000)

		f.processor.EXPECT().
			CreateHold(gomock.Any(), int64(4000), "BRL", entities.PaymentMethodCard, "job-1:"+order.ID+":1").
			Return("mp-co", nil)

		record, err := f.uc.Authorize(context.Background(), AuthorizeInput{JobID: "job-1", ChangeOrderID: order.ID, Method: entities.PaymentMethodCard})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		stored, _ := f.store.OrderStore().GetByID(context.Background(), order.ID)
		if stored.Status != entities.ChangeOrderStatusEscrow || stored.PaymentID != record.ID {
			t.Fatalf("unexpected order: %+v", stored)
		}
	})

	t.Run("unapproved change order cannot be funded", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)
		order, err := f.orders.Create(context.Background(), "job-1", mechanic("mech-1"), 4000, "extra work")
		if err != nil {
			t.Fatalf("seeding order: %v", err)
		}

		_, err = f.uc.Authorize(context.Background(), AuthorizeInput{JobID: "job-1", ChangeOrderID: order.ID, Method: entities.PaymentMethodCard})
		if !errors.Is(err, ErrOrderNotApproved) {
			t.Fatalf("expected ErrOrderNotApproved, got %v", err)
		}
	})
}

func TestPaymentUseCase_Capture(t *testing.T) {
	authorize := func(t *testing.T, f paymentFixture, changeOrderID string) entities.PaymentRecord {
		t.Helper()
		f.processor.EXPECT().
			CreateHold(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("mp-1", nil)
		record, err := f.uc.Authorize(context.Background(), AuthorizeInput{JobID: "job-1", ChangeOrderID: changeOrderID, Method: entities.PaymentMethodCard})
		if err != nil {
			t.Fatalf("authorize: %v", err)
		}
		return record
	}

	t.Run("captures an authorized hold once", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)
		record := authorize(t, f, "")

		f.processor.EXPECT().Capture(gomock.Any(), "mp-1").Return(nil).Times(1)

		captured, err := f.uc.Capture(context.Background(), record.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if captured.Status != entities.PaymentStatusCaptured {
			t.Fatalf("unexpected record: %+v", captured)
		}

		// Replay is a no-op.
		again, err := f.uc.Capture(context.Background(), record.ID)
		if err != nil {
			t.Fatalf("replay should pass: %v", err)
		}
		if again.Version != captured.Version {
			t.Fatalf("replay must not rewrite: %+v vs %+v", captured, again)
		}
		if f.pub.count(events.TopicPaymentCaptured) != 1 {
			t.Fatalf("expected one captured event, got %v", f.pub.topics())
		}
	})

	t.Run("capturing a change order hold pays the order", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)
		order := f.seedApprovedOrder(t, 4000)
		record := authorize(t, f, order.ID)

		f.processor.EXPECT().Capture(gomock.Any(), "mp-1").Return(nil)

		if _, err := f.uc.Capture(context.Background(), record.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		stored, _ := f.store.OrderStore().GetByID(context.Background(), order.ID)
		if stored.Status != entities.ChangeOrderStatusPaid || !stored.FundsApplied {
			t.Fatalf("unexpected order: %+v", stored)
		}
		job, _ := f.store.JobStore().GetByID(context.Background(), "job-1")
		if job.AdditionalWorkCents != 4000 {
			t.Fatalf("expected funds applied, got %d", job.AdditionalWorkCents)
		}
	})

	t.Run("failed record cannot be captured", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)

		f.processor.EXPECT().
			CreateHold(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", errCardDeclined)

		record, _ := f.uc.Authorize(context.Background(), AuthorizeInput{JobID: "job-1", Method: entities.PaymentMethodCard})
		_, err := f.uc.Capture(context.Background(), record.ID)
		if !errors.Is(err, ErrNotCapturable) {
			t.Fatalf("expected ErrNotCapturable, got %v", err)
		}
	})
}

func TestPaymentUseCase_Refund(t *testing.T) {
	authorize := func(t *testing.T, f paymentFixture) entities.PaymentRecord {
		t.Helper()
		f.processor.EXPECT().
			CreateHold(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("mp-1", nil)
		record, err := f.uc.Authorize(context.Background(), AuthorizeInput{JobID: "job-1", Method: entities.PaymentMethodCard})
		if err != nil {
			t.Fatalf("authorize: %v", err)
		}
		return record
	}

	t.Run("releases an uncaptured hold", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)
		record := authorize(t, f)

		f.processor.EXPECT().ReleaseHold(gomock.Any(), "mp-1").Return(nil)

		refunded, err := f.uc.Refund(context.Background(), record.ID, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if refunded.Status != entities.PaymentStatusRefunded {
			t.Fatalf("unexpected record: %+v", refunded)
		}
		if f.pub.count(events.TopicPaymentRefunded) != 1 {
			t.Fatalf("unexpected events: %v", f.pub.topics())
		}
	})

	t.Run("partial refund keeps the record captured", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)
		record := authorize(t, f)
		f.processor.EXPECT().Capture(gomock.Any(), "mp-1").Return(nil)
		captured, err := f.uc.Capture(context.Background(), record.ID)
		if err != nil {
			t.Fatalf("capture: %v", err)
		}

		amount := int64(5000)
		f.processor.EXPECT().Refund(gomock.Any(), "mp-1", amount).Return(nil)

		after, err := f.uc.Refund(context.Background(), captured.ID, &amount)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if after.Status != entities.PaymentStatusCaptured {
			t.Fatalf("partial refund must keep captured, got %s", after.Status)
		}
	})

	t.Run("full refund after capture", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)
		record := authorize(t, f)
		f.processor.EXPECT().Capture(gomock.Any(), "mp-1").Return(nil)
		captured, err := f.uc.Capture(context.Background(), record.ID)
		if err != nil {
			t.Fatalf("capture: %v", err)
		}

		f.processor.EXPECT().Refund(gomock.Any(), "mp-1", int64(15000)).Return(nil)

		after, err := f.uc.Refund(context.Background(), captured.ID, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if after.Status != entities.PaymentStatusRefunded {
			t.Fatalf("unexpected record: %+v", after)
		}

		// Replay is a no-op.
		again, err := f.uc.Refund(context.Background(), captured.ID, nil)
		if err != nil {
			t.Fatalf("replay should pass: %v", err)
		}
		if again.Version != after.Version {
			t.Fatalf("replay must not rewrite: %+v vs %+v", after, again)
		}
	})

	t.Run("oversized refund rejected", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)
		record := authorize(t, f)
		f.processor.EXPECT().Capture(gomock.Any(), "mp-1").Return(nil)
		captured, err := f.uc.Capture(context.Background(), record.ID)
		if err != nil {
			t.Fatalf("capture: %v", err)
		}

		amount := int64(20000)
		_, err = f.uc.Refund(context.Background(), captured.ID, &amount)
		if !errors.Is(err, ErrInvalidPayment) {
			t.Fatalf("expected ErrInvalidPayment, got %v", err)
		}
	})
}

func TestPaymentUseCase_HoldCallbacks(t *testing.T) {
	seedPending := func(t *testing.T, f paymentFixture) entities.PaymentRecord {
		t.Helper()
		record, err := f.store.PaymentStore().Create(context.Background(), entities.PaymentRecord{
			ID:             "pay-1",
			JobID:          "job-1",
			AmountCents:    15000,
			Method:         entities.PaymentMethodCard,
			Status:         entities.PaymentStatusPending,
			IdempotencyKey: "job-1:base:1",
			Version:        1,
		})
		if err != nil {
			t.Fatalf("seeding record: %v", err)
		}
		return record
	}

	t.Run("confirm resumes a pending record", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)
		record := seedPending(t, f)

		confirmed, err := f.uc.ConfirmHold(context.Background(), record.ID, "mp-async")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if confirmed.Status != entities.PaymentStatusAuthorized || confirmed.ProcessorRef != "mp-async" {
			t.Fatalf("unexpected record: %+v", confirmed)
		}

		// Same-ref replay is a no-op; a different ref is refused.
		if _, err := f.uc.ConfirmHold(context.Background(), record.ID, "mp-async"); err != nil {
			t.Fatalf("replay should pass: %v", err)
		}
		if _, err := f.uc.ConfirmHold(context.Background(), record.ID, "mp-other"); !errors.Is(err, ErrHoldNotPending) {
			t.Fatalf("expected ErrHoldNotPending, got %v", err)
		}
	})

	t.Run("fail records the decline", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.seedAcceptedJob(t, 15000)
		record := seedPending(t, f)

		failed, err := f.uc.FailHold(context.Background(), record.ID, "issuer rejected")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if failed.Status != entities.PaymentStatusFailed || failed.FailureReason != "issuer rejected" {
			t.Fatalf("unexpected record: %+v", failed)
		}
		if _, err := f.uc.FailHold(context.Background(), record.ID, "again"); err != nil {
			t.Fatalf("replay should pass: %v", err)
		}
	})
}
