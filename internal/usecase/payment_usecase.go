package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"mechmarket/internal/domain/entities"
	"mechmarket/internal/domain/events"
	"mechmarket/internal/domain/money"
	"mechmarket/internal/usecase/interfaces"
	"mechmarket/pkg/apperrors"

	"github.com/google/uuid"
)

var (
	ErrPaymentNotFound   = apperrors.NotFound("PAYMENT_NOT_FOUND", "payment not found")
	ErrInvalidPayment    = apperrors.Validation("INVALID_PAYMENT", "invalid payment input")
	ErrJobNotPayable     = apperrors.Validation("JOB_NOT_PAYABLE", "the job has no agreed price to charge yet")
	ErrOrderNotApproved  = apperrors.Validation("CHANGE_ORDER_NOT_APPROVED", "the change order is not approved for funding")
	ErrNotCapturable     = apperrors.Validation("PAYMENT_NOT_CAPTURABLE", "only an authorized hold can be captured")
	ErrNotRefundable     = apperrors.Validation("PAYMENT_NOT_REFUNDABLE", "the payment cannot be refunded in its current status")
	ErrHoldNotPending    = apperrors.Validation("HOLD_NOT_PENDING", "the hold outcome was already recorded")

	// ErrPaymentFailed is the single caller-facing failure for declined or
	// retry-exhausted attempts; the record keeps the audit detail.
	ErrPaymentFailed = &apperrors.AppError{
		Kind:       apperrors.KindPermanentProcessor,
		Code:       "PAYMENT_FAILED",
		Message:    "payment could not be processed",
		HTTPStatus: 422,
	}
)

// PaymentConfig is the coordinator's tuning surface.
type PaymentConfig struct {
	FeeRate     float64
	Limits      money.Limits
	Currency    string
	MaxAttempts int
	BackoffBase time.Duration
}

// PaymentUseCase creates, funds, captures and releases holds. Every
// authorize carries an idempotency key so caller retries can never create a
// second hold; transient processor failures are retried internally with
// exponential backoff up to the configured ceiling.
type PaymentUseCase struct {
	payments  interfaces.PaymentRepository
	jobs      interfaces.JobRepository
	orders    *ChangeOrderUseCase
	processor interfaces.PaymentProcessor
	publisher interfaces.EventPublisher
	logger    *slog.Logger
	cfg       PaymentConfig
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewPaymentUseCase(
	payments interfaces.PaymentRepository,
	jobs interfaces.JobRepository,
	orders *ChangeOrderUseCase,
	processor interfaces.PaymentProcessor,
	publisher interfaces.EventPublisher,
	logger *slog.Logger,
	cfg PaymentConfig,
) *PaymentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.FeeRate == 0 {
		cfg.FeeRate = money.DefaultFeeRate
	}
	if cfg.Currency == "" {
		cfg.Currency = "BRL"
	}
	return &PaymentUseCase{
		payments:  payments,
		jobs:      jobs,
		orders:    orders,
		processor: processor,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

// AuthorizeInput identifies what is being funded. ChangeOrderID empty means
// the base job. AttemptSeq distinguishes deliberate re-attempts after a
// failed record; replaying the same sequence is idempotent.
type AuthorizeInput struct {
	JobID         string
	ChangeOrderID string
	Method        entities.PaymentMethod
	AttemptSeq    int
}

// Authorize creates a hold for the payable amount. The amount always comes
// from the authoritative stored entity, never from the caller.
func (u *PaymentUseCase) Authorize(ctx context.Context, in AuthorizeInput) (entities.PaymentRecord, error) {
	in.JobID = strings.TrimSpace(in.JobID)
	in.ChangeOrderID = strings.TrimSpace(in.ChangeOrderID)
	if in.JobID == "" || !in.Method.Valid() {
		return entities.PaymentRecord{}, ErrInvalidPayment
	}
	if in.AttemptSeq <= 0 {
		in.AttemptSeq = 1
	}

	job, err := u.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		return entities.PaymentRecord{}, err
	}
	if job.ID == "" {
		return entities.PaymentRecord{}, ErrJobNotFound
	}

	amount, err := u.payableAmount(ctx, job, in.ChangeOrderID)
	if err != nil {
		return entities.PaymentRecord{}, err
	}
	if err := u.cfg.Limits.Validate(amount); err != nil {
		return entities.PaymentRecord{}, err
	}

	key := entities.BuildIdempotencyKey(in.JobID, in.ChangeOrderID, in.AttemptSeq)
	if existing, err := u.payments.GetByIdempotencyKey(ctx, key); err != nil {
		return entities.PaymentRecord{}, err
	} else if existing.ID != "" {
		u.logger.Info("authorize replayed, returning existing record",
			slog.String("payment_id", existing.ID),
			slog.String("idempotency_key", key),
		)
		return existing, nil
	}

	split, err := money.SplitAmount(amount, u.cfg.FeeRate)
	if err != nil {
		return entities.PaymentRecord{}, err
	}

	now := u.now().UTC()
	record := entities.PaymentRecord{
		ID:               uuid.NewString(),
		JobID:            in.JobID,
		ChangeOrderID:    in.ChangeOrderID,
		AmountCents:      amount,
		PlatformFeeCents: split.PlatformFeeCents,
		PayeeCents:       split.PayeeCents,
		Method:           in.Method,
		Status:           entities.PaymentStatusPending,
		IdempotencyKey:   key,
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          1,
	}

	record, err = u.payments.Create(ctx, record)
	if errors.Is(err, apperrors.ErrConflict) {
		// Concurrent replay won the create; hand back its record.
		existing, getErr := u.payments.GetByIdempotencyKey(ctx, key)
		if getErr == nil && existing.ID != "" {
			return existing, nil
		}
		return entities.PaymentRecord{}, err
	}
	if err != nil {
		return entities.PaymentRecord{}, err
	}

	return u.runHold(ctx, record, key)
}

// runHold drives the processor call with bounded retries. The record is the
// durable marker: attempt counts are persisted before each try so a crash
// leaves a resumable pending record behind.
func (u *PaymentUseCase) runHold(ctx context.Context, record entities.PaymentRecord, key string) (entities.PaymentRecord, error) {
	var lastErr error

	for attempt := 1; attempt <= u.cfg.MaxAttempts; attempt++ {
		record.AttemptCount = attempt
		record.UpdatedAt = u.now().UTC()
		updated, err := u.payments.Update(ctx, record, record.Version)
		if err != nil {
			return entities.PaymentRecord{}, err
		}
		record = updated

		ref, err := u.processor.CreateHold(ctx, record.AmountCents, u.cfg.Currency, record.Method, key)
		if err == nil {
			return u.holdConfirmed(ctx, record, ref)
		}
		lastErr = err

		if apperrors.IsKind(err, apperrors.KindTransientProcessor) && attempt < u.cfg.MaxAttempts {
			backoff := u.cfg.BackoffBase * (1 << (attempt - 1))
			u.logger.Warn("hold attempt failed, retrying",
				slog.String("payment_id", record.ID),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
				slog.Any("error", err),
			)
			if sleepErr := u.sleep(ctx, backoff); sleepErr != nil {
				lastErr = sleepErr
				break
			}
			continue
		}
		break
	}

	record.Status = entities.PaymentStatusFailed
	record.FailureReason = lastErr.Error()
	record.UpdatedAt = u.now().UTC()
	failed, err := u.payments.Update(ctx, record, record.Version)
	if err != nil {
		return entities.PaymentRecord{}, err
	}

	u.logger.Error("payment failed",
		slog.String("payment_id", failed.ID),
		slog.String("job_id", failed.JobID),
		slog.Int("attempts", failed.AttemptCount),
		slog.Any("error", lastErr),
	)
	u.publisher.Publish(ctx, events.New(events.TopicPaymentFailed, failed.JobID, entities.SystemActor.ID, events.StatusChanged{
		JobID:         failed.JobID,
		ChangeOrderID: failed.ChangeOrderID,
		PaymentID:     failed.ID,
		From:          string(entities.PaymentStatusPending),
		To:            string(entities.PaymentStatusFailed),
		AmountCents:   failed.AmountCents,
	}))

	return failed, ErrPaymentFailed.WithCause(lastErr)
}

func (u *PaymentUseCase) holdConfirmed(ctx context.Context, record entities.PaymentRecord, ref string) (entities.PaymentRecord, error) {
	record.Status = entities.PaymentStatusAuthorized
	record.ProcessorRef = ref
	record.UpdatedAt = u.now().UTC()

	updated, err := u.payments.Update(ctx, record, record.Version)
	if err != nil {
		return entities.PaymentRecord{}, err
	}

	u.logger.Info("hold authorized",
		slog.String("payment_id", updated.ID),
		slog.String("job_id", updated.JobID),
		slog.String("processor_ref", ref),
		slog.Int("attempts", updated.AttemptCount),
	)
	u.publisher.Publish(ctx, events.New(events.TopicPaymentAuthorized, updated.JobID, entities.SystemActor.ID, events.StatusChanged{
		JobID:         updated.JobID,
		ChangeOrderID: updated.ChangeOrderID,
		PaymentID:     updated.ID,
		From:          string(entities.PaymentStatusPending),
		To:            string(entities.PaymentStatusAuthorized),
		AmountCents:   updated.AmountCents,
	}))

	if updated.ChangeOrderID != "" {
		if _, err := u.orders.MarkEscrow(ctx, updated.ChangeOrderID, updated.ID); err != nil {
			// The hold exists; escrow marking is retried by the caller or
			// the recovery sweep, so surface the error without undoing it.
			return updated, err
		}
	}

	return updated, nil
}

// Capture settles an authorized hold. Idempotent: capturing a captured
// record is a no-op. Capturing a change-order hold drives escrow -> paid.
func (u *PaymentUseCase) Capture(ctx context.Context, paymentID string) (entities.PaymentRecord, error) {
	record, err := u.GetByID(ctx, paymentID)
	if err != nil {
		return entities.PaymentRecord{}, err
	}
	if record.Status == entities.PaymentStatusCaptured {
		return record, nil
	}
	if record.Status != entities.PaymentStatusAuthorized {
		return entities.PaymentRecord{}, ErrNotCapturable
	}

	if err := u.callProcessor(ctx, record.ID, func() error {
		return u.processor.Capture(ctx, record.ProcessorRef)
	}); err != nil {
		return entities.PaymentRecord{}, err
	}

	record.Status = entities.PaymentStatusCaptured
	record.UpdatedAt = u.now().UTC()
	updated, err := u.payments.Update(ctx, record, record.Version)
	if errors.Is(err, apperrors.ErrConflict) {
		// Lost a capture race; the money moved exactly once either way.
		current, getErr := u.payments.GetByID(ctx, record.ID)
		if getErr == nil && current.Status == entities.PaymentStatusCaptured {
			return current, nil
		}
		return entities.PaymentRecord{}, err
	}
	if err != nil {
		return entities.PaymentRecord{}, err
	}

	u.logger.Info("payment captured",
		slog.String("payment_id", updated.ID),
		slog.String("job_id", updated.JobID),
		slog.Int64("amount_cents", updated.AmountCents),
	)
	u.publisher.Publish(ctx, events.New(events.TopicPaymentCaptured, updated.JobID, entities.SystemActor.ID, events.StatusChanged{
		JobID:         updated.JobID,
		ChangeOrderID: updated.ChangeOrderID,
		PaymentID:     updated.ID,
		From:          string(entities.PaymentStatusAuthorized),
		To:            string(entities.PaymentStatusCaptured),
		AmountCents:   updated.AmountCents,
	}))

	if updated.ChangeOrderID != "" {
		if _, err := u.orders.MarkPaid(ctx, updated.ChangeOrderID); err != nil {
			return updated, err
		}
	}

	return updated, nil
}

// Refund reverses funds. On an authorized record it releases the uncaptured
// hold; on a captured record it refunds the given amount (full when nil).
func (u *PaymentUseCase) Refund(ctx context.Context, paymentID string, amountCents *int64) (entities.PaymentRecord, error) {
	record, err := u.GetByID(ctx, paymentID)
	if err != nil {
		return entities.PaymentRecord{}, err
	}

	switch record.Status {
	case entities.PaymentStatusRefunded:
		return record, nil

	case entities.PaymentStatusAuthorized:
		if err := u.callProcessor(ctx, record.ID, func() error {
			return u.processor.ReleaseHold(ctx, record.ProcessorRef)
		}); err != nil {
			return entities.PaymentRecord{}, err
		}
		return u.markRefunded(ctx, record, entities.PaymentStatusAuthorized, record.AmountCents, true)

	case entities.PaymentStatusCaptured:
		amount := record.AmountCents
		if amountCents != nil {
			amount = *amountCents
		}
		if amount <= 0 || amount > record.AmountCents {
			return entities.PaymentRecord{}, ErrInvalidPayment
		}
		if err := u.callProcessor(ctx, record.ID, func() error {
			return u.processor.Refund(ctx, record.ProcessorRef, amount)
		}); err != nil {
			return entities.PaymentRecord{}, err
		}
		return u.markRefunded(ctx, record, entities.PaymentStatusCaptured, amount, amount == record.AmountCents)

	default:
		return entities.PaymentRecord{}, ErrNotRefundable
	}
}

func (u *PaymentUseCase) markRefunded(ctx context.Context, record entities.PaymentRecord, from entities.PaymentStatus, amount int64, full bool) (entities.PaymentRecord, error) {
	if full {
		record.Status = entities.PaymentStatusRefunded
	}
	record.UpdatedAt = u.now().UTC()
	updated, err := u.payments.Update(ctx, record, record.Version)
	if err != nil {
		return entities.PaymentRecord{}, err
	}

	u.logger.Info("payment refunded",
		slog.String("payment_id", updated.ID),
		slog.Int64("refund_cents", amount),
		slog.Bool("full", full),
	)
	u.publisher.Publish(ctx, events.New(events.TopicPaymentRefunded, updated.JobID, entities.SystemActor.ID, events.StatusChanged{
		JobID:         updated.JobID,
		ChangeOrderID: updated.ChangeOrderID,
		PaymentID:     updated.ID,
		From:          string(from),
		To:            string(updated.Status),
		AmountCents:   amount,
	}))

	return updated, nil
}

// ConfirmHold records the processor's asynchronous hold confirmation for a
// record still pending (for example after a crash mid-authorize).
func (u *PaymentUseCase) ConfirmHold(ctx context.Context, paymentID, processorRef string) (entities.PaymentRecord, error) {
	record, err := u.GetByID(ctx, paymentID)
	if err != nil {
		return entities.PaymentRecord{}, err
	}
	if record.Status == entities.PaymentStatusAuthorized && record.ProcessorRef == processorRef {
		return record, nil
	}
	if record.Status != entities.PaymentStatusPending {
		return entities.PaymentRecord{}, ErrHoldNotPending
	}
	return u.holdConfirmed(ctx, record, processorRef)
}

// FailHold records the processor's asynchronous rejection of a pending hold.
func (u *PaymentUseCase) FailHold(ctx context.Context, paymentID, reason string) (entities.PaymentRecord, error) {
	record, err := u.GetByID(ctx, paymentID)
	if err != nil {
		return entities.PaymentRecord{}, err
	}
	if record.Status == entities.PaymentStatusFailed {
		return record, nil
	}
	if record.Status != entities.PaymentStatusPending {
		return entities.PaymentRecord{}, ErrHoldNotPending
	}

	record.Status = entities.PaymentStatusFailed
	record.FailureReason = strings.TrimSpace(reason)
	record.UpdatedAt = u.now().UTC()
	updated, err := u.payments.Update(ctx, record, record.Version)
	if err != nil {
		return entities.PaymentRecord{}, err
	}

	u.publisher.Publish(ctx, events.New(events.TopicPaymentFailed, updated.JobID, entities.SystemActor.ID, events.StatusChanged{
		JobID:         updated.JobID,
		ChangeOrderID: updated.ChangeOrderID,
		PaymentID:     updated.ID,
		From:          string(entities.PaymentStatusPending),
		To:            string(entities.PaymentStatusFailed),
	}))

	return updated, nil
}

func (u *PaymentUseCase) GetByID(ctx context.Context, id string) (entities.PaymentRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.PaymentRecord{}, ErrInvalidPayment
	}
	record, err := u.payments.GetByID(ctx, id)
	if err != nil {
		return entities.PaymentRecord{}, err
	}
	if record.ID == "" {
		return entities.PaymentRecord{}, ErrPaymentNotFound
	}
	return record, nil
}

func (u *PaymentUseCase) ListByJobID(ctx context.Context, jobID string) ([]entities.PaymentRecord, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, ErrInvalidPayment
	}
	return u.payments.ListByJobID(ctx, jobID)
}

// payableAmount resolves the authoritative amount for the payable.
func (u *PaymentUseCase) payableAmount(ctx context.Context, job entities.Job, changeOrderID string) (int64, error) {
	if changeOrderID == "" {
		if job.AgreedPriceCents <= 0 {
			return 0, ErrJobNotPayable
		}
		return job.AgreedPriceCents, nil
	}

	order, err := u.orders.GetByID(ctx, changeOrderID)
	if err != nil {
		return 0, err
	}
	if order.JobID != job.ID {
		return 0, ErrChangeOrderNotFound
	}
	if order.Status != entities.ChangeOrderStatusApproved {
		return 0, ErrOrderNotApproved
	}
	return order.AmountCents, nil
}

// callProcessor applies the same bounded-retry policy to capture, release
// and refund calls: transient errors back off and retry, permanent errors
// surface immediately.
func (u *PaymentUseCase) callProcessor(ctx context.Context, paymentID string, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= u.cfg.MaxAttempts; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err
		if !apperrors.IsKind(err, apperrors.KindTransientProcessor) || attempt == u.cfg.MaxAttempts {
			break
		}
		backoff := u.cfg.BackoffBase * (1 << (attempt - 1))
		u.logger.Warn("processor call failed, retrying",
			slog.String("payment_id", paymentID),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.Any("error", err),
		)
		if sleepErr := u.sleep(ctx, backoff); sleepErr != nil {
			return sleepErr
		}
	}
	return ErrPaymentFailed.WithCause(lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
