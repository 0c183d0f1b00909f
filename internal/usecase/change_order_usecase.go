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
	ErrChangeOrderNotFound   = apperrors.NotFound("CHANGE_ORDER_NOT_FOUND", "change order not found")
	ErrInvalidChangeOrder    = apperrors.Validation("INVALID_CHANGE_ORDER", "invalid change order input")
	ErrJobNotInProgress      = apperrors.Validation("JOB_NOT_IN_PROGRESS", "change orders can only be raised while work is in progress")
	ErrChangeOrderTransition = apperrors.Validation("INVALID_CHANGE_ORDER_TRANSITION", "change order status change not allowed from the current status")
)

// ChangeOrderUseCase manages the funded scope-change workflow. Approval only
// authorizes funding; escrow and paid are driven by the payment coordinator
// once the hold is confirmed respectively captured.
type ChangeOrderUseCase struct {
	orders    interfaces.ChangeOrderRepository
	jobs      interfaces.JobRepository
	publisher interfaces.EventPublisher
	logger    *slog.Logger
	limits    money.Limits
	orderTTL  time.Duration
	now       func() time.Time
}

func NewChangeOrderUseCase(
	orders interfaces.ChangeOrderRepository,
	jobs interfaces.JobRepository,
	publisher interfaces.EventPublisher,
	logger *slog.Logger,
	limits money.Limits,
	orderTTL time.Duration,
) *ChangeOrderUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeOrderUseCase{
		orders:    orders,
		jobs:      jobs,
		publisher: publisher,
		logger:    logger,
		limits:    limits,
		orderTTL:  orderTTL,
		now:       time.Now,
	}
}

// Create raises a scope addition. Only the assigned mechanic may propose,
// and only while the job is in progress.
func (u *ChangeOrderUseCase) Create(ctx context.Context, jobID string, actor entities.Actor, amountCents int64, description string) (entities.ChangeOrder, error) {
	jobID = strings.TrimSpace(jobID)
	description = strings.TrimSpace(description)
	if jobID == "" || description == "" {
		return entities.ChangeOrder{}, ErrInvalidChangeOrder
	}
	if err := u.limits.Validate(amountCents); err != nil {
		return entities.ChangeOrder{}, err
	}

	job, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return entities.ChangeOrder{}, err
	}
	if job.ID == "" {
		return entities.ChangeOrder{}, ErrJobNotFound
	}
	if actor.Role != entities.RoleMechanic || actor.ID != job.MechanicID {
		u.logger.Warn("change order creation denied",
			slog.String("job_id", job.ID),
			slog.String("actor_id", actor.ID),
			slog.String("actor_role", string(actor.Role)),
		)
		return entities.ChangeOrder{}, ErrActorNotAllowed
	}
	if job.Status != entities.JobStatusInProgress {
		return entities.ChangeOrder{}, ErrJobNotInProgress
	}

	now := u.now().UTC()
	order := entities.ChangeOrder{
		ID:          uuid.NewString(),
		JobID:       job.ID,
		ProposedBy:  actor.ID,
		AmountCents: amountCents,
		Description: description,
		Status:      entities.ChangeOrderStatusPending,
		ExpiresAt:   now.Add(u.orderTTL),
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}

	created, err := u.orders.Create(ctx, order)
	if err != nil {
		return entities.ChangeOrder{}, err
	}

	u.logger.Info("change order created",
		slog.String("change_order_id", created.ID),
		slog.String("job_id", job.ID),
		slog.Int64("amount_cents", amountCents),
	)
	u.publisher.Publish(ctx, events.New(events.TopicChangeOrderCreated, job.ID, actor.ID, events.StatusChanged{
		JobID:         job.ID,
		ChangeOrderID: created.ID,
		To:            string(entities.ChangeOrderStatusPending),
		AmountCents:   amountCents,
	}))

	return created, nil
}

// Approve authorizes funding. It does not create the hold; the payment
// coordinator does, and only its confirmation moves the order to escrow.
func (u *ChangeOrderUseCase) Approve(ctx context.Context, orderID string, actor entities.Actor, version int64) (entities.ChangeOrder, error) {
	return u.decide(ctx, orderID, actor, version, entities.ChangeOrderStatusApproved, events.TopicChangeOrderApproved)
}

// Reject declines the proposal; rejected is terminal.
func (u *ChangeOrderUseCase) Reject(ctx context.Context, orderID string, actor entities.Actor, version int64) (entities.ChangeOrder, error) {
	return u.decide(ctx, orderID, actor, version, entities.ChangeOrderStatusRejected, events.TopicChangeOrderRejected)
}

func (u *ChangeOrderUseCase) decide(ctx context.Context, orderID string, actor entities.Actor, version int64, target entities.ChangeOrderStatus, topic string) (entities.ChangeOrder, error) {
	order, err := u.GetByID(ctx, orderID)
	if err != nil {
		return entities.ChangeOrder{}, err
	}

	job, err := u.jobs.GetByID(ctx, order.JobID)
	if err != nil {
		return entities.ChangeOrder{}, err
	}
	if actor.Role != entities.RoleCustomer || actor.ID != job.CustomerID {
		u.logger.Warn("change order decision denied",
			slog.String("change_order_id", order.ID),
			slog.String("actor_id", actor.ID),
			slog.String("actor_role", string(actor.Role)),
		)
		return entities.ChangeOrder{}, ErrActorNotAllowed
	}
	if !order.Status.CanTransitionTo(target) {
		return entities.ChangeOrder{}, ErrChangeOrderTransition
	}

	from := order.Status
	order.Status = target
	order.UpdatedAt = u.now().UTC()

	updated, err := u.orders.Update(ctx, order, version)
	if err != nil {
		return entities.ChangeOrder{}, err
	}

	u.logger.Info("change order decided",
		slog.String("change_order_id", updated.ID),
		slog.String("from", string(from)),
		slog.String("to", string(target)),
	)
	u.publisher.Publish(ctx, events.New(topic, updated.JobID, actor.ID, events.StatusChanged{
		JobID:         updated.JobID,
		ChangeOrderID: updated.ID,
		From:          string(from),
		To:            string(target),
		AmountCents:   updated.AmountCents,
	}))

	return updated, nil
}

// MarkEscrow records that the payment hold for this order was confirmed.
// Called by the payment coordinator, never by an end user.
func (u *ChangeOrderUseCase) MarkEscrow(ctx context.Context, orderID, paymentID string) (entities.ChangeOrder, error) {
	order, err := u.GetByID(ctx, orderID)
	if err != nil {
		return entities.ChangeOrder{}, err
	}
	if order.Status == entities.ChangeOrderStatusEscrow && order.PaymentID == paymentID {
		return order, nil
	}
	if !order.Status.CanTransitionTo(entities.ChangeOrderStatusEscrow) {
		return entities.ChangeOrder{}, ErrChangeOrderTransition
	}

	from := order.Status
	order.Status = entities.ChangeOrderStatusEscrow
	order.PaymentID = paymentID
	order.UpdatedAt = u.now().UTC()

	updated, err := u.orders.Update(ctx, order, order.Version)
	if errors.Is(err, apperrors.ErrConflict) {
		// A concurrent confirmation for the same hold is a no-op.
		current, getErr := u.orders.GetByID(ctx, order.ID)
		if getErr == nil && current.Status == entities.ChangeOrderStatusEscrow && current.PaymentID == paymentID {
			return current, nil
		}
		return entities.ChangeOrder{}, err
	}
	if err != nil {
		return entities.ChangeOrder{}, err
	}

	u.publisher.Publish(ctx, events.New(events.TopicChangeOrderEscrow, updated.JobID, entities.SystemActor.ID, events.StatusChanged{
		JobID:         updated.JobID,
		ChangeOrderID: updated.ID,
		PaymentID:     paymentID,
		From:          string(from),
		To:            string(entities.ChangeOrderStatusEscrow),
		AmountCents:   updated.AmountCents,
	}))

	return updated, nil
}

// MarkPaid applies a captured hold: the order becomes paid and its amount is
// added to the job's additional work total, in one storage transaction and
// exactly once. Replaying the handler after a crash is a no-op because the
// FundsApplied flag travels in the same conditional write.
func (u *ChangeOrderUseCase) MarkPaid(ctx context.Context, orderID string) (entities.ChangeOrder, error) {
	order, err := u.GetByID(ctx, orderID)
	if err != nil {
		return entities.ChangeOrder{}, err
	}
	if order.Status == entities.ChangeOrderStatusPaid && order.FundsApplied {
		return order, nil
	}
	if !order.Status.CanTransitionTo(entities.ChangeOrderStatusPaid) {
		return entities.ChangeOrder{}, ErrChangeOrderTransition
	}

	job, err := u.jobs.GetByID(ctx, order.JobID)
	if err != nil {
		return entities.ChangeOrder{}, err
	}
	if job.ID == "" {
		return entities.ChangeOrder{}, ErrJobNotFound
	}

	now := u.now().UTC()
	from := order.Status
	orderVersion := order.Version
	jobVersion := job.Version

	order.Status = entities.ChangeOrderStatusPaid
	order.FundsApplied = true
	order.UpdatedAt = now
	job.AdditionalWorkCents += order.AmountCents
	job.UpdatedAt = now

	updatedOrder, _, err := u.orders.ApplyFunds(ctx, order, orderVersion, job, jobVersion)
	if errors.Is(err, apperrors.ErrConflict) {
		// A replay that lost the race: if the funds landed, we are done.
		current, getErr := u.orders.GetByID(ctx, order.ID)
		if getErr == nil && current.Status == entities.ChangeOrderStatusPaid && current.FundsApplied {
			return current, nil
		}
		return entities.ChangeOrder{}, err
	}
	if err != nil {
		return entities.ChangeOrder{}, err
	}

	u.logger.Info("change order paid",
		slog.String("change_order_id", updatedOrder.ID),
		slog.String("job_id", updatedOrder.JobID),
		slog.Int64("amount_cents", updatedOrder.AmountCents),
	)
	u.publisher.Publish(ctx, events.New(events.TopicChangeOrderPaid, updatedOrder.JobID, entities.SystemActor.ID, events.StatusChanged{
		JobID:         updatedOrder.JobID,
		ChangeOrderID: updatedOrder.ID,
		PaymentID:     updatedOrder.PaymentID,
		From:          string(from),
		To:            string(entities.ChangeOrderStatusPaid),
		AmountCents:   updatedOrder.AmountCents,
	}))

	return updatedOrder, nil
}

// Expire force-terminates an unattended order. Idempotent: terminal orders
// pass through unchanged.
func (u *ChangeOrderUseCase) Expire(ctx context.Context, orderID string) (entities.ChangeOrder, error) {
	order, err := u.GetByID(ctx, orderID)
	if err != nil {
		return entities.ChangeOrder{}, err
	}
	if order.Status.Terminal() {
		return order, nil
	}

	from := order.Status
	order.Status = entities.ChangeOrderStatusExpired
	order.UpdatedAt = u.now().UTC()

	updated, err := u.orders.Update(ctx, order, order.Version)
	if err != nil {
		return entities.ChangeOrder{}, err
	}

	u.publisher.Publish(ctx, events.New(events.TopicChangeOrderExpired, updated.JobID, entities.SystemActor.ID, events.StatusChanged{
		JobID:         updated.JobID,
		ChangeOrderID: updated.ID,
		From:          string(from),
		To:            string(entities.ChangeOrderStatusExpired),
	}))

	return updated, nil
}

func (u *ChangeOrderUseCase) GetByID(ctx context.Context, id string) (entities.ChangeOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.ChangeOrder{}, ErrInvalidChangeOrder
	}
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return entities.ChangeOrder{}, err
	}
	if order.ID == "" {
		return entities.ChangeOrder{}, ErrChangeOrderNotFound
	}
	return order, nil
}

func (u *ChangeOrderUseCase) ListByJobID(ctx context.Context, jobID string) ([]entities.ChangeOrder, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, ErrInvalidChangeOrder
	}
	return u.orders.ListByJobID(ctx, jobID)
}
