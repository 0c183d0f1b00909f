package usecase

import (
	"context"
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
	ErrJobNotFound       = apperrors.NotFound("JOB_NOT_FOUND", "job not found")
	ErrInvalidJobInput   = apperrors.Validation("INVALID_JOB_INPUT", "invalid job input")
	ErrInvalidTransition = apperrors.Validation("INVALID_TRANSITION", "status change not allowed from the current status")
	ErrActorNotAllowed   = apperrors.Authorization("ACTOR_NOT_ALLOWED", "actor is not permitted to perform this action")
	ErrAcceptViaBidOnly  = apperrors.Validation("ACCEPT_VIA_BID", "a job is accepted by accepting one of its bids")

	// ErrBasePaymentNotSettled blocks completion while a base-job hold is
	// still outstanding; capturing it and retrying resolves the conflict.
	ErrBasePaymentNotSettled = &apperrors.AppError{
		Kind:       apperrors.KindConflict,
		Code:       "BASE_PAYMENT_NOT_SETTLED",
		Message:    "the base job payment must be captured before completion; capture it and retry",
		HTTPStatus: 409,
	}
)

// JobUseCase owns the job state machine: it validates edges, authorizes the
// acting party per edge and applies every change through a version-guarded
// write.
type JobUseCase struct {
	jobs      interfaces.JobRepository
	payments  interfaces.PaymentRepository
	sequence  interfaces.DisplayNumberAllocator
	publisher interfaces.EventPublisher
	logger    *slog.Logger
	jobTTL    time.Duration
	now       func() time.Time
}

func NewJobUseCase(
	jobs interfaces.JobRepository,
	payments interfaces.PaymentRepository,
	sequence interfaces.DisplayNumberAllocator,
	publisher interfaces.EventPublisher,
	logger *slog.Logger,
	jobTTL time.Duration,
) *JobUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobUseCase{
		jobs:      jobs,
		payments:  payments,
		sequence:  sequence,
		publisher: publisher,
		logger:    logger,
		jobTTL:    jobTTL,
		now:       time.Now,
	}
}

// CreateJobInput carries the customer-supplied posting fields.
type CreateJobInput struct {
	Urgency             entities.Urgency
	Category            string
	Description         string
	RequestedPriceCents int64
}

func (u *JobUseCase) CreateJob(ctx context.Context, customerID string, in CreateJobInput) (entities.Job, error) {
	customerID = strings.TrimSpace(customerID)
	in.Category = strings.TrimSpace(in.Category)

	if customerID == "" || in.Category == "" || in.RequestedPriceCents <= 0 {
		return entities.Job{}, ErrInvalidJobInput
	}
	if in.Urgency == "" {
		in.Urgency = entities.UrgencyStandard
	}
	if !in.Urgency.Valid() {
		return entities.Job{}, ErrInvalidJobInput
	}

	number, err := u.sequence.NextJobNumber(ctx)
	if err != nil {
		return entities.Job{}, err
	}

	now := u.now().UTC()
	job := entities.Job{
		ID:                  uuid.NewString(),
		DisplayNumber:       number,
		CustomerID:          customerID,
		Status:              entities.JobStatusPosted,
		Urgency:             in.Urgency,
		Category:            in.Category,
		Description:         strings.TrimSpace(in.Description),
		RequestedPriceCents: in.RequestedPriceCents,
		ExpiresAt:           now.Add(u.jobTTL),
		CreatedAt:           now,
		UpdatedAt:           now,
		Version:             1,
	}

	created, err := u.jobs.Create(ctx, job)
	if err != nil {
		return entities.Job{}, err
	}

	u.logger.Info("job posted",
		slog.String("job_id", created.ID),
		slog.Int64("display_number", created.DisplayNumber),
		slog.String("category", created.Category),
	)
	u.publisher.Publish(ctx, events.New(events.TopicJobStatusChanged, created.ID, customerID, events.StatusChanged{
		JobID: created.ID,
		To:    string(entities.JobStatusPosted),
	}))

	return created, nil
}

func (u *JobUseCase) GetByID(ctx context.Context, id string) (entities.Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Job{}, ErrInvalidJobInput
	}
	job, err := u.jobs.GetByID(ctx, id)
	if err != nil {
		return entities.Job{}, err
	}
	if job.ID == "" {
		return entities.Job{}, ErrJobNotFound
	}
	return job, nil
}

// Transition moves the job to target on behalf of actor, using the
// caller-supplied version as the compare-and-set token. A stale version
// yields ErrConflict with nothing applied.
func (u *JobUseCase) Transition(ctx context.Context, jobID string, target entities.JobStatus, actor entities.Actor, version int64) (entities.Job, error) {
	if !target.Valid() {
		return entities.Job{}, ErrInvalidTransition
	}

	job, err := u.GetByID(ctx, jobID)
	if err != nil {
		return entities.Job{}, err
	}

	from := job.Status
	if !from.CanTransitionTo(target) {
		return entities.Job{}, ErrInvalidTransition
	}
	if target == entities.JobStatusAccepted {
		// Acceptance carries mechanic assignment and the agreed price, so it
		// only happens through the bid ledger.
		return entities.Job{}, ErrAcceptViaBidOnly
	}
	if !entities.AuthorizeJobTransition(job, target, actor) {
		u.logger.Warn("job transition denied",
			slog.String("job_id", job.ID),
			slog.String("from", string(from)),
			slog.String("to", string(target)),
			slog.String("actor_id", actor.ID),
			slog.String("actor_role", string(actor.Role)),
		)
		return entities.Job{}, ErrActorNotAllowed
	}
	if target == entities.JobStatusCompleted {
		if err := u.requireBasePaymentSettled(ctx, job.ID); err != nil {
			return entities.Job{}, err
		}
	}

	job.Status = target
	job.UpdatedAt = u.now().UTC()

	updated, err := u.jobs.Update(ctx, job, version)
	if err != nil {
		return entities.Job{}, err
	}

	u.logger.Info("job status changed",
		slog.String("job_id", updated.ID),
		slog.String("from", string(from)),
		slog.String("to", string(target)),
		slog.String("actor_id", actor.ID),
	)
	u.publisher.Publish(ctx, events.New(events.TopicJobStatusChanged, updated.ID, actor.ID, events.StatusChanged{
		JobID: updated.ID,
		From:  string(from),
		To:    string(target),
	}))

	return updated, nil
}

// requireBasePaymentSettled blocks completion while a base-job hold exists
// that was neither captured nor resolved. Jobs without any base payment
// record settle out of band and pass.
func (u *JobUseCase) requireBasePaymentSettled(ctx context.Context, jobID string) error {
	records, err := u.payments.ListByJobID(ctx, jobID)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.ChangeOrderID != "" {
			continue
		}
		if r.Status == entities.PaymentStatusPending || r.Status == entities.PaymentStatusAuthorized {
			return ErrBasePaymentNotSettled
		}
	}
	return nil
}
