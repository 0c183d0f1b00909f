// Package memory is a mutex-guarded in-memory implementation of the
// persistence ports. It honors the same version-guard and atomicity contract
// as the DynamoDB adapter, which makes it the storage used by the usecase
// concurrency tests and by local development without infrastructure.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mechmarket/internal/domain/entities"
	"mechmarket/pkg/apperrors"
)

// Store holds every aggregate behind one lock so multi-item operations are
// naturally all-or-nothing.
type Store struct {
	mu         sync.Mutex
	jobs       map[string]entities.Job
	bids       map[string]entities.Bid
	orders     map[string]entities.ChangeOrder
	payments   map[string]entities.PaymentRecord
	paymentKey map[string]string
	nextNumber int64
}

func NewStore() *Store {
	return &Store{
		jobs:       make(map[string]entities.Job),
		bids:       make(map[string]entities.Bid),
		orders:     make(map[string]entities.ChangeOrder),
		payments:   make(map[string]entities.PaymentRecord),
		paymentKey: make(map[string]string),
	}
}

// NextJobNumber implements interfaces.DisplayNumberAllocator.
func (s *Store) NextJobNumber(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNumber++
	return s.nextNumber, nil
}

// Jobs. Each port is a facade over the same store and lock.

// JobStore returns the store's interfaces.JobRepository facade.
func (s *Store) JobStore() *JobStore { return &JobStore{s: s} }

type JobStore struct {
	s *Store
}

func (j *JobStore) Create(_ context.Context, job entities.Job) (entities.Job, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	if _, ok := j.s.jobs[job.ID]; ok {
		return entities.Job{}, apperrors.ErrConflict
	}
	j.s.jobs[job.ID] = job
	return job, nil
}

func (j *JobStore) GetByID(_ context.Context, id string) (entities.Job, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	return j.s.jobs[id], nil
}

func (j *JobStore) Update(_ context.Context, job entities.Job, expectedVersion int64) (entities.Job, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	return j.s.updateJobLocked(job, expectedVersion)
}

func (s *Store) updateJobLocked(job entities.Job, expectedVersion int64) (entities.Job, error) {
	current, ok := s.jobs[job.ID]
	if !ok || current.Version != expectedVersion {
		return entities.Job{}, apperrors.ErrConflict
	}
	job.Version = expectedVersion + 1
	s.jobs[job.ID] = job
	return job, nil
}

func (j *JobStore) ListExpiring(_ context.Context, before time.Time) ([]entities.Job, error) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	var out []entities.Job
	for _, job := range j.s.jobs {
		if !job.Status.Terminal() && job.ExpiresAt.Before(before) {
			out = append(out, job)
		}
	}
	sortByID(out, func(jb entities.Job) string { return jb.ID })
	return out, nil
}

// Bids.

// BidStore returns the store's interfaces.BidRepository facade.
func (s *Store) BidStore() *BidStore { return &BidStore{s: s} }

type BidStore struct {
	s *Store
}

func (b *BidStore) Create(_ context.Context, bid entities.Bid) (entities.Bid, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if _, ok := b.s.bids[bid.ID]; ok {
		return entities.Bid{}, apperrors.ErrConflict
	}
	b.s.bids[bid.ID] = bid
	return bid, nil
}

func (b *BidStore) GetByID(_ context.Context, id string) (entities.Bid, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return b.s.bids[id], nil
}

func (b *BidStore) ListByJobID(_ context.Context, jobID string) ([]entities.Bid, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	var out []entities.Bid
	for _, bid := range b.s.bids {
		if bid.JobID == jobID {
			out = append(out, bid)
		}
	}
	sortByID(out, func(bd entities.Bid) string { return bd.ID })
	return out, nil
}

func (b *BidStore) Update(_ context.Context, bid entities.Bid, expectedVersion int64) (entities.Bid, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	current, ok := b.s.bids[bid.ID]
	if !ok || current.Version != expectedVersion {
		return entities.Bid{}, apperrors.ErrConflict
	}
	bid.Version = expectedVersion + 1
	b.s.bids[bid.ID] = bid
	return bid, nil
}

func (b *BidStore) AcceptBid(_ context.Context, job entities.Job, jobVersion int64, winner entities.Bid, siblings []entities.Bid) (entities.Job, entities.Bid, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	currentJob, ok := b.s.jobs[job.ID]
	if !ok || currentJob.Version != jobVersion {
		return entities.Job{}, entities.Bid{}, apperrors.ErrConflict
	}
	currentWinner, ok := b.s.bids[winner.ID]
	if !ok || currentWinner.Status != entities.BidStatusPending {
		return entities.Job{}, entities.Bid{}, apperrors.ErrConflict
	}
	for _, sib := range siblings {
		cur, ok := b.s.bids[sib.ID]
		if !ok || cur.Status != entities.BidStatusPending {
			return entities.Job{}, entities.Bid{}, apperrors.ErrConflict
		}
	}

	job.Version = jobVersion + 1
	b.s.jobs[job.ID] = job
	winner.Version = currentWinner.Version + 1
	b.s.bids[winner.ID] = winner
	for _, sib := range siblings {
		sib.Version = b.s.bids[sib.ID].Version + 1
		b.s.bids[sib.ID] = sib
	}

	return job, winner, nil
}

func (b *BidStore) ListExpiring(_ context.Context, before time.Time) ([]entities.Bid, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	var out []entities.Bid
	for _, bid := range b.s.bids {
		if bid.Status == entities.BidStatusPending && bid.ExpiresAt.Before(before) {
			out = append(out, bid)
		}
	}
	sortByID(out, func(bd entities.Bid) string { return bd.ID })
	return out, nil
}

// Change orders.

// OrderStore returns the store's interfaces.ChangeOrderRepository facade.
func (s *Store) OrderStore() *OrderStore { return &OrderStore{s: s} }

type OrderStore struct {
	s *Store
}

func (o *OrderStore) Create(_ context.Context, order entities.ChangeOrder) (entities.ChangeOrder, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	if _, ok := o.s.orders[order.ID]; ok {
		return entities.ChangeOrder{}, apperrors.ErrConflict
	}
	o.s.orders[order.ID] = order
	return order, nil
}

func (o *OrderStore) GetByID(_ context.Context, id string) (entities.ChangeOrder, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	return o.s.orders[id], nil
}

func (o *OrderStore) ListByJobID(_ context.Context, jobID string) ([]entities.ChangeOrder, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	var out []entities.ChangeOrder
	for _, ord := range o.s.orders {
		if ord.JobID == jobID {
			out = append(out, ord)
		}
	}
	sortByID(out, func(co entities.ChangeOrder) string { return co.ID })
	return out, nil
}

func (o *OrderStore) Update(_ context.Context, order entities.ChangeOrder, expectedVersion int64) (entities.ChangeOrder, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	current, ok := o.s.orders[order.ID]
	if !ok || current.Version != expectedVersion {
		return entities.ChangeOrder{}, apperrors.ErrConflict
	}
	order.Version = expectedVersion + 1
	o.s.orders[order.ID] = order
	return order, nil
}

func (o *OrderStore) ApplyFunds(_ context.Context, order entities.ChangeOrder, orderVersion int64, job entities.Job, jobVersion int64) (entities.ChangeOrder, entities.Job, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	currentOrder, ok := o.s.orders[order.ID]
	if !ok || currentOrder.Version != orderVersion || currentOrder.FundsApplied {
		return entities.ChangeOrder{}, entities.Job{}, apperrors.ErrConflict
	}

	updatedJob, err := o.s.updateJobLocked(job, jobVersion)
	if err != nil {
		return entities.ChangeOrder{}, entities.Job{}, err
	}
	order.Version = orderVersion + 1
	o.s.orders[order.ID] = order

	return order, updatedJob, nil
}

func (o *OrderStore) ListExpiring(_ context.Context, before time.Time) ([]entities.ChangeOrder, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	var out []entities.ChangeOrder
	for _, ord := range o.s.orders {
		if !ord.Status.Terminal() && ord.ExpiresAt.Before(before) {
			out = append(out, ord)
		}
	}
	sortByID(out, func(co entities.ChangeOrder) string { return co.ID })
	return out, nil
}

// Payments.

// PaymentStore returns the store's interfaces.PaymentRepository facade.
func (s *Store) PaymentStore() *PaymentStore { return &PaymentStore{s: s} }

type PaymentStore struct {
	s *Store
}

func (p *PaymentStore) Create(_ context.Context, record entities.PaymentRecord) (entities.PaymentRecord, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.payments[record.ID]; ok {
		return entities.PaymentRecord{}, apperrors.ErrConflict
	}
	if _, ok := p.s.paymentKey[record.IdempotencyKey]; ok {
		return entities.PaymentRecord{}, apperrors.ErrConflict
	}
	p.s.payments[record.ID] = record
	p.s.paymentKey[record.IdempotencyKey] = record.ID
	return record, nil
}

func (p *PaymentStore) GetByID(_ context.Context, id string) (entities.PaymentRecord, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.s.payments[id], nil
}

func (p *PaymentStore) GetByIdempotencyKey(_ context.Context, key string) (entities.PaymentRecord, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.s.payments[p.s.paymentKey[key]], nil
}

func (p *PaymentStore) ListByJobID(_ context.Context, jobID string) ([]entities.PaymentRecord, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	var out []entities.PaymentRecord
	for _, r := range p.s.payments {
		if r.JobID == jobID {
			out = append(out, r)
		}
	}
	sortByID(out, func(r entities.PaymentRecord) string { return r.ID })
	return out, nil
}

func (p *PaymentStore) Update(_ context.Context, record entities.PaymentRecord, expectedVersion int64) (entities.PaymentRecord, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	current, ok := p.s.payments[record.ID]
	if !ok || current.Version != expectedVersion {
		return entities.PaymentRecord{}, apperrors.ErrConflict
	}
	record.Version = expectedVersion + 1
	p.s.payments[record.ID] = record
	return record, nil
}

func sortByID[T any](items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
