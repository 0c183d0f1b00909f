package entities

import "time"

// JobStatus is the closed set of job lifecycle states. Transitions are only
// legal when listed in jobTransitions; anything else is rejected before any
// write happens.
type JobStatus string

const (
	JobStatusPosted     JobStatus = "posted"
	JobStatusBidding    JobStatus = "bidding"
	JobStatusAccepted   JobStatus = "accepted"
	JobStatusScheduled  JobStatus = "scheduled"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
	JobStatusDisputed   JobStatus = "disputed"
)

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPosted:     {JobStatusBidding, JobStatusCancelled},
	JobStatusBidding:    {JobStatusAccepted, JobStatusCancelled},
	JobStatusAccepted:   {JobStatusScheduled, JobStatusCancelled},
	JobStatusScheduled:  {JobStatusInProgress, JobStatusCancelled},
	JobStatusInProgress: {JobStatusCompleted, JobStatusDisputed},
	JobStatusDisputed:   {JobStatusCompleted, JobStatusCancelled},
	JobStatusCompleted:  {},
	JobStatusCancelled:  {},
}

func (s JobStatus) Valid() bool {
	_, ok := jobTransitions[s]
	return ok
}

// Terminal states accept no further mutation; this is what makes the
// expiration sweep idempotent.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	for _, t := range jobTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Urgency is advisory metadata set by the customer at posting time.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyStandard Urgency = "standard"
	UrgencyCritical Urgency = "critical"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyStandard, UrgencyCritical:
		return true
	}
	return false
}

// Job is one requested unit of work from a customer.
//
// Monetary fields are minor currency units (cents). AgreedPriceCents is set
// once at bid acceptance and only grows through AdditionalWorkCents, which
// accumulates paid change orders exactly once each.
//
// Version is the optimistic-concurrency counter; every repository update is
// conditional on it.
type Job struct {
	ID                  string    `json:"id"`
	DisplayNumber       int64     `json:"display_number"`
	CustomerID          string    `json:"customer_id"`
	MechanicID          string    `json:"mechanic_id,omitempty"`
	Status              JobStatus `json:"status"`
	Urgency             Urgency   `json:"urgency"`
	Category            string    `json:"category"`
	Description         string    `json:"description,omitempty"`
	RequestedPriceCents int64     `json:"requested_price_cents"`
	AgreedPriceCents    int64     `json:"agreed_price_cents,omitempty"`
	AdditionalWorkCents int64     `json:"additional_work_cents"`
	ExpiresAt           time.Time `json:"expires_at"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Version             int64     `json:"version"`
}

// jobEdge keys the per-transition authorization table.
type jobEdge struct {
	from JobStatus
	to   JobStatus
}

// AuthorizeJobTransition reports whether actor may drive job across the
// given edge. The edge itself must already be legal per jobTransitions.
// RoleSystem may drive every edge (scheduler expiry, dispute resolution).
func AuthorizeJobTransition(job Job, target JobStatus, actor Actor) bool {
	if actor.Role == RoleSystem {
		return true
	}

	isCustomer := actor.Role == RoleCustomer && actor.ID == job.CustomerID
	isMechanic := actor.Role == RoleMechanic && actor.ID == job.MechanicID

	switch (jobEdge{from: job.Status, to: target}) {
	case jobEdge{JobStatusPosted, JobStatusBidding}:
		// Driven by the first bid submission.
		return actor.Role == RoleMechanic
	case jobEdge{JobStatusPosted, JobStatusCancelled},
		jobEdge{JobStatusBidding, JobStatusCancelled}:
		return isCustomer
	case jobEdge{JobStatusBidding, JobStatusAccepted}:
		return isCustomer
	case jobEdge{JobStatusAccepted, JobStatusScheduled},
		jobEdge{JobStatusScheduled, JobStatusInProgress},
		jobEdge{JobStatusInProgress, JobStatusCompleted}:
		return isMechanic
	case jobEdge{JobStatusAccepted, JobStatusCancelled},
		jobEdge{JobStatusScheduled, JobStatusCancelled}:
		return isCustomer || isMechanic
	case jobEdge{JobStatusInProgress, JobStatusDisputed}:
		return isCustomer || isMechanic
	case jobEdge{JobStatusDisputed, JobStatusCompleted},
		jobEdge{JobStatusDisputed, JobStatusCancelled}:
		// Dispute resolution is a back-office action.
		return false
	}
	return false
}
