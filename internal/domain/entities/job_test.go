package entities

import "testing"

func TestJobStatusTransitions(t *testing.T) {
	all := []JobStatus{
		JobStatusPosted, JobStatusBidding, JobStatusAccepted, JobStatusScheduled,
		JobStatusInProgress, JobStatusCompleted, JobStatusCancelled, JobStatusDisputed,
	}

	allowed := map[JobStatus][]JobStatus{
		JobStatusPosted:     {JobStatusBidding, JobStatusCancelled},
		JobStatusBidding:    {JobStatusAccepted, JobStatusCancelled},
		JobStatusAccepted:   {JobStatusScheduled, JobStatusCancelled},
		JobStatusScheduled:  {JobStatusInProgress, JobStatusCancelled},
		JobStatusInProgress: {JobStatusCompleted, JobStatusDisputed},
		JobStatusDisputed:   {JobStatusCompleted, JobStatusCancelled},
	}

	for _, from := range all {
		want := map[JobStatus]bool{}
		for _, to := range allowed[from] {
			want[to] = true
		}
		for _, to := range all {
			if got := from.CanTransitionTo(to); got != want[to] {
				t.Fatalf("%s -> %s: got %v, want %v", from, to, got, want[to])
			}
		}
	}
}

func TestJobStatusTerminal(t *testing.T) {
	if !JobStatusCompleted.Terminal() || !JobStatusCancelled.Terminal() {
		t.Fatal("completed and cancelled must be terminal")
	}
	for _, s := range []JobStatus{JobStatusPosted, JobStatusBidding, JobStatusAccepted, JobStatusScheduled, JobStatusInProgress, JobStatusDisputed} {
		if s.Terminal() {
			t.Fatalf("%s must not be terminal", s)
		}
	}
	if JobStatus("unknown").Valid() {
		t.Fatal("unknown status must not validate")
	}
}

func TestAuthorizeJobTransition(t *testing.T) {
	job := Job{
		ID:         "job-1",
		CustomerID: "cust-1",
		MechanicID: "mech-1",
	}
	customer := Actor{ID: "cust-1", Role: RoleCustomer}
	mechanic := Actor{ID: "mech-1", Role: RoleMechanic}
	otherMechanic := Actor{ID: "mech-2", Role: RoleMechanic}

	cases := []struct {
		name   string
		from   JobStatus
		to     JobStatus
		actor  Actor
		expect bool
	}{
		{"customer cancels posted", JobStatusPosted, JobStatusCancelled, customer, true},
		{"mechanic cannot cancel posted", JobStatusPosted, JobStatusCancelled, mechanic, false},
		{"customer accepts from bidding", JobStatusBidding, JobStatusAccepted, customer, true},
		{"mechanic cannot accept", JobStatusBidding, JobStatusAccepted, mechanic, false},
		{"assigned mechanic schedules", JobStatusAccepted, JobStatusScheduled, mechanic, true},
		{"other mechanic cannot schedule", JobStatusAccepted, JobStatusScheduled, otherMechanic, false},
		{"customer cannot schedule", JobStatusAccepted, JobStatusScheduled, customer, false},
		{"assigned mechanic starts work", JobStatusScheduled, JobStatusInProgress, mechanic, true},
		{"assigned mechanic completes", JobStatusInProgress, JobStatusCompleted, mechanic, true},
		{"customer disputes in progress", JobStatusInProgress, JobStatusDisputed, customer, true},
		{"mechanic disputes in progress", JobStatusInProgress, JobStatusDisputed, mechanic, true},
		{"either party cancels accepted", JobStatusAccepted, JobStatusCancelled, mechanic, true},
		{"customer cancels scheduled", JobStatusScheduled, JobStatusCancelled, customer, true},
		{"customer cannot resolve dispute", JobStatusDisputed, JobStatusCompleted, customer, false},
		{"mechanic cannot resolve dispute", JobStatusDisputed, JobStatusCancelled, mechanic, false},
		{"system resolves dispute", JobStatusDisputed, JobStatusCancelled, SystemActor, true},
		{"system expires bidding", JobStatusBidding, JobStatusCancelled, SystemActor, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			j := job
			j.Status = tc.from
			if got := AuthorizeJobTransition(j, tc.to, tc.actor); got != tc.expect {
				t.Fatalf("%s -> %s as %s/%s: got %v, want %v", tc.from, tc.to, tc.actor.Role, tc.actor.ID, got, tc.expect)
			}
		})
	}
}
