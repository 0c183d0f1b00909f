package sequence

import (
	"context"
	"sync/atomic"

	"mechmarket/internal/usecase/interfaces"
)

// LocalAllocator is the fallback when Postgres is not configured. Numbers
// are unique within one process only; deployments that care about stable
// display numbers run the Postgres sequence.
type LocalAllocator struct {
	next atomic.Int64
}

var _ interfaces.DisplayNumberAllocator = (*LocalAllocator)(nil)

func NewLocalAllocator() *LocalAllocator {
	a := &LocalAllocator{}
	a.next.Store(999)
	return a
}

func (a *LocalAllocator) NextJobNumber(_ context.Context) (int64, error) {
	return a.next.Add(1), nil
}
