package interfaces

import "context"

// DisplayNumberAllocator hands out the human-facing job numbers. Backed by a
// database sequence so numbering survives process restarts; entity ids stay
// UUIDs and never depend on it.
type DisplayNumberAllocator interface {
	NextJobNumber(ctx context.Context) (int64, error)
}
