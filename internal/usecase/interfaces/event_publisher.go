package interfaces

import (
	"context"

	"mechmarket/internal/domain/events"
)

// EventPublisher decouples the core from presentation and notification
// consumers. Publish is fire-and-forget: it must not block domain writes and
// a delivery failure never rolls a transaction back.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}
