package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"mechmarket/internal/domain/entities"
	"mechmarket/internal/domain/events"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *capturePublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Topic)
	}
	return out
}

func (p *capturePublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Topic == topic {
			n++
		}
	}
	return n
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func customer(id string) entities.Actor {
	return entities.Actor{ID: id, Role: entities.RoleCustomer}
}

func mechanic(id string) entities.Actor {
	return entities.Actor{ID: id, Role: entities.RoleMechanic}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
