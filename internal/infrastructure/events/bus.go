// Package events fans domain events out to in-process subscribers and,
// through the RabbitMQ bridge, to external consumers.
package events

import (
	"context"
	"log/slog"
	"sync"

	domevents "mechmarket/internal/domain/events"
)

const subscriberBuffer = 256

type subscriber struct {
	name string
	ch   chan domevents.Event
}

// Bus is the in-process event publisher. Each subscriber owns a buffered
// channel drained by a single goroutine, so one slow consumer never stalls
// another and every subscriber observes events in publish order. When a
// buffer fills the event is dropped for that subscriber and logged; the
// domain write it describes has already committed.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscriber
	logger *slog.Logger
	wg     sync.WaitGroup
	closed bool
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers handler under name and starts its drain goroutine.
func (b *Bus) Subscribe(name string, handler func(domevents.Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	sub := &subscriber{name: name, ch: make(chan domevents.Event, subscriberBuffer)}
	b.subs = append(b.subs, sub)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for e := range sub.ch {
			handler(e)
		}
	}()
}

// Publish implements interfaces.EventPublisher.
func (b *Bus) Publish(_ context.Context, e domevents.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	for _, sub := range b.subs {
		select {
		case sub.ch <- e:
		default:
			b.logger.Warn("subscriber buffer full, dropping event",
				slog.String("subscriber", sub.name),
				slog.String("topic", e.Topic),
				slog.String("event_id", e.ID),
			)
		}
	}
}

// Close stops accepting events and waits for the subscribers to drain.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		close(sub.ch)
	}
	b.mu.Unlock()

	b.wg.Wait()
}
