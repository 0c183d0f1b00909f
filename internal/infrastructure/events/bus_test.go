package events

import (
	"context"
	"sync"
	"testing"
	"time"

	domevents "mechmarket/internal/domain/events"
)

func TestBus_DeliversInOrderToEachSubscriber(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	var mu sync.Mutex
	received := map[string][]string{}
	for _, name := range []string{"metrics", "bridge"} {
		name := name
		bus.Subscribe(name, func(e domevents.Event) {
			mu.Lock()
			received[name] = append(received[name], e.Topic)
			mu.Unlock()
		})
	}

	topics := []string{"job.status_changed", "bid.submitted", "bid.accepted", "payment.authorized"}
	for _, topic := range topics {
		bus.Publish(context.Background(), domevents.New(topic, "job-1", "system", nil))
	}
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	for name, got := range received {
		if len(got) != len(topics) {
			t.Fatalf("%s received %d events, want %d", name, len(got), len(topics))
		}
		for i, topic := range topics {
			if got[i] != topic {
				t.Fatalf("%s got %v, want %v", name, got, topics)
			}
		}
	}
	if len(received) != 2 {
		t.Fatalf("expected both subscribers to receive, got %v", received)
	}
}

func TestBus_PublishAfterCloseIsSafe(t *testing.T) {
	bus := NewBus(nil)
	bus.Subscribe("noop", func(domevents.Event) {})
	bus.Close()

	// Must not panic or block.
	done := make(chan struct{})
	go func() {
		bus.Publish(context.Background(), domevents.New("job.expired", "job-1", "system", nil))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish after close blocked")
	}
}

func TestBus_SubscribeAfterCloseIsIgnored(t *testing.T) {
	bus := NewBus(nil)
	bus.Close()

	called := make(chan struct{}, 1)
	bus.Subscribe("late", func(domevents.Event) { called <- struct{}{} })
	bus.Publish(context.Background(), domevents.New("job.expired", "job-1", "system", nil))

	select {
	case <-called:
		t.Fatal("late subscriber should not receive events")
	case <-time.After(50 * time.Millisecond):
	}
}
