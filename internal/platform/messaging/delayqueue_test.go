package messaging

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"coopvotes/contexts/governance/voting-sessions/ports"
)

func newTestBroker(retry RetryPolicy) *Broker {
	broker := NewBroker(retry, nil)
	broker.DeclareQueue(RouteKeySessionClose, QueueSessionClose, QueueSessionCloseDLQ)
	return broker
}

func TestPublishUnknownRoutingKey(t *testing.T) {
	broker := NewBroker(DefaultRetryPolicy(), nil)
	err := broker.Publish(context.Background(), "unbound.key", ports.ClosureMessage{SessionID: "s1"}, 0)
	if err == nil {
		t.Fatal("expected an error for an unbound routing key")
	}
}

func TestSubscribeUnknownQueue(t *testing.T) {
	broker := NewBroker(DefaultRetryPolicy(), nil)
	err := broker.Subscribe(context.Background(), "missing.q", func(context.Context, ports.ClosureMessage) error {
		return nil
	})
	if err == nil {
		t.Fatal("expected an error for an undeclared queue")
	}
}

func TestPublishDeliversImmediatelyWithoutDelay(t *testing.T) {
	broker := newTestBroker(DefaultRetryPolicy())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan ports.ClosureMessage, 1)
	err := broker.Subscribe(ctx, QueueSessionClose, func(_ context.Context, msg ports.ClosureMessage) error {
		received <- msg
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := broker.Publish(ctx, RouteKeySessionClose, ports.ClosureMessage{SessionID: "s1", TraceID: "t1"}, 0); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg.SessionID != "s1" || msg.TraceID != "t1" {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
	}
}

func TestPublishHoldsMessageForDelay(t *testing.T) {
	broker := newTestBroker(DefaultRetryPolicy())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan time.Time, 1)
	err := broker.Subscribe(ctx, QueueSessionClose, func(context.Context, ports.ClosureMessage) error {
		received <- time.Now()
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	delay := 50 * time.Millisecond
	published := time.Now()
	if err := broker.Publish(ctx, RouteKeySessionClose, ports.ClosureMessage{SessionID: "s1"}, delay); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case deliveredAt := <-received:
		if elapsed := deliveredAt.Sub(published); elapsed < delay {
			t.Fatalf("message delivered after %s, before the %s delay", elapsed, delay)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("delayed message was not delivered")
	}
}

func TestExhaustedRetriesDeadLetter(t *testing.T) {
	broker := newTestBroker(RetryPolicy{
		MaxAttempts: 3,
		Initial:     time.Millisecond,
		Factor:      2.0,
		Max:         4 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts atomic.Int64
	err := broker.Subscribe(ctx, QueueSessionClose, func(context.Context, ports.ClosureMessage) error {
		attempts.Add(1)
		return errors.New("session not found")
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := broker.Publish(ctx, RouteKeySessionClose, ports.ClosureMessage{SessionID: "s1", TraceID: "t1"}, 0); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(broker.DeadLetters(QueueSessionCloseDLQ)) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	dead := broker.DeadLetters(QueueSessionCloseDLQ)
	if len(dead) != 1 || dead[0].SessionID != "s1" {
		t.Fatalf("expected the message dead-lettered once, got %+v", dead)
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected exactly 3 delivery attempts, got %d", got)
	}
}

func TestConsumerIsSerialized(t *testing.T) {
	broker := newTestBroker(DefaultRetryPolicy())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var active, maxActive, handled atomic.Int64
	done := make(chan struct{})
	err := broker.Subscribe(ctx, QueueSessionClose, func(context.Context, ports.ClosureMessage) error {
		current := active.Add(1)
		for {
			seen := maxActive.Load()
			if current <= seen || maxActive.CompareAndSwap(seen, current) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		if handled.Add(1) == 3 {
			close(done)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := broker.Publish(ctx, RouteKeySessionClose, ports.ClosureMessage{SessionID: "s"}, 0); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not all messages were consumed")
	}
	if maxActive.Load() != 1 {
		t.Fatalf("expected serialized consumption, saw %d concurrent deliveries", maxActive.Load())
	}
}
