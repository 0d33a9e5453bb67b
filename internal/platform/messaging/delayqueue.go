package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"coopvotes/contexts/governance/voting-sessions/ports"
)

// Queue topology for session closure instructions: a delay-capable exchange
// routes by a fixed key into the closure queue, which dead-letters exhausted
// deliveries into a separate queue for operator triage.
const (
	RouteKeySessionClose = "session.close"
	QueueSessionClose    = "session.close.q"
	QueueSessionCloseDLQ = "session.close.dlq"
)

// RetryPolicy bounds redelivery of a failing message before it is rejected
// into the dead-letter queue. Backoff grows exponentially from Initial by
// Factor up to Max.
type RetryPolicy struct {
	MaxAttempts int
	Initial     time.Duration
	Factor      float64
	Max         time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		Initial:     time.Second,
		Factor:      2.0,
		Max:         10 * time.Second,
	}
}

type binding struct {
	queue      string
	deadLetter string
}

// Broker is the delay-capable message channel used for closure instructions.
// Current implementation is in-process while runtime wiring is finalized for
// external brokers: messages are held invisible until their per-message delay
// elapses, then routed by routing key into the bound queue. Each queue has
// exactly one serialized consumer.
type Broker struct {
	mu          sync.RWMutex
	bindings    map[string]binding
	queues      map[string]chan ports.ClosureMessage
	deadLetters map[string][]ports.ClosureMessage
	retry       RetryPolicy
	logger      *slog.Logger
}

func NewBroker(retry RetryPolicy, logger *slog.Logger) *Broker {
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy()
	}
	return &Broker{
		bindings:    make(map[string]binding),
		queues:      make(map[string]chan ports.ClosureMessage),
		deadLetters: make(map[string][]ports.ClosureMessage),
		retry:       retry,
		logger:      logger,
	}
}

// DeclareQueue binds a routing key to a queue and its dead-letter target.
func (b *Broker) DeclareQueue(routingKey string, queue string, deadLetterQueue string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bindings[routingKey] = binding{queue: queue, deadLetter: deadLetterQueue}
	if _, ok := b.queues[queue]; !ok {
		b.queues[queue] = make(chan ports.ClosureMessage, 128)
	}
	if _, ok := b.deadLetters[deadLetterQueue]; !ok {
		b.deadLetters[deadLetterQueue] = nil
	}
}

// Publish holds the message for delay, then routes it by routing key. The
// delay is a per-message property, not part of the payload.
func (b *Broker) Publish(ctx context.Context, routingKey string, msg ports.ClosureMessage, delay time.Duration) error {
	b.mu.RLock()
	bound, ok := b.bindings[routingKey]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no queue bound to routing key %q", routingKey)
	}

	if delay <= 0 {
		b.deliver(bound.queue, msg)
	} else {
		time.AfterFunc(delay, func() {
			b.deliver(bound.queue, msg)
		})
	}
	if b.logger != nil {
		b.logger.Info("message published",
			"event", "queue_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"routing_key", routingKey,
			"session_id", msg.SessionID,
			"delay_ms", delay.Milliseconds(),
		)
	}
	return nil
}

func (b *Broker) deliver(queue string, msg ports.ClosureMessage) {
	b.mu.RLock()
	ch, ok := b.queues[queue]
	b.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		if b.logger != nil {
			b.logger.Warn("dropping message for full queue",
				"event", "queue_deliver_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"queue", queue,
				"session_id", msg.SessionID,
			)
		}
	}
}

// Subscribe attaches the queue's single serialized consumer. A failing
// delivery is retried with exponential backoff up to the retry budget, then
// rejected without requeue into the queue's dead-letter target. It is never
// requeued indefinitely and never silently dropped.
func (b *Broker) Subscribe(ctx context.Context, queue string, handler func(context.Context, ports.ClosureMessage) error) error {
	b.mu.RLock()
	ch, ok := b.queues[queue]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown queue %q", queue)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				b.consume(ctx, queue, msg, handler)
			}
		}
	}()
	return nil
}

func (b *Broker) consume(ctx context.Context, queue string, msg ports.ClosureMessage, handler func(context.Context, ports.ClosureMessage) error) {
	backoff := b.retry.Initial
	for attempt := 1; attempt <= b.retry.MaxAttempts; attempt++ {
		err := handler(ctx, msg)
		if err == nil {
			return
		}
		if b.logger != nil {
			b.logger.Warn("delivery attempt failed",
				"event", "queue_consume_attempt_failed",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"queue", queue,
				"session_id", msg.SessionID,
				"attempt", attempt,
				"max_attempts", b.retry.MaxAttempts,
				"error", err.Error(),
			)
		}
		if attempt == b.retry.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * b.retry.Factor)
		if b.retry.Max > 0 && backoff > b.retry.Max {
			backoff = b.retry.Max
		}
	}
	b.reject(queue, msg)
}

// reject routes an exhausted delivery to the queue's dead-letter target.
func (b *Broker) reject(queue string, msg ports.ClosureMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bound := range b.bindings {
		if bound.queue == queue {
			b.deadLetters[bound.deadLetter] = append(b.deadLetters[bound.deadLetter], msg)
			if b.logger != nil {
				b.logger.Error("message dead-lettered after exhausting retries",
					"event", "queue_dead_letter",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"queue", queue,
					"dead_letter_queue", bound.deadLetter,
					"session_id", msg.SessionID,
				)
			}
			return
		}
	}
}

// DeadLetters returns a snapshot of the dead-letter queue for inspection.
func (b *Broker) DeadLetters(deadLetterQueue string) []ports.ClosureMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]ports.ClosureMessage(nil), b.deadLetters[deadLetterQueue]...)
}
