package queueadapter

import (
	"context"
	"log/slog"
	"time"

	"coopvotes/contexts/governance/voting-sessions/ports"
	"coopvotes/internal/platform/messaging"
	"coopvotes/internal/shared/trace"
)

// Producer publishes closure instructions to the delay-capable broker,
// tagging each message with the originating request's correlation id.
type Producer struct {
	Broker     *messaging.Broker
	RoutingKey string
	Logger     *slog.Logger
}

var _ ports.ClosureScheduler = Producer{}

func (p Producer) ScheduleClosure(ctx context.Context, sessionID string, delay time.Duration) error {
	msg := ports.ClosureMessage{
		SessionID: sessionID,
		TraceID:   trace.FromContext(ctx),
	}
	if err := p.Broker.Publish(ctx, p.RoutingKey, msg, delay); err != nil {
		return err
	}
	if p.Logger != nil {
		p.Logger.Info("closure instruction scheduled",
			"event", "voting_closure_scheduled",
			"module", "governance/voting-sessions",
			"layer", "adapter",
			"session_id", sessionID,
			"delay_ms", delay.Milliseconds(),
		)
	}
	return nil
}
