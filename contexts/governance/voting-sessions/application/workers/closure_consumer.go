package workers

import (
	"context"
	"log/slog"
	"strings"

	application "coopvotes/contexts/governance/voting-sessions/application"
	"coopvotes/contexts/governance/voting-sessions/domain/entities"
	"coopvotes/contexts/governance/voting-sessions/ports"
	"coopvotes/internal/shared/trace"
)

// SessionCloser is the slice of the session lifecycle the consumer needs.
type SessionCloser interface {
	CloseSession(ctx context.Context, sessionID string) (entities.VotingSession, error)
}

// ClosureConsumer is the single serialized subscriber on the closure queue.
// It re-hydrates the correlation id from the message (or synthesizes one) and
// applies the closure idempotently. Errors, including NotFound, propagate to
// the queue so the delivery is retried within the budget and then
// dead-lettered; an instruction for a real session must never be dropped over
// a transient read.
type ClosureConsumer struct {
	Subscriber ports.ClosureSubscriber
	Sessions   SessionCloser
	Queue      string
	Logger     *slog.Logger
}

func (c ClosureConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	queue := strings.TrimSpace(c.Queue)
	logger.Info("closure consumer starting",
		"event", "voting_closure_consumer_starting",
		"module", "governance/voting-sessions",
		"layer", "worker",
		"queue", queue,
	)
	return c.Subscriber.Subscribe(ctx, queue, c.handleClosure)
}

func (c ClosureConsumer) handleClosure(ctx context.Context, msg ports.ClosureMessage) error {
	logger := application.ResolveLogger(c.Logger)

	traceID := strings.TrimSpace(msg.TraceID)
	if traceID == "" {
		traceID = "queue-" + trace.New()
	}
	ctx = trace.WithTraceID(ctx, traceID)
	logger = logger.With("trace_id", traceID)

	logger.Info("processing session closure",
		"event", "voting_closure_delivery_received",
		"module", "governance/voting-sessions",
		"layer", "worker",
		"session_id", msg.SessionID,
	)
	session, err := c.Sessions.CloseSession(ctx, msg.SessionID)
	if err != nil {
		logger.Error("session closure failed, delivery will be retried",
			"event", "voting_closure_delivery_failed",
			"module", "governance/voting-sessions",
			"layer", "worker",
			"session_id", msg.SessionID,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("session closure applied",
		"event", "voting_closure_delivery_applied",
		"module", "governance/voting-sessions",
		"layer", "worker",
		"session_id", session.SessionID,
		"proposal_id", session.ProposalID,
	)
	return nil
}
