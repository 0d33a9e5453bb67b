package workers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"coopvotes/contexts/governance/voting-sessions/adapters/memory"
	"coopvotes/contexts/governance/voting-sessions/application/commands"
	"coopvotes/contexts/governance/voting-sessions/domain/entities"
	"coopvotes/contexts/governance/voting-sessions/ports"
	"coopvotes/internal/shared/trace"
)

type stubSubscriber struct {
	queue   string
	handler func(context.Context, ports.ClosureMessage) error
}

func (s *stubSubscriber) Subscribe(_ context.Context, queue string, handler func(context.Context, ports.ClosureMessage) error) error {
	s.queue = queue
	s.handler = handler
	return nil
}

type stubCloser struct {
	traceIDs []string
	sessions []string
	err      error
}

func (c *stubCloser) CloseSession(ctx context.Context, sessionID string) (entities.VotingSession, error) {
	c.traceIDs = append(c.traceIDs, trace.FromContext(ctx))
	c.sessions = append(c.sessions, sessionID)
	if c.err != nil {
		return entities.VotingSession{}, c.err
	}
	return entities.VotingSession{SessionID: sessionID, Status: entities.SessionStatusClosed}, nil
}

func TestClosureConsumerPropagatesMessageTrace(t *testing.T) {
	subscriber := &stubSubscriber{}
	closer := &stubCloser{}
	consumer := ClosureConsumer{Subscriber: subscriber, Sessions: closer, Queue: "session.close.q"}

	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if subscriber.queue != "session.close.q" {
		t.Fatalf("subscribed to unexpected queue %q", subscriber.queue)
	}

	err := subscriber.handler(context.Background(), ports.ClosureMessage{
		SessionID: "sess-1",
		TraceID:   "trace-abc",
	})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if len(closer.traceIDs) != 1 || closer.traceIDs[0] != "trace-abc" {
		t.Fatalf("expected message trace to reach the closer, got %v", closer.traceIDs)
	}
}

func TestClosureConsumerSynthesizesTrace(t *testing.T) {
	subscriber := &stubSubscriber{}
	closer := &stubCloser{}
	consumer := ClosureConsumer{Subscriber: subscriber, Sessions: closer, Queue: "session.close.q"}

	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := subscriber.handler(context.Background(), ports.ClosureMessage{SessionID: "sess-1"}); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if len(closer.traceIDs) != 1 || !strings.HasPrefix(closer.traceIDs[0], "queue-") {
		t.Fatalf("expected a synthesized queue- trace, got %v", closer.traceIDs)
	}
}

func TestClosureConsumerReturnsErrorForRetry(t *testing.T) {
	subscriber := &stubSubscriber{}
	closer := &stubCloser{err: errors.New("session not found")}
	consumer := ClosureConsumer{Subscriber: subscriber, Sessions: closer, Queue: "session.close.q"}

	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := subscriber.handler(context.Background(), ports.ClosureMessage{SessionID: "sess-1"}); err == nil {
		t.Fatal("a failing closure must propagate so the delivery is retried")
	}
}

func TestReconcilerClosesOnlyOverdueSessions(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Proposal{
		{ProposalID: "prop-1"},
		{ProposalID: "prop-2"},
	})
	store.SetNow(now)

	overdue := entities.VotingSession{
		SessionID:  "sess-overdue",
		ProposalID: "prop-1",
		OpenedAt:   now.Add(-2 * time.Minute),
		ClosesAt:   now.Add(-time.Minute),
		Status:     entities.SessionStatusOpened,
		Version:    1,
	}
	future := entities.VotingSession{
		SessionID:  "sess-future",
		ProposalID: "prop-2",
		OpenedAt:   now,
		ClosesAt:   now.Add(time.Minute),
		Status:     entities.SessionStatusOpened,
		Version:    1,
	}
	for _, session := range []entities.VotingSession{overdue, future} {
		if err := store.SaveSession(context.Background(), session); err != nil {
			t.Fatalf("seed session failed: %v", err)
		}
	}

	reconciler := ClosureReconciler{
		Sessions: store,
		Closer:   commands.SessionUseCase{Proposals: store, Sessions: store, Clock: store, IDGen: store},
		Clock:    store,
	}
	if err := reconciler.RunOnce(context.Background()); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	closedNow, err := store.GetSession(context.Background(), "sess-overdue")
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if closedNow.Status != entities.SessionStatusClosed {
		t.Fatalf("expected overdue session closed, got %s", closedNow.Status)
	}

	stillOpen, err := store.GetSession(context.Background(), "sess-future")
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if stillOpen.Status != entities.SessionStatusOpened {
		t.Fatalf("expected future session untouched, got %s", stillOpen.Status)
	}
}

func TestReconcilerIsIdempotentAcrossRuns(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Proposal{{ProposalID: "prop-1"}})
	store.SetNow(now)

	session := entities.VotingSession{
		SessionID:  "sess-1",
		ProposalID: "prop-1",
		OpenedAt:   now.Add(-2 * time.Minute),
		ClosesAt:   now.Add(-time.Minute),
		Status:     entities.SessionStatusOpened,
		Version:    1,
	}
	if err := store.SaveSession(context.Background(), session); err != nil {
		t.Fatalf("seed session failed: %v", err)
	}

	reconciler := ClosureReconciler{
		Sessions: store,
		Closer:   commands.SessionUseCase{Proposals: store, Sessions: store, Clock: store, IDGen: store},
		Clock:    store,
	}
	for i := 0; i < 2; i++ {
		if err := reconciler.RunOnce(context.Background()); err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
	}

	closed, err := store.GetSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if closed.Version != 2 {
		t.Fatalf("expected a single close transition, got version %d", closed.Version)
	}
}
