package votingsessions

import (
	"context"
	"testing"
	"time"

	queueadapter "coopvotes/contexts/governance/voting-sessions/adapters/queue"
	"coopvotes/contexts/governance/voting-sessions/application/commands"
	"coopvotes/contexts/governance/voting-sessions/application/workers"
	"coopvotes/contexts/governance/voting-sessions/domain/entities"
	"coopvotes/internal/platform/messaging"
)

type allowAllGate struct{}

func (allowAllGate) CheckEligibility(context.Context, string) (bool, error) { return true, nil }

// Full closure path: opening a session publishes a delayed instruction, the
// queue consumer picks it up and transitions the session to CLOSED.
func TestScheduledClosureEndToEnd(t *testing.T) {
	broker := messaging.NewBroker(messaging.RetryPolicy{
		MaxAttempts: 2,
		Initial:     time.Millisecond,
		Factor:      2.0,
		Max:         5 * time.Millisecond,
	}, nil)
	broker.DeclareQueue(messaging.RouteKeySessionClose, messaging.QueueSessionClose, messaging.QueueSessionCloseDLQ)

	module := NewInMemoryModule(
		[]entities.Proposal{{ProposalID: "prop-1", Title: "New assembly hall"}},
		queueadapter.Producer{Broker: broker, RoutingKey: messaging.RouteKeySessionClose},
		allowAllGate{},
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumer := workers.ClosureConsumer{
		Subscriber: broker,
		Sessions:   module.Sessions,
		Queue:      messaging.QueueSessionClose,
	}
	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("consumer start failed: %v", err)
	}

	duration := 0
	session, err := module.Sessions.OpenSession(ctx, commands.OpenSessionCommand{
		ProposalID:      "prop-1",
		DurationSeconds: &duration,
	})
	if err != nil {
		t.Fatalf("open session failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		current, err := module.Store.GetSession(ctx, session.SessionID)
		if err != nil {
			t.Fatalf("get session failed: %v", err)
		}
		if current.Closed() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("session was not closed by the queue consumer")
}
