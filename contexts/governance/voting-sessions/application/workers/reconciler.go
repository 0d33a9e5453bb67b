package workers

import (
	"context"
	"log/slog"
	"time"

	application "coopvotes/contexts/governance/voting-sessions/application"
	"coopvotes/contexts/governance/voting-sessions/ports"
)

// ClosureReconciler sweeps OPENED sessions whose closes_at has passed and
// closes them directly. Session creation and closure scheduling hit two
// systems without a shared transaction, so a crash in between leaves a
// session with no pending instruction; the sweep is the remediation for that
// gap and also heals instructions lost with the broker.
type ClosureReconciler struct {
	Sessions  ports.SessionRepository
	Closer    SessionCloser
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce closes one bounded batch of overdue sessions. Closure is idempotent,
// so racing a late queue delivery for the same session is harmless.
func (r ClosureReconciler) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}
	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	overdue, err := r.Sessions.ListOverdueSessions(ctx, now, limit)
	if err != nil {
		logger.Error("overdue session listing failed",
			"event", "voting_reconciler_list_failed",
			"module", "governance/voting-sessions",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(overdue) == 0 {
		logger.Debug("no overdue sessions",
			"event", "voting_reconciler_noop",
			"module", "governance/voting-sessions",
			"layer", "worker",
		)
		return nil
	}

	for _, session := range overdue {
		if _, err := r.Closer.CloseSession(ctx, session.SessionID); err != nil {
			logger.Error("overdue session closure failed",
				"event", "voting_reconciler_close_failed",
				"module", "governance/voting-sessions",
				"layer", "worker",
				"session_id", session.SessionID,
				"error", err.Error(),
			)
			return err
		}
		logger.Info("overdue session closed by sweep",
			"event", "voting_reconciler_session_closed",
			"module", "governance/voting-sessions",
			"layer", "worker",
			"session_id", session.SessionID,
			"proposal_id", session.ProposalID,
			"closes_at", session.ClosesAt.Format(time.RFC3339),
		)
	}
	return nil
}
