package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "coopvotes/contexts/governance/voting-sessions/application"
	"coopvotes/contexts/governance/voting-sessions/domain/entities"
	domainerrors "coopvotes/contexts/governance/voting-sessions/domain/errors"
	"coopvotes/contexts/governance/voting-sessions/ports"
)

const (
	// DefaultDurationSeconds applies when the open request carries no duration.
	DefaultDurationSeconds = 60
	// MaxDurationSeconds caps a requested session duration.
	MaxDurationSeconds = 3600
)

// OpenSessionCommand opens the single voting window of a proposal.
// DurationSeconds is optional; nil means the default.
type OpenSessionCommand struct {
	ProposalID      string
	DurationSeconds *int
}

// SessionUseCase orchestrates the session lifecycle: creation with its
// scheduled closure, idempotent closure, and the session-state reads used by
// the vote-casting path.
type SessionUseCase struct {
	Proposals ports.ProposalRepository
	Sessions  ports.SessionRepository
	Scheduler ports.ClosureScheduler
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// OpenSession validates the duration, persists a new OPENED session, and
// schedules exactly one closure instruction delayed by the session duration.
// The existence pre-check is advisory; the storage uniqueness constraint on
// the proposal reference is what actually closes the create race.
func (uc SessionUseCase) OpenSession(ctx context.Context, cmd OpenSessionCommand) (entities.VotingSession, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposalID := strings.TrimSpace(cmd.ProposalID)
	logger.Info("session open started",
		"event", "voting_session_open_started",
		"module", "governance/voting-sessions",
		"layer", "application",
		"proposal_id", proposalID,
	)

	duration := DefaultDurationSeconds
	if cmd.DurationSeconds != nil {
		duration = *cmd.DurationSeconds
	}
	if duration < 0 || duration > MaxDurationSeconds {
		logger.Warn("session open duration rejected",
			"event", "voting_session_open_validation_failed",
			"module", "governance/voting-sessions",
			"layer", "application",
			"proposal_id", proposalID,
			"duration_seconds", duration,
		)
		return entities.VotingSession{}, domainerrors.NewValidation(
			"duration_seconds", "must be between 0 and 3600 seconds")
	}

	if _, err := uc.Proposals.GetProposal(ctx, proposalID); err != nil {
		return entities.VotingSession{}, err
	}

	if _, found, err := uc.Sessions.GetSessionByProposal(ctx, proposalID); err != nil {
		return entities.VotingSession{}, err
	} else if found {
		logger.Warn("session open rejected, session already exists",
			"event", "voting_session_open_conflict",
			"module", "governance/voting-sessions",
			"layer", "application",
			"proposal_id", proposalID,
		)
		return entities.VotingSession{}, domainerrors.ErrSessionAlreadyOpened
	}

	sessionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.VotingSession{}, err
	}
	now := uc.now()
	session := entities.VotingSession{
		SessionID:  sessionID,
		ProposalID: proposalID,
		OpenedAt:   now,
		ClosesAt:   now.Add(time.Duration(duration) * time.Second),
		Status:     entities.SessionStatusOpened,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return entities.VotingSession{}, err
	}
	logger.Info("session created",
		"event", "voting_session_created",
		"module", "governance/voting-sessions",
		"layer", "application",
		"session_id", session.SessionID,
		"proposal_id", proposalID,
		"closes_at", session.ClosesAt.Format(time.RFC3339),
	)

	if err := uc.Scheduler.ScheduleClosure(ctx, session.SessionID, time.Duration(duration)*time.Second); err != nil {
		// The session stays OPENED without a scheduled closure; the
		// reconciliation sweep picks it up once closes_at has passed.
		logger.Error("session closure scheduling failed",
			"event", "voting_session_schedule_failed",
			"module", "governance/voting-sessions",
			"layer", "application",
			"session_id", session.SessionID,
			"proposal_id", proposalID,
			"error", err.Error(),
		)
		return entities.VotingSession{}, err
	}
	logger.Info("session closure scheduled",
		"event", "voting_session_closure_scheduled",
		"module", "governance/voting-sessions",
		"layer", "application",
		"session_id", session.SessionID,
		"delay_seconds", duration,
	)
	return session, nil
}

// CloseSession applies the OPENED -> CLOSED transition. Closure instructions
// are delivered at least once, so re-closing an already CLOSED session is a
// no-op returning the session unchanged.
func (uc SessionUseCase) CloseSession(ctx context.Context, sessionID string) (entities.VotingSession, error) {
	logger := application.ResolveLogger(uc.Logger)
	sessionID = strings.TrimSpace(sessionID)

	session, err := uc.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return entities.VotingSession{}, err
	}
	if session.Closed() {
		logger.Info("session already closed, closure is a no-op",
			"event", "voting_session_close_duplicate",
			"module", "governance/voting-sessions",
			"layer", "application",
			"session_id", sessionID,
		)
		return session, nil
	}

	closed, err := uc.Sessions.MarkSessionClosed(ctx, sessionID, session.Version, uc.now())
	if err != nil {
		if errors.Is(err, domainerrors.ErrVersionConflict) {
			// A concurrent delivery won the transition. Re-read: if it is
			// closed now, this delivery degrades to the duplicate no-op.
			current, readErr := uc.Sessions.GetSession(ctx, sessionID)
			if readErr == nil && current.Closed() {
				return current, nil
			}
		}
		return entities.VotingSession{}, err
	}
	logger.Info("session closed",
		"event", "voting_session_closed",
		"module", "governance/voting-sessions",
		"layer", "application",
		"session_id", sessionID,
		"proposal_id", closed.ProposalID,
	)
	return closed, nil
}

// HasActiveSession reports whether the proposal currently has an OPENED
// session. Pure read, no side effects.
func (uc SessionUseCase) HasActiveSession(ctx context.Context, proposalID string) (bool, error) {
	session, found, err := uc.Sessions.GetSessionByProposal(ctx, strings.TrimSpace(proposalID))
	if err != nil {
		return false, err
	}
	return found && !session.Closed(), nil
}

// GetActiveSession returns the proposal's OPENED session, or ErrNoActiveSession.
func (uc SessionUseCase) GetActiveSession(ctx context.Context, proposalID string) (entities.VotingSession, error) {
	session, found, err := uc.Sessions.GetSessionByProposal(ctx, strings.TrimSpace(proposalID))
	if err != nil {
		return entities.VotingSession{}, err
	}
	if !found || session.Closed() {
		return entities.VotingSession{}, domainerrors.ErrNoActiveSession
	}
	return session, nil
}

func (uc SessionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
