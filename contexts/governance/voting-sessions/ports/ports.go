package ports

import (
	"context"
	"time"

	"coopvotes/contexts/governance/voting-sessions/domain/entities"
)

type ProposalRepository interface {
	SaveProposal(ctx context.Context, proposal entities.Proposal) error
	GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error)
	ListProposals(ctx context.Context, page ListPage) ([]entities.Proposal, int64, error)
}

// ListPage carries listing parameters; shaping/pagination of the response is
// the transport layer's concern.
type ListPage struct {
	Offset  int
	Limit   int
	OrderBy string
	Desc    bool
}

type SessionRepository interface {
	// SaveSession inserts a new session. The storage layer enforces at most
	// one session per proposal; a second insert fails with
	// ErrSessionAlreadyOpened regardless of any application pre-check.
	SaveSession(ctx context.Context, session entities.VotingSession) error
	GetSession(ctx context.Context, sessionID string) (entities.VotingSession, error)
	GetSessionByProposal(ctx context.Context, proposalID string) (entities.VotingSession, bool, error)
	// MarkSessionClosed transitions OPENED -> CLOSED guarded by the optimistic
	// version token; a stale version fails with ErrVersionConflict.
	MarkSessionClosed(ctx context.Context, sessionID string, version int64, closedAt time.Time) (entities.VotingSession, error)
	// ListOverdueSessions returns OPENED sessions whose closes_at is at or
	// before the cutoff, for the reconciliation sweep.
	ListOverdueSessions(ctx context.Context, cutoff time.Time, limit int) ([]entities.VotingSession, error)
}

type VoteRepository interface {
	// SaveVote inserts a vote. The storage layer enforces at most one vote
	// per (proposal, member); duplicates fail with ErrDuplicateVote.
	SaveVote(ctx context.Context, vote entities.Vote) error
	HasVote(ctx context.Context, proposalID string, memberID string) (bool, error)
	CountVotes(ctx context.Context, proposalID string) (entities.VoteResult, error)
}

// ClosureMessage is the payload of one closure instruction. TraceID carries
// the originating request's correlation id across the queue boundary.
type ClosureMessage struct {
	SessionID string `json:"session_id"`
	TraceID   string `json:"trace_id,omitempty"`
}

// ClosureScheduler enqueues exactly one delayed closure instruction per
// successful session creation.
type ClosureScheduler interface {
	ScheduleClosure(ctx context.Context, sessionID string, delay time.Duration) error
}

// ClosureSubscriber attaches a serialized consumer to the closure queue.
// Delivery is at-least-once; handlers must be idempotent.
type ClosureSubscriber interface {
	Subscribe(ctx context.Context, queue string, handler func(context.Context, ClosureMessage) error) error
}

// EligibilityGate verifies that a member may vote. A transport failure is an
// error, never a verdict.
type EligibilityGate interface {
	CheckEligibility(ctx context.Context, identityProof string) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
