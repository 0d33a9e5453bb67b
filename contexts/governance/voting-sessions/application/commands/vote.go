package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "coopvotes/contexts/governance/voting-sessions/application"
	"coopvotes/contexts/governance/voting-sessions/domain/entities"
	domainerrors "coopvotes/contexts/governance/voting-sessions/domain/errors"
	"coopvotes/contexts/governance/voting-sessions/ports"
)

// CastVoteCommand records one member's yes/no choice on a proposal.
// IdentityProof is what the eligibility gate verifies (the member's document
// number); MemberID is the identity the vote is stored under.
type CastVoteCommand struct {
	ProposalID    string
	MemberID      string
	IdentityProof string
	Choice        bool
}

// VoteUseCase guards the vote-casting path: eligibility, active session,
// duplicate check, then persistence. The duplicate pre-check is advisory; the
// (proposal, member) uniqueness constraint in the store is the real guarantee.
type VoteUseCase struct {
	Proposals   ports.ProposalRepository
	Votes       ports.VoteRepository
	Sessions    SessionUseCase
	Eligibility ports.EligibilityGate
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.Vote, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposalID := strings.TrimSpace(cmd.ProposalID)
	memberID := strings.TrimSpace(cmd.MemberID)
	logger.Info("vote cast started",
		"event", "voting_vote_cast_started",
		"module", "governance/voting-sessions",
		"layer", "application",
		"proposal_id", proposalID,
		"member_id", memberID,
		"choice", cmd.Choice,
	)
	if memberID == "" {
		return entities.Vote{}, domainerrors.NewValidation("member_id", "must not be empty")
	}

	// Eligibility comes first: an ineligible member is rejected before any
	// session or duplicate check, and a gate failure is surfaced rather than
	// defaulted to either verdict.
	eligible, err := uc.Eligibility.CheckEligibility(ctx, strings.TrimSpace(cmd.IdentityProof))
	if err != nil {
		logger.Error("eligibility verification failed",
			"event", "voting_vote_eligibility_failed",
			"module", "governance/voting-sessions",
			"layer", "application",
			"proposal_id", proposalID,
			"member_id", memberID,
			"error", err.Error(),
		)
		return entities.Vote{}, fmt.Errorf("%w: %w", domainerrors.ErrEligibilityUnavailable, err)
	}
	if !eligible {
		logger.Warn("vote rejected, member not eligible",
			"event", "voting_vote_member_not_eligible",
			"module", "governance/voting-sessions",
			"layer", "application",
			"proposal_id", proposalID,
			"member_id", memberID,
		)
		return entities.Vote{}, domainerrors.ErrMemberNotEligible
	}

	if _, err := uc.Proposals.GetProposal(ctx, proposalID); err != nil {
		return entities.Vote{}, err
	}

	session, err := uc.Sessions.GetActiveSession(ctx, proposalID)
	if err != nil {
		return entities.Vote{}, err
	}

	if exists, err := uc.Votes.HasVote(ctx, proposalID, memberID); err != nil {
		return entities.Vote{}, err
	} else if exists {
		logger.Warn("vote rejected, member already voted",
			"event", "voting_vote_duplicate",
			"module", "governance/voting-sessions",
			"layer", "application",
			"proposal_id", proposalID,
			"member_id", memberID,
		)
		return entities.Vote{}, domainerrors.ErrDuplicateVote
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Vote{}, err
	}
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	vote := entities.Vote{
		VoteID:     voteID,
		ProposalID: proposalID,
		SessionID:  session.SessionID,
		MemberID:   memberID,
		Choice:     cmd.Choice,
		VotedAt:    now,
	}
	// A concurrent duplicate insert surfaces here as ErrDuplicateVote from
	// the repository's constraint translation.
	if err := uc.Votes.SaveVote(ctx, vote); err != nil {
		return entities.Vote{}, err
	}
	logger.Info("vote cast",
		"event", "voting_vote_cast",
		"module", "governance/voting-sessions",
		"layer", "application",
		"vote_id", vote.VoteID,
		"proposal_id", proposalID,
		"session_id", session.SessionID,
		"member_id", memberID,
		"choice", cmd.Choice,
	)
	return vote, nil
}
