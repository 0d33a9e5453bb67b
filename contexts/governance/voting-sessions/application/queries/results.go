package queries

import (
	"context"
	"strings"

	"coopvotes/contexts/governance/voting-sessions/domain/entities"
	"coopvotes/contexts/governance/voting-sessions/ports"
)

// ResultUseCase computes the yes/no tally for a proposal. It aggregates over
// all votes for the proposal and deliberately does not error while the
// session is still open; a partial tally is not harmful and callers gate on
// status before presenting a final result.
type ResultUseCase struct {
	Proposals ports.ProposalRepository
	Votes     ports.VoteRepository
}

func (uc ResultUseCase) GetResults(ctx context.Context, proposalID string) (entities.VoteResult, error) {
	proposalID = strings.TrimSpace(proposalID)
	if _, err := uc.Proposals.GetProposal(ctx, proposalID); err != nil {
		return entities.VoteResult{}, err
	}
	return uc.Votes.CountVotes(ctx, proposalID)
}
