package queries

import (
	"context"
	"strings"

	"coopvotes/contexts/governance/voting-sessions/domain/entities"
	"coopvotes/contexts/governance/voting-sessions/ports"
)

// ProposalSummary is the listing-level read model of a proposal.
type ProposalSummary struct {
	Proposal entities.Proposal
	Status   entities.ProposalStatus
}

// ProposalDetails is the single-proposal read model; Result is populated only
// once the session has transitioned to CLOSED.
type ProposalDetails struct {
	Proposal entities.Proposal
	Session  *entities.VotingSession
	Status   entities.ProposalStatus
	Result   *entities.VoteResult
}

// ProposalPage bundles one listing page with its total count.
type ProposalPage struct {
	Items         []ProposalSummary
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
}

type ProposalUseCase struct {
	Proposals ports.ProposalRepository
	Sessions  ports.SessionRepository
	Votes     ports.VoteRepository
}

func (uc ProposalUseCase) ListProposals(ctx context.Context, page int, size int, orderBy string, desc bool) (ProposalPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	proposals, total, err := uc.Proposals.ListProposals(ctx, ports.ListPage{
		Offset:  page * size,
		Limit:   size,
		OrderBy: normalizeOrderBy(orderBy),
		Desc:    desc,
	})
	if err != nil {
		return ProposalPage{}, err
	}

	items := make([]ProposalSummary, 0, len(proposals))
	for _, proposal := range proposals {
		status, err := uc.proposalStatus(ctx, proposal.ProposalID)
		if err != nil {
			return ProposalPage{}, err
		}
		items = append(items, ProposalSummary{Proposal: proposal, Status: status})
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return ProposalPage{
		Items:         items,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

func (uc ProposalUseCase) GetProposalDetails(ctx context.Context, proposalID string) (ProposalDetails, error) {
	proposalID = strings.TrimSpace(proposalID)
	proposal, err := uc.Proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return ProposalDetails{}, err
	}

	details := ProposalDetails{Proposal: proposal, Status: entities.ProposalStatusWaiting}
	session, found, err := uc.Sessions.GetSessionByProposal(ctx, proposalID)
	if err != nil {
		return ProposalDetails{}, err
	}
	if found {
		details.Session = &session
		details.Status = entities.StatusFromSession(&session)
	}

	if details.Status == entities.ProposalStatusClosed {
		result, err := uc.Votes.CountVotes(ctx, proposalID)
		if err != nil {
			return ProposalDetails{}, err
		}
		details.Result = &result
	}
	return details, nil
}

func (uc ProposalUseCase) proposalStatus(ctx context.Context, proposalID string) (entities.ProposalStatus, error) {
	session, found, err := uc.Sessions.GetSessionByProposal(ctx, proposalID)
	if err != nil {
		return "", err
	}
	if !found {
		return entities.ProposalStatusWaiting, nil
	}
	return entities.StatusFromSession(&session), nil
}

// normalizeOrderBy allows only known sortable columns; anything else falls
// back to title so raw request input never reaches the query builder.
func normalizeOrderBy(orderBy string) string {
	switch strings.ToLower(strings.TrimSpace(orderBy)) {
	case "created_at":
		return "created_at"
	case "", "title":
		return "title"
	default:
		return "title"
	}
}
