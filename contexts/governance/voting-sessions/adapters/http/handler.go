package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"coopvotes/contexts/governance/voting-sessions/application/commands"
	"coopvotes/contexts/governance/voting-sessions/application/queries"
	domainerrors "coopvotes/contexts/governance/voting-sessions/domain/errors"
	httptransport "coopvotes/contexts/governance/voting-sessions/transport/http"
)

type Handler struct {
	Proposals     commands.ProposalUseCase
	Sessions      commands.SessionUseCase
	Votes         commands.VoteUseCase
	ProposalReads queries.ProposalUseCase
	Results       queries.ResultUseCase
	Screens       ScreenRenderer
	Logger        *slog.Logger
}

func (h Handler) CreateProposalHandler(ctx context.Context, req httptransport.CreateProposalRequest) error {
	_, err := h.Proposals.CreateProposal(ctx, commands.CreateProposalCommand{
		Title:       req.Title,
		Description: req.Description,
	})
	return err
}

func (h Handler) OpenSessionHandler(
	ctx context.Context,
	proposalID string,
	req httptransport.OpenSessionRequest,
) (httptransport.SessionResponse, error) {
	session, err := h.Sessions.OpenSession(ctx, commands.OpenSessionCommand{
		ProposalID:      proposalID,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{
		SessionID:  session.SessionID,
		ProposalID: session.ProposalID,
		OpenedAt:   session.OpenedAt.Format(time.RFC3339),
		ClosesAt:   session.ClosesAt.Format(time.RFC3339),
		Status:     string(session.Status),
	}, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	proposalID string,
	req httptransport.VoteRequest,
) (httptransport.VoteResponse, error) {
	if req.Vote == nil {
		return httptransport.VoteResponse{}, domainerrors.NewValidation("vote", "must be true or false")
	}
	vote, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		ProposalID:    proposalID,
		MemberID:      req.MemberID,
		IdentityProof: req.MemberCPF,
		Choice:        *req.Vote,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		VoteID:     vote.VoteID,
		ProposalID: vote.ProposalID,
		SessionID:  vote.SessionID,
		MemberID:   vote.MemberID,
		Vote:       vote.Choice,
		VotedAt:    vote.VotedAt.Format(time.RFC3339),
	}, nil
}

func (h Handler) GetResultHandler(ctx context.Context, proposalID string) (httptransport.ResultResponse, error) {
	result, err := h.Results.GetResults(ctx, proposalID)
	if err != nil {
		return httptransport.ResultResponse{}, err
	}
	return httptransport.ResultResponse{
		CountYes:   result.CountYes,
		CountNo:    result.CountNo,
		TotalVotes: result.TotalVotes,
	}, nil
}

func (h Handler) ListProposalsHandler(
	ctx context.Context,
	page int,
	size int,
	sortBy string,
	desc bool,
) (httptransport.PagedResponse, error) {
	listing, err := h.ProposalReads.ListProposals(ctx, page, size, sortBy, desc)
	if err != nil {
		return httptransport.PagedResponse{}, err
	}
	content := make([]httptransport.ProposalSummary, 0, len(listing.Items))
	for _, item := range listing.Items {
		content = append(content, httptransport.ProposalSummary{
			ProposalID:  item.Proposal.ProposalID,
			Title:       item.Proposal.Title,
			Description: item.Proposal.Description,
			Status:      string(item.Status),
		})
	}
	return httptransport.PagedResponse{
		Content:       content,
		Page:          listing.Page,
		Size:          listing.Size,
		TotalElements: listing.TotalElements,
		TotalPages:    listing.TotalPages,
	}, nil
}

func (h Handler) GetProposalHandler(ctx context.Context, proposalID string) (httptransport.ProposalDetailsResponse, error) {
	details, err := h.ProposalReads.GetProposalDetails(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalDetailsResponse{}, err
	}
	resp := httptransport.ProposalDetailsResponse{
		ProposalID:  details.Proposal.ProposalID,
		Title:       details.Proposal.Title,
		Description: details.Proposal.Description,
		Status:      string(details.Status),
	}
	if details.Session != nil {
		resp.Session = &httptransport.SessionResponse{
			SessionID:  details.Session.SessionID,
			ProposalID: details.Session.ProposalID,
			OpenedAt:   details.Session.OpenedAt.Format(time.RFC3339),
			ClosesAt:   details.Session.ClosesAt.Format(time.RFC3339),
			Status:     string(details.Session.Status),
		}
	}
	if details.Result != nil {
		resp.Result = &httptransport.ResultResponse{
			CountYes:   details.Result.CountYes,
			CountNo:    details.Result.CountNo,
			TotalVotes: details.Result.TotalVotes,
		}
	}
	return resp, nil
}
