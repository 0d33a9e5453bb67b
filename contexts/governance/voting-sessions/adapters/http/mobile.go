package httpadapter

import (
	"context"
	"strings"

	"coopvotes/contexts/governance/voting-sessions/application/queries"
	httptransport "coopvotes/contexts/governance/voting-sessions/transport/http"
)

// ScreenRenderer builds the server-driven mobile screens: the proposal
// selection list, the yes/no voting form, and the proposal creation form.
type ScreenRenderer struct {
	ProposalReads queries.ProposalUseCase
	BaseURL       string
	ContextPath   string
}

func (r ScreenRenderer) ProposalSelectionScreen(ctx context.Context) (httptransport.SelectionScreen, error) {
	listing, err := r.ProposalReads.ListProposals(ctx, 0, 50, "title", false)
	if err != nil {
		return httptransport.SelectionScreen{}, err
	}
	options := make([]httptransport.SelectionOption, 0, len(listing.Items))
	for _, item := range listing.Items {
		options = append(options, httptransport.SelectionOption{
			Text:        item.Proposal.Title,
			Value:       item.Proposal.ProposalID,
			Description: item.Proposal.Description,
			URL:         r.route("/mobile/proposals/" + item.Proposal.ProposalID),
			Method:      "GET",
		})
	}
	return httptransport.SelectionScreen{
		Kind:        httptransport.ScreenKindSelection,
		Title:       "Select a proposal",
		Description: "Choose a proposal to view or vote on",
		Options:     options,
	}, nil
}

func (r ScreenRenderer) VotingFormScreen(ctx context.Context, proposalID string) (httptransport.FormScreen, error) {
	details, err := r.ProposalReads.GetProposalDetails(ctx, strings.TrimSpace(proposalID))
	if err != nil {
		return httptransport.FormScreen{}, err
	}

	voteURL := r.route("/proposal/" + details.Proposal.ProposalID + "/vote")
	voteBody := func(choice bool) map[string]any {
		return map[string]any{"vote": choice, "member_id": "", "member_cpf": ""}
	}
	return httptransport.FormScreen{
		Kind:        httptransport.ScreenKindForm,
		Title:       "Vote - " + details.Proposal.Title,
		Description: details.Proposal.Description,
		Fields: []httptransport.FormField{
			{
				ID:          "member_id",
				Label:       "Member ID",
				Type:        "TEXT",
				Required:    true,
				Placeholder: "Enter your member id",
			},
			{
				ID:          "member_cpf",
				Label:       "CPF",
				Type:        "TEXT",
				Required:    true,
				Placeholder: "000.000.000-00",
			},
			{
				ID:    "proposal_id",
				Type:  "HIDDEN",
				Value: details.Proposal.ProposalID,
			},
		},
		Buttons: []httptransport.ActionButton{
			{Text: "YES", Style: "PRIMARY", URL: voteURL, Method: "POST", Body: voteBody(true)},
			{Text: "NO", Style: "SECONDARY", URL: voteURL, Method: "POST", Body: voteBody(false)},
		},
	}, nil
}

func (r ScreenRenderer) ProposalFormScreen() httptransport.FormScreen {
	return httptransport.FormScreen{
		Kind:        httptransport.ScreenKindForm,
		Title:       "New proposal",
		Description: "Create a new proposal for voting",
		Fields: []httptransport.FormField{
			{
				ID:          "title",
				Label:       "Proposal title",
				Type:        "TEXT",
				Required:    true,
				Placeholder: "Enter the proposal title",
			},
			{
				ID:          "description",
				Label:       "Description",
				Type:        "TEXT",
				Placeholder: "Describe the proposal (optional)",
			},
		},
		Buttons: []httptransport.ActionButton{
			{
				Text:   "Create proposal",
				Style:  "PRIMARY",
				URL:    r.route("/proposal"),
				Method: "POST",
				Body:   map[string]any{"title": "", "description": ""},
			},
		},
	}
}

func (r ScreenRenderer) route(path string) string {
	base := strings.TrimRight(r.BaseURL, "/")
	prefix := strings.TrimRight(r.ContextPath, "/")
	return base + prefix + path
}
