package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "coopvotes/contexts/governance/voting-sessions/application"
	"coopvotes/contexts/governance/voting-sessions/domain/entities"
	domainerrors "coopvotes/contexts/governance/voting-sessions/domain/errors"
	"coopvotes/contexts/governance/voting-sessions/ports"
)

// CreateProposalCommand registers a new topic for voting. Proposals are
// created by an administrative action and never mutated afterwards.
type CreateProposalCommand struct {
	Title       string
	Description string
}

type ProposalUseCase struct {
	Proposals ports.ProposalRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc ProposalUseCase) CreateProposal(ctx context.Context, cmd CreateProposalCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		logger.Warn("proposal create validation failed",
			"event", "voting_proposal_create_validation_failed",
			"module", "governance/voting-sessions",
			"layer", "application",
		)
		return entities.Proposal{}, domainerrors.NewValidation("title", "must not be empty")
	}

	proposalID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Proposal{}, err
	}
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	proposal := entities.Proposal{
		ProposalID:  proposalID,
		Title:       title,
		Description: strings.TrimSpace(cmd.Description),
		CreatedAt:   now,
	}
	if err := uc.Proposals.SaveProposal(ctx, proposal); err != nil {
		return entities.Proposal{}, err
	}
	logger.Info("proposal created",
		"event", "voting_proposal_created",
		"module", "governance/voting-sessions",
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"title", proposal.Title,
	)
	return proposal, nil
}
