package votingsessions

import (
	"log/slog"

	httpadapter "coopvotes/contexts/governance/voting-sessions/adapters/http"
	"coopvotes/contexts/governance/voting-sessions/adapters/memory"
	"coopvotes/contexts/governance/voting-sessions/application/commands"
	"coopvotes/contexts/governance/voting-sessions/application/queries"
	"coopvotes/contexts/governance/voting-sessions/application/workers"
	"coopvotes/contexts/governance/voting-sessions/domain/entities"
	"coopvotes/contexts/governance/voting-sessions/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Sessions   commands.SessionUseCase
	Reconciler workers.ClosureReconciler
	Store      *memory.Store
}

type Dependencies struct {
	Proposals   ports.ProposalRepository
	Sessions    ports.SessionRepository
	Votes       ports.VoteRepository
	Scheduler   ports.ClosureScheduler
	Eligibility ports.EligibilityGate
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	BaseURL     string
	ContextPath string
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	sessionUseCase := commands.SessionUseCase{
		Proposals: deps.Proposals,
		Sessions:  deps.Sessions,
		Scheduler: deps.Scheduler,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	proposalUseCase := commands.ProposalUseCase{
		Proposals: deps.Proposals,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Proposals:   deps.Proposals,
		Votes:       deps.Votes,
		Sessions:    sessionUseCase,
		Eligibility: deps.Eligibility,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	proposalReads := queries.ProposalUseCase{
		Proposals: deps.Proposals,
		Sessions:  deps.Sessions,
		Votes:     deps.Votes,
	}
	resultUseCase := queries.ResultUseCase{
		Proposals: deps.Proposals,
		Votes:     deps.Votes,
	}
	return Module{
		Handler: httpadapter.Handler{
			Proposals:     proposalUseCase,
			Sessions:      sessionUseCase,
			Votes:         voteUseCase,
			ProposalReads: proposalReads,
			Results:       resultUseCase,
			Screens: httpadapter.ScreenRenderer{
				ProposalReads: proposalReads,
				BaseURL:       deps.BaseURL,
				ContextPath:   deps.ContextPath,
			},
			Logger: deps.Logger,
		},
		Sessions: sessionUseCase,
		Reconciler: workers.ClosureReconciler{
			Sessions: deps.Sessions,
			Closer:   sessionUseCase,
			Clock:    deps.Clock,
			Logger:   deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module onto the in-memory store for tests and
// local runs without external infrastructure.
func NewInMemoryModule(seed []entities.Proposal, scheduler ports.ClosureScheduler, gate ports.EligibilityGate, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Proposals:   store,
		Sessions:    store,
		Votes:       store,
		Scheduler:   scheduler,
		Eligibility: gate,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
