package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	votingsessions "coopvotes/contexts/governance/voting-sessions"
	domainerrors "coopvotes/contexts/governance/voting-sessions/domain/errors"
	votinghttp "coopvotes/contexts/governance/voting-sessions/transport/http"
	"coopvotes/internal/shared/trace"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "coopvotes/internal/platform/httpserver/docs"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	voting votingsessions.Module
}

func New(voting votingsessions.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		voting: voting,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.Handler())
}

// Handler returns the routed handler wrapped with trace propagation.
func (s *Server) Handler() http.Handler {
	return withTrace(s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /proposal", s.handleCreateProposal)
	s.mux.HandleFunc("GET /proposal", s.handleListProposals)
	s.mux.HandleFunc("GET /proposal/{proposal_id}", s.handleGetProposal)
	s.mux.HandleFunc("POST /proposal/{proposal_id}/open", s.handleOpenSession)
	s.mux.HandleFunc("POST /proposal/{proposal_id}/vote", s.handleCastVote)
	s.mux.HandleFunc("GET /proposal/{proposal_id}/result", s.handleGetResult)

	s.mux.HandleFunc("GET /mobile/proposals", s.handleMobileProposalList)
	s.mux.HandleFunc("GET /mobile/proposals/new", s.handleMobileProposalForm)
	s.mux.HandleFunc("GET /mobile/proposals/{proposal_id}", s.handleMobileVotingForm)
}

// withTrace resolves the inbound trace id, generating one when the header is
// absent, and echoes it on the response so callers can correlate.
func withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := strings.TrimSpace(r.Header.Get(trace.Header))
		if traceID == "" {
			traceID = trace.New()
		}
		w.Header().Set(trace.Header, traceID)
		next.ServeHTTP(w, r.WithContext(trace.WithTraceID(r.Context(), traceID)))
	})
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	var req votinghttp.CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}

	if err := s.voting.Handler.CreateProposalHandler(r.Context(), req); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 0
	if raw := query.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_page", "page must be an integer", nil)
			return
		}
		page = parsed
	}

	size := 0
	if raw := query.Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_size", "size must be an integer", nil)
			return
		}
		size = parsed
	}

	desc := strings.EqualFold(query.Get("direction"), "desc")

	resp, err := s.voting.Handler.ListProposalsHandler(r.Context(), page, size, query.Get("sort"), desc)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("proposal_id")
	resp, err := s.voting.Handler.GetProposalHandler(r.Context(), proposalID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req votinghttp.OpenSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
			return
		}
	}

	proposalID := r.PathValue("proposal_id")
	resp, err := s.voting.Handler.OpenSessionHandler(r.Context(), proposalID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req votinghttp.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}

	proposalID := r.PathValue("proposal_id")
	resp, err := s.voting.Handler.CastVoteHandler(r.Context(), proposalID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("proposal_id")
	resp, err := s.voting.Handler.GetResultHandler(r.Context(), proposalID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMobileProposalList(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.Screens.ProposalSelectionScreen(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMobileProposalForm(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.voting.Handler.Screens.ProposalFormScreen())
}

func (s *Server) handleMobileVotingForm(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("proposal_id")
	resp, err := s.voting.Handler.Screens.VotingFormScreen(r.Context(), proposalID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch domainerrors.KindOf(err) {
	case domainerrors.KindValidation:
		var validation *domainerrors.ValidationError
		if errors.As(err, &validation) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error(), map[string]string{
				validation.Field: validation.Detail,
			})
			return
		}
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error(), nil)
	case domainerrors.KindNotFound:
		writeError(w, http.StatusNotFound, errorCode(err), err.Error(), nil)
	case domainerrors.KindConflict:
		writeError(w, http.StatusConflict, errorCode(err), err.Error(), nil)
	case domainerrors.KindForbidden:
		writeError(w, http.StatusForbidden, "member_not_eligible", err.Error(), nil)
	case domainerrors.KindUnavailable:
		writeError(w, http.StatusBadGateway, "eligibility_unavailable", err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrProposalNotFound):
		return "proposal_not_found"
	case errors.Is(err, domainerrors.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, domainerrors.ErrNoActiveSession):
		return "no_active_session"
	case errors.Is(err, domainerrors.ErrSessionAlreadyOpened):
		return "session_already_opened"
	case errors.Is(err, domainerrors.ErrDuplicateVote):
		return "duplicate_vote"
	case errors.Is(err, domainerrors.ErrVersionConflict):
		return "version_conflict"
	default:
		return "error"
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string, details map[string]string) {
	writeJSON(w, status, votinghttp.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
