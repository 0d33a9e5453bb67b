package http

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type CreateProposalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type OpenSessionRequest struct {
	DurationSeconds *int `json:"duration_seconds,omitempty"`
}

type SessionResponse struct {
	SessionID  string `json:"session_id"`
	ProposalID string `json:"proposal_id"`
	OpenedAt   string `json:"opened_at"`
	ClosesAt   string `json:"closes_at"`
	Status     string `json:"status"`
}

type VoteRequest struct {
	MemberID  string `json:"member_id"`
	MemberCPF string `json:"member_cpf"`
	Vote      *bool  `json:"vote"`
}

type VoteResponse struct {
	VoteID     string `json:"vote_id"`
	ProposalID string `json:"proposal_id"`
	SessionID  string `json:"session_id"`
	MemberID   string `json:"member_id"`
	Vote       bool   `json:"vote"`
	VotedAt    string `json:"voted_at"`
}

type ResultResponse struct {
	CountYes   int64 `json:"count_yes"`
	CountNo    int64 `json:"count_no"`
	TotalVotes int64 `json:"total_votes"`
}

type ProposalSummary struct {
	ProposalID  string `json:"proposal_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

type PagedResponse struct {
	Content       []ProposalSummary `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"total_elements"`
	TotalPages    int               `json:"total_pages"`
}

type ProposalDetailsResponse struct {
	ProposalID  string           `json:"proposal_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Status      string           `json:"status"`
	Session     *SessionResponse `json:"session,omitempty"`
	Result      *ResultResponse  `json:"result,omitempty"`
}
