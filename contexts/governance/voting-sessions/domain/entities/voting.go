package entities

import "time"

// Proposal is a topic submitted for a yes/no vote. It is immutable after
// creation; its lifecycle advances only through the associated session.
type Proposal struct {
	ProposalID  string
	Title       string
	Description string
	CreatedAt   time.Time
}

type SessionStatus string

const (
	SessionStatusOpened SessionStatus = "OPENED"
	SessionStatusClosed SessionStatus = "CLOSED"
)

// VotingSession is the time-boxed window during which votes on a proposal are
// accepted. Status only ever moves OPENED -> CLOSED; Version is the optimistic
// token guarding that transition against racing closure deliveries.
type VotingSession struct {
	SessionID  string
	ProposalID string
	OpenedAt   time.Time
	ClosesAt   time.Time
	Status     SessionStatus
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (s VotingSession) Closed() bool {
	return s.Status == SessionStatusClosed
}

// Vote records one member's choice. It references both the proposal and the
// session instance it was cast under so historical sessions stay
// distinguishable.
type Vote struct {
	VoteID     string
	ProposalID string
	SessionID  string
	MemberID   string
	Choice     bool
	VotedAt    time.Time
}

// VoteResult is the yes/no tally over all votes for a proposal.
type VoteResult struct {
	CountYes   int64
	CountNo    int64
	TotalVotes int64
}

// ProposalStatus is the listing-level view of a proposal derived from its
// session: WAITING when no session exists yet.
type ProposalStatus string

const (
	ProposalStatusWaiting ProposalStatus = "WAITING"
	ProposalStatusOpened  ProposalStatus = "OPENED"
	ProposalStatusClosed  ProposalStatus = "CLOSED"
)

func StatusFromSession(session *VotingSession) ProposalStatus {
	if session == nil {
		return ProposalStatusWaiting
	}
	if session.Closed() {
		return ProposalStatusClosed
	}
	return ProposalStatusOpened
}
