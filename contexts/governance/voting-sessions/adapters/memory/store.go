package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"coopvotes/contexts/governance/voting-sessions/domain/entities"
	domainerrors "coopvotes/contexts/governance/voting-sessions/domain/errors"
	"coopvotes/contexts/governance/voting-sessions/ports"

	"github.com/google/uuid"
)

// Store is the in-memory adapter used by tests and local wiring. It enforces
// the same two uniqueness invariants and the optimistic version token as the
// relational store, so concurrency behavior is observable without a database.
type Store struct {
	mu sync.Mutex

	proposals  map[string]entities.Proposal
	sessions   map[string]entities.VotingSession
	byProposal map[string]string // proposal id -> session id
	votes      map[string]entities.Vote
	voteKeys   map[string]string // proposal id + member id -> vote id

	now time.Time
}

func NewStore(seed []entities.Proposal) *Store {
	proposals := make(map[string]entities.Proposal, len(seed))
	for _, proposal := range seed {
		proposals[proposal.ProposalID] = proposal
	}
	return &Store{
		proposals:  proposals,
		sessions:   make(map[string]entities.VotingSession),
		byProposal: make(map[string]string),
		votes:      make(map[string]entities.Vote),
		voteKeys:   make(map[string]string),
	}
}

// SetNow pins the store clock for tests; zero means wall-clock time.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) SaveProposal(_ context.Context, proposal entities.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[proposal.ProposalID] = proposal
	return nil
}

func (s *Store) GetProposal(_ context.Context, proposalID string) (entities.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal, ok := s.proposals[strings.TrimSpace(proposalID)]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (s *Store) ListProposals(_ context.Context, page ports.ListPage) ([]entities.Proposal, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]entities.Proposal, 0, len(s.proposals))
	for _, proposal := range s.proposals {
		all = append(all, proposal)
	}
	sort.Slice(all, func(i, j int) bool {
		var less bool
		if page.OrderBy == "created_at" {
			less = all[i].CreatedAt.Before(all[j].CreatedAt)
		} else {
			less = all[i].Title < all[j].Title
		}
		if page.Desc {
			return !less
		}
		return less
	})

	total := int64(len(all))
	if page.Offset >= len(all) {
		return nil, total, nil
	}
	end := page.Offset + page.Limit
	if page.Limit <= 0 || end > len(all) {
		end = len(all)
	}
	return append([]entities.Proposal(nil), all[page.Offset:end]...), total, nil
}

func (s *Store) SaveSession(_ context.Context, session entities.VotingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byProposal[session.ProposalID]; exists {
		return domainerrors.ErrSessionAlreadyOpened
	}
	s.sessions[session.SessionID] = session
	s.byProposal[session.ProposalID] = session.SessionID
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (entities.VotingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return entities.VotingSession{}, domainerrors.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) GetSessionByProposal(_ context.Context, proposalID string) (entities.VotingSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessionID, ok := s.byProposal[strings.TrimSpace(proposalID)]
	if !ok {
		return entities.VotingSession{}, false, nil
	}
	return s.sessions[sessionID], true, nil
}

func (s *Store) MarkSessionClosed(_ context.Context, sessionID string, version int64, closedAt time.Time) (entities.VotingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return entities.VotingSession{}, domainerrors.ErrSessionNotFound
	}
	if session.Status != entities.SessionStatusOpened || session.Version != version {
		return entities.VotingSession{}, domainerrors.ErrVersionConflict
	}
	session.Status = entities.SessionStatusClosed
	session.Version = version + 1
	session.UpdatedAt = closedAt
	s.sessions[session.SessionID] = session
	return session, nil
}

func (s *Store) ListOverdueSessions(_ context.Context, cutoff time.Time, limit int) ([]entities.VotingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var overdue []entities.VotingSession
	for _, session := range s.sessions {
		if session.Status == entities.SessionStatusOpened && !session.ClosesAt.After(cutoff) {
			overdue = append(overdue, session)
		}
	}
	sort.Slice(overdue, func(i, j int) bool {
		return overdue[i].ClosesAt.Before(overdue[j].ClosesAt)
	})
	if limit > 0 && len(overdue) > limit {
		overdue = overdue[:limit]
	}
	return overdue, nil
}

func (s *Store) SaveVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey(vote.ProposalID, vote.MemberID)
	if _, exists := s.voteKeys[key]; exists {
		return domainerrors.ErrDuplicateVote
	}
	s.votes[vote.VoteID] = vote
	s.voteKeys[key] = vote.VoteID
	return nil
}

func (s *Store) HasVote(_ context.Context, proposalID string, memberID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.voteKeys[voteKey(strings.TrimSpace(proposalID), strings.TrimSpace(memberID))]
	return exists, nil
}

func (s *Store) CountVotes(_ context.Context, proposalID string) (entities.VoteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result entities.VoteResult
	proposalID = strings.TrimSpace(proposalID)
	for _, vote := range s.votes {
		if vote.ProposalID != proposalID {
			continue
		}
		if vote.Choice {
			result.CountYes++
		} else {
			result.CountNo++
		}
		result.TotalVotes++
	}
	return result, nil
}

func voteKey(proposalID string, memberID string) string {
	return proposalID + "\x00" + memberID
}
