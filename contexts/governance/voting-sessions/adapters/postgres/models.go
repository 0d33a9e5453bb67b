package postgresadapter

import (
	"time"

	"coopvotes/contexts/governance/voting-sessions/domain/entities"
)

type proposalModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (proposalModel) TableName() string { return "proposals" }

// sessionModel enforces at most one session per proposal at the storage
// layer; the application pre-check is only an optimization.
type sessionModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ProposalID string    `gorm:"column:proposal_id;not null;uniqueIndex:ux_voting_sessions_proposal"`
	OpenedAt   time.Time `gorm:"column:opened_at;not null"`
	ClosesAt   time.Time `gorm:"column:closes_at;not null"`
	Status     string    `gorm:"column:status;not null"`
	Version    int64     `gorm:"column:version;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (sessionModel) TableName() string { return "voting_sessions" }

// voteModel enforces at most one vote per (proposal, member) at the storage
// layer; this is the authoritative double-voting guard.
type voteModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ProposalID string    `gorm:"column:proposal_id;not null;uniqueIndex:ux_votes_proposal_member"`
	SessionID  string    `gorm:"column:session_id;not null"`
	MemberID   string    `gorm:"column:member_id;not null;uniqueIndex:ux_votes_proposal_member"`
	Choice     bool      `gorm:"column:choice;not null"`
	VotedAt    time.Time `gorm:"column:voted_at;not null"`
}

func (voteModel) TableName() string { return "votes" }

func proposalModelFromEntity(proposal entities.Proposal) proposalModel {
	return proposalModel{
		ID:          proposal.ProposalID,
		Title:       proposal.Title,
		Description: proposal.Description,
		CreatedAt:   proposal.CreatedAt,
	}
}

func (m proposalModel) toEntity() entities.Proposal {
	return entities.Proposal{
		ProposalID:  m.ID,
		Title:       m.Title,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

func sessionModelFromEntity(session entities.VotingSession) sessionModel {
	return sessionModel{
		ID:         session.SessionID,
		ProposalID: session.ProposalID,
		OpenedAt:   session.OpenedAt,
		ClosesAt:   session.ClosesAt,
		Status:     string(session.Status),
		Version:    session.Version,
		CreatedAt:  session.CreatedAt,
		UpdatedAt:  session.UpdatedAt,
	}
}

func (m sessionModel) toEntity() entities.VotingSession {
	return entities.VotingSession{
		SessionID:  m.ID,
		ProposalID: m.ProposalID,
		OpenedAt:   m.OpenedAt,
		ClosesAt:   m.ClosesAt,
		Status:     entities.SessionStatus(m.Status),
		Version:    m.Version,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		ID:         vote.VoteID,
		ProposalID: vote.ProposalID,
		SessionID:  vote.SessionID,
		MemberID:   vote.MemberID,
		Choice:     vote.Choice,
		VotedAt:    vote.VotedAt,
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:     m.ID,
		ProposalID: m.ProposalID,
		SessionID:  m.SessionID,
		MemberID:   m.MemberID,
		Choice:     m.Choice,
		VotedAt:    m.VotedAt,
	}
}

// Models lists every persisted model for migration.
func Models() []any {
	return []any{&proposalModel{}, &sessionModel{}, &voteModel{}}
}
