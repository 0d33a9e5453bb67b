package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"coopvotes/contexts/governance/voting-sessions/domain/entities"
	domainerrors "coopvotes/contexts/governance/voting-sessions/domain/errors"
	"coopvotes/contexts/governance/voting-sessions/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

var (
	_ ports.ProposalRepository = (*Repository)(nil)
	_ ports.SessionRepository  = (*Repository)(nil)
	_ ports.VoteRepository     = (*Repository)(nil)
)

func (r *Repository) SaveProposal(ctx context.Context, proposal entities.Proposal) error {
	row := proposalModelFromEntity(proposal)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("voting_repo_save_proposal_failed", err,
			"proposal_id", proposal.ProposalID,
		)
	}
	return nil
}

func (r *Repository) GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(proposalID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, r.logError("voting_repo_get_proposal_failed", err,
			"proposal_id", strings.TrimSpace(proposalID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListProposals(ctx context.Context, page ports.ListPage) ([]entities.Proposal, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&proposalModel{}).Count(&total).Error; err != nil {
		return nil, 0, r.logError("voting_repo_count_proposals_failed", err)
	}

	order := page.OrderBy
	if order == "" {
		order = "title"
	}
	if page.Desc {
		order += " DESC"
	}
	var rows []proposalModel
	if err := r.db.WithContext(ctx).
		Order(order).
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, r.logError("voting_repo_list_proposals_failed", err)
	}

	proposals := make([]entities.Proposal, 0, len(rows))
	for _, row := range rows {
		proposals = append(proposals, row.toEntity())
	}
	return proposals, total, nil
}

func (r *Repository) SaveSession(ctx context.Context, session entities.VotingSession) error {
	row := sessionModelFromEntity(session)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrSessionAlreadyOpened
		}
		return r.logError("voting_repo_save_session_failed", err,
			"session_id", session.SessionID,
			"proposal_id", session.ProposalID,
		)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID string) (entities.VotingSession, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sessionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VotingSession{}, domainerrors.ErrSessionNotFound
		}
		return entities.VotingSession{}, r.logError("voting_repo_get_session_failed", err,
			"session_id", strings.TrimSpace(sessionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetSessionByProposal(ctx context.Context, proposalID string) (entities.VotingSession, bool, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VotingSession{}, false, nil
		}
		return entities.VotingSession{}, false, r.logError("voting_repo_get_session_by_proposal_failed", err,
			"proposal_id", strings.TrimSpace(proposalID),
		)
	}
	return row.toEntity(), true, nil
}

// MarkSessionClosed is a compare-and-swap on the session's version token. A
// zero-row update means a concurrent writer advanced the version first.
func (r *Repository) MarkSessionClosed(ctx context.Context, sessionID string, version int64, closedAt time.Time) (entities.VotingSession, error) {
	result := r.db.WithContext(ctx).Model(&sessionModel{}).
		Where("id = ? AND status = ? AND version = ?",
			strings.TrimSpace(sessionID), string(entities.SessionStatusOpened), version).
		Updates(map[string]any{
			"status":     string(entities.SessionStatusClosed),
			"version":    version + 1,
			"updated_at": closedAt,
		})
	if result.Error != nil {
		return entities.VotingSession{}, r.logError("voting_repo_mark_session_closed_failed", result.Error,
			"session_id", strings.TrimSpace(sessionID),
		)
	}
	if result.RowsAffected == 0 {
		return entities.VotingSession{}, domainerrors.ErrVersionConflict
	}
	return r.GetSession(ctx, sessionID)
}

func (r *Repository) ListOverdueSessions(ctx context.Context, cutoff time.Time, limit int) ([]entities.VotingSession, error) {
	var rows []sessionModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND closes_at <= ?", string(entities.SessionStatusOpened), cutoff).
		Order("closes_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_overdue_sessions_failed", err)
	}
	sessions := make([]entities.VotingSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toEntity())
	}
	return sessions, nil
}

func (r *Repository) SaveVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateVote
		}
		return r.logError("voting_repo_save_vote_failed", err,
			"vote_id", vote.VoteID,
			"proposal_id", vote.ProposalID,
			"member_id", vote.MemberID,
		)
	}
	return nil
}

func (r *Repository) HasVote(ctx context.Context, proposalID string, memberID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&voteModel{}).
		Where("proposal_id = ? AND member_id = ?",
			strings.TrimSpace(proposalID), strings.TrimSpace(memberID)).
		Count(&count).Error; err != nil {
		return false, r.logError("voting_repo_has_vote_failed", err,
			"proposal_id", strings.TrimSpace(proposalID),
			"member_id", strings.TrimSpace(memberID),
		)
	}
	return count > 0, nil
}

func (r *Repository) CountVotes(ctx context.Context, proposalID string) (entities.VoteResult, error) {
	var row struct {
		CountYes int64
		CountNo  int64
	}
	err := r.db.WithContext(ctx).Model(&voteModel{}).
		Select("count(*) FILTER (WHERE choice) AS count_yes, count(*) FILTER (WHERE NOT choice) AS count_no").
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		Scan(&row).Error
	if err != nil {
		return entities.VoteResult{}, r.logError("voting_repo_count_votes_failed", err,
			"proposal_id", strings.TrimSpace(proposalID),
		)
	}
	return entities.VoteResult{
		CountYes:   row.CountYes,
		CountNo:    row.CountNo,
		TotalVotes: row.CountYes + row.CountNo,
	}, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/voting-sessions",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
