package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"coopvotes/contexts/governance/voting-sessions/adapters/memory"
	"coopvotes/contexts/governance/voting-sessions/domain/entities"
	domainerrors "coopvotes/contexts/governance/voting-sessions/domain/errors"
)

type scheduledClosure struct {
	SessionID string
	Delay     time.Duration
}

type stubScheduler struct {
	mu    sync.Mutex
	calls []scheduledClosure
	err   error
}

func (s *stubScheduler) ScheduleClosure(_ context.Context, sessionID string, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, scheduledClosure{SessionID: sessionID, Delay: delay})
	return nil
}

func (s *stubScheduler) scheduled() []scheduledClosure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scheduledClosure(nil), s.calls...)
}

func newSessionFixture(t *testing.T) (*memory.Store, *stubScheduler, SessionUseCase) {
	t.Helper()
	store := memory.NewStore([]entities.Proposal{
		{ProposalID: "prop-1", Title: "New assembly hall"},
	})
	store.SetNow(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	scheduler := &stubScheduler{}
	useCase := SessionUseCase{
		Proposals: store,
		Sessions:  store,
		Scheduler: scheduler,
		Clock:     store,
		IDGen:     store,
	}
	return store, scheduler, useCase
}

func TestOpenSessionDefaultDuration(t *testing.T) {
	store, scheduler, useCase := newSessionFixture(t)

	session, err := useCase.OpenSession(context.Background(), OpenSessionCommand{ProposalID: "prop-1"})
	if err != nil {
		t.Fatalf("open session failed: %v", err)
	}
	if session.Status != entities.SessionStatusOpened {
		t.Fatalf("expected OPENED, got %s", session.Status)
	}
	if got, want := session.ClosesAt.Sub(session.OpenedAt), 60*time.Second; got != want {
		t.Fatalf("expected default window of %s, got %s", want, got)
	}
	if session.Version != 1 {
		t.Fatalf("expected version 1, got %d", session.Version)
	}

	calls := scheduler.scheduled()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one scheduled closure, got %d", len(calls))
	}
	if calls[0].SessionID != session.SessionID || calls[0].Delay != 60*time.Second {
		t.Fatalf("unexpected closure instruction %+v", calls[0])
	}

	stored, err := store.GetSession(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if !stored.ClosesAt.Equal(session.ClosesAt) {
		t.Fatalf("stored session diverged: %v vs %v", stored.ClosesAt, session.ClosesAt)
	}
}

func TestOpenSessionDurationBounds(t *testing.T) {
	cases := []struct {
		name     string
		duration int
		wantErr  bool
	}{
		{name: "zero", duration: 0, wantErr: false},
		{name: "max", duration: 3600, wantErr: false},
		{name: "over max", duration: 3601, wantErr: true},
		{name: "negative", duration: -1, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, useCase := newSessionFixture(t)
			duration := tc.duration
			session, err := useCase.OpenSession(context.Background(), OpenSessionCommand{
				ProposalID:      "prop-1",
				DurationSeconds: &duration,
			})
			if tc.wantErr {
				var validation *domainerrors.ValidationError
				if !errors.As(err, &validation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if validation.Field != "duration_seconds" {
					t.Fatalf("expected duration_seconds field, got %s", validation.Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("open session failed: %v", err)
			}
			if got, want := session.ClosesAt.Sub(session.OpenedAt), time.Duration(tc.duration)*time.Second; got != want {
				t.Fatalf("expected window %s, got %s", want, got)
			}
		})
	}
}

func TestOpenSessionZeroDurationImmediatelyOverdue(t *testing.T) {
	store, _, useCase := newSessionFixture(t)

	duration := 0
	session, err := useCase.OpenSession(context.Background(), OpenSessionCommand{
		ProposalID:      "prop-1",
		DurationSeconds: &duration,
	})
	if err != nil {
		t.Fatalf("open session failed: %v", err)
	}
	if !session.ClosesAt.Equal(session.OpenedAt) {
		t.Fatalf("expected closes_at to equal opened_at, got %v vs %v", session.ClosesAt, session.OpenedAt)
	}

	overdue, err := store.ListOverdueSessions(context.Background(), store.Now(), 10)
	if err != nil {
		t.Fatalf("list overdue failed: %v", err)
	}
	if len(overdue) != 1 || overdue[0].SessionID != session.SessionID {
		t.Fatalf("expected the zero-duration session to be overdue, got %+v", overdue)
	}
}

func TestOpenSessionProposalNotFound(t *testing.T) {
	_, scheduler, useCase := newSessionFixture(t)

	_, err := useCase.OpenSession(context.Background(), OpenSessionCommand{ProposalID: "missing"})
	if !errors.Is(err, domainerrors.ErrProposalNotFound) {
		t.Fatalf("expected proposal not found, got %v", err)
	}
	if len(scheduler.scheduled()) != 0 {
		t.Fatal("no closure may be scheduled for a missing proposal")
	}
}

func TestOpenSessionSecondOpenConflicts(t *testing.T) {
	_, scheduler, useCase := newSessionFixture(t)

	if _, err := useCase.OpenSession(context.Background(), OpenSessionCommand{ProposalID: "prop-1"}); err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	_, err := useCase.OpenSession(context.Background(), OpenSessionCommand{ProposalID: "prop-1"})
	if !errors.Is(err, domainerrors.ErrSessionAlreadyOpened) {
		t.Fatalf("expected session already opened, got %v", err)
	}
	if len(scheduler.scheduled()) != 1 {
		t.Fatalf("expected one scheduled closure, got %d", len(scheduler.scheduled()))
	}
}

func TestOpenSessionSchedulingFailureKeepsSession(t *testing.T) {
	store, scheduler, useCase := newSessionFixture(t)
	scheduler.err = errors.New("broker unavailable")

	_, err := useCase.OpenSession(context.Background(), OpenSessionCommand{ProposalID: "prop-1"})
	if err == nil {
		t.Fatal("expected scheduling failure to surface")
	}

	// The session survives so the reconciliation sweep can close it later.
	session, found, getErr := store.GetSessionByProposal(context.Background(), "prop-1")
	if getErr != nil {
		t.Fatalf("get session failed: %v", getErr)
	}
	if !found || session.Status != entities.SessionStatusOpened {
		t.Fatalf("expected a persisted OPENED session, got found=%v %+v", found, session)
	}
}

func TestCloseSessionIsIdempotent(t *testing.T) {
	_, _, useCase := newSessionFixture(t)

	session, err := useCase.OpenSession(context.Background(), OpenSessionCommand{ProposalID: "prop-1"})
	if err != nil {
		t.Fatalf("open session failed: %v", err)
	}

	first, err := useCase.CloseSession(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if first.Status != entities.SessionStatusClosed || first.Version != 2 {
		t.Fatalf("unexpected closed session %+v", first)
	}

	second, err := useCase.CloseSession(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("duplicate close failed: %v", err)
	}
	if second.Version != first.Version {
		t.Fatalf("duplicate close must not bump the version: %d vs %d", second.Version, first.Version)
	}
}

func TestCloseSessionNotFound(t *testing.T) {
	_, _, useCase := newSessionFixture(t)

	_, err := useCase.CloseSession(context.Background(), "missing")
	if !errors.Is(err, domainerrors.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

// racingSessions serves a stale OPENED read, rejects the transition, then
// serves the closed session, mimicking a concurrent delivery winning the race.
type racingSessions struct {
	*memory.Store
	stale entities.VotingSession
	reads int
}

func (r *racingSessions) GetSession(ctx context.Context, sessionID string) (entities.VotingSession, error) {
	r.reads++
	if r.reads == 1 {
		return r.stale, nil
	}
	return r.Store.GetSession(ctx, sessionID)
}

func (r *racingSessions) MarkSessionClosed(context.Context, string, int64, time.Time) (entities.VotingSession, error) {
	return entities.VotingSession{}, domainerrors.ErrVersionConflict
}

func TestCloseSessionVersionConflictDegradesToNoop(t *testing.T) {
	store, _, useCase := newSessionFixture(t)

	session, err := useCase.OpenSession(context.Background(), OpenSessionCommand{ProposalID: "prop-1"})
	if err != nil {
		t.Fatalf("open session failed: %v", err)
	}
	if _, err := useCase.CloseSession(context.Background(), session.SessionID); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	stale := session
	stale.Status = entities.SessionStatusOpened
	stale.Version = 1
	useCase.Sessions = &racingSessions{Store: store, stale: stale}

	closed, err := useCase.CloseSession(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("expected conflict to degrade to a no-op, got %v", err)
	}
	if closed.Status != entities.SessionStatusClosed {
		t.Fatalf("expected the already closed session, got %+v", closed)
	}
}

func TestGetActiveSession(t *testing.T) {
	_, _, useCase := newSessionFixture(t)

	_, err := useCase.GetActiveSession(context.Background(), "prop-1")
	if !errors.Is(err, domainerrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}

	session, err := useCase.OpenSession(context.Background(), OpenSessionCommand{ProposalID: "prop-1"})
	if err != nil {
		t.Fatalf("open session failed: %v", err)
	}
	active, err := useCase.GetActiveSession(context.Background(), "prop-1")
	if err != nil {
		t.Fatalf("get active session failed: %v", err)
	}
	if active.SessionID != session.SessionID {
		t.Fatalf("unexpected session %s", active.SessionID)
	}

	if _, err := useCase.CloseSession(context.Background(), session.SessionID); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	_, err = useCase.GetActiveSession(context.Background(), "prop-1")
	if !errors.Is(err, domainerrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session after close, got %v", err)
	}
}
