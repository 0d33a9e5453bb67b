package errors

import (
	"errors"
	"fmt"
)

var (
	ErrProposalNotFound       = errors.New("proposal not found")
	ErrSessionNotFound        = errors.New("voting session not found")
	ErrNoActiveSession        = errors.New("no active voting session for this proposal")
	ErrSessionAlreadyOpened   = errors.New("voting session already opened for this proposal")
	ErrDuplicateVote          = errors.New("member has already voted on this proposal")
	ErrMemberNotEligible      = errors.New("member is not allowed to vote")
	ErrEligibilityUnavailable = errors.New("eligibility verification unavailable")
	ErrVersionConflict        = errors.New("session was modified concurrently")
	ErrInvalidProposalInput   = errors.New("invalid proposal input")
)

// ValidationError carries the failing field so transports can return a
// per-field detail alongside the stable error kind.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Detail)
}

func NewValidation(field string, detail string) error {
	return &ValidationError{Field: field, Detail: detail}
}

// Kind is the stable machine-checkable classification surfaced to callers.
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindForbidden   Kind = "forbidden"
	KindValidation  Kind = "validation"
	KindUnavailable Kind = "unavailable"
	KindInternal    Kind = "internal"
)

func KindOf(err error) Kind {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		return KindValidation
	case errors.Is(err, ErrProposalNotFound),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrNoActiveSession):
		return KindNotFound
	case errors.Is(err, ErrSessionAlreadyOpened),
		errors.Is(err, ErrDuplicateVote),
		errors.Is(err, ErrVersionConflict):
		return KindConflict
	case errors.Is(err, ErrMemberNotEligible):
		return KindForbidden
	case errors.Is(err, ErrInvalidProposalInput):
		return KindValidation
	case errors.Is(err, ErrEligibilityUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}
