package markettypes

import (
	"errors"
	"fmt"
)

// ErrNotFound is the storage-level sentinel for missing records. It is
// infrastructure, not a market rule violation, and callers retry or surface
// it opaquely.
var ErrNotFound = errors.New("not found")

// ErrorKind enumerates the recoverable market rule violations. Every rejected
// action carries one so clients can present actionable feedback.
type ErrorKind string

const (
	KindInsufficientBudget ErrorKind = "insufficient-budget"
	KindInsufficientClause ErrorKind = "insufficient-clause"
	KindInvalidRenewal     ErrorKind = "invalid-renewal"
	KindInvalidDuration    ErrorKind = "invalid-duration"
	KindAlreadyReleased    ErrorKind = "already-released"
	KindAuctionClosed      ErrorKind = "auction-closed"
	KindNotYourTurn        ErrorKind = "not-your-turn"
	KindAlreadyFinished    ErrorKind = "already-finished"
	KindNoActiveMembers    ErrorKind = "no-active-members"
	KindStateConflict      ErrorKind = "state-conflict"
	KindNotEligible        ErrorKind = "not-eligible"
)

// Error is a market rule violation. Two Errors match under errors.Is when
// their kinds match, so callers can branch on kind while the message stays
// specific about which invariant failed.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Kind sentinels for errors.Is matching.
var (
	ErrInsufficientBudget = &Error{KindInsufficientBudget, "insufficient bilancio"}
	ErrInsufficientClause = &Error{KindInsufficientClause, "salary below acquisition price"}
	ErrInvalidRenewal     = &Error{KindInvalidRenewal, "invalid renewal"}
	ErrInvalidDuration    = &Error{KindInvalidDuration, "duration must be between 1 and 4 semesters"}
	ErrAlreadyReleased    = &Error{KindAlreadyReleased, "contract already released"}
	ErrAuctionClosed      = &Error{KindAuctionClosed, "auction is closed"}
	ErrNotYourTurn        = &Error{KindNotYourTurn, "not your turn"}
	ErrAlreadyFinished    = &Error{KindAlreadyFinished, "member already declared finished"}
	ErrNoActiveMembers    = &Error{KindNoActiveMembers, "no active members left in rotation"}
	ErrStateConflict      = &Error{KindStateConflict, "state conflict"}
	ErrNotEligible        = &Error{KindNotEligible, "not eligible"}
)

// KindOf extracts the market error kind, or "" for infrastructure errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
