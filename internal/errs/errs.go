// Package errs defines the typed error taxonomy from spec §7: every
// user-visible failure is a concrete struct implementing
// models.RecoverableError (ErrorCode/Context/SuggestedAction), following
// the teacher's internal/store/errors.go shape. Centralizing them here
// (rather than duplicating per-package, as the teacher does) avoids import
// cycles between store, transition, and workspace, which all need to raise
// and inspect these kinds.
package errs

import (
	"errors"
	"fmt"
)

// Kind is the symbolic error kind surfaced to callers, per spec §7.
type Kind string

// Error kinds, grouped per spec §7's taxonomy.
const (
	KindNoValidTransition    Kind = "no-valid-transition"
	KindGateFailed           Kind = "gate-failed"
	KindInvalidArg           Kind = "invalid-arg"
	KindPoolExhausted        Kind = "pool-exhausted"
	KindDirtyWorkspace       Kind = "dirty-workspace"
	KindBranchInUse          Kind = "branch-in-use-by-worktree"
	KindProjectNotFound      Kind = "project-not-found"
	KindTaskNotFound         Kind = "task-not-found"
	KindMultiplexerUnavail   Kind = "multiplexer-unavailable"
	KindVCSFailed            Kind = "vcs-failed"
	KindPROpen               Kind = "pr-open"
	KindPRClosed             Kind = "pr-closed"
	KindPRNotFound           Kind = "pr-not-found"
	KindPersistenceFailed    Kind = "persistence-failed"
)

// Error is the single concrete RecoverableError implementation for all
// kinds above. A single struct (rather than one type per kind, as the
// teacher does for its handful of claim/version errors) keeps the taxonomy
// a flat, data-driven table matching spec §7's own presentation.
type Error struct {
	Kind    Kind
	Message string
	Ctx     map[string]string
	Action  string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

// ErrorCode returns the symbolic kind as an upper-level code string.
func (e *Error) ErrorCode() string { return string(e.Kind) }

// Context returns structured key/value detail for the failure.
func (e *Error) Context() map[string]string {
	if e.Ctx == nil {
		return map[string]string{}
	}
	return e.Ctx
}

// SuggestedAction returns a short remediation hint, if any.
func (e *Error) SuggestedAction() string { return e.Action }

// Unwrap exposes the wrapped cause, if any, to errors.Is/As.
func (e *Error) Unwrap() error { return e.Wrapped }

// Is matches by Kind so callers can write errors.Is(err, errs.KindX) style
// checks via the kind sentinel helpers below.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New constructs an Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error of the given kind that wraps an underlying cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Wrapped: cause}
}

// WithContext attaches structured context and returns the same error for
// chaining, e.g. errs.New(...).WithContext(map[string]string{...}).
func (e *Error) WithContext(ctx map[string]string) *Error {
	e.Ctx = ctx
	return e
}

// WithAction attaches a suggested remediation action.
func (e *Error) WithAction(action string) *Error {
	e.Action = action
	return e
}

// Sentinel instances for errors.Is comparisons against a bare kind, used
// the way the teacher compares ErrVersionConflict.
var (
	ErrNoValidTransition  = &Error{Kind: KindNoValidTransition}
	ErrGateFailed         = &Error{Kind: KindGateFailed}
	ErrPoolExhausted      = &Error{Kind: KindPoolExhausted}
	ErrDirtyWorkspace     = &Error{Kind: KindDirtyWorkspace}
	ErrBranchInUse        = &Error{Kind: KindBranchInUse}
	ErrProjectNotFound    = &Error{Kind: KindProjectNotFound}
	ErrTaskNotFound       = &Error{Kind: KindTaskNotFound}
	ErrMultiplexerUnavail = &Error{Kind: KindMultiplexerUnavail}
	ErrPROpen             = &Error{Kind: KindPROpen}
	ErrPRClosed           = &Error{Kind: KindPRClosed}
	ErrPRNotFound         = &Error{Kind: KindPRNotFound}
)

// Of reports whether err is an *Error of the given kind.
func Of(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// RootCause strips wrapped layers down to the innermost *Error, for the
// single cleaned-up root-cause line spec §7 requires on CLI output. Falls
// back to the original error if it's not one of our typed errors.
func RootCause(err error) error {
	var e *Error
	if errors.As(err, &e) {
		for e.Wrapped != nil {
			var inner *Error
			if errors.As(e.Wrapped, &inner) {
				e = inner
				continue
			}
			break
		}
		return e
	}
	return err
}
