package moderation

import (
	"errors"
	"slices"
)

// ViolationMessage is the user-facing message for rejected content.
// It deliberately names no terms.
const ViolationMessage = "Content contains prohibited language. Please remove inappropriate words and try again."

// UnavailableMessage is the user-facing message when the filter runs in
// FailClosed mode and has not loaded a term list yet.
const UnavailableMessage = "Content moderation is temporarily unavailable. Please try again shortly."

var (
	// ErrProhibitedContent matches every *ViolationError.
	ErrProhibitedContent = errors.New("prohibited content")

	// ErrModerationUnavailable matches every *UnavailableError.
	ErrModerationUnavailable = errors.New("moderation unavailable")
)

// ViolationError reports that text matched one or more prohibited terms.
// Error returns ViolationMessage; the matched terms are only available to
// server-side code through Matched.
type ViolationError struct {
	matched []string
}

// NewViolationError creates a ViolationError for the given matches.
func NewViolationError(matched []string) *ViolationError {
	return &ViolationError{matched: slices.Clone(matched)}
}

// Error implements the error interface.
func (e *ViolationError) Error() string {
	return ViolationMessage
}

// Is reports whether target is ErrProhibitedContent.
func (e *ViolationError) Is(target error) bool {
	return target == ErrProhibitedContent
}

// Matched returns the terms that triggered the violation.
func (e *ViolationError) Matched() []string {
	return slices.Clone(e.matched)
}

// UnavailableError is returned by FilterError in FailClosed mode while no
// term list has been loaded.
type UnavailableError struct{}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	return UnavailableMessage
}

// Is reports whether target is ErrModerationUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrModerationUnavailable
}

// IsViolation reports whether err is a moderation violation and returns it.
func IsViolation(err error) (*ViolationError, bool) {
	var v *ViolationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
