package moderation

import "errors"

// Sentinel kinds for moderation errors.
var (
	ErrFlagNotFound      = errors.New("flag not found")
	ErrDuplicateReport   = errors.New("a report by this user is already pending")
	ErrInvalidStatus     = errors.New("invalid flag status")
	ErrInvalidTransition = errors.New("invalid flag status transition")
)
