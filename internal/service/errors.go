package service

import "errors"

var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrMissingEvidence   = errors.New("after photo is required to complete a report")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSubmissionFailed  = errors.New("report submission failed")
	ErrUpdateFailed      = errors.New("report update failed")
)
