package service

import "errors"

// Service-level error taxonomy. Handlers map these onto HTTP statuses;
// platform adapters carry their own PublishError codes.
var (
	ErrInsufficientCredits    = errors.New("insufficient credits")
	ErrNotFound               = errors.New("resource not found")
	ErrConnectionNotFound     = errors.New("social connection not found")
	ErrInvalidScheduleTime    = errors.New("scheduled time must be in the future")
	ErrInvalidStateTransition = errors.New("post is no longer in a state that allows this operation")
	ErrGenerationFailed       = errors.New("generation failed before any content was produced")
	ErrNoTargets              = errors.New("no publish targets selected")
)
