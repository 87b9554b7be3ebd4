package service

import "errors"

var (
	// ErrValidation marks input rejected before anything was persisted.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyProcessing rejects a reprocess request while an extraction
	// run for the same transcript is still active.
	ErrAlreadyProcessing = errors.New("transcript is already being processed")

	// ErrTooFewTasks rejects clustering before the collaborator is called.
	ErrTooFewTasks = errors.New("at least 2 eligible tasks are required for clustering")

	// ErrStillProcessing is a client-side polling timeout. The stored status
	// is untouched; the background run may still finish later.
	ErrStillProcessing = errors.New("processing is taking longer than expected")

	ErrUnknownIntegration  = errors.New("unknown integration")
	ErrIntegrationDisabled = errors.New("integration is disabled")
)
