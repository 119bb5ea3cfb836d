package booking

import "errors"

var (
	// ErrSessionNotFound indicates the flow session is missing or expired.
	ErrSessionNotFound = errors.New("booking session not found or expired")

	// ErrFlowIncomplete indicates the requested step transition is not
	// permitted because a prior step is incomplete.
	ErrFlowIncomplete = errors.New("booking flow step incomplete")

	// ErrUnknownServiceType indicates a service type not in the catalog.
	ErrUnknownServiceType = errors.New("unknown service type")
)
