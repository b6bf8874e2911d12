package compliance

import "errors"

var (
	ErrValidation              = errors.New("validation failed")
	ErrNotFound                = errors.New("not found")
	ErrReconciliation          = errors.New("expiry reconciliation failed")
	ErrInvalidStatusTransition = errors.New("invalid vehicle status transition")

	ErrInvalidVehicleStatus = errors.New("invalid vehicle status")
	ErrInvalidOutcome       = errors.New("invalid inspection outcome")
	ErrInvalidSubType       = errors.New("invalid insurance sub-type")
	ErrInvalidRole          = errors.New("invalid user role")
)
