package models

import "errors"

// Custom errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateKey       = errors.New("duplicate key violation")
	ErrCompetitionUnknown = errors.New("unknown competition code")
	ErrValidation         = errors.New("validation failed")
	ErrQuotaExceeded      = errors.New("daily lookup quota exceeded")
	ErrStoreUnavailable   = errors.New("document store unavailable")
)
