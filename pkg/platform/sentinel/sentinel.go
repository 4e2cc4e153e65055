package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, queue transports and HTTP
// clients return these (optionally wrapped) so services can translate them
// into domain outcomes:
// - ErrNotFound: record or document does not exist
// - ErrConflict: a compare-and-set lost against a concurrent writer
// - ErrInvalidState: entity in wrong state for the requested operation
// - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
