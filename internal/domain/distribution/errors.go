package distribution

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidDistributionKind = errors.New("invalid distribution kind")
)
