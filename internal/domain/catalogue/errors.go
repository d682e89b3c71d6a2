package catalogue

import (
	"errors"

	"github.com/okian/kappagen/internal/domain/distribution"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidParams = errors.New("invalid catalogue parameters")

	// ErrInvalidDistributionKind is re-exported so callers of the sampler
	// need not import the distribution package.
	ErrInvalidDistributionKind = distribution.ErrInvalidDistributionKind
)
