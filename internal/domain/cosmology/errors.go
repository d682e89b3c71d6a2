package cosmology

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidRedshift = errors.New("invalid redshift")
)
