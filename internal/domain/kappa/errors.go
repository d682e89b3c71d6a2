package kappa

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidSource = errors.New("invalid source redshift")
	ErrInvalidGrid   = errors.New("invalid map grid")
)
