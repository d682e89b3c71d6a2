package verify

import "errors"

// Sentinel kinds for verification errors.
var (
	ErrNothingToVerify = errors.New("no dataset files found")
	ErrCheckFailed     = errors.New("dataset check failed")
)
