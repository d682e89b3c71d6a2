package service

import (
	"errors"
)

// Sentinel error kinds for the generation service.
var (
	ErrNoStore     = errors.New("service requires a dataset store")
	ErrInvalidGrid = errors.New("invalid map grid")
	ErrStageFailed = errors.New("generation stage failed")
)
