package healpix

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidResolution = errors.New("invalid healpix resolution")
	ErrPixelCount        = errors.New("pixel count does not match resolution")
	ErrInvalidPixel      = errors.New("pixel index out of range")
)
