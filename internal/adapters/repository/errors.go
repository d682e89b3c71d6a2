package repository

import "errors"

// Sentinel kinds for dataset file errors.
var (
	ErrEmptyDataset = errors.New("dataset is empty")
	ErrInvalidMap   = errors.New("invalid healpix map file")
	ErrOutputDir    = errors.New("output directory unavailable")
	ErrInvalidTable = errors.New("invalid catalogue file")
)
