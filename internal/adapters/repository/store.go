// Package repository persists generated datasets as flat files.
package repository

import (
	"context"

	"github.com/okian/kappagen/internal/domain/catalogue"
	"github.com/okian/kappagen/internal/domain/kappa"
)

// Standard output file names.
const (
	LargeCatalogueFile         = "large_galaxy_catalogue.csv"
	SpectroscopicCatalogueFile = "spectroscopic_catalogue.csv"
	PhotometricCatalogueFile   = "photometric_catalogue.csv"
)

// Store writes datasets and reports what has been written.
type Store interface {
	// SaveCatalogue writes cat with sequential galaxy ids and returns the file path.
	SaveCatalogue(ctx context.Context, name string, cat catalogue.Catalogue) (string, error)
	// SaveSpectroscopic writes a spectroscopic redshift catalogue.
	SaveSpectroscopic(ctx context.Context, name string, cat []catalogue.SpecGalaxy) (string, error)
	// SavePhotometric writes a photometric redshift catalogue.
	SavePhotometric(ctx context.Context, name string, cat []catalogue.PhotoGalaxy) (string, error)
	// SaveMap writes m under its conventional file name.
	SaveMap(ctx context.Context, m kappa.Map) (string, error)
	// List returns the dataset files present, sorted by name.
	List(ctx context.Context) ([]string, error)
}
