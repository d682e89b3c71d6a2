package service

import (
	"github.com/okian/kappagen/internal/domain/catalogue"
	"github.com/okian/kappagen/internal/domain/cosmology"
	"github.com/okian/kappagen/internal/domain/healpix"
	"github.com/okian/kappagen/pkg/logger"
	"github.com/okian/kappagen/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkers sets the goroutine budget shared by concurrent maps and their
// smoothers.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithSmoother replaces the map smoother.
func WithSmoother(sm healpix.Smoother) Option {
	return func(s *Service) {
		if sm != nil {
			s.smoother = sm
		}
	}
}

// WithCosmology replaces the distance model used for apparent magnitudes.
func WithCosmology(d cosmology.Distancer) Option {
	return func(s *Service) {
		if d != nil {
			s.cosmo = d
		}
	}
}

// WithMetrics records on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithCatalogueParams sets the large catalogue parameters.
func WithCatalogueParams(p catalogue.Params) Option {
	return func(s *Service) {
		s.catalogue = p
	}
}

// WithRedshiftCatalogueParams sets the base catalogue of the
// spectroscopic/photometric pair.
func WithRedshiftCatalogueParams(p catalogue.Params) Option {
	return func(s *Service) {
		s.redshift = p
	}
}

// WithMapGrid sets the resolutions and source redshifts of the map grid.
func WithMapGrid(nsides []int, sources []float64) Option {
	return func(s *Service) {
		s.mapNsides = append([]int(nil), nsides...)
		s.mapSources = append([]float64(nil), sources...)
	}
}

// WithMapSeed sets the seed every map is drawn from.
func WithMapSeed(seed int64) Option {
	return func(s *Service) {
		s.mapSeed = seed
	}
}
