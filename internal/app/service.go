// Package service composes the galaxy and convergence map samplers into the
// tutorial dataset and writes it through a dataset store.
package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/kappagen/internal/adapters/repository"
	"github.com/okian/kappagen/internal/domain/catalogue"
	"github.com/okian/kappagen/internal/domain/cosmology"
	"github.com/okian/kappagen/internal/domain/distribution"
	"github.com/okian/kappagen/internal/domain/healpix"
	"github.com/okian/kappagen/internal/domain/kappa"
	"github.com/okian/kappagen/internal/domain/random"
	"github.com/okian/kappagen/pkg/logger"
	"github.com/okian/kappagen/pkg/metrics"
)

// Service generates the tutorial datasets.
type Service struct {
	store    repository.Store
	cosmo    cosmology.Distancer
	smoother healpix.Smoother
	logger   logger.Logger
	metrics  *metrics.Manager
	workers  int

	catalogue  catalogue.Params
	redshift   catalogue.Params
	mapNsides  []int
	mapSources []float64
	mapSeed    int64
}

// CatalogueResult describes a written galaxy catalogue.
type CatalogueResult struct {
	Path        string
	Count       int
	Redshift    catalogue.Summary
	Size        catalogue.Summary
	ApparentMag catalogue.Summary
}

// MapResult describes one written convergence map.
type MapResult struct {
	Path    string
	Nside   int
	ZSource float64
	Kappa   catalogue.Summary
}

// RedshiftResult describes the written spectroscopic/photometric pair.
type RedshiftResult struct {
	SpectroscopicPath string
	PhotometricPath   string
	Count             int
	PhotoZ            catalogue.Summary
}

// Report summarises a complete run.
type Report struct {
	RunID     string
	Catalogue CatalogueResult
	Maps      []MapResult
	Redshift  RedshiftResult
	Files     []string
	Elapsed   time.Duration
}

// DefaultCatalogueParams are the parameters of the large catalogue.
func DefaultCatalogueParams() catalogue.Params {
	return catalogue.Params{
		N:            50_000,
		RedshiftDist: distribution.RedshiftGamma,
		SizeDist:     distribution.SizeLogNormal,
		AreaDeg2:     100,
		Seed:         42,
	}
}

// DefaultRedshiftCatalogueParams are the parameters of the base catalogue
// behind the spectroscopic/photometric pair.
func DefaultRedshiftCatalogueParams() catalogue.Params {
	return catalogue.Params{
		N:            10_000,
		RedshiftDist: distribution.RedshiftExponential,
		SizeDist:     distribution.SizeLogNormal,
		AreaDeg2:     25,
		Seed:         123,
	}
}

// New constructs a Service writing through store.
func New(store repository.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	s := &Service{
		store:      store,
		cosmo:      cosmology.Planck18,
		logger:     logger.Nop(),
		metrics:    metrics.Global(),
		workers:    runtime.NumCPU(),
		catalogue:  DefaultCatalogueParams(),
		redshift:   DefaultRedshiftCatalogueParams(),
		mapNsides:  []int{128, 256, 512},
		mapSources: []float64{0.5, 1.0, 1.5, 2.0},
		mapSeed:    42,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.catalogue.Validate(); err != nil {
		return nil, err
	}
	if err := s.redshift.Validate(); err != nil {
		return nil, err
	}
	if err := kappa.ValidateGrid(s.mapNsides, s.mapSources); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGrid, err)
	}
	if s.smoother == nil {
		s.smoother = healpix.NewGaussianSmoother(healpix.WithWorkers(s.smootherWorkers()))
	}
	return s, nil
}

// mapConcurrency is how many maps are drawn at once.
func (s *Service) mapConcurrency() int {
	return max(1, min(s.workers, len(s.mapNsides)*len(s.mapSources)))
}

// smootherWorkers splits the worker budget between concurrent maps so the
// run never holds more than workers CPU-bound goroutines.
func (s *Service) smootherWorkers() int {
	return max(1, s.workers/s.mapConcurrency())
}

func (s *Service) runLogger(runID string) logger.Logger {
	return s.logger.With(logger.String("run_id", runID))
}

// Run generates every dataset in order and lists the files present
// afterwards. The first failure aborts the run.
func (s *Service) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	rep := Report{RunID: uuid.NewString()}
	log := s.runLogger(rep.RunID)
	log.Info(ctx, "generation run started", logger.Int("workers", s.workers))

	fail := func(stage string, err error) (Report, error) {
		s.metrics.RecordRunResult(false, float64(time.Now().Unix()))
		log.Error(ctx, "generation run failed", logger.String("stage", stage), logger.Error(err))
		return rep, fmt.Errorf("%w: %s: %w", ErrStageFailed, stage, err)
	}

	var err error
	if rep.Catalogue, err = s.generateLargeCatalogue(ctx, log); err != nil {
		return fail("large catalogue", err)
	}
	if rep.Maps, err = s.generateKappaMaps(ctx, log); err != nil {
		return fail("kappa maps", err)
	}
	if rep.Redshift, err = s.generateRedshiftCatalogues(ctx, log); err != nil {
		return fail("redshift catalogues", err)
	}
	if rep.Files, err = s.store.List(ctx); err != nil {
		return fail("list", err)
	}

	rep.Elapsed = time.Since(start)
	s.metrics.RecordRunResult(true, float64(time.Now().Unix()))
	log.Info(ctx, "generation run finished",
		logger.Int("files", len(rep.Files)),
		logger.Duration("elapsed", rep.Elapsed),
	)
	return rep, nil
}

// GenerateLargeCatalogue draws the large catalogue and writes it with
// sequential galaxy ids.
func (s *Service) GenerateLargeCatalogue(ctx context.Context) (CatalogueResult, error) {
	return s.generateLargeCatalogue(ctx, s.runLogger(uuid.NewString()))
}

func (s *Service) generateLargeCatalogue(ctx context.Context, log logger.Logger) (CatalogueResult, error) {
	p := s.catalogue
	log.Info(ctx, "generating large galaxy catalogue",
		logger.Int("n", p.N),
		logger.String("redshift_dist", p.RedshiftDist.String()),
		logger.String("size_dist", p.SizeDist.String()),
		logger.Float64("area_deg2", p.AreaDeg2),
		logger.Int64("seed", p.Seed),
	)

	cat, err := s.sampleCatalogue(random.New(p.Seed), p)
	if err != nil {
		return CatalogueResult{}, err
	}
	path, err := s.store.SaveCatalogue(ctx, repository.LargeCatalogueFile, cat)
	if err != nil {
		return CatalogueResult{}, err
	}

	res := CatalogueResult{
		Path:        path,
		Count:       len(cat),
		Redshift:    catalogue.Summarize(cat.Redshifts()),
		Size:        catalogue.Summarize(cat.Sizes()),
		ApparentMag: catalogue.Summarize(cat.ApparentMags()),
	}
	log.Info(ctx, "saved catalogue",
		logger.String("path", path),
		logger.Float64("mean_redshift", res.Redshift.Mean),
		logger.Float64("median_size", res.Size.Median),
	)
	return res, nil
}

func (s *Service) sampleCatalogue(rng *rand.Rand, p catalogue.Params) (catalogue.Catalogue, error) {
	start := time.Now()
	cat, err := catalogue.Sample(rng, p, s.cosmo)
	if err != nil {
		s.metrics.RecordErrorByComponent("catalogue", "sample")
		return nil, err
	}
	s.metrics.ObserveSamplerDuration("catalogue", time.Since(start).Seconds())
	s.metrics.RecordGalaxies(len(cat))
	return cat, nil
}

// GenerateKappaMaps draws and writes every map of the grid. Maps are drawn
// concurrently, each from its own generator seeded with the map seed, so the
// files do not depend on scheduling. Results follow grid order.
func (s *Service) GenerateKappaMaps(ctx context.Context) ([]MapResult, error) {
	return s.generateKappaMaps(ctx, s.runLogger(uuid.NewString()))
}

func (s *Service) generateKappaMaps(ctx context.Context, log logger.Logger) ([]MapResult, error) {
	log.Info(ctx, "generating kappa maps",
		logger.Any("nsides", s.mapNsides),
		logger.Any("z_sources", s.mapSources),
		logger.Int64("seed", s.mapSeed),
	)

	results := make([]MapResult, len(s.mapNsides)*len(s.mapSources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.mapConcurrency())
	for i, nside := range s.mapNsides {
		for j, z := range s.mapSources {
			idx := i*len(s.mapSources) + j
			g.Go(func() error {
				res, err := s.generateMap(gctx, log, nside, z)
				if err != nil {
					return err
				}
				results[idx] = res
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) generateMap(ctx context.Context, log logger.Logger, nside int, z float64) (MapResult, error) {
	log.Debug(ctx, "creating map", logger.Int("nside", nside), logger.Float64("z_source", z))

	start := time.Now()
	m, err := kappa.SampleSeeded(ctx, nside, z, s.mapSeed, s.smoother)
	if err != nil {
		s.metrics.RecordErrorByComponent("kappa", "sample")
		return MapResult{}, fmt.Errorf("map nside=%d z=%.1f: %w", nside, z, err)
	}
	s.metrics.ObserveSamplerDuration("kappa", time.Since(start).Seconds())
	s.metrics.RecordMap(m.Nside, len(m.Pixels))

	path, err := s.store.SaveMap(ctx, m)
	if err != nil {
		return MapResult{}, err
	}
	res := MapResult{Path: path, Nside: nside, ZSource: z, Kappa: catalogue.Summarize(m.Pixels)}
	log.Info(ctx, "saved map",
		logger.String("path", path),
		logger.Float64("kappa_std", res.Kappa.Std),
	)
	return res, nil
}

// GenerateRedshiftCatalogues draws one base catalogue and writes its
// spectroscopic and photometric variants. The photometric scatter continues
// the base catalogue's generator.
func (s *Service) GenerateRedshiftCatalogues(ctx context.Context) (RedshiftResult, error) {
	return s.generateRedshiftCatalogues(ctx, s.runLogger(uuid.NewString()))
}

func (s *Service) generateRedshiftCatalogues(ctx context.Context, log logger.Logger) (RedshiftResult, error) {
	p := s.redshift
	log.Info(ctx, "generating redshift catalogues", logger.Int("n", p.N), logger.Int64("seed", p.Seed))

	rng := random.New(p.Seed)
	base, err := s.sampleCatalogue(rng, p)
	if err != nil {
		return RedshiftResult{}, err
	}
	spec := catalogue.Spectroscopic(base)
	photo := catalogue.Photometric(rng, base)

	res := RedshiftResult{Count: len(base)}
	if res.SpectroscopicPath, err = s.store.SaveSpectroscopic(ctx, repository.SpectroscopicCatalogueFile, spec); err != nil {
		return RedshiftResult{}, err
	}
	if res.PhotometricPath, err = s.store.SavePhotometric(ctx, repository.PhotometricCatalogueFile, photo); err != nil {
		return RedshiftResult{}, err
	}

	zp := make([]float64, len(photo))
	for i := range photo {
		zp[i] = photo[i].ZPhoto
	}
	res.PhotoZ = catalogue.Summarize(zp)
	log.Info(ctx, "saved redshift catalogues",
		logger.String("spectroscopic", res.SpectroscopicPath),
		logger.String("photometric", res.PhotometricPath),
	)
	return res, nil
}

// Files lists the dataset files currently in the store.
func (s *Service) Files(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}
