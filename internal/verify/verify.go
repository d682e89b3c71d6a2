// Package verify re-reads a generated dataset directory and checks the
// invariants its samplers promise.
package verify

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/kappagen/internal/adapters/repository"
	"github.com/okian/kappagen/internal/domain/catalogue"
	"github.com/okian/kappagen/internal/domain/cosmology"
	"github.com/okian/kappagen/internal/domain/distribution"
	"github.com/okian/kappagen/internal/domain/healpix"
	"github.com/okian/kappagen/pkg/logger"
)

const (
	defaultTolerance = 1e-9
	// Relative agreement of std/z_source across maps of one resolution.
	scalingTolerance = 1e-6
)

// Check is the outcome of one invariant check on one file.
type Check struct {
	Name string
	File string
	Err  error
}

// OK reports whether the check passed.
func (c Check) OK() bool { return c.Err == nil }

// Report collects every check of a run, in execution order.
type Report struct {
	Checks []Check
}

// Failed returns the checks that did not pass.
func (r Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.OK() {
			out = append(out, c)
		}
	}
	return out
}

// Err summarises failures as one error wrapping ErrCheckFailed.
func (r Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d checks failed, first: %s %s: %w",
		ErrCheckFailed, len(failed), len(r.Checks), failed[0].Name, failed[0].File, failed[0].Err)
}

// Option applies a configuration option to the Verifier.
type Option func(*Verifier)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(v *Verifier) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithCosmology sets the distance model apparent magnitudes are checked against.
func WithCosmology(d cosmology.Distancer) Option {
	return func(v *Verifier) {
		if d != nil {
			v.cosmo = d
		}
	}
}

// WithTolerance sets the absolute tolerance of exact-value checks.
func WithTolerance(tol float64) Option {
	return func(v *Verifier) {
		if tol > 0 {
			v.tol = tol
		}
	}
}

// Verifier checks dataset directories. It is not safe for concurrent use.
type Verifier struct {
	logger logger.Logger
	cosmo  cosmology.Distancer
	tol    float64
	report Report
}

// New creates a Verifier with configuration options.
func New(opts ...Option) *Verifier {
	v := &Verifier{
		logger: logger.Nop(),
		cosmo:  cosmology.Planck18,
		tol:    defaultTolerance,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Dir checks every known dataset file in dir. Files that are absent are
// skipped; an unreadable directory or one without dataset files is an error.
func (v *Verifier) Dir(ctx context.Context, dir string) (Report, error) {
	v.report = Report{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Report{}, fmt.Errorf("read %s: %w", dir, err)
	}
	var maps []string
	present := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		present[name] = true
		if strings.HasPrefix(name, "kappa_map_") && strings.HasSuffix(name, ".fits") {
			maps = append(maps, name)
		}
	}
	sort.Strings(maps)

	var spec []catalogue.SpecGalaxy
	var photo []catalogue.PhotoGalaxy
	found := len(maps)

	if present[repository.LargeCatalogueFile] {
		found++
		v.checkLarge(ctx, filepath.Join(dir, repository.LargeCatalogueFile))
	}
	if present[repository.SpectroscopicCatalogueFile] {
		found++
		spec = v.checkSpectroscopic(ctx, filepath.Join(dir, repository.SpectroscopicCatalogueFile))
	}
	if present[repository.PhotometricCatalogueFile] {
		found++
		photo = v.checkPhotometric(ctx, filepath.Join(dir, repository.PhotometricCatalogueFile))
	}
	if spec != nil && photo != nil {
		v.record(ctx, "shared base catalogue", repository.PhotometricCatalogueFile, sameBase(spec, photo))
	}
	if len(maps) > 0 {
		v.checkMaps(ctx, dir, maps)
	}

	if found == 0 {
		return Report{}, fmt.Errorf("%w in %s", ErrNothingToVerify, dir)
	}
	rep := v.report
	v.logger.Info(ctx, "verification completed",
		logger.Int("checks", len(rep.Checks)),
		logger.Int("failed", len(rep.Failed())),
	)
	return rep, nil
}

func (v *Verifier) record(ctx context.Context, name, file string, err error) {
	v.report.Checks = append(v.report.Checks, Check{Name: name, File: filepath.Base(file), Err: err})
	if err != nil {
		v.logger.Warn(ctx, "check failed",
			logger.String("check", name), logger.String("file", filepath.Base(file)), logger.Error(err))
	}
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return read(f)
}

func (v *Verifier) checkLarge(ctx context.Context, path string) {
	v.logger.Debug(ctx, "verifying catalogue", logger.String("path", path))
	cat, err := readFile(path, repository.ReadCatalogue)
	v.record(ctx, "readable", path, err)
	if err != nil {
		return
	}
	v.checkGalaxies(ctx, path, cat)
}

func (v *Verifier) checkSpectroscopic(ctx context.Context, path string) []catalogue.SpecGalaxy {
	v.logger.Debug(ctx, "verifying spectroscopic catalogue", logger.String("path", path))
	spec, err := readFile(path, repository.ReadSpectroscopic)
	v.record(ctx, "readable", path, err)
	if err != nil {
		return nil
	}
	base := make(catalogue.Catalogue, len(spec))
	for i, g := range spec {
		base[i] = g.Galaxy
		if err == nil && (g.ZSpec != g.Redshift || math.Abs(g.ZSpecError-catalogue.SpecZError) > v.tol) {
			err = fmt.Errorf("row %d: z_spec=%v z_spec_error=%v for redshift %v", i, g.ZSpec, g.ZSpecError, g.Redshift)
		}
	}
	v.record(ctx, "spectroscopic redshifts", path, err)
	v.checkGalaxies(ctx, path, base)
	return spec
}

func (v *Verifier) checkPhotometric(ctx context.Context, path string) []catalogue.PhotoGalaxy {
	v.logger.Debug(ctx, "verifying photometric catalogue", logger.String("path", path))
	photo, err := readFile(path, repository.ReadPhotometric)
	v.record(ctx, "readable", path, err)
	if err != nil {
		return nil
	}
	base := make(catalogue.Catalogue, len(photo))
	for i, g := range photo {
		base[i] = g.Galaxy
		if err != nil {
			continue
		}
		switch {
		case g.ZTrue != g.Redshift:
			err = fmt.Errorf("row %d: z_true=%v differs from redshift %v", i, g.ZTrue, g.Redshift)
		case g.ZPhoto < catalogue.PhotoZFloor:
			err = fmt.Errorf("row %d: z_photo=%v below floor %v", i, g.ZPhoto, catalogue.PhotoZFloor)
		case math.Abs(g.ZPhotoError-catalogue.PhotoZError(g.ZTrue)) > v.tol:
			err = fmt.Errorf("row %d: z_photo_error=%v, want %v", i, g.ZPhotoError, catalogue.PhotoZError(g.ZTrue))
		}
	}
	v.record(ctx, "photometric redshifts", path, err)
	v.checkGalaxies(ctx, path, base)
	return photo
}

// checkGalaxies records the per-galaxy invariants of a catalogue.
func (v *Verifier) checkGalaxies(ctx context.Context, path string, cat catalogue.Catalogue) {
	var rangeErr, magErr error
	for i, g := range cat {
		if rangeErr == nil {
			switch {
			case g.Redshift < distribution.RedshiftMin || g.Redshift > distribution.RedshiftMax:
				rangeErr = fmt.Errorf("row %d: redshift %v outside [%v, %v]", i, g.Redshift, distribution.RedshiftMin, distribution.RedshiftMax)
			case g.Size < 0:
				rangeErr = fmt.Errorf("row %d: negative size %v", i, g.Size)
			case g.Type != 0 && g.Type != 1:
				rangeErr = fmt.Errorf("row %d: galaxy_type %d", i, g.Type)
			}
		}
		if magErr == nil {
			mu, err := cosmology.DistanceModulus(v.cosmo, g.Redshift)
			if err != nil {
				magErr = fmt.Errorf("row %d: %w", i, err)
			} else if d := g.ApparentMag - g.AbsoluteMag - mu; math.Abs(d) > math.Max(v.tol, 1e-9*math.Abs(mu)) {
				magErr = fmt.Errorf("row %d: apparent-absolute differs from distance modulus by %g", i, d)
			}
		}
	}
	v.record(ctx, "value ranges", path, rangeErr)
	v.record(ctx, "distance modulus", path, magErr)
}

func sameBase(spec []catalogue.SpecGalaxy, photo []catalogue.PhotoGalaxy) error {
	if len(spec) != len(photo) {
		return fmt.Errorf("%d spectroscopic rows, %d photometric rows", len(spec), len(photo))
	}
	for i := range spec {
		if spec[i].Galaxy != photo[i].Galaxy {
			return fmt.Errorf("row %d differs between catalogues", i)
		}
	}
	return nil
}

// checkMaps reads every map, checks its layout, and checks that within one
// resolution the pixel spread scales linearly with source redshift.
func (v *Verifier) checkMaps(ctx context.Context, dir string, names []string) {
	type spread struct {
		name  string
		ratio float64
	}
	byNside := map[int][]spread{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		v.logger.Debug(ctx, "verifying map", logger.String("path", path))
		m, err := readFile(path, repository.ReadMap)
		v.record(ctx, "readable", path, err)
		if err != nil {
			continue
		}
		var layoutErr error
		switch {
		case len(m.Pixels) != healpix.NPix(m.Nside):
			layoutErr = fmt.Errorf("%d pixels for nside %d", len(m.Pixels), m.Nside)
		case repository.MapFilename(m.Nside, m.ZSource) != name:
			layoutErr = fmt.Errorf("header describes %s", repository.MapFilename(m.Nside, m.ZSource))
		}
		v.record(ctx, "map layout", path, layoutErr)
		if layoutErr == nil {
			s := catalogue.Summarize(m.Pixels)
			byNside[m.Nside] = append(byNside[m.Nside], spread{name: name, ratio: s.Std / m.ZSource})
		}
	}

	nsides := make([]int, 0, len(byNside))
	for n := range byNside {
		nsides = append(nsides, n)
	}
	sort.Ints(nsides)
	for _, n := range nsides {
		group := byNside[n]
		if len(group) < 2 {
			continue
		}
		var err error
		ref := group[0].ratio
		for _, s := range group[1:] {
			if math.Abs(s.ratio-ref) > scalingTolerance*ref {
				err = fmt.Errorf("std/z_source %g differs from %g in %s", s.ratio, ref, group[0].name)
				break
			}
		}
		v.record(ctx, "kappa spread scaling", group[len(group)-1].name, err)
	}
}
