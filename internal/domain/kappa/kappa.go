// Package kappa draws synthetic weak-lensing convergence maps on a HEALPix grid.
package kappa

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/okian/kappagen/internal/domain/healpix"
	"github.com/okian/kappagen/internal/domain/random"
	"gonum.org/v1/gonum/stat/distuv"
)

// Map generation constants.
const (
	// SigmaPerRedshift scales the pixel noise with source redshift.
	SigmaPerRedshift = 0.01
	// SmoothingFWHMDeg is the beam applied to every map.
	SmoothingFWHMDeg = 0.5
)

// Map is a RING-ordered full-sky convergence map.
type Map struct {
	Nside   int
	ZSource float64
	Pixels  []float64
}

// Sigma returns the unsmoothed pixel standard deviation for a source redshift.
func Sigma(zSource float64) float64 { return SigmaPerRedshift * zSource }

// Sample draws a map at resolution nside for sources at zSource, consuming
// rng, and smooths it with the fixed beam.
func Sample(ctx context.Context, rng *rand.Rand, nside int, zSource float64, smoother healpix.Smoother) (Map, error) {
	npix, err := healpix.NSideToNPix(nside)
	if err != nil {
		return Map{}, err
	}
	if !(zSource > 0) || math.IsInf(zSource, 0) {
		return Map{}, fmt.Errorf("%w: z_source=%v must be positive", ErrInvalidSource, zSource)
	}

	noise := distuv.Normal{Mu: 0, Sigma: Sigma(zSource), Src: rng}
	raw := make([]float64, npix)
	for i := range raw {
		raw[i] = noise.Rand()
	}

	smoothed, err := smoother.Smooth(ctx, nside, raw, SmoothingFWHMDeg*math.Pi/180)
	if err != nil {
		return Map{}, fmt.Errorf("smooth map nside=%d z=%.1f: %w", nside, zSource, err)
	}
	return Map{Nside: nside, ZSource: zSource, Pixels: smoothed}, nil
}

// SampleSeeded is Sample with a generator built from seed.
func SampleSeeded(ctx context.Context, nside int, zSource float64, seed int64, smoother healpix.Smoother) (Map, error) {
	return Sample(ctx, random.New(seed), nside, zSource, smoother)
}

// SourceLabel is the source redshift as it appears in dataset names.
func SourceLabel(zSource float64) string { return fmt.Sprintf("%.1f", zSource) }

// ValidateGrid checks a map grid before any map is drawn. Every resolution
// must be valid and every source positive, and no two grid points may share
// a resolution and SourceLabel.
func ValidateGrid(nsides []int, sources []float64) error {
	if len(nsides) == 0 || len(sources) == 0 {
		return fmt.Errorf("%w: empty grid", ErrInvalidGrid)
	}
	seenNside := make(map[int]struct{}, len(nsides))
	for _, n := range nsides {
		if err := healpix.ValidateNside(n); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidGrid, err)
		}
		if _, dup := seenNside[n]; dup {
			return fmt.Errorf("%w: nside %d listed twice", ErrInvalidGrid, n)
		}
		seenNside[n] = struct{}{}
	}
	seenLabel := make(map[string]float64, len(sources))
	for _, z := range sources {
		if !(z > 0) || math.IsInf(z, 0) {
			return fmt.Errorf("%w: %w: z_source=%v must be positive", ErrInvalidGrid, ErrInvalidSource, z)
		}
		label := SourceLabel(z)
		if prev, dup := seenLabel[label]; dup {
			return fmt.Errorf("%w: sources %v and %v both map to z%s", ErrInvalidGrid, prev, z, label)
		}
		seenLabel[label] = z
	}
	return nil
}
