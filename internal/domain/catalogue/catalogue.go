// Package catalogue draws synthetic galaxy catalogues.
package catalogue

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/okian/kappagen/internal/domain/cosmology"
	"github.com/okian/kappagen/internal/domain/distribution"
	"github.com/okian/kappagen/internal/domain/random"
	"gonum.org/v1/gonum/stat/distuv"
)

// Magnitude model constants.
const (
	absoluteMagMean = -20.0
	absoluteMagStd  = 1.5
)

// Galaxy type probabilities, indexed by type.
var typeWeights = []float64{0.3, 0.7}

// Params configures one catalogue draw.
type Params struct {
	N            int
	RedshiftDist distribution.RedshiftKind
	SizeDist     distribution.SizeKind
	AreaDeg2     float64
	Seed         int64
}

// NewParams builds Params from distribution names.
func NewParams(n int, redshiftDist, sizeDist string, areaDeg2 float64, seed int64) (Params, error) {
	zk, err := distribution.ParseRedshiftKind(redshiftDist)
	if err != nil {
		return Params{}, err
	}
	sk, err := distribution.ParseSizeKind(sizeDist)
	if err != nil {
		return Params{}, err
	}
	return Params{N: n, RedshiftDist: zk, SizeDist: sk, AreaDeg2: areaDeg2, Seed: seed}, nil
}

// Validate checks p before any random state is consumed.
func (p Params) Validate() error {
	if err := p.RedshiftDist.Validate(); err != nil {
		return err
	}
	if err := p.SizeDist.Validate(); err != nil {
		return err
	}
	if p.N <= 0 {
		return fmt.Errorf("%w: n_galaxies=%d must be positive", ErrInvalidParams, p.N)
	}
	if !(p.AreaDeg2 > 0) || math.IsInf(p.AreaDeg2, 0) {
		return fmt.Errorf("%w: area_deg2=%v must be positive", ErrInvalidParams, p.AreaDeg2)
	}
	return nil
}

// Galaxy is one catalogue row. Angles are in degrees.
type Galaxy struct {
	RA          float64
	Dec         float64
	Redshift    float64
	Size        float64
	Type        int
	ApparentMag float64
	AbsoluteMag float64
}

// Catalogue is an ordered collection of galaxies.
type Catalogue []Galaxy

// Sample draws p.N galaxies from rng. Columns are drawn one after another
// (positions, redshifts, sizes, types, magnitudes) so a given generator
// state always yields the same catalogue. p.Seed is ignored; see SampleSeeded.
func Sample(rng *rand.Rand, p Params, cosmo cosmology.Distancer) (Catalogue, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	zRand, err := p.RedshiftDist.Rander(rng)
	if err != nil {
		return nil, err
	}
	sizeRand, err := p.SizeDist.Rander(rng)
	if err != nil {
		return nil, err
	}

	cat := make(Catalogue, p.N)
	side := math.Sqrt(p.AreaDeg2)

	ra := distuv.Uniform{Min: 0, Max: side, Src: rng}
	for i := range cat {
		cat[i].RA = ra.Rand()
	}
	dec := distuv.Uniform{Min: -side / 2, Max: side / 2, Src: rng}
	for i := range cat {
		cat[i].Dec = dec.Rand()
	}
	for i := range cat {
		cat[i].Redshift = clip(zRand.Rand(), distribution.RedshiftMin, distribution.RedshiftMax)
	}
	for i := range cat {
		cat[i].Size = math.Abs(sizeRand.Rand())
	}
	types := distuv.NewCategorical(typeWeights, rng)
	for i := range cat {
		cat[i].Type = int(types.Rand())
	}
	absMag := distuv.Normal{Mu: absoluteMagMean, Sigma: absoluteMagStd, Src: rng}
	for i := range cat {
		cat[i].AbsoluteMag = absMag.Rand()
	}
	for i := range cat {
		mu, err := cosmology.DistanceModulus(cosmo, cat[i].Redshift)
		if err != nil {
			return nil, fmt.Errorf("galaxy %d: %w", i, err)
		}
		cat[i].ApparentMag = cat[i].AbsoluteMag + mu
	}
	return cat, nil
}

// SampleSeeded draws a catalogue from a generator seeded with p.Seed.
func SampleSeeded(p Params, cosmo cosmology.Distancer) (Catalogue, error) {
	return Sample(random.New(p.Seed), p, cosmo)
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Redshifts returns the redshift column.
func (c Catalogue) Redshifts() []float64 {
	out := make([]float64, len(c))
	for i, g := range c {
		out[i] = g.Redshift
	}
	return out
}

// Sizes returns the size column.
func (c Catalogue) Sizes() []float64 {
	out := make([]float64, len(c))
	for i, g := range c {
		out[i] = g.Size
	}
	return out
}

// ApparentMags returns the apparent magnitude column.
func (c Catalogue) ApparentMags() []float64 {
	out := make([]float64, len(c))
	for i, g := range c {
		out[i] = g.ApparentMag
	}
	return out
}
