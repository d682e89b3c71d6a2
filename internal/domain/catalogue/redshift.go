package catalogue

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Redshift measurement models.
const (
	SpecZError      = 0.001
	PhotoZErrorCoef = 0.05
	PhotoZFloor     = 0.01
)

// SpecGalaxy is a galaxy with a spectroscopic redshift measurement.
type SpecGalaxy struct {
	Galaxy
	ZSpec      float64
	ZSpecError float64
}

// PhotoGalaxy is a galaxy with a photometric redshift estimate.
type PhotoGalaxy struct {
	Galaxy
	ZPhoto      float64
	ZPhotoError float64
	ZTrue       float64
}

// Spectroscopic copies cat, recording the true redshift with a tiny fixed error.
func Spectroscopic(cat Catalogue) []SpecGalaxy {
	out := make([]SpecGalaxy, len(cat))
	for i, g := range cat {
		out[i] = SpecGalaxy{Galaxy: g, ZSpec: g.Redshift, ZSpecError: SpecZError}
	}
	return out
}

// PhotoZError returns the photometric redshift scatter at z.
func PhotoZError(z float64) float64 { return PhotoZErrorCoef * (1 + z) }

// Photometric copies cat, scattering each redshift by N(0, 0.05(1+z)) and
// flooring the estimate at 0.01.
func Photometric(rng *rand.Rand, cat Catalogue) []PhotoGalaxy {
	unit := distuv.UnitNormal
	unit.Src = rng

	out := make([]PhotoGalaxy, len(cat))
	for i, g := range cat {
		sigma := PhotoZError(g.Redshift)
		out[i] = PhotoGalaxy{
			Galaxy:      g,
			ZPhoto:      math.Max(g.Redshift+sigma*unit.Rand(), PhotoZFloor),
			ZPhotoError: sigma,
			ZTrue:       g.Redshift,
		}
	}
	return out
}
