// Package cosmology computes distances in a flat ΛCDM universe.
package cosmology

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// Physical constants.
const (
	SpeedOfLight  = 299792.458 // km/s
	parsecsPerMpc = 1e6
)

// quadraturePoints is the Gauss-Legendre order used for 1/E(z). It keeps the
// relative error well below 1e-8 for z <= 10.
const quadraturePoints = 64

// Distancer converts a redshift into a luminosity distance.
type Distancer interface {
	LuminosityDistance(z float64) (float64, error)
}

// FlatLambdaCDM is a flat cosmology with matter and a cosmological constant.
// Radiation is neglected.
type FlatLambdaCDM struct {
	H0  float64 // Hubble constant, km/s/Mpc
	Om0 float64 // matter density at z=0
}

// Planck18 is the fiducial cosmology used for all derived magnitudes.
var Planck18 = FlatLambdaCDM{H0: 67.66, Om0: 0.30966}

// Ode0 returns the dark-energy density implied by flatness.
func (c FlatLambdaCDM) Ode0() float64 { return 1 - c.Om0 }

// E returns the dimensionless Hubble parameter H(z)/H0.
func (c FlatLambdaCDM) E(z float64) float64 {
	zp1 := 1 + z
	return math.Sqrt(c.Om0*zp1*zp1*zp1 + c.Ode0())
}

// HubbleDistance returns c/H0 in Mpc.
func (c FlatLambdaCDM) HubbleDistance() float64 { return SpeedOfLight / c.H0 }

// ComovingDistance returns the line-of-sight comoving distance to z in Mpc.
func (c FlatLambdaCDM) ComovingDistance(z float64) (float64, error) {
	if z < 0 || math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRedshift, z)
	}
	if z == 0 {
		return 0, nil
	}
	inv := func(x float64) float64 { return 1 / c.E(x) }
	return c.HubbleDistance() * quad.Fixed(inv, 0, z, quadraturePoints, nil, 0), nil
}

// LuminosityDistance returns the luminosity distance to z in Mpc.
func (c FlatLambdaCDM) LuminosityDistance(z float64) (float64, error) {
	dc, err := c.ComovingDistance(z)
	if err != nil {
		return 0, err
	}
	return (1 + z) * dc, nil
}

// DistanceModulus returns 5*log10(D_L/pc) - 5 for z > 0.
func DistanceModulus(d Distancer, z float64) (float64, error) {
	dl, err := d.LuminosityDistance(z)
	if err != nil {
		return 0, err
	}
	if dl <= 0 {
		return 0, fmt.Errorf("%w: distance modulus undefined at z=%v", ErrInvalidRedshift, z)
	}
	return 5*math.Log10(dl*parsecsPerMpc) - 5, nil
}
