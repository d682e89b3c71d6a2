// Package healpix implements the parts of the HEALPix sphere pixelisation
// needed to sample and smooth full-sky maps: resolution checks, RING-ordered
// pixel geometry and disc queries.
package healpix

import (
	"fmt"
	"math"
)

// MaxNside is the largest supported resolution.
const MaxNside = 1 << 13

// Vec3 is a unit vector on the sphere.
type Vec3 [3]float64

// Dot returns the scalar product of a and b.
func (a Vec3) Dot(b Vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

// Ang2Vec converts colatitude theta and longitude phi (radians) to a unit vector.
func Ang2Vec(theta, phi float64) Vec3 {
	st := math.Sin(theta)
	return Vec3{st * math.Cos(phi), st * math.Sin(phi), math.Cos(theta)}
}

// ValidateNside reports whether nside is a power of two in [1, MaxNside].
func ValidateNside(nside int) error {
	if nside < 1 || nside > MaxNside || nside&(nside-1) != 0 {
		return fmt.Errorf("%w: nside=%d must be a power of two in [1, %d]", ErrInvalidResolution, nside, MaxNside)
	}
	return nil
}

// NPix returns the number of pixels of a map at the given resolution.
func NPix(nside int) int { return 12 * nside * nside }

// NSideToNPix validates nside and returns its pixel count.
func NSideToNPix(nside int) (int, error) {
	if err := ValidateNside(nside); err != nil {
		return 0, err
	}
	return NPix(nside), nil
}

// PixelArea returns the solid angle of one pixel in steradians.
func PixelArea(nside int) float64 { return 4 * math.Pi / float64(NPix(nside)) }

// ring describes one iso-latitude ring in RING ordering. Rings are numbered
// 1..4*nside-1 from north to south.
type ring struct {
	start   int     // first pixel index
	npix    int     // pixels in the ring
	shifted bool    // first pixel centre sits half a pixel east of phi=0
	z       float64 // cos(theta) of the ring
}

func ringInfo(nside, i int) ring {
	npix := NPix(nside)
	ncap := 2 * nside * (nside - 1)
	fact2 := 4.0 / float64(npix)
	fact1 := 2.0 / (3.0 * float64(nside))

	north := i
	if i > 2*nside {
		north = 4*nside - i
	}

	if north < nside {
		r := ring{npix: 4 * north, shifted: true, z: 1 - float64(north*north)*fact2}
		if i == north {
			r.start = 2 * north * (north - 1)
		} else {
			r.start = npix - 2*north*(north+1)
			r.z = -r.z
		}
		return r
	}
	return ring{
		start:   ncap + (i-nside)*4*nside,
		npix:    4 * nside,
		shifted: (i-nside)&1 == 0,
		z:       float64(2*nside-i) * fact1,
	}
}

// phi returns the longitude of pixel j (0-based) within the ring.
func (r ring) phi(j int) float64 {
	off := 0.0
	if r.shifted {
		off = 0.5
	}
	return (float64(j) + off) * 2 * math.Pi / float64(r.npix)
}

// pixRing returns the ring number holding pixel p.
func pixRing(nside, p int) int {
	npix := NPix(nside)
	ncap := 2 * nside * (nside - 1)
	switch {
	case p < ncap:
		return (1 + isqrt(1+2*p)) >> 1
	case p < npix-ncap:
		return (p-ncap)/(4*nside) + nside
	default:
		ip := npix - p
		return 4*nside - ((1 + isqrt(2*ip-1)) >> 1)
	}
}

// ringAbove returns the number of the ring immediately north of z, or 0.
func ringAbove(nside int, z float64) int {
	az := math.Abs(z)
	n := float64(nside)
	if az <= 2.0/3.0 {
		return int(n * (2 - 1.5*z))
	}
	i := int(n * math.Sqrt(3*(1-az)))
	if z > 0 {
		return i
	}
	return 4*nside - i - 1
}

func isqrt(v int) int {
	r := int(math.Sqrt(float64(v)))
	for r*r > v {
		r--
	}
	for (r+1)*(r+1) <= v {
		r++
	}
	return r
}

// Pix2Ang returns the colatitude and longitude (radians) of the centre of
// RING pixel p.
func Pix2Ang(nside, p int) (theta, phi float64, err error) {
	if err := ValidateNside(nside); err != nil {
		return 0, 0, err
	}
	if p < 0 || p >= NPix(nside) {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidPixel, p)
	}
	theta, phi = pix2ang(nside, p)
	return theta, phi, nil
}

func pix2ang(nside, p int) (theta, phi float64) {
	r := ringInfo(nside, pixRing(nside, p))
	return math.Acos(r.z), r.phi(p - r.start)
}

// Pix2Vec returns the unit vector of the centre of RING pixel p.
func Pix2Vec(nside, p int) (Vec3, error) {
	theta, phi, err := Pix2Ang(nside, p)
	if err != nil {
		return Vec3{}, err
	}
	return Ang2Vec(theta, phi), nil
}

func pix2vec(nside, p int) Vec3 {
	r := ringInfo(nside, pixRing(nside, p))
	st := math.Sqrt((1 - r.z) * (1 + r.z))
	ph := r.phi(p - r.start)
	return Vec3{st * math.Cos(ph), st * math.Sin(ph), r.z}
}

// QueryDisc appends to buf the RING pixels whose centres lie within radius
// (radians) of the unit vector v, and returns the extended slice.
func QueryDisc(nside int, v Vec3, radius float64, buf []int) ([]int, error) {
	if err := ValidateNside(nside); err != nil {
		return buf, err
	}
	visitDisc(nside, v, radius, func(p int, _ float64) {
		buf = append(buf, p)
	})
	return buf, nil
}

// visitDisc calls fn for every pixel centre within radius of v, passing the
// cosine of its angular distance. Pixels are visited ring by ring, north to
// south, in increasing longitude within a ring.
func visitDisc(nside int, v Vec3, radius float64, fn func(p int, cosDist float64)) {
	if radius >= math.Pi {
		for p := 0; p < NPix(nside); p++ {
			fn(p, pix2vec(nside, p).Dot(v))
		}
		return
	}
	cosr := math.Cos(radius)
	z0 := v[2]
	theta0 := math.Acos(math.Max(-1, math.Min(1, z0)))
	phi0 := math.Atan2(v[1], v[0])
	st0 := math.Sin(theta0)

	zmax := math.Cos(math.Max(0, theta0-radius))
	zmin := math.Cos(math.Min(math.Pi, theta0+radius))
	first := max(1, ringAbove(nside, zmax))
	last := min(4*nside-1, ringAbove(nside, zmin)+1)

	for i := first; i <= last; i++ {
		r := ringInfo(nside, i)
		st := math.Sqrt((1 - r.z) * (1 + r.z))

		whole := false
		var dphi float64
		denom := st * st0
		if denom < 1e-15 {
			if r.z*z0 < cosr {
				continue
			}
			whole = true
		} else {
			x := (cosr - r.z*z0) / denom
			switch {
			case x > 1:
				continue
			case x <= -1:
				whole = true
			default:
				dphi = math.Acos(x)
			}
		}

		lo, hi := 0, r.npix-1
		if !whole {
			step := 2 * math.Pi / float64(r.npix)
			off := 0.0
			if r.shifted {
				off = 0.5
			}
			lo = int(math.Ceil((phi0-dphi)/step - off))
			hi = int(math.Floor((phi0+dphi)/step - off))
			if hi-lo+1 >= r.npix {
				lo, hi = 0, r.npix-1
			}
		}
		for j := lo; j <= hi; j++ {
			jj := ((j % r.npix) + r.npix) % r.npix
			ph := r.phi(jj)
			c := st*math.Cos(ph)*v[0] + st*math.Sin(ph)*v[1] + r.z*z0
			if c >= cosr {
				fn(r.start+jj, c)
			}
		}
	}
}
