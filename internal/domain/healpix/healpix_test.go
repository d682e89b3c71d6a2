package healpix_test

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/okian/kappagen/internal/domain/healpix"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidateNside(t *testing.T) {
	Convey("Given candidate resolutions", t, func() {
		Convey("Then powers of two are accepted", func() {
			for _, n := range []int{1, 2, 64, 128, 256, 512, healpix.MaxNside} {
				So(healpix.ValidateNside(n), ShouldBeNil)
			}
		})

		Convey("Then everything else fails with ErrInvalidResolution", func() {
			for _, n := range []int{0, -4, 3, 100, 384, healpix.MaxNside * 2} {
				err := healpix.ValidateNside(n)
				So(errors.Is(err, healpix.ErrInvalidResolution), ShouldBeTrue)
			}
		})
	})
}

func TestNPix(t *testing.T) {
	Convey("Given the standard resolutions", t, func() {
		for _, n := range []int{1, 128, 256, 512} {
			npix, err := healpix.NSideToNPix(n)
			So(err, ShouldBeNil)
			So(npix, ShouldEqual, 12*n*n)
		}
		So(healpix.PixelArea(16)*float64(healpix.NPix(16)), ShouldAlmostEqual, 4*math.Pi, 1e-12)
	})
}

func TestPix2Ang(t *testing.T) {
	Convey("Given a low resolution map", t, func() {
		const nside = 4
		npix := healpix.NPix(nside)

		Convey("Then the first and last pixels sit near the poles", func() {
			theta, phi, err := healpix.Pix2Ang(nside, 0)
			So(err, ShouldBeNil)
			So(theta, ShouldBeLessThan, 0.3)
			So(phi, ShouldAlmostEqual, math.Pi/4, 1e-12)

			theta, _, err = healpix.Pix2Ang(nside, npix-1)
			So(err, ShouldBeNil)
			So(theta, ShouldBeGreaterThan, math.Pi-0.3)
		})

		Convey("Then pixel centres are balanced over the sphere", func() {
			var sum healpix.Vec3
			for p := 0; p < npix; p++ {
				v, err := healpix.Pix2Vec(nside, p)
				So(err, ShouldBeNil)
				So(v.Dot(v), ShouldAlmostEqual, 1, 1e-12)
				for i := range sum {
					sum[i] += v[i]
				}
			}
			for i := range sum {
				So(sum[i], ShouldAlmostEqual, 0, 1e-9)
			}
		})

		Convey("Then colatitudes never decrease with pixel index", func() {
			prev := -1.0
			for p := 0; p < npix; p++ {
				theta, _, err := healpix.Pix2Ang(nside, p)
				So(err, ShouldBeNil)
				So(theta, ShouldBeGreaterThanOrEqualTo, prev-1e-12)
				prev = theta
			}
		})

		Convey("Then out of range pixels are rejected", func() {
			_, _, err := healpix.Pix2Ang(nside, npix)
			So(errors.Is(err, healpix.ErrInvalidPixel), ShouldBeTrue)
			_, _, err = healpix.Pix2Ang(3, 0)
			So(errors.Is(err, healpix.ErrInvalidResolution), ShouldBeTrue)
		})
	})
}

func TestQueryDisc(t *testing.T) {
	Convey("Given a disc query", t, func() {
		const nside = 32
		npix := healpix.NPix(nside)

		Convey("When the radius covers the whole sphere", func() {
			pix, err := healpix.QueryDisc(nside, healpix.Vec3{0, 0, 1}, math.Pi, nil)

			Convey("Then every pixel is returned once", func() {
				So(err, ShouldBeNil)
				So(len(pix), ShouldEqual, npix)
			})
		})

		Convey("When the disc is tiny and centred on a pixel", func() {
			for _, p := range []int{0, 17, npix / 2, npix - 1} {
				v, err := healpix.Pix2Vec(nside, p)
				So(err, ShouldBeNil)
				pix, err := healpix.QueryDisc(nside, v, 1e-3, nil)
				So(err, ShouldBeNil)
				So(pix, ShouldResemble, []int{p})
			}
		})

		Convey("When the disc has a moderate radius", func() {
			v := healpix.Ang2Vec(1.1, -2.5)
			radius := 0.2
			got, err := healpix.QueryDisc(nside, v, radius, nil)
			So(err, ShouldBeNil)

			Convey("Then it matches a brute force scan", func() {
				var want []int
				for p := 0; p < npix; p++ {
					c, _ := healpix.Pix2Vec(nside, p)
					if c.Dot(v) >= math.Cos(radius) {
						want = append(want, p)
					}
				}
				sort.Ints(got)
				So(got, ShouldResemble, want)
			})
		})

		Convey("When the disc is centred on the south pole", func() {
			got, err := healpix.QueryDisc(nside, healpix.Vec3{0, 0, -1}, 0.1, nil)
			So(err, ShouldBeNil)

			Convey("Then only southern pixels are returned", func() {
				So(len(got), ShouldBeGreaterThan, 0)
				for _, p := range got {
					theta, _, _ := healpix.Pix2Ang(nside, p)
					So(theta, ShouldBeGreaterThan, math.Pi-0.1)
				}
			})
		})
	})
}
