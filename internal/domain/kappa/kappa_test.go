package kappa_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/kappagen/internal/domain/healpix"
	"github.com/okian/kappagen/internal/domain/kappa"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/stat"
)

// passthrough skips the beam so raw pixel statistics can be checked.
type passthrough struct{}

func (passthrough) Smooth(_ context.Context, _ int, pixels []float64, _ float64) ([]float64, error) {
	return pixels, nil
}

func TestSample(t *testing.T) {
	Convey("Given the convergence map sampler", t, func() {
		ctx := context.Background()
		smoother := healpix.NewGaussianSmoother()

		Convey("When sampling the standard resolutions", func() {
			for _, nside := range []int{128, 256, 512} {
				m, err := kappa.SampleSeeded(ctx, nside, 1.0, 42, smoother)

				So(err, ShouldBeNil)
				So(len(m.Pixels), ShouldEqual, 12*nside*nside)
				So(m.Nside, ShouldEqual, nside)
				So(m.ZSource, ShouldEqual, 1.0)
			}
		})

		Convey("When sampling twice with the same seed", func() {
			a, err := kappa.SampleSeeded(ctx, 64, 1.5, 7, smoother)
			So(err, ShouldBeNil)
			b, err := kappa.SampleSeeded(ctx, 64, 1.5, 7, smoother)
			So(err, ShouldBeNil)

			Convey("Then the maps are identical", func() {
				So(a.Pixels, ShouldResemble, b.Pixels)
			})
		})

		Convey("When the source redshift grows", func() {
			low, err := kappa.SampleSeeded(ctx, 128, 0.5, 42, smoother)
			So(err, ShouldBeNil)
			high, err := kappa.SampleSeeded(ctx, 128, 2.0, 42, smoother)
			So(err, ShouldBeNil)

			Convey("Then the spread grows proportionally", func() {
				ratio := stat.StdDev(high.Pixels, nil) / stat.StdDev(low.Pixels, nil)
				So(ratio, ShouldAlmostEqual, 4.0, 0.01)
			})
		})

		Convey("When the beam is skipped", func() {
			m, err := kappa.SampleSeeded(ctx, 64, 2.0, 42, passthrough{})
			So(err, ShouldBeNil)

			Convey("Then pixels follow N(0, 0.01 z)", func() {
				mean, std := stat.MeanStdDev(m.Pixels, nil)
				So(mean, ShouldAlmostEqual, 0, 0.001)
				So(std, ShouldAlmostEqual, kappa.Sigma(2.0), 0.001)
			})

			Convey("Then smoothing reduces the spread", func() {
				smoothed, err := kappa.SampleSeeded(ctx, 64, 2.0, 42, smoother)
				So(err, ShouldBeNil)
				So(stat.StdDev(smoothed.Pixels, nil), ShouldBeLessThan, 0.9*stat.StdDev(m.Pixels, nil))
			})
		})

		Convey("When the resolution is not a power of two", func() {
			_, err := kappa.SampleSeeded(ctx, 100, 1.0, 42, smoother)

			Convey("Then it fails with ErrInvalidResolution", func() {
				So(errors.Is(err, healpix.ErrInvalidResolution), ShouldBeTrue)
			})
		})

		Convey("When the source redshift is not positive", func() {
			_, err := kappa.SampleSeeded(ctx, 64, 0, 42, smoother)

			Convey("Then it fails with ErrInvalidSource", func() {
				So(errors.Is(err, kappa.ErrInvalidSource), ShouldBeTrue)
			})
		})
	})
}

func TestValidateGrid(t *testing.T) {
	Convey("Given candidate map grids", t, func() {
		Convey("When the grid is well formed", func() {
			So(kappa.ValidateGrid([]int{128, 256, 512}, []float64{0.5, 1.0, 1.5, 2.0}), ShouldBeNil)
		})

		Convey("When two sources round to the same label", func() {
			err := kappa.ValidateGrid([]int{64}, []float64{0.2, 0.25})

			Convey("Then it fails with ErrInvalidGrid", func() {
				So(errors.Is(err, kappa.ErrInvalidGrid), ShouldBeTrue)
				So(kappa.SourceLabel(0.2), ShouldEqual, kappa.SourceLabel(0.25))
			})
		})

		Convey("When a resolution is listed twice", func() {
			err := kappa.ValidateGrid([]int{64, 64}, []float64{1})
			So(errors.Is(err, kappa.ErrInvalidGrid), ShouldBeTrue)
		})

		Convey("When a source is not positive", func() {
			for _, z := range []float64{0, -1} {
				err := kappa.ValidateGrid([]int{64}, []float64{z})
				So(errors.Is(err, kappa.ErrInvalidGrid), ShouldBeTrue)
				So(errors.Is(err, kappa.ErrInvalidSource), ShouldBeTrue)
			}
		})

		Convey("When a resolution is invalid", func() {
			err := kappa.ValidateGrid([]int{100}, []float64{1})
			So(errors.Is(err, healpix.ErrInvalidResolution), ShouldBeTrue)
		})

		Convey("When the grid is empty", func() {
			So(errors.Is(kappa.ValidateGrid(nil, []float64{1}), kappa.ErrInvalidGrid), ShouldBeTrue)
			So(errors.Is(kappa.ValidateGrid([]int{64}, nil), kappa.ErrInvalidGrid), ShouldBeTrue)
		})
	})
}
