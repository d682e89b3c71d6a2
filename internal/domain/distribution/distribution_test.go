package distribution_test

import (
	"errors"
	"testing"

	"github.com/okian/kappagen/internal/domain/distribution"
	"github.com/okian/kappagen/internal/domain/random"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/stat"
)

func TestParseRedshiftKind(t *testing.T) {
	Convey("Given redshift distribution names", t, func() {
		Convey("When parsing known names", func() {
			Convey("Then each maps to its kind", func() {
				k, err := distribution.ParseRedshiftKind("exp")
				So(err, ShouldBeNil)
				So(k, ShouldEqual, distribution.RedshiftExponential)

				k, err = distribution.ParseRedshiftKind(" Gamma ")
				So(err, ShouldBeNil)
				So(k, ShouldEqual, distribution.RedshiftGamma)

				k, err = distribution.ParseRedshiftKind("uniform")
				So(err, ShouldBeNil)
				So(k, ShouldEqual, distribution.RedshiftUniform)
			})
		})

		Convey("When parsing an unknown name", func() {
			_, err := distribution.ParseRedshiftKind("bogus")

			Convey("Then it fails with ErrInvalidDistributionKind", func() {
				So(errors.Is(err, distribution.ErrInvalidDistributionKind), ShouldBeTrue)
			})
		})

		Convey("When unmarshaling text", func() {
			var k distribution.RedshiftKind
			So(k.UnmarshalText([]byte("gamma")), ShouldBeNil)
			So(k, ShouldEqual, distribution.RedshiftGamma)
			So(errors.Is(k.UnmarshalText([]byte("lognormal")), distribution.ErrInvalidDistributionKind), ShouldBeTrue)
		})
	})
}

func TestParseSizeKind(t *testing.T) {
	Convey("Given size distribution names", t, func() {
		for name, want := range map[string]distribution.SizeKind{
			"lognormal":   distribution.SizeLogNormal,
			"normal":      distribution.SizeNormal,
			"exponential": distribution.SizeExponential,
		} {
			k, err := distribution.ParseSizeKind(name)
			So(err, ShouldBeNil)
			So(k, ShouldEqual, want)
			So(k.String(), ShouldEqual, name)
		}

		_, err := distribution.ParseSizeKind("exp")
		So(errors.Is(err, distribution.ErrInvalidDistributionKind), ShouldBeTrue)
	})
}

func TestRanders(t *testing.T) {
	Convey("Given kinds outside the closed set", t, func() {
		rng := random.New(1)

		Convey("Then Rander and Validate reject them", func() {
			_, err := distribution.RedshiftKind(0).Rander(rng)
			So(errors.Is(err, distribution.ErrInvalidDistributionKind), ShouldBeTrue)
			So(errors.Is(distribution.SizeKind(99).Validate(), distribution.ErrInvalidDistributionKind), ShouldBeTrue)

			_, err = distribution.SizeKind(99).MarshalText()
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given the gamma redshift sampler", t, func() {
		r, err := distribution.RedshiftGamma.Rander(random.New(42))
		So(err, ShouldBeNil)

		Convey("Then its sample mean approaches shape*scale", func() {
			xs := make([]float64, 50_000)
			for i := range xs {
				xs[i] = r.Rand()
			}
			So(stat.Mean(xs, nil), ShouldAlmostEqual, 0.6, 0.01)
		})
	})

	Convey("Given the lognormal size sampler", t, func() {
		r, err := distribution.SizeLogNormal.Rander(random.New(42))
		So(err, ShouldBeNil)

		Convey("Then every draw is positive", func() {
			lowest := r.Rand()
			for i := 0; i < 10_000; i++ {
				lowest = min(lowest, r.Rand())
			}
			So(lowest, ShouldBeGreaterThan, 0)
		})
	})
}
