package random_test

import (
	"testing"

	"github.com/okian/kappagen/internal/domain/random"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given two generators built from the same seed", t, func() {
		a := random.New(42)
		b := random.New(42)

		Convey("Then they should produce identical streams", func() {
			for i := 0; i < 100; i++ {
				So(a.Uint64(), ShouldEqual, b.Uint64())
			}
		})
	})

	Convey("Given generators built from different seeds", t, func() {
		a := random.New(1)
		b := random.New(2)

		Convey("Then their first draws should differ", func() {
			So(a.Uint64(), ShouldNotEqual, b.Uint64())
		})
	})
}
