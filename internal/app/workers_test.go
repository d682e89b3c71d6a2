package service

import (
	"testing"

	"github.com/okian/kappagen/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWorkerBudget(t *testing.T) {
	Convey("Given a worker budget", t, func() {
		store, err := repository.NewFileStore(t.TempDir())
		So(err, ShouldBeNil)

		cases := []struct {
			workers   int
			nsides    []int
			sources   []float64
			maps      int
			smoothing int
		}{
			{workers: 8, nsides: []int{4, 8, 16}, sources: []float64{0.5, 1, 1.5, 2}, maps: 8, smoothing: 1},
			{workers: 8, nsides: []int{4}, sources: []float64{0.5, 1}, maps: 2, smoothing: 4},
			{workers: 1, nsides: []int{4, 8}, sources: []float64{1}, maps: 1, smoothing: 1},
			{workers: 5, nsides: []int{4, 8}, sources: []float64{1}, maps: 2, smoothing: 2},
		}
		for _, tc := range cases {
			s, err := New(store, WithWorkers(tc.workers), WithMapGrid(tc.nsides, tc.sources))
			So(err, ShouldBeNil)

			So(s.mapConcurrency(), ShouldEqual, tc.maps)
			So(s.smootherWorkers(), ShouldEqual, tc.smoothing)
			So(s.mapConcurrency()*s.smootherWorkers(), ShouldBeLessThanOrEqualTo, tc.workers)
		}
	})
}
