package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewMetricsManager(WithPrometheusRegistry(registry))

			Convey("Then every collector is registered", func() {
				So(manager, ShouldNotBeNil)
				manager.RecordGalaxies(1)
				manager.RecordMap(1, 12)
				manager.RecordFileWritten("csv")
				manager.ObserveSamplerDuration("catalogue", 0.1)
				manager.RecordErrorByComponent("app", "io")
				manager.RecordRunResult(true, 1)
				n, err := testutil.GatherAndCount(registry)
				So(err, ShouldBeNil)
				So(n, ShouldBeGreaterThanOrEqualTo, 8)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewMetricsManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 1}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordGalaxies(3)

			Convey("Then metric names carry the namespace and subsystem", func() {
				expected := `
# HELP test_unit_galaxies_generated_total Total number of catalogue rows drawn
# TYPE test_unit_galaxies_generated_total counter
test_unit_galaxies_generated_total{env="test"} 3
`
				err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_unit_galaxies_generated_total")
				So(err, ShouldBeNil)
			})
		})

		Convey("When empty options are applied", func() {
			m := &Manager{
				namespace:        "kappagen",
				subsystem:        "generator",
				histogramBuckets: defaultDurationBuckets,
				constLabels:      prometheus.Labels{},
				registry:         prometheus.DefaultRegisterer,
			}
			for _, opt := range []Option{
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(nil),
			} {
				opt(m)
			}

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "kappagen")
				So(m.subsystem, ShouldEqual, "generator")
				So(m.histogramBuckets, ShouldResemble, defaultDurationBuckets)
				So(m.constLabels, ShouldBeEmpty)
				So(m.registry, ShouldEqual, prometheus.DefaultRegisterer)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewMetricsManager(WithPrometheusRegistry(registry))

		Convey("When galaxies are recorded", func() {
			m.RecordGalaxies(100)
			m.RecordGalaxies(50)

			Convey("Then the counter sums them", func() {
				So(testutil.ToFloat64(m.galaxiesGenerated), ShouldEqual, 150)
			})
		})

		Convey("When maps are recorded", func() {
			m.RecordMap(128, 196608)
			m.RecordMap(128, 196608)
			m.RecordMap(256, 786432)

			Convey("Then they are counted per resolution", func() {
				So(testutil.ToFloat64(m.mapsGenerated.WithLabelValues("128")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.mapsGenerated.WithLabelValues("256")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.pixelsGenerated), ShouldEqual, 2*196608+786432)
			})
		})

		Convey("When files and errors are recorded", func() {
			m.RecordFileWritten("catalogue")
			m.RecordFileWritten("map")
			m.RecordFileWritten("map")
			m.RecordErrorByComponent("repository", "map")

			Convey("Then each label set has its own count", func() {
				So(testutil.ToFloat64(m.filesWritten.WithLabelValues("catalogue")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.filesWritten.WithLabelValues("map")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.errorsByComponent.WithLabelValues("repository", "map")), ShouldEqual, 1)
			})
		})

		Convey("When sampler durations are observed", func() {
			m.ObserveSamplerDuration("kappa", 0.2)
			m.ObserveSamplerDuration("kappa", 0.4)

			Convey("Then one histogram series exists", func() {
				So(testutil.CollectAndCount(m.samplerDuration), ShouldEqual, 1)
			})
		})

		Convey("When run results are recorded", func() {
			m.RecordRunResult(true, 1700000000)
			So(testutil.ToFloat64(m.lastRunSuccess), ShouldEqual, 1)
			So(testutil.ToFloat64(m.lastRunTimestamp), ShouldEqual, 1700000000)

			m.RecordRunResult(false, 1700000100)
			So(testutil.ToFloat64(m.lastRunSuccess), ShouldEqual, 0)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		before := testutil.ToFloat64(Global().filesWritten.WithLabelValues("global-test"))

		Convey("When it records a written file", func() {
			Global().RecordFileWritten("global-test")

			Convey("Then they record on the custom registry", func() {
				So(testutil.ToFloat64(Global().filesWritten.WithLabelValues("global-test")), ShouldEqual, before+1)
				n, err := testutil.GatherAndCount(GetRegistry(), "kappagen_generator_files_written_total")
				So(err, ShouldBeNil)
				So(n, ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		registry := prometheus.NewRegistry()
		m := NewMetricsManager(WithPrometheusRegistry(registry))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					m.RecordGalaxies(1)
					m.RecordFileWritten("csv")
				}
			}()
		}
		wg.Wait()

		Convey("Then no increment is lost", func() {
			So(testutil.ToFloat64(m.galaxiesGenerated), ShouldEqual, 1000)
			So(testutil.ToFloat64(m.filesWritten.WithLabelValues("csv")), ShouldEqual, 1000)
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a registry with recorded metrics", t, func() {
		registry := prometheus.NewRegistry()
		m := NewMetricsManager(WithPrometheusRegistry(registry))
		m.RecordGalaxies(42)

		Convey("When it is written to a textfile", func() {
			path := filepath.Join(t.TempDir(), "kappagen.prom")
			err := WriteTextfile(path, registry)

			Convey("Then the file holds the exposition text", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "kappagen_generator_galaxies_generated_total 42")
			})
		})

		Convey("When the path is empty", func() {
			err := WriteTextfile("", registry)

			Convey("Then an export error is returned", func() {
				So(errors.Is(err, ErrExport), ShouldBeTrue)
			})
		})

		Convey("When the directory does not exist", func() {
			err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"), registry)

			Convey("Then an export error is returned", func() {
				So(errors.Is(err, ErrExport), ShouldBeTrue)
			})
		})
	})
}
