package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an initialized logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		defer func() { _ = SetLevelString("info") }()
		ctx := context.Background()

		Convey("When logging at info level", func() {
			Get().Info(ctx, "map written", String("file", "kappa.fits"), Int("nside", 128), Duration("took", time.Second))

			Convey("Then the record carries message, fields and source", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, `msg="map written"`)
				So(out, ShouldContainSubstring, "file=kappa.fits")
				So(out, ShouldContainSubstring, "nside=128")
				So(out, ShouldContainSubstring, "took=1s")
				So(out, ShouldContainSubstring, "source=logger_test.go:")
			})
		})

		Convey("When debug is disabled", func() {
			Get().Debug(ctx, "hidden")
			So(buf.String(), ShouldBeEmpty)

			So(SetLevelString("debug"), ShouldBeNil)
			Get().Debug(ctx, "shown")
			So(buf.String(), ShouldContainSubstring, "shown")
		})

		Convey("When using named and enriched loggers", func() {
			Named("sampler").With(String("run_id", "abc")).Warn(ctx, "careful", Error(errors.New("boom")))

			Convey("Then the extra attributes are present", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "component=sampler")
				So(out, ShouldContainSubstring, "run_id=abc")
				So(out, ShouldContainSubstring, "error=boom")
				So(out, ShouldContainSubstring, "level=WARN")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		for _, l := range []string{"debug", "INFO", "", "warn", "warning", " error "} {
			So(SetLevelString(l), ShouldBeNil)
		}
		err := SetLevelString("verbose")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "unknown log level")
		_ = SetLevelString("info")
	})
}

func TestNop(t *testing.T) {
	Convey("Given the no-op logger", t, func() {
		l := Nop()

		Convey("Then logging never panics", func() {
			So(func() {
				l.Error(context.Background(), "dropped")
				l.Named("x").With(Bool("ok", true)).Info(context.Background(), "dropped")
			}, ShouldNotPanic)
		})
	})
}

func TestInitWithNilWriter(t *testing.T) {
	Convey("Given a nil writer", t, func() {
		err := InitWithWriter(nil)
		So(err, ShouldNotBeNil)
		So(strings.Contains(err.Error(), "nil writer"), ShouldBeTrue)
	})
}
