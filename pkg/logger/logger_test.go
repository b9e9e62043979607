package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf), WithJSON(true)), ShouldBeNil)
		defer func() { _ = Init() }()

		ctx := context.Background()

		Convey("When logging with fields", func() {
			Get().Named("chart").Info(ctx, "chart cast", String("system", "regiomontanus"), Float64("latitude", 51.5), Bool("degenerate", false))

			Convey("Then a JSON line carries the message, component and fields", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				So(line["msg"], ShouldEqual, "chart cast")
				So(line["component"], ShouldEqual, "chart")
				So(line["system"], ShouldEqual, "regiomontanus")
				So(line["latitude"], ShouldEqual, 51.5)
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging a duration and a flag", func() {
			Get().Info(ctx, "question judged", Duration("elapsed", 1500*time.Microsecond), Bool("radical", true))

			Convey("Then the duration is written in nanoseconds and the flag as a bool", func() {
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				So(line["elapsed"], ShouldEqual, float64(1_500_000))
				So(line["radical"], ShouldEqual, true)
			})
		})

		Convey("When the level is raised", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()

			Get().Info(ctx, "dropped")
			Get().Warn(ctx, "kept")

			Convey("Then only warnings are written", func() {
				So(buf.String(), ShouldNotContainSubstring, "dropped")
				So(buf.String(), ShouldContainSubstring, "kept")
			})
		})

		Convey("When an unknown level is given", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})

		Convey("Then Sync is a no-op", func() {
			So(Sync(), ShouldBeNil)
		})
	})
}

func TestNamed(t *testing.T) {
	Convey("Given the package-level Named helper", t, func() {
		l := Named("test")
		So(l, ShouldNotBeNil)
		So(func() { l.Debug(context.Background(), "quiet") }, ShouldNotPanic)
	})
}
