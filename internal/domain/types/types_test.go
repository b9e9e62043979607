package types_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	types "github.com/okian/horary/internal/domain/types"
	"github.com/okian/horary/internal/domain/model"
)

func ptr(f float64) *float64 { return &f }

func TestCastRequest_AskedAt(t *testing.T) {
	Convey("Given a cast request", t, func() {
		Convey("An empty timestamp yields the zero time", func() {
			at, err := types.CastRequest{}.AskedAt()
			So(err, ShouldBeNil)
			So(at.IsZero(), ShouldBeTrue)
		})

		Convey("An offset timestamp is converted to UTC", func() {
			at, err := types.CastRequest{TimestampUTC: "2024-03-01T07:00:00-05:00"}.AskedAt()
			So(err, ShouldBeNil)
			So(at.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)), ShouldBeTrue)
			So(at.Location(), ShouldEqual, time.UTC)
		})

		Convey("A malformed timestamp is an error", func() {
			_, err := types.CastRequest{TimestampUTC: "yesterday"}.AskedAt()
			So(err, ShouldNotBeNil)
		})
	})
}

func TestCastRequest_Candidates(t *testing.T) {
	Convey("Given location inputs", t, func() {
		Convey("No locations yields no candidates", func() {
			got, err := types.CastRequest{}.Candidates()
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})

		Convey("Every source is tagged in priority order", func() {
			req := types.CastRequest{
				Latitude: ptr(40.7), Longitude: ptr(-74), LocationName: "New York",
				SavedLocation: &types.Coordinate{Latitude: ptr(51.5), Longitude: ptr(0)},
				Geolocation:   &types.Coordinate{Latitude: ptr(48.85), Longitude: ptr(2.35), Name: "Paris"},
			}
			got, err := req.Candidates()
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 3)
			So(got[0], ShouldResemble, model.Location{Latitude: 40.7, Longitude: -74, Name: "New York", Source: model.SourceQuestion})
			So(got[1].Source, ShouldEqual, model.SourceSaved)
			So(got[2].Source, ShouldEqual, model.SourceGeolocation)
			So(got[2].Name, ShouldEqual, "Paris")
		})

		Convey("Half a coordinate is rejected", func() {
			_, err := types.CastRequest{Latitude: ptr(10)}.Candidates()
			So(errors.Is(err, types.ErrIncompleteCoordinate), ShouldBeTrue)
		})

		Convey("An incomplete saved location is skipped", func() {
			got, err := types.CastRequest{SavedLocation: &types.Coordinate{Latitude: ptr(1)}}.Candidates()
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})
	})
}
