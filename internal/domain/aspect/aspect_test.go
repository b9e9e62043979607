package aspect_test

import (
	"testing"

	"github.com/okian/horary/internal/domain/aspect"
	"github.com/okian/horary/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func pos(b model.Body, lon, motion float64) model.PlanetPosition {
	return model.PlanetPosition{Body: b, Longitude: lon, Sign: model.SignOf(lon), DailyMotion: motion, Retrograde: motion < 0}
}

func snap(ps ...model.PlanetPosition) model.ChartSnapshot {
	s := model.ChartSnapshot{Planets: map[model.Body]model.PlanetPosition{}}
	for _, p := range ps {
		s.Planets[p.Body] = p
	}
	return s
}

func TestDetect(t *testing.T) {
	Convey("Given the default detector", t, func() {
		d := aspect.New()

		Convey("When the Sun and Moon are exactly conjunct", func() {
			got := d.Detect(snap(pos(model.Sun, 100, 0.98), pos(model.Moon, 100, 13.2)))

			Convey("Then a conjunction with zero orb is reported", func() {
				So(len(got), ShouldEqual, 1)
				So(got[0].Type, ShouldEqual, model.Conjunction)
				So(got[0].Orb, ShouldEqual, 0)
				So(got[0].A, ShouldEqual, model.Sun)
				So(got[0].B, ShouldEqual, model.Moon)
			})
		})

		Convey("When a faster planet approaches a trine", func() {
			got := d.Detect(snap(pos(model.Moon, 10, 13), pos(model.Venus, 135, 1.2)))

			Convey("Then the trine is applying", func() {
				So(len(got), ShouldEqual, 1)
				So(got[0].Type, ShouldEqual, model.Trine)
				So(got[0].Orb, ShouldAlmostEqual, 5)
				So(got[0].Applying, ShouldBeTrue)
			})
		})

		Convey("When the faster planet has passed exact", func() {
			got := d.Detect(snap(pos(model.Moon, 10, 13), pos(model.Venus, 125, 1.2)))
			So(got[0].Type, ShouldEqual, model.Trine)
			So(got[0].Applying, ShouldBeFalse)
		})

		Convey("When a retrograde planet moves back into an aspect", func() {
			got := d.Detect(snap(pos(model.Mars, 100, 0.5), pos(model.Mercury, 195, -0.8)))
			So(got[0].Type, ShouldEqual, model.Square)
			So(got[0].Applying, ShouldBeTrue)
		})

		Convey("When two planets straddle the 0 degree point", func() {
			got := d.Detect(snap(pos(model.Sun, 356, 1), pos(model.Mars, 3, 0.6)))
			So(got[0].Type, ShouldEqual, model.Conjunction)
			So(got[0].Orb, ShouldAlmostEqual, 7)
		})

		Convey("When the separation is outside every orb", func() {
			got := d.Detect(snap(pos(model.Sun, 0, 1), pos(model.Mars, 40, 0.6)))
			So(got, ShouldBeEmpty)
		})

		Convey("When orbs of two aspects would overlap", func() {
			wide := aspect.New(aspect.WithOrbs(aspect.Orbs{model.Sextile: 20, model.Square: 20}))
			got := wide.Detect(snap(pos(model.Sun, 0, 1), pos(model.Mars, 80, 0.6)))

			Convey("Then only the closest aspect is reported for the pair", func() {
				So(len(got), ShouldEqual, 1)
				So(got[0].Type, ShouldEqual, model.Square)
			})
		})

		Convey("When many planets are present", func() {
			got := d.Detect(snap(
				pos(model.Sun, 0, 1), pos(model.Moon, 60, 13), pos(model.Mercury, 90, 1.2),
				pos(model.Venus, 120, 1.1), pos(model.Mars, 180, 0.5), pos(model.Jupiter, 240, 0.1),
				pos(model.Saturn, 270, 0.03),
			))

			Convey("Then each pair appears at most once and output is ordered", func() {
				seen := map[[2]model.Body]bool{}
				for i, a := range got {
					key := [2]model.Body{a.A, a.B}
					So(seen[key], ShouldBeFalse)
					seen[key] = true
					So(a.A.Order(), ShouldBeLessThan, a.B.Order())
					if i > 0 {
						prev := got[i-1]
						So(prev.A.Order() < a.A.Order() || (prev.A == a.A && prev.B.Order() < a.B.Order()), ShouldBeTrue)
					}
				}
			})
		})
	})

	Convey("Given optional points and quincunx", t, func() {
		s := snap(pos(model.Sun, 0, 1), pos(model.NorthNode, 150, -0.05), pos(model.SouthNode, 330, -0.05))

		Convey("Then points are ignored by default", func() {
			So(aspect.New().Detect(s), ShouldBeEmpty)
		})

		Convey("Then enabling points and quincunx finds them", func() {
			got := aspect.New(aspect.WithPoints(true), aspect.WithQuincunx(true)).Detect(s)
			So(len(got), ShouldEqual, 1)
			So(got[0].A, ShouldEqual, model.Sun)
			So(got[0].B, ShouldEqual, model.NorthNode)
			So(got[0].Type, ShouldEqual, model.Quincunx)
		})
	})
}
