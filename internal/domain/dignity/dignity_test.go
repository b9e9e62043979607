package dignity_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/horary/internal/domain/dignity"
	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/internal/domain/tables"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAssess(t *testing.T) {
	Convey("Given the essential bands", t, func() {
		cases := map[int]model.Assessment{
			-10: model.VeryWeak, -5: model.VeryWeak, -4: model.Weak, -1: model.Weak,
			0: model.Moderate, 3: model.Moderate, 4: model.Strong, 6: model.Strong,
			7: model.VeryStrong, 15: model.VeryStrong,
		}
		for score, want := range cases {
			So(dignity.Assess(score), ShouldEqual, want)
		}
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Given the default tables", t, func() {
		e := dignity.New(tables.MustDefault())

		Convey("When the Sun is in Leo by day", func() {
			d := e.Evaluate(model.Sun, model.Leo, 10, true)

			Convey("Then rulership and triplicity stack", func() {
				So(d.Rulership, ShouldBeTrue)
				So(d.Triplicity, ShouldBeTrue)
				So(d.Term, ShouldBeFalse)
				So(d.Face, ShouldBeFalse)
				So(d.Score, ShouldEqual, 8)
				So(d.Assessment, ShouldEqual, model.VeryStrong)
				So(d.Peregrine, ShouldBeFalse)
			})
		})

		Convey("When the Sun is in Leo by night", func() {
			d := e.Evaluate(model.Sun, model.Leo, 10, false)
			So(d.Triplicity, ShouldBeFalse)
			So(d.Score, ShouldEqual, 5)
			So(d.Assessment, ShouldEqual, model.Strong)
		})

		Convey("When the Sun is exalted in its own face", func() {
			d := e.Evaluate(model.Sun, model.Aries, 19, true)
			So(d.Exaltation, ShouldBeTrue)
			So(d.Face, ShouldBeTrue)
			So(d.Score, ShouldEqual, 4+3+1)
		})

		Convey("When Saturn is in detriment but in its own face", func() {
			d := e.Evaluate(model.Saturn, model.Leo, 5, false)

			Convey("Then both are scored and the contradiction is surfaced", func() {
				So(d.Detriment, ShouldBeTrue)
				So(d.Face, ShouldBeTrue)
				So(d.Score, ShouldEqual, -4)
				So(d.Assessment, ShouldEqual, model.Weak)

				c := e.AnalyzeContradictions(d)
				So(len(c), ShouldEqual, 1)
				So(c[0].Kind, ShouldEqual, model.DignityWithDebility)
				So(c[0].Positive, ShouldResemble, []string{"face"})
				So(c[0].Debilities, ShouldResemble, []string{"detriment"})
			})
		})

		Convey("When Mercury is in Pisces", func() {
			d := e.Evaluate(model.Mercury, model.Pisces, 15, false)

			Convey("Then detriment and fall are flagged but only detriment is scored", func() {
				So(d.Detriment, ShouldBeTrue)
				So(d.Fall, ShouldBeTrue)
				So(d.Score, ShouldEqual, -5)
				So(d.Peregrine, ShouldBeTrue)
				So(d.Assessment, ShouldEqual, model.VeryWeak)

				c := e.AnalyzeContradictions(d)
				So(len(c), ShouldEqual, 1)
				So(c[0].Kind, ShouldEqual, model.DetrimentAndFall)
			})
		})

		Convey("When Venus is in her triplicity at the exact degree of her fall", func() {
			d := e.Evaluate(model.Venus, model.Virgo, 27.5, true)
			So(d.Triplicity, ShouldBeTrue)
			So(d.Fall, ShouldBeTrue)
			So(d.Score, ShouldEqual, -1)

			c := e.AnalyzeContradictions(d)
			So(len(c), ShouldEqual, 1)
			So(c[0].Note, ShouldContainSubstring, "exact degree of its fall")
		})

		Convey("When Mars has no dignity at all", func() {
			d := e.Evaluate(model.Mars, model.Gemini, 5, true)
			So(d.Peregrine, ShouldBeTrue)
			So(d.Score, ShouldEqual, 0)
			So(d.Assessment, ShouldEqual, model.Moderate)
			So(e.AnalyzeContradictions(d), ShouldBeEmpty)
		})

		Convey("When a point is evaluated", func() {
			d := e.Evaluate(model.NorthNode, model.Aries, 1, true)
			So(d.Score, ShouldEqual, 0)
			So(d.Peregrine, ShouldBeFalse)
		})

		Convey("When the same placement is evaluated twice", func() {
			a := e.Evaluate(model.Jupiter, model.Cancer, 15, false)
			b := e.Evaluate(model.Jupiter, model.Cancer, 15, false)
			So(cmp.Diff(a, b), ShouldBeEmpty)
		})

		Convey("When a whole chart is evaluated", func() {
			snap := model.ChartSnapshot{IsDayChart: true, Planets: map[model.Body]model.PlanetPosition{
				model.Sun:       {Body: model.Sun, Sign: model.Leo, DegreeInSign: 10},
				model.NorthNode: {Body: model.NorthNode, Sign: model.Aries},
			}}
			out := e.EvaluateChart(snap)
			So(len(out), ShouldEqual, 1)
			So(out[model.Sun].Score, ShouldEqual, 8)
		})
	})
}
