// Package chart builds the immutable ChartSnapshot every evaluator reads.
// Sign and house are resolved here and nowhere else.
package chart

import (
	"sort"

	"github.com/okian/horary/internal/domain/ephemeris"
	"github.com/okian/horary/internal/domain/houses"
	"github.com/okian/horary/internal/domain/model"
)

// Assemble combines body motions and a house frame into a snapshot. It
// derives the South Node and Part of Fortune and decides day or night.
// Bodies missing from motions are omitted.
func Assemble(inst model.Instant, motions map[model.Body]ephemeris.Motion, frame houses.Result) model.ChartSnapshot {
	snap := model.ChartSnapshot{
		Instant:               inst,
		Planets:               make(map[model.Body]model.PlanetPosition, len(model.AllBodies)),
		Ascendant:             frame.Ascendant,
		Midheaven:             frame.Midheaven,
		HouseSystem:           string(frame.System),
		HouseSystemDegenerate: frame.Degenerate,
	}
	for i := range snap.Cusps {
		lon := frame.Cusps[i]
		snap.Cusps[i] = model.HouseCusp{Number: i + 1, Longitude: lon, Sign: model.SignOf(lon)}
	}

	place := func(b model.Body, m ephemeris.Motion) {
		lon := model.Normalize(m.Longitude)
		snap.Planets[b] = model.PlanetPosition{
			Body:         b,
			Longitude:    lon,
			Sign:         model.SignOf(lon),
			DegreeInSign: model.DegreeInSign(lon),
			House:        frame.HouseOf(lon),
			Retrograde:   m.Retrograde,
			DailyMotion:  m.DailyMotion,
		}
	}

	for _, b := range sortedBodies(motions) {
		place(b, motions[b])
	}

	if node, ok := motions[model.NorthNode]; ok {
		place(model.SouthNode, ephemeris.Motion{
			Longitude:   node.Longitude + model.HalfCircle,
			DailyMotion: node.DailyMotion,
			Retrograde:  node.Retrograde,
		})
	}

	sun, hasSun := snap.Planets[model.Sun]
	moon, hasMoon := snap.Planets[model.Moon]
	if hasSun {
		snap.IsDayChart = sun.House >= 7
	}
	if hasSun && hasMoon {
		place(model.PartOfFortune, ephemeris.Motion{
			Longitude: PartOfFortune(frame.Ascendant, sun.Longitude, moon.Longitude, snap.IsDayChart),
		})
	}
	return snap
}

// PartOfFortune is asc + moon - sun by day and asc + sun - moon by night.
func PartOfFortune(asc, sun, moon float64, isDay bool) float64 {
	if isDay {
		return model.Normalize(asc + moon - sun)
	}
	return model.Normalize(asc + sun - moon)
}

func sortedBodies(motions map[model.Body]ephemeris.Motion) []model.Body {
	out := make([]model.Body, 0, len(motions))
	for b := range motions {
		if b == model.SouthNode || b == model.PartOfFortune {
			continue
		}
		if _, ok := model.ParseBody(string(b)); !ok {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order() < out[j].Order() })
	return out
}
