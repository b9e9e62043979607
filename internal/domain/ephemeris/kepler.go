package ephemeris

import (
	"math"

	"github.com/okian/horary/internal/domain/model"
)

// elements are mean orbital elements as linear functions of d, days from
// elementEpochJD. Angles in degrees, a in AU (Earth radii for the Moon).
type elements struct {
	N, i, w, a, e, M float64
}

type elementRates struct {
	N, i, w, e, M float64
}

type orbit struct {
	base elements
	rate elementRates
}

func (o orbit) at(d float64) elements {
	return elements{
		N: o.base.N + o.rate.N*d,
		i: o.base.i + o.rate.i*d,
		w: o.base.w + o.rate.w*d,
		a: o.base.a,
		e: o.base.e + o.rate.e*d,
		M: model.Normalize(o.base.M + o.rate.M*d),
	}
}

var orbits = map[model.Body]orbit{
	model.Sun: {
		base: elements{N: 0, i: 0, w: 282.9404, a: 1, e: 0.016709, M: 356.0470},
		rate: elementRates{w: 4.70935e-5, e: -1.151e-9, M: 0.9856002585},
	},
	model.Moon: {
		base: elements{N: 125.1228, i: 5.1454, w: 318.0634, a: 60.2666, e: 0.054900, M: 115.3654},
		rate: elementRates{N: -0.0529538083, w: 0.1643573223, M: 13.0649929509},
	},
	model.Mercury: {
		base: elements{N: 48.3313, i: 7.0047, w: 29.1241, a: 0.387098, e: 0.205635, M: 168.6562},
		rate: elementRates{N: 3.24587e-5, i: 5.00e-8, w: 1.01444e-5, e: 5.59e-10, M: 4.0923344368},
	},
	model.Venus: {
		base: elements{N: 76.6799, i: 3.3946, w: 54.8910, a: 0.723330, e: 0.006773, M: 48.0052},
		rate: elementRates{N: 2.46590e-5, i: 2.75e-8, w: 1.38374e-5, e: -1.302e-9, M: 1.6021302244},
	},
	model.Mars: {
		base: elements{N: 49.5574, i: 1.8497, w: 286.5016, a: 1.523688, e: 0.093405, M: 18.6021},
		rate: elementRates{N: 2.11081e-5, i: -1.78e-8, w: 2.92961e-5, e: 2.516e-9, M: 0.5240207766},
	},
	model.Jupiter: {
		base: elements{N: 100.4542, i: 1.3030, w: 273.8777, a: 5.20256, e: 0.048498, M: 19.8950},
		rate: elementRates{N: 2.76854e-5, i: -1.557e-7, w: 1.64505e-5, e: 4.469e-9, M: 0.0830853001},
	},
	model.Saturn: {
		base: elements{N: 113.6634, i: 2.4886, w: 339.3939, a: 9.55475, e: 0.055546, M: 316.9670},
		rate: elementRates{N: 2.38980e-5, i: -1.081e-7, w: 2.97661e-5, e: -9.499e-9, M: 0.0334442282},
	},
}

// eccentricAnomaly solves Kepler's equation by Newton iteration.
func eccentricAnomaly(M, e float64) float64 {
	m := rad(M)
	E := m + e*math.Sin(m)*(1+e*math.Cos(m))
	for range keplerMaxIter {
		dE := (E - e*math.Sin(E) - m) / (1 - e*math.Cos(E))
		E -= dE
		if math.Abs(dE) < keplerTolerance {
			break
		}
	}
	return E
}

// rect returns the rectangular ecliptic coordinates of an orbit.
func (el elements) rect() (x, y, z float64) {
	E := eccentricAnomaly(el.M, el.e)
	xv := el.a * (math.Cos(E) - el.e)
	yv := el.a * math.Sqrt(1-el.e*el.e) * math.Sin(E)
	v := deg(math.Atan2(yv, xv))
	r := math.Hypot(xv, yv)

	vw := v + el.w
	x = r * (cosd(el.N)*cosd(vw) - sind(el.N)*sind(vw)*cosd(el.i))
	y = r * (sind(el.N)*cosd(vw) + cosd(el.N)*sind(vw)*cosd(el.i))
	z = r * sind(vw) * sind(el.i)
	return x, y, z
}

// longitudes returns geocentric ecliptic longitudes of date for the seven planets.
func longitudes(jd float64) map[model.Body]float64 {
	d := jd - elementEpochJD
	out := make(map[model.Body]float64, len(model.Planets))

	sun := orbits[model.Sun].at(d)
	sx, sy, _ := sun.rect()
	out[model.Sun] = model.Normalize(deg(math.Atan2(sy, sx)))

	moon := orbits[model.Moon].at(d)
	mx, my, _ := moon.rect()
	out[model.Moon] = model.Normalize(deg(math.Atan2(my, mx)) + lunarPerturbation(sun, moon))

	jup := orbits[model.Jupiter].at(d)
	sat := orbits[model.Saturn].at(d)

	for _, b := range []model.Body{model.Mercury, model.Venus, model.Mars, model.Jupiter, model.Saturn} {
		el := orbits[b].at(d)
		hx, hy, _ := el.rect()
		switch b {
		case model.Jupiter:
			hx, hy = rotate(hx, hy, jupiterPerturbation(jup.M, sat.M))
		case model.Saturn:
			hx, hy = rotate(hx, hy, saturnPerturbation(jup.M, sat.M))
		}
		out[b] = model.Normalize(deg(math.Atan2(hy+sy, hx+sx)))
	}
	return out
}

// rotate shifts the heliocentric longitude of (x, y) by dLon degrees,
// keeping the distance in the ecliptic plane.
func rotate(x, y, dLon float64) (float64, float64) {
	if dLon == 0 {
		return x, y
	}
	lon := math.Atan2(y, x) + rad(dLon)
	r := math.Hypot(x, y)
	return r * math.Cos(lon), r * math.Sin(lon)
}

func lunarPerturbation(sun, moon elements) float64 {
	Ms := sun.M
	Mm := moon.M
	Ls := sun.M + sun.w
	Lm := moon.M + moon.w + moon.N
	D := Lm - Ls
	F := Lm - moon.N

	return -1.274*sind(Mm-2*D) +
		0.658*sind(2*D) -
		0.186*sind(Ms) -
		0.059*sind(2*Mm-2*D) -
		0.057*sind(Mm-2*D+Ms) +
		0.053*sind(Mm+2*D) +
		0.046*sind(2*D-Ms) +
		0.041*sind(Mm-Ms) -
		0.035*sind(D) -
		0.031*sind(Mm+Ms) -
		0.015*sind(2*F-2*D) +
		0.011*sind(Mm-4*D)
}

func jupiterPerturbation(Mj, Ms float64) float64 {
	return -0.332*sind(2*Mj-5*Ms-67.6) -
		0.056*sind(2*Mj-2*Ms+21) +
		0.042*sind(3*Mj-5*Ms+21) -
		0.036*sind(Mj-2*Ms) +
		0.022*cosd(Mj-Ms) +
		0.023*sind(2*Mj-3*Ms+52) -
		0.016*sind(Mj-5*Ms-69)
}

func saturnPerturbation(Mj, Ms float64) float64 {
	return 0.812*sind(2*Mj-5*Ms-67.6) -
		0.229*cosd(2*Mj-4*Ms-2) +
		0.119*sind(Mj-2*Ms-3) +
		0.046*sind(2*Mj-6*Ms-69) +
		0.014*sind(Mj-3*Ms+32)
}
