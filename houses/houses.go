// Package houses computes the Ascendant, Midheaven, and house cusps of a
// chart for a given local sidereal time, obliquity, and geographic
// latitude — the derived astrological-houses layer named in the
// specification's Overview but implemented fresh here, since no repo in
// the retrieval pack carries a complete house-system implementation
// (jankampherbeek/segoport's internal/domain.go confirms the SidMode/
// house-system shape a faithful port would carry, but stubs the cusp
// bodies themselves). Formulas follow Meeus, "Astronomical Algorithms",
// Ch. 13.
package houses

import (
	"fmt"
	"math"

	"github.com/stelleng/ephem/coord"
)

// System identifies a house-division algorithm.
type System int

const (
	Placidus System = iota
	Equal
	WholeSign
)

// ErrInvalidLatitude is returned when the requested latitude places the
// observer at or beyond a pole, where local sidereal time does not define
// an Ascendant (the eastern horizon is degenerate).
var ErrInvalidLatitude = fmt.Errorf("houses: latitude must be in (-90, 90) degrees")

// Chart holds the Ascendant, Midheaven, and the 12 house cusps (index 0
// is house 1) in ecliptic longitude degrees, all in [0, 360).
type Chart struct {
	Ascendant float64
	Midheaven float64
	Cusps     [12]float64
	System    System
}

// Ascendant returns the ecliptic longitude of the Ascendant (the point of
// the ecliptic rising on the eastern horizon) for local sidereal time
// lstDeg (in degrees), obliquity oblDeg, and geographic latitude latDeg.
func Ascendant(lstDeg, oblDeg, latDeg float64) (float64, error) {
	if latDeg <= -90 || latDeg >= 90 {
		return 0, ErrInvalidLatitude
	}
	lstRad := lstDeg * math.Pi / 180.0
	oblRad := oblDeg * math.Pi / 180.0
	latRad := latDeg * math.Pi / 180.0

	y := math.Cos(lstRad)
	x := -(math.Sin(lstRad)*math.Cos(oblRad) + math.Tan(latRad)*math.Sin(oblRad))
	asc := math.Atan2(y, x) * 180.0 / math.Pi
	return normalize360(asc), nil
}

// Midheaven returns the ecliptic longitude of the Midheaven (the
// ecliptic point on the local meridian) for local sidereal time lstDeg
// and obliquity oblDeg.
func Midheaven(lstDeg, oblDeg float64) float64 {
	lstRad := lstDeg * math.Pi / 180.0
	oblRad := oblDeg * math.Pi / 180.0
	mc := math.Atan2(math.Sin(lstRad), math.Cos(lstRad)*math.Cos(oblRad)) * 180.0 / math.Pi
	return normalize360(mc)
}

// Compute builds a full Chart for the given local sidereal time (degrees),
// obliquity (degrees), geographic latitude (degrees), and house system.
func Compute(lstDeg, oblDeg, latDeg float64, sys System) (Chart, error) {
	asc, err := Ascendant(lstDeg, oblDeg, latDeg)
	if err != nil {
		return Chart{}, err
	}
	mc := Midheaven(lstDeg, oblDeg)

	var cusps [12]float64
	switch sys {
	case Equal:
		cusps = equalCusps(asc)
	case WholeSign:
		cusps = wholeSignCusps(asc)
	case Placidus:
		c, err := placidusCusps(lstDeg, oblDeg, latDeg, asc, mc)
		if err != nil {
			return Chart{}, err
		}
		cusps = c
	default:
		return Chart{}, fmt.Errorf("houses: unknown system %d", sys)
	}

	return Chart{Ascendant: asc, Midheaven: mc, Cusps: cusps, System: sys}, nil
}

// equalCusps places each cusp 30 degrees past the Ascendant, the simplest
// of the quadrant-free systems.
func equalCusps(asc float64) [12]float64 {
	var c [12]float64
	for i := 0; i < 12; i++ {
		c[i] = normalize360(asc + float64(i)*30.0)
	}
	return c
}

// wholeSignCusps assigns house 1 to the entire zodiac sign containing the
// Ascendant, then one sign per subsequent house — cusps fall on exact
// 30-degree sign boundaries rather than the Ascendant degree itself.
func wholeSignCusps(asc float64) [12]float64 {
	signStart := math.Floor(asc/30.0) * 30.0
	var c [12]float64
	for i := 0; i < 12; i++ {
		c[i] = normalize360(signStart + float64(i)*30.0)
	}
	return c
}

// placidusCusps computes the quadrant (Placidus) system's intermediate
// cusps (11, 12, 2, 3) by iterative solution of the hour-angle equation
// for each house's fractional semi-diurnal arc, with cusps 1/4/7/10
// fixed at the Ascendant/IC/Descendant/Midheaven.
func placidusCusps(lstDeg, oblDeg, latDeg, asc, mc float64) ([12]float64, error) {
	var c [12]float64
	c[0] = asc                     // house 1 = Ascendant
	c[3] = normalize360(mc + 180)  // house 4 = IC
	c[6] = normalize360(asc + 180) // house 7 = Descendant
	c[9] = mc                      // house 10 = Midheaven

	oblRad := oblDeg * math.Pi / 180.0
	latRad := latDeg * math.Pi / 180.0

	var err error
	c[10], err = placidusCusp(lstDeg, oblRad, latRad, 1.0/3.0, true) // house 11
	if err != nil {
		return c, err
	}
	c[11], err = placidusCusp(lstDeg, oblRad, latRad, 2.0/3.0, true) // house 12
	if err != nil {
		return c, err
	}
	c[1], err = placidusCusp(lstDeg, oblRad, latRad, 2.0/3.0, false) // house 2
	if err != nil {
		return c, err
	}
	c[2], err = placidusCusp(lstDeg, oblRad, latRad, 1.0/3.0, false) // house 3
	if err != nil {
		return c, err
	}

	// Houses 5, 6, 8, 9 are opposite 11, 12, 2, 3.
	c[4] = normalize360(c[10] + 180)
	c[5] = normalize360(c[11] + 180)
	c[7] = normalize360(c[1] + 180)
	c[8] = normalize360(c[2] + 180)

	return c, nil
}

// placidusCusp solves for the ecliptic longitude of a trisection cusp of
// the diurnal (upper=true, between MC and Ascendant) or nocturnal
// (upper=false, between IC and Ascendant) semi-arc, at fraction k of that
// arc. Standard Placidus relation, solved by fixed-point iteration since
// a cusp's target right ascension depends on its own declination:
//
//	upper: RA = RAMC + k*(90 + AD)
//	lower: RA = RAMC + 180 - k*(90 - AD)
//
// where AD is the ascensional difference asin(tan(lat)*tan(dec)) of the
// ecliptic point currently being solved for.
func placidusCusp(ramcDeg float64, oblRad, latRad, k float64, upper bool) (float64, error) {
	lonDeg := ramcDeg
	if !upper {
		lonDeg = normalize360(ramcDeg + 180)
	}

	for iter := 0; iter < 50; iter++ {
		lonRad := lonDeg * math.Pi / 180.0
		dec := math.Asin(clamp(math.Sin(oblRad)*math.Sin(lonRad), -1, 1))

		adArg := math.Tan(latRad) * math.Tan(dec)
		if adArg < -1 || adArg > 1 {
			return 0, fmt.Errorf("houses: placidus cusp does not converge at this latitude (circumpolar declination)")
		}
		adDeg := math.Asin(adArg) * 180.0 / math.Pi

		var targetRA float64
		if upper {
			targetRA = ramcDeg + k*(90.0+adDeg)
		} else {
			targetRA = ramcDeg + 180.0 - k*(90.0-adDeg)
		}

		newLon := eclipticLonForRA(targetRA, oblRad)
		if math.Abs(angularDiff(newLon, lonDeg)) < 1e-8 {
			return normalize360(newLon), nil
		}
		lonDeg = newLon
	}
	return normalize360(lonDeg), nil
}

// eclipticLonForRA returns the ecliptic longitude whose right ascension
// equals targetRADeg, the inverse of the standard RA = atan2(sinL*cosObl,
// cosL) transform.
func eclipticLonForRA(targetRADeg, oblRad float64) float64 {
	raRad := targetRADeg * math.Pi / 180.0
	lon := math.Atan2(math.Sin(raRad)/math.Cos(oblRad), math.Cos(raRad)) * 180.0 / math.Pi
	return normalize360(lon)
}

// angularDiff returns the signed shortest angular distance a-b in
// degrees, in [-180, 180].
func angularDiff(a, b float64) float64 {
	d := math.Mod(a-b+180.0, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d - 180.0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func normalize360(deg float64) float64 {
	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return deg
}

// LocalSiderealTimeDeg returns the local (apparent) sidereal time in
// degrees for observer longitude lonDeg east-positive at jdUT1, derived
// from coord.GAST.
func LocalSiderealTimeDeg(jdUT1, lonDeg float64) float64 {
	return normalize360(coord.GAST(jdUT1) + lonDeg)
}
