// Package sidereal computes ayanamsha (tropical-to-sidereal zodiac offset)
// values and lunar node longitudes — the derived sidereal-astronomy layer
// named in the Overview but not carried by any single teacher package.
package sidereal

import (
	"math"

	"github.com/stelleng/ephem/lunarnodes"
)

const j2000JD = 2451545.0
const arcsec2deg = 1.0 / 3600.0

// System identifies an ayanamsha definition: an epoch plus the ayanamsha
// value at that epoch, per the Swiss Ephemeris AyaInit convention.
type System int

const (
	// Lahiri is the Calendar Reform Committee 1956 definition, corrected
	// for nutation per Wahr 1980 (Indian Astronomical Ephemeris 1989, p.556).
	Lahiri System = iota
	// FaganBradley is the Western sidereal school's Synetic Vernal Point,
	// 335°57'28.64" at epoch B1950.0.
	FaganBradley
)

type ayaInit struct {
	t0JD   float64 // epoch, TT Julian date
	ayanT0 float64 // ayanamsha value at epoch, degrees
}

var ayaTable = map[System]ayaInit{
	// Epoch 2435553.5 (1956-03-21 TT); value = 23.250182778 - 0.004658035
	// (nutation correction), per jankampherbeek/segoport's AyaInit table.
	Lahiri: {t0JD: 2435553.5, ayanT0: 23.250182778 - 0.004658035},
	// Epoch 2433282.42346 (B1950.0); value 24.042044444 = 335°57'28.64"
	// expressed as (360 - 335.95795...) degrees.
	FaganBradley: {t0JD: 2433282.42346, ayanT0: 24.042044444},
}

// generalPrecessionArcsec returns the IAU 2006 accumulated general
// precession in longitude, p_A(T), in arcseconds, for T Julian centuries
// from J2000 TT. Source: Capitaine et al. 2003 / IAU 2006 precession
// theory, the same polynomial family coord.go uses for zetaA/thetaA.
func generalPrecessionArcsec(T float64) float64 {
	return T * (5028.796195 + T*(1.1054348+T*(0.00007964+T*(-0.000023857+T*-0.0000000383))))
}

// Ayanamsha returns the ayanamsha value in degrees, in [0, 360), for the
// given sidereal system at tdbJD: the system's epoch value plus the IAU
// 2006 general precession in longitude accumulated between the system's
// epoch and tdbJD.
func Ayanamsha(sys System, tdbJD float64) float64 {
	def := ayaTable[sys]
	t0 := (def.t0JD - j2000JD) / 36525.0
	t := (tdbJD - j2000JD) / 36525.0

	deltaArcsec := generalPrecessionArcsec(t) - generalPrecessionArcsec(t0)
	aya := def.ayanT0 + deltaArcsec*arcsec2deg

	aya = math.Mod(aya, 360.0)
	if aya < 0 {
		aya += 360.0
	}
	return aya
}

// ToSidereal subtracts the ayanamsha from a tropical ecliptic longitude,
// returning the sidereal longitude in [0, 360).
func ToSidereal(tropicalLonDeg float64, sys System, tdbJD float64) float64 {
	sidLon := math.Mod(tropicalLonDeg-Ayanamsha(sys, tdbJD), 360.0)
	if sidLon < 0 {
		sidLon += 360.0
	}
	return sidLon
}

// MeanNode returns the mean North and South lunar node ecliptic
// longitudes (degrees) at tdbJD. Delegates to the teacher-derived
// lunarnodes package's Meeus-formula implementation.
func MeanNode(tdbJD float64) (northLonDeg, southLonDeg float64) {
	return lunarnodes.MeanLunarNodes(tdbJD)
}

// TrueNode returns North and South lunar node ecliptic longitudes tied to
// the Moon's node passage nearest tdbJD, using moonEclipticLatDeg — a
// caller-supplied function returning the Moon's apparent ecliptic
// latitude in degrees at a given TDB Julian date (ephem.Engine plus
// coord.ICRFToEcliptic supplies this). findZeroCrossings scans a window of
// dayWindow days centered on tdbJD for sign changes of that latitude, and
// the result is MeanNode evaluated at the crossing nearest tdbJD; with no
// crossing in the window it is MeanNode(tdbJD).
//
// The longitude itself comes from the mean-node formula: the ~1.5 degree
// oscillation of the osculating node around the mean is not reproduced.
func TrueNode(tdbJD float64, moonEclipticLatDeg func(float64) (float64, error), dayWindow float64) (northLonDeg, southLonDeg float64, err error) {
	sign := func(t float64) int {
		lat, latErr := moonEclipticLatDeg(t)
		if latErr != nil {
			err = latErr
			return 0
		}
		if lat >= 0 {
			return 1
		}
		return -1
	}

	startJD := tdbJD - dayWindow/2.0
	endJD := tdbJD + dayWindow/2.0
	events, findErr := findZeroCrossings(startJD, endJD, sign)
	if findErr != nil {
		return 0, 0, findErr
	}
	if err != nil {
		return 0, 0, err
	}
	if len(events) == 0 {
		mn, ms := MeanNode(tdbJD)
		return mn, ms, nil
	}

	// Nearest crossing to tdbJD, ascending or descending; MeanNode's north
	// value is the north node at either kind of crossing.
	best := events[0]
	for _, e := range events[1:] {
		if math.Abs(e.t-tdbJD) < math.Abs(best.t-tdbJD) {
			best = e
		}
	}

	northLonDeg, southLonDeg = MeanNode(best.t)
	return northLonDeg, southLonDeg, nil
}

type crossing struct {
	t         float64
	ascending bool
}

// findZeroCrossings brackets and bisects sign changes of f over
// [startJD, endJD] at a fixed daily scan resolution, refining to
// sub-minute precision. Grounded on search.FindDiscrete's bracket-then-
// bisect shape, specialized here since sidereal cannot import search's
// DiscreteEvent int-valued contract without losing the ascending/
// descending distinction the node computation needs.
func findZeroCrossings(startJD, endJD float64, f func(float64) int) ([]crossing, error) {
	const stepDays = 1.0
	const epsilon = 1.0 / 1440.0 // 1 minute

	n := int((endJD-startJD)/stepDays) + 2
	if n < 2 {
		n = 2
	}
	dt := (endJD - startJD) / float64(n-1)

	var out []crossing
	prevT := startJD
	prevV := f(prevT)
	for i := 1; i < n; i++ {
		t := startJD + float64(i)*dt
		v := f(t)
		if v != prevV {
			lo, hi := prevT, t
			vLo := prevV
			for hi-lo > epsilon {
				mid := (lo + hi) / 2.0
				vMid := f(mid)
				if vMid == vLo {
					lo = mid
				} else {
					hi = mid
				}
			}
			out = append(out, crossing{t: hi, ascending: v > prevV})
		}
		prevT, prevV = t, v
	}
	return out, nil
}
