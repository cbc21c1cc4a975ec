package ephem

import (
	"fmt"
	"math"

	"github.com/stelleng/ephem/constellation"
	"github.com/stelleng/ephem/elements"
	"github.com/stelleng/ephem/ephem/errtax"
	"github.com/stelleng/ephem/kepler"
	"github.com/stelleng/ephem/magnitude"
	"github.com/stelleng/ephem/spk"
	"github.com/stelleng/ephem/units"
)

const (
	j2000JD    = 2451545.0
	secPerDayF = 86400.0
)

// GMSunKm3S2 is the Sun's gravitational parameter in km^3/s^2, derived from
// kepler.GMSunAU3D2 (AU^3/day^2) via units.AUToKm, so the two constants
// never drift apart. Callers computing Sun-centered OsculatingElements pass
// this as mu.
var GMSunKm3S2 = kepler.GMSunAU3D2 * units.AUToKm * units.AUToKm * units.AUToKm / (secPerDayF * secPerDayF)

// OsculatingElements returns the osculating Keplerian orbital elements of
// body relative to center at tdbJD — a derived view over two raw state
// vectors pulled straight from the loaded kernels, bypassing frame rotation
// and light-time correction (elements are defined on the geometric,
// instantaneous state). mu is the gravitational parameter of center in
// km^3/s^2; use GMSunKm3S2 for heliocentric elements.
func (e *Engine) OsculatingElements(body, center int, tdbJD, mu float64) (elements.OsculatingElements, error) {
	for _, k := range e.kernels {
		bodyPos, err := k.PositionWrtSSB(body, tdbJD)
		if err != nil {
			continue
		}
		bodyVel, err := k.VelocityWrtSSB(body, tdbJD)
		if err != nil {
			continue
		}
		centerPos, err := k.PositionWrtSSB(center, tdbJD)
		if err != nil {
			continue
		}
		centerVel, err := k.VelocityWrtSSB(center, tdbJD)
		if err != nil {
			continue
		}

		relPosKm := [3]float64{bodyPos[0] - centerPos[0], bodyPos[1] - centerPos[1], bodyPos[2] - centerPos[2]}
		relVelKmPerDay := [3]float64{bodyVel[0] - centerVel[0], bodyVel[1] - centerVel[1], bodyVel[2] - centerVel[2]}
		relVelKmPerSec := [3]float64{relVelKmPerDay[0] / secPerDayF, relVelKmPerDay[1] / secPerDayF, relVelKmPerDay[2] / secPerDayF}

		return elements.FromStateVector(relPosKm, relVelKmPerSec, mu), nil
	}
	return elements.OsculatingElements{}, errtax.New(errtax.NoSegment, fmt.Sprintf("body=%d center=%d", body, center), fmt.Errorf("not covered by any loaded kernel"))
}

// ApparentMagnitude returns the visual apparent magnitude of body as seen
// from Earth at tdbJD, using the Mallama & Hilton phase-curve models — a
// derived view combining the body's apparent (Earth-relative) state with
// its heliocentric state.
func (e *Engine) ApparentMagnitude(body int, tdbJD float64) (float64, error) {
	for _, k := range e.kernels {
		sunPos, err := k.PositionWrtSSB(spk.Sun, tdbJD)
		if err != nil {
			continue
		}
		bodyPos, err := k.PositionWrtSSB(body, tdbJD)
		if err != nil {
			continue
		}
		obsPos, err := k.Apparent(body, tdbJD)
		if err != nil {
			continue
		}

		sunToBodyAU := [3]float64{
			(bodyPos[0] - sunPos[0]) / units.AUToKm,
			(bodyPos[1] - sunPos[1]) / units.AUToKm,
			(bodyPos[2] - sunPos[2]) / units.AUToKm,
		}
		obsToBodyAU := [3]float64{obsPos[0] / units.AUToKm, obsPos[1] / units.AUToKm, obsPos[2] / units.AUToKm}
		year := 2000.0 + (tdbJD-j2000JD)/365.25

		return magnitude.PlanetaryMagnitudeWithGeometry(body, sunToBodyAU, obsToBodyAU, year), nil
	}
	return math.NaN(), errtax.New(errtax.NoSegment, fmt.Sprintf("body=%d", body), fmt.Errorf("not covered by any loaded kernel"))
}

// Constellation returns the IAU 3-letter abbreviation of the constellation
// containing body's astrometric (light-time corrected) ICRF position as
// seen from Earth at tdbJD.
func (e *Engine) Constellation(body int, tdbJD float64) (string, error) {
	st, err := e.Observe(body, tdbJD, FrameICRF)
	if err != nil {
		return "", err
	}
	raHours, decDeg := icrfToRADec(st.Position)
	return constellation.At(raHours, decDeg), nil
}

func icrfToRADec(pos [3]float64) (raHours, decDeg float64) {
	r := math.Sqrt(pos[0]*pos[0] + pos[1]*pos[1] + pos[2]*pos[2])
	decDeg = math.Asin(pos[2]/r) * 180.0 / math.Pi
	ra := math.Atan2(pos[1], pos[0]) * 180.0 / math.Pi
	if ra < 0 {
		ra += 360.0
	}
	return ra / 15.0, decDeg
}

// --- Keplerian orbits: minor planets and comets outside the kernel's body tree ---

// AddOrbit registers a named Keplerian orbit (a minor planet or comet not
// present in any loaded kernel) for later querying via OrbitState.
func (e *Engine) AddOrbit(name string, o kepler.Orbit) {
	if e.orbits == nil {
		e.orbits = make(map[string]*kepler.Orbit)
	}
	orbit := o
	e.orbits[name] = &orbit
}

// OrbitState returns the geocentric state of a previously registered orbit
// at tdbJD, in the requested frame. The orbit's heliocentric position
// (kepler.Orbit.PositionKm) is combined with the Sun's own geocentric state
// vector from the loaded kernels to produce an Earth-relative position;
// velocity is obtained by central finite difference.
func (e *Engine) OrbitState(name string, tdbJD float64, frame Frame) (State, error) {
	o, ok := e.orbits[name]
	if !ok {
		return State{}, errtax.New(errtax.UnsupportedQuery, name, fmt.Errorf("no orbit registered with this name"))
	}

	const dt = 0.01 // days, for the central-difference velocity estimate

	posAt := func(t float64) ([3]float64, error) {
		sunGeo, err := e.Geocentric(spk.Sun, t, FrameICRF)
		if err != nil {
			return [3]float64{}, err
		}
		helio := o.PositionKm(t)
		return [3]float64{
			sunGeo.Position[0] + helio[0],
			sunGeo.Position[1] + helio[1],
			sunGeo.Position[2] + helio[2],
		}, nil
	}

	pos, err := posAt(tdbJD)
	if err != nil {
		return State{}, err
	}
	posPlus, err := posAt(tdbJD + dt)
	if err != nil {
		return State{}, err
	}
	posMinus, err := posAt(tdbJD - dt)
	if err != nil {
		return State{}, err
	}

	vel := [3]float64{
		(posPlus[0] - posMinus[0]) / (2 * dt),
		(posPlus[1] - posMinus[1]) / (2 * dt),
		(posPlus[2] - posMinus[2]) / (2 * dt),
	}

	return e.rotate(State{Position: pos, Velocity: vel}, frame), nil
}
