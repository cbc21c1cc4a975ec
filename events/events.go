// Package events applies the search package's root-finding primitives to
// three derived-astronomy questions: when two bodies share an ecliptic
// longitude (conjunction), when a body's apparent motion reverses
// direction (station), and when a body's disk covers a fixed star
// (occultation) — composed from search.FindDiscrete over an
// ephem.Engine per spec.md §9's "root-finding composability" design note.
package events

import (
	"fmt"
	"math"

	"github.com/stelleng/ephem/ephem"
	"github.com/stelleng/ephem/geometry"
	"github.com/stelleng/ephem/search"
	"github.com/stelleng/ephem/star"
)

// Conjunction records the moment two bodies reach the same ecliptic
// longitude, as seen from the Engine's geocenter.
type Conjunction struct {
	T      float64 // TDB Julian date
	Body1  int
	Body2  int
	LonDeg float64 // shared ecliptic longitude at conjunction
}

// Direction identifies the sense of a body's apparent ecliptic motion.
type Direction int

const (
	Direct Direction = iota
	Retrograde
)

// Station records the moment a body's apparent ecliptic longitude rate
// changes sign.
type Station struct {
	T         float64 // TDB Julian date
	Body      int
	Direction Direction // direction entered at T
}

const rateStepDays = 0.01

func eclipticLonDeg(b *ephem.Batch, body int, tdbJD float64) (float64, error) {
	st, err := b.Apparent(body, tdbJD, ephem.FrameEclipticJ2000)
	if err != nil {
		return 0, err
	}
	lon := math.Atan2(st.Position[1], st.Position[0]) * 180.0 / math.Pi
	lon = math.Mod(lon, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	return lon, nil
}

// wrappedDiffSign returns the sign (-1, 0, +1) of the shortest angular
// difference lon1-lon2, wrapped to [-180, 180).
func wrappedDiffSign(lon1, lon2 float64) int {
	d := math.Mod(lon1-lon2+180.0, 360.0)
	if d < 0 {
		d += 360.0
	}
	d -= 180.0
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	default:
		return 0
	}
}

// FindConjunctions searches [startJD, endJD] for moments when body1 and
// body2 share an ecliptic longitude, sampling at stepDays resolution
// (which must be short enough that no two crossings fall within one
// step — e.g. a day for the Moon against an outer planet, a month for
// two slow outer planets).
func FindConjunctions(eng *ephem.Engine, body1, body2 int, startJD, endJD, stepDays float64) ([]Conjunction, error) {
	b := eng.NewBatch()
	var evalErr error

	f := func(t float64) int {
		lon1, err := eclipticLonDeg(b, body1, t)
		if err != nil {
			evalErr = err
			return 0
		}
		lon2, err := eclipticLonDeg(b, body2, t)
		if err != nil {
			evalErr = err
			return 0
		}
		return wrappedDiffSign(lon1, lon2)
	}

	discrete, err := search.FindDiscrete(startJD, endJD, stepDays, f, 0)
	if err != nil {
		return nil, fmt.Errorf("events: conjunction search: %w", err)
	}
	if evalErr != nil {
		return nil, fmt.Errorf("events: conjunction search: %w", evalErr)
	}

	out := make([]Conjunction, 0, len(discrete))
	for _, ev := range discrete {
		lon1, err := eclipticLonDeg(b, body1, ev.T)
		if err != nil {
			return nil, fmt.Errorf("events: conjunction search: %w", err)
		}
		lon2, err := eclipticLonDeg(b, body2, ev.T)
		if err != nil {
			return nil, fmt.Errorf("events: conjunction search: %w", err)
		}
		// The wrapped difference also changes sign where it passes through
		// ±180° (opposition); keep only the crossings of 0°.
		if math.Abs(math.Mod(lon1-lon2+540.0, 360.0)-180.0) > 90.0 {
			continue
		}
		out = append(out, Conjunction{T: ev.T, Body1: body1, Body2: body2, LonDeg: lon1})
	}
	return out, nil
}

// FindStations searches [startJD, endJD] for moments when body's apparent
// ecliptic longitude rate (estimated by central finite difference over
// rateStepDays) changes sign, sampling at stepDays resolution.
func FindStations(eng *ephem.Engine, body int, startJD, endJD, stepDays float64) ([]Station, error) {
	b := eng.NewBatch()
	var evalErr error

	rateSign := func(t float64) int {
		lonPlus, err := eclipticLonDeg(b, body, t+rateStepDays/2.0)
		if err != nil {
			evalErr = err
			return 0
		}
		lonMinus, err := eclipticLonDeg(b, body, t-rateStepDays/2.0)
		if err != nil {
			evalErr = err
			return 0
		}
		diff := math.Mod(lonPlus-lonMinus+180.0, 360.0)
		if diff < 0 {
			diff += 360.0
		}
		diff -= 180.0
		switch {
		case diff > 0:
			return 1
		case diff < 0:
			return -1
		default:
			return 0
		}
	}

	discrete, err := search.FindDiscrete(startJD, endJD, stepDays, rateSign, 0)
	if err != nil {
		return nil, fmt.Errorf("events: station search: %w", err)
	}
	if evalErr != nil {
		return nil, fmt.Errorf("events: station search: %w", evalErr)
	}

	out := make([]Station, 0, len(discrete))
	for _, ev := range discrete {
		dir := Direct
		if ev.NewValue < 0 {
			dir = Retrograde
		}
		out = append(out, Station{T: ev.T, Body: body, Direction: dir})
	}
	return out, nil
}

// Occultation records a moment a body's apparent disk starts or stops
// covering a fixed star's line of sight, as seen from Earth's geocenter.
type Occultation struct {
	T        float64 // TDB Julian date
	Body     int
	Entering bool // true: occultation begins; false: occultation ends
}

// FindOccultations searches [startJD, endJD] for moments when body's disk
// (radius bodyRadiusKm, in km) crosses the line of sight to s, sampling at
// stepDays resolution. The check is geometric: the ray from Earth's
// geocenter through the star's direction is tested against the sphere
// centered on body's geocentric position via geometry.IntersectLineSphere,
// the same line-sphere intersection eclipse-shadow geometry would use for
// a point light source.
func FindOccultations(eng *ephem.Engine, s *star.Star, body int, bodyRadiusKm, startJD, endJD, stepDays float64) ([]Occultation, error) {
	b := eng.NewBatch()
	var evalErr error

	covered := func(t float64) int {
		st, err := b.Geocentric(body, t, ephem.FrameICRF)
		if err != nil {
			evalErr = err
			return 0
		}
		starDir := s.PositionKm(t)
		near, far := geometry.IntersectLineSphere(starDir, st.Position, bodyRadiusKm)
		if math.IsNaN(near) || far < 0 {
			return 0
		}
		return 1
	}

	discrete, err := search.FindDiscrete(startJD, endJD, stepDays, covered, 0)
	if err != nil {
		return nil, fmt.Errorf("events: occultation search: %w", err)
	}
	if evalErr != nil {
		return nil, fmt.Errorf("events: occultation search: %w", evalErr)
	}

	out := make([]Occultation, 0, len(discrete))
	for _, ev := range discrete {
		out = append(out, Occultation{T: ev.T, Body: body, Entering: ev.NewValue == 1})
	}
	return out, nil
}
