// Command ephemquery is a thin demonstration binary over the ephem query
// engine: given a kernel file, a UTC timestamp, and a geographic location,
// it prints apparent body positions, sunrise/sunset, the Ascendant/
// Midheaven, and the Lahiri ayanamsha. Not part of the core library
// contract — a CLI surface is explicitly out of scope per spec.md's
// Non-goals, so this exists purely to exercise the packages end to end.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/stelleng/ephem/almanac"
	"github.com/stelleng/ephem/coord"
	"github.com/stelleng/ephem/ephem"
	"github.com/stelleng/ephem/events"
	"github.com/stelleng/ephem/houses"
	"github.com/stelleng/ephem/kepler"
	"github.com/stelleng/ephem/projection"
	"github.com/stelleng/ephem/sidereal"
	"github.com/stelleng/ephem/spk"
	"github.com/stelleng/ephem/star"
	"github.com/stelleng/ephem/timescale"
	"github.com/stelleng/ephem/units"
)

func main() {
	kernelPath := flag.String("kernel", "data/de440s.bsp", "path to an SPK kernel")
	lskPath := flag.String("lsk", "", "optional path to a NAIF leap-second kernel")
	eopPath := flag.String("eop", "", "optional path to an IERS finals2000A-style EOP file")
	when := flag.String("time", "", "UTC timestamp RFC3339 (default: now)")
	lat := flag.Float64("lat", 0, "observer geographic latitude, degrees north")
	lon := flag.Float64("lon", 0, "observer geographic longitude, degrees east")
	flag.Parse()

	t := time.Now().UTC()
	if *when != "" {
		parsed, err := time.Parse(time.RFC3339, *when)
		if err != nil {
			log.Fatalf("ephemquery: invalid -time %q: %v", *when, err)
		}
		t = parsed.UTC()
	}

	eng, err := ephem.New(ephem.Config{
		KernelPaths: []string{*kernelPath},
		LSKPath:     *lskPath,
		EOPPath:     *eopPath,
	})
	if err != nil {
		log.Fatalf("ephemquery: %v", err)
	}

	// almanac predates the ephem.Engine wrapper and still takes a
	// *spk.SPK directly; open the same kernel again for it.
	kernel, err := spk.Open(*kernelPath)
	if err != nil {
		log.Fatalf("ephemquery: %v", err)
	}

	jdUTC := timescale.TimeToJDUTC(t)
	tdbJD := timescale.UTCToTT(jdUTC)
	ut1JD := timescale.TTToUT1(tdbJD)

	fmt.Printf("Time: %s UTC  (TDB JD %.6f)\n\n", t.Format(time.RFC3339), tdbJD)

	bodies := []struct {
		name string
		id   int
	}{
		{"Sun", spk.Sun},
		{"Moon", spk.Moon},
		{"Mercury", spk.Mercury},
		{"Venus", spk.Venus},
		{"Mars", spk.MarsBarycenter},
		{"Jupiter", spk.JupiterBarycenter},
		{"Saturn", spk.SaturnBarycenter},
	}

	fmt.Println("Apparent ecliptic longitude (J2000, geocentric):")
	for _, b := range bodies {
		st, err := eng.Apparent(b.id, tdbJD, ephem.FrameEclipticJ2000)
		if err != nil {
			log.Printf("  %-8s error: %v", b.name, err)
			continue
		}
		lonDeg := math.Mod(math.Atan2(st.Position[1], st.Position[0])*180.0/math.Pi+360.0, 360.0)
		tropicalRashi := int(lonDeg / 30.0)
		sidLon := sidereal.ToSidereal(lonDeg, sidereal.Lahiri, tdbJD)
		fmt.Printf("  %-8s tropical %7.3f deg (sign %d)   sidereal (Lahiri) %7.3f deg\n",
			b.name, lonDeg, tropicalRashi, sidLon)

		if con, err := eng.Constellation(b.id, tdbJD); err == nil {
			fmt.Printf("             constellation %s\n", con)
		}
		if mag, err := eng.ApparentMagnitude(b.id, tdbJD); err == nil && !math.IsNaN(mag) {
			fmt.Printf("             apparent magnitude %.2f\n", mag)
		}
	}

	fmt.Printf("\nLahiri ayanamsha: %.4f deg\n", sidereal.Ayanamsha(sidereal.Lahiri, tdbJD))

	northNode, southNode := sidereal.MeanNode(tdbJD)
	fmt.Printf("Mean lunar node: North %.3f deg, South %.3f deg\n", northNode, southNode)

	if moonSt, err := eng.Apparent(spk.Moon, tdbJD, ephem.FrameICRF); err == nil {
		r := math.Sqrt(moonSt.Position[0]*moonSt.Position[0] + moonSt.Position[1]*moonSt.Position[1] + moonSt.Position[2]*moonSt.Position[2])
		decDeg := math.Asin(moonSt.Position[2]/r) * 180.0 / math.Pi
		raDeg := math.Mod(math.Atan2(moonSt.Position[1], moonSt.Position[0])*180.0/math.Pi+360.0, 360.0)
		raAngle := units.AngleFromDegrees(raDeg)
		decAngle := units.AngleFromDegrees(decDeg)
		raSign, raH, raM, raS := raAngle.HMS()
		decSign, decD, decM, decS := decAngle.DMS()
		raSignCh, decSignCh := "+", "+"
		if raSign < 0 {
			raSignCh = "-"
		}
		if decSign < 0 {
			decSignCh = "-"
		}
		dist := units.NewDistance(r)
		fmt.Printf("\nMoon: RA %s%dh%02dm%05.2fs  Dec %s%dd%02dm%05.2fs  distance %.6f AU (%.3f light-s)\n",
			raSignCh, raH, raM, raS, decSignCh, decD, decM, decS, dist.AU(), dist.LightSeconds())
	}

	if elems, err := eng.OsculatingElements(spk.MarsBarycenter, spk.Sun, tdbJD, ephem.GMSunKm3S2); err == nil {
		aAU := units.NewDistance(elems.SemiMajorAxisKm).AU()
		fmt.Printf("Mars osculating elements: a=%.4f AU  e=%.4f  i=%.3f deg\n",
			aAU, elems.Eccentricity, elems.InclinationDeg)
	}

	// A Keplerian orbit outside the kernel's body tree, queried the same way
	// as any kernel-backed body via Engine.AddOrbit/OrbitState.
	eng.AddOrbit("1P/Halley", kepler.Orbit{
		PerihelionAU:    0.586,
		Eccentricity:    0.967,
		InclinationDeg:  162.26,
		LongAscNodeDeg:  58.42,
		ArgPeriapsisDeg: 111.33,
		PeriapsisTimeJD: 2446467.4,
	})
	if st, err := eng.OrbitState("1P/Halley", tdbJD, ephem.FrameEclipticJ2000); err == nil {
		lonDeg := math.Mod(math.Atan2(st.Position[1], st.Position[0])*180.0/math.Pi+360.0, 360.0)
		fmt.Printf("1P/Halley geocentric ecliptic longitude: %.3f deg\n", lonDeg)
	} else {
		log.Printf("orbit query: %v", err)
	}

	// Stereographic sky-chart projection of the body list, centered on the Sun.
	if sunSt, err := eng.Apparent(spk.Sun, tdbJD, ephem.FrameICRF); err == nil {
		proj := projection.NewProjector(sunSt.Position[0], sunSt.Position[1], sunSt.Position[2])
		fmt.Println("Stereographic projection centered on the Sun:")
		for _, b := range bodies {
			st, err := eng.Apparent(b.id, tdbJD, ephem.FrameICRF)
			if err != nil {
				continue
			}
			px, py := proj.Project(st.Position[0], st.Position[1], st.Position[2])
			fmt.Printf("  %-8s x=%+.4f y=%+.4f\n", b.name, px, py)
		}
	}

	// Occultation search: a bright fixed star against the Moon's disk over the
	// surrounding week.
	regulus := &star.Star{RAHours: 10.139, DecDeg: 11.967, ParallaxMas: 41.13}
	moonRadiusKm := 1737.4
	occultations, err := events.FindOccultations(eng, regulus, spk.Moon, moonRadiusKm, tdbJD-7, tdbJD+7, 0.02)
	if err != nil {
		log.Printf("occultation search: %v", err)
	} else if len(occultations) == 0 {
		fmt.Println("No Regulus occultations by the Moon found in the surrounding week.")
	} else {
		fmt.Println("Regulus occultations by the Moon:")
		for _, o := range occultations {
			label := "ends"
			if o.Entering {
				label = "begins"
			}
			fmt.Printf("  JD %.6f: occultation %s\n", o.T, label)
		}
	}

	oblDeg := coord.MeanObliquityDeg(tdbJD)
	lstDeg := houses.LocalSiderealTimeDeg(ut1JD, *lon)
	chart, err := houses.Compute(lstDeg, oblDeg, *lat, houses.Placidus)
	if err != nil {
		log.Printf("houses: %v", err)
	} else {
		fmt.Printf("\nAscendant: %.3f deg   Midheaven: %.3f deg\n", chart.Ascendant, chart.Midheaven)
	}

	startJD := tdbJD - 1
	endJD := tdbJD + 1
	riseSetEvents, err := almanac.SunriseSunset(kernel, *lat, *lon, startJD, endJD)
	if err != nil {
		log.Printf("almanac: %v", err)
		return
	}
	fmt.Println("\nSunrise/sunset near this date:")
	for _, e := range riseSetEvents {
		label := "set"
		if e.NewValue == 1 {
			label = "rise"
		}
		fmt.Printf("  JD %.6f: sun%s\n", e.T, label)
	}
}
