// Package timescale converts between civil time, the Julian date scales
// used across the rest of this module (UTC, TT, TDB, UT1), and provides
// the supporting leap-second and Earth-orientation tables.
//
// Internally every conversion routes through TT (Terrestrial Time), which
// runs at a fixed, uniform rate: UTC -> TAI (leap seconds) -> TT (+32.184s
// exact) -> TDB (periodic term) and UT1 (Delta-T / EOP DUT1).
package timescale

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SecPerDay is the number of SI seconds in one day.
const SecPerDay = 86400.0

const unixEpochJD = 2440587.5

// Sentinel errors matching the engine's error taxonomy.
var (
	ErrTimeConversion = errors.New("timescale: time conversion failed")
	ErrEopOutOfRange  = errors.New("timescale: epoch outside EOP table range")
	ErrInvalidConfig  = errors.New("timescale: invalid configuration")
)

// --- Calendar <-> Julian date ---------------------------------------------

// TimeToJDUTC converts a civil time.Time (assumed UTC, any location is
// normalized) to a Julian date on the UTC scale.
func TimeToJDUTC(t time.Time) float64 {
	u := t.UTC()
	days := float64(u.Unix()) / SecPerDay
	frac := float64(u.Nanosecond()) / 1e9 / SecPerDay
	return unixEpochJD + days + frac
}

// JDUTCToTime converts a UTC Julian date back to a time.Time.
func JDUTCToTime(jdUTC float64) time.Time {
	days := jdUTC - unixEpochJD
	secs := days * SecPerDay
	whole := math.Floor(secs)
	frac := secs - whole
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

// CalendarToJD converts a Gregorian calendar date (with a fractional day)
// to a Julian date, using Meeus's algorithm (Astronomical Algorithms, ch. 7).
func CalendarToJD(year, month int, day float64) float64 {
	y, m := year, month
	if m <= 2 {
		y--
		m += 12
	}
	a := y / 100
	b := 2 - a + a/4
	jd := math.Floor(365.25*float64(y+4716)) + math.Floor(30.6001*float64(m+1)) + day + float64(b) - 1524.5
	return jd
}

// JDToCalendar converts a Julian date to a Gregorian calendar date,
// returning the year, month, and fractional day (Meeus ch. 7).
func JDToCalendar(jd float64) (year, month int, day float64) {
	jd += 0.5
	z := math.Floor(jd)
	f := jd - z
	var a float64
	if z < 2299161 {
		a = z
	} else {
		alpha := math.Floor((z - 1867216.25) / 36524.25)
		a = z + 1 + alpha - math.Floor(alpha/4)
	}
	b := a + 1524
	c := math.Floor((b - 122.1) / 365.25)
	d := math.Floor(365.25 * c)
	e := math.Floor((b - d) / 30.6001)

	day = b - d - math.Floor(30.6001*e) + f
	if e < 14 {
		month = int(e - 1)
	} else {
		month = int(e - 13)
	}
	if month > 2 {
		year = int(c - 4716)
	} else {
		year = int(c - 4715)
	}
	return year, month, day
}

// --- Leap seconds -----------------------------------------------------------

// LeapSecondEntry is one row of an LSK (leap second kernel) table: the
// cumulative TAI-UTC offset effective from jdUTC onward.
type LeapSecondEntry struct {
	JDUTC  float64
	Offset float64 // TAI - UTC, seconds
}

// defaultLeapSeconds is the teacher's built-in table, current through the
// most recent IERS leap second (2017-01-01). ParseLeapSecondKernel can
// load a newer naif0012.tls-style table to extend it.
var defaultLeapSeconds = []LeapSecondEntry{
	{2441317.5, 10}, // 1972 JAN  1
	{2441499.5, 11}, // 1972 JUL  1
	{2441683.5, 12}, // 1973 JAN  1
	{2442048.5, 13}, // 1974 JAN  1
	{2442413.5, 14}, // 1975 JAN  1
	{2442778.5, 15}, // 1976 JAN  1
	{2443144.5, 16}, // 1977 JAN  1
	{2443509.5, 17}, // 1978 JAN  1
	{2443874.5, 18}, // 1979 JAN  1
	{2444239.5, 19}, // 1980 JAN  1
	{2444786.5, 20}, // 1981 JUL  1
	{2445151.5, 21}, // 1982 JUL  1
	{2445516.5, 22}, // 1983 JUL  1
	{2446247.5, 23}, // 1985 JUL  1
	{2447161.5, 24}, // 1988 JAN  1
	{2447892.5, 25}, // 1990 JAN  1
	{2448257.5, 26}, // 1991 JAN  1
	{2448804.5, 27}, // 1992 JUL  1
	{2449169.5, 28}, // 1993 JUL  1
	{2449534.5, 29}, // 1994 JUL  1
	{2450083.5, 30}, // 1996 JAN  1
	{2450630.5, 31}, // 1997 JUL  1
	{2451179.5, 32}, // 1999 JAN  1
	{2453736.5, 33}, // 2006 JAN  1
	{2454832.5, 34}, // 2009 JAN  1
	{2456109.5, 35}, // 2012 JUL  1
	{2457204.5, 36}, // 2015 JUL  1
	{2457754.5, 37}, // 2017 JAN  1
}

var activeLeapSeconds = defaultLeapSeconds

// LeapSecondOffset returns TAI-UTC in seconds for the given UTC Julian
// date. Before the first table entry (1972), the initial offset (10s) is
// returned; after the last, the latest known offset is returned.
func LeapSecondOffset(jdUTC float64) float64 {
	table := activeLeapSeconds
	if len(table) == 0 {
		return 0
	}
	if jdUTC < table[0].JDUTC {
		return table[0].Offset
	}
	for i := len(table) - 1; i >= 0; i-- {
		if jdUTC >= table[i].JDUTC {
			return table[i].Offset
		}
	}
	return table[0].Offset
}

// ParseLeapSecondKernel parses a NAIF LSK text file (naif0012.tls and
// similar). It reads the DELTET/DELTA_AT assignment inside the
// \begindata/\begintext block: a flat array of (TAI-UTC, year, month)
// triples using FORTRAN D-exponent literals (e.g. 1.0D0).
func ParseLeapSecondKernel(path string) ([]LeapSecondEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("timescale: open LSK %s: %w: %v", path, ErrInvalidConfig, err)
	}
	defer f.Close()

	var tokens []string
	inData := false
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, `\begindata`):
			inData = true
			continue
		case strings.HasPrefix(trimmed, `\begintext`):
			inData = false
			continue
		}
		if !inData {
			continue
		}
		if idx := strings.Index(line, "="); idx >= 0 && strings.Contains(line[:idx], "DELTA_AT") {
			line = line[idx+1:]
		}
		line = strings.Trim(line, " \t(),")
		if line == "" {
			continue
		}
		for _, tok := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '(' || r == ')' }) {
			if tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("timescale: read LSK %s: %w: %v", path, ErrInvalidConfig, err)
	}

	var entries []LeapSecondEntry
	for i := 0; i+2 < len(tokens); i += 3 {
		offsetStr := strings.ReplaceAll(strings.ReplaceAll(tokens[i], "D", "E"), "d", "e")
		offset, err := strconv.ParseFloat(offsetStr, 64)
		if err != nil {
			continue
		}
		year, err := strconv.Atoi(tokens[i+1])
		if err != nil {
			continue
		}
		month, err := strconv.Atoi(tokens[i+2])
		if err != nil {
			continue
		}
		entries = append(entries, LeapSecondEntry{
			JDUTC:  CalendarToJD(year, month, 1.0),
			Offset: offset,
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("timescale: %s: no DELTA_AT entries found: %w", path, ErrInvalidConfig)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].JDUTC < entries[j].JDUTC })
	return entries, nil
}

// LoadLeapSeconds parses path as an LSK file and installs its table as the
// one LeapSecondOffset, UTCToTT, and UTCToTAI consult from then on.
func LoadLeapSeconds(path string) error {
	entries, err := ParseLeapSecondKernel(path)
	if err != nil {
		return err
	}
	activeLeapSeconds = entries
	return nil
}

// --- Delta T (TT - UT1) ------------------------------------------------

// deltaTYears and deltaTValues hold historical and predicted TT-UT1 values
// (seconds) at ten-year intervals through 2100, then at 2150 and 2200, after Morrison & Stephenson / IERS long-term fits,
// matching the teacher's embedded approximation table.
var deltaTYears = []float64{
	1800, 1810, 1820, 1830, 1840, 1850, 1860, 1870, 1880, 1890,
	1900, 1910, 1920, 1930, 1940, 1950, 1960, 1970, 1980, 1990,
	2000, 2010, 2020, 2030, 2040, 2050, 2060, 2070, 2080, 2090,
	2100, 2150, 2200,
}

var deltaTValues = []float64{
	18.3670, 13.0958, 11.6211, 11.9606, 6.6164, 7.2474, 7.8980, 0.9185, -5.0445, -5.7100,
	-2.7976, 10.4463, 21.2158, 24.1951, 24.3495, 29.1182, 33.1524, 40.1980, 50.5406, 56.8561,
	63.8285, 66.3000, 69.0000, 72.3000, 76.0000, 80.0000, 86.5000, 94.5000, 104.0000, 115.0000,
	126.0000, 200.0000, 280.0000,
}

// DeltaT returns TT-UT1 in seconds at the given fractional Gregorian year,
// linearly interpolated between the nearest table entries and clamped to
// the table's boundary values outside [1800, 2200].
func DeltaT(year float64) float64 {
	n := len(deltaTYears)
	if year <= deltaTYears[0] {
		return deltaTValues[0]
	}
	if year >= deltaTYears[n-1] {
		return deltaTValues[n-1]
	}
	idx := sort.SearchFloat64s(deltaTYears, year)
	if idx >= n {
		idx = n - 1
	}
	if deltaTYears[idx] == year {
		return deltaTValues[idx]
	}
	lo := idx - 1
	if lo < 0 {
		lo = 0
	}
	hi := lo + 1
	if hi >= n {
		hi = n - 1
		lo = hi - 1
	}
	frac := (year - deltaTYears[lo]) / (deltaTYears[hi] - deltaTYears[lo])
	return deltaTValues[lo] + frac*(deltaTValues[hi]-deltaTValues[lo])
}

// --- UTC <-> TAI <-> TT <-> TDB <-> UT1 ---------------------------------

// UTCToTAI adds the current leap-second offset to a UTC Julian date.
func UTCToTAI(jdUTC float64) float64 {
	return jdUTC + LeapSecondOffset(jdUTC)/SecPerDay
}

// UTCToTT converts a UTC Julian date to a TT Julian date: TAI plus the
// fixed 32.184s TT-TAI offset.
func UTCToTT(jdUTC float64) float64 {
	return UTCToTAI(jdUTC) + 32.184/SecPerDay
}

// TTToUTC is the (slightly lossy, since leap seconds are keyed on UTC not
// TT) inverse of UTCToTT: it looks up the offset at the approximate UTC
// instant and iterates once, which is exact away from a leap-second
// boundary and off by at most the size of one leap second within it.
func TTToUTC(jdTT float64) float64 {
	approxUTC := jdTT - 37.0/SecPerDay - 32.184/SecPerDay
	offset := LeapSecondOffset(approxUTC)
	return jdTT - offset/SecPerDay - 32.184/SecPerDay
}

// TDBMinusTT returns TDB-TT in seconds for a given JD (TT or TDB, the
// distinction is below the precision of this approximation). Fairhead &
// Bretagnon series truncated to its leading terms (USNO Circular 179 eq. 2.6).
func TDBMinusTT(jd float64) float64 {
	t := (jd - 2451545.0) / 36525.0
	return 0.001657*math.Sin(628.3076*t+6.2401) +
		0.000022*math.Sin(575.3385*t+4.2970) +
		0.000014*math.Sin(1256.6152*t+6.1969) +
		0.000005*math.Sin(606.9777*t+4.0212) +
		0.000005*math.Sin(52.9691*t+0.4444) +
		0.000002*math.Sin(21.3299*t+5.5431) +
		0.000010*t*math.Sin(628.3076*t+4.2490)
}

// TTToTDB converts a TT Julian date to TDB.
func TTToTDB(jdTT float64) float64 {
	return jdTT + TDBMinusTT(jdTT)/SecPerDay
}

// TDBToTT converts a TDB Julian date to TT (TDB-TT is under 2 ms, so
// one Newton step is exact to machine precision).
func TDBToTT(jdTDB float64) float64 {
	return jdTDB - TDBMinusTT(jdTDB)/SecPerDay
}

// TTToUT1 converts a TT Julian date to UT1 using the DeltaT(year)
// long-term approximation table (no EOP file required). For
// higher-accuracy UT1 from measured Earth orientation parameters, load an
// EOPTable and call its DUT1 method instead.
func TTToUT1(jdTT float64) float64 {
	year := 2000.0 + (jdTT-2451545.0)/365.25
	dt := DeltaT(year)
	return jdTT - dt/SecPerDay
}

// UT1ToTT is the approximate inverse of TTToUT1.
func UT1ToTT(jdUT1 float64) float64 {
	year := 2000.0 + (jdUT1-2451545.0)/365.25
	dt := DeltaT(year)
	return jdUT1 + dt/SecPerDay
}

// --- Earth orientation parameters (measured DUT1) -----------------------

// EOPEntry is one row of a finals2000A.all-style EOP table: UT1-UTC
// (seconds) at a given Modified Julian Date.
type EOPEntry struct {
	MJD  float64
	DUT1 float64 // UT1 - UTC, seconds
}

// EOPTable is a sorted, validated table of measured UT1-UTC values.
type EOPTable struct {
	entries []EOPEntry
}

// LoadEOP parses a fixed-width EOP file (the finals2000A.all / IERS
// Bulletin A column layout: MJD in columns 8-15, UT1-UTC in columns
// 59-68). Loading fails with ErrInvalidConfig if a row's MJD does not
// strictly increase over the previous row, since that would make "linear
// interpolation across a gap" ambiguous.
func LoadEOP(path string) (*EOPTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("timescale: open EOP %s: %w: %v", path, ErrInvalidConfig, err)
	}
	defer f.Close()

	var entries []EOPEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if len(line) < 68 {
			continue
		}
		mjdStr := strings.TrimSpace(line[7:15])
		dutStr := strings.TrimSpace(line[58:68])
		if mjdStr == "" || dutStr == "" {
			continue
		}
		mjd, err := strconv.ParseFloat(mjdStr, 64)
		if err != nil {
			continue
		}
		dut, err := strconv.ParseFloat(dutStr, 64)
		if err != nil {
			continue
		}
		if len(entries) > 0 && mjd <= entries[len(entries)-1].MJD {
			return nil, fmt.Errorf("timescale: %s: non-monotonic MJD at row with MJD=%.5f: %w", path, mjd, ErrInvalidConfig)
		}
		entries = append(entries, EOPEntry{MJD: mjd, DUT1: dut})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("timescale: read EOP %s: %w: %v", path, ErrInvalidConfig, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("timescale: %s: no usable EOP rows: %w", path, ErrInvalidConfig)
	}
	return &EOPTable{entries: entries}, nil
}

// DUT1 returns UT1-UTC in seconds at the given Modified Julian Date,
// linearly interpolated between the bracketing table rows. It returns
// ErrEopOutOfRange if mjd falls outside [first, last] rather than
// silently clamping or defaulting to zero.
func (e *EOPTable) DUT1(mjd float64) (float64, error) {
	n := len(e.entries)
	if n == 0 || mjd < e.entries[0].MJD || mjd > e.entries[n-1].MJD {
		return 0, fmt.Errorf("timescale: mjd %.5f outside EOP range: %w", mjd, ErrEopOutOfRange)
	}
	idx := sort.Search(n, func(i int) bool { return e.entries[i].MJD >= mjd })
	if idx < n && e.entries[idx].MJD == mjd {
		return e.entries[idx].DUT1, nil
	}
	hi := idx
	lo := idx - 1
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	if hi == lo {
		return e.entries[lo].DUT1, nil
	}
	frac := (mjd - e.entries[lo].MJD) / (e.entries[hi].MJD - e.entries[lo].MJD)
	return e.entries[lo].DUT1 + frac*(e.entries[hi].DUT1-e.entries[lo].DUT1), nil
}

// UT1FromUTC converts a UTC Julian date to UT1 using this table's measured
// DUT1, returning ErrEopOutOfRange for epochs the table does not cover.
func (e *EOPTable) UT1FromUTC(jdUTC float64) (float64, error) {
	mjd := jdUTC - 2400000.5
	dut1, err := e.DUT1(mjd)
	if err != nil {
		return 0, err
	}
	return jdUTC + dut1/SecPerDay, nil
}
