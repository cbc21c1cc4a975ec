// Package ephem is the top-level query engine: it composes one or more
// SPK kernels into a single chain-resolved body tree rooted at the Solar
// System Barycenter, applies frame rotation, and offers a per-call
// memoized batch mode for repeated queries over the same Engine.
//
// An Engine's kernels and time tables are fixed once built by New and safe
// for concurrent read access. AddOrbit is the one method that modifies an
// Engine: it writes the orbit registry without locking, so it is not safe
// to call concurrently with other Engine methods. A Batch obtained from an
// Engine is not safe for concurrent use (see NewBatch).
package ephem

import (
	"fmt"
	"sync"

	"github.com/stelleng/ephem/coord"
	"github.com/stelleng/ephem/ephem/errtax"
	"github.com/stelleng/ephem/kepler"
	"github.com/stelleng/ephem/spk"
	"github.com/stelleng/ephem/timescale"
)

// Frame selects the Cartesian frame a State is expressed in.
type Frame int

const (
	// FrameICRF is the kernel-native International Celestial Reference Frame.
	FrameICRF Frame = iota
	// FrameEclipticJ2000 is the J2000 mean ecliptic frame.
	FrameEclipticJ2000
)

// State is a position/velocity pair: km and km/day respectively.
type State struct {
	Position [3]float64
	Velocity [3]float64
}

// Config configures an Engine. KernelPaths is validated non-empty; LSK
// and EOP paths are optional — without them the Engine falls back to the
// built-in leap-second table and the DeltaT long-term approximation for
// UT1, which none of the Engine's position queries read directly.
type Config struct {
	KernelPaths  []string
	LSKPath      string
	EOPPath      string
	DefaultFrame Frame
}

// Engine is a validated, read-only set of loaded kernels plus optional
// Earth-orientation data. Construct with New.
type Engine struct {
	kernels []*spk.SPK
	eop     *timescale.EOPTable
	cfg     Config
	orbits  map[string]*kepler.Orbit
}

// New validates cfg and loads every configured kernel (and, if given, the
// LSK and EOP tables), returning an Engine ready for concurrent queries.
func New(cfg Config) (*Engine, error) {
	if len(cfg.KernelPaths) == 0 {
		return nil, errtax.New(errtax.InvalidConfig, "KernelPaths", fmt.Errorf("at least one kernel path is required"))
	}

	eng := &Engine{cfg: cfg}
	for _, p := range cfg.KernelPaths {
		k, err := spk.Open(p)
		if err != nil {
			return nil, errtax.New(errtax.KernelLoad, p, err)
		}
		eng.kernels = append(eng.kernels, k)
	}

	if cfg.LSKPath != "" {
		if err := timescale.LoadLeapSeconds(cfg.LSKPath); err != nil {
			return nil, errtax.New(errtax.InvalidConfig, cfg.LSKPath, err)
		}
	}

	if cfg.EOPPath != "" {
		eop, err := timescale.LoadEOP(cfg.EOPPath)
		if err != nil {
			return nil, errtax.New(errtax.InvalidConfig, cfg.EOPPath, err)
		}
		eng.eop = eop
	}

	return eng, nil
}

func (e *Engine) rotate(s State, frame Frame) State {
	if frame == FrameICRF {
		return s
	}
	return State{
		Position: coord.ICRFToEclipticVec(s.Position),
		Velocity: coord.ICRFToEclipticVec(s.Velocity),
	}
}

// Geocentric returns the geometric (no light-time) geocentric position of
// body at tdbJD, in the requested frame.
func (e *Engine) Geocentric(body int, tdbJD float64, frame Frame) (State, error) {
	for _, k := range e.kernels {
		pos, err := k.GeocentricPosition(body, tdbJD)
		if err == nil {
			return e.rotate(State{Position: pos}, frame), nil
		}
	}
	return State{}, errtax.New(errtax.NoSegment, fmt.Sprintf("body=%d", body), fmt.Errorf("not covered by any loaded kernel"))
}

// Observe returns the astrometric (light-time corrected) geocentric
// position of body at tdbJD, in the requested frame.
func (e *Engine) Observe(body int, tdbJD float64, frame Frame) (State, error) {
	for _, k := range e.kernels {
		pos, err := k.Observe(body, tdbJD)
		if err == nil {
			return e.rotate(State{Position: pos}, frame), nil
		}
	}
	return State{}, errtax.New(errtax.NoSegment, fmt.Sprintf("body=%d", body), fmt.Errorf("not covered by any loaded kernel"))
}

// Apparent returns the apparent (light-time, deflection, and aberration
// corrected) geocentric position of body at tdbJD, along with Earth's
// barycentric velocity at that instant, in the requested frame.
func (e *Engine) Apparent(body int, tdbJD float64, frame Frame) (State, error) {
	for _, k := range e.kernels {
		pos, err := k.Apparent(body, tdbJD)
		if err != nil {
			continue
		}
		vel, err := k.EarthVelocity(tdbJD)
		if err != nil {
			return State{}, errtax.New(errtax.NoSegment, fmt.Sprintf("body=%d", spk.Earth), err)
		}
		return e.rotate(State{Position: pos, Velocity: vel}, frame), nil
	}
	return State{}, errtax.New(errtax.NoSegment, fmt.Sprintf("body=%d", body), fmt.Errorf("not covered by any loaded kernel"))
}

// EOP returns the Engine's loaded Earth-orientation table, or nil if none
// was configured.
func (e *Engine) EOP() *timescale.EOPTable {
	return e.eop
}

// segEvalTotal sums the Chebyshev segment-evaluation counters across every
// loaded kernel, for BatchStats.SegEvals accounting.
func (e *Engine) segEvalTotal() uint64 {
	var total uint64
	for _, k := range e.kernels {
		total += k.SegEvalCount()
	}
	return total
}

// DefaultFrame returns the Frame configured via Config.DefaultFrame,
// letting callers that don't care about frame selection use
// eng.Apparent(body, tdbJD, eng.DefaultFrame()).
func (e *Engine) DefaultFrame() Frame {
	return e.cfg.DefaultFrame
}

// --- Batch: per-call memoized queries --------------------------------

// queryKind distinguishes the three query shapes memoized by a Batch.
type queryKind int

const (
	kindGeocentric queryKind = iota
	kindObserve
	kindApparent
)

type batchKey struct {
	body  int
	tdbJD float64
	frame Frame
	kind  queryKind
}

// BatchStats reports memoization effectiveness for a Batch's lifetime.
// SegEvals counts the Chebyshev segment evaluations performed by every
// Misses query (Hits never reach the kernel, so they contribute zero):
// comparing it against a fresh, unbatched chain resolution for the same
// queries verifies that a cache hit returns bit-identical results without
// re-evaluating any segment.
type BatchStats struct {
	Hits     int
	Misses   int
	SegEvals uint64
}

// Batch is a scratch cache over one Engine, memoizing repeated queries at
// identical (body, epoch, frame) triples within a single batch of work
// (e.g. an event search that samples the same bodies over and over).
//
// A Batch is NOT safe for concurrent use: each goroutine that wants
// memoization must obtain its own Batch from the shared, read-only Engine.
type Batch struct {
	eng   *Engine
	cache map[batchKey]State
	stats BatchStats
}

// NewBatch allocates a fresh per-call scratch cache over e.
func (e *Engine) NewBatch() *Batch {
	return &Batch{eng: e, cache: make(map[batchKey]State)}
}

func (b *Batch) lookup(key batchKey, compute func() (State, error)) (State, error) {
	if s, ok := b.cache[key]; ok {
		b.stats.Hits++
		return s, nil
	}
	b.stats.Misses++
	before := b.eng.segEvalTotal()
	s, err := compute()
	b.stats.SegEvals += b.eng.segEvalTotal() - before
	if err != nil {
		return State{}, err
	}
	b.cache[key] = s
	return s, nil
}

// Geocentric is Engine.Geocentric, memoized within this batch.
func (b *Batch) Geocentric(body int, tdbJD float64, frame Frame) (State, error) {
	key := batchKey{body, tdbJD, frame, kindGeocentric}
	return b.lookup(key, func() (State, error) { return b.eng.Geocentric(body, tdbJD, frame) })
}

// Observe is Engine.Observe, memoized within this batch.
func (b *Batch) Observe(body int, tdbJD float64, frame Frame) (State, error) {
	key := batchKey{body, tdbJD, frame, kindObserve}
	return b.lookup(key, func() (State, error) { return b.eng.Observe(body, tdbJD, frame) })
}

// Apparent is Engine.Apparent, memoized within this batch.
func (b *Batch) Apparent(body int, tdbJD float64, frame Frame) (State, error) {
	key := batchKey{body, tdbJD, frame, kindApparent}
	return b.lookup(key, func() (State, error) { return b.eng.Apparent(body, tdbJD, frame) })
}

// Stats returns the current hit/miss counts for this batch.
func (b *Batch) Stats() BatchStats {
	return b.stats
}

// --- Process-wide lazy singleton -------------------------------------

var (
	globalMu     sync.Mutex
	globalCfg    Config
	globalOnce   sync.Once
	globalEngine *Engine
	globalErr    error
)

// SetGlobalConfig records the configuration Default will use to build the
// process-wide Engine the first time it is requested. Call before the
// first Default() call; later calls have no effect once Default has run.
func SetGlobalConfig(cfg Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = cfg
}

// Default lazily builds (once) and returns the process-wide Engine using
// whatever Config was last passed to SetGlobalConfig.
func Default() (*Engine, error) {
	globalOnce.Do(func() {
		globalMu.Lock()
		cfg := globalCfg
		globalMu.Unlock()
		globalEngine, globalErr = New(cfg)
	})
	return globalEngine, globalErr
}
