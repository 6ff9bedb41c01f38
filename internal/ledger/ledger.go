// Public domain.

// Package ledger records the observing progress of a survey.
//
// A Ledger holds, for every tile of a catalog, a fixed number of exposure
// slots filled forward in time order as exposures complete.  Completion of
// a tile is the sum of the signal-to-noise-squared fractions of its
// exposures, clamped at 1 by the aggregate views.
//
// A Ledger is not safe for concurrent use.  It is meant to be owned by a
// single scheduler loop; a host needing shared access must provide its own
// locking.
package ledger

import (
	"fmt"
	"math"

	"github.com/soniakeys/surveyledger/internal/tiles"
)

// DefaultMaxExposures is the number of exposure slots per tile used when a
// Config does not say otherwise.
const DefaultMaxExposures = 32

// Config holds construction parameters for a new ledger.
type Config struct {
	// MaxExposures is the number of exposure slots of every tile.
	MaxExposures int
}

// MaxSlots bounds the total number of exposure slots of a ledger, the
// number of tiles times MaxExposures.
const MaxSlots = 1 << 24

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{MaxExposures: DefaultMaxExposures}
}

// Exposure is one exposure slot.  An unoccupied slot is the zero value.
type Exposure struct {
	MJD      float64 // start time
	Exptime  float64 // seconds
	SNR2Frac float64 // contribution to tile completion
	Airmass  float64
	Seeing   float64
}

func (e Exposure) finite() bool {
	for _, v := range [...]float64{e.MJD, e.Exptime, e.SNR2Frac, e.Airmass, e.Seeing} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Status is the completion state of a tile.
type Status int

// Tile states.  Transitions only move forward.
const (
	Unobserved Status = iota // no exposures
	Partial                  // exposures with summed SNR2Frac < 1
	Complete                 // summed SNR2Frac >= 1
)

func (s Status) String() string {
	switch s {
	case Unobserved:
		return "unobserved"
	case Partial:
		return "partial"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Row is a copy of the record of one tile: catalog data plus its exposure
// slots.  Modifying a Row has no effect on the ledger.
type Row struct {
	tiles.Tile
	Status Status
	NExp   int        // occupied slots
	Slots  []Exposure // all MaxExposures slots, occupied ones first
}

// Exposures returns the occupied slots.
func (r Row) Exposures() []Exposure { return r.Slots[:r.NExp] }

// Completion returns the summed SNR2Frac of the tile clamped to 1.
func (r Row) Completion() float64 { return math.Min(1, sumSNR2(r.Exposures())) }

// Ledger is the progress record of a survey.
type Ledger struct {
	version int
	maxExp  int
	cat     *tiles.Catalog
	status  []Status
	nexp    []int
	// flat representation of the per tile slot arrays,
	// tile row i occupies slots[i*maxExp : (i+1)*maxExp]
	slots             []Exposure
	firstMJD, lastMJD float64
}

// New creates a ledger with no exposures over catalog cat.
func New(cat *tiles.Catalog, cfg Config) (*Ledger, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: nil catalog", ErrMalformed)
	}
	n := cat.Len()
	ns, err := SlotCount(n, cfg.MaxExposures)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		version: Version,
		maxExp:  cfg.MaxExposures,
		cat:     cat,
		status:  make([]Status, n),
		nexp:    make([]int, n),
		slots:   make([]Exposure, ns),
	}, nil
}

// SlotCount returns the length of the slot array of a ledger of nTiles
// tiles with maxExp slots each.  It fails with ErrMalformed if maxExp < 1
// or the count would exceed MaxSlots.
func SlotCount(nTiles, maxExp int) (int, error) {
	if maxExp < 1 {
		return 0, fmt.Errorf("%w: max exposures %d < 1", ErrMalformed, maxExp)
	}
	if nTiles < 0 || maxExp > MaxSlots/max(nTiles, 1) {
		return 0, fmt.Errorf("%w: %d tiles of %d exposures exceed %d slots",
			ErrMalformed, nTiles, maxExp, MaxSlots)
	}
	return nTiles * maxExp, nil
}

// Catalog returns the tile catalog of the ledger.
func (l *Ledger) Catalog() *tiles.Catalog { return l.cat }

// NumTiles returns the number of tiles in the catalog.
func (l *Ledger) NumTiles() int { return l.cat.Len() }

// MaxExposures returns the number of exposure slots per tile.
func (l *Ledger) MaxExposures() int { return l.maxExp }

// FirstMJD returns the earliest exposure MJD over all tiles, or 0 if there
// are no exposures.
func (l *Ledger) FirstMJD() float64 { return l.firstMJD }

// LastMJD returns the latest exposure MJD over all tiles, or 0 if there
// are no exposures.
func (l *Ledger) LastMJD() float64 { return l.lastMJD }

// tileSlots returns the slot array of tile row i.
func (l *Ledger) tileSlots(i int) []Exposure {
	return l.slots[i*l.maxExp : (i+1)*l.maxExp]
}

// exposures returns the occupied slots of tile row i.
func (l *Ledger) exposures(i int) []Exposure {
	return l.slots[i*l.maxExp : i*l.maxExp+l.nexp[i]]
}

// completion returns the unclamped summed SNR2Frac of tile row i.
func (l *Ledger) completion(i int) float64 { return sumSNR2(l.exposures(i)) }

func sumSNR2(es []Exposure) (s float64) {
	for _, e := range es {
		s += e.SNR2Frac
	}
	return
}

func statusOf(n int, snr2 float64) Status {
	switch {
	case n == 0:
		return Unobserved
	case snr2 >= 1:
		return Complete
	}
	return Partial
}

func (l *Ledger) row(i int) Row {
	return Row{
		Tile:   l.cat.At(i),
		Status: l.status[i],
		NExp:   l.nexp[i],
		Slots:  append([]Exposure{}, l.tileSlots(i)...),
	}
}

// GetTile returns a copy of the record of tile id.
func (l *Ledger) GetTile(id int) (Row, error) {
	i, err := l.cat.Index(id)
	if err != nil {
		return Row{}, err
	}
	return l.row(i), nil
}

// AddExposure records an exposure of tile id in its next free slot.
//
// The exposure must start strictly after the last recorded exposure of the
// tile; for a tile with no exposures the MJD must be positive.  On any
// error the ledger is unchanged.
func (l *Ledger) AddExposure(id int, mjd, exptime, snr2frac, airmass, seeing float64) error {
	if !(Exposure{mjd, exptime, snr2frac, airmass, seeing}).finite() {
		return fmt.Errorf("%w: tile %d exposure values must be finite",
			ErrMalformed, id)
	}
	i, err := l.cat.Index(id)
	if err != nil {
		return err
	}
	n := l.nexp[i]
	if n == l.maxExp {
		return fmt.Errorf("%w: tile %d already has %d exposures",
			ErrCapacity, id, n)
	}
	var last float64
	if n > 0 {
		last = l.tileSlots(i)[n-1].MJD
	}
	if !(mjd > last) {
		return fmt.Errorf("%w: tile %d exposure at MJD %v not after %v",
			ErrOrdering, id, mjd, last)
	}
	l.tileSlots(i)[n] = Exposure{
		MJD:      mjd,
		Exptime:  exptime,
		SNR2Frac: snr2frac,
		Airmass:  airmass,
		Seeing:   seeing,
	}
	l.nexp[i]++
	l.status[i] = statusOf(l.nexp[i], l.completion(i))
	l.noteMJD(mjd)
	return nil
}
