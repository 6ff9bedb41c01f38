// Public domain.

package ledger

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"

	"github.com/soniakeys/surveyledger/internal/tiles"
)

// Version of the ledger table format.  Tables and files of any other
// version are rejected.
const Version = 1

// magic identifies a ledger file.  It is the first value in the file.
const magic = "surveyledger progress"

// Table is the complete ledger state in a flat form suitable for encoding.
// Tile row i owns Slots[i*MaxExposures : (i+1)*MaxExposures].
type Table struct {
	Version      int
	MaxExposures int
	FirstMJD     float64
	LastMJD      float64
	Tiles        []tiles.Tile
	Status       []Status
	NExp         []int
	Slots        []Exposure
}

// fileHeader precedes the Table in a ledger file so the version can be
// checked before decoding the rest.
type fileHeader struct {
	Magic   string
	Version int
}

// Table returns a copy of the ledger state.
func (l *Ledger) Table() *Table {
	return &Table{
		Version:      l.version,
		MaxExposures: l.maxExp,
		FirstMJD:     l.firstMJD,
		LastMJD:      l.lastMJD,
		Tiles:        l.cat.Tiles(),
		Status:       append([]Status{}, l.status...),
		NExp:         append([]int{}, l.nexp...),
		Slots:        append([]Exposure{}, l.slots...),
	}
}

// FromTable creates a ledger from a table.
//
// Each occupied slot is checked as AddExposure checks an exposure, and the
// table is copied; the caller keeps ownership of t.  Status, FirstMJD and
// LastMJD are derived from the exposure slots rather than trusted.
func FromTable(t *Table) (*Ledger, error) {
	if t.Version != Version {
		return nil, fmt.Errorf("%w: table version %d, want %d",
			ErrVersion, t.Version, Version)
	}
	n := len(t.Tiles)
	ns, err := SlotCount(n, t.MaxExposures)
	if err != nil {
		return nil, err
	}
	if len(t.Status) != n || len(t.NExp) != n || len(t.Slots) != ns {
		return nil, fmt.Errorf("%w: inconsistent table lengths", ErrMalformed)
	}
	// rows are parallel arrays so the catalog order must already be by ID.
	for i := 1; i < n; i++ {
		if t.Tiles[i].ID <= t.Tiles[i-1].ID {
			return nil, fmt.Errorf("%w: tile IDs not increasing at row %d",
				ErrMalformed, i)
		}
	}
	cat, err := tiles.New(t.Tiles)
	if err != nil {
		return nil, err
	}
	l, err := New(cat, Config{MaxExposures: t.MaxExposures})
	if err != nil {
		return nil, err
	}
	copy(l.slots, t.Slots)
	copy(l.nexp, t.NExp)
	for i, ne := range l.nexp {
		if ne < 0 || ne > l.maxExp {
			return nil, fmt.Errorf("%w: tile %d has %d exposures, max %d",
				ErrMalformed, cat.At(i).ID, ne, l.maxExp)
		}
		last := 0.
		for k, e := range l.tileSlots(i) {
			switch {
			case k >= ne:
				if e != (Exposure{}) {
					return nil, fmt.Errorf("%w: tile %d slot %d unoccupied but not zero",
						ErrMalformed, cat.At(i).ID, k)
				}
			case !e.finite():
				return nil, fmt.Errorf("%w: tile %d slot %d values not finite",
					ErrMalformed, cat.At(i).ID, k)
			case !(e.MJD > last):
				return nil, fmt.Errorf("%w: tile %d slot %d", ErrOrdering, cat.At(i).ID, k)
			default:
				last = e.MJD
				l.noteMJD(e.MJD)
			}
		}
		l.status[i] = statusOf(ne, l.completion(i))
	}
	return l, nil
}

func (l *Ledger) noteMJD(mjd float64) {
	if l.firstMJD == 0 || mjd < l.firstMJD {
		l.firstMJD = mjd
	}
	if mjd > l.lastMJD {
		l.lastMJD = mjd
	}
}

// Save writes the ledger to file fn, replacing any existing file.
//
// A failed Save leaves the ledger unchanged but may leave a partial file.
// Callers wanting an atomic replace should save to a temporary name and
// rename.
func (l *Ledger) Save(fn string) error {
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	enc := gob.NewEncoder(f)
	if err = enc.Encode(fileHeader{magic, l.version}); err == nil {
		err = enc.Encode(l.Table())
	}
	if cErr := f.Close(); err == nil {
		err = cErr
	}
	return err
}

// Load reads a ledger written by Save.
//
// A file of another format version fails with ErrVersion; no conversion is
// attempted.
func Load(fn string) (*Ledger, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := gob.NewDecoder(f)
	var h fileHeader
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, fn, err)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("%w: %s is not a progress file", ErrMalformed, fn)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %s has version %d, want %d",
			ErrVersion, fn, h.Version, Version)
	}
	var t Table
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, fn, err)
	}
	l, err := FromTable(&t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return l, nil
}

// CopyRange returns a new ledger over the same catalog holding only the
// exposures with lo <= MJD < hi.  Use infinite bounds for an open range.
//
// Exposures keep their relative order and are packed to the front of the
// slot array of their tile.  It is an error if lo > hi.
func (l *Ledger) CopyRange(lo, hi float64) (*Ledger, error) {
	if err := checkRange(lo, hi); err != nil {
		return nil, err
	}
	c := &Ledger{
		version: l.version,
		maxExp:  l.maxExp,
		cat:     l.cat,
		status:  make([]Status, len(l.status)),
		nexp:    make([]int, len(l.nexp)),
		slots:   make([]Exposure, len(l.slots)),
	}
	for i := range l.nexp {
		dst := c.tileSlots(i)
		for _, e := range l.exposures(i) {
			if e.MJD >= lo && e.MJD < hi {
				dst[c.nexp[i]] = e
				c.nexp[i]++
				c.noteMJD(e.MJD)
			}
		}
		c.status[i] = statusOf(c.nexp[i], c.completion(i))
	}
	return c, nil
}

// Copy returns an independent copy of the ledger.
func (l *Ledger) Copy() *Ledger {
	c, _ := l.CopyRange(math.Inf(-1), math.Inf(1))
	return c
}
