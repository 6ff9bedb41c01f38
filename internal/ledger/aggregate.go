// Public domain.

package ledger

import (
	"fmt"
	"math"
	"sort"

	"github.com/soniakeys/unit"
)

// Completed returns the completion of the survey, or of selected passes.
//
// With includePartial each tile contributes its summed SNR2Frac clamped to
// 1.  Otherwise only complete tiles count, 1 each.  If passes are given,
// only tiles in those passes are counted; pass numbers not in the catalog
// match nothing.  With no passes every tile is counted.
func (l *Ledger) Completed(includePartial bool, passes ...int) float64 {
	var sel map[int]bool
	if len(passes) > 0 {
		sel = make(map[int]bool, len(passes))
		for _, p := range passes {
			sel[p] = true
		}
	}
	var sum float64
	for i := range l.nexp {
		if sel != nil && !sel[l.cat.At(i).Pass] {
			continue
		}
		c := math.Min(1, l.completion(i))
		switch {
		case includePartial:
			sum += c
		case c == 1:
			sum++
		}
	}
	return sum
}

// GetObserved returns copies of the records of observed tiles in row order.
//
// With includePartial, a tile is observed if it has at least one exposure,
// otherwise only complete tiles are returned.
func (l *Ledger) GetObserved(includePartial bool) []Row {
	var rs []Row
	for i, n := range l.nexp {
		if n == 0 || !includePartial && l.completion(i) < 1 {
			continue
		}
		rs = append(rs, l.row(i))
	}
	return rs
}

// Kind selects the tiles of a summary.
type Kind int

// Summary kinds.
const (
	Observed  Kind = iota // tiles with at least one exposure
	Completed             // complete tiles
	All                   // every tile
)

var kindNames = [...]string{"observed", "completed", "all"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses "observed", "completed", or "all".
func ParseKind(s string) (Kind, error) {
	for kx, n := range kindNames {
		if s == n {
			return Kind(kx), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown summary kind %q", ErrMalformed, s)
}

// SummaryRow summarizes the exposures of one tile.  Fields derived from
// exposures are zero for a tile with no exposures.
type SummaryRow struct {
	TileID int
	Pass   int
	NExp   int
	MJDMin float64
	MJDMax float64
	// total exposure time
	Exptime unit.Time
	// summed, not clamped
	SNR2Frac float64
	// Airmass and Seeing are exposure time weighted means, or plain means
	// if the total exposure time is zero.
	Airmass float64
	Seeing  float64
}

// Summary returns one row per selected tile, in row order.
func (l *Ledger) Summary(k Kind) ([]SummaryRow, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("%w: unknown summary kind %d", ErrMalformed, int(k))
	}
	var s []SummaryRow
	for i, n := range l.nexp {
		switch {
		case k == Observed && n == 0:
			continue
		case k == Completed && l.completion(i) < 1:
			continue
		}
		s = append(s, l.summarize(i))
	}
	return s, nil
}

func (l *Ledger) summarize(i int) SummaryRow {
	t := l.cat.At(i)
	r := SummaryRow{TileID: t.ID, Pass: t.Pass, NExp: l.nexp[i]}
	es := l.exposures(i)
	if len(es) == 0 {
		return r
	}
	// time order makes the first and last slots the extremes
	r.MJDMin = es[0].MJD
	r.MJDMax = es[len(es)-1].MJD
	var exptime, wAir, wSee, air, see float64
	for _, e := range es {
		exptime += e.Exptime
		r.SNR2Frac += e.SNR2Frac
		wAir += e.Exptime * e.Airmass
		wSee += e.Exptime * e.Seeing
		air += e.Airmass
		see += e.Seeing
	}
	r.Exptime = unit.Time(exptime)
	if exptime > 0 {
		r.Airmass = wAir / exptime
		r.Seeing = wSee / exptime
	} else {
		r.Airmass = air / float64(len(es))
		r.Seeing = see / float64(len(es))
	}
	return r
}

// TileExposure is an exposure together with the tile it was taken of.
type TileExposure struct {
	TileID int
	Pass   int
	Exposure
}

// Exposures returns all exposures with lo <= MJD < hi, ordered by MJD.
// Exposures of different tiles with the same MJD are in tile row order.
// Use infinite bounds for an open range.
func (l *Ledger) Exposures(lo, hi float64) ([]TileExposure, error) {
	if err := checkRange(lo, hi); err != nil {
		return nil, err
	}
	var te []TileExposure
	for i := range l.nexp {
		t := l.cat.At(i)
		for _, e := range l.exposures(i) {
			if e.MJD >= lo && e.MJD < hi {
				te = append(te, TileExposure{t.ID, t.Pass, e})
			}
		}
	}
	sort.SliceStable(te, func(i, j int) bool { return te[i].MJD < te[j].MJD })
	return te, nil
}

func checkRange(lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
		return fmt.Errorf("%w: [%v, %v)", ErrRange, lo, hi)
	}
	return nil
}
