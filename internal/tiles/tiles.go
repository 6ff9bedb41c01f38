// Public domain.

// Package tiles defines the static survey footprint used by the progress
// ledger.
//
// A catalog is a list of tiles, fixed sky pointings each assigned to a pass
// and an observing program.  Pass numbers are arbitrary non-negative
// integers and need not be dense.  A catalog is validated once when it is
// constructed and is never modified after that.
package tiles

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/unit"
)

// ErrMalformed is returned (wrapped) when tile data fails validation.
var ErrMalformed = errors.New("malformed tile catalog")

// ErrNotFound is returned (wrapped) for a tile ID not in the catalog.
var ErrNotFound = errors.New("tile not found")

// Declination limits, degrees, exclusive.
const (
	MinDec = -80.
	MaxDec = 80.
)

// Program identifies the observing conditions a pass is designed for.
type Program int

// Programs in canonical order.
const (
	Dark Program = iota
	Gray
	Bright
)

var programNames = [...]string{"DARK", "GRAY", "BRIGHT"}

func (p Program) String() string {
	if p < 0 || int(p) >= len(programNames) {
		return fmt.Sprintf("Program(%d)", int(p))
	}
	return programNames[p]
}

// ParseProgram parses a canonical program name.
func ParseProgram(s string) (Program, error) {
	for px, n := range programNames {
		if s == n {
			return Program(px), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown program %q", ErrMalformed, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Program) MarshalText() ([]byte, error) {
	if p < 0 || int(p) >= len(programNames) {
		return nil, fmt.Errorf("%w: unknown program %d", ErrMalformed, int(p))
	}
	return []byte(programNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Program) UnmarshalText(b []byte) (err error) {
	*p, err = ParseProgram(string(b))
	return
}

// Tile is one catalog entry.  RA and Dec are in degrees.
type Tile struct {
	ID      int     `toml:"id"`
	Pass    int     `toml:"pass"`
	RA      float64 `toml:"ra"`
	Dec     float64 `toml:"dec"`
	Program Program `toml:"program"`
}

// Position returns the tile center as typed angles.
func (t Tile) Position() (unit.RA, unit.Angle) {
	return unit.RAFromDeg(t.RA), unit.AngleFromDeg(t.Dec)
}

func (t Tile) validate() error {
	switch {
	case !(t.RA >= 0 && t.RA < 360):
		return fmt.Errorf("%w: tile %d ra %g out of range [0, 360)",
			ErrMalformed, t.ID, t.RA)
	case !(t.Dec > MinDec && t.Dec < MaxDec):
		return fmt.Errorf("%w: tile %d dec %g out of range (%g, %g)",
			ErrMalformed, t.ID, t.Dec, MinDec, MaxDec)
	case t.Pass < 0:
		return fmt.Errorf("%w: tile %d negative pass %d",
			ErrMalformed, t.ID, t.Pass)
	case t.Program < 0 || int(t.Program) >= len(programNames):
		return fmt.Errorf("%w: tile %d unknown program %d",
			ErrMalformed, t.ID, int(t.Program))
	}
	return nil
}

// Catalog is an immutable, validated list of tiles ordered by increasing ID.
type Catalog struct {
	tiles       []Tile
	passes      []int
	passCount   map[int]int
	passProgram map[int]Program
	// unit vectors of tile centers, parallel to tiles
	uv []coord.Cart
}

// New validates tiles and builds a catalog from them.
//
// The argument is copied and sorted by ID.  Duplicate IDs, positions
// outside the declared ranges, negative passes, and a pass assigned to more
// than one program are all rejected with an error wrapping ErrMalformed.
func New(tiles []Tile) (*Catalog, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("%w: no tiles", ErrMalformed)
	}
	c := &Catalog{
		tiles:       append([]Tile{}, tiles...),
		passCount:   make(map[int]int),
		passProgram: make(map[int]Program),
	}
	sort.Slice(c.tiles, func(i, j int) bool { return c.tiles[i].ID < c.tiles[j].ID })
	c.uv = make([]coord.Cart, len(c.tiles))
	for i, t := range c.tiles {
		if err := t.validate(); err != nil {
			return nil, err
		}
		if i > 0 && c.tiles[i-1].ID == t.ID {
			return nil, fmt.Errorf("%w: duplicate tile ID %d", ErrMalformed, t.ID)
		}
		if p, ok := c.passProgram[t.Pass]; !ok {
			c.passProgram[t.Pass] = t.Program
			c.passes = append(c.passes, t.Pass)
		} else if p != t.Program {
			return nil, fmt.Errorf("%w: pass %d in programs %s and %s",
				ErrMalformed, t.Pass, p, t.Program)
		}
		c.passCount[t.Pass]++
		sra, cra := math.Sincos(t.RA * math.Pi / 180)
		sdec, cdec := math.Sincos(t.Dec * math.Pi / 180)
		c.uv[i] = coord.Cart{X: cra * cdec, Y: sra * cdec, Z: sdec}
	}
	sort.Ints(c.passes)
	return c, nil
}

// Len returns the number of tiles.
func (c *Catalog) Len() int { return len(c.tiles) }

// At returns the tile at row index i, in order of increasing ID.
func (c *Catalog) At(i int) Tile { return c.tiles[i] }

// Tiles returns a copy of all tiles in row order.
func (c *Catalog) Tiles() []Tile { return append([]Tile{}, c.tiles...) }

// Index maps a tile ID to its row index.
func (c *Catalog) Index(id int) (int, error) {
	i := sort.Search(len(c.tiles), func(i int) bool { return c.tiles[i].ID >= id })
	if i == len(c.tiles) || c.tiles[i].ID != id {
		return 0, fmt.Errorf("%w: invalid tile ID %d", ErrNotFound, id)
	}
	return i, nil
}

// Tile returns the tile with the given ID.
func (c *Catalog) Tile(id int) (Tile, error) {
	i, err := c.Index(id)
	if err != nil {
		return Tile{}, err
	}
	return c.tiles[i], nil
}

// Passes returns the distinct pass numbers in increasing order.
func (c *Catalog) Passes() []int { return append([]int{}, c.passes...) }

// PassCount returns the number of tiles in pass p.
func (c *Catalog) PassCount(p int) int { return c.passCount[p] }

// PassProgram returns the program of pass p.  ok is false if the catalog
// has no tiles in pass p.
func (c *Catalog) PassProgram(p int) (prog Program, ok bool) {
	prog, ok = c.passProgram[p]
	return
}

// ProgramPasses returns the passes of a program, in increasing order.
// A program with no tiles has no passes.
func (c *Catalog) ProgramPasses(prog Program) []int {
	var ps []int
	for _, p := range c.passes {
		if c.passProgram[p] == prog {
			ps = append(ps, p)
		}
	}
	return ps
}

// Neighbors returns the other tiles whose centers lie within an angular
// radius of the center of tile id, in row order.
func (c *Catalog) Neighbors(id int, radius unit.Angle) ([]Tile, error) {
	i, err := c.Index(id)
	if err != nil {
		return nil, err
	}
	cr := math.Cos(radius.Rad())
	var nb []Tile
	for j := range c.tiles {
		if j != i && c.uv[i].Dot(&c.uv[j]) >= cr {
			nb = append(nb, c.tiles[j])
		}
	}
	return nb, nil
}
