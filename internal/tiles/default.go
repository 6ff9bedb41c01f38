// Public domain.

package tiles

import (
	"math"

	"golang.org/x/exp/rand"
)

// Parameters of the built-in footprint.
const (
	NumPasses      = 8
	defaultSpacing = 8.   // degrees between rings and between tiles on a ring
	defaultDecMin  = -20. // southern edge of the first ring, degrees
	defaultDecMax  = 78.  // no ring starts at or north of this
	defaultJitter  = .5   // full width of the random offset, degrees
	defaultSeed    = 3
)

// passPrograms assigns programs to the built-in passes.
var passPrograms = [NumPasses]Program{Dark, Dark, Dark, Dark, Gray, Bright, Bright, Bright}

// Default returns the built-in survey footprint.
//
// Each of the NumPasses passes covers the sky north of defaultDecMin with
// rings of tiles.  Passes are offset from each other by a fraction of the
// tile spacing and every center is displaced by a small random amount.
// The generator is seeded with a constant so the footprint, including tile
// IDs, is the same on every call.
func Default() *Catalog {
	rnd := rand.New(&rand.PCGSource{})
	rnd.Seed(defaultSeed)
	jitter := func() float64 { return (rnd.Float64() - .5) * defaultJitter }

	var ts []Tile
	id := 1
	for pass := 0; pass < NumPasses; pass++ {
		off := float64(pass) / NumPasses
		for dec := defaultDecMin + off*defaultSpacing; dec < defaultDecMax; dec += defaultSpacing {
			n := int(math.Ceil(360 * math.Cos(dec*math.Pi/180) / defaultSpacing))
			for k := 0; k < n; k++ {
				ra := math.Mod((float64(k)+off)*360/float64(n)+jitter()+360, 360)
				ts = append(ts, Tile{
					ID:      id,
					Pass:    pass,
					RA:      ra,
					Dec:     dec + jitter(),
					Program: passPrograms[pass],
				})
				id++
			}
		}
	}
	c, err := New(ts)
	if err != nil {
		panic(err) // constants above guarantee a valid catalog
	}
	return c
}
