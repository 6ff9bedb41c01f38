// Public domain.

package tiles

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// catalogFile is the TOML layout of a tiles file, one [[tile]] table per
// tile:
//
//	[[tile]]
//	id = 1
//	pass = 0
//	ra = 3.82
//	dec = -19.9
//	program = "DARK"
type catalogFile struct {
	Tiles []Tile `toml:"tile"`
}

// ReadFile reads and validates a TOML tiles file.  Unknown keys are an
// error.
func ReadFile(fn string) (*Catalog, error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	var cf catalogFile
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, fn, err)
	}
	c, err := New(cf.Tiles)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return c, nil
}

// WriteFile writes c as a TOML tiles file, replacing any existing file.
func WriteFile(fn string, c *Catalog) error {
	b, err := toml.Marshal(catalogFile{Tiles: c.tiles})
	if err != nil {
		return err
	}
	return os.WriteFile(fn, b, 0644)
}
