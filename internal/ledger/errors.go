// Public domain.

package ledger

import (
	"errors"

	"github.com/soniakeys/surveyledger/internal/tiles"
)

// Errors returned by ledger operations are wrapped with context.  Test
// for them with errors.Is.
var (
	// ErrNotFound: unknown tile ID.
	ErrNotFound = tiles.ErrNotFound
	// ErrMalformed: invalid catalog, table, or non-finite input values.
	ErrMalformed = tiles.ErrMalformed
	// ErrOrdering: exposure MJD not after the last MJD of the tile.
	ErrOrdering = errors.New("exposure out of time order")
	// ErrCapacity: tile already has MaxExposures exposures.
	ErrCapacity = errors.New("tile exposure capacity exceeded")
	// ErrRange: invalid MJD range.
	ErrRange = errors.New("invalid MJD range")
	// ErrVersion: stored format version differs from Version.
	ErrVersion = errors.New("progress format version mismatch")
)
