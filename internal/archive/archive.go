// Public domain.

// Package archive exports a progress ledger to a SQLite database and
// imports it back.
//
// The database holds one row per tile and one row per occupied exposure
// slot, so progress can be inspected with ordinary SQL tools.  The ledger
// format version is stored as the database user_version and is checked on
// import exactly as ledger.Load checks it.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/soniakeys/surveyledger/internal/ledger"
	"github.com/soniakeys/surveyledger/internal/tiles"
)

const schema = `
CREATE TABLE meta (
    key   TEXT PRIMARY KEY,
    value REAL NOT NULL
);

CREATE TABLE tiles (
    row     INTEGER PRIMARY KEY,
    tile_id INTEGER NOT NULL UNIQUE,
    pass    INTEGER NOT NULL,
    ra      REAL NOT NULL,
    dec     REAL NOT NULL,
    program TEXT NOT NULL,
    status  INTEGER NOT NULL,
    nexp    INTEGER NOT NULL
);

CREATE TABLE exposures (
    tile_id  INTEGER NOT NULL REFERENCES tiles(tile_id),
    slot     INTEGER NOT NULL,
    mjd      REAL NOT NULL,
    exptime  REAL NOT NULL,
    snr2frac REAL NOT NULL,
    airmass  REAL NOT NULL,
    seeing   REAL NOT NULL,
    PRIMARY KEY (tile_id, slot)
);
`

func open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("archive: open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: open database: %w", err)
	}
	return db, nil
}

// Export writes l to a new SQLite database at path, replacing any existing
// file.
func Export(ctx context.Context, path string, l *ledger.Ledger) (err error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("archive: %w", err)
	}
	db, err := open(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := db.Close(); err == nil && cErr != nil {
			err = fmt.Errorf("archive: close database: %w", cErr)
		}
	}()

	t := l.Table()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("archive: create schema: %w", err)
	}
	// PRAGMA arguments cannot be bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", t.Version)); err != nil {
		return fmt.Errorf("archive: set version: %w", err)
	}
	for _, kv := range []struct {
		k string
		v float64
	}{
		{"version", float64(t.Version)},
		{"max_exposures", float64(t.MaxExposures)},
		{"first_mjd", t.FirstMJD},
		{"last_mjd", t.LastMJD},
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES (?, ?)`, kv.k, kv.v); err != nil {
			return fmt.Errorf("archive: insert meta %s: %w", kv.k, err)
		}
	}

	insTile, err := tx.PrepareContext(ctx, `INSERT INTO tiles
		(row, tile_id, pass, ra, dec, program, status, nexp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("archive: prepare tiles: %w", err)
	}
	defer insTile.Close()
	insExp, err := tx.PrepareContext(ctx, `INSERT INTO exposures
		(tile_id, slot, mjd, exptime, snr2frac, airmass, seeing)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("archive: prepare exposures: %w", err)
	}
	defer insExp.Close()

	for i, tl := range t.Tiles {
		if _, err := insTile.ExecContext(ctx, i, tl.ID, tl.Pass, tl.RA, tl.Dec,
			tl.Program.String(), int(t.Status[i]), t.NExp[i]); err != nil {
			return fmt.Errorf("archive: insert tile %d: %w", tl.ID, err)
		}
		for k, e := range t.Slots[i*t.MaxExposures : i*t.MaxExposures+t.NExp[i]] {
			if _, err := insExp.ExecContext(ctx, tl.ID, k, e.MJD, e.Exptime,
				e.SNR2Frac, e.Airmass, e.Seeing); err != nil {
				return fmt.Errorf("archive: insert exposure %d/%d: %w", tl.ID, k, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive: commit: %w", err)
	}
	return nil
}

// Import reads a ledger from a SQLite database written by Export.
//
// A database of another format version fails with ledger.ErrVersion.
func Import(ctx context.Context, path string) (*ledger.Ledger, error) {
	// sql.Open would create a missing file
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	db, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var t ledger.Table
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&t.Version); err != nil {
		return nil, fmt.Errorf("archive: read version: %w", err)
	}
	if t.Version != ledger.Version {
		return nil, fmt.Errorf("%w: %s has version %d, want %d",
			ledger.ErrVersion, path, t.Version, ledger.Version)
	}
	var maxExp float64
	if err := db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'max_exposures'`).Scan(&maxExp); err != nil {
		return nil, fmt.Errorf("%w: %s: max_exposures: %v", ledger.ErrMalformed, path, err)
	}
	if !(maxExp >= 1 && maxExp <= ledger.MaxSlots) || maxExp != math.Trunc(maxExp) {
		return nil, fmt.Errorf("%w: %s: max_exposures %g", ledger.ErrMalformed, path, maxExp)
	}
	t.MaxExposures = int(maxExp)

	rows, err := db.QueryContext(ctx, `SELECT tile_id, pass, ra, dec, program, status, nexp
		FROM tiles ORDER BY row`)
	if err != nil {
		return nil, fmt.Errorf("archive: query tiles: %w", err)
	}
	rowOf := map[int]int{}
	for rows.Next() {
		var tl tiles.Tile
		var prog string
		var status, nexp int
		if err := rows.Scan(&tl.ID, &tl.Pass, &tl.RA, &tl.Dec, &prog, &status, &nexp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("archive: scan tile: %w", err)
		}
		if tl.Program, err = tiles.ParseProgram(prog); err != nil {
			rows.Close()
			return nil, err
		}
		rowOf[tl.ID] = len(t.Tiles)
		t.Tiles = append(t.Tiles, tl)
		t.Status = append(t.Status, ledger.Status(status))
		t.NExp = append(t.NExp, nexp)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: query tiles: %w", err)
	}
	ns, err := ledger.SlotCount(len(t.Tiles), t.MaxExposures)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Slots = make([]ledger.Exposure, ns)

	rows, err = db.QueryContext(ctx, `SELECT tile_id, slot, mjd, exptime, snr2frac, airmass, seeing
		FROM exposures ORDER BY tile_id, slot`)
	if err != nil {
		return nil, fmt.Errorf("archive: query exposures: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, slot int
		var e ledger.Exposure
		if err := rows.Scan(&id, &slot, &e.MJD, &e.Exptime, &e.SNR2Frac, &e.Airmass, &e.Seeing); err != nil {
			return nil, fmt.Errorf("archive: scan exposure: %w", err)
		}
		r, ok := rowOf[id]
		if !ok || slot < 0 || slot >= t.MaxExposures {
			return nil, fmt.Errorf("%w: %s: exposure %d/%d has no slot",
				ledger.ErrMalformed, path, id, slot)
		}
		t.Slots[r*t.MaxExposures+slot] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: query exposures: %w", err)
	}
	l, err := ledger.FromTable(&t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}
