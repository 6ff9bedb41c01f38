// Public domain.

package prog

import (
	"fmt"
	"log"
	"strconv"

	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
	"github.com/spf13/cobra"

	"github.com/soniakeys/surveyledger/internal/archive"
	"github.com/soniakeys/surveyledger/internal/ledger"
	"github.com/soniakeys/surveyledger/internal/tiles"
)

func (a *app) initCmd() *cobra.Command {
	var force bool
	c := &cobra.Command{
		Use:   "init",
		Short: "Create an empty ledger over the tile catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := noClobber(a.cfg.LedgerFile, force); err != nil {
				return err
			}
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			l, err := ledger.New(cat, a.cfg.Ledger())
			if err != nil {
				return err
			}
			if err := save(l, a.cfg.LedgerFile); err != nil {
				return err
			}
			log.Printf("Initialized %d tiles in %d passes, %s",
				cat.Len(), len(cat.Passes()), a.cfg.LedgerFile)
			return nil
		},
	}
	c.Flags().BoolVarP(&force, "force", "f", false, "replace an existing ledger")
	return c
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <tile-id> <mjd|time> <exptime> <snr2frac> <airmass> <seeing>",
		Short: "Record an exposure of a tile",
		Long: `Add records one exposure of a tile.  Time is an MJD or an RFC 3339 time
and must be later than any exposure already recorded for the tile.
Exposure time is in seconds, seeing in arc seconds.`,
		Args: cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid tile ID %q", args[0])
			}
			mjd, err := parseMJD(args[1])
			if err != nil {
				return err
			}
			var v [4]float64
			for i, s := range args[2:] {
				if v[i], err = strconv.ParseFloat(s, 64); err != nil {
					return fmt.Errorf("invalid number %q", s)
				}
			}
			l, err := a.load()
			if err != nil {
				return err
			}
			if err := l.AddExposure(id, mjd, v[0], v[1], v[2], v[3]); err != nil {
				return err
			}
			if err := save(l, a.cfg.LedgerFile); err != nil {
				return err
			}
			r, _ := l.GetTile(id)
			fmt.Fprintf(cmd.OutOrStdout(), "tile %d night %s: %d exposures, %s, %.3f\n",
				id, a.nightOf(mjd), r.NExp, r.Status, r.Completion())
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	var passes []int
	c := &cobra.Command{
		Use:   "status",
		Short: "Show survey completion by pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.load()
			if err != nil {
				return err
			}
			cat := l.Catalog()
			show := passes
			if len(show) == 0 {
				show = cat.Passes()
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Pass Program  Tiles  Partial Complete")
			for _, p := range show {
				// a pass with no tiles shows as an empty row
				prog := "-"
				if pp, ok := cat.PassProgram(p); ok {
					prog = pp.String()
				}
				fmt.Fprintf(w, "%4d %-7s %6d %8.2f %8.0f\n", p, prog, cat.PassCount(p),
					l.Completed(true, p), l.Completed(false, p))
			}
			n := 0
			for _, p := range show {
				n += cat.PassCount(p)
			}
			fmt.Fprintf(w, "%-12s %6d %8.2f %8.0f\n", "Total", n,
				l.Completed(true, passes...), l.Completed(false, passes...))
			if l.LastMJD() > 0 {
				fmt.Fprintf(w, "Nights %s to %s\n", a.nightOf(l.FirstMJD()), a.nightOf(l.LastMJD()))
			}
			return nil
		},
	}
	c.Flags().IntSliceVarP(&passes, "pass", "p", nil, "passes to show (default all)")
	return c
}

// formats tile position columns
func position(t tiles.Tile) (ra, dec string) {
	r, d := t.Position()
	return fmt.Sprintf("%.1d", sexa.FmtRA(r)), fmt.Sprintf("%.0d", sexa.FmtAngle(d))
}

func (a *app) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "summary [observed|completed|all]",
		Short:     "Summarize exposures by tile",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"observed", "completed", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			k := ledger.Observed
			if len(args) == 1 {
				var err error
				if k, err = ledger.ParseKind(args[0]); err != nil {
					return err
				}
			}
			l, err := a.load()
			if err != nil {
				return err
			}
			s, err := l.Summary(k)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "  Tile Pass RA             Dec           NExp First      Last        Exptime SNR2Frac Airmass Seeing")
			cat := l.Catalog()
			for _, r := range s {
				t, _ := cat.Tile(r.TileID)
				ra, dec := position(t)
				fmt.Fprintf(w, "%6d %4d %-14s %-13s %4d %-10s %-10s %8.0f %8.3f %7.3f %6.2f\n",
					r.TileID, r.Pass, ra, dec, r.NExp, a.night(r.NExp, r.MJDMin),
					a.night(r.NExp, r.MJDMax), float64(r.Exptime), r.SNR2Frac,
					r.Airmass, r.Seeing)
			}
			return nil
		},
	}
}

// night formats the night of mjd, or a dash if there are no exposures.
func (a *app) night(nexp int, mjd float64) string {
	if nexp == 0 {
		return "-"
	}
	return a.nightOf(mjd)
}

func (a *app) tileCmd() *cobra.Command {
	var radius float64
	c := &cobra.Command{
		Use:   "tile <tile-id>",
		Short: "Show the exposures and neighbors of a tile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid tile ID %q", args[0])
			}
			l, err := a.load()
			if err != nil {
				return err
			}
			r, err := l.GetTile(id)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			ra, dec := position(r.Tile)
			fmt.Fprintf(w, "Tile %d pass %d %s  RA %s  Dec %s\n",
				r.ID, r.Pass, r.Program, ra, dec)
			fmt.Fprintf(w, "%s, %d of %d exposures, completion %.3f\n",
				r.Status, r.NExp, l.MaxExposures(), r.Completion())
			for _, e := range r.Exposures() {
				fmt.Fprintf(w, "  %12.5f %s %6.0f %6.3f %5.2f %5.2f\n", e.MJD,
					a.nightOf(e.MJD), e.Exptime, e.SNR2Frac, e.Airmass, e.Seeing)
			}
			nb, err := l.Catalog().Neighbors(id, unit.AngleFromDeg(radius))
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d neighbors within %g°\n", len(nb), radius)
			for _, t := range nb {
				n, _ := l.GetTile(t.ID)
				fmt.Fprintf(w, "  %6d pass %d %s %.3f\n", t.ID, t.Pass, n.Status, n.Completion())
			}
			return nil
		},
	}
	c.Flags().Float64VarP(&radius, "radius", "r", 3, "neighbor radius in degrees")
	return c
}

func (a *app) exposuresCmd() *cobra.Command {
	var from, to string
	c := &cobra.Command{
		Use:   "exposures",
		Short: "List exposures in time order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lo, hi, err := parseRange(from, to)
			if err != nil {
				return err
			}
			l, err := a.load()
			if err != nil {
				return err
			}
			te, err := l.Exposures(lo, hi)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, e := range te {
				fmt.Fprintf(w, "%12.5f %s %6d %4d %6.0f %6.3f %5.2f %5.2f\n", e.MJD,
					a.nightOf(e.MJD), e.TileID, e.Pass, e.Exptime, e.SNR2Frac,
					e.Airmass, e.Seeing)
			}
			return nil
		},
	}
	c.Flags().StringVar(&from, "from", "", "earliest time, MJD or RFC 3339, inclusive")
	c.Flags().StringVar(&to, "to", "", "latest time, MJD or RFC 3339, exclusive")
	return c
}

func (a *app) copyCmd() *cobra.Command {
	var from, to string
	var force bool
	c := &cobra.Command{
		Use:   "copy <out>",
		Short: "Write a ledger holding only exposures in a time range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lo, hi, err := parseRange(from, to)
			if err != nil {
				return err
			}
			if err := noClobber(args[0], force); err != nil {
				return err
			}
			l, err := a.load()
			if err != nil {
				return err
			}
			cp, err := l.CopyRange(lo, hi)
			if err != nil {
				return err
			}
			if err := save(cp, args[0]); err != nil {
				return err
			}
			log.Printf("Copied %d of %d observed tiles to %s",
				len(cp.GetObserved(true)), len(l.GetObserved(true)), args[0])
			return nil
		},
	}
	c.Flags().StringVar(&from, "from", "", "earliest time, MJD or RFC 3339, inclusive")
	c.Flags().StringVar(&to, "to", "", "latest time, MJD or RFC 3339, exclusive")
	c.Flags().BoolVarP(&force, "force", "f", false, "replace an existing file")
	return c
}

func (a *app) catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog <out.toml>",
		Short: "Write the tile catalog of the ledger as TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.load()
			if err != nil {
				return err
			}
			if err := tiles.WriteFile(args[0], l.Catalog()); err != nil {
				return err
			}
			log.Printf("Wrote %d tiles to %s", l.NumTiles(), args[0])
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <db>",
		Short: "Export the ledger to a SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.load()
			if err != nil {
				return err
			}
			if err := archive.Export(cmd.Context(), args[0], l); err != nil {
				return err
			}
			log.Printf("Exported %d tiles to %s", l.NumTiles(), args[0])
			return nil
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	var force bool
	c := &cobra.Command{
		Use:   "import <db>",
		Short: "Replace the ledger with one from a SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := noClobber(a.cfg.LedgerFile, force); err != nil {
				return err
			}
			l, err := archive.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := save(l, a.cfg.LedgerFile); err != nil {
				return err
			}
			log.Printf("Imported %d tiles, %d observed, to %s",
				l.NumTiles(), len(l.GetObserved(true)), a.cfg.LedgerFile)
			return nil
		},
	}
	c.Flags().BoolVarP(&force, "force", "f", false, "replace an existing ledger")
	return c
}
