// Public domain.

// Package prog implements the surveyledger command.
package prog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/soniakeys/exit"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soniakeys/surveyledger/internal/config"
	"github.com/soniakeys/surveyledger/internal/ledger"
	"github.com/soniakeys/surveyledger/internal/night"
	"github.com/soniakeys/surveyledger/internal/tiles"
)

const versionString = "surveyledger version 0.1 Go source."
const copyrightString = "Public domain."

func Main() {
	defer exit.Handler()
	log.SetFlags(0)
	log.SetPrefix("surveyledger: ")
	if err := newRoot(viper.New()).ExecuteContext(context.Background()); err != nil {
		exit.Log(err)
	}
}

// app holds state shared by subcommands.  cfg and loc are valid once
// configure has run.
type app struct {
	v   *viper.Viper
	cfg config.Config
	loc *time.Location
}

// flag names for config keys
var flagKeys = []struct{ key, flag string }{
	{"ledger_file", "ledger"},
	{"tiles_file", "tiles"},
	{"timezone", "timezone"},
	{"max_exposures", "max-exposures"},
}

func newRoot(v *viper.Viper) *cobra.Command {
	a := &app{v: v}
	root := &cobra.Command{
		Use:   "surveyledger",
		Short: "Survey progress ledger",
		Long: `Surveyledger keeps a log of the exposures taken of each tile of a sky
survey footprint and reports progress toward completing the survey.`,
		Version:           versionString + "\n" + copyrightString,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.configure,
	}
	root.SetVersionTemplate("{{.Version}}\n")
	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default .surveyledger.toml)")
	pf.String("ledger", config.DefaultLedgerFile, "ledger file")
	pf.String("tiles", "", "TOML tile catalog (default built in footprint)")
	pf.String("timezone", config.DefaultTimezone, "observatory time zone")
	pf.Int("max-exposures", ledger.DefaultMaxExposures, "exposure slots per tile of a new ledger")
	for _, fk := range flagKeys {
		if err := v.BindPFlag(fk.key, pf.Lookup(fk.flag)); err != nil {
			panic(err)
		}
	}
	root.AddCommand(
		a.initCmd(),
		a.addCmd(),
		a.statusCmd(),
		a.summaryCmd(),
		a.tileCmd(),
		a.exposuresCmd(),
		a.copyCmd(),
		a.catalogCmd(),
		a.exportCmd(),
		a.importCmd(),
	)
	return root
}

func (a *app) configure(cmd *cobra.Command, args []string) error {
	if fn, _ := cmd.Flags().GetString("config"); fn != "" {
		a.v.SetConfigFile(fn)
	} else {
		a.v.SetConfigName(".surveyledger")
		a.v.SetConfigType("toml")
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
	}
	if err := a.v.ReadInConfig(); err != nil {
		// no config file is fine
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return fmt.Errorf("config: %w", err)
		}
	}
	var err error
	if a.cfg, err = config.Load(a.v); err != nil {
		return err
	}
	a.loc, err = a.cfg.Location()
	return err
}

// catalog returns the configured tile catalog.
func (a *app) catalog() (*tiles.Catalog, error) {
	if a.cfg.TilesFile == "" {
		return tiles.Default(), nil
	}
	return tiles.ReadFile(a.cfg.TilesFile)
}

func (a *app) load() (*ledger.Ledger, error) {
	l, err := ledger.Load(a.cfg.LedgerFile)
	if errors.Is(err, os.ErrNotExist) {
		log.Println(err)
		return nil, errors.New(`use command "surveyledger init" to create a ledger`)
	}
	return l, err
}

// save writes l to fn by way of a temporary file, so an existing ledger
// is replaced only by a complete one.
func save(l *ledger.Ledger, fn string) error {
	tmp := fn + ".tmp"
	if err := l.Save(tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, fn)
}

// noClobber returns an error if fn exists.
func noClobber(fn string, force bool) error {
	if force {
		return nil
	}
	if _, err := os.Stat(fn); err == nil {
		return fmt.Errorf("%s exists, use --force to replace it", fn)
	}
	return nil
}

// parseMJD parses either an MJD or an RFC 3339 time.
func parseMJD(s string) (float64, error) {
	if mjd, err := strconv.ParseFloat(s, 64); err == nil {
		return mjd, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, want MJD or RFC 3339", s)
	}
	return night.ToMJD(t), nil
}

// parseBound parses a range bound.  Empty is an open end, represented by
// inf.
func parseBound(s string, inf float64) (float64, error) {
	if s == "" {
		return inf, nil
	}
	return parseMJD(s)
}

func parseRange(from, to string) (lo, hi float64, err error) {
	if lo, err = parseBound(from, math.Inf(-1)); err != nil {
		return
	}
	hi, err = parseBound(to, math.Inf(1))
	return
}

// nightOf formats the observing night of an MJD.
func (a *app) nightOf(mjd float64) string {
	d, err := night.Date(night.MJD(mjd), a.loc)
	if err != nil {
		return "?"
	}
	return d.Format("2006-01-02")
}
