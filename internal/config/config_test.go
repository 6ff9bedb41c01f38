// Public domain.

package config_test

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/soniakeys/surveyledger/internal/config"
	"github.com/soniakeys/surveyledger/internal/ledger"
)

func TestLoadDefaults(t *testing.T) {
	c, err := config.Load(viper.New())
	if err != nil {
		t.Fatal(err)
	}
	want := config.Config{
		MaxExposures: ledger.DefaultMaxExposures,
		LedgerFile:   config.DefaultLedgerFile,
		Timezone:     config.DefaultTimezone,
	}
	if c != want {
		t.Fatalf("got %+v, want %+v", c, want)
	}
	loc, err := c.Location()
	if err != nil {
		t.Fatal(err)
	}
	if loc.String() != "America/Phoenix" {
		t.Fatal(loc)
	}
	if c.Ledger() != ledger.DefaultConfig() {
		t.Fatal(c.Ledger())
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SURVEYLEDGER_MAX_EXPOSURES", "7")
	t.Setenv("SURVEYLEDGER_TILES_FILE", "tiles.toml")
	t.Setenv("SURVEYLEDGER_TIMEZONE", "UTC")
	c, err := config.Load(viper.New())
	if err != nil {
		t.Fatal(err)
	}
	if c.MaxExposures != 7 || c.TilesFile != "tiles.toml" || c.Timezone != "UTC" {
		t.Fatalf("%+v", c)
	}
}

func TestLoadOverride(t *testing.T) {
	t.Setenv("SURVEYLEDGER_LEDGER_FILE", "env.gob")
	v := viper.New()
	v.Set("ledger_file", "flag.gob")
	c, err := config.Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if c.LedgerFile != "flag.gob" {
		t.Fatal(c.LedgerFile)
	}
}

func TestLoadInvalid(t *testing.T) {
	for _, kv := range []struct{ k, v string }{
		{"max_exposures", "0"},
		{"ledger_file", ""},
		{"timezone", "Mars/Olympus_Mons"},
	} {
		v := viper.New()
		v.Set(kv.k, kv.v)
		if _, err := config.Load(v); err == nil {
			t.Fatalf("%s=%q accepted", kv.k, kv.v)
		}
	}
}
