// Public domain.

// Package config holds surveyledger run time configuration.
//
// Values come from a config file, SURVEYLEDGER_* environment variables, and
// command line flags, in increasing order of precedence, all resolved
// through a viper instance owned by the caller.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // Observatory zones resolve without system zoneinfo.

	"github.com/spf13/viper"

	"github.com/soniakeys/surveyledger/internal/ledger"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "SURVEYLEDGER"

// Defaults.
const (
	DefaultLedgerFile = "progress.gob"
	DefaultTimezone   = "America/Phoenix"
)

// Config holds all run time configuration.
type Config struct {
	// capacity of the exposure log of each tile, used when creating a ledger
	MaxExposures int `mapstructure:"max_exposures"`
	// TOML tile catalog; empty for the built in footprint
	TilesFile  string `mapstructure:"tiles_file"`
	LedgerFile string `mapstructure:"ledger_file"`
	// IANA time zone of the observatory, for assigning exposures to nights
	Timezone string `mapstructure:"timezone"`
}

// SetDefaults sets defaults on v and arranges for v to read environment
// variables.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("max_exposures", ledger.DefaultMaxExposures)
	v.SetDefault("tiles_file", "")
	v.SetDefault("ledger_file", DefaultLedgerFile)
	v.SetDefault("timezone", DefaultTimezone)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from v, applying defaults for any values not
// otherwise set.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if c.MaxExposures < 1 {
		return Config{}, fmt.Errorf("config: max_exposures %d, must be at least 1",
			c.MaxExposures)
	}
	if c.LedgerFile == "" {
		return Config{}, fmt.Errorf("config: ledger_file not set")
	}
	if _, err := c.Location(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Location returns the time zone named by Timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone: %w", err)
	}
	return loc, nil
}

// Ledger returns the configuration for creating a new ledger.
func (c Config) Ledger() ledger.Config {
	return ledger.Config{MaxExposures: c.MaxExposures}
}
