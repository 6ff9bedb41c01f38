/*
Command surveyledger keeps a ledger of survey progress: which tiles of a sky
survey footprint have been observed, with what exposures, and how close the
survey is to completion.

Contents

  Program overview
  Installing
  Command line usage
  Configuration
  File formats
  Completion accounting


Program overview

A survey footprint is divided into tiles.  Each tile has a fixed sky
position and belongs to one pass; passes are grouped into observing
programs, DARK, GRAY, and BRIGHT, according to the sky conditions they are
designed for.  A tile is observed with one or more exposures over the course
of the survey.  Each exposure contributes a fraction of the signal to noise
needed to complete the tile, the exposure's SNR2Frac.  A tile is complete
when the SNR2Frac values of its exposures sum to 1 or more.

The ledger holds, for every tile, a bounded log of exposures in time order.
Each exposure records its MJD, exposure time, SNR2Frac, airmass, and seeing.
From the log the program reports completion by pass, summaries by tile,
lists of exposures, and copies of the ledger restricted to a time range.

Sample session:

  $ surveyledger init
  surveyledger: Initialized 3465 tiles in 8 passes, progress.gob
  $ surveyledger add 1 58849.1 600 .6 1.2 1.0
  tile 1 night 2019-12-31: 1 exposures, partial, 0.600
  $ surveyledger add 1 2020-01-01T04:48:00Z 600 .5 1.3 1.1
  tile 1 night 2019-12-31: 2 exposures, complete, 1.000
  $ surveyledger status --pass 0,1
  Pass Program  Tiles  Partial Complete
     0 DARK       455     1.00        1
     1 DARK       451     0.00        0
  Total           906     1.00        1
  Nights 2019-12-31 to 2019-12-31

The counts are those of the built in footprint.


Installing

You need Go installed and configured.  Then

    go install github.com/soniakeys/surveyledger@latest

downloads, compiles, and installs the command.  There are no other files to
install.  The built in footprint is generated by the program and time zone
data is compiled in.


Command line usage

  surveyledger init [--force]
      Create an empty ledger over the tile catalog.
  surveyledger add <tile-id> <mjd|time> <exptime> <snr2frac> <airmass> <seeing>
      Record an exposure.  Time is an MJD or an RFC 3339 time.
  surveyledger status [--pass p,...]
      Completion by pass, counting partial tiles fractionally and complete
      tiles only.
  surveyledger summary [observed|completed|all]
      One line per tile with position, exposure count, first and last
      night, total exposure time, summed SNR2Frac, and representative
      airmass and seeing.
  surveyledger tile <tile-id> [--radius deg]
      Exposures of a tile and the state of neighboring tiles.
  surveyledger exposures [--from t] [--to t]
      Exposures of all tiles in time order.
  surveyledger copy <out> [--from t] [--to t] [--force]
      Write a ledger holding only exposures from the time range.
  surveyledger catalog <out.toml>
      Write the tile catalog of the ledger.
  surveyledger export <db>
  surveyledger import <db> [--force]
      Export the ledger to or replace it from a SQLite database.

Time ranges include the from time and exclude the to time.  Either end
may be omitted.

An exposure must be later than the last exposure already recorded for its
tile.  A tile holds at most max-exposures exposures; additional exposures
are rejected rather than dropped.  A rejected exposure leaves the ledger
unchanged.


Configuration

Global options, with their config keys and defaults:

  --ledger         ledger_file     progress.gob
  --tiles          tiles_file      built in footprint
  --timezone       timezone        America/Phoenix
  --max-exposures  max_exposures   32
  --config                         .surveyledger.toml

Values are taken from, in increasing order of precedence, the config file,
environment variables SURVEYLEDGER_LEDGER_FILE and so on, and the command
line.  The config file is looked for in the current directory and then the
home directory.  Any format known to viper may be used with --config; the
format is determined by file extension.

The time zone is that of the observatory.  It is used only to assign
exposures to nights.  A night is named by the local date on which it
begins, and runs from local noon to the following local noon.

Max-exposures applies when a ledger is created.  A ledger keeps the value
it was created with.


File formats

The ledger file is a Go gob stream, a header with a format identifier and
version followed by the ledger table.  A file of another version is
rejected; there is no conversion.  Files are replaced by writing a
temporary file and renaming it.

A tile catalog file is TOML, one table per tile:

  [[tile]]
  id = 1
  pass = 0
  ra = 0.02
  dec = -20.1
  program = "DARK"

RA and Dec are degrees.  Tile IDs must be unique, RA in [0, 360), Dec
strictly between -80 and 80.  All tiles of a pass must have the same
program.

The SQLite export holds tables meta, tiles, and exposures and carries the
ledger format version as the database user_version.  It is intended for
inspection with ordinary SQL tools and can be imported back.


Completion accounting

With partial tiles counted, each tile contributes the sum of its SNR2Frac
values clamped to 1.  Counting only complete tiles, each complete tile
contributes 1.  Either count may be restricted to a set of passes.  Summary
lines report the unclamped SNR2Frac sum.

Summary airmass and seeing are means weighted by exposure time, or plain
means if the total exposure time is zero.

-------------
Public domain.
*/
package main
