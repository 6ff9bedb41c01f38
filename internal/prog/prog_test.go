// Public domain.

package prog

import (
	"bytes"
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"

	"github.com/soniakeys/surveyledger/internal/ledger"
	"github.com/soniakeys/surveyledger/internal/tiles"
)

// run executes the command with args against ledger file fn.
func run(fn string, args ...string) (string, error) {
	root := newRoot(viper.New())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--ledger", fn, "--timezone", "UTC"))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, fn string, args ...string) string {
	out, err := run(fn, args...)
	if err != nil {
		t.Fatal(args, err)
	}
	return out
}

// observed initializes a ledger in a temp dir and adds two exposures of
// tile 1 and one of tile 2.
func observed(t *testing.T) (dir, fn string) {
	dir = t.TempDir()
	fn = filepath.Join(dir, "progress.gob")
	mustRun(t, fn, "init")
	for _, add := range [][]string{
		{"add", "1", "58849.1", "600", ".6", "1.2", "1.0"},
		{"add", "2", "2020-01-01T03:00:00Z", "600", ".3", "1.1", "0.9"},
		{"add", "1", "58849.2", "600", ".5", "1.3", "1.1"},
	} {
		mustRun(t, fn, add...)
	}
	return
}

func TestAdd(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "progress.gob")
	if _, err := run(fn, "add", "1", "58849.1", "600", ".6", "1.2", "1"); err == nil {
		t.Fatal("add before init")
	}
	mustRun(t, fn, "init")
	out := mustRun(t, fn, "add", "1", "58849.1", "600", ".6", "1.2", "1")
	if want := "tile 1 night 2019-12-31: 1 exposures, partial, 0.600\n"; out != want {
		t.Fatalf("got %q want %q", out, want)
	}
	out = mustRun(t, fn, "add", "1", "58849.2", "600", ".5", "1.2", "1")
	if !strings.Contains(out, "2 exposures, complete, 1.000") {
		t.Fatal(out)
	}
	if _, err := run(fn, "add", "1", "58849.0", "600", ".5", "1.2", "1"); !errors.Is(err, ledger.ErrOrdering) {
		t.Fatal(err)
	}
	if _, err := run(fn, "add", "0", "58849.3", "600", ".5", "1.2", "1"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatal(err)
	}
	if _, err := run(fn, "add", "1", "yesterday", "600", ".5", "1.2", "1"); err == nil {
		t.Fatal("bad time accepted")
	}
	l, err := ledger.Load(fn)
	if err != nil {
		t.Fatal(err)
	}
	if r, _ := l.GetTile(1); r.NExp != 2 {
		t.Fatal("nexp", r.NExp)
	}
}

func TestInitNoClobber(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "progress.gob")
	mustRun(t, fn, "init")
	if _, err := run(fn, "init"); err == nil {
		t.Fatal("init replaced ledger")
	}
	mustRun(t, fn, "init", "--force")
}

func TestInitMaxExposures(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "progress.gob")
	mustRun(t, fn, "init", "--max-exposures", "1")
	mustRun(t, fn, "add", "1", "58849.1", "600", ".6", "1.2", "1")
	if _, err := run(fn, "add", "1", "58849.2", "600", ".6", "1.2", "1"); !errors.Is(err, ledger.ErrCapacity) {
		t.Fatal(err)
	}
}

func TestStatus(t *testing.T) {
	_, fn := observed(t)
	out := mustRun(t, fn, "status")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// heading, 8 passes, total, nights
	if len(lines) != 11 {
		t.Fatal(out)
	}
	if !strings.HasPrefix(lines[9], "Total") || !strings.HasSuffix(lines[9], "1.30        1") {
		t.Fatalf("%q", lines[9])
	}
	if lines[10] != "Nights 2019-12-31 to 2019-12-31" {
		t.Fatalf("%q", lines[10])
	}
	out = mustRun(t, fn, "status", "--pass", "7")
	if n := strings.Count(out, "\n"); n != 4 {
		t.Fatal(out)
	}
	// an unknown pass matches no tiles
	out = mustRun(t, fn, "status", "--pass", "0,99")
	lines = strings.Split(strings.TrimSpace(out), "\n")
	// heading, 2 passes, total, nights
	if len(lines) != 5 || lines[2] != "  99 -            0     0.00        0" {
		t.Fatal(out)
	}
	if !strings.HasPrefix(lines[3], "Total") || !strings.HasSuffix(lines[3], "1.30        1") {
		t.Fatalf("%q", lines[3])
	}
}

func TestSummary(t *testing.T) {
	_, fn := observed(t)
	for _, c := range []struct {
		kind string
		rows int
	}{
		{"observed", 2},
		{"completed", 1},
		{"all", tiles.Default().Len()},
	} {
		out := mustRun(t, fn, "summary", c.kind)
		if n := strings.Count(out, "\n") - 1; n != c.rows {
			t.Fatal(c.kind, n, "rows")
		}
	}
	if _, err := run(fn, "summary", "some"); !errors.Is(err, ledger.ErrMalformed) {
		t.Fatal(err)
	}
}

func TestTile(t *testing.T) {
	_, fn := observed(t)
	out := mustRun(t, fn, "tile", "1", "--radius", "10")
	if !strings.HasPrefix(out, "Tile 1 pass 0 DARK") {
		t.Fatal(out)
	}
	if !strings.Contains(out, "complete, 2 of 32 exposures, completion 1.000") {
		t.Fatal(out)
	}
	if !strings.Contains(out, "neighbors within 10°") {
		t.Fatal(out)
	}
	if _, err := run(fn, "tile", "100000"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatal(err)
	}
}

func TestExposures(t *testing.T) {
	_, fn := observed(t)
	out := mustRun(t, fn, "exposures")
	if n := strings.Count(out, "\n"); n != 3 {
		t.Fatal(out)
	}
	out = mustRun(t, fn, "exposures", "--from", "58849.15")
	if n := strings.Count(out, "\n"); n != 1 {
		t.Fatal(out)
	}
	if _, err := run(fn, "exposures", "--from", "58850", "--to", "58849"); !errors.Is(err, ledger.ErrRange) {
		t.Fatal(err)
	}
}

func TestCopy(t *testing.T) {
	dir, fn := observed(t)
	cfn := filepath.Join(dir, "copy.gob")
	mustRun(t, fn, "copy", cfn, "--to", "58849.15")
	c, err := ledger.Load(cfn)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Completed(true); math.Abs(got-.9) > 1e-12 {
		t.Fatal("completed", got)
	}
	if _, err := run(fn, "copy", cfn); err == nil {
		t.Fatal("copy replaced file")
	}
}

func TestExportImport(t *testing.T) {
	dir, fn := observed(t)
	db := filepath.Join(dir, "progress.db")
	mustRun(t, fn, "export", db)
	ifn := filepath.Join(dir, "imported.gob")
	mustRun(t, ifn, "import", db)
	if _, err := run(ifn, "import", db); err == nil {
		t.Fatal("import replaced ledger")
	}
	l, err := ledger.Load(fn)
	if err != nil {
		t.Fatal(err)
	}
	l2, err := ledger.Load(ifn)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(l.Table(), l2.Table()); d != "" {
		t.Fatal(d)
	}
}

func TestCatalog(t *testing.T) {
	dir, fn := observed(t)
	tfn := filepath.Join(dir, "tiles.toml")
	mustRun(t, fn, "catalog", tfn)
	c, err := tiles.ReadFile(tfn)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(tiles.Default().Tiles(), c.Tiles()); d != "" {
		t.Fatal(d)
	}
	// a ledger over the written catalog
	fn2 := filepath.Join(dir, "p2.gob")
	mustRun(t, fn2, "init", "--tiles", tfn)
	l, err := ledger.Load(fn2)
	if err != nil {
		t.Fatal(err)
	}
	if l.NumTiles() != c.Len() {
		t.Fatal(l.NumTiles())
	}
}

func TestParseMJD(t *testing.T) {
	for _, c := range []struct {
		s    string
		want float64
	}{
		{"58849.25", 58849.25},
		{"2020-01-01T06:00:00Z", 58849.25},
		{"2019-12-31T23:00:00-07:00", 58849.25},
	} {
		got, err := parseMJD(c.s)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-c.want) > 1e-8 {
			t.Fatal(c.s, got)
		}
	}
	if _, err := parseMJD("2020-01-01"); err == nil {
		t.Fatal("date accepted")
	}
}
