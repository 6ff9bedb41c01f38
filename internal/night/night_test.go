// Public domain.

package night_test

import (
	"fmt"
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/soniakeys/surveyledger/internal/night"
)

func ExampleDate() {
	az := time.FixedZone("MST", -7*3600) // Kitt Peak
	for _, s := range []night.Spec{
		night.Calendar("2019-8-3"),
		night.Day{Year: 2020, Month: time.January, Day: 1},
		night.MJD(58849.25), // 2020-01-01 06:00 UTC, still the night of Dec 31
		night.Instant(time.Date(2020, 1, 1, 19, 30, 0, 0, time.UTC)),
	} {
		d, err := night.Date(s, az)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(d.Format("2006-01-02"))
	}
	// Output:
	// 2019-08-03
	// 2020-01-01
	// 2019-12-31
	// 2020-01-01
}

func TestMJD(t *testing.T) {
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if m := night.ToMJD(t0); math.Abs(m-58849) > 1e-9 {
		t.Fatal("ToMJD", m)
	}
	if d := night.FromMJD(58849.5).Sub(t0.Add(12 * time.Hour)); d > time.Millisecond || d < -time.Millisecond {
		t.Fatal("FromMJD off by", d)
	}
}

var badCalendar = []string{"", "2019", "2019-13-01", "2019-02-30", "2019-01-01x", "01/02/2019"}

func TestBadCalendar(t *testing.T) {
	for _, s := range badCalendar {
		if _, err := night.Date(night.Calendar(s), time.UTC); err == nil {
			t.Fatalf("%q accepted", s)
		}
	}
}

func TestNoonBoundary(t *testing.T) {
	loc := time.FixedZone("MST", -7*3600)
	n, _ := night.Date(night.Day{Year: 2021, Month: 3, Day: 14}, loc)
	noon := night.LocalNoon(n, loc)
	if !noon.Equal(time.Date(2021, 3, 14, 19, 0, 0, 0, time.UTC)) {
		t.Fatal("noon", noon)
	}
	before, _ := night.Date(night.Instant(noon.Add(-time.Second)), loc)
	at, _ := night.Date(night.Instant(noon), loc)
	if before.Day() != 13 || at.Day() != 14 {
		t.Fatal(before, at)
	}
}

// Across daylight saving changes the night still turns over at local noon.
func TestNoonBoundaryDST(t *testing.T) {
	loc, err := time.LoadLocation("America/Denver")
	if err != nil {
		t.Fatal(err)
	}
	for _, day := range []night.Day{
		{Year: 2020, Month: time.March, Day: 8},    // MST to MDT
		{Year: 2020, Month: time.November, Day: 1}, // MDT to MST
	} {
		n, _ := night.Date(day, loc)
		noon := night.LocalNoon(n, loc)
		if h, m, _ := noon.In(loc).Clock(); h != 12 || m != 0 {
			t.Fatal("noon", noon)
		}
		prev := n.AddDate(0, 0, -1)
		for _, c := range []struct {
			at   time.Time
			want time.Time
		}{
			{noon.Add(-time.Second), prev},
			{noon, n},
			{noon.Add(30 * time.Minute), n},
			{time.Date(day.Year, day.Month, day.Day, 1, 30, 0, 0, loc), prev},
			{time.Date(day.Year, day.Month, day.Day, 23, 0, 0, 0, loc), n},
		} {
			got, err := night.Date(night.Instant(c.at), loc)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(c.want) {
				t.Fatalf("%v: got night %s, want %s", c.at.In(loc),
					got.Format("2006-01-02"), c.want.Format("2006-01-02"))
			}
			if c.at.Equal(noon) {
				continue // MJD round trip is not exact
			}
			got, _ = night.Date(night.MJD(night.ToMJD(c.at)), loc)
			if !got.Equal(c.want) {
				t.Fatalf("%v as MJD: got night %s", c.at.In(loc), got.Format("2006-01-02"))
			}
		}
	}
}
