// Public domain.

// Package night maps times and dates to observing nights.
//
// An observing night is named by the calendar date on which it starts.
// Local noon at the observatory separates one night from the next, so all
// times from noon to the following noon belong to the same night.
package night

import (
	"fmt"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
)

// FromMJD converts a Modified Julian Date to a UTC time.
func FromMJD(mjd float64) time.Time {
	return julian.JDToTime(mjd + base.JMod).UTC()
}

// ToMJD converts a time to a Modified Julian Date.
func ToMJD(t time.Time) float64 {
	return julian.TimeToJD(t.UTC()) - base.JMod
}

// Spec is a specification of a night.  It is implemented by Calendar,
// Day, MJD, and Instant.
type Spec interface {
	// date returns the civil date of the night as year, month, day.
	date(loc *time.Location) (int, time.Month, int, error)
}

// Calendar is a date in the form YYYY-MM-DD.  Leading zeros on month and
// day are optional.
type Calendar string

// Day is a civil date.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// MJD is a Modified Julian Date, UTC.
type MJD float64

// Instant is a point in time.  A time without a meaningful location is
// taken as UTC by the time package already.
type Instant time.Time

func (c Calendar) date(*time.Location) (int, time.Month, int, error) {
	var y, m, d int
	var rest string
	if n, _ := fmt.Sscanf(string(c), "%d-%d-%d%s", &y, &m, &d, &rest); n != 3 {
		return 0, 0, 0, fmt.Errorf("invalid date %q, want YYYY-MM-DD", string(c))
	}
	return Day{y, time.Month(m), d}.date(nil)
}

func (d Day) date(*time.Location) (int, time.Month, int, error) {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	if y, m, dd := t.Date(); y != d.Year || m != d.Month || dd != d.Day {
		return 0, 0, 0, fmt.Errorf("invalid date %d-%d-%d", d.Year, int(d.Month), d.Day)
	}
	return d.Year, d.Month, d.Day, nil
}

func (m MJD) date(loc *time.Location) (int, time.Month, int, error) {
	return Instant(FromMJD(float64(m))).date(loc)
}

func (i Instant) date(loc *time.Location) (int, time.Month, int, error) {
	t := time.Time(i).In(loc)
	y, m, d := t.Date()
	if t.Before(time.Date(y, m, d, 12, 0, 0, 0, loc)) {
		// morning belongs to the night begun the previous day
		y, m, d = time.Date(y, m, d-1, 0, 0, 0, 0, time.UTC).Date()
	}
	return y, m, d, nil
}

// Date returns the date of the night containing s, as midnight UTC of
// that date.  loc is the time zone of the observatory.
func Date(s Spec, loc *time.Location) (time.Time, error) {
	y, m, d, err := s.date(loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// LocalNoon returns local noon on the date of night, the time the night
// begins.
func LocalNoon(night time.Time, loc *time.Location) time.Time {
	y, m, d := night.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, loc)
}
