// Package julian converts between wall-clock instants and Julian day numbers.
// All ephemeris code in this module measures time as days since J2000.0.
package julian

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const (
	// J1970 is the Julian day at the Unix epoch, offset by half a day so that
	// Julian days begin at noon.
	J1970 = 2440588.0
	// J2000 is the Julian day of the J2000.0 epoch (2000-01-01 12:00 TT).
	J2000 = 2451545.0

	dayMillis = 1000 * 60 * 60 * 24
)

// FromTime returns the Julian day of t.
func FromTime(t time.Time) float64 {
	return float64(t.UnixMilli())/dayMillis - 0.5 + J1970
}

// ToTime returns the UTC instant of Julian day jd, rounded to the millisecond.
func ToTime(jd float64) time.Time {
	ms := math.Round((jd + 0.5 - J1970) * dayMillis)
	return time.UnixMilli(int64(ms)).UTC()
}

// DaysSinceJ2000 returns the (fractional) number of days between J2000.0 and t.
func DaysSinceJ2000(t time.Time) float64 {
	return FromTime(t) - J2000
}

// FromDaysSinceJ2000 is the inverse of DaysSinceJ2000.
func FromDaysSinceJ2000(d float64) time.Time {
	return ToTime(d + J2000)
}

// Centuries returns Julian centuries since J2000.0
func Centuries(jd float64) float64 {
	return (jd - J2000) / 36525.0
}

// CalendarDate returns the Gregorian calendar date (UT) containing jd.
func CalendarDate(jd float64) (year int, month time.Month, day int) {
	y, m, d := julian.JDToCalendar(jd)
	return y, time.Month(m), int(d)
}
