// Package solar computes sunrise, sunset and solar noon with the low-precision
// Meeus/NOAA solar position model. Results are good to roughly a minute at
// mid-latitudes, which is all a sundial-style clock needs.
package solar

import (
	"math"
	"time"

	"github.com/chrissnell/horologium/pkg/julian"
	"github.com/soniakeys/unit"
)

// Kind tells which branch of the hour-angle solution produced a Times value.
type Kind int

const (
	// Normal days have a real sunrise and sunset.
	Normal Kind = iota
	// MidnightSun days never see the sun set; Sunrise and Sunset span the whole civil day.
	MidnightSun
	// PolarNight days never see the sun rise; Sunrise and Sunset both sit at solar noon.
	PolarNight
)

func (k Kind) String() string {
	switch k {
	case MidnightSun:
		return "midnight-sun"
	case PolarNight:
		return "polar-night"
	default:
		return "normal"
	}
}

// Times holds the solar events of one civil day.
type Times struct {
	Sunrise     time.Time
	Sunset      time.Time
	SolarNoon   time.Time
	Declination float64 // degrees, at solar noon
	Kind        Kind
}

var (
	obliquity  = unit.AngleFromDeg(23.4397)
	perihelion = unit.AngleFromDeg(102.9372)
	// Standard altitude of the sun's center at rise/set: 34' of refraction
	// plus a 16' semi-diameter.
	horizon = unit.AngleFromDeg(-0.833)
)

// julian date correction for the transit approximation
const j0 = 0.0009

func meanAnomaly(d float64) unit.Angle {
	return unit.AngleFromDeg(357.5291 + 0.98560028*d)
}

func eclipticLongitude(m unit.Angle) unit.Angle {
	// equation of center
	c := unit.AngleFromDeg(1.9148*m.Sin() + 0.02*m.Mul(2).Sin() + 0.0003*m.Mul(3).Sin())
	return m + c + perihelion + math.Pi
}

func declination(l unit.Angle) unit.Angle {
	// ecliptic latitude of the sun is taken as zero
	return unit.Angle(math.Asin(obliquity.Sin() * l.Sin()))
}

// Declination returns the sun's declination in degrees at Julian day jd.
func Declination(jd float64) float64 {
	m := meanAnomaly(jd - julian.J2000)
	return declination(eclipticLongitude(m)).Deg()
}

// SunTimes returns the sunrise and sunset of the civil day containing date.
// Only the calendar date of date matters: it is read in date's own location,
// which is the civil clock the results are anchored to. lat and lng are in
// decimal degrees, east and north positive.
//
// When the sun stays above the horizon all day the whole civil day is
// returned as daylight. When it never rises, Sunrise and Sunset collapse onto
// solar noon. Returned instants are in date's location.
func SunTimes(date time.Time, lat, lng float64) Times {
	loc := date.Location()
	y, mo, dd := date.Date()

	// Anchor on local noon. Anchoring on midnight puts the nearest transit on
	// the wrong calendar day for times close to the date boundary.
	noonLocal := time.Date(y, mo, dd, 12, 0, 0, 0, loc)

	lw := unit.AngleFromDeg(-lng)
	phi := unit.AngleFromDeg(lat)

	d := julian.DaysSinceJ2000(noonLocal)
	n := math.Round(d - j0 - lw.Rad()/(2*math.Pi))
	approxTransit := n + j0 + lw.Rad()/(2*math.Pi)

	m := meanAnomaly(approxTransit)
	l := eclipticLongitude(m)
	// equation of time
	transit := approxTransit + 0.0053*m.Sin() - 0.0069*l.Mul(2).Sin()

	dec := declination(eclipticLongitude(meanAnomaly(transit)))
	solarNoon := julian.FromDaysSinceJ2000(transit).In(loc)

	t := Times{
		SolarNoon:   solarNoon,
		Declination: dec.Deg(),
	}

	cosH := (horizon.Sin() - phi.Sin()*dec.Sin()) / (phi.Cos() * dec.Cos())

	switch {
	case cosH < -1:
		t.Kind = MidnightSun
		t.Sunrise = time.Date(y, mo, dd, 0, 0, 0, 0, loc)
		t.Sunset = time.Date(y, mo, dd, 23, 59, 59, int(999*time.Millisecond), loc)
		return t
	case cosH > 1 || math.IsNaN(cosH):
		t.Kind = PolarNight
		t.Sunrise = solarNoon
		t.Sunset = solarNoon
		return t
	}

	h := math.Acos(cosH) / (2 * math.Pi)
	t.Kind = Normal
	t.Sunrise = julian.FromDaysSinceJ2000(transit - h).In(loc)
	t.Sunset = julian.FromDaysSinceJ2000(transit + h).In(loc)
	return t
}

// DayLength returns the time between sunrise and sunset.
func (t Times) DayLength() time.Duration {
	return t.Sunset.Sub(t.Sunrise)
}

// FormatSunTime formats t as a clock time in loc. The zero time formats as
// an empty string.
func FormatSunTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("3:04 PM")
}
