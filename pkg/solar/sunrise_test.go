package solar

import (
	"math"
	"testing"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// zoneFor returns a fixed zone whose offset follows the longitude, which keeps
// every sunrise and sunset on the civil day it was computed for.
func zoneFor(lng float64) *time.Location {
	hours := int(math.Round(lng / 15))
	return time.FixedZone("LMT", hours*3600)
}

func TestSunTimes(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		latitude  float64
		longitude float64
		sunrise   string // expected local clock time, ±5 min
		sunset    string
	}{
		{
			name:      "Basel Ides of March",
			date:      time.Date(2024, 3, 15, 9, 0, 0, 0, time.FixedZone("CET", 3600)),
			latitude:  47.5632,
			longitude: 7.5744,
			sunrise:   "06:43",
			sunset:    "18:36",
		},
		{
			name:      "Seattle summer solstice",
			date:      time.Date(2024, 6, 21, 9, 0, 0, 0, time.FixedZone("PDT", -7*3600)),
			latitude:  47.6,
			longitude: -122.3,
			sunrise:   "05:12",
			sunset:    "21:12",
		},
		{
			name:      "Rome winter solstice",
			date:      time.Date(2024, 12, 21, 18, 0, 0, 0, time.FixedZone("CET", 3600)),
			latitude:  41.9,
			longitude: 12.5,
			sunrise:   "07:35",
			sunset:    "16:43",
		},
		{
			name:      "Equator at equinox",
			date:      time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			latitude:  0,
			longitude: 0,
			sunrise:   "06:05",
			sunset:    "18:12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := SunTimes(tt.date, tt.latitude, tt.longitude)
			if st.Kind != Normal {
				t.Fatalf("Kind = %v, expected normal", st.Kind)
			}

			checkClock(t, "sunrise", st.Sunrise, tt.date, tt.sunrise)
			checkClock(t, "sunset", st.Sunset, tt.date, tt.sunset)

			if !st.Sunrise.Before(st.SolarNoon) || !st.SolarNoon.Before(st.Sunset) {
				t.Errorf("solar noon %v not between sunrise %v and sunset %v", st.SolarNoon, st.Sunrise, st.Sunset)
			}
		})
	}
}

func checkClock(t *testing.T, what string, got, date time.Time, expected string) {
	t.Helper()
	want, err := time.ParseInLocation("2006-01-02 15:04", date.Format("2006-01-02")+" "+expected, date.Location())
	if err != nil {
		t.Fatal(err)
	}
	if diff := got.Sub(want); diff > 5*time.Minute || diff < -5*time.Minute {
		t.Errorf("%s = %v, expected ~%v (±5m)", what, got.Format("15:04:05"), expected)
	}
}

func TestSunTimesAgreesWithGoSunrise(t *testing.T) {
	places := []struct {
		name     string
		lat, lng float64
	}{
		{"Basel", 47.5632, 7.5744},
		{"Rome", 41.9, 12.5},
		{"Cupertino", 37.3229978, -122.0321823},
		{"Quito", -0.18, -78.47},
		{"Sydney", -33.87, 151.21},
	}

	for _, p := range places {
		loc := zoneFor(p.lng)
		for month := time.January; month <= time.December; month++ {
			date := time.Date(2024, month, 10, 12, 0, 0, 0, loc)
			st := SunTimes(date, p.lat, p.lng)
			rise, set := sunrise.SunriseSunset(p.lat, p.lng, 2024, month, 10)

			if diff := st.Sunrise.Sub(rise); diff > 3*time.Minute || diff < -3*time.Minute {
				t.Errorf("%s %v: sunrise %v, go-sunrise %v", p.name, month, st.Sunrise.UTC(), rise)
			}
			if diff := st.Sunset.Sub(set); diff > 3*time.Minute || diff < -3*time.Minute {
				t.Errorf("%s %v: sunset %v, go-sunrise %v", p.name, month, st.Sunset.UTC(), set)
			}
		}
	}
}

func TestSunTimesOrderingAndDeterminism(t *testing.T) {
	for lat := -60.0; lat <= 60.0; lat += 7.5 {
		for _, lng := range []float64{-150, -75, 0, 45, 120, 179} {
			loc := zoneFor(lng)
			for doy := 0; doy < 366; doy += 5 {
				date := time.Date(2024, 1, 1, 12, 0, 0, 0, loc).AddDate(0, 0, doy)
				st := SunTimes(date, lat, lng)
				again := SunTimes(date, lat, lng)

				if st != again {
					t.Fatalf("lat %.1f lng %.1f %v: results differ between calls", lat, lng, date)
				}
				if st.Kind != Normal {
					t.Errorf("lat %.1f lng %.1f %v: unexpected %v", lat, lng, date, st.Kind)
					continue
				}
				if !st.Sunrise.Before(st.Sunset) {
					t.Errorf("lat %.1f lng %.1f %v: sunrise %v not before sunset %v", lat, lng, date, st.Sunrise, st.Sunset)
				}
				if st.Sunrise.YearDay() != date.YearDay() || st.Sunset.YearDay() != date.YearDay() {
					t.Errorf("lat %.1f lng %.1f %v: events %v / %v leave the civil day", lat, lng, date, st.Sunrise, st.Sunset)
				}
			}
		}
	}
}

func TestNoonAnchoring(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	early := time.Date(2024, 5, 1, 0, 5, 0, 0, loc)
	late := time.Date(2024, 5, 1, 23, 55, 0, 0, loc)

	if a, b := SunTimes(early, 47.5632, 7.5744), SunTimes(late, 47.5632, 7.5744); a != b {
		t.Errorf("times depend on time of day: %+v vs %+v", a, b)
	}
}

func TestPolarBranches(t *testing.T) {
	svalbard := time.FixedZone("CET", 3600)

	t.Run("midnight sun", func(t *testing.T) {
		date := time.Date(2024, 6, 21, 15, 0, 0, 0, svalbard)
		st := SunTimes(date, 78.22, 15.65)

		if st.Kind != MidnightSun {
			t.Fatalf("Kind = %v, expected midnight-sun", st.Kind)
		}
		if want := time.Date(2024, 6, 21, 0, 0, 0, 0, svalbard); !st.Sunrise.Equal(want) {
			t.Errorf("Sunrise = %v, expected start of day %v", st.Sunrise, want)
		}
		if want := time.Date(2024, 6, 21, 23, 59, 59, 999000000, svalbard); !st.Sunset.Equal(want) {
			t.Errorf("Sunset = %v, expected end of day %v", st.Sunset, want)
		}
		if rise, _ := sunrise.SunriseSunset(78.22, 15.65, 2024, time.June, 21); !rise.IsZero() {
			t.Errorf("go-sunrise reports a sunrise at %v", rise)
		}
	})

	t.Run("polar night", func(t *testing.T) {
		date := time.Date(2024, 12, 21, 15, 0, 0, 0, svalbard)
		st := SunTimes(date, 78.22, 15.65)

		if st.Kind != PolarNight {
			t.Fatalf("Kind = %v, expected polar-night", st.Kind)
		}
		if !st.Sunrise.Equal(st.Sunset) || !st.Sunrise.Equal(st.SolarNoon) {
			t.Errorf("expected zero-length day at solar noon, got %v - %v (noon %v)", st.Sunrise, st.Sunset, st.SolarNoon)
		}
		if st.DayLength() != 0 {
			t.Errorf("DayLength = %v, expected 0", st.DayLength())
		}
	})

	t.Run("southern midnight sun", func(t *testing.T) {
		st := SunTimes(time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC), -80, 0)
		if st.Kind != MidnightSun {
			t.Errorf("Kind = %v, expected midnight-sun", st.Kind)
		}
	})
}

func TestDeclination(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want float64
	}{
		{"June solstice", time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC), 23.44},
		{"December solstice", time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC), -23.44},
		{"March equinox", time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := SunTimes(tt.date, 0, 0)
			if math.Abs(st.Declination-tt.want) > 0.5 {
				t.Errorf("Declination = %.2f, expected ~%.2f", st.Declination, tt.want)
			}
		})
	}
}

func TestFormatSunTime(t *testing.T) {
	pst := time.FixedZone("PST", -8*3600)

	tests := []struct {
		name     string
		time     time.Time
		loc      *time.Location
		expected string
	}{
		{
			name:     "Morning UTC to Pacific",
			time:     time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC),
			loc:      pst,
			expected: "6:00 AM",
		},
		{
			name:     "Zero time returns empty",
			loc:      pst,
			expected: "",
		},
		{
			name:     "Noon UTC",
			time:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			loc:      time.UTC,
			expected: "12:00 PM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSunTime(tt.time, tt.loc); got != tt.expected {
				t.Errorf("FormatSunTime(%v) = %q, expected %q", tt.time, got, tt.expected)
			}
		})
	}
}
