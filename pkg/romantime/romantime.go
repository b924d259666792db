// Package romantime divides daylight and night into twelve unequal Roman
// hours each, bounded by the true local sunrise and sunset.
package romantime

import (
	"math"
	"sort"
	"time"

	"github.com/chrissnell/horologium/pkg/calendar"
	"github.com/chrissnell/horologium/pkg/lunar"
	"github.com/chrissnell/horologium/pkg/planetary"
	"github.com/chrissnell/horologium/pkg/solar"
)

// GeoCoordinate is a position in decimal degrees, north and east positive.
// Values are not range checked; extreme latitudes fall into the polar
// branches of the solar model.
type GeoCoordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Period names the half of the Roman day.
const (
	PeriodDay   = "Dies"
	PeriodNight = "Nox"
)

var dayHours = [12]string{
	"Prima Hora", "Secunda Hora", "Tertia Hora", "Quarta Hora",
	"Quinta Hora", "Sexta Hora", "Septima Hora", "Octava Hora",
	"Nona Hora", "Decima Hora", "Undecima Hora", "Duodecima Hora",
}

var nightHours = [12]string{
	"Prima Hora Noctis", "Secunda Hora Noctis", "Tertia Hora Noctis", "Quarta Hora Noctis",
	"Quinta Hora Noctis", "Sexta Hora Noctis", "Septima Hora Noctis", "Octava Hora Noctis",
	"Nona Hora Noctis", "Decima Hora Noctis", "Undecima Hora Noctis", "Duodecima Hora Noctis",
}

// HourName returns the Latin name of Roman hour h, clamped to [1,12].
func HourName(h int, isDay bool) string {
	h = clampHour(h)
	if isDay {
		return dayHours[h-1]
	}
	return nightHours[h-1]
}

// Snapshot is the Roman time at one instant and place. A Snapshot is never
// modified after Calculate returns it.
type Snapshot struct {
	ComputedAt        time.Time     `json:"computed_at"`
	Coordinate        GeoCoordinate `json:"coordinate"`
	RomanHour         int           `json:"roman_hour"`
	IsDay             bool          `json:"is_day"`
	Period            string        `json:"period"`
	HourName          string        `json:"hour_name"`
	HourLengthMinutes float64       `json:"hour_length_minutes"`
	HourStart         time.Time     `json:"hour_start"`
	HourEnd           time.Time     `json:"hour_end"`
	Sunrise           time.Time     `json:"sunrise"`
	Sunset            time.Time     `json:"sunset"`
	NextSunrise       time.Time     `json:"next_sunrise"`
	RomanDateShort    string        `json:"roman_date_short"`
	RomanDateFull     string        `json:"roman_date_full"`
	MoonPhase         float64       `json:"moon_phase"`
	MoonPhaseLabel    string        `json:"moon_phase_label"`
	// PlanetaryRuler counts from the weekday of Sunrise, so the night hours
	// after civil midnight still belong to the previous day.
	PlanetaryRuler    string        `json:"planetary_ruler"`
}

// Calculate resolves the Roman hour at now for c. The civil day, and with it
// the calendar date and weekday, is read in now's location.
func Calculate(now time.Time, c GeoCoordinate) Snapshot {
	events := Window(now, c)
	start, end, _ := findBracket(events, now)

	isDay := start.Kind == Sunrise
	span := end.Time.Sub(start.Time)
	hourLen := span.Minutes() / 12
	hour := hourIndex(now.Sub(start.Time).Minutes(), hourLen)

	s := Snapshot{
		ComputedAt:        now,
		Coordinate:        c,
		RomanHour:         hour,
		IsDay:             isDay,
		Period:            PeriodNight,
		HourName:          HourName(hour, isDay),
		HourLengthMinutes: hourLen,
		HourStart:         start.Time.Add(span * time.Duration(hour-1) / 12),
		HourEnd:           start.Time.Add(span * time.Duration(hour) / 12),
	}

	if isDay {
		s.Period = PeriodDay
		s.Sunrise = start.Time
		s.Sunset = end.Time
		s.NextSunrise = nextSunrise(events, end.Time)
	} else {
		s.Sunrise = previousSunrise(events, start.Time)
		s.Sunset = start.Time
		s.NextSunrise = end.Time
	}

	loc := now.Location()
	date := calendar.RomanDate(now)
	s.RomanDateShort = date.Short
	s.RomanDateFull = date.Full

	s.MoonPhase = lunar.Phase(now)
	s.MoonPhaseLabel = lunar.PhaseName(s.MoonPhase)

	// the planetary day runs from sunrise to sunrise
	s.PlanetaryRuler = planetary.Ruler(hour, isDay, s.Sunrise.In(loc).Weekday())

	return s
}

// EventKind tells a sunrise from a sunset.
type EventKind int

const (
	Sunrise EventKind = iota
	Sunset
)

func (k EventKind) String() string {
	if k == Sunset {
		return "sunset"
	}
	return "sunrise"
}

// SunEvent is one sunrise or sunset.
type SunEvent struct {
	Time time.Time
	Kind EventKind
}

// windowDays is how many civil days either side of now are searched.
const windowDays = 2

// Window returns the sunrises and sunsets of the civil days from two days
// before now through two days after, in chronological order. Events at the
// same instant keep sunrise first.
func Window(now time.Time, c GeoCoordinate) []SunEvent {
	events := make([]SunEvent, 0, 2*(2*windowDays+1))
	for i := -windowDays; i <= windowDays; i++ {
		st := solar.SunTimes(now.AddDate(0, 0, i), c.Latitude, c.Longitude)
		events = append(events,
			SunEvent{Time: st.Sunrise, Kind: Sunrise},
			SunEvent{Time: st.Sunset, Kind: Sunset},
		)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})
	return events
}

// bracketFallback is the length of a synthesized bracket.
const bracketFallback = 12 * time.Hour

// findBracket returns the adjacent pair of events with start <= now < end.
// When now lies outside the window a 12 hour bracket of the opposite kind is
// synthesized against the nearest event, and ok is false.
func findBracket(events []SunEvent, now time.Time) (start, end SunEvent, ok bool) {
	for i := 0; i+1 < len(events); i++ {
		if !now.Before(events[i].Time) && now.Before(events[i+1].Time) {
			return events[i], events[i+1], true
		}
	}

	if len(events) == 0 {
		// nothing to anchor on; call it day starting now
		return SunEvent{Time: now, Kind: Sunrise}, SunEvent{Time: now.Add(bracketFallback), Kind: Sunset}, false
	}

	first, last := events[0], events[len(events)-1]
	if now.Before(first.Time) {
		return SunEvent{Time: first.Time.Add(-bracketFallback), Kind: opposite(first.Kind)}, first, false
	}
	return last, SunEvent{Time: last.Time.Add(bracketFallback), Kind: opposite(last.Kind)}, false
}

func opposite(k EventKind) EventKind {
	if k == Sunrise {
		return Sunset
	}
	return Sunrise
}

// nextSunrise returns the first sunrise strictly after t.
func nextSunrise(events []SunEvent, t time.Time) time.Time {
	for _, e := range events {
		if e.Kind == Sunrise && e.Time.After(t) {
			return e.Time
		}
	}
	return t.Add(bracketFallback)
}

// previousSunrise returns the last sunrise at or before t.
func previousSunrise(events []SunEvent, t time.Time) time.Time {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == Sunrise && !events[i].Time.After(t) {
			return events[i].Time
		}
	}
	return t.Add(-bracketFallback)
}

// hourIndex converts minutes elapsed in a bracket into a Roman hour. Rounding
// can push the result to 0 or 13; it is clamped back into [1,12].
func hourIndex(elapsed, hourLen float64) int {
	if hourLen <= 0 || math.IsNaN(elapsed) || math.IsNaN(hourLen) {
		return 1
	}
	h := math.Floor(elapsed/hourLen) + 1
	if h < 1 {
		return 1
	}
	if h > 12 {
		return 12
	}
	return int(h)
}

func clampHour(h int) int {
	if h < 1 {
		return 1
	}
	if h > 12 {
		return 12
	}
	return h
}
