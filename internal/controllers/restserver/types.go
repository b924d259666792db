package restserver

import (
	"time"

	"github.com/chrissnell/horologium/internal/almanac"
	"github.com/chrissnell/horologium/internal/weather"
	"github.com/chrissnell/horologium/pkg/calendar"
	"github.com/chrissnell/horologium/pkg/lunar"
	"github.com/chrissnell/horologium/pkg/romantime"
	"github.com/chrissnell/horologium/pkg/solar"
)

// DateLayout is the civil date format accepted and returned by the API
const DateLayout = "2006-01-02"

// NowResponse is the live clock state. Day, Events and Weather are null when
// their source is unavailable.
type NowResponse struct {
	Location romantime.GeoCoordinate   `json:"location"`
	Timezone string                    `json:"timezone"`
	Time     *romantime.Snapshot       `json:"time"`
	Day      *almanac.DayInfo          `json:"day"`
	Events   []almanac.HistoricalEvent `json:"events"`
	Weather  *weather.Report           `json:"weather"`
}

type SunResponse struct {
	Date             string    `json:"date"`
	Timezone         string    `json:"timezone"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Sunrise          time.Time `json:"sunrise"`
	Sunset           time.Time `json:"sunset"`
	SolarNoon        time.Time `json:"solar_noon"`
	Declination      float64   `json:"declination"`
	Kind             string    `json:"kind"`
	DayLengthMinutes float64   `json:"day_length_minutes"`
	DayHourMinutes   float64   `json:"day_hour_minutes"`
	NightHourMinutes float64   `json:"night_hour_minutes"`
}

type MoonResponse struct {
	ComputedAt   time.Time `json:"computed_at"`
	Phase        float64   `json:"phase"`
	PhaseName    string    `json:"phase_name"`
	Elongation   float64   `json:"elongation"`
	Illumination float64   `json:"illumination"`
	AgeDays      float64   `json:"age_days"`
	IsWaxing     bool      `json:"is_waxing"`
}

// NewSunResponse computes the solar times and hour lengths for the civil day
// of date in zone
func NewSunResponse(date time.Time, zone *time.Location, coord romantime.GeoCoordinate) SunResponse {
	st := solar.SunTimes(date, coord.Latitude, coord.Longitude)
	day := st.DayLength()

	return SunResponse{
		Date:             date.Format(DateLayout),
		Timezone:         zone.String(),
		Latitude:         coord.Latitude,
		Longitude:        coord.Longitude,
		Sunrise:          st.Sunrise,
		Sunset:           st.Sunset,
		SolarNoon:        st.SolarNoon,
		Declination:      st.Declination,
		Kind:             st.Kind.String(),
		DayLengthMinutes: day.Minutes(),
		DayHourMinutes:   day.Minutes() / 12,
		NightHourMinutes: (24*time.Hour - day).Minutes() / 12,
	}
}

func NewMoonResponse(at time.Time) MoonResponse {
	m := lunar.Calculate(at)
	return MoonResponse{
		ComputedAt:   at,
		Phase:        m.Phase,
		PhaseName:    m.PhaseName,
		Elongation:   m.Elongation,
		Illumination: m.Illumination,
		AgeDays:      m.AgeDays,
		IsWaxing:     m.IsWaxing,
	}
}

type DateResponse struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Short   string `json:"short"`
	Full    string `json:"full"`
}

func NewDateResponse(date time.Time) DateResponse {
	rd := calendar.RomanDate(date)
	return DateResponse{
		Date:    date.Format(DateLayout),
		Weekday: date.Weekday().String(),
		Short:   rd.Short,
		Full:    rd.Full,
	}
}

type DayResponse struct {
	Date     string `json:"date"`
	MonthDay string `json:"month_day"`
	almanac.DayInfo
	Events []almanac.HistoricalEvent `json:"events"`
}

// LocationRequest is the body of PUT /location
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}
