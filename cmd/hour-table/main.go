package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/chrissnell/horologium/pkg/calendar"
	"github.com/chrissnell/horologium/pkg/config"
	"github.com/chrissnell/horologium/pkg/solar"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func main() {
	var (
		lat   = flag.Float64("lat", config.DefaultLatitude, "Latitude in decimal degrees, north positive")
		lon   = flag.Float64("lon", config.DefaultLongitude, "Longitude in decimal degrees, east positive")
		tz    = flag.String("tz", config.DefaultTimezone, "IANA timezone of the civil clock")
		year  = flag.Int("year", time.Now().Year(), "Year to tabulate")
		daily = flag.Bool("daily", false, "Print every day instead of the first of each month")
	)
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timezone: %v\n", err)
		os.Exit(1)
	}

	rows := Tabulate(*year, *lat, *lon, loc)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Date\tRoman date\tSunrise\tSunset\tDay hour\tNight hour\n")
	for _, r := range rows {
		if !*daily && r.Date.Day() != 1 {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f min\t%.1f min\n",
			r.Date.Format("2006-01-02"), calendar.RomanDate(r.Date).Short,
			solar.FormatSunTime(r.Times.Sunrise, loc), solar.FormatSunTime(r.Times.Sunset, loc),
			r.DayHour, r.NightHour)
	}
	w.Flush()

	day, night := Summarize(rows)
	fmt.Printf("\n%d days at %.4f, %.4f\n", len(rows), *lat, *lon)
	fmt.Printf("  Day hours:   %s\n", day)
	fmt.Printf("  Night hours: %s\n", night)
}

// Row is one civil day of the table
type Row struct {
	Date      time.Time
	Times     solar.Times
	DayHour   float64 // minutes
	NightHour float64 // minutes
}

// Tabulate computes the Roman hour lengths for every day of year.
func Tabulate(year int, lat, lon float64, loc *time.Location) []Row {
	var rows []Row
	for d := time.Date(year, time.January, 1, 0, 0, 0, 0, loc); d.Year() == year; d = d.AddDate(0, 0, 1) {
		st := solar.SunTimes(d, lat, lon)
		day := st.DayLength()
		rows = append(rows, Row{
			Date:      d,
			Times:     st,
			DayHour:   day.Minutes() / 12,
			NightHour: (24*time.Hour - day).Minutes() / 12,
		})
	}
	return rows
}

// Stats summarizes a series of hour lengths in minutes
type Stats struct {
	Mean, StdDev, Min, Max float64
}

func (s Stats) String() string {
	return fmt.Sprintf("mean %.1f min, std dev %.1f, range %.1f to %.1f", s.Mean, s.StdDev, s.Min, s.Max)
}

// Summarize returns the statistics of the day and night hour lengths.
func Summarize(rows []Row) (day, night Stats) {
	if len(rows) == 0 {
		return Stats{}, Stats{}
	}
	dayHours := make([]float64, len(rows))
	nightHours := make([]float64, len(rows))
	for i, r := range rows {
		dayHours[i] = r.DayHour
		nightHours[i] = r.NightHour
	}
	return summarize(dayHours), summarize(nightHours)
}

func summarize(x []float64) Stats {
	mean, std := stat.MeanStdDev(x, nil)
	return Stats{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(x),
		Max:    floats.Max(x),
	}
}
