package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/horologium/internal/almanac"
	"github.com/chrissnell/horologium/pkg/config"
	"github.com/chrissnell/horologium/pkg/romantime"
	"github.com/chrissnell/horologium/pkg/solar"
)

func main() {
	var (
		lat     = flag.Float64("lat", config.DefaultLatitude, "Latitude in decimal degrees, north positive")
		lon     = flag.Float64("lon", config.DefaultLongitude, "Longitude in decimal degrees, east positive")
		tz      = flag.String("tz", config.DefaultTimezone, "IANA timezone of the civil clock")
		timeStr = flag.String("time", "", "Instant to resolve (RFC3339); default now")
		asJSON  = flag.Bool("json", false, "Print the snapshot as JSON")
	)
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timezone: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	if *timeStr != "" {
		now, err = time.Parse(time.RFC3339, *timeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", err)
			os.Exit(1)
		}
	}
	now = now.In(loc)

	s := romantime.Calculate(now, romantime.GeoCoordinate{Latitude: *lat, Longitude: *lon})

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding snapshot: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Roman time at %.4f, %.4f for %s\n", *lat, *lon, now.Format(time.RFC1123))
	fmt.Printf("  Hour:         %s (%s, %d of 12)\n", s.HourName, s.Period, s.RomanHour)
	fmt.Printf("  Hour spans:   %s to %s (%.1f min)\n",
		solar.FormatSunTime(s.HourStart, loc), solar.FormatSunTime(s.HourEnd, loc), s.HourLengthMinutes)
	fmt.Printf("  Sunrise:      %s\n", solar.FormatSunTime(s.Sunrise, loc))
	fmt.Printf("  Sunset:       %s\n", solar.FormatSunTime(s.Sunset, loc))
	fmt.Printf("  Next sunrise: %s\n", s.NextSunrise.In(loc).Format("Mon 3:04 PM"))
	fmt.Printf("  Date:         %s\n", s.RomanDateShort)
	fmt.Printf("                %s\n", s.RomanDateFull)
	fmt.Printf("  Moon:         %s (%.2f)\n", s.MoonPhaseLabel, s.MoonPhase)
	fmt.Printf("  Ruler:        %s\n", s.PlanetaryRuler)

	p, err := almanac.NewYAMLProvider("")
	if err != nil {
		return
	}
	md := almanac.MonthDayOf(now)
	info, _ := p.DayInfo(context.Background(), md)
	fmt.Printf("  Day:          %s, sacred to %s\n", info.StatusFull, info.Deity)
	if info.Festival != "" {
		fmt.Printf("  Festival:     %s\n", info.Festival)
	}
	events, _ := p.Events(context.Background(), md)
	for _, e := range events {
		fmt.Printf("  Hoc die:      %s (%s)\n", e.Latin, e.Translation)
	}
}
