package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/chrissnell/horologium/pkg/calendar"
	"github.com/chrissnell/horologium/pkg/julian"
	"github.com/chrissnell/horologium/pkg/lunar"
)

// Transition is the first minute of a phase-name band
type Transition struct {
	At   time.Time
	Name string
}

func main() {
	var (
		timeStr = flag.String("time", "", "Instant to start from (RFC3339, e.g. 2024-01-15T12:00:00Z); default now")
		tz      = flag.String("tz", "UTC", "IANA timezone for printed times and Roman dates")
		count   = flag.Int("next", 8, "Number of upcoming phase changes to list")
	)
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timezone: %v\n", err)
		os.Exit(1)
	}

	t := time.Now()
	if *timeStr != "" {
		t, err = time.Parse(time.RFC3339, *timeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", err)
			os.Exit(1)
		}
	}
	t = t.In(loc)

	m := lunar.Calculate(t)
	direction := "decrescens"
	if m.IsWaxing {
		direction = "crescens"
	}
	fmt.Printf("%s, %s\n", t.Format("2006-01-02 15:04 MST"), calendar.RomanDate(t).Full)
	fmt.Printf("  JD %.4f, luna %s\n", julian.FromTime(t), direction)
	fmt.Printf("  %s: %.1f%% lit, %.1f days old, elongation %.1f°\n",
		m.PhaseName, m.Illumination*100, m.AgeDays, m.Elongation)

	if *count <= 0 {
		return
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Begins\tRoman date\tPhase\n")
	for _, tr := range Transitions(t, *count) {
		at := tr.At.In(loc)
		fmt.Fprintf(w, "%s\t%s\t%s\n", at.Format("2006-01-02 15:04"), calendar.RomanDate(at).Short, tr.Name)
	}
	w.Flush()
}

// Transitions returns the next n changes of lunar.PhaseName after from,
// located to the minute.
func Transitions(from time.Time, n int) []Transition {
	out := make([]Transition, 0, n)
	prev := from
	name := lunar.Calculate(from).PhaseName

	// the narrowest band lasts well over a day
	for len(out) < n {
		next := prev.Add(time.Hour)
		nextName := lunar.Calculate(next).PhaseName
		if nextName != name {
			out = append(out, Transition{At: bisect(prev, next, name), Name: nextName})
			name = nextName
		}
		prev = next
	}
	return out
}

// bisect narrows [lo, hi) to the first minute whose phase name differs from
// name
func bisect(lo, hi time.Time, name string) time.Time {
	for hi.Sub(lo) > time.Minute {
		mid := lo.Add(hi.Sub(lo) / 2)
		if lunar.Calculate(mid).PhaseName == name {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}
