package calendar

import (
	"strings"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestRomanDate(t *testing.T) {
	tests := []struct {
		name  string
		date  time.Time
		short string
		full  string
	}{
		{"Kalends of March", day(2024, 3, 1), "Kalendis Mar MMXXIV", "Kalendis Martiis"},
		{"three days before the Nones", day(2024, 1, 3), "a.d. III Non Ian MMXXIV", "Ante diem tertium Nonas Ianuarias"},
		{"day before the Nones", day(2024, 1, 4), "Pridie Non Ian MMXXIV", "Pridie Nonas Ianuarias"},
		{"Nones of March on the 7th", day(2024, 3, 7), "Nonis Mar MMXXIV", "Nonis Martiis"},
		{"Nones of April on the 5th", day(2024, 4, 5), "Nonis Apr MMXXIV", "Nonis Aprilibus"},
		{"eight days before the Ides", day(2024, 3, 8), "a.d. VIII Id Mar MMXXIV", "Ante diem octavum Idus Martias"},
		{"day before the Ides", day(2024, 3, 13), "Pridie Id Mar MMXXIV", "Pridie Idus Martias"},
		{"Ides of March", day(2024, 3, 15), "Idibus Mar MMXXIV", "Idibus Martiis"},
		{"Ides of September on the 13th", day(2024, 9, 13), "Idibus Sep MMXXIV", "Idibus Septembribus"},
		{"countdown to the Kalends", day(2024, 3, 16), "a.d. XVII Kal Apr MMXXIV", "Ante diem septimum decimum Kalendas Apriles"},
		{"day before the Kalends", day(2024, 3, 31), "Pridie Kal Apr MMXXIV", "Pridie Kalendas Apriles"},
		{"year end rolls to January", day(2024, 12, 31), "Pridie Kal Ian MMXXIV", "Pridie Kalendas Ianuarias"},
		{"eighteen days before the Kalends", day(2024, 1, 15), "a.d. XVIII Kal Feb MMXXIV", "Ante diem duodevicesimum Kalendas Februarias"},
		{"nineteen days before the Kalends", day(2024, 1, 14), "a.d. XIX Kal Feb MMXXIV", "Ante diem undevicesimum Kalendas Februarias"},
		{"leap February", day(2024, 2, 14), "a.d. XVII Kal Mar MMXXIV", "Ante diem septimum decimum Kalendas Martias"},
		{"common February", day(2023, 2, 14), "a.d. XVI Kal Mar MMXXIII", "Ante diem sextum decimum Kalendas Martias"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RomanDate(tt.date)
			if got.Short != tt.short {
				t.Errorf("Short = %q, expected %q", got.Short, tt.short)
			}
			if got.Full != tt.full {
				t.Errorf("Full = %q, expected %q", got.Full, tt.full)
			}
		})
	}
}

func TestRomanDateUsesLocalDate(t *testing.T) {
	// 23:30 UTC on the 14th is already the Ides in Zurich.
	instant := time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC)
	zurich := time.FixedZone("CET", 3600)

	if got := RomanDate(instant.In(zurich)).Full; got != "Idibus Martiis" {
		t.Errorf("Full = %q, expected Idibus Martiis", got)
	}
	if got := RomanDate(instant).Full; got != "Pridie Idus Martias" {
		t.Errorf("Full = %q, expected Pridie Idus Martias", got)
	}
}

func TestRomanDateEveryDay(t *testing.T) {
	start := day(2023, 1, 1)
	for i := 0; i < 731; i++ {
		date := start.AddDate(0, 0, i)
		got := RomanDate(date)
		_, m, d := date.Date()

		switch d {
		case 1:
			if !strings.HasPrefix(got.Full, "Kalendis ") {
				t.Errorf("%v: expected Kalends form, got %q", date, got.Full)
			}
		case NonesDay(m):
			if !strings.HasPrefix(got.Full, "Nonis ") {
				t.Errorf("%v: expected Nones form, got %q", date, got.Full)
			}
		case IdesDay(m):
			if !strings.HasPrefix(got.Full, "Idibus ") {
				t.Errorf("%v: expected Ides form, got %q", date, got.Full)
			}
		case IdesDay(m) - 1, NonesDay(m) - 1, DaysIn(date.Year(), m):
			if !strings.HasPrefix(got.Full, "Pridie ") || !strings.HasPrefix(got.Short, "Pridie ") {
				t.Errorf("%v: expected pridie idiom, got %q / %q", date, got.Short, got.Full)
			}
		default:
			if !strings.HasPrefix(got.Full, "Ante diem ") {
				t.Errorf("%v: expected countdown, got %q", date, got.Full)
			}
			if strings.Contains(got.Full, "  ") {
				t.Errorf("%v: missing ordinal in %q", date, got.Full)
			}
		}

		if strings.Contains(got.Short, "a.d. II ") {
			t.Errorf("%v: numeric countdown of two in %q", date, got.Short)
		}
	}
}

func TestNonesIdes(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		n, i := NonesDay(m), IdesDay(m)
		if i-n != 8 {
			t.Errorf("%v: Nones %d and Ides %d are not eight days apart", m, n, i)
		}
	}
	if NonesDay(time.October) != 7 || IdesDay(time.October) != 15 {
		t.Error("October should have Nones on the 7th and Ides on the 15th")
	}
	if NonesDay(time.June) != 5 || IdesDay(time.June) != 13 {
		t.Error("June should have Nones on the 5th and Ides on the 13th")
	}
}

func TestDaysIn(t *testing.T) {
	tests := []struct {
		year     int
		month    time.Month
		expected int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}

	for _, tt := range tests {
		if got := DaysIn(tt.year, tt.month); got != tt.expected {
			t.Errorf("DaysIn(%d, %v) = %d, expected %d", tt.year, tt.month, got, tt.expected)
		}
		// cross-check with the standard library's normalization
		if want := time.Date(tt.year, tt.month+1, 0, 0, 0, 0, 0, time.UTC).Day(); want != tt.expected {
			t.Errorf("stdlib disagrees for %d-%v: %d", tt.year, tt.month, want)
		}
	}
}

func TestToRoman(t *testing.T) {
	tests := []struct {
		n        int
		expected string
	}{
		{-5, ""},
		{0, ""},
		{1, "I"},
		{4, "IV"},
		{9, "IX"},
		{14, "XIV"},
		{18, "XVIII"},
		{40, "XL"},
		{90, "XC"},
		{400, "CD"},
		{1994, "MCMXCIV"},
		{2024, "MMXXIV"},
		{3999, "MMMCMXCIX"},
	}

	for _, tt := range tests {
		if got := ToRoman(tt.n); got != tt.expected {
			t.Errorf("ToRoman(%d) = %q, expected %q", tt.n, got, tt.expected)
		}
	}
}
