// Package calendar renders civil dates in the Roman style, counting
// inclusively down to the Kalends, Nones or Ides.
package calendar

import (
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Date is a Roman date in abbreviated and fully inflected form.
type Date struct {
	Short string `json:"short"`
	Full  string `json:"full"`
}

var (
	monthAbbrev = [12]string{
		"Ian", "Feb", "Mar", "Apr", "Mai", "Iun",
		"Iul", "Aug", "Sep", "Oct", "Nov", "Dec",
	}
	// after "ante diem ... Nonas/Idus/Kalendas" and "pridie"
	monthAccusative = [12]string{
		"Ianuarias", "Februarias", "Martias", "Apriles", "Maias", "Iunias",
		"Iulias", "Augustas", "Septembres", "Octobres", "Novembres", "Decembres",
	}
	// after "Kalendis/Nonis/Idibus"
	monthAblative = [12]string{
		"Ianuariis", "Februariis", "Martiis", "Aprilibus", "Maiis", "Iuniis",
		"Iuliis", "Augustis", "Septembribus", "Octobribus", "Novembribus", "Decembribus",
	}
	ordinals = map[int]string{
		3:  "tertium",
		4:  "quartum",
		5:  "quintum",
		6:  "sextum",
		7:  "septimum",
		8:  "octavum",
		9:  "nonum",
		10: "decimum",
		11: "undecimum",
		12: "duodecimum",
		13: "tertium decimum",
		14: "quartum decimum",
		15: "quintum decimum",
		16: "sextum decimum",
		17: "septimum decimum",
		18: "duodevicesimum",
		19: "undevicesimum",
	}
)

type reference struct {
	abbrev     string // short form, e.g. "Id"
	ablative   string // "Idibus"
	accusative string // "Idus"
}

var (
	kalends = reference{"Kal", "Kalendis", "Kalendas"}
	nones   = reference{"Non", "Nonis", "Nonas"}
	ides    = reference{"Id", "Idibus", "Idus"}
)

// longMonth reports whether m keeps its Nones on the 7th and Ides on the 15th.
func longMonth(m time.Month) bool {
	switch m {
	case time.March, time.May, time.July, time.October:
		return true
	}
	return false
}

// NonesDay returns the day of month of the Nones.
func NonesDay(m time.Month) int {
	if longMonth(m) {
		return 7
	}
	return 5
}

// IdesDay returns the day of month of the Ides.
func IdesDay(m time.Month) int {
	if longMonth(m) {
		return 15
	}
	return 13
}

// DaysIn returns the number of days in month m of year y (proleptic Gregorian).
func DaysIn(y int, m time.Month) int {
	switch m {
	case time.February:
		if julian.LeapYearGregorian(y) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	}
	return 31
}

// RomanDate returns the Roman form of the calendar date of date, read in
// date's own location. The short form carries the year in Roman numerals.
func RomanDate(date time.Time) Date {
	y, m, d := date.Date()
	mi := int(m) - 1

	var short, full string
	switch nonesDay, idesDay := NonesDay(m), IdesDay(m); {
	case d == 1:
		short, full = on(kalends, mi)
	case d < nonesDay:
		short, full = before(nones, nonesDay-d+1, mi)
	case d == nonesDay:
		short, full = on(nones, mi)
	case d < idesDay:
		short, full = before(ides, idesDay-d+1, mi)
	case d == idesDay:
		short, full = on(ides, mi)
	default:
		// remaining days, plus the Kalends of next month, counted inclusively
		short, full = before(kalends, DaysIn(y, m)-d+2, (mi+1)%12)
	}

	return Date{
		Short: short + " " + ToRoman(y),
		Full:  full,
	}
}

func on(ref reference, mi int) (string, string) {
	return ref.ablative + " " + monthAbbrev[mi],
		ref.ablative + " " + monthAblative[mi]
}

func before(ref reference, daysBefore, mi int) (string, string) {
	if daysBefore == 2 {
		return "Pridie " + ref.abbrev + " " + monthAbbrev[mi],
			"Pridie " + ref.accusative + " " + monthAccusative[mi]
	}
	return "a.d. " + ToRoman(daysBefore) + " " + ref.abbrev + " " + monthAbbrev[mi],
		"Ante diem " + ordinals[daysBefore] + " " + ref.accusative + " " + monthAccusative[mi]
}

var numerals = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// ToRoman renders n in Roman numerals. Values below 1 render as "".
func ToRoman(n int) string {
	var sb strings.Builder
	for _, nu := range numerals {
		for n >= nu.value {
			sb.WriteString(nu.symbol)
			n -= nu.value
		}
	}
	return sb.String()
}
