// Package planetary assigns the traditional ruling body to each Roman hour.
package planetary

import "time"

// ChaldeanOrder lists the seven classical bodies from slowest to fastest.
var ChaldeanOrder = [7]string{
	"Saturnus",
	"Iuppiter",
	"Mars",
	"Sol",
	"Venus",
	"Mercurius",
	"Luna",
}

// dayStart maps each weekday to the index in ChaldeanOrder of the body that
// rules its first daylight hour.
var dayStart = [7]int{
	time.Sunday:    3, // Sol
	time.Monday:    6, // Luna
	time.Tuesday:   2, // Mars
	time.Wednesday: 5, // Mercurius
	time.Thursday:  1, // Iuppiter
	time.Friday:    4, // Venus
	time.Saturday:  0, // Saturnus
}

// Ruler returns the body ruling the given Roman hour of weekday. Night hours
// continue the day's sequence, so the first night hour is the thirteenth
// hour since sunrise. hour is clamped to [1,12].
func Ruler(hour int, isDay bool, weekday time.Weekday) string {
	return ChaldeanOrder[Index(hour, isDay, weekday)]
}

// Index is Ruler's position in ChaldeanOrder.
func Index(hour int, isDay bool, weekday time.Weekday) int {
	if hour < 1 {
		hour = 1
	}
	if hour > 12 {
		hour = 12
	}

	elapsed := hour - 1
	if !isDay {
		elapsed += 12
	}

	wd := (int(weekday)%7 + 7) % 7
	return (dayStart[wd] + elapsed) % 7
}
