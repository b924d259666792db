// Package lunar estimates the phase of the Moon from the Meeus periodic terms
// of the lunar elongation. The mean elongation is carried linearly from a
// recent observed new moon instead of the J2000.0 polynomial, so the secular
// error stays small for present-day dates. Accuracy is a few hours of phase.
package lunar

import (
	"math"
	"time"

	"github.com/chrissnell/horologium/pkg/julian"
)

// SynodicMonth is the average length of the lunar cycle in days
const SynodicMonth = 29.530588853

const (
	// anchorJD is the new moon of 2025-11-20 06:47 UTC.
	anchorJD = 2460999.7826
	// mean daily motion of the elongation, degrees
	elongationRate = 12.19074912
)

// MoonPhase contains calculated moon phase information
type MoonPhase struct {
	Phase        float64 // Phase fraction [0,1): 0=new, 0.5=full
	Elongation   float64 // Sun→Moon angle in degrees [0,360)
	Illumination float64 // Illuminated fraction [0,1]: 0=new, 1=full
	AgeDays      float64 // Days since new moon [0,SynodicMonth)
	IsWaxing     bool    // True when moon is waxing (getting fuller)
	PhaseName    string  // Latin phase name
}

// Phase returns the lunar phase at t as a fraction in [0,1), where 0 is new
// moon and 0.5 is full moon.
func Phase(t time.Time) float64 {
	return elongation(julian.FromTime(t)) / 360.0
}

// Calculate computes the moon phase for a given timestamp
func Calculate(t time.Time) MoonPhase {
	e := elongation(julian.FromTime(t))
	phase := e / 360.0
	illumination := (1 - math.Cos(degToRad(e))) / 2

	return MoonPhase{
		Phase:        phase,
		Elongation:   e,
		Illumination: illumination,
		AgeDays:      phase * SynodicMonth,
		IsWaxing:     e < 180,
		PhaseName:    PhaseName(phase),
	}
}

// PhaseName returns the Latin name of the phase band containing phase.
func PhaseName(phase float64) string {
	switch {
	case phase < 0.03 || phase > 0.97:
		return "Novilunium"
	case phase < 0.22:
		return "Luna Crescens"
	case phase < 0.28:
		return "Prima Quadra"
	case phase < 0.47:
		return "Gibbosa Crescens"
	case phase < 0.53:
		return "Plenilunium"
	case phase < 0.72:
		return "Gibbosa Decrescens"
	case phase < 0.78:
		return "Ultima Quadra"
	default:
		return "Luna Decrescens"
	}
}

// elongation returns the Sun→Moon elongation in degrees [0,360) at jd
func elongation(jd float64) float64 {
	T := julian.Centuries(jd)

	// Sun mean anomaly
	M := degToRad(normalizeAngle(357.52911 + 35999.05029*T - 0.0001537*T*T))
	// Moon mean anomaly
	Mp := degToRad(normalizeAngle(134.96340 + 477198.86752*T + 0.0086972*T*T))

	// Calibrated mean elongation
	D := (jd - anchorJD) * elongationRate
	Drad := degToRad(normalizeAngle(D))

	// Equation of center, annual equation, evection, variation,
	// second-order center term and parallactic inequality
	e := D +
		6.289*math.Sin(Mp) -
		2.100*math.Sin(M) +
		1.274*math.Sin(2*Drad-Mp) +
		0.658*math.Sin(2*Drad) +
		0.214*math.Sin(2*Mp) +
		0.110*math.Sin(Drad)

	return normalizeAngle(e)
}

// normalizeAngle wraps an angle to the range [0, 360)
func normalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	// a tiny negative remainder rounds up to exactly 360 above
	if angle >= 360 {
		angle = 0
	}
	return angle
}

// degToRad converts degrees to radians
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
