package common

import (
	"fmt"
	"math"
)

const (
	// AstronomicalUnit is one AU in meters.
	AstronomicalUnit = 149_597_870_700.0
	// LightYear is one light year in meters.
	LightYear = 9_460_730_472_580_800.0
	// SolarDiameterKm is the diameter of the sun in kilometers, the unit glow sizes are expressed in.
	SolarDiameterKm = 1_392_684.0
	// SolarTemperature is the effective surface temperature of the sun in kelvin.
	SolarTemperature = 5778.0
)

// FormatAstronomicalDistance renders a distance in meters with the largest fitting unit:
// m, km and Mm with one decimal, AU and ly with three.
//
// Parameters:
//   - meters: the distance in meters
//
// Returns:
//   - string: the formatted distance, e.g. "1.5 km" or "1.000 AU"
func FormatAstronomicalDistance(meters float64) string {
	abs := math.Abs(meters)
	switch {
	case abs < 1_000:
		return fmt.Sprintf("%.1f m", meters)
	case abs < 1_000_000:
		return fmt.Sprintf("%.1f km", meters/1_000)
	case abs < AstronomicalUnit:
		return fmt.Sprintf("%.1f Mm", meters/1_000_000)
	case abs < LightYear:
		return fmt.Sprintf("%.3f AU", meters/AstronomicalUnit)
	default:
		return fmt.Sprintf("%.3f ly", meters/LightYear)
	}
}
