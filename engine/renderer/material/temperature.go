package material

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
)

// TemperatureSource is the WGSL implementation of TemperatureToU, injected into the sun and
// lens glow stages through the temperature include annotation.
//
//go:embed assets/temperature.wgsl
var TemperatureSource string

// Temperature domain of the sun and lens glow spectrum lookups, in Kelvin.
const (
	MinTemperature = 800.0
	MaxTemperature = 30000.0

	// SolarTemperature is the default material temperature.
	SolarTemperature = 5778.0
)

// ErrTemperatureRange is returned when a star temperature lies outside the spectrum domain.
var ErrTemperatureRange = errors.New("temperature outside [800, 30000] K")

// TemperatureToU maps a temperature linearly onto the spectrum texture coordinate.
// 800 K maps to 0 and 30000 K to 1. Values outside the domain are not clamped.
func TemperatureToU(kelvin float32) float32 {
	return (kelvin - MinTemperature) / (MaxTemperature - MinTemperature)
}

// ValidateTemperature checks that a temperature lies inside the spectrum domain.
//
// Parameters:
//   - kelvin: the temperature
//
// Returns:
//   - error: ErrTemperatureRange wrapped with the value, or nil
func ValidateTemperature(kelvin float32) error {
	if math.IsNaN(float64(kelvin)) || kelvin < MinTemperature || kelvin > MaxTemperature {
		return fmt.Errorf("%w: %v", ErrTemperatureRange, kelvin)
	}
	return nil
}
