package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ValidateMatrix32 reports whether every element of a reduced matrix is finite.
func ValidateMatrix32(m [16]float32) bool {
	for _, v := range m {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// ValidateMatrix64 reports whether every element of an extended-precision matrix is finite.
func ValidateMatrix64(m mgl64.Mat4) bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
