// Package depth implements the logarithmic depth function shared by every shading stage.
// The Go functions mirror the WGSL include in assets/log_depth.wgsl one to one so that
// CPU-side tests and the GPU agree on how clip depth is remapped.
package depth

import (
	_ "embed"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the lower bound applied to the logarithm argument.
const Epsilon = 1e-6

// ClearValue is the depth the attachment is cleared to, the remapped far plane.
const ClearValue = 1.0

// LogDepthSource is the canonical WGSL implementation of the logarithmic depth function.
// Injected into stage sources through the log_depth include annotation.
//
//go:embed assets/log_depth.wgsl
var LogDepthSource string

// FarCoefficient returns 1 / log2(C*far + 1).
//
// Parameters:
//   - constant: the log depth constant C
//   - far: the far plane distance
//
// Returns:
//   - float32: the far coefficient
func FarCoefficient(constant, far float32) float32 {
	return 1 / log2(constant*far+1)
}

// Remap returns the logarithmic clip-space depth for a vertex. The GPU divides the result
// by clipW, which leaves log2(1 + C*w) * Fcoef in the depth buffer.
// When clipW <= 0 the vertex is behind the camera and clipZ is returned unchanged.
//
// Parameters:
//   - clipZ: the projected clip-space z
//   - clipW: the projected clip-space w (view-space distance along the forward axis)
//   - constant: the log depth constant C
//   - far: the far plane distance
//
// Returns:
//   - float32: the remapped clip-space z
func Remap(clipZ, clipW, constant, far float32) float32 {
	if clipW <= 0 {
		return clipZ
	}
	return log2(max(Epsilon, 1+constant*clipW)) * FarCoefficient(constant, far) * clipW
}

// Normalized returns the post-divide depth that lands in the depth buffer for a given clip w.
// Equals 1 at w == far and 0 at w == 0.
func Normalized(clipW, constant, far float32) float32 {
	return log2(max(Epsilon, 1+constant*clipW)) * FarCoefficient(constant, far)
}

// ApplyToClip rewrites the z component of a clip position with Remap.
//
// Parameters:
//   - clip: the clip-space position produced by an MVP product
//   - constant: the log depth constant C
//   - far: the far plane distance
//
// Returns:
//   - mgl32.Vec4: the clip position with logarithmic depth
func ApplyToClip(clip mgl32.Vec4, constant, far float32) mgl32.Vec4 {
	clip[2] = Remap(clip[2], clip[3], constant, far)
	return clip
}

// ForceFar pins a clip position to the far plane (z = w) so that it divides to depth 1.
func ForceFar(clip mgl32.Vec4) mgl32.Vec4 {
	clip[2] = clip[3]
	return clip
}

func log2(v float32) float32 {
	return float32(math.Log2(float64(v)))
}
