package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// State is the immutable per-frame camera snapshot. It is produced once per frame by
// Camera.State and read concurrently by every draw packed for that frame.
type State struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat

	// Direction is the unit forward vector.
	Direction mgl64.Vec3
	Up        mgl64.Vec3

	View             mgl64.Mat4
	RotationOnlyView mgl64.Mat4
	Projection       mgl64.Mat4

	Fov    float64 // radians
	Aspect float64
	Near   float64
	Far    float64

	// LogDepthConstant scales clip w inside the logarithmic depth function.
	LogDepthConstant float64
}

// ViewProjection returns Projection * View.
func (s State) ViewProjection() mgl64.Mat4 {
	return s.Projection.Mul4(s.View)
}

// RelativeViewProjection returns Projection * RotationOnlyView, which maps camera-relative
// world positions (world - Position) to clip space without large translations.
func (s State) RelativeViewProjection() mgl64.Mat4 {
	return s.Projection.Mul4(s.RotationOnlyView)
}

// FarCoefficient returns 1 / log2(C*far + 1), the scale of the logarithmic depth function.
func (s State) FarCoefficient() float64 {
	return 1.0 / math.Log2(s.LogDepthConstant*s.Far+1)
}

// FcConstant returns 1 / ln(C*far + 1), the natural-log form carried in the transform uniform.
func (s State) FcConstant() float64 {
	return 1.0 / math.Log(s.LogDepthConstant*s.Far+1)
}

// Relative returns a world position expressed relative to the camera.
func (s State) Relative(world mgl64.Vec3) mgl64.Vec3 {
	return world.Sub(s.Position)
}

// ToCameraSpace rotates a world position into camera space (camera at origin, -Z forward).
// The subtraction happens in float64 before the rotation.
func (s State) ToCameraSpace(world mgl64.Vec3) mgl64.Vec3 {
	return s.RotationOnlyView.Mul4x1(s.Relative(world).Vec4(1)).Vec3()
}

// DirectionToCameraSpace rotates a world-space direction into camera space.
func (s State) DirectionToCameraSpace(dir mgl64.Vec3) mgl64.Vec3 {
	return s.RotationOnlyView.Mul4x1(dir.Vec4(0)).Vec3()
}
