// Package transform composes model, view and projection matrices in extended precision and
// reduces the products to the single-precision StandardTransform uniform consumed by every
// shading stage.
package transform

import (
	"math"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/go-gl/mathgl/mgl64"
)

// ObjectTransform is the extended-precision placement of one drawable object.
type ObjectTransform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// At returns an ObjectTransform at position with identity rotation and unit scale.
//
// Parameters:
//   - position: world-space position in meters
//
// Returns:
//   - ObjectTransform: the new transform
func At(position mgl64.Vec3) ObjectTransform {
	return ObjectTransform{
		Position: position,
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// WithUniformScale returns a copy of o scaled by s on every axis.
func (o ObjectTransform) WithUniformScale(s float64) ObjectTransform {
	o.Scale = mgl64.Vec3{s, s, s}
	return o
}

// WithRotation returns a copy of o with the given orientation.
func (o ObjectTransform) WithRotation(rotation mgl64.Quat) ObjectTransform {
	o.Rotation = rotation
	return o
}

// Model returns the world-space model matrix T*R*S.
func (o ObjectTransform) Model() mgl64.Mat4 {
	return common.ModelMatrix64(o.Position, o.Rotation, o.Scale)
}

// RelativeModel returns the model matrix with its translation expressed relative to the camera.
// The subtraction happens on float64 positions, before any matrix is composed.
//
// Parameters:
//   - cameraPosition: world-space camera position
//
// Returns:
//   - mgl64.Mat4: the camera-relative model matrix
func (o ObjectTransform) RelativeModel(cameraPosition mgl64.Vec3) mgl64.Mat4 {
	return common.ModelMatrix64(o.Position.Sub(cameraPosition), o.Rotation, o.Scale)
}

// BoundingRadius returns the radius of the unit sphere after scaling, used for culling.
func (o ObjectTransform) BoundingRadius() float64 {
	return max(math.Abs(o.Scale[0]), math.Abs(o.Scale[1]), math.Abs(o.Scale[2]))
}
