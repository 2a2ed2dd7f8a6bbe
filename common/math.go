package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Perspective64 creates a right-handed perspective projection matrix in extended precision.
// Uses the WebGPU clip space convention where depth lands in [0, 1] before any log remapping.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl64.Mat4: the projection matrix (column-major)
func Perspective64(fovY, aspect, near, far float64) mgl64.Mat4 {
	f := 1.0 / math.Tan(fovY/2.0)
	var out mgl64.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// LookAt64 creates a right-handed view matrix in extended precision.
// Degenerate inputs (eye == center or up parallel to the view axis) fall back to unit axes
// instead of producing NaN.
//
// Parameters:
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector defining camera orientation
//
// Returns:
//   - mgl64.Mat4: the view matrix (column-major)
func LookAt64(eye, center, up mgl64.Vec3) mgl64.Mat4 {
	z := eye.Sub(center)
	if l := z.Len(); l > 0 {
		z = z.Mul(1 / l)
	} else {
		z = mgl64.Vec3{0, 0, 1}
	}
	x := up.Cross(z)
	if l := x.Len(); l > 0 {
		x = x.Mul(1 / l)
	} else {
		x = mgl64.Vec3{1, 0, 0}
	}
	y := z.Cross(x)

	var out mgl64.Mat4
	out[0], out[4], out[8], out[12] = x[0], x[1], x[2], -x.Dot(eye)
	out[1], out[5], out[9], out[13] = y[0], y[1], y[2], -y.Dot(eye)
	out[2], out[6], out[10], out[14] = z[0], z[1], z[2], -z.Dot(eye)
	out[15] = 1
	return out
}

// ModelMatrix64 composes a model matrix as Translation * Rotation * Scale in extended precision.
//
// Parameters:
//   - position: world-space translation
//   - rotation: orientation quaternion (normalized before use)
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl64.Mat4: the model matrix (column-major)
func ModelMatrix64(position mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) mgl64.Mat4 {
	r := rotation.Normalize().Mat4()
	s := mgl64.Scale3D(scale[0], scale[1], scale[2])
	t := mgl64.Translate3D(position[0], position[1], position[2])
	return t.Mul4(r).Mul4(s)
}

// RemoveTranslation returns a copy of m with its translation column zeroed.
// Used for the skybox, which must stay centered on the camera at any camera magnitude.
func RemoveTranslation(m mgl64.Mat4) mgl64.Mat4 {
	m[12], m[13], m[14] = 0, 0, 0
	return m
}

// NormalMatrix64 returns the inverse-transpose of the upper 3x3 of m.
// Returns the plain upper 3x3 when it is singular.
func NormalMatrix64(m mgl64.Mat4) mgl64.Mat3 {
	upper := m.Mat3()
	if det := upper.Det(); det == 0 || math.IsNaN(det) {
		return upper
	}
	return upper.Inv().Transpose()
}

// ReduceMat4 rounds an extended-precision matrix to a GPU-ready column-major float32 array.
// This is the only place where 4x4 matrices lose precision.
//
// Parameters:
//   - m: the extended-precision matrix
//
// Returns:
//   - [16]float32: the reduced matrix
func ReduceMat4(m mgl64.Mat4) [16]float32 {
	var out [16]float32
	for i := range 16 {
		out[i] = float32(m[i])
	}
	return out
}

// ReduceMat3 rounds an extended-precision 3x3 matrix to float32.
func ReduceMat3(m mgl64.Mat3) [9]float32 {
	var out [9]float32
	for i := range 9 {
		out[i] = float32(m[i])
	}
	return out
}

// ReduceVec3 rounds an extended-precision vector to float32.
func ReduceVec3(v mgl64.Vec3) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Vec3 converts a reduced [3]float32 into an mgl32 vector.
func Vec3(v [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[1], v[2]}
}
