package camera

import "github.com/go-gl/mathgl/mgl64"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPosition sets the initial world-space position.
//
// Parameters:
//   - position: world-space position in meters
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithPosition(position mgl64.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = position
	}
}

// WithRotation sets the initial orientation.
//
// Parameters:
//   - rotation: orientation quaternion, normalized on use
//
// Returns:
//   - CameraControllerOption: functional option to set the orientation
func WithRotation(rotation mgl64.Quat) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotation = rotation.Normalize()
	}
}

// WithSpeed sets the initial movement speed in meters per second.
//
// Parameters:
//   - speed: movement speed
//
// Returns:
//   - CameraControllerOption: functional option to set the speed
func WithSpeed(speed float64) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.speed = speed
	}
}

// WithSensitivity sets the degrees of rotation per unit of pointer movement.
//
// Parameters:
//   - sensitivity: pointer sensitivity
//
// Returns:
//   - CameraControllerOption: functional option to set the sensitivity
func WithSensitivity(sensitivity float64) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.sensitivity = sensitivity
	}
}
