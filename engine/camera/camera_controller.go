package camera

import "github.com/go-gl/mathgl/mgl64"

// Movement identifies a discrete flight movement applied over a frame's delta time.
type Movement int

const (
	MovementForward Movement = iota
	MovementBackward
	MovementLeft
	MovementRight
	MovementUp
	MovementDown
	MovementRollLeft
	MovementRollRight
)

// CameraController defines the interface for the free-flight camera controller.
// Controllers own positional state (extended-precision position and orientation quaternion).
// The Camera reads from its controller and computes view/projection matrices.
type CameraController interface {
	// Position returns the camera's world-space position in extended precision.
	//
	// Returns:
	//   - mgl64.Vec3: world-space camera position in meters
	Position() mgl64.Vec3

	// Rotation returns the camera's orientation. The identity quaternion looks down -Z.
	//
	// Returns:
	//   - mgl64.Quat: the normalized orientation
	Rotation() mgl64.Quat

	// Front returns the forward (-Z rotated) unit vector.
	Front() mgl64.Vec3

	// Up returns the up (+Y rotated) unit vector.
	Up() mgl64.Vec3

	// Right returns the right (+X rotated) unit vector.
	Right() mgl64.Vec3

	// SetPosition sets the camera's world-space position directly.
	//
	// Parameters:
	//   - position: world-space coordinates in meters
	SetPosition(position mgl64.Vec3)

	// SetRotation replaces the orientation. The quaternion is normalized.
	//
	// Parameters:
	//   - rotation: the new orientation
	SetRotation(rotation mgl64.Quat)

	// Rotate applies yaw, pitch and roll deltas (degrees) around the camera's local axes.
	//
	// Parameters:
	//   - yawDeg: rotation around local Y
	//   - pitchDeg: rotation around local X
	//   - rollDeg: rotation around local Z
	Rotate(yawDeg, pitchDeg, rollDeg float64)

	// ProcessMouseMovement converts pointer offsets to yaw and pitch using the sensitivity.
	//
	// Parameters:
	//   - xOffset, yOffset: pointer deltas
	ProcessMouseMovement(xOffset, yOffset float64)

	// ProcessScroll scales the movement speed by 1.2637 per scroll step, clamped to [1e-10, 1e12].
	//
	// Parameters:
	//   - yOffset: scroll delta
	ProcessScroll(yOffset float64)

	// ProcessMovement moves or rolls the camera for one frame.
	//
	// Parameters:
	//   - movement: the movement direction
	//   - deltaTime: frame time in seconds
	ProcessMovement(movement Movement, deltaTime float64)

	// ChangeSpeed scales the movement speed by 1.1^delta (or 0.9^-delta), clamped to [1, 1e12].
	//
	// Parameters:
	//   - delta: number of speed steps
	ChangeSpeed(delta float64)

	// Speed returns the current movement speed in meters per second.
	Speed() float64

	// LookAt resets the orientation and places the camera distance meters along +Z from target.
	//
	// Parameters:
	//   - target: world-space point to look at
	//   - distance: distance from the target in meters
	LookAt(target mgl64.Vec3, distance float64)

	// PositionRelativeToBody places the camera at radius*multiplier along +Z from a body.
	//
	// Parameters:
	//   - bodyPosition: world-space body center
	//   - bodyRadius: body radius in meters
	//   - multiplier: distance in body radii
	PositionRelativeToBody(bodyPosition mgl64.Vec3, bodyRadius, multiplier float64)

	// LockToObject records an object position the camera follows.
	LockToObject(position mgl64.Vec3)

	// Unlock stops following an object.
	Unlock()

	// Locked returns the followed object position and whether the camera is locked.
	Locked() (mgl64.Vec3, bool)
}
