package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	scrollSpeedStep = 1.2637
	rollRateDeg     = 90.0

	minScrollSpeed = 1e-10
	minStepSpeed   = 1.0
	maxSpeed       = 1e12
)

// cameraControllerImpl is the single implementation of CameraController.
// Position is kept in float64 so that camera magnitudes of 1e13 m survive every update.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position mgl64.Vec3
	rotation mgl64.Quat

	speed       float64
	sensitivity float64

	locked       bool
	lockedTarget mgl64.Vec3
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new flight controller at the origin looking down -Z.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:          &sync.Mutex{},
		rotation:    mgl64.QuatIdent(),
		speed:       0.0794,
		sensitivity: 0.2,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Position() mgl64.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Rotation() mgl64.Quat {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotation
}

func (cc *cameraControllerImpl) Front() mgl64.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotation.Rotate(mgl64.Vec3{0, 0, -1})
}

func (cc *cameraControllerImpl) Up() mgl64.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotation.Rotate(mgl64.Vec3{0, 1, 0})
}

func (cc *cameraControllerImpl) Right() mgl64.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotation.Rotate(mgl64.Vec3{1, 0, 0})
}

func (cc *cameraControllerImpl) SetPosition(position mgl64.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = position
}

func (cc *cameraControllerImpl) SetRotation(rotation mgl64.Quat) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotation = rotation.Normalize()
}

func (cc *cameraControllerImpl) Rotate(yawDeg, pitchDeg, rollDeg float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotate(yawDeg, pitchDeg, rollDeg)
}

func (cc *cameraControllerImpl) ProcessMouseMovement(xOffset, yOffset float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotate(xOffset*cc.sensitivity, -yOffset*cc.sensitivity, 0)
}

func (cc *cameraControllerImpl) ProcessScroll(yOffset float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	step := scrollSpeedStep
	if yOffset <= 0 {
		step = 1 / scrollSpeedStep
	}
	cc.speed *= math.Pow(step, math.Abs(yOffset))
	cc.speed = common.Clamp(cc.speed, minScrollSpeed, maxSpeed)
}

func (cc *cameraControllerImpl) ProcessMovement(movement Movement, deltaTime float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	velocity := cc.speed * deltaTime
	front := cc.rotation.Rotate(mgl64.Vec3{0, 0, -1})
	right := cc.rotation.Rotate(mgl64.Vec3{1, 0, 0})
	up := cc.rotation.Rotate(mgl64.Vec3{0, 1, 0})

	switch movement {
	case MovementForward:
		cc.position = cc.position.Add(front.Mul(velocity))
	case MovementBackward:
		cc.position = cc.position.Sub(front.Mul(velocity))
	case MovementLeft:
		cc.position = cc.position.Sub(right.Mul(velocity))
	case MovementRight:
		cc.position = cc.position.Add(right.Mul(velocity))
	case MovementUp:
		cc.position = cc.position.Add(up.Mul(velocity))
	case MovementDown:
		cc.position = cc.position.Sub(up.Mul(velocity))
	case MovementRollLeft:
		cc.rotate(0, 0, -rollRateDeg*deltaTime)
	case MovementRollRight:
		cc.rotate(0, 0, rollRateDeg*deltaTime)
	}
}

func (cc *cameraControllerImpl) ChangeSpeed(delta float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if delta > 0 {
		cc.speed *= math.Pow(1.1, delta)
	} else {
		cc.speed *= math.Pow(0.9, -delta)
	}
	cc.speed = common.Clamp(cc.speed, minStepSpeed, maxSpeed)
}

func (cc *cameraControllerImpl) Speed() float64 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.speed
}

func (cc *cameraControllerImpl) LookAt(target mgl64.Vec3, distance float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotation = mgl64.QuatIdent()
	cc.position = target.Add(mgl64.Vec3{0, 0, distance})
}

func (cc *cameraControllerImpl) PositionRelativeToBody(bodyPosition mgl64.Vec3, bodyRadius, multiplier float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = bodyPosition.Add(mgl64.Vec3{0, 0, bodyRadius * multiplier})
}

func (cc *cameraControllerImpl) LockToObject(position mgl64.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.locked = true
	cc.lockedTarget = position
}

func (cc *cameraControllerImpl) Unlock() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.locked = false
	cc.lockedTarget = mgl64.Vec3{}
}

func (cc *cameraControllerImpl) Locked() (mgl64.Vec3, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.lockedTarget, cc.locked
}

// rotate composes local-axis rotations as current * yaw * pitch * roll and renormalizes.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) rotate(yawDeg, pitchDeg, rollDeg float64) {
	yaw := mgl64.QuatRotate(mgl64.DegToRad(yawDeg), mgl64.Vec3{0, 1, 0})
	pitch := mgl64.QuatRotate(mgl64.DegToRad(pitchDeg), mgl64.Vec3{1, 0, 0})
	roll := mgl64.QuatRotate(mgl64.DegToRad(rollDeg), mgl64.Vec3{0, 0, 1})
	cc.rotation = cc.rotation.Mul(yaw).Mul(pitch).Mul(roll).Normalize()
}
