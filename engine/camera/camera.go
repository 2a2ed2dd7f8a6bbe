package camera

import (
	"sync"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultFovDeg is the default vertical field of view in degrees.
	DefaultFovDeg = 45.0
	// DefaultNear is the default near plane distance in meters (1 km).
	DefaultNear = 1e3
	// DefaultFar is the default far plane distance in meters.
	DefaultFar = 1e11
)

type cameraImpl struct {
	mu *sync.Mutex

	fovDeg           float64
	aspect           float64
	near             float64
	far              float64
	logDepthConstant float64

	position mgl64.Vec3
	rotation mgl64.Quat

	viewMatrix             mgl64.Mat4
	rotationOnlyViewMatrix mgl64.Mat4
	projectionMatrix       mgl64.Mat4

	controller CameraController
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings and computes extended-precision view/projection
// matrices from an attached CameraController each frame via Update().
type Camera interface {
	// Fov returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float64: field of view in degrees
	Fov() float64

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float64: the aspect ratio
	Aspect() float64

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float64: near plane distance in meters
	Near() float64

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float64: far plane distance in meters
	Far() float64

	// LogDepthConstant returns the constant C used by the logarithmic depth function.
	//
	// Returns:
	//   - float64: the depth constant
	LogDepthConstant() float64

	// ViewMatrix returns the current extended-precision view matrix.
	//
	// Returns:
	//   - mgl64.Mat4: the view matrix
	ViewMatrix() mgl64.Mat4

	// RotationOnlyViewMatrix returns the view matrix with its translation zeroed in float64.
	//
	// Returns:
	//   - mgl64.Mat4: the rotation-only view matrix
	RotationOnlyViewMatrix() mgl64.Mat4

	// ProjectionMatrix returns the current extended-precision projection matrix.
	//
	// Returns:
	//   - mgl64.Mat4: the projection matrix
	ProjectionMatrix() mgl64.Mat4

	// Controller returns the attached CameraController.
	// Returns nil if no controller is attached.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// Update reads position/orientation from the controller and recomputes matrices.
	// Should be called once per frame before State.
	// If no controller is attached, this method does nothing.
	Update()

	// State recomputes the matrices from one read of the controller and returns the
	// immutable snapshot of the camera for the current frame.
	// A camera without a controller reports the origin looking down -Z.
	//
	// Returns:
	//   - State: the per-frame camera state
	State() State

	// SetFov sets the vertical field of view in degrees and recomputes matrices.
	//
	// Parameters:
	//   - fovDeg: field of view in degrees
	SetFov(fovDeg float64)

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	// Called by the window layer on resize.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float64)

	// SetNear sets the near clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float64)

	// SetFar sets the far clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float64)

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with astronomical defaults: 45° field of view,
// near plane at 1 km, far plane at 1e11 m, 16:9 aspect and a log depth constant of 1.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:                     &sync.Mutex{},
		fovDeg:                 DefaultFovDeg,
		aspect:                 16.0 / 9.0,
		near:                   DefaultNear,
		far:                    DefaultFar,
		logDepthConstant:       1.0,
		rotation:               mgl64.QuatIdent(),
		viewMatrix:             mgl64.Ident4(),
		rotationOnlyViewMatrix: mgl64.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Fov() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fovDeg
}

func (c *cameraImpl) Aspect() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) LogDepthConstant() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logDepthConstant
}

func (c *cameraImpl) ViewMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) RotationOnlyViewMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotationOnlyViewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.updateMatrices()
}

func (c *cameraImpl) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()

	return State{
		Position:         c.position,
		Rotation:         c.rotation,
		Direction:        c.rotation.Rotate(mgl64.Vec3{0, 0, -1}),
		Up:               c.rotation.Rotate(mgl64.Vec3{0, 1, 0}),
		View:             c.viewMatrix,
		RotationOnlyView: c.rotationOnlyViewMatrix,
		Projection:       c.projectionMatrix,
		Fov:              mgl64.DegToRad(c.fovDeg),
		Aspect:           c.aspect,
		Near:             c.near,
		Far:              c.far,
		LogDepthConstant: c.logDepthConstant,
	}
}

func (c *cameraImpl) SetFov(fovDeg float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fovDeg = fovDeg
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetNear(near float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

// updateMatrices recalculates the view, rotation-only view and projection matrices in float64.
// The view is composed from the orientation instead of a look-at target so that the forward
// axis does not lose precision against a 1e13 m position. Without a controller the view stays
// at the identity. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.projectionMatrix = common.Perspective64(mgl64.DegToRad(c.fovDeg), c.aspect, c.near, c.far)
	if c.controller == nil {
		return
	}

	c.position = c.controller.Position()
	c.rotation = c.controller.Rotation()

	c.viewMatrix = c.rotation.Conjugate().Mat4().Mul4(mgl64.Translate3D(-c.position[0], -c.position[1], -c.position[2]))
	c.rotationOnlyViewMatrix = common.RemoveTranslation(c.viewMatrix)
}
