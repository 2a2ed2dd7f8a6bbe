package transform

import (
	"github.com/Carmen-Shannon/starfield/common"
	"github.com/Carmen-Shannon/starfield/engine/camera"
	"github.com/go-gl/mathgl/mgl64"
)

// defaultLightDirection is used when no light position is given: straight ahead of the camera.
var defaultLightDirection = mgl64.Vec3{0, 0, -1}

// Builder derives GPUStandardTransform payloads for one frame's camera state.
// A Builder is immutable after construction and safe for concurrent use.
type Builder struct {
	state camera.State
}

// buildConfig collects the per-object BuildOption settings.
type buildConfig struct {
	lightPosition *mgl64.Vec3
}

// BuildOption configures a single Build call.
type BuildOption func(*buildConfig)

// WithLightPosition sets the world-space light position used to derive the camera-space
// object-to-light direction written into the uniform.
//
// Parameters:
//   - world: the light position in world space (extended precision)
//
// Returns:
//   - BuildOption: a function that applies the light position to the build
func WithLightPosition(world mgl64.Vec3) BuildOption {
	return func(c *buildConfig) {
		c.lightPosition = &world
	}
}

// NewBuilder creates a Builder bound to the given frame snapshot.
//
// Parameters:
//   - state: the immutable camera state for the frame
//
// Returns:
//   - *Builder: the builder
func NewBuilder(state camera.State) *Builder {
	return &Builder{state: state}
}

// State returns the camera snapshot the builder composes against.
func (b *Builder) State() camera.State {
	return b.state
}

// ModelView returns View * Model in float64. The product is evaluated as
// RotationOnlyView * RelativeModel, which is algebraically the same matrix but subtracts the
// camera position from the object position before any rotation is applied.
// With skybox set, both the view translation and the object translation are dropped so the
// result stays centered on the camera.
//
// Parameters:
//   - obj: the object transform
//   - skybox: true to compose against the rotation-only view
//
// Returns:
//   - mgl64.Mat4: the extended-precision model-view matrix
func (b *Builder) ModelView(obj ObjectTransform, skybox bool) mgl64.Mat4 {
	if skybox {
		return b.state.RotationOnlyView.Mul4(common.ModelMatrix64(mgl64.Vec3{}, obj.Rotation, obj.Scale))
	}
	return b.state.RotationOnlyView.Mul4(obj.RelativeModel(b.state.Position))
}

// MVP returns Projection * View * Model in float64.
//
// Parameters:
//   - obj: the object transform
//   - skybox: true to compose against the rotation-only view
//
// Returns:
//   - mgl64.Mat4: the extended-precision model-view-projection matrix
func (b *Builder) MVP(obj ObjectTransform, skybox bool) mgl64.Mat4 {
	return b.state.Projection.Mul4(b.ModelView(obj, skybox))
}

// NormalMatrix returns the inverse-transpose of the model-view upper 3x3 in float64.
func (b *Builder) NormalMatrix(obj ObjectTransform, skybox bool) mgl64.Mat3 {
	return common.NormalMatrix64(b.ModelView(obj, skybox))
}

// Build produces the reduced uniform payload for a regular object.
//
// Parameters:
//   - obj: the object transform
//   - opts: optional per-object settings such as WithLightPosition
//
// Returns:
//   - GPUStandardTransform: the uniform payload, reduced to float32 as the last step
func (b *Builder) Build(obj ObjectTransform, opts ...BuildOption) GPUStandardTransform {
	return b.build(obj, false, opts)
}

// BuildSkybox produces the reduced uniform payload for a skybox. The view translation is
// zeroed in float64 before composition so the skybox stays centered on the camera at any
// camera magnitude.
//
// Parameters:
//   - obj: the skybox transform, normally a scale at the origin
//   - opts: optional per-object settings
//
// Returns:
//   - GPUStandardTransform: the uniform payload
func (b *Builder) BuildSkybox(obj ObjectTransform, opts ...BuildOption) GPUStandardTransform {
	return b.build(obj, true, opts)
}

func (b *Builder) build(obj ObjectTransform, skybox bool, opts []BuildOption) GPUStandardTransform {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	mv := b.ModelView(obj, skybox)
	mvp := b.state.Projection.Mul4(mv)
	normal := common.NormalMatrix64(mv)

	lightDir := defaultLightDirection
	if cfg.lightPosition != nil {
		toLight := b.state.DirectionToCameraSpace(cfg.lightPosition.Sub(obj.Position))
		if l := toLight.Len(); l > 0 {
			lightDir = toLight.Mul(1 / l)
		}
	}

	out := GPUStandardTransform{
		MVP:              common.ReduceMat4(mvp),
		CameraPosition:   common.ReduceVec3(b.state.Position),
		CameraDirection:  common.ReduceVec3(b.state.Direction),
		LogDepthConstant: float32(b.state.LogDepthConstant),
		FarPlane:         float32(b.state.Far),
		NearPlane:        float32(b.state.Near),
		FcConstant:       float32(b.state.FcConstant()),
		MV:               common.ReduceMat4(mv),
		LightDirection:   common.ReduceVec3(lightDir),
	}
	n := common.ReduceMat3(normal)
	for c := range 3 {
		copy(out.NormalMatrix[c*4:c*4+3], n[c*3:c*3+3])
	}
	return out
}
