package material

import (
	"fmt"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/Carmen-Shannon/starfield/engine/camera"
	"github.com/go-gl/mathgl/mgl64"
)

// PayloadEnv is the per-draw context a material uniform is built against.
type PayloadEnv struct {
	// State is the frame's camera snapshot.
	State camera.State
	// Position is the object's world position.
	Position mgl64.Vec3
	// Radius is the object's world bounding radius.
	Radius float64
	// Light is the world position of the primary scene light, if any.
	Light *mgl64.Vec3
	// Screen is the framebuffer size in pixels.
	Screen [2]float32
	// GlowSize is the derived lens glow size used when the material does not fix one.
	GlowSize [2]float32
}

// BuildPayload derives the material uniform of m for one draw. Every position is subtracted
// from the camera in float64 and rotated into camera space before it is reduced.
//
// Parameters:
//   - m: the material
//   - env: the per-draw context
//
// Returns:
//   - Payload: the material uniform, or nil for stages without one
//   - error: ErrTemperatureRange for sun and lens glow materials with an out-of-domain temperature
func BuildPayload(m Material, env PayloadEnv) (Payload, error) {
	state := env.State
	cameraSpace := func(world mgl64.Vec3) [3]float32 {
		return common.ReduceVec3(state.ToCameraSpace(world))
	}

	switch m.Kind() {
	case StageLine:
		return &GPULineColor{Color: m.Color(), LineWidth: m.LineWidth()}, nil

	case StageSun:
		if err := ValidateTemperature(m.Temperature()); err != nil {
			return nil, fmt.Errorf("material %s: %w", m.Name(), err)
		}
		sun := state.ToCameraSpace(env.Position)
		toSun := mgl64.Vec3{0, 0, -1}
		if l := sun.Len(); l > 0 {
			toSun = sun.Mul(1 / l)
		}
		return &GPUSunParams{
			Temperature: m.Temperature(),
			CameraToSun: common.ReduceVec3(toSun),
			SunPosition: common.ReduceVec3(sun),
		}, nil

	case StageAtmosphere:
		star := state.Position
		switch {
		case m.StarPosition() != nil:
			star = *m.StarPosition()
		case env.Light != nil:
			star = *env.Light
		}
		p := &GPUAtmosphereParams{
			StarPosition:   cameraSpace(star),
			PlanetPosition: cameraSpace(env.Position),
			ColorMod:       m.Color(),
			Overglow:       m.Overglow(),
		}
		if m.UseAmbientTexture() {
			p.UseAmbientTexture = 1
		}
		return p, nil

	case StageBlackHole:
		p := &GPUBlackHoleParams{
			HolePosition: cameraSpace(env.Position),
			Radius:       float32(env.Radius),
		}
		viewToWorld := common.ReduceMat3(state.RotationOnlyView.Mat3().Transpose())
		for c := range 3 {
			copy(p.ViewToWorld[c*4:c*4+3], viewToWorld[c*3:c*3+3])
		}
		return p, nil

	case StageLensGlow:
		if err := ValidateTemperature(m.Temperature()); err != nil {
			return nil, fmt.Errorf("material %s: %w", m.Name(), err)
		}
		size := m.GlowSize()
		if size == ([2]float32{}) {
			size = env.GlowSize
		}
		return &GPULensGlowParams{
			Screen:          env.Screen,
			GlowSize:        size,
			StarPosition:    cameraSpace(env.Position),
			CameraDirection: [3]float32{0, 0, -1},
			Temperature:     m.Temperature(),
		}, nil

	default:
		return nil, nil
	}
}
