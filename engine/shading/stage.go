// Package shading is the CPU reference of the stage modules under
// engine/renderer/shader/assets/stages. Each Stage evaluates the vertex and fragment math
// of its WGSL module for a single vertex or fragment, so stage behavior can be checked
// and benchmarked without a device.
package shading

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/starfield/engine/depth"
	"github.com/Carmen-Shannon/starfield/engine/light"
	"github.com/Carmen-Shannon/starfield/engine/model"
	"github.com/Carmen-Shannon/starfield/engine/orbit"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/Carmen-Shannon/starfield/engine/texture"
	"github.com/Carmen-Shannon/starfield/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrMissingUniform is returned when a stage is invoked without a uniform block it reads.
	ErrMissingUniform = errors.New("shading: missing uniform")

	// ErrMissingTexture is returned when a stage is invoked without a texture it samples.
	ErrMissingTexture = errors.New("shading: missing texture")
)

// Vertex is one mesh vertex as a vertex stage reads it.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// FromGPU converts a mesh vertex.
func FromGPU(v model.GPUVertex) Vertex {
	return Vertex{Position: v.Position, Normal: v.Normal, TexCoord: v.TexCoord}
}

// FromLine converts an orbit path vertex.
func FromLine(v orbit.GPULineVertex) Vertex {
	return Vertex{Position: v.Position}
}

// Varying is the vertex stage output handed to the fragment stage.
type Varying struct {
	// Clip is the clip position after logarithmic depth.
	Clip mgl32.Vec4
	// ViewPosition is the camera-space position.
	ViewPosition mgl32.Vec3
	// Normal is the camera-space normal, not normalized.
	Normal mgl32.Vec3
	TexCoord mgl32.Vec2
	// Direction is the skybox lookup direction.
	Direction mgl32.Vec3
}

// Depth returns the post-divide depth of the varying.
func (v Varying) Depth() float32 {
	if v.Clip[3] == 0 {
		return v.Clip[2]
	}
	return v.Clip[2] / v.Clip[3]
}

// Inputs carries everything one draw hands a stage. The transform is an explicit per-draw
// handle; no stage reads shared uniform state.
type Inputs struct {
	Transform *transform.GPUStandardTransform
	Lighting  *light.GPULightingBlock
	Material  material.Payload
	Textures  map[string]texture.Sampler2D
	Cube      texture.CubeSampler
}

// Validate reports the first block or texture the stage needs but the inputs lack.
//
// Parameters:
//   - kind: the stage the inputs are meant for
//
// Returns:
//   - error: ErrMissingUniform or ErrMissingTexture wrapped with the stage and binding name, nil when complete
func (in *Inputs) Validate(kind material.StageKind) error {
	if in == nil || in.Transform == nil {
		return fmt.Errorf("%s: %w: transform", kind, ErrMissingUniform)
	}
	if kind.Lit() && in.Lighting == nil {
		return fmt.Errorf("%s: %w: lighting", kind, ErrMissingUniform)
	}
	if kind.PayloadSize() > 0 && !payloadMatches(kind, in.Material) {
		return fmt.Errorf("%s: %w: material", kind, ErrMissingUniform)
	}

	roles := kind.Textures()
	if p, ok := in.Material.(*material.GPUAtmosphereParams); ok && kind == material.StageAtmosphere && p.UseAmbientTexture != 0 {
		roles = append(roles, material.RoleAmbient)
	}
	for _, role := range roles {
		if in.Textures[role] == nil {
			return fmt.Errorf("%s: %w: %s", kind, ErrMissingTexture, role)
		}
	}
	if kind.UsesCube() && in.Cube == nil {
		return fmt.Errorf("%s: %w: %s", kind, ErrMissingTexture, material.RoleSkybox)
	}
	return nil
}

func payloadMatches(kind material.StageKind, p material.Payload) bool {
	switch p.(type) {
	case *material.GPULineColor:
		return kind == material.StageLine
	case *material.GPUSunParams:
		return kind == material.StageSun
	case *material.GPUAtmosphereParams:
		return kind == material.StageAtmosphere
	case *material.GPUBlackHoleParams:
		return kind == material.StageBlackHole
	case *material.GPULensGlowParams:
		return kind == material.StageLensGlow
	default:
		return false
	}
}

// Stage is the CPU reference of one stage module.
type Stage interface {
	// Kind returns the stage the reference implements.
	//
	// Returns:
	//   - material.StageKind: the stage kind
	Kind() material.StageKind

	// Vertex evaluates vs_main for one vertex. The inputs must have passed Validate.
	//
	// Parameters:
	//   - v: the vertex
	//   - in: the draw inputs
	//
	// Returns:
	//   - Varying: the vertex output
	Vertex(v Vertex, in *Inputs) Varying

	// Fragment evaluates fs_main for one fragment. The inputs must have passed Validate.
	//
	// Parameters:
	//   - v: the interpolated vertex output
	//   - in: the draw inputs
	//
	// Returns:
	//   - mgl32.Vec4: the RGBA output
	Fragment(v Varying, in *Inputs) mgl32.Vec4
}

// ForKind returns the reference stage of a stage kind.
//
// Parameters:
//   - kind: the stage kind
//
// Returns:
//   - Stage: the reference stage
//   - error: error for an unknown kind
func ForKind(kind material.StageKind) (Stage, error) {
	switch kind {
	case material.StageSkybox:
		return skyboxStage{}, nil
	case material.StageDefault:
		return litStage{}, nil
	case material.StageSun:
		return sunStage{}, nil
	case material.StageAtmosphere:
		return atmosphereStage{}, nil
	case material.StageBlackHole:
		return blackHoleStage{}, nil
	case material.StageLensGlow:
		return lensGlowStage{}, nil
	case material.StageLine:
		return lineStage{}, nil
	default:
		return nil, fmt.Errorf("shading: no stage for %s", kind)
	}
}

// Shade validates the inputs and runs both stages for a single vertex, evaluating the
// fragment at the vertex itself.
//
// Parameters:
//   - kind: the stage kind
//   - v: the vertex
//   - in: the draw inputs
//
// Returns:
//   - Varying: the vertex output
//   - mgl32.Vec4: the fragment output at the vertex
//   - error: a Validate or ForKind error
func Shade(kind material.StageKind, v Vertex, in *Inputs) (Varying, mgl32.Vec4, error) {
	stage, err := ForKind(kind)
	if err != nil {
		return Varying{}, mgl32.Vec4{}, err
	}
	if err := in.Validate(kind); err != nil {
		return Varying{}, mgl32.Vec4{}, err
	}
	out := stage.Vertex(v, in)
	return out, stage.Fragment(out, in), nil
}

// surfaceVertex is the vertex stage shared by every mesh stage except the skybox.
func surfaceVertex(v Vertex, t *transform.GPUStandardTransform) Varying {
	p := v.Position.Vec4(1)
	return Varying{
		Clip:         depth.ApplyToClip(t.MVPMatrix().Mul4x1(p), t.LogDepthConstant, t.FarPlane),
		ViewPosition: t.MVMatrix().Mul4x1(p).Vec3(),
		Normal:       t.NormalMatrix3().Mul3x1(v.Normal),
		TexCoord:     v.TexCoord,
	}
}

func normalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

func modulate(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}

func pow(v, e float32) float32 {
	return float32(math.Pow(float64(v), float64(e)))
}

// Smoothstep is the Hermite step of WGSL's smoothstep.
func Smoothstep(edge0, edge1, x float32) float32 {
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// attenuation mirrors the WGSL light falloff.
func attenuation(block *light.GPULightingBlock, d float32) float32 {
	return block.Attenuate(d)
}
