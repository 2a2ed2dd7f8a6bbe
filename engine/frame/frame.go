// Package frame packs one frame's draw list: a StandardTransform and a material uniform per
// visible object, written into 256-byte aligned arenas that draws address through explicit
// uniform handles.
package frame

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/starfield/engine/camera"
	"github.com/Carmen-Shannon/starfield/engine/game_object"
	"github.com/Carmen-Shannon/starfield/engine/light"
	"github.com/Carmen-Shannon/starfield/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/Carmen-Shannon/starfield/engine/shading"
	"github.com/Carmen-Shannon/starfield/engine/texture"
	"github.com/Carmen-Shannon/starfield/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrNonFiniteTransform is returned when a reduced transform contains NaN or Inf.
	ErrNonFiniteTransform = errors.New("frame: non-finite transform")

	// ErrMissingMaterial is returned when an enabled object has no material.
	ErrMissingMaterial = errors.New("frame: missing material")
)

// DrawCall is one packed draw. Every uniform it reads is reached through its own handle.
type DrawCall struct {
	Object game_object.GameObject
	Name   string
	Kind   material.StageKind

	// PipelineKey selects the render pipeline, the stage name unless the material overrides it.
	PipelineKey string

	// Distance is the camera distance in meters, used to order transparent draws.
	Distance float64

	Transform bind_group_provider.UniformHandle

	// Material is invalid for stages without a material uniform.
	Material bind_group_provider.UniformHandle

	// Lighting is valid for lit stages only.
	Lighting bind_group_provider.UniformHandle

	// LineVertices holds the camera-relative line list of a line draw.
	LineVertices []byte
}

// VertexCount returns the number of line vertices of a line draw.
func (d DrawCall) VertexCount() int {
	return len(d.LineVertices) / 12
}

// Stats summarizes one Pack call.
type Stats struct {
	Submitted      int
	Drawn          int
	Culled         int
	TransformBytes int
	MaterialBytes  int
	Duration       time.Duration
}

// Frame is the packed output of one Pack call. It is immutable once returned.
type Frame struct {
	State    camera.State
	Draws    []DrawCall
	Writes   []bind_group_provider.BufferWrite
	Lighting light.GPULightingBlock
	Stats    Stats
}

// Transform decodes the StandardTransform a handle points at.
//
// Parameters:
//   - h: a transform handle from one of the frame's draws
//
// Returns:
//   - transform.GPUStandardTransform: the decoded payload
//   - error: error if the handle does not resolve
func (f *Frame) Transform(h bind_group_provider.UniformHandle) (transform.GPUStandardTransform, error) {
	var g transform.GPUStandardTransform
	buf, err := h.Bytes()
	if err != nil {
		return g, err
	}
	err = g.Unmarshal(buf)
	return g, err
}

// MaterialBytes returns the staged material payload a handle points at.
//
// Parameters:
//   - h: a material handle from one of the frame's draws
//
// Returns:
//   - []byte: the payload bytes, aliasing the staging arena
//   - error: error if the handle does not resolve
func (f *Frame) MaterialBytes(h bind_group_provider.UniformHandle) ([]byte, error) {
	return h.Bytes()
}

// Inputs assembles the CPU shading inputs of a draw from the frame's staged arenas and the
// draw's material textures. An atmosphere without its own ambient texture gets a solid black
// fallback, the same texture the GPU path binds.
//
// Parameters:
//   - d: a draw of this frame
//
// Returns:
//   - *shading.Inputs: the inputs, validated for the draw's stage
//   - error: a handle, decode or validation error
func (f *Frame) Inputs(d DrawCall) (*shading.Inputs, error) {
	g, err := f.Transform(d.Transform)
	if err != nil {
		return nil, fmt.Errorf("%s transform: %w", d.Name, err)
	}
	in := &shading.Inputs{Transform: &g, Textures: map[string]texture.Sampler2D{}}

	if d.Lighting.Valid() {
		block := f.Lighting
		in.Lighting = &block
	}
	if d.Material.Valid() {
		buf, err := f.MaterialBytes(d.Material)
		if err != nil {
			return nil, fmt.Errorf("%s material: %w", d.Name, err)
		}
		if in.Material, err = material.Decode(d.Kind, buf); err != nil {
			return nil, fmt.Errorf("%s material: %w", d.Name, err)
		}
	}

	if d.Object != nil && d.Object.Material() != nil {
		m := d.Object.Material()
		for _, role := range append(d.Kind.Textures(), material.RoleAmbient) {
			if tex := m.Texture(role); tex != nil {
				in.Textures[role] = tex
			}
		}
		in.Cube = m.Cube()
	}
	if d.Kind == material.StageAtmosphere && in.Textures[material.RoleAmbient] == nil {
		in.Textures[material.RoleAmbient] = AmbientFallback
	}

	if err := in.Validate(d.Kind); err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name, err)
	}
	return in, nil
}

// AmbientFallback is bound in place of a missing atmosphere ambient texture.
var AmbientFallback = texture.Solid("ambient_fallback", mgl32.Vec4{0, 0, 0, 1})
