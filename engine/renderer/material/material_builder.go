package material

import (
	"github.com/Carmen-Shannon/starfield/engine/texture"
	"github.com/go-gl/mathgl/mgl64"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithColor is an option builder that sets the RGBA color of the material.
//
// Parameters:
//   - color: the color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color option to a material
func WithColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.color = color
	}
}

// WithLineWidth is an option builder that sets the line width in pixels.
//
// Parameters:
//   - width: the line width
//
// Returns:
//   - MaterialBuilderOption: a function that applies the line width option to a material
func WithLineWidth(width float32) MaterialBuilderOption {
	return func(m *material) {
		m.lineWidth = width
	}
}

// WithTemperature is an option builder that sets the star temperature in Kelvin.
// The value is validated when the material uniform is built, not here.
//
// Parameters:
//   - kelvin: the temperature
//
// Returns:
//   - MaterialBuilderOption: a function that applies the temperature option to a material
func WithTemperature(kelvin float32) MaterialBuilderOption {
	return func(m *material) {
		m.temperature = kelvin
	}
}

// WithOverglow is an option builder that sets the atmosphere intensity boost.
func WithOverglow(overglow float32) MaterialBuilderOption {
	return func(m *material) {
		m.overglow = overglow
	}
}

// WithAmbientTexture is an option builder that sets the ambient (night side) texture and
// enables blending toward it.
//
// Parameters:
//   - tex: the ambient texture
//
// Returns:
//   - MaterialBuilderOption: a function that applies the ambient texture option to a material
func WithAmbientTexture(tex texture.Sampler2D) MaterialBuilderOption {
	return func(m *material) {
		m.textures[RoleAmbient] = tex
		m.useAmbientTexture = tex != nil
	}
}

// WithStarPosition is an option builder that pins the star lighting an atmosphere.
//
// Parameters:
//   - position: the world-space star position
//
// Returns:
//   - MaterialBuilderOption: a function that applies the star position option to a material
func WithStarPosition(position mgl64.Vec3) MaterialBuilderOption {
	return func(m *material) {
		m.starPosition = &position
	}
}

// WithGlowSize is an option builder that fixes the lens glow quad half extent in NDC.
func WithGlowSize(size [2]float32) MaterialBuilderOption {
	return func(m *material) {
		m.glowSize = size
	}
}

// WithTexture is an option builder that binds a 2-D texture to a role.
//
// Parameters:
//   - role: the texture role, e.g. RoleGradient
//   - tex: the texture
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithTexture(role string, tex texture.Sampler2D) MaterialBuilderOption {
	return func(m *material) {
		if role == RoleAmbient {
			m.useAmbientTexture = tex != nil
		}
		m.textures[role] = tex
	}
}

// WithCube is an option builder that sets the skybox cube texture.
func WithCube(cube texture.CubeSampler) MaterialBuilderOption {
	return func(m *material) {
		m.cube = cube
	}
}

// WithPipelineKey is an option builder that sets the render pipeline key for the material.
//
// Parameters:
//   - key: the pipeline key to associate with the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key option to a material
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}
