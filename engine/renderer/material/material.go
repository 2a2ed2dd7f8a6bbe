package material

import (
	"github.com/Carmen-Shannon/starfield/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/starfield/engine/texture"
	"github.com/go-gl/mathgl/mgl64"
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	kind              StageKind
	color             [4]float32
	lineWidth         float32
	temperature       float32
	overglow          float32
	useAmbientTexture bool
	starPosition      *mgl64.Vec3
	glowSize          [2]float32
	textures          map[string]texture.Sampler2D
	cube              texture.CubeSampler
	pipelineKey       string
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material defines the interface for a render material: the stage it is drawn with, the
// parameters its material uniform is built from, the textures it samples and the GPU
// resource bindings needed for draw calls.
//
// Surface parameters are set at construction and are read-only through this interface.
// GPU resource references (pipeline key, bind group provider) are mutable so they can be
// configured after construction once the device exists.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Kind retrieves the shading stage the material is drawn with.
	//
	// Returns:
	//   - StageKind: the stage kind
	Kind() StageKind

	// Color retrieves the RGBA color of the material. Lines draw with it and atmospheres use it
	// as their color modifier.
	//
	// Returns:
	//   - [4]float32: the color as RGBA values
	Color() [4]float32

	// LineWidth retrieves the line width in pixels for line materials.
	//
	// Returns:
	//   - float32: the line width
	LineWidth() float32

	// Temperature retrieves the star temperature in Kelvin for sun and lens glow materials.
	//
	// Returns:
	//   - float32: the temperature
	Temperature() float32

	// Overglow retrieves the atmosphere intensity boost.
	//
	// Returns:
	//   - float32: the overglow factor
	Overglow() float32

	// UseAmbientTexture reports whether the night side blends toward the ambient texture.
	//
	// Returns:
	//   - bool: true if the ambient texture is used
	UseAmbientTexture() bool

	// StarPosition retrieves the world position of the star lighting an atmosphere, or nil to
	// fall back to the first scene light.
	//
	// Returns:
	//   - *mgl64.Vec3: the star position, or nil
	StarPosition() *mgl64.Vec3

	// GlowSize retrieves the lens glow quad half extent in NDC. A zero size lets the packer
	// derive it from the star's luminosity and distance.
	//
	// Returns:
	//   - [2]float32: the glow size
	GlowSize() [2]float32

	// Texture retrieves the 2-D texture bound to a role, or nil if none is set.
	//
	// Parameters:
	//   - role: the texture role, e.g. RoleDiffuse
	//
	// Returns:
	//   - texture.Sampler2D: the texture, or nil
	Texture(role string) texture.Sampler2D

	// Cube retrieves the skybox cube texture, or nil if none is set.
	//
	// Returns:
	//   - texture.CubeSampler: the cube texture, or nil
	Cube() texture.CubeSampler

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key, the stage name unless overridden
	PipelineKey() string

	// BindGroupProvider retrieves the bind group provider holding GPU-side texture resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet initialized
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetPipelineKey sets the render pipeline key for this material.
	//
	// Parameters:
	//   - key: the pipeline key to associate with this material
	SetPipelineKey(key string)

	// SetBindGroupProvider sets the bind group provider for this material.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - kind: the shading stage the material is drawn with
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(kind StageKind, options ...MaterialBuilderOption) Material {
	m := &material{
		kind:        kind,
		color:       [4]float32{1, 1, 1, 1},
		lineWidth:   1,
		temperature: SolarTemperature,
		textures:    make(map[string]texture.Sampler2D),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.pipelineKey == "" {
		m.pipelineKey = kind.String()
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Kind() StageKind {
	return m.kind
}

func (m *material) Color() [4]float32 {
	return m.color
}

func (m *material) LineWidth() float32 {
	return m.lineWidth
}

func (m *material) Temperature() float32 {
	return m.temperature
}

func (m *material) Overglow() float32 {
	return m.overglow
}

func (m *material) UseAmbientTexture() bool {
	return m.useAmbientTexture
}

func (m *material) StarPosition() *mgl64.Vec3 {
	return m.starPosition
}

func (m *material) GlowSize() [2]float32 {
	return m.glowSize
}

func (m *material) Texture(role string) texture.Sampler2D {
	return m.textures[role]
}

func (m *material) Cube() texture.CubeSampler {
	return m.cube
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
