package light

import (
	"github.com/go-gl/mathgl/mgl64"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	name     string
	position mgl64.Vec3
	ambient  [3]float32
	diffuse  [3]float32
	specular [3]float32
	enabled  bool
}

// Light defines the interface for a point light source.
//
// Lights live in world space with extended-precision positions, like every other object.
// Each frame the enabled lights are converted into camera space and packed into the
// bounded GPULightingBlock by BuildLightingBlock.
type Light interface {
	// Name returns the light identifier used in log output.
	//
	// Returns:
	//   - string: the light name
	Name() string

	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - mgl64.Vec3: position in meters
	Position() mgl64.Vec3

	// Ambient returns the ambient RGB contribution of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Ambient() [3]float32

	// Diffuse returns the diffuse RGB contribution of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Diffuse() [3]float32

	// Specular returns the specular RGB contribution of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Specular() [3]float32

	// Enabled returns whether this light is active for rendering.
	// Disabled lights are skipped when the lighting block is built.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - position: position in meters
	SetPosition(position mgl64.Vec3)

	// SetAmbient sets the ambient RGB contribution.
	//
	// Parameters:
	//   - r, g, b: color components
	SetAmbient(r, g, b float32)

	// SetDiffuse sets the diffuse RGB contribution.
	//
	// Parameters:
	//   - r, g, b: color components
	SetDiffuse(r, g, b float32)

	// SetSpecular sets the specular RGB contribution.
	//
	// Parameters:
	//   - r, g, b: color components
	SetSpecular(r, g, b float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new point Light with sensible defaults and any provided options applied.
// Defaults: origin, ambient 0.1, white diffuse and specular, enabled.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		ambient:  [3]float32{0.1, 0.1, 0.1},
		diffuse:  [3]float32{1, 1, 1},
		specular: [3]float32{1, 1, 1},
		enabled:  true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Name() string {
	return l.name
}

func (l *lightImpl) Position() mgl64.Vec3 {
	return l.position
}

func (l *lightImpl) Ambient() [3]float32 {
	return l.ambient
}

func (l *lightImpl) Diffuse() [3]float32 {
	return l.diffuse
}

func (l *lightImpl) Specular() [3]float32 {
	return l.specular
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetPosition(position mgl64.Vec3) {
	l.position = position
}

func (l *lightImpl) SetAmbient(r, g, b float32) {
	l.ambient = [3]float32{r, g, b}
}

func (l *lightImpl) SetDiffuse(r, g, b float32) {
	l.diffuse = [3]float32{r, g, b}
}

func (l *lightImpl) SetSpecular(r, g, b float32) {
	l.specular = [3]float32{r, g, b}
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
