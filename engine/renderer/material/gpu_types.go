package material

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// Payload is a material uniform block that can be written into a uniform arena.
type Payload interface {
	// Size returns the size of the payload in bytes.
	//
	// Returns:
	//   - int: the size in bytes, matching the WGSL struct
	Size() int

	// MarshalTo serializes the payload into buf, which must hold at least Size bytes.
	//
	// Parameters:
	//   - buf: the destination slice
	MarshalTo(buf []byte)

	// Unmarshal restores the payload from a buffer produced by MarshalTo.
	//
	// Parameters:
	//   - buf: at least Size bytes
	//
	// Returns:
	//   - error: error if buf is too short
	Unmarshal(buf []byte) error
}

var (
	_ Payload = &GPULineColor{}
	_ Payload = &GPUSunParams{}
	_ Payload = &GPUAtmosphereParams{}
	_ Payload = &GPUBlackHoleParams{}
	_ Payload = &GPULensGlowParams{}
)

// GPULineColorSource is the canonical WGSL definition of the LineColor struct.
// Matches GPULineColor layout exactly (32 bytes, uniform aligned).
//
//go:embed assets/line_color.wgsl
var GPULineColorSource string

// GPULineColor is the material uniform of the line stage.
// Size: 32 bytes.
type GPULineColor struct {
	Color     [4]float32 // offset  0: RGBA line color
	LineWidth float32    // offset 16: width in pixels, advisory for backends without wide lines
	_pad      [3]float32 // offset 20
}

func (g *GPULineColor) Size() int {
	return int(unsafe.Sizeof(*g))
}

func (g *GPULineColor) MarshalTo(buf []byte) {
	_ = buf[31]
	putFloats(buf[0:16], g.Color[:])
	putFloat(buf[16:20], g.LineWidth)
	clear(buf[20:32])
}

func (g *GPULineColor) Unmarshal(buf []byte) error {
	if err := need(buf, 32, "line color"); err != nil {
		return err
	}
	getFloats(buf[0:16], g.Color[:])
	g.LineWidth = getFloat(buf[16:20])
	return nil
}

// GPUSunParamsSource is the canonical WGSL definition of the SunParams struct.
// Matches GPUSunParams layout exactly (48 bytes, uniform aligned).
//
//go:embed assets/sun_params.wgsl
var GPUSunParamsSource string

// GPUSunParams is the material uniform of the sun stage.
// Size: 48 bytes.
//
// Layout:
//
//	f32       temperature   ( 4 bytes, offset  0) + 12 pad
//	vec3<f32> camera_to_sun (12 bytes, offset 16) + 4 pad
//	vec3<f32> sun_position  (12 bytes, offset 32) + 4 pad
type GPUSunParams struct {
	Temperature float32    // offset  0: Kelvin, validated to [800, 30000] upstream
	_pad0       [3]float32 // offset  4
	CameraToSun [3]float32 // offset 16: camera-space unit vector from the camera to the sun
	_pad1       float32    // offset 28
	SunPosition [3]float32 // offset 32: camera-space sun center
	_pad2       float32    // offset 44
}

func (g *GPUSunParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

func (g *GPUSunParams) MarshalTo(buf []byte) {
	_ = buf[47]
	clear(buf[0:48])
	putFloat(buf[0:4], g.Temperature)
	putFloats(buf[16:28], g.CameraToSun[:])
	putFloats(buf[32:44], g.SunPosition[:])
}

func (g *GPUSunParams) Unmarshal(buf []byte) error {
	if err := need(buf, 48, "sun params"); err != nil {
		return err
	}
	g.Temperature = getFloat(buf[0:4])
	getFloats(buf[16:28], g.CameraToSun[:])
	getFloats(buf[32:44], g.SunPosition[:])
	return nil
}

// GPUAtmosphereParamsSource is the canonical WGSL definition of the AtmosphereParams struct.
// Matches GPUAtmosphereParams layout exactly (64 bytes, uniform aligned).
//
//go:embed assets/atmosphere_params.wgsl
var GPUAtmosphereParamsSource string

// GPUAtmosphereParams is the material uniform of the atmosphere stage.
// Size: 64 bytes.
//
// Layout:
//
//	vec3<f32> star_position       (12 bytes, offset  0) + 4 pad
//	vec3<f32> planet_position     (12 bytes, offset 16) + 4 pad
//	vec4<f32> color_mod           (16 bytes, offset 32)
//	f32       overglow            ( 4 bytes, offset 48)
//	i32       use_ambient_texture ( 4 bytes, offset 52) + 8 pad
type GPUAtmosphereParams struct {
	StarPosition      [3]float32 // offset  0: camera-space star position
	_pad0             float32    // offset 12
	PlanetPosition    [3]float32 // offset 16: camera-space planet center
	_pad1             float32    // offset 28
	ColorMod          [4]float32 // offset 32: RGBA tint, alpha scales the atmosphere opacity
	Overglow          float32    // offset 48
	UseAmbientTexture int32      // offset 52: 1 to blend toward the ambient texture on the night side
	_pad2             [2]float32 // offset 56
}

func (g *GPUAtmosphereParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

func (g *GPUAtmosphereParams) MarshalTo(buf []byte) {
	_ = buf[63]
	clear(buf[0:64])
	putFloats(buf[0:12], g.StarPosition[:])
	putFloats(buf[16:28], g.PlanetPosition[:])
	putFloats(buf[32:48], g.ColorMod[:])
	putFloat(buf[48:52], g.Overglow)
	binary.LittleEndian.PutUint32(buf[52:56], uint32(g.UseAmbientTexture))
}

func (g *GPUAtmosphereParams) Unmarshal(buf []byte) error {
	if err := need(buf, 64, "atmosphere params"); err != nil {
		return err
	}
	getFloats(buf[0:12], g.StarPosition[:])
	getFloats(buf[16:28], g.PlanetPosition[:])
	getFloats(buf[32:48], g.ColorMod[:])
	g.Overglow = getFloat(buf[48:52])
	g.UseAmbientTexture = int32(binary.LittleEndian.Uint32(buf[52:56]))
	return nil
}

// GPUBlackHoleParamsSource is the canonical WGSL definition of the BlackHoleParams struct.
// Matches GPUBlackHoleParams layout exactly (64 bytes, uniform aligned).
//
//go:embed assets/black_hole_params.wgsl
var GPUBlackHoleParamsSource string

// GPUBlackHoleParams is the material uniform of the black hole stage. The lensing math runs in
// camera space; ViewToWorld turns the bent direction back into the skybox's world orientation.
// Size: 64 bytes.
//
// Layout:
//
//	vec3<f32>   hole_position (12 bytes, offset  0)
//	f32         radius        ( 4 bytes, offset 12)
//	mat3x3<f32> view_to_world (48 bytes, offset 16)
type GPUBlackHoleParams struct {
	HolePosition [3]float32  // offset  0: camera-space hole center
	Radius       float32     // offset 12: world radius of the lensing quad
	ViewToWorld  [12]float32 // offset 16: transpose of the view rotation, three padded columns
}

func (g *GPUBlackHoleParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

func (g *GPUBlackHoleParams) MarshalTo(buf []byte) {
	_ = buf[63]
	putFloats(buf[0:12], g.HolePosition[:])
	putFloat(buf[12:16], g.Radius)
	putFloats(buf[16:64], g.ViewToWorld[:])
}

func (g *GPUBlackHoleParams) Unmarshal(buf []byte) error {
	if err := need(buf, 64, "black hole params"); err != nil {
		return err
	}
	getFloats(buf[0:12], g.HolePosition[:])
	g.Radius = getFloat(buf[12:16])
	getFloats(buf[16:64], g.ViewToWorld[:])
	return nil
}

// GPULensGlowParamsSource is the canonical WGSL definition of the LensGlowParams struct.
// Matches GPULensGlowParams layout exactly (80 bytes, uniform aligned).
//
//go:embed assets/lens_glow_params.wgsl
var GPULensGlowParamsSource string

// GPULensGlowParams is the material uniform of the lens glow stage.
// Size: 80 bytes.
//
// Layout:
//
//	vec2<f32> screen           ( 8 bytes, offset  0)
//	vec2<f32> glow_size        ( 8 bytes, offset  8)
//	vec3<f32> star_position    (12 bytes, offset 16) + 4 pad
//	vec3<f32> camera_direction (12 bytes, offset 32) + 4 pad
//	f32       temperature      ( 4 bytes, offset 48) + 28 pad
type GPULensGlowParams struct {
	Screen          [2]float32 // offset  0: framebuffer size in pixels
	GlowSize        [2]float32 // offset  8: quad half extent in NDC
	StarPosition    [3]float32 // offset 16: camera-space star position
	_pad0           float32    // offset 28
	CameraDirection [3]float32 // offset 32: camera-space forward, always (0, 0, -1)
	_pad1           float32    // offset 44
	Temperature     float32    // offset 48: Kelvin
	_pad            [7]float32 // offset 52
}

func (g *GPULensGlowParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

func (g *GPULensGlowParams) MarshalTo(buf []byte) {
	_ = buf[79]
	clear(buf[0:80])
	putFloats(buf[0:8], g.Screen[:])
	putFloats(buf[8:16], g.GlowSize[:])
	putFloats(buf[16:28], g.StarPosition[:])
	putFloats(buf[32:44], g.CameraDirection[:])
	putFloat(buf[48:52], g.Temperature)
}

func (g *GPULensGlowParams) Unmarshal(buf []byte) error {
	if err := need(buf, 80, "lens glow params"); err != nil {
		return err
	}
	getFloats(buf[0:8], g.Screen[:])
	getFloats(buf[8:16], g.GlowSize[:])
	getFloats(buf[16:28], g.StarPosition[:])
	getFloats(buf[32:44], g.CameraDirection[:])
	g.Temperature = getFloat(buf[48:52])
	return nil
}

// Marshal serializes any payload into a new buffer of its size.
//
// Parameters:
//   - p: the payload
//
// Returns:
//   - []byte: the serialized payload
func Marshal(p Payload) []byte {
	buf := make([]byte, p.Size())
	p.MarshalTo(buf)
	return buf
}

// Decode restores the payload a stage consumes from its serialized bytes.
//
// Parameters:
//   - kind: the stage the payload belongs to
//   - buf: the serialized payload
//
// Returns:
//   - Payload: the decoded payload, or nil for stages without a material uniform
//   - error: error if buf is too short
func Decode(kind StageKind, buf []byte) (Payload, error) {
	p := kind.NewPayload()
	if p == nil {
		return nil, nil
	}
	if err := p.Unmarshal(buf); err != nil {
		return nil, err
	}
	return p, nil
}

func need(buf []byte, n int, what string) error {
	if len(buf) < n {
		return fmt.Errorf("%s needs %d bytes, got %d", what, n, len(buf))
	}
	return nil
}

func putFloat(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

func getFloat(buf []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf))
}

func putFloats(buf []byte, values []float32) {
	for i, v := range values {
		putFloat(buf[i*4:i*4+4], v)
	}
}

func getFloats(buf []byte, values []float32) {
	for i := range values {
		values[i] = getFloat(buf[i*4 : i*4+4])
	}
}
