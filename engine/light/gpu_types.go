package light

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// MaxLights is the fixed capacity of the lighting block. Lights beyond it are dropped when the
// block is built, and a corrupted count never makes shaders read past it.
const MaxLights = 8

// GPUPointLightSource is the canonical WGSL definition of the PointLight struct.
// Matches GPUPointLight layout exactly (64 bytes, uniform aligned).
//
//go:embed assets/point_light.wgsl
var GPUPointLightSource string

// GPUPointLight is the GPU-aligned representation of a single point light.
// Position is camera-relative and rotated into camera space.
// Matches the WGSL PointLight struct layout exactly (see GPUPointLightSource).
// Size: 64 bytes.
type GPUPointLight struct {
	Position [3]float32 // offset  0: camera-space position
	_pad0    float32    // offset 12
	Ambient  [3]float32 // offset 16: ambient RGB
	_pad1    float32    // offset 28
	Diffuse  [3]float32 // offset 32: diffuse RGB
	_pad2    float32    // offset 44
	Specular [3]float32 // offset 48: specular RGB
	_pad3    float32    // offset 60
}

// Size returns the size of the GPUPointLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUPointLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPointLight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPUPointLight) Marshal() []byte {
	buf := make([]byte, 64)
	g.MarshalTo(buf)
	return buf
}

// MarshalTo serializes the light into buf, which must hold at least 64 bytes.
func (g *GPUPointLight) MarshalTo(buf []byte) {
	_ = buf[63]
	for i, v := range [4][3]float32{g.Position, g.Ambient, g.Diffuse, g.Specular} {
		o := i * 16
		binary.LittleEndian.PutUint32(buf[o:o+4], math.Float32bits(v[0]))
		binary.LittleEndian.PutUint32(buf[o+4:o+8], math.Float32bits(v[1]))
		binary.LittleEndian.PutUint32(buf[o+8:o+12], math.Float32bits(v[2]))
		binary.LittleEndian.PutUint32(buf[o+12:o+16], 0)
	}
}

func (g *GPUPointLight) unmarshal(buf []byte) {
	fields := [4]*[3]float32{&g.Position, &g.Ambient, &g.Diffuse, &g.Specular}
	for i, f := range fields {
		o := i * 16
		for c := range 3 {
			f[c] = math.Float32frombits(binary.LittleEndian.Uint32(buf[o+c*4:]))
		}
	}
}

// GPULightingBlockSource is the canonical WGSL definition of the LightingBlock struct.
// Requires the PointLight struct to be included first.
// Matches GPULightingBlock layout exactly (528 bytes, uniform aligned).
//
//go:embed assets/lighting_block.wgsl
var GPULightingBlockSource string

// GPULightingBlock is the per-frame lighting uniform shared by every lit draw.
// Matches the WGSL LightingBlock struct layout exactly (see GPULightingBlockSource).
// Size: 528 bytes.
//
// Layout:
//
//	array<PointLight, 8> lights              (512 bytes, offset   0)
//	i32                  count               (  4 bytes, offset 512)
//	f32                  attenuation_linear  (  4 bytes, offset 516)
//	f32                  attenuation_quadratic (4 bytes, offset 520)
//	f32                  _pad                (  4 bytes, offset 524)
type GPULightingBlock struct {
	Lights               [MaxLights]GPUPointLight // offset   0
	Count                int32                    // offset 512: number of populated entries
	AttenuationLinear    float32                  // offset 516: k1 in 1/(1 + k1 d + k2 d^2)
	AttenuationQuadratic float32                  // offset 520: k2 in 1/(1 + k1 d + k2 d^2)
	_pad                 float32                  // offset 524
}

// Size returns the size of the GPULightingBlock struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (528)
func (b *GPULightingBlock) Size() int {
	return int(unsafe.Sizeof(*b))
}

// Marshal serializes the GPULightingBlock struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 528-byte buffer ready for GPU upload
func (b *GPULightingBlock) Marshal() []byte {
	buf := make([]byte, 528)
	for i := range b.Lights {
		b.Lights[i].MarshalTo(buf[i*64:])
	}
	binary.LittleEndian.PutUint32(buf[512:516], uint32(b.Count))
	binary.LittleEndian.PutUint32(buf[516:520], math.Float32bits(b.AttenuationLinear))
	binary.LittleEndian.PutUint32(buf[520:524], math.Float32bits(b.AttenuationQuadratic))
	binary.LittleEndian.PutUint32(buf[524:528], 0)
	return buf
}

// Unmarshal restores the block from a buffer produced by Marshal. The count is restored as
// stored, including out-of-range values.
//
// Parameters:
//   - buf: at least 528 bytes in the LightingBlock layout
//
// Returns:
//   - error: error if buf is too short
func (b *GPULightingBlock) Unmarshal(buf []byte) error {
	if len(buf) < 528 {
		return fmt.Errorf("lighting block needs 528 bytes, got %d", len(buf))
	}
	for i := range b.Lights {
		b.Lights[i].unmarshal(buf[i*64:])
	}
	b.Count = int32(binary.LittleEndian.Uint32(buf[512:516]))
	b.AttenuationLinear = math.Float32frombits(binary.LittleEndian.Uint32(buf[516:520]))
	b.AttenuationQuadratic = math.Float32frombits(binary.LittleEndian.Uint32(buf[520:524]))
	return nil
}

// ActiveCount returns the number of lights to iterate, clamped to [0, MaxLights].
func (b *GPULightingBlock) ActiveCount() int {
	return int(min(max(b.Count, 0), MaxLights))
}

// Active returns the populated lights, bounded by ActiveCount.
func (b *GPULightingBlock) Active() []GPUPointLight {
	return b.Lights[:b.ActiveCount()]
}

// Attenuate returns 1/(1 + k1 d + k2 d^2) for a light at distance d.
func (b *GPULightingBlock) Attenuate(d float32) float32 {
	return 1 / (1 + b.AttenuationLinear*d + b.AttenuationQuadratic*d*d)
}
