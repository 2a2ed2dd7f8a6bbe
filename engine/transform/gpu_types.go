package transform

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUStandardTransformSource is the canonical WGSL definition of the StandardTransform struct.
// Matches GPUStandardTransform layout exactly (240 bytes, uniform aligned).
//
//go:embed assets/standard_transform.wgsl
var GPUStandardTransformSource string

// GPUStandardTransform is the per-draw uniform shared by every shading stage.
// Every matrix in it is the float32 rounding of a float64 product; nothing here is ever
// composed from already reduced matrices.
// Matches the WGSL StandardTransform struct layout exactly (see GPUStandardTransformSource).
// Size: 240 bytes.
//
// Layout:
//
//	mat4x4<f32> mvp                (64 bytes, offset   0)
//	vec3<f32>   camera_position    (12 bytes, offset  64) + 4 pad
//	vec3<f32>   camera_direction   (12 bytes, offset  80) + 4 pad
//	f32         log_depth_constant ( 4 bytes, offset  96)
//	f32         far_plane          ( 4 bytes, offset 100)
//	f32         near_plane         ( 4 bytes, offset 104)
//	f32         fc_constant        ( 4 bytes, offset 108)
//	mat4x4<f32> mv                 (64 bytes, offset 112)
//	vec3<f32>   light_direction    (12 bytes, offset 176) + 4 pad
//	mat3x3<f32> normal_matrix      (48 bytes, offset 192)
type GPUStandardTransform struct {
	MVP              [16]float32 // offset   0: projection * view * model, column-major
	CameraPosition   [3]float32  // offset  64: world-space camera position
	_pad0            float32     // offset  76
	CameraDirection  [3]float32  // offset  80: world-space unit forward vector
	_pad1            float32     // offset  92
	LogDepthConstant float32     // offset  96: C
	FarPlane         float32     // offset 100
	NearPlane        float32     // offset 104
	FcConstant       float32     // offset 108: 1 / ln(C*far + 1)
	MV               [16]float32 // offset 112: view * model, camera-relative
	LightDirection   [3]float32  // offset 176: camera-space unit vector from object to light
	_pad2            float32     // offset 188
	NormalMatrix     [12]float32 // offset 192: inverse-transpose of mv's upper 3x3, three padded columns
}

// Size returns the size of the GPUStandardTransform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (240)
func (g *GPUStandardTransform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUStandardTransform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 240-byte buffer ready for GPU upload
func (g *GPUStandardTransform) Marshal() []byte {
	buf := make([]byte, 240)
	g.MarshalTo(buf)
	return buf
}

// MarshalTo serializes the struct into buf, which must hold at least 240 bytes.
// Used by the frame packer to write straight into a uniform arena.
func (g *GPUStandardTransform) MarshalTo(buf []byte) {
	_ = buf[239]
	putFloats(buf[0:64], g.MVP[:])
	putFloats(buf[64:76], g.CameraPosition[:])
	binary.LittleEndian.PutUint32(buf[76:80], 0)
	putFloats(buf[80:92], g.CameraDirection[:])
	binary.LittleEndian.PutUint32(buf[92:96], 0)
	binary.LittleEndian.PutUint32(buf[96:100], math.Float32bits(g.LogDepthConstant))
	binary.LittleEndian.PutUint32(buf[100:104], math.Float32bits(g.FarPlane))
	binary.LittleEndian.PutUint32(buf[104:108], math.Float32bits(g.NearPlane))
	binary.LittleEndian.PutUint32(buf[108:112], math.Float32bits(g.FcConstant))
	putFloats(buf[112:176], g.MV[:])
	putFloats(buf[176:188], g.LightDirection[:])
	binary.LittleEndian.PutUint32(buf[188:192], 0)
	putFloats(buf[192:240], g.NormalMatrix[:])
}

// Unmarshal restores the struct from a buffer produced by Marshal.
//
// Parameters:
//   - buf: at least 240 bytes in the StandardTransform layout
//
// Returns:
//   - error: error if buf is too short
func (g *GPUStandardTransform) Unmarshal(buf []byte) error {
	if len(buf) < 240 {
		return fmt.Errorf("standard transform needs 240 bytes, got %d", len(buf))
	}
	getFloats(buf[0:64], g.MVP[:])
	getFloats(buf[64:76], g.CameraPosition[:])
	getFloats(buf[80:92], g.CameraDirection[:])
	g.LogDepthConstant = math.Float32frombits(binary.LittleEndian.Uint32(buf[96:100]))
	g.FarPlane = math.Float32frombits(binary.LittleEndian.Uint32(buf[100:104]))
	g.NearPlane = math.Float32frombits(binary.LittleEndian.Uint32(buf[104:108]))
	g.FcConstant = math.Float32frombits(binary.LittleEndian.Uint32(buf[108:112]))
	getFloats(buf[112:176], g.MV[:])
	getFloats(buf[176:188], g.LightDirection[:])
	getFloats(buf[192:240], g.NormalMatrix[:])
	return nil
}

// MVPMatrix returns the reduced MVP as an mgl32 matrix.
func (g *GPUStandardTransform) MVPMatrix() mgl32.Mat4 {
	return mgl32.Mat4(g.MVP)
}

// MVMatrix returns the reduced model-view matrix as an mgl32 matrix.
func (g *GPUStandardTransform) MVMatrix() mgl32.Mat4 {
	return mgl32.Mat4(g.MV)
}

// NormalMatrix3 unpacks the padded normal matrix columns.
func (g *GPUStandardTransform) NormalMatrix3() mgl32.Mat3 {
	var m mgl32.Mat3
	for c := range 3 {
		m[c*3+0] = g.NormalMatrix[c*4+0]
		m[c*3+1] = g.NormalMatrix[c*4+1]
		m[c*3+2] = g.NormalMatrix[c*4+2]
	}
	return m
}

// Finite reports whether every matrix and vector field is free of NaN and Inf.
func (g *GPUStandardTransform) Finite() bool {
	if !common.ValidateMatrix32(g.MVP) || !common.ValidateMatrix32(g.MV) {
		return false
	}
	for _, group := range [][]float32{g.NormalMatrix[:], g.CameraPosition[:], g.CameraDirection[:], g.LightDirection[:]} {
		for _, v := range group {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return false
			}
		}
	}
	return true
}

func putFloats(buf []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
}

func getFloats(buf []byte, values []float32) {
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
}
