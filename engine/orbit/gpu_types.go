package orbit

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULineVertexSource is the canonical WGSL definition of the LineVertexInput struct.
// Matches GPULineVertex layout exactly (12 bytes, tightly packed vertex attribute).
//
//go:embed assets/line_vertex.wgsl
var GPULineVertexSource string

// GPULineVertex is one camera-relative vertex of an orbit line list.
// Size: 12 bytes.
type GPULineVertex struct {
	Position [3]float32 // offset 0: world position minus camera position
}

// Size returns the size of the GPULineVertex struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (12)
func (g *GPULineVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the vertex into buf, which must hold at least 12 bytes.
func (g *GPULineVertex) MarshalTo(buf []byte) {
	_ = buf[11]
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
}
