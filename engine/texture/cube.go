package texture

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Cube face indices, in the layer order wgpu expects for cube views.
const (
	FacePositiveX = iota
	FaceNegativeX
	FacePositiveY
	FaceNegativeY
	FacePositiveZ
	FaceNegativeZ
)

// CubeSampler is a direction-keyed texture lookup.
type CubeSampler interface {
	// SampleDir returns the filtered RGBA value in direction dir. dir need not be normalized.
	//
	// Parameters:
	//   - dir: the lookup direction
	//
	// Returns:
	//   - mgl32.Vec4: the RGBA sample
	SampleDir(dir mgl32.Vec3) mgl32.Vec4
}

// Cube is a cube texture assembled from six 2-D faces.
type Cube struct {
	faces [6]Sampler2D
}

var _ CubeSampler = &Cube{}

// NewCube creates a cube texture from six faces ordered +X, -X, +Y, -Y, +Z, -Z.
//
// Parameters:
//   - faces: the six face textures
//
// Returns:
//   - *Cube: the cube texture
//   - error: error if any face is nil
func NewCube(faces [6]Sampler2D) (*Cube, error) {
	for i, f := range faces {
		if f == nil {
			return nil, fmt.Errorf("texture: cube face %d is nil", i)
		}
	}
	return &Cube{faces: faces}, nil
}

// SolidCube returns a cube texture with every face set to one color.
func SolidCube(c mgl32.Vec4) *Cube {
	face := Solid("cube", c)
	return &Cube{faces: [6]Sampler2D{face, face, face, face, face, face}}
}

// Face returns one face of the cube.
func (c *Cube) Face(i int) Sampler2D {
	return c.faces[i]
}

func (c *Cube) SampleDir(dir mgl32.Vec3) mgl32.Vec4 {
	face, uv := CubeFace(dir)
	return c.faces[face].Sample(uv)
}

// CubeFace selects the face and face coordinates for a direction using the major-axis rule.
// The zero vector maps to the center of the +Z face.
//
// Parameters:
//   - dir: the lookup direction
//
// Returns:
//   - int: the face index
//   - mgl32.Vec2: the face texture coordinates in [0, 1]
func CubeFace(dir mgl32.Vec3) (int, mgl32.Vec2) {
	x, y, z := dir[0], dir[1], dir[2]
	ax, ay, az := abs(x), abs(y), abs(z)

	var face int
	var sc, tc, ma float32
	switch {
	case ax == 0 && ay == 0 && az == 0:
		return FacePositiveZ, mgl32.Vec2{0.5, 0.5}
	case ax >= ay && ax >= az:
		ma = ax
		if x > 0 {
			face, sc, tc = FacePositiveX, -z, -y
		} else {
			face, sc, tc = FaceNegativeX, z, -y
		}
	case ay >= az:
		ma = ay
		if y > 0 {
			face, sc, tc = FacePositiveY, x, z
		} else {
			face, sc, tc = FaceNegativeY, x, -z
		}
	default:
		ma = az
		if z > 0 {
			face, sc, tc = FacePositiveZ, x, -y
		} else {
			face, sc, tc = FaceNegativeZ, -x, -y
		}
	}
	return face, mgl32.Vec2{(sc/ma + 1) / 2, (tc/ma + 1) / 2}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
