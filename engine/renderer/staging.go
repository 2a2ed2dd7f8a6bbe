package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/Carmen-Shannon/starfield/engine/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnsupportedCube is returned when a cube sampler cannot be split into six faces for upload.
var ErrUnsupportedCube = errors.New("renderer: cube sampler has no faces")

type stager interface {
	Staging() common.TextureStagingData
}

type samplerConfig interface {
	Sampler() common.SamplerStagingData
}

type faced interface {
	Face(i int) texture.Sampler2D
}

// stage2D converts a sampler into 8-bit RGBA upload data. Textures that carry their own texels
// are copied directly; any other sampler is evaluated at its texel centers.
func stage2D(s texture.Sampler2D) common.TextureStagingData {
	if st, ok := s.(stager); ok {
		return st.Staging()
	}
	w, h := max(s.Width(), 1), max(s.Height(), 1)
	pixels := make([]byte, w*h*4)
	for y := range h {
		for x := range w {
			c := s.Sample(mgl32.Vec2{(float32(x) + 0.5) / float32(w), (float32(y) + 0.5) / float32(h)})
			i := (y*w + x) * 4
			for ch := range 4 {
				pixels[i+ch] = uint8(math.Round(float64(common.Clamp(c[ch], 0, 1)) * 255))
			}
		}
	}
	return common.TextureStagingData{Pixels: pixels, Width: uint32(w), Height: uint32(h)}
}

// stageCube converts the six faces of a cube texture, in +X, -X, +Y, -Y, +Z, -Z order.
// Every face must share the first face's size.
func stageCube(c texture.CubeSampler) ([]common.TextureStagingData, error) {
	f, ok := c.(faced)
	if !ok {
		return nil, ErrUnsupportedCube
	}
	faces := make([]common.TextureStagingData, 6)
	for i := range faces {
		face := f.Face(i)
		if face == nil {
			return nil, fmt.Errorf("%w: face %d is nil", ErrUnsupportedCube, i)
		}
		faces[i] = stage2D(face)
		if faces[i].Width != faces[0].Width || faces[i].Height != faces[0].Height {
			return nil, fmt.Errorf("cube face %d is %dx%d, expected %dx%d",
				i, faces[i].Width, faces[i].Height, faces[0].Width, faces[0].Height)
		}
	}
	return faces, nil
}

// samplerFor picks the sampler settings of the first texture that declares its own, or the
// shared default.
func samplerFor(textures []texture.Sampler2D) common.SamplerStagingData {
	for _, t := range textures {
		if sc, ok := t.(samplerConfig); ok {
			return sc.Sampler()
		}
	}
	return common.DefaultSampler()
}
