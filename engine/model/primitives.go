package model

import "math"

// NewUVSphere builds a unit sphere with outward normals and counter-clockwise front faces.
// Planets, atmosphere shells and stars are drawn with it.
//
// Parameters:
//   - name: the model identifier
//   - rings: latitude subdivisions (at least 2)
//   - segments: longitude subdivisions (at least 3)
//
// Returns:
//   - Model: the sphere mesh
func NewUVSphere(name string, rings, segments int) Model {
	rings = max(rings, 2)
	segments = max(segments, 3)

	vertices := make([]GPUVertex, 0, (rings+1)*(segments+1))
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		sinPhi, cosPhi := math.Sincos(phi)
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			sinTheta, cosTheta := math.Sincos(theta)
			p := [3]float32{float32(sinPhi * cosTheta), float32(cosPhi), float32(sinPhi * sinTheta)}
			vertices = append(vertices, GPUVertex{
				Position: p,
				Normal:   p,
				TexCoord: [2]float32{float32(s) / float32(segments), float32(r) / float32(rings)},
			})
		}
	}

	stride := uint32(segments + 1)
	indices := make([]uint32, 0, rings*segments*6)
	for r := range uint32(rings) {
		for s := range uint32(segments) {
			a := r*stride + s
			b := a + stride
			indices = append(indices, a, a+1, b, a+1, b+1, b)
		}
	}

	return NewModel(WithName(name), WithVertices(vertices), WithIndices(indices), WithBoundingRadius(1))
}

// NewQuad builds a two-triangle quad spanning [-1, 1] in x and y, facing +Z.
// Billboards, lens glows and the black hole disc are drawn with it.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - Model: the quad mesh
func NewQuad(name string) Model {
	vertices := []GPUVertex{
		{Position: [3]float32{-1, -1, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{1, -1, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{1, 1, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{-1, 1, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 0}},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return NewModel(WithName(name), WithVertices(vertices), WithIndices(indices))
}

// NewCube builds a cube spanning [-1, 1] on every axis with per-face normals and
// counter-clockwise outward faces. The skybox is drawn with it.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - Model: the cube mesh
func NewCube(name string) Model {
	axes := [3][3]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for a := range 3 {
		for _, sign := range []float32{1, -1} {
			u, v := axes[(a+1)%3], axes[(a+2)%3]
			if sign < 0 {
				u, v = v, u
			}
			var n [3]float32
			for i := range 3 {
				n[i] = axes[a][i] * sign
			}
			base := uint32(len(vertices))
			for _, c := range corners {
				var p [3]float32
				for i := range 3 {
					p[i] = n[i] + c[0]*u[i] + c[1]*v[i]
				}
				vertices = append(vertices, GPUVertex{
					Position: p,
					Normal:   n,
					TexCoord: [2]float32{(c[0] + 1) / 2, (1 - c[1]) / 2},
				})
			}
			indices = append(indices, base, base+1, base+2, base, base+2, base+3)
		}
	}
	return NewModel(WithName(name), WithVertices(vertices), WithIndices(indices))
}
