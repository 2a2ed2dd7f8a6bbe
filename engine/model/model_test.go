package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func triangleNormals(m Model) (normals, centroids []mgl32.Vec3) {
	v := m.Vertices()
	idx := m.Indices()
	for i := 0; i+2 < len(idx); i += 3 {
		p0 := mgl32.Vec3(v[idx[i]].Position)
		p1 := mgl32.Vec3(v[idx[i+1]].Position)
		p2 := mgl32.Vec3(v[idx[i+2]].Position)
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		if n.Len() < 1e-6 {
			continue
		}
		normals = append(normals, n)
		centroids = append(centroids, p0.Add(p1).Add(p2).Mul(1.0/3.0))
	}
	return normals, centroids
}

func TestGPUVertexLayout(t *testing.T) {
	v := GPUVertex{
		Position: [3]float32{1, 2, 3},
		Normal:   [3]float32{4, 5, 6},
		TexCoord: [2]float32{7, 8},
	}
	if v.Size() != 32 {
		t.Fatalf("expected 32 bytes, got %d", v.Size())
	}
	buf := v.Marshal()
	for i, want := range []float32{1, 2, 3, 4, 5, 6, 7, 8} {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != want {
			t.Errorf("expected %v at offset %d, got %v", want, i*4, got)
		}
	}
}

func TestMarshalVerticesAndIndices(t *testing.T) {
	vertices := []GPUVertex{{Position: [3]float32{1, 0, 0}}, {Position: [3]float32{0, 2, 0}}}
	data := MarshalVertices(vertices)
	if len(data) != 64 {
		t.Fatalf("expected 64 bytes, got %d", len(data))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(data[36:])); got != 2 {
		t.Errorf("expected second vertex y == 2, got %v", got)
	}

	indices := MarshalIndices([]uint32{0, 1, 70000})
	if len(indices) != 12 || binary.LittleEndian.Uint32(indices[8:]) != 70000 {
		t.Errorf("expected packed indices, got %v", indices)
	}
}

func TestPrimitives(t *testing.T) {
	tests := []struct {
		name         string
		model        Model
		wantVertices int
		wantIndices  int
		wantRadius   float32
	}{
		{"sphere", NewUVSphere("sphere", 8, 16), 9 * 17, 8 * 16 * 6, 1},
		{"sphere clamps subdivisions", NewUVSphere("tiny", 0, 0), 3 * 4, 2 * 3 * 6, 1},
		{"quad", NewQuad("quad"), 4, 6, float32(math.Sqrt2)},
		{"cube", NewCube("cube"), 24, 36, float32(math.Sqrt(3))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.model.Vertices()) != tt.wantVertices {
				t.Errorf("expected %d vertices, got %d", tt.wantVertices, len(tt.model.Vertices()))
			}
			if tt.model.IndexCount() != tt.wantIndices {
				t.Errorf("expected %d indices, got %d", tt.wantIndices, tt.model.IndexCount())
			}
			if math.Abs(float64(tt.model.BoundingRadius()-tt.wantRadius)) > 1e-5 {
				t.Errorf("expected radius %v, got %v", tt.wantRadius, tt.model.BoundingRadius())
			}
			if len(tt.model.VertexData()) != tt.wantVertices*32 {
				t.Errorf("expected %d vertex bytes, got %d", tt.wantVertices*32, len(tt.model.VertexData()))
			}
			if len(tt.model.IndexData()) != tt.wantIndices*4 {
				t.Errorf("expected %d index bytes, got %d", tt.wantIndices*4, len(tt.model.IndexData()))
			}
			for _, idx := range tt.model.Indices() {
				if int(idx) >= len(tt.model.Vertices()) {
					t.Fatalf("index %d out of range", idx)
				}
			}
		})
	}
}

func TestClosedMeshesWindOutward(t *testing.T) {
	for _, m := range []Model{NewUVSphere("sphere", 12, 24), NewCube("cube")} {
		t.Run(m.Name(), func(t *testing.T) {
			normals, centroids := triangleNormals(m)
			if len(normals) == 0 {
				t.Fatalf("expected non-degenerate triangles")
			}
			for i, n := range normals {
				if n.Dot(centroids[i]) <= 0 {
					t.Errorf("triangle %d winds inward: normal %v centroid %v", i, n, centroids[i])
				}
			}
		})
	}
}

func TestQuadFacesPositiveZ(t *testing.T) {
	normals, _ := triangleNormals(NewQuad("quad"))
	for i, n := range normals {
		if n.Z() <= 0 {
			t.Errorf("triangle %d expected to face +Z, got normal %v", i, n)
		}
	}
}

func TestSphereNormalsAreUnit(t *testing.T) {
	for _, v := range NewUVSphere("sphere", 6, 6).Vertices() {
		if l := mgl32.Vec3(v.Normal).Len(); math.Abs(float64(l-1)) > 1e-5 {
			t.Errorf("expected unit normal, got length %v", l)
		}
	}
}

func TestWithBoundingRadiusOverrides(t *testing.T) {
	m := NewModel(WithName("custom"), WithVertices([]GPUVertex{{Position: [3]float32{3, 4, 0}}}))
	if m.BoundingRadius() != 5 {
		t.Errorf("expected computed radius 5, got %v", m.BoundingRadius())
	}
	m = NewModel(WithVertices([]GPUVertex{{Position: [3]float32{3, 4, 0}}}), WithBoundingRadius(9))
	if m.BoundingRadius() != 9 {
		t.Errorf("expected overridden radius 9, got %v", m.BoundingRadius())
	}
	if m.MeshProvider() != nil {
		t.Errorf("expected no mesh provider before upload")
	}
}
