package orbit

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestAddSampling(t *testing.T) {
	tests := []struct {
		name   string
		points []mgl64.Vec3
		want   int
	}{
		{"first point always recorded", []mgl64.Vec3{{1, 2, 3}}, 1},
		{"small step skipped", []mgl64.Vec3{{0, 0, 0}, {1e6, 0, 0}}, 1},
		{"exact distance skipped", []mgl64.Vec3{{0, 0, 0}, {5e6, 0, 0}}, 1},
		{"large step recorded", []mgl64.Vec3{{0, 0, 0}, {6e6, 0, 0}}, 2},
		{"distance measured from last recorded", []mgl64.Vec3{{0, 0, 0}, {3e6, 0, 0}, {6e6, 0, 0}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trail := NewTrail()
			for _, p := range tt.points {
				trail.Add(p)
			}
			if trail.Len() != tt.want {
				t.Errorf("expected %d points, got %d", tt.want, trail.Len())
			}
		})
	}
}

func TestRingBufferKeepsNewest(t *testing.T) {
	trail := NewTrail(WithCapacity(3), WithMinDistance(0.5))
	for i := range 5 {
		trail.Add(mgl64.Vec3{float64(i), 0, 0})
	}
	pts := trail.Points()
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	for i, want := range []float64{2, 3, 4} {
		if pts[i][0] != want {
			t.Errorf("expected point %d at x=%v, got %v", i, want, pts[i][0])
		}
	}
}

func TestSetConfigTrims(t *testing.T) {
	trail := NewTrail(WithCapacity(5), WithMinDistance(0.5))
	for i := range 5 {
		trail.Add(mgl64.Vec3{float64(i), 0, 0})
	}
	trail.MarkClean()
	trail.SetConfig(2, 0.5)

	pts := trail.Points()
	if len(pts) != 2 || pts[0][0] != 3 || pts[1][0] != 4 {
		t.Errorf("expected newest points 3 and 4, got %v", pts)
	}
	if !trail.Dirty() {
		t.Errorf("expected trail to be dirty after SetConfig")
	}
	trail.Add(mgl64.Vec3{5, 0, 0})
	if pts := trail.Points(); pts[1][0] != 5 {
		t.Errorf("expected newest point 5 after reconfiguration, got %v", pts)
	}
}

func TestClearAndRenderable(t *testing.T) {
	trail := NewTrail(WithMinDistance(0.5))
	trail.Add(mgl64.Vec3{0, 0, 0})
	if trail.Renderable() {
		t.Errorf("expected single point trail not to be renderable")
	}
	trail.Add(mgl64.Vec3{1, 0, 0})
	if !trail.Renderable() {
		t.Errorf("expected two point trail to be renderable")
	}
	trail.Clear()
	if trail.Len() != 0 || trail.Vertices(mgl64.Vec3{}) != nil {
		t.Errorf("expected empty trail after Clear")
	}
}

func TestVerticesCameraRelative(t *testing.T) {
	camera := mgl64.Vec3{1e13, 0, 0}
	trail := NewTrail(WithMinDistance(0.5))
	trail.Add(camera.Add(mgl64.Vec3{10, 0, 0}))
	trail.Add(camera.Add(mgl64.Vec3{20, 0, 0}))
	trail.Add(camera.Add(mgl64.Vec3{30, 5, 0}))

	verts := trail.Vertices(camera)
	if len(verts) != 4 {
		t.Fatalf("expected 4 line-list vertices, got %d", len(verts))
	}
	want := [][3]float32{{10, 0, 0}, {20, 0, 0}, {20, 0, 0}, {30, 5, 0}}
	for i, w := range want {
		if verts[i].Position != w {
			t.Errorf("vertex %d: expected %v, got %v", i, w, verts[i].Position)
		}
	}

	buf := trail.VertexBytes(camera)
	if len(buf) != 48 {
		t.Fatalf("expected 48 bytes, got %d", len(buf))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[36:40])); got != 30 {
		t.Errorf("expected x=30 in the last vertex, got %v", got)
	}
}
