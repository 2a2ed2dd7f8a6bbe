package depth

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRemapMonotonic(t *testing.T) {
	tests := []struct {
		name     string
		constant float32
		far      float32
	}{
		{"default", 1, 1e11},
		{"small constant", 0.001, 1e11},
		{"short range", 1, 1e4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := float32(math.Inf(-1))
			prevNorm := float32(math.Inf(-1))
			for e := -3.0; e <= math.Log10(float64(tt.far)); e += 0.05 {
				w := float32(math.Pow(10, e))
				z := Remap(0, w, tt.constant, tt.far)
				if z < prev {
					t.Fatalf("expected non-decreasing remap, w=%v gave %v after %v", w, z, prev)
				}
				n := Normalized(w, tt.constant, tt.far)
				if n < prevNorm {
					t.Fatalf("expected non-decreasing normalized depth, w=%v gave %v after %v", w, n, prevNorm)
				}
				prev, prevNorm = z, n
			}
		})
	}
}

func TestNormalizedAtFar(t *testing.T) {
	for _, far := range []float32{1e4, 1e9, 1e11, 1e13} {
		n := Normalized(far, 1, far)
		if math.Abs(float64(n-1)) > 1e-6 {
			t.Errorf("expected normalized depth 1 at far=%v, got %v", far, n)
		}
		z := Remap(0.5, far, 1, far)
		if math.Abs(float64(z/far-1)) > 1e-6 {
			t.Errorf("expected remap(far)/far == 1 at far=%v, got %v", far, z/far)
		}
	}
}

func TestRemapBehindCamera(t *testing.T) {
	tests := []struct {
		name string
		z, w float32
	}{
		{"zero w", 0.25, 0},
		{"negative w", -3, -10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Remap(tt.z, tt.w, 1, 1e11); got != tt.z {
				t.Errorf("expected clip z %v passed through, got %v", tt.z, got)
			}
		})
	}
}

func TestRemapNeverNaN(t *testing.T) {
	for _, w := range []float32{1e-30, 1e-6, 0.5, 1, 1e13, 1e30} {
		z := Remap(0, w, 1e-9, 1e11)
		if math.IsNaN(float64(z)) {
			t.Errorf("expected a number for w=%v, got NaN", w)
		}
	}
}

func TestApplyToClipAndForceFar(t *testing.T) {
	clip := mgl32.Vec4{0.1, -0.2, 0.3, 1e5}
	got := ApplyToClip(clip, 1, 1e11)
	if got[0] != clip[0] || got[1] != clip[1] || got[3] != clip[3] {
		t.Errorf("expected only z to change, got %v", got)
	}
	if got[2] != Remap(clip[2], clip[3], 1, 1e11) {
		t.Errorf("expected z %v, got %v", Remap(clip[2], clip[3], 1, 1e11), got[2])
	}

	far := ForceFar(got)
	if far[2] != far[3] {
		t.Errorf("expected z == w, got %v", far)
	}
}

func TestLogDepthSourceEmbedded(t *testing.T) {
	for _, fn := range []string{"fn remap_depth", "fn apply_log_depth", "fn force_far_depth"} {
		if !strings.Contains(LogDepthSource, fn) {
			t.Errorf("expected embedded source to define %q", fn)
		}
	}
}
