package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/starfield/engine/camera"
	"github.com/Carmen-Shannon/starfield/engine/frame"
	"github.com/Carmen-Shannon/starfield/engine/orbit"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	doc := `
camera:
  fov_deg: 60
  far: 1.0e12
  position: [1.0e13, 0, -5.0e12]
lighting:
  attenuation_linear: 0.25
frame:
  workers: 4
  screen_width: 1280
  screen_height: 720
  culling: false
trail:
  capacity: 64
profiler:
  enabled: true
  interval: 500ms
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Camera.FovDeg != 60 || cfg.Camera.Far != 1e12 {
		t.Errorf("expected fov 60 and far 1e12, got %v and %v", cfg.Camera.FovDeg, cfg.Camera.Far)
	}
	if cfg.Camera.Near != camera.DefaultNear {
		t.Errorf("expected default near %v, got %v", camera.DefaultNear, cfg.Camera.Near)
	}
	if cfg.Camera.Position != [3]float64{1e13, 0, -5e12} {
		t.Errorf("expected position (1e13, 0, -5e12), got %v", cfg.Camera.Position)
	}
	if cfg.Lighting.AttenuationLinear != 0.25 {
		t.Errorf("expected linear attenuation 0.25, got %v", cfg.Lighting.AttenuationLinear)
	}
	if cfg.Frame.Workers != 4 || cfg.Frame.Culling {
		t.Errorf("expected 4 workers and culling off, got %d and %v", cfg.Frame.Workers, cfg.Frame.Culling)
	}
	if cfg.Frame.Alignment != frame.DefaultAlignment {
		t.Errorf("expected default alignment, got %d", cfg.Frame.Alignment)
	}
	if cfg.Trail.Capacity != 64 || cfg.Trail.MinDistance != orbit.DefaultMinDistance {
		t.Errorf("expected capacity 64 with default spacing, got %d and %v", cfg.Trail.Capacity, cfg.Trail.MinDistance)
	}
	if !cfg.Profiler.Enabled || cfg.Profiler.Interval != 500*time.Millisecond {
		t.Errorf("expected profiler enabled at 500ms, got %v and %v", cfg.Profiler.Enabled, cfg.Profiler.Interval)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults for an empty document")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		invalid bool
	}{
		{"unknown key", "camera:\n  zoom: 2\n", false},
		{"malformed", "camera: [\n", false},
		{"short position", "camera:\n  position: [1, 2]\n", false},
		{"zero near", "camera:\n  near: 0\n", true},
		{"far inside near", "camera:\n  near: 10\n  far: 5\n", true},
		{"fov too wide", "camera:\n  fov_deg: 180\n", true},
		{"zero depth constant", "camera:\n  log_depth_constant: 0\n", true},
		{"negative attenuation", "lighting:\n  attenuation_quadratic: -1\n", true},
		{"alignment not a power of two", "frame:\n  alignment: 300\n", true},
		{"zero screen", "frame:\n  screen_height: 0\n", true},
		{"tiny trail", "trail:\n  capacity: 1\n", true},
		{"zero interval", "profiler:\n  interval: 0s\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if errors.Is(err, ErrInvalidConfig) != tt.invalid {
				t.Errorf("expected ErrInvalidConfig %v, got %v", tt.invalid, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "starfield.yml")
	if err := os.WriteFile(path, []byte("frame:\n  alignment: 512\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Frame.Alignment != 512 {
		t.Errorf("expected alignment 512, got %d", cfg.Frame.Alignment)
	}

	if _, err := Load(filepath.Join(dir, "missing.yml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestOptionAdapters(t *testing.T) {
	cfg := Default()
	cfg.Camera.Position = [3]float64{1e12, 2, 3}
	cfg.Camera.FovDeg = 30
	cfg.Frame.ScreenWidth, cfg.Frame.ScreenHeight = 1000, 500
	cfg.Frame.Alignment = 512
	cfg.Frame.Workers = 2
	cfg.Trail.Capacity = 10
	cfg.Trail.MinDistance = 1

	state := camera.NewCamera(cfg.CameraOptions()...).State()
	if state.Position[0] != 1e12 || state.Aspect != 2 {
		t.Errorf("expected position x 1e12 and aspect 2, got %v and %v", state.Position[0], state.Aspect)
	}

	p := frame.NewPacker(cfg.PackerOptions()...)
	if p.Alignment() != 512 {
		t.Errorf("expected alignment 512, got %d", p.Alignment())
	}

	trail := orbit.NewTrail(cfg.TrailOptions()...)
	for i := range 20 {
		trail.Add([3]float64{float64(i) * 10, 0, 0})
	}
	if trail.Len() != 10 {
		t.Errorf("expected trail capped at 10 points, got %d", trail.Len())
	}
}

func TestNewProfiler(t *testing.T) {
	cfg := Default()
	if cfg.NewProfiler() != nil {
		t.Errorf("expected no profiler when disabled")
	}
	cfg.Profiler.Enabled = true
	if cfg.NewProfiler() == nil {
		t.Errorf("expected a profiler when enabled")
	}
}
