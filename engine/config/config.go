package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Carmen-Shannon/starfield/engine/camera"
	"github.com/Carmen-Shannon/starfield/engine/frame"
	"github.com/Carmen-Shannon/starfield/engine/light"
	"github.com/Carmen-Shannon/starfield/engine/orbit"
	"github.com/Carmen-Shannon/starfield/engine/profiler"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a configuration value is outside its domain.
var ErrInvalidConfig = errors.New("invalid config")

// maxConfigSize bounds the file Load will read.
const maxConfigSize = 1 << 20

// Config is the renderer configuration file.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Lighting LightingConfig `yaml:"lighting"`
	Frame    FrameConfig    `yaml:"frame"`
	Trail    TrailConfig    `yaml:"trail"`
	Profiler ProfilerConfig `yaml:"profiler"`
}

// CameraConfig holds the projection and starting pose.
type CameraConfig struct {
	FovDeg           float64    `yaml:"fov_deg"`
	Near             float64    `yaml:"near"`
	Far              float64    `yaml:"far"`
	LogDepthConstant float64    `yaml:"log_depth_constant"`
	Position         [3]float64 `yaml:"position"`
}

// LightingConfig holds the distance attenuation coefficients.
type LightingConfig struct {
	AttenuationLinear    float32 `yaml:"attenuation_linear"`
	AttenuationQuadratic float32 `yaml:"attenuation_quadratic"`
}

// FrameConfig holds the packer settings.
type FrameConfig struct {
	Workers      int    `yaml:"workers"` // 0 means GOMAXPROCS
	Alignment    uint64 `yaml:"alignment"`
	ScreenWidth  int    `yaml:"screen_width"`
	ScreenHeight int    `yaml:"screen_height"`
	Culling      bool   `yaml:"culling"`
}

// TrailConfig holds the orbit trail sampling settings.
type TrailConfig struct {
	Capacity    int     `yaml:"capacity"`
	MinDistance float64 `yaml:"min_distance"`
}

// ProfilerConfig holds the frame statistics reporting settings.
type ProfilerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Camera: CameraConfig{
			FovDeg:           camera.DefaultFovDeg,
			Near:             camera.DefaultNear,
			Far:              camera.DefaultFar,
			LogDepthConstant: 1,
		},
		Frame: FrameConfig{
			Alignment:    frame.DefaultAlignment,
			ScreenWidth:  1920,
			ScreenHeight: 1080,
			Culling:      true,
		},
		Trail: TrailConfig{
			Capacity:    orbit.DefaultCapacity,
			MinDistance: orbit.DefaultMinDistance,
		},
		Profiler: ProfilerConfig{
			Interval: time.Second,
		},
	}
}

// Load reads and validates a YAML configuration file. Keys missing from the file keep their
// Default values.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Config: the parsed configuration
//   - error: error if the file cannot be read, parsed, or fails validation
func Load(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if info.Size() > maxConfigSize {
		return Config{}, fmt.Errorf("config: %s is %d bytes, limit is %d", path, info.Size(), maxConfigSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	log.Printf("[Config] loaded %s", path)
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the parsed configuration
//   - error: error if the document is malformed or fails validation
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every value against its domain.
//
// Returns:
//   - error: ErrInvalidConfig wrapped with the offending key, or nil
func (c Config) Validate() error {
	checks := []struct {
		ok  bool
		key string
		val any
	}{
		{c.Camera.FovDeg > 0 && c.Camera.FovDeg < 180, "camera.fov_deg", c.Camera.FovDeg},
		{c.Camera.Near > 0, "camera.near", c.Camera.Near},
		{c.Camera.Far > c.Camera.Near, "camera.far", c.Camera.Far},
		{c.Camera.LogDepthConstant > 0, "camera.log_depth_constant", c.Camera.LogDepthConstant},
		{c.Lighting.AttenuationLinear >= 0, "lighting.attenuation_linear", c.Lighting.AttenuationLinear},
		{c.Lighting.AttenuationQuadratic >= 0, "lighting.attenuation_quadratic", c.Lighting.AttenuationQuadratic},
		{c.Frame.Workers >= 0, "frame.workers", c.Frame.Workers},
		{c.Frame.Alignment > 0 && c.Frame.Alignment&(c.Frame.Alignment-1) == 0, "frame.alignment", c.Frame.Alignment},
		{c.Frame.ScreenWidth > 0, "frame.screen_width", c.Frame.ScreenWidth},
		{c.Frame.ScreenHeight > 0, "frame.screen_height", c.Frame.ScreenHeight},
		{c.Trail.Capacity >= 2, "trail.capacity", c.Trail.Capacity},
		{c.Trail.MinDistance >= 0, "trail.min_distance", c.Trail.MinDistance},
		{c.Profiler.Interval > 0, "profiler.interval", c.Profiler.Interval},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s = %v", ErrInvalidConfig, chk.key, chk.val)
		}
	}
	return nil
}

// CameraOptions converts the camera section into camera builder options. The aspect ratio is
// taken from the frame's screen size.
func (c Config) CameraOptions() []camera.CameraBuilderOption {
	ctrl := camera.NewCameraController(
		camera.WithPosition(mgl64.Vec3(c.Camera.Position)),
		camera.WithRotation(mgl64.QuatIdent()),
	)
	return []camera.CameraBuilderOption{
		camera.WithFov(c.Camera.FovDeg),
		camera.WithNear(c.Camera.Near),
		camera.WithFar(c.Camera.Far),
		camera.WithLogDepthConstant(c.Camera.LogDepthConstant),
		camera.WithAspect(float64(c.Frame.ScreenWidth) / float64(c.Frame.ScreenHeight)),
		camera.WithController(ctrl),
	}
}

// PackerOptions converts the frame and lighting sections into packer options.
func (c Config) PackerOptions() []frame.PackerOption {
	opts := []frame.PackerOption{
		frame.WithAlignment(c.Frame.Alignment),
		frame.WithScreenSize(c.Frame.ScreenWidth, c.Frame.ScreenHeight),
		frame.WithCulling(c.Frame.Culling),
		frame.WithAttenuation(light.Attenuation{
			Linear:    c.Lighting.AttenuationLinear,
			Quadratic: c.Lighting.AttenuationQuadratic,
		}),
	}
	if c.Frame.Workers > 0 {
		opts = append(opts, frame.WithWorkers(c.Frame.Workers))
	}
	return opts
}

// TrailOptions converts the trail section into trail options.
func (c Config) TrailOptions() []orbit.TrailOption {
	return []orbit.TrailOption{
		orbit.WithCapacity(c.Trail.Capacity),
		orbit.WithMinDistance(c.Trail.MinDistance),
	}
}

// NewProfiler returns a profiler for the profiler section, or nil when it is disabled.
func (c Config) NewProfiler() *profiler.Profiler {
	if !c.Profiler.Enabled {
		return nil
	}
	return profiler.NewProfiler(profiler.WithInterval(c.Profiler.Interval))
}
