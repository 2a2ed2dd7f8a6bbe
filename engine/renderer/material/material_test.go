package material

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/starfield/engine/camera"
	"github.com/Carmen-Shannon/starfield/engine/texture"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

func stateAt(position mgl64.Vec3, rotation mgl64.Quat) camera.State {
	ctrl := camera.NewCameraController(camera.WithPosition(position), camera.WithRotation(rotation))
	return camera.NewCamera(camera.WithController(ctrl)).State()
}

func approx3(a, b [3]float32, eps float32) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > float64(eps) {
			return false
		}
	}
	return true
}

func TestPayloadSizes(t *testing.T) {
	tests := []struct {
		kind StageKind
		want int
	}{
		{StageSkybox, 0},
		{StageDefault, 0},
		{StageLine, 32},
		{StageSun, 48},
		{StageAtmosphere, 64},
		{StageBlackHole, 64},
		{StageLensGlow, 80},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.PayloadSize(); got != tt.want {
				t.Errorf("expected %d bytes, got %d", tt.want, got)
			}
			if p := tt.kind.NewPayload(); p != nil && len(Marshal(p)) != tt.want {
				t.Errorf("expected marshaled length %d, got %d", tt.want, len(Marshal(p)))
			}
		})
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	payloads := []Payload{
		&GPULineColor{Color: [4]float32{1, 0.5, 0.25, 1}, LineWidth: 2},
		&GPUSunParams{Temperature: 5778, CameraToSun: [3]float32{0, 0, -1}, SunPosition: [3]float32{1, 2, -3}},
		&GPUAtmosphereParams{StarPosition: [3]float32{1, 2, 3}, PlanetPosition: [3]float32{4, 5, 6}, ColorMod: [4]float32{0.2, 0.4, 1, 0.8}, Overglow: 0.5, UseAmbientTexture: 1},
		&GPUBlackHoleParams{HolePosition: [3]float32{0, 0, -10}, Radius: 3, ViewToWorld: [12]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}},
		&GPULensGlowParams{Screen: [2]float32{1920, 1080}, GlowSize: [2]float32{0.1, 0.1}, StarPosition: [3]float32{0, 0, -1e9}, CameraDirection: [3]float32{0, 0, -1}, Temperature: 9000},
	}
	for _, p := range payloads {
		buf := Marshal(p)
		var kind StageKind
		switch p.(type) {
		case *GPULineColor:
			kind = StageLine
		case *GPUSunParams:
			kind = StageSun
		case *GPUAtmosphereParams:
			kind = StageAtmosphere
		case *GPUBlackHoleParams:
			kind = StageBlackHole
		case *GPULensGlowParams:
			kind = StageLensGlow
		}
		t.Run(kind.String(), func(t *testing.T) {
			out, err := Decode(kind, buf)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			again := Marshal(out)
			for i := range buf {
				if buf[i] != again[i] {
					t.Fatalf("byte %d differs after round trip", i)
				}
			}
			if _, err := Decode(kind, buf[:len(buf)-1]); err == nil {
				t.Errorf("expected error for short buffer")
			}
		})
	}
}

func TestAtmosphereOffsets(t *testing.T) {
	buf := Marshal(&GPUAtmosphereParams{Overglow: 2, UseAmbientTexture: 1, ColorMod: [4]float32{9, 0, 0, 0}})
	if got := math.Float32frombits(uint32(buf[32]) | uint32(buf[33])<<8 | uint32(buf[34])<<16 | uint32(buf[35])<<24); got != 9 {
		t.Errorf("expected color_mod.r at offset 32, got %v", got)
	}
	if got := math.Float32frombits(uint32(buf[48]) | uint32(buf[49])<<8 | uint32(buf[50])<<16 | uint32(buf[51])<<24); got != 2 {
		t.Errorf("expected overglow at offset 48, got %v", got)
	}
	if buf[52] != 1 {
		t.Errorf("expected use_ambient_texture at offset 52, got %d", buf[52])
	}
}

func TestTemperatureToU(t *testing.T) {
	tests := []struct {
		kelvin float32
		want   float32
	}{
		{800, 0},
		{30000, 1},
		{15400, 0.5},
		{400, -400.0 / 29200},
		{31000, 1 + 1000.0/29200},
	}
	for _, tt := range tests {
		if got := TemperatureToU(tt.kelvin); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("T=%v: expected %v, got %v", tt.kelvin, tt.want, got)
		}
	}
}

func TestValidateTemperature(t *testing.T) {
	tests := []struct {
		name    string
		kelvin  float32
		wantErr bool
	}{
		{"lower bound", 800, false},
		{"upper bound", 30000, false},
		{"sun", 5778, false},
		{"too cold", 799, true},
		{"too hot", 30001, true},
		{"nan", float32(math.NaN()), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemperature(tt.kelvin)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrTemperatureRange) {
				t.Errorf("expected ErrTemperatureRange, got %v", err)
			}
		})
	}
}

func TestParseStageKind(t *testing.T) {
	for _, kind := range AllStages() {
		got, err := ParseStageKind(kind.String())
		if err != nil || got != kind {
			t.Errorf("expected %v, got %v (%v)", kind, got, err)
		}
	}
	if _, err := ParseStageKind("BLACK_HOLE"); err != nil {
		t.Errorf("expected case insensitive match, got %v", err)
	}
	if _, err := ParseStageKind("plasma"); err == nil {
		t.Errorf("expected error for unknown stage")
	}
}

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial(StageSun, WithName("sol"))
	if m.PipelineKey() != "sun" {
		t.Errorf("expected pipeline key sun, got %s", m.PipelineKey())
	}
	if m.Temperature() != SolarTemperature {
		t.Errorf("expected temperature %v, got %v", SolarTemperature, m.Temperature())
	}
	if m.UseAmbientTexture() {
		t.Errorf("expected ambient texture disabled by default")
	}
	m = NewMaterial(StageAtmosphere, WithAmbientTexture(texture.Solid("night", mgl32.Vec4{0, 0, 0, 1})))
	if !m.UseAmbientTexture() || m.Texture(RoleAmbient) == nil {
		t.Errorf("expected ambient texture to be bound and enabled")
	}
}

func TestMaterialOptions(t *testing.T) {
	m := NewMaterial(StageLine, WithLineWidth(3), WithPipelineKey("wide_line"))
	if m.LineWidth() != 3 {
		t.Errorf("expected line width 3, got %v", m.LineWidth())
	}
	if m.PipelineKey() != "wide_line" {
		t.Errorf("expected pipeline key wide_line, got %s", m.PipelineKey())
	}
	m = NewMaterial(StageAtmosphere, WithOverglow(0.4))
	if m.Overglow() != 0.4 {
		t.Errorf("expected overglow 0.4, got %v", m.Overglow())
	}
}

func TestBuildPayloadSun(t *testing.T) {
	state := stateAt(mgl64.Vec3{1e13, 0, 0}, mgl64.QuatIdent())
	env := PayloadEnv{State: state, Position: mgl64.Vec3{1e13, 0, -2e9}}

	p, err := BuildPayload(NewMaterial(StageSun), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sun := p.(*GPUSunParams)
	if !approx3(sun.CameraToSun, [3]float32{0, 0, -1}, 1e-6) {
		t.Errorf("expected camera-to-sun (0,0,-1), got %v", sun.CameraToSun)
	}
	if sun.SunPosition[2] != -2e9 {
		t.Errorf("expected camera-space z -2e9, got %v", sun.SunPosition[2])
	}

	_, err = BuildPayload(NewMaterial(StageSun, WithName("cold"), WithTemperature(100)), env)
	if !errors.Is(err, ErrTemperatureRange) {
		t.Errorf("expected ErrTemperatureRange, got %v", err)
	}
}

func TestBuildPayloadAtmosphereStar(t *testing.T) {
	state := stateAt(mgl64.Vec3{0, 0, 0}, mgl64.QuatIdent())
	light := mgl64.Vec3{100, 0, 0}
	pinned := mgl64.Vec3{0, 50, 0}

	tests := []struct {
		name string
		m    Material
		env  PayloadEnv
		want [3]float32
	}{
		{"camera fallback", NewMaterial(StageAtmosphere), PayloadEnv{State: state}, [3]float32{0, 0, 0}},
		{"first light", NewMaterial(StageAtmosphere), PayloadEnv{State: state, Light: &light}, [3]float32{100, 0, 0}},
		{"pinned star wins", NewMaterial(StageAtmosphere, WithStarPosition(pinned)), PayloadEnv{State: state, Light: &light}, [3]float32{0, 50, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := BuildPayload(tt.m, tt.env)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := p.(*GPUAtmosphereParams).StarPosition; !approx3(got, tt.want, 1e-4) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBuildPayloadBlackHoleViewToWorld(t *testing.T) {
	rot := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	state := stateAt(mgl64.Vec3{}, rot)
	p, err := BuildPayload(NewMaterial(StageBlackHole), PayloadEnv{State: state, Position: mgl64.Vec3{-10, 0, 0}, Radius: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bh := p.(*GPUBlackHoleParams)
	if !approx3(bh.HolePosition, [3]float32{0, 0, -10}, 1e-4) {
		t.Errorf("expected hole straight ahead, got %v", bh.HolePosition)
	}
	if bh.Radius != 2 {
		t.Errorf("expected radius 2, got %v", bh.Radius)
	}
	// Camera-space forward must map back to the world direction the camera looks along.
	var m mgl32.Mat3
	for c := range 3 {
		copy(m[c*3:c*3+3], bh.ViewToWorld[c*4:c*4+3])
	}
	got := m.Mul3x1(mgl32.Vec3{0, 0, -1})
	if !approx3(got, [3]float32{-1, 0, 0}, 1e-5) {
		t.Errorf("expected world forward (-1,0,0), got %v", got)
	}
}

func TestBuildPayloadLensGlowSize(t *testing.T) {
	state := stateAt(mgl64.Vec3{}, mgl64.QuatIdent())
	env := PayloadEnv{State: state, Position: mgl64.Vec3{0, 0, -1e9}, Screen: [2]float32{800, 600}, GlowSize: [2]float32{0.3, 0.3}}

	p, _ := BuildPayload(NewMaterial(StageLensGlow), env)
	if got := p.(*GPULensGlowParams).GlowSize; got != [2]float32{0.3, 0.3} {
		t.Errorf("expected derived glow size, got %v", got)
	}
	p, _ = BuildPayload(NewMaterial(StageLensGlow, WithGlowSize([2]float32{0.05, 0.05})), env)
	glow := p.(*GPULensGlowParams)
	if glow.GlowSize != [2]float32{0.05, 0.05} {
		t.Errorf("expected fixed glow size, got %v", glow.GlowSize)
	}
	if glow.CameraDirection != [3]float32{0, 0, -1} || glow.Screen != [2]float32{800, 600} {
		t.Errorf("expected camera direction and screen to be set, got %v %v", glow.CameraDirection, glow.Screen)
	}
}

func TestBuildPayloadWithoutUniform(t *testing.T) {
	for _, kind := range []StageKind{StageSkybox, StageDefault} {
		p, err := BuildPayload(NewMaterial(kind), PayloadEnv{})
		if p != nil || err != nil {
			t.Errorf("%v: expected no payload, got %v %v", kind, p, err)
		}
	}
}
