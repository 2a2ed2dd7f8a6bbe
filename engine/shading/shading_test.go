package shading

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/starfield/engine/camera"
	"github.com/Carmen-Shannon/starfield/engine/light"
	"github.com/Carmen-Shannon/starfield/engine/model"
	"github.com/Carmen-Shannon/starfield/engine/orbit"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/Carmen-Shannon/starfield/engine/texture"
	"github.com/Carmen-Shannon/starfield/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

func stateAt(position mgl64.Vec3) camera.State {
	ctrl := camera.NewCameraController(camera.WithPosition(position), camera.WithRotation(mgl64.QuatIdent()))
	return camera.NewCamera(camera.WithController(ctrl)).State()
}

func identityViewToWorld() [12]float32 {
	return [12]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}
}

// completeInputs returns inputs that pass Validate for kind.
func completeInputs(kind material.StageKind) *Inputs {
	g := transform.NewBuilder(stateAt(mgl64.Vec3{})).Build(transform.At(mgl64.Vec3{0, 0, -10}))
	in := &Inputs{
		Transform: &g,
		Lighting:  &light.GPULightingBlock{},
		Material:  kind.NewPayload(),
		Textures:  map[string]texture.Sampler2D{},
		Cube:      texture.SolidCube(mgl32.Vec4{0.2, 0.4, 0.6, 1}),
	}
	for _, role := range append(kind.Textures(), material.RoleAmbient) {
		in.Textures[role] = texture.Solid(role, mgl32.Vec4{1, 1, 1, 1})
	}
	return in
}

func TestForKind(t *testing.T) {
	for _, kind := range material.AllStages() {
		t.Run(kind.String(), func(t *testing.T) {
			stage, err := ForKind(kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stage.Kind() != kind {
				t.Errorf("expected %s, got %s", kind, stage.Kind())
			}
		})
	}
	if _, err := ForKind(material.StageKind(99)); err == nil {
		t.Errorf("expected error for unknown stage")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		kind   material.StageKind
		mutate func(in *Inputs)
		want   error
	}{
		{"complete line", material.StageLine, func(in *Inputs) {}, nil},
		{"complete default", material.StageDefault, func(in *Inputs) {}, nil},
		{"no transform", material.StageSkybox, func(in *Inputs) { in.Transform = nil }, ErrMissingUniform},
		{"lit without lighting", material.StageDefault, func(in *Inputs) { in.Lighting = nil }, ErrMissingUniform},
		{"unlit without lighting", material.StageSun, func(in *Inputs) { in.Lighting = nil }, nil},
		{"wrong payload", material.StageSun, func(in *Inputs) { in.Material = &material.GPULineColor{} }, ErrMissingUniform},
		{"missing gradient", material.StageSun, func(in *Inputs) { delete(in.Textures, material.RoleGradient) }, ErrMissingTexture},
		{"ambient off needs no night texture", material.StageAtmosphere, func(in *Inputs) { delete(in.Textures, material.RoleAmbient) }, nil},
		{"ambient on needs night texture", material.StageAtmosphere, func(in *Inputs) {
			in.Material.(*material.GPUAtmosphereParams).UseAmbientTexture = 1
			delete(in.Textures, material.RoleAmbient)
		}, ErrMissingTexture},
		{"black hole without cube", material.StageBlackHole, func(in *Inputs) { in.Cube = nil }, ErrMissingTexture},
		{"lens glow without spectrum", material.StageLensGlow, func(in *Inputs) { delete(in.Textures, material.RoleSpectrum) }, ErrMissingTexture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := completeInputs(tt.kind)
			tt.mutate(in)
			err := in.Validate(tt.kind)
			if tt.want == nil && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestShadeRejectsIncompleteInputs(t *testing.T) {
	in := completeInputs(material.StageBlackHole)
	in.Cube = nil
	if _, _, err := Shade(material.StageBlackHole, Vertex{}, in); !errors.Is(err, ErrMissingTexture) {
		t.Errorf("expected ErrMissingTexture, got %v", err)
	}
}

func TestShadeEveryStage(t *testing.T) {
	quad := model.NewQuad("quad").Vertices()
	for _, kind := range material.AllStages() {
		t.Run(kind.String(), func(t *testing.T) {
			in := completeInputs(kind)
			for _, v := range quad {
				_, color, err := Shade(kind, FromGPU(v), in)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				for i, c := range color {
					if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
						t.Fatalf("expected finite color, got component %d = %v", i, c)
					}
				}
			}
		})
	}
}

func TestSkyboxPinnedToFarPlane(t *testing.T) {
	state := stateAt(mgl64.Vec3{1e13, 0, 0})
	g := transform.NewBuilder(state).BuildSkybox(transform.At(mgl64.Vec3{}).WithUniformScale(1))
	in := &Inputs{Transform: &g, Cube: texture.SolidCube(mgl32.Vec4{0.1, 0.2, 0.3, 1})}

	stage := skyboxStage{}
	for _, p := range []mgl32.Vec3{{0, 0, -1}, {0.5, 0.5, -1}, {-0.3, 0.2, -1}} {
		out := stage.Vertex(Vertex{Position: p}, in)
		if out.Clip[2] != out.Clip[3] {
			t.Errorf("expected z == w, got z=%v w=%v", out.Clip[2], out.Clip[3])
		}
		if out.Depth() != 1 {
			t.Errorf("expected depth 1, got %v", out.Depth())
		}
		if got := stage.Fragment(out, in); got != (mgl32.Vec4{0.1, 0.2, 0.3, 1}) {
			t.Errorf("expected cube color, got %v", got)
		}
	}
}

func TestLitFallbackAmbient(t *testing.T) {
	tests := []struct {
		name  string
		count int32
	}{
		{"no lights", 0},
		{"negative count", -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := completeInputs(material.StageDefault)
			in.Textures[material.RoleDiffuse] = texture.Solid("d", mgl32.Vec4{1, 0.5, 0.25, 0.75})
			in.Lighting.Count = tt.count
			got := litStage{}.Fragment(Varying{ViewPosition: mgl32.Vec3{0, 0, -10}, Normal: mgl32.Vec3{0, 0, 1}}, in)
			want := mgl32.Vec4{0.2, 0.1, 0.05, 0.75}
			if !closeTo(got, want, 1e-6) {
				t.Errorf("expected %v, got %v", want, got)
			}
		})
	}
}

func TestLitHeadOnLight(t *testing.T) {
	in := completeInputs(material.StageDefault)
	in.Textures[material.RoleDiffuse] = texture.Solid("d", mgl32.Vec4{0.5, 0.5, 0.5, 1})
	in.Lighting.Count = 1
	in.Lighting.Lights[0] = light.GPUPointLight{Diffuse: [3]float32{1, 1, 1}}

	got := litStage{}.Fragment(Varying{ViewPosition: mgl32.Vec3{0, 0, -10}, Normal: mgl32.Vec3{0, 0, 2}}, in)
	want := mgl32.Vec4{0.5, 0.5, 0.5, 1}
	if !closeTo(got, want, 1e-6) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLitClampsCorruptCount(t *testing.T) {
	in := completeInputs(material.StageDefault)
	in.Lighting.Count = 1000
	for i := range in.Lighting.Lights {
		in.Lighting.Lights[i] = light.GPUPointLight{Ambient: [3]float32{0.1, 0.1, 0.1}}
	}
	got := litStage{}.Fragment(Varying{ViewPosition: mgl32.Vec3{0, 0, -10}, Normal: mgl32.Vec3{0, 0, 1}}, in)
	want := float32(0.1 * light.MaxLights)
	if math.Abs(float64(got[0]-want)) > 1e-5 {
		t.Errorf("expected %d lights of ambient (%v), got %v", light.MaxLights, want, got[0])
	}
}

func TestSunTemperatureLookup(t *testing.T) {
	red, blue := mgl32.Vec4{1, 0, 0, 1}, mgl32.Vec4{0, 0, 1, 1}
	tests := []struct {
		name   string
		kelvin float32
		want   mgl32.Vec3
	}{
		{"coolest", material.MinTemperature, mgl32.Vec3{SunBrightness, 0, 0}},
		{"hottest", material.MaxTemperature, mgl32.Vec3{0, 0, SunBrightness}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := completeInputs(material.StageSun)
			in.Textures[material.RoleGradient] = texture.Gradient("g", 256, texture.Stop{At: 0, Color: red}, texture.Stop{At: 1, Color: blue})
			in.Material.(*material.GPUSunParams).Temperature = tt.kelvin
			got := sunStage{}.Fragment(Varying{TexCoord: mgl32.Vec2{0.5, 0.5}}, in)
			if !closeTo(got.Vec3(), tt.want, 0.02) {
				t.Errorf("expected %v, got %v", tt.want, got.Vec3())
			}
			if got[3] != 1 {
				t.Errorf("expected opaque output, got alpha %v", got[3])
			}
		})
	}
}

func TestTerminator(t *testing.T) {
	tests := []struct {
		theta float32
		want  float32
	}{
		{0, 1},
		{1, 0},
		{0.5, 0.5},
		{0.25, 0.975},
		{0.75, 0.025},
	}
	for _, tt := range tests {
		if got := Terminator(tt.theta); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("theta %v: expected %v, got %v", tt.theta, tt.want, got)
		}
	}
}

func TestIncidenceAngleAndFresnel(t *testing.T) {
	n := mgl32.Vec3{0, 0, 1}
	if got := IncidenceAngle(n, n); got != 0 {
		t.Errorf("expected 0 facing the star, got %v", got)
	}
	if got := IncidenceAngle(n.Mul(-1), n); math.Abs(float64(got-1)) > 1e-6 {
		t.Errorf("expected 1 facing away, got %v", got)
	}
	if got := Fresnel(n, n); math.Abs(float64(got-0.3)) > 1e-6 {
		t.Errorf("expected 0.3 head-on, got %v", got)
	}
	if got := Fresnel(n, mgl32.Vec3{1, 0, 0}); math.Abs(float64(got-1)) > 1e-5 {
		t.Errorf("expected 1 at the limb, got %v", got)
	}
}

func TestAmbientBlendWeight(t *testing.T) {
	tests := []struct {
		minDiffuse float32
		want       float32
	}{
		{1, 0},
		{0, 0},
		{-0.125, 0.5},
		{-0.25, 1},
		{-1, 1},
	}
	for _, tt := range tests {
		if got := AmbientBlendWeight(tt.minDiffuse); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("min diffuse %v: expected %v, got %v", tt.minDiffuse, tt.want, got)
		}
	}
}

func TestSurfaceLightingTracksMinDiffuse(t *testing.T) {
	block := &light.GPULightingBlock{Count: 2}
	block.Lights[0] = light.GPUPointLight{Position: [3]float32{0, 0, 0}, Diffuse: [3]float32{1, 1, 1}}
	block.Lights[1] = light.GPUPointLight{Position: [3]float32{0, 0, -100}, Diffuse: [3]float32{1, 1, 1}}

	got := SurfaceLighting(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, -10}, block)
	if math.Abs(float64(got.MinDiffuse+1)) > 1e-6 {
		t.Errorf("expected min diffuse -1, got %v", got.MinDiffuse)
	}
	if !closeTo(got.Color, mgl32.Vec3{1, 1, 1}, 1e-6) {
		t.Errorf("expected only the facing light to contribute, got %v", got.Color)
	}

	empty := SurfaceLighting(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{}, &light.GPULightingBlock{})
	if empty.MinDiffuse != 1 {
		t.Errorf("expected min diffuse 1 without lights, got %v", empty.MinDiffuse)
	}
}

func TestAtmosphereFragment(t *testing.T) {
	v := Varying{ViewPosition: mgl32.Vec3{0, 0, -10}, Normal: mgl32.Vec3{0, 0, 1}}

	t.Run("transparent shell shows the surface", func(t *testing.T) {
		in := completeInputs(material.StageAtmosphere)
		in.Material.(*material.GPUAtmosphereParams).ColorMod = [4]float32{1, 1, 1, 0}
		got := atmosphereStage{}.Fragment(v, in)
		want := mgl32.Vec4{FallbackAmbient, FallbackAmbient, FallbackAmbient, 1}
		if !closeTo(got, want, 1e-6) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("night side blends to the ambient texture", func(t *testing.T) {
		in := completeInputs(material.StageAtmosphere)
		params := in.Material.(*material.GPUAtmosphereParams)
		params.ColorMod = [4]float32{1, 1, 1, 0}
		params.UseAmbientTexture = 1
		in.Textures[material.RoleAmbient] = texture.Solid("night", mgl32.Vec4{0, 0.3, 0, 1})
		in.Lighting.Count = 1
		in.Lighting.Lights[0] = light.GPUPointLight{Position: [3]float32{0, 0, -100}, Diffuse: [3]float32{1, 1, 1}}

		got := atmosphereStage{}.Fragment(v, in)
		want := mgl32.Vec4{0, 0.3, 0, 1}
		if !closeTo(got, want, 1e-6) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("opaque shell at the limb", func(t *testing.T) {
		in := completeInputs(material.StageAtmosphere)
		params := in.Material.(*material.GPUAtmosphereParams)
		params.ColorMod = [4]float32{0, 0, 1, 1}
		params.StarPosition = [3]float32{0, 0, 0}
		limb := Varying{ViewPosition: mgl32.Vec3{0, 0, -10}, Normal: mgl32.Vec3{1, 0, 0}}
		got := atmosphereStage{}.Fragment(limb, in)
		// theta is 0.5, terminator 0.5 and fresnel 1, so the shell covers half the surface.
		want := mgl32.Vec4{0.1, 0.1, 0.6, 1}
		if !closeTo(got, want, 1e-4) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("output is opaque at any shell strength", func(t *testing.T) {
		for _, strength := range []float32{0, 0.25, 0.5, 1} {
			in := completeInputs(material.StageAtmosphere)
			params := in.Material.(*material.GPUAtmosphereParams)
			params.ColorMod = [4]float32{1, 0, 0, strength}
			params.Overglow = 2
			if got := (atmosphereStage{}).Fragment(v, in); got[3] != 1 {
				t.Errorf("strength %v: expected alpha 1, got %v", strength, got[3])
			}
		}
	})
}

func TestBlackHoleFragment(t *testing.T) {
	in := completeInputs(material.StageBlackHole)
	params := in.Material.(*material.GPUBlackHoleParams)
	params.HolePosition = [3]float32{0, 0, -10}
	params.Radius = 1
	params.ViewToWorld = identityViewToWorld()

	tests := []struct {
		name string
		uv   mgl32.Vec2
		want mgl32.Vec4
	}{
		{"center is black", mgl32.Vec2{0.5, 0.5}, mgl32.Vec4{0, 0, 0, 1}},
		{"inside horizon is black", mgl32.Vec2{0.5, 0.65}, mgl32.Vec4{0, 0, 0, 1}},
		{"lens edge shows the sky", mgl32.Vec2{0.5, 1}, mgl32.Vec4{0.2, 0.4, 0.6, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Varying{ViewPosition: mgl32.Vec3{0, 1, -10}, TexCoord: tt.uv}
			got := blackHoleStage{}.Fragment(v, in)
			if !closeTo(got, tt.want, 1e-6) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	mid := blackHoleStage{}.Fragment(Varying{ViewPosition: mgl32.Vec3{0, 1, -10}, TexCoord: mgl32.Vec2{0.5, 0.85}}, in)
	if mid[0] <= 0 || mid[0] >= 0.2 {
		t.Errorf("expected a dimmed sky between horizon and edge, got %v", mid)
	}
}

func TestLensDirection(t *testing.T) {
	dir := mgl32.Vec3{0, 0.1, -1}.Normalize()
	hole := mgl32.Vec3{0, 0, -1}
	if got := LensDirection(dir, hole, LensEdge); !closeTo(got, dir, 1e-6) {
		t.Errorf("expected no bend at the lens edge, got %v", got)
	}
	bent := LensDirection(dir, hole, HorizonRadius)
	if bent[1] <= dir[1] {
		t.Errorf("expected the direction to bend away from the hole, got %v", bent)
	}
	if math.Abs(float64(bent.Len()-1)) > 1e-6 {
		t.Errorf("expected a unit direction, got length %v", bent.Len())
	}
}

func TestBillboardScale(t *testing.T) {
	if BillboardScale*HorizonRadius*2 != 1 {
		t.Errorf("expected the horizon to land on the unit radius, got scale %v", BillboardScale)
	}
}

func TestLensGlowConstantScreenSize(t *testing.T) {
	state := stateAt(mgl64.Vec3{})
	corner := Vertex{Position: mgl32.Vec3{1, 1, 0}, TexCoord: mgl32.Vec2{1, 0}}

	var ndc []mgl32.Vec2
	for _, distance := range []float64{100, 1e6, 1e12} {
		g := transform.NewBuilder(state).Build(transform.At(mgl64.Vec3{0, 0, -distance}))
		in := completeInputs(material.StageLensGlow)
		in.Transform = &g
		params := in.Material.(*material.GPULensGlowParams)
		params.Screen = [2]float32{1920, 1080}
		params.GlowSize = [2]float32{0.1, 0.1}

		out := lensGlowStage{}.Vertex(corner, in)
		ndc = append(ndc, mgl32.Vec2{out.Clip[0] / out.Clip[3], out.Clip[1] / out.Clip[3]})
	}
	want := mgl32.Vec2{0.1 * 1080.0 / 1920.0, 0.1}
	for i, got := range ndc {
		if !closeTo(got, want, 1e-5) {
			t.Errorf("case %d: expected ndc %v, got %v", i, want, got)
		}
	}
}

func TestLensGlowFacing(t *testing.T) {
	tests := []struct {
		name      string
		star      [3]float32
		wantAlpha float32
	}{
		{"ahead", [3]float32{0, 0, -5}, 0.8},
		{"behind", [3]float32{0, 0, 5}, 0},
		{"beside", [3]float32{5, 0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := completeInputs(material.StageLensGlow)
			in.Textures[material.RoleGlow] = texture.Solid("glow", mgl32.Vec4{1, 1, 1, 0.8})
			in.Textures[material.RoleSpectrum] = texture.Solid("spectrum", mgl32.Vec4{1, 0.9, 0.8, 1})
			params := in.Material.(*material.GPULensGlowParams)
			params.StarPosition = tt.star
			params.CameraDirection = [3]float32{0, 0, -1}
			params.Temperature = material.SolarTemperature

			got := lensGlowStage{}.Fragment(Varying{TexCoord: mgl32.Vec2{0.5, 0.5}}, in)
			if math.Abs(float64(got[3]-tt.wantAlpha)) > 1e-6 {
				t.Errorf("expected alpha %v, got %v", tt.wantAlpha, got[3])
			}
			if !closeTo(got.Vec3(), mgl32.Vec3{1, 0.9, 0.8}, 1e-6) {
				t.Errorf("expected spectrum color, got %v", got.Vec3())
			}
		})
	}
}

func TestLineFragment(t *testing.T) {
	in := completeInputs(material.StageLine)
	in.Material.(*material.GPULineColor).Color = [4]float32{0.3, 0.6, 0.9, 1}
	if got := (lineStage{}).Fragment(Varying{}, in); got != (mgl32.Vec4{0.3, 0.6, 0.9, 1}) {
		t.Errorf("expected the material color, got %v", got)
	}
}

func TestLineVertex(t *testing.T) {
	in := completeInputs(material.StageLine)
	v := FromLine(orbit.GPULineVertex{Position: [3]float32{0, 0, -10}})
	out := (lineStage{}).Vertex(v, in)
	if out.Clip[3] <= 0 {
		t.Errorf("expected a point in front of the camera, got w %v", out.Clip[3])
	}
	for i, c := range out.Clip {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			t.Errorf("expected finite clip component %d, got %v", i, c)
		}
	}
}

func TestSmoothstep(t *testing.T) {
	if got := Smoothstep(0.2, 0.5, 0.1); got != 0 {
		t.Errorf("expected 0 below the edge, got %v", got)
	}
	if got := Smoothstep(0.2, 0.5, 0.5); got != 1 {
		t.Errorf("expected 1 at the upper edge, got %v", got)
	}
	if got := Smoothstep(0, 1, 0.5); got != 0.5 {
		t.Errorf("expected 0.5 at the midpoint, got %v", got)
	}
}

func closeTo[V mgl32.Vec2 | mgl32.Vec3 | mgl32.Vec4](got, want V, tol float32) bool {
	for i := 0; i < len(got); i++ {
		if math.Abs(float64(got[i]-want[i])) > float64(tol) {
			return false
		}
	}
	return true
}
