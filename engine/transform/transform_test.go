package transform

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/starfield/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

func stateAt(position mgl64.Vec3, rotation mgl64.Quat) camera.State {
	ctrl := camera.NewCameraController(camera.WithPosition(position), camera.WithRotation(rotation))
	return camera.NewCamera(camera.WithController(ctrl)).State()
}

func randomRotation(rng *rand.Rand) mgl64.Quat {
	axis := mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
	if axis.Len() < 1e-3 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	return mgl64.QuatRotate(rng.Float64()*2*math.Pi, axis.Normalize())
}

// inFront returns a camera-relative offset of the given length inside the forward hemisphere.
func inFront(rng *rand.Rand, rotation mgl64.Quat, distance float64) mgl64.Vec3 {
	local := mgl64.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, -1}.Normalize()
	return rotation.Rotate(local).Mul(distance)
}

func TestGPUStandardTransformSize(t *testing.T) {
	g := GPUStandardTransform{}
	if g.Size() != 240 {
		t.Errorf("expected 240 bytes, got %d", g.Size())
	}
	if len(g.Marshal()) != g.Size() {
		t.Errorf("expected marshaled length %d, got %d", g.Size(), len(g.Marshal()))
	}
	if !strings.Contains(GPUStandardTransformSource, "struct StandardTransform") {
		t.Errorf("expected embedded WGSL struct source")
	}
}

func TestMarshalRoundTripBitExact(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	special := []float32{0, float32(math.Copysign(0, -1)), math.MaxFloat32, math.SmallestNonzeroFloat32, float32(math.Inf(1)), float32(math.NaN())}

	for i := range 50 {
		var in GPUStandardTransform
		fields := [][]float32{in.MVP[:], in.CameraPosition[:], in.CameraDirection[:], in.MV[:], in.LightDirection[:], in.NormalMatrix[:]}
		for _, f := range fields {
			for j := range f {
				if i == 0 {
					f[j] = special[j%len(special)]
				} else {
					f[j] = math.Float32frombits(rng.Uint32())
				}
			}
		}
		in.LogDepthConstant = math.Float32frombits(rng.Uint32())
		in.FarPlane = math.Float32frombits(rng.Uint32())
		in.NearPlane = math.Float32frombits(rng.Uint32())
		in.FcConstant = math.Float32frombits(rng.Uint32())

		var out GPUStandardTransform
		if err := out.Unmarshal(in.Marshal()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		inBytes, outBytes := in.Marshal(), out.Marshal()
		for b := range inBytes {
			if inBytes[b] != outBytes[b] {
				t.Fatalf("case %d: byte %d differs after round trip: %x vs %x", i, b, inBytes[b], outBytes[b])
			}
		}
		if math.Float32bits(in.MVP[5]) != math.Float32bits(out.MVP[5]) || math.Float32bits(in.FcConstant) != math.Float32bits(out.FcConstant) {
			t.Fatalf("case %d: expected identical field bits", i)
		}
	}
}

func TestUnmarshalShortBuffer(t *testing.T) {
	var g GPUStandardTransform
	if err := g.Unmarshal(make([]byte, 239)); err == nil {
		t.Errorf("expected error for short buffer")
	}
}

func TestMarshalOffsets(t *testing.T) {
	g := GPUStandardTransform{LogDepthConstant: 1, FarPlane: 2, NearPlane: 3, FcConstant: 4}
	g.CameraPosition = [3]float32{5, 6, 7}
	g.LightDirection = [3]float32{8, 9, 10}
	g.NormalMatrix[0] = 11
	buf := g.Marshal()

	tests := []struct {
		name   string
		offset int
		want   float32
	}{
		{"camera_position", 64, 5},
		{"log_depth_constant", 96, 1},
		{"far_plane", 100, 2},
		{"near_plane", 104, 3},
		{"fc_constant", 108, 4},
		{"light_direction", 176, 8},
		{"normal_matrix", 192, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got GPUStandardTransform
			_ = got.Unmarshal(buf)
			bits := uint32(buf[tt.offset]) | uint32(buf[tt.offset+1])<<8 | uint32(buf[tt.offset+2])<<16 | uint32(buf[tt.offset+3])<<24
			if math.Float32frombits(bits) != tt.want {
				t.Errorf("expected %v at offset %d, got %v", tt.want, tt.offset, math.Float32frombits(bits))
			}
		})
	}
}

func TestMVPMatchesArbitraryPrecisionReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	vertices := []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {-0.57735, 0.57735, -0.57735}}

	for _, magnitude := range []float64{0, 1e3, 1e9, 1.496e11, 1e12, 1e13} {
		for i := range 40 {
			dir := mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
			var camPos mgl64.Vec3
			if dir.Len() > 0 {
				camPos = dir.Normalize().Mul(magnitude)
			}
			rot := randomRotation(rng)
			state := stateAt(camPos, rot)

			distance := math.Pow(10, 3+rng.Float64()*3)
			obj := At(camPos.Add(inFront(rng, rot, distance))).
				WithRotation(randomRotation(rng)).
				WithUniformScale(distance * 0.01 * (1 + rng.Float64()))

			g := NewBuilder(state).Build(obj)
			if !g.Finite() {
				t.Fatalf("magnitude %g case %d: expected finite uniform", magnitude, i)
			}
			for _, v := range vertices {
				got := g.MVPMatrix().Mul4x1(mgl32.Vec4{float32(v[0]), float32(v[1]), float32(v[2]), 1})
				want := ReferenceClip(state, obj, v, 0)
				if e := RelativeClipError(got, want); e > 1e-4 {
					t.Errorf("magnitude %g case %d: relative error %g exceeds 1e-4 (got %v want %v)", magnitude, i, e, got, want)
				}
			}
		}
	}
}

func TestCameraRelativeTranslationSurvivesReduction(t *testing.T) {
	camPos := mgl64.Vec3{1e13, 0, 0}
	state := stateAt(camPos, mgl64.QuatIdent())
	obj := At(camPos.Add(mgl64.Vec3{5000, 0, -5000})).WithUniformScale(100)

	// Composing in float32 world space rounds both translations to the same value near 1e13.
	view32 := mgl32.Translate3D(float32(-camPos[0]), 0, 0)
	model32 := mgl32.Translate3D(float32(obj.Position[0]), float32(obj.Position[1]), float32(obj.Position[2]))
	naive := view32.Mul4(model32)
	if naive[12] != 0 {
		t.Fatalf("expected float32 world-space composition to lose the 5000 m offset, got %v", naive[12])
	}

	g := NewBuilder(state).Build(obj)
	mv := g.MVMatrix()
	if mv[12] != 5000 || mv[14] != -5000 {
		t.Errorf("expected camera-relative translation (5000, _, -5000), got (%v, _, %v)", mv[12], mv[14])
	}
	if mv[0] != 100 {
		t.Errorf("expected scale 100, got %v", mv[0])
	}
}

func TestSkyboxIgnoresCameraTranslation(t *testing.T) {
	rot := mgl64.QuatRotate(0.7, mgl64.Vec3{0, 1, 0})
	sky := At(mgl64.Vec3{}).WithUniformScale(1)

	near := NewBuilder(stateAt(mgl64.Vec3{}, rot)).BuildSkybox(sky)
	far := NewBuilder(stateAt(mgl64.Vec3{1e13, -1e13, 5e12}, rot)).BuildSkybox(sky)

	if near.MVP != far.MVP {
		t.Errorf("expected identical skybox MVP regardless of camera position")
	}
	if far.MV[12] != 0 || far.MV[13] != 0 || far.MV[14] != 0 {
		t.Errorf("expected zero translation in skybox model-view, got %v", far.MV[12:15])
	}
	if !far.Finite() {
		t.Errorf("expected finite skybox uniform")
	}
}

func TestSkyboxIgnoresObjectTranslation(t *testing.T) {
	rot := mgl64.QuatRotate(0.7, mgl64.Vec3{0, 1, 0})
	state := stateAt(mgl64.Vec3{1e13, 0, 0}, rot)
	centered := NewBuilder(state).BuildSkybox(At(mgl64.Vec3{}).WithUniformScale(10))
	moved := NewBuilder(state).BuildSkybox(At(mgl64.Vec3{4e12, -3, 7}).WithUniformScale(10))

	if centered.MVP != moved.MVP {
		t.Errorf("expected skybox MVP independent of the object position")
	}
	if moved.MV[12] != 0 || moved.MV[13] != 0 || moved.MV[14] != 0 {
		t.Errorf("expected zero translation in skybox model-view, got %v", moved.MV[12:15])
	}
	if moved.MV[0] == 0 && moved.MV[2] == 0 {
		t.Errorf("expected the skybox scale to survive, got %v", moved.MV)
	}
}

func TestBuildCopiesCameraFields(t *testing.T) {
	state := stateAt(mgl64.Vec3{1, 2, 3}, mgl64.QuatIdent())
	g := NewBuilder(state).Build(At(mgl64.Vec3{0, 0, -10}))

	if g.FarPlane != float32(state.Far) || g.NearPlane != float32(state.Near) {
		t.Errorf("expected near/far %v/%v, got %v/%v", state.Near, state.Far, g.NearPlane, g.FarPlane)
	}
	if g.LogDepthConstant != 1 {
		t.Errorf("expected log depth constant 1, got %v", g.LogDepthConstant)
	}
	if g.FcConstant != float32(state.FcConstant()) {
		t.Errorf("expected fc constant %v, got %v", state.FcConstant(), g.FcConstant)
	}
	if g.CameraDirection != [3]float32{0, 0, -1} {
		t.Errorf("expected camera direction (0,0,-1), got %v", g.CameraDirection)
	}
}

func TestLightDirection(t *testing.T) {
	tests := []struct {
		name  string
		rot   mgl64.Quat
		light mgl64.Vec3
		want  mgl32.Vec3
	}{
		{"default", mgl64.QuatIdent(), mgl64.Vec3{}, mgl32.Vec3{0, 0, -1}},
		{"light to the right", mgl64.QuatIdent(), mgl64.Vec3{1e13 + 1e11, 0, -1e6}, mgl32.Vec3{1, 0, 0}},
		{"camera yawed left", mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}), mgl64.Vec3{1e13 + 1e11, 0, -1e6}, mgl32.Vec3{0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := stateAt(mgl64.Vec3{1e13, 0, 0}, tt.rot)
			obj := At(mgl64.Vec3{1e13, 0, -1e6})
			var opts []BuildOption
			if tt.name != "default" {
				opts = append(opts, WithLightPosition(tt.light))
			}
			g := NewBuilder(state).Build(obj, opts...)
			got := mgl32.Vec3(g.LightDirection)
			if !nearVec3(got, tt.want, 1e-5) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	state := stateAt(mgl64.Vec3{}, mgl64.QuatIdent())
	obj := At(mgl64.Vec3{0, 0, -10})
	obj.Scale = mgl64.Vec3{4, 1, 1}

	g := NewBuilder(state).Build(obj)
	n := g.NormalMatrix3()
	// A normal tilted 45 degrees in xy must tilt toward y once x is stretched.
	got := n.Mul3x1(mgl32.Vec3{1, 1, 0}).Normalize()
	want := mgl32.Vec3{0.25, 1, 0}.Normalize()
	if !nearVec3(got, want, 1e-5) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func nearVec3(a, b mgl32.Vec3, tol float32) bool {
	for i := range 3 {
		if d := a[i] - b[i]; d > tol || d < -tol {
			return false
		}
	}
	return true
}
