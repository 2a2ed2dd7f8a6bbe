package main

import (
	"math"
	"math/rand"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/Carmen-Shannon/starfield/engine/camera"
	"github.com/Carmen-Shannon/starfield/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// maxObjectOffset is the largest camera-to-object distance sampled by the sweep.
const maxObjectOffset = 1e6

// unitVertices are the object-space points projected for every sample.
var unitVertices = []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {-0.57735, 0.57735, -0.57735}}

// sweepResult is the worst clip-space error measured at one camera magnitude.
type sweepResult struct {
	Magnitude float64
	Samples   int
	Reduced   float64 // camera-relative composition, reduced last
	Naive     float64 // world-space composition in float32
}

// Passed reports whether the reduced error stays under tolerance.
func (r sweepResult) Passed(tolerance float64) bool {
	return r.Reduced < tolerance
}

// magnitudes returns 0 followed by every power of ten up to limit.
func magnitudes(limit float64) []float64 {
	out := []float64{0}
	for m := 1.0; m <= limit*(1+1e-9); m *= 10 {
		out = append(out, m)
	}
	return out
}

func randomRotation(rng *rand.Rand) mgl64.Quat {
	axis := mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
	if axis.Len() < 1e-3 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	return mgl64.QuatRotate(rng.Float64()*2*math.Pi, axis.Normalize())
}

// sample draws one camera at the given magnitude and one object in front of it.
func sample(rng *rand.Rand, magnitude float64) (camera.State, transform.ObjectTransform) {
	dir := mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
	var position mgl64.Vec3
	if dir.Len() > 0 {
		position = dir.Normalize().Mul(magnitude)
	}
	rotation := randomRotation(rng)
	ctrl := camera.NewCameraController(camera.WithPosition(position), camera.WithRotation(rotation))
	state := camera.NewCamera(camera.WithController(ctrl)).State()

	distance := math.Pow(10, 3+rng.Float64()*(math.Log10(maxObjectOffset)-3))
	local := mgl64.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, -1}.Normalize()
	obj := transform.At(position.Add(rotation.Rotate(local).Mul(distance))).
		WithRotation(randomRotation(rng)).
		WithUniformScale(distance * 0.01 * (1 + rng.Float64()))
	return state, obj
}

// naiveClip composes Projection * View * Model from float32 world-space matrices, the way a
// renderer without camera-relative composition would.
func naiveClip(state camera.State, obj transform.ObjectTransform, v mgl64.Vec3) mgl32.Vec4 {
	view := mgl32.Mat4(common.ReduceMat4(state.View))
	model := mgl32.Mat4(common.ReduceMat4(obj.Model()))
	proj := mgl32.Mat4(common.ReduceMat4(state.Projection))
	return proj.Mul4(view).Mul4(model).Mul4x1(mgl32.Vec4{float32(v[0]), float32(v[1]), float32(v[2]), 1})
}

// measure evaluates samples random poses at one magnitude. step is called after each sample.
func measure(rng *rand.Rand, magnitude float64, samples int, step func()) sweepResult {
	r := sweepResult{Magnitude: magnitude, Samples: samples}
	for range samples {
		state, obj := sample(rng, magnitude)
		g := transform.NewBuilder(state).Build(obj)
		mvp := g.MVPMatrix()
		for _, v := range unitVertices {
			want := transform.ReferenceClip(state, obj, v, 0)
			got := mvp.Mul4x1(mgl32.Vec4{float32(v[0]), float32(v[1]), float32(v[2]), 1})
			r.Reduced = max(r.Reduced, transform.RelativeClipError(got, want))
			naive := transform.RelativeClipError(naiveClip(state, obj, v), want)
			if math.IsNaN(naive) {
				naive = math.Inf(1)
			}
			r.Naive = max(r.Naive, naive)
		}
		if step != nil {
			step()
		}
	}
	return r
}
