package transform

import (
	"math"
	"math/big"

	"github.com/Carmen-Shannon/starfield/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// ReferencePrecision is the mantissa size in bits used by ReferenceClip.
const ReferencePrecision = 256

type bigMat4 [16]*big.Float

func newBigMat4(m mgl64.Mat4, prec uint) bigMat4 {
	var out bigMat4
	for i, v := range m {
		out[i] = new(big.Float).SetPrec(prec).SetFloat64(v)
	}
	return out
}

func bigTranslate(v mgl64.Vec3, negate bool, prec uint) bigMat4 {
	out := newBigMat4(mgl64.Ident4(), prec)
	for i := range 3 {
		out[12+i].SetFloat64(v[i])
		if negate {
			out[12+i].Neg(out[12+i])
		}
	}
	return out
}

func (a bigMat4) mul(b bigMat4, prec uint) bigMat4 {
	var out bigMat4
	tmp := new(big.Float).SetPrec(prec)
	for col := range 4 {
		for row := range 4 {
			sum := new(big.Float).SetPrec(prec)
			for k := range 4 {
				tmp.Mul(a[k*4+row], b[col*4+k])
				sum.Add(sum, tmp)
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// ReferenceClip evaluates Projection * View * Model * vertex with arbitrary-precision
// arithmetic, using the full world-space view translation instead of the camera-relative
// factorisation. It is the ground truth the reduced MVP is measured against.
//
// Parameters:
//   - state: the camera snapshot
//   - obj: the object transform
//   - vertex: the object-space vertex
//   - prec: mantissa precision in bits (ReferencePrecision when 0)
//
// Returns:
//   - [4]float64: the clip-space position rounded to float64
func ReferenceClip(state camera.State, obj ObjectTransform, vertex mgl64.Vec3, prec uint) [4]float64 {
	if prec == 0 {
		prec = ReferencePrecision
	}
	view := newBigMat4(state.RotationOnlyView, prec).mul(bigTranslate(state.Position, true, prec), prec)
	model := bigTranslate(obj.Position, false, prec).
		mul(newBigMat4(obj.Rotation.Normalize().Mat4(), prec), prec).
		mul(newBigMat4(mgl64.Scale3D(obj.Scale[0], obj.Scale[1], obj.Scale[2]), prec), prec)
	mvp := newBigMat4(state.Projection, prec).mul(view, prec).mul(model, prec)

	v := [4]*big.Float{}
	for i := range 3 {
		v[i] = new(big.Float).SetPrec(prec).SetFloat64(vertex[i])
	}
	v[3] = new(big.Float).SetPrec(prec).SetFloat64(1)

	var out [4]float64
	tmp := new(big.Float).SetPrec(prec)
	for row := range 4 {
		sum := new(big.Float).SetPrec(prec)
		for k := range 4 {
			tmp.Mul(mvp[k*4+row], v[k])
			sum.Add(sum, tmp)
		}
		out[row], _ = sum.Float64()
	}
	return out
}

// RelativeClipError returns the largest per-coordinate error between a reduced clip position
// and the reference, each scaled by max(|reference coordinate|, |reference w|). Scaling by w
// keeps coordinates that sit near zero from reporting huge relative errors for sub-pixel
// differences.
//
// Parameters:
//   - got: the clip position computed from the float32 uniform
//   - want: the reference clip position
//
// Returns:
//   - float64: the worst relative error across x, y, z, w
func RelativeClipError(got mgl32.Vec4, want [4]float64) float64 {
	worst := 0.0
	for i := range 4 {
		scale := max(math.Abs(want[i]), math.Abs(want[3]))
		if scale == 0 {
			continue
		}
		worst = max(worst, math.Abs(float64(got[i])-want[i])/scale)
	}
	return worst
}
