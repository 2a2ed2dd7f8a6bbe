package shading

import (
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// HorizonRadius is the quad-space distance from the center inside which the hole is black.
	HorizonRadius = 0.2

	// LensEdge is the quad-space distance at which lensing fades out.
	LensEdge = 0.5

	// BillboardScale is the quad half extent per unit hole radius. The quad spans [-1, 1], so
	// the horizon at HorizonRadius lands on the hole radius.
	BillboardScale = 1 / (2 * HorizonRadius)
)

// LensDirection bends a unit view direction away from the hole direction. The bend grows
// linearly from zero at LensEdge to its maximum at the quad center.
//
// Parameters:
//   - dir: the unit camera-space view direction of the fragment
//   - hole: the unit camera-space direction of the hole center
//   - d: the quad-space distance of the fragment from the center
//
// Returns:
//   - mgl32.Vec3: the bent unit direction
func LensDirection(dir, hole mgl32.Vec3, d float32) mgl32.Vec3 {
	return normalize(dir.Add(dir.Sub(hole).Mul(max(0, LensEdge-d) * 2)))
}

type blackHoleStage struct{}

func (blackHoleStage) Kind() material.StageKind {
	return material.StageBlackHole
}

func (blackHoleStage) Vertex(v Vertex, in *Inputs) Varying {
	out := surfaceVertex(v, in.Transform)
	out.Normal = mgl32.Vec3{}
	return out
}

func (blackHoleStage) Fragment(v Varying, in *Inputs) mgl32.Vec4 {
	params := in.Material.(*material.GPUBlackHoleParams)
	d := v.TexCoord.Sub(mgl32.Vec2{0.5, 0.5}).Len()
	if d < HorizonRadius {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	bent := LensDirection(normalize(v.ViewPosition), normalize(params.HolePosition), d)
	sky := in.Cube.SampleDir(viewToWorld(params).Mul3x1(bent))
	return sky.Vec3().Mul(Smoothstep(HorizonRadius, LensEdge, d)).Vec4(1)
}

func viewToWorld(p *material.GPUBlackHoleParams) mgl32.Mat3 {
	var m mgl32.Mat3
	for c := range 3 {
		copy(m[c*3:c*3+3], p.ViewToWorld[c*4:c*4+3])
	}
	return m
}
