package shading

import (
	"github.com/Carmen-Shannon/starfield/engine/depth"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

type lineStage struct{}

func (lineStage) Kind() material.StageKind {
	return material.StageLine
}

func (lineStage) Vertex(v Vertex, in *Inputs) Varying {
	t := in.Transform
	clip := t.MVPMatrix().Mul4x1(v.Position.Vec4(1))
	return Varying{Clip: depth.ApplyToClip(clip, t.LogDepthConstant, t.FarPlane)}
}

func (lineStage) Fragment(_ Varying, in *Inputs) mgl32.Vec4 {
	return in.Material.(*material.GPULineColor).Color
}
