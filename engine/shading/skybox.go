package shading

import (
	"github.com/Carmen-Shannon/starfield/engine/depth"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

type skyboxStage struct{}

func (skyboxStage) Kind() material.StageKind {
	return material.StageSkybox
}

func (skyboxStage) Vertex(v Vertex, in *Inputs) Varying {
	t := in.Transform
	clip := t.MVPMatrix().Mul4x1(v.Position.Vec4(1))
	return Varying{
		Clip:      depth.ForceFar(depth.ApplyToClip(clip, t.LogDepthConstant, t.FarPlane)),
		Direction: v.Position,
	}
}

func (skyboxStage) Fragment(v Varying, in *Inputs) mgl32.Vec4 {
	return in.Cube.SampleDir(normalize(v.Direction))
}
