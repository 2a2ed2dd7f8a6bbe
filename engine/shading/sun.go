package shading

import (
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// SunBrightness is the fixed multiplier applied to the recolored sun surface.
const SunBrightness = 1.5

type sunStage struct{}

func (sunStage) Kind() material.StageKind {
	return material.StageSun
}

func (sunStage) Vertex(v Vertex, in *Inputs) Varying {
	return surfaceVertex(v, in.Transform)
}

func (sunStage) Fragment(v Varying, in *Inputs) mgl32.Vec4 {
	params := in.Material.(*material.GPUSunParams)
	base := in.Textures[material.RoleDiffuse].Sample(v.TexCoord)
	tint := in.Textures[material.RoleGradient].Sample(mgl32.Vec2{material.TemperatureToU(params.Temperature), 0.5})
	return modulate(base.Vec3(), tint.Vec3()).Mul(SunBrightness).Vec4(1)
}
