package shading

import (
	"github.com/Carmen-Shannon/starfield/engine/depth"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

type lensGlowStage struct{}

func (lensGlowStage) Kind() material.StageKind {
	return material.StageLensGlow
}

// Vertex expands the unit quad around the projected star center in screen space, so the glow
// keeps a constant on-screen size at any distance.
func (lensGlowStage) Vertex(v Vertex, in *Inputs) Varying {
	t := in.Transform
	params := in.Material.(*material.GPULensGlowParams)
	center := t.MVPMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	aspect := params.Screen[1] / max(params.Screen[0], 1)
	offset := mgl32.Vec2{
		v.Position[0] * params.GlowSize[0] * aspect * center[3],
		v.Position[1] * params.GlowSize[1] * center[3],
	}
	clip := center.Add(mgl32.Vec4{offset[0], offset[1], 0, 0})
	return Varying{
		Clip:     depth.ApplyToClip(clip, t.LogDepthConstant, t.FarPlane),
		TexCoord: v.TexCoord,
	}
}

func (lensGlowStage) Fragment(v Varying, in *Inputs) mgl32.Vec4 {
	params := in.Material.(*material.GPULensGlowParams)
	intensity := in.Textures[material.RoleGlow].Sample(v.TexCoord)[3]
	color := in.Textures[material.RoleSpectrum].Sample(mgl32.Vec2{material.TemperatureToU(params.Temperature), 0.5})
	facing := clamp(mgl32.Vec3(params.CameraDirection).Dot(normalize(params.StarPosition)), 0, 1)
	return color.Vec3().Vec4(intensity * facing)
}
