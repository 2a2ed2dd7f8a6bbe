package shading

import (
	"github.com/Carmen-Shannon/starfield/engine/depth"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Shininess is the Blinn-Phong exponent of the default stage.
	Shininess = 32

	// FallbackAmbient scales the base color when no light is active.
	FallbackAmbient = 0.2
)

type litStage struct{}

func (litStage) Kind() material.StageKind {
	return material.StageDefault
}

func (litStage) Vertex(v Vertex, in *Inputs) Varying {
	return surfaceVertex(v, in.Transform)
}

func (litStage) Fragment(v Varying, in *Inputs) mgl32.Vec4 {
	base := in.Textures[material.RoleDiffuse].Sample(v.TexCoord)
	albedo := base.Vec3()
	active := in.Lighting.Active()
	if len(active) == 0 {
		return albedo.Mul(FallbackAmbient).Vec4(base[3])
	}

	n := normalize(v.Normal)
	view := normalize(v.ViewPosition.Mul(-1))
	var color mgl32.Vec3
	for _, pl := range active {
		toLight := mgl32.Vec3(pl.Position).Sub(v.ViewPosition)
		d := toLight.Len()
		l := toLight.Mul(1 / max(d, depth.Epsilon))
		h := normalize(l.Add(view))
		diffuse := max(n.Dot(l), 0)
		specular := pow(max(n.Dot(h), 0), Shininess)
		lit := modulate(pl.Diffuse, albedo).Mul(diffuse).Add(mgl32.Vec3(pl.Specular).Mul(specular))
		color = color.Add(modulate(pl.Ambient, albedo)).Add(lit.Mul(attenuation(in.Lighting, d)))
	}
	return color.Vec4(base[3])
}
