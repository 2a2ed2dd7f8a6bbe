package shading

import (
	"math"

	"github.com/Carmen-Shannon/starfield/engine/depth"
	"github.com/Carmen-Shannon/starfield/engine/light"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// TransitionWidth is the width of the terminator band in normalized incidence units.
	TransitionWidth = 0.1

	// AmbientBlendFloor is the minimum diffuse term at which the night texture fully replaces
	// the lit surface.
	AmbientBlendFloor = -0.25
)

// SurfaceLight is the lit planet surface color and the smallest signed diffuse term across
// the active lights. MinDiffuse starts at 1 and stays there when no light is active.
type SurfaceLight struct {
	Color      mgl32.Vec3
	MinDiffuse float32
}

// IncidenceAngle returns acos(l·n)/π, the normalized angle between the star direction and the
// surface normal. 0 faces the star, 1 faces away.
func IncidenceAngle(l, n mgl32.Vec3) float32 {
	return float32(math.Acos(float64(clamp(l.Dot(n), -1, 1))) / math.Pi)
}

// Terminator returns the day/night falloff at a normalized incidence angle.
// Terminator(0) is 1 and Terminator(1) is 0.
func Terminator(theta float32) float32 {
	transition := clamp((0.5-theta)/TransitionWidth+0.5, 0, 1)
	return 0.1*(1-theta) + 0.9*transition
}

// Fresnel returns the limb brightening term for a unit normal and a unit view vector.
func Fresnel(n, v mgl32.Vec3) float32 {
	s := float32(math.Sin(math.Acos(float64(clamp(n.Dot(v), -1, 1)))))
	return 0.3 + 0.2*pow(s, 20) + 0.5*pow(s, 400)
}

// SurfaceLighting evaluates the atmosphere stage's diffuse-only surface term.
//
// Parameters:
//   - base: the surface albedo
//   - n: the unit camera-space normal
//   - position: the camera-space surface position
//   - block: the lighting block
//
// Returns:
//   - SurfaceLight: the lit color and the minimum diffuse term
func SurfaceLighting(base, n, position mgl32.Vec3, block *light.GPULightingBlock) SurfaceLight {
	result := SurfaceLight{MinDiffuse: 1}
	active := block.Active()
	if len(active) == 0 {
		result.Color = base.Mul(FallbackAmbient)
		return result
	}
	for _, pl := range active {
		toLight := mgl32.Vec3(pl.Position).Sub(position)
		d := toLight.Len()
		diffuse := n.Dot(toLight.Mul(1 / max(d, depth.Epsilon)))
		lit := modulate(pl.Diffuse, base).Mul(max(diffuse, 0) * block.Attenuate(d))
		result.Color = result.Color.Add(modulate(pl.Ambient, base)).Add(lit)
		result.MinDiffuse = min(result.MinDiffuse, diffuse)
	}
	return result
}

// AmbientBlendWeight returns how far the night texture replaces the lit surface for a
// minimum diffuse term: 0 at or above zero, 1 at or below AmbientBlendFloor.
func AmbientBlendWeight(minDiffuse float32) float32 {
	if minDiffuse >= 0 {
		return 0
	}
	return clamp(minDiffuse, AmbientBlendFloor, 0) / AmbientBlendFloor
}

type atmosphereStage struct{}

func (atmosphereStage) Kind() material.StageKind {
	return material.StageAtmosphere
}

func (atmosphereStage) Vertex(v Vertex, in *Inputs) Varying {
	return surfaceVertex(v, in.Transform)
}

func (atmosphereStage) Fragment(v Varying, in *Inputs) mgl32.Vec4 {
	params := in.Material.(*material.GPUAtmosphereParams)
	n := normalize(v.Normal)
	view := normalize(v.ViewPosition.Mul(-1))
	l := normalize(mgl32.Vec3(params.StarPosition).Sub(v.ViewPosition))
	theta := IncidenceAngle(l, n)

	base := in.Textures[material.RoleDiffuse].Sample(v.TexCoord)
	gradient := in.Textures[material.RoleGradient].Sample(mgl32.Vec2{theta, 0.5})

	lit := SurfaceLighting(base.Vec3(), n, v.ViewPosition, in.Lighting)
	surface := lit.Color
	if params.UseAmbientTexture != 0 {
		if w := AmbientBlendWeight(lit.MinDiffuse); w > 0 {
			night := in.Textures[material.RoleAmbient].Sample(v.TexCoord)
			surface = mix(surface, night.Vec3(), w)
		}
	}

	intensity := Terminator(theta) * Fresnel(n, view)
	shell := modulate(gradient.Vec3(), mgl32.Vec4(params.ColorMod).Vec3())
	alpha := clamp(intensity*(1+params.Overglow), 0, 1) * params.ColorMod[3]
	// The shell is composited over the surface here, so the fragment leaves opaque.
	return mix(surface, shell, alpha).Vec4(1)
}

func mix(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}
