package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/Carmen-Shannon/starfield/engine"
	"github.com/Carmen-Shannon/starfield/engine/config"
	"github.com/Carmen-Shannon/starfield/engine/frame"
	"github.com/Carmen-Shannon/starfield/engine/game_object"
	"github.com/Carmen-Shannon/starfield/engine/light"
	"github.com/Carmen-Shannon/starfield/engine/model"
	"github.com/Carmen-Shannon/starfield/engine/orbit"
	"github.com/Carmen-Shannon/starfield/engine/renderer"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/Carmen-Shannon/starfield/engine/scene"
	"github.com/Carmen-Shannon/starfield/engine/shading"
	"github.com/Carmen-Shannon/starfield/engine/texture"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	white    = texture.Solid("white", mgl32.Vec4{1, 1, 1, 1})
	spectrum = texture.Gradient("spectrum", 64,
		texture.Stop{At: 0, Color: mgl32.Vec4{1, 0.3, 0.1, 1}},
		texture.Stop{At: 0.2, Color: mgl32.Vec4{1, 0.95, 0.85, 1}},
		texture.Stop{At: 1, Color: mgl32.Vec4{0.6, 0.7, 1, 1}},
	)
	sky = texture.SolidCube(mgl32.Vec4{0.02, 0.02, 0.05, 1})
)

// bodyKinds is the mix of stages the sample frame cycles through.
var bodyKinds = []material.StageKind{
	material.StageDefault, material.StageAtmosphere, material.StageSun,
	material.StageBlackHole, material.StageLensGlow, material.StageLine,
}

func newMaterial(kind material.StageKind) material.Material {
	opts := []material.MaterialBuilderOption{material.WithCube(sky)}
	for _, role := range kind.Textures() {
		tex := white
		if role == material.RoleGradient || role == material.RoleSpectrum {
			tex = spectrum
		}
		opts = append(opts, material.WithTexture(role, tex))
	}
	return material.NewMaterial(kind, opts...)
}

// buildScene scatters n bodies within 1e6 m of the configured camera position.
func buildScene(cfg config.Config, rng *rand.Rand, n int) scene.Scene {
	cam := newCamera(cfg)
	origin := cam.State().Position

	s := scene.NewScene("bench", cam,
		scene.WithActive(true),
		scene.WithCullingDisabled(!cfg.Frame.Culling),
		scene.WithObjects(game_object.NewGameObject(
			game_object.WithName("skybox"),
			game_object.WithModel(model.NewCube("skybox")),
			game_object.WithMaterial(newMaterial(material.StageSkybox)),
		)),
	)
	s.AddLight(light.NewLight(light.WithName("primary"), light.WithPosition(origin.Add(mgl64.Vec3{1e6, 1e6, 0}))))

	for i := range n {
		kind := bodyKinds[i%len(bodyKinds)]
		position := origin.Add(mgl64.Vec3{
			(rng.Float64()*2 - 1) * 2e5,
			(rng.Float64()*2 - 1) * 2e5,
			-(1e4 + rng.Float64()*9.9e5),
		})
		name := fmt.Sprintf("%s_%d", kind, i)
		opts := []game_object.GameObjectBuilderOption{
			game_object.WithName(name),
			game_object.WithMaterial(newMaterial(kind)),
			game_object.WithPosition(position),
			game_object.WithUniformScale(1e3 + rng.Float64()*1e4),
		}
		switch {
		case kind == material.StageLine:
			trail := orbit.NewTrail(append(cfg.TrailOptions(), orbit.WithMinDistance(1e3))...)
			for j := range 16 {
				a := float64(j) / 16 * math.Pi
				trail.Add(position.Add(mgl64.Vec3{math.Cos(a) * 1e5, 0, math.Sin(a) * 1e5}))
			}
			opts = append(opts, game_object.WithTrail(trail))
		case kind.Billboard():
			opts = append(opts, game_object.WithModel(model.NewQuad(name)))
		default:
			opts = append(opts, game_object.WithModel(model.NewUVSphere(name, 16, 32)))
		}
		s.Add(game_object.NewGameObject(opts...))
	}
	return s
}

// shadeFrame runs the CPU reference of every draw on the quad center and counts the draws
// that produced a finite color.
func shadeFrame(f *frame.Frame) (int, error) {
	center := shading.Vertex{Position: mgl32.Vec3{0, 0, 1}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{0.5, 0.5}}
	finite := 0
	for _, d := range f.Draws {
		in, err := f.Inputs(d)
		if err != nil {
			return finite, err
		}
		_, color, err := shading.Shade(d.Kind, center, in)
		if err != nil {
			return finite, fmt.Errorf("%s: %w", d.Name, err)
		}
		ok := true
		for _, c := range color {
			if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
				ok = false
			}
		}
		if ok {
			finite++
		}
	}
	return finite, nil
}

// frameReport summarizes a bench run of the sample scene.
type frameReport struct {
	Frames int64
	First  frame.Stats
	Draws  int
	Finite int
}

// runFrames drives the sample scene through the engine for the given number of frames. The
// first frame is shaded on the CPU; every frame is drawn by r when it is non-nil.
func runFrames(ctx context.Context, cfg config.Config, rng *rand.Rand, n, frames int, r renderer.Renderer) (frameReport, error) {
	s := buildScene(cfg, rng, n)
	s.RecordTrails()
	p := frame.NewPacker(cfg.PackerOptions()...)
	defer p.Release()

	var rep frameReport
	shaded := false
	opts := []engine.EngineBuilderOption{
		engine.WithScene(0, s),
		engine.WithPacker(p),
		engine.WithMaxFrames(frames),
		engine.WithFrameCallback(func(_ int, f *frame.Frame) error {
			if shaded {
				return nil
			}
			shaded = true
			finite, err := shadeFrame(f)
			if err != nil {
				return err
			}
			rep.First, rep.Draws, rep.Finite = f.Stats, len(f.Draws), finite
			return nil
		}),
	}
	if prof := cfg.NewProfiler(); prof != nil {
		opts = append(opts, engine.WithProfiler(prof))
	}
	if r != nil {
		opts = append(opts, engine.WithRenderer(r))
	}

	e := engine.NewEngine(opts...)
	err := e.Run(ctx)
	rep.Frames = e.Frames()
	return rep, err
}
