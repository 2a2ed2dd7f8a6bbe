package frame

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/Carmen-Shannon/starfield/engine/camera"
	"github.com/Carmen-Shannon/starfield/engine/game_object"
	"github.com/Carmen-Shannon/starfield/engine/light"
	"github.com/Carmen-Shannon/starfield/engine/occlusion"
	"github.com/Carmen-Shannon/starfield/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/Carmen-Shannon/starfield/engine/shading"
	"github.com/Carmen-Shannon/starfield/engine/transform"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultAlignment is WebGPU's default minUniformBufferOffsetAlignment.
	DefaultAlignment = 256

	transformSize = 240
	lightingSize  = 528
)

// Arena bindings. Each arena provider holds a single buffer at binding 0.
const arenaBinding = 0

// Packer builds Frames. It owns one provider per uniform arena and restages them on every
// Pack, so handles of a returned Frame stay valid until the next Pack call.
// Pack calls are serialized.
type Packer struct {
	mu          sync.Mutex
	workers     int
	alignment   uint64
	attenuation light.Attenuation
	screen      [2]float32
	culling     bool

	transforms bind_group_provider.BindGroupProvider
	materials  bind_group_provider.BindGroupProvider
	lighting   bind_group_provider.BindGroupProvider

	lastCulled int
}

// NewPacker creates a Packer. Defaults: GOMAXPROCS workers, 256-byte alignment, no light
// attenuation, a 1920x1080 screen and frustum culling enabled.
//
// Parameters:
//   - opts: variadic list of PackerOption functions
//
// Returns:
//   - *Packer: the packer
func NewPacker(opts ...PackerOption) *Packer {
	p := &Packer{
		workers:   runtime.GOMAXPROCS(0),
		alignment: DefaultAlignment,
		screen:    [2]float32{1920, 1080},
		culling:   true,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.transforms = bind_group_provider.NewBindGroupProvider("frame_transforms")
	p.materials = bind_group_provider.NewBindGroupProvider("frame_materials")
	p.lighting = bind_group_provider.NewBindGroupProvider("frame_lighting")
	return p
}

// TransformProvider returns the provider holding the transform arena.
func (p *Packer) TransformProvider() bind_group_provider.BindGroupProvider {
	return p.transforms
}

// MaterialProvider returns the provider holding the material arena.
func (p *Packer) MaterialProvider() bind_group_provider.BindGroupProvider {
	return p.materials
}

// LightingProvider returns the provider holding the lighting block.
func (p *Packer) LightingProvider() bind_group_provider.BindGroupProvider {
	return p.lighting
}

// Alignment returns the arena offset alignment in bytes.
func (p *Packer) Alignment() uint64 {
	return p.alignment
}

// SetCulling toggles frustum culling for subsequent Pack calls.
func (p *Packer) SetCulling(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.culling = enabled
}

// Release frees the GPU resources of the arena providers.
func (p *Packer) Release() {
	p.transforms.Release()
	p.materials.Release()
	p.lighting.Release()
}

func (p *Packer) align(size uint64) uint64 {
	return (size + p.alignment - 1) &^ (p.alignment - 1)
}

type entry struct {
	obj      game_object.GameObject
	mat      material.Material
	name     string
	kind     material.StageKind
	distance float64

	transformOffset uint64
	materialOffset  uint64
	materialSize    uint64
}

// cullable reports whether a stage draws a body with a meaningful bounding sphere.
func cullable(kind material.StageKind) bool {
	return kind == material.StageDefault || kind == material.StageSun || kind == material.StageAtmosphere
}

// Pack builds one frame for a camera snapshot. Objects are packed concurrently; each one gets
// its own transform slot and, when its stage has one, its own material slot.
//
// Parameters:
//   - ctx: cancels packing between objects
//   - state: the frame's camera snapshot
//   - objects: the objects in submission order; nil and disabled objects are skipped
//   - lights: the frame's lights
//
// Returns:
//   - *Frame: the packed frame
//   - error: ErrMissingMaterial, ErrNonFiniteTransform or a payload error wrapped with the
//     object name, or the context error
func (p *Packer) Pack(ctx context.Context, state camera.State, objects []game_object.GameObject, lights []light.Light) (*Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	block := light.BuildLightingBlock(lights, state, p.attenuation)
	var primary *mgl64.Vec3
	for _, l := range lights {
		if l != nil && l.Enabled() {
			pos := l.Position()
			primary = &pos
			break
		}
	}

	entries, occluders, culled, err := p.selectObjects(state, objects)
	if err != nil {
		return nil, err
	}

	transformStride := p.align(transformSize)
	var materialTotal uint64
	for i := range entries {
		entries[i].transformOffset = uint64(i) * transformStride
		if size := entries[i].kind.PayloadSize(); size > 0 {
			entries[i].materialOffset = materialTotal
			entries[i].materialSize = uint64(size)
			materialTotal += p.align(uint64(size))
		}
	}
	transformArena := make([]byte, uint64(len(entries))*transformStride)
	materialArena := make([]byte, materialTotal)

	builder := transform.NewBuilder(state)
	draws := make([]DrawCall, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e := &entries[i]
			d, err := p.packOne(builder, e, primary, occluders, transformArena, materialArena)
			if err != nil {
				return err
			}
			draws[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(draws, compareDraws)

	writes := []bind_group_provider.BufferWrite{{Provider: p.transforms, Binding: arenaBinding, Data: transformArena}}
	if len(materialArena) > 0 {
		writes = append(writes, bind_group_provider.BufferWrite{Provider: p.materials, Binding: arenaBinding, Data: materialArena})
	}
	writes = append(writes, bind_group_provider.BufferWrite{Provider: p.lighting, Binding: arenaBinding, Data: block.Marshal()})
	for _, w := range writes {
		w.Stage()
	}

	if culled != p.lastCulled {
		log.Printf("[Frame] culled %d of %d objects", culled, len(objects))
		p.lastCulled = culled
	}

	return &Frame{
		State:    state,
		Draws:    draws,
		Writes:   writes,
		Lighting: block,
		Stats: Stats{
			Submitted:      len(objects),
			Drawn:          len(draws),
			Culled:         culled,
			TransformBytes: len(transformArena),
			MaterialBytes:  len(materialArena),
			Duration:       time.Since(start),
		},
	}, nil
}

// selectObjects filters the submission list and gathers the bodies that can hide a star.
func (p *Packer) selectObjects(state camera.State, objects []game_object.GameObject) ([]entry, []occlusion.Sphere, int, error) {
	frustum := common.ExtractFrustum(state.RelativeViewProjection())
	entries := make([]entry, 0, len(objects))
	var occluders []occlusion.Sphere
	culled := 0

	for _, obj := range objects {
		if obj == nil || !obj.Enabled() {
			continue
		}
		name := obj.Name()
		if name == "" {
			name = fmt.Sprintf("object %d", obj.ID())
		}
		m := obj.Material()
		if m == nil {
			return nil, nil, 0, fmt.Errorf("%s: %w", name, ErrMissingMaterial)
		}
		kind := m.Kind()
		pos := obj.Position()

		if cullable(kind) {
			occluders = append(occluders, occlusion.Sphere{Position: pos, Radius: obj.Radius()})
		}
		if kind == material.StageLine && (obj.Trail() == nil || !obj.Trail().Renderable()) {
			continue
		}
		if p.culling && cullable(kind) && !frustum.SphereVisible(state.Relative(pos), obj.Radius()) {
			culled++
			continue
		}
		entries = append(entries, entry{
			obj:      obj,
			mat:      m,
			name:     name,
			kind:     kind,
			distance: state.Relative(pos).Len(),
		})
	}
	return entries, occluders, culled, nil
}

// packOne writes one object's transform and material payload into its arena slots.
func (p *Packer) packOne(builder *transform.Builder, e *entry, primary *mgl64.Vec3, occluders []occlusion.Sphere, transformArena, materialArena []byte) (DrawCall, error) {
	state := builder.State()
	ot := e.obj.Transform()
	radius := e.obj.Radius()
	if !common.ValidateMatrix64(ot.Model()) {
		return DrawCall{}, fmt.Errorf("%s: model: %w", e.name, ErrNonFiniteTransform)
	}

	var opts []transform.BuildOption
	if primary != nil {
		opts = append(opts, transform.WithLightPosition(*primary))
	}

	var g transform.GPUStandardTransform
	switch e.kind {
	case material.StageSkybox:
		g = builder.BuildSkybox(ot, opts...)
	case material.StageLine:
		g = builder.Build(transform.At(state.Position), opts...)
	case material.StageBlackHole:
		radius = ot.BoundingRadius()
		g = builder.Build(ot.WithRotation(state.Rotation).WithUniformScale(radius*shading.BillboardScale), opts...)
	case material.StageLensGlow:
		radius = ot.BoundingRadius()
		g = builder.Build(ot.WithRotation(state.Rotation), opts...)
	default:
		g = builder.Build(ot, opts...)
	}
	if !g.Finite() {
		return DrawCall{}, fmt.Errorf("%s: %w", e.name, ErrNonFiniteTransform)
	}
	g.MarshalTo(transformArena[e.transformOffset : e.transformOffset+transformSize])

	env := material.PayloadEnv{
		State:    state,
		Position: ot.Position,
		Radius:   radius,
		Light:    primary,
		Screen:   p.screen,
	}
	if e.kind == material.StageLensGlow && e.mat.GlowSize() == ([2]float32{}) {
		env.GlowSize = glowSize(state.Position, ot.Position, radius, e.mat.Temperature(), occluders)
	}
	payload, err := material.BuildPayload(e.mat, env)
	if err != nil {
		return DrawCall{}, fmt.Errorf("%s: %w", e.name, err)
	}

	d := DrawCall{
		Object:      e.obj,
		Name:        e.name,
		Kind:        e.kind,
		PipelineKey: e.mat.PipelineKey(),
		Distance:    e.distance,
		Transform: bind_group_provider.UniformHandle{
			Provider: p.transforms,
			Binding:  arenaBinding,
			Offset:   e.transformOffset,
			Size:     transformSize,
		},
	}
	if payload != nil {
		payload.MarshalTo(materialArena[e.materialOffset : e.materialOffset+e.materialSize])
		d.Material = bind_group_provider.UniformHandle{
			Provider: p.materials,
			Binding:  arenaBinding,
			Offset:   e.materialOffset,
			Size:     e.materialSize,
		}
	}
	if e.kind.Lit() {
		d.Lighting = bind_group_provider.UniformHandle{Provider: p.lighting, Binding: arenaBinding, Size: lightingSize}
	}
	if e.kind == material.StageLine {
		d.LineVertices = e.obj.Trail().VertexBytes(state.Position)
	}
	return d, nil
}

// glowSize derives a lens glow extent from the star radius, ignoring bodies the star sits
// inside of (its own sun sphere).
func glowSize(cameraPos, star mgl64.Vec3, radius float64, kelvin float32, occluders []occlusion.Sphere) [2]float32 {
	blocking := make([]occlusion.Sphere, 0, len(occluders))
	for _, s := range occluders {
		if star.Sub(s.Position).Len() > s.Radius {
			blocking = append(blocking, s)
		}
	}
	diameterSolar := 2 * radius / (occlusion.SolarDiameterKm * 1000)
	return occlusion.GlowExtent(cameraPos, star, diameterSolar, float64(kelvin), blocking)
}

// drawRank orders skybox, opaque, then transparent draws.
func drawRank(kind material.StageKind) int {
	switch {
	case kind == material.StageSkybox:
		return 0
	case kind.Transparent():
		return 2
	default:
		return 1
	}
}

// compareDraws keeps submission order within a rank and sorts transparent draws far to near.
func compareDraws(a, b DrawCall) int {
	ra, rb := drawRank(a.Kind), drawRank(b.Kind)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	if ra == 2 {
		return cmp.Compare(b.Distance, a.Distance)
	}
	return 0
}
