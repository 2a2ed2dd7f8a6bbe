package renderer

import (
	"fmt"
	"log"
	"maps"
	"sync"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/Carmen-Shannon/starfield/engine/frame"
	"github.com/Carmen-Shannon/starfield/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/Carmen-Shannon/starfield/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/starfield/engine/shading"
	"github.com/Carmen-Shannon/starfield/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// uniformKey identifies a bind group over one arena buffer range for one pipeline group.
type uniformKey struct {
	pipeline string
	group    int
	buffer   *wgpu.Buffer
	offset   uint64
	size     uint64
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	plans         map[string][]groupPlan

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	sampleCount          MSAASampleCount
	width, height        int
	clearColor           wgpu.Color

	views         map[any]*wgpu.TextureView
	samplers      map[common.SamplerStagingData]*wgpu.Sampler
	uniformGroups map[uniformKey]*wgpu.BindGroup
	materials     []material.Material
	arenas        map[bind_group_provider.BindGroupProvider]map[int]struct{}
	meshes        []meshOwner
	lines         bind_group_provider.BindGroupProvider

	lastDraws int
}

type meshOwner interface {
	MeshProvider() bind_group_provider.BindGroupProvider
	SetMeshProvider(provider bind_group_provider.BindGroupProvider)
}

// Renderer draws packed frames into an offscreen target.
//
// The Renderer owns one pipeline per stage, keyed by stage name, plus any pipelines registered
// under custom keys. Rendering a frame uploads the frame's arena writes, then records one draw
// per DrawCall in the frame's order, binding each uniform through the draw's handle and its
// dynamic offset. Mesh buffers, textures and per-material texture bind groups are created on
// first use and kept until Release.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU objects of one or more pipelines and caches them by
	// PipelineKey. Keys already registered are skipped. A registered pipeline must declare the
	// same bindings as the stage of the materials that select it.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if binding routing or pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize recreates the offscreen target.
	//
	// Parameters:
	//   - width: target width in pixels
	//   - height: target height in pixels
	//
	// Returns:
	//   - error: error if the target cannot be recreated
	Resize(width, height int) error

	// Render uploads a frame's arenas and records its draws into the offscreen target.
	//
	// Parameters:
	//   - f: the packed frame
	//
	// Returns:
	//   - error: error if a draw has no pipeline, mesh or texture, or a GPU resource fails
	Render(f *frame.Frame) error

	// Target returns the view of the offscreen color target.
	//
	// Returns:
	//   - *wgpu.TextureView: the target view
	Target() *wgpu.TextureView

	// LastDrawCount returns the number of draws recorded by the last Render call.
	LastDrawCount() int

	// Release frees every GPU object the renderer created. Arena and mesh providers lose
	// their buffers and are re-created on the next use by another renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a headless Renderer with a pipeline for every stage.
//
// Parameters:
//   - options: functional options for configuring the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: error if no adapter or device is available, or a pipeline cannot be created
func NewRenderer(options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		plans:         make(map[string][]groupPlan),
		backendType:   BackendTypeWGPU,
		sampleCount:   MSAAOff,
		width:         1920,
		height:        1080,
		clearColor:    wgpu.Color{A: 1},
		views:         make(map[any]*wgpu.TextureView),
		samplers:      make(map[common.SamplerStagingData]*wgpu.Sampler),
		uniformGroups: make(map[uniformKey]*wgpu.BindGroup),
		arenas:        make(map[bind_group_provider.BindGroupProvider]map[int]struct{}),
		lines:         bind_group_provider.NewBindGroupProvider("Line Vertices"),
	}
	for _, opt := range options {
		opt(r)
	}

	if len(r.pipelineCache) == 0 {
		set, err := pipeline.NewSet()
		if err != nil {
			return nil, err
		}
		for kind, p := range set {
			r.pipelineCache[kind.String()] = p
		}
	}

	backend, err := newWGPURendererBackend(r.forceFallbackAdapter, r.sampleCount)
	if err != nil {
		return nil, err
	}
	r.backend = backend
	if err := r.backend.ConfigureTarget(r.width, r.height); err != nil {
		r.backend.Release()
		return nil, err
	}

	for key, p := range r.pipelineCache {
		if err := r.createPipeline(key, p); err != nil {
			r.Release()
			return nil, err
		}
	}
	log.Printf("[Renderer] created %d pipelines, target %dx%d", len(r.pipelineCache), r.width, r.height)
	return r, nil
}

func (r *renderer) createPipeline(key string, p pipeline.Pipeline) error {
	if p.Shader() == nil {
		return fmt.Errorf("pipeline %s has no shader", key)
	}
	plans, err := planBindings(p.Shader())
	if err != nil {
		return err
	}
	if err := r.backend.RegisterPipeline(p); err != nil {
		return fmt.Errorf("pipeline %s: %w", key, err)
	}
	r.plans[key] = plans
	return nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.pipelineCache)
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, ok := r.pipelineCache[key]; ok {
			continue
		}
		if err := r.createPipeline(key, p); err != nil {
			return err
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.ConfigureTarget(width, height)
}

func (r *renderer) Target() *wgpu.TextureView {
	return r.backend.Target()
}

func (r *renderer) LastDrawCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastDraws
}

func (r *renderer) Render(f *frame.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.prepareArenas(f.Writes); err != nil {
		return err
	}
	lineOffsets, err := r.prepareLines(f.Draws)
	if err != nil {
		return err
	}

	if err := r.backend.BeginFrame(r.clearColor); err != nil {
		return err
	}
	drawn := 0
	for i, d := range f.Draws {
		if err := r.draw(f, d, lineOffsets[i]); err != nil {
			_ = r.backend.EndFrame()
			return fmt.Errorf("%s: %w", d.Name, err)
		}
		drawn++
	}
	if err := r.backend.EndFrame(); err != nil {
		return err
	}
	r.lastDraws = drawn
	return nil
}

// prepareArenas sizes the arena buffers for the frame and uploads the staged writes. Bind
// groups over a replaced buffer are dropped.
func (r *renderer) prepareArenas(writes []bind_group_provider.BufferWrite) error {
	for _, w := range writes {
		grown, err := r.backend.EnsureBuffer(w.Provider, w.Binding, w.Offset+uint64(len(w.Data)), wgpu.BufferUsageUniform)
		if err != nil {
			return err
		}
		if r.arenas[w.Provider] == nil {
			r.arenas[w.Provider] = make(map[int]struct{})
		}
		r.arenas[w.Provider][w.Binding] = struct{}{}
		if grown {
			r.dropUniformGroups()
		}
	}
	return r.backend.WriteBuffers(writes)
}

// prepareLines packs every line draw's vertices into one vertex buffer and returns the byte
// offset of each draw's range.
func (r *renderer) prepareLines(draws []frame.DrawCall) ([]uint64, error) {
	offsets := make([]uint64, len(draws))
	var total uint64
	for i, d := range draws {
		offsets[i] = total
		total += uint64(len(d.LineVertices))
	}
	if total == 0 {
		return offsets, nil
	}
	data := make([]byte, 0, total)
	for _, d := range draws {
		data = append(data, d.LineVertices...)
	}
	if _, err := r.backend.EnsureBuffer(r.lines, 0, total, wgpu.BufferUsageVertex); err != nil {
		return nil, err
	}
	return offsets, r.backend.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: r.lines, Binding: 0, Data: data}})
}

func (r *renderer) draw(f *frame.Frame, d frame.DrawCall, lineOffset uint64) error {
	key := d.PipelineKey
	p, ok := r.pipelineCache[key]
	if !ok {
		key = d.Kind.String()
		if p, ok = r.pipelineCache[key]; !ok {
			return fmt.Errorf("no pipeline for key %q", d.PipelineKey)
		}
	}

	groups, offsets, err := r.bindings(f, d, key, p)
	if err != nil {
		return err
	}

	if d.Kind == material.StageLine {
		r.backend.Draw(p, r.lines.Buffer(0), lineOffset, uint64(len(d.LineVertices)), uint32(d.VertexCount()), groups, offsets)
		return nil
	}

	if d.Object == nil || d.Object.Model() == nil {
		return fmt.Errorf("draw has no model")
	}
	m := d.Object.Model()
	mesh := m.MeshProvider()
	if mesh == nil {
		mesh = bind_group_provider.NewBindGroupProvider(m.Name()+" Mesh", bind_group_provider.WithIndexCount(m.IndexCount()))
		m.SetMeshProvider(mesh)
	}
	if mesh.VertexBuffer() == nil {
		if err := r.backend.InitMeshBuffers(mesh, m.VertexData(), m.IndexData(), m.IndexCount()); err != nil {
			return err
		}
		r.meshes = append(r.meshes, m)
	}
	r.backend.DrawIndexed(p, mesh, groups, offsets)
	return nil
}

// bindings resolves the bind groups and dynamic offsets of one draw against its pipeline.
func (r *renderer) bindings(f *frame.Frame, d frame.DrawCall, key string, p pipeline.Pipeline) ([]*wgpu.BindGroup, [][]uint32, error) {
	plans := r.plans[key]
	groups := make([]*wgpu.BindGroup, len(plans))
	offsets := make([][]uint32, len(plans))

	for i, g := range plans {
		if !g.Uniform() {
			bg, err := r.textureGroup(f, d, key, p, g)
			if err != nil {
				return nil, nil, err
			}
			groups[i] = bg
			continue
		}

		b := g.Bindings[0]
		h := handleFor(d, b.Source)
		if !h.Valid() {
			return nil, nil, fmt.Errorf("no uniform handle for group %d", g.Group)
		}
		buf := h.Provider.Buffer(h.Binding)
		if buf == nil {
			return nil, nil, fmt.Errorf("%s binding %d has no GPU buffer", h.Provider.Label(), h.Binding)
		}

		uk := uniformKey{pipeline: key, group: g.Group, buffer: buf, size: h.Size}
		if b.Dynamic {
			offsets[i] = []uint32{h.DynamicOffset()}
		} else {
			uk.offset = h.Offset
		}
		bg, ok := r.uniformGroups[uk]
		if !ok {
			var err error
			bg, err = r.backend.CreateBindGroup(fmt.Sprintf("%s group %d", key, g.Group), p.BindGroupLayout(g.Group), []wgpu.BindGroupEntry{{
				Binding: uint32(b.Binding),
				Buffer:  buf,
				Offset:  uk.offset,
				Size:    h.Size,
			}})
			if err != nil {
				return nil, nil, err
			}
			r.uniformGroups[uk] = bg
		}
		groups[i] = bg
	}
	return groups, offsets, nil
}

func handleFor(d frame.DrawCall, s bindingSource) bind_group_provider.UniformHandle {
	switch s {
	case sourceTransform:
		return d.Transform
	case sourceMaterial:
		return d.Material
	case sourceLighting:
		return d.Lighting
	default:
		return bind_group_provider.UniformHandle{}
	}
}

// textureGroup returns the texture bind group of a draw's material, creating it through the
// material's bind group provider on first use.
func (r *renderer) textureGroup(f *frame.Frame, d frame.DrawCall, key string, p pipeline.Pipeline, g groupPlan) (*wgpu.BindGroup, error) {
	if d.Object == nil || d.Object.Material() == nil {
		return nil, fmt.Errorf("draw has no material for texture group %d", g.Group)
	}
	m := d.Object.Material()
	provider := m.BindGroupProvider()
	if provider == nil {
		provider = bind_group_provider.NewBindGroupProvider(m.Name() + " Textures")
		m.SetBindGroupProvider(provider)
	}
	if bg := provider.BindGroup(); bg != nil {
		return bg, nil
	}

	in, err := f.Inputs(d)
	if err != nil {
		return nil, err
	}
	var used []texture.Sampler2D
	entries := make([]wgpu.BindGroupEntry, 0, len(g.Bindings))
	for _, b := range g.Bindings {
		switch b.Source {
		case sourceTexture:
			tex := in.Textures[b.Role]
			if tex == nil {
				return nil, fmt.Errorf("%w: %s", shading.ErrMissingTexture, b.Role)
			}
			view, err := r.textureView(tex)
			if err != nil {
				return nil, err
			}
			used = append(used, tex)
			provider.SetTextureView(b.Binding, view)
			entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(b.Binding), TextureView: view})
		case sourceCube:
			if in.Cube == nil {
				return nil, fmt.Errorf("%w: %s", shading.ErrMissingTexture, b.Role)
			}
			view, err := r.cubeView(in.Cube)
			if err != nil {
				return nil, err
			}
			provider.SetTextureView(b.Binding, view)
			entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(b.Binding), TextureView: view})
		}
	}
	for _, b := range g.Bindings {
		if b.Source != sourceSampler {
			continue
		}
		samp, err := r.sampler(samplerFor(used))
		if err != nil {
			return nil, err
		}
		provider.SetSampler(b.Binding, samp)
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(b.Binding), Sampler: samp})
	}

	bg, err := r.backend.CreateBindGroup(provider.Label()+" Bind Group", p.BindGroupLayout(g.Group), entries)
	if err != nil {
		return nil, err
	}
	provider.SetBindGroup(bg)
	r.materials = append(r.materials, m)
	return bg, nil
}

func (r *renderer) textureView(s texture.Sampler2D) (*wgpu.TextureView, error) {
	if v, ok := r.views[s]; ok {
		return v, nil
	}
	label := "texture"
	if named, ok := s.(interface{ Name() string }); ok {
		label = named.Name()
	}
	v, err := r.backend.InitTextureView(label, []common.TextureStagingData{stage2D(s)})
	if err != nil {
		return nil, err
	}
	r.views[s] = v
	return v, nil
}

func (r *renderer) cubeView(c texture.CubeSampler) (*wgpu.TextureView, error) {
	if v, ok := r.views[c]; ok {
		return v, nil
	}
	faces, err := stageCube(c)
	if err != nil {
		return nil, err
	}
	v, err := r.backend.InitTextureView("cube", faces)
	if err != nil {
		return nil, err
	}
	r.views[c] = v
	return v, nil
}

func (r *renderer) sampler(cfg common.SamplerStagingData) (*wgpu.Sampler, error) {
	if s, ok := r.samplers[cfg]; ok {
		return s, nil
	}
	s, err := r.backend.InitSampler(fmt.Sprintf("sampler %d", len(r.samplers)), cfg)
	if err != nil {
		return nil, err
	}
	r.samplers[cfg] = s
	return s, nil
}

func (r *renderer) dropUniformGroups() {
	for k, bg := range r.uniformGroups {
		bg.Release()
		delete(r.uniformGroups, k)
	}
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dropUniformGroups()
	for _, m := range r.materials {
		if bg := m.BindGroupProvider().BindGroup(); bg != nil {
			bg.Release()
		}
		m.SetBindGroupProvider(nil)
	}
	r.materials = nil
	for k, v := range r.views {
		v.Release()
		delete(r.views, k)
	}
	for k, s := range r.samplers {
		s.Release()
		delete(r.samplers, k)
	}
	for _, m := range r.meshes {
		m.MeshProvider().Release()
		m.SetMeshProvider(nil)
	}
	r.meshes = nil
	for provider, bindings := range r.arenas {
		for b := range bindings {
			if buf := provider.Buffer(b); buf != nil {
				buf.Release()
				provider.SetBuffer(b, nil)
			}
		}
	}
	clear(r.arenas)
	if buf := r.lines.Buffer(0); buf != nil {
		buf.Release()
		r.lines.SetBuffer(0, nil)
	}
	for _, p := range r.pipelineCache {
		p.Release()
	}
	if r.backend != nil {
		r.backend.Release()
	}
}
