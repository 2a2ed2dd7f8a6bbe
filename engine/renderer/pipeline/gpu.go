package pipeline

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

func (p *pipeline) Create(device *wgpu.Device, format wgpu.TextureFormat, sampleCount uint32) error {
	if p.shader == nil {
		return errors.New("a stage shader must be set to create a render pipeline")
	}
	if sampleCount == 0 {
		sampleCount = 1
	}

	module, err := device.CreateShaderModule(p.shader.Module())
	if err != nil {
		return fmt.Errorf("%s: %w", p.pipelineKey, err)
	}
	defer module.Release()

	descriptors := p.shader.BindGroupLayoutDescriptors()
	maxGroup := -1
	for g := range descriptors {
		maxGroup = max(maxGroup, g)
	}
	layouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, desc := range descriptors {
		desc.Label = fmt.Sprintf("%s group %d", p.pipelineKey, g)
		layout, layoutErr := device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		layouts[g] = layout
	}
	p.bindGroupLayouts = layouts

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.pipelineKey,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	vertexLayouts := make([]wgpu.VertexBufferLayout, 0, len(p.shader.VertexLayouts()))
	for i := range p.shader.VertexLayouts() {
		vertexLayouts = append(vertexLayouts, p.shader.VertexLayout(i)...)
	}

	created, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.pipelineKey + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.shader.VertexEntryPoint(),
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.shader.FragmentEntryPoint(),
			Targets:    []wgpu.ColorTargetState{p.ColorTarget(format)},
		},
		Primitive: p.Primitive(),
		Multisample: wgpu.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: p.DepthStencil(),
	})
	if err != nil {
		return err
	}
	p.renderPipeline = created
	return nil
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	for _, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
		}
	}
	p.bindGroupLayouts = nil
}
