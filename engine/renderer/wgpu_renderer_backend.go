package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/Carmen-Shannon/starfield/engine/depth"
	"github.com/Carmen-Shannon/starfield/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/starfield/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// TargetFormat is the color format of the offscreen render target and of every sampled texture.
const TargetFormat = wgpu.TextureFormatRGBA8Unorm

// bufferAlignment rounds every GPU buffer allocation.
const bufferAlignment = 256

type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	sampleCount uint32
	width       int
	height      int

	targetTexture   *wgpu.Texture
	targetView      *wgpu.TextureView
	msaaTexture     *wgpu.Texture
	msaaView        *wgpu.TextureView
	depthTexture    *wgpu.Texture
	depthView       *wgpu.TextureView
	sampledTextures []*wgpu.Texture

	capacity map[*wgpu.Buffer]uint64

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
}

// wgpuRendererBackend defines the WebGPU operations the Renderer records a frame with.
// The backend renders into an offscreen color target; it owns no surface or window.
type wgpuRendererBackend interface {
	// ConfigureTarget (re)creates the offscreen color target and its Depth32Float attachment.
	//
	// Parameters:
	//   - width: target width in pixels
	//   - height: target height in pixels
	//
	// Returns:
	//   - error: error if either texture cannot be created
	ConfigureTarget(width, height int) error

	// Target returns the single-sample view frames are rendered (or resolved) into.
	//
	// Returns:
	//   - *wgpu.TextureView: the color target view, nil before ConfigureTarget
	Target() *wgpu.TextureView

	// Size returns the current target size in pixels.
	Size() (int, int)

	// RegisterPipeline creates the GPU render pipeline of p against the target format.
	//
	// Parameters:
	//   - p: the pipeline to create
	//
	// Returns:
	//   - error: error if pipeline creation fails
	RegisterPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers creates and fills the vertex and index buffers of a mesh provider.
	//
	// Parameters:
	//   - provider: the mesh provider receiving the buffers
	//   - vertexData: packed vertex bytes
	//   - indexData: packed uint32 indices
	//   - indexCount: number of indices
	//
	// Returns:
	//   - error: error if a buffer cannot be created
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// EnsureBuffer makes sure the provider holds a buffer of at least size bytes at binding,
	// replacing a smaller one. A replaced buffer is released, so bind groups built on it must
	// be dropped by the caller.
	//
	// Parameters:
	//   - provider: the provider owning the buffer
	//   - binding: the binding index of the buffer
	//   - size: the minimum size in bytes
	//   - usage: the buffer usage, CopyDst is always added
	//
	// Returns:
	//   - bool: true if a new buffer was created
	//   - error: error if the buffer cannot be created
	EnsureBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64, usage wgpu.BufferUsage) (bool, error)

	// WriteBuffers uploads staged buffer writes.
	//
	// Parameters:
	//   - writes: the writes to enqueue
	//
	// Returns:
	//   - error: the first write whose provider has no buffer
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// InitTextureView uploads a 2-D texture (one face) or a cube texture (six faces) and
	// returns a view of the matching dimension.
	//
	// Parameters:
	//   - label: debug label
	//   - faces: one or six faces of equal size
	//
	// Returns:
	//   - *wgpu.TextureView: the view
	//   - error: error if the texture cannot be created
	InitTextureView(label string, faces []common.TextureStagingData) (*wgpu.TextureView, error)

	// InitSampler creates a sampler from staging settings.
	//
	// Parameters:
	//   - label: debug label
	//   - staging: the sampler settings
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	//   - error: error if the sampler cannot be created
	InitSampler(label string, staging common.SamplerStagingData) (*wgpu.Sampler, error)

	// CreateBindGroup creates a bind group against a pipeline layout.
	//
	// Parameters:
	//   - label: debug label
	//   - layout: the bind group layout
	//   - entries: the resources in binding order
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group
	//   - error: error if creation fails
	CreateBindGroup(label string, layout *wgpu.BindGroupLayout, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error)

	// BeginFrame opens a command encoder and a render pass that clears color and depth.
	//
	// Parameters:
	//   - clear: the clear color
	//
	// Returns:
	//   - error: error if a frame is already open or the encoder cannot be created
	BeginFrame(clear wgpu.Color) error

	// DrawIndexed records an indexed mesh draw.
	//
	// Parameters:
	//   - p: the created pipeline
	//   - mesh: the provider holding the vertex and index buffers
	//   - bindGroups: the bind groups in group order
	//   - offsets: the dynamic offsets of each group
	DrawIndexed(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, bindGroups []*wgpu.BindGroup, offsets [][]uint32)

	// Draw records a non-indexed draw from a slice of a vertex buffer.
	//
	// Parameters:
	//   - p: the created pipeline
	//   - vertices: the vertex buffer
	//   - offset: byte offset of the first vertex
	//   - size: byte size of the vertex range
	//   - count: number of vertices
	//   - bindGroups: the bind groups in group order
	//   - offsets: the dynamic offsets of each group
	Draw(p pipeline.Pipeline, vertices *wgpu.Buffer, offset, size uint64, count uint32, bindGroups []*wgpu.BindGroup, offsets [][]uint32)

	// EndFrame ends the render pass and submits the recorded commands.
	//
	// Returns:
	//   - error: error if no frame is open or the encoder cannot be finished
	EndFrame() error

	// Device returns the logical device.
	Device() *wgpu.Device

	// Queue returns the device queue.
	Queue() *wgpu.Queue

	// Release frees the target, every uploaded texture and the device.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(forceFallbackAdapter bool, sampleCount MSAASampleCount) (wgpuRendererBackend, error) {
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		sampleCount: uint32(max(sampleCount, MSAAOff)),
		capacity:    make(map[*wgpu.Buffer]uint64),
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		w.instance.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Starfield Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		a.Release()
		w.instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()
	return w, nil
}

func (b *wgpuRendererBackendImpl) ConfigureTarget(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid target size %dx%d", width, height)
	}
	b.releaseTarget()

	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}
	var err error
	b.targetTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Offscreen Target",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        TargetFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return err
	}
	if b.targetView, err = b.targetTexture.CreateView(nil); err != nil {
		return err
	}

	if b.sampleCount > 1 {
		// drawn into at the sample count, resolved into the target at the end of the pass
		b.msaaTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   b.sampleCount,
			Dimension:     wgpu.TextureDimension2D,
			Format:        TargetFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return err
		}
		if b.msaaView, err = b.msaaTexture.CreateView(nil); err != nil {
			return err
		}
	}

	b.depthTexture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   b.sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        pipeline.DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	if b.depthView, err = b.depthTexture.CreateView(nil); err != nil {
		return err
	}

	b.width, b.height = width, height
	return nil
}

func (b *wgpuRendererBackendImpl) releaseTarget() {
	for _, v := range []*wgpu.TextureView{b.targetView, b.msaaView, b.depthView} {
		if v != nil {
			v.Release()
		}
	}
	for _, t := range []*wgpu.Texture{b.targetTexture, b.msaaTexture, b.depthTexture} {
		if t != nil {
			t.Release()
		}
	}
	b.targetView, b.msaaView, b.depthView = nil, nil, nil
	b.targetTexture, b.msaaTexture, b.depthTexture = nil, nil, nil
}

func (b *wgpuRendererBackendImpl) Target() *wgpu.TextureView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.targetView
}

func (b *wgpuRendererBackendImpl) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *wgpuRendererBackendImpl) RegisterPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return p.Create(b.device, TargetFormat, b.sampleCount)
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Vertex Buffer",
			Size:  uint64(len(vertexData)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, vertexData)
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Index Buffer",
			Size:  uint64(len(indexData)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) EnsureBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64, usage wgpu.BufferUsage) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	old := provider.Buffer(binding)
	if old != nil && b.capacity[old] >= size {
		return false, nil
	}
	alloc := growSize(b.capacity[old], size)
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
		Size:  alloc,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return false, err
	}
	if old != nil {
		delete(b.capacity, old)
		old.Release()
	}
	b.capacity[buf] = alloc
	provider.SetBuffer(binding, buf)
	return true, nil
}

// growSize doubles the current allocation until it fits size, rounded to bufferAlignment.
func growSize(current, size uint64) uint64 {
	alloc := max(current, bufferAlignment)
	for alloc < size {
		alloc *= 2
	}
	return (alloc + bufferAlignment - 1) / bufferAlignment * bufferAlignment
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		if err := w.Upload(b.queue); err != nil {
			return err
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) InitTextureView(label string, faces []common.TextureStagingData) (*wgpu.TextureView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(faces) != 1 && len(faces) != 6 {
		return nil, fmt.Errorf("%s: expected 1 or 6 faces, got %d", label, len(faces))
	}
	w, h := faces[0].Width, faces[0].Height
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              w,
			Height:             h,
			DepthOrArrayLayers: uint32(len(faces)),
		},
		Format:        TargetFormat,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	b.sampledTextures = append(b.sampledTextures, tex)

	for i, face := range faces {
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{Z: uint32(i)},
				Aspect:   wgpu.TextureAspectAll,
			},
			face.Pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  w * 4,
				RowsPerImage: h,
			},
			&wgpu.Extent3D{
				Width:              w,
				Height:             h,
				DepthOrArrayLayers: 1,
			},
		)
	}

	if len(faces) == 1 {
		return tex.CreateView(nil)
	}
	return tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           label + " Cube View",
		Format:          TargetFormat,
		Dimension:       wgpu.TextureViewDimensionCube,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 6,
		Aspect:          wgpu.TextureAspectAll,
	})
}

func (b *wgpuRendererBackendImpl) InitSampler(label string, staging common.SamplerStagingData) (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  common.Coalesce(staging.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(staging.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(staging.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(staging.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(staging.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(staging.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(staging.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(staging.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(staging.MaxAnisotropy, 1),
	})
}

func (b *wgpuRendererBackendImpl) CreateBindGroup(label string, layout *wgpu.BindGroupLayout, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if layout == nil {
		return nil, fmt.Errorf("%s: pipeline has no layout for the group", label)
	}
	return b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: entries,
	})
}

func (b *wgpuRendererBackendImpl) BeginFrame(clear wgpu.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder != nil {
		return fmt.Errorf("previous frame not yet ended")
	}
	if b.targetView == nil {
		return fmt.Errorf("render target not configured")
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	color := wgpu.RenderPassColorAttachment{
		View:       b.targetView,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: clear,
	}
	if b.msaaView != nil {
		color.View = b.msaaView
		color.ResolveTarget = b.targetView
		color.StoreOp = wgpu.StoreOpDiscard
	}

	b.framePass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: depth.ClearValue,
		},
	})
	b.frameEncoder = encoder
	return nil
}

func (b *wgpuRendererBackendImpl) setBindings(p pipeline.Pipeline, bindGroups []*wgpu.BindGroup, offsets [][]uint32) {
	b.framePass.SetPipeline(p.RenderPipeline())
	for i, bg := range bindGroups {
		var dyn []uint32
		if i < len(offsets) {
			dyn = offsets[i]
		}
		b.framePass.SetBindGroup(uint32(i), bg, dyn)
	}
}

func (b *wgpuRendererBackendImpl) DrawIndexed(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, bindGroups []*wgpu.BindGroup, offsets [][]uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.setBindings(p, bindGroups, offsets)
	b.framePass.SetVertexBuffer(0, mesh.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(mesh.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(mesh.IndexCount()), 1, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) Draw(p pipeline.Pipeline, vertices *wgpu.Buffer, offset, size uint64, count uint32, bindGroups []*wgpu.BindGroup, offsets [][]uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.setBindings(p, bindGroups, offsets)
	b.framePass.SetVertexBuffer(0, vertices, offset, size)
	b.framePass.Draw(count, 1, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return fmt.Errorf("no frame in progress")
	}
	encoder := b.frameEncoder
	b.frameEncoder = nil

	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseTarget()
	for _, t := range b.sampledTextures {
		t.Release()
	}
	b.sampledTextures = nil
	clear(b.capacity)

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
