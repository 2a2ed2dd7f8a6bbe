package frame

import (
	"github.com/Carmen-Shannon/starfield/engine/light"
)

// PackerOption is a functional option for configuring a Packer during construction.
type PackerOption func(*Packer)

// WithWorkers sets how many objects are packed concurrently.
//
// Parameters:
//   - n: the worker limit, values below 1 mean GOMAXPROCS
//
// Returns:
//   - PackerOption: a function that applies the worker limit
func WithWorkers(n int) PackerOption {
	return func(p *Packer) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithAlignment sets the dynamic offset alignment of the uniform arenas. It must be a power of
// two; WebGPU's minUniformBufferOffsetAlignment defaults to 256.
//
// Parameters:
//   - bytes: the alignment in bytes
//
// Returns:
//   - PackerOption: a function that applies the alignment
func WithAlignment(bytes uint64) PackerOption {
	return func(p *Packer) {
		if bytes > 0 && bytes&(bytes-1) == 0 {
			p.alignment = bytes
		}
	}
}

// WithAttenuation sets the distance falloff written into the lighting block.
//
// Parameters:
//   - a: the attenuation coefficients
//
// Returns:
//   - PackerOption: a function that applies the attenuation
func WithAttenuation(a light.Attenuation) PackerOption {
	return func(p *Packer) {
		p.attenuation = a
	}
}

// WithScreenSize sets the framebuffer size written into lens glow uniforms.
//
// Parameters:
//   - width: the framebuffer width in pixels
//   - height: the framebuffer height in pixels
//
// Returns:
//   - PackerOption: a function that applies the screen size
func WithScreenSize(width, height int) PackerOption {
	return func(p *Packer) {
		p.screen = [2]float32{float32(width), float32(height)}
	}
}

// WithCulling enables or disables frustum culling of bodies.
//
// Parameters:
//   - enabled: false to pack every enabled object
//
// Returns:
//   - PackerOption: a function that applies the culling toggle
func WithCulling(enabled bool) PackerOption {
	return func(p *Packer) {
		p.culling = enabled
	}
}
