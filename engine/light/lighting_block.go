package light

import (
	"log"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/Carmen-Shannon/starfield/engine/camera"
)

// Attenuation holds the distance falloff coefficients 1/(1 + Linear d + Quadratic d^2).
// The zero value disables falloff, which suits light sources at astronomical distances.
type Attenuation struct {
	Linear    float32
	Quadratic float32
}

// ToGPUPointLight converts a Light into its GPU representation, moving the position into
// camera space. The camera subtraction happens in float64 before the reduction.
//
// Parameters:
//   - l: the Light to convert
//   - state: the frame's camera snapshot
//
// Returns:
//   - GPUPointLight: the GPU-aligned representation
func ToGPUPointLight(l Light, state camera.State) GPUPointLight {
	return GPUPointLight{
		Position: common.ReduceVec3(state.ToCameraSpace(l.Position())),
		Ambient:  l.Ambient(),
		Diffuse:  l.Diffuse(),
		Specular: l.Specular(),
	}
}

// BuildLightingBlock packs the enabled lights into a GPULightingBlock in submission order.
// Only the first MaxLights enabled lights are kept; the rest are dropped with a log line.
//
// Parameters:
//   - lights: the frame's lights (disabled lights are skipped)
//   - state: the frame's camera snapshot
//   - attenuation: the distance falloff coefficients
//
// Returns:
//   - GPULightingBlock: the populated block
func BuildLightingBlock(lights []Light, state camera.State, attenuation Attenuation) GPULightingBlock {
	block := GPULightingBlock{
		AttenuationLinear:    attenuation.Linear,
		AttenuationQuadratic: attenuation.Quadratic,
	}
	dropped := 0
	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		if block.Count >= MaxLights {
			dropped++
			continue
		}
		block.Lights[block.Count] = ToGPUPointLight(l, state)
		block.Count++
	}
	if dropped > 0 {
		log.Printf("[Light] %d enabled lights exceed the limit of %d, dropped %d", int(block.Count)+dropped, MaxLights, dropped)
	}
	return block
}
