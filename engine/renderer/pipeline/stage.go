package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/Carmen-Shannon/starfield/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// StageOptions returns the fixed-function state of a shading stage.
//
// Parameters:
//   - kind: the shading stage
//
// Returns:
//   - []PipelineBuilderOption: the options NewPipeline applies for the stage
func StageOptions(kind material.StageKind) []PipelineBuilderOption {
	switch kind {
	case material.StageSkybox:
		// drawn first at the far plane, seen from inside
		return []PipelineBuilderOption{
			WithCullMode(wgpu.CullModeNone),
			WithDepthCompare(wgpu.CompareFunctionLessEqual),
			WithDepthWriteEnabled(false),
		}
	case material.StageDefault:
		return []PipelineBuilderOption{
			WithCullMode(wgpu.CullModeBack),
		}
	case material.StageSun:
		return []PipelineBuilderOption{
			WithFrontFace(wgpu.FrontFaceCW),
			WithCullMode(wgpu.CullModeNone),
		}
	case material.StageAtmosphere:
		return []PipelineBuilderOption{
			WithCullMode(wgpu.CullModeBack),
			WithBlendEnabled(true),
		}
	case material.StageBlackHole:
		return []PipelineBuilderOption{
			WithCullMode(wgpu.CullModeNone),
			WithBlendEnabled(true),
			WithDepthWriteEnabled(false),
		}
	case material.StageLensGlow:
		return []PipelineBuilderOption{
			WithCullMode(wgpu.CullModeNone),
			WithBlendEnabled(true),
			WithDepthWriteEnabled(false),
		}
	case material.StageLine:
		return []PipelineBuilderOption{
			WithTopology(wgpu.PrimitiveTopologyLineList),
			WithCullMode(wgpu.CullModeNone),
		}
	default:
		return nil
	}
}

// ForStage compiles the built-in module of a stage and wraps it in a pipeline carrying the
// stage's fixed-function state. The pipeline key is the stage name.
//
// Parameters:
//   - kind: the shading stage
//   - opts: extra options applied after the stage defaults
//
// Returns:
//   - Pipeline: the pipeline, not yet created on a device
//   - error: error if the stage module fails to compile
func ForStage(kind material.StageKind, opts ...PipelineBuilderOption) (Pipeline, error) {
	s, err := shader.NewStageShader(kind)
	if err != nil {
		return nil, err
	}
	all := append([]PipelineBuilderOption{WithShader(s)}, StageOptions(kind)...)
	return NewPipeline(kind.String(), append(all, opts...)...), nil
}

// Set holds one pipeline per shading stage.
type Set map[material.StageKind]Pipeline

// NewSet builds the pipelines of every stage.
//
// Returns:
//   - Set: pipelines keyed by stage
//   - error: the first stage that fails to compile
func NewSet() (Set, error) {
	set := make(Set, len(material.AllStages()))
	for _, kind := range material.AllStages() {
		p, err := ForStage(kind)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", kind, err)
		}
		set[kind] = p
	}
	return set, nil
}

// Create creates every pipeline of the set on device.
func (s Set) Create(device *wgpu.Device, format wgpu.TextureFormat, sampleCount uint32) error {
	for _, kind := range material.AllStages() {
		p, ok := s[kind]
		if !ok {
			continue
		}
		if err := p.Create(device, format, sampleCount); err != nil {
			return fmt.Errorf("pipeline %s: %w", kind, err)
		}
	}
	return nil
}

// Release frees the GPU objects of every pipeline in the set.
func (s Set) Release() {
	for _, p := range s {
		p.Release()
	}
}
