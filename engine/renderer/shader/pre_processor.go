// pre_processor.go implements the WGSL stage pre-processor. It scans shader source code
// for @sf: annotations, replaces them with generated WGSL declarations or injected struct
// and library source, and collects a declarations list that the frame packer and pipeline
// cache use to wire uniform arenas and textures to bind groups without string lookups.
//
// The pre-processor maintains two registries:
//   - structRegistry: maps AnnotationArg keys to embedded WGSL sources and their resolved
//     type names. Used by @sf:include (to inject the source) and @sf:group (to resolve the
//     WGSL type name in the generated declaration). Library entries carry no type name.
//   - addressSpaceRegistry: maps address space argument keys to WGSL var<> syntax strings.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/starfield/engine/depth"
	"github.com/Carmen-Shannon/starfield/engine/light"
	"github.com/Carmen-Shannon/starfield/engine/model"
	"github.com/Carmen-Shannon/starfield/engine/orbit"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/Carmen-Shannon/starfield/engine/transform"
)

// registryEntry pairs a WGSL source string (embedded from a .wgsl asset file) with the
// resolved WGSL type name used in generated @group/@binding declarations.
type registryEntry struct {
	// Source is the raw WGSL text injected by @sf:include.
	Source string

	// Type is the WGSL type name emitted in @sf:group declarations. Empty for function libraries.
	Type string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// structRegistry maps struct type and library argument keys to their embedded WGSL source.
	structRegistry map[AnnotationArg]registryEntry

	// addressSpaceRegistry maps address space argument keys to WGSL var<> syntax strings.
	addressSpaceRegistry map[AnnotationArg]string

	// declarations accumulates annotations of type AnnotationTypeBindingGroup and
	// AnnotationTypeProvider during a Process call. Reset at the start of each Process invocation.
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @sf: annotations,
// replacing them with generated declarations or injected sources while collecting
// a declarations list for downstream resource wiring.
type PreProcessor interface {
	// Process takes raw WGSL shader source code and pre-processes it by replacing
	// @sf: annotations with their corresponding WGSL output. @sf:include annotations
	// are replaced with embedded source text and may name each key once. @sf:group
	// annotations are replaced with generated @group/@binding variable declarations.
	// @sf:provider annotations produce no WGSL output but are recorded in the declarations list.
	//
	// The declarations list is reset at the start of each call and can be retrieved
	// via Declarations() after Process returns.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations to be processed
	//
	// Returns:
	//   - string: the processed WGSL shader source code with annotations replaced
	//   - error: an error if any annotation is malformed, references an unknown type, or repeats an include
	Process(source string) (string, error)

	// Declarations returns the list of AnnotationTypeBindingGroup and AnnotationTypeProvider
	// annotations collected during the most recent call to Process, in source-order.
	// Returns nil if Process has not been called.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with all registered struct types, function
// libraries, and address space mappings pre-populated from the engine's GPU type packages.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgStandardTransform: {Source: transform.GPUStandardTransformSource, Type: "StandardTransform"},
			annotationArgVertex:            {Source: model.GPUVertexSource, Type: "VertexInput"},
			annotationArgLineVertex:        {Source: orbit.GPULineVertexSource, Type: "LineVertexInput"},
			annotationArgPointLight:        {Source: light.GPUPointLightSource, Type: "PointLight"},
			AnnotationArgLightingBlock:     {Source: light.GPULightingBlockSource, Type: "LightingBlock"},
			AnnotationArgLineColor:         {Source: material.GPULineColorSource, Type: "LineColor"},
			AnnotationArgSunParams:         {Source: material.GPUSunParamsSource, Type: "SunParams"},
			AnnotationArgAtmosphereParams:  {Source: material.GPUAtmosphereParamsSource, Type: "AtmosphereParams"},
			AnnotationArgBlackHoleParams:   {Source: material.GPUBlackHoleParamsSource, Type: "BlackHoleParams"},
			AnnotationArgLensGlowParams:    {Source: material.GPULensGlowParamsSource, Type: "LensGlowParams"},
			annotationArgLogDepth:          {Source: depth.LogDepthSource},
			annotationArgTemperature:       {Source: material.TemperatureSource},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:        "var<uniform>",
			annotationArgStorageTypeUniformDynamic: "var<uniform>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	included := make(map[AnnotationArg]int)

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @sf:include argument %q", i+1, a.Args[0])
			}
			if first, seen := included[a.Args[0]]; seen {
				return "", fmt.Errorf("line %d: %q already included at line %d", i+1, a.Args[0], first)
			}
			included[a.Args[0]] = i + 1
			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup:
			entry := p.structRegistry[a.Args[2]]
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, p.addressSpaceRegistry[a.Args[0]], a.Args[1], entry.Type))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
