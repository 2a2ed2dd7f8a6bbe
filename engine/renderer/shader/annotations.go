// annotations.go defines the annotation types, argument constants, and parser for the
// WGSL stage pre-processor. Annotations are single-line WGSL comments prefixed with @sf:
// that drive struct and function injection, uniform binding declaration, and texture
// provider registration. The parsed results are stored as Annotation values and consumed
// by the PreProcessor and the frame packer to bind per-draw uniforms without string lookups.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@sf:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition or
	// shared function library into the shader at the annotation site. This annotation does
	// not produce a declaration and is consumed entirely during pre-processing.
	//
	// Syntax: //@sf:include <struct_type|library>
	//
	// Example: //@sf:include log_depth
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding uniform declaration and
	// appends an Annotation to the PreProcessor's declarations list. The bound struct type
	// tells the packer which arena (transform, material, lighting) feeds the binding.
	//
	// Syntax: //@sf:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@sf:group 0 0 storage_uniform_dynamic transform standard_transform
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a provider identity for a group and binding without
	// generating any WGSL output. The WGSL binding declaration stays hand-written directly
	// below the annotation. Used for textures and samplers, which have no registered struct.
	//
	// Syntax:
	//   //@sf:provider <group> <binding> <provider_identity>
	//   //@sf:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Example:
	//   //@sf:provider 2 0 textures diffuse_texture
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed @sf: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type or library key (e.g. "standard_transform")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity (e.g. "textures"), [1] = binding role (optional)
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include annotations.
	Binding *int
}

// Dynamic reports whether a group annotation binds a dynamically offset uniform.
func (a Annotation) Dynamic() bool {
	return a.Type == AnnotationTypeBindingGroup && a.Args[0] == annotationArgStorageTypeUniformDynamic
}

// Role returns the binding role of a provider annotation, or an empty argument.
func (a Annotation) Role() AnnotationArg {
	if a.Type == AnnotationTypeProvider && len(a.Args) > 1 {
		return a.Args[1]
	}
	return ""
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// These identify registered WGSL struct types. They can appear in @sf:include annotations
// and as the type field of @sf:group annotations. Each maps to a Go GPU type with an
// embedded .wgsl asset file.

const (
	// AnnotationArgStandardTransform identifies the StandardTransform per-draw uniform.
	// Source: engine/transform/assets/standard_transform.wgsl
	AnnotationArgStandardTransform AnnotationArg = "standard_transform"

	// annotationArgVertex identifies the VertexInput struct of mesh stages.
	// Source: engine/model/assets/vertex.wgsl
	annotationArgVertex AnnotationArg = "vertex"

	// annotationArgLineVertex identifies the LineVertexInput struct of the line stage.
	// Source: engine/orbit/assets/line_vertex.wgsl
	annotationArgLineVertex AnnotationArg = "line_vertex"

	// annotationArgPointLight identifies the PointLight struct.
	// Source: engine/light/assets/point_light.wgsl
	annotationArgPointLight AnnotationArg = "point_light"

	// AnnotationArgLightingBlock identifies the bounded LightingBlock uniform.
	// Source: engine/light/assets/lighting_block.wgsl
	AnnotationArgLightingBlock AnnotationArg = "lighting_block"

	// AnnotationArgLineColor identifies the LineColor material uniform.
	// Source: engine/renderer/material/assets/line_color.wgsl
	AnnotationArgLineColor AnnotationArg = "line_color"

	// AnnotationArgSunParams identifies the SunParams material uniform.
	// Source: engine/renderer/material/assets/sun_params.wgsl
	AnnotationArgSunParams AnnotationArg = "sun_params"

	// AnnotationArgAtmosphereParams identifies the AtmosphereParams material uniform.
	// Source: engine/renderer/material/assets/atmosphere_params.wgsl
	AnnotationArgAtmosphereParams AnnotationArg = "atmosphere_params"

	// AnnotationArgBlackHoleParams identifies the BlackHoleParams material uniform.
	// Source: engine/renderer/material/assets/black_hole_params.wgsl
	AnnotationArgBlackHoleParams AnnotationArg = "black_hole_params"

	// AnnotationArgLensGlowParams identifies the LensGlowParams material uniform.
	// Source: engine/renderer/material/assets/lens_glow_params.wgsl
	AnnotationArgLensGlowParams AnnotationArg = "lens_glow_params"
)

// ── Library arguments ──────────────────────────────────────────────────────────
// Shared WGSL function libraries. Valid in @sf:include only.

const (
	// annotationArgLogDepth injects the logarithmic depth functions.
	// Source: engine/depth/assets/log_depth.wgsl
	annotationArgLogDepth AnnotationArg = "log_depth"

	// annotationArgTemperature injects the temperature to spectrum coordinate mapping.
	// Source: engine/renderer/material/assets/temperature.wgsl
	annotationArgTemperature AnnotationArg = "temperature"
)

// ── Address space arguments ────────────────────────────────────────────────────

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeUniformDynamic maps to var<uniform> in WGSL and marks the
	// layout entry as dynamically offset into a per-frame arena.
	annotationArgStorageTypeUniformDynamic AnnotationArg = "storage_uniform_dynamic"
)

// ── Provider identity arguments ────────────────────────────────────────────────

const (
	// AnnotationArgTextures identifies the material texture provider (textures and the shared sampler).
	AnnotationArgTextures AnnotationArg = "textures"
)

// ── Texture binding role arguments ─────────────────────────────────────────────
// These qualify individual bindings within the texture provider group. Their values equal
// the material texture roles.

const (
	AnnotationArgDiffuseTexture  AnnotationArg = "diffuse_texture"
	AnnotationArgAmbientTexture  AnnotationArg = "ambient_texture"
	AnnotationArgGradientTexture AnnotationArg = "gradient_texture"
	AnnotationArgGlowTexture     AnnotationArg = "glow_texture"
	AnnotationArgSpectrumTexture AnnotationArg = "spectrum_texture"
	AnnotationArgSkyboxTexture   AnnotationArg = "skybox_texture"

	// AnnotationArgTextureSampler identifies the sampler shared by every texture of a stage.
	AnnotationArgTextureSampler AnnotationArg = "texture_sampler"
)

// validStructTypes lists all AnnotationArg values that are accepted as struct type
// arguments in @sf:include and @sf:group annotations. Each entry must have a
// corresponding registryEntry in the PreProcessor's structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgStandardTransform,
	annotationArgVertex,
	annotationArgLineVertex,
	annotationArgPointLight,
	AnnotationArgLightingBlock,
	AnnotationArgLineColor,
	AnnotationArgSunParams,
	AnnotationArgAtmosphereParams,
	AnnotationArgBlackHoleParams,
	AnnotationArgLensGlowParams,
}

// validLibraries lists the include-only function libraries.
var validLibraries = []AnnotationArg{
	annotationArgLogDepth,
	annotationArgTemperature,
}

// validAddressSpaces lists all AnnotationArg values that are accepted as address
// space arguments in @sf:group annotations.
var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeUniformDynamic,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgTextures,
}

var validBindingRoles = []AnnotationArg{
	AnnotationArgDiffuseTexture,
	AnnotationArgAmbientTexture,
	AnnotationArgGradientTexture,
	AnnotationArgGlowTexture,
	AnnotationArgSpectrumTexture,
	AnnotationArgSkyboxTexture,
	AnnotationArgTextureSampler,
}

// parseAnnotation attempts to parse a single line of WGSL source as an @sf: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax or unknown arguments.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @sf annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @sf include annotation requires exactly one argument", lineNum)
		}
		arg := AnnotationArg(args[1])
		if !slices.Contains(validStructTypes, arg) && !slices.Contains(validLibraries, arg) {
			return nil, fmt.Errorf("line %d: unknown struct type or library %q in @sf include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{arg},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @sf group annotation requires exactly five arguments (group number, binding number, address space, var name, struct type)", lineNum)
		}
		groupInt, bindingInt, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @sf group annotation", lineNum, args[3])
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[5])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @sf group annotation", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @sf provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, bindingInt, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @sf provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @sf provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @sf annotation type %q", lineNum, args[0])
	}
}

func parseGroupBinding(group, binding string, lineNum int) (int, int, error) {
	groupInt, err := strconv.Atoi(group)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q: %v", lineNum, group, err)
	}
	bindingInt, err := strconv.Atoi(binding)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q: %v", lineNum, binding, err)
	}
	return groupInt, bindingInt, nil
}
