package shader

import (
	"embed"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/stages/*.wgsl
var stageSources embed.FS

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation and material binding.
type shader struct {
	key                        string
	source                     string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[int][]wgpu.VertexBufferLayout
	structLayouts              map[string]StructLayout
	vertexEntryPoint           string
	fragmentEntryPoint         string
	module                     *wgpu.ShaderModuleDescriptor
	declarations               []Annotation
}

// Shader defines the interface for a loaded and parsed WGSL stage module. A stage module
// carries both the vertex and fragment entry points and exposes the bind group layout
// descriptors, vertex buffer layouts, struct layouts, and pre-processor declarations needed
// for pipeline creation and per-draw resource wiring.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a specific group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor for the group, or an empty descriptor if not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors.
	// Uniforms declared with storage_uniform_dynamic carry HasDynamicOffset.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name for a given group and binding index, if it exists.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name associated with the group and binding, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index for a given group and variable name, if it exists.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index associated with the variable name, or -1 if not found
	//   - bool: true if the variable name was found, false otherwise
	BindGroupFromVarName(group int, varName string) (int, bool)

	// BindGroupVarNames retrieves all variable names for all bind groups.
	//
	// Returns:
	//   - map[int]map[int]string: variable names keyed by group and binding index
	BindGroupVarNames() map[int]map[int]string

	// VertexLayout retrieves the vertex buffer layout for a specific key.
	//
	// Parameters:
	//   - key: the integer key identifying the vertex layout
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layout associated with the key, or nil if not set
	VertexLayout(key int) []wgpu.VertexBufferLayout

	// VertexLayouts retrieves all vertex buffer layouts associated with this shader.
	//
	// Returns:
	//   - map[int][]wgpu.VertexBufferLayout: a map of keys to their corresponding vertex buffer layouts
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// StructLayout retrieves the resolved uniform layout of a struct declared in the module.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - StructLayout: the layout
	//   - bool: false if the struct is not declared or cannot be resolved
	StructLayout(name string) (StructLayout, bool)

	// VertexEntryPoint returns the @vertex entry point name.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	VertexEntryPoint() string

	// FragmentEntryPoint returns the @fragment entry point name.
	//
	// Returns:
	//   - string: the entry point name (e.g. "fs_main")
	FragmentEntryPoint() string

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// Declarations returns the group and provider annotations parsed from the shader source,
	// in source order. The frame packer uses them to route uniform arenas and textures.
	//
	// Returns:
	//   - []Annotation: the binding declarations of the module
	Declarations() []Annotation
}

var _ Shader = &shader{}

// Compile pre-processes and parses WGSL source into a Shader.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - source: the raw WGSL source with @sf: annotations
//
// Returns:
//   - Shader: the parsed shader
//   - error: error if pre-processing fails or the source lacks a vertex or fragment entry point
func Compile(key, source string) (Shader, error) {
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		key:                key,
		source:             processed,
		vertexEntryPoint:   parseEntryPoint(processed, vertexEntryRegex),
		fragmentEntryPoint: parseEntryPoint(processed, fragmentEntryRegex),
		vertexLayouts:      parseVertexLayouts(processed),
		structLayouts:      ParseStructLayouts(processed),
		declarations:       append([]Annotation(nil), pp.Declarations()...),
	}
	if s.vertexEntryPoint == "" || s.fragmentEntryPoint == "" {
		return nil, fmt.Errorf("shader %s: module must declare both @vertex and @fragment entry points", key)
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(processed, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)
	s.markDynamicOffsets()
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	return s, nil
}

// NewShader reads WGSL source from disk and compiles it, panicking on failure.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - sourcePath: the file path to read WGSL source from
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, sourcePath string) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader: %s must have a valid source path", key))
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", sourcePath, err))
	}
	s, err := Compile(key, string(data))
	if err != nil {
		panic(fmt.Sprintf("shader: failed to compile %q: %v", sourcePath, err))
	}
	return s
}

// NewStageShader compiles the built-in module for a shading stage. The shader key is the
// stage name.
//
// Parameters:
//   - kind: the shading stage
//
// Returns:
//   - Shader: the parsed stage module
//   - error: error if the stage has no built-in module or it fails to compile
func NewStageShader(kind material.StageKind) (Shader, error) {
	data, err := StageSource(kind)
	if err != nil {
		return nil, err
	}
	return Compile(kind.String(), data)
}

// StageSource returns the raw, annotated WGSL of a built-in stage module.
func StageSource(kind material.StageKind) (string, error) {
	data, err := stageSources.ReadFile("assets/stages/" + kind.String() + ".wgsl")
	if err != nil {
		return "", fmt.Errorf("no built-in module for stage %s: %w", kind, err)
	}
	return string(data), nil
}

func (s *shader) markDynamicOffsets() {
	for _, decl := range s.declarations {
		if !decl.Dynamic() {
			continue
		}
		desc, ok := s.bindGroupLayoutDescriptors[*decl.Group]
		if !ok {
			continue
		}
		for i := range desc.Entries {
			if desc.Entries[i].Binding == uint32(*decl.Binding) {
				desc.Entries[i].Buffer.HasDynamicOffset = true
			}
		}
	}
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexLayout(key int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[key]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) StructLayout(name string) (StructLayout, bool) {
	l, ok := s.structLayouts[name]
	return l, ok
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	if s.bindingVarNames[group] == nil {
		return -1, false
	}
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) BindGroupVarNames() map[int]map[int]string {
	return s.bindingVarNames
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}
