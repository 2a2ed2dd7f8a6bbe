package shader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/starfield/engine/light"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/Carmen-Shannon/starfield/engine/transform"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    AnnotationType
		wantErr bool
	}{
		{"plain wgsl", "let x = 1.0;", "", false},
		{"plain comment", "// just a comment", "", false},
		{"include struct", "//@sf:include standard_transform", annotationTypeInclude, false},
		{"include library", "//@sf:include log_depth", annotationTypeInclude, false},
		{"group", "//@sf:group 0 0 storage_uniform_dynamic transform standard_transform", AnnotationTypeBindingGroup, false},
		{"provider with role", "//@sf:provider 2 0 textures diffuse_texture", AnnotationTypeProvider, false},
		{"provider without role", "//@sf:provider 2 0 textures", AnnotationTypeProvider, false},
		{"empty", "//@sf:", "", true},
		{"unknown type", "//@sf:bogus thing", "", true},
		{"unknown include", "//@sf:include camera", "", true},
		{"include arity", "//@sf:include vertex log_depth", "", true},
		{"bad group number", "//@sf:group x 0 storage_uniform transform standard_transform", "", true},
		{"bad address space", "//@sf:group 0 0 storage_read transform standard_transform", "", true},
		{"library as group type", "//@sf:group 0 0 storage_uniform depth log_depth", "", true},
		{"unknown provider", "//@sf:provider 2 0 meshes", "", true},
		{"unknown role", "//@sf:provider 2 0 textures normal_texture", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAnnotation(tt.line, 7)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got annotation %+v", a)
				}
				if !strings.Contains(err.Error(), "line 7") {
					t.Errorf("expected line number in error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want == "" {
				if a != nil {
					t.Errorf("expected nil annotation, got %+v", a)
				}
				return
			}
			if a == nil || a.Type != tt.want {
				t.Fatalf("expected %s annotation, got %+v", tt.want, a)
			}
		})
	}
}

func TestAnnotationAccessors(t *testing.T) {
	group, _ := parseAnnotation("//@sf:group 1 0 storage_uniform_dynamic sun sun_params", 1)
	if !group.Dynamic() {
		t.Errorf("expected dynamic group annotation")
	}
	if *group.Group != 1 || *group.Binding != 0 {
		t.Errorf("expected group 1 binding 0, got %d/%d", *group.Group, *group.Binding)
	}
	static, _ := parseAnnotation("//@sf:group 1 0 storage_uniform lighting lighting_block", 1)
	if static.Dynamic() {
		t.Errorf("expected static group annotation")
	}
	provider, _ := parseAnnotation("//@sf:provider 2 1 textures gradient_texture", 1)
	if provider.Role() != AnnotationArgGradientTexture {
		t.Errorf("expected gradient role, got %q", provider.Role())
	}
}

func TestPreProcessorProcess(t *testing.T) {
	source := strings.Join([]string{
		"//@sf:include standard_transform",
		"//@sf:include log_depth",
		"//@sf:group 0 0 storage_uniform_dynamic transform standard_transform",
		"//@sf:provider 1 0 textures diffuse_texture",
		"@group(1) @binding(0) var diffuse_texture: texture_2d<f32>;",
	}, "\n")

	pp := NewPreProcessor()
	out, err := pp.Process(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"struct StandardTransform",
		"fn apply_log_depth",
		"@group(0) @binding(0) var<uniform> transform: StandardTransform;",
		"var diffuse_texture: texture_2d<f32>;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if strings.Contains(out, "@sf:") {
		t.Errorf("expected annotations to be consumed")
	}
	decls := pp.Declarations()
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}
	if decls[0].Type != AnnotationTypeBindingGroup || decls[1].Type != AnnotationTypeProvider {
		t.Errorf("expected group then provider, got %s then %s", decls[0].Type, decls[1].Type)
	}

	if _, err := pp.Process("let x = 1;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pp.Declarations()) != 0 {
		t.Errorf("expected declarations reset between calls, got %d", len(pp.Declarations()))
	}
}

func TestPreProcessorRejectsDuplicateInclude(t *testing.T) {
	_, err := NewPreProcessor().Process("//@sf:include temperature\n//@sf:include temperature")
	if err == nil || !strings.Contains(err.Error(), "already included at line 1") {
		t.Errorf("expected duplicate include error, got %v", err)
	}
}

func TestCompileRequiresBothEntryPoints(t *testing.T) {
	_, err := Compile("half", "@vertex\nfn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }")
	if err == nil {
		t.Errorf("expected error for a module without a fragment entry point")
	}
	_, err = Compile("broken", "//@sf:include nothing")
	if err == nil || !strings.Contains(err.Error(), "shader broken") {
		t.Errorf("expected wrapped pre-processor error, got %v", err)
	}
}

func TestNewShaderFromFile(t *testing.T) {
	src, err := StageSource(material.StageSkybox)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "skybox.wgsl")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := NewShader("custom_skybox", path); s.Key() != "custom_skybox" {
		t.Errorf("expected key custom_skybox, got %s", s.Key())
	}

	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"missing file", filepath.Join(t.TempDir(), "missing.wgsl")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected a panic")
				}
			}()
			NewShader("bad", tt.path)
		})
	}
}

func TestStageSourceUnknown(t *testing.T) {
	_, err := StageSource(material.StageKind(42))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestStageShaders(t *testing.T) {
	for _, kind := range material.AllStages() {
		t.Run(kind.String(), func(t *testing.T) {
			s, err := NewStageShader(kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Key() != kind.String() {
				t.Errorf("expected key %q, got %q", kind.String(), s.Key())
			}
			if s.VertexEntryPoint() != "vs_main" || s.FragmentEntryPoint() != "fs_main" {
				t.Errorf("expected vs_main/fs_main, got %s/%s", s.VertexEntryPoint(), s.FragmentEntryPoint())
			}
			if s.Module() == nil || s.Module().WGSLDescriptor.Code != s.Source() {
				t.Errorf("expected module descriptor carrying the processed source")
			}
			if strings.Contains(s.Source(), "@sf:") {
				t.Errorf("expected no annotations left in processed source")
			}

			g0 := s.BindGroupLayoutDescriptor(0)
			if len(g0.Entries) != 1 {
				t.Fatalf("expected one transform entry in group 0, got %d", len(g0.Entries))
			}
			tr := g0.Entries[0]
			if tr.Buffer.Type != wgpu.BufferBindingTypeUniform || !tr.Buffer.HasDynamicOffset {
				t.Errorf("expected dynamic uniform transform binding, got %+v", tr.Buffer)
			}
			if tr.Buffer.MinBindingSize != 240 {
				t.Errorf("expected transform binding size 240, got %d", tr.Buffer.MinBindingSize)
			}
			if tr.Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
				t.Errorf("expected vertex|fragment visibility, got %v", tr.Visibility)
			}
			if name := s.BindGroupVarName(0, 0); name != "transform" {
				t.Errorf("expected transform var, got %q", name)
			}

			if size := kind.PayloadSize(); size > 0 {
				entry := s.BindGroupLayoutDescriptor(1).Entries[0]
				if entry.Buffer.MinBindingSize != uint64(size) {
					t.Errorf("expected material binding size %d, got %d", size, entry.Buffer.MinBindingSize)
				}
				if !entry.Buffer.HasDynamicOffset {
					t.Errorf("expected dynamic material binding")
				}
			}
		})
	}
}

func TestStageTextureProviders(t *testing.T) {
	for _, kind := range material.AllStages() {
		t.Run(kind.String(), func(t *testing.T) {
			s, err := NewStageShader(kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			roles := map[string]bool{}
			for _, d := range s.Declarations() {
				if d.Type == AnnotationTypeProvider {
					roles[string(d.Role())] = true
					if s.BindGroupVarName(*d.Group, *d.Binding) != string(d.Role()) {
						t.Errorf("expected provider %s to annotate a binding of the same name", d.Role())
					}
				}
			}
			for _, role := range kind.Textures() {
				if !roles[role] {
					t.Errorf("expected a provider for %s", role)
				}
			}
			if kind.UsesCube() != roles[material.RoleSkybox] {
				t.Errorf("expected skybox provider %v, got %v", kind.UsesCube(), roles[material.RoleSkybox])
			}
			if len(roles) > 0 && !roles[string(AnnotationArgTextureSampler)] {
				t.Errorf("expected a sampler provider")
			}
		})
	}
}

func TestLightingBinding(t *testing.T) {
	for _, kind := range material.AllStages() {
		s, err := NewStageShader(kind)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", kind, err)
		}
		found := false
		for _, d := range s.Declarations() {
			if d.Type == AnnotationTypeBindingGroup && d.Args[2] == AnnotationArgLightingBlock {
				found = true
				if d.Dynamic() {
					t.Errorf("%s: expected a static lighting binding", kind)
				}
				entry := s.BindGroupLayoutDescriptor(*d.Group).Entries[*d.Binding]
				if entry.Buffer.MinBindingSize != 528 {
					t.Errorf("%s: expected lighting size 528, got %d", kind, entry.Buffer.MinBindingSize)
				}
			}
		}
		if found != kind.Lit() {
			t.Errorf("%s: expected lighting binding %v, got %v", kind, kind.Lit(), found)
		}
	}
}

func TestCubeBindings(t *testing.T) {
	s, err := NewStageShader(material.StageBlackHole)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g2 := s.BindGroupLayoutDescriptor(2)
	if g2.Entries[0].Texture.ViewDimension != wgpu.TextureViewDimensionCube {
		t.Errorf("expected cube view dimension, got %v", g2.Entries[0].Texture.ViewDimension)
	}
	if g2.Entries[0].Texture.SampleType != wgpu.TextureSampleTypeFloat {
		t.Errorf("expected float sample type, got %v", g2.Entries[0].Texture.SampleType)
	}
	if g2.Entries[1].Sampler.Type != wgpu.SamplerBindingTypeFiltering {
		t.Errorf("expected filtering sampler, got %v", g2.Entries[1].Sampler.Type)
	}
}

func TestStageVertexLayouts(t *testing.T) {
	tests := []struct {
		kind   material.StageKind
		stride uint64
		attrs  int
	}{
		{material.StageDefault, 32, 3},
		{material.StageSkybox, 32, 3},
		{material.StageLensGlow, 32, 3},
		{material.StageLine, 12, 1},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s, err := NewStageShader(tt.kind)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(s.VertexLayouts()) != 1 {
				t.Fatalf("expected exactly one vertex layout, got %d", len(s.VertexLayouts()))
			}
			layout := s.VertexLayout(0)[0]
			if layout.ArrayStride != tt.stride {
				t.Errorf("expected stride %d, got %d", tt.stride, layout.ArrayStride)
			}
			if len(layout.Attributes) != tt.attrs {
				t.Errorf("expected %d attributes, got %d", tt.attrs, len(layout.Attributes))
			}
			if layout.StepMode != wgpu.VertexStepModeVertex {
				t.Errorf("expected per-vertex step mode")
			}
		})
	}
}

func TestPayloadSizesMatchWGSL(t *testing.T) {
	source := strings.Join([]string{
		transform.GPUStandardTransformSource,
		light.GPUPointLightSource,
		light.GPULightingBlockSource,
		material.GPULineColorSource,
		material.GPUSunParamsSource,
		material.GPUAtmosphereParamsSource,
		material.GPUBlackHoleParamsSource,
		material.GPULensGlowParamsSource,
	}, "\n")
	layouts := ParseStructLayouts(source)

	tests := []struct {
		name string
		size int
	}{
		{"StandardTransform", new(transform.GPUStandardTransform).Size()},
		{"PointLight", new(light.GPUPointLight).Size()},
		{"LightingBlock", new(light.GPULightingBlock).Size()},
		{"LineColor", new(material.GPULineColor).Size()},
		{"SunParams", new(material.GPUSunParams).Size()},
		{"AtmosphereParams", new(material.GPUAtmosphereParams).Size()},
		{"BlackHoleParams", new(material.GPUBlackHoleParams).Size()},
		{"LensGlowParams", new(material.GPULensGlowParams).Size()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := layouts[tt.name]
			if !ok {
				t.Fatalf("expected a resolved layout for %s", tt.name)
			}
			if l.Size != uint64(tt.size) {
				t.Errorf("expected WGSL size %d, got %d", tt.size, l.Size)
			}
		})
	}
}

func TestStructFieldOffsets(t *testing.T) {
	layouts := ParseStructLayouts(transform.GPUStandardTransformSource + material.GPUAtmosphereParamsSource + material.GPULensGlowParamsSource + material.GPUBlackHoleParamsSource)
	tests := []struct {
		structName string
		field      string
		offset     uint64
	}{
		{"StandardTransform", "camera_position", 64},
		{"StandardTransform", "log_depth_constant", 96},
		{"StandardTransform", "fc_constant", 108},
		{"StandardTransform", "mv", 112},
		{"StandardTransform", "light_direction", 176},
		{"StandardTransform", "normal_matrix", 192},
		{"AtmosphereParams", "color_mod", 32},
		{"AtmosphereParams", "overglow", 48},
		{"AtmosphereParams", "use_ambient_texture", 52},
		{"LensGlowParams", "star_position", 16},
		{"LensGlowParams", "camera_direction", 32},
		{"LensGlowParams", "temperature", 48},
		{"BlackHoleParams", "radius", 12},
		{"BlackHoleParams", "view_to_world", 16},
	}
	for _, tt := range tests {
		t.Run(tt.structName+"."+tt.field, func(t *testing.T) {
			f, ok := layouts[tt.structName].Field(tt.field)
			if !ok {
				t.Fatalf("expected field %s", tt.field)
			}
			if f.Offset != tt.offset {
				t.Errorf("expected offset %d, got %d", tt.offset, f.Offset)
			}
		})
	}
}

func TestParseStructLayoutsSkipsUnresolved(t *testing.T) {
	layouts := ParseStructLayouts("struct Broken { a: Mystery, };\nstruct Fine { a: f32, b: vec3<f32>, };")
	if _, ok := layouts["Broken"]; ok {
		t.Errorf("expected unresolved struct to be omitted")
	}
	fine := layouts["Fine"]
	if fine.Size != 32 || fine.Align != 16 {
		t.Errorf("expected size 32 align 16, got %d/%d", fine.Size, fine.Align)
	}
	if b, _ := fine.Field("b"); b.Offset != 16 {
		t.Errorf("expected vec3 aligned to 16, got %d", b.Offset)
	}
}
