package renderer

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/starfield/engine/renderer/shader"
)

// bindingSource names what feeds one binding of a stage module.
type bindingSource int

const (
	sourceTransform bindingSource = iota
	sourceMaterial
	sourceLighting
	sourceTexture
	sourceCube
	sourceSampler
)

func (s bindingSource) uniform() bool {
	return s == sourceTransform || s == sourceMaterial || s == sourceLighting
}

// bindingPlan routes one @group/@binding of a stage module to the frame data that fills it.
type bindingPlan struct {
	Binding int
	Source  bindingSource
	Role    string
	Dynamic bool
}

// groupPlan lists the bindings of one bind group in binding order.
type groupPlan struct {
	Group    int
	Bindings []bindingPlan
}

// Uniform reports whether the group is fed from a uniform arena rather than material textures.
func (g groupPlan) Uniform() bool {
	return len(g.Bindings) > 0 && g.Bindings[0].Source.uniform()
}

// planBindings derives the bind group routing of a stage module from its group and provider
// declarations. Groups must be contiguous from zero and may not mix arena uniforms with
// material textures.
//
// Parameters:
//   - s: the compiled stage module
//
// Returns:
//   - []groupPlan: one plan per group in ascending group order
//   - error: error if a declaration cannot be routed
func planBindings(s shader.Shader) ([]groupPlan, error) {
	byGroup := map[int]*groupPlan{}
	for _, a := range s.Declarations() {
		if a.Group == nil || a.Binding == nil {
			continue
		}
		b := bindingPlan{Binding: *a.Binding}
		switch a.Type {
		case shader.AnnotationTypeBindingGroup:
			b.Dynamic = a.Dynamic()
			switch a.Args[2] {
			case shader.AnnotationArgStandardTransform:
				b.Source = sourceTransform
			case shader.AnnotationArgLightingBlock:
				b.Source = sourceLighting
			default:
				b.Source = sourceMaterial
			}
		case shader.AnnotationTypeProvider:
			switch role := a.Role(); role {
			case "":
				return nil, fmt.Errorf("%s line %d: provider binding without a role", s.Key(), a.Line)
			case shader.AnnotationArgTextureSampler:
				b.Source = sourceSampler
			case shader.AnnotationArgSkyboxTexture:
				b.Source, b.Role = sourceCube, string(role)
			default:
				b.Source, b.Role = sourceTexture, string(role)
			}
		default:
			continue
		}

		g, ok := byGroup[*a.Group]
		if !ok {
			g = &groupPlan{Group: *a.Group}
			byGroup[*a.Group] = g
		}
		if len(g.Bindings) > 0 && g.Bindings[0].Source.uniform() != b.Source.uniform() {
			return nil, fmt.Errorf("%s group %d mixes uniforms and textures", s.Key(), g.Group)
		}
		g.Bindings = append(g.Bindings, b)
	}

	plans := make([]groupPlan, 0, len(byGroup))
	for i := range len(byGroup) {
		g, ok := byGroup[i]
		if !ok {
			return nil, fmt.Errorf("%s declares no bindings for group %d", s.Key(), i)
		}
		if g.Uniform() && len(g.Bindings) != 1 {
			return nil, fmt.Errorf("%s group %d: a uniform group binds exactly one arena", s.Key(), i)
		}
		slices.SortFunc(g.Bindings, func(a, b bindingPlan) int { return a.Binding - b.Binding })
		plans = append(plans, *g)
	}
	return plans, nil
}
