package material

import (
	"fmt"
	"strings"
)

// StageKind identifies the shading stage a material is drawn with.
type StageKind int

const (
	StageSkybox StageKind = iota
	StageDefault
	StageSun
	StageAtmosphere
	StageBlackHole
	StageLensGlow
	StageLine
)

// Texture roles. Each is also the binding name the stage sources declare with the texture
// annotation.
const (
	RoleDiffuse  = "diffuse_texture"
	RoleAmbient  = "ambient_texture"
	RoleGradient = "gradient_texture"
	RoleGlow     = "glow_texture"
	RoleSpectrum = "spectrum_texture"
	RoleSkybox   = "skybox_texture"
)

var stageNames = [...]string{
	StageSkybox:     "skybox",
	StageDefault:    "default",
	StageSun:        "sun",
	StageAtmosphere: "atmosphere",
	StageBlackHole:  "black_hole",
	StageLensGlow:   "lens_glow",
	StageLine:       "line",
}

// AllStages returns every stage kind in draw order.
func AllStages() []StageKind {
	return []StageKind{StageSkybox, StageDefault, StageSun, StageLine, StageAtmosphere, StageBlackHole, StageLensGlow}
}

func (k StageKind) String() string {
	if k < 0 || int(k) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(k))
	}
	return stageNames[k]
}

// ParseStageKind resolves a stage name as written in configuration files.
//
// Parameters:
//   - name: the stage name, case insensitive
//
// Returns:
//   - StageKind: the stage kind
//   - error: error if the name is unknown
func ParseStageKind(name string) (StageKind, error) {
	for i, n := range stageNames {
		if strings.EqualFold(n, name) {
			return StageKind(i), nil
		}
	}
	return 0, fmt.Errorf("material: unknown stage %q", name)
}

// Transparent reports whether the stage is alpha blended and must be drawn back to front.
func (k StageKind) Transparent() bool {
	return k == StageAtmosphere || k == StageBlackHole || k == StageLensGlow
}

// Lit reports whether the stage consumes the lighting block.
func (k StageKind) Lit() bool {
	return k == StageDefault || k == StageAtmosphere
}

// Billboard reports whether the stage draws a quad that must face the camera.
func (k StageKind) Billboard() bool {
	return k == StageBlackHole || k == StageLensGlow
}

// NewPayload returns an empty material uniform of the stage, or nil when the stage has none.
func (k StageKind) NewPayload() Payload {
	switch k {
	case StageLine:
		return &GPULineColor{}
	case StageSun:
		return &GPUSunParams{}
	case StageAtmosphere:
		return &GPUAtmosphereParams{}
	case StageBlackHole:
		return &GPUBlackHoleParams{}
	case StageLensGlow:
		return &GPULensGlowParams{}
	default:
		return nil
	}
}

// PayloadSize returns the material uniform size of the stage in bytes, 0 when it has none.
func (k StageKind) PayloadSize() int {
	if p := k.NewPayload(); p != nil {
		return p.Size()
	}
	return 0
}

// Textures returns the 2-D texture roles the stage always samples. The atmosphere stage also
// samples RoleAmbient when its material enables the ambient texture.
func (k StageKind) Textures() []string {
	switch k {
	case StageDefault:
		return []string{RoleDiffuse}
	case StageSun:
		return []string{RoleDiffuse, RoleGradient}
	case StageAtmosphere:
		return []string{RoleDiffuse, RoleGradient}
	case StageLensGlow:
		return []string{RoleGlow, RoleSpectrum}
	default:
		return nil
	}
}

// UsesCube reports whether the stage samples the skybox cube texture.
func (k StageKind) UsesCube() bool {
	return k == StageSkybox || k == StageBlackHole
}
