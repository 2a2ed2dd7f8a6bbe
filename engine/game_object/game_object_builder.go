package game_object

import (
	"github.com/Carmen-Shannon/starfield/engine/light"
	"github.com/Carmen-Shannon/starfield/engine/model"
	"github.com/Carmen-Shannon/starfield/engine/orbit"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl64"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithName sets the debug name of the GameObject. Packing errors are reported against it.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the name
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.name = name
	}
}

// WithEnabled sets whether the GameObject is enabled for rendering.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithEphemeral marks the GameObject as ephemeral. Ephemeral objects are packed for the frame
// they are submitted in and never kept in a scene's registry.
//
// Parameters:
//   - ephemeral: true to mark as ephemeral
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Ephemeral flag
func WithEphemeral(ephemeral bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.ephemeral = ephemeral
	}
}

// WithModel sets the Model for this GameObject.
//
// Parameters:
//   - m: the Model to associate
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Model
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mdl = m
	}
}

// WithMaterial sets the Material the GameObject is shaded with.
//
// Parameters:
//   - m: the Material to associate
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Material
func WithMaterial(m material.Material) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mat = m
	}
}

// WithTrail attaches an orbit trail that RecordTrail feeds from the object's position.
//
// Parameters:
//   - t: the trail
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the trail
func WithTrail(t *orbit.Trail) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.trail = t
	}
}

// WithPosition sets the initial world position of the GameObject.
//
// Parameters:
//   - position: the position in meters
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial position
func WithPosition(position mgl64.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform.Position = position
	}
}

// WithScale sets the initial scale of the GameObject.
//
// Parameters:
//   - scale: the scale per axis
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial scale
func WithScale(scale mgl64.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform.Scale = scale
	}
}

// WithUniformScale sets the same initial scale on every axis. For spheres built with
// model.NewUVSphere this is the body radius in meters.
//
// Parameters:
//   - s: the scale factor
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial scale
func WithUniformScale(s float64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform.Scale = mgl64.Vec3{s, s, s}
	}
}

// WithRotation sets the initial orientation of the GameObject.
//
// Parameters:
//   - rotation: the orientation
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial rotation
func WithRotation(rotation mgl64.Quat) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.transform.Rotation = rotation
	}
}

// WithLight attaches a Light to the GameObject. The light follows the object's position.
//
// Parameters:
//   - l: the Light to attach
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the attached light
func WithLight(l light.Light) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.attachedLight = l
	}
}
