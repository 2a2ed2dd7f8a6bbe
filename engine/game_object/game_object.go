package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/starfield/engine/light"
	"github.com/Carmen-Shannon/starfield/engine/model"
	"github.com/Carmen-Shannon/starfield/engine/orbit"
	"github.com/Carmen-Shannon/starfield/engine/renderer/material"
	"github.com/Carmen-Shannon/starfield/engine/transform"
	"github.com/go-gl/mathgl/mgl64"
)

type gameObject struct {
	id        uint64
	name      string
	enabled   atomic.Bool
	ephemeral bool
	mdl       model.Model
	mat       material.Material
	trail     *orbit.Trail

	mu            sync.RWMutex
	transform     transform.ObjectTransform
	attachedLight light.Light
}

// GameObject defines the interface for one drawable body: a star, planet, black hole,
// skybox, glow or orbit line. Its placement is an extended-precision ObjectTransform so
// positions at astronomical magnitudes survive until the frame packer reduces them.
// Transform accessors are safe for concurrent use.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's debug name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Ephemeral returns whether this object is ephemeral.
	// Ephemeral objects are drawn for the frame they are submitted in but are not kept in a
	// scene's registry.
	//
	// Returns:
	//   - bool: true if ephemeral
	Ephemeral() bool

	// Model returns the Model associated with this object, or nil if not set.
	// Line objects draw their trail instead of a model.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Material returns the Material the object is shaded with, or nil if not set.
	//
	// Returns:
	//   - material.Material: the material or nil
	Material() material.Material

	// Trail returns the orbit trail recorded for this object, or nil if it has none.
	//
	// Returns:
	//   - *orbit.Trail: the trail or nil
	Trail() *orbit.Trail

	// Transform returns a copy of the object's extended-precision transform.
	//
	// Returns:
	//   - transform.ObjectTransform: the transform
	Transform() transform.ObjectTransform

	// Position returns the world position in meters.
	//
	// Returns:
	//   - mgl64.Vec3: the position
	Position() mgl64.Vec3

	// Radius returns the world-space bounding radius: the model's bounding radius times the
	// largest scale axis, or the largest scale axis alone when there is no model.
	//
	// Returns:
	//   - float64: the radius in meters
	Radius() float64

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetModel assigns a Model to this object.
	//
	// Parameters:
	//   - m: the Model to associate
	SetModel(m model.Model)

	// SetMaterial assigns the Material the object is shaded with.
	//
	// Parameters:
	//   - m: the Material to associate
	SetMaterial(m material.Material)

	// SetTransform replaces the whole transform.
	//
	// Parameters:
	//   - t: the new transform
	SetTransform(t transform.ObjectTransform)

	// SetPosition moves the object and any attached light.
	//
	// Parameters:
	//   - position: the new world position in meters
	SetPosition(position mgl64.Vec3)

	// SetRotation sets the object's orientation.
	//
	// Parameters:
	//   - rotation: the new orientation
	SetRotation(rotation mgl64.Quat)

	// SetScale sets the object's scale.
	//
	// Parameters:
	//   - scale: the new scale per axis
	SetScale(scale mgl64.Vec3)

	// RecordTrail appends the current position to the trail if the object has one.
	//
	// Returns:
	//   - bool: true if a point was recorded
	RecordTrail() bool

	// Light returns the Light attached to this object, or nil if none is set.
	//
	// Returns:
	//   - light.Light: the attached light or nil
	Light() light.Light

	// SetLight attaches a Light to this object. The light is moved to the object's position
	// immediately and on every later SetPosition. Pass nil to detach.
	//
	// Parameters:
	//   - l: the Light to attach, or nil to detach
	SetLight(l light.Light)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// Objects start enabled at the origin with unit scale.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		transform: transform.At(mgl64.Vec3{}),
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	if obj.attachedLight != nil {
		obj.attachedLight.SetPosition(obj.transform.Position)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Ephemeral() bool {
	return g.ephemeral
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Material() material.Material {
	return g.mat
}

func (g *gameObject) Trail() *orbit.Trail {
	return g.trail
}

func (g *gameObject) Transform() transform.ObjectTransform {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.transform
}

func (g *gameObject) Position() mgl64.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.transform.Position
}

func (g *gameObject) Radius() float64 {
	r := g.Transform().BoundingRadius()
	if g.mdl != nil {
		r *= float64(g.mdl.BoundingRadius())
	}
	return r
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetModel(m model.Model) {
	g.mdl = m
}

func (g *gameObject) SetMaterial(m material.Material) {
	g.mat = m
}

func (g *gameObject) SetTransform(t transform.ObjectTransform) {
	g.mu.Lock()
	g.transform = t
	l := g.attachedLight
	g.mu.Unlock()
	if l != nil {
		l.SetPosition(t.Position)
	}
}

func (g *gameObject) SetPosition(position mgl64.Vec3) {
	g.mu.Lock()
	g.transform.Position = position
	l := g.attachedLight
	g.mu.Unlock()
	if l != nil {
		l.SetPosition(position)
	}
}

func (g *gameObject) SetRotation(rotation mgl64.Quat) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transform.Rotation = rotation
}

func (g *gameObject) SetScale(scale mgl64.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transform.Scale = scale
}

func (g *gameObject) RecordTrail() bool {
	if g.trail == nil {
		return false
	}
	return g.trail.Add(g.Position())
}

func (g *gameObject) Light() light.Light {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.attachedLight
}

func (g *gameObject) SetLight(l light.Light) {
	g.mu.Lock()
	g.attachedLight = l
	pos := g.transform.Position
	g.mu.Unlock()
	if l != nil {
		l.SetPosition(pos)
	}
}
