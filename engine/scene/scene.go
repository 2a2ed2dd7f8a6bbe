package scene

import (
	"context"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/starfield/engine/camera"
	"github.com/Carmen-Shannon/starfield/engine/frame"
	"github.com/Carmen-Shannon/starfield/engine/game_object"
	"github.com/Carmen-Shannon/starfield/engine/light"
)

// Scene holds the camera, the bodies and the lights of one view, and submits them to a
// frame.Packer once per frame.
type Scene interface {
	// Name returns the name of the scene.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// SetName sets the name of the scene.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Active returns whether the scene is active for rendering.
	//
	// Returns:
	//   - bool: true if active
	Active() bool

	// SetActive sets whether the scene is active for rendering.
	//
	// Parameters:
	//   - active: the active state
	SetActive(active bool)

	// Camera returns the scene camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// SetCamera replaces the scene camera.
	//
	// Parameters:
	//   - cam: the new camera (must not be nil)
	SetCamera(cam camera.Camera)

	// CullingDisabled returns whether frustum culling is skipped when packing.
	//
	// Returns:
	//   - bool: true if culling is disabled
	CullingDisabled() bool

	// SetCullingDisabled sets whether frustum culling is skipped when packing.
	//
	// Parameters:
	//   - disabled: true to draw every body regardless of the view frustum
	SetCullingDisabled(disabled bool)

	// AddLight registers a free-standing light.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// RemoveLight unregisters a light. Lights attached to objects are removed with the object.
	//
	// Parameters:
	//   - l: the light to remove
	RemoveLight(l light.Light)

	// Lights returns a copy of the registered lights in registration order.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// Count returns the number of registered (non-ephemeral) objects.
	//
	// Returns:
	//   - int: the object count
	Count() int

	// CountEphemeral returns the number of ephemeral objects queued for the next Pack.
	//
	// Returns:
	//   - int: the queued count
	CountEphemeral() int

	// Add registers an object and returns its ID, assigning one if the object has none.
	// Ephemeral objects are queued for the next Pack only. An attached light is registered
	// with the scene.
	//
	// Parameters:
	//   - obj: the object to add (must not be nil)
	//
	// Returns:
	//   - uint64: the object ID
	Add(obj game_object.GameObject) uint64

	// Get returns a registered object by ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object, or nil if not registered
	Get(id uint64) game_object.GameObject

	// Remove unregisters an object and its attached light.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id uint64)

	// Clear removes every object and every light.
	Clear()

	// Objects returns the registered objects in insertion order.
	//
	// Returns:
	//   - []game_object.GameObject: the objects
	Objects() []game_object.GameObject

	// RecordTrails samples the position of every registered object that carries an orbit trail.
	//
	// Returns:
	//   - int: the number of trails that recorded a new point
	RecordTrails() int

	// Pack snapshots the camera and packs the registered and queued ephemeral objects.
	// Ephemeral objects are dropped once packed.
	//
	// Parameters:
	//   - ctx: cancels packing
	//   - p: the packer owning the uniform arenas
	//
	// Returns:
	//   - *frame.Frame: the packed frame
	//   - error: the packer error
	Pack(ctx context.Context, p *frame.Packer) (*frame.Frame, error)
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam camera.Camera

	registry  map[uint64]game_object.GameObject // non-ephemeral objects by ID
	order     []uint64                          // registry IDs in insertion order
	ephemeral []game_object.GameObject
	nextID    uint64

	cullingDisabled bool

	lights []light.Light
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera. NewScene panics if cam is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		cam:      cam,
		registry: make(map[uint64]game_object.GameObject),
		nextID:   1,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	if cam == nil {
		panic("scene: SetCamera requires a non-nil Camera")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) CullingDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cullingDisabled
}

func (s *scene) SetCullingDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullingDisabled = disabled
}

func (s *scene) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.lights, l) {
		s.lights = append(s.lights, l)
	}
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLight(l)
}

func (s *scene) removeLight(l light.Light) {
	if i := slices.Index(s.lights, l); i >= 0 {
		s.lights = slices.Delete(s.lights, i, i+1)
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lights)
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) CountEphemeral() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ephemeral)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	if obj == nil {
		panic("scene: cannot Add a nil GameObject")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

// add registers obj. Caller must hold s.mu write lock.
func (s *scene) add(obj game_object.GameObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	}
	if obj.Ephemeral() {
		s.ephemeral = append(s.ephemeral, obj)
		return obj.ID()
	}
	if _, exists := s.registry[obj.ID()]; !exists {
		s.order = append(s.order, obj.ID())
	}
	s.registry[obj.ID()] = obj
	if l := obj.Light(); l != nil && !slices.Contains(s.lights, l) {
		s.lights = append(s.lights, l)
	}
	return obj.ID()
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, exists := s.registry[id]
	if !exists {
		return
	}
	delete(s.registry, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	if l := obj.Light(); l != nil {
		s.removeLight(l)
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]game_object.GameObject)
	s.order = nil
	s.ephemeral = nil
	s.lights = nil
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects()
}

// objects returns the registered objects in insertion order. Caller must hold s.mu.
func (s *scene) objects() []game_object.GameObject {
	out := make([]game_object.GameObject, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.registry[id])
	}
	return out
}

func (s *scene) RecordTrails() int {
	recorded := 0
	for _, obj := range s.Objects() {
		if obj.Enabled() && obj.RecordTrail() {
			recorded++
		}
	}
	return recorded
}

func (s *scene) Pack(ctx context.Context, p *frame.Packer) (*frame.Frame, error) {
	s.mu.Lock()
	objects := append(s.objects(), s.ephemeral...)
	s.ephemeral = nil
	lights := slices.Clone(s.lights)
	cam := s.cam
	culling := !s.cullingDisabled
	s.mu.Unlock()

	p.SetCulling(culling)
	return p.Pack(ctx, cam.State(), objects, lights)
}
