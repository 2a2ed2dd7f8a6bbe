// Package orbit records the recent path of a moving body and turns it into camera-relative
// line-list vertices for the line stage.
package orbit

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/go-gl/mathgl/mgl64"
)

// Trail defaults.
const (
	DefaultCapacity    = 500
	DefaultMinDistance = 5e6 // meters
)

// Trail is a fixed-capacity ring buffer of world positions. A new point is only recorded
// when the body has moved more than the minimum distance since the last one.
// A Trail is safe for concurrent use.
type Trail struct {
	mu          sync.RWMutex
	points      []mgl64.Vec3
	head        int
	count       int
	minDistance float64
	dirty       bool
}

// TrailOption configures a Trail during construction.
type TrailOption func(*Trail)

// WithCapacity is an option builder that sets the maximum number of stored points.
//
// Parameters:
//   - n: the capacity, at least 2
//
// Returns:
//   - TrailOption: a function that applies the capacity option to a trail
func WithCapacity(n int) TrailOption {
	return func(t *Trail) {
		t.points = make([]mgl64.Vec3, max(n, 2))
	}
}

// WithMinDistance is an option builder that sets the sampling distance in meters.
//
// Parameters:
//   - meters: the distance a body must move before a new point is recorded
//
// Returns:
//   - TrailOption: a function that applies the distance option to a trail
func WithMinDistance(meters float64) TrailOption {
	return func(t *Trail) {
		t.minDistance = meters
	}
}

// NewTrail creates an empty trail.
//
// Parameters:
//   - opts: variadic list of TrailOption functions
//
// Returns:
//   - *Trail: the trail
func NewTrail(opts ...TrailOption) *Trail {
	t := &Trail{
		points:      make([]mgl64.Vec3, DefaultCapacity),
		minDistance: DefaultMinDistance,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Add records a world position if the trail is empty or the body moved far enough.
//
// Parameters:
//   - p: the body's world position
//
// Returns:
//   - bool: true if the point was recorded
func (t *Trail) Add(p mgl64.Vec3) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.count > 0 && p.Sub(t.last()).Len() <= t.minDistance {
		return false
	}
	t.points[t.head] = p
	t.head = (t.head + 1) % len(t.points)
	t.count = min(t.count+1, len(t.points))
	t.dirty = true
	return true
}

func (t *Trail) last() mgl64.Vec3 {
	return t.points[(t.head-1+len(t.points))%len(t.points)]
}

// Points returns the stored positions from oldest to newest.
func (t *Trail) Points() []mgl64.Vec3 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ordered()
}

func (t *Trail) ordered() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, t.count)
	start := (t.head - t.count + len(t.points)) % len(t.points)
	for i := range t.count {
		out[i] = t.points[(start+i)%len(t.points)]
	}
	return out
}

// Len returns the number of stored points.
func (t *Trail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Capacity returns the maximum number of stored points.
func (t *Trail) Capacity() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.points)
}

// Renderable reports whether the trail has at least one segment.
func (t *Trail) Renderable() bool {
	return t.Len() >= 2
}

// Dirty reports whether points changed since the last MarkClean.
func (t *Trail) Dirty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dirty
}

// MarkClean resets the dirty flag after the caller re-uploaded the vertices.
func (t *Trail) MarkClean() {
	t.mu.Lock()
	t.dirty = false
	t.mu.Unlock()
}

// Clear removes every point.
func (t *Trail) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.head, t.count = 0, 0
	t.dirty = true
}

// SetConfig changes capacity and sampling distance, keeping the newest points that fit.
//
// Parameters:
//   - capacity: the new capacity, at least 2
//   - minDistance: the new sampling distance in meters
func (t *Trail) SetConfig(capacity int, minDistance float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	capacity = max(capacity, 2)
	pts := t.ordered()
	if dropped := len(pts) - capacity; dropped > 0 {
		log.Printf("[Orbit] trail capacity reduced to %d, dropped %d oldest points", capacity, dropped)
		pts = pts[dropped:]
	}
	t.points = make([]mgl64.Vec3, capacity)
	copy(t.points, pts)
	t.count = len(pts)
	t.head = t.count % capacity
	t.minDistance = minDistance
	t.dirty = true
}

// Vertices builds a line list of camera-relative vertices: one pair per segment. The camera
// subtraction happens in float64 before the reduction.
//
// Parameters:
//   - camera: the camera's world position
//
// Returns:
//   - []GPULineVertex: 2*(Len-1) vertices, nil when the trail is not renderable
func (t *Trail) Vertices(camera mgl64.Vec3) []GPULineVertex {
	t.mu.RLock()
	pts := t.ordered()
	t.mu.RUnlock()

	if len(pts) < 2 {
		return nil
	}
	out := make([]GPULineVertex, 0, 2*(len(pts)-1))
	for i := 1; i < len(pts); i++ {
		out = append(out,
			GPULineVertex{Position: common.ReduceVec3(pts[i-1].Sub(camera))},
			GPULineVertex{Position: common.ReduceVec3(pts[i].Sub(camera))},
		)
	}
	return out
}

// VertexBytes serializes Vertices for a vertex buffer upload.
//
// Parameters:
//   - camera: the camera's world position
//
// Returns:
//   - []byte: the packed vertices
func (t *Trail) VertexBytes(camera mgl64.Vec3) []byte {
	verts := t.Vertices(camera)
	if len(verts) == 0 {
		return nil
	}
	stride := verts[0].Size()
	buf := make([]byte, len(verts)*stride)
	for i := range verts {
		verts[i].MarshalTo(buf[i*stride:])
	}
	return buf
}
