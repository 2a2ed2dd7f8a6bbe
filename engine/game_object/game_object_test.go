package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/starfield/engine/light"
	"github.com/Carmen-Shannon/starfield/engine/model"
	"github.com/Carmen-Shannon/starfield/engine/orbit"
	"github.com/go-gl/mathgl/mgl64"
)

func TestNewGameObjectDefaults(t *testing.T) {
	obj := NewGameObject(WithName("body"))
	if !obj.Enabled() {
		t.Errorf("expected new objects to be enabled")
	}
	if obj.Name() != "body" {
		t.Errorf("expected name body, got %q", obj.Name())
	}
	tr := obj.Transform()
	if tr.Scale != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("expected unit scale, got %v", tr.Scale)
	}
	if tr.Rotation != mgl64.QuatIdent() {
		t.Errorf("expected identity rotation, got %v", tr.Rotation)
	}
}

func TestWithID(t *testing.T) {
	obj := NewGameObject(WithID(42))
	if obj.ID() != 42 {
		t.Errorf("expected id 42, got %d", obj.ID())
	}
	obj.SetID(7)
	if obj.ID() != 7 {
		t.Errorf("expected id 7, got %d", obj.ID())
	}
}

func TestRadius(t *testing.T) {
	tests := []struct {
		name string
		opts []GameObjectBuilderOption
		want float64
	}{
		{"no model", []GameObjectBuilderOption{WithScale(mgl64.Vec3{2, 5, 3})}, 5},
		{"unit sphere", []GameObjectBuilderOption{WithModel(model.NewUVSphere("s", 8, 16)), WithUniformScale(6.371e6)}, 6.371e6},
		{"quad", []GameObjectBuilderOption{WithModel(model.NewQuad("q")), WithUniformScale(1)}, 1.4142135},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewGameObject(tt.opts...).Radius()
			if d := got - tt.want; d > tt.want*1e-6 || d < -tt.want*1e-6 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAttachedLightFollowsPosition(t *testing.T) {
	l := light.NewLight()
	obj := NewGameObject(WithPosition(mgl64.Vec3{1e11, 0, 0}), WithLight(l))
	if l.Position() != (mgl64.Vec3{1e11, 0, 0}) {
		t.Errorf("expected light at the object, got %v", l.Position())
	}

	obj.SetPosition(mgl64.Vec3{0, 2e11, 0})
	if l.Position() != (mgl64.Vec3{0, 2e11, 0}) {
		t.Errorf("expected light to follow, got %v", l.Position())
	}

	other := light.NewLight()
	obj.SetLight(other)
	if other.Position() != (mgl64.Vec3{0, 2e11, 0}) {
		t.Errorf("expected newly attached light at the object, got %v", other.Position())
	}
	obj.SetLight(nil)
	obj.SetPosition(mgl64.Vec3{})
	if other.Position() != (mgl64.Vec3{0, 2e11, 0}) {
		t.Errorf("expected detached light to stay, got %v", other.Position())
	}
}

func TestRecordTrail(t *testing.T) {
	if NewGameObject().RecordTrail() {
		t.Errorf("expected no recording without a trail")
	}

	trail := orbit.NewTrail(orbit.WithMinDistance(10))
	obj := NewGameObject(WithTrail(trail))
	if !obj.RecordTrail() {
		t.Errorf("expected the first point to be recorded")
	}
	obj.SetPosition(mgl64.Vec3{5, 0, 0})
	if obj.RecordTrail() {
		t.Errorf("expected a short move to be skipped")
	}
	obj.SetPosition(mgl64.Vec3{50, 0, 0})
	if !obj.RecordTrail() {
		t.Errorf("expected a long move to be recorded")
	}
	if trail.Len() != 2 {
		t.Errorf("expected 2 points, got %d", trail.Len())
	}
}
