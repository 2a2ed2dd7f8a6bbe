package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/go-gl/mathgl/mgl64"
)

// within reports whether every element of a is within tol of the matching element of b.
func within(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	s := c.State()

	if s.Near != DefaultNear {
		t.Errorf("expected near %v, got %v", DefaultNear, s.Near)
	}
	if s.Far != DefaultFar {
		t.Errorf("expected far %v, got %v", DefaultFar, s.Far)
	}
	if s.LogDepthConstant != 1 {
		t.Errorf("expected log depth constant 1, got %v", s.LogDepthConstant)
	}
	if math.Abs(s.Fov-mgl64.DegToRad(DefaultFovDeg)) > 1e-12 {
		t.Errorf("expected fov %v rad, got %v", mgl64.DegToRad(DefaultFovDeg), s.Fov)
	}
	if !s.Direction.ApproxEqual(mgl64.Vec3{0, 0, -1}) {
		t.Errorf("expected direction (0,0,-1), got %v", s.Direction)
	}
	if s.View != mgl64.Ident4() {
		t.Errorf("expected identity view without controller, got %v", s.View)
	}
}

func TestStateFollowsController(t *testing.T) {
	ctrl := NewCameraController(WithPosition(mgl64.Vec3{1e13, -2e12, 5e12}))
	c := NewCamera(WithController(ctrl))

	s := c.State()
	if s.Position != ctrl.Position() {
		t.Errorf("expected position %v, got %v", ctrl.Position(), s.Position)
	}

	ctrl.SetPosition(mgl64.Vec3{1, 2, 3})
	s = c.State()
	if s.Position != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("expected state to pick up the moved controller, got %v", s.Position)
	}
}

func TestToCameraSpaceAtAstronomicalDistance(t *testing.T) {
	camPos := mgl64.Vec3{1e13, 1e13, -1e13}
	ctrl := NewCameraController(WithPosition(camPos))
	s := NewCamera(WithController(ctrl)).State()

	tests := []struct {
		name   string
		offset mgl64.Vec3
	}{
		{"ahead", mgl64.Vec3{0, 0, -1000}},
		{"right", mgl64.Vec3{250, 0, 0}},
		{"above", mgl64.Vec3{0, 1e6, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ToCameraSpace(camPos.Add(tt.offset))
			for i := range 3 {
				if math.IsNaN(got[i]) || math.IsInf(got[i], 0) {
					t.Fatalf("expected finite component, got %v", got)
				}
			}
			if !within(got[:], tt.offset[:], 1e-2) {
				t.Errorf("expected %v, got %v", tt.offset, got)
			}
		})
	}
}

func TestFarCoefficient(t *testing.T) {
	s := NewCamera(WithFar(1e11), WithLogDepthConstant(1)).State()
	want := 1 / math.Log2(1e11+1)
	if math.Abs(s.FarCoefficient()-want) > 1e-15 {
		t.Errorf("expected %v, got %v", want, s.FarCoefficient())
	}
	wantFc := 1 / math.Log(1e11+1)
	if math.Abs(s.FcConstant()-wantFc) > 1e-15 {
		t.Errorf("expected %v, got %v", wantFc, s.FcConstant())
	}
}

func TestViewMatchesLookAt(t *testing.T) {
	ctrl := NewCameraController(WithPosition(mgl64.Vec3{100, -50, 20}))
	ctrl.Rotate(30, 10, 0)
	s := NewCamera(WithController(ctrl)).State()

	want := common.LookAt64(s.Position, s.Position.Add(s.Direction), s.Up)
	if !within(s.View[:], want[:], 1e-9) {
		t.Errorf("expected view %v, got %v", want, s.View)
	}
	if s.RotationOnlyView[12] != 0 || s.RotationOnlyView[13] != 0 || s.RotationOnlyView[14] != 0 {
		t.Errorf("expected zero translation in the rotation-only view, got %v", s.RotationOnlyView.Col(3))
	}

	p := mgl64.Vec3{110, -40, -500}
	world := s.ViewProjection().Mul4x1(p.Vec4(1))
	relative := s.RelativeViewProjection().Mul4x1(p.Sub(s.Position).Vec4(1))
	if !within(world[:], relative[:], 1e-9*world.Len()) {
		t.Errorf("expected world and camera-relative clip to agree, got %v and %v", world, relative)
	}
}

func TestControllerSensitivity(t *testing.T) {
	still := NewCameraController(WithSensitivity(0))
	still.ProcessMouseMovement(50, 50)
	if !still.Front().ApproxEqual(mgl64.Vec3{0, 0, -1}) {
		t.Errorf("expected zero sensitivity to ignore pointer movement, got front %v", still.Front())
	}

	moved := NewCameraController(WithSensitivity(1))
	moved.ProcessMouseMovement(30, 0)
	if moved.Front().ApproxEqual(mgl64.Vec3{0, 0, -1}) {
		t.Errorf("expected pointer movement to turn the camera")
	}
}

func TestControllerLookAt(t *testing.T) {
	ctrl := NewCameraController()
	ctrl.Rotate(30, 10, 5)
	target := mgl64.Vec3{1e11, 0, 0}
	ctrl.LookAt(target, 5e8)

	if ctrl.Position() != (mgl64.Vec3{1e11, 0, 5e8}) {
		t.Errorf("expected camera 5e8 m along +Z from target, got %v", ctrl.Position())
	}
	if !ctrl.Front().ApproxEqual(mgl64.Vec3{0, 0, -1}) {
		t.Errorf("expected reset front (0,0,-1), got %v", ctrl.Front())
	}
}

func TestControllerSpeedClamps(t *testing.T) {
	tests := []struct {
		name   string
		apply  func(CameraController)
		expect float64
	}{
		{"scroll down floors", func(c CameraController) { c.ProcessScroll(-1000) }, minScrollSpeed},
		{"scroll up caps", func(c CameraController) { c.ProcessScroll(1000) }, maxSpeed},
		{"change speed floors", func(c CameraController) { c.ChangeSpeed(-1000) }, minStepSpeed},
		{"change speed caps", func(c CameraController) { c.ChangeSpeed(1000) }, maxSpeed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCameraController(WithSpeed(100))
			tt.apply(c)
			if c.Speed() != tt.expect {
				t.Errorf("expected speed %v, got %v", tt.expect, c.Speed())
			}
		})
	}
}

func TestControllerMovement(t *testing.T) {
	c := NewCameraController(WithSpeed(10))
	c.ProcessMovement(MovementForward, 2)
	if !c.Position().ApproxEqual(mgl64.Vec3{0, 0, -20}) {
		t.Errorf("expected (0,0,-20), got %v", c.Position())
	}
	c.ProcessMovement(MovementRight, 1)
	if !c.Position().ApproxEqual(mgl64.Vec3{10, 0, -20}) {
		t.Errorf("expected (10,0,-20), got %v", c.Position())
	}
}

func TestControllerRotationStaysNormalized(t *testing.T) {
	c := NewCameraController()
	for range 1000 {
		c.ProcessMouseMovement(3.7, -1.3)
		c.ProcessMovement(MovementRollLeft, 0.016)
	}
	if l := c.Rotation().Len(); math.Abs(l-1) > 1e-9 {
		t.Errorf("expected unit quaternion, got length %v", l)
	}
}

func TestControllerLock(t *testing.T) {
	c := NewCameraController()
	c.LockToObject(mgl64.Vec3{1, 2, 3})
	if pos, ok := c.Locked(); !ok || pos != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("expected lock on (1,2,3), got %v %v", pos, ok)
	}
	c.Unlock()
	if _, ok := c.Locked(); ok {
		t.Errorf("expected unlocked controller")
	}
}
