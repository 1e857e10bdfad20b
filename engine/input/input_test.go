package input

import (
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/camera"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeTarget struct {
	cam   camera.Camera
	state scene.State
	moves []float32
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{cam: camera.NewCamera(), state: scene.DefaultState()}
}

func (f *fakeTarget) Camera() camera.Camera  { return f.cam }
func (f *fakeTarget) State() scene.State     { return f.state }
func (f *fakeTarget) ToggleAnimated() bool   { f.state.Animated = !f.state.Animated; return f.state.Animated }
func (f *fakeTarget) ToggleGeodesic() bool   { f.state.Geodesic = !f.state.Geodesic; return f.state.Geodesic }
func (f *fakeTarget) ToggleRealLight() bool  { f.state.RealLight = !f.state.RealLight; return f.state.RealLight }
func (f *fakeTarget) Move(direction float32) { f.moves = append(f.moves, direction) }

func (f *fakeTarget) SetRenderType(renderType int) error {
	if renderType < scene.RenderTypeSpheres || renderType > scene.RenderTypeFloor {
		return fmt.Errorf("bad type %d", renderType)
	}
	f.state.RenderType = renderType
	return nil
}

func (f *fakeTarget) SetSoftShadow(mode int) error {
	if mode < scene.ShadowNone || mode > scene.ShadowSoft {
		return fmt.Errorf("bad shadow %d", mode)
	}
	f.state.SoftShadow = mode
	return nil
}

type fakeDriver struct {
	renders   int
	suspended []bool
}

func (f *fakeDriver) RequestRender()                       { f.renders++ }
func (f *fakeDriver) SetAnimationSuspended(suspended bool) { f.suspended = append(f.suspended, suspended) }

type fakeSource struct {
	keyDown   func(uint32)
	mouseDown func(x, y float64)
	mouseUp   func(x, y float64)
	mouseMove func(x, y float64)
	scroll    func(float32)
}

func (f *fakeSource) SetKeyDownCallback(callback func(keyCode uint32))  { f.keyDown = callback }
func (f *fakeSource) SetMouseDownCallback(callback func(x, y float64))  { f.mouseDown = callback }
func (f *fakeSource) SetMouseUpCallback(callback func(x, y float64))    { f.mouseUp = callback }
func (f *fakeSource) SetMouseMoveCallback(callback func(x, y float64))  { f.mouseMove = callback }
func (f *fakeSource) SetScrollCallback(callback func(delta float32))    { f.scroll = callback }

func TestHandleKeyState(t *testing.T) {
	type spec struct {
		key       uint32
		expState  scene.State
		expRender bool
	}
	def := scene.DefaultState()
	with := func(mutate func(s *scene.State)) scene.State {
		s := def
		mutate(&s)
		return s
	}
	specs := []spec{
		{common.KeyP, with(func(s *scene.State) { s.Animated = true }), true},
		{common.KeyG, with(func(s *scene.State) { s.Geodesic = true }), true},
		{common.KeyL, with(func(s *scene.State) { s.RealLight = true }), true},
		{common.Key1, with(func(s *scene.State) { s.RenderType = scene.RenderTypeSpheres }), true},
		{common.Key2, with(func(s *scene.State) { s.RenderType = scene.RenderTypeBoxes }), true},
		{common.Key4, with(func(s *scene.State) { s.RenderType = scene.RenderTypeFloor }), true},
		{common.KeyZ, with(func(s *scene.State) { s.SoftShadow = scene.ShadowNone }), true},
		{common.KeyX, with(func(s *scene.State) { s.SoftShadow = scene.ShadowDirect }), true},
		{common.KeyC, with(func(s *scene.State) { s.SoftShadow = scene.ShadowSoft }), true},
		// unbound
		{9999, def, false},
	}

	for index, s := range specs {
		target := newFakeTarget()
		driver := &fakeDriver{}
		h := NewHandler(target, driver)

		handled := h.HandleKey(s.key)
		if handled != s.expRender {
			t.Fatalf("[spec %d] expected handled %v, got %v", index, s.expRender, handled)
		}
		if target.state != s.expState {
			t.Fatalf("[spec %d] expected state %+v, got %+v", index, s.expState, target.state)
		}
		if expRenders := map[bool]int{true: 1, false: 0}[s.expRender]; driver.renders != expRenders {
			t.Fatalf("[spec %d] expected %d render requests, got %d", index, expRenders, driver.renders)
		}
	}
}

func TestHandleKeyMove(t *testing.T) {
	type spec struct {
		key    uint32
		expDir float32
	}
	specs := []spec{
		{common.KeyUp, 1},
		{common.KeyHome, 1},
		{common.KeyDown, -1},
		{common.KeyPageUp, -1},
	}

	for index, s := range specs {
		target := newFakeTarget()
		h := NewHandler(target, &fakeDriver{})
		h.HandleKey(s.key)
		if len(target.moves) != 1 || target.moves[0] != s.expDir {
			t.Fatalf("[spec %d] expected one move %v, got %v", index, s.expDir, target.moves)
		}
	}
}

func TestHandleKeyRotatesAndResets(t *testing.T) {
	target := newFakeTarget()
	h := NewHandler(target, &fakeDriver{})

	for _, key := range []uint32{common.KeyW, common.KeyA, common.KeyQ} {
		h.HandleKey(key)
	}
	if target.cam.Rotation().ApproxEqual(mgl32.Ident4()) {
		t.Fatalf("expected the rotation keys to rotate the view")
	}

	h.HandleKey(common.KeyR)
	if !target.cam.Rotation().ApproxEqual(mgl32.Ident4()) {
		t.Fatalf("expected R to reset the rotation, got %v", target.cam.Rotation())
	}
}

func TestHandleKeyFov(t *testing.T) {
	target := newFakeTarget()
	h := NewHandler(target, &fakeDriver{}, WithFovStep(0.1))

	h.HandleKey(common.KeyEqual)
	if fov := target.cam.Fov(); !mgl32.FloatEqualThreshold(fov, camera.DefaultFov+0.1, 1e-6) {
		t.Fatalf("expected fov %v, got %v", camera.DefaultFov+0.1, fov)
	}
	h.HandleKey(common.KeyMinus)
	h.HandleKey(common.KeyMinus)
	if fov := target.cam.Fov(); !mgl32.FloatEqualThreshold(fov, camera.DefaultFov-0.1, 1e-6) {
		t.Fatalf("expected fov %v, got %v", camera.DefaultFov-0.1, fov)
	}
}

func TestAnimationToggleResumesTick(t *testing.T) {
	target := newFakeTarget()
	driver := &fakeDriver{}
	h := NewHandler(target, driver)

	h.HandleKey(common.KeyP)
	if len(driver.suspended) != 1 || driver.suspended[0] {
		t.Fatalf("expected the toggle to clear any suspension, got %v", driver.suspended)
	}
}

func TestHandleControl(t *testing.T) {
	type spec struct {
		control  Control
		value    float64
		expErr   bool
		expRO    mgl32.Vec3
		expFov   float32
		expState scene.State
	}
	def := scene.DefaultState()
	boxes := def
	boxes.RenderType = scene.RenderTypeBoxes
	direct := def
	direct.SoftShadow = scene.ShadowDirect

	specs := []spec{
		{ControlRayOriginX, 1.5, false, mgl32.Vec3{1.5, 0, 0}, camera.DefaultFov, def},
		{ControlRayOriginY, -2, false, mgl32.Vec3{0, -2, 0}, camera.DefaultFov, def},
		{ControlRayOriginZ, 3, false, mgl32.Vec3{0, 0, 3}, camera.DefaultFov, def},
		{ControlFov, 0.5, false, mgl32.Vec3{}, 0.5, def},
		{ControlType, 2, false, mgl32.Vec3{}, camera.DefaultFov, boxes},
		{ControlSoftShadow, 1, false, mgl32.Vec3{}, camera.DefaultFov, direct},
		{ControlFov, 0, true, mgl32.Vec3{}, camera.DefaultFov, def},
		{ControlType, 7, true, mgl32.Vec3{}, camera.DefaultFov, def},
		{ControlSoftShadow, -1, true, mgl32.Vec3{}, camera.DefaultFov, def},
		{Control("zoom"), 1, true, mgl32.Vec3{}, camera.DefaultFov, def},
	}

	for index, s := range specs {
		target := newFakeTarget()
		driver := &fakeDriver{}
		h := NewHandler(target, driver)

		err := h.HandleControl(s.control, s.value)
		if s.expErr {
			if err == nil {
				t.Fatalf("[spec %d] expected an error", index)
			}
			if driver.renders != 0 {
				t.Fatalf("[spec %d] expected no render request on error", index)
			}
		} else {
			if err != nil {
				t.Fatalf("[spec %d] unexpected error: %v", index, err)
			}
			if driver.renders != 1 {
				t.Fatalf("[spec %d] expected one render request, got %d", index, driver.renders)
			}
		}
		if ro := target.cam.RayOrigin(); ro != s.expRO {
			t.Fatalf("[spec %d] expected ray origin %v, got %v", index, s.expRO, ro)
		}
		if fov := target.cam.Fov(); fov != s.expFov {
			t.Fatalf("[spec %d] expected fov %v, got %v", index, s.expFov, fov)
		}
		if target.state != s.expState {
			t.Fatalf("[spec %d] expected state %+v, got %+v", index, s.expState, target.state)
		}
	}
}

func TestDragSuspendsAnimation(t *testing.T) {
	type spec struct {
		animated     bool
		expSuspended []bool
	}
	specs := []spec{
		{true, []bool{true, false}},
		{false, []bool{false}},
	}

	for index, s := range specs {
		target := newFakeTarget()
		target.state.Animated = s.animated
		driver := &fakeDriver{}
		h := NewHandler(target, driver)

		h.MouseDown(10, 10)
		h.MouseMove(20, 10)
		h.MouseUp(20, 10)

		if fmt.Sprint(driver.suspended) != fmt.Sprint(s.expSuspended) {
			t.Fatalf("[spec %d] expected suspensions %v, got %v", index, s.expSuspended, driver.suspended)
		}
		if driver.renders != 1 {
			t.Fatalf("[spec %d] expected one render request from the drag step, got %d", index, driver.renders)
		}
		if target.cam.Dragging() {
			t.Fatalf("[spec %d] expected the drag to end", index)
		}
	}
}

func TestMouseMoveWithoutDrag(t *testing.T) {
	target := newFakeTarget()
	driver := &fakeDriver{}
	h := NewHandler(target, driver)

	h.MouseMove(50, 50)
	if driver.renders != 0 {
		t.Fatalf("expected no render request for a hover, got %d", driver.renders)
	}
	if !target.cam.Rotation().ApproxEqual(mgl32.Ident4()) {
		t.Fatalf("expected a hover to leave the view alone")
	}
}

func TestScroll(t *testing.T) {
	target := newFakeTarget()
	driver := &fakeDriver{}
	h := NewHandler(target, driver, WithFovStep(0.02))

	h.Scroll(0)
	if driver.renders != 0 {
		t.Fatalf("expected a zero scroll to be ignored")
	}
	h.Scroll(2)
	if fov := target.cam.Fov(); !mgl32.FloatEqualThreshold(fov, camera.DefaultFov-0.04, 1e-6) {
		t.Fatalf("expected fov %v, got %v", camera.DefaultFov-0.04, fov)
	}
	if driver.renders != 1 {
		t.Fatalf("expected one render request, got %d", driver.renders)
	}
}

func TestBindAndUnbind(t *testing.T) {
	target := newFakeTarget()
	driver := &fakeDriver{}
	h := NewHandler(target, driver)
	src := &fakeSource{}

	h.Bind(src)
	if src.keyDown == nil || src.mouseDown == nil || src.mouseUp == nil || src.mouseMove == nil || src.scroll == nil {
		t.Fatalf("expected every callback to be installed")
	}
	src.keyDown(common.KeyG)
	if !target.state.Geodesic {
		t.Fatalf("expected the bound key callback to reach the target")
	}

	h.Unbind()
	if src.keyDown != nil || src.mouseDown != nil || src.mouseUp != nil || src.mouseMove != nil || src.scroll != nil {
		t.Fatalf("expected every callback to be removed")
	}
	h.Unbind()
}

func TestWithKeyBinding(t *testing.T) {
	target := newFakeTarget()
	driver := &fakeDriver{}
	h := NewHandler(target, driver,
		WithKeyBinding(common.KeyG, nil),
		WithKeyBinding(common.KeyF, func(t Target) { t.Move(2) }),
	)

	if h.HandleKey(common.KeyG) {
		t.Fatalf("expected the removed binding to be unhandled")
	}
	if !h.HandleKey(common.KeyF) || len(target.moves) != 1 || target.moves[0] != 2 {
		t.Fatalf("expected the custom binding to run, got moves %v", target.moves)
	}
}

func TestNewHandlerPanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for a nil driver")
		}
	}()
	NewHandler(newFakeTarget(), nil)
}
