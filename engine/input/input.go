// Package input translates window events into camera and render-state changes.
//
// Every handled event asks the Driver for a new frame; events that change nothing are
// ignored without a redraw.
package input

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/camera"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/scene"
	"github.com/Carmen-Shannon/oxy-raymarch/log"
)

var logger = log.New("input")

// EventSource is the part of window.Window the handler binds to.
type EventSource interface {
	SetKeyDownCallback(callback func(keyCode uint32))
	SetMouseDownCallback(callback func(x, y float64))
	SetMouseUpCallback(callback func(x, y float64))
	SetMouseMoveCallback(callback func(x, y float64))
	SetScrollCallback(callback func(delta float32))
}

// Target is the part of scene.Scene the handler drives.
type Target interface {
	Camera() camera.Camera
	State() scene.State
	SetRenderType(renderType int) error
	SetSoftShadow(mode int) error
	ToggleAnimated() bool
	ToggleGeodesic() bool
	ToggleRealLight() bool
	Move(direction float32)
}

// Driver schedules frames on behalf of the handler.
type Driver interface {
	// RequestRender asks for one more frame. Requests made before the frame is drawn coalesce.
	RequestRender()

	// SetAnimationSuspended pauses or resumes the animation tick without touching the animated flag.
	SetAnimationSuspended(suspended bool)
}

// Control names a numeric setting that can be assigned directly with HandleControl.
type Control string

const (
	ControlRayOriginX Control = "ro_x"
	ControlRayOriginY Control = "ro_y"
	ControlRayOriginZ Control = "ro_z"
	ControlFov        Control = "fov"
	ControlType       Control = "type"
	ControlSoftShadow Control = "soft_shadow"
)

// Handler binds window events to a Target.
type Handler interface {
	// Bind installs the handler's callbacks on src, replacing any bound earlier.
	//
	// Parameters:
	//   - src: the event source, usually the window
	Bind(src EventSource)

	// Unbind detaches every callback from the bound source. Safe to call when nothing is bound.
	Unbind()

	// HandleKey applies the action bound to keyCode.
	//
	// Parameters:
	//   - keyCode: a GLFW key code
	//
	// Returns:
	//   - bool: false if the key has no binding
	HandleKey(keyCode uint32) bool

	// HandleControl assigns a numeric setting and requests a frame.
	//
	// Parameters:
	//   - control: the setting to change
	//   - value: the new value
	//
	// Returns:
	//   - error: an error for an unknown control or an out-of-range value
	HandleControl(control Control, value float64) error

	// MouseDown starts a drag at (x, y) and suspends the animation tick while animation is on.
	MouseDown(x, y float64)

	// MouseUp ends a drag and resumes the animation tick.
	MouseUp(x, y float64)

	// MouseMove applies a drag step when a drag is in progress.
	MouseMove(x, y float64)

	// Scroll narrows (positive delta) or widens the field of view.
	Scroll(delta float32)
}

type handler struct {
	mu     *sync.Mutex
	target Target
	driver Driver
	source EventSource

	fovStep float32
	keymap  map[uint32]func(h *handler)
}

var _ Handler = &handler{}

// NewHandler creates a Handler driving target and scheduling frames through driver.
// Panics if either is nil.
//
// Parameters:
//   - target: the scene the events act on
//   - driver: the frame scheduler
//   - options: functional options to configure the handler
//
// Returns:
//   - Handler: the new handler, not yet bound to a source
func NewHandler(target Target, driver Driver, options ...HandlerBuilderOption) Handler {
	if target == nil {
		panic("input: NewHandler requires a non-nil Target")
	}
	if driver == nil {
		panic("input: NewHandler requires a non-nil Driver")
	}
	h := &handler{
		mu:      &sync.Mutex{},
		target:  target,
		driver:  driver,
		fovStep: DefaultFovStep,
		keymap:  defaultKeymap(),
	}
	for _, option := range options {
		option(h)
	}
	return h
}

// defaultKeymap binds the view keys and the keys standing in for the settings panel.
func defaultKeymap() map[uint32]func(h *handler) {
	return map[uint32]func(h *handler){
		common.KeyW: func(h *handler) { h.target.Camera().Pitch(-1) },
		common.KeyS: func(h *handler) { h.target.Camera().Pitch(1) },
		common.KeyA: func(h *handler) { h.target.Camera().Yaw(-1) },
		common.KeyD: func(h *handler) { h.target.Camera().Yaw(1) },
		common.KeyQ: func(h *handler) { h.target.Camera().Roll(-1) },
		common.KeyE: func(h *handler) { h.target.Camera().Roll(1) },

		common.KeyUp:     func(h *handler) { h.target.Move(1) },
		common.KeyHome:   func(h *handler) { h.target.Move(1) },
		common.KeyDown:   func(h *handler) { h.target.Move(-1) },
		common.KeyPageUp: func(h *handler) { h.target.Move(-1) },

		common.KeyP: func(h *handler) {
			animated := h.target.ToggleAnimated()
			h.driver.SetAnimationSuspended(false)
			logger.Infof("animation %s", onOff(animated))
		},
		common.KeyG: func(h *handler) { logger.Infof("geodesic travel %s", onOff(h.target.ToggleGeodesic())) },
		common.KeyL: func(h *handler) { logger.Infof("real light %s", onOff(h.target.ToggleRealLight())) },

		common.Key1: func(h *handler) { h.setRenderType(scene.RenderTypeSpheres) },
		common.Key2: func(h *handler) { h.setRenderType(scene.RenderTypeBoxes) },
		common.Key3: func(h *handler) { h.setRenderType(scene.RenderTypePulse) },
		common.Key4: func(h *handler) { h.setRenderType(scene.RenderTypeFloor) },

		common.KeyZ: func(h *handler) { h.setSoftShadow(scene.ShadowNone) },
		common.KeyX: func(h *handler) { h.setSoftShadow(scene.ShadowDirect) },
		common.KeyC: func(h *handler) { h.setSoftShadow(scene.ShadowSoft) },

		common.KeyMinus: func(h *handler) { h.target.Camera().AdjustFov(-h.fovStep) },
		common.KeyEqual: func(h *handler) { h.target.Camera().AdjustFov(h.fovStep) },
		common.KeyR:     func(h *handler) { h.target.Camera().Reset() },
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (h *handler) setRenderType(renderType int) {
	if err := h.target.SetRenderType(renderType); err != nil {
		logger.Warning(err)
		return
	}
	logger.Infof("type %d", renderType)
}

func (h *handler) setSoftShadow(mode int) {
	if err := h.target.SetSoftShadow(mode); err != nil {
		logger.Warning(err)
		return
	}
	logger.Infof("shadow %d", mode)
}

func (h *handler) Bind(src EventSource) {
	h.Unbind()

	h.mu.Lock()
	h.source = src
	h.mu.Unlock()

	src.SetKeyDownCallback(func(keyCode uint32) { h.HandleKey(keyCode) })
	src.SetMouseDownCallback(h.MouseDown)
	src.SetMouseUpCallback(h.MouseUp)
	src.SetMouseMoveCallback(h.MouseMove)
	src.SetScrollCallback(h.Scroll)
}

func (h *handler) Unbind() {
	h.mu.Lock()
	src := h.source
	h.source = nil
	h.mu.Unlock()

	if src == nil {
		return
	}
	src.SetKeyDownCallback(nil)
	src.SetMouseDownCallback(nil)
	src.SetMouseUpCallback(nil)
	src.SetMouseMoveCallback(nil)
	src.SetScrollCallback(nil)
}

func (h *handler) HandleKey(keyCode uint32) bool {
	logger.Debugf("%d keyboard event", keyCode)
	action, ok := h.keymap[keyCode]
	if !ok {
		return false
	}
	action(h)
	h.driver.RequestRender()
	return true
}

func (h *handler) HandleControl(control Control, value float64) error {
	cam := h.target.Camera()
	switch control {
	case ControlRayOriginX:
		cam.SetRayOriginComponent(0, float32(value))
	case ControlRayOriginY:
		cam.SetRayOriginComponent(1, float32(value))
	case ControlRayOriginZ:
		cam.SetRayOriginComponent(2, float32(value))
	case ControlFov:
		if value <= 0 {
			return fmt.Errorf("input: fov must be positive, got %v", value)
		}
		cam.SetFov(float32(value))
	case ControlType:
		if err := h.target.SetRenderType(int(value)); err != nil {
			return err
		}
	case ControlSoftShadow:
		if err := h.target.SetSoftShadow(int(value)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("input: unknown control %q", control)
	}
	logger.Infof("%s = %v", control, value)
	h.driver.RequestRender()
	return nil
}

func (h *handler) MouseDown(x, y float64) {
	h.target.Camera().BeginDrag(x, y)
	if h.target.State().Animated {
		h.driver.SetAnimationSuspended(true)
	}
	logger.Debugf("drag started at %.0f,%.0f", x, y)
}

func (h *handler) MouseUp(x, y float64) {
	h.target.Camera().EndDrag()
	h.driver.SetAnimationSuspended(false)
	logger.Debugf("drag ended at %.0f,%.0f", x, y)
}

func (h *handler) MouseMove(x, y float64) {
	if h.target.Camera().Drag(x, y) {
		h.driver.RequestRender()
	}
}

func (h *handler) Scroll(delta float32) {
	if delta == 0 {
		return
	}
	h.target.Camera().AdjustFov(-delta * h.fovStep)
	h.driver.RequestRender()
}
