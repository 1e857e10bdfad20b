package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Default view settings.
const (
	DefaultFov               float32 = 0.25
	DefaultMoveSensitivity   float32 = 0.05
	DefaultRotateSensitivity float32 = 2.0 // degrees
	DefaultMouseSensitivity  float32 = 0.25
	minFov                   float32 = 0.01
)

type cameraImpl struct {
	mu *sync.Mutex

	rotation  mgl32.Mat4
	rayOrigin mgl32.Vec3
	fov       float32

	initialRayOrigin mgl32.Vec3
	initialFov       float32

	moveSensitivity   float32
	rotateSensitivity float32
	mouseSensitivity  float32

	angleX float32
	angleY float32

	dragging bool
	lastX    float64
	lastY    float64
}

// Snapshot is a point-in-time copy of the view state.
type Snapshot struct {
	Rotation  mgl32.Mat4
	RayOrigin mgl32.Vec3
	Fov       float32
	AngleX    float32
	AngleY    float32
}

// Camera defines the interface for the ray marcher's view.
// The view is a rotation matrix whose columns are the marcher's local axes
// (column 0 is the direction of travel) plus the ray origin the marcher casts from.
type Camera interface {
	// Snapshot returns a copy of the current view state.
	//
	// Returns:
	//   - Snapshot: the rotation, ray origin, fov and drag angles
	Snapshot() Snapshot

	// Rotation returns the current rotation matrix (column-major).
	//
	// Returns:
	//   - mgl32.Mat4: the rotation matrix
	Rotation() mgl32.Mat4

	// RayOrigin returns the current ray origin.
	//
	// Returns:
	//   - mgl32.Vec3: the ray origin
	RayOrigin() mgl32.Vec3

	// Fov returns the field of view scale passed to the shader.
	//
	// Returns:
	//   - float32: the fov
	Fov() float32

	// Rotate premultiplies the rotation matrix by a rotation of angleDeg degrees about axis.
	// A zero-length axis leaves the matrix unchanged.
	//
	// Parameters:
	//   - angleDeg: the angle in degrees
	//   - axis: the rotation axis, normalized internally
	Rotate(angleDeg float32, axis mgl32.Vec3)

	// Pitch rotates by direction*rotateSensitivity degrees about column 1 of the rotation matrix.
	//
	// Parameters:
	//   - direction: -1 or +1
	Pitch(direction float32)

	// Yaw rotates by direction*rotateSensitivity degrees about column 2 of the rotation matrix.
	//
	// Parameters:
	//   - direction: -1 or +1
	Yaw(direction float32)

	// Roll rotates by direction*rotateSensitivity degrees about column 0 of the rotation matrix.
	//
	// Parameters:
	//   - direction: -1 or +1
	Roll(direction float32)

	// Move steps the ray origin along column 0 of the rotation matrix.
	// With hyperbolic false the step is a straight line of length moveSensitivity.
	// With hyperbolic true the ray origin follows a hyperbolic geodesic:
	// new = cosh(s)*ro + direction*sinh(s)*col0, and col0 is recomputed from the new point.
	//
	// Parameters:
	//   - direction: +1 forward, -1 backward
	//   - hyperbolic: whether to travel along the geodesic
	Move(direction float32, hyperbolic bool)

	// SetRayOrigin sets the ray origin directly.
	//
	// Parameters:
	//   - ro: the new ray origin
	SetRayOrigin(ro mgl32.Vec3)

	// SetRayOriginComponent sets one component (0=x, 1=y, 2=z) of the ray origin.
	// Out-of-range indices are ignored.
	//
	// Parameters:
	//   - index: the component index
	//   - value: the new value
	SetRayOriginComponent(index int, value float32)

	// SetFov sets the field of view, clamped to a small positive minimum.
	//
	// Parameters:
	//   - fov: the new fov
	SetFov(fov float32)

	// AdjustFov adds delta to the field of view, clamped to a small positive minimum.
	//
	// Parameters:
	//   - delta: the amount to add
	AdjustFov(delta float32)

	// BeginDrag records the cursor position at the start of a mouse drag.
	//
	// Parameters:
	//   - x, y: cursor position in window coordinates
	BeginDrag(x, y float64)

	// Drag applies the cursor movement since the previous drag event.
	// The y delta is inverted so that moving the mouse up is positive.
	// The deltas accumulate into the drag angles and rotate the view about
	// column 2 (horizontal) and column 1 (vertical), scaled by mouseSensitivity.
	//
	// Parameters:
	//   - x, y: cursor position in window coordinates
	//
	// Returns:
	//   - bool: true if a drag is in progress and the view changed
	Drag(x, y float64) bool

	// EndDrag finishes the current mouse drag.
	EndDrag()

	// Dragging reports whether a mouse drag is in progress.
	//
	// Returns:
	//   - bool: true between BeginDrag and EndDrag
	Dragging() bool

	// Reset restores the identity rotation, the initial ray origin and fov, and zero drag angles.
	Reset()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with an identity rotation and the provided options applied.
// Panics if the move sensitivity is not positive since the geodesic step divides by sinh of it.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:                &sync.Mutex{},
		rotation:          mgl32.Ident4(),
		fov:               DefaultFov,
		moveSensitivity:   DefaultMoveSensitivity,
		rotateSensitivity: DefaultRotateSensitivity,
		mouseSensitivity:  DefaultMouseSensitivity,
	}
	for _, option := range options {
		option(c)
	}
	if c.moveSensitivity <= 0 {
		panic("camera: NewCamera requires a positive move sensitivity")
	}
	if c.fov < minFov {
		c.fov = minFov
	}
	c.initialRayOrigin = c.rayOrigin
	c.initialFov = c.fov
	return c
}

func (c *cameraImpl) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Rotation:  c.rotation,
		RayOrigin: c.rayOrigin,
		Fov:       c.fov,
		AngleX:    c.angleX,
		AngleY:    c.angleY,
	}
}

func (c *cameraImpl) Rotation() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotation
}

func (c *cameraImpl) RayOrigin() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rayOrigin
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Rotate(angleDeg float32, axis mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotate(angleDeg, axis)
}

func (c *cameraImpl) Pitch(direction float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotate(direction*c.rotateSensitivity, c.rotation.Col(1).Vec3())
}

func (c *cameraImpl) Yaw(direction float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotate(direction*c.rotateSensitivity, c.rotation.Col(2).Vec3())
}

func (c *cameraImpl) Roll(direction float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotate(direction*c.rotateSensitivity, c.rotation.Col(0).Vec3())
}

func (c *cameraImpl) Move(direction float32, hyperbolic bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	forward := c.rotation.Col(0).Vec3()
	if !hyperbolic {
		if forward.Len() == 0 {
			return
		}
		c.rayOrigin = c.rayOrigin.Add(forward.Normalize().Mul(direction * c.moveSensitivity))
		return
	}

	s := float64(c.moveSensitivity)
	ch, sh := math.Cosh(s), math.Sinh(s)
	dir := float64(direction)
	var next mgl32.Vec3
	for i := range 3 {
		ro := float64(c.rayOrigin[i])
		n := ch*ro + dir*sh*float64(forward[i])
		next[i] = float32(n)
		c.rotation[i] = float32(dir * (n - ch*ro) / sh)
	}
	c.rayOrigin = next
}

func (c *cameraImpl) SetRayOrigin(ro mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rayOrigin = ro
}

func (c *cameraImpl) SetRayOriginComponent(index int, value float32) {
	if index < 0 || index > 2 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rayOrigin[index] = value
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = max(fov, minFov)
}

func (c *cameraImpl) AdjustFov(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = max(c.fov+delta, minFov)
}

func (c *cameraImpl) BeginDrag(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = true
	c.lastX = x
	c.lastY = y
}

func (c *cameraImpl) Drag(x, y float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dragging {
		return false
	}

	dx := float32(x - c.lastX)
	dy := float32(-(y - c.lastY))
	c.angleX += dy
	c.angleY -= dx

	if dx != 0 {
		c.rotate(-dx*c.mouseSensitivity, c.rotation.Col(2).Vec3())
	}
	if dy != 0 {
		c.rotate(dy*c.mouseSensitivity, c.rotation.Col(1).Vec3())
	}

	c.lastX = x
	c.lastY = y
	return true
}

func (c *cameraImpl) EndDrag() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = false
}

func (c *cameraImpl) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging
}

func (c *cameraImpl) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotation = mgl32.Ident4()
	c.rayOrigin = c.initialRayOrigin
	c.fov = c.initialFov
	c.angleX = 0
	c.angleY = 0
}

// rotate computes R = Rot(angleDeg, axis) * R.
// Caller must hold the mutex.
func (c *cameraImpl) rotate(angleDeg float32, axis mgl32.Vec3) {
	if axis.Len() == 0 {
		return
	}
	rot := mgl32.HomogRotate3D(mgl32.DegToRad(angleDeg), axis.Normalize())
	c.rotation = rot.Mul4(c.rotation)
}
