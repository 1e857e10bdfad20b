package camera

import "github.com/go-gl/mathgl/mgl32"

type CameraBuilderOption func(*cameraImpl)

// WithFov sets the initial field of view. Reset returns to this value.
//
// Parameters:
//   - fov: the fov scale passed to the shader
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithRayOrigin sets the initial ray origin. Reset returns to this value.
//
// Parameters:
//   - ro: the ray origin
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's ray origin
func WithRayOrigin(ro mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.rayOrigin = ro
	}
}

// WithMoveSensitivity sets the step length used by Move.
//
// Parameters:
//   - s: the step length, must be positive
//
// Returns:
//   - CameraBuilderOption: a function that sets the move sensitivity
func WithMoveSensitivity(s float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.moveSensitivity = s
	}
}

// WithRotateSensitivity sets the angle in degrees used by Pitch, Yaw and Roll.
func WithRotateSensitivity(deg float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.rotateSensitivity = deg
	}
}

// WithMouseSensitivity sets the degrees of rotation per pixel of mouse drag.
func WithMouseSensitivity(deg float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.mouseSensitivity = deg
	}
}
