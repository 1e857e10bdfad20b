package model

import "github.com/go-gl/mathgl/mgl32"

// PyramidName is the name given to the built-in model.
const PyramidName = "simple"

// NewPyramid builds the built-in face: a square in the z=0 plane split into two
// triangles, colored so the ray marcher has a visible gradient to sample.
//
// Returns:
//   - Model: the two-triangle model named PyramidName
func NewPyramid() Model {
	v0 := mgl32.Vec3{1, 1, 0}
	v1 := mgl32.Vec3{1, -1, 0}
	v2 := mgl32.Vec3{-1, -1, 0}
	v3 := mgl32.Vec3{-1, 1, 0}

	return NewModel(
		WithName(PyramidName),
		WithTriangle(NewTriangle(v0, v2, v1, Blue, Green, Purple)),
		WithTriangle(NewTriangle(v0, v3, v2, Blue, Red, Green)),
	)
}
