package model

import "github.com/go-gl/mathgl/mgl32"

// Color is a linear RGB triple with components in [0, 1].
type Color [3]float32

// Named colors used by the built-in pyramid face.
var (
	Red    = Color{1, 0, 0}
	Green  = Color{0, 1, 0}
	Blue   = Color{0, 0, 1}
	Purple = Color{1, 0, 1}
)

// Triangle is one face of a model: three vertex positions and a color per vertex.
// Vertex order is preserved through flattening and upload.
type Triangle struct {
	Vertices [3]mgl32.Vec3
	Colors   [3]Color
}

// NewTriangle builds a Triangle from three positions and three per-vertex colors.
//
// Parameters:
//   - a, b, c: vertex positions in model space
//   - ca, cb, cc: colors for a, b and c respectively
//
// Returns:
//   - Triangle: the assembled triangle
func NewTriangle(a, b, c mgl32.Vec3, ca, cb, cc Color) Triangle {
	return Triangle{
		Vertices: [3]mgl32.Vec3{a, b, c},
		Colors:   [3]Color{ca, cb, cc},
	}
}
