package model

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-raymarch/common"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Each field is fed from its own vertex buffer: a_Vertex from slot 0, a_Color from slot 1.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// Vertex buffer slots, matching the @location of each VertexInput field.
const (
	SlotPosition = 0
	SlotColor    = 1
)

// GPUVertexStreams holds the flattened attribute arrays of a Model, one array per vertex buffer.
type GPUVertexStreams struct {
	Positions []float32 // slot 0: vec3<f32> per vertex
	Colors    []float32 // slot 1: vec3<f32> per vertex
}

// NewGPUVertexStreams flattens m into per-attribute arrays.
//
// Parameters:
//   - m: the model to flatten
//
// Returns:
//   - GPUVertexStreams: the attribute arrays, empty for a model with no triangles
func NewGPUVertexStreams(m Model) GPUVertexStreams {
	positions, colors := m.Flatten()
	return GPUVertexStreams{Positions: positions, Colors: colors}
}

// VertexCount returns the number of vertices described by the streams.
//
// Returns:
//   - int: len(Positions)/3
func (g *GPUVertexStreams) VertexCount() int {
	return len(g.Positions) / 3
}

// Marshal serializes each stream into a byte buffer suitable for GPU upload, indexed by slot.
// Returns nil for an empty model so no buffers are created.
//
// Returns:
//   - [][]byte: one little-endian buffer per slot, or nil
func (g *GPUVertexStreams) Marshal() [][]byte {
	if g.VertexCount() == 0 {
		return nil
	}
	return [][]byte{
		SlotPosition: common.Float32sToBytes(g.Positions),
		SlotColor:    common.Float32sToBytes(g.Colors),
	}
}
