package model

import (
	"errors"
	"fmt"
)

// model is the implementation of the Model interface.
type model struct {
	name      string
	triangles []Triangle
}

// Model defines the interface for a renderable triangle list.
// A Model is CPU-side data only; the Scene owns the GPU buffers created from it.
type Model interface {
	// Name retrieves the model identifier. Used in buffer labels and log messages.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Triangles retrieves a copy of the model's triangles in draw order.
	//
	// Returns:
	//   - []Triangle: the triangles
	Triangles() []Triangle

	// TriangleCount returns the number of triangles in the model.
	//
	// Returns:
	//   - int: the triangle count
	TriangleCount() int

	// VertexCount returns the number of vertices drawn for this model (three per triangle).
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// Flatten lays out the triangles as two contiguous attribute arrays: xyz positions
	// and rgb colors, each ordered by triangle then vertex. Both arrays are nil for an
	// empty model.
	//
	// Returns:
	//   - []float32: positions, 9 values per triangle
	//   - []float32: colors, 9 values per triangle
	Flatten() (positions, colors []float32)

	// Validate checks that the model has a name and that every color component is within [0, 1].
	//
	// Returns:
	//   - error: a joined error describing every violation, or nil
	Validate() error
}

var _ Model = &model{}

// NewModel creates a new Model with the provided options.
//
// Parameters:
//   - options: functional options for model configuration
//
// Returns:
//   - Model: the newly created model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Triangles() []Triangle {
	out := make([]Triangle, len(m.triangles))
	copy(out, m.triangles)
	return out
}

func (m *model) TriangleCount() int {
	return len(m.triangles)
}

func (m *model) VertexCount() int {
	return len(m.triangles) * 3
}

func (m *model) Flatten() (positions, colors []float32) {
	if len(m.triangles) == 0 {
		return nil, nil
	}
	positions = make([]float32, 0, len(m.triangles)*9)
	colors = make([]float32, 0, len(m.triangles)*9)
	for _, tri := range m.triangles {
		for i := range 3 {
			v := tri.Vertices[i]
			c := tri.Colors[i]
			positions = append(positions, v[0], v[1], v[2])
			colors = append(colors, c[0], c[1], c[2])
		}
	}
	return positions, colors
}

func (m *model) Validate() error {
	var errs []error
	if m.name == "" {
		errs = append(errs, errors.New("model name must not be empty"))
	}
	for t, tri := range m.triangles {
		for v, c := range tri.Colors {
			for ch, value := range c {
				if value < 0 || value > 1 {
					errs = append(errs, fmt.Errorf("triangle %d vertex %d channel %d: color component %v outside [0, 1]", t, v, ch, value))
				}
			}
		}
	}
	return errors.Join(errs...)
}
