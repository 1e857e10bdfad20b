package model

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithTriangles is an option builder that replaces the Model's triangle list.
// The slice is copied.
//
// Parameters:
//   - triangles: the triangles in draw order
//
// Returns:
//   - ModelBuilderOption: a function that applies the triangles option to a model
func WithTriangles(triangles []Triangle) ModelBuilderOption {
	return func(m *model) {
		m.triangles = append([]Triangle(nil), triangles...)
	}
}

// WithTriangle is an option builder that appends a single triangle to the Model.
//
// Parameters:
//   - t: the triangle to append
//
// Returns:
//   - ModelBuilderOption: a function that applies the triangle option to a model
func WithTriangle(t Triangle) ModelBuilderOption {
	return func(m *model) {
		m.triangles = append(m.triangles, t)
	}
}
