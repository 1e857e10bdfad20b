package scene

import (
	"github.com/Carmen-Shannon/oxy-raymarch/engine/model"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/shader"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithState replaces the initial render state. NewScene rejects an invalid state.
//
// Parameters:
//   - state: the initial state
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithState(state State) SceneBuilderOption {
	return func(s *scene) {
		s.state = state
	}
}

// WithShaders replaces the built-in shader pair. Both shaders must bind the frame uniforms
// through an @oxy:group annotation and bind nothing else.
//
// Parameters:
//   - vertexShader: the vertex stage
//   - fragmentShader: the fragment stage
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShaders(vertexShader, fragmentShader shader.Shader) SceneBuilderOption {
	return func(s *scene) {
		s.vertexShader = vertexShader
		s.fragmentShader = fragmentShader
	}
}

// WithModels uploads the given models once the pipeline exists, in order.
//
// Parameters:
//   - models: the models to draw
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithModels(models ...model.Model) SceneBuilderOption {
	return func(s *scene) {
		s.pending = append(s.pending, models...)
	}
}
