package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-raymarch/engine/model"
)

// loaderBackend defines the format-specific half of the Loader.
// Concrete implementations (e.g., yamlLoaderBackend) decode and encode one file format.
type loaderBackend interface {
	// Decode reads one model definition.
	//
	// Parameters:
	//   - name: the name used when the definition does not carry one
	//   - r: the reader providing the definition
	//
	// Returns:
	//   - model.Model: the decoded model
	//   - error: error if decoding or validation fails
	Decode(name string, r io.Reader) (model.Model, error)

	// Encode writes m in the backend's format.
	//
	// Parameters:
	//   - w: the destination
	//   - m: the model to write
	//
	// Returns:
	//   - error: error if writing fails
	Encode(w io.Writer, m model.Model) error
}
