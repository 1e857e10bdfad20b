package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-raymarch/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// modelDocument is the YAML layout of a model definition:
//
//	name: simple
//	triangles:
//	  - vertices: [[1, 1, 0], [-1, -1, 0], [1, -1, 0]]
//	    colors: [[0, 0, 1], [0, 1, 0], [1, 0, 1]]
type modelDocument struct {
	Name      string             `yaml:"name"`
	Triangles []triangleDocument `yaml:"triangles"`
}

type triangleDocument struct {
	Vertices [][]float32 `yaml:"vertices,flow"`
	Colors   [][]float32 `yaml:"colors,flow"`
}

// yamlLoaderBackend reads and writes modelDocument files.
type yamlLoaderBackend struct{}

var _ loaderBackend = &yamlLoaderBackend{}

func newYAMLLoaderBackend() loaderBackend {
	return &yamlLoaderBackend{}
}

func (b *yamlLoaderBackend) Decode(name string, r io.Reader) (model.Model, error) {
	var doc modelDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if doc.Name == "" {
		doc.Name = name
	}

	triangles := make([]model.Triangle, 0, len(doc.Triangles))
	for i, td := range doc.Triangles {
		tri, err := td.triangle()
		if err != nil {
			return nil, fmt.Errorf("triangle %d: %w", i, err)
		}
		triangles = append(triangles, tri)
	}

	m := model.NewModel(model.WithName(doc.Name), model.WithTriangles(triangles))
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (b *yamlLoaderBackend) Encode(w io.Writer, m model.Model) error {
	doc := modelDocument{Name: m.Name()}
	for _, tri := range m.Triangles() {
		td := triangleDocument{}
		for i := range 3 {
			v, c := tri.Vertices[i], tri.Colors[i]
			td.Vertices = append(td.Vertices, []float32{v[0], v[1], v[2]})
			td.Colors = append(td.Colors, []float32{c[0], c[1], c[2]})
		}
		doc.Triangles = append(doc.Triangles, td)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode model %q: %w", m.Name(), err)
	}
	return enc.Close()
}

func (td triangleDocument) triangle() (model.Triangle, error) {
	var tri model.Triangle
	if len(td.Vertices) != 3 {
		return tri, fmt.Errorf("expected 3 vertices, got %d", len(td.Vertices))
	}
	if len(td.Colors) != 3 {
		return tri, fmt.Errorf("expected 3 colors, got %d", len(td.Colors))
	}
	for i := range 3 {
		if len(td.Vertices[i]) != 3 {
			return tri, fmt.Errorf("vertex %d: expected 3 components, got %d", i, len(td.Vertices[i]))
		}
		if len(td.Colors[i]) != 3 {
			return tri, fmt.Errorf("color %d: expected 3 components, got %d", i, len(td.Colors[i]))
		}
		tri.Vertices[i] = mgl32.Vec3{td.Vertices[i][0], td.Vertices[i][1], td.Vertices[i][2]}
		tri.Colors[i] = model.Color{td.Colors[i][0], td.Colors[i][1], td.Colors[i][2]}
	}
	return tri, nil
}
