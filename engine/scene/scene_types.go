package scene

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/shader"
)

// DefaultVertexSource is the built-in vertex stage. It passes the model through as a
// screen-covering face and forwards the per-vertex color and screen coordinate.
//
//go:embed assets/raymarch_vertex.wgsl
var DefaultVertexSource string

// DefaultFragmentSource is the built-in ray-marching fragment stage.
//
//go:embed assets/raymarch_fragment.wgsl
var DefaultFragmentSource string

// PipelineKey is the key the scene registers its render pipeline under.
const PipelineKey = "raymarch"

// Render types selected with SetRenderType.
const (
	RenderTypeSpheres = 1 // sphere lattice, always traversed in flat space
	RenderTypeBoxes   = 2 // box lattice
	RenderTypePulse   = 3 // sphere lattice whose radius follows the animation clock
	RenderTypeFloor   = 4 // a single sphere above a ground plane
)

// Shadow modes selected with SetSoftShadow.
const (
	ShadowNone   = 0
	ShadowDirect = 1
	ShadowSoft   = 2
)

// State is the render state the scene feeds into the frame uniforms alongside the camera.
type State struct {
	RenderType int
	SoftShadow int
	Animated   bool
	Geodesic   bool
	RealLight  bool
}

// DefaultState returns the state a new scene starts with.
func DefaultState() State {
	return State{
		RenderType: RenderTypePulse,
		SoftShadow: ShadowSoft,
	}
}

// Validate reports a render type or shadow mode outside the supported range.
func (s State) Validate() error {
	if s.RenderType < RenderTypeSpheres || s.RenderType > RenderTypeFloor {
		return fmt.Errorf("scene: render type %d out of range %d..%d", s.RenderType, RenderTypeSpheres, RenderTypeFloor)
	}
	if s.SoftShadow < ShadowNone || s.SoftShadow > ShadowSoft {
		return fmt.Errorf("scene: shadow mode %d out of range %d..%d", s.SoftShadow, ShadowNone, ShadowSoft)
	}
	return nil
}

// DefaultShaders compiles the built-in shader pair.
//
// Returns:
//   - shader.Shader: the vertex shader
//   - shader.Shader: the fragment shader
//   - error: an error if either source fails to parse
func DefaultShaders() (shader.Shader, shader.Shader, error) {
	vs, err := shader.NewShaderFromSource("raymarch.vert", shader.ShaderTypeVertex, DefaultVertexSource)
	if err != nil {
		return nil, nil, err
	}
	fs, err := shader.NewShaderFromSource("raymarch.frag", shader.ShaderTypeFragment, DefaultFragmentSource)
	if err != nil {
		return nil, nil, err
	}
	return vs, fs, nil
}
