package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-raymarch/engine/camera"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/frame"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/model"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-raymarch/log"
)

var logger = log.New("scene")

// Scene drives one frame of the ray marcher: it advances the shader clocks, packs the
// camera and render state into the frame uniforms and draws every uploaded model with
// the ray-marching pipeline.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// State returns a copy of the current render state.
	State() State

	// SetRenderType selects the distance field drawn by the fragment stage.
	//
	// Parameters:
	//   - renderType: one of the RenderType constants
	//
	// Returns:
	//   - error: an error if renderType is out of range; the state is unchanged
	SetRenderType(renderType int) error

	// SetSoftShadow selects the shadow mode.
	//
	// Parameters:
	//   - mode: one of the Shadow constants
	//
	// Returns:
	//   - error: an error if mode is out of range; the state is unchanged
	SetSoftShadow(mode int) error

	// SetAnimated turns the animation clock on or off.
	SetAnimated(animated bool)

	// ToggleAnimated flips the animation flag and returns the new value.
	ToggleAnimated() bool

	// SetGeodesic turns geodesic travel on or off.
	SetGeodesic(geodesic bool)

	// ToggleGeodesic flips the geodesic flag and returns the new value.
	ToggleGeodesic() bool

	// SetRealLight switches between the headlight and the orbiting light.
	SetRealLight(realLight bool)

	// ToggleRealLight flips the light flag and returns the new value.
	ToggleRealLight() bool

	// Move steps the camera forward (direction 1) or backward (direction -1).
	// The step follows a hyperbolic geodesic when geodesic travel is on and the
	// render type is not the flat sphere lattice.
	//
	// Parameters:
	//   - direction: 1 for forward, -1 for backward
	Move(direction float32)

	// AddModel uploads a model's vertex streams and adds it to the draw list.
	// A failed upload is logged and the model is left out of the draw list.
	//
	// Parameters:
	//   - m: the model to upload
	//
	// Returns:
	//   - error: the upload error, naming the model
	AddModel(m model.Model) error

	// Models returns the models in draw order.
	Models() []model.Model

	// FrameUniforms advances the clocks to now and returns the uniforms for the frame.
	//
	// Parameters:
	//   - now: seconds since the program started
	//
	// Returns:
	//   - frame.GPUFrameUniforms: the packed uniform values
	FrameUniforms(now float64) frame.GPUFrameUniforms

	// Render draws one frame at time now.
	// A minimized surface skips the frame without error.
	//
	// Parameters:
	//   - now: seconds since the program started
	//
	// Returns:
	//   - error: an error if the frame could not be acquired
	Render(now float64) error

	// Release releases the scene's buffers and bind groups.
	Release()
}

type scene struct {
	mu *sync.Mutex

	name  string
	cam   camera.Camera
	r     renderer.Renderer
	state State
	clock frame.Clock

	vertexShader   shader.Shader
	fragmentShader shader.Shader
	pipelineReady  bool

	frameBGP     bind_group_provider.BindGroupProvider
	frameBinding int
	bindGroups   []bind_group_provider.BindGroupProvider

	pending []model.Model
	models  []model.Model
	meshes  []bind_group_provider.BindGroupProvider
}

var _ Scene = &scene{}

// NewScene creates a Scene, registers its render pipeline and allocates the frame uniform buffer.
// The built-in shaders are used unless WithShaders supplies a pair. Panics if cam or r is nil.
// GPU creation failures are logged and leave the scene drawing nothing.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
//   - error: an error if the state is invalid or the shaders do not bind the frame uniforms
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) (Scene, error) {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:    &sync.Mutex{},
		name:  name,
		cam:   cam,
		r:     r,
		state: DefaultState(),
	}
	for _, option := range options {
		option(s)
	}
	if err := s.state.Validate(); err != nil {
		return nil, err
	}

	if s.vertexShader == nil || s.fragmentShader == nil {
		vs, fs, err := DefaultShaders()
		if err != nil {
			return nil, fmt.Errorf("scene: built-in shaders: %w", err)
		}
		s.vertexShader, s.fragmentShader = vs, fs
	}

	group, binding, err := findFrameBinding(s.vertexShader, s.fragmentShader)
	if err != nil {
		return nil, err
	}
	s.frameBinding = binding

	p := pipeline.NewPipeline(PipelineKey,
		pipeline.WithVertexShader(s.vertexShader),
		pipeline.WithFragmentShader(s.fragmentShader),
	)
	if err := r.RegisterPipelines(p); err != nil {
		logger.Errorf("failed to create the render pipeline: %v", err)
	} else {
		s.frameBGP = bind_group_provider.NewBindGroupProvider(name + " Frame")
		if err := r.InitBindGroup(s.frameBGP, p.BindGroupLayoutDescriptors()[group]); err != nil {
			logger.Errorf("failed to create the frame uniform buffer: %v", err)
		} else {
			s.pipelineReady = true
			s.bindGroups = make([]bind_group_provider.BindGroupProvider, group+1)
			s.bindGroups[group] = s.frameBGP
		}
	}

	pending := s.pending
	s.pending = nil
	for _, m := range pending {
		// failures are logged by AddModel and the rest still upload
		_ = s.AddModel(m)
	}

	return s, nil
}

// findFrameBinding locates the frame uniform declaration across both stages.
// The scene only knows how to fill the frame uniforms in group 0, so any other binding is rejected.
func findFrameBinding(shaders ...shader.Shader) (group, binding int, err error) {
	found := false
	for _, sh := range shaders {
		for _, decl := range sh.Declarations() {
			if decl.Group == nil || decl.Binding == nil {
				continue
			}
			if decl.StructType() != shader.AnnotationArgFrame {
				return 0, 0, fmt.Errorf("scene: %s binds unsupported struct %q at line %d", sh.Key(), decl.StructType(), decl.Line)
			}
			if found && (*decl.Group != group || *decl.Binding != binding) {
				return 0, 0, fmt.Errorf("scene: frame uniforms are bound at @group(%d) @binding(%d) and @group(%d) @binding(%d)",
					group, binding, *decl.Group, *decl.Binding)
			}
			if *decl.Group != 0 {
				return 0, 0, fmt.Errorf("scene: %s binds the frame uniforms at @group(%d) at line %d, only @group(0) is supported",
					sh.Key(), *decl.Group, decl.Line)
			}
			group, binding, found = *decl.Group, *decl.Binding, true
		}
	}
	if !found {
		return 0, 0, errors.New("scene: shaders do not bind the frame uniforms")
	}
	return group, binding, nil
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *scene) SetRenderType(renderType int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.RenderType = renderType
	if err := next.Validate(); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *scene) SetSoftShadow(mode int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.SoftShadow = mode
	if err := next.Validate(); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *scene) SetAnimated(animated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Animated = animated
}

func (s *scene) ToggleAnimated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Animated = !s.state.Animated
	return s.state.Animated
}

func (s *scene) SetGeodesic(geodesic bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Geodesic = geodesic
}

func (s *scene) ToggleGeodesic() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Geodesic = !s.state.Geodesic
	return s.state.Geodesic
}

func (s *scene) SetRealLight(realLight bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.RealLight = realLight
}

func (s *scene) ToggleRealLight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.RealLight = !s.state.RealLight
	return s.state.RealLight
}

func (s *scene) Move(direction float32) {
	s.mu.Lock()
	hyperbolic := s.state.Geodesic && s.state.RenderType != RenderTypeSpheres
	s.mu.Unlock()
	s.cam.Move(direction, hyperbolic)
}

func (s *scene) AddModel(m model.Model) error {
	streams := model.NewGPUVertexStreams(m)
	mesh := bind_group_provider.NewBindGroupProvider(m.Name())
	if err := s.r.InitVertexBuffers(mesh, streams.Marshal(), streams.VertexCount()); err != nil {
		logger.Errorf("failed to create the buffer object for %s: %v", m.Name(), err)
		return fmt.Errorf("scene: failed to create the buffer object for %s: %w", m.Name(), err)
	}
	logger.Debugf("uploaded %s: %d vertices", m.Name(), mesh.VertexCount())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = append(s.models, m)
	s.meshes = append(s.meshes, mesh)
	return nil
}

func (s *scene) Models() []model.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Model, len(s.models))
	copy(out, s.models)
	return out
}

func (s *scene) FrameUniforms(now float64) frame.GPUFrameUniforms {
	s.mu.Lock()
	state := s.state
	t, realTime := s.clock.Tick(now, state.Animated)
	s.mu.Unlock()

	view := s.cam.Snapshot()
	width, height := s.r.SurfaceSize()

	u := frame.GPUFrameUniforms{
		Transform:  view.Rotation,
		RayOrigin:  view.RayOrigin,
		Time:       t,
		Resolution: [2]float32{float32(width), float32(height)},
		Fov:        view.Fov,
		RenderType: int32(state.RenderType),
		SoftShadow: int32(state.SoftShadow),
		RealTime:   realTime,
	}
	if state.RealLight {
		u.RealLight = 1
	}
	return u
}

func (s *scene) Render(now float64) error {
	uniforms := s.FrameUniforms(now)

	s.mu.Lock()
	ready := s.pipelineReady
	meshes := s.meshes
	bindGroups := s.bindGroups
	s.mu.Unlock()

	if ready {
		s.r.WriteBuffers([]bind_group_provider.BufferWrite{{
			Provider: s.frameBGP,
			Binding:  s.frameBinding,
			Data:     uniforms.Marshal(),
		}})
	}

	if err := s.r.BeginFrame(); err != nil {
		if errors.Is(err, renderer.ErrSurfaceUnavailable) {
			return nil
		}
		return fmt.Errorf("scene: %s: %w", s.name, err)
	}

	if ready {
		for _, mesh := range meshes {
			if err := s.r.Draw(PipelineKey, mesh, bindGroups); err != nil {
				logger.Warningf("skipping %s: %v", mesh.Label(), err)
			}
		}
	}

	s.r.EndFrame()
	s.r.Present()
	return nil
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, mesh := range s.meshes {
		mesh.Release()
	}
	s.meshes = nil
	s.models = nil
	if s.frameBGP != nil {
		s.frameBGP.Release()
		s.frameBGP = nil
	}
	s.pipelineReady = false
}
