package scene

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-raymarch/engine/camera"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/model"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-raymarch/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// fakeRenderer records the calls a scene makes without touching a GPU.
type fakeRenderer struct {
	pipelines   map[string]pipeline.Pipeline
	registerErr error
	uploadErr   error
	beginErr    error

	descriptors []wgpu.BindGroupLayoutDescriptor
	uploads     [][][]byte
	counts      []int
	writes      []bind_group_provider.BufferWrite
	draws       []string
	frames      int
	presents    int
}

var _ renderer.Renderer = &fakeRenderer{}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{pipelines: make(map[string]pipeline.Pipeline)}
}

func (f *fakeRenderer) Pipeline(key string) pipeline.Pipeline { return f.pipelines[key] }

func (f *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	for _, p := range pipelines {
		f.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (f *fakeRenderer) Resize(width, height int) {}
func (f *fakeRenderer) SurfaceSize() (int, int) { return 800, 600 }
func (f *fakeRenderer) SetPresentMode(renderer.PresentMode) {}

func (f *fakeRenderer) InitVertexBuffers(provider bind_group_provider.BindGroupProvider, streams [][]byte, vertexCount int) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, streams)
	f.counts = append(f.counts, vertexCount)
	provider.SetVertexCount(vertexCount)
	return nil
}

func (f *fakeRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	f.descriptors = append(f.descriptors, descriptor)
	return nil
}

func (f *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
}

func (f *fakeRenderer) BeginFrame() error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.frames++
	return nil
}

func (f *fakeRenderer) Draw(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	if _, ok := f.pipelines[pipelineKey]; !ok {
		return errors.New("missing pipeline")
	}
	f.draws = append(f.draws, meshProvider.Label())
	return nil
}

func (f *fakeRenderer) EndFrame() {}
func (f *fakeRenderer) Present() { f.presents++ }
func (f *fakeRenderer) Release() {}

func readFloat(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func readInt(buf []byte, offset int) int32 {
	return int32(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestNewSceneRegistersPipeline(t *testing.T) {
	r := newFakeRenderer()
	s, err := NewScene("main", camera.NewCamera(), r, WithModels(model.NewPyramid()))
	if err != nil {
		t.Fatal(err)
	}

	if r.Pipeline(PipelineKey) == nil {
		t.Fatal("expected the ray-marching pipeline to be registered")
	}
	if len(r.descriptors) != 1 || len(r.descriptors[0].Entries) != 1 {
		t.Fatalf("expected a single frame binding; got %+v", r.descriptors)
	}
	if size := r.descriptors[0].Entries[0].Buffer.MinBindingSize; size != 112 {
		t.Fatalf("expected the frame buffer to be 112 bytes; got %d", size)
	}

	if len(r.uploads) != 1 || len(r.uploads[0]) != 2 || r.counts[0] != 6 {
		t.Fatalf("expected two 6-vertex streams; got %d uploads, counts %v", len(r.uploads), r.counts)
	}
	for slot, data := range r.uploads[0] {
		if len(data) != 72 {
			t.Fatalf("[slot %d] expected 72 bytes; got %d", slot, len(data))
		}
	}
	if models := s.Models(); len(models) != 1 || models[0].Name() != "simple" {
		t.Fatalf("unexpected models %v", models)
	}
	if s.State() != DefaultState() {
		t.Fatalf("expected default state; got %+v", s.State())
	}
}

func TestNewSceneErrors(t *testing.T) {
	if _, err := NewScene("bad", camera.NewCamera(), newFakeRenderer(), WithState(State{RenderType: 9})); err == nil {
		t.Fatal("expected an invalid state error")
	}

	vs, _, err := DefaultShaders()
	if err != nil {
		t.Fatal(err)
	}
	fs, err := shader.NewShaderFromSource("flat", shader.ShaderTypeFragment, `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`)
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewScene("unbound", camera.NewCamera(), newFakeRenderer(), WithShaders(vs, fs))
	if err == nil || !strings.Contains(err.Error(), "do not bind the frame uniforms") {
		t.Fatalf("expected a missing binding error; got %v", err)
	}

	shifted, err := shader.NewShaderFromSource("shifted", shader.ShaderTypeFragment,
		strings.Replace(DefaultFragmentSource, "//@oxy:group 0 0", "//@oxy:group 1 0", 1))
	if err != nil {
		t.Fatal(err)
	}
	r := newFakeRenderer()
	_, err = NewScene("shifted", camera.NewCamera(), r, WithShaders(vs, shifted))
	if err == nil || !strings.Contains(err.Error(), "only @group(0) is supported") {
		t.Fatalf("expected a group error; got %v", err)
	}
	if len(r.pipelines) != 0 || len(r.descriptors) != 0 {
		t.Fatalf("expected nothing registered for a rejected shader; got %d pipelines", len(r.pipelines))
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a nil renderer")
		}
	}()
	_, _ = NewScene("nil", camera.NewCamera(), nil)
}

func TestAddModelFailureIsNotDrawn(t *testing.T) {
	r := newFakeRenderer()
	s, err := NewScene("main", camera.NewCamera(), r)
	if err != nil {
		t.Fatal(err)
	}

	r.uploadErr = errors.New("out of memory")
	err = s.AddModel(model.NewPyramid())
	if err == nil || !strings.Contains(err.Error(), "failed to create the buffer object for simple") {
		t.Fatalf("expected an error naming the model; got %v", err)
	}
	if len(s.Models()) != 0 {
		t.Fatal("expected the failed model to stay out of the draw list")
	}

	if err := s.Render(0.01); err != nil {
		t.Fatal(err)
	}
	if len(r.draws) != 0 || r.presents != 1 {
		t.Fatalf("expected an empty frame; got draws %v presents %d", r.draws, r.presents)
	}
}

func TestEmptyModelUploadsNothing(t *testing.T) {
	r := newFakeRenderer()
	s, err := NewScene("main", camera.NewCamera(), r)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddModel(model.NewModel(model.WithName("empty"))); err != nil {
		t.Fatal(err)
	}
	if r.uploads[0] != nil || r.counts[0] != 0 {
		t.Fatalf("expected no streams and no vertices; got %v %v", r.uploads[0], r.counts[0])
	}
}

func TestRenderWritesUniforms(t *testing.T) {
	r := newFakeRenderer()
	cam := camera.NewCamera()
	s, err := NewScene("main", cam, r, WithModels(model.NewPyramid()))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetRenderType(RenderTypeBoxes); err != nil {
		t.Fatal(err)
	}
	s.SetRealLight(true)

	if err := s.Render(0.05); err != nil {
		t.Fatal(err)
	}
	if len(r.writes) != 1 || r.writes[0].Binding != 0 || len(r.writes[0].Data) != 112 {
		t.Fatalf("expected one 112 byte write to binding 0; got %+v", r.writes)
	}
	data := r.writes[0].Data

	type spec struct {
		name   string
		offset int
		exp    float32
	}
	specs := []spec{
		{"transform[0]", 0, 1},
		{"transform[5]", 20, 1},
		{"transform[1]", 4, 0},
		{"time", 76, 0},
		{"width", 80, 800},
		{"height", 84, 600},
		{"fov", 88, camera.DefaultFov},
		{"realtime", 104, 0.05},
	}
	for index, sp := range specs {
		if got := readFloat(data, sp.offset); math.Abs(float64(got-sp.exp)) > 1e-6 {
			t.Fatalf("[spec %d] expected %s %v; got %v", index, sp.name, sp.exp, got)
		}
	}
	if readInt(data, 92) != RenderTypeBoxes || readInt(data, 96) != ShadowSoft || readInt(data, 100) != 1 {
		t.Fatalf("unexpected int uniforms %d %d %d", readInt(data, 92), readInt(data, 96), readInt(data, 100))
	}
	if len(r.draws) != 1 || r.draws[0] != "simple" || r.presents != 1 {
		t.Fatalf("expected one draw and one present; got %v %d", r.draws, r.presents)
	}
}

func TestFrameUniformsClock(t *testing.T) {
	s, err := NewScene("main", camera.NewCamera(), newFakeRenderer())
	if err != nil {
		t.Fatal(err)
	}

	u := s.FrameUniforms(0.05)
	if u.Time != 0 || math.Abs(float64(u.RealTime-0.05)) > 1e-6 {
		t.Fatalf("expected paused time and 0.05 realtime; got %v %v", u.Time, u.RealTime)
	}

	s.SetAnimated(true)
	u = s.FrameUniforms(2.0)
	if math.Abs(float64(u.Time-0.1)) > 1e-6 {
		t.Fatalf("expected the step to clamp at 0.1; got %v", u.Time)
	}
	if u.RealLight != 0 {
		t.Fatal("expected the headlight by default")
	}
}

func TestRenderSkipsHiddenSurface(t *testing.T) {
	r := newFakeRenderer()
	s, err := NewScene("main", camera.NewCamera(), r, WithModels(model.NewPyramid()))
	if err != nil {
		t.Fatal(err)
	}
	r.beginErr = renderer.ErrSurfaceUnavailable
	if err := s.Render(0.01); err != nil {
		t.Fatalf("expected a hidden surface to be skipped; got %v", err)
	}
	if len(r.draws) != 0 || r.presents != 0 {
		t.Fatal("expected nothing drawn")
	}

	r.beginErr = errors.New("lost")
	if err := s.Render(0.02); err == nil {
		t.Fatal("expected the acquisition error")
	}
}

func TestPipelineFailureDrawsNothing(t *testing.T) {
	r := newFakeRenderer()
	r.registerErr = errors.New("compile failed")
	s, err := NewScene("main", camera.NewCamera(), r, WithModels(model.NewPyramid()))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Render(0.01); err != nil {
		t.Fatal(err)
	}
	if len(r.writes) != 0 || len(r.draws) != 0 || r.presents != 1 {
		t.Fatalf("expected a cleared frame only; got writes %d draws %v", len(r.writes), r.draws)
	}
}

func TestMoveChoosesGeometry(t *testing.T) {
	type spec struct {
		renderType int
		geodesic   bool
		expX       float64
	}
	step := float64(camera.DefaultMoveSensitivity)
	specs := []spec{
		{RenderTypePulse, false, step},
		{RenderTypePulse, true, math.Sinh(step)},
		{RenderTypeSpheres, true, step},
		{RenderTypeFloor, true, math.Sinh(step)},
	}

	for index, sp := range specs {
		cam := camera.NewCamera()
		s, err := NewScene("main", cam, newFakeRenderer(), WithState(State{RenderType: sp.renderType, SoftShadow: ShadowNone, Geodesic: sp.geodesic}))
		if err != nil {
			t.Fatal(err)
		}
		s.Move(1)
		if got := float64(cam.RayOrigin()[0]); math.Abs(got-sp.expX) > 1e-7 {
			t.Fatalf("[spec %d] expected x %v; got %v", index, sp.expX, got)
		}
	}
}

func TestStateSetters(t *testing.T) {
	s, err := NewScene("main", camera.NewCamera(), newFakeRenderer())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SetRenderType(0); err == nil {
		t.Fatal("expected render type 0 to be rejected")
	}
	if err := s.SetSoftShadow(3); err == nil {
		t.Fatal("expected shadow mode 3 to be rejected")
	}
	if s.State() != DefaultState() {
		t.Fatal("expected rejected values to leave the state unchanged")
	}

	if !s.ToggleAnimated() || s.ToggleAnimated() {
		t.Fatal("expected animation to toggle on then off")
	}
	if !s.ToggleGeodesic() || !s.State().Geodesic {
		t.Fatal("expected geodesic to toggle on")
	}
	if !s.ToggleRealLight() || !s.State().RealLight {
		t.Fatal("expected the real light to toggle on")
	}
	if err := s.SetSoftShadow(ShadowNone); err != nil || s.State().SoftShadow != ShadowNone {
		t.Fatalf("expected shadows off; got %v", err)
	}
}

func TestDefaultShadersCompile(t *testing.T) {
	vs, fs, err := DefaultShaders()
	if err != nil {
		t.Fatal(err)
	}
	if len(vs.VertexLayouts()) != 2 || fs.EntryPoint() != "fs_main" {
		t.Fatalf("unexpected shaders: %d layouts, entry %q", len(vs.VertexLayouts()), fs.EntryPoint())
	}
	group, binding, err := findFrameBinding(vs, fs)
	if err != nil || group != 0 || binding != 0 {
		t.Fatalf("expected the frame uniforms at 0/0; got %d/%d %v", group, binding, err)
	}
}
