package shader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const testVertexSource = `//@oxy:include vertex

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) v_Color: vec3<f32>,
};

@vertex
fn vs_main(input: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(input.a_Vertex, 1.0);
    out.v_Color = input.a_Color;
    return out;
}
`

const testFragmentSource = `//@oxy:include frame
//@oxy:group 0 0 storage_uniform frame frame

/* @fragment fn commented_out() {} */
@fragment
fn fs_main(@location(0) v_Color: vec3<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(v_Color * frame.u_Time, 1.0);
}
`

func TestParseAnnotation(t *testing.T) {
	type spec struct {
		line    string
		expNil  bool
		expType AnnotationType
		expErr  string
	}
	specs := []spec{
		{"let x = 1.0;", true, "", ""},
		{"// plain comment", true, "", ""},
		{"let s = \"@oxy:include frame\";", true, "", ""},
		{"//@oxy:include frame", false, annotationTypeInclude, ""},
		{"  // @oxy:group 0 1 storage_uniform frame frame", false, AnnotationTypeBindingGroup, ""},
		{"//@oxy:", false, "", "empty @oxy annotation"},
		{"//@oxy:include", false, "", "exactly one argument"},
		{"//@oxy:include camera", false, "", "unknown struct type \"camera\""},
		{"//@oxy:group x 0 storage_uniform frame frame", false, "", "invalid group number"},
		{"//@oxy:group 0 y storage_uniform frame frame", false, "", "invalid binding number"},
		{"//@oxy:group 0 0 private frame frame", false, "", "unknown address space"},
		{"//@oxy:group 0 0 storage_uniform frame light", false, "", "unknown struct type \"light\""},
		{"//@oxy:group 0 0 storage_uniform frame", false, "", "exactly five arguments"},
		{"//@oxy:provider 0 0 frame", false, "", "unknown @oxy annotation type"},
	}

	for index, s := range specs {
		a, err := parseAnnotation(s.line, index+1)
		if s.expErr != "" {
			if err == nil || !strings.Contains(err.Error(), s.expErr) {
				t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if s.expNil {
			if a != nil {
				t.Fatalf("[spec %d] expected no annotation; got %+v", index, a)
			}
			continue
		}
		if a == nil || a.Type != s.expType {
			t.Fatalf("[spec %d] expected annotation of type %q; got %+v", index, s.expType, a)
		}
	}
}

func TestPreProcessor(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process(testFragmentSource)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(out, "@oxy:") {
		t.Fatalf("expected annotations to be replaced:\n%s", out)
	}
	if !strings.Contains(out, "struct FrameUniforms") {
		t.Fatalf("expected frame struct to be injected:\n%s", out)
	}
	if !strings.Contains(out, "@group(0) @binding(0) var<uniform> frame: FrameUniforms;") {
		t.Fatalf("expected generated binding declaration:\n%s", out)
	}

	decls := pp.Declarations()
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration; got %d", len(decls))
	}
	d := decls[0]
	if *d.Group != 0 || *d.Binding != 0 || d.StructType() != AnnotationArgFrame || d.Line != 2 {
		t.Fatalf("unexpected declaration %+v", d)
	}

	// declarations reset between runs
	if _, err := pp.Process(testVertexSource); err != nil {
		t.Fatal(err)
	}
	if len(pp.Declarations()) != 0 {
		t.Fatalf("expected declarations to reset; got %d", len(pp.Declarations()))
	}

	if _, err := pp.Process("//@oxy:include nothing"); err == nil {
		t.Fatal("expected an error for an unknown include")
	}
}

func TestNewShaderFromSourceVertex(t *testing.T) {
	s, err := NewShaderFromSource("vs", ShaderTypeVertex, testVertexSource)
	if err != nil {
		t.Fatal(err)
	}
	if s.EntryPoint() != "vs_main" || s.ShaderType() != ShaderTypeVertex || s.Key() != "vs" {
		t.Fatalf("unexpected shader metadata: %q %v %q", s.EntryPoint(), s.ShaderType(), s.Key())
	}
	if s.Module() == nil || s.Module().WGSLDescriptor.Code != s.Source() {
		t.Fatal("expected module descriptor to carry the processed source")
	}

	layouts := s.VertexLayouts()
	if len(layouts) != 2 {
		t.Fatalf("expected one layout per attribute; got %d", len(layouts))
	}
	for slot, l := range layouts {
		if l.ArrayStride != 12 || len(l.Attributes) != 1 {
			t.Fatalf("[slot %d] expected a tightly packed vec3 stream; got %+v", slot, l)
		}
		a := l.Attributes[0]
		if a.Format != wgpu.VertexFormatFloat32x3 || a.Offset != 0 || a.ShaderLocation != uint32(slot) {
			t.Fatalf("[slot %d] unexpected attribute %+v", slot, a)
		}
	}
	if len(s.BindGroupLayoutDescriptors()) != 0 {
		t.Fatal("expected no bind groups in the vertex shader")
	}
}

func TestNewShaderFromSourceFragment(t *testing.T) {
	s, err := NewShaderFromSource("fs", ShaderTypeFragment, testFragmentSource)
	if err != nil {
		t.Fatal(err)
	}
	if s.EntryPoint() != "fs_main" {
		t.Fatalf("expected entry point fs_main; got %q", s.EntryPoint())
	}
	if s.VertexLayouts() != nil {
		t.Fatal("expected no vertex layouts for a fragment shader")
	}

	desc := s.BindGroupLayoutDescriptors()[0]
	if len(desc.Entries) != 1 {
		t.Fatalf("expected 1 entry in group 0; got %d", len(desc.Entries))
	}
	e := desc.Entries[0]
	if e.Buffer.Type != wgpu.BufferBindingTypeUniform || e.Visibility != wgpu.ShaderStageFragment || e.Buffer.MinBindingSize != 112 {
		t.Fatalf("unexpected entry %+v", e)
	}
	if s.BindGroupVarName(0, 0) != "frame" || s.BindGroupVarName(1, 0) != "" {
		t.Fatal("unexpected binding variable names")
	}
	if len(s.Declarations()) != 1 {
		t.Fatalf("expected 1 declaration; got %d", len(s.Declarations()))
	}
}

func TestNewShaderErrors(t *testing.T) {
	if _, err := NewShaderFromSource("fs", ShaderTypeFragment, testVertexSource); err == nil || !strings.Contains(err.Error(), "no @fragment entry point") {
		t.Fatalf("expected a missing entry point error; got %v", err)
	}
	if _, err := NewShaderFromSource("fs", ShaderTypeFragment, "//@oxy:include\n"); err == nil {
		t.Fatal("expected a pre-processing error")
	}
	if _, err := NewShader("vs", ShaderTypeVertex, filepath.Join(t.TempDir(), "missing.wgsl")); err == nil {
		t.Fatal("expected a read error")
	}
}

func TestNewShaderFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raymarch.vert.wgsl")
	if err := os.WriteFile(path, []byte(testVertexSource), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewShader("vs", ShaderTypeVertex, path)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.VertexLayouts()) != 2 {
		t.Fatalf("expected 2 vertex layouts; got %d", len(s.VertexLayouts()))
	}
}

func TestStructLayouts(t *testing.T) {
	structs := parseStructBlocks(stripComments(`
struct Inner { a: vec3<f32>, b: f32, };
struct Outer {
    x: f32,
    inner: Inner, // nested
    m: mat4x4<f32>,
    arr: array<vec4<f32>, 3>,
};
`))
	sizes := computeStructSizes(structs)

	type spec struct {
		name     string
		expSize  uint64
		expAlign uint64
	}
	specs := []spec{
		{"Inner", 16, 16},
		// x@0, inner@16, m@32, arr@96 (3*16) -> 144
		{"Outer", 144, 16},
	}
	for index, s := range specs {
		l, ok := sizes[s.name]
		if !ok {
			t.Fatalf("[spec %d] expected %s to resolve", index, s.name)
		}
		if l.size != s.expSize || l.align != s.expAlign {
			t.Fatalf("[spec %d] expected size %d align %d; got %d %d", index, s.expSize, s.expAlign, l.size, l.align)
		}
	}

	if _, ok := resolveTypeLayout("array<f32>", sizes); ok {
		t.Fatal("expected runtime-sized arrays not to resolve")
	}
}
