package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label used in GPU object labels and log messages.
	label string

	// The following fields are GPU allocated resources and must be released when no longer needed. They are populated by the Renderer during initialization, not by user-creation.

	// bindGroup is the GPU bind group created for this provider, or nil if not initialized with the Renderer.
	bindGroup *wgpu.BindGroup
	// bindGroupLayout is the GPU bind group layout created for this provider, or nil if not initialized with the Renderer.
	bindGroupLayout *wgpu.BindGroupLayout
	// buffers holds the GPU buffers created for this provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer

	// The following fields are specific to mesh providers.

	// vertexBuffers holds one GPU vertex buffer per attribute, indexed by vertex buffer slot.
	vertexBuffers []*wgpu.Buffer
	// vertexCount is the number of vertices drawn for this provider.
	vertexCount int
}

// BindGroupProvider defines the interface for components that require GPU bind group or mesh resources.
// The Scene holds one provider for the frame uniforms and one per model for its vertex buffers.
// The Renderer uses the provider to initialize and update GPU resources.
//
// Usage pattern:
//  1. Scene creates a BindGroupProvider with a label
//  2. Scene calls Renderer.InitBindGroup or Renderer.InitVertexBuffers to create GPU resources
//  3. Scene calls Renderer.WriteBuffers to update uniforms each frame
//  4. Renderer reads BindGroup() or VertexBuffers() during draw calls
type BindGroupProvider interface {
	// Release releases any GPU resources held by this provider. It is safe to call more than once.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the created bind group layout for this provider.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer bound at the given binding index.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// VertexBuffers returns the vertex buffers indexed by slot.
	//
	// Returns:
	//   - []*wgpu.Buffer: the vertex buffers, empty for an empty model
	VertexBuffers() []*wgpu.Buffer

	// VertexCount returns the number of vertices to draw.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// SetBindGroup sets the bind group.
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout sets the bind group layout.
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer sets the buffer at a binding index.
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetVertexBuffers replaces the vertex buffers. Previously held buffers are not released.
	SetVertexBuffers(buffers []*wgpu.Buffer)

	// SetVertexCount sets the number of vertices to draw.
	SetVertexCount(count int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the given label and options.
//
// Parameters:
//   - label: the debug label used for GPU object labels
//   - options: functional options to configure the provider
//
// Returns:
//   - BindGroupProvider: the newly created provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) VertexBuffers() []*wgpu.Buffer {
	return p.vertexBuffers
}

func (p *bindGroupProvider) VertexCount() int {
	return p.vertexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if p.buffers == nil {
		p.buffers = make(map[int]*wgpu.Buffer)
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetVertexBuffers(buffers []*wgpu.Buffer) {
	p.vertexBuffers = buffers
}

func (p *bindGroupProvider) SetVertexCount(count int) {
	p.vertexCount = count
}

func (p *bindGroupProvider) Release() {
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	for _, buf := range p.vertexBuffers {
		if buf != nil {
			buf.Release()
		}
	}
	p.vertexBuffers = nil
	p.vertexCount = 0

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
}
