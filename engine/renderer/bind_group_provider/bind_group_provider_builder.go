package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithVertexCount sets the number of vertices the provider draws. InitVertexBuffers overwrites it.
//
// Parameters:
//   - count: the vertex count
//
// Returns:
//   - BindGroupProviderOption: a function that sets the vertex count for this provider
func WithVertexCount(count int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.vertexCount = count
	}
}
