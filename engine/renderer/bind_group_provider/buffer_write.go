package bind_group_provider

// BufferWrite describes one queue write into a provider's buffer at a binding index.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
