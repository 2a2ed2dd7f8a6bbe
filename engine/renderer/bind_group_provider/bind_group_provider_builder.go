package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithIndexCount sets the number of indices drawn from the provider's index buffer.
//
// Parameters:
//   - count: the index count
//
// Returns:
//   - BindGroupProviderOption: a function that sets the index count for this provider
func WithIndexCount(count int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.indexCount = count
	}
}

// WithStaging seeds the CPU-side mirror of a buffer binding.
//
// Parameters:
//   - binding: the binding index
//   - data: the bytes to stage at offset 0
//
// Returns:
//   - BindGroupProviderOption: a function that stages data for the specified binding
func WithStaging(binding int, data []byte) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.WriteStaging(binding, 0, data)
	}
}
