package bind_group_provider

import "fmt"

// UniformHandle addresses one payload inside a provider's buffer binding. Draw calls carry
// handles instead of reaching for shared uniform state, and the offset doubles as the dynamic
// offset passed when the bind group is set.
type UniformHandle struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Size     uint64
}

// Valid reports whether the handle points at a payload.
func (h UniformHandle) Valid() bool {
	return h.Provider != nil && h.Size > 0
}

// DynamicOffset returns the offset in the form wgpu expects for SetBindGroup.
func (h UniformHandle) DynamicOffset() uint32 {
	return uint32(h.Offset)
}

// Bytes resolves the handle against the provider's staged contents.
//
// Returns:
//   - []byte: the payload bytes, aliasing the staging buffer
//   - error: error if the handle is invalid or runs past the staged data
func (h UniformHandle) Bytes() ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("invalid uniform handle")
	}
	staged := h.Provider.Staging(h.Binding)
	end := h.Offset + h.Size
	if end > uint64(len(staged)) {
		return nil, fmt.Errorf("%s binding %d: handle [%d, %d) exceeds %d staged bytes",
			h.Provider.Label(), h.Binding, h.Offset, end, len(staged))
	}
	return staged[h.Offset:end], nil
}
