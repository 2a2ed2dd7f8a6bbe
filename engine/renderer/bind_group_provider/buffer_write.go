package bind_group_provider

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Stage mirrors the write into the provider's CPU-side staging copy.
func (w BufferWrite) Stage() {
	w.Provider.WriteStaging(w.Binding, w.Offset, w.Data)
}

// Upload enqueues the write on queue.
//
// Parameters:
//   - queue: the device queue
//
// Returns:
//   - error: error if the provider has no GPU buffer at the binding
func (w BufferWrite) Upload(queue *wgpu.Queue) error {
	buf := w.Provider.Buffer(w.Binding)
	if buf == nil {
		return fmt.Errorf("%s: no buffer at binding %d", w.Provider.Label(), w.Binding)
	}
	queue.WriteBuffer(buf, w.Offset, w.Data)
	return nil
}
