package uniform

// Handle identifies a buffer object owned by a Device. Zero means
// "no buffer".
type Handle uint64

// Device is the graphics capability the buffer lifecycle runs
// against. The Vulkan implementation lives in engine/renderer/vulkan.
//
// A Device is tied to a single rendering context and its thread.
// Nothing here locks; the surrounding frame loop is expected to
// serialize all calls.
type Device interface {
	// Allocate creates a buffer of the given byte size and returns its
	// handle, or 0 on failure.
	Allocate(sizeBytes uint64) Handle
	// UploadRange copies data into the buffer starting at offset.
	UploadRange(handle Handle, offset uint64, data []byte)
	// BindToSlot attaches the buffer to a numbered bind slot.
	// Handle 0 detaches whatever occupies the slot.
	BindToSlot(handle Handle, slot uint32)
	// Release destroys the buffer object.
	Release(handle Handle)
	// MaxBufferSize is the largest uniform buffer the device supports.
	MaxBufferSize() uint64
	// MaxBindSlots is the number of available bind slots.
	MaxBindSlots() uint32
}
