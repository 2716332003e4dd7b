package uniform

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/albedo/engine/core"
)

// State tracks where a Buffer is in its GPU lifecycle. The device
// buffer is never created until data or a bind is requested, so
// buffers that end up unused this frame cost nothing on the GPU.
type State int

const (
	StateUnallocated State = iota
	StateAllocated
	StateBound
)

func (s State) String() string {
	switch s {
	case StateUnallocated:
		return "unallocated"
	case StateAllocated:
		return "allocated"
	case StateBound:
		return "bound"
	}
	return "unknown"
}

// Buffer is one GPU-visible uniform block. One Buffer owns exactly
// one device buffer; there is no sharing.
type Buffer struct {
	// ID is the slot in the live-object table, used for leak reports.
	ID   uint32
	Name string
	// Debug re-issues redundant detach calls on Unbind so stale
	// bindings surface early. Off by default.
	Debug bool

	device    Device
	size      uint64
	state     State
	handle    Handle
	boundSlot uint32
	// pending holds the packed payload of a dynamically created
	// buffer until its first bind uploads it.
	pending []byte
	layout  *Layout
}

// NewStatic creates a buffer of a fixed byte size. sizeBytes must be
// a multiple of 16 (vec4 aligned). If data is non-nil it is uploaded
// immediately; otherwise the device buffer stays unallocated until
// the first Update or Bind.
func NewStatic(device Device, sizeBytes uint64, data []byte) (*Buffer, error) {
	if device == nil {
		return nil, core.ErrNoDevice
	}
	// Caller contract, checked defensively.
	if sizeBytes%16 != 0 {
		err := fmt.Errorf("uniform buffer size %d: %w", sizeBytes, core.ErrInvalidBufferSize)
		core.LogError(err.Error())
		return nil, err
	}
	if max := device.MaxBufferSize(); sizeBytes > max {
		err := fmt.Errorf("uniform buffer of %d bytes exceeds device maximum of %d: %w", sizeBytes, max, core.ErrBufferTooLarge)
		core.LogError(err.Error())
		return nil, err
	}

	b := &Buffer{
		Name:   "ubo-" + uuid.New().String(),
		device: device,
		size:   sizeBytes,
		state:  StateUnallocated,
	}
	b.ID = core.IdentifierAquireNewID(b)

	// Direct init.
	if data != nil {
		b.Update(data)
	}
	return b, nil
}

// NewDynamic packs the inputs and creates a buffer sized for the
// result. Returns nil (and no error) when inputs is empty: no values,
// no buffer needed. The packed bytes are retained and uploaded on the
// first Bind, not here, because callers may build many of these
// before any are actually used.
func NewDynamic(device Device, inputs []Input) (*Buffer, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	layout := Pack(inputs)
	b, err := NewStatic(device, layout.TotalSize, nil)
	if err != nil {
		return nil, err
	}
	b.pending = layout.Data
	b.layout = layout
	return b, nil
}

// allocate creates the device buffer. Calling it with one already
// allocated is an internal invariant violation.
func (b *Buffer) allocate() {
	if b.state != StateUnallocated {
		core.LogFatal("uniform buffer %s: allocate called in state %s", b.Name, b.state)
		return
	}
	handle := b.device.Allocate(b.size)
	if handle == 0 {
		core.LogFatal("uniform buffer %s: device allocation failed", b.Name)
		return
	}
	b.handle = handle
	b.state = StateAllocated
	core.MetricsAllocation()
}

// Update overwrites the whole buffer with the first Size bytes of
// data, allocating the device buffer first if needed. There is no
// partial update.
func (b *Buffer) Update(data []byte) {
	if b.state == StateUnallocated {
		b.allocate()
	}
	b.device.UploadRange(b.handle, 0, data[:b.size])
	core.MetricsUpload(b.size)
}

// Bind attaches the buffer to the numbered slot, allocating and
// uploading any pending payload first. A slot beyond the device limit
// is logged and leaves the buffer untouched.
func (b *Buffer) Bind(slot uint32) error {
	if max := b.device.MaxBindSlots(); slot >= max {
		err := fmt.Errorf("uniform buffer %s: slot %d (max %d): %w", b.Name, slot, max, core.ErrSlotOutOfRange)
		core.LogError(err.Error())
		return err
	}

	if b.state == StateUnallocated {
		b.allocate()
	}

	if b.pending != nil {
		// Deferred payload from dynamic creation. Upload once, then
		// drop the CPU copy.
		b.Update(b.pending)
		b.pending = nil
	}

	b.device.BindToSlot(b.handle, slot)
	b.boundSlot = slot
	b.state = StateBound
	core.MetricsBind()
	return nil
}

// Unbind detaches the buffer from its recorded slot. The detach call
// to the device is redundant for well-behaved frame code, so it is
// only re-issued when Debug is set.
func (b *Buffer) Unbind() {
	if b.state != StateBound {
		return
	}
	if b.Debug {
		b.device.BindToSlot(0, b.boundSlot)
	}
	b.boundSlot = 0
	b.state = StateAllocated
	core.MetricsUnbind()
}

// UnbindAll detaches every slot in [0, MaxBindSlots), regardless of
// which buffers occupy them. Used for full-state resets.
func UnbindAll(device Device) {
	for slot := uint32(0); slot < device.MaxBindSlots(); slot++ {
		device.BindToSlot(0, slot)
	}
}

// Destroy releases the pending payload and the device buffer. Safe to
// call in any state.
func (b *Buffer) Destroy() {
	b.pending = nil
	b.layout = nil
	if b.handle != 0 {
		b.device.Release(b.handle)
		b.handle = 0
		core.MetricsRelease()
	}
	b.boundSlot = 0
	b.state = StateUnallocated
	if err := core.IdentifierReleaseID(b.ID); err != nil {
		core.LogWarn(err.Error())
	}
}

// Size is the total byte size, always a multiple of 16.
func (b *Buffer) Size() uint64 {
	return b.size
}

func (b *Buffer) State() State {
	return b.state
}

func (b *Buffer) Handle() Handle {
	return b.handle
}

// BoundSlot is only meaningful while State is StateBound.
func (b *Buffer) BoundSlot() uint32 {
	return b.boundSlot
}

// Layout is the packed layout of a dynamically created buffer, nil
// for static ones.
func (b *Buffer) Layout() *Layout {
	return b.layout
}
