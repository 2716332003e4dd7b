package uniform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/albedo/engine/core"
	"github.com/spaghettifunk/albedo/engine/math"
)

type fakeUpload struct {
	handle Handle
	offset uint64
	size   int
}

type fakeBind struct {
	handle Handle
	slot   uint32
}

// fakeDevice records every call so tests can assert on exact
// sequences.
type fakeDevice struct {
	maxSize  uint64
	maxSlots uint32

	nextHandle Handle
	allocs     []uint64
	uploads    []fakeUpload
	binds      []fakeBind
	releases   []Handle
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		maxSize:  16384,
		maxSlots: 8,
	}
}

func (d *fakeDevice) Allocate(sizeBytes uint64) Handle {
	d.nextHandle++
	d.allocs = append(d.allocs, sizeBytes)
	return d.nextHandle
}

func (d *fakeDevice) UploadRange(handle Handle, offset uint64, data []byte) {
	d.uploads = append(d.uploads, fakeUpload{handle: handle, offset: offset, size: len(data)})
}

func (d *fakeDevice) BindToSlot(handle Handle, slot uint32) {
	d.binds = append(d.binds, fakeBind{handle: handle, slot: slot})
}

func (d *fakeDevice) Release(handle Handle) {
	d.releases = append(d.releases, handle)
}

func (d *fakeDevice) MaxBufferSize() uint64 { return d.maxSize }
func (d *fakeDevice) MaxBindSlots() uint32  { return d.maxSlots }

func TestNewStaticTooLarge(t *testing.T) {
	dev := newFakeDevice()

	b, err := NewStatic(dev, dev.maxSize+16, nil)

	assert.Nil(t, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrBufferTooLarge)
	assert.NotEmpty(t, err.Error())
	assert.Empty(t, dev.allocs)
}

func TestNewStaticMisalignedSize(t *testing.T) {
	dev := newFakeDevice()

	b, err := NewStatic(dev, 20, nil)

	assert.Nil(t, b)
	assert.ErrorIs(t, err, core.ErrInvalidBufferSize)
}

func TestNewStaticNoDevice(t *testing.T) {
	b, err := NewStatic(nil, 16, nil)

	assert.Nil(t, b)
	assert.ErrorIs(t, err, core.ErrNoDevice)
}

func TestNewStaticImmediateUpload(t *testing.T) {
	dev := newFakeDevice()
	data := make([]byte, 64)

	b, err := NewStatic(dev, 64, data)
	require.NoError(t, err)
	defer b.Destroy()

	assert.Equal(t, StateAllocated, b.State())
	assert.Equal(t, []uint64{64}, dev.allocs)
	require.Len(t, dev.uploads, 1)
	assert.Equal(t, 64, dev.uploads[0].size)
	assert.Equal(t, uint64(0), dev.uploads[0].offset)
}

func TestNewStaticStaysUnallocatedWithoutData(t *testing.T) {
	dev := newFakeDevice()

	b, err := NewStatic(dev, 32, nil)
	require.NoError(t, err)
	defer b.Destroy()

	assert.Equal(t, StateUnallocated, b.State())
	assert.Empty(t, dev.allocs)
	assert.Empty(t, dev.uploads)
}

func TestNewDynamicEmptyInputsMeansNoBuffer(t *testing.T) {
	dev := newFakeDevice()

	b, err := NewDynamic(dev, nil)

	assert.Nil(t, b)
	assert.NoError(t, err)
}

func TestNewDynamicDefersUploadToFirstBind(t *testing.T) {
	dev := newFakeDevice()

	b, err := NewDynamic(dev, []Input{
		NewVec3("tint", math.Vec3{X: 1}),
		NewFloat("alpha", 0.5),
	})
	require.NoError(t, err)
	defer b.Destroy()

	// Construction touches nothing on the device.
	assert.Equal(t, StateUnallocated, b.State())
	assert.Empty(t, dev.allocs)
	assert.Empty(t, dev.uploads)

	require.NoError(t, b.Bind(2))
	assert.Equal(t, StateBound, b.State())
	assert.Equal(t, uint32(2), b.BoundSlot())
	assert.Len(t, dev.allocs, 1)
	require.Len(t, dev.uploads, 1)
	assert.Equal(t, int(b.Size()), dev.uploads[0].size)

	// Re-binding re-attaches but never re-uploads the payload.
	require.NoError(t, b.Bind(3))
	require.NoError(t, b.Bind(0))
	assert.Len(t, dev.allocs, 1)
	assert.Len(t, dev.uploads, 1)
	assert.Len(t, dev.binds, 3)
}

func TestBindSlotOutOfRange(t *testing.T) {
	dev := newFakeDevice()

	b, err := NewStatic(dev, 16, nil)
	require.NoError(t, err)
	defer b.Destroy()

	err = b.Bind(dev.maxSlots)

	assert.ErrorIs(t, err, core.ErrSlotOutOfRange)
	// Buffer untouched: no allocation, no bind, prior state kept.
	assert.Equal(t, StateUnallocated, b.State())
	assert.Empty(t, dev.allocs)
	assert.Empty(t, dev.binds)
}

func TestUnbindReturnsToAllocated(t *testing.T) {
	dev := newFakeDevice()

	b, err := NewStatic(dev, 16, make([]byte, 16))
	require.NoError(t, err)
	defer b.Destroy()

	require.NoError(t, b.Bind(1))
	b.Unbind()

	assert.Equal(t, StateAllocated, b.State())
	assert.Equal(t, uint32(0), b.BoundSlot())
	// Release mode: the redundant detach call is skipped.
	assert.Len(t, dev.binds, 1)

	// Re-bind re-enters bound.
	require.NoError(t, b.Bind(4))
	assert.Equal(t, StateBound, b.State())
	assert.Equal(t, uint32(4), b.BoundSlot())
}

func TestUnbindDebugReissuesDetach(t *testing.T) {
	dev := newFakeDevice()

	b, err := NewStatic(dev, 16, make([]byte, 16))
	require.NoError(t, err)
	defer b.Destroy()
	b.Debug = true

	require.NoError(t, b.Bind(5))
	b.Unbind()

	require.Len(t, dev.binds, 2)
	assert.Equal(t, fakeBind{handle: 0, slot: 5}, dev.binds[1])
}

func TestUnbindWhenNotBoundIsNoop(t *testing.T) {
	dev := newFakeDevice()

	b, err := NewStatic(dev, 16, nil)
	require.NoError(t, err)
	defer b.Destroy()
	b.Debug = true

	b.Unbind()

	assert.Empty(t, dev.binds)
	assert.Equal(t, StateUnallocated, b.State())
}

func TestUnbindAllDetachesEverySlot(t *testing.T) {
	dev := newFakeDevice()

	UnbindAll(dev)

	require.Len(t, dev.binds, int(dev.maxSlots))
	for i, bind := range dev.binds {
		assert.Equal(t, fakeBind{handle: 0, slot: uint32(i)}, bind)
	}
}

func TestUpdateAllocatesLazilyOnce(t *testing.T) {
	dev := newFakeDevice()

	b, err := NewStatic(dev, 48, nil)
	require.NoError(t, err)
	defer b.Destroy()

	data := make([]byte, 48)
	b.Update(data)
	b.Update(data)

	assert.Equal(t, []uint64{48}, dev.allocs)
	assert.Len(t, dev.uploads, 2)
	assert.Equal(t, StateAllocated, b.State())
}

func TestDestroyReleasesDeviceBuffer(t *testing.T) {
	dev := newFakeDevice()

	b, err := NewStatic(dev, 16, make([]byte, 16))
	require.NoError(t, err)
	handle := b.Handle()

	b.Destroy()

	assert.Equal(t, []Handle{handle}, dev.releases)
	assert.Equal(t, StateUnallocated, b.State())
	assert.Equal(t, Handle(0), b.Handle())
}

func TestDestroyUnallocatedIsSafe(t *testing.T) {
	dev := newFakeDevice()

	b, err := NewStatic(dev, 16, nil)
	require.NoError(t, err)

	b.Destroy()

	assert.Empty(t, dev.releases)
}

func TestDynamicLayoutIsExposed(t *testing.T) {
	dev := newFakeDevice()

	b, err := NewDynamic(dev, []Input{NewVec4("color", math.Vec4{X: 1})})
	require.NoError(t, err)
	defer b.Destroy()

	require.NotNil(t, b.Layout())
	assert.Equal(t, b.Size(), b.Layout().TotalSize)

	s, err := NewStatic(dev, 16, nil)
	require.NoError(t, err)
	defer s.Destroy()
	assert.Nil(t, s.Layout())
}
