package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/albedo/engine/core"
)

// VulkanBuffer is a host-visible uniform buffer kept persistently
// mapped, so uploads are a plain memcopy.
type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize

	mapped unsafe.Pointer
}

func BufferCreate(context *VulkanContext, sizeBytes uint64) (*VulkanBuffer, error) {
	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(sizeBytes),
		Usage:       vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferCreateInfo, context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create uniform buffer: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, handle, &requirements)
	requirements.Deref()

	memoryIndex := context.FindMemoryIndex(requirements.MemoryTypeBits,
		uint32(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if memoryIndex < 0 {
		vk.DestroyBuffer(context.Device.LogicalDevice, handle, context.Allocator)
		err := fmt.Errorf("no host-visible memory type for uniform buffer")
		core.LogError(err.Error())
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		vk.DestroyBuffer(context.Device.LogicalDevice, handle, context.Allocator)
		err := fmt.Errorf("failed to allocate uniform buffer memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, handle, memory, 0); res != vk.Success {
		vk.FreeMemory(context.Device.LogicalDevice, memory, context.Allocator)
		vk.DestroyBuffer(context.Device.LogicalDevice, handle, context.Allocator)
		err := fmt.Errorf("failed to bind uniform buffer memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	buffer := &VulkanBuffer{
		Handle: handle,
		Memory: memory,
		Size:   vk.DeviceSize(sizeBytes),
	}

	// Map once; the memory stays mapped until destruction.
	if res := vk.MapMemory(context.Device.LogicalDevice, memory, 0, buffer.Size, 0, &buffer.mapped); res != vk.Success {
		buffer.Destroy(context)
		err := fmt.Errorf("failed to map uniform buffer memory: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	return buffer, nil
}

func (vb *VulkanBuffer) Upload(offsetBytes uint64, data []byte) {
	dst := unsafe.Add(vb.mapped, int(offsetBytes))
	vk.Memcopy(dst, data)
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	if vb.mapped != nil {
		vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
		vb.mapped = nil
	}
	if vb.Handle != vk.NullBuffer {
		vk.DestroyBuffer(context.Device.LogicalDevice, vb.Handle, context.Allocator)
		vb.Handle = vk.NullBuffer
	}
	if vb.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.LogicalDevice, vb.Memory, context.Allocator)
		vb.Memory = vk.NullDeviceMemory
	}
	vb.Size = 0
}
