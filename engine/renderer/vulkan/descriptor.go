package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/albedo/engine/core"
)

// VulkanDescriptor realizes the numbered bind slots: one descriptor
// set whose bindings [0, slotCount) each hold a single uniform buffer.
type VulkanDescriptor struct {
	Pool   vk.DescriptorPool
	Layout vk.DescriptorSetLayout
	Set    vk.DescriptorSet

	SlotCount uint32
}

func DescriptorCreate(context *VulkanContext, slotCount uint32) (*VulkanDescriptor, error) {
	bindings := make([]vk.DescriptorSetLayoutBinding, slotCount)
	for i := uint32(0); i < slotCount; i++ {
		bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         i,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
		}
	}

	layoutCreateInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: slotCount,
		PBindings:    bindings,
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutCreateInfo, context.Allocator, &layout); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor set layout: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	poolSizes := []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: slotCount,
		},
	}
	poolCreateInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       1,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolCreateInfo, context.Allocator, &pool); res != vk.Success {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, layout, context.Allocator)
		err := fmt.Errorf("failed to create descriptor pool: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}
	sets := make([]vk.DescriptorSet, 1)
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocateInfo, &sets[0]); res != vk.Success {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, pool, context.Allocator)
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, layout, context.Allocator)
		err := fmt.Errorf("failed to allocate descriptor set: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	return &VulkanDescriptor{
		Pool:      pool,
		Layout:    layout,
		Set:       sets[0],
		SlotCount: slotCount,
	}, nil
}

// WriteSlot points the given binding at the buffer.
func (vd *VulkanDescriptor) WriteSlot(context *VulkanContext, buffer vk.Buffer, sizeBytes uint64, slot uint32) {
	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: buffer,
		Offset: 0,
		Range:  vk.DeviceSize(sizeBytes),
	}
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          vd.Set,
		DstBinding:      slot,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
}

func (vd *VulkanDescriptor) Destroy(context *VulkanContext) {
	// The pool owns the set; freeing it individually is not needed.
	vk.DestroyDescriptorPool(context.Device.LogicalDevice, vd.Pool, context.Allocator)
	vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, vd.Layout, context.Allocator)
	vd.SlotCount = 0
}
