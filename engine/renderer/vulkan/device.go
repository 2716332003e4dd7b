package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/albedo/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	GraphicsQueueIndex int32

	GraphicsQueue vk.Queue

	Properties vk.PhysicalDeviceProperties
	Memory     vk.PhysicalDeviceMemoryProperties
}

func DeviceCreate(context *VulkanContext) error {
	if err := selectPhysicalDevice(context); err != nil {
		return err
	}

	core.LogInfo("Creating logical device...")

	var queuePriority float32 = 1.0
	queueCreateInfos := []vk.DeviceQueueCreateInfo{
		{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
			QueueCount:       1,
			PQueuePriorities: []float32{queuePriority},
		},
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(queueCreateInfos)),
		PQueueCreateInfos:    queueCreateInfos,
	}

	var logicalDevice vk.Device
	if res := vk.CreateDevice(context.Device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &logicalDevice); res != vk.Success {
		err := fmt.Errorf("failed to create logical device: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	context.Device.LogicalDevice = logicalDevice

	var queue vk.Queue
	vk.GetDeviceQueue(context.Device.LogicalDevice, uint32(context.Device.GraphicsQueueIndex), 0, &queue)
	context.Device.GraphicsQueue = queue

	core.LogInfo("Logical device created.")
	return nil
}

func DeviceDestroy(context *VulkanContext) {
	if context.Device == nil {
		return
	}
	if context.Device.LogicalDevice != nil {
		vk.DestroyDevice(context.Device.LogicalDevice, context.Allocator)
		context.Device.LogicalDevice = nil
	}
	context.Device.PhysicalDevice = nil
	context.Device.GraphicsQueueIndex = -1
}

// selectPhysicalDevice picks the first discrete GPU exposing a
// graphics queue, falling back to any GPU with one.
func selectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		err := fmt.Errorf("error in EnumeratePhysicalDevices: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if physicalDeviceCount == 0 {
		core.LogError("no devices which support Vulkan were found")
		return core.ErrNoDevice
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		err := fmt.Errorf("error in EnumeratePhysicalDevices: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}

	var fallback vk.PhysicalDevice
	fallbackQueueIndex := int32(-1)

	for _, pd := range physicalDevices {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &properties)
		properties.Deref()
		properties.Limits.Deref()

		queueIndex := graphicsQueueIndex(pd)
		if queueIndex < 0 {
			continue
		}

		if properties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
			context.Device.PhysicalDevice = pd
			context.Device.GraphicsQueueIndex = queueIndex
			context.Device.Properties = properties
			core.LogInfo("Selected device: '%s' (discrete).", vk.ToString(properties.DeviceName[:]))
			return nil
		}
		if fallback == nil {
			fallback = pd
			fallbackQueueIndex = queueIndex
			context.Device.Properties = properties
		}
	}

	if fallback == nil {
		core.LogError("no physical device with a graphics queue was found")
		return core.ErrNoDevice
	}

	context.Device.PhysicalDevice = fallback
	context.Device.GraphicsQueueIndex = fallbackQueueIndex
	core.LogInfo("Selected device: '%s'.", vk.ToString(context.Device.Properties.DeviceName[:]))
	return nil
}

func graphicsQueueIndex(pd vk.PhysicalDevice) int32 {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &queueFamilyCount, queueFamilies)

	for i := uint32(0); i < queueFamilyCount; i++ {
		queueFamilies[i].Deref()
		if queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			return int32(i)
		}
	}
	return -1
}
