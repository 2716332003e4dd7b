package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/albedo/engine/core"
	"github.com/spaghettifunk/albedo/engine/math"
	"github.com/spaghettifunk/albedo/engine/platform"
	"github.com/spaghettifunk/albedo/engine/renderer/uniform"
)

// VulkanBackend implements uniform.Device on a real Vulkan device.
// Bind slots are realized as the bindings of a single uniform
// descriptor set. All calls must come from the thread that owns the
// rendering context.
type VulkanBackend struct {
	platform *platform.Platform
	context  *VulkanContext

	descriptor *VulkanDescriptor

	// maxSlotsCap limits the slot count below the device maximum when
	// non-zero (config driven).
	maxSlotsCap uint32

	buffers    map[uniform.Handle]*VulkanBuffer
	nextHandle uniform.Handle

	debug bool
}

func New(p *platform.Platform, debug bool, maxSlotsCap uint32) *VulkanBackend {
	return &VulkanBackend{
		platform: p,
		context: &VulkanContext{
			Allocator: nil,
			Device:    &VulkanDevice{GraphicsQueueIndex: -1},
		},
		maxSlotsCap: maxSlotsCap,
		buffers:     make(map[uniform.Handle]*VulkanBuffer),
		nextHandle:  1,
		debug:       debug,
	}
}

func (vr *VulkanBackend) Initialize(appName string) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		core.LogFatal("GetInstanceProcAddress is nil")
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogFatal("failed to initialize vk: %s", err)
		return err
	}

	// TODO: custom allocator.
	vr.context.Allocator = nil

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Albedo"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, vr.platform.GetRequiredExtensionNames()...)

	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
	}

	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugUtilsExtensionName, vk.ExtDebugReportExtensionName)
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	requiredValidationLayerNames := []string{}
	if vr.debug {
		requiredValidationLayerNames = []string{"VK_LAYER_KHRONOS_validation"}
	}
	createInfo.EnabledLayerCount = uint32(len(requiredValidationLayerNames))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredValidationLayerNames)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		err := fmt.Errorf("failed in creating the Vulkan Instance with error `%s`", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Vulkan Instance created.")

	if vr.debug {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
		}

		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			core.LogError("vk.CreateDebugReportCallback failed with %s", err)
			return err
		}
		vr.context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	if err := DeviceCreate(vr.context); err != nil {
		core.LogError("Failed to create device!")
		return err
	}

	descriptor, err := DescriptorCreate(vr.context, vr.MaxBindSlots())
	if err != nil {
		return err
	}
	vr.descriptor = descriptor

	core.LogInfo("Vulkan backend initialized successfully.")
	return nil
}

func (vr *VulkanBackend) Shutdown() error {
	if vr.context.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	}

	for handle, buffer := range vr.buffers {
		buffer.Destroy(vr.context)
		delete(vr.buffers, handle)
	}
	if vr.descriptor != nil {
		vr.descriptor.Destroy(vr.context)
		vr.descriptor = nil
	}
	DeviceDestroy(vr.context)

	if vr.debug {
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
	}
	if vr.context.Instance != nil {
		vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
		vr.context.Instance = nil
	}
	return nil
}

// Allocate creates a host-visible uniform buffer and returns its
// handle, or 0 on failure.
func (vr *VulkanBackend) Allocate(sizeBytes uint64) uniform.Handle {
	buffer, err := BufferCreate(vr.context, sizeBytes)
	if err != nil {
		return 0
	}
	handle := vr.nextHandle
	vr.nextHandle++
	vr.buffers[handle] = buffer
	return handle
}

func (vr *VulkanBackend) UploadRange(handle uniform.Handle, offset uint64, data []byte) {
	buffer, ok := vr.buffers[handle]
	if !ok {
		core.LogError("upload to unknown buffer handle %d", handle)
		return
	}
	buffer.Upload(offset, data)
}

// BindToSlot points the slot's descriptor binding at the buffer.
// Handle 0 detaches: descriptor bindings have no "unbind" write, so
// the detach only clears the backend's notion of the slot.
func (vr *VulkanBackend) BindToSlot(handle uniform.Handle, slot uint32) {
	if handle == 0 {
		core.LogDebug("slot %d detached", slot)
		return
	}
	buffer, ok := vr.buffers[handle]
	if !ok {
		core.LogError("bind of unknown buffer handle %d", handle)
		return
	}
	vr.descriptor.WriteSlot(vr.context, buffer.Handle, uint64(buffer.Size), slot)
}

func (vr *VulkanBackend) Release(handle uniform.Handle) {
	buffer, ok := vr.buffers[handle]
	if !ok {
		core.LogError("release of unknown buffer handle %d", handle)
		return
	}
	buffer.Destroy(vr.context)
	delete(vr.buffers, handle)
}

func (vr *VulkanBackend) MaxBufferSize() uint64 {
	return uint64(vr.context.Device.Properties.Limits.MaxUniformBufferRange)
}

func (vr *VulkanBackend) MaxBindSlots() uint32 {
	limit := vr.context.Device.Properties.Limits.MaxPerStageDescriptorUniformBuffers
	if vr.maxSlotsCap > 0 {
		limit = math.Min(limit, vr.maxSlotsCap)
	}
	return limit
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
