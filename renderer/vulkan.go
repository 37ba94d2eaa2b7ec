package renderer

import (
	"time"

	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/triangle/apperr"
)

// vulkanDriver implements Driver on vkngwrapper for a single instance and
// surface.
type vulkanDriver struct {
	instanceDriver   core1_0.CoreInstanceDriver
	surfaceExtension khr_surface.ExtensionDriver
	surface          khr_surface.Surface

	deviceDriver       core1_0.CoreDeviceDriver
	swapchainExtension khr_swapchain.ExtensionDriver
}

func check(op string, res common.VkResult, err error) error {
	if err != nil {
		return apperr.Vulkan(op, res, err)
	}
	return nil
}

func (d *vulkanDriver) EnumerateAdapters() ([]core1_0.PhysicalDevice, error) {
	physicalDevices, res, err := d.instanceDriver.EnumeratePhysicalDevices()
	return physicalDevices, check("enumerate physical devices", res, err)
}

func (d *vulkanDriver) AdapterInfo(adapter core1_0.PhysicalDevice) (AdapterInfo, error) {
	props, err := d.instanceDriver.GetPhysicalDeviceProperties(adapter)
	if err != nil {
		return AdapterInfo{}, apperr.VulkanCall("get physical device properties", err)
	}

	return AdapterInfo{
		Name:      props.DriverName,
		VendorID:  uint32(props.VendorID),
		DeviceID:  uint32(props.DeviceID),
		CacheUUID: props.PipelineCacheUUID,
	}, nil
}

func (d *vulkanDriver) QueueFamilies(adapter core1_0.PhysicalDevice) []QueueFamily {
	var families []QueueFamily
	for _, queueFamily := range d.instanceDriver.GetPhysicalDeviceQueueFamilyProperties(adapter) {
		families = append(families, QueueFamily{
			Flags:      queueFamily.QueueFlags,
			QueueCount: int(queueFamily.QueueCount),
		})
	}
	return families
}

func (d *vulkanDriver) DeviceExtensions(adapter core1_0.PhysicalDevice) ([]string, error) {
	extensions, res, err := d.instanceDriver.EnumerateDeviceExtensionProperties(adapter)
	if err != nil {
		return nil, check("enumerate device extensions", res, err)
	}

	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	return names, nil
}

func (d *vulkanDriver) SurfaceCapabilities(adapter core1_0.PhysicalDevice) (*khr_surface.SurfaceCapabilities, error) {
	capabilities, res, err := d.surfaceExtension.GetPhysicalDeviceSurfaceCapabilities(d.surface, adapter)
	return capabilities, check("get surface capabilities", res, err)
}

func (d *vulkanDriver) SurfaceFormats(adapter core1_0.PhysicalDevice) ([]khr_surface.SurfaceFormat, error) {
	formats, res, err := d.surfaceExtension.GetPhysicalDeviceSurfaceFormats(d.surface, adapter)
	return formats, check("get surface formats", res, err)
}

func (d *vulkanDriver) SurfaceSupport(adapter core1_0.PhysicalDevice, queueFamily int) (bool, error) {
	supported, res, err := d.surfaceExtension.GetPhysicalDeviceSurfaceSupport(d.surface, adapter, queueFamily)
	return supported, check("get surface support", res, err)
}

func (d *vulkanDriver) CreateDevice(adapter core1_0.PhysicalDevice, info core1_0.DeviceCreateInfo) error {
	device, res, err := d.instanceDriver.CreateDevice(adapter, nil, info)
	if err != nil {
		return check("create device", res, err)
	}

	deviceDriver, err := d.instanceDriver.BuildDeviceDriver(device)
	if err != nil {
		// Without a function table the device can only be leaked.
		return apperr.VulkanCall("load device functions", err)
	}

	swapchainExtension := khr_swapchain.CreateExtensionDriverFromCoreDriver(deviceDriver)
	if swapchainExtension == nil {
		deviceDriver.DestroyDevice(nil)
		return apperr.App("device was created without %s", khr_swapchain.ExtensionName)
	}

	d.deviceDriver = deviceDriver
	d.swapchainExtension = swapchainExtension
	return nil
}

func (d *vulkanDriver) DestroyDevice() {
	if d.deviceDriver == nil {
		return
	}
	d.deviceDriver.DestroyDevice(nil)
	d.deviceDriver = nil
	d.swapchainExtension = nil
}

func (d *vulkanDriver) GetQueue(queueFamily, index int) core1_0.Queue {
	return d.deviceDriver.GetQueue(queueFamily, index)
}

func (d *vulkanDriver) DeviceWaitIdle() error {
	res, err := d.deviceDriver.DeviceWaitIdle()
	return check("device wait idle", res, err)
}

func (d *vulkanDriver) CreateSwapchain(info khr_swapchain.SwapchainCreateInfo) (khr_swapchain.Swapchain, error) {
	info.Surface = d.surface
	swapchain, res, err := d.swapchainExtension.CreateSwapchain(nil, info)
	return swapchain, check("create swapchain", res, err)
}

func (d *vulkanDriver) DestroySwapchain(swapchain khr_swapchain.Swapchain) {
	d.swapchainExtension.DestroySwapchain(swapchain, nil)
}

func (d *vulkanDriver) SwapchainImages(swapchain khr_swapchain.Swapchain) ([]core1_0.Image, error) {
	images, res, err := d.swapchainExtension.GetSwapchainImages(swapchain)
	return images, check("get swapchain images", res, err)
}

func (d *vulkanDriver) CreateImageView(info core1_0.ImageViewCreateInfo) (core1_0.ImageView, error) {
	view, res, err := d.deviceDriver.CreateImageView(nil, info)
	return view, check("create image view", res, err)
}

func (d *vulkanDriver) DestroyImageView(view core1_0.ImageView) {
	d.deviceDriver.DestroyImageView(view, nil)
}

func (d *vulkanDriver) CreateRenderPass(info core1_0.RenderPassCreateInfo) (core1_0.RenderPass, error) {
	renderPass, res, err := d.deviceDriver.CreateRenderPass(nil, info)
	return renderPass, check("create render pass", res, err)
}

func (d *vulkanDriver) DestroyRenderPass(renderPass core1_0.RenderPass) {
	d.deviceDriver.DestroyRenderPass(renderPass, nil)
}

func (d *vulkanDriver) CreatePipelineLayout(info core1_0.PipelineLayoutCreateInfo) (core1_0.PipelineLayout, error) {
	layout, res, err := d.deviceDriver.CreatePipelineLayout(nil, info)
	return layout, check("create pipeline layout", res, err)
}

func (d *vulkanDriver) DestroyPipelineLayout(layout core1_0.PipelineLayout) {
	d.deviceDriver.DestroyPipelineLayout(layout, nil)
}

func (d *vulkanDriver) CreateShaderModule(info core1_0.ShaderModuleCreateInfo) (core1_0.ShaderModule, error) {
	module, res, err := d.deviceDriver.CreateShaderModule(nil, info)
	return module, check("create shader module", res, err)
}

func (d *vulkanDriver) DestroyShaderModule(module core1_0.ShaderModule) {
	d.deviceDriver.DestroyShaderModule(module, nil)
}

func (d *vulkanDriver) CreateGraphicsPipeline(info core1_0.GraphicsPipelineCreateInfo) (core1_0.Pipeline, error) {
	pipelines, res, err := d.deviceDriver.CreateGraphicsPipelines(nil, nil, info)
	if err != nil {
		return core1_0.Pipeline{}, check("create graphics pipeline", res, err)
	}
	return pipelines[0], nil
}

func (d *vulkanDriver) DestroyPipeline(pipeline core1_0.Pipeline) {
	d.deviceDriver.DestroyPipeline(pipeline, nil)
}

func (d *vulkanDriver) CreateFramebuffer(info core1_0.FramebufferCreateInfo) (core1_0.Framebuffer, error) {
	framebuffer, res, err := d.deviceDriver.CreateFramebuffer(nil, info)
	return framebuffer, check("create framebuffer", res, err)
}

func (d *vulkanDriver) DestroyFramebuffer(framebuffer core1_0.Framebuffer) {
	d.deviceDriver.DestroyFramebuffer(framebuffer, nil)
}

func (d *vulkanDriver) CreateCommandPool(info core1_0.CommandPoolCreateInfo) (core1_0.CommandPool, error) {
	pool, res, err := d.deviceDriver.CreateCommandPool(nil, info)
	return pool, check("create command pool", res, err)
}

func (d *vulkanDriver) DestroyCommandPool(pool core1_0.CommandPool) {
	d.deviceDriver.DestroyCommandPool(pool, nil)
}

func (d *vulkanDriver) AllocateCommandBuffers(info core1_0.CommandBufferAllocateInfo) ([]core1_0.CommandBuffer, error) {
	buffers, res, err := d.deviceDriver.AllocateCommandBuffers(info)
	return buffers, check("allocate command buffers", res, err)
}

func (d *vulkanDriver) FreeCommandBuffers(buffers []core1_0.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	d.deviceDriver.FreeCommandBuffers(buffers...)
}

func (d *vulkanDriver) BeginCommandBuffer(buffer core1_0.CommandBuffer, info core1_0.CommandBufferBeginInfo) error {
	res, err := d.deviceDriver.BeginCommandBuffer(buffer, info)
	return check("begin command buffer", res, err)
}

func (d *vulkanDriver) CmdBeginRenderPass(buffer core1_0.CommandBuffer, contents core1_0.SubpassContents, info core1_0.RenderPassBeginInfo) error {
	if err := d.deviceDriver.CmdBeginRenderPass(buffer, contents, info); err != nil {
		return apperr.VulkanCall("begin render pass", err)
	}
	return nil
}

func (d *vulkanDriver) CmdBindPipeline(buffer core1_0.CommandBuffer, bindPoint core1_0.PipelineBindPoint, pipeline core1_0.Pipeline) {
	d.deviceDriver.CmdBindPipeline(buffer, bindPoint, pipeline)
}

func (d *vulkanDriver) CmdDraw(buffer core1_0.CommandBuffer, vertexCount, instanceCount int, firstVertex, firstInstance uint32) {
	d.deviceDriver.CmdDraw(buffer, vertexCount, instanceCount, firstVertex, firstInstance)
}

func (d *vulkanDriver) CmdEndRenderPass(buffer core1_0.CommandBuffer) {
	d.deviceDriver.CmdEndRenderPass(buffer)
}

func (d *vulkanDriver) EndCommandBuffer(buffer core1_0.CommandBuffer) error {
	res, err := d.deviceDriver.EndCommandBuffer(buffer)
	return check("end command buffer", res, err)
}

func (d *vulkanDriver) CreateSemaphore() (core1_0.Semaphore, error) {
	semaphore, res, err := d.deviceDriver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	return semaphore, check("create semaphore", res, err)
}

func (d *vulkanDriver) DestroySemaphore(semaphore core1_0.Semaphore) {
	d.deviceDriver.DestroySemaphore(semaphore, nil)
}

func (d *vulkanDriver) CreateFence(signaled bool) (core1_0.Fence, error) {
	info := core1_0.FenceCreateInfo{}
	if signaled {
		info.Flags = core1_0.FenceCreateSignaled
	}

	fence, res, err := d.deviceDriver.CreateFence(nil, info)
	return fence, check("create fence", res, err)
}

func (d *vulkanDriver) DestroyFence(fence core1_0.Fence) {
	d.deviceDriver.DestroyFence(fence, nil)
}

func (d *vulkanDriver) WaitForFence(fence core1_0.Fence, timeout time.Duration) error {
	res, err := d.deviceDriver.WaitForFences(true, timeout, fence)
	return check("wait for fence", res, err)
}

func (d *vulkanDriver) ResetFence(fence core1_0.Fence) error {
	res, err := d.deviceDriver.ResetFences(fence)
	return check("reset fence", res, err)
}

func (d *vulkanDriver) AcquireNextImage(swapchain khr_swapchain.Swapchain, timeout time.Duration, signal core1_0.Semaphore) (int, error) {
	imageIndex, res, err := d.swapchainExtension.AcquireNextImage(swapchain, timeout, &signal, nil)
	return imageIndex, check("acquire next image", res, err)
}

func (d *vulkanDriver) QueueSubmit(queue core1_0.Queue, fence core1_0.Fence, info core1_0.SubmitInfo) error {
	var signal *core1_0.Fence
	if fence.Initialized() {
		signal = &fence
	}

	res, err := d.deviceDriver.QueueSubmit(queue, signal, info)
	return check("queue submit", res, err)
}

func (d *vulkanDriver) QueuePresent(queue core1_0.Queue, info khr_swapchain.PresentInfo) error {
	res, err := d.swapchainExtension.QueuePresent(queue, info)
	return check("queue present", res, err)
}
