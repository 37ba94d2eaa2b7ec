package renderer

import (
	"time"

	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// AdapterInfo is the diagnostic identity of a physical device.
type AdapterInfo struct {
	Name      string
	VendorID  uint32
	DeviceID  uint32
	CacheUUID uuid.UUID
}

type QueueFamily struct {
	Flags      core1_0.QueueFlags
	QueueCount int
}

// Driver is every Vulkan call the renderer makes, bound to one instance and one
// surface. Device-level calls are only valid between CreateDevice and
// DestroyDevice. Failures come back as apperr-tagged errors carrying the result
// code.
type Driver interface {
	EnumerateAdapters() ([]core1_0.PhysicalDevice, error)
	AdapterInfo(adapter core1_0.PhysicalDevice) (AdapterInfo, error)
	QueueFamilies(adapter core1_0.PhysicalDevice) []QueueFamily
	DeviceExtensions(adapter core1_0.PhysicalDevice) ([]string, error)
	SurfaceCapabilities(adapter core1_0.PhysicalDevice) (*khr_surface.SurfaceCapabilities, error)
	SurfaceFormats(adapter core1_0.PhysicalDevice) ([]khr_surface.SurfaceFormat, error)
	SurfaceSupport(adapter core1_0.PhysicalDevice, queueFamily int) (bool, error)

	CreateDevice(adapter core1_0.PhysicalDevice, info core1_0.DeviceCreateInfo) error
	DestroyDevice()
	GetQueue(queueFamily, index int) core1_0.Queue
	DeviceWaitIdle() error

	CreateSwapchain(info khr_swapchain.SwapchainCreateInfo) (khr_swapchain.Swapchain, error)
	DestroySwapchain(swapchain khr_swapchain.Swapchain)
	SwapchainImages(swapchain khr_swapchain.Swapchain) ([]core1_0.Image, error)

	CreateImageView(info core1_0.ImageViewCreateInfo) (core1_0.ImageView, error)
	DestroyImageView(view core1_0.ImageView)

	CreateRenderPass(info core1_0.RenderPassCreateInfo) (core1_0.RenderPass, error)
	DestroyRenderPass(renderPass core1_0.RenderPass)
	CreatePipelineLayout(info core1_0.PipelineLayoutCreateInfo) (core1_0.PipelineLayout, error)
	DestroyPipelineLayout(layout core1_0.PipelineLayout)
	CreateShaderModule(info core1_0.ShaderModuleCreateInfo) (core1_0.ShaderModule, error)
	DestroyShaderModule(module core1_0.ShaderModule)
	CreateGraphicsPipeline(info core1_0.GraphicsPipelineCreateInfo) (core1_0.Pipeline, error)
	DestroyPipeline(pipeline core1_0.Pipeline)
	CreateFramebuffer(info core1_0.FramebufferCreateInfo) (core1_0.Framebuffer, error)
	DestroyFramebuffer(framebuffer core1_0.Framebuffer)

	CreateCommandPool(info core1_0.CommandPoolCreateInfo) (core1_0.CommandPool, error)
	DestroyCommandPool(pool core1_0.CommandPool)
	AllocateCommandBuffers(info core1_0.CommandBufferAllocateInfo) ([]core1_0.CommandBuffer, error)
	FreeCommandBuffers(buffers []core1_0.CommandBuffer)
	BeginCommandBuffer(buffer core1_0.CommandBuffer, info core1_0.CommandBufferBeginInfo) error
	CmdBeginRenderPass(buffer core1_0.CommandBuffer, contents core1_0.SubpassContents, info core1_0.RenderPassBeginInfo) error
	CmdBindPipeline(buffer core1_0.CommandBuffer, bindPoint core1_0.PipelineBindPoint, pipeline core1_0.Pipeline)
	CmdDraw(buffer core1_0.CommandBuffer, vertexCount, instanceCount int, firstVertex, firstInstance uint32)
	CmdEndRenderPass(buffer core1_0.CommandBuffer)
	EndCommandBuffer(buffer core1_0.CommandBuffer) error

	CreateSemaphore() (core1_0.Semaphore, error)
	DestroySemaphore(semaphore core1_0.Semaphore)
	CreateFence(signaled bool) (core1_0.Fence, error)
	DestroyFence(fence core1_0.Fence)
	WaitForFence(fence core1_0.Fence, timeout time.Duration) error
	ResetFence(fence core1_0.Fence) error

	AcquireNextImage(swapchain khr_swapchain.Swapchain, timeout time.Duration, signal core1_0.Semaphore) (int, error)
	QueueSubmit(queue core1_0.Queue, fence core1_0.Fence, info core1_0.SubmitInfo) error
	QueuePresent(queue core1_0.Queue, info khr_swapchain.PresentInfo) error
}
