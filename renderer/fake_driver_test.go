package renderer

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/loader"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/triangle/apperr"
)

const (
	kindDevice         = "device"
	kindSwapchain      = "swapchain"
	kindImageView      = "image view"
	kindRenderPass     = "render pass"
	kindPipelineLayout = "pipeline layout"
	kindShaderModule   = "shader module"
	kindPipeline       = "pipeline"
	kindFramebuffer    = "framebuffer"
	kindCommandPool    = "command pool"
	kindCommandBuffer  = "command buffer"
	kindSemaphore      = "semaphore"
	kindFence          = "fence"
)

type drawCall struct {
	vertexCount, instanceCount int
	firstVertex, firstInstance uint32
}

// fakeDriver stands in for a GPU. Every object gets its own handle; created and
// destroyed list object IDs ("image view 7") in the order the calls happened, and
// a batch of command buffers is one ID.
type fakeDriver struct {
	adapterCount   int
	families       []QueueFamily
	extensions     []string
	capabilities   khr_surface.SurfaceCapabilities
	formats        []khr_surface.SurfaceFormat
	presentSupport bool
	imageCount     int
	shortBuffers   bool

	// failAt makes the n-th call (1-based) of an operation fail.
	failAt map[string]int
	calls  map[string]int

	nextHandle uintptr
	live       map[string]int
	created    []string
	destroyed  []string
	events     []string

	nextImage   int
	draws       []drawCall
	submits     []core1_0.SubmitInfo
	fences      []core1_0.Fence
	presents    []khr_swapchain.PresentInfo
	beginFlags  []core1_0.CommandBufferUsageFlags
	clearValues [][]core1_0.ClearValue

	deviceInfo    core1_0.DeviceCreateInfo
	swapchainInfo khr_swapchain.SwapchainCreateInfo
	viewInfos     []core1_0.ImageViewCreateInfo
	renderPasses  []core1_0.RenderPassCreateInfo
	pipelineInfos []core1_0.GraphicsPipelineCreateInfo
	shaderSizes   []int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		adapterCount: 1,
		families: []QueueFamily{
			{Flags: core1_0.QueueGraphics | core1_0.QueueTransfer, QueueCount: 1},
		},
		extensions: []string{"VK_KHR_maintenance1", khr_swapchain.ExtensionName},
		capabilities: khr_surface.SurfaceCapabilities{
			MinImageCount:    3,
			MinImageExtent:   core1_0.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:   core1_0.Extent2D{Width: 4096, Height: 4096},
			CurrentTransform: khr_surface.TransformRotate90,
		},
		formats: []khr_surface.SurfaceFormat{
			{Format: core1_0.FormatR8G8B8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
			{Format: core1_0.FormatB8G8R8A8SRGB, ColorSpace: khr_surface.ColorSpaceSRGBNonlinear},
		},
		presentSupport: true,
		imageCount:     3,
		failAt:         map[string]int{},
		calls:          map[string]int{},
		live:           map[string]int{},
	}
}

func (f *fakeDriver) call(op string) error {
	f.calls[op]++
	f.events = append(f.events, op)
	if n, ok := f.failAt[op]; ok && f.calls[op] == n {
		return apperr.Vulkan(op, core1_0.VKErrorOutOfDeviceMemory, errors.Newf("injected failure in %s", op))
	}
	return nil
}

func (f *fakeDriver) handle() uintptr {
	f.nextHandle++
	return f.nextHandle
}

func objectID(kind string, handles ...uintptr) string {
	id := kind
	for _, h := range handles {
		id += fmt.Sprintf(" %d", h)
	}
	return id
}

func (f *fakeDriver) create(kind string, handles ...uintptr) {
	f.live[kind] += len(handles)
	f.created = append(f.created, objectID(kind, handles...))
}

func (f *fakeDriver) destroy(kind string, handles ...uintptr) {
	f.events = append(f.events, "destroy "+kind)
	f.live[kind] -= len(handles)
	f.destroyed = append(f.destroyed, objectID(kind, handles...))
}

func (f *fakeDriver) liveObjects() int {
	total := 0
	for _, count := range f.live {
		total += count
	}
	return total
}

func (f *fakeDriver) count(op string) int {
	n := 0
	for _, event := range f.events {
		if event == op {
			n++
		}
	}
	return n
}

func (f *fakeDriver) EnumerateAdapters() ([]core1_0.PhysicalDevice, error) {
	if err := f.call("enumerate adapters"); err != nil {
		return nil, err
	}
	return make([]core1_0.PhysicalDevice, f.adapterCount), nil
}

func (f *fakeDriver) AdapterInfo(adapter core1_0.PhysicalDevice) (AdapterInfo, error) {
	return AdapterInfo{Name: "fake gpu", VendorID: 0x1002, DeviceID: 0x73bf, CacheUUID: uuid.MustParse("6f1c2d7e-3b4a-4c5d-8e9f-0a1b2c3d4e5f")}, f.call("adapter info")
}

func (f *fakeDriver) QueueFamilies(adapter core1_0.PhysicalDevice) []QueueFamily {
	return f.families
}

func (f *fakeDriver) DeviceExtensions(adapter core1_0.PhysicalDevice) ([]string, error) {
	return f.extensions, f.call("device extensions")
}

func (f *fakeDriver) SurfaceCapabilities(adapter core1_0.PhysicalDevice) (*khr_surface.SurfaceCapabilities, error) {
	capabilities := f.capabilities
	return &capabilities, f.call("surface capabilities")
}

func (f *fakeDriver) SurfaceFormats(adapter core1_0.PhysicalDevice) ([]khr_surface.SurfaceFormat, error) {
	return f.formats, f.call("surface formats")
}

func (f *fakeDriver) SurfaceSupport(adapter core1_0.PhysicalDevice, queueFamily int) (bool, error) {
	return f.presentSupport, f.call("surface support")
}

func (f *fakeDriver) CreateDevice(adapter core1_0.PhysicalDevice, info core1_0.DeviceCreateInfo) error {
	f.deviceInfo = info
	if err := f.call("create device"); err != nil {
		return err
	}
	f.create(kindDevice, 0)
	return nil
}

func (f *fakeDriver) DestroyDevice() { f.destroy(kindDevice, 0) }

func (f *fakeDriver) GetQueue(queueFamily, index int) core1_0.Queue { return core1_0.Queue{} }

func (f *fakeDriver) DeviceWaitIdle() error { return f.call("wait idle") }

func (f *fakeDriver) CreateSwapchain(info khr_swapchain.SwapchainCreateInfo) (khr_swapchain.Swapchain, error) {
	f.swapchainInfo = info
	if err := f.call("create swapchain"); err != nil {
		return khr_swapchain.Swapchain{}, err
	}
	swapchain := khr_swapchain.NewDummySwapchain(core1_0.InternalDevice(1, common.Vulkan1_0, nil))
	f.create(kindSwapchain, uintptr(swapchain.Handle()))
	return swapchain, nil
}

func (f *fakeDriver) DestroySwapchain(swapchain khr_swapchain.Swapchain) {
	f.destroy(kindSwapchain, uintptr(swapchain.Handle()))
}

func (f *fakeDriver) SwapchainImages(swapchain khr_swapchain.Swapchain) ([]core1_0.Image, error) {
	if err := f.call("swapchain images"); err != nil {
		return nil, err
	}
	images := make([]core1_0.Image, f.imageCount)
	for i := range images {
		images[i] = core1_0.InternalImage(1, loader.VkImage(f.handle()), common.Vulkan1_0)
	}
	return images, nil
}

func (f *fakeDriver) CreateImageView(info core1_0.ImageViewCreateInfo) (core1_0.ImageView, error) {
	f.viewInfos = append(f.viewInfos, info)
	if err := f.call("create image view"); err != nil {
		return core1_0.ImageView{}, err
	}
	h := f.handle()
	f.create(kindImageView, h)
	return core1_0.InternalImageView(1, loader.VkImageView(h), common.Vulkan1_0), nil
}

func (f *fakeDriver) DestroyImageView(view core1_0.ImageView) {
	f.destroy(kindImageView, uintptr(view.Handle()))
}

func (f *fakeDriver) CreateRenderPass(info core1_0.RenderPassCreateInfo) (core1_0.RenderPass, error) {
	f.renderPasses = append(f.renderPasses, info)
	if err := f.call("create render pass"); err != nil {
		return core1_0.RenderPass{}, err
	}
	h := f.handle()
	f.create(kindRenderPass, h)
	return core1_0.InternalRenderPass(1, loader.VkRenderPass(h), common.Vulkan1_0), nil
}

func (f *fakeDriver) DestroyRenderPass(renderPass core1_0.RenderPass) {
	f.destroy(kindRenderPass, uintptr(renderPass.Handle()))
}

func (f *fakeDriver) CreatePipelineLayout(info core1_0.PipelineLayoutCreateInfo) (core1_0.PipelineLayout, error) {
	if err := f.call("create pipeline layout"); err != nil {
		return core1_0.PipelineLayout{}, err
	}
	h := f.handle()
	f.create(kindPipelineLayout, h)
	return core1_0.InternalPipelineLayout(1, loader.VkPipelineLayout(h), common.Vulkan1_0), nil
}

func (f *fakeDriver) DestroyPipelineLayout(layout core1_0.PipelineLayout) {
	f.destroy(kindPipelineLayout, uintptr(layout.Handle()))
}

func (f *fakeDriver) CreateShaderModule(info core1_0.ShaderModuleCreateInfo) (core1_0.ShaderModule, error) {
	f.shaderSizes = append(f.shaderSizes, len(info.Code))
	if err := f.call("create shader module"); err != nil {
		return core1_0.ShaderModule{}, err
	}
	h := f.handle()
	f.create(kindShaderModule, h)
	return core1_0.InternalShaderModule(1, loader.VkShaderModule(h), common.Vulkan1_0), nil
}

func (f *fakeDriver) DestroyShaderModule(module core1_0.ShaderModule) {
	f.destroy(kindShaderModule, uintptr(module.Handle()))
}

func (f *fakeDriver) CreateGraphicsPipeline(info core1_0.GraphicsPipelineCreateInfo) (core1_0.Pipeline, error) {
	f.pipelineInfos = append(f.pipelineInfos, info)
	if err := f.call("create pipeline"); err != nil {
		return core1_0.Pipeline{}, err
	}
	h := f.handle()
	f.create(kindPipeline, h)
	return core1_0.InternalPipeline(1, loader.VkPipeline(h), common.Vulkan1_0), nil
}

func (f *fakeDriver) DestroyPipeline(pipeline core1_0.Pipeline) {
	f.destroy(kindPipeline, uintptr(pipeline.Handle()))
}

func (f *fakeDriver) CreateFramebuffer(info core1_0.FramebufferCreateInfo) (core1_0.Framebuffer, error) {
	if err := f.call("create framebuffer"); err != nil {
		return core1_0.Framebuffer{}, err
	}
	h := f.handle()
	f.create(kindFramebuffer, h)
	return core1_0.InternalFramebuffer(1, loader.VkFramebuffer(h), common.Vulkan1_0), nil
}

func (f *fakeDriver) DestroyFramebuffer(framebuffer core1_0.Framebuffer) {
	f.destroy(kindFramebuffer, uintptr(framebuffer.Handle()))
}

func (f *fakeDriver) CreateCommandPool(info core1_0.CommandPoolCreateInfo) (core1_0.CommandPool, error) {
	if err := f.call("create command pool"); err != nil {
		return core1_0.CommandPool{}, err
	}
	h := f.handle()
	f.create(kindCommandPool, h)
	return core1_0.InternalCommandPool(1, loader.VkCommandPool(h), common.Vulkan1_0), nil
}

func (f *fakeDriver) DestroyCommandPool(pool core1_0.CommandPool) {
	f.destroy(kindCommandPool, uintptr(pool.Handle()))
}

func (f *fakeDriver) AllocateCommandBuffers(info core1_0.CommandBufferAllocateInfo) ([]core1_0.CommandBuffer, error) {
	if err := f.call("allocate command buffers"); err != nil {
		return nil, err
	}

	count := info.CommandBufferCount
	if f.shortBuffers {
		count--
	}

	buffers := make([]core1_0.CommandBuffer, count)
	handles := make([]uintptr, count)
	for i := range buffers {
		handles[i] = f.handle()
		buffers[i] = core1_0.InternalCommandBuffer(1, info.CommandPool.Handle(), loader.VkCommandBuffer(handles[i]), common.Vulkan1_0)
	}
	f.create(kindCommandBuffer, handles...)
	return buffers, nil
}

func (f *fakeDriver) FreeCommandBuffers(buffers []core1_0.CommandBuffer) {
	handles := make([]uintptr, len(buffers))
	for i, buffer := range buffers {
		handles[i] = uintptr(buffer.Handle())
	}
	f.destroy(kindCommandBuffer, handles...)
}

func (f *fakeDriver) BeginCommandBuffer(buffer core1_0.CommandBuffer, info core1_0.CommandBufferBeginInfo) error {
	f.beginFlags = append(f.beginFlags, info.Flags)
	return f.call("begin command buffer")
}

func (f *fakeDriver) CmdBeginRenderPass(buffer core1_0.CommandBuffer, contents core1_0.SubpassContents, info core1_0.RenderPassBeginInfo) error {
	f.clearValues = append(f.clearValues, info.ClearValues)
	return f.call("cmd begin render pass")
}

func (f *fakeDriver) CmdBindPipeline(buffer core1_0.CommandBuffer, bindPoint core1_0.PipelineBindPoint, pipeline core1_0.Pipeline) {
	f.events = append(f.events, "cmd bind pipeline")
}

func (f *fakeDriver) CmdDraw(buffer core1_0.CommandBuffer, vertexCount, instanceCount int, firstVertex, firstInstance uint32) {
	f.events = append(f.events, "cmd draw")
	f.draws = append(f.draws, drawCall{vertexCount, instanceCount, firstVertex, firstInstance})
}

func (f *fakeDriver) CmdEndRenderPass(buffer core1_0.CommandBuffer) {
	f.events = append(f.events, "cmd end render pass")
}

func (f *fakeDriver) EndCommandBuffer(buffer core1_0.CommandBuffer) error {
	return f.call("end command buffer")
}

func (f *fakeDriver) CreateSemaphore() (core1_0.Semaphore, error) {
	if err := f.call("create semaphore"); err != nil {
		return core1_0.Semaphore{}, err
	}
	h := f.handle()
	f.create(kindSemaphore, h)
	return core1_0.InternalSemaphore(1, loader.VkSemaphore(h), common.Vulkan1_0), nil
}

func (f *fakeDriver) DestroySemaphore(semaphore core1_0.Semaphore) {
	f.destroy(kindSemaphore, uintptr(semaphore.Handle()))
}

func (f *fakeDriver) CreateFence(signaled bool) (core1_0.Fence, error) {
	if err := f.call("create fence"); err != nil {
		return core1_0.Fence{}, err
	}
	h := f.handle()
	f.create(kindFence, h)
	return core1_0.InternalFence(1, loader.VkFence(h), common.Vulkan1_0), nil
}

func (f *fakeDriver) DestroyFence(fence core1_0.Fence) {
	f.destroy(kindFence, uintptr(fence.Handle()))
}

func (f *fakeDriver) WaitForFence(fence core1_0.Fence, timeout time.Duration) error {
	return f.call("wait fence")
}

func (f *fakeDriver) ResetFence(fence core1_0.Fence) error { return f.call("reset fence") }

func (f *fakeDriver) AcquireNextImage(swapchain khr_swapchain.Swapchain, timeout time.Duration, signal core1_0.Semaphore) (int, error) {
	if err := f.call("acquire"); err != nil {
		return 0, err
	}
	imageIndex := f.nextImage
	f.nextImage = (f.nextImage + 1) % f.imageCount
	return imageIndex, nil
}

func (f *fakeDriver) QueueSubmit(queue core1_0.Queue, fence core1_0.Fence, info core1_0.SubmitInfo) error {
	f.submits = append(f.submits, info)
	f.fences = append(f.fences, fence)
	return f.call("submit")
}

func (f *fakeDriver) QueuePresent(queue core1_0.Queue, info khr_swapchain.PresentInfo) error {
	f.presents = append(f.presents, info)
	return f.call("present")
}

// fakeEvents stops running during the stopAt-th dispatch.
type fakeEvents struct {
	stopAt     int
	dispatches int
	running    bool
}

func newFakeEvents(stopAt int) *fakeEvents {
	return &fakeEvents{stopAt: stopAt, running: true}
}

func (e *fakeEvents) Dispatch() {
	e.dispatches++
	if e.dispatches == e.stopAt {
		e.running = false
	}
}

func (e *fakeEvents) Running() bool { return e.running }

func writeShaders(t *testing.T) Config {
	t.Helper()

	dir := t.TempDir()
	write := func(name string, words int) string {
		buf := make([]byte, 4*words)
		binary.LittleEndian.PutUint32(buf, 0x07230203)
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, buf, 0o644))
		return path
	}

	cfg := DefaultConfig()
	cfg.VertexShader = write("vert.spv", 5)
	cfg.FragmentShader = write("frag.spv", 7)
	return cfg
}
