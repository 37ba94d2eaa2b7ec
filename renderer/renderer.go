// Package renderer acquires a Vulkan device, swapchain and fixed triangle
// pipeline for one surface and presents pre-recorded frames until told to stop.
//
// Every object is created in strict dependency order and recorded on a cleanup
// stack. A failing step releases what it created itself before returning, and
// New releases everything earlier steps created, so a failed build leaks nothing.
// Destroy tears a successful build down in exact reverse order.
package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// Swapchain is the presentable image set and everything kept per image. Once
// built, all four slices have the same length.
type Swapchain struct {
	Handle         khr_swapchain.Swapchain
	Images         []core1_0.Image
	Views          []core1_0.ImageView
	Framebuffers   []core1_0.Framebuffer
	CommandBuffers []core1_0.CommandBuffer
}

type Renderer struct {
	driver Driver
	cfg    Config

	adapter     Adapter
	queueFamily int
	queue       core1_0.Queue

	swapchain Swapchain

	renderPass     core1_0.RenderPass
	pipelineLayout core1_0.PipelineLayout
	pipeline       core1_0.Pipeline
	commandPool    core1_0.CommandPool

	imageAvailable core1_0.Semaphore
	renderFinished core1_0.Semaphore
	inFlight       core1_0.Fence
	state          FrameState

	teardown cleanupStack
}

// New probes the first adapter and builds everything the frame loop needs.
func New(driver Driver, cfg Config) (r *Renderer, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r = &Renderer{driver: driver, cfg: cfg}
	defer r.teardown.unwindOnError(&err)

	r.adapter, err = probeAdapter(driver, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "probe adapter")
	}
	r.queueFamily = r.adapter.QueueFamily

	err = r.createLogicalDevice()
	if err != nil {
		return nil, err
	}

	err = r.createSwapchain()
	if err != nil {
		return nil, err
	}

	err = r.createImageViews()
	if err != nil {
		return nil, err
	}

	err = r.createGraphicsPipeline()
	if err != nil {
		return nil, err
	}

	err = r.createFramebuffers()
	if err != nil {
		return nil, err
	}

	err = r.createCommandBuffers()
	if err != nil {
		return nil, err
	}

	err = r.createSyncObjects()
	if err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) Adapter() Adapter {
	return r.adapter
}

func (r *Renderer) ImageCount() int {
	return len(r.swapchain.Images)
}

// Destroy releases every object in reverse creation order. The device must be
// idle; Run guarantees that on a clean exit.
func (r *Renderer) Destroy() {
	r.teardown.unwind()
	r.swapchain = Swapchain{}
}
