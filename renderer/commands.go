package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/triangle/apperr"
)

// createCommandBuffers records, once, the whole draw for every swapchain image.
// The frame loop only ever submits these buffers.
func (r *Renderer) createCommandBuffers() (err error) {
	var scope cleanupStack
	defer scope.unwindOnError(&err)

	pool, err := r.driver.CreateCommandPool(core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: r.queueFamily,
	})
	if err != nil {
		return err
	}
	scope.push("command pool", func() { r.driver.DestroyCommandPool(pool) })

	imageCount := len(r.swapchain.Framebuffers)
	buffers, err := r.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        pool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: imageCount,
	})
	if err != nil {
		return err
	}
	scope.push("command buffers", func() { r.driver.FreeCommandBuffers(buffers) })

	if len(buffers) != imageCount {
		return apperr.Libc("allocated %d command buffers, wanted %d", len(buffers), imageCount)
	}

	for bufferIdx, buffer := range buffers {
		err = r.recordDraw(buffer, r.swapchain.Framebuffers[bufferIdx])
		if err != nil {
			return errors.Wrapf(err, "command buffer %d of %d", bufferIdx, imageCount)
		}
	}

	r.commandPool = pool
	r.swapchain.CommandBuffers = buffers
	r.teardown.absorb(&scope)
	return nil
}

func (r *Renderer) recordDraw(buffer core1_0.CommandBuffer, framebuffer core1_0.Framebuffer) error {
	// The same buffer is resubmitted every time its image comes round again.
	err := r.driver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageSimultaneousUse,
	})
	if err != nil {
		return err
	}

	err = r.driver.CmdBeginRenderPass(buffer, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  r.renderPass,
			Framebuffer: framebuffer,
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: r.cfg.Extent,
			},
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat{0, 0, 0, 0},
			},
		})
	if err != nil {
		return err
	}

	r.driver.CmdBindPipeline(buffer, core1_0.PipelineBindPointGraphics, r.pipeline)
	r.driver.CmdDraw(buffer, 3, 1, 0, 0)
	r.driver.CmdEndRenderPass(buffer)

	return r.driver.EndCommandBuffer(buffer)
}
