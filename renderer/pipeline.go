package renderer

import (
	"context"
	"log"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/triangle/shaders"
)

// createGraphicsPipeline builds the render pass, the empty layout and the fixed
// triangle pipeline. The shader files are mapped before anything is created, so
// a missing file leaves no GPU object behind.
func (r *Renderer) createGraphicsPipeline() (err error) {
	stages, err := shaders.LoadPair(context.Background(), r.cfg.VertexShader, r.cfg.FragmentShader)
	if err != nil {
		return errors.Wrap(err, "load shaders")
	}
	defer stages.Close()

	var scope cleanupStack
	defer scope.unwindOnError(&err)

	renderPass, err := r.driver.CreateRenderPass(r.renderPassInfo())
	if err != nil {
		return err
	}
	scope.push("render pass", func() { r.driver.DestroyRenderPass(renderPass) })

	pipelineLayout, err := r.driver.CreatePipelineLayout(core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return err
	}
	scope.push("pipeline layout", func() { r.driver.DestroyPipelineLayout(pipelineLayout) })

	vertShader, err := r.driver.CreateShaderModule(core1_0.ShaderModuleCreateInfo{
		Code: stages.Vertex.Words(),
	})
	if err != nil {
		return errors.Wrapf(err, "vertex shader %s", stages.Vertex.Path)
	}
	defer r.driver.DestroyShaderModule(vertShader)

	fragShader, err := r.driver.CreateShaderModule(core1_0.ShaderModuleCreateInfo{
		Code: stages.Fragment.Words(),
	})
	if err != nil {
		return errors.Wrapf(err, "fragment shader %s", stages.Fragment.Path)
	}
	defer r.driver.DestroyShaderModule(fragShader)

	start := hrtime.Now()
	pipeline, err := r.driver.CreateGraphicsPipeline(r.pipelineInfo(vertShader, fragShader, pipelineLayout, renderPass))
	if err != nil {
		return err
	}
	scope.push("pipeline", func() { r.driver.DestroyPipeline(pipeline) })
	log.Printf("created graphics pipeline in %s", hrtime.Since(start))

	r.renderPass = renderPass
	r.pipelineLayout = pipelineLayout
	r.pipeline = pipeline
	r.teardown.absorb(&scope)
	return nil
}

func (r *Renderer) renderPassInfo() core1_0.RenderPassCreateInfo {
	return core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         r.cfg.Format,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		// Hold the attachment write until the acquired image is actually ready.
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	}
}

// pipelineInfo describes the fixed-function state. There is no vertex input: the
// vertex shader derives all three positions from the vertex index.
func (r *Renderer) pipelineInfo(vertShader, fragShader core1_0.ShaderModule, layout core1_0.PipelineLayout, renderPass core1_0.RenderPass) core1_0.GraphicsPipelineCreateInfo {
	extent := r.cfg.Extent

	return core1_0.GraphicsPipelineCreateInfo{
		Stages: []core1_0.PipelineShaderStageCreateInfo{
			{
				Stage:  core1_0.StageVertex,
				Module: vertShader,
				Name:   "main",
			},
			{
				Stage:  core1_0.StageFragment,
				Module: fragShader,
				Name:   "main",
			},
		},
		VertexInputState: &core1_0.PipelineVertexInputStateCreateInfo{},
		InputAssemblyState: &core1_0.PipelineInputAssemblyStateCreateInfo{
			Topology:               core1_0.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: false,
		},
		ViewportState: &core1_0.PipelineViewportStateCreateInfo{
			Viewports: []core1_0.Viewport{
				{
					X:        0,
					Y:        0,
					Width:    float32(extent.Width),
					Height:   float32(extent.Height),
					MinDepth: 0,
					MaxDepth: 1,
				},
			},
			Scissors: []core1_0.Rect2D{
				{
					Offset: core1_0.Offset2D{X: 0, Y: 0},
					Extent: extent,
				},
			},
		},
		RasterizationState: &core1_0.PipelineRasterizationStateCreateInfo{
			DepthClampEnable:        false,
			RasterizerDiscardEnable: false,

			PolygonMode: core1_0.PolygonModeFill,
			CullMode:    core1_0.CullModeBack,
			FrontFace:   core1_0.FrontFaceClockwise,

			DepthBiasEnable: false,

			LineWidth: 1.0,
		},
		MultisampleState: &core1_0.PipelineMultisampleStateCreateInfo{
			SampleShadingEnable:  false,
			RasterizationSamples: core1_0.Samples1,
			MinSampleShading:     1.0,
		},
		ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{
			LogicOpEnabled: false,
			LogicOp:        core1_0.LogicOpCopy,

			BlendConstants: [4]float32{0, 0, 0, 0},
			Attachments: []core1_0.PipelineColorBlendAttachmentState{
				{
					BlendEnabled:   false,
					ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
				},
			},
		},
		Layout:            layout,
		RenderPass:        renderPass,
		Subpass:           0,
		BasePipelineIndex: -1,
	}
}

func (r *Renderer) createFramebuffers() (err error) {
	var scope cleanupStack
	defer scope.unwindOnError(&err)

	framebuffers := make([]core1_0.Framebuffer, 0, len(r.swapchain.Views))
	for idx, imageView := range r.swapchain.Views {
		framebuffer, err := r.driver.CreateFramebuffer(core1_0.FramebufferCreateInfo{
			RenderPass:  r.renderPass,
			Layers:      1,
			Attachments: []core1_0.ImageView{imageView},
			Width:       r.cfg.Extent.Width,
			Height:      r.cfg.Extent.Height,
		})
		if err != nil {
			return errors.Wrapf(err, "framebuffer %d of %d", idx, len(r.swapchain.Views))
		}

		framebuffers = append(framebuffers, framebuffer)
		scope.push("framebuffer", func() { r.driver.DestroyFramebuffer(framebuffer) })
	}

	r.swapchain.Framebuffers = framebuffers
	r.teardown.absorb(&scope)
	return nil
}
