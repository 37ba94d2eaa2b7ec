package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/triangle/apperr"
)

func (r *Renderer) createLogicalDevice() error {
	err := r.driver.CreateDevice(r.adapter.Handle, core1_0.DeviceCreateInfo{
		QueueCreateInfos: []core1_0.DeviceQueueCreateInfo{
			{
				QueueFamilyIndex: r.queueFamily,
				QueuePriorities:  []float32{1.0},
			},
		},
		EnabledExtensionNames: []string{khr_swapchain.ExtensionName},
	})
	if err != nil {
		return err
	}
	r.teardown.push("device", r.driver.DestroyDevice)

	r.queue = r.driver.GetQueue(r.queueFamily, 0)
	return nil
}

func (r *Renderer) createSwapchain() (err error) {
	var scope cleanupStack
	defer scope.unwindOnError(&err)

	swapchain, err := r.driver.CreateSwapchain(khr_swapchain.SwapchainCreateInfo{
		MinImageCount:    r.adapter.MinImageCount,
		ImageFormat:      r.cfg.Format,
		ImageColorSpace:  r.cfg.ColorSpace,
		ImageExtent:      r.cfg.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		// One queue family does both graphics and present.
		ImageSharingMode: core1_0.SharingModeExclusive,

		PreTransform:   r.adapter.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    khr_surface.PresentModeFIFO,
		Clipped:        true,
	})
	if err != nil {
		return err
	}
	scope.push("swapchain", func() { r.driver.DestroySwapchain(swapchain) })

	images, err := r.driver.SwapchainImages(swapchain)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return apperr.App("swapchain has no images")
	}

	r.swapchain.Handle = swapchain
	r.swapchain.Images = images
	r.teardown.absorb(&scope)
	return nil
}

func (r *Renderer) createImageViews() (err error) {
	var scope cleanupStack
	defer scope.unwindOnError(&err)

	views := make([]core1_0.ImageView, 0, len(r.swapchain.Images))
	for idx, image := range r.swapchain.Images {
		// The zero component mapping is the identity swizzle.
		view, err := r.driver.CreateImageView(core1_0.ImageViewCreateInfo{
			Image:    image,
			ViewType: core1_0.ImageViewType2D,
			Format:   r.cfg.Format,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			return errors.Wrapf(err, "image view %d of %d", idx, len(r.swapchain.Images))
		}

		views = append(views, view)
		scope.push("image view", func() { r.driver.DestroyImageView(view) })
	}

	r.swapchain.Views = views
	r.teardown.absorb(&scope)
	return nil
}
