package renderer

import (
	"log"

	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/triangle/apperr"
)

// Adapter is the selected physical device and what the builders need to know
// about it.
type Adapter struct {
	Handle      core1_0.PhysicalDevice
	Info        AdapterInfo
	QueueFamily int

	MinImageCount    int
	CurrentTransform khr_surface.SurfaceTransformFlags
}

// probeAdapter always selects the first enumerated adapter, then checks that it
// can drive the configured swapchain. It creates no GPU objects.
func probeAdapter(driver Driver, cfg Config) (Adapter, error) {
	adapters, err := driver.EnumerateAdapters()
	if err != nil {
		return Adapter{}, err
	}
	if len(adapters) == 0 {
		return Adapter{}, apperr.App("no Vulkan adapters found")
	}

	var selected Adapter
	for idx, handle := range adapters {
		info, err := driver.AdapterInfo(handle)
		if err != nil {
			return Adapter{}, err
		}
		log.Printf("adapter %d: %s (vendor %#x, device %#x, pipeline cache %s)", idx, info.Name, info.VendorID, info.DeviceID, info.CacheUUID)

		if idx == 0 {
			selected = Adapter{Handle: handle, Info: info}
		}
	}

	selected.QueueFamily, err = findGraphicsQueueFamily(driver.QueueFamilies(selected.Handle))
	if err != nil {
		return Adapter{}, err
	}

	hasExtension, err := hasSwapchainExtension(driver, selected.Handle)
	if err != nil {
		return Adapter{}, err
	}
	if !hasExtension {
		return Adapter{}, apperr.App("adapter %s does not support %s", selected.Info.Name, khr_swapchain.ExtensionName)
	}

	capabilities, err := checkSurface(driver, selected.Handle, selected.QueueFamily, cfg)
	if err != nil {
		return Adapter{}, err
	}
	selected.MinImageCount = capabilities.MinImageCount
	selected.CurrentTransform = capabilities.CurrentTransform

	return selected, nil
}

// findGraphicsQueueFamily returns the first family that can run graphics work.
func findGraphicsQueueFamily(families []QueueFamily) (int, error) {
	for idx, family := range families {
		if (family.Flags & core1_0.QueueGraphics) != 0 {
			return idx, nil
		}
	}
	return -1, apperr.App("no graphics-capable queue family among %d families", len(families))
}

func hasSwapchainExtension(driver Driver, adapter core1_0.PhysicalDevice) (bool, error) {
	extensions, err := driver.DeviceExtensions(adapter)
	if err != nil {
		return false, err
	}

	for _, name := range extensions {
		if name == khr_swapchain.ExtensionName {
			return true, nil
		}
	}
	return false, nil
}

// checkSurface validates the fixed extent, presentation support and the fixed
// format against what the surface reports.
func checkSurface(driver Driver, adapter core1_0.PhysicalDevice, queueFamily int, cfg Config) (*khr_surface.SurfaceCapabilities, error) {
	capabilities, err := driver.SurfaceCapabilities(adapter)
	if err != nil {
		return nil, err
	}

	width, height := cfg.Extent.Width, cfg.Extent.Height
	if width < capabilities.MinImageExtent.Width || width > capabilities.MaxImageExtent.Width {
		return nil, apperr.App("width %d outside surface range [%d, %d]", width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width)
	}
	if height < capabilities.MinImageExtent.Height || height > capabilities.MaxImageExtent.Height {
		return nil, apperr.App("height %d outside surface range [%d, %d]", height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height)
	}

	supported, err := driver.SurfaceSupport(adapter, queueFamily)
	if err != nil {
		return nil, err
	}
	if !supported {
		return nil, apperr.App("queue family %d cannot present to the surface", queueFamily)
	}

	formats, err := driver.SurfaceFormats(adapter)
	if err != nil {
		return nil, err
	}
	for _, format := range formats {
		if format.Format == cfg.Format && format.ColorSpace == cfg.ColorSpace {
			return capabilities, nil
		}
	}

	return nil, apperr.App("surface does not offer format %s with color space %s", cfg.Format, cfg.ColorSpace)
}
