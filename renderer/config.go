package renderer

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/triangle/apperr"
)

type Config struct {
	// Extent is the fixed swapchain size. It must lie inside the surface's
	// reported bounds; there is no clamping.
	Extent     core1_0.Extent2D
	Format     core1_0.Format
	ColorSpace khr_surface.ColorSpace

	VertexShader   string
	FragmentShader string
}

func DefaultConfig() Config {
	return Config{
		Extent:         core1_0.Extent2D{Width: 640, Height: 480},
		Format:         core1_0.FormatB8G8R8A8SRGB,
		ColorSpace:     khr_surface.ColorSpaceSRGBNonlinear,
		VertexShader:   "vert.spv",
		FragmentShader: "frag.spv",
	}
}

func (c Config) Validate() error {
	if c.Extent.Width <= 0 || c.Extent.Height <= 0 {
		return apperr.App("target extent %dx%d is empty", c.Extent.Width, c.Extent.Height)
	}
	if c.VertexShader == "" || c.FragmentShader == "" {
		return apperr.App("both shader paths are required")
	}
	return nil
}
