// Package window is the surface provider: it connects to the display server
// through SDL, owns the one toplevel window the triangle is drawn into and turns
// close requests and the escape key into a stop signal.
package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"
	"github.com/vkngwrapper/triangle/apperr"
)

const videoDriverHint = "SDL_VIDEODRIVER"

type Config struct {
	Title  string
	Width  int
	Height int
	// VideoDriver selects the SDL backend; empty lets SDL choose.
	VideoDriver string
}

func DefaultConfig() Config {
	return Config{
		Title:       "Hello Triangle",
		Width:       640,
		Height:      480,
		VideoDriver: "wayland",
	}
}

type Window struct {
	window  *sdl.Window
	running bool
}

// Open connects to the display server and creates a shown, Vulkan-capable window.
func Open(cfg Config) (*Window, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apperr.App("window size %dx%d is empty", cfg.Width, cfg.Height)
	}

	if cfg.VideoDriver != "" {
		sdl.SetHint(videoDriverHint, cfg.VideoDriver)
	}

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, apperr.Display("init video", err)
	}

	window, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width), int32(cfg.Height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN)
	if err != nil {
		sdl.Quit()
		return nil, apperr.Display("create window", err)
	}

	return &Window{window: window, running: true}, nil
}

// InstanceExtensions lists the instance extensions surface creation needs.
func (w *Window) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// ProcAddr is the loader entry point SDL resolved for the window's Vulkan library.
func (w *Window) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

func (w *Window) CreateSurface(instance core1_0.Instance, surfaceExtension khr_surface.ExtensionDriver) (khr_surface.Surface, error) {
	surface, err := vkng_sdl2.CreateSurface(instance, surfaceExtension, w.window)
	if err != nil {
		return khr_surface.Surface{}, apperr.Display("create surface", err)
	}
	return surface, nil
}

// Dispatch drains every pending display event. A close request or a released
// escape key clears the running flag; nothing else writes it.
func (w *Window) Dispatch() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if stopRequested(event) {
			w.running = false
		}
	}
}

func (w *Window) Running() bool {
	return w.running
}

// Close destroys the window and disconnects, in reverse of Open.
func (w *Window) Close() error {
	var err error
	if w.window != nil {
		err = w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
	return errors.Wrap(err, "destroy window")
}

func stopRequested(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return true
	case *sdl.WindowEvent:
		return e.Event == sdl.WINDOWEVENT_CLOSE
	case *sdl.KeyboardEvent:
		return e.Type == sdl.KEYUP && e.Keysym.Sym == sdl.K_ESCAPE
	}
	return false
}
