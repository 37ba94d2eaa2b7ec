// Command hello_triangle draws one triangle into a Wayland window until the
// window is closed or escape is released. It reads vert.spv and frag.spv from the
// working directory; the exit status is the bit of the failing subsystem.
package main

//go:generate glslc shaders/shader.vert -o vert.spv
//go:generate glslc shaders/shader.frag -o frag.spv

import (
	"log"
	"os"
	"runtime"

	"github.com/vkngwrapper/triangle/apperr"
	"github.com/vkngwrapper/triangle/renderer"
	"github.com/vkngwrapper/triangle/window"
)

func run() error {
	win, err := window.Open(window.DefaultConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := win.Close(); err != nil {
			log.Printf("%+v", err)
		}
	}()

	instance, err := renderer.OpenInstance(win)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	r, err := renderer.New(instance.Driver(), renderer.DefaultConfig())
	if err != nil {
		return err
	}
	defer r.Destroy()

	log.Printf("drawing on %s with %d swapchain images", r.Adapter().Info.Name, r.ImageCount())
	return r.Run(win)
}

func main() {
	runtime.LockOSThread()

	err := run()
	if err != nil {
		log.Printf("%+v\n", err)
		if reportErr := apperr.Report(os.Stdout, err); reportErr != nil {
			log.Println(reportErr)
		}
	}
	os.Exit(apperr.ExitCode(err))
}
