package renderer

import (
	"unsafe"

	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/triangle/apperr"
)

// Platform is what the window system has to supply before any GPU object can
// exist.
type Platform interface {
	InstanceExtensions() []string
	ProcAddr() unsafe.Pointer
	CreateSurface(instance core1_0.Instance, surfaceExtension khr_surface.ExtensionDriver) (khr_surface.Surface, error)
}

// Instance owns the Vulkan instance and the window surface. Renderers built from
// its Driver must be destroyed first.
type Instance struct {
	driver   *vulkanDriver
	teardown cleanupStack
}

func OpenInstance(platform Platform) (instance *Instance, err error) {
	globalDriver, err := core.CreateDriverFromProcAddr(platform.ProcAddr())
	if err != nil {
		return nil, apperr.VulkanCall("load vulkan", err)
	}

	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    "Hello Triangle",
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "No Engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_0,
	}

	extensions, res, err := globalDriver.AvailableExtensions()
	if err != nil {
		return nil, apperr.Vulkan("enumerate instance extensions", res, err)
	}

	for _, ext := range platform.InstanceExtensions() {
		if _, hasExt := extensions[ext]; !hasExt {
			return nil, apperr.App("missing instance extension %s", ext)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext)
	}

	instance = &Instance{driver: &vulkanDriver{}}
	defer instance.teardown.unwindOnError(&err)

	handle, res, err := globalDriver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return nil, apperr.Vulkan("create instance", res, err)
	}

	instanceDriver, err := globalDriver.BuildInstanceDriver(handle)
	if err != nil {
		return nil, apperr.VulkanCall("load instance functions", err)
	}
	instance.driver.instanceDriver = instanceDriver
	instance.teardown.push("instance", func() { instanceDriver.DestroyInstance(nil) })

	surfaceExtension := khr_surface.CreateExtensionDriverFromCoreDriver(instanceDriver)
	if surfaceExtension == nil {
		return nil, apperr.App("window system did not request %s", khr_surface.ExtensionName)
	}
	surface, err := platform.CreateSurface(handle, surfaceExtension)
	if err != nil {
		return nil, err
	}
	instance.driver.surfaceExtension = surfaceExtension
	instance.driver.surface = surface
	instance.teardown.push("surface", func() { surfaceExtension.DestroySurface(surface, nil) })

	return instance, nil
}

func (i *Instance) Driver() Driver {
	return i.driver
}

// Destroy releases the surface, then the instance.
func (i *Instance) Destroy() {
	i.teardown.unwind()
}
