package apperr

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

const (
	resultSurfaceLost         common.VkResult = -1000000000
	resultNativeWindowInUse   common.VkResult = -1000000001
	resultIncompatibleDisplay common.VkResult = -1000003001
	resultValidationFailed    common.VkResult = -1000011001
)

var resultLines = map[common.VkResult]string{
	core1_0.VKSuccess:                   "VK_SUCCESS: command successfully completed",
	core1_0.VKNotReady:                  "VK_NOT_READY: a fence or query has not yet completed",
	core1_0.VKTimeout:                   "VK_TIMEOUT: a wait operation has not completed in the specified time",
	core1_0.VKEventSet:                  "VK_EVENT_SET: an event is signaled",
	core1_0.VKEventReset:                "VK_EVENT_RESET: an event is unsignaled",
	core1_0.VKIncomplete:                "VK_INCOMPLETE: a return array was too small for the result",
	khr_swapchain.VKSuboptimal:          "VK_SUBOPTIMAL_KHR: the swapchain no longer matches the surface exactly",
	core1_0.VKErrorOutOfHostMemory:      "VK_ERROR_OUT_OF_HOST_MEMORY: a host memory allocation has failed",
	core1_0.VKErrorOutOfDeviceMemory:    "VK_ERROR_OUT_OF_DEVICE_MEMORY: a device memory allocation has failed",
	core1_0.VKErrorInitializationFailed: "VK_ERROR_INITIALIZATION_FAILED: initialization of an object could not be completed",
	core1_0.VKErrorDeviceLost:           "VK_ERROR_DEVICE_LOST: the logical or physical device has been lost",
	core1_0.VKErrorMemoryMapFailed:      "VK_ERROR_MEMORY_MAP_FAILED: mapping of a memory object has failed",
	core1_0.VKErrorLayerNotPresent:      "VK_ERROR_LAYER_NOT_PRESENT: a requested layer is not present",
	core1_0.VKErrorExtensionNotPresent:  "VK_ERROR_EXTENSION_NOT_PRESENT: a requested extension is not supported",
	core1_0.VKErrorFeatureNotPresent:    "VK_ERROR_FEATURE_NOT_PRESENT: a requested feature is not supported",
	core1_0.VKErrorIncompatibleDriver:   "VK_ERROR_INCOMPATIBLE_DRIVER: the requested version of Vulkan is not supported by the driver",
	core1_0.VKErrorTooManyObjects:       "VK_ERROR_TOO_MANY_OBJECTS: too many objects of the type have already been created",
	core1_0.VKErrorFormatNotSupported:   "VK_ERROR_FORMAT_NOT_SUPPORTED: a requested format is not supported on this device",
	resultSurfaceLost:                   "VK_ERROR_SURFACE_LOST_KHR: the surface is no longer available",
	resultNativeWindowInUse:             "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR: the window is already in use by another API",
	khr_swapchain.VKErrorOutOfDate:      "VK_ERROR_OUT_OF_DATE_KHR: the surface has changed and the swapchain is no longer compatible",
	resultIncompatibleDisplay:           "VK_ERROR_INCOMPATIBLE_DISPLAY_KHR: the display used by the swapchain is incompatible",
	resultValidationFailed:              "VK_ERROR_VALIDATION_FAILED_EXT: a validation layer rejected the command",
}

// Describe maps a driver result code to a one-line message. The boolean is false
// for codes outside the known set, which are classified as application-level
// errors.
func Describe(res common.VkResult) (string, bool) {
	line, ok := resultLines[res]
	if !ok {
		return fmt.Sprintf("application-level error (unrecognized result %d)", int(res)), false
	}
	return line, true
}

// Report writes the decoded result line for a Vulkan-kind error to w. Other
// kinds write nothing. The only failure is an incomplete write.
func Report(w io.Writer, err error) error {
	var tagged *Error
	if !errors.As(err, &tagged) || tagged.Kind != KindVulkan {
		return nil
	}

	line := tagged.resultLine() + "\n"
	n, writeErr := io.WriteString(w, line)
	if writeErr != nil {
		return errors.Wrap(writeErr, "report result")
	}
	if n != len(line) {
		return errors.Wrap(io.ErrShortWrite, "report result")
	}
	return nil
}
