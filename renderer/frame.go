package renderer

import (
	"log"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/triangle/apperr"
)

type FrameState int

const (
	StateIdle FrameState = iota
	StateAcquireImage
	StateSubmit
	StatePresent
	StateDrain
	StateTerminated
)

func (s FrameState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquireImage:
		return "acquire-image"
	case StateSubmit:
		return "submit"
	case StatePresent:
		return "present"
	case StateDrain:
		return "drain"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// Events is the window-system side of the loop. Dispatch handles everything
// pending and may clear Running; nothing else does.
type Events interface {
	Dispatch()
	Running() bool
}

// createSyncObjects makes the semaphore pair shared by every frame, plus a fence
// that holds the host back until the previous submission has retired, so at
// most one frame is ever in flight.
func (r *Renderer) createSyncObjects() (err error) {
	var scope cleanupStack
	defer scope.unwindOnError(&err)

	imageAvailable, err := r.driver.CreateSemaphore()
	if err != nil {
		return err
	}
	scope.push("image available semaphore", func() { r.driver.DestroySemaphore(imageAvailable) })

	renderFinished, err := r.driver.CreateSemaphore()
	if err != nil {
		return err
	}
	scope.push("render finished semaphore", func() { r.driver.DestroySemaphore(renderFinished) })

	inFlight, err := r.driver.CreateFence(true)
	if err != nil {
		return err
	}
	scope.push("in flight fence", func() { r.driver.DestroyFence(inFlight) })

	r.imageAvailable = imageAvailable
	r.renderFinished = renderFinished
	r.inFlight = inFlight
	r.teardown.absorb(&scope)
	return nil
}

func (r *Renderer) State() FrameState {
	return r.state
}

// Run presents frames until events stops running. The flag is checked once per
// iteration before dispatch, so a stop seen during dispatch still lets that
// iteration's frame through. A clean exit waits for the device to go idle; a
// failing frame returns at once, since a faulted device may never become idle.
func (r *Renderer) Run(events Events) error {
	r.state = StateIdle
	start := hrtime.Now()
	frames := 0

	for events.Running() {
		events.Dispatch()

		err := r.drawFrame()
		if err != nil {
			return errors.Wrapf(err, "frame %d", frames)
		}
		frames++
	}

	r.state = StateDrain
	err := r.driver.DeviceWaitIdle()
	if err != nil {
		return err
	}
	r.state = StateTerminated

	if frames > 0 {
		elapsed := hrtime.Since(start)
		log.Printf("presented %d frames in %s (%s per frame)", frames, elapsed, elapsed/time.Duration(frames))
	}
	return nil
}

func (r *Renderer) drawFrame() error {
	r.state = StateAcquireImage
	err := r.driver.WaitForFence(r.inFlight, common.NoTimeout)
	if err != nil {
		return err
	}

	err = r.driver.ResetFence(r.inFlight)
	if err != nil {
		return err
	}

	imageIndex, err := r.driver.AcquireNextImage(r.swapchain.Handle, common.NoTimeout, r.imageAvailable)
	if err != nil {
		return err
	}
	if imageIndex < 0 || imageIndex >= len(r.swapchain.CommandBuffers) {
		return apperr.App("acquired image %d outside swapchain of %d", imageIndex, len(r.swapchain.CommandBuffers))
	}

	r.state = StateSubmit
	err = r.driver.QueueSubmit(r.queue, r.inFlight, core1_0.SubmitInfo{
		WaitSemaphores:   []core1_0.Semaphore{r.imageAvailable},
		WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
		CommandBuffers:   []core1_0.CommandBuffer{r.swapchain.CommandBuffers[imageIndex]},
		SignalSemaphores: []core1_0.Semaphore{r.renderFinished},
	})
	if err != nil {
		return err
	}

	r.state = StatePresent
	err = r.driver.QueuePresent(r.queue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{r.renderFinished},
		Swapchains:     []khr_swapchain.Swapchain{r.swapchain.Handle},
		ImageIndices:   []int{imageIndex},
	})
	if err != nil {
		return err
	}

	r.state = StateIdle
	return nil
}
