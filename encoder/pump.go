package encoder

import (
	"fmt"

	"github.com/hwcodec/mcil/codecclient"
	"github.com/hwcodec/mcil/pump"
	"github.com/hwcodec/mcil/v4l2"
)

// postDevicePoll arms the poll thread's sole recurring task (§4.3,
// §4.5.2 "schedule another device_poll_task").
func (e *Encoder) postDevicePoll(pollDevice bool) {
	e.awaitingPollWake.Store(true)
	pump.PostDevicePoll(e.pollThread, e.handle, pollDevice, e.onPollWake)
}

func (e *Encoder) onPollWake(eventPending bool, err error) {
	e.awaitingPollWake.Store(false)
	if err != nil {
		e.fail(codecclient.ErrorPlatformFailure, fmt.Errorf("encoder: poll: %w", err))
		return
	}
	// The encoder never subscribes to V4L2 events (no SOURCE_CHANGE
	// analogue on the encode side), so eventPending carries nothing to act
	// on here beyond the wake itself.
	e.client.NotifyEncodeBufferTask()
}

// Pump runs one wake iteration: dequeue pass, enqueue pass, interrupt
// clear, poll rearm decision (§4.5.2). The embedding application calls this
// once per NotifyEncodeBufferTask notification, on the engine thread;
// EncodeFrame also calls it after queuing each frame.
func (e *Encoder) Pump() error {
	if e.state.Load() == StateError {
		return nil
	}

	if err := e.dequeuePass(); err != nil {
		e.fail(codecclient.ErrorPlatformFailure, err)
		return err
	}
	if err := e.enqueuePass(); err != nil {
		e.fail(codecclient.ErrorPlatformFailure, err)
		return err
	}

	if e.handle != nil {
		if err := e.handle.ClearDevicePollInterrupt(); err != nil {
			e.fail(codecclient.ErrorPlatformFailure, err)
			return err
		}
		armPoll := e.input.QueuedCount() > 0 || e.output.QueuedCount() > 0
		e.postDevicePoll(armPoll)
	}
	return nil
}

// ensureInputBuffers lazily allocates the OUTPUT_MPLANE buffers on the
// first real frame, per §4.5.1 step 9's "input buffers allocated lazily."
func (e *Encoder) ensureInputBuffers() error {
	if e.inputBuffersReady {
		return nil
	}
	n, err := e.input.Allocate(inputBufferCountFor(e.cfgForLazyAlloc), v4l2.StreamTypeUserPtr)
	if err != nil {
		return fmt.Errorf("allocate input buffers: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("driver allocated zero input buffers")
	}
	if err := e.client.CreateInputBuffers(int(n)); err != nil {
		return fmt.Errorf("client create input buffers: %w", err)
	}
	e.inputBuffersReady = true
	return nil
}

func inputBufferCountFor(cfg Config) uint32 {
	if cfg.Width >= fourKWidthThreshold || cfg.Height >= fourKHeightThreshold {
		return inputBufferCount4K
	}
	return inputBufferCount1080p
}

// enqueuePass implements §4.5.2's encode_frame enqueue half: pull pending
// frames off the ready queue, set the force-keyframe control, attach the
// frame's planes as userptrs (frame data is never copied into mmap'd input
// memory), set the buffer timestamp to zero, and queue; separately top up the output queue with every free bitstream buffer.
func (e *Encoder) enqueuePass() error {
	for len(e.ready) > 0 {
		head := e.ready[0]

		if head.isFlush {
			if e.input.QueuedCount() > 0 {
				break // wait for in-flight input buffers to drain first
			}
			if e.cmdSupported && e.input.Streaming() {
				if err := v4l2EncoderCmd(e.handle.Fd(), v4l2.EncoderCmdStop); err != nil {
					return fmt.Errorf("encoder cmd stop: %w", err)
				}
				e.state.Store(StateFlushing)
			}
			e.ready = e.ready[1:]
			e.client.NotifyFlushIfNeeded(true)
			continue
		}

		if err := e.ensureInputBuffers(); err != nil {
			return err
		}

		ref, ok := e.input.GetFreeBuffer()
		if !ok {
			break // stalled until the next dequeue pass frees one up
		}

		if head.forceKeyframe {
			if err := v4l2SetControlValue(e.handle.Fd(), v4l2.CtrlMPEGVideoForceKeyFrame, 1); err != nil {
				ref.Drop()
				return fmt.Errorf("force keyframe: %w", err)
			}
		}

		for p := 0; p < ref.PlaneCount() && p < len(head.frame.Planes); p++ {
			ref.SetUserPtr(p, head.frame.Data[p])
			ref.SetBytesUsed(p, head.frame.Planes[p].Size)
		}
		ref.AttachFrame(head.frame)
		ref.SetTimestamp(0, 0)

		wasEmpty := e.input.QueuedCount() == 0
		index := ref.Index()
		if err := ref.QueueUserPtr(); err != nil {
			return fmt.Errorf("enqueue input buffer: %w", err)
		}
		e.client.EnqueueInputBuffer(index)
		e.ready = e.ready[1:]
		e.state.Store(StateEncoding)

		if wasEmpty {
			if err := e.handle.SetDevicePollInterrupt(); err != nil {
				return err
			}
			if err := e.input.StreamOn(); err != nil {
				return err
			}
		}
	}

	outputWasEmpty := e.output.QueuedCount() == 0
	queuedAny := false
	for {
		ref, ok := e.output.GetFreeBuffer()
		if !ok {
			break
		}
		if err := ref.QueueMMap(); err != nil {
			return fmt.Errorf("enqueue output buffer: %w", err)
		}
		queuedAny = true
	}
	if outputWasEmpty && queuedAny {
		if err := e.handle.SetDevicePollInterrupt(); err != nil {
			return err
		}
		if err := e.output.StreamOn(); err != nil {
			return err
		}
	}
	return nil
}

// dequeuePass implements §4.5.2's dequeue half: recycled input buffers are
// reported back to the client by index; bitstream buffers are delivered via
// BitstreamBufferReady/BitstreamBytesReady and counted toward the fps
// tracker, then PumpBitstreamBuffers gives the client a chance to drain
// anything it is holding.
func (e *Encoder) dequeuePass() error {
	for {
		ref, err := e.input.Dequeue()
		if err != nil {
			return fmt.Errorf("dequeue input: %w", err)
		}
		if ref == nil {
			break
		}
		e.client.DequeueInputBuffer(ref.Index())
		ref.Release()
	}

	for {
		ref, err := e.output.Dequeue()
		if err != nil {
			return fmt.Errorf("dequeue output: %w", err)
		}
		if ref == nil {
			break
		}
		e.fpsFrames++

		if ref.BytesUsed(0) > 0 && !ref.HasError() {
			e.client.BitstreamBufferReady(ref)
		} else {
			ref.Release()
		}

		if ref.IsLast() && e.state.Load() == StateFlushing {
			if e.cmdSupported {
				if err := v4l2EncoderCmd(e.handle.Fd(), v4l2.EncoderCmdStart); err != nil {
					return fmt.Errorf("encoder cmd start: %w", err)
				}
			}
			e.state.Store(StateInitialized)
			e.client.NotifyFlushIfNeeded(false)
		}
	}
	e.client.PumpBitstreamBuffers()
	return nil
}
