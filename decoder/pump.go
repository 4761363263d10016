package decoder

import (
	"fmt"

	"github.com/hwcodec/mcil/codecclient"
	"github.com/hwcodec/mcil/pump"
	"github.com/hwcodec/mcil/v4l2"
)

// postDevicePoll arms the poll thread's sole recurring task (§4.3,
// §4.4.4 "schedule another device_poll_task").
func (d *Decoder) postDevicePoll(pollDevice bool) {
	d.awaitingPollWake.Store(true)
	pump.PostDevicePoll(d.pollThread, d.handle, pollDevice, d.onPollWake)
}

func (d *Decoder) onPollWake(eventPending bool, err error) {
	d.awaitingPollWake.Store(false)
	if err != nil {
		d.fail(codecclient.ErrorPlatformFailure, fmt.Errorf("decoder: poll: %w", err))
		return
	}
	if eventPending {
		d.eventPending.Store(true)
	}
	d.client.ScheduleDecodeBufferTaskIfNeeded()
}

// Pump runs one wake iteration: dequeue pass, enqueue pass, interrupt clear,
// poll rearm decision, and scheduling the next device_poll_task (§4.4.4).
// The embedding application calls this once per ScheduleDecodeBufferTaskIfNeeded
// notification, on the engine thread.
func (d *Decoder) Pump() error {
	if d.state.Load() == StateError {
		return nil
	}

	eventPending := d.eventPending.Swap(false)
	if eventPending {
		if changed, err := d.drainEvents(); err != nil {
			d.fail(codecclient.ErrorPlatformFailure, err)
			return err
		} else if changed {
			return nil // resolution change owns the poll thread until it restarts it
		}
	}

	// Initial stream start: the first time the input queue is streaming and
	// no SOURCE_CHANGE has fired yet, G_FMT succeeding on the output queue
	// is itself the resolution-change trigger (§4.4.5).
	if !d.codedSizeKnown && d.input.Streaming() {
		if _, err := v4l2GetPixFormatMPlane(d.handle.Fd(), v4l2.BufTypeVideoCaptureMPlane); err == nil {
			if err := d.startResolutionChange(); err != nil {
				d.fail(codecclient.ErrorPlatformFailure, err)
				return err
			}
			return nil
		}
	}

	if err := d.dequeuePass(); err != nil {
		d.fail(codecclient.ErrorPlatformFailure, err)
		return err
	}
	if err := d.enqueuePass(); err != nil {
		d.fail(codecclient.ErrorPlatformFailure, err)
		return err
	}

	if err := d.handle.ClearDevicePollInterrupt(); err != nil {
		d.fail(codecclient.ErrorPlatformFailure, err)
		return err
	}

	armPoll := d.input.QueuedCount() > 0 || d.output.QueuedCount() > 0
	d.postDevicePoll(armPoll)
	return nil
}

// drainEvents dequeues every pending V4L2 event and, on a SOURCE_CHANGE
// resolution event, starts a resolution change. Returns changed=true if a
// resolution change was initiated (the pump iteration should stop — the
// resolution change owns the poll thread lifecycle itself).
func (d *Decoder) drainEvents() (changed bool, err error) {
	for {
		ev, err := v4l2DequeueEvent(d.handle.Fd())
		if err != nil {
			return changed, nil // EAGAIN once the event queue is drained
		}
		if ev.GetType() == v4l2.EventSourceChange {
			data := ev.GetSrcChangeData()
			if data.Changes&v4l2.EventSrcChResolution != 0 {
				if err := d.startResolutionChange(); err != nil {
					return changed, err
				}
				changed = true
			}
		}
		if ev.GetPending() == 0 {
			return changed, nil
		}
	}
}

// enqueuePass implements §4.4.4's enqueue pass.
func (d *Decoder) enqueuePass() error {
	for len(d.ready) > 0 {
		head := d.ready[0]

		if head.isFlush {
			if d.input.QueuedCount() > 0 {
				break // wait for in-flight input buffers to drain first
			}
			if !d.codedSizeKnown || !d.input.Streaming() {
				d.ready = d.ready[1:]
				d.client.NotifyFlushDone()
				continue
			}
			if d.decoderCmdSupported {
				if err := v4l2DecoderCmd(d.handle.Fd(), v4l2.DecoderCmdStop); err != nil {
					return fmt.Errorf("decoder cmd stop: %w", err)
				}
				d.flushAwaitingLastOutputBuffer = true
			}
			d.ready = d.ready[1:]
			continue
		}

		wasEmpty := d.input.QueuedCount() == 0
		if err := head.ref.QueueMMap(); err != nil {
			return fmt.Errorf("enqueue input buffer: %w", err)
		}
		d.ready = d.ready[1:]
		if wasEmpty {
			if err := d.handle.SetDevicePollInterrupt(); err != nil {
				return err
			}
			if err := d.input.StreamOn(); err != nil {
				return err
			}
		}
	}

	outputWasEmpty := d.output.QueuedCount() == 0
	queuedAny := false
	for d.input.Streaming() {
		ref, ok := d.output.GetFreeBuffer()
		if !ok {
			break
		}
		if err := ref.QueueMMap(); err != nil {
			return fmt.Errorf("enqueue output buffer: %w", err)
		}
		queuedAny = true
	}
	if outputWasEmpty && queuedAny {
		if err := d.handle.SetDevicePollInterrupt(); err != nil {
			return err
		}
		if err := d.output.StreamOn(); err != nil {
			return err
		}
	}
	return nil
}

// dequeuePass implements §4.4.4's dequeue pass.
func (d *Decoder) dequeuePass() error {
	for {
		ref, err := d.input.Dequeue()
		if err != nil {
			return fmt.Errorf("dequeue input: %w", err)
		}
		if ref == nil {
			break
		}
		ref.Release()
	}

	hasOutput := false
	for {
		ref, err := d.output.Dequeue()
		if err != nil {
			return fmt.Errorf("dequeue output: %w", err)
		}
		if ref == nil {
			break
		}
		hasOutput = true
		d.fpsFrames++

		if ref.BytesUsed(0) > 0 {
			d.client.SendBufferToClient(ref.Index(), ref.Timestamp().Sec, ref)
		} else {
			ref.Release()
		}

		if ref.IsLast() && d.flushAwaitingLastOutputBuffer {
			if err := v4l2DecoderCmd(d.handle.Fd(), v4l2.DecoderCmdStart); err != nil {
				return fmt.Errorf("decoder cmd start: %w", err)
			}
			d.flushAwaitingLastOutputBuffer = false
		}
	}
	d.client.NotifyDecodeBufferTask(false, hasOutput)

	d.notifyFlushDoneIfNeeded()
	return nil
}

func (d *Decoder) notifyFlushDoneIfNeeded() {
	if len(d.ready) == 0 && !d.flushAwaitingLastOutputBuffer && d.input.QueuedCount() == 0 {
		d.client.NotifyFlushDoneIfNeeded()
	}
}

// fail transitions the decoder to StateError and reports kind to the client
// (§4.4.7). Subsequent Pump/DecodeBuffer calls short-circuit.
func (d *Decoder) fail(kind codecclient.ErrorKind, err error) {
	if d.state.Load() == StateError {
		return
	}
	d.state.Store(StateError)
	d.client.NotifyDecoderError(kind)
	_ = err
}
