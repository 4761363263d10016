package decoder

import (
	"fmt"

	"github.com/hwcodec/mcil/v4l2"
)

// ResetDecodingBuffers implements §4.4.6's reset_decoding_buffers: stops the
// poll thread and the output queue, then drains any pending SOURCE_CHANGE
// event before deciding whether a resolution change must run first.
func (d *Decoder) ResetDecodingBuffers() error {
	d.state.Store(StateResetting)
	d.pollThread.Stop()

	if err := d.output.StreamOff(); err != nil {
		return fmt.Errorf("reset: stream off output: %w", err)
	}

	hadSourceChange := false
	for {
		ev, err := v4l2DequeueEvent(d.handle.Fd())
		if err != nil {
			break
		}
		if ev.GetType() == v4l2.EventSourceChange {
			data := ev.GetSrcChangeData()
			if data.Changes&v4l2.EventSrcChResolution != 0 {
				hadSourceChange = true
			}
		}
		if ev.GetPending() == 0 {
			break
		}
	}

	if hadSourceChange {
		d.resetPending = true
		return d.startResolutionChange()
	}

	if err := d.input.StreamOff(); err != nil {
		return fmt.Errorf("reset: stream off input: %w", err)
	}

	d.current = nil
	d.currentUsed = 0
	d.ready = nil
	d.flushAwaitingLastOutputBuffer = false

	d.canNotifyResetDone()
	return nil
}

// canNotifyResetDone restarts the poll thread if it is not already running
// (§4.4.6). Called directly when no pending resolution change deferred
// completion.
func (d *Decoder) canNotifyResetDone() {
	if !d.pollThread.Running() {
		d.pollThread.Start()
		d.postDevicePoll(false)
	}
	d.resetPending = false
	d.state.Store(StateDecoding)
	d.client.NotifyResetDone()
}
