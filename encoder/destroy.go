package encoder

// Destroy tears the encoder down: stops the poll thread, deallocates both
// queues, closes the device handle, and releases the broker-held resource
// token. Errors during teardown are discarded, never returned — teardown is
// always best-effort (§4.5.4, §7 Propagation policy).
func (e *Encoder) Destroy() {
	e.state.Store(StateDestroying)

	if e.client != nil {
		e.client.StopDevicePoll()
	}

	if e.pollThread.Running() {
		if e.handle != nil {
			e.handle.SetDevicePollInterrupt()
		}
		e.pollThread.Stop()
	}

	if e.input != nil {
		e.input.StreamOff()
		e.input.Deallocate()
	}
	if e.output != nil {
		e.output.StreamOff()
		e.output.Deallocate()
	}
	if e.client != nil && e.inputBuffersReady {
		e.client.DestroyInputBuffers()
	}
	if e.handle != nil {
		e.handle.Close()
	}
	if e.broker != nil {
		e.broker.Release(e.token, e.portIndex)
	}
}
