package decoder

// Destroy tears the decoder down: stops the poll thread, deallocates both
// queues, closes the device handle, and releases the broker-held resource
// token. Errors during teardown are discarded, never returned — teardown is
// always best-effort (§7 Propagation policy).
func (d *Decoder) Destroy() {
	d.state.Store(StateDestroying)

	if d.pollThread.Running() {
		d.handle.SetDevicePollInterrupt()
		d.pollThread.Stop()
	}

	if d.input != nil {
		d.input.StreamOff()
		d.input.Deallocate()
	}
	if d.output != nil {
		d.output.StreamOff()
		d.output.Deallocate()
	}
	if d.handle != nil {
		d.handle.Close()
	}
	if d.broker != nil {
		d.broker.Release(d.token, d.portIndex)
	}
}
