package v4l2

// IsVideoMem2MemMPlaneSupported checks if the device supports memory-to-memory
// video processing via the multi-planar API (the M2M codec device class:
// decoders, encoders, and image processors all advertise this bit).
// Uses GetCapabilities so device-node capabilities are honored when the
// driver provides them.
func (c Capability) IsVideoMem2MemMPlaneSupported() bool {
	return c.GetCapabilities()&CapVideoMem2MemMPlane != 0
}

// IsVideoCaptureMPlaneSupported checks if the device node exposes the
// CAPTURE_MPLANE queue, honoring device-node capabilities.
func (c Capability) IsVideoCaptureMPlaneSupported() bool {
	return c.GetCapabilities()&CapVideoCaptureMPlane != 0
}

// IsVideoOutputMPlaneSupported checks if the device node exposes the
// OUTPUT_MPLANE queue, honoring device-node capabilities.
func (c Capability) IsVideoOutputMPlaneSupported() bool {
	return c.GetCapabilities()&CapVideoOutputMPlane != 0
}
