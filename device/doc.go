// Package device implements the Device Handle: opening a V4L2 M2M node by
// kind and pixel format, ioctl dispatch with automatic EINTR retry, the
// poll-interrupt eventfd, mmap/munmap, DMABUF export, and decode/encode
// profile enumeration.
//
// # Overview
//
// A Handle replaces go4vl's single-planar, capture-only Device: instead of
// opening one fixed path and streaming one queue, it probes a table of
// candidate device nodes (decoder, encoder, image processor, JPEG decoder)
// looking for one whose OUTPUT_MPLANE or CAPTURE_MPLANE format list
// contains a requested pixel format.
//
// # Basic Usage
//
//	h, err := device.Open(device.KindDecoder, v4l2.BufTypeVideoOutputMPlane,
//	    v4l2.PixelFmtH264, device.DefaultProbeTable())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
// # Thread Safety
//
// A Handle's ioctl/mmap/munmap/dmabuf methods are not safe for concurrent
// use; Poll and SetDevicePollInterrupt/ClearDevicePollInterrupt are designed
// to be called from two different goroutines (engine thread vs. poll
// thread) the way §4.3 requires.
package device
