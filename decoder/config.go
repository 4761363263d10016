package decoder

import "github.com/hwcodec/mcil/device"

// OutputMode names how output picture buffers are provided to the
// decoder's OUTPUT (CAPTURE_MPLANE) queue. The decoder does not read
// Config.OutputMode: its output buffers are always requested and queued as
// MMAP, whichever mode is set, and no import path exists.
type OutputMode int

const (
	// OutputModeAllocate has the decoder request buffers itself (MMAP).
	OutputModeAllocate OutputMode = iota
	// OutputModeImport has the client import externally allocated buffers
	// (e.g. dmabuf-backed textures) via userptr/dmabuf.
	OutputModeImport
)

// Config is the per-instance configuration the caller supplies to
// Initialize (§4.4.1 DecoderConfig).
type Config struct {
	FrameWidth  uint32
	FrameHeight uint32
	Profile     device.CodecProfile
	OutputMode  OutputMode

	// ProbeTable identifies candidate decoder device paths; callers
	// ordinarily pass device.DefaultProbeTable().
	ProbeTable device.ProbeTable

	// PortIndex is not read by Initialize: the port index the decoder
	// records alongside its resource token is the one the broker's Acquire
	// returns.
	PortIndex int
}

const (
	inputBufferCount        = 8
	inputBufferSize1080p    = 1 << 20 // 1 MiB
	inputBufferSize4K       = 4 << 20 // 4 MiB
	fourKWidthThreshold     = 3840
	fourKHeightThreshold    = 2160
	outputBufferExtras      = 5
	flushBufferID     int64 = -2
)
