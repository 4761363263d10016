package encoder

import (
	"github.com/hwcodec/mcil/device"
	"github.com/hwcodec/mcil/iobuf"
)

// Config is the per-instance configuration the caller supplies to Initialize
// (§4.5.1 EncoderConfig).
type Config struct {
	Width       uint32
	Height      uint32
	FrameRate   uint32
	BitRate     uint32
	PixelFormat iobuf.PixelFormat
	GOPLength   uint32
	Profile     device.CodecProfile

	// H264OutputLevel bounds the encode level negotiated for H.264 streams;
	// ignored for other codecs. Zero defers to the client's
	// GetH264LevelLimit; if that is also zero, the level control is not set
	// and the driver keeps its own level.
	H264OutputLevel uint32

	// OutputBufferSize is the capacity requested for each bitstream output
	// buffer; the driver may adjust it, and the adjusted size becomes
	// canonical (§4.5.1 step 6).
	OutputBufferSize uint32

	// ProbeTable identifies candidate encoder device paths; callers
	// ordinarily pass device.DefaultProbeTable().
	ProbeTable device.ProbeTable

	// PortIndex is not read by Initialize: the port index the encoder
	// records alongside its resource token is the one the broker's Acquire
	// returns.
	PortIndex int
}

const (
	outputBufferCount       = 2 // fixed output buffer count (§4.5.1 step 9)
	defaultOutputBufferSize = 1 << 20

	inputBufferCount1080p = 8
	inputBufferCount4K    = 4
	fourKWidthThreshold   = 3840
	fourKHeightThreshold  = 2160

	h264MinQP = 24
	h264MaxQP = 42
	vp8MinQP  = 4
	vp8MaxQP  = 117
)
