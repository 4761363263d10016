// Package codecclient defines the collaborator interfaces the decoder and
// encoder engines call out to but never implement themselves (§4.6 External
// Collaborator Interfaces): a resource broker for acquiring/releasing a
// device slot, and per-engine client callbacks for buffer lifecycle and
// error reporting. Concrete implementations live in resource and in
// whatever host application embeds these engines.
package codecclient

import (
	"github.com/hwcodec/mcil/iobuf"
)

// DeviceType distinguishes the M2M device class a ResourceBroker acquires
// (mirrors device.Kind but is kept separate since a broker client shouldn't
// need to import the device package's probe-table machinery).
type DeviceType int

const (
	DeviceTypeDecoder DeviceType = iota
	DeviceTypeEncoder
	DeviceTypeImageProcessor
	DeviceTypeJPEGDecoder
)

// Codec identifies the bitstream format a broker request is for.
type Codec int

const (
	CodecH264 Codec = iota
	CodecVP8
	CodecVP9
)

// ResourceToken is the opaque handle a ResourceBroker hands back from
// Acquire; the core never interprets it, only stores and returns it.
type ResourceToken string

// ResourceBroker arbitrates access to a shared pool of hardware codec
// instances (§4.6 Resource broker). A policy callback on the broker side
// may later demand the core release what it acquired; that path is modeled
// as the broker calling back into the DecoderClient/EncoderClient's
// corresponding stop/error methods, not as a method on this interface.
type ResourceBroker interface {
	Acquire(deviceType DeviceType, codec Codec, width, height uint32, fps uint32) (token ResourceToken, portIndex int, err error)
	Release(token ResourceToken, portIndex int) error
}

// ErrorKind classifies a fatal engine error for client notification (§7,
// §4.4.7).
type ErrorKind int

const (
	ErrorPlatformFailure ErrorKind = iota
	ErrorInvalidArgument
	ErrorUnreadableInput
	ErrorIllegalState
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorPlatformFailure:
		return "platform_failure"
	case ErrorInvalidArgument:
		return "invalid_argument"
	case ErrorUnreadableInput:
		return "unreadable_input"
	case ErrorIllegalState:
		return "illegal_state"
	default:
		return "unknown"
	}
}

// TextureTarget identifies the client-side texture binding target requested
// for decoder output buffers (opaque to the core beyond being forwarded).
type TextureTarget int

// DecoderClient receives picture-buffer lifecycle and delivery callbacks
// from a Decoder (§4.6 Decoder client).
type DecoderClient interface {
	CreateOutputBuffers(pixelFormat iobuf.PixelFormat, count int, textureTarget TextureTarget) error
	DestroyOutputBuffers() error
	ScheduleDecodeBufferTaskIfNeeded()
	StartResolutionChange()
	NotifyFlushDone()
	NotifyFlushDoneIfNeeded()
	NotifyResetDone()
	IsDestroyPending() bool
	OnStartDevicePoll()
	OnStopDevicePoll()
	CreateBuffersForFormat(coded, visible iobuf.ColorPlane) error
	SendBufferToClient(index uint32, bufferID int64, ref *iobuf.ReadableBufferRef)
	CheckGLFences()
	NotifyDecoderError(kind ErrorKind)
	NotifyDecodeBufferTask(eventPending, hasOutput bool)
	NotifyDecodeBufferDone()
}

// EncoderClient receives input-buffer lifecycle and bitstream delivery
// callbacks from an Encoder (§4.6 Encoder client).
type EncoderClient interface {
	CreateInputBuffers(count int) error
	DestroyInputBuffers() error
	EnqueueInputBuffer(index uint32)
	DequeueInputBuffer(index uint32)
	BitstreamBufferReady(ref *iobuf.ReadableBufferRef)
	BitstreamBytesReady(data []byte, keyFrame bool, timestamp int64)
	PumpBitstreamBuffers()
	GetH264LevelLimit() uint32
	StopDevicePoll()
	NotifyFlushIfNeeded(flush bool)
	NotifyEncodeBufferTask()
	NotifyEncoderError(kind ErrorKind)
	NotifyEncoderState(state string)
}
