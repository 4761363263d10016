// Package decoder implements the Decoder Engine (§4.4): a single-threaded,
// cooperatively-scheduled state machine that feeds a coded bitstream into a
// V4L2 OUTPUT_MPLANE queue and delivers decoded pictures off a
// CAPTURE_MPLANE queue, driven by one background poll thread per instance.
//
// All exported methods except the client callbacks invoked from Pump are
// meant to be called from a single "engine thread" — whichever goroutine the
// embedding application dedicates to this decoder, matching go4vl's
// one-goroutine-per-device-stream discipline one layer up.
package decoder

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/hwcodec/mcil/codecclient"
	"github.com/hwcodec/mcil/device"
	"github.com/hwcodec/mcil/iobuf"
	"github.com/hwcodec/mcil/pump"
	"github.com/hwcodec/mcil/v4l2"
)

// pendingInput is either a data chunk's terminal enqueue or the flush
// sentinel, queued by flushInputBuffers/decodeBuffer for the next enqueue
// pass (§4.4.3/§4.4.4 "internal ready queue").
type pendingInput struct {
	isFlush bool
	ref     *iobuf.WritableBufferRef
}

// Decoder is one instance of the Decoder Engine.
type Decoder struct {
	client codecclient.DecoderClient
	broker codecclient.ResourceBroker

	state   stateBox
	pending pendingState

	handle *device.Handle
	input  *iobuf.Queue // OUTPUT_MPLANE: bitstream in
	output *iobuf.Queue // CAPTURE_MPLANE: pictures out

	pollThread *pump.Thread

	inputFourCC v4l2.FourCCType
	pixelFormat iobuf.PixelFormat

	token     codecclient.ResourceToken
	portIndex int

	decoderCmdSupported bool
	codedSizeKnown      bool

	current     *iobuf.WritableBufferRef // partially-filled input buffer
	currentUsed uint32                   // bytes written into current's plane 0 so far
	ready       []pendingInput

	flushAwaitingLastOutputBuffer bool
	resetPending                  bool

	eventPending     atomic.Bool
	awaitingPollWake atomic.Bool

	fpsFrames int
}

var (
	// ErrStalled is returned by DecodeBuffer when no free input buffer is
	// available and a dequeue pass did not free one up (§4.4.3).
	ErrStalled = errors.New("decoder: stalled, no free input buffer")
	// ErrUnknownProfile is returned by Initialize for a profile with no
	// known input FourCC mapping.
	ErrUnknownProfile = errors.New("decoder: unknown profile")
)

// profileInputFourCC maps a unified codec profile to the coded-format FourCC
// the decoder's OUTPUT_MPLANE side must accept (§4.4.1 step 1).
func profileInputFourCC(p device.CodecProfile) (v4l2.FourCCType, error) {
	switch p {
	case device.ProfileH264Baseline, device.ProfileH264Main, device.ProfileH264High:
		return v4l2.PixelFmtH264, nil
	case device.ProfileVP8Profile0:
		return v4l2.PixelFmtVP8, nil
	case device.ProfileVP9Profile0, device.ProfileVP9Profile1, device.ProfileVP9Profile2, device.ProfileVP9Profile3:
		return v4l2.PixelFmtVP9, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownProfile, p)
	}
}

// New constructs a Decoder bound to client and broker. Call Initialize
// before any other method.
func New(client codecclient.DecoderClient, broker codecclient.ResourceBroker) *Decoder {
	return &Decoder{client: client, broker: broker, pollThread: pump.New()}
}

// State returns the decoder's current lifecycle state.
func (d *Decoder) State() State { return d.state.Load() }

// Initialize performs §4.4.1's ten steps. Any failure is fatal: the decoder
// is left in StateUninitialized and the caller should not retry without
// constructing a fresh Decoder.
func (d *Decoder) Initialize(cfg Config) error {
	fourCC, err := profileInputFourCC(cfg.Profile)
	if err != nil {
		return err
	}

	token, portIndex, err := d.broker.Acquire(codecclient.DeviceTypeDecoder, profileToCodec(cfg.Profile), cfg.FrameWidth, cfg.FrameHeight, 0)
	if err != nil {
		return fmt.Errorf("decoder: acquire resource: %w", err)
	}
	d.token = token
	d.portIndex = portIndex

	handle, err := device.Open(device.KindDecoder, v4l2.BufTypeVideoOutputMPlane, fourCC, cfg.ProbeTable)
	if err != nil {
		d.broker.Release(token, portIndex)
		return fmt.Errorf("decoder: open device: %w", err)
	}

	capa := handle.Capability()
	if !capa.IsVideoMem2MemMPlaneSupported() || !capa.IsStreamingSupported() {
		handle.Close()
		d.broker.Release(token, portIndex)
		return errors.New("decoder: device lacks CAP_VIDEO_M2M_MPLANE | CAP_STREAMING")
	}

	d.handle = handle
	d.inputFourCC = fourCC
	d.input = iobuf.NewQueue(handle.Fd(), v4l2.BufTypeVideoOutputMPlane)
	d.output = iobuf.NewQueue(handle.Fd(), v4l2.BufTypeVideoCaptureMPlane)

	if err := d.setupFormats(cfg); err != nil {
		d.teardownAfterInitFailure()
		return err
	}

	sub := v4l2.NewEventSubscription(v4l2.EventSourceChange)
	if err := v4l2SubscribeEvent(handle.Fd(), sub); err != nil {
		d.teardownAfterInitFailure()
		return fmt.Errorf("decoder: subscribe source change event: %w", err)
	}

	if err := d.allocateInputBuffers(cfg); err != nil {
		d.teardownAfterInitFailure()
		return err
	}

	d.decoderCmdSupported = v4l2TryDecoderCmd(handle.Fd(), v4l2.DecoderCmdStop) == nil

	if err := d.client.CreateOutputBuffers(d.pixelFormat, 0, 0); err != nil {
		d.teardownAfterInitFailure()
		return fmt.Errorf("decoder: client create output buffers: %w", err)
	}

	d.state.Store(StateInitialized)
	d.applyPendingState()

	d.pollThread.Start()
	d.postDevicePoll(false)

	return nil
}

func (d *Decoder) teardownAfterInitFailure() {
	d.handle.Close()
	d.broker.Release(d.token, d.portIndex)
	d.handle = nil
}

// setupFormats implements §4.4.2.
func (d *Decoder) setupFormats(cfg Config) error {
	fd := d.handle.Fd()

	descs, err := v4l2GetFormatDescriptionsForType(fd, v4l2.BufTypeVideoOutputMPlane)
	if err != nil {
		return fmt.Errorf("decoder: enumerate input formats: %w", err)
	}
	found := false
	for _, desc := range descs {
		if desc.PixelFormat == d.inputFourCC {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("decoder: device does not list input fourcc %s", v4l2.PixelFormats[d.inputFourCC])
	}

	maxInputSize := inputBufferSize1080p
	if cfg.FrameWidth > fourKWidthThreshold || cfg.FrameHeight > fourKHeightThreshold {
		maxInputSize = inputBufferSize4K
	}

	inFmt, err := v4l2SetPixFormatMPlane(fd, v4l2.BufTypeVideoOutputMPlane, v4l2.PixFormatMPlane{
		Width:       cfg.FrameWidth,
		Height:      cfg.FrameHeight,
		PixelFormat: d.inputFourCC,
		Planes:      []v4l2.PlaneFormat{{SizeImage: uint32(maxInputSize)}},
	})
	if err != nil {
		return fmt.Errorf("decoder: set input format: %w", err)
	}
	d.input.SetFormat(inFmt)

	outDescs, err := v4l2GetFormatDescriptionsForType(fd, v4l2.BufTypeVideoCaptureMPlane)
	if err != nil {
		return fmt.Errorf("decoder: enumerate output formats: %w", err)
	}
	if len(outDescs) == 0 {
		return errors.New("decoder: device advertises no output formats")
	}
	chosen := outDescs[0].PixelFormat
	for _, desc := range outDescs {
		if canCreateEGLImageFrom(desc.PixelFormat) {
			chosen = desc.PixelFormat
			break
		}
	}

	outFmt, err := v4l2SetPixFormatMPlane(fd, v4l2.BufTypeVideoCaptureMPlane, v4l2.PixFormatMPlane{
		Width:       cfg.FrameWidth,
		Height:      cfg.FrameHeight,
		PixelFormat: chosen,
	})
	if err != nil {
		return fmt.Errorf("decoder: set output format: %w", err)
	}
	d.output.SetFormat(outFmt)

	pix, err := iobuf.FourCCToPixelFormat(chosen)
	if err != nil {
		return fmt.Errorf("decoder: output fourcc: %w", err)
	}
	d.pixelFormat = pix
	return nil
}

// canCreateEGLImageFrom reports whether fourcc is one this decoder's image
// path knows how to bind as an EGL image (§4.4.2 CanCreateEGLImageFrom) —
// in practice the multi-planar YUV layouts iobuf recognizes plus the
// single-buffer planar (I420, YV12) and semi-planar (NV12, NV21) YUV layouts.
func canCreateEGLImageFrom(fourcc v4l2.FourCCType) bool {
	pix, err := iobuf.FourCCToPixelFormat(fourcc)
	if err != nil {
		return false
	}
	switch pix {
	case iobuf.PixelFormatI420, iobuf.PixelFormatYV12, iobuf.PixelFormatNV12, iobuf.PixelFormatNV21:
		return true
	}
	return iobuf.IsMultiPlanar(pix)
}

func (d *Decoder) allocateInputBuffers(cfg Config) error {
	n, err := d.input.Allocate(inputBufferCount, v4l2.StreamTypeMMAP)
	if err != nil {
		return fmt.Errorf("decoder: allocate input buffers: %w", err)
	}
	if n == 0 {
		return errors.New("decoder: driver allocated zero input buffers")
	}
	return nil
}

func profileToCodec(p device.CodecProfile) codecclient.Codec {
	switch p {
	case device.ProfileH264Baseline, device.ProfileH264Main, device.ProfileH264High:
		return codecclient.CodecH264
	case device.ProfileVP8Profile0:
		return codecclient.CodecVP8
	default:
		return codecclient.CodecVP9
	}
}

// DecodeBuffer implements §4.4.3's decode_buffer: copies a coded chunk into
// the current (or a freshly acquired) input buffer, binding id on the
// buffer's first chunk: id becomes the buffer's timestamp seconds (with zero
// microseconds) and its buffer id, and the dequeue pass reads it back from
// the timestamp. ptsSec and ptsUsec are not stored.
func (d *Decoder) DecodeBuffer(data []byte, id int64, ptsSec, ptsUsec int64) error {
	if d.state.Load() == StateError {
		return codecError(codecclient.ErrorIllegalState, "decoder in error state")
	}

	if d.current != nil {
		if plane, err := d.current.MapPlane(0); err == nil && int(d.currentUsed)+len(data) > len(plane) {
			if err := d.flushCurrent(); err != nil {
				return err
			}
		}
	}

	if d.current == nil {
		ref, ok := d.input.GetFreeBuffer()
		if !ok {
			if _, err := d.input.Dequeue(); err != nil {
				return fmt.Errorf("decoder: recycle pass: %w", err)
			}
			ref, ok = d.input.GetFreeBuffer()
			if !ok {
				return ErrStalled
			}
		}
		ref.SetTimestamp(id, 0)
		ref.SetBufferID(id)
		d.current = ref
		d.currentUsed = 0
	}

	if len(data) == 0 {
		return nil
	}

	plane, err := d.current.MapPlane(0)
	if err != nil {
		return fmt.Errorf("decoder: map input plane: %w", err)
	}

	used := int(d.currentUsed)
	if used+len(data) > len(plane) {
		err := codecError(codecclient.ErrorUnreadableInput, "input chunk exceeds plane capacity")
		d.fail(codecclient.ErrorUnreadableInput, err)
		return err
	}
	copy(plane[used:used+len(data)], data)
	d.currentUsed += uint32(len(data))
	d.current.SetBytesUsed(0, d.currentUsed)
	return nil
}

func (d *Decoder) flushCurrent() error {
	if d.current == nil {
		return nil
	}
	ref := d.current
	d.current = nil
	d.currentUsed = 0
	d.ready = append(d.ready, pendingInput{ref: ref})
	return nil
}

// FlushInputBuffers implements §4.4.3's flush_input_buffers: enqueues the
// current input buffer (if any) and appends the flush sentinel to the ready
// queue.
func (d *Decoder) FlushInputBuffers() error {
	if err := d.flushCurrent(); err != nil {
		return err
	}
	d.ready = append(d.ready, pendingInput{isFlush: true})
	return nil
}

func codecError(kind codecclient.ErrorKind, msg string) error {
	return fmt.Errorf("decoder: %s: %s", kind, msg)
}
