// Package encoder implements the Encoder Engine (§4.5): a single-threaded,
// cooperatively-scheduled state machine that feeds raw video frames into a
// V4L2 OUTPUT_MPLANE queue and delivers encoded bitstream off a
// CAPTURE_MPLANE queue, driven by one background poll thread per instance —
// the encode-side twin of the decoder package one directory over.
//
// All exported methods except the client callbacks invoked from Pump are
// meant to be called from a single "engine thread," matching decoder's
// one-goroutine-per-engine discipline.
package encoder

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

// pendingFrame is either a raw frame's terminal enqueue or the flush
// sentinel, queued by EncodeFrame for the next enqueue pass (§4.5.2
// "internal ready queue") — the encoder-side analogue of decoder.pendingInput.
type pendingFrame struct {
	isFlush       bool
	frame         *iobuf.VideoFrame
	forceKeyframe bool
}

// Encoder is one instance of the Encoder Engine.
type Encoder struct {
	client codecclient.EncoderClient
	broker codecclient.ResourceBroker

	state stateBox

	handle *device.Handle
	input  *iobuf.Queue // OUTPUT_MPLANE: raw frames in
	output *iobuf.Queue // CAPTURE_MPLANE: bitstream out

	pollThread *pump.Thread

	inputFourCC  v4l2.FourCCType
	outputFourCC v4l2.FourCCType
	codec        codecclient.Codec

	token     codecclient.ResourceToken
	portIndex int

	cmdSupported      bool
	inputBuffersReady bool
	cfgForLazyAlloc   Config

	visibleWidth, visibleHeight uint32

	ready []pendingFrame

	currentBitrate, currentFramerate uint32

	awaitingPollWake atomic.Bool

	fpsFrames int
}

var (
	// ErrUnknownProfile is returned by Initialize for a profile with no
	// known output FourCC mapping.
	ErrUnknownProfile = errors.New("encoder: unknown profile")
	// ErrVisibleRectMismatch is returned by Initialize when the driver
	// could not honor the requested crop/compose rectangle (§4.5.1 step 7).
	ErrVisibleRectMismatch = errors.New("encoder: driver adjusted visible rect")
)

// profileOutputFourCC maps a unified codec profile to the compressed-format
// FourCC the encoder's CAPTURE_MPLANE side must produce (§4.5.1 step 1).
func profileOutputFourCC(p device.CodecProfile) (v4l2.FourCCType, error) {
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

// New constructs an Encoder bound to client and broker. Call Initialize
// before any other method.
func New(client codecclient.EncoderClient, broker codecclient.ResourceBroker) *Encoder {
	return &Encoder{client: client, broker: broker, pollThread: pump.New()}
}

// State returns the encoder's current lifecycle state.
func (e *Encoder) State() State { return e.state.Load() }

// VisibleSize returns the width/height negotiated during Initialize.
func (e *Encoder) VisibleSize() (width, height uint32) {
	return e.visibleWidth, e.visibleHeight
}

// Initialize performs §4.5.1's nine steps. Any failure is fatal: the encoder
// is left in StateUninitialized and the caller should not retry without
// constructing a fresh Encoder.
func (e *Encoder) Initialize(cfg Config) error {
	outputFourCC, err := profileOutputFourCC(cfg.Profile)
	if err != nil {
		return err
	}
	e.codec = profileToCodec(cfg.Profile)

	token, portIndex, err := e.broker.Acquire(codecclient.DeviceTypeEncoder, e.codec, cfg.Width, cfg.Height, cfg.FrameRate)
	if err != nil {
		return fmt.Errorf("encoder: acquire resource: %w", err)
	}
	e.token = token
	e.portIndex = portIndex

	handle, err := device.Open(device.KindEncoder, v4l2.BufTypeVideoCaptureMPlane, outputFourCC, cfg.ProbeTable)
	if err != nil {
		e.broker.Release(token, portIndex)
		return fmt.Errorf("encoder: open device: %w", err)
	}

	if profiles, perr := device.GetSupportedEncodeProfiles(cfg.ProbeTable); perr == nil {
		for _, p := range profiles {
			if p.ProfileID != cfg.Profile {
				continue
			}
			if cfg.Width < p.MinWidth || cfg.Width > p.MaxWidth || cfg.Height < p.MinHeight || cfg.Height > p.MaxHeight {
				handle.Close()
				e.broker.Release(token, portIndex)
				return fmt.Errorf("encoder: requested size %dx%d outside supported range", cfg.Width, cfg.Height)
			}
			break
		}
	}

	capa := handle.Capability()
	if !capa.IsVideoMem2MemMPlaneSupported() || !capa.IsStreamingSupported() {
		handle.Close()
		e.broker.Release(token, portIndex)
		return errors.New("encoder: device lacks CAP_VIDEO_M2M_MPLANE | CAP_STREAMING")
	}

	e.cmdSupported = v4l2TryEncoderCmd(handle.Fd(), v4l2.EncoderCmdStop) == nil

	e.handle = handle
	e.outputFourCC = outputFourCC
	e.input = iobuf.NewQueue(handle.Fd(), v4l2.BufTypeVideoOutputMPlane)
	e.output = iobuf.NewQueue(handle.Fd(), v4l2.BufTypeVideoCaptureMPlane)

	if err := e.setupOutputFormat(cfg); err != nil {
		e.teardownAfterInitFailure()
		return err
	}
	if err := e.setupInputFormat(cfg); err != nil {
		e.teardownAfterInitFailure()
		return err
	}
	if err := e.initControls(cfg); err != nil {
		e.teardownAfterInitFailure()
		return err
	}

	if err := e.client.CreateInputBuffers(0); err != nil {
		e.teardownAfterInitFailure()
		return fmt.Errorf("encoder: client create input buffers: %w", err)
	}
	n, err := e.output.Allocate(outputBufferCount, v4l2.StreamTypeMMAP)
	if err != nil {
		e.teardownAfterInitFailure()
		return fmt.Errorf("encoder: allocate output buffers: %w", err)
	}
	if n == 0 {
		e.teardownAfterInitFailure()
		return errors.New("encoder: driver allocated zero output buffers")
	}

	e.cfgForLazyAlloc = cfg
	e.state.Store(StateInitialized)

	e.pollThread.Start()
	e.postDevicePoll(false)

	return nil
}

func (e *Encoder) teardownAfterInitFailure() {
	e.handle.Close()
	e.broker.Release(e.token, e.portIndex)
	e.handle = nil
}

// setupOutputFormat implements §4.5.1 step 6: S_FMT(CAPTURE_MPLANE) with
// (fourcc, visible size, output_buffer_size); the adjusted sizeimage the
// driver returns becomes canonical.
func (e *Encoder) setupOutputFormat(cfg Config) error {
	size := cfg.OutputBufferSize
	if size == 0 {
		size = defaultOutputBufferSize
	}

	outFmt, err := v4l2SetPixFormatMPlane(e.handle.Fd(), v4l2.BufTypeVideoCaptureMPlane, v4l2.PixFormatMPlane{
		Width:       cfg.Width,
		Height:      cfg.Height,
		PixelFormat: e.outputFourCC,
		Planes:      []v4l2.PlaneFormat{{SizeImage: size}},
	})
	if err != nil {
		return fmt.Errorf("encoder: set output format: %w", err)
	}
	e.output.SetFormat(outFmt)
	e.visibleWidth, e.visibleHeight = cfg.Width, cfg.Height
	return nil
}

// setupInputFormat implements §4.5.1 step 7: iterate candidate input FourCCs
// starting from cfg.PixelFormat's own code, S_FMT(OUTPUT_MPLANE), verify the
// coded size covers the visible rect, and apply the crop/compose rectangle.
func (e *Encoder) setupInputFormat(cfg Config) error {
	descs, err := v4l2GetFormatDescriptionsForType(e.handle.Fd(), v4l2.BufTypeVideoOutputMPlane)
	if err != nil {
		return fmt.Errorf("encoder: enumerate input formats: %w", err)
	}

	candidates := candidateInputFourCCs(cfg.PixelFormat, descs)
	if len(candidates) == 0 {
		return errors.New("encoder: device advertises no usable raw input format")
	}

	var lastErr error
	for _, fourCC := range candidates {
		inFmt, err := v4l2SetPixFormatMPlane(e.handle.Fd(), v4l2.BufTypeVideoOutputMPlane, v4l2.PixFormatMPlane{
			Width:       cfg.Width,
			Height:      cfg.Height,
			PixelFormat: fourCC,
		})
		if err != nil {
			lastErr = err
			continue
		}
		if inFmt.Width < cfg.Width || inFmt.Height < cfg.Height {
			lastErr = fmt.Errorf("encoder: coded size %dx%d smaller than visible %dx%d", inFmt.Width, inFmt.Height, cfg.Width, cfg.Height)
			continue
		}
		e.input.SetFormat(inFmt)
		e.inputFourCC = fourCC

		rect := v4l2.Rect{Width: cfg.Width, Height: cfg.Height}
		adjusted, serr := v4l2SetSelection(e.handle.Fd(), v4l2.BufTypeVideoOutputMPlane, v4l2.SelTargetCrop, rect)
		if serr != nil {
			adjusted, serr = rect, v4l2SetCropRectType(e.handle.Fd(), v4l2.BufTypeVideoOutputMPlane, rect)
			if serr != nil {
				return fmt.Errorf("encoder: apply crop: %w", serr)
			}
		}
		if adjusted.Width != cfg.Width || adjusted.Height != cfg.Height {
			return fmt.Errorf("%w: requested %dx%d, driver set %dx%d", ErrVisibleRectMismatch, cfg.Width, cfg.Height, adjusted.Width, adjusted.Height)
		}
		return nil
	}
	return fmt.Errorf("encoder: no candidate input format accepted: %w", lastErr)
}

// candidateInputFourCCs orders the device's advertised OUTPUT_MPLANE formats
// so that preferred's own FourCC is tried first, followed by every other
// format iobuf can round-trip.
func candidateInputFourCCs(preferred iobuf.PixelFormat, descs []v4l2.FormatDescription) []v4l2.FourCCType {
	var out []v4l2.FourCCType
	if fourCC, err := iobuf.PixelFormatToFourCC(preferred); err == nil {
		for _, d := range descs {
			if d.PixelFormat == fourCC {
				out = append(out, fourCC)
				break
			}
		}
	}
	for _, d := range descs {
		if len(out) > 0 && d.PixelFormat == out[0] {
			continue
		}
		if _, err := iobuf.FourCCToPixelFormat(d.PixelFormat); err == nil {
			out = append(out, d.PixelFormat)
		}
	}
	return out
}

// EncodeFrame implements §4.5.2's encode_frame: pushes frame onto the
// internal ready queue and pumps. frame == nil requests a flush at this
// point in the stream, mirroring decoder's FlushInputBuffers sentinel —
// the encoder has no buffer-id binding path for EncodeFrame to attach a
// FLUSH_BUFFER_ID-style sentinel to (EncoderClient reports recycled input
// buffers by index, not by client-assigned id), so the sentinel here is
// purely the isFlush flag on pendingFrame, not a numeric constant.
func (e *Encoder) EncodeFrame(frame *iobuf.VideoFrame, forceKeyframe bool) error {
	if e.state.Load() == StateError {
		return codecError(codecclient.ErrorIllegalState, "encoder in error state")
	}
	if frame == nil {
		e.ready = append(e.ready, pendingFrame{isFlush: true})
	} else {
		e.ready = append(e.ready, pendingFrame{frame: frame, forceKeyframe: forceKeyframe})
	}
	return e.Pump()
}

func codecError(kind codecclient.ErrorKind, msg string) error {
	return fmt.Errorf("encoder: %s: %s", kind, msg)
}

// fail transitions the encoder to StateError and reports kind to the client
// (§4.4.7/§4.5 error model, shared taxonomy). Subsequent EncodeFrame/Pump
// calls short-circuit.
func (e *Encoder) fail(kind codecclient.ErrorKind, err error) {
	if e.state.Load() == StateError {
		return
	}
	e.state.Store(StateError)
	e.client.NotifyEncoderError(kind)
	e.client.NotifyEncoderState(e.state.Load().String())
	_ = err
}
