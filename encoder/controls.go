package encoder

import (
	"fmt"

	"github.com/hwcodec/mcil/codecclient"
	"github.com/hwcodec/mcil/device"
	"github.com/hwcodec/mcil/v4l2"
)

// initControls implements §4.5.1 step 8: apply the bitrate, GOP length, and
// header-mode controls common to every codec, then dispatch to the
// codec-specific control set.
func (e *Encoder) initControls(cfg Config) error {
	fd := e.handle.Fd()

	if cfg.BitRate > 0 {
		if err := v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoBitrate, int32(cfg.BitRate)); err != nil {
			return fmt.Errorf("encoder: init controls: bitrate: %w", err)
		}
		e.currentBitrate = cfg.BitRate
	}
	if cfg.FrameRate > 0 {
		e.currentFramerate = cfg.FrameRate
	}

	if err := setGOPLength(fd, cfg.GOPLength); err != nil {
		return fmt.Errorf("encoder: init controls: gop length: %w", err)
	}

	_ = v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoHeaderMode, int32(v4l2.MPEGVideoHeaderModeSeparate))
	_ = v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoFrameRCEnable, 1)
	_ = v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoMBRCEnable, 1)

	switch e.codec {
	case codecclient.CodecH264:
		return e.initControlsH264(cfg)
	case codecclient.CodecVP8:
		return e.initControlsVP8(cfg)
	default:
		return nil // VP9 currently rides on the common controls above only
	}
}

// setGOPLength mirrors v4l2_device.cpp's SetGOPLength: try the requested
// length directly; if the driver rejects it and the caller asked for the
// default (0), fall back to whatever the control's own maximum advertises.
func setGOPLength(fd uintptr, length uint32) error {
	if err := v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoGOPSize, int32(length)); err == nil {
		return nil
	} else if length != 0 {
		return err
	}

	info, err := v4l2QueryControlInfo(fd, v4l2.CtrlMPEGVideoGOPSize)
	if err != nil {
		return fmt.Errorf("query gop size range: %w", err)
	}
	return v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoGOPSize, info.Maximum)
}

// initControlsH264 applies the profile/level/entropy/transform/QP range
// controls an H.264 stream needs (§4.5.1 step 8, H.264 branch).
func (e *Encoder) initControlsH264(cfg Config) error {
	fd := e.handle.Fd()

	profile := v4l2.H264ProfileBaseline
	switch cfg.Profile {
	case device.ProfileH264Main:
		profile = v4l2.H264ProfileMain
	case device.ProfileH264High:
		profile = v4l2.H264ProfileHigh
	}
	if err := v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoH264Profile, int32(profile)); err != nil {
		return fmt.Errorf("h264 profile: %w", err)
	}

	level := cfg.H264OutputLevel
	if level == 0 {
		level = e.client.GetH264LevelLimit()
	}
	if level > 0 {
		if err := v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoH264Level, int32(level)); err != nil {
			return fmt.Errorf("h264 level: %w", err)
		}
	}

	entropy := v4l2.H264EntropyModeCAVLC
	if profile != v4l2.H264ProfileBaseline {
		entropy = v4l2.H264EntropyModeCABAC
	}
	_ = v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoH264EntropyMode, int32(entropy))

	if profile == v4l2.H264ProfileHigh {
		_ = v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoH2648x8Transform, 1)
	}

	_ = v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoH264LoopFilterMode, int32(v4l2.H264LoopFilterModeEnabled))
	_ = v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoH264MinQP, h264MinQP)
	_ = v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoH264MaxQP, h264MaxQP)
	_ = v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoH264IPeriod, int32(cfg.GOPLength))
	return nil
}

// initControlsVP8 applies VP8's QP range controls (§4.5.1 step 8, VP8
// branch).
func (e *Encoder) initControlsVP8(cfg Config) error {
	fd := e.handle.Fd()
	_ = v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoVPXMinQP, vp8MinQP)
	_ = v4l2SetControlValue(fd, v4l2.CtrlMPEGVideoVPXMaxQP, vp8MaxQP)
	return nil
}
