package encoder

import (
	"fmt"

	"github.com/hwcodec/mcil/v4l2"
)

// UpdateEncodingParams implements §4.5.3 update_encoding_params: a zero
// bitrate or framerate leaves that parameter untouched; S_CTRL only fires
// when the bitrate actually changed, and S_PARM only fires when the
// framerate actually changed, mirroring v4l2_video_encoder.cpp's
// UpdateEncodingParams.
func (e *Encoder) UpdateEncodingParams(bitrate, framerate uint32) error {
	if bitrate != 0 && bitrate != e.currentBitrate {
		if err := v4l2SetControlValue(e.handle.Fd(), v4l2.CtrlMPEGVideoBitrate, int32(bitrate)); err != nil {
			return fmt.Errorf("encoder: update bitrate: %w", err)
		}
		e.currentBitrate = bitrate
	}

	if framerate != 0 && framerate != e.currentFramerate {
		if err := v4l2SetStreamParamOutputMPlane(e.handle.Fd(), v4l2.Fract{Numerator: 1, Denominator: framerate}); err != nil {
			return fmt.Errorf("encoder: update framerate: %w", err)
		}
		e.currentFramerate = framerate
	}
	return nil
}
