package v4l2

/*
#cgo linux CFLAGS: -I ${SRCDIR}/../include/
#include <linux/videodev2.h>
#include <linux/v4l2-controls.h>
*/
import "C"

// H264Profile is a type alias for uint32, representing the H.264 (AVC) profile.
// Used with the CtrlMPEGVideoH264Profile control ID.
type H264Profile = uint32

// H.264 Profile Enum Values
const (
	H264ProfileBaseline            H264Profile = C.V4L2_MPEG_VIDEO_H264_PROFILE_BASELINE
	H264ProfileConstrainedBaseline H264Profile = C.V4L2_MPEG_VIDEO_H264_PROFILE_CONSTRAINED_BASELINE
	H264ProfileMain                H264Profile = C.V4L2_MPEG_VIDEO_H264_PROFILE_MAIN
	H264ProfileExtended            H264Profile = C.V4L2_MPEG_VIDEO_H264_PROFILE_EXTENDED
	H264ProfileHigh                H264Profile = C.V4L2_MPEG_VIDEO_H264_PROFILE_HIGH
)

// H264Level is a type alias for uint32, representing the H.264 (AVC) level.
// Used with the CtrlMPEGVideoH264Level control ID.
type H264Level = uint32

// H.264 Level Enum Values
const (
	H264Level1_0 H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_1_0
	H264Level1B  H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_1B
	H264Level1_1 H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_1_1
	H264Level1_2 H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_1_2
	H264Level1_3 H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_1_3
	H264Level2_0 H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_2_0
	H264Level2_1 H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_2_1
	H264Level2_2 H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_2_2
	H264Level3_0 H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_3_0
	H264Level3_1 H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_3_1
	H264Level3_2 H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_3_2
	H264Level4_0 H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_4_0
	H264Level4_1 H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_4_1
	H264Level4_2 H264Level = C.V4L2_MPEG_VIDEO_H264_LEVEL_4_2
)

// MPEGVideoHeaderMode is a type alias for uint32, representing where a codec
// places its sequence/picture headers relative to the bitstream frames.
type MPEGVideoHeaderMode = uint32

// MPEG Video Header Mode Enum Values
const (
	MPEGVideoHeaderModeSeparate          MPEGVideoHeaderMode = C.V4L2_MPEG_VIDEO_HEADER_MODE_SEPARATE
	MPEGVideoHeaderModeJoinedWith1stFrame MPEGVideoHeaderMode = C.V4L2_MPEG_VIDEO_HEADER_MODE_JOINED_WITH_1ST_FRAME
)

// Additional codec control IDs this module needs beyond the partial MPEG
// class list in control_values_codecs.go: H.264 profile/level/entropy/transform/QP, VP8 QP range,
// and the force-keyframe trigger shared by every codec class.
// See https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/ext-ctrls-codec.html
const (
	// CtrlMPEGVideoH264Profile selects the H.264 encode profile.
	CtrlMPEGVideoH264Profile H264Profile = C.V4L2_CID_MPEG_VIDEO_H264_PROFILE
	// CtrlMPEGVideoH264Level selects the H.264 encode level.
	CtrlMPEGVideoH264Level H264Level = C.V4L2_CID_MPEG_VIDEO_H264_LEVEL
	// CtrlMPEGVideoH264LoopFilterMode enables/disables the deblocking filter.
	CtrlMPEGVideoH264LoopFilterMode CtrlID = C.V4L2_CID_MPEG_VIDEO_H264_LOOP_FILTER_MODE
	// CtrlMPEGVideoH264EntropyMode selects CAVLC or CABAC entropy coding.
	CtrlMPEGVideoH264EntropyMode CtrlID = C.V4L2_CID_MPEG_VIDEO_H264_ENTROPY_MODE
	// CtrlMPEGVideoH2648x8Transform enables the high-profile 8x8 transform.
	CtrlMPEGVideoH2648x8Transform CtrlID = C.V4L2_CID_MPEG_VIDEO_H264_8X8_TRANSFORM
	// CtrlMPEGVideoH264MinQP sets the minimum quantization parameter.
	CtrlMPEGVideoH264MinQP CtrlID = C.V4L2_CID_MPEG_VIDEO_H264_MIN_QP
	// CtrlMPEGVideoH264MaxQP sets the maximum quantization parameter.
	CtrlMPEGVideoH264MaxQP CtrlID = C.V4L2_CID_MPEG_VIDEO_H264_MAX_QP
	// CtrlMPEGVideoH264IPeriod sets the I-frame period (0 means only the first frame is an I-frame).
	CtrlMPEGVideoH264IPeriod CtrlID = C.V4L2_CID_MPEG_VIDEO_H264_I_PERIOD

	// CtrlMPEGVideoVPXMinQP sets the minimum quantization parameter for VP8/VP9.
	CtrlMPEGVideoVPXMinQP CtrlID = C.V4L2_CID_MPEG_VIDEO_VPX_MIN_QP
	// CtrlMPEGVideoVPXMaxQP sets the maximum quantization parameter for VP8/VP9.
	CtrlMPEGVideoVPXMaxQP CtrlID = C.V4L2_CID_MPEG_VIDEO_VPX_MAX_QP

	// CtrlMPEGVideoForceKeyFrame requests the encoder emit a key frame for
	// the next queued input buffer.
	CtrlMPEGVideoForceKeyFrame CtrlID = C.V4L2_CID_MPEG_VIDEO_FORCE_KEY_FRAME
)

// H.264 entropy coding mode values for CtrlMPEGVideoH264EntropyMode.
const (
	H264EntropyModeCAVLC uint32 = C.V4L2_MPEG_VIDEO_H264_ENTROPY_MODE_CAVLC
	H264EntropyModeCABAC uint32 = C.V4L2_MPEG_VIDEO_H264_ENTROPY_MODE_CABAC
)

// H.264 loop filter mode values for CtrlMPEGVideoH264LoopFilterMode.
const (
	H264LoopFilterModeEnabled              uint32 = C.V4L2_MPEG_VIDEO_H264_LOOP_FILTER_MODE_ENABLED
	H264LoopFilterModeDisabled              uint32 = C.V4L2_MPEG_VIDEO_H264_LOOP_FILTER_MODE_DISABLED
	H264LoopFilterModeDisabledAtSliceBounds uint32 = C.V4L2_MPEG_VIDEO_H264_LOOP_FILTER_MODE_DISABLED_AT_SLICE_BOUNDARY
)

// VP9Profile is a type alias for uint32, representing the VP9 encode/decode
// profile. Used with CtrlMPEGVideoVP9Profile.
type VP9Profile = uint32

const (
	CtrlMPEGVideoVP9Profile VP9Profile = C.V4L2_CID_MPEG_VIDEO_VP9_PROFILE
)

// VP9 Profile Enum Values
const (
	VP9Profile0 VP9Profile = C.V4L2_MPEG_VIDEO_VP9_PROFILE_0
	VP9Profile1 VP9Profile = C.V4L2_MPEG_VIDEO_VP9_PROFILE_1
	VP9Profile2 VP9Profile = C.V4L2_MPEG_VIDEO_VP9_PROFILE_2
	VP9Profile3 VP9Profile = C.V4L2_MPEG_VIDEO_VP9_PROFILE_3
)
