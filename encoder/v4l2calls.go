package encoder

import "github.com/hwcodec/mcil/v4l2"

// The v4l2 ioctl entry points this package calls directly (beyond what the
// device/iobuf layers already wrap), reassignable for testing without a real
// device node — the same function-variable seam iobuf/v4l2calls.go,
// device/v4l2calls.go, and decoder/v4l2calls.go use one layer down.
var (
	v4l2GetFormatDescriptionsForType = v4l2.GetFormatDescriptionsForType
	v4l2SetPixFormatMPlane           = v4l2.SetPixFormatMPlane
	v4l2SetSelection                 = v4l2.SetSelection
	v4l2SetCropRectType              = v4l2.SetCropRectType
	v4l2TryEncoderCmd                = v4l2.TryEncoderCmd
	v4l2EncoderCmd                   = v4l2.EncoderCmd
	v4l2SetControlValue              = v4l2.SetControlValue
	v4l2QueryControlInfo             = v4l2.QueryControlInfo
	v4l2SetStreamParamOutputMPlane   = v4l2.SetStreamParamOutputMPlane
)
