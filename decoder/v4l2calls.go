package decoder

import "github.com/hwcodec/mcil/v4l2"

// The v4l2 ioctl entry points this package calls directly (beyond what the
// device/iobuf layers already wrap), reassignable for testing without a real
// device node — the same function-variable seam iobuf/v4l2calls.go and
// device/v4l2calls.go use one layer down.
var (
	v4l2GetFormatDescriptionsForType = v4l2.GetFormatDescriptionsForType
	v4l2SetPixFormatMPlane           = v4l2.SetPixFormatMPlane
	v4l2GetPixFormatMPlane           = v4l2.GetPixFormatMPlane
	v4l2SubscribeEvent               = v4l2.SubscribeEvent
	v4l2DequeueEvent                 = v4l2.DequeueEvent
	v4l2TryDecoderCmd                = v4l2.TryDecoderCmd
	v4l2DecoderCmd                   = v4l2.DecoderCmd
	v4l2GetControl                   = v4l2.GetControl
	v4l2GetSelection                 = v4l2.GetSelection
	v4l2GetCropRect                  = v4l2.GetCropRect
)
