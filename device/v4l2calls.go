package device

import "github.com/hwcodec/mcil/v4l2"

// The v4l2 ioctl entry points this package depends on, reassignable for
// testing without a real device node — the same function-variable seam
// iobuf/v4l2calls.go uses one layer down.
var (
	v4l2OpenDevice                    = v4l2.OpenDevice
	v4l2CloseDevice                   = v4l2.CloseDevice
	v4l2GetFormatDescriptionsForType  = v4l2.GetFormatDescriptionsForType
	v4l2GetCapability                 = v4l2.GetCapability
	v4l2MapMemoryBuffer               = v4l2.MapMemoryBuffer
	v4l2UnmapMemoryBuffer             = v4l2.UnmapMemoryBuffer
	v4l2ExportDMABufsForBuffer        = v4l2.ExportDMABufsForBuffer
	v4l2GetControl                    = v4l2.GetControl
	v4l2GetFormatFrameSizes           = v4l2.GetFormatFrameSizes
)
