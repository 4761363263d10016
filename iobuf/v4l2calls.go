package iobuf

import "github.com/hwcodec/mcil/v4l2"

// The v4l2 ioctl entry points this package depends on, reassignable for
// testing without a real device node — the same function-variable seam
// go4vl's device/device_test.go uses to mock v4l2.OpenDevice and friends.
var (
	v4l2RequestBuffersMPlane = v4l2.RequestBuffersMPlane
	v4l2QueryBufferMPlane    = v4l2.QueryBufferMPlane
	v4l2QueueBufferMPlane    = v4l2.QueueBufferMPlane
	v4l2DequeueBufferMPlane  = v4l2.DequeueBufferMPlane
	v4l2StreamOnType         = v4l2.StreamOnType
	v4l2StreamOffType        = v4l2.StreamOffType
	v4l2MapMemoryBuffer      = v4l2.MapMemoryBuffer
	v4l2UnmapMemoryBuffer    = v4l2.UnmapMemoryBuffer
)
