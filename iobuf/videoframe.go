package iobuf

import (
	"fmt"
	"sync/atomic"

	"github.com/hwcodec/mcil/v4l2"
)

// MaxPlanes mirrors v4l2.MaxPlanes (VIDEO_MAX_PLANES); kept as its own name
// here since iobuf describes frame layout independent of any open device.
const MaxPlanes = v4l2.MaxPlanes

// ColorPlane describes one plane of a VideoFrame's layout (§3 VideoFrame).
type ColorPlane struct {
	Stride uint32
	Offset uint32
	Size   uint32
}

// VideoFrame is a reference-counted description of a frame's layout: pixel
// format, coded size, per-plane layout, DMABUF fds (one per plane, duped to
// match plane count when the source has fewer), and opaque userptr data
// pointers. go4vl's Frame/Frame.Release() (device/frame.go) is the direct,
// single-buffer ancestor of this ref-counted, multi-plane version.
type VideoFrame struct {
	PixelFormat PixelFormat
	CodedWidth  uint32
	CodedHeight uint32
	Planes      []ColorPlane
	DMABufFDs   []int32
	Data        [MaxPlanes]uintptr

	refs    atomic.Int32
	release func(*VideoFrame)
}

// NewVideoFrame builds a VideoFrame with an initial reference count of 1.
// release, if non-nil, runs exactly once when the last reference is dropped
// (e.g. closing DMABUF fds or unmapping a userptr region).
func NewVideoFrame(pix PixelFormat, width, height uint32, planes []ColorPlane, release func(*VideoFrame)) *VideoFrame {
	f := &VideoFrame{
		PixelFormat: pix,
		CodedWidth:  width,
		CodedHeight: height,
		Planes:      planes,
		release:     release,
	}
	f.refs.Store(1)
	return f
}

// WithDMABufFDs attaches DMABUF fds to the frame, duping the last fd to fill
// out any remaining planes when fewer fds than planes were exported (a
// single-fd multi-plane DMABUF allocation is common on embedded SoCs).
func (f *VideoFrame) WithDMABufFDs(fds []int32) *VideoFrame {
	f.DMABufFDs = make([]int32, len(f.Planes))
	for i := range f.DMABufFDs {
		switch {
		case i < len(fds):
			f.DMABufFDs[i] = fds[i]
		case len(fds) > 0:
			f.DMABufFDs[i] = fds[len(fds)-1]
		}
	}
	return f
}

// IsMultiPlanar reports whether this frame's pixel format is stored in
// separate color planes rather than a single interleaved/semi-planar buffer.
func (f *VideoFrame) IsMultiPlanar() bool {
	return IsMultiPlanar(f.PixelFormat)
}

// Ref increments the reference count and returns f for chaining.
func (f *VideoFrame) Ref() *VideoFrame {
	f.refs.Add(1)
	return f
}

// Unref decrements the reference count, running the release callback exactly
// once when it reaches zero. Unref after the count has already reached zero
// is a programming error and panics, matching the move-only discipline the
// rest of this package relies on.
func (f *VideoFrame) Unref() {
	n := f.refs.Add(-1)
	if n < 0 {
		panic("iobuf: VideoFrame released more times than referenced")
	}
	if n == 0 && f.release != nil {
		f.release(f)
		f.release = nil
	}
}

func (f *VideoFrame) String() string {
	return fmt.Sprintf("VideoFrame{%s %dx%d planes=%d dmabufs=%d}",
		f.PixelFormat, f.CodedWidth, f.CodedHeight, len(f.Planes), len(f.DMABufFDs))
}
