// Package iobuf implements the buffer, free-list, and queue layer that sits
// between the V4L2 ioctl wrappers in v4l2 and the decoder/encoder engines:
// VideoFrame descriptors, per-queue free lists, and the move-only
// WritableBufferRef/ReadableBufferRef handles produced by enqueue/dequeue.
package iobuf

import (
	"fmt"

	"github.com/hwcodec/mcil/v4l2"
)

// PixelFormat is mcil's own pixel-format enum, kept distinct from V4L2's raw
// FourCCType so VideoFrame descriptors can be built and compared without a
// device handle open. FromFourCC/ToFourCC round-trip for every code in the
// catalog below (§6, §8 round-trip property).
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatARGB
	PixelFormatABGR
	PixelFormatXRGB
	PixelFormatXBGR
	PixelFormatRGB32
	PixelFormatI420
	PixelFormatYV12
	PixelFormatI420M
	PixelFormatYV12M
	PixelFormatYUY2
	PixelFormatNV12
	PixelFormatNV21
	PixelFormatNV12M
	PixelFormatNV21M
	PixelFormatI422M
	PixelFormatMT21
	PixelFormatMM21
	PixelFormatP010
)

func (p PixelFormat) String() string {
	if name, ok := pixelFormatNames[p]; ok {
		return name
	}
	return "Unknown"
}

var pixelFormatNames = map[PixelFormat]string{
	PixelFormatUnknown: "Unknown",
	PixelFormatARGB:    "ARGB",
	PixelFormatABGR:    "ABGR",
	PixelFormatXRGB:    "XRGB",
	PixelFormatXBGR:    "XBGR",
	PixelFormatRGB32:   "RGB32",
	PixelFormatI420:    "I420",
	PixelFormatYV12:    "YV12",
	PixelFormatI420M:   "I420M",
	PixelFormatYV12M:   "YV12M",
	PixelFormatYUY2:    "YUY2",
	PixelFormatNV12:    "NV12",
	PixelFormatNV21:    "NV21",
	PixelFormatNV12M:   "NV12M",
	PixelFormatNV21M:   "NV21M",
	PixelFormatI422M:   "I422M",
	PixelFormatMT21:    "MT21",
	PixelFormatMM21:    "MM21",
	PixelFormatP010:    "P010",
}

// fourCC packs 4 ASCII bytes little-endian per §6: a | b<<8 | c<<16 | d<<24.
func fourCC(a, b, c, d byte) v4l2.FourCCType {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

// fourCCTable is the minimal FourCC catalog of §6, each code paired with the
// mcil PixelFormat it round-trips to. "NONE" maps to PixelFormatUnknown and
// to FourCC 0.
var fourCCTable = []struct {
	name   string
	fourCC v4l2.FourCCType
	pix    PixelFormat
}{
	{"AR24", fourCC('A', 'R', '2', '4'), PixelFormatARGB},
	{"AB24", fourCC('A', 'B', '2', '4'), PixelFormatABGR},
	{"XR24", fourCC('X', 'R', '2', '4'), PixelFormatXRGB},
	{"XB24", fourCC('X', 'B', '2', '4'), PixelFormatXBGR},
	{"RGB4", fourCC('R', 'G', 'B', '4'), PixelFormatRGB32},
	{"YU12", fourCC('Y', 'U', '1', '2'), PixelFormatI420},
	{"YV12", fourCC('Y', 'V', '1', '2'), PixelFormatYV12},
	{"YM12", fourCC('Y', 'M', '1', '2'), PixelFormatI420M},
	{"YM21", fourCC('Y', 'M', '2', '1'), PixelFormatYV12M},
	{"YUYV", fourCC('Y', 'U', 'Y', 'V'), PixelFormatYUY2},
	{"NV12", fourCC('N', 'V', '1', '2'), PixelFormatNV12},
	{"NV21", fourCC('N', 'V', '2', '1'), PixelFormatNV21},
	{"NM12", fourCC('N', 'M', '1', '2'), PixelFormatNV12M},
	{"NM21", fourCC('N', 'M', '2', '1'), PixelFormatNV21M},
	{"YM16", fourCC('Y', 'M', '1', '6'), PixelFormatI422M},
	{"MT21", fourCC('M', 'T', '2', '1'), PixelFormatMT21},
	{"MM21", fourCC('M', 'M', '2', '1'), PixelFormatMM21},
	{"P010", fourCC('P', '0', '1', '0'), PixelFormatP010},
	{"NONE", 0, PixelFormatUnknown},
}

// FourCCToPixelFormat maps a V4L2 FourCC to mcil's PixelFormat enum.
// Unrecognized codes map to PixelFormatUnknown with a non-nil error.
func FourCCToPixelFormat(code v4l2.FourCCType) (PixelFormat, error) {
	for _, e := range fourCCTable {
		if e.fourCC == code {
			return e.pix, nil
		}
	}
	return PixelFormatUnknown, fmt.Errorf("iobuf: unrecognized fourcc %#08x", code)
}

// PixelFormatToFourCC maps a PixelFormat back to its V4L2 FourCC.
func PixelFormatToFourCC(pix PixelFormat) (v4l2.FourCCType, error) {
	for _, e := range fourCCTable {
		if e.pix == pix {
			return e.fourCC, nil
		}
	}
	return 0, fmt.Errorf("iobuf: unrecognized pixel format %v", pix)
}

// IsMultiPlanar reports whether pix is stored as separate color planes
// (as opposed to packed/semi-planar single-buffer formats).
func IsMultiPlanar(pix PixelFormat) bool {
	switch pix {
	case PixelFormatI420M, PixelFormatYV12M, PixelFormatNV12M, PixelFormatNV21M, PixelFormatI422M:
		return true
	default:
		return false
	}
}
