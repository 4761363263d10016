package v4l2

// #include <linux/videodev2.h>
import "C"

import (
	"fmt"
	"unsafe"
)

// PlaneFormat (v4l2_plane_pix_format) describes one plane's size within a
// multi-planar format.
type PlaneFormat struct {
	SizeImage    uint32
	BytesPerLine uint32
}

// PixFormatMPlane (v4l2_pix_format_mplane) is the multi-planar counterpart
// to PixFormat, used on the OUTPUT_MPLANE/CAPTURE_MPLANE sides of a decoder
// or encoder (§4.4.2, §4.5.1).
type PixFormatMPlane struct {
	Width        uint32
	Height       uint32
	PixelFormat  FourCCType
	Field        FieldType
	Colorspace   ColorspaceType
	Planes       []PlaneFormat
	Flags        uint32
	YcbcrEnc     YCbCrEncodingType
	Quantization QuantizationType
	XferFunc     XferFunctionType
}

func (f PixFormatMPlane) String() string {
	return fmt.Sprintf("%s [%dx%d]; planes=%d; colorspace=%s",
		PixelFormats[f.PixelFormat], f.Width, f.Height, len(f.Planes), Colorspaces[f.Colorspace])
}

// GetPixFormatMPlane issues G_FMT for bufType (OUTPUT_MPLANE or
// CAPTURE_MPLANE) and returns the multi-planar pixel format.
func GetPixFormatMPlane(fd uintptr, bufType BufType) (PixFormatMPlane, error) {
	var v4l2Format C.struct_v4l2_format
	v4l2Format._type = C.uint(bufType)

	if err := send(fd, C.VIDIOC_G_FMT, uintptr(unsafe.Pointer(&v4l2Format))); err != nil {
		return PixFormatMPlane{}, fmt.Errorf("pix format mplane (type %d): %w", bufType, err)
	}

	mp := *(*C.struct_v4l2_pix_format_mplane)(unsafe.Pointer(&v4l2Format.fmt[0]))
	return makePixFormatMPlane(mp), nil
}

// SetPixFormatMPlane issues S_FMT for bufType and returns the format the
// driver actually accepted (sizeimage/bytesperline may have been adjusted).
func SetPixFormatMPlane(fd uintptr, bufType BufType, pixFmt PixFormatMPlane) (PixFormatMPlane, error) {
	var v4l2Format C.struct_v4l2_format
	v4l2Format._type = C.uint(bufType)

	mp := (*C.struct_v4l2_pix_format_mplane)(unsafe.Pointer(&v4l2Format.fmt[0]))
	mp.width = C.uint(pixFmt.Width)
	mp.height = C.uint(pixFmt.Height)
	mp.pixelformat = C.uint(pixFmt.PixelFormat)
	mp.field = C.uint(pixFmt.Field)
	mp.colorspace = C.uint(pixFmt.Colorspace)
	mp.flags = C.uchar(pixFmt.Flags)
	mp.quantization = C.uchar(pixFmt.Quantization)
	mp.xfer_func = C.uchar(pixFmt.XferFunc)
	mp.num_planes = C.uchar(len(pixFmt.Planes))
	for i, p := range pixFmt.Planes {
		if i >= C.VIDEO_MAX_PLANES {
			break
		}
		mp.plane_fmt[i].sizeimage = C.uint(p.SizeImage)
		mp.plane_fmt[i].bytesperline = C.uint(p.BytesPerLine)
	}

	if err := send(fd, C.VIDIOC_S_FMT, uintptr(unsafe.Pointer(&v4l2Format))); err != nil {
		return PixFormatMPlane{}, fmt.Errorf("set pix format mplane (type %d): %w", bufType, err)
	}

	return makePixFormatMPlane(*mp), nil
}

// TryPixFormatMPlane issues TRY_FMT: validates/adjusts a candidate format
// without committing it to the device, used while probing candidate input
// FourCCs (§4.5.1 step 7).
func TryPixFormatMPlane(fd uintptr, bufType BufType, pixFmt PixFormatMPlane) (PixFormatMPlane, error) {
	var v4l2Format C.struct_v4l2_format
	v4l2Format._type = C.uint(bufType)

	mp := (*C.struct_v4l2_pix_format_mplane)(unsafe.Pointer(&v4l2Format.fmt[0]))
	mp.width = C.uint(pixFmt.Width)
	mp.height = C.uint(pixFmt.Height)
	mp.pixelformat = C.uint(pixFmt.PixelFormat)
	mp.num_planes = C.uchar(len(pixFmt.Planes))
	for i, p := range pixFmt.Planes {
		if i >= C.VIDEO_MAX_PLANES {
			break
		}
		mp.plane_fmt[i].sizeimage = C.uint(p.SizeImage)
	}

	if err := send(fd, C.VIDIOC_TRY_FMT, uintptr(unsafe.Pointer(&v4l2Format))); err != nil {
		return PixFormatMPlane{}, fmt.Errorf("try pix format mplane (type %d): %w", bufType, err)
	}
	return makePixFormatMPlane(*mp), nil
}

func makePixFormatMPlane(mp C.struct_v4l2_pix_format_mplane) PixFormatMPlane {
	out := PixFormatMPlane{
		Width:        uint32(mp.width),
		Height:       uint32(mp.height),
		PixelFormat:  FourCCType(mp.pixelformat),
		Field:        FieldType(mp.field),
		Colorspace:   ColorspaceType(mp.colorspace),
		Flags:        uint32(mp.flags),
		YcbcrEnc:     YCbCrEncodingType(mp.ycbcr_enc),
		Quantization: QuantizationType(mp.quantization),
		XferFunc:     XferFunctionType(mp.xfer_func),
	}
	numPlanes := int(mp.num_planes)
	out.Planes = make([]PlaneFormat, numPlanes)
	for i := 0; i < numPlanes; i++ {
		out.Planes[i] = PlaneFormat{
			SizeImage:    uint32(mp.plane_fmt[i].sizeimage),
			BytesPerLine: uint32(mp.plane_fmt[i].bytesperline),
		}
	}
	return out
}
