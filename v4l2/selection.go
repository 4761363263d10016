package v4l2

// #include <linux/videodev2.h>
import "C"

import (
	"fmt"
	"unsafe"
)

// Selection target/flags (v4l2_sel_tgt / v4l2_sel_flags), the modern
// replacement for crop.go's CROPCAP/G_CROP/S_CROP pair. The decoder uses
// SelTargetCompose to recover the visible rectangle within a coded frame
// after a resolution change (§4.4.5 step 6), falling back to GetCropRect
// when the driver predates this API.
type SelectionTarget = uint32

const (
	SelTargetCrop           SelectionTarget = C.V4L2_SEL_TGT_CROP
	SelTargetCropDefault    SelectionTarget = C.V4L2_SEL_TGT_CROP_DEFAULT
	SelTargetCropBounds     SelectionTarget = C.V4L2_SEL_TGT_CROP_BOUNDS
	SelTargetNativeSize     SelectionTarget = C.V4L2_SEL_TGT_NATIVE_SIZE
	SelTargetCompose        SelectionTarget = C.V4L2_SEL_TGT_COMPOSE
	SelTargetComposeDefault SelectionTarget = C.V4L2_SEL_TGT_COMPOSE_DEFAULT
	SelTargetComposeBounds  SelectionTarget = C.V4L2_SEL_TGT_COMPOSE_BOUNDS
	SelTargetComposePadded  SelectionTarget = C.V4L2_SEL_TGT_COMPOSE_PADDED
)

// Selection (v4l2_selection) wraps G_SELECTION/S_SELECTION.
// See https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/vidioc-g-selection.html
type Selection struct {
	BufType BufType
	Target  SelectionTarget
	Flags   uint32
	Rect    Rect
}

// GetSelection issues G_SELECTION for the given buffer type and target.
func GetSelection(fd uintptr, bufType BufType, target SelectionTarget) (Selection, error) {
	var sel C.struct_v4l2_selection
	sel._type = C.uint(bufType)
	sel.target = C.uint(target)

	if err := send(fd, C.VIDIOC_G_SELECTION, uintptr(unsafe.Pointer(&sel))); err != nil {
		return Selection{}, fmt.Errorf("get selection: %w", err)
	}

	return Selection{
		BufType: BufType(sel._type),
		Target:  SelectionTarget(sel.target),
		Flags:   uint32(sel.flags),
		Rect:    *(*Rect)(unsafe.Pointer(&sel.r)),
	}, nil
}

// SetSelection issues S_SELECTION and returns the (possibly adjusted)
// rectangle the driver accepted.
func SetSelection(fd uintptr, bufType BufType, target SelectionTarget, r Rect) (Rect, error) {
	var sel C.struct_v4l2_selection
	sel._type = C.uint(bufType)
	sel.target = C.uint(target)
	sel.r = *(*C.struct_v4l2_rect)(unsafe.Pointer(&r))

	if err := send(fd, C.VIDIOC_S_SELECTION, uintptr(unsafe.Pointer(&sel))); err != nil {
		return Rect{}, fmt.Errorf("set selection: %w", err)
	}
	return *(*Rect)(unsafe.Pointer(&sel.r)), nil
}
