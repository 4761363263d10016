package v4l2

// #include <linux/videodev2.h>
import "C"

import (
	"fmt"
	"unsafe"
)

// ExportBuffer (v4l2_exportbuffer) turns an mmap-allocated buffer plane
// into a DMABUF file descriptor shareable with other drivers/processes.
// See https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/vidioc-expbuf.html

// ExportDMABuf issues EXPBUF for one plane of one buffer and returns the
// resulting fd.
func ExportDMABuf(fd uintptr, bufType BufType, index uint32, plane uint32) (int32, error) {
	var eb C.struct_v4l2_exportbuffer
	eb._type = C.uint(bufType)
	eb.index = C.uint(index)
	eb.plane = C.uint(plane)

	if err := send(fd, C.VIDIOC_EXPBUF, uintptr(unsafe.Pointer(&eb))); err != nil {
		return -1, fmt.Errorf("export buffer index %d plane %d: %w", index, plane, err)
	}
	return int32(eb.fd), nil
}

// ExportDMABufsForBuffer issues one EXPBUF per plane for a buffer and
// returns the resulting fds. On any plane's failure the whole batch is
// discarded and an empty slice is returned, per §4.1
// get_dmabufs_for_buffer.
func ExportDMABufsForBuffer(fd uintptr, bufType BufType, index uint32, numPlanes uint32) ([]int32, error) {
	fds := make([]int32, 0, numPlanes)
	for p := uint32(0); p < numPlanes; p++ {
		f, err := ExportDMABuf(fd, bufType, index, p)
		if err != nil {
			return nil, fmt.Errorf("export dmabufs for buffer index %d: %w", index, err)
		}
		fds = append(fds, f)
	}
	return fds, nil
}
