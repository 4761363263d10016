package v4l2

// #include <linux/videodev2.h>
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	sys "golang.org/x/sys/unix"
)

// Multi-planar streaming I/O for V4L2 M2M devices (decoders, encoders,
// image processors). Unlike streaming.go's single-planar, capture-only
// helpers, every function here takes an explicit bufType (OUTPUT_MPLANE or
// CAPTURE_MPLANE) and memType (mmap/userptr/dmabuf) so one queue
// implementation can drive either direction of an M2M device.
// See https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/buffer.html#multi-planar-api

// MaxPlanes mirrors VIDEO_MAX_PLANES, the largest per-buffer plane count
// the kernel buffer ABI supports.
const MaxPlanes = C.VIDEO_MAX_PLANES

// MPlane buffer types: the two M2M queue directions this module drives.
const (
	BufTypeVideoOutputMPlane  BufType = C.V4L2_BUF_TYPE_VIDEO_OUTPUT_MPLANE
	BufTypeVideoCaptureMPlane BufType = C.V4L2_BUF_TYPE_VIDEO_CAPTURE_MPLANE
)

// PlaneLayout describes one plane's cached length/offset, as returned by
// QUERYBUF and consumed by Buffer/Queue (see the iobuf package).
type PlaneLayout struct {
	Length     uint32
	MemOffset  uint32 // valid for StreamTypeMMAP
	BytesUsed  uint32
	DataOffset uint32
}

// Timeval mirrors the kernel's timeval pair used for buffer timestamps.
// The decoder feeds a caller-assigned buffer id into Sec per §4.4.3 of the
// buffer-id binding contract.
type Timeval struct {
	Sec  int64
	Usec int64
}

// MPlaneBufferInfo is the multi-planar analogue of Buffer, carrying one
// PlaneLayout per plane instead of the single-planar union.
type MPlaneBufferInfo struct {
	Index     uint32
	BufType   BufType
	Memory    StreamType
	Flags     uint32
	Field     uint32
	Sequence  uint32
	Timestamp Timeval
	Planes    []PlaneLayout
	RequestFD int32
}

// RequestBuffersMPlane issues REQBUFS for the given buffer type/memory
// class and returns the driver-reported allocated count, which may be less
// than requested (§4.2 allocate). A count of 0 deallocates.
func RequestBuffersMPlane(fd uintptr, bufType BufType, memType StreamType, count uint32) (uint32, error) {
	var req C.struct_v4l2_requestbuffers
	req.count = C.uint(count)
	req._type = C.uint(bufType)
	req.memory = C.uint(memType)

	if err := send(fd, C.VIDIOC_REQBUFS, uintptr(unsafe.Pointer(&req))); err != nil {
		return 0, fmt.Errorf("request buffers (mplane): %w", err)
	}
	return uint32(req.count), nil
}

// QueryBufferMPlane issues QUERYBUF for one buffer index and returns its
// plane layout, caching length/offset per plane.
func QueryBufferMPlane(fd uintptr, bufType BufType, memType StreamType, index uint32, numPlanes uint32) (MPlaneBufferInfo, error) {
	planes := make([]C.struct_v4l2_plane, numPlanes)

	var v4l2Buf C.struct_v4l2_buffer
	v4l2Buf._type = C.uint(bufType)
	v4l2Buf.memory = C.uint(memType)
	v4l2Buf.index = C.uint(index)
	v4l2Buf.length = C.uint(numPlanes)
	if numPlanes > 0 {
		setMPlanesPointer(&v4l2Buf, planes)
	}

	if err := send(fd, C.VIDIOC_QUERYBUF, uintptr(unsafe.Pointer(&v4l2Buf))); err != nil {
		return MPlaneBufferInfo{}, fmt.Errorf("query buffer (mplane) index %d: %w", index, err)
	}

	return makeMPlaneBufferInfo(v4l2Buf, planes), nil
}

// QueueBufferMPlane issues QBUF for the buffer at index with the supplied
// per-plane bytes-used counts and timestamp. For StreamTypeUserPtr, ptrs
// supplies one userptr address per plane; for mmap it is ignored.
func QueueBufferMPlane(fd uintptr, bufType BufType, memType StreamType, index uint32, bytesUsed []uint32, ptrs []uintptr, ts Timeval) (MPlaneBufferInfo, error) {
	numPlanes := len(bytesUsed)
	planes := make([]C.struct_v4l2_plane, numPlanes)
	for i := 0; i < numPlanes; i++ {
		planes[i].bytesused = C.uint(bytesUsed[i])
		if memType == StreamTypeUserPtr && i < len(ptrs) {
			setPlaneUserPtr(&planes[i], ptrs[i])
		}
	}

	var v4l2Buf C.struct_v4l2_buffer
	v4l2Buf._type = C.uint(bufType)
	v4l2Buf.memory = C.uint(memType)
	v4l2Buf.index = C.uint(index)
	v4l2Buf.length = C.uint(numPlanes)
	*(*sys.Timeval)(unsafe.Pointer(&v4l2Buf.timestamp)) = sys.Timeval{Sec: ts.Sec, Usec: ts.Usec}
	if numPlanes > 0 {
		setMPlanesPointer(&v4l2Buf, planes)
	}

	if err := send(fd, C.VIDIOC_QBUF, uintptr(unsafe.Pointer(&v4l2Buf))); err != nil {
		return MPlaneBufferInfo{}, fmt.Errorf("queue buffer (mplane) index %d: %w", index, err)
	}
	return makeMPlaneBufferInfo(v4l2Buf, planes), nil
}

// ErrWouldBlock is returned by DequeueBufferMPlane when the kernel reports
// EAGAIN/EPIPE: nothing to dequeue yet, a recoverable/transient condition
// per §7's propagation policy and §8 invariant 6.
var ErrWouldBlock = errors.New("v4l2: would block")

// DequeueBufferMPlane issues DQBUF for the given queue direction. It
// translates EAGAIN/EPIPE into ErrWouldBlock so callers can treat the
// no-buffer-ready case uniformly, per §4.2 dequeue.
func DequeueBufferMPlane(fd uintptr, bufType BufType, memType StreamType, numPlanes uint32) (MPlaneBufferInfo, error) {
	planes := make([]C.struct_v4l2_plane, numPlanes)

	var v4l2Buf C.struct_v4l2_buffer
	v4l2Buf._type = C.uint(bufType)
	v4l2Buf.memory = C.uint(memType)
	v4l2Buf.length = C.uint(numPlanes)
	if numPlanes > 0 {
		setMPlanesPointer(&v4l2Buf, planes)
	}

	if err := send(fd, C.VIDIOC_DQBUF, uintptr(unsafe.Pointer(&v4l2Buf))); err != nil {
		if errors.Is(err, sys.EAGAIN) || errors.Is(err, sys.EPIPE) {
			return MPlaneBufferInfo{}, ErrWouldBlock
		}
		return MPlaneBufferInfo{}, fmt.Errorf("dequeue buffer (mplane): %w", err)
	}

	return makeMPlaneBufferInfo(v4l2Buf, planes), nil
}

// StreamOnType / StreamOffType issue STREAMON/STREAMOFF for an explicit
// buffer type, generalizing streaming.go's capture-only StreamOn/StreamOff.
func StreamOnType(fd uintptr, bufType BufType) error {
	t := bufType
	if err := send(fd, C.VIDIOC_STREAMON, uintptr(unsafe.Pointer(&t))); err != nil {
		return fmt.Errorf("stream on (%d): %w", bufType, err)
	}
	return nil
}

func StreamOffType(fd uintptr, bufType BufType) error {
	t := bufType
	if err := send(fd, C.VIDIOC_STREAMOFF, uintptr(unsafe.Pointer(&t))); err != nil {
		return fmt.Errorf("stream off (%d): %w", bufType, err)
	}
	return nil
}

// setMPlanesPointer stores the address of the Go-backed plane array into
// the kernel buffer's `m` union, the same anonymous-union-as-byte-array
// pattern streaming.go uses for the single-planar `m.offset`/`m.userptr`.
func setMPlanesPointer(v4l2Buf *C.struct_v4l2_buffer, planes []C.struct_v4l2_plane) {
	*(*unsafe.Pointer)(unsafe.Pointer(&v4l2Buf.m[0])) = unsafe.Pointer(&planes[0])
}

func setPlaneUserPtr(p *C.struct_v4l2_plane, ptr uintptr) {
	*(*uintptr)(unsafe.Pointer(&p.m[0])) = ptr
}

func planeMemOffset(p C.struct_v4l2_plane) uint32 {
	return *(*uint32)(unsafe.Pointer(&p.m[0]))
}

func makeMPlaneBufferInfo(v4l2Buf C.struct_v4l2_buffer, planes []C.struct_v4l2_plane) MPlaneBufferInfo {
	ts := *(*sys.Timeval)(unsafe.Pointer(&v4l2Buf.timestamp))
	out := MPlaneBufferInfo{
		Index:     uint32(v4l2Buf.index),
		BufType:   BufType(v4l2Buf._type),
		Memory:    StreamType(v4l2Buf.memory),
		Flags:     uint32(v4l2Buf.flags),
		Field:     uint32(v4l2Buf.field),
		Sequence:  uint32(v4l2Buf.sequence),
		Timestamp: Timeval{Sec: int64(ts.Sec), Usec: int64(ts.Usec)},
		RequestFD: *(*int32)(unsafe.Pointer(&v4l2Buf.anon0[0])),
		Planes:    make([]PlaneLayout, len(planes)),
	}
	for i, p := range planes {
		out.Planes[i] = PlaneLayout{
			Length:     uint32(p.length),
			BytesUsed:  uint32(p.bytesused),
			DataOffset: uint32(p.data_offset),
			MemOffset:  planeMemOffset(p),
		}
	}
	return out
}
