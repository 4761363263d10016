package iobuf

import (
	"fmt"

	"github.com/hwcodec/mcil/v4l2"
)

// WritableBufferRef is a move-only handle meaning "user owns buffer index i,
// not yet queued" (§3 WritableBufferRef). Queue() or Drop() consumes it
// exactly once; a ref that is neither queued nor dropped leaks its index out
// of the free list, mirroring go4vl's Frame.Release()-must-be-called
// discipline one level down the stack.
type WritableBufferRef struct {
	queue     *Queue
	index     uint32
	consumed  bool
	frame     *VideoFrame
	bufferID  int64
	timestamp v4l2.Timeval
	userPtrs  []uintptr
}

// Index returns the kernel buffer index this ref owns.
func (w *WritableBufferRef) Index() uint32 { return w.index }

func (w *WritableBufferRef) buffer() *Buffer { return w.queue.buffers[w.index] }

// PlaneCount returns the number of planes in the underlying buffer.
func (w *WritableBufferRef) PlaneCount() int { return w.buffer().NumPlanes() }

// MapPlane returns the mmap'd byte slice for plane i, creating the mapping
// lazily on first access (§3 Buffer: "per-plane mmap pointers, lazily
// created on first access").
func (w *WritableBufferRef) MapPlane(plane int) ([]byte, error) {
	buf := w.buffer()
	if plane < 0 || plane >= len(buf.Planes) {
		return nil, fmt.Errorf("iobuf: plane %d out of range (have %d)", plane, len(buf.Planes))
	}
	if buf.Planes[plane].mapped == nil {
		data, err := v4l2MapMemoryBuffer(w.queue.fd, int64(buf.Planes[plane].MemOffset), int(buf.Planes[plane].Length))
		if err != nil {
			return nil, fmt.Errorf("iobuf: map plane %d: %w", plane, err)
		}
		buf.Planes[plane].mapped = data
	}
	return buf.Planes[plane].mapped, nil
}

// SetBytesUsed records how much of plane's mapped region holds valid data.
func (w *WritableBufferRef) SetBytesUsed(plane int, n uint32) {
	w.buffer().Planes[plane].BytesUsed = n
}

// SetUserPtr assigns a userptr for plane, used instead of MapPlane when the
// queue's memory class is USERPTR.
func (w *WritableBufferRef) SetUserPtr(plane int, ptr uintptr) {
	if w.userPtrs == nil {
		w.userPtrs = make([]uintptr, w.PlaneCount())
	}
	w.userPtrs[plane] = ptr
}

// SetTimestamp sets the buffer's presentation timestamp.
func (w *WritableBufferRef) SetTimestamp(sec, usec int64) {
	w.timestamp = v4l2.Timeval{Sec: sec, Usec: usec}
}

// SetBufferID records a client-assigned integer buffer id, used by the
// decoder's id-binding feed path (§4.4.3).
func (w *WritableBufferRef) SetBufferID(id int64) { w.bufferID = id }

// AttachFrame associates a VideoFrame with the buffer; it will be recorded
// in the queue's queued_map on a successful Queue() and handed back on the
// matching ReadableBufferRef.
func (w *WritableBufferRef) AttachFrame(f *VideoFrame) { w.frame = f }

// QueueMMap issues QBUF for mmap memory, consuming the ref.
func (w *WritableBufferRef) QueueMMap() error {
	return w.queue.enqueue(w, nil)
}

// QueueUserPtr issues QBUF with the userptrs set via SetUserPtr, consuming
// the ref.
func (w *WritableBufferRef) QueueUserPtr() error {
	return w.queue.enqueue(w, w.userPtrs)
}

// Drop returns the index to the free list if the ref was never queued. Safe
// to call multiple times.
func (w *WritableBufferRef) Drop() {
	if w.consumed {
		return
	}
	w.consumed = true
	w.queue.returnToFreeList(w.index)
}

// ReadableBufferRef is produced by a successful Queue.Dequeue and exposes
// plane data, flags, and the VideoFrame attached at enqueue time (§3
// ReadableBufferRef).
type ReadableBufferRef struct {
	queue    *Queue
	index    uint32
	info     v4l2.MPlaneBufferInfo
	frame    *VideoFrame
	released bool
}

// Index returns the kernel buffer index this ref was dequeued from.
func (r *ReadableBufferRef) Index() uint32 { return r.index }

// BytesUsed returns the number of valid bytes in plane.
func (r *ReadableBufferRef) BytesUsed(plane int) uint32 {
	if plane < 0 || plane >= len(r.info.Planes) {
		return 0
	}
	return r.info.Planes[plane].BytesUsed
}

// PlaneBytes returns the mapped, bytes-used-trimmed slice for plane.
func (r *ReadableBufferRef) PlaneBytes(plane int) ([]byte, error) {
	buf := r.queue.buffers[r.index]
	if plane < 0 || plane >= len(buf.Planes) {
		return nil, fmt.Errorf("iobuf: plane %d out of range (have %d)", plane, len(buf.Planes))
	}
	if buf.Planes[plane].mapped == nil {
		data, err := v4l2MapMemoryBuffer(r.queue.fd, int64(buf.Planes[plane].MemOffset), int(buf.Planes[plane].Length))
		if err != nil {
			return nil, fmt.Errorf("iobuf: map plane %d: %w", plane, err)
		}
		buf.Planes[plane].mapped = data
	}
	n := r.BytesUsed(plane)
	if int(n) > len(buf.Planes[plane].mapped) {
		n = uint32(len(buf.Planes[plane].mapped))
	}
	return buf.Planes[plane].mapped[:n], nil
}

// Timestamp returns the buffer's dequeue-time timestamp.
func (r *ReadableBufferRef) Timestamp() v4l2.Timeval { return r.info.Timestamp }

// BufferID returns the client-assigned id recorded on enqueue, if any.
func (r *ReadableBufferRef) BufferID() int64 { return r.queue.buffers[r.index].BufferID }

// IsLast reports the driver's LAST flag, signalling the end of a flushed
// stream (§4.4.4 Dequeue pass).
func (r *ReadableBufferRef) IsLast() bool { return r.info.Flags&v4l2.BufFlagLast != 0 }

// IsKeyFrame reports the driver's keyframe flag.
func (r *ReadableBufferRef) IsKeyFrame() bool { return r.info.Flags&v4l2.BufFlagKeyFrame != 0 }

// HasError reports the driver's per-buffer error flag.
func (r *ReadableBufferRef) HasError() bool { return r.info.Flags&v4l2.BufFlagError != 0 }

// Frame returns the VideoFrame the engine attached on enqueue, or nil.
func (r *ReadableBufferRef) Frame() *VideoFrame { return r.frame }

// Release returns the index to the free list. Safe to call multiple times;
// subsequent calls are no-ops.
func (r *ReadableBufferRef) Release() {
	if r.released {
		return
	}
	r.released = true
	r.queue.returnToFreeList(r.index)
}
