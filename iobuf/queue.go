package iobuf

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hwcodec/mcil/v4l2"
)

// Queue is identified by its V4L2 buffer type (OUTPUT_MPLANE or
// CAPTURE_MPLANE) and owns the allocated buffers, the free list, and the
// queued-map of in-flight kernel buffers (§3 Queue, §4.2).
//
// Queue mutation happens on the engine thread except for the free list,
// which a WritableBufferRef or ReadableBufferRef may return to from another
// goroutine; freeMu guards exactly that set operation (§5 locking
// discipline — no lock held across a syscall).
type Queue struct {
	fd      uintptr
	bufType v4l2.BufType
	memType v4l2.StreamType
	format  v4l2.PixFormatMPlane

	buffers []*Buffer

	freeMu   sync.Mutex
	freeList []uint32

	queuedMap map[uint32]*VideoFrame
	streaming bool
}

// NewQueue creates an unallocated queue bound to fd for the given buffer
// type. Call SetFormat before Allocate.
func NewQueue(fd uintptr, bufType v4l2.BufType) *Queue {
	return &Queue{fd: fd, bufType: bufType, queuedMap: map[uint32]*VideoFrame{}}
}

// SetFormat records the last successfully set V4L2 format (§3 Queue.format).
func (q *Queue) SetFormat(f v4l2.PixFormatMPlane) { q.format = f }

// Format returns the last format recorded via SetFormat.
func (q *Queue) Format() v4l2.PixFormatMPlane { return q.format }

// BufType returns the queue's V4L2 buffer type.
func (q *Queue) BufType() v4l2.BufType { return q.bufType }

// Streaming reports whether stream_on has been called without a matching
// stream_off.
func (q *Queue) Streaming() bool { return q.streaming }

// AllocatedCount returns the number of buffers currently allocated.
func (q *Queue) AllocatedCount() int { return len(q.buffers) }

// FreeCount returns the number of buffers currently on the free list.
func (q *Queue) FreeCount() int {
	q.freeMu.Lock()
	defer q.freeMu.Unlock()
	return len(q.freeList)
}

// QueuedCount returns the number of buffers currently owned by the kernel.
func (q *Queue) QueuedCount() int { return len(q.queuedMap) }

// Allocate issues REQBUFS(count, bufType, memType) and QUERYBUF for each
// allocated index, honoring the driver-returned count (§4.2 Allocation).
// Fails if streaming or if buffers already exist.
func (q *Queue) Allocate(count uint32, memType v4l2.StreamType) (uint32, error) {
	if q.streaming {
		return 0, errors.New("iobuf: allocate while streaming")
	}
	if len(q.buffers) > 0 {
		return 0, errors.New("iobuf: buffers already allocated")
	}

	actual, err := v4l2RequestBuffersMPlane(q.fd, q.bufType, memType, count)
	if err != nil {
		return 0, fmt.Errorf("iobuf: allocate: %w", err)
	}

	q.memType = memType
	q.buffers = make([]*Buffer, actual)
	q.freeList = make([]uint32, 0, actual)
	numPlanes := uint32(len(q.format.Planes))
	if numPlanes == 0 {
		numPlanes = 1
	}

	for i := uint32(0); i < actual; i++ {
		info, err := v4l2QueryBufferMPlane(q.fd, q.bufType, memType, i, numPlanes)
		if err != nil {
			return 0, fmt.Errorf("iobuf: allocate: query buffer %d: %w", i, err)
		}
		buf := &Buffer{Index: i, BufType: q.bufType, MemoryType: memType}
		buf.Planes = make([]PlaneInfo, len(info.Planes))
		for p, pl := range info.Planes {
			buf.Planes[p] = PlaneInfo{Length: pl.Length, MemOffset: pl.MemOffset}
		}
		q.buffers[i] = buf
		q.freeList = append(q.freeList, i)
	}
	return actual, nil
}

// Deallocate unmaps any held mmaps, clears the free list, then issues
// REQBUFS(0). Fails while streaming (§4.2 Deallocation).
func (q *Queue) Deallocate() error {
	if q.streaming {
		return errors.New("iobuf: deallocate while streaming")
	}
	for _, buf := range q.buffers {
		for i := range buf.Planes {
			if buf.Planes[i].mapped != nil {
				if err := v4l2UnmapMemoryBuffer(buf.Planes[i].mapped); err != nil {
					return fmt.Errorf("iobuf: deallocate: unmap: %w", err)
				}
				buf.Planes[i].mapped = nil
			}
		}
		buf.destroyed = true
	}
	q.buffers = nil
	q.freeMu.Lock()
	q.freeList = nil
	q.freeMu.Unlock()
	q.queuedMap = map[uint32]*VideoFrame{}

	if _, err := v4l2RequestBuffersMPlane(q.fd, q.bufType, q.memType, 0); err != nil {
		return fmt.Errorf("iobuf: deallocate: reqbufs(0): %w", err)
	}
	return nil
}

// StreamOn is idempotent (§4.2 Streaming).
func (q *Queue) StreamOn() error {
	if q.streaming {
		return nil
	}
	if err := v4l2StreamOnType(q.fd, q.bufType); err != nil {
		return fmt.Errorf("iobuf: stream on: %w", err)
	}
	q.streaming = true
	return nil
}

// StreamOff releases all currently-queued buffers back to the free list and
// resets streaming (§4.2 Streaming).
func (q *Queue) StreamOff() error {
	if !q.streaming {
		return nil
	}
	if err := v4l2StreamOffType(q.fd, q.bufType); err != nil {
		return fmt.Errorf("iobuf: stream off: %w", err)
	}
	q.freeMu.Lock()
	for idx := range q.queuedMap {
		q.freeList = append(q.freeList, idx)
	}
	q.freeMu.Unlock()
	q.queuedMap = map[uint32]*VideoFrame{}
	q.streaming = false
	return nil
}

func (q *Queue) returnToFreeList(idx uint32) {
	q.freeMu.Lock()
	q.freeList = append(q.freeList, idx)
	q.freeMu.Unlock()
}

// GetFreeBuffer pops an index from the free list and returns a
// WritableBufferRef, or ok=false if none are free (§4.2 Free-buffer
// handoff).
func (q *Queue) GetFreeBuffer() (ref *WritableBufferRef, ok bool) {
	q.freeMu.Lock()
	if len(q.freeList) == 0 {
		q.freeMu.Unlock()
		return nil, false
	}
	idx := q.freeList[len(q.freeList)-1]
	q.freeList = q.freeList[:len(q.freeList)-1]
	q.freeMu.Unlock()
	return &WritableBufferRef{queue: q, index: idx}, true
}

// Dequeue issues DQBUF. Returns (nil, nil) when streaming is off, nothing is
// queued, or the kernel reports EAGAIN/EPIPE (no buffer ready); returns a
// non-nil error only on an unexpected ioctl failure (§4.2 Dequeue).
func (q *Queue) Dequeue() (*ReadableBufferRef, error) {
	if !q.streaming || len(q.queuedMap) == 0 {
		return nil, nil
	}

	numPlanes := uint32(len(q.format.Planes))
	if numPlanes == 0 {
		numPlanes = 1
	}

	info, err := v4l2DequeueBufferMPlane(q.fd, q.bufType, q.memType, numPlanes)
	if err != nil {
		if errors.Is(err, v4l2.ErrWouldBlock) {
			return nil, nil
		}
		return nil, fmt.Errorf("iobuf: dequeue: %w", err)
	}

	frame := q.queuedMap[info.Index]
	delete(q.queuedMap, info.Index)

	buf := q.buffers[info.Index]
	for i, p := range info.Planes {
		if i < len(buf.Planes) {
			buf.Planes[i].BytesUsed = p.BytesUsed
		}
	}
	buf.Timestamp = info.Timestamp

	return &ReadableBufferRef{queue: q, index: info.Index, info: info, frame: frame}, nil
}

// enqueue issues QBUF for w's index with the given userptrs (nil for mmap
// memory) and records the attached frame in queued_map on success. On
// failure the index still returns to the free list via the ref's drop path.
func (q *Queue) enqueue(w *WritableBufferRef, ptrs []uintptr) error {
	w.consumed = true
	buf := q.buffers[w.index]

	bytesUsed := make([]uint32, len(buf.Planes))
	for i := range buf.Planes {
		bytesUsed[i] = buf.Planes[i].BytesUsed
	}

	_, err := v4l2QueueBufferMPlane(q.fd, q.bufType, q.memType, w.index, bytesUsed, ptrs, w.timestamp)
	if err != nil {
		q.returnToFreeList(w.index)
		return fmt.Errorf("iobuf: enqueue: %w", err)
	}

	q.queuedMap[w.index] = w.frame
	buf.BufferID = w.bufferID
	buf.Timestamp = w.timestamp
	return nil
}
