package iobuf

import "github.com/hwcodec/mcil/v4l2"

// PlaneInfo caches one plane's length/offset/bytes-used, plus its lazily
// created mmap region when the queue's memory class is MMAP (§3 Buffer).
type PlaneInfo struct {
	Length    uint32
	MemOffset uint32
	BytesUsed uint32
	mapped    []byte
}

// Buffer is identified by (queue, index) and mirrors one kernel-side
// v4l2_buffer slot: its plane layout, memory class, an optional attached
// VideoFrame, a presentation timestamp, and an optional client buffer id
// used by the decoder's id-binding feed path (§4.4.3).
type Buffer struct {
	Index      uint32
	BufType    v4l2.BufType
	MemoryType v4l2.StreamType
	Planes     []PlaneInfo
	Frame      *VideoFrame
	Timestamp  v4l2.Timeval
	BufferID   int64

	destroyed bool
}

// NumPlanes reports the number of planes this buffer was allocated with.
// Invariant: NumPlanes() <= MaxPlanes (§3 Buffer invariants).
func (b *Buffer) NumPlanes() int {
	return len(b.Planes)
}
