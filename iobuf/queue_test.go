package iobuf

import (
	"errors"
	"testing"

	"github.com/hwcodec/mcil/v4l2"
)

// fakeDriver models just enough kernel-side queue bookkeeping to exercise
// Queue without a real device node, following the function-variable mocking
// seam go4vl's device/device_test.go uses for v4l2.OpenDevice et al.
type fakeDriver struct {
	planeLen  uint32
	streaming map[v4l2.BufType]bool
	queued    map[v4l2.BufType][]uint32
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		planeLen:  4096,
		streaming: map[v4l2.BufType]bool{},
		queued:    map[v4l2.BufType][]uint32{},
	}
}

func (d *fakeDriver) install(t *testing.T) {
	t.Helper()
	origReq, origQuery, origQueue, origDeq := v4l2RequestBuffersMPlane, v4l2QueryBufferMPlane, v4l2QueueBufferMPlane, v4l2DequeueBufferMPlane
	origOn, origOff, origMap, origUnmap := v4l2StreamOnType, v4l2StreamOffType, v4l2MapMemoryBuffer, v4l2UnmapMemoryBuffer
	t.Cleanup(func() {
		v4l2RequestBuffersMPlane, v4l2QueryBufferMPlane = origReq, origQuery
		v4l2QueueBufferMPlane, v4l2DequeueBufferMPlane = origQueue, origDeq
		v4l2StreamOnType, v4l2StreamOffType = origOn, origOff
		v4l2MapMemoryBuffer, v4l2UnmapMemoryBuffer = origMap, origUnmap
	})

	v4l2RequestBuffersMPlane = func(fd uintptr, bufType v4l2.BufType, memType v4l2.StreamType, count uint32) (uint32, error) {
		return count, nil
	}
	v4l2QueryBufferMPlane = func(fd uintptr, bufType v4l2.BufType, memType v4l2.StreamType, index, numPlanes uint32) (v4l2.MPlaneBufferInfo, error) {
		planes := make([]v4l2.PlaneLayout, numPlanes)
		for i := range planes {
			planes[i] = v4l2.PlaneLayout{Length: d.planeLen, MemOffset: index*numPlanes*d.planeLen + uint32(i)*d.planeLen}
		}
		return v4l2.MPlaneBufferInfo{Index: index, BufType: bufType, Planes: planes}, nil
	}
	v4l2QueueBufferMPlane = func(fd uintptr, bufType v4l2.BufType, memType v4l2.StreamType, index uint32, bytesUsed []uint32, ptrs []uintptr, ts v4l2.Timeval) (v4l2.MPlaneBufferInfo, error) {
		d.queued[bufType] = append(d.queued[bufType], index)
		return v4l2.MPlaneBufferInfo{Index: index, BufType: bufType}, nil
	}
	v4l2DequeueBufferMPlane = func(fd uintptr, bufType v4l2.BufType, memType v4l2.StreamType, numPlanes uint32) (v4l2.MPlaneBufferInfo, error) {
		q := d.queued[bufType]
		if len(q) == 0 {
			return v4l2.MPlaneBufferInfo{}, v4l2.ErrWouldBlock
		}
		idx := q[0]
		d.queued[bufType] = q[1:]
		planes := make([]v4l2.PlaneLayout, numPlanes)
		for i := range planes {
			planes[i].BytesUsed = 10
		}
		return v4l2.MPlaneBufferInfo{Index: idx, BufType: bufType, Planes: planes}, nil
	}
	v4l2StreamOnType = func(fd uintptr, bufType v4l2.BufType) error {
		d.streaming[bufType] = true
		return nil
	}
	v4l2StreamOffType = func(fd uintptr, bufType v4l2.BufType) error {
		d.streaming[bufType] = false
		d.queued[bufType] = nil
		return nil
	}
	v4l2MapMemoryBuffer = func(fd uintptr, offset int64, length int) ([]byte, error) {
		return make([]byte, length), nil
	}
	v4l2UnmapMemoryBuffer = func(buf []byte) error { return nil }
}

func TestQueueAllocateFreeListInvariant(t *testing.T) {
	d := newFakeDriver()
	d.install(t)

	q := NewQueue(0, v4l2.BufTypeVideoOutputMPlane)
	q.SetFormat(v4l2.PixFormatMPlane{Planes: []v4l2.PlaneFormat{{SizeImage: 4096}}})

	n, err := q.Allocate(8, v4l2.StreamTypeMMAP)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if n != 8 || q.AllocatedCount() != 8 || q.FreeCount() != 8 {
		t.Fatalf("want 8 allocated+free, got allocated=%d free=%d", q.AllocatedCount(), q.FreeCount())
	}
}

func TestQueueDeallocateWhileStreamingFails(t *testing.T) {
	d := newFakeDriver()
	d.install(t)

	q := NewQueue(0, v4l2.BufTypeVideoOutputMPlane)
	q.SetFormat(v4l2.PixFormatMPlane{Planes: []v4l2.PlaneFormat{{SizeImage: 4096}}})
	if _, err := q.Allocate(4, v4l2.StreamTypeMMAP); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := q.StreamOn(); err != nil {
		t.Fatalf("stream on: %v", err)
	}
	if err := q.Deallocate(); err == nil {
		t.Fatal("expected deallocate-while-streaming to fail")
	}
}

func TestQueueEnqueueDequeueRoundTrip(t *testing.T) {
	d := newFakeDriver()
	d.install(t)

	q := NewQueue(0, v4l2.BufTypeVideoCaptureMPlane)
	q.SetFormat(v4l2.PixFormatMPlane{Planes: []v4l2.PlaneFormat{{SizeImage: 4096}}})
	if _, err := q.Allocate(2, v4l2.StreamTypeMMAP); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := q.StreamOn(); err != nil {
		t.Fatalf("stream on: %v", err)
	}

	ref, ok := q.GetFreeBuffer()
	if !ok {
		t.Fatal("expected a free buffer")
	}
	frame := NewVideoFrame(PixelFormatNV12, 1920, 1080, []ColorPlane{{Size: 4096}}, nil)
	ref.AttachFrame(frame)
	if err := ref.QueueMMap(); err != nil {
		t.Fatalf("queue: %v", err)
	}
	if q.QueuedCount() != 1 || q.FreeCount() != 1 {
		t.Fatalf("want queued=1 free=1, got queued=%d free=%d", q.QueuedCount(), q.FreeCount())
	}

	readable, err := q.Dequeue()
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if readable == nil {
		t.Fatal("expected a readable ref")
	}
	if readable.Frame() != frame {
		t.Fatal("expected the attached frame to survive the round trip")
	}
	readable.Release()
	if q.FreeCount() != 2 {
		t.Fatalf("want free=2 after release, got %d", q.FreeCount())
	}
}

func TestQueueDequeueWouldBlockReturnsNilNil(t *testing.T) {
	d := newFakeDriver()
	d.install(t)

	q := NewQueue(0, v4l2.BufTypeVideoCaptureMPlane)
	q.SetFormat(v4l2.PixFormatMPlane{Planes: []v4l2.PlaneFormat{{SizeImage: 4096}}})
	if _, err := q.Allocate(1, v4l2.StreamTypeMMAP); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	ref, _ := q.GetFreeBuffer()
	if err := ref.QueueMMap(); err != nil {
		t.Fatalf("queue: %v", err)
	}
	if err := q.StreamOn(); err != nil {
		t.Fatalf("stream on: %v", err)
	}
	d.queued[q.BufType()] = nil // driver has nothing ready yet

	ref2, err := q.Dequeue()
	if err != nil || ref2 != nil {
		t.Fatalf("want (nil, nil) on empty driver queue, got (%v, %v)", ref2, err)
	}
}

func TestQueueEnqueueFailureReturnsIndexToFreeList(t *testing.T) {
	d := newFakeDriver()
	d.install(t)
	v4l2QueueBufferMPlane = func(fd uintptr, bufType v4l2.BufType, memType v4l2.StreamType, index uint32, bytesUsed []uint32, ptrs []uintptr, ts v4l2.Timeval) (v4l2.MPlaneBufferInfo, error) {
		return v4l2.MPlaneBufferInfo{}, errors.New("driver rejected qbuf")
	}

	q := NewQueue(0, v4l2.BufTypeVideoOutputMPlane)
	q.SetFormat(v4l2.PixFormatMPlane{Planes: []v4l2.PlaneFormat{{SizeImage: 4096}}})
	if _, err := q.Allocate(2, v4l2.StreamTypeMMAP); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	ref, _ := q.GetFreeBuffer()
	if err := ref.QueueMMap(); err == nil {
		t.Fatal("expected enqueue failure")
	}
	if q.FreeCount() != 2 {
		t.Fatalf("want index returned to free list on failure, free=%d", q.FreeCount())
	}
}

func TestVideoFrameRefCounting(t *testing.T) {
	released := false
	f := NewVideoFrame(PixelFormatI420, 640, 480, []ColorPlane{{Size: 100}}, func(*VideoFrame) {
		released = true
	})
	f.Ref()
	f.Unref()
	if released {
		t.Fatal("frame released too early")
	}
	f.Unref()
	if !released {
		t.Fatal("frame not released at zero refs")
	}
}

func TestFourCCPixelFormatRoundTrip(t *testing.T) {
	for _, pix := range []PixelFormat{PixelFormatI420, PixelFormatNV12, PixelFormatYUY2, PixelFormatP010, PixelFormatMT21} {
		code, err := PixelFormatToFourCC(pix)
		if err != nil {
			t.Fatalf("%v: %v", pix, err)
		}
		back, err := FourCCToPixelFormat(code)
		if err != nil {
			t.Fatalf("%v: %v", pix, err)
		}
		if back != pix {
			t.Fatalf("round trip mismatch: %v -> %#x -> %v", pix, code, back)
		}
	}
}
