package device

import (
	"testing"

	"github.com/hwcodec/mcil/v4l2"
)

// fakeBus models just enough of the kernel-side open/capability/format surface
// to exercise Open's probe loop without a real device node, following the
// same function-variable mocking seam iobuf/v4l2calls.go uses one layer
// down.
type fakeBus struct {
	descsByPath map[string][]v4l2.FormatDescription
	capsByPath  map[string]v4l2.Capability
	openFail    map[string]bool
	closed      []uintptr
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		descsByPath: map[string][]v4l2.FormatDescription{},
		capsByPath:  map[string]v4l2.Capability{},
		openFail:    map[string]bool{},
	}
}

func (b *fakeBus) install(t *testing.T) {
	t.Helper()
	origOpen, origClose := v4l2OpenDevice, v4l2CloseDevice
	origDescs, origCap := v4l2GetFormatDescriptionsForType, v4l2GetCapability
	t.Cleanup(func() {
		v4l2OpenDevice, v4l2CloseDevice = origOpen, origClose
		v4l2GetFormatDescriptionsForType, v4l2GetCapability = origDescs, origCap
	})

	paths := map[string]uintptr{}
	var next uintptr = 3
	v4l2OpenDevice = func(path string, flags, mode int) (uintptr, error) {
		if b.openFail[path] {
			return 0, v4l2.ErrWouldBlock
		}
		fd, ok := paths[path]
		if !ok {
			fd = next
			next++
			paths[path] = fd
		}
		return fd, nil
	}
	v4l2CloseDevice = func(fd uintptr) error {
		b.closed = append(b.closed, fd)
		return nil
	}
	v4l2GetFormatDescriptionsForType = func(fd uintptr, bufType v4l2.BufType) ([]v4l2.FormatDescription, error) {
		for path, pfd := range paths {
			if pfd == fd {
				return b.descsByPath[path], nil
			}
		}
		return nil, nil
	}
	v4l2GetCapability = func(fd uintptr) (v4l2.Capability, error) {
		for path, pfd := range paths {
			if pfd == fd {
				return b.capsByPath[path], nil
			}
		}
		return v4l2.Capability{}, nil
	}
}

func TestOpenPicksFirstMatchingPath(t *testing.T) {
	b := newFakeBus()
	b.descsByPath["/dev/video9"] = []v4l2.FormatDescription{{PixelFormat: v4l2.PixelFmtVP8}}
	b.descsByPath["/dev/video10"] = []v4l2.FormatDescription{{PixelFormat: v4l2.PixelFmtH264}}
	b.capsByPath["/dev/video10"] = v4l2.Capability{Capabilities: v4l2.CapVideoMem2MemMPlane | v4l2.CapStreaming}
	b.install(t)

	table := ProbeTable{Paths: map[Kind][]string{KindDecoder: {"/dev/video9", "/dev/video10"}}}
	h, err := Open(KindDecoder, v4l2.BufTypeVideoOutputMPlane, v4l2.PixelFmtH264, table)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer h.Close()

	if h.Path() != "/dev/video10" {
		t.Fatalf("want /dev/video10, got %s", h.Path())
	}
	if !h.Capability().IsVideoMem2MemMPlaneSupported() {
		t.Fatal("expected capability to round trip")
	}
}

func TestOpenNoMatchReturnsErrNoDevice(t *testing.T) {
	b := newFakeBus()
	b.descsByPath["/dev/video10"] = []v4l2.FormatDescription{{PixelFormat: v4l2.PixelFmtVP8}}
	b.install(t)

	table := ProbeTable{Paths: map[Kind][]string{KindDecoder: {"/dev/video10"}}}
	_, err := Open(KindDecoder, v4l2.BufTypeVideoOutputMPlane, v4l2.PixelFmtH264, table)
	if err == nil {
		t.Fatal("expected ErrNoDevice")
	}
}

func TestOpenSkipsPathThatFailsToOpen(t *testing.T) {
	b := newFakeBus()
	b.openFail["/dev/video10"] = true
	b.descsByPath["/dev/video11"] = []v4l2.FormatDescription{{PixelFormat: v4l2.PixelFmtH264}}
	b.install(t)

	table := ProbeTable{Paths: map[Kind][]string{KindDecoder: {"/dev/video10", "/dev/video11"}}}
	h, err := Open(KindDecoder, v4l2.BufTypeVideoOutputMPlane, v4l2.PixelFmtH264, table)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer h.Close()
	if h.Path() != "/dev/video11" {
		t.Fatalf("want /dev/video11, got %s", h.Path())
	}
}

func TestHandlePollInterruptRoundTrip(t *testing.T) {
	b := newFakeBus()
	b.descsByPath["/dev/video10"] = []v4l2.FormatDescription{{PixelFormat: v4l2.PixelFmtH264}}
	b.install(t)

	table := ProbeTable{Paths: map[Kind][]string{KindDecoder: {"/dev/video10"}}}
	h, err := Open(KindDecoder, v4l2.BufTypeVideoOutputMPlane, v4l2.PixelFmtH264, table)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer h.Close()

	// The interrupt eventfd is a real kernel fd (not mocked); SetDevicePollInterrupt
	// followed by Poll(false) must return promptly without touching the device fd.
	if err := h.SetDevicePollInterrupt(); err != nil {
		t.Fatalf("set interrupt: %v", err)
	}
	pending, err := h.Poll(false)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if pending {
		t.Fatal("expected eventPending=false when not polling the device fd")
	}
}

func TestHandleMethodsFailAfterClose(t *testing.T) {
	b := newFakeBus()
	b.descsByPath["/dev/video10"] = []v4l2.FormatDescription{{PixelFormat: v4l2.PixelFmtH264}}
	b.install(t)

	table := ProbeTable{Paths: map[Kind][]string{KindDecoder: {"/dev/video10"}}}
	h, err := Open(KindDecoder, v4l2.BufTypeVideoOutputMPlane, v4l2.PixelFmtH264, table)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("close should be idempotent: %v", err)
	}
	if err := h.SetDevicePollInterrupt(); err != ErrClosed {
		t.Fatalf("want ErrClosed, got %v", err)
	}
	if _, err := h.Mmap(0, 4096); err != ErrClosed {
		t.Fatalf("want ErrClosed, got %v", err)
	}
}
