package device

import (
	"errors"
	"fmt"
	sys "syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/hwcodec/mcil/v4l2"
)

// ErrNoDevice is returned by Open when no candidate path in the probe table
// yields a device exposing the requested pixel format on the requested
// buffer type.
var ErrNoDevice = errors.New("device: no matching device found")

// ErrClosed is returned by Handle methods once Close has been called.
var ErrClosed = errors.New("device: handle closed")

// Handle is a V4L2 M2M device node (§4.1 Device Handle): the open file
// descriptor, its reported capabilities, and the poll-interrupt eventfd.
// It generalizes go4vl's single-planar, capture-only Device — same
// Open/ioctl/Close shape (v4l2.OpenDevice/CloseDevice, send's EINTR retry)
// but bound to whichever multi-planar queue direction the caller asks for,
// with no stream loop or output channel of its own; the decoder/encoder
// engines own the streaming state via iobuf.Queue.
type Handle struct {
	path        string
	fd          uintptr
	cap         v4l2.Capability
	interruptFD int
	logger      *zap.Logger
	closed      bool
}

// Path returns the device node path this handle was opened against.
func (h *Handle) Path() string { return h.path }

// Fd returns the open file descriptor.
func (h *Handle) Fd() uintptr { return h.fd }

// Capability returns the capabilities reported by VIDIOC_QUERYCAP at open
// time.
func (h *Handle) Capability() v4l2.Capability { return h.cap }

// Open probes table's candidate paths for kind, opening each and checking
// whether its ENUM_FMT list for bufType contains pixFmt; the first match
// wins (§4.1 open). On success it also creates a non-blocking eventfd for
// poll interruption.
func Open(kind Kind, bufType v4l2.BufType, pixFmt v4l2.FourCCType, table ProbeTable, opts ...Option) (*Handle, error) {
	cfg := config{logger: zap.NewNop(), openFlags: sys.O_RDWR | sys.O_NONBLOCK}
	for _, opt := range opts {
		opt(&cfg)
	}

	paths := table.Paths[kind]
	for _, path := range paths {
		cfg.logger.Debug("probing device", zap.String("path", path), zap.Stringer("kind", kind))

		fd, err := v4l2OpenDevice(path, cfg.openFlags, 0)
		if err != nil {
			cfg.logger.Debug("probe failed to open", zap.String("path", path), zap.Error(err))
			continue
		}

		descs, err := v4l2GetFormatDescriptionsForType(fd, bufType)
		if err != nil && len(descs) == 0 {
			v4l2CloseDevice(fd)
			continue
		}
		matched := false
		for _, d := range descs {
			if d.PixelFormat == pixFmt {
				matched = true
				break
			}
		}
		if !matched {
			v4l2CloseDevice(fd)
			continue
		}

		capa, err := v4l2GetCapability(fd)
		if err != nil {
			v4l2CloseDevice(fd)
			continue
		}

		efd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
		if err != nil {
			v4l2CloseDevice(fd)
			return nil, fmt.Errorf("device: create interrupt eventfd: %w", err)
		}

		cfg.logger.Info("opened device", zap.String("path", path), zap.Stringer("kind", kind))
		return &Handle{path: path, fd: fd, cap: capa, interruptFD: efd, logger: cfg.logger}, nil
	}
	return nil, fmt.Errorf("device: open %s (pixfmt %s): %w", kind, v4l2.PixelFormats[pixFmt], ErrNoDevice)
}

// Close releases the interrupt eventfd and the device file descriptor.
// Idempotent.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	unix.Close(h.interruptFD)
	return v4l2CloseDevice(h.fd)
}

// Ioctl wraps the raw ioctl(2) syscall against this handle's fd, retrying
// on EINTR, mirroring v4l2/syscalls.go's ioctl/send pair one level up
// (those helpers are unexported; most callers should use the typed v4l2
// wrappers instead of Ioctl directly — this exists for the rare case of a
// request the v4l2 package hasn't wrapped yet).
func (h *Handle) Ioctl(request, arg uintptr) error {
	if h.closed {
		return ErrClosed
	}
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, h.fd, request, arg)
		switch errno {
		case 0:
			return nil
		case unix.EINTR:
			continue
		default:
			return errno
		}
	}
}

// SetDevicePollInterrupt writes the eventfd, unblocking a concurrent Poll
// (§4.1 set_device_poll_interrupt).
func (h *Handle) SetDevicePollInterrupt() error {
	if h.closed {
		return ErrClosed
	}
	var val [8]byte
	val[0] = 1
	_, err := unix.Write(h.interruptFD, val[:])
	if err != nil && !errors.Is(err, unix.EAGAIN) {
		return fmt.Errorf("device: set poll interrupt: %w", err)
	}
	return nil
}

// ClearDevicePollInterrupt drains the eventfd (§4.1
// clear_device_poll_interrupt). A no-op if the eventfd is already at zero.
func (h *Handle) ClearDevicePollInterrupt() error {
	if h.closed {
		return ErrClosed
	}
	var val [8]byte
	_, err := unix.Read(h.interruptFD, val[:])
	if err != nil && !errors.Is(err, unix.EAGAIN) {
		return fmt.Errorf("device: clear poll interrupt: %w", err)
	}
	return nil
}

// Poll blocks on the interrupt eventfd and, if pollDevice is set, this
// handle's device fd, then reports whether the device signalled POLLPRI —
// a V4L2 event is pending (§4.1 poll). Waking via the interrupt fd clears
// it before returning. Poll is the sole blocking call the poll thread
// makes; cancellation is SetDevicePollInterrupt from another goroutine.
func (h *Handle) Poll(pollDevice bool) (eventPending bool, err error) {
	if h.closed {
		return false, ErrClosed
	}
	fds := make([]unix.PollFd, 1, 2)
	fds[0] = unix.PollFd{Fd: int32(h.interruptFD), Events: unix.POLLIN}
	if pollDevice {
		fds = append(fds, unix.PollFd{Fd: int32(h.fd), Events: unix.POLLPRI})
	}

	for {
		_, perr := unix.Poll(fds, -1)
		if perr == nil {
			break
		}
		if errors.Is(perr, unix.EINTR) {
			continue
		}
		return false, fmt.Errorf("device: poll: %w", perr)
	}

	if fds[0].Revents&unix.POLLIN != 0 {
		if err := h.ClearDevicePollInterrupt(); err != nil {
			return false, err
		}
	}
	if pollDevice && len(fds) > 1 {
		eventPending = fds[1].Revents&unix.POLLPRI != 0
	}
	return eventPending, nil
}

// Mmap maps length bytes at offset on this handle's fd (§4.1 mmap).
func (h *Handle) Mmap(offset int64, length int) ([]byte, error) {
	if h.closed {
		return nil, ErrClosed
	}
	return v4l2MapMemoryBuffer(h.fd, offset, length)
}

// Munmap unmaps a slice previously returned by Mmap (§4.1 munmap).
func (h *Handle) Munmap(data []byte) error {
	return v4l2UnmapMemoryBuffer(data)
}

// GetDMABufsForBuffer issues one EXPBUF per plane for (bufType, index) and
// returns the resulting fds; on any plane's failure the whole batch is
// discarded (§4.1 get_dmabufs_for_buffer).
func (h *Handle) GetDMABufsForBuffer(bufType v4l2.BufType, index uint32, numPlanes uint32) ([]int32, error) {
	if h.closed {
		return nil, ErrClosed
	}
	fds, err := v4l2ExportDMABufsForBuffer(h.fd, bufType, index, numPlanes)
	if err != nil {
		return nil, err
	}
	return fds, nil
}
