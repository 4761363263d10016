package device

import (
	"syscall"
	"testing"

	"go.uber.org/zap"
)

func TestOptionsApplyOverDefaults(t *testing.T) {
	cfg := config{logger: zap.NewNop(), openFlags: syscall.O_RDWR}

	logger := zap.NewExample()
	WithLogger(logger)(&cfg)
	WithOpenFlags(syscall.O_RDWR | syscall.O_NONBLOCK)(&cfg)

	if cfg.logger != logger {
		t.Fatal("WithLogger did not take effect")
	}
	if cfg.openFlags != syscall.O_RDWR|syscall.O_NONBLOCK {
		t.Fatalf("WithOpenFlags did not take effect, got %#x", cfg.openFlags)
	}
}
