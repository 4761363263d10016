package v4l2

// #include <linux/videodev2.h>
import "C"

import (
	"fmt"
	"unsafe"
)

// Decoder/encoder STOP/START flush commands (v4l2_decoder_cmd /
// v4l2_encoder_cmd). These drive the flush handshake of §4.4.3/§4.4.4
// (DECODER_CMD) and §4.5.2 (ENCODER_CMD): STOP asks the driver to drain its
// internal pipeline and mark the last output buffer with BufFlagLast; START
// re-arms the driver for further input after a flush completes.

// DecoderCmdType identifies a decoder command (v4l2_decoder_cmd.cmd).
type DecoderCmdType = uint32

const (
	DecoderCmdStart DecoderCmdType = C.V4L2_DEC_CMD_START
	DecoderCmdStop  DecoderCmdType = C.V4L2_DEC_CMD_STOP
	DecoderCmdPause DecoderCmdType = C.V4L2_DEC_CMD_PAUSE
	DecoderCmdReset DecoderCmdType = C.V4L2_DEC_CMD_RESET
)

// EncoderCmdType identifies an encoder command (v4l2_encoder_cmd.cmd).
type EncoderCmdType = uint32

const (
	EncoderCmdStart EncoderCmdType = C.V4L2_ENC_CMD_START
	EncoderCmdStop  EncoderCmdType = C.V4L2_ENC_CMD_STOP
	EncoderCmdPause EncoderCmdType = C.V4L2_ENC_CMD_PAUSE
	EncoderCmdResume EncoderCmdType = C.V4L2_ENC_CMD_RESUME
)

// DecoderCmd issues VIDIOC_DECODER_CMD.
func DecoderCmd(fd uintptr, cmd DecoderCmdType) error {
	var dc C.struct_v4l2_decoder_cmd
	dc.cmd = C.uint(cmd)
	if err := send(fd, C.VIDIOC_DECODER_CMD, uintptr(unsafe.Pointer(&dc))); err != nil {
		return fmt.Errorf("decoder cmd %d: %w", cmd, err)
	}
	return nil
}

// TryDecoderCmd issues VIDIOC_TRY_DECODER_CMD, used at init to probe
// whether the driver implements flush-via-command (§4.4.1 step 8) without
// actually perturbing decoder state.
func TryDecoderCmd(fd uintptr, cmd DecoderCmdType) error {
	var dc C.struct_v4l2_decoder_cmd
	dc.cmd = C.uint(cmd)
	if err := send(fd, C.VIDIOC_TRY_DECODER_CMD, uintptr(unsafe.Pointer(&dc))); err != nil {
		return fmt.Errorf("try decoder cmd %d: %w", cmd, err)
	}
	return nil
}

// EncoderCmd issues VIDIOC_ENCODER_CMD.
func EncoderCmd(fd uintptr, cmd EncoderCmdType) error {
	var ec C.struct_v4l2_encoder_cmd
	ec.cmd = C.uint(cmd)
	if err := send(fd, C.VIDIOC_ENCODER_CMD, uintptr(unsafe.Pointer(&ec))); err != nil {
		return fmt.Errorf("encoder cmd %d: %w", cmd, err)
	}
	return nil
}

// TryEncoderCmd issues VIDIOC_TRY_ENCODER_CMD, used at init to probe
// flush-via-command support (§4.5.1 step 3).
func TryEncoderCmd(fd uintptr, cmd EncoderCmdType) error {
	var ec C.struct_v4l2_encoder_cmd
	ec.cmd = C.uint(cmd)
	if err := send(fd, C.VIDIOC_TRY_ENCODER_CMD, uintptr(unsafe.Pointer(&ec))); err != nil {
		return fmt.Errorf("try encoder cmd %d: %w", cmd, err)
	}
	return nil
}
