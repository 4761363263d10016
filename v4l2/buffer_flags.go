package v4l2

// #include <linux/videodev2.h>
import "C"

// BufFlag (v4l2_buffer flags) describes per-buffer state reported by
// QUERYBUF/QBUF/DQBUF. The block covers every flag named in
// streaming_test.go's table of expected flag names; decoder and encoder
// buffer refs need BufFlagLast (§4.4.4 flush handshake) and
// BufFlagKeyFrame/PFrame/BFrame (§3 ReadableBufferRef) specifically.
// See https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/buffer.html#buffer-flags
type BufFlag = uint32

const (
	BufFlagMapped              BufFlag = C.V4L2_BUF_FLAG_MAPPED
	BufFlagQueued              BufFlag = C.V4L2_BUF_FLAG_QUEUED
	BufFlagDone                BufFlag = C.V4L2_BUF_FLAG_DONE
	BufFlagKeyFrame            BufFlag = C.V4L2_BUF_FLAG_KEYFRAME
	BufFlagPFrame              BufFlag = C.V4L2_BUF_FLAG_PFRAME
	BufFlagBFrame              BufFlag = C.V4L2_BUF_FLAG_BFRAME
	BufFlagError               BufFlag = C.V4L2_BUF_FLAG_ERROR
	BufFlagTimeCode            BufFlag = C.V4L2_BUF_FLAG_TIMECODE
	BufFlagPrepared            BufFlag = C.V4L2_BUF_FLAG_PREPARED
	BufFlagNoCacheInvalidate   BufFlag = C.V4L2_BUF_FLAG_NO_CACHE_INVALIDATE
	BufFlagNoCacheClean        BufFlag = C.V4L2_BUF_FLAG_NO_CACHE_CLEAN
	BufFlagTimestampMonotonic  BufFlag = C.V4L2_BUF_FLAG_TIMESTAMP_MONOTONIC
	BufFlagTimestampCopy       BufFlag = C.V4L2_BUF_FLAG_TIMESTAMP_COPY
	BufFlagLast                BufFlag = C.V4L2_BUF_FLAG_LAST
	BufFlagRequestFD           BufFlag = C.V4L2_BUF_FLAG_REQUEST_FD
	BufFlagM2MHoldCaptureBuf   BufFlag = C.V4L2_BUF_FLAG_M2M_HOLD_CAPTURE_BUF
	BufFlagInRequest           BufFlag = C.V4L2_BUF_FLAG_IN_REQUEST
	BufFlagTimestampMask       BufFlag = C.V4L2_BUF_FLAG_TIMESTAMP_MASK
	BufFlagTimestampUnknown    BufFlag = C.V4L2_BUF_FLAG_TIMESTAMP_UNKNOWN
	BufFlagTimestampSourceMask BufFlag = C.V4L2_BUF_FLAG_TSTAMP_SRC_MASK
	BufFlagTimestampSourceEOF  BufFlag = C.V4L2_BUF_FLAG_TSTAMP_SRC_EOF
	BufFlagTimestampSourceSOE  BufFlag = C.V4L2_BUF_FLAG_TSTAMP_SRC_SOE
)

// BufFlagNames maps BufFlag constants to their short human-readable names,
// in the same spirit as PixelFormats/Colorspaces elsewhere in this package.
var BufFlagNames = map[BufFlag]string{
	BufFlagMapped:             "Mapped",
	BufFlagQueued:             "Queued",
	BufFlagDone:               "Done",
	BufFlagKeyFrame:           "KeyFrame",
	BufFlagPFrame:             "PFrame",
	BufFlagBFrame:             "BFrame",
	BufFlagError:              "Error",
	BufFlagTimeCode:           "TimeCode",
	BufFlagPrepared:           "Prepared",
	BufFlagLast:               "Last",
	BufFlagM2MHoldCaptureBuf:  "M2MHoldCaptureBuf",
}
