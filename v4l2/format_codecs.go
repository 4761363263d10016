package v4l2

// #include <linux/videodev2.h>
import "C"

// Codec elementary-stream FourCCs needed by the decoder/encoder engines but
// missing from format.go's capture-oriented constant block (§6 FourCC list).
var (
	// PixelFmtVP8 is for VP8 video elementary streams.
	PixelFmtVP8 FourCCType = C.V4L2_PIX_FMT_VP8
	// PixelFmtVP9 is for VP9 video elementary streams.
	PixelFmtVP9 FourCCType = C.V4L2_PIX_FMT_VP9
)

func init() {
	PixelFormats[PixelFmtVP8] = "VP8"
	PixelFormats[PixelFmtVP9] = "VP9"
}
