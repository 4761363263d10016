package device

import (
	"sort"
	sys "syscall"

	"github.com/hwcodec/mcil/v4l2"
)

// CodecProfile is mcil's unified profile namespace. V4L2's raw per-codec
// profile enums (H264Profile, VP9Profile, ...) overlap in numeric space —
// H.264 baseline and VP9 profile 0 are both 0 — so SupportedProfile needs
// its own tag rather than exposing the raw control value directly.
type CodecProfile int

const (
	ProfileH264Baseline CodecProfile = iota
	ProfileH264Main
	ProfileH264High
	ProfileVP8Profile0
	ProfileVP9Profile0
	ProfileVP9Profile1
	ProfileVP9Profile2
	ProfileVP9Profile3
)

// SupportedProfile describes one decode or encode profile a probed device
// advertises, with the resolution range it supports at that profile (§3
// SupportedProfile).
type SupportedProfile struct {
	ProfileID     CodecProfile
	MinWidth      uint32
	MinHeight     uint32
	MaxWidth      uint32
	MaxHeight     uint32
	EncryptedOnly bool
}

const (
	fallbackMinDim = 16
	fallbackMaxDim = 1920 // paired with 1080 below; see fallbackResolution
)

func fallbackResolution() (minW, minH, maxW, maxH uint32) {
	return fallbackMinDim, fallbackMinDim, fallbackMaxDim, 1080
}

// h264MenuProfiles maps a QUERYMENU index on CtrlMPEGVideoH264Profile (which
// V4L2 defines 1:1 with the V4L2_MPEG_VIDEO_H264_PROFILE_* enum values) to
// mcil's unified namespace; profile values this engine doesn't support
// (extended, constrained-baseline, ...) are skipped.
var h264MenuProfiles = map[uint32]CodecProfile{
	v4l2.H264ProfileBaseline: ProfileH264Baseline,
	v4l2.H264ProfileMain:     ProfileH264Main,
	v4l2.H264ProfileHigh:     ProfileH264High,
}

var vp9MenuProfiles = map[uint32]CodecProfile{
	v4l2.VP9Profile0: ProfileVP9Profile0,
	v4l2.VP9Profile1: ProfileVP9Profile1,
	v4l2.VP9Profile2: ProfileVP9Profile2,
	v4l2.VP9Profile3: ProfileVP9Profile3,
}

// fallbackProfilesFor is used when the driver exposes no profile control at
// all for the pixel format (§4.1 get_supported_decode/encode_profiles
// fallback list).
func fallbackProfilesFor(pixFmt v4l2.FourCCType) []CodecProfile {
	switch pixFmt {
	case v4l2.PixelFmtH264:
		return []CodecProfile{ProfileH264Baseline, ProfileH264Main, ProfileH264High}
	case v4l2.PixelFmtVP9:
		return []CodecProfile{ProfileVP9Profile0}
	case v4l2.PixelFmtVP8:
		return []CodecProfile{ProfileVP8Profile0}
	default:
		return nil
	}
}

func profileCtrlFor(pixFmt v4l2.FourCCType) (v4l2.CtrlID, map[uint32]CodecProfile) {
	switch pixFmt {
	case v4l2.PixelFmtH264:
		return v4l2.CtrlMPEGVideoH264Profile, h264MenuProfiles
	case v4l2.PixelFmtVP9:
		return v4l2.CtrlMPEGVideoVP9Profile, vp9MenuProfiles
	default:
		return 0, nil
	}
}

// GetSupportedDecodeProfiles probes every decoder-kind path in table,
// enumerating the OUTPUT_MPLANE (bitstream input) side of each for coded
// formats and, for each, the resolution range and allowed profiles (§4.1
// get_supported_decode_profiles).
func GetSupportedDecodeProfiles(table ProbeTable, opts ...Option) ([]SupportedProfile, error) {
	return enumerateProfiles(KindDecoder, v4l2.BufTypeVideoOutputMPlane, table, opts...)
}

// GetSupportedEncodeProfiles probes every encoder-kind path in table,
// enumerating the CAPTURE_MPLANE (bitstream output) side of each (§4.1
// get_supported_encode_profiles).
func GetSupportedEncodeProfiles(table ProbeTable, opts ...Option) ([]SupportedProfile, error) {
	return enumerateProfiles(KindEncoder, v4l2.BufTypeVideoCaptureMPlane, table, opts...)
}

func enumerateProfiles(kind Kind, bufType v4l2.BufType, table ProbeTable, opts ...Option) ([]SupportedProfile, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	seen := map[CodecProfile]*SupportedProfile{}
	for _, path := range table.Paths[kind] {
		fd, err := v4l2OpenDevice(path, sys.O_RDWR|sys.O_NONBLOCK, 0)
		if err != nil {
			continue
		}

		descs, _ := v4l2GetFormatDescriptionsForType(fd, bufType)
		for _, d := range descs {
			profiles := driverProfiles(fd, d.PixelFormat)
			if len(profiles) == 0 {
				continue
			}
			minW, minH, maxW, maxH := rangeForFormat(fd, d.PixelFormat)

			for _, p := range profiles {
				existing, ok := seen[p]
				if !ok {
					seen[p] = &SupportedProfile{ProfileID: p, MinWidth: minW, MinHeight: minH, MaxWidth: maxW, MaxHeight: maxH}
					continue
				}
				existing.MinWidth = min32(existing.MinWidth, minW)
				existing.MinHeight = min32(existing.MinHeight, minH)
				existing.MaxWidth = max32(existing.MaxWidth, maxW)
				existing.MaxHeight = max32(existing.MaxHeight, maxH)
			}
		}
		v4l2CloseDevice(fd)
	}

	result := make([]SupportedProfile, 0, len(seen))
	for _, p := range seen {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProfileID < result[j].ProfileID })
	return result, nil
}

func driverProfiles(fd uintptr, pixFmt v4l2.FourCCType) []CodecProfile {
	ctrlID, menu := profileCtrlFor(pixFmt)
	if menu == nil {
		return fallbackProfilesFor(pixFmt)
	}

	ctrl, err := v4l2GetControl(fd, ctrlID)
	if err != nil {
		return fallbackProfilesFor(pixFmt)
	}
	items, err := ctrl.GetMenuItems()
	if err != nil || len(items) == 0 {
		return fallbackProfilesFor(pixFmt)
	}

	var result []CodecProfile
	for _, item := range items {
		if p, ok := menu[item.Index]; ok {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return fallbackProfilesFor(pixFmt)
	}
	return result
}

func rangeForFormat(fd uintptr, pixFmt v4l2.FourCCType) (minW, minH, maxW, maxH uint32) {
	sizes, err := v4l2GetFormatFrameSizes(fd, pixFmt)
	if err != nil || len(sizes) == 0 {
		return fallbackResolution()
	}

	minW, minH = ^uint32(0), ^uint32(0)
	for _, s := range sizes {
		minW = min32(minW, s.Size.MinWidth)
		minH = min32(minH, s.Size.MinHeight)
		maxW = max32(maxW, s.Size.MaxWidth)
		maxH = max32(maxH, s.Size.MaxHeight)
	}
	if maxW == 0 || maxH == 0 {
		return fallbackResolution()
	}
	return minW, minH, maxW, maxH
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
