package device

import (
	"errors"
	"testing"

	"github.com/hwcodec/mcil/v4l2"
)

func installProfileBus(t *testing.T, descs []v4l2.FormatDescription, sizes []v4l2.FrameSizeEnum) {
	t.Helper()
	origOpen, origClose := v4l2OpenDevice, v4l2CloseDevice
	origDescs, origCtrl, origSizes := v4l2GetFormatDescriptionsForType, v4l2GetControl, v4l2GetFormatFrameSizes
	t.Cleanup(func() {
		v4l2OpenDevice, v4l2CloseDevice = origOpen, origClose
		v4l2GetFormatDescriptionsForType, v4l2GetControl, v4l2GetFormatFrameSizes = origDescs, origCtrl, origSizes
	})

	v4l2OpenDevice = func(path string, flags, mode int) (uintptr, error) { return 7, nil }
	v4l2CloseDevice = func(fd uintptr) error { return nil }
	v4l2GetFormatDescriptionsForType = func(fd uintptr, bufType v4l2.BufType) ([]v4l2.FormatDescription, error) {
		return descs, nil
	}
	// No profile control advertised: driverProfiles must fall back to the
	// fixed per-codec profile list rather than erroring.
	v4l2GetControl = func(fd uintptr, id v4l2.CtrlID) (v4l2.Control, error) {
		return v4l2.Control{}, errors.New("control not supported")
	}
	v4l2GetFormatFrameSizes = func(fd uintptr, encoding v4l2.FourCCType) ([]v4l2.FrameSizeEnum, error) {
		return sizes, nil
	}
}

func TestGetSupportedDecodeProfilesFallsBackWithoutProfileControl(t *testing.T) {
	descs := []v4l2.FormatDescription{{PixelFormat: v4l2.PixelFmtH264}}
	sizes := []v4l2.FrameSizeEnum{{Size: v4l2.FrameSize{MinWidth: 64, MinHeight: 64, MaxWidth: 1920, MaxHeight: 1080}}}
	installProfileBus(t, descs, sizes)

	table := ProbeTable{Paths: map[Kind][]string{KindDecoder: {"/dev/video10"}}}
	profiles, err := GetSupportedDecodeProfiles(table)
	if err != nil {
		t.Fatalf("get supported profiles: %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("want 3 H.264 fallback profiles, got %d", len(profiles))
	}
	for _, p := range profiles {
		if p.MaxWidth != 1920 || p.MaxHeight != 1080 {
			t.Fatalf("want resolution range from frame sizes, got %+v", p)
		}
	}
}

func TestGetSupportedProfilesUnknownFormatYieldsNone(t *testing.T) {
	descs := []v4l2.FormatDescription{{PixelFormat: v4l2.FourCCType(0xdeadbeef)}}
	installProfileBus(t, descs, nil)

	table := ProbeTable{Paths: map[Kind][]string{KindDecoder: {"/dev/video10"}}}
	profiles, err := GetSupportedDecodeProfiles(table)
	if err != nil {
		t.Fatalf("get supported profiles: %v", err)
	}
	if len(profiles) != 0 {
		t.Fatalf("want no profiles for an unrecognized format, got %+v", profiles)
	}
}

func TestRangeForFormatFallsBackWhenNoFrameSizes(t *testing.T) {
	minW, minH, maxW, maxH := rangeForFormat(0, v4l2.PixelFmtH264)
	if maxW != fallbackMaxDim || maxH != 1080 || minW != fallbackMinDim || minH != fallbackMinDim {
		t.Fatalf("want fallback resolution, got %d %d %d %d", minW, minH, maxW, maxH)
	}
}

func TestFallbackProfilesForEachCodec(t *testing.T) {
	cases := []struct {
		fourcc v4l2.FourCCType
		count  int
	}{
		{v4l2.PixelFmtH264, 3},
		{v4l2.PixelFmtVP8, 1},
		{v4l2.PixelFmtVP9, 1},
	}
	for _, c := range cases {
		if got := len(fallbackProfilesFor(c.fourcc)); got != c.count {
			t.Fatalf("%s: want %d fallback profiles, got %d", v4l2.PixelFormats[c.fourcc], c.count, got)
		}
	}
}
