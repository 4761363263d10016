package decoder

import (
	"fmt"

	"github.com/hwcodec/mcil/iobuf"
	"github.com/hwcodec/mcil/v4l2"
)

// startResolutionChange implements §4.4.5: torn down and rebuilt output
// queue sized to the driver's new coded dimensions and DPB requirement.
func (d *Decoder) startResolutionChange() error {
	d.state.Store(StateChangingResolution)
	d.pollThread.Stop()

	if err := d.output.StreamOff(); err != nil {
		return fmt.Errorf("resolution change: stream off output: %w", err)
	}

	d.client.DestroyOutputBuffers()

	if d.output.AllocatedCount() > 0 {
		if err := d.output.Deallocate(); err != nil {
			return fmt.Errorf("resolution change: deallocate output: %w", err)
		}
	}

	dpbSize := 0
	if ctrl, err := v4l2GetControl(d.handle.Fd(), v4l2.CtrlMinimumCaptureBuffers); err == nil {
		dpbSize = int(ctrl.Value)
	}
	outputCount := uint32(dpbSize + outputBufferExtras)

	newFormat, err := v4l2GetPixFormatMPlane(d.handle.Fd(), v4l2.BufTypeVideoCaptureMPlane)
	if err != nil {
		return fmt.Errorf("resolution change: get output format: %w", err)
	}
	d.output.SetFormat(newFormat)
	d.codedSizeKnown = true

	visible, err := d.visibleRect(newFormat.Width, newFormat.Height)
	if err != nil {
		return fmt.Errorf("resolution change: visible rect: %w", err)
	}

	coded := iobuf.ColorPlane{Stride: newFormat.Width, Offset: 0, Size: newFormat.Width * newFormat.Height}
	visiblePlane := iobuf.ColorPlane{Stride: uint32(visible.Width), Offset: 0, Size: uint32(visible.Width) * uint32(visible.Height)}
	if err := d.client.CreateBuffersForFormat(coded, visiblePlane); err != nil {
		return fmt.Errorf("resolution change: client create buffers for format: %w", err)
	}

	if err := d.client.CreateOutputBuffers(d.pixelFormat, int(outputCount), 0); err != nil {
		return fmt.Errorf("resolution change: client create output buffers: %w", err)
	}

	if _, err := d.output.Allocate(outputCount, v4l2.StreamTypeMMAP); err != nil {
		return fmt.Errorf("resolution change: allocate output: %w", err)
	}

	d.pollThread.Start()
	d.postDevicePoll(false)

	d.state.Store(StateDecoding)
	return nil
}

// visibleRect computes the visible rectangle within a coded frame, preferring
// G_SELECTION(COMPOSE) and falling back to G_CROP on drivers that predate
// the selection API (§4.4.5 step 6). The result is validated to originate at
// (0,0) and fit within the coded size.
func (d *Decoder) visibleRect(codedW, codedH uint32) (v4l2.Rect, error) {
	sel, err := v4l2GetSelection(d.handle.Fd(), v4l2.BufTypeVideoCaptureMPlane, v4l2.SelTargetCompose)
	rect := sel.Rect
	if err != nil {
		rect, err = v4l2GetCropRect(d.handle.Fd(), v4l2.BufTypeVideoCaptureMPlane)
		if err != nil {
			return v4l2.Rect{}, fmt.Errorf("no selection or crop rect available: %w", err)
		}
	}

	if rect.Left != 0 || rect.Top != 0 {
		return v4l2.Rect{}, fmt.Errorf("visible rect does not originate at (0,0): %+v", rect)
	}
	if rect.Width > codedW || rect.Height > codedH {
		return v4l2.Rect{}, fmt.Errorf("visible rect %+v exceeds coded size %dx%d", rect, codedW, codedH)
	}
	return rect, nil
}
