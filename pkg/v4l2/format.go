//go:build linux

package v4l2

import (
	"unsafe"

	"github.com/rs/zerolog"
)

// negotiateFormat commits requested in two phases: TRY_FMT asks whether
// the driver can honor the triple verbatim, then S_FMT installs it. The
// driver is allowed to silently alter pixel format, width, or height;
// any difference from the request is reported as FormatNotSupportedError
// with both the requested and the actual format attached. Field
// selection is fixed to V4L2_FIELD_ANY.
func negotiateFormat(b backend, requested FormatSpec) (FormatSpec, error) {
	var fmt v4l2_format
	fmt.typ = V4L2_BUF_TYPE_VIDEO_CAPTURE
	fmt.pix.width = requested.Width
	fmt.pix.height = requested.Height
	fmt.pix.pixelformat = uint32(requested.PixelFormat)
	fmt.pix.field = V4L2_FIELD_ANY

	if err := b.ioctl(VIDIOC_TRY_FMT, unsafe.Pointer(&fmt)); err != nil {
		return FormatSpec{}, err
	}

	if err := b.ioctl(VIDIOC_S_FMT, unsafe.Pointer(&fmt)); err != nil {
		return FormatSpec{}, err
	}

	actual := FormatSpec{
		PixelFormat:  PixelFormat(fmt.pix.pixelformat),
		Width:        fmt.pix.width,
		Height:       fmt.pix.height,
		BytesPerLine: fmt.pix.bytesperline,
		SizeImage:    fmt.pix.sizeimage,
	}

	if actual.PixelFormat != requested.PixelFormat || actual.Width != requested.Width || actual.Height != requested.Height {
		return actual, &FormatNotSupportedError{Requested: requested, Actual: actual}
	}

	return actual, nil
}

// negotiateFrameRate commits fps via S_PARM as timeperframe = (1, fps).
// The driver's returned denominator is the effective rate and is
// retained even when it differs from the request (many drivers round
// silently; this is not an error). If the stream's capture parameters
// don't advertise TIMEPERFRAME, negotiation is skipped with a warning
// and the zero FrameInterval is returned.
func negotiateFrameRate(b backend, fps uint32, log zerolog.Logger) (FrameInterval, error) {
	var parm v4l2_streamparm
	parm.typ = V4L2_BUF_TYPE_VIDEO_CAPTURE

	if err := b.ioctl(VIDIOC_G_PARM, unsafe.Pointer(&parm)); err != nil {
		return FrameInterval{}, err
	}

	if parm.capture.capability&V4L2_CAP_TIMEPERFRAME == 0 {
		log.Warn().Msg("driver does not support per-frame timing, skipping frame rate negotiation")
		return FrameInterval{}, nil
	}

	parm.capture.timeperframe = v4l2_fract{numerator: 1, denominator: fps}

	if err := b.ioctl(VIDIOC_S_PARM, unsafe.Pointer(&parm)); err != nil {
		return FrameInterval{}, err
	}

	actual := FrameInterval{
		Numerator:   parm.capture.timeperframe.numerator,
		Denominator: parm.capture.timeperframe.denominator,
	}

	if actual.Denominator != fps {
		log.Warn().
			Uint32("requested_fps", fps).
			Uint32("actual_fps", actual.Denominator).
			Msg("driver adjusted frame rate")
	}

	return actual, nil
}
