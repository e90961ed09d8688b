//go:build linux

package v4l2

import (
	"unsafe"

	"github.com/ramsafin/ros-video-streaming/pkg/ioctl"
)

// queryIdentity issues QUERYCAP and returns the driver/card/bus strings
// plus the capability bitfield. It has no side effects and its result
// is safe to cache for the lifetime of an open descriptor.
func queryIdentity(b backend) (Identity, error) {
	var capa v4l2_capability
	if err := b.ioctl(VIDIOC_QUERYCAP, unsafe.Pointer(&capa)); err != nil {
		return Identity{}, err
	}

	caps := capa.capabilities
	if caps&V4L2_CAP_DEVICE_CAPS != 0 {
		caps = capa.device_caps
	}

	return Identity{
		Driver:       ioctl.Str(capa.driver[:]),
		Card:         ioctl.Str(capa.card[:]),
		Bus:          ioctl.Str(capa.bus_info[:]),
		Capabilities: caps,
	}, nil
}

// hasRequiredCapabilities reports whether id carries both VIDEO_CAPTURE
// and STREAMING, the minimum this package needs to drive a device.
func hasRequiredCapabilities(id Identity) bool {
	return id.HasCapture() && id.HasStreaming()
}

// checkCurrentInput reports whether the input currently selected via
// G_INPUT is a usable camera: its ENUMINPUT record must report
// type == CAMERA and must have neither NO_POWER nor NO_SIGNAL set.
func checkCurrentInput(b backend) (bool, error) {
	var index uint32
	if err := b.ioctl(VIDIOC_G_INPUT, unsafe.Pointer(&index)); err != nil {
		return false, err
	}

	in := v4l2_input{index: index}
	if err := b.ioctl(VIDIOC_ENUMINPUT, unsafe.Pointer(&in)); err != nil {
		return false, err
	}

	if in.typ != V4L2_INPUT_TYPE_CAMERA {
		return false, nil
	}
	if in.status&(V4L2_IN_ST_NO_POWER|V4L2_IN_ST_NO_SIGNAL) != 0 {
		return false, nil
	}
	return true, nil
}

// EnumerateCapabilities builds the full CapabilityMap by iterating
// ENUM_FMT, then ENUM_FRAMESIZES per format, then ENUM_FRAMEINTERVALS
// per discrete size. Each enumeration loop increments index until the
// driver returns an error (EINVAL, conventionally "no more entries").
func EnumerateCapabilities(b backend) (CapabilityMap, error) {
	out := make(CapabilityMap)

	for fmtIndex := uint32(0); ; fmtIndex++ {
		var fd v4l2_fmtdesc
		fd.index = fmtIndex
		fd.typ = V4L2_BUF_TYPE_VIDEO_CAPTURE

		if err := b.ioctl(VIDIOC_ENUM_FMT, unsafe.Pointer(&fd)); err != nil {
			break
		}

		pf := PixelFormat(fd.pixelformat)
		entries, err := enumerateFrameSizes(b, pf)
		if err != nil {
			return nil, err
		}
		out[pf] = entries
	}

	return out, nil
}

func enumerateFrameSizes(b backend, pf PixelFormat) ([]SizeEntry, error) {
	var entries []SizeEntry

	for sizeIndex := uint32(0); ; sizeIndex++ {
		var fs v4l2_frmsizeenum
		fs.index = sizeIndex
		fs.pixel_format = uint32(pf)

		if err := b.ioctl(VIDIOC_ENUM_FRAMESIZES, unsafe.Pointer(&fs)); err != nil {
			break
		}

		entry := SizeEntry{}

		switch fs.typ {
		case V4L2_FRMSIZE_TYPE_DISCRETE:
			entry.Kind = SizeDiscrete
			entry.Resolution = Resolution{Width: fs.discrete.width, Height: fs.discrete.height}

			intervals, err := enumerateFrameIntervals(b, pf, entry.Resolution)
			if err != nil {
				return nil, err
			}
			entry.Intervals = intervals

		case V4L2_FRMSIZE_TYPE_STEPWISE:
			entry.Kind = SizeStepwise
		default:
			entry.Kind = SizeContinuous
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func enumerateFrameIntervals(b backend, pf PixelFormat, res Resolution) ([]FrameInterval, error) {
	var intervals []FrameInterval

	for ivalIndex := uint32(0); ; ivalIndex++ {
		var fi v4l2_frmivalenum
		fi.index = ivalIndex
		fi.pixel_format = uint32(pf)
		fi.width = res.Width
		fi.height = res.Height

		if err := b.ioctl(VIDIOC_ENUM_FRAMEINTERVALS, unsafe.Pointer(&fi)); err != nil {
			break
		}

		if fi.typ != V4L2_FRMIVAL_TYPE_DISCRETE {
			continue
		}

		intervals = append(intervals, FrameInterval{
			Numerator:   fi.discrete.numerator,
			Denominator: fi.discrete.denominator,
		})
	}

	return intervals, nil
}
