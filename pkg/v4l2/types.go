//go:build linux

package v4l2

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PixelFormat is a 32-bit fourcc tag such as 'YUYV' or 'MJPG'. It is
// never reinterpreted or byte-swapped; it is whatever value the driver
// advertises or accepts.
type PixelFormat uint32

func (p PixelFormat) String() string {
	return string([]byte{byte(p), byte(p >> 8), byte(p >> 16), byte(p >> 24)})
}

// UnmarshalYAML accepts either a four-character fourcc string ("MJPG")
// or a raw numeric tag, so capture config files can name formats the
// way V4L2 tooling does.
func (p *PixelFormat) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil && len(s) == 4 {
		*p = PixelFormat(uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24)
		return nil
	}

	var n uint32
	if err := value.Decode(&n); err != nil {
		return err
	}
	*p = PixelFormat(n)
	return nil
}

// Resolution is a frame size in pixels. Both fields are strictly
// positive for any Resolution that reaches negotiation.
type Resolution struct {
	Width, Height uint32
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// FrameInterval is a reciprocal frame rate: frames-per-second is
// Denominator/Numerator.
type FrameInterval struct {
	Numerator, Denominator uint32
}

func (f FrameInterval) FPS() float64 {
	if f.Numerator == 0 {
		return 0
	}
	return float64(f.Denominator) / float64(f.Numerator)
}

// Identity is the driver/card/bus string triple reported by QUERYCAP,
// plus the raw capability bitfield.
type Identity struct {
	Driver       string
	Card         string
	Bus          string
	Capabilities uint32
}

// HasCapture reports whether the device advertises VIDEO_CAPTURE.
func (id Identity) HasCapture() bool {
	return id.Capabilities&V4L2_CAP_VIDEO_CAPTURE != 0
}

// HasStreaming reports whether the device advertises STREAMING (the
// mmap-based ioctl capture model this package requires).
func (id Identity) HasStreaming() bool {
	return id.Capabilities&V4L2_CAP_STREAMING != 0
}

// SizeKind distinguishes the three V4L2_FRMSIZE_TYPE_* enumerations.
// Only Discrete sizes are consumed by format negotiation; the other two
// are surfaced for callers that want to inspect them but are otherwise
// skipped, per the spec's non-goal of continuous/stepwise negotiation.
type SizeKind int

const (
	SizeDiscrete SizeKind = iota
	SizeContinuous
	SizeStepwise
)

// SizeEntry is one ENUM_FRAMESIZES record for a given pixel format.
// Intervals is only populated for Discrete entries (ENUM_FRAMEINTERVALS
// is only meaningful against a discrete size).
type SizeEntry struct {
	Kind       SizeKind
	Resolution Resolution
	Intervals  []FrameInterval
}

// CapabilityMap is the full enumeration result: for each pixel format,
// every frame size the driver reports (discrete, continuous, or
// stepwise), and for discrete sizes, every discrete frame interval.
type CapabilityMap map[PixelFormat][]SizeEntry

// FormatSpec is the (pixel format, width, height) triple either
// requested of, or reported back by, the driver during negotiation.
type FormatSpec struct {
	PixelFormat  PixelFormat
	Width        uint32
	Height       uint32
	BytesPerLine uint32
	SizeImage    uint32
}

func (f FormatSpec) String() string {
	return fmt.Sprintf("%s %dx%d", f.PixelFormat, f.Width, f.Height)
}

// Frame is an immutable delivered capture payload. Bytes is a copy of
// the dequeued buffer contents made before the buffer is requeued to
// the driver, so its lifetime is independent of the buffer ring.
type Frame struct {
	Bytes       []byte
	Sequence    uint32
	TimestampNs int64
}

// CaptureState is the capture object's lifecycle position.
type CaptureState int

const (
	Closed CaptureState = iota
	Opened
	Configured
	Streaming
	Stopped
)

func (s CaptureState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Opened:
		return "opened"
	case Configured:
		return "configured"
	case Streaming:
		return "streaming"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
