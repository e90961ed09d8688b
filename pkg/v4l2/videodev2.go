//go:build linux

package v4l2

// Struct layouts with no pointer-sized fields, ported from
// <linux/videodev2.h>. Apart from v4l2_input, whose size follows the
// architecture's uint64 alignment, they are identical on 32-bit and
// 64-bit architectures. Arch-dependent layouts (those embedding a timeval
// or a pointer-sized union member) live in videodev2_64bit.go and
// videodev2_32bit.go.

const (
	V4L2_BUF_TYPE_VIDEO_CAPTURE = 1

	V4L2_MEMORY_MMAP = 1

	V4L2_FIELD_ANY = 0

	V4L2_COLORSPACE_DEFAULT = 0

	V4L2_FRMSIZE_TYPE_DISCRETE   = 1
	V4L2_FRMSIZE_TYPE_CONTINUOUS = 2
	V4L2_FRMSIZE_TYPE_STEPWISE   = 3

	V4L2_FRMIVAL_TYPE_DISCRETE   = 1
	V4L2_FRMIVAL_TYPE_CONTINUOUS = 2
	V4L2_FRMIVAL_TYPE_STEPWISE   = 3

	V4L2_BUF_FLAG_ERROR = 0x0040

	V4L2_CAP_VIDEO_CAPTURE = 0x00000001
	V4L2_CAP_STREAMING     = 0x04000000
	V4L2_CAP_DEVICE_CAPS   = 0x80000000

	V4L2_CAP_TIMEPERFRAME = 0x1000

	V4L2_INPUT_TYPE_TUNER  = 1
	V4L2_INPUT_TYPE_CAMERA = 2

	V4L2_IN_ST_NO_POWER  = 0x00000001
	V4L2_IN_ST_NO_SIGNAL = 0x00000002
)

// Pixel formats in common use. The core only treats these as opaque
// fourcc values; it never reinterprets or converts them.
const (
	V4L2_PIX_FMT_YUYV  = 'Y' | 'U'<<8 | 'Y'<<16 | 'V'<<24
	V4L2_PIX_FMT_MJPEG = 'M' | 'J'<<8 | 'P'<<16 | 'G'<<24
)

type v4l2_capability struct { // size 104
	driver       [16]byte
	card         [32]byte
	bus_info     [32]byte
	version      uint32
	capabilities uint32
	device_caps  uint32
	reserved     [3]uint32
}

type v4l2_pix_format struct { // size 48
	width        uint32
	height       uint32
	pixelformat  uint32
	field        uint32
	bytesperline uint32
	sizeimage    uint32
	colorspace   uint32
	priv         uint32
	flags        uint32
	ycbcr_enc    uint32
	quantization uint32
	xfer_func    uint32
}

type v4l2_format struct { // size 204
	typ uint32
	pix v4l2_pix_format
	_   [152]byte
}

type v4l2_fract struct { // size 8
	numerator   uint32
	denominator uint32
}

type v4l2_captureparm struct { // size 40
	capability   uint32
	capturemode  uint32
	timeperframe v4l2_fract
	extendedmode uint32
	readbuffers  uint32
	reserved     [4]uint32
}

type v4l2_streamparm struct { // size 204
	typ     uint32
	capture v4l2_captureparm
	_       [160]byte
}

type v4l2_requestbuffers struct { // size 20
	count        uint32
	typ          uint32
	memory       uint32
	capabilities uint32
	flags        uint8
	reserved     [3]uint8
}

type v4l2_timecode struct { // size 16
	typ      uint32
	flags    uint32
	frames   uint8
	seconds  uint8
	minutes  uint8
	hours    uint8
	userbits [4]uint8
}

type v4l2_fmtdesc struct { // size 64
	index       uint32
	typ         uint32
	flags       uint32
	description [32]byte
	pixelformat uint32
	mbus_code   uint32
	reserved    [3]uint32
}

type v4l2_frmsize_discrete struct { // size 8
	width  uint32
	height uint32
}

type v4l2_frmsizeenum struct { // size 44
	index        uint32
	pixel_format uint32
	typ          uint32
	discrete     v4l2_frmsize_discrete
	_            [16]byte
	reserved     [2]uint32
}

type v4l2_frmivalenum struct { // size 52
	index        uint32
	pixel_format uint32
	width        uint32
	height       uint32
	typ          uint32
	discrete     v4l2_fract
	_            [16]byte
	reserved     [2]uint32
}

type v4l2_input struct { // size 80 on amd64/arm64, 76 on 386/arm
	index        uint32
	name         [32]byte
	typ          uint32
	audioset     uint32
	tuner        uint32
	std          uint64
	status       uint32
	capabilities uint32
	reserved     [3]uint32
}
