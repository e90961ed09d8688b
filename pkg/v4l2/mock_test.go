//go:build linux

package v4l2

import (
	"syscall"
	"time"
	"unsafe"

	"github.com/rs/zerolog"
)

// mockBackend is a software V4L2 driver used to exercise Capture
// against the scenarios in the testable-properties section of the
// design this package implements, without a real device present.
type mockBackend struct {
	identity  Identity
	inputType uint32
	inputStat uint32

	acceptFormat bool
	format       FormatSpec

	supportsTimeperframe bool
	timeperframe         v4l2_fract

	bufferGrant  uint32
	bufferLength uint32

	queued map[uint32]bool
	mapped map[uint32][]byte

	streaming      bool
	streamOnCalls  int
	streamOffCalls int
	reqbufsCalls   []uint32
	mmapCalls      int
	munmapCalls    int
	closeCalls     int

	// dqQueue is consumed in order by DQBUF; waitReadable reports ready
	// whenever dqQueue is non-empty, or calls readyFunc if set.
	dqQueue   []mockDQEvent
	readyFunc func() (bool, error)
}

// mockDQEvent scripts one DQBUF response: either a delivered buffer (by
// index, with its sequence/bytesused/flags/timestamp) or an errno.
type mockDQEvent struct {
	index     uint32
	sequence  uint32
	bytesused uint32
	flags     uint32
	timestamp v4l2_timeval
	err       error
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		identity: Identity{
			Driver:       "mockcam",
			Card:         "Mock Camera",
			Bus:          "mock:0",
			Capabilities: V4L2_CAP_VIDEO_CAPTURE | V4L2_CAP_STREAMING,
		},
		inputType:            V4L2_INPUT_TYPE_CAMERA,
		acceptFormat:          true,
		supportsTimeperframe: true,
		bufferGrant:          4,
		bufferLength:         1024,
		queued:               make(map[uint32]bool),
		mapped:               make(map[uint32][]byte),
	}
}

func (m *mockBackend) fd() int { return 3 }

func (m *mockBackend) ioctl(req uintptr, arg unsafe.Pointer) error {
	switch req {
	case VIDIOC_QUERYCAP:
		cap := (*v4l2_capability)(arg)
		copy(cap.driver[:], m.identity.Driver)
		copy(cap.card[:], m.identity.Card)
		copy(cap.bus_info[:], m.identity.Bus)
		cap.capabilities = m.identity.Capabilities
		cap.device_caps = m.identity.Capabilities
		return nil

	case VIDIOC_G_INPUT:
		*(*uint32)(arg) = 0
		return nil

	case VIDIOC_ENUMINPUT:
		in := (*v4l2_input)(arg)
		if in.index != 0 {
			return syscall.EINVAL
		}
		in.typ = m.inputType
		in.status = m.inputStat
		return nil

	case VIDIOC_ENUM_FMT:
		fd := (*v4l2_fmtdesc)(arg)
		if fd.index != 0 {
			return syscall.EINVAL
		}
		fd.pixelformat = uint32(m.format.PixelFormat)
		return nil

	case VIDIOC_ENUM_FRAMESIZES:
		fs := (*v4l2_frmsizeenum)(arg)
		if fs.index != 0 {
			return syscall.EINVAL
		}
		fs.typ = V4L2_FRMSIZE_TYPE_DISCRETE
		fs.discrete = v4l2_frmsize_discrete{width: m.format.Width, height: m.format.Height}
		return nil

	case VIDIOC_ENUM_FRAMEINTERVALS:
		fi := (*v4l2_frmivalenum)(arg)
		if fi.index != 0 {
			return syscall.EINVAL
		}
		fi.typ = V4L2_FRMIVAL_TYPE_DISCRETE
		fi.discrete = v4l2_fract{numerator: 1, denominator: 30}
		return nil

	case VIDIOC_TRY_FMT, VIDIOC_S_FMT:
		f := (*v4l2_format)(arg)
		if m.acceptFormat {
			// the driver honors whatever was requested
			m.format = FormatSpec{
				PixelFormat: PixelFormat(f.pix.pixelformat),
				Width:       f.pix.width,
				Height:      f.pix.height,
			}
		}
		// otherwise the driver ignores the request and reports back
		// whatever fixed format it actually supports
		f.pix.pixelformat = uint32(m.format.PixelFormat)
		f.pix.width = m.format.Width
		f.pix.height = m.format.Height
		f.pix.bytesperline = m.format.Width * 2
		f.pix.sizeimage = m.bufferLength
		return nil

	case VIDIOC_G_PARM:
		p := (*v4l2_streamparm)(arg)
		if m.supportsTimeperframe {
			p.capture.capability = V4L2_CAP_TIMEPERFRAME
		}
		p.capture.timeperframe = m.timeperframe
		return nil

	case VIDIOC_S_PARM:
		p := (*v4l2_streamparm)(arg)
		if m.supportsTimeperframe {
			m.timeperframe = p.capture.timeperframe
		}
		return nil

	case VIDIOC_REQBUFS:
		r := (*v4l2_requestbuffers)(arg)
		m.reqbufsCalls = append(m.reqbufsCalls, r.count)
		if r.count == 0 {
			m.queued = make(map[uint32]bool)
			return nil
		}
		r.count = m.bufferGrant
		return nil

	case VIDIOC_QUERYBUF:
		b := (*v4l2_buffer)(arg)
		b.length = m.bufferLength
		b.offset = b.index * m.bufferLength
		return nil

	case VIDIOC_QBUF:
		b := (*v4l2_buffer)(arg)
		m.queued[b.index] = true
		return nil

	case VIDIOC_DQBUF:
		if len(m.dqQueue) == 0 {
			return syscall.EAGAIN
		}
		ev := m.dqQueue[0]
		m.dqQueue = m.dqQueue[1:]
		if ev.err != nil {
			return ev.err
		}
		b := (*v4l2_buffer)(arg)
		b.index = ev.index
		b.sequence = ev.sequence
		b.bytesused = ev.bytesused
		b.flags = ev.flags
		b.timestamp = ev.timestamp
		delete(m.queued, ev.index)
		return nil

	case VIDIOC_STREAMON:
		m.streamOnCalls++
		m.streaming = true
		return nil

	case VIDIOC_STREAMOFF:
		m.streamOffCalls++
		m.streaming = false
		return nil

	default:
		return syscall.ENOTTY
	}
}

func (m *mockBackend) waitReadable(timeout time.Duration) (bool, error) {
	if m.readyFunc != nil {
		return m.readyFunc()
	}
	return len(m.dqQueue) > 0, nil
}

func (m *mockBackend) mmap(offset, length uint32) ([]byte, error) {
	m.mmapCalls++
	index := offset / m.bufferLength
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = byte(index) + 1
	}
	m.mapped[index] = buf
	return buf, nil
}

func (m *mockBackend) munmap(b []byte) error {
	m.munmapCalls++
	for idx, data := range m.mapped {
		if &data[0] == &b[0] {
			delete(m.mapped, idx)
			break
		}
	}
	return nil
}

func (m *mockBackend) close() error {
	m.closeCalls++
	return nil
}

func newMockCapture(cfg CaptureConfig) (*Capture, *mockBackend) {
	mb := newMockBackend()
	mb.format = FormatSpec{PixelFormat: cfg.PixelFormat, Width: cfg.Width, Height: cfg.Height}

	c := &Capture{
		cfg:         cfg,
		state:       Opened,
		log:         zerolog.Nop(),
		be:          mb,
		readTimeout: defaultReadTimeout,
	}
	return c, mb
}
