//go:build linux

package v4l2

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"github.com/rs/zerolog"
)

// CaptureConfig is the configuration surface passed at construction and
// mutable only outside Streaming (invariant S1).
type CaptureConfig struct {
	Device       string      `yaml:"device"`
	PixelFormat  PixelFormat `yaml:"pixel_format"`
	Width        uint32      `yaml:"width"`
	Height       uint32      `yaml:"height"`
	FrameRateFPS uint32      `yaml:"frame_rate_fps"`
	BufferCount  uint32      `yaml:"buffer_count"`
}

// DefaultConfig returns the documented defaults: YUYV 640x480@30 with a
// four-buffer ring. Device has no default; it is required.
func DefaultConfig() CaptureConfig {
	return CaptureConfig{
		PixelFormat:  PixelFormat(V4L2_PIX_FMT_YUYV),
		Width:        640,
		Height:       480,
		FrameRateFPS: 30,
		BufferCount:  4,
	}
}

func applyDefaults(cfg CaptureConfig) CaptureConfig {
	d := DefaultConfig()
	if cfg.PixelFormat == 0 {
		cfg.PixelFormat = d.PixelFormat
	}
	if cfg.Width == 0 {
		cfg.Width = d.Width
	}
	if cfg.Height == 0 {
		cfg.Height = d.Height
	}
	if cfg.FrameRateFPS == 0 {
		cfg.FrameRateFPS = d.FrameRateFPS
	}
	if cfg.BufferCount == 0 {
		cfg.BufferCount = d.BufferCount
	}
	return cfg
}

func validateConfig(cfg CaptureConfig) error {
	if cfg.Device == "" {
		return fmt.Errorf("v4l2: device path is required")
	}
	if cfg.BufferCount < minBuffers || cfg.BufferCount > maxBuffers {
		return fmt.Errorf("v4l2: buffer_count %d out of range [%d, %d]", cfg.BufferCount, minBuffers, maxBuffers)
	}
	if cfg.FrameRateFPS == 0 {
		return fmt.Errorf("v4l2: frame_rate_fps must be positive")
	}
	return nil
}

// Param names a single configuration field exposed through Get/Set.
// ParamBuffersNum is read-only: it reflects the live ring size once
// Streaming, not the configured request.
type Param int

const (
	ParamWidth Param = iota
	ParamHeight
	ParamFrameRateFPS
	ParamBufferCount
	ParamPixelFormat
	ParamBuffersNum
)

// Capture drives one V4L2 device through the Closed -> Opened ->
// Configured -> Streaming -> Stopped lifecycle. It is not safe for
// concurrent use: every method executes on the caller's goroutine and
// the object assumes single-threaded, cooperative access, matching the
// single open descriptor and buffer ring it owns exclusively.
type Capture struct {
	cfg   CaptureConfig
	state CaptureState
	log   zerolog.Logger

	be backend

	identity      Identity
	negotiated    FormatSpec
	frameInterval FrameInterval

	ring *bufferRing

	readTimeout time.Duration
}

// Open validates cfg, applies documented defaults, and opens the
// device. On success the capture is in state Opened; no format has
// been negotiated and no buffers are mapped yet.
func Open(cfg CaptureConfig, log zerolog.Logger) (*Capture, error) {
	cfg = applyDefaults(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	be, err := openDevice(cfg.Device, log)
	if err != nil {
		return nil, err
	}

	return &Capture{
		cfg:         cfg,
		state:       Opened,
		log:         log,
		be:          be,
		readTimeout: defaultReadTimeout,
	}, nil
}

func (c *Capture) IsOpened() bool {
	return c.state != Closed
}

func (c *Capture) IsStreaming() bool {
	return c.state == Streaming
}

func (c *Capture) State() CaptureState {
	return c.state
}

// Start funnels through capability checks, format/frame-rate
// negotiation, and buffer ring setup, then issues STREAMON. Any failure
// rolls back the partial ring (if one was allocated) and leaves the
// capture in whatever state it was called from (Opened or Stopped).
func (c *Capture) Start() error {
	if c.state == Streaming {
		return nil
	}
	if c.state != Opened && c.state != Stopped {
		return fmt.Errorf("v4l2: start: invalid state %s", c.state)
	}

	prevState := c.state

	identity, err := queryIdentity(c.be)
	if err != nil {
		return err
	}
	if !hasRequiredCapabilities(identity) {
		return &UnsupportedCapabilitiesError{Reason: "missing VIDEO_CAPTURE or STREAMING capability"}
	}

	inputOK, err := checkCurrentInput(c.be)
	if err != nil {
		return err
	}
	if !inputOK {
		return &UnsupportedCapabilitiesError{Reason: "current input is not an active camera"}
	}

	requested := FormatSpec{
		PixelFormat: c.cfg.PixelFormat,
		Width:       c.cfg.Width,
		Height:      c.cfg.Height,
	}

	actual, err := negotiateFormat(c.be, requested)
	if err != nil {
		c.state = prevState
		return err
	}

	interval, err := negotiateFrameRate(c.be, c.cfg.FrameRateFPS, c.log)
	if err != nil {
		c.state = prevState
		return err
	}

	c.identity = identity
	c.negotiated = actual
	c.frameInterval = interval
	c.state = Configured

	ring, err := newBufferRing(c.be, c.cfg.BufferCount, c.log)
	if err != nil {
		c.state = prevState
		return err
	}

	if err := ring.enqueueAll(c.be); err != nil {
		ring.teardown(c.be, c.log)
		c.state = prevState
		return err
	}

	streamType := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
	if err := c.be.ioctl(VIDIOC_STREAMON, unsafe.Pointer(&streamType)); err != nil {
		ring.teardown(c.be, c.log)
		c.state = prevState
		return &StreamStartFailedError{Err: err}
	}

	c.ring = ring
	c.state = Streaming
	return nil
}

// Stop is a no-op returning nil when not Streaming. From Streaming it
// issues STREAMOFF and tears the ring down unconditionally: a
// STREAMOFF failure is logged but never prevents the transition to
// Stopped, since the kernel releases its side when the descriptor is
// eventually closed regardless.
func (c *Capture) Stop() error {
	if c.state != Streaming {
		return nil
	}

	streamType := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
	if err := c.be.ioctl(VIDIOC_STREAMOFF, unsafe.Pointer(&streamType)); err != nil {
		c.log.Warn().Err(err).Msg("STREAMOFF failed, releasing ring regardless")
	}

	if c.ring != nil {
		c.ring.teardown(c.be, c.log)
		c.ring = nil
	}

	c.state = Stopped
	return nil
}

// Read implements the hot loop: wait for readiness, DQBUF, classify,
// copy, requeue. It never returns an error for the transient
// conditions (timeout, EAGAIN, EIO, a corrupted buffer) that the
// driver produces in the ordinary course of streaming; those produce
// (Frame{}, false) instead, matching Option<Frame> from the source
// design translated into Go's (value, ok) idiom.
func (c *Capture) Read() (Frame, bool) {
	if c.state != Streaming {
		return Frame{}, false
	}

	ready, err := c.be.waitReadable(c.readTimeout)
	if err != nil {
		c.log.Warn().Err(err).Msg("read: readiness wait")
		return Frame{}, false
	}
	if !ready {
		return Frame{}, false
	}

	var buf v4l2_buffer
	buf.typ = V4L2_BUF_TYPE_VIDEO_CAPTURE
	buf.memory = V4L2_MEMORY_MMAP

	if err := c.be.ioctl(VIDIOC_DQBUF, unsafe.Pointer(&buf)); err != nil {
		switch err {
		case syscall.EAGAIN:
			// spurious wakeup, nothing queued yet
		case syscall.EIO:
			c.log.Warn().Msg("DQBUF: EIO, driver may recover")
		default:
			c.log.Warn().Err(err).Msg("DQBUF")
		}
		return Frame{}, false
	}

	if buf.flags&V4L2_BUF_FLAG_ERROR != 0 || buf.bytesused != c.negotiated.SizeImage {
		c.log.Warn().Uint32("index", buf.index).Msg("corrupted buffer, requeuing without delivery")
		buf.bytesused = 0
		if err := c.be.ioctl(VIDIOC_QBUF, unsafe.Pointer(&buf)); err != nil {
			c.log.Warn().Err(err).Msg("QBUF after corrupted buffer")
		}
		return Frame{}, false
	}

	mapped := c.ring.buffers[buf.index].data
	frame := Frame{
		Bytes:       append([]byte(nil), mapped[:buf.bytesused]...),
		Sequence:    buf.sequence,
		TimestampNs: buf.timestamp.nanos(),
	}

	if err := c.be.ioctl(VIDIOC_QBUF, unsafe.Pointer(&buf)); err != nil {
		c.log.Warn().Err(err).Msg("QBUF")
	}

	return frame, true
}

// Get reads back a configuration field. ParamBuffersNum reports the
// live ring size and is only meaningful once Streaming.
func (c *Capture) Get(p Param) (int, bool) {
	switch p {
	case ParamWidth:
		return int(c.cfg.Width), true
	case ParamHeight:
		return int(c.cfg.Height), true
	case ParamFrameRateFPS:
		return int(c.cfg.FrameRateFPS), true
	case ParamBufferCount:
		return int(c.cfg.BufferCount), true
	case ParamPixelFormat:
		return int(c.cfg.PixelFormat), true
	case ParamBuffersNum:
		if c.ring == nil {
			return 0, false
		}
		return c.ring.len(), true
	default:
		return 0, false
	}
}

// Set rejects the call outright while Streaming (invariant S1, I5) and
// validates against the documented ranges before mutating anything.
func (c *Capture) Set(p Param, value int) bool {
	if c.state == Streaming {
		return false
	}

	switch p {
	case ParamWidth:
		if value <= 0 {
			return false
		}
		c.cfg.Width = uint32(value)
	case ParamHeight:
		if value <= 0 {
			return false
		}
		c.cfg.Height = uint32(value)
	case ParamFrameRateFPS:
		if value <= 0 {
			return false
		}
		c.cfg.FrameRateFPS = uint32(value)
	case ParamBufferCount:
		if value < minBuffers || value > maxBuffers {
			return false
		}
		c.cfg.BufferCount = uint32(value)
	case ParamPixelFormat:
		c.cfg.PixelFormat = PixelFormat(value)
	default:
		return false
	}

	return true
}

// Close stops streaming if needed and closes the device descriptor. It
// is idempotent and never raises: any close-path error is logged.
func (c *Capture) Close() error {
	if c.state == Closed {
		return nil
	}

	if c.state == Streaming {
		_ = c.Stop()
	}

	if err := c.be.close(); err != nil {
		c.log.Warn().Err(err).Msg("close")
	}

	c.state = Closed
	return nil
}
