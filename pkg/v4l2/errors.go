package v4l2

import "fmt"

// NotACharacterDeviceError is returned when the configured device path
// exists but does not refer to a character device.
type NotACharacterDeviceError struct {
	Path string
}

func (e *NotACharacterDeviceError) Error() string {
	return fmt.Sprintf("v4l2: %q is not a character device", e.Path)
}

// OpenFailedError wraps the errno returned by stat(2) or open(2).
type OpenFailedError struct {
	Path string
	Err  error
}

func (e *OpenFailedError) Error() string {
	return fmt.Sprintf("v4l2: open %q: %v", e.Path, e.Err)
}

func (e *OpenFailedError) Unwrap() error { return e.Err }

// UnsupportedCapabilitiesError is returned when the driver lacks the
// required capability bits, or the currently selected input is not a
// usable camera input.
type UnsupportedCapabilitiesError struct {
	Reason string
}

func (e *UnsupportedCapabilitiesError) Error() string {
	return fmt.Sprintf("v4l2: unsupported capabilities: %s", e.Reason)
}

// FormatNotSupportedError is returned when the driver silently changed
// the pixel format, width, or height away from what was requested.
type FormatNotSupportedError struct {
	Requested, Actual FormatSpec
}

func (e *FormatNotSupportedError) Error() string {
	return fmt.Sprintf("v4l2: format not supported: requested %s, driver offered %s", e.Requested, e.Actual)
}

// InsufficientBuffersError is returned when REQBUFS granted fewer than
// the minimum usable ring size.
type InsufficientBuffersError struct {
	Granted uint32
}

func (e *InsufficientBuffersError) Error() string {
	return fmt.Sprintf("v4l2: insufficient buffers: driver granted %d, need at least %d", e.Granted, minBuffers)
}

// BufferMapFailedError is returned when QUERYBUF or mmap fails for a
// given ring index.
type BufferMapFailedError struct {
	Index int
	Err   error
}

func (e *BufferMapFailedError) Error() string {
	return fmt.Sprintf("v4l2: map buffer %d: %v", e.Index, e.Err)
}

func (e *BufferMapFailedError) Unwrap() error { return e.Err }

// StreamStartFailedError wraps a STREAMON failure.
type StreamStartFailedError struct {
	Err error
}

func (e *StreamStartFailedError) Error() string {
	return fmt.Sprintf("v4l2: STREAMON: %v", e.Err)
}

func (e *StreamStartFailedError) Unwrap() error { return e.Err }

// StreamStopFailedError wraps a STREAMOFF failure. Capture.Stop does not
// return it: Stop logs the STREAMOFF errno and always proceeds to Stopped.
type StreamStopFailedError struct {
	Err error
}

func (e *StreamStopFailedError) Error() string {
	return fmt.Sprintf("v4l2: STREAMOFF: %v", e.Err)
}

func (e *StreamStopFailedError) Unwrap() error { return e.Err }
