//go:build linux

package v4l2

import (
	"syscall"

	"github.com/rs/zerolog"
)

// openDevice validates that path refers to a character device, opens it
// read/write and non-blocking, and returns a backend bound to the
// resulting descriptor. The caller owns the returned backend and must
// close it exactly once.
func openDevice(path string, log zerolog.Logger) (backend, error) {
	var stat syscall.Stat_t
	if err := syscall.Stat(path, &stat); err != nil {
		return nil, &OpenFailedError{Path: path, Err: err}
	}

	if stat.Mode&syscall.S_IFMT != syscall.S_IFCHR {
		return nil, &NotACharacterDeviceError{Path: path}
	}

	fd, err := syscall.Open(path, syscall.O_RDWR|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, &OpenFailedError{Path: path, Err: err}
	}

	return &fdBackend{handle: fd, log: log}, nil
}
