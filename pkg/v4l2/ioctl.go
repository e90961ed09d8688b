//go:build linux

package v4l2

import (
	"syscall"
	"time"
	"unsafe"

	"github.com/rs/zerolog"

	rawioctl "github.com/ramsafin/ros-video-streaming/pkg/ioctl"
)

// defaultReadTimeout is the readiness-wait timeout used by Capture.Read.
// Open sets it on every Capture; no exported API changes it.
const defaultReadTimeout = time.Second

// backend is the only place that speaks to the kernel's V4L2 ABI. It is
// an interface so that capture_test.go can swap in a mock driver; in
// production the sole implementation is fdBackend.
type backend interface {
	ioctl(req uintptr, arg unsafe.Pointer) error
	waitReadable(timeout time.Duration) (bool, error)
	mmap(offset uint32, length uint32) ([]byte, error)
	munmap(b []byte) error
	close() error
	fd() int
}

// fdBackend drives a single open device file descriptor.
type fdBackend struct {
	handle int
	log    zerolog.Logger
}

func (b *fdBackend) fd() int { return b.handle }

// ioctl performs req against the device, retrying transparently on
// EINTR. Any other errno is returned verbatim to the caller.
func (b *fdBackend) ioctl(req uintptr, arg unsafe.Pointer) error {
	for {
		err := rawioctl.Ioctl(b.handle, uint(req), arg)
		if err == nil {
			return nil
		}
		if err == syscall.EINTR {
			continue
		}
		return err
	}
}

// waitReadable blocks until the descriptor is readable or timeout
// elapses. It distinguishes timeout (false, nil) from readiness (true,
// nil) from error (false, err); EINTR is retried with the remaining
// budget rather than surfaced.
func (b *fdBackend) waitReadable(timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}

		var readFds syscall.FdSet
		setFd(&readFds, b.handle)

		tv := syscall.NsecToTimeval(remaining.Nanoseconds())

		n, err := syscall.Select(b.handle+1, &readFds, nil, nil, &tv)
		if err != nil {
			if err == syscall.EINTR {
				if time.Now().After(deadline) {
					return false, nil
				}
				continue
			}
			b.log.Warn().Err(err).Msg("select")
			return false, err
		}

		return n > 0, nil
	}
}

func (b *fdBackend) mmap(offset, length uint32) ([]byte, error) {
	return syscall.Mmap(b.handle, int64(offset), int(length), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
}

func (b *fdBackend) munmap(region []byte) error {
	return syscall.Munmap(region)
}

func (b *fdBackend) close() error {
	return syscall.Close(b.handle)
}
