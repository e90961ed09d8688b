//go:build linux && (amd64 || arm64)

package v4l2

import "syscall"

func setFd(set *syscall.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}
