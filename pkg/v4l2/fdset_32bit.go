//go:build linux && (386 || arm)

package v4l2

import "syscall"

func setFd(set *syscall.FdSet, fd int) {
	set.Bits[fd/32] |= 1 << (uint(fd) % 32)
}
