//go:build linux

package v4l2

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// TestStructSizes guards the hand-derived kernel ABI layouts against
// accidental field reordering: v4l2_buffer's size is architecture
// dependent (a pointer-sized union member and timeval alignment), so a
// silent size drift here means an ioctl request code no longer matches
// the struct actually being passed.
func TestStructSizes(t *testing.T) {
	require.Equal(t, uintptr(104), unsafe.Sizeof(v4l2_capability{}))
	require.Equal(t, uintptr(48), unsafe.Sizeof(v4l2_pix_format{}))
	require.Equal(t, uintptr(204), unsafe.Sizeof(v4l2_format{}))
	require.Equal(t, uintptr(8), unsafe.Sizeof(v4l2_fract{}))
	require.Equal(t, uintptr(40), unsafe.Sizeof(v4l2_captureparm{}))
	require.Equal(t, uintptr(204), unsafe.Sizeof(v4l2_streamparm{}))
	require.Equal(t, uintptr(20), unsafe.Sizeof(v4l2_requestbuffers{}))
	require.Equal(t, uintptr(16), unsafe.Sizeof(v4l2_timecode{}))
	require.Equal(t, uintptr(64), unsafe.Sizeof(v4l2_fmtdesc{}))
	require.Equal(t, uintptr(44), unsafe.Sizeof(v4l2_frmsizeenum{}))
	require.Equal(t, uintptr(52), unsafe.Sizeof(v4l2_frmivalenum{}))

	switch runtime.GOARCH {
	case "amd64", "arm64":
		require.Equal(t, uintptr(88), unsafe.Sizeof(v4l2_buffer{}))
	case "386", "arm":
		require.Equal(t, uintptr(68), unsafe.Sizeof(v4l2_buffer{}))
	}
}
