//go:build linux

package v4l2

import (
	"unsafe"

	"github.com/rs/zerolog"
)

// minBuffers and maxBuffers bound CaptureConfig.BufferCount.
const (
	minBuffers = 2
	maxBuffers = 32
)

// mappedBuffer is one kernel-allocated, memory-mapped capture buffer.
// It is uniquely owned by its bufferRing and is unmapped exactly once,
// at teardown.
type mappedBuffer struct {
	data   []byte
	length uint32
	index  uint32
}

// bufferRing is the set of mapped buffers shared with the driver. At
// any instant either the ring is empty, or the driver holds a matching
// non-zero REQBUFS grant; newBufferRing and teardown are the only two
// places that cross that line.
type bufferRing struct {
	buffers []mappedBuffer
}

// newBufferRing requests count buffers, adopting whatever count the
// driver actually grants (a lower grant is retained with a warning; a
// grant below minBuffers fails the whole attempt). Every granted index
// is queried and mmap'd; a failure at any index unwinds every mapping
// made so far in this attempt and releases the REQBUFS grant before
// returning.
func newBufferRing(b backend, count uint32, log zerolog.Logger) (*bufferRing, error) {
	req := v4l2_requestbuffers{
		count:  count,
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}

	if err := b.ioctl(VIDIOC_REQBUFS, unsafe.Pointer(&req)); err != nil {
		return nil, err
	}

	granted := req.count

	if granted < minBuffers {
		releaseBuffers(b)
		return nil, &InsufficientBuffersError{Granted: granted}
	}

	if granted < count {
		log.Warn().Uint32("requested", count).Uint32("granted", granted).Msg("driver granted fewer buffers than requested")
	}

	ring := &bufferRing{buffers: make([]mappedBuffer, 0, granted)}

	for i := uint32(0); i < granted; i++ {
		var buf v4l2_buffer
		buf.index = i
		buf.typ = V4L2_BUF_TYPE_VIDEO_CAPTURE
		buf.memory = V4L2_MEMORY_MMAP

		if err := b.ioctl(VIDIOC_QUERYBUF, unsafe.Pointer(&buf)); err != nil {
			ring.teardown(b, log)
			return nil, &BufferMapFailedError{Index: int(i), Err: err}
		}

		data, err := b.mmap(buf.offset, buf.length)
		if err != nil {
			ring.teardown(b, log)
			return nil, &BufferMapFailedError{Index: int(i), Err: err}
		}

		ring.buffers = append(ring.buffers, mappedBuffer{data: data, length: buf.length, index: i})
	}

	return ring, nil
}

// enqueueAll QBUFs every mapped buffer, handing the whole ring to the
// driver before STREAMON.
func (r *bufferRing) enqueueAll(b backend) error {
	for _, mb := range r.buffers {
		var buf v4l2_buffer
		buf.index = mb.index
		buf.typ = V4L2_BUF_TYPE_VIDEO_CAPTURE
		buf.memory = V4L2_MEMORY_MMAP

		if err := b.ioctl(VIDIOC_QBUF, unsafe.Pointer(&buf)); err != nil {
			return err
		}
	}
	return nil
}

// teardown unmaps every buffer exactly once, clears the ring, and tells
// the driver to release its side via REQBUFS(count=0). It is idempotent
// and safe to call on an already-empty ring (normal stop, start-time
// rollback, and object destruction all funnel through it).
func (r *bufferRing) teardown(b backend, log zerolog.Logger) {
	for _, mb := range r.buffers {
		if err := b.munmap(mb.data); err != nil {
			log.Warn().Err(err).Int("index", int(mb.index)).Msg("munmap")
		}
	}
	r.buffers = nil

	releaseBuffers(b)
}

func (r *bufferRing) len() int {
	return len(r.buffers)
}

func releaseBuffers(b backend) {
	req := v4l2_requestbuffers{
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
		count:  0,
	}
	_ = b.ioctl(VIDIOC_REQBUFS, unsafe.Pointer(&req))
}
