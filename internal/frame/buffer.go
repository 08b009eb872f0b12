package frame

// Buffer is a byte container owned by exactly one Frame or Packet at a
// time. The pipeline is single-threaded (spec §5) and moves ownership
// by handing the pointer along, never by sharing it concurrently.
//
// Packetizers that split one Frame into several sub-frames (the MPEG-4
// Part 2 reorder engine is the one component that must do this, per
// spec §9) call CopyRange to obtain an independently-owned copy of a
// sub-range; every other packetizer moves the Buffer as-is from Frame
// to Packet without copying.
type Buffer struct {
	data []byte
}

// NewBuffer wraps data with a single owner.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the underlying slice.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the payload length.
func (b *Buffer) Len() int {
	return len(b.data)
}

// CopyRange returns a new, independently-owned Buffer holding a copy of
// data[off:off+n]. This is the one place the pipeline deep-copies bytes
// out of an origin frame, because the sub-frame must outlive the frame
// it was carved from (spec §9).
func (b *Buffer) CopyRange(off, n int) *Buffer {
	out := make([]byte, n)
	copy(out, b.data[off:off+n])
	return NewBuffer(out)
}
