package mpeg4p2

import "github.com/acdvorak/mkvtoolnix/internal/frame"

// subFrame is one classified VOP extracted from a (possibly
// multi-frame) input chunk.
type subFrame struct {
	frameType frame.Type
	offset    int
	size      int
}

// scanStartCodeFrames splits buf into one subFrame per VOP start code
// (spec §4.3 "find_frame_types"), classifying each by the 2-bit
// vop_coding_type field immediately following the 4-byte start code:
// 0=I, 1=P, 2=B, 3=NVOP (the reserved "S" coding type common encoders
// repurpose as a not-coded dummy frame marker).
func scanStartCodeFrames(buf []byte) []subFrame {
	var starts []int
	offset, code, found := findStartCode(buf, 0)
	for found {
		if code == startCodeVOP {
			starts = append(starts, offset)
		}
		offset, code, found = findStartCode(buf, offset+3)
	}

	frames := make([]subFrame, 0, len(starts))
	for i, start := range starts {
		end := len(buf)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		frames = append(frames, subFrame{
			frameType: classifyVOP(buf[start:end]),
			offset:    start,
			size:      end - start,
		})
	}
	return frames
}

// classifyVOP reads the coding-type field of one VOP (start code
// included) and maps it to a frame.Type.
func classifyVOP(vop []byte) frame.Type {
	if len(vop) < 5 {
		return frame.IFrame
	}
	r := newBitReader(vop[4:])
	codingType, ok := r.readBits(2)
	if !ok {
		return frame.IFrame
	}
	switch codingType {
	case 0:
		return frame.IFrame
	case 1:
		return frame.PFrame
	case 2:
		return frame.BFrame
	default:
		return frame.NVOP
	}
}

// isDivX3Keyframe applies the corrected DivX3 heuristic from spec §9:
// interpret the chunk's first 4 bytes as a little-endian u32 and test
// bit 30. DivX3 (and similar "old-style" MS-compatible ASP) streams
// carry no start codes at all — the whole chunk is one frame and this
// bit is the only signal available.
func isDivX3Keyframe(chunk []byte) bool {
	if len(chunk) < 4 {
		return false
	}
	v := uint32(chunk[0]) | uint32(chunk[1])<<8 | uint32(chunk[2])<<16 | uint32(chunk[3])<<24
	return v&(1<<30) != 0
}
