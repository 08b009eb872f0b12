// Package packet defines the Packetizer's output unit: one fully-formed
// Matroska block, ready for the output controller to merge by timecode
// and hand to the writer. See spec.md §3.
package packet

import "github.com/acdvorak/mkvtoolnix/internal/frame"

// References holds zero, one, or two reference timecodes:
//   - zero entries: a key frame.
//   - one entry: a P frame's previous reference.
//   - two entries: a B frame's (previous, next) references, in that
//     order.
//
// A References value is never longer than two elements; packetizers
// build it with one of the constructors below rather than appending
// directly, so that invariant can't be violated by accident.
type References []int64

// None is the empty reference set carried by every key-frame packet.
func None() References { return nil }

// Previous builds a P-frame reference set.
func Previous(ts int64) References { return References{ts} }

// Bidirectional builds a B-frame reference set: past then future.
func Bidirectional(prev, next int64) References { return References{prev, next} }

// IsKey reports whether this reference set belongs to a key frame.
func (r References) IsKey() bool { return len(r) == 0 }

// Prev returns the previous-reference timecode, or frame.NoTimecode if
// this is a key-frame reference set.
func (r References) Prev() int64 {
	if len(r) == 0 {
		return frame.NoTimecode
	}
	return r[0]
}

// Next returns the next-reference timecode (only meaningful for a
// two-element, B-frame reference set); returns frame.NoTimecode
// otherwise.
func (r References) Next() int64 {
	if len(r) < 2 {
		return frame.NoTimecode
	}
	return r[1]
}

// Packet is the packetizer's output: a payload ready to become one
// Matroska block, a timecode and duration in nanoseconds (both ≥ 0, per
// spec §3 invariants), and the reference timecodes the block depends
// on.
type Packet struct {
	TrackUID   uint32
	Payload    *frame.Buffer
	Timecode   int64
	Duration   int64
	References References
}

// New builds a Packet. Callers are expected to have already resolved
// Timecode/Duration to concrete nanosecond values — packet.New never
// synthesizes or validates sentinels, that's the timecode factory's job
// (internal/timecode).
func New(trackUID uint32, payload *frame.Buffer, timecode, duration int64, refs References) Packet {
	return Packet{
		TrackUID:   trackUID,
		Payload:    payload,
		Timecode:   timecode,
		Duration:   duration,
		References: refs,
	}
}

// Valid reports whether the packet satisfies the invariants of spec §8
// item 1: non-negative timecode/duration and a non-empty payload.
func (p Packet) Valid() bool {
	return p.Timecode >= 0 && p.Duration >= 0 && p.Payload != nil && p.Payload.Len() > 0
}
